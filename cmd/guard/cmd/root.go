package cmd

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeremyhahn/go-guard/pkg/clock"
	"github.com/jeremyhahn/go-guard/pkg/community"
	"github.com/jeremyhahn/go-guard/pkg/guard"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "guard",
	Short: "Mobile authenticator for marketplace login codes and confirmations",
	Long: `guard generates login codes and accepts or denies pending trade and
market confirmations using the account's shared and identity secrets.

Configuration is read from guard.yaml (current directory or
$HOME/.config/guard) and GUARD_* environment variables.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: guard.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// app bundles what every subcommand needs.
type app struct {
	cfg    *Config
	logger *zap.Logger
	auth   *guard.Authenticator
}

func (a *app) Close() {
	a.auth.Close()
	_ = a.logger.Sync()
}

// newApp loads configuration and wires the authenticator to the HTTP service.
func newApp() (*app, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	httpClient, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	service, err := community.NewClient(community.Config{
		AccountID:  cfg.AccountID,
		HTTPClient: httpClient,
		Logger:     logger.Named("community"),
	})
	if err != nil {
		return nil, err
	}

	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID = guard.DeriveDeviceID(cfg.AccountID)
		logger.Info("device id not configured; using derived id", zap.String("device_id", deviceID))
	}

	auth, err := guard.NewAuthenticator(guard.Config{
		SharedSecret:   cfg.SharedSecret,
		IdentitySecret: cfg.IdentitySecret,
		DeviceID:       deviceID,
		Service:        service,
		Clock:          clock.NewSynchronizer(service, clock.WithLogger(logger.Named("clock"))),
		Logger:         logger.Named("guard"),
	})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, auth: auth}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// newHTTPClient returns a client whose jar holds the configured session
// cookies for the community site.
func newHTTPClient(cfg *Config) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	site, err := url.Parse(community.DefaultCommunityBaseURL)
	if err != nil {
		return nil, err
	}
	cookies := make([]*http.Cookie, 0, len(cfg.Session.Cookies))
	for name, value := range cfg.Session.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/", Secure: true})
	}
	jar.SetCookies(site, cookies)
	return &http.Client{Jar: jar, Timeout: cfg.Timeout}, nil
}
