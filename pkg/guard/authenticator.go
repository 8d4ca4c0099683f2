package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeremyhahn/go-guard/pkg/clock"
	"github.com/jeremyhahn/go-guard/pkg/confirmation"
	"github.com/jeremyhahn/go-guard/pkg/otp"
)

// DefaultConcurrency bounds the number of in-flight resolve calls made by
// ResolveConfirmations.
const DefaultConcurrency = 4

// Config holds authenticator configuration.
type Config struct {
	// SharedSecret is the base64 secret used for login codes (required).
	SharedSecret string
	// IdentitySecret is the base64 secret used to sign confirmations (required).
	IdentitySecret string
	// DeviceID identifies this authenticator to the service. Optional; an
	// empty value still works but the service may refuse confirmations.
	DeviceID string
	// Service is the remote marketplace (required).
	Service Service
	// Clock supplies authoritative time. Share one instance per process.
	// Default: a private synchronizer over Service.
	Clock *clock.Synchronizer
	// Logger receives diagnostics. Secrets are never logged.
	// Default: no-op
	Logger *zap.Logger
	// Concurrency bounds ResolveConfirmations.
	// Default: 4
	Concurrency int
}

// validate checks that the configuration is valid.
func (c Config) validate() error {
	if strings.TrimSpace(c.SharedSecret) == "" {
		return fmt.Errorf("%w: shared secret must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.IdentitySecret) == "" {
		return fmt.Errorf("%w: identity secret must not be empty", ErrInvalidConfig)
	}
	if c.Service == nil {
		return fmt.Errorf("%w: service must not be nil", ErrInvalidConfig)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Authenticator generates login codes and resolves confirmations.
// It is safe for concurrent use.
type Authenticator struct {
	shared      *Secret
	identity    *Secret
	service     Service
	clock       *clock.Synchronizer
	logger      *zap.Logger
	concurrency int

	mu       sync.RWMutex
	deviceID string
}

// NewAuthenticator creates a new authenticator.
// The configuration is validated and both secrets are decoded; an error is
// returned if either is malformed.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Apply defaults
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSynchronizer(cfg.Service, clock.WithLogger(cfg.Logger))
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	shared, err := NewSecret(cfg.SharedSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: shared secret: %v", ErrInvalidConfig, err)
	}
	identity, err := NewSecret(cfg.IdentitySecret)
	if err != nil {
		shared.Destroy()
		return nil, fmt.Errorf("%w: identity secret: %v", ErrInvalidConfig, err)
	}

	return &Authenticator{
		shared:      shared,
		identity:    identity,
		service:     cfg.Service,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
		deviceID:    strings.TrimSpace(cfg.DeviceID),
	}, nil
}

// Close destroys the authenticator's secrets. Subsequent operations return
// ErrClosed.
func (a *Authenticator) Close() {
	if a == nil {
		return
	}
	a.shared.Destroy()
	a.identity.Destroy()
}

// DeviceID returns the configured device identifier, possibly empty.
func (a *Authenticator) DeviceID() string {
	if a == nil {
		return ""
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.deviceID
}

// HasDeviceID reports whether a device identifier is configured.
func (a *Authenticator) HasDeviceID() bool {
	return a.DeviceID() != ""
}

// UpdateDeviceID replaces the device identifier, e.g. after the service
// reports the stored one as wrong.
func (a *Authenticator) UpdateDeviceID(deviceID string) {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.deviceID = strings.TrimSpace(deviceID)
	a.mu.Unlock()
}

// GenerateToken returns the login code for the current authoritative time.
func (a *Authenticator) GenerateToken(ctx context.Context) (string, error) {
	if a == nil {
		return "", ErrNilAuthenticator
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key, err := a.shared.key()
	if err != nil {
		return "", err
	}
	t := a.clock.Time(ctx)
	if t == 0 {
		a.logger.Warn("cannot generate token without server time")
		return "", ErrTimeUnavailable
	}

	code, err := otp.GenerateCode(key, t)
	if err != nil {
		return "", fmt.Errorf("guard: generate token: %w", err)
	}
	return code, nil
}

// ListConfirmations fetches and parses the pending confirmations. A page
// with no pending confirmations yields an empty, non-nil set.
func (a *Authenticator) ListConfirmations(ctx context.Context) (confirmation.Set, error) {
	req, err := a.sign(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := a.service.FetchConfirmations(ctx, req.deviceID, req.signature, req.time)
	if err != nil {
		return nil, fmt.Errorf("guard: fetch confirmations: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("guard: fetch confirmations: %w", ErrEmptyResponse)
	}

	set, err := confirmation.Parse(doc, a.logger)
	if err != nil {
		a.logger.Warn("confirmation page not recognized", zap.Error(err))
		return nil, err
	}
	a.logger.Debug("listed confirmations", zap.Int("count", set.Len()))
	return set, nil
}

// ConfirmationDetails fetches the details of c.
func (a *Authenticator) ConfirmationDetails(ctx context.Context, c confirmation.Confirmation) (*confirmation.Details, error) {
	if c.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfirmation, c)
	}
	req, err := a.sign(ctx)
	if err != nil {
		return nil, err
	}

	details, err := a.service.FetchConfirmationDetails(ctx, req.deviceID, req.signature, req.time, c.ID)
	if err != nil {
		return nil, fmt.Errorf("guard: fetch details for %s: %w", c, err)
	}
	if details == nil {
		return nil, fmt.Errorf("guard: fetch details for %s: %w", c, ErrEmptyResponse)
	}
	return details, nil
}

// ResolveConfirmation accepts or denies c and returns the service's verdict.
// A false result with a nil error means the service declined the operation.
func (a *Authenticator) ResolveConfirmation(ctx context.Context, c confirmation.Confirmation, accept bool) (bool, error) {
	if c.IsZero() {
		return false, fmt.Errorf("%w: %s", ErrInvalidConfirmation, c)
	}
	req, err := a.sign(ctx)
	if err != nil {
		return false, err
	}

	ok, err := a.service.ResolveConfirmation(ctx, req.deviceID, req.signature, req.time, c.ID, c.Key, accept)
	if err != nil {
		return false, fmt.Errorf("guard: resolve %s: %w", c, err)
	}
	a.logger.Debug("resolved confirmation",
		zap.Uint32("id", c.ID),
		zap.Bool("accept", accept),
		zap.Bool("success", ok))
	return ok, nil
}

// ResolveConfirmations accepts or denies every confirmation in set with
// bounded concurrency. Every member is attempted; failures and refusals are
// joined into the returned error.
func (a *Authenticator) ResolveConfirmations(ctx context.Context, set confirmation.Set, accept bool) error {
	if a == nil {
		return ErrNilAuthenticator
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for _, c := range set.Sorted() {
		g.Go(func() error {
			ok, err := a.ResolveConfirmation(ctx, c, accept)
			if err == nil && !ok {
				err = fmt.Errorf("%w: %s", ErrRejected, c)
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// signedRequest carries the values every confirmation call is signed with.
type signedRequest struct {
	deviceID  string
	signature string
	time      uint32
}

// sign obtains authoritative time and the confirmation signature for it.
func (a *Authenticator) sign(ctx context.Context) (signedRequest, error) {
	if a == nil {
		return signedRequest{}, ErrNilAuthenticator
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return signedRequest{}, err
	}

	key, err := a.identity.key()
	if err != nil {
		return signedRequest{}, err
	}
	t := a.clock.Time(ctx)
	if t == 0 {
		a.logger.Warn("cannot sign confirmation request without server time")
		return signedRequest{}, ErrTimeUnavailable
	}
	sig, err := otp.GenerateConfirmationKey(key, t, otp.TagConfirmations)
	if err != nil || sig == "" {
		return signedRequest{}, fmt.Errorf("%w: %v", ErrSignatureUnavailable, err)
	}

	deviceID := a.DeviceID()
	if deviceID == "" {
		a.logger.Warn("no device id configured; service may reject the request")
	}
	return signedRequest{deviceID: deviceID, signature: sig, time: t}, nil
}
