// Package community talks to the marketplace's mobile confirmation endpoints
// over HTTP. Client implements guard.Service.
//
// The Client does not log in. Confirmation endpoints require an authenticated
// web session, which callers provide through the cookie jar of the supplied
// http.Client.
package community

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/jeremyhahn/go-guard/pkg/confirmation"
	"github.com/jeremyhahn/go-guard/pkg/otp"
)

const (
	// DefaultAPIBaseURL hosts the QueryTime endpoint.
	DefaultAPIBaseURL = "https://api.steampowered.com"
	// DefaultCommunityBaseURL hosts the mobileconf endpoints.
	DefaultCommunityBaseURL = "https://steamcommunity.com"

	queryTimePath = "/ITwoFactorService/QueryTime/v0001"
	listPath      = "/mobileconf/conf"
	detailsPath   = "/mobileconf/details/"
	operationPath = "/mobileconf/ajaxop"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20
)

var (
	// ErrInvalidConfig indicates the client configuration is invalid.
	ErrInvalidConfig = errors.New("community: invalid configuration")
	// ErrUnexpectedStatus indicates a non-200 HTTP response.
	ErrUnexpectedStatus = errors.New("community: unexpected status")
	// ErrMalformedResponse indicates a response body could not be decoded.
	ErrMalformedResponse = errors.New("community: malformed response")
)

// Config contains the inputs required to talk to the marketplace.
type Config struct {
	// AccountID is the 64-bit account identifier sent with every
	// confirmation request (required).
	AccountID uint64
	// HTTPClient carries the authenticated session. Default: http.DefaultClient
	HTTPClient *http.Client
	// APIBaseURL overrides DefaultAPIBaseURL.
	APIBaseURL string
	// CommunityBaseURL overrides DefaultCommunityBaseURL.
	CommunityBaseURL string
	// Logger receives request diagnostics. Default: no-op
	Logger *zap.Logger
}

func (c Config) validate() error {
	if c.AccountID == 0 {
		return fmt.Errorf("%w: account id must not be zero", ErrInvalidConfig)
	}
	for _, raw := range []string{c.APIBaseURL, c.CommunityBaseURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: invalid base url %q", ErrInvalidConfig, raw)
		}
	}
	return nil
}

// Client is an HTTP implementation of guard.Service.
type Client struct {
	accountID     string
	http          *http.Client
	apiBase       string
	communityBase string
	logger        *zap.Logger
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.CommunityBaseURL == "" {
		cfg.CommunityBaseURL = DefaultCommunityBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		accountID:     strconv.FormatUint(cfg.AccountID, 10),
		http:          cfg.HTTPClient,
		apiBase:       strings.TrimRight(cfg.APIBaseURL, "/"),
		communityBase: strings.TrimRight(cfg.CommunityBaseURL, "/"),
		logger:        cfg.Logger,
	}, nil
}

type queryTimeResponse struct {
	Response struct {
		ServerTime string `json:"server_time"`
	} `json:"response"`
}

// FetchServerTime queries the service clock.
func (c *Client) FetchServerTime(ctx context.Context) (uint32, error) {
	form := url.Values{}
	form.Set("steamid", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+queryTimePath, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out queryTimeResponse
	if err := c.doJSON(req, &out); err != nil {
		return 0, err
	}
	t, err := strconv.ParseUint(out.Response.ServerTime, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: server_time %q", ErrMalformedResponse, out.Response.ServerTime)
	}
	return uint32(t), nil
}

// FetchConfirmations downloads and parses the confirmation page.
func (c *Client) FetchConfirmations(ctx context.Context, deviceID, signature string, t uint32) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.communityBase+listPath+"?"+c.params(deviceID, signature, t).Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return doc, nil
}

// FetchConfirmationDetails downloads the details of confirmation id.
func (c *Client) FetchConfirmationDetails(ctx context.Context, deviceID, signature string, t uint32, id uint32) (*confirmation.Details, error) {
	endpoint := c.communityBase + detailsPath + strconv.FormatUint(uint64(id), 10) +
		"?" + c.params(deviceID, signature, t).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var details confirmation.Details
	if err := c.doJSON(req, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

type operationResponse struct {
	Success bool `json:"success"`
}

// ResolveConfirmation accepts or cancels confirmation id/key.
func (c *Client) ResolveConfirmation(ctx context.Context, deviceID, signature string, t uint32, id uint32, key uint64, accept bool) (bool, error) {
	params := c.params(deviceID, signature, t)
	if accept {
		params.Set("op", otp.TagAllow)
	} else {
		params.Set("op", otp.TagCancel)
	}
	params.Set("cid", strconv.FormatUint(uint64(id), 10))
	params.Set("ck", strconv.FormatUint(key, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.communityBase+operationPath+"?"+params.Encode(), nil)
	if err != nil {
		return false, err
	}

	var out operationResponse
	if err := c.doJSON(req, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

// params builds the query parameters shared by every confirmation request.
// Signatures are always computed with the confirmations tag.
func (c *Client) params(deviceID, signature string, t uint32) url.Values {
	v := url.Values{}
	v.Set("p", deviceID)
	v.Set("a", c.accountID)
	v.Set("k", signature)
	v.Set("t", strconv.FormatUint(uint64(t), 10))
	v.Set("m", "android")
	v.Set("tag", otp.TagConfirmations)
	return v
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("community request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, req.URL.Path)
	}
	return resp, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
