package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/client/models"
	"github.com/dmitrijs2005/yiviportal/internal/common"
	"github.com/dmitrijs2005/yiviportal/internal/logging"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// HTTPClient is the JSON-over-HTTP Client implementation.
type HTTPClient struct {
	baseURL *url.URL
	http    *retryablehttp.Client
	tokens  TokenSource
	reauth  Reauthenticator
	logger  logging.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithRetryMax sets how many times a failed request is retried.
func WithRetryMax(n int) HTTPOption {
	return func(c *HTTPClient) { c.http.RetryMax = n }
}

// WithRetryWait bounds the backoff between retries.
func WithRetryWait(min, max time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.http.RetryWaitMin = min
		c.http.RetryWaitMax = max
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.http.HTTPClient.Timeout = d }
}

// WithCookieJar installs the jar holding the refresh cookie.
func WithCookieJar(jar http.CookieJar) HTTPOption {
	return func(c *HTTPClient) { c.http.HTTPClient.Jar = jar }
}

// WithTokenSource attaches a bearer token to every request.
func WithTokenSource(ts TokenSource) HTTPOption {
	return func(c *HTTPClient) { c.tokens = ts }
}

// WithReauthenticator enables one refresh-and-retry when the backend
// answers 401 to a request that carried a token.
func WithReauthenticator(r Reauthenticator) HTTPOption {
	return func(c *HTTPClient) { c.reauth = r }
}

// NewHTTPClient builds a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, logger logging.Logger, opts ...HTTPOption) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = retryLogger{l: logger}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient.Timeout = 10 * time.Second

	c := &HTTPClient{
		baseURL: u,
		http:    rc,
		logger:  logger.With("component", "api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource and SetReauthenticator break the construction cycle
// between the client and the session store.
func (c *HTTPClient) SetTokenSource(ts TokenSource) { c.tokens = ts }

func (c *HTTPClient) SetReauthenticator(r Reauthenticator) { c.reauth = r }

// BaseURL returns the API root.
func (c *HTTPClient) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *HTTPClient) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL.String() + "/" + strings.Join(escaped, "/")
}

func (c *HTTPClient) currentToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *HTTPClient) send(ctx context.Context, method, endpoint string, payload []byte, token string) (*http.Response, error) {
	var body any
	if payload != nil {
		body = payload
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "method", method, "url", endpoint, "error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

// do sends a JSON request and decodes the JSON answer into out (if not nil).
// A 401 on a request that carried a token triggers one reauthentication
// and retry.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	token := c.currentToken()
	resp, err := c.send(ctx, method, endpoint, payload, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" && c.reauth != nil {
		drain(resp)
		c.logger.Debug(ctx, "access token rejected, refreshing", "url", endpoint)
		fresh, ok := c.reauth.Refresh(ctx)
		if !ok {
			return ErrUnauthorized
		}
		resp, err = c.send(ctx, method, endpoint, payload, fresh)
		if err != nil {
			return err
		}
	}

	return decodeResponse(resp, out)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func decodeResponse(resp *http.Response, out any) error {
	defer drain(resp)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return validationError(resp.Body)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

func validationError(r io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var body map[string]any
	if err := json.Unmarshal(b, &body); err != nil || len(body) == 0 {
		return fmt.Errorf("%w: %s", common.ErrValidation, strings.TrimSpace(string(b)))
	}
	return newFieldErrors(body)
}

type accessResponse struct {
	Access string `json:"access"`
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.endpoint("v1", "health"), nil, nil)
}

// RefreshToken does not go through the 401 retry: it is what the retry
// itself calls.
func (c *HTTPClient) RefreshToken(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, http.MethodPost, c.endpoint("v1", "refreshtoken"), nil, "")
	if err != nil {
		return "", err
	}
	var out accessResponse
	if err := decodeResponse(resp, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("%w: empty access token", common.ErrInvalidToken)
	}
	return out.Access, nil
}

func (c *HTTPClient) StartSession(ctx context.Context) (*SessionStart, error) {
	var out SessionStart
	if err := c.do(ctx, http.MethodPost, c.endpoint("v1", "session"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SessionResult(ctx context.Context, sessionToken string) (string, error) {
	var out accessResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("v1", "session", sessionToken, "result"), nil, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("%w: empty access token", common.ErrInvalidToken)
	}
	return out.Access, nil
}

func (c *HTTPClient) ListCredentials(ctx context.Context) ([]models.Credential, error) {
	var out []models.Credential
	if err := c.do(ctx, http.MethodGet, c.endpoint("v1", "credentials"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListEnvironments(ctx context.Context) ([]models.EnvironmentInfo, error) {
	var out []models.EnvironmentInfo
	if err := c.do(ctx, http.MethodGet, c.endpoint("v1", "environments"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	var out []models.Organization
	if err := c.do(ctx, http.MethodGet, c.endpoint("v1", "organizations"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetOrganization(ctx context.Context, slug string) (*models.Organization, error) {
	var out models.Organization
	if err := c.do(ctx, http.MethodGet, c.endpoint("v1", "organizations", slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) RegisterOrganization(ctx context.Context, req models.RegisterOrganizationRequest) (*models.Organization, error) {
	var out models.Organization
	if err := c.do(ctx, http.MethodPost, c.endpoint("v1", "organizations"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListMaintainers(ctx context.Context, orgSlug string) ([]models.Maintainer, error) {
	var out []models.Maintainer
	if err := c.do(ctx, http.MethodGet, c.endpoint("v1", "organizations", orgSlug, "maintainers"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AddMaintainer(ctx context.Context, orgSlug, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, c.endpoint("v1", "organizations", orgSlug, "maintainers"), body, nil)
}

func (c *HTTPClient) DeleteMaintainer(ctx context.Context, orgSlug, email string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("v1", "organizations", orgSlug, "maintainers", email), nil, nil)
}

func (c *HTTPClient) ListRelyingParties(ctx context.Context, orgSlug string) ([]models.RelyingParty, error) {
	var out []models.RelyingParty
	if err := c.do(ctx, http.MethodGet, c.endpoint("v1", "organizations", orgSlug, "relying-parties"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateRelyingParty(ctx context.Context, orgSlug string, rp models.RelyingParty) error {
	return c.do(ctx, http.MethodPost, c.endpoint("v1", "organizations", orgSlug, "relying-parties"), rp, nil)
}

func (c *HTTPClient) DeleteRelyingParty(ctx context.Context, orgSlug string, env models.Environment, rpSlug string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("v1", "organizations", orgSlug, "relying-parties", string(env), rpSlug), nil, nil)
}

// retryLogger adapts logging.Logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	l logging.Logger
}

func (r retryLogger) Error(msg string, kv ...any) { r.l.Error(context.Background(), msg, kv...) }
func (r retryLogger) Info(msg string, kv ...any)  { r.l.Debug(context.Background(), msg, kv...) }
func (r retryLogger) Debug(msg string, kv ...any) { r.l.Debug(context.Background(), msg, kv...) }
func (r retryLogger) Warn(msg string, kv ...any)  { r.l.Warn(context.Background(), msg, kv...) }
