package issuance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
	"github.com/dmitrijs2005/yiviportal/internal/common"
	"github.com/dmitrijs2005/yiviportal/internal/logging"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

const DefaultPollInterval = time.Second

// YiviWidget starts a session at the portal backend, lets the Presenter
// show it, polls the Yivi server until the session ends and exchanges a
// successful session for an access token.
type YiviWidget struct {
	backend   Backend
	presenter Presenter
	http      *retryablehttp.Client
	interval  time.Duration
	logger    logging.Logger
}

type YiviOption func(*YiviWidget)

func WithPollInterval(d time.Duration) YiviOption {
	return func(w *YiviWidget) { w.interval = d }
}

// WithStatusClient replaces the client used to poll the Yivi server.
func WithStatusClient(c *retryablehttp.Client) YiviOption {
	return func(w *YiviWidget) { w.http = c }
}

func NewYiviWidget(backend Backend, presenter Presenter, logger logging.Logger, opts ...YiviOption) *YiviWidget {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient.Timeout = 10 * time.Second

	w := &YiviWidget{
		backend:   backend,
		presenter: presenter,
		http:      rc,
		interval:  DefaultPollInterval,
		logger:    logger.With("component", "yivi"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *YiviWidget) Start(ctx context.Context, cfg SessionConfig) (string, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start, err := w.backend.StartSession(ctx)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	if start.SessionPtr.URL == "" || start.Token == "" {
		return "", fmt.Errorf("start session: incomplete session pointer")
	}

	if err := w.presenter.Present(ctx, start.SessionPtr, cfg.Language); err != nil {
		return "", fmt.Errorf("present session: %w", err)
	}

	status, err := w.await(ctx, start.SessionPtr.URL)
	if err != nil {
		return "", err
	}
	switch status {
	case StatusCancelled:
		return "", common.ErrSessionCancelled
	case StatusTimeout:
		return "", common.ErrSessionTimeout
	}

	token, err := w.backend.SessionResult(ctx, start.Token)
	if err != nil {
		return "", fmt.Errorf("session result: %w", err)
	}
	return token, nil
}

// await polls the session status until it is final.
func (w *YiviWidget) await(ctx context.Context, sessionURL string) (Status, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var last Status
	for {
		status, err := w.status(ctx, sessionURL)
		if err != nil {
			return "", err
		}
		if status != last {
			w.logger.Debug(ctx, "session status changed", "from", last, "to", status)
			w.presenter.Progress(status)
			last = status
		}
		if status.Final() {
			return status, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", common.ErrSessionTimeout
			}
			return "", ctx.Err()
		}
	}
}

func (w *YiviWidget) status(ctx context.Context, sessionURL string) (Status, error) {
	endpoint := strings.TrimRight(sessionURL, "/") + "/status"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	resp, err := w.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", common.ErrSessionTimeout
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %w", client.ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: yivi server status %d", client.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		// The Yivi server forgets sessions some time after they end.
		return "", fmt.Errorf("%w: session unknown to yivi server (status %d)", common.ErrSessionTimeout, resp.StatusCode)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", fmt.Errorf("decode session status: %w", err)
	}
	return status, nil
}
