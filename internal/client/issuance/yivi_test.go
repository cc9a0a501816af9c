package issuance

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/client/client"
	"github.com/dmitrijs2005/yiviportal/internal/common"
	"github.com/dmitrijs2005/yiviportal/internal/logging"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	sessionURL  string
	startErr    error
	resultErr   error
	resultCalls atomic.Int32
}

func (b *fakeBackend) StartSession(context.Context) (*client.SessionStart, error) {
	if b.startErr != nil {
		return nil, b.startErr
	}
	return &client.SessionStart{
		SessionPtr: client.SessionPointer{URL: b.sessionURL, Type: "disclosing"},
		Token:      "sess-1",
	}, nil
}

func (b *fakeBackend) SessionResult(_ context.Context, token string) (string, error) {
	b.resultCalls.Add(1)
	if b.resultErr != nil {
		return "", b.resultErr
	}
	return "access-for-" + token, nil
}

type recordingPresenter struct {
	mu       sync.Mutex
	ptr      client.SessionPointer
	statuses []Status
}

func (p *recordingPresenter) Present(_ context.Context, ptr client.SessionPointer, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ptr = ptr
	return nil
}

func (p *recordingPresenter) Progress(s Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, s)
}

// yiviServer answers the status endpoint with the given statuses in order,
// repeating the last one.
func yiviServer(t *testing.T, statuses ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/irma/session/abc/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		i := int(polls.Add(1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"` + statuses[i] + `"`))
	}))
	t.Cleanup(srv.Close)
	return srv, &polls
}

func noRetry() *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return rc
}

func newWidget(backend Backend, p Presenter) *YiviWidget {
	return NewYiviWidget(backend, p, logging.Discard(),
		WithPollInterval(5*time.Millisecond), WithStatusClient(noRetry()))
}

func TestYiviWidget_Done(t *testing.T) {
	srv, polls := yiviServer(t, "INITIALIZED", "CONNECTED", "CONNECTED", "DONE")
	backend := &fakeBackend{sessionURL: srv.URL + "/irma/session/abc"}
	presenter := &recordingPresenter{}

	token, err := newWidget(backend, presenter).Start(context.Background(), SessionConfig{Language: "en"})

	require.NoError(t, err)
	assert.Equal(t, "access-for-sess-1", token)
	assert.EqualValues(t, 4, polls.Load())
	assert.Equal(t, backend.sessionURL, presenter.ptr.URL)
	assert.Equal(t, []Status{StatusInitialized, StatusConnected, StatusDone}, presenter.statuses)
}

func TestYiviWidget_FinalStatuses(t *testing.T) {
	tests := []struct {
		status string
		want   error
	}{
		{status: "CANCELLED", want: common.ErrSessionCancelled},
		{status: "TIMEOUT", want: common.ErrSessionTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			srv, _ := yiviServer(t, "CONNECTED", tt.status)
			backend := &fakeBackend{sessionURL: srv.URL + "/irma/session/abc"}

			_, err := newWidget(backend, &recordingPresenter{}).Start(context.Background(), SessionConfig{})

			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, backend.resultCalls.Load())
		})
	}
}

func TestYiviWidget_CeremonyTimeout(t *testing.T) {
	srv, _ := yiviServer(t, "INITIALIZED")
	backend := &fakeBackend{sessionURL: srv.URL + "/irma/session/abc"}

	_, err := newWidget(backend, &recordingPresenter{}).Start(context.Background(), SessionConfig{Timeout: 50 * time.Millisecond})

	require.ErrorIs(t, err, common.ErrSessionTimeout)
}

func TestYiviWidget_CallerCancels(t *testing.T) {
	srv, _ := yiviServer(t, "INITIALIZED")
	backend := &fakeBackend{sessionURL: srv.URL + "/irma/session/abc"}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	_, err := newWidget(backend, &recordingPresenter{}).Start(ctx, SessionConfig{})

	require.ErrorIs(t, err, context.Canceled)
}

func TestYiviWidget_UnknownSession(t *testing.T) {
	srv, _ := yiviServer(t, "DONE")
	backend := &fakeBackend{sessionURL: srv.URL + "/irma/session/gone"}

	_, err := newWidget(backend, &recordingPresenter{}).Start(context.Background(), SessionConfig{})

	require.ErrorIs(t, err, common.ErrSessionTimeout)
}

func TestYiviWidget_BackendErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := newWidget(&fakeBackend{startErr: boom}, &recordingPresenter{}).Start(context.Background(), SessionConfig{})
	require.ErrorIs(t, err, boom)

	srv, _ := yiviServer(t, "DONE")
	backend := &fakeBackend{sessionURL: srv.URL + "/irma/session/abc", resultErr: client.ErrUnavailable}
	_, err = newWidget(backend, &recordingPresenter{}).Start(context.Background(), SessionConfig{})
	require.ErrorIs(t, err, client.ErrUnavailable)
}

func TestYiviWidget_YiviServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	backend := &fakeBackend{sessionURL: url + "/irma/session/abc"}

	_, err := newWidget(backend, &recordingPresenter{}).Start(context.Background(), SessionConfig{})

	require.ErrorIs(t, err, client.ErrUnavailable)
}

func TestTextPresenter(t *testing.T) {
	var buf bytes.Buffer
	p := NewTextPresenter(&buf)

	require.NoError(t, p.Present(context.Background(), client.SessionPointer{URL: "https://yivi.example/irma/session/abc", Type: "disclosing"}, "nl"))
	p.Progress(StatusConnected)

	out := buf.String()
	assert.Contains(t, out, "Open deze link")
	assert.Contains(t, out, "https://irma.app/-/session#")
	assert.Contains(t, out, "Yivi-app verbonden")
	assert.True(t, strings.Contains(out, "%22irmaqr%22:%22disclosing%22"), out)
}

func TestStatusFinal(t *testing.T) {
	assert.True(t, StatusDone.Final())
	assert.True(t, StatusCancelled.Final())
	assert.True(t, StatusTimeout.Final())
	assert.False(t, StatusConnected.Final())
	assert.False(t, StatusPairing.Final())
}
