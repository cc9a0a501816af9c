package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/yiviportal/internal/common"
	"github.com/dmitrijs2005/yiviportal/internal/logging"
)

// KVStore is the persistence the cookie jar writes through to.
// metadata.Repository satisfies it.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

func (sc storedCookie) cookie() *http.Cookie {
	return &http.Cookie{
		Name:     sc.Name,
		Value:    sc.Value,
		Path:     sc.Path,
		Domain:   sc.Domain,
		Expires:  sc.Expires,
		Secure:   sc.Secure,
		HttpOnly: sc.HttpOnly,
	}
}

// PersistentJar is an http.CookieJar for the API origin whose cookies
// survive restarts. It keeps the refresh cookie the backend sets at login,
// the way a browser would.
type PersistentJar struct {
	origin *url.URL
	store  KVStore
	logger logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	jar     *cookiejar.Jar
	cookies map[string]storedCookie
}

// NewPersistentJar loads previously stored cookies for origin.
func NewPersistentJar(ctx context.Context, origin *url.URL, store KVStore, logger logging.Logger) (*PersistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &PersistentJar{
		origin:  origin,
		store:   store,
		logger:  logger.With("component", "cookiejar"),
		now:     time.Now,
		jar:     jar,
		cookies: map[string]storedCookie{},
	}

	raw, err := store.Get(ctx, common.CookiesStorageKey)
	if err != nil {
		return nil, fmt.Errorf("load cookies: %w", err)
	}
	if len(raw) == 0 {
		return j, nil
	}

	var saved []storedCookie
	if err := json.Unmarshal(raw, &saved); err != nil {
		j.logger.Warn(ctx, "discarding unreadable stored cookies", "error", err)
		return j, nil
	}
	restored := make([]*http.Cookie, 0, len(saved))
	for _, sc := range saved {
		if !sc.Expires.IsZero() && !sc.Expires.After(j.now()) {
			continue
		}
		j.cookies[sc.Name] = sc
		restored = append(restored, sc.cookie())
	}
	j.jar.SetCookies(origin, restored)
	return j, nil
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// SetCookies records cookies from responses of the API origin and writes
// them through to the store. Persistence errors are logged.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	j.jar.SetCookies(u, cookies)
	if u.Host != j.origin.Host {
		j.mu.Unlock()
		return
	}
	for _, c := range cookies {
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = j.now().Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || (!expires.IsZero() && !expires.After(j.now())) {
			delete(j.cookies, c.Name)
			continue
		}
		j.cookies[c.Name] = storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
	}
	snapshot := j.snapshotLocked()
	j.mu.Unlock()

	ctx := context.Background()
	if err := j.persist(ctx, snapshot); err != nil {
		j.logger.Error(ctx, "persisting cookies failed", "error", err)
	}
}

func (j *PersistentJar) snapshotLocked() []storedCookie {
	out := make([]storedCookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		out = append(out, c)
	}
	return out
}

func (j *PersistentJar) persist(ctx context.Context, cookies []storedCookie) error {
	if len(cookies) == 0 {
		return j.store.Delete(ctx, common.CookiesStorageKey)
	}
	b, err := json.Marshal(cookies)
	if err != nil {
		return err
	}
	return j.store.Set(ctx, common.CookiesStorageKey, b)
}

// Clear forgets every cookie, in memory and in the store.
func (j *PersistentJar) Clear(ctx context.Context) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.jar = jar
	j.cookies = map[string]storedCookie{}
	j.mu.Unlock()
	return j.store.Delete(ctx, common.CookiesStorageKey)
}
