package tokenstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/pkg/logger"
)

const cookieKeyPrefix = "cookie:"

type persistedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

// Jar is an http.CookieJar that also writes the named cookies (the refresh
// cookie) through a Store so the session survives a restart.
type Jar struct {
	mu      sync.Mutex
	inner   *cookiejar.Jar
	store   Store
	origin  *url.URL
	names   map[string]struct{}
	logg    *logger.Logger
	nowFunc func() time.Time
}

// NewJar builds the jar and restores persisted cookies for origin.
func NewJar(ctx context.Context, store Store, origin *url.URL, logg *logger.Logger, names ...string) (*Jar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if logg == nil {
		logg = logger.Nop()
	}
	j := &Jar{
		inner:   inner,
		store:   store,
		origin:  origin,
		names:   make(map[string]struct{}, len(names)),
		logg:    logg,
		nowFunc: time.Now,
	}
	for _, name := range names {
		j.names[name] = struct{}{}
	}
	if err := j.restore(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Jar) restore(ctx context.Context) error {
	for name := range j.names {
		raw, ok, err := j.store.Get(ctx, cookieKeyPrefix+name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		var pc persistedCookie
		if err := json.Unmarshal([]byte(raw), &pc); err != nil {
			_ = j.store.Delete(ctx, cookieKeyPrefix+name)
			continue
		}
		if !pc.Expires.IsZero() && !j.nowFunc().Before(pc.Expires) {
			_ = j.store.Delete(ctx, cookieKeyPrefix+name)
			continue
		}
		j.inner.SetCookies(j.origin, []*http.Cookie{{
			Name:     pc.Name,
			Value:    pc.Value,
			Path:     pc.Path,
			Domain:   pc.Domain,
			Expires:  pc.Expires,
			Secure:   pc.Secure,
			HttpOnly: pc.HttpOnly,
		}})
	}
	return nil
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)

	ctx := context.Background()
	for _, c := range cookies {
		if _, tracked := j.names[c.Name]; !tracked {
			continue
		}
		key := cookieKeyPrefix + c.Name
		if c.MaxAge < 0 || c.Value == "" || (!c.Expires.IsZero() && !j.nowFunc().Before(c.Expires)) {
			if err := j.store.Delete(ctx, key); err != nil {
				j.logg.Error(ctx, "cookie_jar.delete_failed", err)
			}
			continue
		}
		pc := persistedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if c.MaxAge > 0 {
			pc.Expires = j.nowFunc().Add(time.Duration(c.MaxAge) * time.Second)
		}
		raw, err := json.Marshal(pc)
		if err != nil {
			continue
		}
		if err := j.store.Set(ctx, key, string(raw)); err != nil {
			j.logg.Error(ctx, "cookie_jar.persist_failed", err)
		}
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// Clear forgets every cookie, persisted or not.
func (j *Jar) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	inner, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.inner = inner
	keys := make([]string, 0, len(j.names))
	for name := range j.names {
		keys = append(keys, cookieKeyPrefix+name)
	}
	return j.store.Delete(ctx, keys...)
}
