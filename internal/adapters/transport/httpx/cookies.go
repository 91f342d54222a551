package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"time"

	"github.com/codex-platform/codex-cli/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

const cookieSnapshotVersion = 1

type cookieSnapshot struct {
	Version int            `toml:"version"`
	Cookies []cookieRecord `toml:"cookies"`
}

type cookieRecord struct {
	Name    string `toml:"name"`
	Value   string `toml:"value"`
	Path    string `toml:"path"`
	Expires string `toml:"expires,omitempty"`
}

type cookieKey struct {
	name string
	path string
}

func (r cookieRecord) expired(now time.Time) bool {
	if r.Expires == "" {
		return false
	}
	expires, err := time.Parse(time.RFC3339, r.Expires)
	if err != nil {
		return true
	}
	return !expires.After(now)
}

func (r cookieRecord) cookie() *http.Cookie {
	cookie := &http.Cookie{Name: r.Name, Value: r.Value, Path: r.Path}
	if expires, err := time.Parse(time.RFC3339, r.Expires); err == nil {
		cookie.Expires = expires
	}
	return cookie
}

// storeCookies applies a response's Set-Cookie answers to jar and persists the
// resulting snapshot. Answers to requests sent before the last
// ForgetCredentials are dropped.
func (t *Transport) storeCookies(ctx context.Context, generation uint64, jar *cookiejar.Jar, endpoint *url.URL, cookies []*http.Cookie) error {
	t.saveMu.Lock()
	defer t.saveMu.Unlock()

	snapshot, ok := t.remember(generation, cookies)
	if !ok {
		t.logger.Debug().Msg("discarding cookies from a response to a forgotten session")
		return nil
	}
	jar.SetCookies(endpoint, cookies)

	return t.saveCookies(ctx, snapshot)
}

// remember folds Set-Cookie answers into the known set, dropping deletions, and
// returns the resulting snapshot. ok is false when generation is stale. Caller
// must not hold t.mu.
func (t *Transport) remember(generation uint64, cookies []*http.Cookie) (snapshot cookieSnapshot, ok bool) {
	now := t.now()

	t.mu.Lock()
	if generation != t.generation {
		t.mu.Unlock()
		return cookieSnapshot{}, false
	}
	for _, cookie := range cookies {
		path := cookie.Path
		if path == "" {
			path = "/"
		}
		key := cookieKey{name: cookie.Name, path: path}

		if cookie.MaxAge < 0 || (!cookie.Expires.IsZero() && !cookie.Expires.After(now)) {
			delete(t.known, key)
			continue
		}

		record := cookieRecord{Name: cookie.Name, Value: cookie.Value, Path: path}
		switch {
		case cookie.MaxAge > 0:
			record.Expires = now.Add(time.Duration(cookie.MaxAge) * time.Second).UTC().Format(time.RFC3339)
		case !cookie.Expires.IsZero():
			record.Expires = cookie.Expires.UTC().Format(time.RFC3339)
		}
		t.known[key] = record
	}
	t.mu.Unlock()

	return t.snapshot(), true
}

func (t *Transport) snapshot() cookieSnapshot {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := cookieSnapshot{Version: cookieSnapshotVersion}
	for _, record := range t.known {
		if !record.expired(now) {
			snapshot.Cookies = append(snapshot.Cookies, record)
		}
	}
	sort.Slice(snapshot.Cookies, func(i, j int) bool {
		a, b := snapshot.Cookies[i], snapshot.Cookies[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Path < b.Path
	})

	return snapshot
}

// restoreCookies loads the persisted snapshot into the jar. Caller holds t.mu.
func (t *Transport) restoreCookies(ctx context.Context) error {
	if t.secrets == nil {
		return nil
	}

	raw, err := t.secrets.Get(ctx, CookieSecretKey)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return nil
		}
		return fmt.Errorf("load session cookies: %w", err)
	}

	var snapshot cookieSnapshot
	if err := toml.Unmarshal([]byte(raw), &snapshot); err != nil {
		t.logger.Warn().Err(err).Msg("discarding unreadable session cookies")
		return nil
	}
	if snapshot.Version > cookieSnapshotVersion {
		return fmt.Errorf("unsupported cookie snapshot version %d (current %d)", snapshot.Version, cookieSnapshotVersion)
	}

	now := t.now()
	cookies := make([]*http.Cookie, 0, len(snapshot.Cookies))
	for _, record := range snapshot.Cookies {
		if record.Name == "" || record.expired(now) {
			continue
		}
		if record.Path == "" {
			record.Path = "/"
		}
		t.known[cookieKey{name: record.Name, path: record.Path}] = record
		cookies = append(cookies, record.cookie())
	}
	if len(cookies) > 0 {
		t.jar.SetCookies(t.baseURL, cookies)
	}

	return nil
}

func (t *Transport) saveCookies(ctx context.Context, snapshot cookieSnapshot) error {
	if t.secrets == nil {
		return nil
	}
	if len(snapshot.Cookies) == 0 {
		return t.secrets.Delete(ctx, CookieSecretKey)
	}

	data, err := toml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode session cookies: %w", err)
	}

	return t.secrets.Put(ctx, CookieSecretKey, string(data))
}
