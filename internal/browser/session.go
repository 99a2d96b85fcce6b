package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/gofrs/flock"

	"github.com/oshokin/teams-token-grabber/internal/logger"
)

// storageSnapshotJS lists every entry of localStorage and sessionStorage.
// Storage access throws on opaque origins (about:blank, error pages), which yields an empty area.
const storageSnapshotJS = `() => {
	const out = [];
	const read = (area, store) => {
		try {
			for (let i = 0; i < store.length; i++) {
				const key = store.key(i);
				out.push({ area, key, value: store.getItem(key) || "" });
			}
		} catch (e) {}
	};
	read("local", window.localStorage);
	read("session", window.sessionStorage);
	return out;
}`

// removeStorageKeysJS deletes the given keys from both storage areas.
const removeStorageKeysJS = `(keys) => {
	for (const key of keys) {
		try { window.localStorage.removeItem(key); } catch (e) {}
		try { window.sessionStorage.removeItem(key); } catch (e) {}
	}
	return keys.length;
}`

// Session is one stealth page on a launched browser.
type Session struct {
	ctx               context.Context //nolint:containedctx // Session-scoped context cancelled by Close.
	cancel            context.CancelFunc
	navigationTimeout time.Duration
	lock              *flock.Flock
	launcher          *launcher.Launcher
	browser           *rod.Browser
	page              *rod.Page
	// listeners tracks the event loop and body fetches started by interceptResponses.
	listeners sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

func newSession(ctx context.Context, navigationTimeout time.Duration, lock *flock.Flock) *Session {
	// The session outlives the launch call, but keeps its logger fields.
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	return &Session{
		ctx:               sessionCtx,
		cancel:            cancel,
		navigationTimeout: navigationTimeout,
		lock:              lock,
		closed:            make(chan struct{}),
	}
}

// Navigate opens url and waits for DOMContentLoaded.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.navigate(ctx, func(page *rod.Page) error {
		return page.Navigate(url)
	})
}

// Reload reloads the page and waits for DOMContentLoaded.
func (s *Session) Reload(ctx context.Context) error {
	return s.navigate(ctx, func(page *rod.Page) error {
		return page.Reload()
	})
}

func (s *Session) navigate(ctx context.Context, action func(page *rod.Page) error) (err error) {
	page, err := s.livePage()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("navigation aborted: %v", r) //nolint:err113 // Panic payloads have no sentinel.
		}
	}()

	navCtx, cancel := context.WithTimeout(ctx, s.navigationTimeout)
	defer cancel()

	navPage := page.Context(navCtx)
	wait := navPage.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)

	if err = action(navPage); err != nil {
		return err
	}

	wait()

	if errors.Is(navCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w after %s", ErrNavigationTimeout, s.navigationTimeout)
	}

	return ctx.Err()
}

// CurrentURL returns the page URL, or NavigatingURL when it cannot be read.
func (s *Session) CurrentURL(ctx context.Context) (currentURL string) {
	page, err := s.livePage()
	if err != nil {
		return NavigatingURL
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "CurrentURL panic recovered: %v", r)

			currentURL = NavigatingURL
		}
	}()

	info, err := page.Context(ctx).Info()
	if err != nil || info == nil || info.URL == "" {
		return NavigatingURL
	}

	return info.URL
}

// StorageEntries snapshots localStorage and sessionStorage of the current document.
func (s *Session) StorageEntries(ctx context.Context) (entries []StorageEntry, err error) {
	page, err := s.livePage()
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			entries, err = nil, fmt.Errorf("storage snapshot aborted: %v", r) //nolint:err113 // Panic payloads have no sentinel.
		}
	}()

	result, err := page.Context(ctx).Eval(storageSnapshotJS)
	if err != nil {
		return nil, fmt.Errorf("failed to read web storage: %w", err)
	}

	raw, err := result.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode web storage snapshot: %w", err)
	}

	return parseStorageSnapshot(raw)
}

// RemoveStorageKeys deletes keys from localStorage and sessionStorage.
func (s *Session) RemoveStorageKeys(ctx context.Context, keys []string) (err error) {
	if len(keys) == 0 {
		return nil
	}

	page, err := s.livePage()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("storage removal aborted: %v", r) //nolint:err113 // Panic payloads have no sentinel.
		}
	}()

	if _, err = page.Context(ctx).Eval(removeStorageKeysJS, keys); err != nil {
		return fmt.Errorf("failed to remove web storage keys: %w", err)
	}

	return nil
}

// Close tears the session down. It is safe to call more than once and from any goroutine.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)

		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				s.closeErr = fmt.Errorf("failed to close browser: %w", err)
			}
		}

		s.cancel()

		if s.launcher != nil {
			s.launcher.Kill()
		}

		s.listeners.Wait()

		unlock(s.ctx, s.lock)

		logger.Debug(s.ctx, "Browser session closed")
	})

	return s.closeErr
}

func (s *Session) livePage() (*rod.Page, error) {
	select {
	case <-s.closed:
		return nil, ErrSessionClosed
	default:
	}

	if s.page == nil {
		return nil, ErrSessionClosed
	}

	return s.page, nil
}

func parseStorageSnapshot(raw []byte) ([]StorageEntry, error) {
	var entries []StorageEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode web storage snapshot: %w", err)
	}

	return entries, nil
}
