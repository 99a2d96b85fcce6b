package auth

import (
	"context"
	"time"

	"github.com/oshokin/teams-token-grabber/internal/browser"
	"github.com/oshokin/teams-token-grabber/internal/token"
)

//go:generate $MOCKGEN -source=session.go -destination=mocks/session_mock.go

// Session is the page handle the controller borrows from the session host.
type Session interface {
	// Navigate opens url and waits for the document to become interactive.
	Navigate(ctx context.Context, url string) error
	// CurrentURL returns the page URL, or browser.NavigatingURL mid-navigation.
	CurrentURL(ctx context.Context) string
	// StorageEntries snapshots the page's web storage.
	StorageEntries(ctx context.Context) ([]browser.StorageEntry, error)
	// RemoveStorageKeys deletes keys from the page's web storage.
	RemoveStorageKeys(ctx context.Context, keys []string) error
	// Reload reloads the page.
	Reload(ctx context.Context) error
	// Close tears the session down. It must be idempotent.
	Close() error
}

// Launcher acquires a session for one run.
type Launcher interface {
	// Launch starts a browser session according to cfg.
	Launch(ctx context.Context, cfg RunConfig) (Session, error)
}

// Strategy reads candidate tokens from a live session.
// Extract never fails: anything it cannot read is simply not in the result.
type Strategy interface {
	// Name identifies the strategy in diagnostics.
	Name() string
	// Extract returns the tokens observed in the session.
	Extract(ctx context.Context, session Session) token.Set
}

// Resetter is implemented by strategies that keep state between ticks.
type Resetter interface {
	// Reset forgets everything captured so far.
	Reset()
}

// ExpiryHinter is implemented by strategies that learn when the tokens they captured expire.
type ExpiryHinter interface {
	// Expiry returns when value, captured for the scope name, expires.
	// It reports false when the strategy did not capture value for name or never learned its lifetime.
	Expiry(name, value string) (time.Time, bool)
}

// RunConfig is the immutable configuration of one acquisition run.
type RunConfig struct {
	// Timeout is the run deadline measured from the start of the launch.
	Timeout time.Duration
	// Headless runs without a browser window.
	Headless bool
	// ForceFresh deletes the browser profile before launching.
	ForceFresh bool
	// ProfileDir is the persistent browser profile directory.
	ProfileDir string
}
