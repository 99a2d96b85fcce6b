package browser

import (
	"context"
	"errors"
)

// NavigatingURL is returned by Session.CurrentURL while the page has no stable URL.
const NavigatingURL = "navigating"

// Storage areas reported in StorageEntry.Area.
const (
	AreaLocal   = "local"
	AreaSession = "session"
)

var (
	// ErrLaunchFailed is returned when the browser process cannot be started or connected to.
	ErrLaunchFailed = errors.New("failed to launch browser")
	// ErrProfileLocked is returned when another run holds the profile directory.
	ErrProfileLocked = errors.New("browser profile is in use by another run")
	// ErrSessionClosed is returned by page operations after Close.
	ErrSessionClosed = errors.New("browser session is closed")
	// ErrNavigationTimeout is returned when a page does not reach DOMContentLoaded in time.
	ErrNavigationTimeout = errors.New("navigation timed out")
)

// LaunchOptions is the per-run launch configuration.
type LaunchOptions struct {
	// ProfileDir is the persistent Chrome user data directory.
	ProfileDir string
	// Headless starts Chrome without a window.
	Headless bool
	// ForceFresh deletes ProfileDir before launching.
	ForceFresh bool
	// Observer receives token-endpoint responses. Nil disables interception.
	Observer ResponseObserver
}

// StorageEntry is one key/value pair read from web storage.
type StorageEntry struct {
	// Area is AreaLocal or AreaSession.
	Area string `json:"area"`
	// Key is the storage key.
	Key string `json:"key"`
	// Value is the raw stored string.
	Value string `json:"value"`
}

// Response is a completed network response handed to a ResponseObserver.
type Response struct {
	// URL is the request URL.
	URL string
	// Status is the HTTP status code.
	Status int
	// Body is the decoded response body.
	Body []byte
}

// ResponseObserver receives network responses of interest.
// ObserveResponse is called from a background goroutine and must be safe for concurrent use.
type ResponseObserver interface {
	// Wants reports whether the response body of url should be fetched.
	Wants(url string) bool
	// ObserveResponse handles a fetched response.
	ObserveResponse(ctx context.Context, response Response)
}
