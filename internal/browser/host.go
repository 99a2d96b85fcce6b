package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/gofrs/flock"

	"github.com/oshokin/teams-token-grabber/internal/config"
	"github.com/oshokin/teams-token-grabber/internal/constants"
	"github.com/oshokin/teams-token-grabber/internal/logger"
	"github.com/oshokin/teams-token-grabber/internal/utils"
)

// browserSlowMotionDelay is the delay between browser actions when tracing in debug mode.
const browserSlowMotionDelay = 200 * time.Millisecond

// Host launches browser sessions on a persistent profile.
type Host struct {
	browserPath       string
	navigationTimeout time.Duration
	userAgentProvider utils.UserAgentProvider
}

// NewHost creates a session host from the configuration.
// A nil userAgentProvider falls back to the configured or default User-Agent.
func NewHost(cfg *config.Config, userAgentProvider utils.UserAgentProvider) *Host {
	if userAgentProvider == nil {
		userAgentProvider = utils.NewSimpleUserAgentProvider(cfg.UserAgent)
	}

	return &Host{
		browserPath:       strings.TrimSpace(cfg.BrowserPath),
		navigationTimeout: cfg.ParsedNavigationTimeout,
		userAgentProvider: userAgentProvider,
	}
}

// Launch starts Chrome on opts.ProfileDir and returns a session bound to a stealth page.
// On failure everything acquired so far is released.
//
//nolint:funlen // Launch is a linear sequence of acquisition steps with rollback.
func (h *Host) Launch(ctx context.Context, opts LaunchOptions) (*Session, error) {
	ctx = logger.WithName(ctx, "browser")

	lock, err := lockProfile(ctx, opts.ProfileDir)
	if err != nil {
		return nil, err
	}

	s := newSession(ctx, h.navigationTimeout, lock)

	if opts.ForceFresh {
		logger.Infof(ctx, "Removing browser profile %s", opts.ProfileDir)

		if err = removeProfileDir(opts.ProfileDir); err != nil {
			logger.Warnf(ctx, "Could not remove browser profile, continuing with the existing one: %v", err)
		}
	}

	if err = os.MkdirAll(opts.ProfileDir, constants.PrivateFolderPermissions); err != nil {
		s.closeQuietly()

		return nil, fmt.Errorf("%w: failed to create profile directory: %w", ErrLaunchFailed, err)
	}

	s.launcher = h.newLauncher(ctx, opts)

	controlURL, err := s.launcher.Launch()
	if err != nil {
		s.closeQuietly()

		return nil, fmt.Errorf("%w: %w", ErrLaunchFailed, err)
	}

	logger.Debugf(ctx, "Browser launched at: %s", controlURL)

	browserInstance := rod.New().ControlURL(controlURL).Context(s.ctx)

	if logger.IsDebugLevel() {
		browserInstance = browserInstance.
			Trace(true).
			SlowMotion(browserSlowMotionDelay)
	}

	if err = browserInstance.Connect(); err != nil {
		s.closeQuietly()

		return nil, fmt.Errorf("%w: failed to connect: %w", ErrLaunchFailed, err)
	}

	s.browser = browserInstance

	page, err := stealth.Page(browserInstance)
	if err != nil {
		s.closeQuietly()

		return nil, fmt.Errorf("%w: failed to open page: %w", ErrLaunchFailed, err)
	}

	s.page = page

	if opts.Headless {
		userAgent := h.userAgentProvider.GetUserAgent()
		if err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
			logger.Warnf(ctx, "Failed to override User-Agent: %v", err)
		}
	}

	if opts.Observer != nil {
		if err = s.interceptResponses(opts.Observer); err != nil {
			s.closeQuietly()

			return nil, fmt.Errorf("%w: failed to enable network interception: %w", ErrLaunchFailed, err)
		}
	}

	logger.InfoKV(ctx, "Browser session started",
		"profile", opts.ProfileDir,
		"headless", opts.Headless)

	return s, nil
}

func (h *Host) newLauncher(ctx context.Context, opts LaunchOptions) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		UserDataDir(opts.ProfileDir).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled")

	switch {
	case h.browserPath != "":
		logger.Debugf(ctx, "Using configured browser at: %s", h.browserPath)

		l = l.Bin(h.browserPath)
	default:
		if chromePath, exists := launcher.LookPath(); exists {
			logger.Debugf(ctx, "Using system Chrome installation at: %s", chromePath)

			l = l.Bin(chromePath)
		} else {
			logger.Info(ctx, "System Chrome not found, downloading Chromium")
		}
	}

	return l
}

// closeQuietly closes a partially acquired session, logging instead of returning errors.
func (s *Session) closeQuietly() {
	if err := s.Close(); err != nil {
		logger.Debugf(s.ctx, "Browser teardown error: %v", err)
	}
}

// unlock releases the profile lock, if held.
func unlock(ctx context.Context, lock *flock.Flock) {
	if lock == nil {
		return
	}

	if err := lock.Unlock(); err != nil {
		logger.Debugf(ctx, "Failed to release profile lock: %v", err)
	}
}
