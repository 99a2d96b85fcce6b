package auth

import (
	"context"

	"github.com/oshokin/teams-token-grabber/internal/browser"
	"github.com/oshokin/teams-token-grabber/internal/config"
	"github.com/oshokin/teams-token-grabber/internal/logger"
	"github.com/oshokin/teams-token-grabber/internal/token"
)

// Service acquires a complete token set from a browser session.
type Service interface {
	// Acquire runs one acquisition and returns its outcome.
	Acquire(ctx context.Context, run RunConfig) (Outcome, error)
}

// LauncherFactory builds the launcher of one run around the run's response observer.
type LauncherFactory func(observer browser.ResponseObserver) Launcher

// ServiceImpl wires the configured strategies, recovery and controller together.
type ServiceImpl struct {
	cfg         *config.Config
	newLauncher LauncherFactory
	reporter    func() Reporter
}

// NewService creates the acquisition service.
func NewService(cfg *config.Config, newLauncher LauncherFactory) *ServiceImpl {
	return &ServiceImpl{
		cfg:         cfg,
		newLauncher: newLauncher,
		reporter: func() Reporter {
			return NewLogReporter()
		},
	}
}

// NewRunConfig returns the run configuration described by cfg.
func NewRunConfig(cfg *config.Config) RunConfig {
	return RunConfig{
		Timeout:    cfg.ParsedTimeout,
		Headless:   cfg.Headless,
		ForceFresh: cfg.ForceFresh,
		ProfileDir: cfg.ResolvedProfileDir,
	}
}

// Acquire implements Service.
func (s *ServiceImpl) Acquire(ctx context.Context, run RunConfig) (Outcome, error) {
	ctx = logger.WithName(ctx, "auth")

	looksReal := s.cfg.Validator().LooksLikeRealToken
	interceptor := NewInterceptor(s.cfg.TokenEndpointMarkers, s.cfg.Catalog, looksReal)

	strategies := []Strategy{
		interceptor,
		NewStorageScan(s.cfg.TokenCacheMarker, s.cfg.Catalog, looksReal),
		NewLegacyScan(s.cfg.TokenCacheMarker, s.cfg.LegacyAuthority, s.cfg.Catalog, looksReal),
	}

	controller := NewController(
		ControllerConfig{
			AppURL:         s.cfg.AppURL,
			AppDomain:      s.cfg.AppDomain,
			LoginDomains:   s.cfg.LoginDomains,
			PollInterval:   s.cfg.ParsedPollInterval,
			StaleThreshold: s.cfg.StaleThreshold,
		},
		s.newLauncher(interceptor),
		strategies,
		token.NewOracle(s.cfg.Catalog, looksReal),
		NewRecovery(s.cfg.PurgeKeyPatterns),
		WithReporter(s.reporter()),
	)

	logger.InfoKV(ctx, "Acquiring tokens",
		"scopes", s.cfg.Catalog.Names(),
		"headless", run.Headless,
		"timeout", run.Timeout.String())

	return controller.Run(ctx, run)
}

// HostLaunchers returns a LauncherFactory backed by the browser host.
func HostLaunchers(host *browser.Host) LauncherFactory {
	return func(observer browser.ResponseObserver) Launcher {
		return &hostLauncher{
			host:     host,
			observer: observer,
		}
	}
}

type hostLauncher struct {
	host     *browser.Host
	observer browser.ResponseObserver
}

// Launch implements Launcher.
func (l *hostLauncher) Launch(ctx context.Context, cfg RunConfig) (Session, error) {
	session, err := l.host.Launch(ctx, browser.LaunchOptions{
		ProfileDir: cfg.ProfileDir,
		Headless:   cfg.Headless,
		ForceFresh: cfg.ForceFresh,
		Observer:   l.observer,
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}
