package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/teams-token-grabber/internal/browser"
	"github.com/oshokin/teams-token-grabber/internal/config"
	"github.com/oshokin/teams-token-grabber/internal/service/auth"
)

// observingLauncher replays token endpoint responses through the run's observer on launch.
type observingLauncher struct {
	observer  browser.ResponseObserver
	session   *fakeSession
	responses []browser.Response
	err       error
}

func (l *observingLauncher) Launch(ctx context.Context, _ auth.RunConfig) (auth.Session, error) {
	if l.err != nil {
		return nil, l.err
	}

	for _, response := range l.responses {
		if l.observer.Wants(response.URL) {
			l.observer.ObserveResponse(ctx, response)
		}
	}

	return l.session, nil
}

func serviceConfig(t *testing.T, timeout, pollInterval string) *config.Config {
	t.Helper()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	cfg.ProfileDir = t.TempDir()
	cfg.Timeout = timeout
	cfg.PollInterval = pollInterval

	require.NoError(t, config.ValidateConfig(cfg))

	return cfg
}

// TestService_Acquire tests that network and storage strategies are wired into one run.
func TestService_Acquire(t *testing.T) {
	t.Parallel()

	cfg := serviceConfig(t, "5s", "10ms")
	skype := realToken("s")

	session := &fakeSession{
		urls: []string{testAppPageURL},
		storage: []browser.StorageEntry{
			credentialEntry(browser.AreaLocal, "uid-login.windows.net-accesstoken-c-t-chat", realToken("c"),
				"https://chatsvcagg.teams.microsoft.com/.default"),
			credentialEntry(browser.AreaLocal, "uid-login.windows.net-accesstoken-c-t-graph", realToken("g"),
				"https://graph.microsoft.com/.default"),
			credentialEntry(browser.AreaSession, "uid-login.windows.net-accesstoken-c-t-presence", realToken("p"),
				"https://presence.teams.microsoft.com/.default"),
		},
	}

	launcher := &observingLauncher{
		session: session,
		responses: []browser.Response{
			{
				URL:    testTokenEndpoint,
				Status: 200,
				Body: tokenBody(skype,
					`,"expires_in":"4199","scope":"https://api.spaces.skype.com/.default openid"`),
			},
			{
				URL:    "https://teams.microsoft.com/api/authsvc/v1.0/authz",
				Status: 200,
				Body:   tokenBody(realToken("x"), `,"scope":"https://api.spaces.skype.com/.default"`),
			},
		},
	}

	service := auth.NewService(cfg, func(observer browser.ResponseObserver) auth.Launcher {
		launcher.observer = observer

		return launcher
	})

	outcome, err := service.Acquire(context.Background(), auth.NewRunConfig(cfg))
	require.NoError(t, err)

	assert.Equal(t, auth.StatusSucceeded, outcome.Status)
	assert.Equal(t, 1, outcome.Ticks)
	assert.Equal(t, skype, outcome.Tokens["skype"])
	assert.ElementsMatch(t, cfg.Catalog.Names(), keys(outcome.Tokens))
	assert.InDelta(t, (4199 * time.Second).Seconds(), outcome.ExpiresIn.Seconds(), 1)
	assert.Equal(t, []string{cfg.AppURL}, session.navigations)
	assert.Equal(t, 1, session.closes)
}

// TestService_AcquireTimesOut tests a run that never sees the application.
func TestService_AcquireTimesOut(t *testing.T) {
	t.Parallel()

	cfg := serviceConfig(t, "30ms", "10ms")
	session := &fakeSession{urls: []string{testLoginPageURL}}

	service := auth.NewService(cfg, func(observer browser.ResponseObserver) auth.Launcher {
		return &observingLauncher{observer: observer, session: session}
	})

	run := auth.NewRunConfig(cfg)
	run.Headless = true

	outcome, err := service.Acquire(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, auth.StatusTimedOut, outcome.Status)
	assert.False(t, outcome.Interrupted)
	assert.False(t, outcome.Recovered)
	assert.Empty(t, outcome.Tokens)
	assert.Equal(t, 1, session.closes)
}

// TestService_AcquireLaunchFailure tests that a browser that cannot start is an error.
func TestService_AcquireLaunchFailure(t *testing.T) {
	t.Parallel()

	cfg := serviceConfig(t, "1s", "10ms")

	service := auth.NewService(cfg, func(observer browser.ResponseObserver) auth.Launcher {
		return &observingLauncher{observer: observer, err: browser.ErrProfileLocked}
	})

	_, err := service.Acquire(context.Background(), auth.NewRunConfig(cfg))
	require.ErrorIs(t, err, browser.ErrProfileLocked)
}

// TestNewRunConfig tests the mapping from configuration to run parameters.
func TestNewRunConfig(t *testing.T) {
	t.Parallel()

	cfg := serviceConfig(t, "90s", "1s")
	cfg.Headless = true
	cfg.ForceFresh = true

	assert.Equal(t, auth.RunConfig{
		Timeout:    90 * time.Second,
		Headless:   true,
		ForceFresh: true,
		ProfileDir: cfg.ResolvedProfileDir,
	}, auth.NewRunConfig(cfg))
}

// TestHostLaunchers tests that a failed launch never yields a typed nil session.
func TestHostLaunchers(t *testing.T) {
	t.Parallel()

	cfg := serviceConfig(t, "1s", "10ms")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	launcher := auth.HostLaunchers(browser.NewHost(cfg, nil))(nil)

	session, err := launcher.Launch(ctx, auth.NewRunConfig(cfg))
	require.ErrorIs(t, err, browser.ErrProfileLocked)
	assert.True(t, session == nil, "session must be an untyped nil")
}

func keys[M ~map[string]V, V any](m M) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	return names
}
