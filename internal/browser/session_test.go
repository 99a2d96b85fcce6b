package browser

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/teams-token-grabber/internal/config"
	"github.com/oshokin/teams-token-grabber/internal/constants"
	"github.com/oshokin/teams-token-grabber/internal/utils"
	mock_utils "github.com/oshokin/teams-token-grabber/internal/utils/mocks"
)

// TestParseStorageSnapshot tests decoding of the web storage snapshot.
func TestParseStorageSnapshot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		expected    []StorageEntry
		expectError bool
	}{
		{
			name: "both areas",
			raw:  `[{"area":"local","key":"msal.token.keys","value":"{}"},{"area":"session","key":"k","value":"v"}]`,
			expected: []StorageEntry{
				{Area: AreaLocal, Key: "msal.token.keys", Value: "{}"},
				{Area: AreaSession, Key: "k", Value: "v"},
			},
		},
		{
			name:     "empty storage",
			raw:      `[]`,
			expected: []StorageEntry{},
		},
		{
			name:        "not an array",
			raw:         `{"area":"local"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			entries, err := parseStorageSnapshot([]byte(tt.raw))
			if tt.expectError {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, entries)
		})
	}
}

// TestDecodeResponseBody tests plain and base64 response bodies.
func TestDecodeResponseBody(t *testing.T) {
	t.Parallel()

	plain, err := decodeResponseBody(`{"access_token":"x"}`, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"x"}`, string(plain))

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"expires_in":3599}`))
	decoded, err := decodeResponseBody(encoded, true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"expires_in":3599}`, string(decoded))

	_, err = decodeResponseBody("%%%", true)
	require.Error(t, err)
}

// TestLockProfile tests that a profile can be locked by one holder at a time.
func TestLockProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	profileDir := filepath.Join(t.TempDir(), "state", constants.ProfileFolderName)

	first, err := lockProfile(ctx, profileDir)
	require.NoError(t, err)
	assert.FileExists(t, ProfileLockPath(profileDir))

	_, err = lockProfile(ctx, profileDir)
	require.ErrorIs(t, err, ErrProfileLocked)

	require.NoError(t, first.Unlock())

	second, err := lockProfile(ctx, profileDir)
	require.NoError(t, err)
	require.NoError(t, second.Unlock())
}

// TestRemoveProfile tests profile deletion.
func TestRemoveProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	profileDir := filepath.Join(t.TempDir(), constants.ProfileFolderName)

	require.NoError(t, os.MkdirAll(filepath.Join(profileDir, "Default"), constants.PrivateFolderPermissions))
	require.NoError(t, os.WriteFile(
		filepath.Join(profileDir, "Default", "Cookies"), []byte("x"), constants.DefaultFilePermissions))

	require.NoError(t, RemoveProfile(ctx, profileDir))
	assert.NoDirExists(t, profileDir)

	// A missing profile is not an error.
	require.NoError(t, RemoveProfile(ctx, profileDir))
}

// TestRemoveProfile_Locked tests that a profile in use is never deleted.
func TestRemoveProfile_Locked(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	profileDir := filepath.Join(t.TempDir(), constants.ProfileFolderName)
	require.NoError(t, os.MkdirAll(profileDir, constants.PrivateFolderPermissions))

	lock, err := lockProfile(ctx, profileDir)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, lock.Unlock())
	}()

	require.ErrorIs(t, RemoveProfile(ctx, profileDir), ErrProfileLocked)
	assert.DirExists(t, profileDir)
}

// TestSession_CloseIsIdempotent tests that Close releases the lock once and can be repeated.
func TestSession_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	profileDir := filepath.Join(t.TempDir(), constants.ProfileFolderName)

	lock, err := lockProfile(ctx, profileDir)
	require.NoError(t, err)

	s := newSession(ctx, time.Second, lock)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.ctx.Err(), context.Canceled)
	assert.False(t, lock.Locked())

	// The profile is free for the next run.
	next, err := lockProfile(ctx, profileDir)
	require.NoError(t, err)
	require.NoError(t, next.Unlock())
}

// TestSession_ClosedOperations tests that page operations fail softly after Close.
func TestSession_ClosedOperations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newSession(ctx, time.Second, nil)
	require.NoError(t, s.Close())

	assert.Equal(t, NavigatingURL, s.CurrentURL(ctx))

	_, err := s.StorageEntries(ctx)
	require.ErrorIs(t, err, ErrSessionClosed)

	require.ErrorIs(t, s.RemoveStorageKeys(ctx, []string{"k"}), ErrSessionClosed)
	require.NoError(t, s.RemoveStorageKeys(ctx, nil))
	require.ErrorIs(t, s.Reload(ctx), ErrSessionClosed)
	require.ErrorIs(t, s.Navigate(ctx, "https://teams.microsoft.com/v2"), ErrSessionClosed)
}

// TestNewHost tests host construction from configuration.
func TestNewHost(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		BrowserPath:             " /usr/bin/chromium ",
		UserAgent:               "Custom/1.0",
		ParsedNavigationTimeout: 15 * time.Second,
	}

	host := NewHost(cfg, nil)
	assert.Equal(t, "/usr/bin/chromium", host.browserPath)
	assert.Equal(t, 15*time.Second, host.navigationTimeout)
	assert.Equal(t, "Custom/1.0", host.userAgentProvider.GetUserAgent())

	ctrl := gomock.NewController(t)
	provider := mock_utils.NewMockUserAgentProvider(ctrl)
	provider.EXPECT().GetUserAgent().Return(utils.DefaultUserAgent)

	host = NewHost(&config.Config{}, provider)
	assert.Equal(t, utils.DefaultUserAgent, host.userAgentProvider.GetUserAgent())
}

// TestHost_LauncherHonoursContext tests that cancellation aborts a launch still waiting for the browser.
func TestHost_LauncherHonoursContext(t *testing.T) {
	t.Parallel()

	// A stand-in browser that never announces its DevTools endpoint.
	browserPath := filepath.Join(t.TempDir(), "browser")
	//nolint:gosec // The stand-in must be executable.
	require.NoError(t, os.WriteFile(browserPath, []byte("#!/bin/sh\nexec sleep 30\n"), 0o700))

	host := NewHost(&config.Config{BrowserPath: browserPath}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	l := host.newLauncher(ctx, LaunchOptions{ProfileDir: t.TempDir(), Headless: true}).Leakless(false)

	_, err := l.Launch()
	require.ErrorIs(t, err, context.Canceled)

	l.Cleanup()
}
