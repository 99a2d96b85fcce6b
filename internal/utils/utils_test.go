package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExpandHome tests home directory expansion.
func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "tilde only",
			path:     "~",
			expected: home,
		},
		{
			name:     "tilde with subpath",
			path:     "~/state/profile",
			expected: filepath.Join(home, "state", "profile"),
		},
		{
			name:     "absolute path",
			path:     "/var/lib/profile",
			expected: "/var/lib/profile",
		},
		{
			name:     "tilde in the middle",
			path:     "/tmp/~user",
			expected: "/tmp/~user",
		},
		{
			name:     "empty path",
			path:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ExpandHome(tt.path))
		})
	}
}

// TestContainsAnyFold tests case-insensitive substring matching.
func TestContainsAnyFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		s          string
		substrings []string
		expected   bool
	}{
		{
			name:       "match ignoring case",
			s:          "uid-login.windows.net-AccessToken-client",
			substrings: []string{"accesstoken"},
			expected:   true,
		},
		{
			name:       "second substring matches",
			s:          "msal.token.keys.client",
			substrings: []string{"idtoken", "msal.token.keys"},
			expected:   true,
		},
		{
			name:       "empty substring never matches",
			s:          "anything",
			substrings: []string{""},
			expected:   false,
		},
		{
			name:       "no substrings",
			s:          "anything",
			substrings: nil,
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ContainsAnyFold(tt.s, tt.substrings...))
		})
	}
}

// TestHostMatches tests URL host matching against a domain.
func TestHostMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		domain   string
		expected bool
	}{
		{
			name:     "exact host",
			url:      "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			domain:   "login.microsoftonline.com",
			expected: true,
		},
		{
			name:     "subdomain",
			url:      "https://teams.microsoft.com/v2/",
			domain:   "microsoft.com",
			expected: true,
		},
		{
			name:     "domain only in query string",
			url:      "https://evil.example.com/?next=https://teams.microsoft.com",
			domain:   "teams.microsoft.com",
			expected: false,
		},
		{
			name:     "suffix without dot",
			url:      "https://notteams.microsoft.com.evil.com/",
			domain:   "teams.microsoft.com",
			expected: false,
		},
		{
			name:     "navigating sentinel",
			url:      "navigating",
			domain:   "teams.microsoft.com",
			expected: false,
		},
		{
			name:     "case-insensitive host",
			url:      "https://Teams.Microsoft.com/v2",
			domain:   "teams.microsoft.com",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, HostMatches(tt.url, tt.domain))
		})
	}
}

// TestDedupe tests that duplicates and blanks are removed while keeping order.
func TestDedupe(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"login.microsoftonline.com", "login.live.com"},
		Dedupe([]string{" login.microsoftonline.com", "", "login.live.com", "login.microsoftonline.com"}))
}
