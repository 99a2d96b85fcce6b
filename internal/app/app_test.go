package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/teams-token-grabber/internal/config"
	"github.com/oshokin/teams-token-grabber/internal/constants"
	"github.com/oshokin/teams-token-grabber/internal/service/auth"
	"github.com/oshokin/teams-token-grabber/internal/token"
)

type stubService struct {
	outcome auth.Outcome
	err     error
	runs    []auth.RunConfig
}

func (s *stubService) Acquire(_ context.Context, run auth.RunConfig) (auth.Outcome, error) {
	s.runs = append(s.runs, run)

	return s.outcome, s.err
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func testConfig(t *testing.T, format string) *config.Config {
	t.Helper()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	cfg.ProfileDir = filepath.Join(t.TempDir(), "profile")
	cfg.OutputFormat = format

	require.NoError(t, config.ValidateConfig(cfg))

	return cfg
}

func succeeded() auth.Outcome {
	return auth.Outcome{
		Status:    auth.StatusSucceeded,
		Tokens:    token.Set{"skype": "skype-token", "chat": "chat-token"},
		ExpiresIn: 3599 * time.Second,
		Ticks:     3,
	}
}

// TestExitCode tests the mapping of outcomes to exit codes.
func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		outcome  auth.Outcome
		expected int
	}{
		{name: "succeeded", outcome: auth.Outcome{Status: auth.StatusSucceeded}, expected: ExitCodeSuccess},
		{name: "timed out", outcome: auth.Outcome{Status: auth.StatusTimedOut}, expected: ExitCodeFailure},
		{
			name:     "interrupted",
			outcome:  auth.Outcome{Status: auth.StatusTimedOut, Interrupted: true},
			expected: ExitCodeFailure,
		},
		{
			name:     "session expired",
			outcome:  auth.Outcome{Status: auth.StatusSessionExpiredHeadless},
			expected: ExitCodeSessionExpired,
		},
		{name: "unknown", outcome: auth.Outcome{}, expected: ExitCodeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ExitCode(tt.outcome))
		})
	}
}

// TestNewPayload tests payload construction.
func TestNewPayload(t *testing.T) {
	t.Parallel()

	payload, err := NewPayload(succeeded())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"skype": "skype-token", "chat": "chat-token"}, payload.Tokens)
	assert.Equal(t, int64(3599), payload.ExpiresIn)

	_, err = NewPayload(auth.Outcome{Status: auth.StatusTimedOut, Tokens: token.Set{"skype": "x"}})
	require.ErrorIs(t, err, ErrUnsuccessfulOutcome)
}

// TestWritePayload tests both encodings.
func TestWritePayload(t *testing.T) {
	t.Parallel()

	payload := Payload{Tokens: map[string]string{"graph": "g", "skype": "s"}, ExpiresIn: 60}

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buffer bytes.Buffer
		require.NoError(t, WritePayload(&buffer, config.OutputFormatJSON, payload))
		assert.JSONEq(t, `{"tokens":{"graph":"g","skype":"s"},"expires_in":60}`, buffer.String())
	})

	t.Run("json without expiry", func(t *testing.T) {
		t.Parallel()

		var buffer bytes.Buffer
		require.NoError(t, WritePayload(&buffer, config.OutputFormatJSON, Payload{Tokens: payload.Tokens}))
		assert.JSONEq(t, `{"tokens":{"graph":"g","skype":"s"}}`, buffer.String())
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		var buffer bytes.Buffer
		require.NoError(t, WritePayload(&buffer, config.OutputFormatYAML, payload))
		assert.YAMLEq(t, "tokens:\n  graph: g\n  skype: s\nexpires_in: 60\n", buffer.String())

		var decoded Payload
		require.NoError(t, yaml.Unmarshal([]byte(buffer.String()), &decoded))
		assert.Equal(t, payload, decoded)
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		var buffer bytes.Buffer
		require.ErrorIs(t, WritePayload(&buffer, "xml", payload), config.ErrUnknownOutputFormat)
		assert.Empty(t, buffer.String())
	})
}

// TestRunAuth tests that only a successful run writes to stdout.
//
//nolint:funlen // Table-driven test with many cases.
func TestRunAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		service      *stubService
		format       string
		expectedCode int
		expectOutput bool
	}{
		{
			name:         "success as json",
			service:      &stubService{outcome: succeeded()},
			format:       config.OutputFormatJSON,
			expectedCode: ExitCodeSuccess,
			expectOutput: true,
		},
		{
			name:         "success as yaml",
			service:      &stubService{outcome: succeeded()},
			format:       config.OutputFormatYAML,
			expectedCode: ExitCodeSuccess,
			expectOutput: true,
		},
		{
			name: "timeout with partial tokens",
			service: &stubService{outcome: auth.Outcome{
				Status: auth.StatusTimedOut,
				Tokens: token.Set{"skype": "partial"},
			}},
			format:       config.OutputFormatJSON,
			expectedCode: ExitCodeFailure,
		},
		{
			name:         "session expired",
			service:      &stubService{outcome: auth.Outcome{Status: auth.StatusSessionExpiredHeadless}},
			format:       config.OutputFormatJSON,
			expectedCode: ExitCodeSessionExpired,
		},
		{
			name:         "launch failure",
			service:      &stubService{err: errors.New("browser not found")},
			format:       config.OutputFormatJSON,
			expectedCode: ExitCodeFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(t, tt.format)
			cfg.Headless = true

			var stdout bytes.Buffer

			code := runAuth(context.Background(), cfg, tt.service, &stdout)

			assert.Equal(t, tt.expectedCode, code)
			require.Len(t, tt.service.runs, 1)
			assert.True(t, tt.service.runs[0].Headless)
			assert.Equal(t, cfg.ResolvedProfileDir, tt.service.runs[0].ProfileDir)

			if !tt.expectOutput {
				assert.Empty(t, stdout.String())

				return
			}

			var payload Payload
			if tt.format == config.OutputFormatYAML {
				require.NoError(t, yaml.Unmarshal([]byte(stdout.String()), &payload))
			} else {
				require.NoError(t, json.Unmarshal([]byte(stdout.String()), &payload))
			}

			assert.Equal(t, "skype-token", payload.Tokens["skype"])
			assert.Equal(t, int64(3599), payload.ExpiresIn)
		})
	}
}

// TestRunAuth_WriteFailure tests that a broken stdout is a failure.
func TestRunAuth_WriteFailure(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, config.OutputFormatJSON)

	code := runAuth(context.Background(), cfg, &stubService{outcome: succeeded()}, failingWriter{})
	assert.Equal(t, ExitCodeFailure, code)
}

// TestExecuteResetCommand tests profile removal.
func TestExecuteResetCommand(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, config.OutputFormatJSON)

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.ResolvedProfileDir, "Default"), constants.PrivateFolderPermissions))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ResolvedProfileDir, "Default", "Cookies"), []byte("x"), constants.DefaultFilePermissions))

	assert.Equal(t, ExitCodeSuccess, ExecuteResetCommand(context.Background(), cfg))
	assert.NoDirExists(t, cfg.ResolvedProfileDir)

	// A missing profile is already reset.
	assert.Equal(t, ExitCodeSuccess, ExecuteResetCommand(context.Background(), cfg))
}
