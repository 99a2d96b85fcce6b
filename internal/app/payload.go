package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/teams-token-grabber/internal/config"
	"github.com/oshokin/teams-token-grabber/internal/service/auth"
)

// Exit codes of the auth commands.
const (
	// ExitCodeSuccess means every scope yielded a token.
	ExitCodeSuccess = 0
	// ExitCodeFailure covers timeouts, interrupts and launch failures.
	ExitCodeFailure = 1
	// ExitCodeSessionExpired means the saved session cannot be renewed without a window.
	ExitCodeSessionExpired = 3
)

// ErrUnsuccessfulOutcome indicates an attempt to encode a run that did not succeed.
var ErrUnsuccessfulOutcome = errors.New("only a successful outcome has a payload")

// Payload is the document written to stdout after a successful run.
type Payload struct {
	// Tokens maps each scope name to its access token.
	Tokens map[string]string `json:"tokens" yaml:"tokens"`
	// ExpiresIn is the time left in seconds before the first returned token expires, omitted when unknown.
	ExpiresIn int64 `json:"expires_in,omitempty" yaml:"expires_in,omitempty"`
}

// NewPayload builds the payload of a successful outcome.
func NewPayload(outcome auth.Outcome) (Payload, error) {
	if !outcome.Succeeded() {
		return Payload{}, fmt.Errorf("%w: %s", ErrUnsuccessfulOutcome, outcome.Status)
	}

	return Payload{
		Tokens:    outcome.Tokens.Clone(),
		ExpiresIn: int64(outcome.ExpiresIn.Seconds()),
	}, nil
}

// WritePayload encodes the payload in the given format.
func WritePayload(w io.Writer, format string, payload Payload) error {
	switch format {
	case config.OutputFormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2) //nolint:mnd // Two-space indentation is the YAML convention.

		if err := encoder.Encode(payload); err != nil {
			return fmt.Errorf("failed to encode payload as YAML: %w", err)
		}

		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to flush YAML payload: %w", err)
		}
	case config.OutputFormatJSON, "":
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			return fmt.Errorf("failed to encode payload as JSON: %w", err)
		}
	default:
		return fmt.Errorf("%w: '%s'", config.ErrUnknownOutputFormat, format)
	}

	return nil
}

// ExitCode maps an outcome to the process exit code.
func ExitCode(outcome auth.Outcome) int {
	switch outcome.Status {
	case auth.StatusSucceeded:
		return ExitCodeSuccess
	case auth.StatusSessionExpiredHeadless:
		return ExitCodeSessionExpired
	default:
		return ExitCodeFailure
	}
}
