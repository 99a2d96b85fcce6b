package app

import (
	"bytes"
	"context"
	"io"

	"github.com/oshokin/teams-token-grabber/internal/browser"
	"github.com/oshokin/teams-token-grabber/internal/config"
	"github.com/oshokin/teams-token-grabber/internal/logger"
	"github.com/oshokin/teams-token-grabber/internal/service/auth"
)

// ExecuteAuthCommand runs one token acquisition on the persistent browser profile
// and writes the payload to stdout on success. It returns the process exit code.
func ExecuteAuthCommand(ctx context.Context, cfg *config.Config, stdout io.Writer) int {
	host := browser.NewHost(cfg, nil)
	service := auth.NewService(cfg, auth.HostLaunchers(host))

	return runAuth(ctx, cfg, service, stdout)
}

func runAuth(ctx context.Context, cfg *config.Config, service auth.Service, stdout io.Writer) int {
	outcome, err := service.Acquire(ctx, auth.NewRunConfig(cfg))
	if err != nil {
		logger.Errorf(ctx, "Token acquisition failed: %v", err)

		return ExitCodeFailure
	}

	if !outcome.Succeeded() {
		return ExitCode(outcome)
	}

	payload, err := NewPayload(outcome)
	if err != nil {
		logger.Errorf(ctx, "Failed to build payload: %v", err)

		return ExitCodeFailure
	}

	// Encode fully before writing so a failed encoding leaves stdout empty.
	var buffer bytes.Buffer
	if err = WritePayload(&buffer, cfg.OutputFormat, payload); err != nil {
		logger.Errorf(ctx, "Failed to encode payload: %v", err)

		return ExitCodeFailure
	}

	if _, err = buffer.WriteTo(stdout); err != nil {
		logger.Errorf(ctx, "Failed to write payload: %v", err)

		return ExitCodeFailure
	}

	return ExitCodeSuccess
}

// ExecuteResetCommand deletes the persistent browser profile. It returns the process exit code.
func ExecuteResetCommand(ctx context.Context, cfg *config.Config) int {
	if err := browser.RemoveProfile(ctx, cfg.ResolvedProfileDir); err != nil {
		logger.Errorf(ctx, "Failed to reset browser profile: %v", err)

		return ExitCodeFailure
	}

	logger.Infof(ctx, "Browser profile %s removed, the next login starts from scratch", cfg.ResolvedProfileDir)

	return ExitCodeSuccess
}
