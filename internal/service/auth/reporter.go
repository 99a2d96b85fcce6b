package auth

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/oshokin/teams-token-grabber/internal/logger"
)

//go:generate $MOCKGEN -source=reporter.go -destination=mocks/reporter_mock.go

// Reporter receives the controller's diagnostics.
type Reporter interface {
	// Transition is called on every state change.
	Transition(ctx context.Context, from, to State)
	// NavigationFailed is called when the entry page did not load cleanly.
	NavigationFailed(ctx context.Context, err error)
	// TokensCaptured is called when a strategy contributes new scopes.
	TokensCaptured(ctx context.Context, strategy string, scopes []string)
	// Stalled is called on every tick spent on the application without a complete token set.
	Stalled(ctx context.Context, count, threshold int)
	// Recovered is called after staleness recovery with the number of purged keys.
	Recovered(ctx context.Context, purged int, err error)
	// Finished is called once with the outcome.
	Finished(ctx context.Context, outcome Outcome)
}

// LogReporter writes diagnostics to the structured logger.
type LogReporter struct {
	runID string
	now   func() time.Time
}

// NewLogReporter creates a reporter tagging every record with a fresh run ID.
func NewLogReporter() *LogReporter {
	return &LogReporter{
		runID: uuid.NewString(),
		now:   time.Now,
	}
}

// RunID returns the identifier attached to this run's records.
func (r *LogReporter) RunID() string {
	return r.runID
}

// Transition implements Reporter.
func (r *LogReporter) Transition(ctx context.Context, from, to State) {
	logger.DebugKV(r.with(ctx), "State changed", "from", from.String(), "to", to.String())

	if to == StateRecovering {
		logger.Warn(r.with(ctx), "Session looks signed in but yields no tokens, purging cached credentials")
	}
}

// NavigationFailed implements Reporter.
func (r *LogReporter) NavigationFailed(ctx context.Context, err error) {
	logger.WarnKV(r.with(ctx), "Entry page did not finish loading, polling anyway", "error", err)
}

// TokensCaptured implements Reporter.
func (r *LogReporter) TokensCaptured(ctx context.Context, strategy string, scopes []string) {
	logger.InfoKV(r.with(ctx), "Captured tokens", "strategy", strategy, "scopes", strings.Join(scopes, ","))
}

// Stalled implements Reporter.
func (r *LogReporter) Stalled(ctx context.Context, count, threshold int) {
	logger.DebugKV(r.with(ctx), "Waiting for tokens on the application", "tick", count, "threshold", threshold)
}

// Recovered implements Reporter.
func (r *LogReporter) Recovered(ctx context.Context, purged int, err error) {
	if err != nil {
		logger.WarnKV(r.with(ctx), "Session recovery incomplete", "purged_keys", purged, "error", err)

		return
	}

	logger.InfoKV(r.with(ctx), "Session recovered, waiting for sign-in to complete", "purged_keys", purged)
}

// Finished implements Reporter.
func (r *LogReporter) Finished(ctx context.Context, outcome Outcome) {
	ctx = r.with(ctx)

	switch outcome.Status {
	case StatusSucceeded:
		if outcome.ExpiresIn > 0 {
			logger.InfoKV(ctx, "All tokens acquired",
				"ticks", outcome.Ticks,
				"expires", humanize.Time(r.now().Add(outcome.ExpiresIn)))

			return
		}

		logger.InfoKV(ctx, "All tokens acquired", "ticks", outcome.Ticks)
	case StatusSessionExpiredHeadless:
		logger.ErrorKV(ctx, "Session expired and cannot be renewed headlessly, run an interactive login",
			"ticks", outcome.Ticks)
	default:
		if outcome.Interrupted {
			logger.WarnKV(ctx, "Interrupted before tokens were acquired",
				"ticks", outcome.Ticks,
				"captured", len(outcome.Tokens))

			return
		}

		logger.ErrorKV(ctx, "Timed out waiting for tokens",
			"ticks", outcome.Ticks,
			"captured", len(outcome.Tokens))
	}
}

func (r *LogReporter) with(ctx context.Context) context.Context {
	return logger.WithKV(ctx, "run_id", r.runID)
}

// NopReporter discards diagnostics.
type NopReporter struct{}

// Transition implements Reporter.
func (NopReporter) Transition(context.Context, State, State) {}

// NavigationFailed implements Reporter.
func (NopReporter) NavigationFailed(context.Context, error) {}

// TokensCaptured implements Reporter.
func (NopReporter) TokensCaptured(context.Context, string, []string) {}

// Stalled implements Reporter.
func (NopReporter) Stalled(context.Context, int, int) {}

// Recovered implements Reporter.
func (NopReporter) Recovered(context.Context, int, error) {}

// Finished implements Reporter.
func (NopReporter) Finished(context.Context, Outcome) {}
