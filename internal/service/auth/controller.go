package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/teams-token-grabber/internal/logger"
	"github.com/oshokin/teams-token-grabber/internal/token"
	"github.com/oshokin/teams-token-grabber/internal/utils"
)

// pageKind classifies the URL the session is on.
type pageKind uint8

const (
	// pageOther covers navigation, blank pages and unrelated hosts.
	pageOther pageKind = iota
	// pageLogin is an identity-provider sign-in page.
	pageLogin
	// pageApp is the authenticated application.
	pageApp
)

// ControllerConfig holds the controller's tuning knobs.
type ControllerConfig struct {
	// AppURL is the entry URL opened after launch.
	AppURL string
	// AppDomain is the host of the authenticated application.
	AppDomain string
	// LoginDomains are identity-provider hosts.
	LoginDomains []string
	// PollInterval is the pause between ticks.
	PollInterval time.Duration
	// StaleThreshold is the number of consecutive application ticks without
	// a complete token set after which the session is recovered.
	StaleThreshold int
}

// Option customizes a Controller.
type Option func(*Controller)

// WithReporter sets the diagnostics sink.
func WithReporter(reporter Reporter) Option {
	return func(c *Controller) {
		if reporter != nil {
			c.reporter = reporter
		}
	}
}

// WithClock replaces the wall clock used for the deadline.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSleeper replaces the pause between ticks.
// The sleeper must return a non-nil error when ctx is done.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Controller) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// Controller drives one acquisition run from launch to a terminal outcome.
type Controller struct {
	cfg        ControllerConfig
	launcher   Launcher
	strategies []Strategy
	oracle     *token.Oracle
	recovery   *Recovery
	reporter   Reporter
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewController creates a controller. Strategies run in the given order on every tick.
func NewController(
	cfg ControllerConfig,
	launcher Launcher,
	strategies []Strategy,
	oracle *token.Oracle,
	recovery *Recovery,
	opts ...Option,
) *Controller {
	c := &Controller{
		cfg:        cfg,
		launcher:   launcher,
		strategies: strategies,
		oracle:     oracle,
		recovery:   recovery,
		reporter:   NopReporter{},
		now:        time.Now,
		sleep:      sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// run is the mutable state of one acquisition run.
type run struct {
	cfg         RunConfig
	session     Session
	tokens      token.Set
	deadline    time.Time
	stall       int
	ticks       int
	recovered   bool
	interrupted bool
}

// Run executes one acquisition run. The returned error is non-nil only when
// the browser session could not be acquired; every other ending is an Outcome.
// The session is closed exactly once before Run returns.
func (c *Controller) Run(ctx context.Context, cfg RunConfig) (Outcome, error) {
	r := &run{
		cfg:    cfg,
		tokens: make(token.Set),
	}

	defer c.release(ctx, r)

	state := StateLaunching

	for !state.Terminal() {
		next, err := c.transition(ctx, r, state)
		if err != nil {
			return Outcome{}, err
		}

		if next != state {
			c.reporter.Transition(ctx, state, next)
		}

		state = next
	}

	outcome := c.outcome(r, state)
	c.reporter.Finished(ctx, outcome)

	return outcome, nil
}

// transition performs the work of state and returns the next state.
func (c *Controller) transition(ctx context.Context, r *run, state State) (State, error) {
	switch state {
	case StateLaunching:
		return c.launch(ctx, r)
	case StatePolling:
		return c.poll(ctx, r), nil
	case StateRecovering:
		return c.recoverSession(ctx, r), nil
	default:
		return state, nil
	}
}

func (c *Controller) launch(ctx context.Context, r *run) (State, error) {
	r.deadline = c.now().Add(r.cfg.Timeout)

	session, err := c.launcher.Launch(ctx, r.cfg)
	if err != nil {
		if ctx.Err() != nil {
			r.interrupted = true

			return StateTimedOut, nil
		}

		return StateLaunching, fmt.Errorf("failed to acquire browser session: %w", err)
	}

	r.session = session

	// SSO redirects may still be in flight, so a failed navigation is only an empty first tick.
	if err = session.Navigate(ctx, c.cfg.AppURL); err != nil {
		c.reporter.NavigationFailed(ctx, err)
	}

	return StatePolling, nil
}

// poll runs one tick.
func (c *Controller) poll(ctx context.Context, r *run) State {
	if ctx.Err() != nil {
		r.interrupted = true

		return StateTimedOut
	}

	r.ticks++

	kind := c.classify(r.session.CurrentURL(ctx))
	if r.recovered && r.cfg.Headless && kind == pageLogin {
		return StateSessionExpiredHeadless
	}

	for _, strategy := range c.strategies {
		if added := r.tokens.Merge(c.realOnly(strategy.Extract(ctx, r.session))); len(added) > 0 {
			c.reporter.TokensCaptured(ctx, strategy.Name(), added)
		}
	}

	if c.oracle.IsComplete(r.tokens) {
		return StateSucceeded
	}

	if !c.now().Before(r.deadline) {
		return StateTimedOut
	}

	switch kind {
	case pageLogin:
		r.stall = 0
	case pageApp:
		r.stall++
		c.reporter.Stalled(ctx, r.stall, c.cfg.StaleThreshold)

		if r.stall >= c.cfg.StaleThreshold {
			switch {
			case !r.recovered:
				// Recovery pauses after its reload, so this tick does not sleep.
				return StateRecovering
			case r.cfg.Headless:
				return StateSessionExpiredHeadless
			default:
				// A human may still complete sign-in; keep polling until the deadline.
				r.stall = 0
			}
		}
	case pageOther:
	}

	return c.pause(ctx, r)
}

// pause waits for the next tick, never past the deadline.
func (c *Controller) pause(ctx context.Context, r *run) State {
	remaining := r.deadline.Sub(c.now())
	if remaining <= 0 {
		return StateTimedOut
	}

	if err := c.sleep(ctx, min(c.cfg.PollInterval, remaining)); err != nil {
		r.interrupted = true

		return StateTimedOut
	}

	return StatePolling
}

func (c *Controller) recoverSession(ctx context.Context, r *run) State {
	r.recovered = true
	r.stall = 0

	purged, err := c.recovery.Run(ctx, r.session)

	r.tokens.Clear()

	for _, strategy := range c.strategies {
		if resetter, ok := strategy.(Resetter); ok {
			resetter.Reset()
		}
	}

	c.reporter.Recovered(ctx, purged, err)

	return c.pause(ctx, r)
}

// realOnly drops placeholder values so they never claim a scope ahead of a real token.
func (c *Controller) realOnly(found token.Set) token.Set {
	accepted := make(token.Set, len(found))

	for name, value := range found {
		if c.oracle.LooksReal(value) {
			accepted[name] = value
		}
	}

	return accepted
}

func (c *Controller) classify(currentURL string) pageKind {
	for _, domain := range c.cfg.LoginDomains {
		if utils.HostMatches(currentURL, domain) {
			return pageLogin
		}
	}

	if utils.HostMatches(currentURL, c.cfg.AppDomain) {
		return pageApp
	}

	return pageOther
}

func (c *Controller) outcome(r *run, state State) Outcome {
	outcome := Outcome{
		Status:      statusOf(state),
		Tokens:      r.tokens.Clone(),
		Interrupted: r.interrupted,
		Ticks:       r.ticks,
		Recovered:   r.recovered,
	}

	if state == StateSucceeded {
		outcome.ExpiresIn = c.expiresIn(r.tokens)
	}

	return outcome
}

// expiresIn returns the time left until the earliest known expiry among tokens.
// Only expiries recorded for the exact values in tokens count.
func (c *Controller) expiresIn(tokens token.Set) time.Duration {
	var earliest time.Time

	for name, value := range tokens {
		for _, strategy := range c.strategies {
			hinter, ok := strategy.(ExpiryHinter)
			if !ok {
				continue
			}

			if expiry, known := hinter.Expiry(name, value); known && (earliest.IsZero() || expiry.Before(earliest)) {
				earliest = expiry
			}
		}
	}

	if earliest.IsZero() {
		return 0
	}

	return max(earliest.Sub(c.now()), 0)
}

func (c *Controller) release(ctx context.Context, r *run) {
	if r.session == nil {
		return
	}

	if err := r.session.Close(); err != nil {
		logger.Debugf(ctx, "Browser session close error: %v", err)
	}

	r.session = nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
