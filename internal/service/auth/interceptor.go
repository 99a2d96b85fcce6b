package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/oshokin/teams-token-grabber/internal/browser"
	"github.com/oshokin/teams-token-grabber/internal/logger"
	"github.com/oshokin/teams-token-grabber/internal/token"
	"github.com/oshokin/teams-token-grabber/internal/utils"
)

// InterceptorName identifies the network interception strategy.
const InterceptorName = "network"

// tokenResponse is the body of a token-endpoint response.
// The v1 endpoint encodes expires_in as a string, so it shadows the numeric field of oauth2.Token.
type tokenResponse struct {
	oauth2.Token

	ExpiresIn json.Number `json:"expires_in"`
	Scope     string      `json:"scope"`
	Resource  string      `json:"resource"`
}

// Interceptor captures access tokens from token-endpoint responses.
// It is wired into the browser at launch and read by the controller on every tick.
type Interceptor struct {
	markers   []string
	catalog   token.Catalog
	looksReal token.Predicate
	now       func() time.Time

	mu       sync.Mutex
	captured token.Set
	expiries map[string]time.Time
}

// InterceptorOption customizes an Interceptor.
type InterceptorOption func(*Interceptor)

// WithInterceptorClock replaces the wall clock used to turn lifetimes into expiries.
func WithInterceptorClock(now func() time.Time) InterceptorOption {
	return func(i *Interceptor) {
		if now != nil {
			i.now = now
		}
	}
}

// NewInterceptor creates an interceptor for responses whose URL contains any of markers.
func NewInterceptor(
	markers []string,
	catalog token.Catalog,
	looksReal token.Predicate,
	opts ...InterceptorOption,
) *Interceptor {
	if looksReal == nil {
		looksReal = token.DefaultValidator().LooksLikeRealToken
	}

	i := &Interceptor{
		markers:   markers,
		catalog:   catalog,
		looksReal: looksReal,
		now:       time.Now,
		captured:  make(token.Set),
		expiries:  make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Name implements Strategy.
func (i *Interceptor) Name() string {
	return InterceptorName
}

// Wants implements browser.ResponseObserver.
func (i *Interceptor) Wants(url string) bool {
	return utils.ContainsAnyFold(url, i.markers...)
}

// ObserveResponse implements browser.ResponseObserver.
func (i *Interceptor) ObserveResponse(ctx context.Context, response browser.Response) {
	if response.Status < http.StatusOK || response.Status >= http.StatusMultipleChoices {
		logger.Debugf(ctx, "Ignoring token endpoint response with status %d", response.Status)

		return
	}

	var body tokenResponse
	if err := json.Unmarshal(response.Body, &body); err != nil {
		logger.Debugf(ctx, "Ignoring undecodable token endpoint response: %v", err)

		return
	}

	if !body.Valid() || !i.looksReal(body.AccessToken) {
		return
	}

	if lifetime := parseLifetime(body.ExpiresIn); lifetime > 0 {
		body.Expiry = i.now().Add(lifetime)
	}

	scope, ok := i.catalog.Match(body.Scope)
	if !ok {
		scope, ok = i.catalog.Match(body.Resource)
	}

	if !ok {
		logger.Debugf(ctx, "Token endpoint response for an unknown resource: scope=%q resource=%q",
			body.Scope, body.Resource)

		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.captured[scope.Name]; exists {
		return
	}

	i.captured[scope.Name] = body.AccessToken

	if !body.Expiry.IsZero() {
		i.expiries[scope.Name] = body.Expiry
	}
}

// Extract implements Strategy. It returns a snapshot of the captured tokens.
func (i *Interceptor) Extract(_ context.Context, _ Session) token.Set {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.captured.Clone()
}

// Reset implements Resetter.
func (i *Interceptor) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.captured.Clear()
	clear(i.expiries)
}

// Expiry implements ExpiryHinter.
func (i *Interceptor) Expiry(name, value string) (time.Time, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if captured, ok := i.captured[name]; !ok || captured != value {
		return time.Time{}, false
	}

	expiry, known := i.expiries[name]

	return expiry, known
}

func parseLifetime(value json.Number) time.Duration {
	seconds, err := value.Int64()
	if err != nil || seconds <= 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}
