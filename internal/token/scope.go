package token

import (
	"errors"
	"fmt"
	"strings"
)

// Scope is a backend resource that requires its own access token.
type Scope struct {
	// Name is the canonical name used as the key in token sets and payloads.
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	// Resource is the resource identifier matched against audiences, scopes and storage keys.
	Resource string `mapstructure:"resource" json:"resource" yaml:"resource"`
}

// Catalog is the fixed set of scopes a run must satisfy.
type Catalog []Scope

// Static error definitions for better error handling.
var (
	// ErrEmptyCatalog indicates that no scopes were configured.
	ErrEmptyCatalog = errors.New("at least one resource scope is required")
	// ErrInvalidScope indicates that a scope has an empty name or resource.
	ErrInvalidScope = errors.New("resource scope must have a name and a resource")
	// ErrDuplicateScope indicates that two scopes share a name.
	ErrDuplicateScope = errors.New("duplicate resource scope name")
)

// DefaultCatalog returns the four scopes the Teams web client keeps tokens for.
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "skype", Resource: "api.spaces.skype.com"},
		{Name: "chat", Resource: "chatsvcagg.teams.microsoft.com"},
		{Name: "graph", Resource: "graph.microsoft.com"},
		{Name: "presence", Resource: "presence.teams.microsoft.com"},
	}
}

// NewCatalog validates the scopes and returns them as a catalog.
func NewCatalog(scopes ...Scope) (Catalog, error) {
	if len(scopes) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(scopes))
	catalog := make(Catalog, 0, len(scopes))

	for _, scope := range scopes {
		scope.Name = strings.TrimSpace(scope.Name)
		scope.Resource = strings.TrimSpace(scope.Resource)

		if scope.Name == "" || scope.Resource == "" {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidScope, scope)
		}

		if _, ok := seen[scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScope, scope.Name)
		}

		seen[scope.Name] = struct{}{}

		catalog = append(catalog, scope)
	}

	return catalog, nil
}

// Match returns the first scope whose resource identifier occurs in text, ignoring case.
func (c Catalog) Match(text string) (Scope, bool) {
	lowered := strings.ToLower(text)

	for _, scope := range c {
		if strings.Contains(lowered, strings.ToLower(scope.Resource)) {
			return scope, true
		}
	}

	return Scope{}, false
}

// Names returns the canonical scope names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, scope := range c {
		names = append(names, scope.Name)
	}

	return names
}
