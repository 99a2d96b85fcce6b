package token

import "strings"

const (
	// DefaultMinLength is the length a captured value must exceed to be taken as a real token.
	// Real access tokens are JWTs well over a thousand characters long.
	DefaultMinLength = 50
)

// Predicate decides whether a captured value looks like a real token.
type Predicate func(value string) bool

// Validator rejects empty, placeholder and implausibly short values.
type Validator struct {
	// MinLength is the length a value must exceed.
	MinLength int
	// Placeholders are dummy values the identity provider writes before real tokens arrive.
	Placeholders []string
}

// DefaultPlaceholders returns the dummy values seen in the token cache before sign-in completes.
func DefaultPlaceholders() []string {
	return []string{"null", "undefined", "[object Object]", "dummy", "placeholder"}
}

// DefaultValidator returns a validator with the default length threshold and placeholders.
func DefaultValidator() Validator {
	return Validator{
		MinLength:    DefaultMinLength,
		Placeholders: DefaultPlaceholders(),
	}
}

// LooksLikeRealToken reports whether value is neither a placeholder nor too short.
func (v Validator) LooksLikeRealToken(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}

	for _, placeholder := range v.Placeholders {
		if strings.EqualFold(trimmed, strings.TrimSpace(placeholder)) {
			return false
		}
	}

	return len(trimmed) > v.MinLength
}

// Oracle decides whether a token set satisfies every scope of a catalog.
type Oracle struct {
	catalog   Catalog
	looksReal Predicate
}

// NewOracle creates an oracle. A nil predicate falls back to DefaultValidator.
func NewOracle(catalog Catalog, looksReal Predicate) *Oracle {
	if looksReal == nil {
		looksReal = DefaultValidator().LooksLikeRealToken
	}

	return &Oracle{
		catalog:   catalog,
		looksReal: looksReal,
	}
}

// IsComplete reports whether every scope has a real-looking token.
func (o *Oracle) IsComplete(set Set) bool {
	return len(o.Missing(set)) == 0
}

// Missing returns the names of scopes without a real-looking token.
func (o *Oracle) Missing(set Set) []string {
	var missing []string

	for _, scope := range o.catalog {
		if !o.looksReal(set[scope.Name]) {
			missing = append(missing, scope.Name)
		}
	}

	return missing
}

// LooksReal exposes the predicate used by the oracle.
func (o *Oracle) LooksReal(value string) bool {
	return o.looksReal(value)
}

// Catalog returns the catalog the oracle checks against.
func (o *Oracle) Catalog() Catalog {
	return o.catalog
}
