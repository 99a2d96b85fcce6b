// Package token defines the resource scopes a session must yield tokens for,
// the token set accumulated during one acquisition run, and the predicate
// deciding whether a captured value is a real token or an identity-provider placeholder.
package token
