package token

// Set maps a scope name to the token captured for it during one run.
type Set map[string]string

// Merge copies values from other for scopes that have not been captured yet.
// Already captured values are never overwritten and empty values are ignored.
// It returns the names of newly captured scopes.
func (s Set) Merge(other Set) []string {
	var added []string

	for name, value := range other {
		if value == "" {
			continue
		}

		if _, ok := s[name]; ok {
			continue
		}

		s[name] = value

		added = append(added, name)
	}

	return added
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	clone := make(Set, len(s))
	for name, value := range s {
		clone[name] = value
	}

	return clone
}

// Clear removes every captured value.
func (s Set) Clear() {
	for name := range s {
		delete(s, name)
	}
}
