package auth

import (
	"context"
	"fmt"

	"github.com/oshokin/teams-token-grabber/internal/utils"
)

// Recovery purges cached credential state from a stale session and reloads it.
type Recovery struct {
	patterns []string
}

// NewRecovery creates a recovery that removes storage keys containing any of patterns.
func NewRecovery(patterns []string) *Recovery {
	return &Recovery{patterns: patterns}
}

// Run removes every matching storage entry and reloads the page.
// It returns the number of removed keys. A failed reload is reported
// after the purge has been applied.
func (r *Recovery) Run(ctx context.Context, session Session) (int, error) {
	entries, err := session.StorageEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read web storage: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if utils.ContainsAnyFold(entry.Key, r.patterns...) {
			keys = append(keys, entry.Key)
		}
	}

	if err = session.RemoveStorageKeys(ctx, keys); err != nil {
		return 0, fmt.Errorf("failed to purge cached credentials: %w", err)
	}

	if err = session.Reload(ctx); err != nil {
		return len(keys), fmt.Errorf("failed to reload page: %w", err)
	}

	return len(keys), nil
}
