package auth

import (
	"context"
	"encoding/json"

	"github.com/oshokin/teams-token-grabber/internal/browser"
	"github.com/oshokin/teams-token-grabber/internal/logger"
	"github.com/oshokin/teams-token-grabber/internal/token"
	"github.com/oshokin/teams-token-grabber/internal/utils"
)

const (
	// StorageScanName identifies the current-format storage scan.
	StorageScanName = "storage"
	// LegacyScanName identifies the legacy-format storage scan.
	LegacyScanName = "legacy-storage"
)

// cachedEntry is a current-format cache entry. The credential is nested under data,
// either as an object or as a JSON document encoded in a string.
type cachedEntry struct {
	Data json.RawMessage `json:"data"`
}

// cachedCredential is an MSAL access token credential.
type cachedCredential struct {
	// Secret is the access token.
	Secret string `json:"secret"`
	// Target is the space-separated scope list the token was issued for.
	Target string `json:"target"`
}

// decodeCachedCredential unwraps the credential nested in a current-format entry.
func decodeCachedCredential(value string) (cachedCredential, bool) {
	var (
		entry      cachedEntry
		credential cachedCredential
	)

	if err := json.Unmarshal([]byte(value), &entry); err != nil || len(entry.Data) == 0 {
		return credential, false
	}

	data := []byte(entry.Data)

	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		data = []byte(encoded)
	}

	if err := json.Unmarshal(data, &credential); err != nil {
		return credential, false
	}

	return credential, true
}

// legacyCredential is an access token entry of the older cache layout, with the secret at the top level.
type legacyCredential struct {
	Secret string `json:"secret"`
}

// StorageScan reads access tokens from the current MSAL cache format.
type StorageScan struct {
	marker    string
	catalog   token.Catalog
	looksReal token.Predicate
}

// NewStorageScan creates a scan over entries whose key contains marker.
func NewStorageScan(marker string, catalog token.Catalog, looksReal token.Predicate) *StorageScan {
	if looksReal == nil {
		looksReal = token.DefaultValidator().LooksLikeRealToken
	}

	return &StorageScan{
		marker:    marker,
		catalog:   catalog,
		looksReal: looksReal,
	}
}

// Name implements Strategy.
func (s *StorageScan) Name() string {
	return StorageScanName
}

// Extract implements Strategy.
func (s *StorageScan) Extract(ctx context.Context, session Session) token.Set {
	found := make(token.Set)

	for _, entry := range readStorage(ctx, session, s.Name()) {
		if !utils.ContainsAnyFold(entry.Key, s.marker) {
			continue
		}

		credential, decoded := decodeCachedCredential(entry.Value)
		if !decoded || !s.looksReal(credential.Secret) {
			continue
		}

		scope, ok := s.catalog.Match(credential.Target)
		if !ok {
			scope, ok = s.catalog.Match(entry.Key)
		}

		if !ok {
			continue
		}

		found.Merge(token.Set{scope.Name: credential.Secret})
	}

	return found
}

// LegacyScan reads access tokens from entries keyed by marker, authority and resource.
type LegacyScan struct {
	marker    string
	authority string
	catalog   token.Catalog
	looksReal token.Predicate
}

// NewLegacyScan creates a scan over legacy entries issued by authority.
func NewLegacyScan(marker, authority string, catalog token.Catalog, looksReal token.Predicate) *LegacyScan {
	if looksReal == nil {
		looksReal = token.DefaultValidator().LooksLikeRealToken
	}

	return &LegacyScan{
		marker:    marker,
		authority: authority,
		catalog:   catalog,
		looksReal: looksReal,
	}
}

// Name implements Strategy.
func (s *LegacyScan) Name() string {
	return LegacyScanName
}

// Extract implements Strategy.
func (s *LegacyScan) Extract(ctx context.Context, session Session) token.Set {
	found := make(token.Set)

	for _, entry := range readStorage(ctx, session, s.Name()) {
		if !utils.ContainsAnyFold(entry.Key, s.marker) || !utils.ContainsAnyFold(entry.Key, s.authority) {
			continue
		}

		scope, ok := s.catalog.Match(entry.Key)
		if !ok {
			continue
		}

		var credential legacyCredential
		if err := json.Unmarshal([]byte(entry.Value), &credential); err != nil {
			continue
		}

		if !s.looksReal(credential.Secret) {
			continue
		}

		found.Merge(token.Set{scope.Name: credential.Secret})
	}

	return found
}

// readStorage returns the web storage snapshot, or nothing while the page is mid-navigation.
func readStorage(ctx context.Context, session Session, strategy string) []browser.StorageEntry {
	entries, err := session.StorageEntries(ctx)
	if err != nil {
		logger.Debugf(ctx, "Strategy %s observed nothing this tick: %v", strategy, err)

		return nil
	}

	return entries
}
