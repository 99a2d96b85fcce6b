package utils

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" with the current user's home directory.
// The path is returned unchanged if it does not start with "~" or the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}

	if path == "~" {
		return home
	}

	return filepath.Join(home, path[2:])
}

// ContainsAnyFold reports whether s contains any of the substrings, ignoring case.
// Empty substrings never match.
func ContainsAnyFold(s string, substrings ...string) bool {
	lowered := strings.ToLower(s)

	for _, substring := range substrings {
		if substring == "" {
			continue
		}

		if strings.Contains(lowered, strings.ToLower(substring)) {
			return true
		}
	}

	return false
}

// HostMatches reports whether the host of rawURL equals domain or is a subdomain of it.
// Matching on the host avoids false positives from domains that appear in query parameters.
func HostMatches(rawURL, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || domain == "" {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))

	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Dedupe returns the non-empty trimmed values in first-seen order.
func Dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if _, ok := seen[value]; ok {
			continue
		}

		seen[value] = struct{}{}

		result = append(result, value)
	}

	return result
}
