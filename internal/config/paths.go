package config

import (
	"os"
	"path/filepath"

	"github.com/oshokin/teams-token-grabber/internal/constants"
	"github.com/oshokin/teams-token-grabber/internal/utils"
)

// StateDir returns the application state directory.
// Resolution order: $XDG_STATE_HOME/<app>, ~/.local/state/<app>, <temp dir>/<app>.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, constants.AppName)
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", constants.AppName)
	}

	return filepath.Join(os.TempDir(), constants.AppName)
}

// ResolveProfileDir returns the absolute browser profile directory.
// An empty configured value selects the profile folder inside StateDir.
func ResolveProfileDir(configured string) (string, error) {
	dir := utils.ExpandHome(configured)
	if dir == "" {
		dir = filepath.Join(StateDir(), constants.ProfileFolderName)
	}

	return filepath.Abs(dir)
}
