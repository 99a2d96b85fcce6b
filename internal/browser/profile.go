package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/oshokin/teams-token-grabber/internal/constants"
	"github.com/oshokin/teams-token-grabber/internal/logger"
)

const (
	// profileLockWait is how long a run waits for a previous run to release the profile.
	profileLockWait = 2 * time.Second
	// profileLockRetryDelay is the delay between lock attempts.
	profileLockRetryDelay = 50 * time.Millisecond
)

// ProfileLockPath returns the path of the lock file guarding profileDir.
func ProfileLockPath(profileDir string) string {
	return filepath.Clean(profileDir) + constants.LockFileExtension
}

// lockProfile takes the exclusive lock of profileDir, creating its parent directory if needed.
func lockProfile(ctx context.Context, profileDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(profileDir)), constants.PrivateFolderPermissions); err != nil {
		return nil, fmt.Errorf("failed to create profile parent directory: %w", err)
	}

	lock := flock.New(ProfileLockPath(profileDir))

	lockCtx, cancel := context.WithTimeout(ctx, profileLockWait)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, profileLockRetryDelay)
	if err != nil || !locked {
		if err != nil {
			logger.Debugf(ctx, "Profile lock attempt failed: %v", err)
		}

		return nil, fmt.Errorf("%w: %s", ErrProfileLocked, profileDir)
	}

	return lock, nil
}

// RemoveProfile deletes the profile directory. A missing directory is not an error.
// It refuses to touch a profile locked by a running session.
func RemoveProfile(ctx context.Context, profileDir string) error {
	lock, err := lockProfile(ctx, profileDir)
	if err != nil {
		return err
	}

	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Debugf(ctx, "Failed to release profile lock: %v", unlockErr)
		}
	}()

	return removeProfileDir(profileDir)
}

func removeProfileDir(profileDir string) error {
	if err := os.RemoveAll(profileDir); err != nil {
		return fmt.Errorf("failed to remove profile directory: %w", err)
	}

	return nil
}
