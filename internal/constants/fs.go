package constants

import "os"

const (
	// DefaultFilePermissions sets the default permissions for regular files: (rw-r--r--).
	// Owner: read and write;
	// Group: read;
	// Others: read.
	DefaultFilePermissions os.FileMode = 0o644

	// PrivateFolderPermissions sets the permissions for folders holding session state: (rwx------).
	// The browser profile keeps cookies and cached credentials, so only the owner may access it.
	PrivateFolderPermissions os.FileMode = 0o700
)

const (
	// AppName is used for state directory names and the environment prefix.
	AppName = "teams-token-grabber"

	// ProfileFolderName is the name of the persistent browser profile folder inside the state directory.
	ProfileFolderName = "browser-profile"

	// LockFileExtension is appended to the profile path to build its lock file path.
	LockFileExtension = ".lock"
)
