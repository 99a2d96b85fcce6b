package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestShort tests that Short is the bare semantic version.
func TestShort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Version, Short())
	assert.NotContains(t, Short(), " ")
}

// TestFull tests that Full carries every piece of build metadata.
func TestFull(t *testing.T) {
	t.Parallel()

	full := Full()

	for _, part := range []string{Version, Commit, BuildTime} {
		assert.NotEmpty(t, part)
		assert.Contains(t, full, part)
	}

	assert.Equal(t, "version: "+Version+", commit: "+Commit+", built at: "+BuildTime, full)
}
