package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSet_Merge tests first-writer-wins merging.
func TestSet_Merge(t *testing.T) {
	t.Parallel()

	set := Set{"skype": "first"}

	added := set.Merge(Set{"skype": "second", "chat": "chat-token", "graph": ""})

	assert.Equal(t, []string{"chat"}, added)
	assert.Equal(t, Set{"skype": "first", "chat": "chat-token"}, set)
}

// TestSet_MergeIdempotent tests that applying the same output twice changes nothing.
func TestSet_MergeIdempotent(t *testing.T) {
	t.Parallel()

	output := Set{"skype": "a", "chat": "b"}

	set := make(Set)
	set.Merge(output)
	snapshot := set.Clone()

	added := set.Merge(output)

	assert.Empty(t, added)
	assert.Equal(t, snapshot, set)
}

// TestSet_MergeOrderIndependent tests that overlapping outputs never replace a captured value.
func TestSet_MergeOrderIndependent(t *testing.T) {
	t.Parallel()

	network := Set{"skype": "from-network", "chat": "chat"}
	storage := Set{"chat": "from-storage", "graph": "graph"}

	forward := make(Set)
	forward.Merge(network)
	forward.Merge(storage)

	backward := make(Set)
	backward.Merge(storage)
	backward.Merge(network)

	// Each order keeps the first writer for the overlapping scope.
	assert.Equal(t, "chat", forward["chat"])
	assert.Equal(t, "from-storage", backward["chat"])

	// Non-overlapping scopes are identical in both orders.
	for _, name := range []string{"skype", "graph"} {
		assert.Equal(t, forward[name], backward[name])
	}

	// Re-merging in any order never changes what was captured.
	before := forward.Clone()
	forward.Merge(storage)
	forward.Merge(network)
	assert.Equal(t, before, forward)
}

// TestSet_CloneAndClear tests that Clone is independent and Clear empties the set.
func TestSet_CloneAndClear(t *testing.T) {
	t.Parallel()

	set := Set{"skype": "token"}
	clone := set.Clone()

	set.Clear()

	assert.Empty(t, set)
	assert.Equal(t, Set{"skype": "token"}, clone)
}
