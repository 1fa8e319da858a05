package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parentTable(edges map[string]string) func(string) (*string, error) {
	return func(accountID string) (*string, error) {
		parent, ok := edges[accountID]
		if !ok {
			return nil, nil
		}
		return &parent, nil
	}
}

func TestWalkUpline_CollectsNearestFirst(t *testing.T) {
	parents := parentTable(map[string]string{
		"d": "c",
		"c": "b",
		"b": "a",
	})

	chain, err := WalkUpline(parents, "d", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, chain)
}

func TestWalkUpline_TruncatesAtMaxDepth(t *testing.T) {
	parents := parentTable(map[string]string{
		"d": "c",
		"c": "b",
		"b": "a",
	})

	chain, err := WalkUpline(parents, "d", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, chain)
}

func TestWalkUpline_RootHasEmptyChain(t *testing.T) {
	chain, err := WalkUpline(parentTable(nil), "root", 5)
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestWalkUpline_DetectsCycle(t *testing.T) {
	parents := parentTable(map[string]string{
		"a": "b",
		"b": "c",
		"c": "a",
	})

	_, err := WalkUpline(parents, "a", 10)
	require.ErrorIs(t, err, ErrGraphCycle)
	assert.Equal(t, FaultIntegrity, ClassOf(err))
}

func TestWalkUpline_SelfReferenceIsCycle(t *testing.T) {
	parents := parentTable(map[string]string{"a": "a"})

	_, err := WalkUpline(parents, "a", 10)
	require.ErrorIs(t, err, ErrGraphCycle)
}

func TestWalkUpline_BoundsEndlessChain(t *testing.T) {
	// Every hop yields a fresh node, so only the hop bound stops the
	// walk when the caller asks for more than MaxUplineHops.
	parents := func(accountID string) (*string, error) {
		next := accountID + "x"
		return &next, nil
	}

	chain, err := WalkUpline(parents, "a", MaxUplineHops+10)
	require.NoError(t, err)
	assert.Len(t, chain, MaxUplineHops)
}

func TestWalkUpline_PropagatesLookupError(t *testing.T) {
	lookupErr := errors.New("db down")
	parents := func(accountID string) (*string, error) {
		return nil, Transient(lookupErr)
	}

	_, err := WalkUpline(parents, "a", 5)
	require.ErrorIs(t, err, lookupErr)
	assert.Equal(t, FaultTransient, ClassOf(err))
}
