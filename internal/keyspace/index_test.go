package keyspace

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_GroupsOnPrefix(t *testing.T) {
	tree := Index([]string{"user:1", "user:2", "order:9", "standalone"}, ":", DefaultMaxKeys)

	require.Len(t, tree.Groups, 2)
	assert.Equal(t, "order", tree.Groups[0].Label)
	assert.Equal(t, []Leaf{{Key: "order:9", Label: "9"}}, tree.Groups[0].Leaves)
	assert.Equal(t, "user", tree.Groups[1].Label)
	assert.Equal(t, []Leaf{{Key: "user:1", Label: "1"}, {Key: "user:2", Label: "2"}}, tree.Groups[1].Leaves)
	assert.Equal(t, []Leaf{{Key: "standalone", Label: "standalone"}}, tree.Root)
	assert.Equal(t, 4, tree.Total)
	assert.False(t, tree.Truncated)
}

func TestIndex_SplitsOnFirstDelimiterOnly(t *testing.T) {
	tree := Index([]string{"a:b:c", "a:b:d", "a::e"}, ":", 0)

	require.Len(t, tree.Groups, 1)
	labels := []string{}
	for _, l := range tree.Groups[0].Leaves {
		labels = append(labels, l.Label)
	}
	assert.Equal(t, []string{":e", "b:c", "b:d"}, labels)
}

func TestIndex_CustomDelimiter(t *testing.T) {
	tree := Index([]string{"cache.a", "cache.b", "user:1"}, ".", 0)

	require.Len(t, tree.Groups, 1)
	assert.Equal(t, "cache", tree.Groups[0].Label)
	assert.Equal(t, []Leaf{{Key: "user:1", Label: "user:1"}}, tree.Root)
}

func TestIndex_Truncates(t *testing.T) {
	keys := make([]string, 1500)
	for i := range keys {
		keys[i] = fmt.Sprintf("k:%04d", 1499-i)
	}

	tree := Index(keys, ":", 1000)

	assert.True(t, tree.Truncated)
	assert.Equal(t, 1500, tree.Total)
	assert.Equal(t, 1000, tree.Len())
	require.Len(t, tree.Groups, 1)
	assert.Equal(t, "k:0000", tree.Groups[0].Leaves[0].Key)
	assert.Equal(t, "k:0999", tree.Groups[0].Leaves[999].Key)
}

func TestIndex_EveryKeyPlacedOnce(t *testing.T) {
	keys := []string{"b:2", "a", "b:1", "c:x:y", "a:1", ":lead", "trail:"}
	tree := Index(keys, ":", 0)

	seen := map[string]int{}
	for _, k := range tree.Keys() {
		seen[k]++
	}
	assert.Len(t, seen, len(keys))
	for _, k := range keys {
		assert.Equal(t, 1, seen[k], k)
	}
}

func TestIndex_Empty(t *testing.T) {
	tree := Index(nil, "", 0)

	assert.Empty(t, tree.Groups)
	assert.Empty(t, tree.Root)
	assert.Empty(t, tree.Nodes())
	assert.Zero(t, tree.Total)
}

func TestTree_NodesGroupsFirst(t *testing.T) {
	tree := Index([]string{"zeta", "b:1", "alpha", "a:1"}, ":", 0)

	nodes := tree.Nodes()
	require.Len(t, nodes, 4)
	assert.Equal(t, "a", nodes[0].Group.Label)
	assert.Equal(t, "b", nodes[1].Group.Label)
	assert.Equal(t, "alpha", nodes[2].Leaf.Key)
	assert.Equal(t, "zeta", nodes[3].Leaf.Key)
	assert.Equal(t, []string{"a:1", "b:1", "alpha", "zeta"}, tree.Keys())
}
