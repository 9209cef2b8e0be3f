// Package keyspace groups flat key-value store keys into a two-level tree
// for browsing.
package keyspace

import (
	"sort"
	"strings"
)

const (
	// DefaultDelimiter separates a key's group prefix from the rest.
	DefaultDelimiter = ":"
	// DefaultMaxKeys caps how many keys a browse view holds.
	DefaultMaxKeys = 1000
	// RootGroup labels the bucket of keys without a delimiter.
	RootGroup = "_root"
)

// Leaf is one key. Label is the part after the group prefix, or the whole
// key for root leaves.
type Leaf struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Group holds the keys sharing a prefix, sorted by key.
type Group struct {
	Label  string `json:"label"`
	Leaves []Leaf `json:"leaves"`
}

// Node is an entry of the flattened tree: a group, or a root leaf.
type Node struct {
	Group *Group `json:"group,omitempty"`
	Leaf  *Leaf  `json:"leaf,omitempty"`
}

// Tree is the grouped view of one key listing. It is rebuilt wholesale on
// every refresh.
type Tree struct {
	Groups    []Group `json:"groups"`
	Root      []Leaf  `json:"root"`
	Total     int     `json:"total"`
	Truncated bool    `json:"truncated"`
}

// Index sorts keys, keeps the first max of them and groups each on the
// first occurrence of delim. max <= 0 keeps every key; an empty delim uses
// DefaultDelimiter.
func Index(keys []string, delim string, max int) *Tree {
	if delim == "" {
		delim = DefaultDelimiter
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	t := &Tree{Total: len(sorted), Groups: []Group{}, Root: []Leaf{}}
	if max > 0 && len(sorted) > max {
		sorted = sorted[:max]
		t.Truncated = true
	}

	byLabel := make(map[string]int)
	for _, key := range sorted {
		prefix, rest, found := strings.Cut(key, delim)
		if !found {
			t.Root = append(t.Root, Leaf{Key: key, Label: key})
			continue
		}
		i, ok := byLabel[prefix]
		if !ok {
			i = len(t.Groups)
			byLabel[prefix] = i
			t.Groups = append(t.Groups, Group{Label: prefix})
		}
		t.Groups[i].Leaves = append(t.Groups[i].Leaves, Leaf{Key: key, Label: rest})
	}

	// Sorting keys already orders groups by label except where a shorter
	// prefix sorts after the delimiter ("a:x" vs "a.b:y"), so sort explicitly.
	sort.SliceStable(t.Groups, func(i, j int) bool { return t.Groups[i].Label < t.Groups[j].Label })
	return t
}

// Len returns the number of keys in the tree.
func (t *Tree) Len() int {
	n := len(t.Root)
	for _, g := range t.Groups {
		n += len(g.Leaves)
	}
	return n
}

// Nodes returns the groups in label order followed by the root leaves.
func (t *Tree) Nodes() []Node {
	out := make([]Node, 0, len(t.Groups)+len(t.Root))
	for i := range t.Groups {
		out = append(out, Node{Group: &t.Groups[i]})
	}
	for i := range t.Root {
		out = append(out, Node{Leaf: &t.Root[i]})
	}
	return out
}

// Keys returns every key in display order.
func (t *Tree) Keys() []string {
	out := make([]string, 0, t.Len())
	for _, n := range t.Nodes() {
		if n.Leaf != nil {
			out = append(out, n.Leaf.Key)
			continue
		}
		for _, l := range n.Group.Leaves {
			out = append(out, l.Key)
		}
	}
	return out
}
