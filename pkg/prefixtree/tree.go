/*
Package prefixtree implements a compact trie keyed on growing prefix chunks.

Each level of the tree consumes a fixed number of characters (runes) per
branch, and that number doubles at every deeper level: the root branches on
the first 2 characters, its children on the next 4, then 8, 16 and so on.
Strings that fit in the current window are kept as leaf suffixes of the node
they end at. Depth therefore grows with log(len(s)) while the fan-out per node
stays small for typical word lists.

	t := prefixtree.New()
	t.Add("apple")
	t.Add("apricot")
	t.Suggestions("ap", 10) // [apple apricot]

Nodes live in an arena owned by the Tree and refer to each other by index.
Leaves and child keys are kept sorted so every traversal is deterministic.

A Tree is not safe for concurrent use; callers serialize writes against reads.
*/
package prefixtree

import (
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the number of characters the root consumes per branch.
	DefaultChunkSize = 2

	// TruncationMarker is appended to subtree prefixes that were not enumerated
	// because the subtree was larger than the remaining result budget.
	TruncationMarker = "..."
)

type node struct {
	chunk    int
	count    int
	leaves   []string
	keys     []string
	children map[string]int32
}

// Tree is a chunk-keyed prefix tree over arbitrary strings.
type Tree struct {
	nodes     []node
	rootChunk int
	truncate  bool
}

// Option configures a Tree.
type Option func(*Tree)

// WithChunkSize sets the root chunk size. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(t *Tree) {
		if n >= 1 {
			t.rootChunk = n
		}
	}
}

// WithTruncation toggles the bounded-work policy for broad subtrees.
// When disabled, Suggestions always enumerates matching subtrees until the
// limit is reached instead of emitting truncated prefixes.
func WithTruncation(enabled bool) Option {
	return func(t *Tree) {
		t.truncate = enabled
	}
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		rootChunk: DefaultChunkSize,
		truncate:  true,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Clear()
	return t
}

// Clear drops every stored string.
func (t *Tree) Clear() {
	t.nodes = append(t.nodes[:0], node{chunk: t.rootChunk})
}

// Len returns the number of distinct strings stored.
func (t *Tree) Len() int {
	return t.nodes[0].count
}

// Nodes returns the number of allocated nodes, root included.
func (t *Tree) Nodes() int {
	return len(t.nodes)
}

// ChunkSize returns the root chunk size.
func (t *Tree) ChunkSize() int {
	return t.rootChunk
}

// Add inserts s and reports whether it was not already present.
// Empty strings are ignored.
func (t *Tree) Add(s string) bool {
	if s == "" {
		return false
	}

	var path []int32
	cur := int32(0)
	rest := s
	for {
		n := &t.nodes[cur]
		head, tail, split := splitRunes(rest, n.chunk)
		if !split {
			i, found := slices.BinarySearch(n.leaves, rest)
			if found {
				return false
			}
			n.leaves = slices.Insert(n.leaves, i, rest)
			break
		}

		child, ok := n.children[head]
		if !ok {
			child = t.grow(cur, head)
		}
		path = append(path, cur)
		cur = child
		rest = tail
	}

	t.nodes[cur].count++
	for _, idx := range path {
		t.nodes[idx].count++
	}
	return true
}

// AddAll inserts every string and returns how many were new.
func (t *Tree) AddAll(ss ...string) int {
	added := 0
	for _, s := range ss {
		if t.Add(s) {
			added++
		}
	}
	return added
}

// grow allocates a child of parent under key with twice the parent's chunk.
func (t *Tree) grow(parent int32, key string) int32 {
	t.nodes = append(t.nodes, node{chunk: t.nodes[parent].chunk * 2})
	child := int32(len(t.nodes) - 1)

	// arena may have moved
	p := &t.nodes[parent]
	if p.children == nil {
		p.children = make(map[string]int32)
	}
	p.children[key] = child
	i, _ := slices.BinarySearch(p.keys, key)
	p.keys = slices.Insert(p.keys, i, key)
	return child
}

// Contains reports whether s was added, descending chunk by chunk and
// checking the leaf set of the node s ends at.
func (t *Tree) Contains(s string) bool {
	if s == "" {
		return false
	}
	cur := int32(0)
	rest := s
	for {
		n := &t.nodes[cur]
		head, tail, split := splitRunes(rest, n.chunk)
		if !split {
			_, found := slices.BinarySearch(n.leaves, rest)
			return found
		}
		child, ok := n.children[head]
		if !ok {
			return false
		}
		cur, rest = child, tail
	}
}

// ContainsApprox answers membership with a single-result prefix query.
// Since leaves are scanned in sorted order the exact string wins the only
// slot whenever it is stored, so this agrees with Contains.
func (t *Tree) ContainsApprox(s string) bool {
	return slices.Contains(t.Suggestions(s, 1), s)
}

// Suggestions returns at most limit stored strings starting with search.
//
// Subtrees larger than the remaining budget are not walked: their immediate
// leaves are returned as-is and each of their child prefixes is returned with
// TruncationMarker appended. Such entries are prefixes of longer matches, not
// stored strings. WithTruncation(false) disables this.
func (t *Tree) Suggestions(search string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	out := make([]string, 0, min(limit, t.Len()))
	t.suggest(0, search, "", 0, utf8.RuneCountInString(search), &out, limit)
	return out
}

func (t *Tree) suggest(idx int32, search, prefix string, consumed, searchLen int, out *[]string, limit int) {
	n := &t.nodes[idx]

	if searchLen > consumed+n.chunk {
		head, _, _ := splitRunes(search[len(prefix):], n.chunk)
		if child, ok := n.children[head]; ok {
			t.suggest(child, search, prefix+head, consumed+n.chunk, searchLen, out, limit)
		}
		return
	}

	for _, leaf := range n.leaves {
		if len(*out) >= limit {
			return
		}
		if target := prefix + leaf; strings.HasPrefix(target, search) {
			*out = append(*out, target)
		}
	}

	for _, key := range n.keys {
		if len(*out) >= limit {
			return
		}
		target := prefix + key
		if !strings.HasPrefix(target, search) {
			continue
		}

		childIdx := n.children[key]
		child := &t.nodes[childIdx]
		if !t.truncate || child.count <= limit-len(*out) || child.count == 1 {
			t.dump(childIdx, target, out, limit)
			continue
		}

		for _, leaf := range child.leaves {
			if len(*out) >= limit {
				return
			}
			*out = append(*out, target+leaf)
		}
		for _, sub := range child.keys {
			if len(*out) >= limit {
				return
			}
			*out = append(*out, target+sub+TruncationMarker)
		}
	}
}

// dump appends every string below idx until the limit is hit.
func (t *Tree) dump(idx int32, prefix string, out *[]string, limit int) {
	n := &t.nodes[idx]
	for _, leaf := range n.leaves {
		if len(*out) >= limit {
			return
		}
		*out = append(*out, prefix+leaf)
	}
	for _, key := range n.keys {
		if len(*out) >= limit {
			return
		}
		t.dump(n.children[key], prefix+key, out, limit)
	}
}

// splitRunes cuts the first n runes off s. ok is false when s has n runes or
// fewer, in which case head is s itself.
func splitRunes(s string, n int) (head, tail string, ok bool) {
	i := 0
	for range n {
		if i >= len(s) {
			return s, "", false
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	if i >= len(s) {
		return s, "", false
	}
	return s[:i], s[i:], true
}
