package suggest

import (
	"slices"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// PatriciaIndex is a WordIndex backed by a patricia trie.
type PatriciaIndex struct {
	trie  *patricia.Trie
	count int
}

// NewPatriciaIndex creates an empty patricia backed word index.
func NewPatriciaIndex() *PatriciaIndex {
	return &PatriciaIndex{trie: patricia.NewTrie()}
}

// Add inserts word and reports whether it was new.
func (p *PatriciaIndex) Add(word string) bool {
	if word == "" {
		return false
	}
	if !p.trie.Insert(patricia.Prefix(word), true) {
		return false
	}
	p.count++
	return true
}

// Suggestions returns up to limit words starting with prefix in
// lexicographic order.
func (p *PatriciaIndex) Suggestions(prefix string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}

	var words []string
	err := p.trie.VisitSubtree(patricia.Prefix(prefix), func(key patricia.Prefix, _ patricia.Item) error {
		words = append(words, string(key))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return []string{}
	}

	slices.Sort(words)
	if len(words) > limit {
		words = words[:limit]
	}
	if words == nil {
		return []string{}
	}
	return words
}

// Len returns the number of distinct words.
func (p *PatriciaIndex) Len() int {
	return p.count
}

// Clear drops every word.
func (p *PatriciaIndex) Clear() {
	p.trie = patricia.NewTrie()
	p.count = 0
}
