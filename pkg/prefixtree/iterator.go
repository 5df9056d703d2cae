package prefixtree

import "iter"

type frame struct {
	node   int32
	prefix string
	leaf   int
	child  int
}

// Iterator walks every stored string once, leaves of a node before its
// children, without recursion. It must not outlive a mutation of the tree.
type Iterator struct {
	t     *Tree
	stack []frame
}

// Iterator returns a fresh traversal positioned before the first string.
func (t *Tree) Iterator() *Iterator {
	return &Iterator{
		t:     t,
		stack: []frame{{node: 0}},
	}
}

// Next returns the next stored string, or false once the tree is exhausted.
func (it *Iterator) Next() (string, bool) {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		n := &it.t.nodes[top.node]

		if top.leaf < len(n.leaves) {
			s := top.prefix + n.leaves[top.leaf]
			top.leaf++
			return s, true
		}

		if top.child < len(n.keys) {
			key := n.keys[top.child]
			top.child++
			next := frame{node: n.children[key], prefix: top.prefix + key}
			it.stack = append(it.stack, next)
			continue
		}

		it.stack = it.stack[:len(it.stack)-1]
	}
	return "", false
}

// All adapts Iterator to a range-over-func sequence.
func (t *Tree) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		it := t.Iterator()
		for {
			s, ok := it.Next()
			if !ok || !yield(s) {
				return
			}
		}
	}
}
