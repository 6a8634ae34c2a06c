// Package mcts implements the per-decision Information Set Monte Carlo Tree
// Search: a tree arena, the four phases (selection, expansion, simulation,
// backpropagation) and the Engine that loops them over determinizations.
package mcts

import (
	"github.com/ismcts/game"
)

// ref is essentially *node: an index into the tree's arena. Storing indices
// instead of pointers keeps parent links cheap and frees the whole tree in
// one go when the tree is dropped.
type ref int32

const nilRef ref = -1

// node carries the statistics for one explored action. The root is a node
// too, with no parent and no action; its reward field is meaningless and only
// its visit count participates in UCB1 denominators.
type node struct {
	parent     ref
	lastPlayer int           // player whose move produced this node
	lastAction game.Response // never mutated after construction
	actionKey  string        // canonical serialization of lastAction
	visits     uint32
	reward     float32 // total reward; mean = reward/visits
	children   []ref
}

// Tree is an arena of nodes, created per decision and discarded with it.
// Game states are never stored in it.
type Tree struct {
	nodes []node
	root  ref
}

func newTree() *Tree {
	t := &Tree{nodes: make([]node, 0, 512)}
	t.root = t.alloc(nilRef, game.NoPlayer, nil, "")
	return t
}

// alloc appends a fresh node and returns its handle.
func (t *Tree) alloc(parent ref, lastPlayer int, action game.Response, key string) ref {
	t.nodes = append(t.nodes, node{
		parent:     parent,
		lastPlayer: lastPlayer,
		lastAction: action,
		actionKey:  key,
	})
	return ref(len(t.nodes) - 1)
}

func (t *Tree) node(n ref) *node { return &t.nodes[int(n)] }

func (t *Tree) children(n ref) []ref { return t.nodes[int(n)].children }

// addChild allocates a child of n for the given action and returns it.
func (t *Tree) addChild(n ref, lastPlayer int, action game.Response, key string) ref {
	child := t.alloc(n, lastPlayer, action, key)
	parent := t.node(n)
	parent.children = append(parent.children, child)
	return child
}

// Size returns the number of nodes, root included.
func (t *Tree) Size() int { return len(t.nodes) }
