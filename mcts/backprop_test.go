package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The scenario from the drawing board: player 0 ends the turn, player 1
// attacks, the attack simulates to a win for player 1. The attack node keeps
// the reward, the end-turn node sees it flipped, the root only counts the
// visit.
func TestBackpropagateNegamax(t *testing.T) {
	tr := newTree()
	endTurn := tr.addChild(tr.root, 0, "end_turn", "k-end")
	attack := tr.addChild(endTurn, 1, "attack", "k-atk")

	tr.backpropagate(attack, 1.0)

	assert.Equal(t, float32(1.0), tr.node(attack).reward)
	assert.Equal(t, uint32(1), tr.node(attack).visits)
	assert.Equal(t, float32(0.0), tr.node(endTurn).reward)
	assert.Equal(t, uint32(1), tr.node(endTurn).visits)
	assert.Equal(t, uint32(1), tr.node(tr.root).visits)
	assert.Equal(t, float32(0), tr.node(tr.root).reward, "root reward stays meaningless")
}

// Same player on consecutive levels: no flip. A chained-turn path 0,0,1 seen
// from the leaf up must credit r, 1-r, 1-r.
func TestBackpropagateSamePlayerNoFlip(t *testing.T) {
	tr := newTree()
	first := tr.addChild(tr.root, 0, "play_card", "k1")
	second := tr.addChild(first, 0, "play_card", "k2")
	third := tr.addChild(second, 1, "attack", "k3")

	tr.backpropagate(third, 0.25)

	assert.Equal(t, float32(0.25), tr.node(third).reward)
	assert.Equal(t, float32(0.75), tr.node(second).reward)
	assert.Equal(t, float32(0.75), tr.node(first).reward, "0 -> 0 keeps the sign")
	assert.Equal(t, uint32(1), tr.node(tr.root).visits)
}

// Alternating path A,B,A: reward r lands on A-nodes, 1-r on B-nodes.
func TestBackpropagateAlternating(t *testing.T) {
	tr := newTree()
	a1 := tr.addChild(tr.root, 0, "m1", "k1")
	b := tr.addChild(a1, 1, "m2", "k2")
	a2 := tr.addChild(b, 0, "m3", "k3")

	tr.backpropagate(a2, 0.8)

	assert.Equal(t, float32(0.8), tr.node(a2).reward)
	assert.Equal(t, float32(0.2), tr.node(b).reward)
	assert.InDelta(t, 0.8, tr.node(a1).reward, 1e-6)
}

func TestBackpropagatePreservesShape(t *testing.T) {
	tr := newTree()
	a := tr.addChild(tr.root, 0, "m1", "k1")
	b := tr.addChild(a, 1, "m2", "k2")
	sizeBefore := tr.Size()

	tr.backpropagate(b, 0.5)
	tr.backpropagate(b, 0.5)

	assert.Equal(t, sizeBefore, tr.Size())
	assert.Equal(t, []ref{a}, tr.children(tr.root))
	assert.Equal(t, []ref{b}, tr.children(a))
	assert.Equal(t, uint32(2), tr.node(b).visits)
	assert.Equal(t, uint32(2), tr.node(tr.root).visits)
}

func TestBackpropagateAccumulates(t *testing.T) {
	tr := newTree()
	a := tr.addChild(tr.root, 0, "m1", "k1")

	tr.backpropagate(a, 1.0)
	tr.backpropagate(a, 0.0)
	tr.backpropagate(a, 0.5)

	assert.Equal(t, uint32(3), tr.node(a).visits)
	assert.Equal(t, float32(1.5), tr.node(a).reward)
	assert.Equal(t, float32(0.5), tr.mean(a))
}
