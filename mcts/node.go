package mcts

import (
	"github.com/chewxy/math32"
)

// mean returns the node's mean reward, 0 before the first visit.
func (t *Tree) mean(n ref) float32 {
	nd := t.node(n)
	if nd.visits == 0 {
		return 0
	}
	return nd.reward / float32(nd.visits)
}

// ucb1 scores a child for selection:
//
//	mean + C * sqrt(ln(parent visits) / visits)
//
// An unvisited child scores +Inf, which forces it to the front. Selection
// normally never sees one (it stops at unexplored actions first), so this is
// a backstop rather than the expansion mechanism.
func (t *Tree) ucb1(n ref, c float32) float32 {
	nd := t.node(n)
	if nd.visits == 0 {
		return math32.Inf(1)
	}
	parentVisits := t.node(nd.parent).visits
	exploit := nd.reward / float32(nd.visits)
	explore := c * math32.Sqrt(math32.Log(float32(parentVisits))/float32(nd.visits))
	return exploit + explore
}

// bestChild picks the child with the highest UCB1 among those whose action
// key is in the legal set. Ties break toward the lowest index, which is the
// order of expansion. Returns nilRef when no child is legal.
func (t *Tree) bestChild(n ref, legal map[string]struct{}, c float32) ref {
	best := nilRef
	bestScore := math32.Inf(-1)
	for _, kid := range t.children(n) {
		if _, ok := legal[t.node(kid).actionKey]; !ok {
			continue
		}
		score := t.ucb1(kid, c)
		if score > bestScore {
			bestScore = score
			best = kid
		}
	}
	return best
}
