package mcts

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ismcts/game"
)

// selection is where a descent came to rest: the node to expand from, the
// paused (or terminal) state there, and the categories active at that depth.
type selection struct {
	node       ref
	state      game.State
	categories []string
	ended      bool
}

// descend walks the tree from the root, at each level taking the explored
// child with the best UCB1 among the actions that are legal under the
// current determinization. It stops when some legal action is unexplored,
// when no legal action exists, or when the round ends. The caller's state is
// never mutated: every step re-clones before handing off.
//
// Categories at the root are the caller's; below that they are whatever the
// rules engine requested at the previous transition, as captured by
// apply-resume-capture.
func (e *Engine) descend(t *Tree, s game.State, rootCategories []string) (selection, error) {
	cur := t.root
	categories := rootCategories
	for depth := 0; ; depth++ {
		if e.adapter.IsRoundEnded(s) {
			return selection{node: cur, state: s, ended: true}, nil
		}
		player := e.orch.WaitingPlayer(s)
		if player == game.NoPlayer {
			return selection{}, errors.WithStack(game.ErrNoWaitingPlayer)
		}
		view, err := e.orch.PlayerView(s, player)
		if err != nil {
			return selection{}, err
		}
		legal, keys, err := e.LegalActions(view, player, categories)
		if err != nil {
			return selection{}, err
		}
		if len(legal) == 0 {
			// Terminal for this determinization; expansion will turn this
			// into a reward for the node we stopped at.
			return selection{node: cur, state: s, categories: categories}, nil
		}

		explored := make(map[string]struct{}, len(t.children(cur)))
		for _, kid := range t.children(cur) {
			explored[t.node(kid).actionKey] = struct{}{}
		}
		for _, k := range keys {
			if _, ok := explored[k]; !ok {
				// An expansion opportunity exists here.
				return selection{node: cur, state: s, categories: categories}, nil
			}
		}

		best := t.bestChild(cur, keySet(keys), e.conf.ExplorationConstant)
		if best == nilRef {
			return selection{node: cur, state: s, categories: categories}, nil
		}
		next, nextCategories, err := e.orch.ApplyResumeCapture(s, player, t.node(best).lastAction)
		if err != nil {
			return selection{}, err
		}
		// Isolate from whatever the next level does with the orchestrator.
		s, err = e.orch.CloneState(next)
		if err != nil {
			return selection{}, err
		}
		categories = nextCategories
		cur = best
		if klog.V(3).Enabled() {
			klog.Infof("select: depth=%d player=%d node=%d categories=%v", depth, player, best, categories)
		}
	}
}
