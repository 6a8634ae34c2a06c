package mcts

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/ismcts/game"
)

// simulate plays out a post-action state with the weighted-random policy
// until the round ends or the move cap is hit, and returns the reward from
// the given player's perspective. One move is one resume/apply cycle.
func (e *Engine) simulate(s game.State, player int) (float32, error) {
	for move := 0; move < e.conf.MaxDepth; move++ {
		next, categories, err := e.orch.ResumeCapture(s)
		if err != nil {
			return 0, err
		}
		s = next
		if e.adapter.IsRoundEnded(s) {
			return e.adapter.RoundReward(s, player), nil
		}
		acting := e.orch.WaitingPlayer(s)
		if acting == game.NoPlayer {
			return 0, errors.WithStack(game.ErrNoWaitingPlayer)
		}
		view, err := e.orch.PlayerView(s, acting)
		if err != nil {
			return 0, err
		}
		legal, _, err := e.LegalActions(view, acting, categories)
		if err != nil {
			return 0, err
		}
		if len(legal) == 0 {
			// Dead end: nobody can move but the round isn't flagged over.
			// Score it as terminal rather than poisoning the iteration.
			return e.adapter.RoundReward(s, player), nil
		}
		s, err = e.orch.Apply(s, acting, e.pickWeighted(legal))
		if err != nil {
			return 0, err
		}
	}
	return e.timeoutReward(s, player), nil
}

// pickWeighted samples one action, biased by the adapter's ActionWeight when
// it has one. This is what keeps universally-available no-op moves from
// dominating rollouts.
func (e *Engine) pickWeighted(legal []game.Response) game.Response {
	if len(legal) == 1 {
		return legal[0]
	}
	weights := make([]float64, len(legal))
	for i, a := range legal {
		weights[i] = e.actionWeight(a)
	}
	w := sampleuv.NewWeighted(weights, e.src)
	i, ok := w.Take()
	if !ok {
		i = 0
	}
	return legal[i]
}

func (e *Engine) actionWeight(a game.Response) float64 {
	if e.weighter == nil {
		return 1.0
	}
	return e.weighter.ActionWeight(a)
}

func (e *Engine) timeoutReward(s game.State, player int) float32 {
	if e.timeout != nil {
		return e.timeout.TimeoutReward(s, player)
	}
	return e.adapter.RoundReward(s, player)
}
