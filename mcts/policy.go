package mcts

import (
	"github.com/pkg/errors"

	"github.com/ismcts/game"
)

// randomStrategy answers input requests with the engine's rollout policy: a
// weighted-random pick among the legal actions. It is the same policy
// simulate uses, packaged as a game.Strategy for match play.
type randomStrategy struct {
	e *Engine
}

// RandomStrategy returns the engine's weighted-random decision strategy.
func (e *Engine) RandomStrategy() game.Strategy {
	return &randomStrategy{e: e}
}

func (r *randomStrategy) Choose(player int, view game.View, categories []string) (game.Response, error) {
	legal, _, err := r.e.LegalActions(view, player, categories)
	if err != nil {
		return nil, err
	}
	if len(legal) == 0 {
		return nil, errors.WithStack(game.ErrDeferred)
	}
	return r.e.pickWeighted(legal), nil
}
