package ismcts

import (
	"github.com/pkg/errors"

	"github.com/ismcts/game"
)

// searchStrategy answers input requests by running a full nested decision.
// With game.Capture and the engine's random policy this completes the set of
// shipped decision strategies.
type searchStrategy struct {
	agent *Agent
}

// SearchStrategy returns a strategy that delegates every choice to this
// agent's search.
func (a *Agent) SearchStrategy() game.Strategy {
	return &searchStrategy{agent: a}
}

// RandomStrategy returns the engine's weighted-random rollout policy as a
// strategy.
func (a *Agent) RandomStrategy() game.Strategy {
	return a.engine.RandomStrategy()
}

func (s *searchStrategy) Choose(player int, view game.View, categories []string) (game.Response, error) {
	best, ok, err := s.agent.BestAction(view, player, categories)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.WithStack(game.ErrDeferred)
	}
	return best, nil
}
