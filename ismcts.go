// Package ismcts is the entry point of the decision engine: an Information
// Set Monte Carlo Tree Search for two-player, turn-based games with hidden
// information. Plug a game.Adapter in, configure iterations and depth, and
// ask an Agent for the best action at a decision point.
package ismcts

import (
	"github.com/pkg/errors"

	"github.com/ismcts/game"
	"github.com/ismcts/mcts"
)

// Config is the top level configuration.
type Config struct {
	// Name labels the game in logs and match records.
	Name string
	// MCTSConf configures the per-decision search.
	MCTSConf mcts.Config
}

// DefaultConfig returns a Config with the usual search settings.
func DefaultConfig(name string) Config {
	return Config{Name: name, MCTSConf: mcts.DefaultConfig()}
}

// An Agent owns one search engine over one game adapter. It is not safe for
// concurrent use; decisions are blocking calls.
type Agent struct {
	name    string
	adapter game.Adapter
	engine  *mcts.Engine
}

// NewAgent builds an Agent for the adapter.
func NewAgent(adapter game.Adapter, conf Config) (*Agent, error) {
	engine, err := mcts.NewEngine(adapter, conf.MCTSConf)
	if err != nil {
		return nil, errors.WithMessage(err, "new agent")
	}
	return &Agent{name: conf.Name, adapter: adapter, engine: engine}, nil
}

// Name returns the configured game name.
func (a *Agent) Name() string { return a.name }

// Engine returns the underlying per-decision engine.
func (a *Agent) Engine() *mcts.Engine { return a.engine }

// BestAction searches from the acting player's view and returns the
// top-ranked action. ok=false means the permitted categories admit no legal
// action; that is a result, not an error.
func (a *Agent) BestAction(view game.View, player int, categories []string) (game.Response, bool, error) {
	return a.engine.BestActionFromView(view, player, categories)
}

// BestActionFromState is BestAction starting from a full paused state.
func (a *Agent) BestActionFromState(s game.State, player int, categories []string) (game.Response, bool, error) {
	return a.engine.BestActionFromState(s, player, categories)
}

// RankedActions returns the full ranking of legal root actions, best first.
func (a *Agent) RankedActions(view game.View, player int, categories []string) ([]mcts.ScoredAction, error) {
	return a.engine.ActionsFromView(view, player, categories)
}

// RankedActionsFromState is RankedActions starting from a full paused state.
func (a *Agent) RankedActionsFromState(s game.State, player int, categories []string) ([]mcts.ScoredAction, error) {
	return a.engine.ActionsFromState(s, player, categories)
}
