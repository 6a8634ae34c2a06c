package ismcts

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ismcts/driver"
	"github.com/ismcts/game"
)

// Match plays one full round between two strategies by driving the rules
// engine to each decision point and asking the acting seat's strategy. It is
// the host-side turn loop the engine itself stays out of.
type Match struct {
	adapter    game.Adapter
	orch       *driver.Orchestrator
	strategies [2]game.Strategy
	// MaxMoves caps the round; past it the match is scored as it stands.
	MaxMoves int
}

// MatchResult is the outcome of one round.
type MatchResult struct {
	Final   game.State
	Moves   int
	Rewards [2]float32
	// Winner is the winning seat, or game.NoPlayer on a draw.
	Winner int
}

// NewMatch pairs two strategies over the adapter. Seat 0 plays first.
func NewMatch(adapter game.Adapter, s0, s1 game.Strategy, maxMoves int) *Match {
	return &Match{
		adapter:    adapter,
		orch:       driver.New(adapter),
		strategies: [2]game.Strategy{s0, s1},
		MaxMoves:   maxMoves,
	}
}

// Play runs the round from the initial state. The input state is cloned, not
// mutated.
func (m *Match) Play(initial game.State) (MatchResult, error) {
	s, err := m.orch.CloneState(initial)
	if err != nil {
		return MatchResult{}, err
	}
	moves := 0
	for ; moves < m.MaxMoves; moves++ {
		next, categories, err := m.orch.ResumeCapture(s)
		if err != nil {
			return MatchResult{}, err
		}
		s = next
		if m.adapter.IsRoundEnded(s) {
			break
		}
		player := m.orch.WaitingPlayer(s)
		if player == game.NoPlayer {
			return MatchResult{}, errors.WithStack(game.ErrNoWaitingPlayer)
		}
		view, err := m.orch.PlayerView(s, player)
		if err != nil {
			return MatchResult{}, err
		}
		action, err := m.strategies[player].Choose(player, view, categories)
		if err != nil {
			if game.IsDeferred(err) {
				break // nobody can move; score as it stands
			}
			return MatchResult{}, errors.WithMessage(err, "strategy choose")
		}
		s, err = m.orch.Apply(s, player, action)
		if err != nil {
			return MatchResult{}, err
		}
		if klog.V(2).Enabled() {
			klog.Infof("match: move=%d player=%d action=%s", moves, player, m.adapter.ResponseType(action))
		}
	}

	res := MatchResult{Final: s, Moves: moves, Winner: game.NoPlayer}
	res.Rewards[0] = m.adapter.RoundReward(s, 0)
	res.Rewards[1] = m.adapter.RoundReward(s, 1)
	switch {
	case res.Rewards[0] > res.Rewards[1]:
		res.Winner = 0
	case res.Rewards[1] > res.Rewards[0]:
		res.Winner = 1
	}
	return res, nil
}
