package minibattle

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/ismcts/game"
)

// Adapter plugs minibattle into the engine. It carries its own seeded random
// source for determinization so searches stay reproducible end to end.
type Adapter struct {
	rng *rand.Rand
}

var (
	_ game.Adapter         = (*Adapter)(nil)
	_ game.TimeoutRewarder = (*Adapter)(nil)
	_ game.ActionWeighter  = (*Adapter)(nil)
)

// NewAdapter returns an Adapter. Seed zero means time-seeded.
func NewAdapter(seed uint64) *Adapter {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Adapter{rng: rand.New(rand.NewSource(seed))}
}

// MarshalState canonicalizes a state as JSON.
func (a *Adapter) MarshalState(s game.State) ([]byte, error) {
	st, err := asState(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(st)
}

// UnmarshalState revives a state.
func (a *Adapter) UnmarshalState(raw []byte) (game.State, error) {
	st := &State{}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, errors.Wrap(err, "minibattle: unmarshal state")
	}
	return st, nil
}

// MarshalResponse canonicalizes a move as JSON.
func (a *Adapter) MarshalResponse(r game.Response) ([]byte, error) {
	m, err := asMove(r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// ResponseType returns the move's category.
func (a *Adapter) ResponseType(r game.Response) string {
	m, err := asMove(r)
	if err != nil {
		return ""
	}
	return m.Type
}

// Candidates enumerates the superset of moves in the requested categories.
// No legality checks here; the engine validates every candidate anyway.
func (a *Adapter) Candidates(view game.View, player int, categories []string) ([]game.Response, error) {
	v, err := asView(view)
	if err != nil {
		return nil, err
	}
	var out []game.Response
	for _, cat := range categories {
		switch cat {
		case MovePlayCard:
			for i := range v.Self.Hand {
				out = append(out, Move{Type: MovePlayCard, Card: i})
			}
		case MoveAttack:
			if v.Self.Active != nil {
				for i := range v.Self.Active.Attacks {
					out = append(out, Move{Type: MoveAttack, Attack: i})
				}
			}
		case MoveEndTurn:
			out = append(out, Move{Type: MoveEndTurn})
		}
	}
	return out, nil
}

// NewDriver builds a rules driver on the state.
func (a *Adapter) NewDriver(s game.State, handlers []game.Handler) (game.Driver, error) {
	st, err := asState(s)
	if err != nil {
		return nil, err
	}
	return &Driver{state: st, handlers: handlers}, nil
}

// NewHandler wraps a strategy in the driver's request protocol.
func (a *Adapter) NewHandler(strategy game.Strategy) game.Handler {
	return handler{strategy: strategy}
}

// Determinize samples a complete state from the view: the opponent's hidden
// hand is filled with randomly drawn cards. The exact hand size from the
// view is used when it carries one; otherwise the acting player's own hand
// size stands in for it.
func (a *Adapter) Determinize(view game.View) (game.State, error) {
	v, err := asView(view)
	if err != nil {
		return nil, err
	}
	count := v.OpponentHandCount
	if count < 0 {
		count = len(v.Self.Hand)
	}
	hand := make([]string, count)
	for i := range hand {
		if a.rng.Float64() < 0.7 {
			hand[i] = CardEnergy
		} else {
			hand[i] = CardPotion
		}
	}
	return v.toState(hand), nil
}

// ReconstructState rebuilds a validation state from the view. The opponent's
// hand is placeholder energy: validating the viewing player's own actions
// never looks at it.
func (a *Adapter) ReconstructState(view game.View) (game.State, error) {
	v, err := asView(view)
	if err != nil {
		return nil, err
	}
	count := v.OpponentHandCount
	if count < 0 {
		count = 0
	}
	hand := make([]string, count)
	for i := range hand {
		hand[i] = CardEnergy
	}
	return v.toState(hand), nil
}

// IsRoundEnded routes through the one round-over predicate.
func (a *Adapter) IsRoundEnded(s game.State) bool {
	st, err := asState(s)
	if err != nil {
		return false
	}
	return roundOver(st)
}

// RoundReward scores a round: 1 win, 0 loss, 0.5 for a draw. Simultaneous
// elimination counts as a plain draw.
func (a *Adapter) RoundReward(s game.State, player int) float32 {
	st, err := asState(s)
	if err != nil {
		return 0.5
	}
	mine, theirs := won(st, player), won(st, 1-player)
	switch {
	case mine && theirs:
		return 0.5
	case mine:
		return 1
	case theirs:
		return 0
	}
	return 0.5
}

// TimeoutReward scores a round cut off by the move cap: a lead bonus for
// being ahead on points (then total HP), a deficit penalty for trailing.
func (a *Adapter) TimeoutReward(s game.State, player int) float32 {
	st, err := asState(s)
	if err != nil {
		return 0.5
	}
	mine, theirs := st.Seats[player], st.Seats[1-player]
	lead := mine.Points - theirs.Points
	if lead == 0 {
		lead = totalHP(mine) - totalHP(theirs)
	}
	switch {
	case lead > 0:
		return 0.7
	case lead < 0:
		return 0.3
	}
	return 0.5
}

// ActionWeight keeps the ever-available end_turn from dominating rollouts.
func (a *Adapter) ActionWeight(action game.Response) float64 {
	if a.ResponseType(action) == MoveEndTurn {
		return 0.1
	}
	return 1.0
}

// Waiting reads the state's waiting substructure.
func (a *Adapter) Waiting(s game.State) game.Waiting {
	st, err := asState(s)
	if err != nil {
		return game.Waiting{}
	}
	return st.Waiting
}

// WithWaiting replaces the waiting substructure on a copy of the state.
func (a *Adapter) WithWaiting(s game.State, w game.Waiting) (game.State, error) {
	st, err := asState(s)
	if err != nil {
		return nil, err
	}
	cp := *st
	cp.Seats[0] = copySeat(st.Seats[0])
	cp.Seats[1] = copySeat(st.Seats[1])
	cp.Waiting = w
	return &cp, nil
}

func asView(view game.View) (View, error) {
	switch v := view.(type) {
	case View:
		return v, nil
	case *View:
		return *v, nil
	}
	return View{}, errors.Errorf("minibattle: unexpected view type %T", view)
}

// toState assembles a full state from the view plus a concrete opponent hand.
func (v View) toState(opponentHand []string) *State {
	self := copySeat(v.Self)
	opp := copySeat(v.Opponent)
	opp.Hand = opponentHand
	st := &State{Turn: v.Turn, Completed: v.Completed}
	st.Seats[v.Player] = self
	st.Seats[1-v.Player] = opp
	st.Waiting = game.Waiting{Players: []int{v.Player}}
	return st
}
