package minibattle

import (
	"github.com/pkg/errors"

	"github.com/ismcts/game"
)

// Driver runs the minibattle rules over one state it owns exclusively.
type Driver struct {
	state    *State
	handlers []game.Handler
}

var _ game.Driver = (*Driver)(nil)

func asState(s game.State) (*State, error) {
	switch v := s.(type) {
	case *State:
		return v, nil
	case State:
		return &v, nil
	}
	return nil, errors.Errorf("minibattle: unexpected state type %T", s)
}

func asMove(r game.Response) (Move, error) {
	switch v := r.(type) {
	case Move:
		return v, nil
	case *Move:
		return *v, nil
	}
	return Move{}, game.Invalid("unexpected response type %T", r)
}

// Validate is the pure legality check.
func (d *Driver) Validate(player int, action game.Response) error {
	m, err := asMove(action)
	if err != nil {
		return err
	}
	return validateMove(d.state, player, m)
}

// Apply validates then applies. It never advances past the resulting state.
func (d *Driver) Apply(player int, action game.Response) error {
	m, err := asMove(action)
	if err != nil {
		return err
	}
	if err := validateMove(d.state, player, m); err != nil {
		return err
	}
	applyMove(d.state, player, m)
	return nil
}

// Resume advances through the automatic phases (knockout resolution, bench
// promotion, round-end detection, turn hand-over) until the round is over or
// a player must act. When input is needed the acting player's handler is
// asked; an answering handler keeps the round moving inside this one call,
// a deferring (or missing) handler leaves the state paused with a waiting
// entry for that player.
func (d *Driver) Resume() error {
	s := d.state
	for {
		if resolveKnockouts(s) {
			continue
		}
		if roundOver(s) {
			s.Completed = true
			s.Waiting = game.Waiting{}
			return nil
		}
		if s.TurnDone {
			s.Turn = 1 - s.Turn
			s.TurnDone = false
			continue
		}

		player := s.Turn
		categories := requestCategories(s, player)
		h := d.handlerFor(player)
		if h == nil {
			s.Waiting = game.Waiting{Players: []int{player}}
			return nil
		}
		view, err := d.PlayerView(player)
		if err != nil {
			return err
		}
		resp, ok := h.HandleRequest(player, view, categories)
		if !ok {
			s.Waiting = game.Waiting{Players: []int{player}}
			return nil
		}
		m, err := asMove(resp)
		if err != nil {
			return err
		}
		if err := validateMove(s, player, m); err != nil {
			return errors.WithMessage(err, "handler response")
		}
		applyMove(s, player, m)
	}
}

// PlayerView builds the player's partial view: own seat in full, opponent
// seat with the hand stripped but its size exposed.
func (d *Driver) PlayerView(player int) (game.View, error) {
	if player != 0 && player != 1 {
		return nil, errors.Errorf("minibattle: unknown player %d", player)
	}
	s := d.state
	opp := copySeat(s.Seats[1-player])
	count := len(opp.Hand)
	opp.Hand = nil
	return View{
		Player:            player,
		Self:              copySeat(s.Seats[player]),
		Opponent:          opp,
		OpponentHandCount: count,
		Turn:              s.Turn,
		Completed:         roundOver(s),
	}, nil
}

// State returns the driver's state.
func (d *Driver) State() game.State { return d.state }

func (d *Driver) handlerFor(player int) game.Handler {
	if player < 0 || player >= len(d.handlers) {
		return nil
	}
	return d.handlers[player]
}

// handler adapts a decision strategy into the driver's request protocol:
// a strategy error of any kind, deferral included, pauses the driver.
type handler struct {
	strategy game.Strategy
}

func (h handler) HandleRequest(player int, view game.View, categories []string) (game.Response, bool) {
	resp, err := h.strategy.Choose(player, view, categories)
	if err != nil {
		return nil, false
	}
	return resp, true
}
