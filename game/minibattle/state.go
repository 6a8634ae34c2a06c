// Package minibattle is the reference adapter: a deliberately small
// two-player creature battler with hidden hands. Each seat fields an active
// creature backed by a bench, pays energy for attacks, and holds a hand the
// opponent cannot see. It exists to exercise every engine capability
// (determinization, category capture, chained same-player decisions) and to
// give the tests a real rules engine to push against.
package minibattle

import (
	"github.com/ismcts/game"
)

// Card kinds a hand can hold.
const (
	CardEnergy = "energy"
	CardPotion = "potion"
)

// Response categories the rules engine requests.
const (
	MovePlayCard = "play_card"
	MoveAttack   = "attack"
	MoveEndTurn  = "end_turn"
)

// PointsToWin ends the round when either seat reaches it.
const PointsToWin = 3

const potionHeal = 10

// Attack is one attack option on a creature.
type Attack struct {
	Name   string `json:"name"`
	Damage int    `json:"damage"`
	Cost   int    `json:"cost"`
}

// Creature fights while it has HP.
type Creature struct {
	Name    string   `json:"name"`
	HP      int      `json:"hp"`
	MaxHP   int      `json:"max_hp"`
	Attacks []Attack `json:"attacks,omitempty"`
}

// Seat is one player's side of the table.
type Seat struct {
	Active *Creature  `json:"active,omitempty"`
	Bench  []Creature `json:"bench,omitempty"`
	Energy int        `json:"energy"`
	Hand   []string   `json:"hand,omitempty"`
	Points int        `json:"points"`
}

// State is the full game state. Hand contents are the hidden information.
type State struct {
	Seats     [2]Seat      `json:"seats"`
	Turn      int          `json:"turn"`
	TurnDone  bool         `json:"turn_done,omitempty"`
	Completed bool         `json:"completed,omitempty"`
	Waiting   game.Waiting `json:"waiting"`
}

// Move is the game's response message; Type is the category discriminator.
type Move struct {
	Type   string `json:"type"`
	Attack int    `json:"attack,omitempty"`
	Card   int    `json:"card,omitempty"`
}

// View is a player's partial view: their own seat in full, the opponent's
// seat with the hand stripped. OpponentHandCount carries the exact hand size
// when known; -1 means unknown and lets the determinizer approximate.
type View struct {
	Player            int  `json:"player"`
	Self              Seat `json:"self"`
	Opponent          Seat `json:"opponent"`
	OpponentHandCount int  `json:"opponent_hand_count"`
	Turn              int  `json:"turn"`
	Completed         bool `json:"completed,omitempty"`
}

// NewGame deals the standard opening position.
func NewGame() *State {
	seat := func() Seat {
		return Seat{
			Active: &Creature{
				Name:  "Sparkit",
				HP:    60,
				MaxHP: 60,
				Attacks: []Attack{
					{Name: "Jolt", Damage: 20, Cost: 1},
					{Name: "Surge", Damage: 40, Cost: 3},
				},
			},
			Bench: []Creature{{
				Name:    "Embercub",
				HP:      50,
				MaxHP:   50,
				Attacks: []Attack{{Name: "Scorch", Damage: 20, Cost: 1}},
			}},
			Energy: 1,
			Hand:   []string{CardEnergy, CardEnergy, CardPotion},
		}
	}
	return &State{Seats: [2]Seat{seat(), seat()}}
}

func eliminated(seat Seat) bool {
	return seat.Active == nil && len(seat.Bench) == 0
}

// roundOver is the single round-end predicate; Resume, IsRoundEnded, move
// validation and player views all route through it.
func roundOver(s *State) bool {
	if s.Completed {
		return true
	}
	if s.Seats[0].Points >= PointsToWin || s.Seats[1].Points >= PointsToWin {
		return true
	}
	return eliminated(s.Seats[0]) || eliminated(s.Seats[1])
}

func won(s *State, player int) bool {
	return s.Seats[player].Points >= PointsToWin || eliminated(s.Seats[1-player])
}

func totalHP(seat Seat) int {
	hp := 0
	if seat.Active != nil {
		hp += seat.Active.HP
	}
	for _, c := range seat.Bench {
		hp += c.HP
	}
	return hp
}

func copyCreature(c *Creature) *Creature {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Attacks = append([]Attack(nil), c.Attacks...)
	return &cp
}

func copySeat(s Seat) Seat {
	cp := s
	cp.Active = copyCreature(s.Active)
	cp.Bench = make([]Creature, len(s.Bench))
	for i := range s.Bench {
		cp.Bench[i] = *copyCreature(&s.Bench[i])
	}
	cp.Hand = append([]string(nil), s.Hand...)
	return cp
}

// requestCategories is what the rules engine asks for at a decision point.
// Only categories with at least a conceivable move are requested.
func requestCategories(s *State, player int) []string {
	seat := s.Seats[player]
	var cats []string
	if len(seat.Hand) > 0 {
		cats = append(cats, MovePlayCard)
	}
	if seat.Active != nil && len(seat.Active.Attacks) > 0 {
		cats = append(cats, MoveAttack)
	}
	return append(cats, MoveEndTurn)
}

func validateMove(s *State, player int, m Move) error {
	if roundOver(s) {
		return game.Invalid("round is over")
	}
	if player != 0 && player != 1 {
		return game.Invalid("unknown player %d", player)
	}
	if player != s.Turn {
		return game.Invalid("not player %d's turn", player)
	}
	if s.TurnDone {
		return game.Invalid("turn already over")
	}
	seat := s.Seats[player]
	switch m.Type {
	case MovePlayCard:
		if m.Card < 0 || m.Card >= len(seat.Hand) {
			return game.Invalid("no card at %d", m.Card)
		}
		if seat.Hand[m.Card] == CardPotion && seat.Active == nil {
			return game.Invalid("no active creature to heal")
		}
	case MoveAttack:
		if seat.Active == nil {
			return game.Invalid("no active creature")
		}
		if m.Attack < 0 || m.Attack >= len(seat.Active.Attacks) {
			return game.Invalid("no attack at %d", m.Attack)
		}
		if atk := seat.Active.Attacks[m.Attack]; seat.Energy < atk.Cost {
			return game.Invalid("%s costs %d energy, have %d", atk.Name, atk.Cost, seat.Energy)
		}
		if s.Seats[1-player].Active == nil {
			return game.Invalid("no target")
		}
	case MoveEndTurn:
	default:
		return game.Invalid("unknown move type %q", m.Type)
	}
	return nil
}

// applyMove mutates s with an already-validated move. Playing a card keeps
// the turn going; attacking or ending the turn hands it over once the driver
// resumes. The waiting entry is cleared: this player has responded.
func applyMove(s *State, player int, m Move) {
	seat := &s.Seats[player]
	switch m.Type {
	case MovePlayCard:
		card := seat.Hand[m.Card]
		seat.Hand = append(append([]string(nil), seat.Hand[:m.Card]...), seat.Hand[m.Card+1:]...)
		switch card {
		case CardPotion:
			seat.Active.HP += potionHeal
			if seat.Active.HP > seat.Active.MaxHP {
				seat.Active.HP = seat.Active.MaxHP
			}
		default:
			seat.Energy++
		}
	case MoveAttack:
		atk := seat.Active.Attacks[m.Attack]
		seat.Energy -= atk.Cost
		s.Seats[1-player].Active.HP -= atk.Damage
		s.TurnDone = true
	case MoveEndTurn:
		s.TurnDone = true
	}
	s.Waiting = game.Waiting{}
}

// resolveKnockouts scores and replaces knocked-out actives. Both seats are
// checked in the same pass so a simultaneous knockout scores both sides.
// Reports whether anything changed.
func resolveKnockouts(s *State) bool {
	changed := false
	for i := range s.Seats {
		seat := &s.Seats[i]
		if seat.Active == nil || seat.Active.HP > 0 {
			continue
		}
		s.Seats[1-i].Points++
		if len(seat.Bench) > 0 {
			promoted := seat.Bench[0]
			seat.Bench = append([]Creature(nil), seat.Bench[1:]...)
			seat.Active = &promoted
		} else {
			seat.Active = nil
		}
		changed = true
	}
	return changed
}
