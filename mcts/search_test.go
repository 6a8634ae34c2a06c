package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ismcts/game"
	"github.com/ismcts/game/minibattle"
)

var turnCategories = []string{minibattle.MovePlayCard, minibattle.MoveAttack, minibattle.MoveEndTurn}

func newTestEngine(t *testing.T, conf Config) *Engine {
	t.Helper()
	e, err := NewEngine(minibattle.NewAdapter(conf.Seed), conf)
	require.NoError(t, err)
	return e
}

func testConfig(iterations, maxDepth int) Config {
	conf := DefaultConfig()
	conf.Iterations = iterations
	conf.MaxDepth = maxDepth
	conf.Seed = 42
	return conf
}

// Acting player can knock out the opponent's last creature in one attack;
// ending the turn instead hands the opponent a lethal counter.
func immediateWinState() *minibattle.State {
	s := &minibattle.State{}
	s.Seats[0] = minibattle.Seat{
		Active: &minibattle.Creature{
			Name: "Striker", HP: 60, MaxHP: 60,
			Attacks: []minibattle.Attack{{Name: "Blast", Damage: 20, Cost: 1}},
		},
		Energy: 1,
	}
	s.Seats[1] = minibattle.Seat{
		Active: &minibattle.Creature{
			Name: "Guard", HP: 20, MaxHP: 20,
			Attacks: []minibattle.Attack{{Name: "Crush", Damage: 60, Cost: 1}},
		},
		Energy: 1,
	}
	return s
}

// Acting player cannot reach their attack's cost before the opponent's
// 40-damage counter lands on their last 20 HP creature.
func doomedState() *minibattle.State {
	s := &minibattle.State{}
	s.Seats[0] = minibattle.Seat{
		Active: &minibattle.Creature{
			Name: "Wisp", HP: 20, MaxHP: 20,
			Attacks: []minibattle.Attack{{Name: "Gleam", Damage: 20, Cost: 5}},
		},
		Hand: []string{minibattle.CardEnergy, minibattle.CardEnergy, minibattle.CardEnergy, minibattle.CardEnergy},
	}
	s.Seats[1] = minibattle.Seat{
		Active: &minibattle.Creature{
			Name: "Brute", HP: 40, MaxHP: 40,
			Attacks: []minibattle.Attack{{Name: "Crush", Damage: 40, Cost: 1}},
		},
		Energy: 3,
	}
	return s
}

func TestImmediateWinRanksFirst(t *testing.T) {
	e := newTestEngine(t, testConfig(50, 25))

	ranked, err := e.ActionsFromState(immediateWinState(), 0, turnCategories)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	best := ranked[0].Action.(minibattle.Move)
	assert.Equal(t, minibattle.MoveAttack, best.Type)
	assert.Equal(t, 0, best.Attack)
	assert.Equal(t, float32(1.0), ranked[0].Mean, "every playout through the winning attack must score 1.0")
	assert.Less(t, ranked[1].Mean, float32(1.0))

	checkTreeInvariants(t, e.lastTree, 50)
}

func TestDoomedPositionScoresLow(t *testing.T) {
	e := newTestEngine(t, testConfig(50, 50))

	ranked, err := e.ActionsFromState(doomedState(), 0, turnCategories)
	require.NoError(t, err)
	require.Len(t, ranked, 5, "four cards to play plus end_turn")

	var sum float32
	for _, sa := range ranked {
		sum += sa.Mean
	}
	assert.LessOrEqual(t, sum/5, float32(0.6))

	checkTreeInvariants(t, e.lastTree, 50)
}

func TestSingleLegalActionSkipsSearch(t *testing.T) {
	e := newTestEngine(t, testConfig(50, 25))

	ranked, err := e.ActionsFromState(minibattle.NewGame(), 0, []string{minibattle.MoveEndTurn})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, minibattle.MoveEndTurn, ranked[0].Action.(minibattle.Move).Type)
	assert.Zero(t, ranked[0].Visits)

	dot, err := e.DOT()
	require.NoError(t, err)
	assert.Empty(t, dot, "no tree is built when the search is skipped")
}

func TestZeroLegalActions(t *testing.T) {
	e := newTestEngine(t, testConfig(50, 25))

	ranked, err := e.ActionsFromState(minibattle.NewGame(), 0, nil)
	require.NoError(t, err)
	assert.Nil(t, ranked)

	_, ok, err := e.BestActionFromState(minibattle.NewGame(), 0, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInputStateUntouchedAcrossIterations(t *testing.T) {
	e := newTestEngine(t, testConfig(50, 25))
	s := minibattle.NewGame()

	before, err := e.orch.Canonical(s)
	require.NoError(t, err)

	_, err = e.ActionsFromState(s, 0, turnCategories)
	require.NoError(t, err)

	after, err := e.orch.Canonical(s)
	require.NoError(t, err)
	assert.Equal(t, before, after, "50 iterations must not leave a fingerprint on the input")
}

func TestSearchIsDeterministicWithFixedSeed(t *testing.T) {
	run := func() []ScoredAction {
		e := newTestEngine(t, testConfig(80, 30))
		ranked, err := e.ActionsFromState(minibattle.NewGame(), 0, turnCategories)
		require.NoError(t, err)
		return ranked
	}
	first, second := run(), run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Mean, second[i].Mean)
		assert.Equal(t, first[i].Visits, second[i].Visits)
		k1, err := newTestEngine(t, testConfig(1, 1)).orch.ActionKey(first[i].Action)
		require.NoError(t, err)
		k2, err := newTestEngine(t, testConfig(1, 1)).orch.ActionKey(second[i].Action)
		require.NoError(t, err)
		assert.Equal(t, k1, k2)
	}
}

func TestSearchFromView(t *testing.T) {
	e := newTestEngine(t, testConfig(50, 25))
	s := immediateWinState()
	view, err := e.orch.PlayerView(s, 0)
	require.NoError(t, err)

	best, ok, err := e.BestActionFromView(view, 0, turnCategories)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, minibattle.MoveAttack, best.(minibattle.Move).Type,
		"the winning attack survives determinization of the opponent's hand")
}

func TestTimeoutOnlyPositionStaysBounded(t *testing.T) {
	s := &minibattle.State{}
	for i := range s.Seats {
		s.Seats[i] = minibattle.Seat{
			Active: &minibattle.Creature{
				Name: "Wall", HP: 200, MaxHP: 200,
				Attacks: []minibattle.Attack{{Name: "Slam", Damage: 1, Cost: 50}},
			},
			Hand: []string{minibattle.CardEnergy},
		}
	}
	e := newTestEngine(t, testConfig(40, 10))
	ranked, err := e.ActionsFromState(s, 0, turnCategories)
	require.NoError(t, err)
	require.NotEmpty(t, ranked)
	for _, sa := range ranked {
		assert.GreaterOrEqual(t, sa.Mean, float32(0.0))
		assert.LessOrEqual(t, sa.Mean, float32(1.0))
	}
	checkTreeInvariants(t, e.lastTree, 40)
}

func TestInvalidConfigRejected(t *testing.T) {
	_, err := NewEngine(minibattle.NewAdapter(1), Config{})
	require.Error(t, err)
}

func TestCandidateGeneratorFailurePropagates(t *testing.T) {
	e, err := NewEngine(failingAdapter{minibattle.NewAdapter(1)}, testConfig(10, 10))
	require.NoError(t, err)

	_, err = e.ActionsFromState(minibattle.NewGame(), 0, turnCategories)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidate generation")
}

// checkTreeInvariants walks the whole arena after a search: statistics stay
// within bounds, sibling actions are distinct, visits are conserved, and the
// root saw every iteration.
func checkTreeInvariants(t *testing.T, tr *Tree, iterations int) {
	t.Helper()
	require.NotNil(t, tr)
	assert.Equal(t, uint32(iterations), tr.node(tr.root).visits)
	for i := range tr.nodes {
		n := ref(i)
		nd := tr.node(n)
		if n != tr.root {
			assert.GreaterOrEqual(t, nd.visits, uint32(1))
			assert.GreaterOrEqual(t, nd.reward, float32(0))
			assert.LessOrEqual(t, nd.reward, float32(nd.visits))
		}
		seen := map[string]struct{}{}
		var childVisits uint32
		for _, kid := range tr.children(n) {
			key := tr.node(kid).actionKey
			_, dup := seen[key]
			assert.False(t, dup, "children must hold distinct actions")
			seen[key] = struct{}{}
			childVisits += tr.node(kid).visits
			assert.Equal(t, n, tr.node(kid).parent)
		}
		assert.LessOrEqual(t, childVisits, nd.visits)
	}
}

type failingAdapter struct {
	*minibattle.Adapter
}

func (f failingAdapter) Candidates(view game.View, player int, categories []string) ([]game.Response, error) {
	return nil, assert.AnError
}
