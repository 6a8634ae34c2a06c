package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ismcts/game"
	"github.com/ismcts/game/minibattle"
)

func openingView(t *testing.T, e *Engine) game.View {
	t.Helper()
	view, err := e.orch.PlayerView(minibattle.NewGame(), 0)
	require.NoError(t, err)
	return view
}

func TestLegalActionsFiltersAndOrders(t *testing.T) {
	e := newTestEngine(t, testConfig(10, 10))
	view := openingView(t, e)

	legal, keys, err := e.LegalActions(view, 0, turnCategories)
	require.NoError(t, err)
	require.Len(t, legal, 5, "Surge is unaffordable and must be filtered")
	require.Len(t, keys, len(legal))

	// Stable order: candidates come back in generation order.
	types := make([]string, len(legal))
	for i, a := range legal {
		types[i] = a.(minibattle.Move).Type
	}
	assert.Equal(t, []string{
		minibattle.MovePlayCard, minibattle.MovePlayCard, minibattle.MovePlayCard,
		minibattle.MoveAttack, minibattle.MoveEndTurn,
	}, types)

	seen := map[string]struct{}{}
	for _, k := range keys {
		_, dup := seen[k]
		assert.False(t, dup, "no duplicate canonical keys")
		seen[k] = struct{}{}
	}
}

func TestLegalActionsEveryOutputReplays(t *testing.T) {
	e := newTestEngine(t, testConfig(10, 10))
	view := openingView(t, e)

	legal, _, err := e.LegalActions(view, 0, turnCategories)
	require.NoError(t, err)

	base, err := e.adapter.ReconstructState(view)
	require.NoError(t, err)
	for _, a := range legal {
		_, err := e.orch.Apply(base, 0, a)
		assert.NoError(t, err, "a legal action must apply cleanly to a fresh clone")
	}
}

func TestLegalActionsDedupes(t *testing.T) {
	e, err := NewEngine(duplicatingAdapter{minibattle.NewAdapter(1)}, testConfig(10, 10))
	require.NoError(t, err)
	view := openingView(t, e)

	legal, _, err := e.LegalActions(view, 0, []string{minibattle.MoveEndTurn})
	require.NoError(t, err)
	assert.Len(t, legal, 1, "the doubled candidate collapses to one action")
}

func TestLegalActionsEmptyCategories(t *testing.T) {
	e := newTestEngine(t, testConfig(10, 10))
	view := openingView(t, e)

	legal, keys, err := e.LegalActions(view, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, legal)
	assert.Empty(t, keys)
}

// duplicatingAdapter returns every candidate twice, as a sloppy generator may.
type duplicatingAdapter struct {
	*minibattle.Adapter
}

func (d duplicatingAdapter) Candidates(view game.View, player int, categories []string) ([]game.Response, error) {
	cands, err := d.Adapter.Candidates(view, player, categories)
	if err != nil {
		return nil, err
	}
	return append(cands, cands...), nil
}
