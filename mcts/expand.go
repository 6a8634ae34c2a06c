package mcts

import (
	"github.com/pkg/errors"

	"github.com/ismcts/game"
)

// expand creates exactly one new child of n for the first legal action not
// yet among n's children, and returns it with the state resulting from
// applying that action without resuming. Simulation owns the resume, so the
// expanded state's only difference from the input is the applied action.
//
// Returns nilRef (and no state) when the round has ended or every legal
// action is already explored.
func (e *Engine) expand(t *Tree, n ref, s game.State, categories []string) (ref, game.State, error) {
	if e.adapter.IsRoundEnded(s) {
		return nilRef, nil, nil
	}
	waiting := e.adapter.Waiting(s)
	if !waiting.IsWaiting() {
		return nilRef, nil, errors.WithStack(game.ErrNotPaused)
	}
	player := waiting.Next()

	view, err := e.orch.PlayerView(s, player)
	if err != nil {
		return nilRef, nil, err
	}
	legal, keys, err := e.LegalActions(view, player, categories)
	if err != nil {
		return nilRef, nil, err
	}

	explored := make(map[string]struct{}, len(t.children(n)))
	for _, kid := range t.children(n) {
		explored[t.node(kid).actionKey] = struct{}{}
	}
	for i, key := range keys {
		if _, ok := explored[key]; ok {
			continue
		}
		post, err := e.orch.Apply(s, player, legal[i])
		if err != nil {
			// The action just validated; a rejection here is a game-logic bug.
			return nilRef, nil, errors.Wrap(err, "apply expansion action")
		}
		child := t.addChild(n, player, legal[i], key)
		return child, post, nil
	}
	return nilRef, nil, nil
}
