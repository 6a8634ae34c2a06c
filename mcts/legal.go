package mcts

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/ismcts/game"
)

// LegalActions runs the candidate pipeline: ask the adapter for candidates in
// the requested categories, rebuild a validation state from the view, check
// every candidate against a fresh clone of it, and dedupe by canonical
// serialization. The returned keys are index-aligned with the actions.
//
// Rejections are silently filtered; any other failure while validating is an
// adapter bug and the batch's failures come back aggregated.
func (e *Engine) LegalActions(view game.View, player int, categories []string) ([]game.Response, []string, error) {
	candidates, err := e.adapter.Candidates(view, player, categories)
	if err != nil {
		return nil, nil, errors.Wrap(err, "candidate generation")
	}
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	base, err := e.adapter.ReconstructState(view)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reconstruct state from view")
	}

	var (
		actions []game.Response
		keys    []string
		failed  *multierror.Error
	)
	seen := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		if err := e.orch.Validate(base, player, cand); err != nil {
			if game.IsInvalidAction(err) {
				continue
			}
			failed = multierror.Append(failed, err)
			continue
		}
		key, err := e.orch.ActionKey(cand)
		if err != nil {
			failed = multierror.Append(failed, err)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		actions = append(actions, cand)
		keys = append(keys, key)
	}
	if err := failed.ErrorOrNil(); err != nil {
		return nil, nil, errors.Wrap(err, "validate candidates")
	}
	return actions, keys, nil
}

// keySet turns the aligned key slice into a membership set.
func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
