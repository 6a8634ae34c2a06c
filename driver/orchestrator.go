// Package driver wraps a game-supplied DriverFactory into the orchestration
// surface the search engine works against. Every operation deep-clones the
// state it is given before touching it, so no call ever mutates a state owned
// elsewhere. That boundary is the whole point of this package: shared mutable
// state across iterations is the bug class this design exists to kill.
package driver

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ismcts/game"
)

// Orchestrator drives the external rules engine on behalf of the search.
type Orchestrator struct {
	adapter game.Adapter
}

// New returns an Orchestrator over the adapter.
func New(adapter game.Adapter) *Orchestrator {
	return &Orchestrator{adapter: adapter}
}

// CloneState deep-clones via the codec (marshal then unmarshal).
func (o *Orchestrator) CloneState(s game.State) (game.State, error) {
	raw, err := o.adapter.MarshalState(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshal state")
	}
	clone, err := o.adapter.UnmarshalState(raw)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal state")
	}
	return clone, nil
}

// Canonical returns the canonical serialization of a state.
func (o *Orchestrator) Canonical(s game.State) ([]byte, error) {
	raw, err := o.adapter.MarshalState(s)
	return raw, errors.Wrap(err, "marshal state")
}

// ActionKey returns the canonical serialization of an action as a string.
// Actions with equal keys are the same action.
func (o *Orchestrator) ActionKey(a game.Response) (string, error) {
	raw, err := o.adapter.MarshalResponse(a)
	if err != nil {
		return "", errors.Wrap(err, "marshal response")
	}
	return string(raw), nil
}

// newDriver builds a fresh driver on a private clone of s.
func (o *Orchestrator) newDriver(s game.State, handlers []game.Handler) (game.Driver, error) {
	clone, err := o.CloneState(s)
	if err != nil {
		return nil, err
	}
	d, err := o.adapter.NewDriver(clone, handlers)
	return d, errors.Wrap(err, "new driver")
}

// Validate checks the action against a fresh clone of s. No mutation.
func (o *Orchestrator) Validate(s game.State, player int, action game.Response) error {
	d, err := o.newDriver(s, nil)
	if err != nil {
		return err
	}
	return d.Validate(player, action)
}

// Apply validates and applies the action, returning the resulting state
// without advancing past it.
func (o *Orchestrator) Apply(s game.State, player int, action game.Response) (game.State, error) {
	d, err := o.newDriver(s, nil)
	if err != nil {
		return nil, err
	}
	if err := d.Apply(player, action); err != nil {
		return nil, err
	}
	return d.State(), nil
}

// PlayerView extracts the player's partial view of s.
func (o *Orchestrator) PlayerView(s game.State, player int) (game.View, error) {
	d, err := o.newDriver(s, nil)
	if err != nil {
		return nil, err
	}
	return d.PlayerView(player)
}

// WaitingPlayer returns the first player that must respond on s, or
// game.NoPlayer.
func (o *Orchestrator) WaitingPlayer(s game.State) int {
	return o.adapter.Waiting(s).Next()
}

// IsRoundEnded reports whether the round is over on s.
func (o *Orchestrator) IsRoundEnded(s game.State) bool {
	return o.adapter.IsRoundEnded(s)
}

// ApplyAndResume applies the action and advances the rules engine to the next
// decision point or the end of the round.
func (o *Orchestrator) ApplyAndResume(s game.State, player int, action game.Response) (game.State, error) {
	d, err := o.newDriver(s, nil)
	if err != nil {
		return nil, err
	}
	if err := d.Apply(player, action); err != nil {
		return nil, err
	}
	if err := d.Resume(); err != nil {
		return nil, errors.Wrap(err, "resume")
	}
	return d.State(), nil
}

// ApplyResumeCapture is ApplyAndResume with a capture observer installed: the
// returned categories are the ones the rules engine requested at the resumed
// decision point. Empty categories with an ended round is the terminal case.
func (o *Orchestrator) ApplyResumeCapture(s game.State, player int, action game.Response) (game.State, []string, error) {
	observer := &game.Capture{}
	d, err := o.newDriver(s, o.captureHandlers(observer))
	if err != nil {
		return nil, nil, err
	}
	if err := d.Apply(player, action); err != nil {
		return nil, nil, err
	}
	if err := d.Resume(); err != nil {
		return nil, nil, errors.Wrap(err, "resume")
	}
	if klog.V(3).Enabled() {
		klog.Infof("apply-resume-capture: player=%d captured=%v categories=%v", player, observer.Captured(), observer.Categories)
	}
	return d.State(), observer.Categories, nil
}

// ResumeCapture advances a non-paused state to the next decision point,
// capturing the requested categories along the way.
func (o *Orchestrator) ResumeCapture(s game.State) (game.State, []string, error) {
	observer := &game.Capture{}
	d, err := o.newDriver(s, o.captureHandlers(observer))
	if err != nil {
		return nil, nil, err
	}
	if err := d.Resume(); err != nil {
		return nil, nil, errors.Wrap(err, "resume")
	}
	return d.State(), observer.Categories, nil
}

// Resume advances with the given strategies answering input requests inline.
// Match play and the search both use the capturing variants instead.
func (o *Orchestrator) Resume(s game.State, strategies []game.Strategy) (game.State, error) {
	handlers := make([]game.Handler, len(strategies))
	for i, st := range strategies {
		if st != nil {
			handlers[i] = o.adapter.NewHandler(st)
		}
	}
	d, err := o.newDriver(s, handlers)
	if err != nil {
		return nil, err
	}
	if err := d.Resume(); err != nil {
		return nil, errors.Wrap(err, "resume")
	}
	return d.State(), nil
}

// captureHandlers installs the same observer for both seats: whoever the
// rules engine asks first is the one we want to hear about.
func (o *Orchestrator) captureHandlers(observer *game.Capture) []game.Handler {
	h := o.adapter.NewHandler(observer)
	return []game.Handler{h, h}
}
