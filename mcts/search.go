package mcts

import (
	"sort"
	"time"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"github.com/ismcts/driver"
	"github.com/ismcts/game"
)

// Config configures a search Engine.
type Config struct {
	// Iterations is the number of MCTS iterations per decision.
	Iterations int
	// MaxDepth caps the moves of a single simulation playout.
	MaxDepth int
	// ExplorationConstant is the C of UCB1.
	ExplorationConstant float32
	// Seed seeds the engine's random source. Zero means time-seeded; fix it
	// for reproducible rankings.
	Seed uint64
}

// DefaultConfig returns the usual starting point.
func DefaultConfig() Config {
	return Config{
		Iterations:          100,
		MaxDepth:            50,
		ExplorationConstant: math32.Sqrt(2),
	}
}

// IsValid reports whether the config can run a search.
func (c Config) IsValid() bool {
	return c.Iterations > 0 && c.MaxDepth > 0 && c.ExplorationConstant > 0
}

// ScoredAction is one ranked root action.
type ScoredAction struct {
	Action game.Response
	// Mean is the action's mean simulation reward in [0, 1].
	Mean float32
	// Visits is how many iterations went through the action.
	Visits int
}

// Engine runs one decision at a time: build a root, iterate
// determinize/select/expand/simulate/backpropagate, rank the root's children.
// It is strictly single-threaded and owns its tree and random source
// exclusively; the tree never survives past the decision that built it.
type Engine struct {
	adapter game.Adapter
	orch    *driver.Orchestrator
	conf    Config
	src     rand.Source

	// optional adapter capabilities, resolved once
	weighter game.ActionWeighter
	timeout  game.TimeoutRewarder

	// tree of the most recent decision, kept only for DOT dumps
	lastTree *Tree
}

// NewEngine builds an Engine over the adapter.
func NewEngine(adapter game.Adapter, conf Config) (*Engine, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("invalid search config: %+v", conf)
	}
	seed := conf.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	e := &Engine{
		adapter: adapter,
		orch:    driver.New(adapter),
		conf:    conf,
		src:     rand.NewSource(seed),
	}
	if w, ok := adapter.(game.ActionWeighter); ok {
		e.weighter = w
	}
	if tr, ok := adapter.(game.TimeoutRewarder); ok {
		e.timeout = tr
	}
	return e, nil
}

// Orchestrator exposes the engine's driver orchestrator, mainly for match
// play and tests that want the same clone discipline.
func (e *Engine) Orchestrator() *driver.Orchestrator { return e.orch }

// rootInput is either a player view to determinize from, or a full paused
// state to clone per iteration.
type rootInput struct {
	view     game.View
	state    game.State
	hasState bool
}

// ActionsFromView ranks the legal root actions for the acting player's view.
// A nil, nil return means the permitted categories admit no legal action.
func (e *Engine) ActionsFromView(view game.View, player int, categories []string) ([]ScoredAction, error) {
	return e.run(rootInput{view: view}, player, categories)
}

// ActionsFromState is ActionsFromView starting from a full paused state.
func (e *Engine) ActionsFromState(s game.State, player int, categories []string) ([]ScoredAction, error) {
	return e.run(rootInput{state: s, hasState: true}, player, categories)
}

// BestActionFromView returns the top-ranked action, with ok=false when no
// legal action exists.
func (e *Engine) BestActionFromView(view game.View, player int, categories []string) (game.Response, bool, error) {
	ranked, err := e.ActionsFromView(view, player, categories)
	if err != nil || len(ranked) == 0 {
		return nil, false, err
	}
	return ranked[0].Action, true, nil
}

// BestActionFromState is BestActionFromView starting from a full paused state.
func (e *Engine) BestActionFromState(s game.State, player int, categories []string) (game.Response, bool, error) {
	ranked, err := e.ActionsFromState(s, player, categories)
	if err != nil || len(ranked) == 0 {
		return nil, false, err
	}
	return ranked[0].Action, true, nil
}

func (e *Engine) run(in rootInput, player int, categories []string) ([]ScoredAction, error) {
	view := in.view
	if in.hasState {
		var err error
		view, err = e.orch.PlayerView(in.state, player)
		if err != nil {
			return nil, err
		}
	}
	legal, _, err := e.LegalActions(view, player, categories)
	if err != nil {
		return nil, err
	}
	if len(legal) == 0 {
		e.lastTree = nil
		return nil, nil
	}
	if len(legal) == 1 {
		// Nothing to search over.
		e.lastTree = nil
		return []ScoredAction{{Action: legal[0]}}, nil
	}

	t := newTree()
	e.lastTree = t
	for i := 0; i < e.conf.Iterations; i++ {
		if err := e.iterate(t, in, player, categories); err != nil {
			return nil, err
		}
	}
	ranked := e.rank(t)
	if klog.V(1).Enabled() {
		klog.Infof("search: player=%d iterations=%d nodes=%d actions=%d", player, e.conf.Iterations, t.Size(), len(ranked))
	}
	return ranked, nil
}

// iterate runs one full determinize/select/expand/simulate/backpropagate
// pass. Every phase works on states no other iteration can see.
func (e *Engine) iterate(t *Tree, in rootInput, player int, categories []string) error {
	s, err := e.determinize(in, player)
	if err != nil {
		return err
	}
	sel, err := e.descend(t, s, categories)
	if err != nil {
		return err
	}
	if sel.ended {
		if sel.node != t.root {
			r := e.adapter.RoundReward(sel.state, t.node(sel.node).lastPlayer)
			t.backpropagate(sel.node, r)
		}
		return nil
	}
	child, post, err := e.expand(t, sel.node, sel.state, sel.categories)
	if err != nil {
		return err
	}
	if child == nilRef {
		if sel.node != t.root {
			r := e.adapter.RoundReward(sel.state, t.node(sel.node).lastPlayer)
			t.backpropagate(sel.node, r)
		}
		return nil
	}
	reward, err := e.simulate(post, t.node(child).lastPlayer)
	if err != nil {
		return err
	}
	t.backpropagate(child, reward)
	return nil
}

// determinize materializes this iteration's root state: sample hidden
// information from the view (or clone the supplied paused state), then wipe
// the waiting substructure and re-pause it at the acting player so nothing
// from a previous iteration's roll-call leaks through.
func (e *Engine) determinize(in rootInput, player int) (game.State, error) {
	var (
		s   game.State
		err error
	)
	if in.hasState {
		s, err = e.orch.CloneState(in.state)
	} else {
		s, err = e.adapter.Determinize(in.view)
		if err != nil {
			err = errors.Wrap(err, "determinize")
		}
	}
	if err != nil {
		return nil, err
	}
	return e.adapter.WithWaiting(s, game.Waiting{Players: []int{player}})
}

// rank orders the root's children by mean reward, breaking ties toward the
// better-visited action.
func (e *Engine) rank(t *Tree) []ScoredAction {
	kids := t.children(t.root)
	ranked := make([]ScoredAction, 0, len(kids))
	for _, kid := range kids {
		nd := t.node(kid)
		ranked = append(ranked, ScoredAction{
			Action: nd.lastAction,
			Mean:   t.mean(kid),
			Visits: int(nd.visits),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Mean != ranked[j].Mean {
			return ranked[i].Mean > ranked[j].Mean
		}
		return ranked[i].Visits > ranked[j].Visits
	})
	return ranked
}
