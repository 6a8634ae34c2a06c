package game

// Codec canonicalizes and revives the opaque values. A deep clone is
// marshal followed by unmarshal; canonical equality is byte equality of the
// marshaled form.
type Codec interface {
	MarshalState(s State) ([]byte, error)
	UnmarshalState(raw []byte) (State, error)
	MarshalResponse(r Response) ([]byte, error)
	// ResponseType returns the response's category discriminator.
	ResponseType(r Response) string
}

// CandidateGenerator enumerates candidate actions for a player restricted to
// the requested categories. The result may be a superset of the legal
// actions and may contain duplicates; the engine validates and dedupes.
type CandidateGenerator interface {
	Candidates(view View, player int, categories []string) ([]Response, error)
}

// Driver runs the external rules engine over one concrete state. A driver
// owns its state exclusively: the engine never hands it a state that anything
// else still references.
type Driver interface {
	// Apply validates then applies the action for the player. It does not
	// advance past the resulting state. A rejected action surfaces as an
	// *InvalidActionError.
	Apply(player int, action Response) error
	// Resume advances the rules engine through automatic phases until it is
	// waiting for a player or the round has ended. When input is needed the
	// acting player's handler is asked first; a deferring handler leaves the
	// state paused.
	Resume() error
	// Validate is Apply without the mutation.
	Validate(player int, action Response) error
	// PlayerView extracts the player's partial view of the current state.
	PlayerView(player int) (View, error)
	// State returns the driver's current state. The caller may keep it; the
	// driver is discarded afterwards.
	State() State
}

// DriverFactory builds a Driver on a state with per-player handlers
// (handlers[i] serves player i; entries may be nil). The factory must not
// retain its input state after returning.
type DriverFactory interface {
	NewDriver(state State, handlers []Handler) (Driver, error)
}

// Handler receives the rules engine's requests for input during Resume.
// Returning ok=false defers the decision and pauses the driver.
type Handler interface {
	HandleRequest(player int, view View, categories []string) (r Response, ok bool)
}

// HandlerFactory wraps a decision strategy in a game-specific handler.
type HandlerFactory interface {
	NewHandler(strategy Strategy) Handler
}

// Determinizer materializes a complete state consistent with a partial view,
// sampling hidden information. Successive calls may return different states;
// the sampling must draw from a seedable source.
type Determinizer interface {
	Determinize(view View) (State, error)
}

// RoundEndDetector reports whether the round is over on a state.
type RoundEndDetector interface {
	IsRoundEnded(s State) bool
}

// RoundRewarder scores a finished round from one player's perspective:
// 1 win, 0 loss, 0.5 draw.
type RoundRewarder interface {
	RoundReward(s State, player int) float32
}

// TimeoutRewarder optionally scores a round cut off by the simulation move
// cap. Adapters that omit it fall back to RoundReward.
type TimeoutRewarder interface {
	TimeoutReward(s State, player int) float32
}

// ActionWeighter optionally biases the random rollout policy. Weights are
// positive; missing capability means uniform.
type ActionWeighter interface {
	ActionWeight(action Response) float64
}

// StateReconstructor rebuilds a full state from a player view, good enough to
// validate that player's own actions. Hidden information may be filled with
// placeholders.
type StateReconstructor interface {
	ReconstructState(view View) (State, error)
}

// WaitingInspector exposes the waiting substructure of a state.
type WaitingInspector interface {
	Waiting(s State) Waiting
	// WithWaiting returns the state with its waiting substructure replaced.
	// The engine uses it to clear responded-residue and re-pause a
	// determinized state at the acting player.
	WithWaiting(s State, w Waiting) (State, error)
}

// Adapter is the full capability set a game plugs in. TimeoutRewarder and
// ActionWeighter are optional upgrades discovered by type assertion.
type Adapter interface {
	Codec
	CandidateGenerator
	DriverFactory
	HandlerFactory
	Determinizer
	RoundEndDetector
	RoundRewarder
	StateReconstructor
	WaitingInspector
}
