package game

// Strategy decides on a response when the rules engine asks a player for
// input. The engine ships three: a weighted-random policy for rollouts, the
// Capture observer below, and a search strategy that nests a full decision.
type Strategy interface {
	Choose(player int, view View, categories []string) (Response, error)
}

// Capture is the observer behind apply-resume-and-capture: installed as every
// player's handler for a single resume, it records the first request for
// input and defers, leaving the state paused. The recorded categories are how
// the tree learns what actions are legal at the next depth without
// re-deriving them.
type Capture struct {
	Player     int
	View       View
	Categories []string
	captured   bool
}

// Choose records the request and defers.
func (c *Capture) Choose(player int, view View, categories []string) (Response, error) {
	if !c.captured {
		c.Player = player
		c.View = view
		c.Categories = append([]string(nil), categories...)
		c.captured = true
	}
	return nil, ErrDeferred
}

// Captured reports whether a request was seen. False after a resume means the
// round ended without pausing.
func (c *Capture) Captured() bool { return c.captured }
