package reply

import "math/rand"

// Gate decides whether an eligible message gets a reply.
type Gate struct {
	threshold float64
	draw      func() float64
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithDraw replaces the random source. draw must return values in [0, 1).
func WithDraw(draw func() float64) GateOption {
	return func(g *Gate) {
		g.draw = draw
	}
}

// NewGate creates a gate that opens with probability threshold.
// The default source is the process-wide math/rand/v2 generator, which is
// safe for concurrent use.
func NewGate(threshold float64, opts ...GateOption) *Gate {
	g := &Gate{
		threshold: threshold,
		draw:      rand.Float64,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open draws once and reports whether the draw fell below the threshold.
func (g *Gate) Open() bool {
	return g.draw() < g.threshold
}

// Threshold returns the configured probability.
func (g *Gate) Threshold() float64 {
	return g.threshold
}
