// Package components defines ECS components for the simulation.
package components

// Cell pins an entity to a lattice cell.
type Cell struct {
	X, Y, Z int
}

// Source injects water into its cell every tick.
type Source struct {
	Rate    float32 // Level added per second
	Budget  float32 // Total level before drying up (0 = unlimited)
	Emitted float32 // Level injected so far
}

// Exhausted reports whether a budgeted source has emitted its whole budget.
func (s Source) Exhausted() bool {
	return s.Budget > 0 && s.Emitted >= s.Budget
}

// Drain removes water from its cell every tick.
type Drain struct {
	Rate float32 // Level removed per second
}
