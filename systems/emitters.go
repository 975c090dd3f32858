package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/slosh/components"
	"github.com/pthm-cable/slosh/fluid"
)

// Emitters holds water sources and drains as ECS entities pinned to cells.
type Emitters struct {
	world *ecs.World

	sourceMapper *ecs.Map2[components.Cell, components.Source]
	sourceFilter *ecs.Filter2[components.Cell, components.Source]
	drainMapper  *ecs.Map2[components.Cell, components.Drain]
	drainFilter  *ecs.Filter2[components.Cell, components.Drain]

	numSources int
	numDrains  int
}

// NewEmitters creates an empty emitter set.
func NewEmitters() *Emitters {
	world := ecs.NewWorld()
	return &Emitters{
		world:        world,
		sourceMapper: ecs.NewMap2[components.Cell, components.Source](world),
		sourceFilter: ecs.NewFilter2[components.Cell, components.Source](world),
		drainMapper:  ecs.NewMap2[components.Cell, components.Drain](world),
		drainFilter:  ecs.NewFilter2[components.Cell, components.Drain](world),
	}
}

// AddSource places a source at a. A budget of 0 never runs dry.
func (e *Emitters) AddSource(a fluid.Addr, rate, budget float32) ecs.Entity {
	cell := components.Cell{X: a.X, Y: a.Y, Z: a.Z}
	src := components.Source{Rate: rate, Budget: budget}
	e.numSources++
	return e.sourceMapper.NewEntity(&cell, &src)
}

// AddDrain places a drain at a.
func (e *Emitters) AddDrain(a fluid.Addr, rate float32) ecs.Entity {
	cell := components.Cell{X: a.X, Y: a.Y, Z: a.Z}
	drain := components.Drain{Rate: rate}
	e.numDrains++
	return e.drainMapper.NewEntity(&cell, &drain)
}

// NumSources returns the number of live sources.
func (e *Emitters) NumSources() int { return e.numSources }

// NumDrains returns the number of drains.
func (e *Emitters) NumDrains() int { return e.numDrains }

// Sources returns the cells of all live sources.
func (e *Emitters) Sources() []fluid.Addr {
	out := make([]fluid.Addr, 0, e.numSources)
	query := e.sourceFilter.Query()
	for query.Next() {
		cell, _ := query.Get()
		out = append(out, fluid.Addr{X: cell.X, Y: cell.Y, Z: cell.Z})
	}
	return out
}

// Drains returns the cells of all drains.
func (e *Emitters) Drains() []fluid.Addr {
	out := make([]fluid.Addr, 0, e.numDrains)
	query := e.drainFilter.Query()
	for query.Next() {
		cell, _ := query.Get()
		out = append(out, fluid.Addr{X: cell.X, Y: cell.Y, Z: cell.Z})
	}
	return out
}

// Apply runs every source and drain against g for one tick and returns the
// level injected and removed. Emitters on the shell do nothing. Sources that
// have spent their budget are removed.
func (e *Emitters) Apply(g *fluid.Grid, dt float32) (injected, drained float64) {
	var exhausted []ecs.Entity

	query := e.sourceFilter.Query()
	for query.Next() {
		cell, src := query.Get()
		a := fluid.Addr{X: cell.X, Y: cell.Y, Z: cell.Z}
		if !g.InBounds(a) {
			continue
		}

		amount := src.Rate * dt
		if src.Budget > 0 {
			amount = min(amount, src.Budget-src.Emitted)
		}
		if amount > 0 {
			level, _ := g.Get(a)
			g.Set(a, level+amount)
			src.Emitted += amount
			injected += float64(amount)
		}
		if src.Exhausted() {
			exhausted = append(exhausted, query.Entity())
		}
	}

	// Remove after iteration completes
	for _, entity := range exhausted {
		e.sourceMapper.Remove(entity)
		e.numSources--
	}

	drains := e.drainFilter.Query()
	for drains.Next() {
		cell, drain := drains.Get()
		a := fluid.Addr{X: cell.X, Y: cell.Y, Z: cell.Z}
		if !g.InBounds(a) {
			continue
		}

		level, _ := g.Get(a)
		amount := min(level, drain.Rate*dt)
		if amount > 0 {
			g.Set(a, level-amount)
			drained += float64(amount)
		}
	}

	return injected, drained
}
