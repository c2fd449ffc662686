// Package flock simulates a flock of boids on a bounded plane: separation,
// alignment and cohesion forces, edge avoidance and trails, stepped frame by
// frame in two passes.
package flock

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
	"golang.org/x/sync/errgroup"
)

// PlayerInput is the command for the player agent during one frame.
type PlayerInput struct {
	Turn   float64 // -1 (clockwise) .. 1 (counter-clockwise)
	Thrust float64 // 0 .. 1
}

// Engine runs the per-frame control loop: compute every agent's steering
// forces from the frozen state, then integrate every agent.
type Engine struct {
	cfg    *Config
	pop    *Population
	index  NeighborIndex
	kind   IndexKind
	forces []geometry.Vector2D
	input  PlayerInput
	frame  uint64
}

// NewEngine creates an engine with an empty population.
func NewEngine(cfg *Config) (*Engine, error) {
	index, err := NewNeighborIndex(cfg.NeighborIndex, cfg.MaxRadius())
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:   cfg,
		pop:   NewPopulation(cfg, cfg.Seed),
		index: index,
		kind:  cfg.NeighborIndex,
	}, nil
}

// Populate creates the initial flock, plus the pilot when the player
// variant is enabled.
func (e *Engine) Populate() {
	e.pop.Populate(e.cfg.NumBoids)
	if e.cfg.PlayerEnabled {
		e.pop.SpawnPilot()
	}
}

// Config returns the live configuration. Mutate it only between frames.
func (e *Engine) Config() *Config { return e.cfg }

// Population returns the managed population.
func (e *Engine) Population() *Population { return e.pop }

// Frame is the number of completed frames.
func (e *Engine) Frame() uint64 { return e.frame }

// Spawn adds n agents anywhere on the plane. Takes effect next frame.
func (e *Engine) Spawn(n int) []*Agent {
	return e.pop.Spawn(n, WorldBounds(e.cfg))
}

// SpawnBatch adds the configured batch of agents.
func (e *Engine) SpawnBatch() []*Agent {
	return e.Spawn(e.cfg.SpawnBatch)
}

// SetParam changes a named tunable for the next frame.
func (e *Engine) SetParam(name string, value float64) error {
	return e.cfg.Set(name, value)
}

// ToggleTrails flips trail rendering and returns the new state.
func (e *Engine) ToggleTrails() bool {
	e.cfg.ShowTrails = !e.cfg.ShowTrails
	return e.cfg.ShowTrails
}

// SetPlayerInput stores the pilot command used by the next frame.
func (e *Engine) SetPlayerInput(in PlayerInput) {
	e.input = in
}

// ComputeForces is the read-only pass: it fills the force of every agent
// from positions and velocities before anyone moves. With Workers > 1 the
// population is split across goroutines; Wait is the barrier.
func (e *Engine) ComputeForces() error {
	agents := e.pop.All()
	e.syncIndex()
	e.index.Rebuild(agents)

	if cap(e.forces) < len(agents) {
		e.forces = make([]geometry.Vector2D, len(agents))
	}
	e.forces = e.forces[:len(agents)]

	pilot := e.pop.Pilot()
	radius := e.cfg.MaxRadius()
	compute := func(lo, hi int) {
		var buf []*Agent
		for i := lo; i < hi; i++ {
			a := agents[i]
			if a == pilot {
				e.forces[i] = geometry.Zero
				continue
			}
			buf = e.index.Query(buf[:0], a, radius)
			e.forces[i] = ComputeForces(a, buf, e.cfg).Weighted(e.cfg)
		}
	}

	workers := e.cfg.Workers
	if workers <= 1 || len(agents) < 2*workers {
		compute(0, len(agents))
		return nil
	}

	var g errgroup.Group
	chunk := (len(agents) + workers - 1) / workers
	for lo := 0; lo < len(agents); lo += chunk {
		hi := min(lo+chunk, len(agents))
		g.Go(func() error {
			compute(lo, hi)
			return nil
		})
	}
	return g.Wait()
}

// Integrate is the write pass: apply each computed force and advance every
// agent. It must follow ComputeForces within the same frame.
func (e *Engine) Integrate() error {
	agents := e.pop.All()
	if len(e.forces) != len(agents) {
		return fmt.Errorf("integrate: %d forces for %d agents, ComputeForces must run first", len(e.forces), len(agents))
	}
	if pilot := e.pop.Pilot(); pilot != nil {
		pilot.Steer(e.input.Turn*e.cfg.PlayerTurnSpeed, e.input.Thrust*e.cfg.PlayerThrust)
	}
	for i, a := range agents {
		a.ApplyForce(e.forces[i])
		a.Integrate(e.cfg)
	}
	e.forces = e.forces[:0]
	e.frame++
	return nil
}

// Step runs one full frame.
func (e *Engine) Step() error {
	if err := e.ComputeForces(); err != nil {
		return err
	}
	return e.Integrate()
}

// syncIndex follows runtime changes of the index kind and radii.
func (e *Engine) syncIndex() {
	if e.kind != e.cfg.NeighborIndex {
		if index, err := NewNeighborIndex(e.cfg.NeighborIndex, e.cfg.MaxRadius()); err == nil {
			e.index = index
			e.kind = e.cfg.NeighborIndex
		}
	}
	if g, ok := e.index.(*gridIndex); ok {
		g.SetCellSize(e.cfg.MaxRadius())
	}
}
