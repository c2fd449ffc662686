package flock

import (
	"image/color"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// AgentView is the read-only render data of one agent.
type AgentView struct {
	ID       string
	Position geometry.Vector2D
	Heading  float64
	Color    color.RGBA
	Pilot    bool
	Trail    []geometry.Vector2D // oldest first, nil when trails are hidden
}

// Snapshot is a copy of the simulation state handed to render and HUD
// consumers. It shares nothing with the live population.
type Snapshot struct {
	Frame  uint64
	Agents []AgentView
	Config *Config
}

// Count is the population size for the HUD.
func (s *Snapshot) Count() int {
	return len(s.Agents)
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() *Snapshot {
	agents := e.pop.All()
	pilot := e.pop.Pilot()
	snap := &Snapshot{
		Frame:  e.frame,
		Agents: make([]AgentView, len(agents)),
		Config: e.cfg.Clone(),
	}
	for i, a := range agents {
		v := AgentView{
			ID:       a.ID,
			Position: a.Position,
			Heading:  a.Heading,
			Color:    a.Color,
			Pilot:    a == pilot,
		}
		if e.cfg.ShowTrails {
			v.Trail = a.trail.Points()
		}
		snap.Agents[i] = v
	}
	return snap
}

// Stats summarizes the flock for headless runs.
type Stats struct {
	Frame     uint64
	Agents    int
	MeanSpeed float64
	MaxSpeed  float64
	// NearEdge counts agents inside the boundary band.
	NearEdge int
}

// Stats computes summary statistics of the current state.
func (e *Engine) Stats() Stats {
	s := Stats{Frame: e.frame, Agents: e.pop.Len()}
	if s.Agents == 0 {
		return s
	}
	total := 0.0
	for _, a := range e.pop.All() {
		v := a.Speed()
		total += v
		s.MaxSpeed = max(s.MaxSpeed, v)
		if ClassifyZone(a.Position, e.cfg.WorldWidth, e.cfg.WorldHeight, e.cfg.NearRatio) != ZoneNone {
			s.NearEdge++
		}
	}
	s.MeanSpeed = total / float64(s.Agents)
	return s
}
