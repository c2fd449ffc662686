package flock

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Bounds is the rectangle agents are spawned in.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// WorldBounds is the full plane described by cfg.
func WorldBounds(cfg *Config) Bounds {
	return Bounds{MaxX: cfg.WorldWidth, MaxY: cfg.WorldHeight}
}

// Contains reports whether p lies in [MinX, MaxX) x [MinY, MaxY).
func (b Bounds) Contains(p geometry.Vector2D) bool {
	return p.X >= b.MinX && p.X < b.MaxX && p.Y >= b.MinY && p.Y < b.MaxY
}

// Population owns every agent of the simulation. It only grows.
type Population struct {
	agents []*Agent
	pilot  *Agent
	rng    *rand.Rand
	cfg    *Config
}

// NewPopulation creates an empty population. A zero seed draws a random one.
func NewPopulation(cfg *Config, seed uint64) *Population {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Population{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		cfg: cfg,
	}
}

// Populate creates the initial flock with hues cycled over the batch.
func (p *Population) Populate(n int) []*Agent {
	return p.spawn(n, WorldBounds(p.cfg), func(i int) color.RGBA {
		return hsvColor(float64(i)/float64(n), 0.75, 0.9)
	})
}

// Spawn appends n agents at random positions in bounds, each with a random
// heading, a speed in [MinInitialSpeed, MaxSpeed] and a random hue.
func (p *Population) Spawn(n int, bounds Bounds) []*Agent {
	return p.spawn(n, bounds, func(int) color.RGBA {
		return hsvColor(p.rng.Float64(), 0.8, 0.9)
	})
}

func (p *Population) spawn(n int, bounds Bounds, colorAt func(i int) color.RGBA) []*Agent {
	if n <= 0 {
		return nil
	}
	created := make([]*Agent, 0, n)
	for i := 0; i < n; i++ {
		pos := geometry.Vector2D{
			X: bounds.MinX + p.rng.Float64()*(bounds.MaxX-bounds.MinX),
			Y: bounds.MinY + p.rng.Float64()*(bounds.MaxY-bounds.MinY),
		}
		heading := p.rng.Float64() * 360
		vel := geometry.FromHeading(heading).Mul(p.initialSpeed())
		a := NewAgent(pos, vel, colorAt(i), p.cfg.TrailHistory)
		a.Heading = heading
		created = append(created, a)
	}
	p.agents = append(p.agents, created...)
	return created
}

func (p *Population) initialSpeed() float64 {
	lo := math.Max(p.cfg.MinInitialSpeed, 0)
	hi := math.Max(p.cfg.MaxSpeed, 0)
	if lo > hi {
		lo = hi
	}
	return lo + p.rng.Float64()*(hi-lo)
}

// SpawnPilot adds the player-controlled agent at the center of the plane.
// It returns the existing pilot if there is one already.
func (p *Population) SpawnPilot() *Agent {
	if p.pilot != nil {
		return p.pilot
	}
	center := geometry.Vector2D{X: p.cfg.WorldWidth / 2, Y: p.cfg.WorldHeight / 2}
	a := NewAgent(center, geometry.FromHeading(90).Mul(p.cfg.MinInitialSpeed), color.RGBA{R: 230, G: 40, B: 40, A: 255}, p.cfg.TrailHistory)
	a.Heading = 90
	p.agents = append(p.agents, a)
	p.pilot = a
	return a
}

// Add appends agents built elsewhere, for scripted scenes and replays.
func (p *Population) Add(agents ...*Agent) {
	p.agents = append(p.agents, agents...)
}

// Pilot returns the player agent, or nil.
func (p *Population) Pilot() *Agent {
	return p.pilot
}

// All returns the population for this frame. Callers must not append to it.
func (p *Population) All() []*Agent {
	return p.agents
}

// Len is the number of live agents.
func (p *Population) Len() int {
	return len(p.agents)
}

func hsvColor(h, s, v float64) color.RGBA {
	r, g, b := colorful.Hsv(h*360, s, v).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
