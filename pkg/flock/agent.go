package flock

import (
	"image/color"
	"math"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// Agent is a single boid. Boids is an artificial life program, developed
// by Craig Reynolds in 1986, which simulates the flocking behaviour of
// birds. https://en.wikipedia.org/wiki/Boids
//
// Position, Velocity and Heading are exported so renderers and tests can
// read them; mutation goes through ApplyForce and Integrate.
type Agent struct {
	ID       string
	Position geometry.Vector2D
	Velocity geometry.Vector2D
	// Heading in degrees, [0, 360). 0 is +x, 90 points to the top of the screen.
	Heading float64
	Color   color.RGBA

	acc   geometry.Vector2D
	trail *Trail
	ticks int

	// blend policy state, set by avoidBoundaries for the current call only
	blend       float64
	blendTarget geometry.Vector2D

	// pending player turn in degrees, consumed by the next Integrate
	turn float64
}

// NewAgent creates an agent at pos moving with vel.
func NewAgent(pos, vel geometry.Vector2D, clr color.RGBA, trailCapacity int) *Agent {
	a := &Agent{
		ID:       uuid.NewString(),
		Position: pos,
		Velocity: vel,
		Color:    clr,
		trail:    NewTrail(trailCapacity),
	}
	if !vel.IsZero() {
		a.Heading = vel.Heading()
	}
	return a
}

// ApplyForce accumulates f into the acceleration for this frame.
func (a *Agent) ApplyForce(f geometry.Vector2D) {
	a.acc = a.acc.Add(f)
}

// Acceleration returns the pending acceleration.
func (a *Agent) Acceleration() geometry.Vector2D {
	return a.acc
}

// Trail returns the agent's position history.
func (a *Agent) Trail() *Trail {
	return a.trail
}

// Speed is the magnitude of the velocity.
func (a *Agent) Speed() float64 {
	return a.Velocity.Len()
}

// Integrate advances the agent by one frame: boundary avoidance, velocity
// update with the speed limit, move and clamp to the visible area, reset
// of the accumulator, heading update and trail sampling.
func (a *Agent) Integrate(cfg *Config) {
	if a.turn != 0 {
		// screen y grows downward, so a positive heading turn is a negative rotation
		a.Velocity = a.Velocity.Rotate(-a.turn * math.Pi / 180)
		a.Heading = geometry.NormalizeDegrees(a.Heading + a.turn)
		a.turn = 0
	}

	avoiding := a.avoidBoundaries(cfg)

	a.Velocity = a.Velocity.Add(a.acc)
	if a.blend > 0 {
		a.Velocity = a.Velocity.Lerp(a.blendTarget, a.blend)
		a.blend = 0
	}
	maxSpeed := math.Max(cfg.MaxSpeed, 0)
	if a.Velocity.Len() > maxSpeed {
		a.Velocity = a.Velocity.WithLength(maxSpeed)
	}

	a.Position = a.Position.Add(a.Velocity)
	a.clampToBounds(cfg.WorldWidth, cfg.WorldHeight)
	a.acc = geometry.Zero

	if !avoiding && !a.Velocity.IsZero() {
		a.Heading = a.Velocity.Heading()
	}

	if a.trail.Cap() != cfg.TrailHistory {
		a.trail.Resize(cfg.TrailHistory)
	}
	a.ticks++
	if cfg.TrailPointStep <= 1 || a.ticks%cfg.TrailPointStep == 0 {
		a.trail.Push(a.Position)
	}
}

// clampToBounds keeps the agent inside [0, width) x [0, height).
func (a *Agent) clampToBounds(width, height float64) {
	a.Position = a.Position.Clamp(0, 0, math.Nextafter(width, 0), math.Nextafter(height, 0))
}

// Steer queues a player command: turn (degrees, positive turns toward the
// top of the screen when heading along +x) is applied by the next
// Integrate, thrust is pushed along the resulting heading.
func (a *Agent) Steer(turn, thrust float64) {
	a.turn += turn
	if thrust != 0 {
		a.ApplyForce(geometry.FromHeading(a.Heading + a.turn).Mul(thrust))
	}
}
