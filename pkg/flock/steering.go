package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// Forces groups the three rule outputs for one agent and one frame.
type Forces struct {
	Separation geometry.Vector2D
	Alignment  geometry.Vector2D
	Cohesion   geometry.Vector2D
}

// Weighted returns sep*Wsep + ali*Wali + coh*Wcoh.
func (f Forces) Weighted(cfg *Config) geometry.Vector2D {
	return f.Separation.Mul(cfg.SeparationWeight).
		Add(f.Alignment.Mul(cfg.AlignmentWeight)).
		Add(f.Cohesion.Mul(cfg.CohesionWeight))
}

// steer turns a desired direction into a bounded steering force:
// desired is scaled to maxSpeed, the current velocity is subtracted and
// the result is limited to maxForce.
func steer(desired, velocity geometry.Vector2D, maxSpeed, maxForce float64) geometry.Vector2D {
	if desired.IsZero() {
		return geometry.Zero
	}
	return desired.WithLength(maxSpeed).Sub(velocity).Limit(math.Max(maxForce, 0))
}

// Separation pushes self away from neighbors closer than radius. Each
// neighbor contributes the unit vector away from it divided by the
// distance, so closer ones push harder.
func Separation(self *Agent, neighbors []*Agent, radius float64, cfg *Config) geometry.Vector2D {
	var sum geometry.Vector2D
	count := 0
	radiusSq := radius * radius
	for _, other := range neighbors {
		if other == self {
			continue
		}
		distSq := self.Position.DistanceSquaredTo(other.Position)
		// coincident agents have no direction to flee along
		if distSq >= radiusSq || distSq == 0 {
			continue
		}
		// unit vector away from other, divided by the distance
		sum = sum.Add(self.Position.Sub(other.Position).Mul(1 / distSq))
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	return steer(sum.Mul(1/float64(count)), self.Velocity, cfg.MaxSpeed, cfg.MaxForce)
}

// Alignment steers self toward the average velocity of neighbors closer
// than radius.
func Alignment(self *Agent, neighbors []*Agent, radius float64, cfg *Config) geometry.Vector2D {
	var sum geometry.Vector2D
	count := 0
	radiusSq := radius * radius
	for _, other := range neighbors {
		if other == self || self.Position.DistanceSquaredTo(other.Position) >= radiusSq {
			continue
		}
		sum = sum.Add(other.Velocity)
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	return steer(sum.Mul(1/float64(count)), self.Velocity, cfg.MaxSpeed, cfg.MaxForce)
}

// Cohesion steers self toward the center of mass of neighbors closer than
// radius.
func Cohesion(self *Agent, neighbors []*Agent, radius float64, cfg *Config) geometry.Vector2D {
	var center geometry.Vector2D
	count := 0
	radiusSq := radius * radius
	for _, other := range neighbors {
		if other == self || self.Position.DistanceSquaredTo(other.Position) >= radiusSq {
			continue
		}
		center = center.Add(other.Position)
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	center = center.Mul(1 / float64(count))
	return steer(center.Sub(self.Position), self.Velocity, cfg.MaxSpeed, cfg.MaxForce)
}

// ComputeForces evaluates the three rules for self against a neighbor
// superset. Each rule filters by its own radius scaled by VisualRangeScale.
func ComputeForces(self *Agent, neighbors []*Agent, cfg *Config) Forces {
	return Forces{
		Separation: Separation(self, neighbors, cfg.ruleRadius(cfg.SeparationRadius), cfg),
		Alignment:  Alignment(self, neighbors, cfg.ruleRadius(cfg.AlignmentRadius), cfg),
		Cohesion:   Cohesion(self, neighbors, cfg.ruleRadius(cfg.CohesionRadius), cfg),
	}
}
