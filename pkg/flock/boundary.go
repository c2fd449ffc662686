package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
)

// Zone tells which edges of the plane an agent is close to.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneLeft
	ZoneRight
	ZoneTop
	ZoneBottom
	ZoneTopLeft
	ZoneTopRight
	ZoneBottomLeft
	ZoneBottomRight
)

var zoneNames = [...]string{
	ZoneNone:        "none",
	ZoneLeft:        "left",
	ZoneRight:       "right",
	ZoneTop:         "top",
	ZoneBottom:      "bottom",
	ZoneTopLeft:     "top-left",
	ZoneTopRight:    "top-right",
	ZoneBottomLeft:  "bottom-left",
	ZoneBottomRight: "bottom-right",
}

func (z Zone) String() string {
	if z < 0 || int(z) >= len(zoneNames) {
		return "unknown"
	}
	return zoneNames[z]
}

// targetHeadings maps each zone to the heading (degrees) that points back
// into the plane. Corners face diagonally inward.
var targetHeadings = [...]float64{
	ZoneLeft:        0,
	ZoneRight:       180,
	ZoneTop:         270,
	ZoneBottom:      90,
	ZoneTopLeft:     315,
	ZoneTopRight:    225,
	ZoneBottomLeft:  45,
	ZoneBottomRight: 135,
}

// TargetHeading returns the escape heading of a zone. ok is false for
// ZoneNone, meaning no override.
func TargetHeading(z Zone) (heading float64, ok bool) {
	if z <= ZoneNone || int(z) >= len(targetHeadings) {
		return 0, false
	}
	return targetHeadings[z], true
}

// ClassifyZone is a pure function of position and bounds. An edge is near
// when the coordinate is below extent*nearRatio or above
// extent*(1-nearRatio). Corners win over single edges; when both opposite
// edges are near (tiny planes), the lower coordinate edge is kept.
func ClassifyZone(pos geometry.Vector2D, width, height, nearRatio float64) Zone {
	left := pos.X < width*nearRatio
	right := !left && pos.X > width*(1-nearRatio)
	top := pos.Y < height*nearRatio
	bottom := !top && pos.Y > height*(1-nearRatio)

	switch {
	case left && top:
		return ZoneTopLeft
	case right && top:
		return ZoneTopRight
	case left && bottom:
		return ZoneBottomLeft
	case right && bottom:
		return ZoneBottomRight
	case right:
		return ZoneRight
	case left:
		return ZoneLeft
	case bottom:
		return ZoneBottom
	case top:
		return ZoneTop
	}
	return ZoneNone
}

// Proximity measures how deep a point sits inside the near band, from 0
// at the band's inner edge to 1 on the wall itself. The deepest edge wins.
func Proximity(pos geometry.Vector2D, width, height, nearRatio float64) float64 {
	bandX, bandY := width*nearRatio, height*nearRatio
	p := 0.0
	if bandX > 0 {
		p = math.Max(p, (bandX-pos.X)/bandX)
		p = math.Max(p, (pos.X-(width-bandX))/bandX)
	}
	if bandY > 0 {
		p = math.Max(p, (bandY-pos.Y)/bandY)
		p = math.Max(p, (pos.Y-(height-bandY))/bandY)
	}
	return math.Min(p, 1)
}

// RotateToward moves current toward target along the shortest arc by at
// most step degrees. Within snapThreshold it snaps to target. The result
// never passes target and is normalized to [0, 360).
func RotateToward(current, target, step, snapThreshold float64) float64 {
	diff := geometry.AngleDiffDegrees(current, target)
	if math.Abs(diff) <= snapThreshold || math.Abs(diff) <= step {
		return geometry.NormalizeDegrees(target)
	}
	return geometry.NormalizeDegrees(current + math.Copysign(step, diff))
}

// avoidBoundaries runs the edge state machine for one agent. It returns
// true when the heading was overridden this frame.
func (a *Agent) avoidBoundaries(cfg *Config) bool {
	if cfg.BoundaryPolicy == PolicyClamp {
		return false
	}
	zone := ClassifyZone(a.Position, cfg.WorldWidth, cfg.WorldHeight, cfg.NearRatio)
	target, ok := TargetHeading(zone)
	if !ok {
		return false
	}

	proximity := Proximity(a.Position, cfg.WorldWidth, cfg.WorldHeight, cfg.NearRatio)
	gain := 1 + proximity*cfg.ProximityGain
	a.Heading = RotateToward(a.Heading, target, cfg.RotationSpeed*gain, cfg.SnapThreshold)
	dir := geometry.FromHeading(a.Heading)

	switch cfg.BoundaryPolicy {
	case PolicyBlend:
		a.blend = math.Min(cfg.BlendFactor*gain, 1)
		a.blendTarget = dir.Mul(cfg.MaxSpeed)
	default:
		a.ApplyForce(dir.Mul(cfg.AvoidForce))
	}
	return true
}
