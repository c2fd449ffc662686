package flock

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyZone(t *testing.T) {
	const w, h, r = 900.0, 700.0, 0.1
	tests := []struct {
		name string
		x, y float64
		want Zone
	}{
		{"center", 450, 350, ZoneNone},
		{"left band", 89, 350, ZoneLeft},
		{"left band edge is outside", 90, 350, ZoneNone},
		{"right band", 811, 350, ZoneRight},
		{"just before right band", 809, 350, ZoneNone},
		{"top band", 450, 69, ZoneTop},
		{"bottom band", 450, 631, ZoneBottom},
		{"top-left corner", 10, 10, ZoneTopLeft},
		{"top-right corner", 890, 10, ZoneTopRight},
		{"bottom-left corner", 10, 690, ZoneBottomLeft},
		{"bottom-right corner", 890, 690, ZoneBottomRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyZone(geometry.Vector2D{X: tt.x, Y: tt.y}, w, h, r)
			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}
}

func TestTargetHeading(t *testing.T) {
	tests := []struct {
		zone Zone
		want float64
	}{
		{ZoneLeft, 0},
		{ZoneRight, 180},
		{ZoneTop, 270},
		{ZoneBottom, 90},
		{ZoneTopLeft, 315},
		{ZoneTopRight, 225},
		{ZoneBottomLeft, 45},
		{ZoneBottomRight, 135},
	}
	for _, tt := range tests {
		t.Run(tt.zone.String(), func(t *testing.T) {
			got, ok := TargetHeading(tt.zone)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)

			// the escape heading points back toward the center of the plane
			center := geometry.Vector2D{X: 450, Y: 350}
			dir := geometry.FromHeading(got)
			probe := map[Zone]geometry.Vector2D{
				ZoneLeft: {X: 10, Y: 350}, ZoneRight: {X: 890, Y: 350},
				ZoneTop: {X: 450, Y: 10}, ZoneBottom: {X: 450, Y: 690},
				ZoneTopLeft: {X: 10, Y: 10}, ZoneTopRight: {X: 890, Y: 10},
				ZoneBottomLeft: {X: 10, Y: 690}, ZoneBottomRight: {X: 890, Y: 690},
			}[tt.zone]
			assert.Greater(t, dir.Dot(center.Sub(probe)), 0.0)
		})
	}

	_, ok := TargetHeading(ZoneNone)
	assert.False(t, ok, "no override away from the edges")
}

func TestZone_CornerPriority(t *testing.T) {
	z := ClassifyZone(geometry.Vector2D{X: 10, Y: 10}, 900, 700, 0.1)
	require.Equal(t, ZoneTopLeft, z)
	h, _ := TargetHeading(z)
	assert.Equal(t, 315.0, h)
}

func TestProximity(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"outside the band", 450, 350, 0},
		{"half way into the left band", 45, 350, 0.5},
		{"on the left wall", 0, 350, 1},
		{"deepest edge wins", 9, 35, 0.9},
		{"bottom band", 450, 665, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Proximity(geometry.Vector2D{X: tt.x, Y: tt.y}, 900, 700, 0.1)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRotateToward_ConvergesWithoutOvershoot(t *testing.T) {
	h := 0.0
	steps := 0
	for h != 90 {
		h = RotateToward(h, 90, 4, 0)
		steps++
		require.LessOrEqual(t, h, 90.0, "step %d overshot", steps)
		require.LessOrEqual(t, steps, 23)
	}
	assert.Equal(t, 90.0, h)
}

func TestRotateToward(t *testing.T) {
	tests := []struct {
		name                        string
		current, target, step, snap float64
		want                        float64
	}{
		{"shortest arc through zero", 350, 10, 4, 0, 354},
		{"shortest arc backwards", 10, 350, 4, 0, 6},
		{"snap inside threshold", 80, 90, 4, 15, 90},
		{"remaining smaller than step", 88, 90, 4, 0, 90},
		{"already there", 45, 45, 4, 0, 45},
		{"negative target is normalized", 0, -90, 100, 0, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotateToward(tt.current, tt.target, tt.step, tt.snap)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAvoidance_SteerTurnsBackFromLeftWall(t *testing.T) {
	cfg := testConfig()
	cfg.BoundaryPolicy = PolicySteer
	a := newTestAgent(50, 350, -6, 0)
	require.InDelta(t, 180, a.Heading, tolerance)

	a.Integrate(cfg)

	// proximity (90-50)/90 speeds up the turn toward heading 0
	want := 180 - cfg.RotationSpeed*(1+40.0/90.0)
	assert.InDelta(t, want, a.Heading, 1e-9)

	for i := 0; i < 200 && a.Velocity.X <= 0; i++ {
		a.Integrate(cfg)
	}
	assert.Greater(t, a.Velocity.X, 0.0, "agent turned back into the plane")
	assert.GreaterOrEqual(t, a.Position.X, 0.0)
}

func TestAvoidance_BlendMixesTowardHeading(t *testing.T) {
	cfg := testConfig()
	cfg.BoundaryPolicy = PolicyBlend
	a := newTestAgent(50, 350, -6, 0)

	a.Integrate(cfg)

	assert.Greater(t, a.Velocity.X, -6.0)
	assert.Less(t, a.Velocity.Y, 0.0, "heading ~165 leans toward the top of the screen")
	assert.LessOrEqual(t, a.Speed(), cfg.MaxSpeed+tolerance)
	assert.True(t, a.Acceleration().Eq(geometry.Zero))
}

func TestAvoidance_ClampOnlyPinsPosition(t *testing.T) {
	cfg := testConfig()
	cfg.BoundaryPolicy = PolicyClamp
	a := newTestAgent(2, 350, -6, 0)

	a.Integrate(cfg)

	assert.Equal(t, 0.0, a.Position.X)
	assert.InDelta(t, 180, a.Heading, tolerance)
	assert.Equal(t, -6.0, a.Velocity.X, "clamp keeps velocity")
}

func TestAvoidance_AwayFromEdgesIsNoop(t *testing.T) {
	cfg := testConfig()
	a := newTestAgent(450, 350, 3, 0)
	assert.False(t, a.avoidBoundaries(cfg))
	assert.True(t, a.Acceleration().Eq(geometry.Zero))
}
