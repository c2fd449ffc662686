package flock

import "github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"

// Trail is a fixed capacity ring buffer of past positions. When full, the
// oldest point is overwritten.
type Trail struct {
	points []geometry.Vector2D
	start  int
	size   int
}

// NewTrail creates a trail holding at most capacity points.
func NewTrail(capacity int) *Trail {
	if capacity < 0 {
		capacity = 0
	}
	return &Trail{points: make([]geometry.Vector2D, capacity)}
}

// Push appends a point, evicting the oldest one on overflow.
func (t *Trail) Push(p geometry.Vector2D) {
	c := len(t.points)
	if c == 0 {
		return
	}
	if t.size < c {
		t.points[(t.start+t.size)%c] = p
		t.size++
		return
	}
	t.points[t.start] = p
	t.start = (t.start + 1) % c
}

// Len is the number of stored points.
func (t *Trail) Len() int { return t.size }

// Cap is the configured capacity.
func (t *Trail) Cap() int { return len(t.points) }

// Points returns a copy of the stored points, oldest first.
func (t *Trail) Points() []geometry.Vector2D {
	out := make([]geometry.Vector2D, t.size)
	for i := 0; i < t.size; i++ {
		out[i] = t.points[(t.start+i)%len(t.points)]
	}
	return out
}

// Resize changes the capacity, keeping the most recent points.
func (t *Trail) Resize(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	if capacity == len(t.points) {
		return
	}
	pts := t.Points()
	if len(pts) > capacity {
		pts = pts[len(pts)-capacity:]
	}
	t.points = make([]geometry.Vector2D, capacity)
	copy(t.points, pts)
	t.start = 0
	t.size = len(pts)
}
