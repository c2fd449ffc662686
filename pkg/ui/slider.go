package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider edits one named flock parameter between Min and Max.
type Slider struct {
	Label    string
	Param    string // flock parameter name, empty for local-only sliders
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
	changed  bool
}

// NewSlider creates a slider; value is clamped to [min, max].
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     w,
		H:     12,
	}
	s.Value = s.clamp(value)
	return s
}

// Update drags the value while the left button is held over the bar.
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if !s.contains(float64(mx), float64(my)) {
		return
	}
	if v := s.valueAt(float64(mx)); v != s.Value {
		s.Value = v
		s.changed = true
	}
}

// Set moves the slider without reporting a change, for values that were
// changed elsewhere (keyboard shortcuts).
func (s *Slider) Set(v float64) {
	s.Value = s.clamp(v)
}

// Changed reports whether the user moved the slider since the last call.
func (s *Slider) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

func (s *Slider) contains(x, y float64) bool {
	return x >= s.X && x <= s.X+s.W && y >= s.Y && y <= s.Y+s.H
}

func (s *Slider) valueAt(x float64) float64 {
	if s.W <= 0 {
		return s.Min
	}
	p := (x - s.X) / s.W
	return s.clamp(s.Min + p*(s.Max-s.Min))
}

func (s *Slider) clamp(v float64) float64 {
	return math.Max(s.Min, math.Min(v, s.Max))
}

// Draw renders the track and the filled part.
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 120, G: 190, B: 230, A: 255}, true)
}
