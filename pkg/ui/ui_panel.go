package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	sectionHeight = 22.0
	labelHeight   = 14.0
	margin        = 10.0
)

// UIWidget is an interface for all UI widgets
type UIWidget interface {
	Update()
	Draw(screen *ebiten.Image)
	GetHeight() float64
	moveTo(x, y float64)
}

func (s *Slider) GetHeight() float64 { return labelHeight + s.H + 8 }
func (s *Slider) moveTo(x, y float64) {
	s.X, s.Y = x, y+labelHeight
}

func (c *Checkbox) GetHeight() float64 { return c.Size + 8 }
func (c *Checkbox) moveTo(x, y float64) {
	c.X, c.Y = x, y
}

func (b *Button) GetHeight() float64 { return b.Height + 8 }
func (b *Button) moveTo(x, y float64) {
	b.X, b.Y = x, y
}

// PanelSection groups the widgets added after AddSection.
type PanelSection struct {
	Title      string
	StartIndex int
	EndIndex   int
}

// UIPanel is a scrollable column of tuning widgets drawn over the plane.
type UIPanel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	Widgets       []UIWidget
	ScrollOffset  float64
	Visible       bool

	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []PanelSection
	sliders  []*Slider
}

// NewUIPanel creates a new UI panel
func NewUIPanel(x, y, width, height float64) *UIPanel {
	return &UIPanel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       "Flock",
		Visible:     true,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 210},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new titled group of widgets.
func (p *UIPanel) AddSection(title string) {
	p.EndSection()
	p.sections = append(p.sections, PanelSection{
		Title:      title,
		StartIndex: len(p.Widgets),
		EndIndex:   -1,
	})
}

// EndSection closes the current section
func (p *UIPanel) EndSection() {
	if n := len(p.sections); n > 0 && p.sections[n-1].EndIndex < 0 {
		p.sections[n-1].EndIndex = len(p.Widgets)
	}
}

// AddSlider adds a slider bound to a flock parameter.
func (p *UIPanel) AddSlider(label, param string, min, max, value float64) *Slider {
	s := NewSlider(0, 0, p.Width-2*margin, label, min, max, value)
	s.Param = param
	p.Widgets = append(p.Widgets, s)
	p.sliders = append(p.sliders, s)
	return s
}

// AddCheckbox adds a checkbox widget to the panel
func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	p.Widgets = append(p.Widgets, c)
	return c
}

// AddButton adds a full width button.
func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	b := NewButton(0, 0, p.Width-2*margin, 18, label, onClick)
	p.Widgets = append(p.Widgets, b)
	return b
}

// Slider returns the slider bound to param, or nil.
func (p *UIPanel) Slider(param string) *Slider {
	for _, s := range p.sliders {
		if s.Param == param {
			return s
		}
	}
	return nil
}

// Changes returns the parameters the user moved since the last call.
func (p *UIPanel) Changes() map[string]float64 {
	var out map[string]float64
	for _, s := range p.sliders {
		if s.Param == "" || !s.Changed() {
			continue
		}
		if out == nil {
			out = make(map[string]float64)
		}
		out[s.Param] = s.Value
	}
	return out
}

// layout places every widget for the current scroll offset and calls fn
// with its top edge.
func (p *UIPanel) layout(section func(s PanelSection, y float64), widget func(w UIWidget, y float64)) {
	y := p.Y + 26 - p.ScrollOffset
	for _, s := range p.sections {
		if section != nil {
			section(s, y)
		}
		y += sectionHeight
		end := s.EndIndex
		if end < 0 {
			end = len(p.Widgets)
		}
		for _, w := range p.Widgets[s.StartIndex:end] {
			w.moveTo(p.X+margin, y)
			if widget != nil {
				widget(w, y)
			}
			y += w.GetHeight()
		}
	}
}

func (p *UIPanel) contentHeight() float64 {
	h := 26.0 + float64(len(p.sections))*sectionHeight
	for _, w := range p.Widgets {
		h += w.GetHeight()
	}
	return h
}

func (p *UIPanel) visible(y float64) bool {
	return y >= p.Y+20 && y <= p.Y+p.Height-10
}

// Update scrolls the panel and forwards input to the visible widgets.
func (p *UIPanel) Update() {
	if !p.Visible {
		return
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		maxScroll := math.Max(p.contentHeight()-p.Height+margin, 0)
		p.ScrollOffset = math.Max(0, math.Min(p.ScrollOffset-dy*20, maxScroll))
	}
	p.layout(nil, func(w UIWidget, y float64) {
		if p.visible(y) {
			w.Update()
		}
	})
}

// Draw renders the panel and all widgets
func (p *UIPanel) Draw(screen *ebiten.Image) {
	if !p.Visible {
		return
	}
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+5))

	p.layout(func(s PanelSection, y float64) {
		if !p.visible(y) {
			return
		}
		vector.FillRect(screen,
			float32(p.X+5), float32(y),
			float32(p.Width-10), sectionHeight-4,
			color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
		ebitenutil.DebugPrintAt(screen, s.Title, int(p.X+margin), int(y+2))
	}, func(w UIWidget, y float64) {
		if !p.visible(y) {
			return
		}
		switch w := w.(type) {
		case *Slider:
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %.2f", w.Label, w.Value), int(p.X+margin), int(y-2))
		case *Checkbox:
			ebitenutil.DebugPrintAt(screen, w.Label, int(w.X+w.Size+6), int(y-1))
		}
		w.Draw(screen)
	})
}
