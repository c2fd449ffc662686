package simulation

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/ui"
	"github.com/tochemey/goakt/v3/actor"
	"golang.org/x/image/font/basicfont"
	"google.golang.org/protobuf/proto"
)

const (
	boidSize  = 7.0
	pilotSize = 11.0
	// vertices per DrawTriangles call, kept under the uint16 index limit
	maxBatchVertices = 3 * 20000
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	background = color.RGBA{R: 12, G: 14, B: 28, A: 255}
	hudFace    = text.NewGoXFace(basicfont.Face7x13)
)

func init() {
	whiteImage.Fill(color.White)
}

// Game is the ebiten front end: it forwards input to the FlockActor as
// messages, ticks it once per update and draws the latest snapshot.
type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	flockPID   *actor.PID
	snapshotCh chan *flock.Snapshot
	lastState  *flock.Snapshot

	// local mirror of the settings the UI has sent
	cfg       *flock.Config
	frameTime time.Duration

	panel         *ui.UIPanel
	widgetTrails  *ui.Checkbox
	showHUDDetail bool

	vertices []ebiten.Vertex
	indices  []uint16

	updateAvg float64 // Rolling average in ms
	drawAvg   float64
}

// NewGame spawns the FlockActor on system and builds the control panel.
func NewGame(ctx context.Context, cfg *flock.Config, system actor.ActorSystem) (*Game, error) {
	engine, err := flock.NewEngine(cfg.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to create flock engine: %w", err)
	}

	snapshotCh := make(chan *flock.Snapshot, 2)
	flockPID, err := system.Spawn(ctx, "flock", NewFlockActor(engine, snapshotCh))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn flock actor: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		flockPID:   flockPID,
		snapshotCh: snapshotCh,
		lastState:  &flock.Snapshot{Config: cfg.Clone()},
		cfg:        cfg.Clone(),
		frameTime:  time.Second / time.Duration(ebiten.TPS()),
	}
	g.panel = g.buildPanel()
	return g, nil
}

func (g *Game) buildPanel() *ui.UIPanel {
	cfg := g.cfg
	panel := ui.NewUIPanel(10, 10, 220, cfg.WorldHeight-20)

	panel.AddSection("Rule weights")
	panel.AddSlider("Separation", "separationWeight", 0, 5, cfg.SeparationWeight)
	panel.AddSlider("Alignment", "alignmentWeight", 0, 5, cfg.AlignmentWeight)
	panel.AddSlider("Cohesion", "cohesionWeight", 0, 5, cfg.CohesionWeight)

	panel.AddSection("Perception")
	panel.AddSlider("Separation radius", "separationRadius", 0, 100, cfg.SeparationRadius)
	panel.AddSlider("Alignment radius", "alignmentRadius", 0, 200, cfg.AlignmentRadius)
	panel.AddSlider("Cohesion radius", "cohesionRadius", 0, 200, cfg.CohesionRadius)
	panel.AddSlider("Visual range scale", "visualRangeScale", 0.25, 3, cfg.VisualRangeScale)

	panel.AddSection("Motion")
	panel.AddSlider("Max speed", "maxSpeed", 0.5, 12, cfg.MaxSpeed)
	panel.AddSlider("Max force", "maxForce", 0.005, 0.5, cfg.MaxForce)

	panel.AddSection("Edges")
	panel.AddSlider("Rotation speed", "rotationSpeed", 0, 45, cfg.RotationSpeed)
	panel.AddSlider("Avoid force", "avoidForce", 0, 0.5, cfg.AvoidForce)

	panel.AddSection("Flock")
	g.widgetTrails = panel.AddCheckbox("Trails (T)", cfg.ShowTrails)
	panel.AddButton(fmt.Sprintf("Spawn +%d (SPACE)", cfg.SpawnBatch), g.spawnBatch)
	panel.EndSection()
	return panel
}

func (g *Game) tell(msg proto.Message) {
	if err := actor.Tell(g.ctx, g.flockPID, msg); err != nil {
		g.System.Logger().Warnf("flock actor unreachable: %v", err)
	}
}

func (g *Game) spawnBatch() {
	g.tell(NewSpawn(g.cfg.SpawnBatch))
}

func (g *Game) setTrails(show bool) {
	g.cfg.ShowTrails = show
	g.widgetTrails.Set(show)
	g.tell(NewTrails(show))
}

// sendParams mirrors the values locally and forwards them to the actor.
func (g *Game) sendParams(values map[string]float64) {
	if len(values) == 0 {
		return
	}
	for name, v := range values {
		if err := g.cfg.Set(name, v); err != nil {
			g.System.Logger().Warnf("%v", err)
		}
	}
	patch, err := NewParamPatch(values)
	if err != nil {
		g.System.Logger().Warnf("%v", err)
		return
	}
	g.tell(patch)
}

func (g *Game) adjustSeparation(delta float64) {
	if err := g.cfg.Adjust("separationWeight", delta); err != nil {
		return
	}
	if s := g.panel.Slider("separationWeight"); s != nil {
		s.Set(g.cfg.SeparationWeight)
	}
	g.sendParams(map[string]float64{"separationWeight": g.cfg.SeparationWeight})
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.spawnBatch()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.setTrails(!g.cfg.ShowTrails)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.adjustSeparation(0.1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.adjustSeparation(-0.1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.panel.Visible = !g.panel.Visible
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.showHUDDetail = !g.showHUDDetail
	}
	if g.cfg.PlayerEnabled {
		turn, thrust := 0.0, 0.0
		if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			turn++
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			turn--
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
			thrust = 1
		}
		g.tell(NewPlayerInput(turn, thrust))
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.panel.Update()
	if g.widgetTrails.Changed() {
		g.setTrails(g.widgetTrails.Value)
	}
	g.sendParams(g.panel.Changes())
	g.handleKeys()

	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
	}

	g.tell(NewTick(g.frameTime))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)

	if g.lastState.Config != nil && g.lastState.Config.ShowTrails {
		for i := range g.lastState.Agents {
			drawTrail(screen, &g.lastState.Agents[i])
		}
	}
	g.drawBoids(screen)
	g.panel.Draw(screen)
	g.drawHUD(screen)
}

func drawTrail(screen *ebiten.Image, a *flock.AgentView) {
	n := len(a.Trail)
	if n == 0 {
		return
	}
	for i := 1; i <= n; i++ {
		from := a.Trail[i-1]
		to := a.Position
		if i < n {
			to = a.Trail[i]
		}
		clr := a.Color
		clr.A = uint8(20 + 160*i/n)
		vector.StrokeLine(screen, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), 1, premultiply(clr), true)
	}
}

func premultiply(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(c.A) / 255),
		G: uint8(uint16(c.G) * uint16(c.A) / 255),
		B: uint8(uint16(c.B) * uint16(c.A) / 255),
		A: c.A,
	}
}

// drawBoids batches every agent triangle into as few draw calls as possible.
func (g *Game) drawBoids(screen *ebiten.Image) {
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	flush := func() {
		if len(g.vertices) > 0 {
			screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
		}
		g.vertices = g.vertices[:0]
		g.indices = g.indices[:0]
	}

	for i := range g.lastState.Agents {
		a := &g.lastState.Agents[i]
		size := boidSize
		if a.Pilot {
			size = pilotSize
		}
		tip := a.Position.Add(geometry.FromHeading(a.Heading).Mul(size))
		left := a.Position.Add(geometry.FromHeading(a.Heading + 140).Mul(size * 0.7))
		right := a.Position.Add(geometry.FromHeading(a.Heading - 140).Mul(size * 0.7))

		base := uint16(len(g.vertices))
		for _, p := range [3]geometry.Vector2D{tip, left, right} {
			g.vertices = append(g.vertices, ebiten.Vertex{
				DstX: float32(p.X), DstY: float32(p.Y),
				SrcX: 1, SrcY: 1,
				ColorR: float32(a.Color.R) / 255,
				ColorG: float32(a.Color.G) / 255,
				ColorB: float32(a.Color.B) / 255,
				ColorA: 1,
			})
		}
		g.indices = append(g.indices, base, base+1, base+2)
		if len(g.vertices) >= maxBatchVertices {
			flush()
		}
	}
	flush()
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	cfg := g.lastState.Config
	if cfg == nil {
		cfg = g.cfg
	}
	trails := "off"
	if cfg.ShowTrails {
		trails = "on"
	}
	msg := fmt.Sprintf("Birds: %d   Separation weight: %.1f   Trails: %s",
		g.lastState.Count(), cfg.SeparationWeight, trails)
	if g.showHUDDetail {
		msg += fmt.Sprintf("\nFrame %d   FPS %.1f   TPS %.1f   update %.2fms   draw %.2fms",
			g.lastState.Frame, ebiten.ActualFPS(), ebiten.ActualTPS(), g.updateAvg, g.drawAvg)
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(screen.Bounds().Dx())-460, 10)
	op.LineSpacing = 16
	op.ColorScale.ScaleWithColor(color.RGBA{R: 230, G: 230, B: 230, A: 255})
	text.Draw(screen, msg, hudFace, op)
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight) }
