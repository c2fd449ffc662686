package simulation

import (
	"math"
	"sort"
	"time"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flock"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FlockActor owns the flock engine. Every command reaches the engine
// through the mailbox, so a frame never sees a half applied change.
type FlockActor struct {
	engine     *flock.Engine
	snapshotCh chan<- *flock.Snapshot

	// --- Benchmark Stats ---
	frames      int
	stepTime    time.Duration
	lastLogTime time.Time
}

var _ actor.Actor = (*FlockActor)(nil)

// NewFlockActor wraps an engine. Snapshots are pushed to snapshotCh after
// every frame when the receiver keeps up; a nil channel disables them.
func NewFlockActor(engine *flock.Engine, snapshotCh chan<- *flock.Snapshot) *FlockActor {
	return &FlockActor{
		engine:      engine,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (f *FlockActor) PreStart(ctx *actor.Context) error {
	cfg := f.engine.Config()
	ctx.ActorSystem().Logger().Infof("Flock starting: %d boids on %.0fx%.0f, policy %s, index %s",
		cfg.NumBoids, cfg.WorldWidth, cfg.WorldHeight, cfg.BoundaryPolicy, cfg.NeighborIndex)
	return nil
}

func (f *FlockActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		if f.engine.Population().Len() == 0 {
			f.engine.Populate()
		}
		ctx.Logger().Infof("Flock populated with %d agents", f.engine.Population().Len())
		f.pushSnapshot()

	case *durationpb.Duration:
		start := time.Now()
		if err := f.engine.Step(); err != nil {
			ctx.Logger().Errorf("frame %d failed: %v", f.engine.Frame(), err)
			ctx.Err(err)
			return
		}
		f.stepTime += time.Since(start)
		f.frames++
		f.logBenchmarks(ctx)
		f.pushSnapshot()

	case *wrapperspb.UInt32Value:
		created := f.engine.Spawn(int(msg.GetValue()))
		ctx.Logger().Debugf("spawned %d agents, population %d", len(created), f.engine.Population().Len())

	case *wrapperspb.BoolValue:
		f.engine.Config().ShowTrails = msg.GetValue()
		ctx.Logger().Debugf("trails visible: %t", msg.GetValue())

	case *structpb.Struct:
		f.applyParams(ctx, msg)

	case *structpb.ListValue:
		turn, thrust := playerInputFromList(msg)
		f.engine.SetPlayerInput(flock.PlayerInput{
			Turn:   math.Max(-1, math.Min(turn, 1)),
			Thrust: math.Max(0, math.Min(thrust, 1)),
		})

	case *emptypb.Empty:
		ctx.Response(wrapperspb.UInt32(uint32(f.engine.Population().Len())))

	default:
		ctx.Unhandled()
	}
}

// applyParams sets each parameter independently; a bad entry is logged
// and does not stop the others.
func (f *FlockActor) applyParams(ctx *actor.ReceiveContext, patch *structpb.Struct) {
	values, err := paramsFromPatch(patch)
	if err != nil {
		ctx.Logger().Warnf("ignoring parameter update: %v", err)
		return
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := f.engine.SetParam(name, values[name]); err != nil {
			ctx.Logger().Warnf("ignoring parameter update: %v", err)
			continue
		}
		ctx.Logger().Debugf("%s set to %.3f", name, values[name])
	}
}

func (f *FlockActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(f.lastLogTime) < time.Second || f.frames == 0 {
		return
	}
	ctx.Logger().Infof("📊 FRAMES: %d/sec | avg step %s | boids: %d",
		f.frames, f.stepTime/time.Duration(f.frames), f.engine.Population().Len())
	f.frames = 0
	f.stepTime = 0
	f.lastLogTime = time.Now()
}

func (f *FlockActor) pushSnapshot() {
	if f.snapshotCh == nil {
		return
	}
	select {
	case f.snapshotCh <- f.engine.Snapshot():
	default:
		// UI busy, skip frame
	}
}

func (f *FlockActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("Flock stopped after %d frames", f.engine.Frame())
	return nil
}
