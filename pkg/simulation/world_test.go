package simulation

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const waitFor = 3 * time.Second

type flockHarness struct {
	ctx    context.Context
	engine *flock.Engine
	pid    *actor.PID
	snaps  chan *flock.Snapshot
}

func newFlockHarness(t *testing.T, cfg *flock.Config) *flockHarness {
	t.Helper()
	ctx := context.Background()

	system, err := actor.NewActorSystem("FlockTest", actor.WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, system.Start(ctx))
	t.Cleanup(func() { _ = system.Stop(ctx) })

	engine, err := flock.NewEngine(cfg)
	require.NoError(t, err)
	snaps := make(chan *flock.Snapshot, 64)
	pid, err := system.Spawn(ctx, "flock", NewFlockActor(engine, snaps))
	require.NoError(t, err)

	return &flockHarness{ctx: ctx, engine: engine, pid: pid, snaps: snaps}
}

func (h *flockHarness) count() (uint32, error) {
	resp, err := actor.Ask(h.ctx, h.pid, NewCountQuery(), time.Second)
	if err != nil {
		return 0, err
	}
	v, ok := resp.(*wrapperspb.UInt32Value)
	if !ok {
		return 0, fmt.Errorf("unexpected reply %T", resp)
	}
	return v.GetValue(), nil
}

// sync waits until every message sent before it has been processed.
func (h *flockHarness) sync(t *testing.T) uint32 {
	t.Helper()
	n, err := h.count()
	require.NoError(t, err)
	return n
}

// latest drains the snapshot channel.
func (h *flockHarness) latest() *flock.Snapshot {
	var last *flock.Snapshot
	for {
		select {
		case s := <-h.snaps:
			last = s
		default:
			return last
		}
	}
}

func testConfig() *flock.Config {
	cfg := flock.DefaultConfig()
	cfg.NumBoids = 30
	cfg.Seed = 11
	return cfg
}

func TestFlockActor_PopulatesOnStart(t *testing.T) {
	h := newFlockHarness(t, testConfig())

	assert.Eventually(t, func() bool {
		n, err := h.count()
		return err == nil && n == 30
	}, waitFor, 10*time.Millisecond)
}

func TestFlockActor_TicksAdvanceFrames(t *testing.T) {
	h := newFlockHarness(t, testConfig())

	for i := 0; i < 5; i++ {
		require.NoError(t, actor.Tell(h.ctx, h.pid, NewTick(16*time.Millisecond)))
	}
	h.sync(t)

	snap := h.latest()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(5), snap.Frame)
	assert.Equal(t, 30, snap.Count())
}

func TestFlockActor_Spawn(t *testing.T) {
	h := newFlockHarness(t, testConfig())

	require.NoError(t, actor.Tell(h.ctx, h.pid, NewSpawn(10)))
	assert.Equal(t, uint32(40), h.sync(t))
}

func TestFlockActor_ParamPatch(t *testing.T) {
	h := newFlockHarness(t, testConfig())

	patch, err := NewParamPatch(map[string]float64{"separationWeight": 3, "gravity": 1, "cohesionWeight": -2})
	require.NoError(t, err)
	require.NoError(t, actor.Tell(h.ctx, h.pid, patch))
	h.sync(t)

	cfg := h.engine.Config()
	assert.Equal(t, 3.0, cfg.SeparationWeight, "valid entries apply even next to a bad one")
	assert.Equal(t, 0.0, cfg.CohesionWeight, "weights never go negative")
}

func TestFlockActor_Trails(t *testing.T) {
	cfg := testConfig()
	cfg.TrailPointStep = 1
	h := newFlockHarness(t, cfg)

	require.NoError(t, actor.Tell(h.ctx, h.pid, NewTrails(true)))
	require.NoError(t, actor.Tell(h.ctx, h.pid, NewTick(time.Millisecond)))
	h.sync(t)

	snap := h.latest()
	require.NotNil(t, snap)
	assert.True(t, snap.Config.ShowTrails)
	assert.Len(t, snap.Agents[0].Trail, 1)
}

func TestFlockActor_PlayerInputIsClamped(t *testing.T) {
	cfg := testConfig()
	cfg.PlayerEnabled = true
	h := newFlockHarness(t, cfg)

	require.NoError(t, actor.Tell(h.ctx, h.pid, NewPlayerInput(5, 2)))
	require.NoError(t, actor.Tell(h.ctx, h.pid, NewTick(time.Millisecond)))
	assert.Equal(t, uint32(31), h.sync(t))

	pilot := h.engine.Population().Pilot()
	require.NotNil(t, pilot)
	assert.InDelta(t, 90+cfg.PlayerTurnSpeed, pilot.Heading, 1e-6)
	assert.InDelta(t, cfg.MinInitialSpeed+cfg.PlayerThrust, pilot.Speed(), 1e-9)
}

func TestMessages(t *testing.T) {
	_, err := NewParamPatch(map[string]float64{"maxSpeed": math.NaN()})
	assert.Error(t, err)

	patch, err := NewParamPatch(map[string]float64{"maxSpeed": 4})
	require.NoError(t, err)
	values, err := paramsFromPatch(patch)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"maxSpeed": 4}, values)

	bad, err := structpb.NewStruct(map[string]any{"maxSpeed": "fast"})
	require.NoError(t, err)
	_, err = paramsFromPatch(bad)
	assert.Error(t, err)

	turn, thrust := playerInputFromList(&structpb.ListValue{})
	assert.Zero(t, turn)
	assert.Zero(t, thrust)
	turn, thrust = playerInputFromList(NewPlayerInput(-1, 0.5))
	assert.Equal(t, -1.0, turn)
	assert.Equal(t, 0.5, thrust)

	assert.Equal(t, uint32(0), NewSpawn(-3).GetValue())
	assert.Equal(t, 16*time.Millisecond, NewTick(16*time.Millisecond).AsDuration())
}
