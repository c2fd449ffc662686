package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids-flocking/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"github.com/urfave/cli"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func main() {
	if err := makeapp().Run(os.Args); err != nil {
		stdlog.Fatal(err)
	}
}

func flockFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "config", Value: "", Usage: "JSON configuration file"},
		cli.StringFlag{Name: "schema", Value: "", Usage: "JSON schema for --config; the embedded schema when empty"},
		cli.IntFlag{Name: "boids", Usage: "Initial number of boids"},
		cli.StringFlag{Name: "policy", Usage: "Boundary policy: clamp, steer or blend"},
		cli.StringFlag{Name: "index", Usage: "Neighbor index: naive, grid or rtree"},
		cli.BoolFlag{Name: "player", Usage: "Add a player controlled boid (arrow keys)"},
		cli.Uint64Flag{Name: "seed", Usage: "Random seed, 0 for a random one"},
		cli.IntFlag{Name: "workers", Usage: "Goroutines computing steering forces"},
		cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
	}
}

func makeapp() *cli.App {
	app := cli.NewApp()
	app.Name = "boids"
	app.Usage = "Flocking simulation: separation, alignment and cohesion"

	app.Commands = []cli.Command{
		{
			Name:    "run",
			Aliases: []string{"r"},
			Usage:   "Open the simulation window",
			Flags:   flockFlags(),
			Action: func(c *cli.Context) error {
				cfg, err := buildConfig(c)
				if err != nil {
					return err
				}
				return runAction(cfg, newLogger(c.Bool("debug")))
			},
		},
		{
			Name:  "headless",
			Usage: "Run the simulation without a window and print statistics",
			Flags: append(flockFlags(),
				cli.IntFlag{Name: "frames", Value: 600, Usage: "Number of frames to simulate"},
			),
			Action: func(c *cli.Context) error {
				cfg, err := buildConfig(c)
				if err != nil {
					return err
				}
				return headlessAction(cfg, c.Int("frames"), newLogger(c.Bool("debug")))
			},
		},
	}
	return app
}

func newLogger(debug bool) log.Logger {
	if debug {
		return log.New(log.DebugLevel, os.Stdout)
	}
	return log.New(log.InfoLevel, os.Stdout)
}

// buildConfig loads the configuration file, if any, then applies the
// command line overrides.
func buildConfig(c *cli.Context) (*flock.Config, error) {
	cfg := flock.DefaultConfig()
	if file := c.String("config"); file != "" {
		var err error
		if schema := c.String("schema"); schema != "" {
			cfg, err = flock.LoadConfigWithSchema(file, schema)
		} else {
			cfg, err = flock.LoadConfig(file)
		}
		if err != nil {
			return nil, err
		}
	}

	if c.IsSet("boids") {
		cfg.NumBoids = max(c.Int("boids"), 0)
	}
	if c.IsSet("policy") {
		switch p := flock.BoundaryPolicy(c.String("policy")); p {
		case flock.PolicyClamp, flock.PolicySteer, flock.PolicyBlend:
			cfg.BoundaryPolicy = p
		default:
			return nil, fmt.Errorf("unknown boundary policy %q", p)
		}
	}
	if c.IsSet("index") {
		switch k := flock.IndexKind(c.String("index")); k {
		case flock.IndexNaive, flock.IndexGrid, flock.IndexRTree:
			cfg.NeighborIndex = k
		default:
			return nil, fmt.Errorf("unknown neighbor index %q", k)
		}
	}
	if c.IsSet("player") {
		cfg.PlayerEnabled = c.Bool("player")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Uint64("seed")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	return cfg, nil
}

func startSystem(ctx context.Context, logger log.Logger) (actor.ActorSystem, error) {
	system, err := actor.NewActorSystem("BoidsWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}
	return system, nil
}

func runAction(cfg *flock.Config, logger log.Logger) error {
	ctx := context.Background()
	system, err := startSystem(ctx, logger)
	if err != nil {
		return err
	}
	defer system.Stop(ctx)

	game, err := simulation.NewGame(ctx, cfg, system)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Boids")
	return ebiten.RunGame(game)
}

func headlessAction(cfg *flock.Config, frames int, logger log.Logger) error {
	ctx := context.Background()
	system, err := startSystem(ctx, logger)
	if err != nil {
		return err
	}
	defer system.Stop(ctx)

	engine, err := flock.NewEngine(cfg)
	if err != nil {
		return err
	}
	pid, err := system.Spawn(ctx, "flock", simulation.NewFlockActor(engine, nil))
	if err != nil {
		return fmt.Errorf("failed to spawn flock actor: %w", err)
	}

	start := time.Now()
	tick := simulation.NewTick(time.Second / 60)
	for i := 0; i < frames; i++ {
		if err := actor.Tell(ctx, pid, tick); err != nil {
			return err
		}
	}
	// the reply arrives after every queued frame has run
	resp, err := actor.Ask(ctx, pid, simulation.NewCountQuery(), time.Minute)
	if err != nil {
		return fmt.Errorf("flock actor did not answer: %w", err)
	}
	elapsed := time.Since(start)
	count, ok := resp.(*wrapperspb.UInt32Value)
	if !ok {
		return fmt.Errorf("unexpected reply %T", resp)
	}

	stats := engine.Stats()
	logger.Infof("%d frames in %s (%.0f frames/s)", stats.Frame, elapsed.Round(time.Millisecond), float64(stats.Frame)/elapsed.Seconds())
	logger.Infof("boids: %d, mean speed %.2f, max speed %.2f, near edges %d",
		count.GetValue(), stats.MeanSpeed, stats.MaxSpeed, stats.NearEdge)
	return nil
}
