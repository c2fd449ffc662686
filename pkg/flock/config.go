package flock

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BoundaryPolicy selects how agents are kept inside the plane.
type BoundaryPolicy string

const (
	// PolicyClamp only clamps positions to the visible area.
	PolicyClamp BoundaryPolicy = "clamp"
	// PolicySteer rotates the heading away from walls and pushes a small
	// force along the new heading.
	PolicySteer BoundaryPolicy = "steer"
	// PolicyBlend rotates the heading away from walls and blends the
	// velocity toward it, harder the closer the agent is to the wall.
	PolicyBlend BoundaryPolicy = "blend"
)

// IndexKind selects the neighbor search structure used by the engine.
type IndexKind string

const (
	IndexNaive IndexKind = "naive"
	IndexGrid  IndexKind = "grid"
	IndexRTree IndexKind = "rtree"
)

var (
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrInvalidValue     = errors.New("invalid parameter value")
)

//go:embed flock.schema.json
var embeddedSchema string

const embeddedSchemaURL = "flock.schema.json"

// Config holds every tunable of the simulation. It is built once at
// startup and only changed through Set and Adjust between frames.
type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// Population
	NumBoids        int     `json:"numBoids"`
	SpawnBatch      int     `json:"spawnBatch"`
	MinInitialSpeed float64 `json:"minInitialSpeed"`
	Seed            uint64  `json:"seed"` // 0 picks a random seed

	// Kinematics, per frame
	MaxSpeed float64 `json:"maxSpeed"`
	MaxForce float64 `json:"maxForce"`

	// Steering radii and weights
	SeparationRadius float64 `json:"separationRadius"`
	AlignmentRadius  float64 `json:"alignmentRadius"`
	CohesionRadius   float64 `json:"cohesionRadius"`
	VisualRangeScale float64 `json:"visualRangeScale"`
	SeparationWeight float64 `json:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight"`

	// Boundary avoidance
	BoundaryPolicy BoundaryPolicy `json:"boundaryPolicy"`
	NearRatio      float64        `json:"nearRatio"`
	RotationSpeed  float64        `json:"rotationSpeed"` // degrees per frame
	SnapThreshold  float64        `json:"snapThreshold"` // degrees
	AvoidForce     float64        `json:"avoidForce"`
	BlendFactor    float64        `json:"blendFactor"`
	ProximityGain  float64        `json:"proximityGain"`

	// Trails
	TrailHistory   int  `json:"trailHistory"`
	TrailPointStep int  `json:"trailPointStep"`
	ShowTrails     bool `json:"showTrails"`

	// Player variant
	PlayerEnabled   bool    `json:"playerEnabled"`
	PlayerTurnSpeed float64 `json:"playerTurnSpeed"` // degrees per frame
	PlayerThrust    float64 `json:"playerThrust"`

	// Engine
	NeighborIndex IndexKind `json:"neighborIndex"`
	Workers       int       `json:"workers"`
}

// DefaultConfig returns the settings of the classic window: 80 boids on a
// 900x700 plane.
func DefaultConfig() *Config {
	return &Config{
		WorldWidth:       900,
		WorldHeight:      700,
		NumBoids:         80,
		SpawnBatch:       10,
		MinInitialSpeed:  1.0,
		MaxSpeed:         6.0,
		MaxForce:         0.07,
		SeparationRadius: 25,
		AlignmentRadius:  60,
		CohesionRadius:   50,
		VisualRangeScale: 1.0,
		SeparationWeight: 1.8,
		AlignmentWeight:  1.0,
		CohesionWeight:   1.5,
		BoundaryPolicy:   PolicySteer,
		NearRatio:        0.1,
		RotationSpeed:    10,
		SnapThreshold:    15,
		AvoidForce:       0.08,
		BlendFactor:      0.05,
		ProximityGain:    1.0,
		TrailHistory:     40,
		TrailPointStep:   3,
		PlayerTurnSpeed:  5,
		PlayerThrust:     0.2,
		NeighborIndex:    IndexGrid,
		Workers:          1,
	}
}

// LoadConfig loads configuration from a JSON file validated against the
// embedded schema. Fields missing from the file keep their default value.
func LoadConfig(configFile string) (*Config, error) {
	sch, err := jsonschema.CompileString(embeddedSchemaURL, embeddedSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile embedded schema: %w", err)
	}
	return loadValidated(configFile, sch)
}

// LoadConfigWithSchema is LoadConfig with an external schema file.
func LoadConfigWithSchema(configFile string, schemaFile string) (*Config, error) {
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return loadValidated(configFile, sch)
}

func loadValidated(configFile string, sch *jsonschema.Schema) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Clone returns an independent copy, safe to hand to a HUD.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// MaxRadius is the largest rule radius, scaled by VisualRangeScale.
func (c *Config) MaxRadius() float64 {
	r := math.Max(c.SeparationRadius, math.Max(c.AlignmentRadius, c.CohesionRadius))
	return c.ruleRadius(r)
}

// ruleRadius applies VisualRangeScale to a rule radius. Negative radii
// select nobody.
func (c *Config) ruleRadius(r float64) float64 {
	return math.Max(r, 0) * c.scale()
}

func (c *Config) scale() float64 {
	if c.VisualRangeScale <= 0 {
		return 1
	}
	return c.VisualRangeScale
}

// param describes a scalar tunable reachable by name from sliders and keys.
type param struct {
	get func(c *Config) float64
	set func(c *Config, v float64)
	// nonNegative parameters are clamped at zero instead of going negative.
	nonNegative bool
}

var params = map[string]param{
	"maxSpeed":         {get: func(c *Config) float64 { return c.MaxSpeed }, set: func(c *Config, v float64) { c.MaxSpeed = v }},
	"maxForce":         {get: func(c *Config) float64 { return c.MaxForce }, set: func(c *Config, v float64) { c.MaxForce = v }},
	"minInitialSpeed":  {get: func(c *Config) float64 { return c.MinInitialSpeed }, set: func(c *Config, v float64) { c.MinInitialSpeed = v }},
	"separationRadius": {get: func(c *Config) float64 { return c.SeparationRadius }, set: func(c *Config, v float64) { c.SeparationRadius = v }, nonNegative: true},
	"alignmentRadius":  {get: func(c *Config) float64 { return c.AlignmentRadius }, set: func(c *Config, v float64) { c.AlignmentRadius = v }, nonNegative: true},
	"cohesionRadius":   {get: func(c *Config) float64 { return c.CohesionRadius }, set: func(c *Config, v float64) { c.CohesionRadius = v }, nonNegative: true},
	"visualRangeScale": {get: func(c *Config) float64 { return c.VisualRangeScale }, set: func(c *Config, v float64) { c.VisualRangeScale = v }, nonNegative: true},
	"separationWeight": {get: func(c *Config) float64 { return c.SeparationWeight }, set: func(c *Config, v float64) { c.SeparationWeight = v }, nonNegative: true},
	"alignmentWeight":  {get: func(c *Config) float64 { return c.AlignmentWeight }, set: func(c *Config, v float64) { c.AlignmentWeight = v }, nonNegative: true},
	"cohesionWeight":   {get: func(c *Config) float64 { return c.CohesionWeight }, set: func(c *Config, v float64) { c.CohesionWeight = v }, nonNegative: true},
	"nearRatio":        {get: func(c *Config) float64 { return c.NearRatio }, set: func(c *Config, v float64) { c.NearRatio = v }, nonNegative: true},
	"rotationSpeed":    {get: func(c *Config) float64 { return c.RotationSpeed }, set: func(c *Config, v float64) { c.RotationSpeed = v }, nonNegative: true},
	"snapThreshold":    {get: func(c *Config) float64 { return c.SnapThreshold }, set: func(c *Config, v float64) { c.SnapThreshold = v }, nonNegative: true},
	"avoidForce":       {get: func(c *Config) float64 { return c.AvoidForce }, set: func(c *Config, v float64) { c.AvoidForce = v }, nonNegative: true},
	"blendFactor":      {get: func(c *Config) float64 { return c.BlendFactor }, set: func(c *Config, v float64) { c.BlendFactor = v }, nonNegative: true},
	"proximityGain":    {get: func(c *Config) float64 { return c.ProximityGain }, set: func(c *Config, v float64) { c.ProximityGain = v }, nonNegative: true},
	"playerTurnSpeed":  {get: func(c *Config) float64 { return c.PlayerTurnSpeed }, set: func(c *Config, v float64) { c.PlayerTurnSpeed = v }, nonNegative: true},
	"playerThrust":     {get: func(c *Config) float64 { return c.PlayerThrust }, set: func(c *Config, v float64) { c.PlayerThrust = v }, nonNegative: true},
}

// Get returns the current value of a named parameter.
func (c *Config) Get(name string) (float64, error) {
	p, ok := params[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return p.get(c), nil
}

// Set changes a named parameter. Range checks belong to the caller (a
// slider's min/max); Set only refuses non-finite numbers and keeps radii
// and weights from going below zero.
func (c *Config) Set(name string, value float64) error {
	p, ok := params[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, value)
	}
	if p.nonNegative && value < 0 {
		value = 0
	}
	p.set(c, value)
	return nil
}

// Adjust adds delta to a named parameter, with the same clamping as Set.
func (c *Config) Adjust(name string, delta float64) error {
	cur, err := c.Get(name)
	if err != nil {
		return err
	}
	return c.Set(name, cur+delta)
}

// ParamNames lists every name accepted by Set.
func ParamNames() []string {
	return slices.Sorted(maps.Keys(params))
}
