package flock

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flock.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{"numBoids": 120, "boundaryPolicy": "blend", "seed": 7}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, 120, cfg.NumBoids)
	assert.Equal(t, PolicyBlend, cfg.BoundaryPolicy)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, def.MaxSpeed, cfg.MaxSpeed)
	assert.Equal(t, def.SeparationRadius, cfg.SeparationRadius)
	assert.Equal(t, def.NeighborIndex, cfg.NeighborIndex)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative speed", `{"maxSpeed": -1}`},
		{"unknown policy", `{"boundaryPolicy": "bounce"}`},
		{"unknown field", `{"gravity": 9.81}`},
		{"not json", `{numBoids: 3`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadConfigWithSchema_SampleFiles(t *testing.T) {
	cfg, err := LoadConfigWithSchema("../../configs/flock.json", "../../configs/flock.schema.json")
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.NumBoids)
	assert.Equal(t, PolicySteer, cfg.BoundaryPolicy)
	assert.Equal(t, IndexGrid, cfg.NeighborIndex)
}

func TestConfig_SetAndGet(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("cohesionWeight", 0.5))
	v, err := cfg.Get("cohesionWeight")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	_, err = cfg.Get("gravity")
	assert.ErrorIs(t, err, ErrUnknownParameter)
	assert.ErrorIs(t, cfg.Set("gravity", 1), ErrUnknownParameter)
	assert.ErrorIs(t, cfg.Set("maxSpeed", math.NaN()), ErrInvalidValue)
	assert.ErrorIs(t, cfg.Set("maxSpeed", math.Inf(1)), ErrInvalidValue)
	assert.Equal(t, 6.0, cfg.MaxSpeed, "rejected values leave the config untouched")
}

func TestConfig_AdjustNeverBelowZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeparationWeight = 0.15

	for i := 0; i < 5; i++ {
		require.NoError(t, cfg.Adjust("separationWeight", -0.1))
		assert.GreaterOrEqual(t, cfg.SeparationWeight, 0.0)
	}
	assert.Equal(t, 0.0, cfg.SeparationWeight)

	require.NoError(t, cfg.Adjust("separationWeight", 0.1))
	assert.InDelta(t, 0.1, cfg.SeparationWeight, 1e-12)
}

func TestConfig_MaxRadiusAndClone(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 60.0, cfg.MaxRadius())

	cfg.VisualRangeScale = 1.5
	assert.Equal(t, 90.0, cfg.MaxRadius())

	cfg.VisualRangeScale = 0
	assert.Equal(t, 60.0, cfg.MaxRadius(), "non-positive scale means unscaled")

	cp := cfg.Clone()
	cp.AlignmentRadius = 1
	assert.Equal(t, 60.0, cfg.AlignmentRadius)
}

func TestParamNames(t *testing.T) {
	names := ParamNames()
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "separationWeight")
	cfg := DefaultConfig()
	for _, n := range names {
		_, err := cfg.Get(n)
		assert.NoError(t, err, n)
	}
}
