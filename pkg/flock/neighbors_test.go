package flock

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededAgents(t testing.TB, n int) []*Agent {
	t.Helper()
	cfg := testConfig()
	pop := NewPopulation(cfg, 7)
	pop.Populate(n)
	// a few exact duplicates and wall huggers
	agents := pop.All()
	agents[1].Position = agents[0].Position
	agents[2].Position.X = 0
	agents[3].Position.Y = cfg.WorldHeight - 1e-9
	return agents
}

func ids(agents []*Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.ID
	}
	slices.Sort(out)
	return out
}

func TestNeighborIndexes_MatchBruteForce(t *testing.T) {
	agents := seededAgents(t, 300)

	for _, kind := range []IndexKind{IndexNaive, IndexGrid, IndexRTree} {
		t.Run(string(kind), func(t *testing.T) {
			index, err := NewNeighborIndex(kind, 60)
			require.NoError(t, err)
			index.Rebuild(agents)

			for _, radius := range []float64{0, 25, 60, 150} {
				for _, self := range agents {
					want := ids(Neighbors(self, radius, agents))
					got := ids(index.Query(nil, self, radius))
					require.Equal(t, want, got, "radius %v around %v", radius, self.Position)
				}
			}
		})
	}
}

func TestNeighbors_StrictAndSelfExcluded(t *testing.T) {
	agents := seededAgents(t, 200)
	const radius = 60.0

	for _, self := range agents[:20] {
		got := Neighbors(self, radius, agents)
		assert.NotContains(t, got, self)
		for _, other := range got {
			assert.Less(t, self.Position.DistanceTo(other.Position), radius)
		}
		for _, other := range agents {
			if other == self || slices.Contains(got, other) {
				continue
			}
			assert.GreaterOrEqual(t, self.Position.DistanceTo(other.Position), radius)
		}
	}
}

func TestNeighbors_ExactDistanceExcluded(t *testing.T) {
	me := newTestAgent(100, 100, 0, 0)
	edge := newTestAgent(160, 100, 0, 0)
	inside := newTestAgent(159.99, 100, 0, 0)
	agents := []*Agent{me, edge, inside}

	for _, kind := range []IndexKind{IndexNaive, IndexGrid, IndexRTree} {
		index, err := NewNeighborIndex(kind, 60)
		require.NoError(t, err)
		index.Rebuild(agents)
		assert.Equal(t, []*Agent{inside}, index.Query(nil, me, 60), string(kind))
	}
}

func TestNeighborIndex_Unknown(t *testing.T) {
	_, err := NewNeighborIndex("octree", 60)
	assert.Error(t, err)
}

func TestGridIndex_RebuildForgetsMovedAgents(t *testing.T) {
	me := newTestAgent(100, 100, 0, 0)
	other := newTestAgent(110, 100, 0, 0)
	agents := []*Agent{me, other}
	g := newGridIndex(60)
	g.Rebuild(agents)
	require.Len(t, g.Query(nil, me, 25), 1)

	other.Position.X = 500
	g.Rebuild(agents)
	assert.Empty(t, g.Query(nil, me, 25))
}

func BenchmarkNeighborIndex(b *testing.B) {
	for _, n := range []int{100, 1000} {
		agents := seededAgents(b, n)
		for _, kind := range []IndexKind{IndexNaive, IndexGrid, IndexRTree} {
			b.Run(fmt.Sprintf("%s/%d", kind, n), func(b *testing.B) {
				index, _ := NewNeighborIndex(kind, 60)
				var buf []*Agent
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					index.Rebuild(agents)
					for _, a := range agents {
						buf = index.Query(buf[:0], a, 60)
					}
				}
			})
		}
	}
}
