package metric_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/metric"
)

func TestEuclidean_SelfDistanceIsZero(t *testing.T) {
	t.Parallel()
	a := entity.Ratings{"x": 5, "y": 3}
	d, ok := metric.Euclidean(a, a)
	require.True(t, ok)
	require.InDelta(t, 0, d, 1e-9)
}

func TestCosine_SelfSimilarityIsOne(t *testing.T) {
	t.Parallel()
	a := entity.Ratings{"x": 5, "y": 3}
	sim, ok := metric.Cosine(a, a)
	require.True(t, ok)
	require.InDelta(t, 1, sim, 1e-9)
}

func TestPearson_SelfSimilarityIsOneWhenVarianceNonzero(t *testing.T) {
	t.Parallel()
	a := entity.Ratings{"x": 5, "y": 3, "z": 4}
	sim, ok := metric.Pearson(a, a)
	require.True(t, ok)
	require.InDelta(t, 1, sim, 1e-9)
}

func TestDisjointItemSets_UndefinedOrZero(t *testing.T) {
	t.Parallel()
	a := entity.Ratings{"x": 5}
	b := entity.Ratings{"y": 3}

	j, ok := metric.JaccardIndex(a, b)
	require.True(t, ok)
	require.InDelta(t, 0, j, 1e-9)

	_, ok = metric.Cosine(a, b)
	require.False(t, ok)

	_, ok = metric.Pearson(a, b)
	require.False(t, ok)
}

// TestS1_CosineKNNDistance mirrors the literal S1 scenario: two rating
// vectors with a known cosine similarity, checked against the spec's own
// worked formula.
func TestS1_CosineKNNDistance(t *testing.T) {
	t.Parallel()
	a := entity.Ratings{"x": 5, "y": 3}
	b := entity.Ratings{"x": 4, "y": 2}

	sim, ok := metric.Cosine(a, b)
	require.True(t, ok)

	want := (5*4 + 3*2) / (math.Sqrt(34) * math.Sqrt(20))
	require.InDelta(t, want, sim, 1e-9)
}

func TestSlopeOne_Antisymmetric(t *testing.T) {
	t.Parallel()
	a := entity.ItemRaters{"u1": 5, "u2": 3}
	b := entity.ItemRaters{"u1": 3, "u2": 4}

	devAB, nAB, ok := metric.SlopeOne(a, b)
	require.True(t, ok)
	devBA, nBA, ok := metric.SlopeOne(b, a)
	require.True(t, ok)

	require.Equal(t, nAB, nBA)
	require.InDelta(t, -devAB, devBA, 1e-9)
}

func TestSlopeOne_S2Fixture(t *testing.T) {
	t.Parallel()
	// i3 raters: u1:2, u3:5 ; i1 raters: u1:5, u2:3 ; i2 raters: u1:3, u2:4, u3:2
	i3 := entity.ItemRaters{"u1": 2, "u3": 5}
	i1 := entity.ItemRaters{"u1": 5, "u2": 3}
	i2 := entity.ItemRaters{"u1": 3, "u2": 4, "u3": 2}

	dev31, n31, ok := metric.SlopeOne(i3, i1)
	require.True(t, ok)
	require.Equal(t, 1, n31)
	require.InDelta(t, -3, dev31, 1e-9)

	dev32, n32, ok := metric.SlopeOne(i3, i2)
	require.True(t, ok)
	require.Equal(t, 2, n32)
	require.InDelta(t, 1, dev32, 1e-9)
}

func TestAdjustedCosine_RequiresMeans(t *testing.T) {
	t.Parallel()
	means := map[entity.UserID]float64{"u1": 4, "u2": 3.5}
	a := entity.ItemRaters{"u1": 5, "u2": 3}
	b := entity.ItemRaters{"u1": 3, "u2": 4}

	sim, ok := metric.AdjustedCosine(means, a, b)
	require.True(t, ok)
	require.GreaterOrEqual(t, sim, -1.0)
	require.LessOrEqual(t, sim, 1.0)
}
