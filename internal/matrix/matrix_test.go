package matrix_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whiteleaf/reco/internal/controller/csvstore"
	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/matrix"
	"github.com/whiteleaf/reco/internal/meancache"
)

func fourItemStore(t *testing.T) *csvstore.Store {
	t.Helper()
	s := csvstore.New(1, 5, nil)
	ctx := context.Background()
	ratings := []struct {
		u, i string
		s    float64
	}{
		{"u1", "i1", 5}, {"u1", "i2", 3}, {"u1", "i3", 4}, {"u1", "i4", 2},
		{"u2", "i1", 4}, {"u2", "i2", 2}, {"u2", "i3", 5},
		{"u3", "i2", 5}, {"u3", "i3", 3}, {"u3", "i4", 4},
	}
	for _, r := range ratings {
		require.NoError(t, s.InsertRating(ctx, entity.UserID(r.u), entity.ItemID(r.i), r.s))
	}
	return s
}

func TestS3_SimilarityTileSparsityAndDiagonal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := fourItemStore(t)
	cache := meancache.New(100, 0.5)
	cfg := matrix.Config{AllowChunkOptimization: false, PartialUsersChunkSize: 10}

	sim, err := matrix.NewSimilarityMatrix(ctx, s, cache, cfg, 2, 2)
	require.NoError(t, err)
	require.NoError(t, sim.CalculateChunk(ctx, 0, 0))

	v, ok := sim.GetValue("i1", "i1")
	require.True(t, ok)
	require.InDelta(t, 1.0, v, 1e-9)

	// i3 lies outside chunk (0,0) on both sides, so the tile holds nothing for it.
	_, ok = sim.GetValue("i1", "i3")
	require.False(t, ok)
}

func TestDeviationMatrix_Antisymmetric(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := fourItemStore(t)
	cfg := matrix.Config{AllowChunkOptimization: false}

	dev, err := matrix.NewDeviationMatrix(ctx, s, cfg, 4, 4)
	require.NoError(t, err)
	require.NoError(t, dev.CalculateChunk(ctx, 0, 0))

	ab, okAB := dev.GetValue("i1", "i2")
	ba, okBA := dev.GetValue("i2", "i1")
	require.True(t, okAB)
	require.True(t, okBA)
	require.InDelta(t, -ab, ba, 1e-9)

	diag, ok := dev.GetValue("i1", "i1")
	require.True(t, ok)
	require.InDelta(t, 0.0, diag, 1e-9)
}
