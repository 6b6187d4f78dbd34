package engine_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whiteleaf/reco/internal/controller/csvstore"
	"github.com/whiteleaf/reco/internal/engine"
	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/matrix"
)

func newEngine(t *testing.T) (*engine.Engine, *csvstore.Store) {
	t.Helper()
	store := csvstore.New(1, 5, nil)
	cfg := matrix.Config{AllowChunkOptimization: false, PartialUsersChunkSize: 10}
	return engine.New(store, 1000, 0.5, cfg), store
}

// TestS1_UserKNNCosine mirrors scenario S1 from the spec verbatim.
func TestS1_UserKNNCosine(t *testing.T) {
	t.Parallel()
	eng, store := newEngine(t)
	ctx := context.Background()

	require.NoError(t, store.InsertRating(ctx, "A", "x", 5))
	require.NoError(t, store.InsertRating(ctx, "A", "y", 3))
	require.NoError(t, store.InsertRating(ctx, "B", "x", 4))
	require.NoError(t, store.InsertRating(ctx, "B", "y", 2))
	require.NoError(t, store.InsertRating(ctx, "C", "x", 1))
	require.NoError(t, store.InsertRating(ctx, "C", "y", 5))

	neighbors, err := eng.UserKNN(ctx, 2, "A", engine.NewUserMethod(engine.Cosine), nil)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	require.Equal(t, entity.UserID("B"), neighbors[0].User)
	require.Equal(t, entity.UserID("C"), neighbors[1].User)
	require.Less(t, neighbors[0].Distance, neighbors[1].Distance)

	wantDAB := 1 - (5*4+3*2)/(math.Sqrt(34)*math.Sqrt(20))
	require.InDelta(t, wantDAB, neighbors[0].Distance, 1e-9)
}

func TestUserKNN_BoundedByK(t *testing.T) {
	t.Parallel()
	eng, store := newEngine(t)
	ctx := context.Background()
	for _, u := range []entity.UserID{"u1", "u2", "u3", "u4"} {
		require.NoError(t, store.InsertRating(ctx, u, "i1", 3))
		require.NoError(t, store.InsertRating(ctx, u, "i2", 4))
	}
	require.NoError(t, store.InsertRating(ctx, "target", "i1", 3))
	require.NoError(t, store.InsertRating(ctx, "target", "i2", 4))

	neighbors, err := eng.UserKNN(ctx, 2, "target", engine.NewUserMethod(engine.Euclidean), nil)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)

	seen := map[entity.UserID]bool{}
	for _, n := range neighbors {
		require.NotEqual(t, entity.UserID("target"), n.User)
		require.False(t, seen[n.User])
		seen[n.User] = true
	}
}

// TestS2_ItemBasedPredictSlopeOne mirrors scenario S2 from the spec.
func TestS2_ItemBasedPredictSlopeOne(t *testing.T) {
	t.Parallel()
	eng, store := newEngine(t)
	ctx := context.Background()

	require.NoError(t, store.InsertRating(ctx, "U1", "i1", 5))
	require.NoError(t, store.InsertRating(ctx, "U1", "i2", 3))
	require.NoError(t, store.InsertRating(ctx, "U1", "i3", 2))
	require.NoError(t, store.InsertRating(ctx, "U2", "i1", 3))
	require.NoError(t, store.InsertRating(ctx, "U2", "i2", 4))
	require.NoError(t, store.InsertRating(ctx, "U3", "i2", 2))
	require.NoError(t, store.InsertRating(ctx, "U3", "i3", 5))

	pred, err := eng.ItemBasedPredict(ctx, "U2", "i3", engine.SlopeOne, 16)
	require.NoError(t, err)
	require.InDelta(t, 10.0/3.0, pred, 1e-9)
}

func TestUserBasedPredict_ErrorsWhenNoNeighborRatedItem(t *testing.T) {
	t.Parallel()
	eng, store := newEngine(t)
	ctx := context.Background()
	require.NoError(t, store.InsertRating(ctx, "u1", "i1", 3))
	require.NoError(t, store.InsertRating(ctx, "u2", "i1", 4))

	_, err := eng.UserBasedPredict(ctx, 5, "u1", "i2", engine.NewUserMethod(engine.Pearson), nil)
	require.Error(t, err)
}

func TestEnterMatrixAndMatrixGet(t *testing.T) {
	t.Parallel()
	eng, store := newEngine(t)
	ctx := context.Background()
	require.NoError(t, store.InsertRating(ctx, "u1", "i1", 5))
	require.NoError(t, store.InsertRating(ctx, "u1", "i2", 3))
	require.NoError(t, store.InsertRating(ctx, "u2", "i1", 4))
	require.NoError(t, store.InsertRating(ctx, "u2", "i2", 2))

	require.NoError(t, eng.EnterMatrix(ctx, 2, 2, engine.AdjCosine))
	v, ok := eng.MatrixGet("i1", "i1")
	require.True(t, ok)
	require.InDelta(t, 1.0, v, 1e-9)
}
