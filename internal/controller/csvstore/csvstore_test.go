package csvstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whiteleaf/reco/internal/controller/csvstore"
	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/reco"
)

func seeded(t *testing.T) *csvstore.Store {
	t.Helper()
	s := csvstore.New(1, 5, nil)
	ctx := context.Background()
	require.NoError(t, s.InsertRating(ctx, "u1", "i1", 5))
	require.NoError(t, s.InsertRating(ctx, "u1", "i2", 3))
	require.NoError(t, s.InsertRating(ctx, "u2", "i1", 4))
	return s
}

func TestInsertRating_RejectsOutOfRangeScore(t *testing.T) {
	t.Parallel()
	s := csvstore.New(1, 5, nil)
	err := s.InsertRating(context.Background(), "u1", "i1", 9.0)
	require.Error(t, err)

	var rerr *reco.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, reco.ErrScoreOutOfRange, rerr.Kind)

	_, err = s.UserRatings(context.Background(), "u1")
	require.Error(t, err) // store must remain unchanged
}

func TestUpdateRating_RequiresExistingPair(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	ctx := context.Background()

	err := s.UpdateRating(ctx, "u1", "i3", 2)
	require.Error(t, err)

	require.NoError(t, s.UpdateRating(ctx, "u1", "i1", 1))
	ratings, err := s.UserRatings(ctx, "u1")
	require.NoError(t, err)
	require.InDelta(t, 1, ratings["i1"], 1e-9)
}

func TestRemoveRating_NoOpWhenAbsent(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	ctx := context.Background()
	require.NoError(t, s.RemoveRating(ctx, "ghost", "i1"))

	require.NoError(t, s.RemoveRating(ctx, "u1", "i1"))
	ratings, err := s.UserRatings(ctx, "u1")
	require.NoError(t, err)
	_, ok := ratings["i1"]
	require.False(t, ok)
}

func TestAllUserIDsAndRatingsFor(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	ctx := context.Background()

	ids, err := s.AllUserIDs(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []entity.UserID{"u1", "u2"}, ids)

	batch, err := s.RatingsFor(ctx, ids)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	require.InDelta(t, 5, batch["u1"]["i1"], 1e-9)
}

func TestGetMeans(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	ctx := context.Background()

	partials, err := s.CreatePartialUsers(ctx, []entity.UserID{"u1"})
	require.NoError(t, err)
	means, err := s.GetMeans(ctx, partials)
	require.NoError(t, err)
	require.InDelta(t, 4.0, means["u1"], 1e-9) // (5+3)/2
}

func TestItemsByChunks(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	ctx := context.Background()

	chunker, err := s.ItemsByChunks(ctx, 1)
	require.NoError(t, err)

	first, ok := chunker.Chunk(0)
	require.True(t, ok)
	require.Len(t, first, 1)

	_, ok = chunker.Chunk(100)
	require.False(t, ok)
}
