// Package reco defines the RatingStore contract every dataset controller
// implements and the core consumes. It is the sole boundary between the
// core (metric, meancache, matrix, engine) and dataset-specific plumbing.
package reco

import (
	"context"

	"github.com/whiteleaf/reco/internal/entity"
)

// ItemChunker gives index-addressable, restartable access to a store's items
// in fixed-size batches. This replaces a stateful forward-only cursor
// (`nth(i)` consumption) precisely because the chunked matrix needs to
// revisit Chunk(i) and Chunk(j) independently and, on a MoveTo, possibly
// move backwards.
type ItemChunker interface {
	// Chunk returns the i-th batch of items (0-indexed) and true, or
	// (nil, false) if i is past the end.
	Chunk(i int) ([]entity.ItemID, bool)
}

// RatingStore is the narrow interface the core depends on. Concrete
// datasets (books, movies, shelves, MovieLens) each implement it once,
// converting their own native id types to entity.UserID/entity.ItemID at
// the boundary.
type RatingStore interface {
	// ItemsByChunks returns an index-addressable accessor over all items,
	// batched n at a time.
	ItemsByChunks(ctx context.Context, n int) (ItemChunker, error)

	// UsersWhoRated returns, for each requested item, the map of users who
	// rated it to their score. Implementations may return empty inner maps;
	// callers must filter those out.
	UsersWhoRated(ctx context.Context, items []entity.ItemID) (entity.MappedRatings, error)

	// CreatePartialUsers is a cheap shim that must not touch rating storage.
	CreatePartialUsers(ctx context.Context, ids []entity.UserID) ([]entity.PartialUser, error)

	// GetMeans computes the arithmetic mean of each partial user's rating
	// set. Users with zero ratings get no entry.
	GetMeans(ctx context.Context, users []entity.PartialUser) (map[entity.UserID]float64, error)

	// UserRatings returns one user's full rating vector.
	UserRatings(ctx context.Context, user entity.UserID) (entity.Ratings, error)

	// UsersMeans recomputes means for a batch of users, e.g. after a
	// mutation.
	UsersMeans(ctx context.Context, users []entity.UserID) (map[entity.UserID]float64, error)

	// ScoreRange returns the inclusive [lo, hi] bound valid ratings fall in.
	ScoreRange() (lo, hi float64)

	// ApproximateChunkSize is a store-specific hint (rating count per tile)
	// used by the chunk-size optimiser. Stores that can't estimate it cheaply
	// return reco.Kind(ErrNotImplemented), which disables the optimiser.
	ApproximateChunkSize(ctx context.Context, chunkSize int) (int, error)

	// AllUserIDs enumerates every user the store knows about, in a stable
	// order. Paired with RatingsFor, this is what UserKNN walks when asked
	// to consider "all other users" — batched if the caller passes a chunk
	// size, loaded in one shot otherwise.
	AllUserIDs(ctx context.Context) ([]entity.UserID, error)

	// RatingsFor returns the full rating vector for each of the given users.
	// Users with no ratings at all may be omitted from the result.
	RatingsFor(ctx context.Context, users []entity.UserID) (map[entity.UserID]entity.Ratings, error)

	// InsertRating adds or overwrites user's score for item. Returns
	// reco.ErrScoreOutOfRange if score falls outside ScoreRange.
	InsertRating(ctx context.Context, user entity.UserID, item entity.ItemID, score float64) error

	// UpdateRating overwrites an existing rating. Returns
	// reco.ErrNotFoundByID if the (user, item) pair has no rating yet.
	UpdateRating(ctx context.Context, user entity.UserID, item entity.ItemID, score float64) error

	// RemoveRating deletes a rating. A no-op, not an error, if the pair
	// wasn't rated.
	RemoveRating(ctx context.Context, user entity.UserID, item entity.ItemID) error
}
