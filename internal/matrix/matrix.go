// Package matrix materialises one rectangular tile of the implicit N×N
// item-similarity (or deviation) matrix at a time, exactly as described in
// engine/src/chunked_matrix.rs of the original implementation: two
// independent chunk streams over the item space, a merged rater set, a
// batch of mean lookups, and a sparse tile keyed by the items actually
// present on each side.
package matrix

import (
	"context"

	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/meancache"
	"github.com/whiteleaf/reco/internal/metric"
	"github.com/whiteleaf/reco/internal/reco"
)

// Config bundles the tuning knobs the chunk-size optimiser
// (AllowChunkOptimization, ChunkSizeThreshold) and the mean fetch batching
// (PartialUsersChunkSize) need.
type Config struct {
	AllowChunkOptimization bool
	ChunkSizeThreshold     float64
	PartialUsersChunkSize  int
}

// ChunkedMatrix is the contract both tile engines satisfy.
type ChunkedMatrix interface {
	ApproximateChunkSize(ctx context.Context) (int, error)
	OptimizeChunksSize(ctx context.Context) error
	CalculateChunk(ctx context.Context, i, j int) error
	GetValue(a, b entity.ItemID) (float64, bool)
}

func fetchNonEmpty(ctx context.Context, store reco.RatingStore, items []entity.ItemID) (entity.MappedRatings, error) {
	raw, err := store.UsersWhoRated(ctx, items)
	if err != nil {
		return nil, reco.NewError(reco.ErrStoreBackend, "users_who_rated", err)
	}
	out := make(entity.MappedRatings, len(raw))
	for item, raters := range raw {
		if len(raters) == 0 {
			continue
		}
		out[item] = raters
	}
	return out, nil
}

func unionRaters(sides ...entity.MappedRatings) []entity.UserID {
	seen := make(map[entity.UserID]struct{})
	for _, side := range sides {
		for _, raters := range side {
			for u := range raters {
				seen[u] = struct{}{}
			}
		}
	}
	out := make([]entity.UserID, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	return out
}

func populateMeans(ctx context.Context, store reco.RatingStore, cache *meancache.Cache, users []entity.UserID, chunkSize int) error {
	cache.ShrinkMeans()

	missing := make([]entity.UserID, 0, len(users))
	for _, u := range users {
		if !cache.HasMeanFor(u) {
			missing = append(missing, u)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	partials, err := store.CreatePartialUsers(ctx, missing)
	if err != nil {
		return reco.NewError(reco.ErrStoreBackend, "create_partial_users", err)
	}

	if chunkSize <= 0 {
		chunkSize = len(partials)
	}
	for lo := 0; lo < len(partials); lo += chunkSize {
		hi := lo + chunkSize
		if hi > len(partials) {
			hi = len(partials)
		}
		means, err := store.GetMeans(ctx, partials[lo:hi])
		if err != nil {
			return reco.NewError(reco.ErrStoreBackend, "get_means", err)
		}
		cache.AddNewMeans(means)
	}
	return nil
}

// slopeOne turns metric.SlopeOne's three-valued return into the
// two-valued shape every other kernel in this package uses.
func slopeOne(a, b entity.ItemRaters) (float64, bool) {
	dev, _, ok := metric.SlopeOne(a, b)
	return dev, ok
}
