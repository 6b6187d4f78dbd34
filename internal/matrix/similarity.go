package matrix

import (
	"context"

	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/meancache"
	"github.com/whiteleaf/reco/internal/reco"
)

// SimilarityMatrix materialises adjusted-cosine similarity tiles. It owns no
// mean cache of its own: the cache is shared with whatever Engine
// constructed it (see Engine.CloneRcAdjCosine), so means computed while
// building one tile stay warm for the next.
type SimilarityMatrix struct {
	chunkStreams
	store reco.RatingStore
	cache *meancache.Cache

	tile map[entity.ItemID]entity.Ratings
}

// NewSimilarityMatrix builds a SimilarityMatrix over store with vertical
// chunk size m and horizontal chunk size n, sharing cache with its owner.
func NewSimilarityMatrix(ctx context.Context, store reco.RatingStore, cache *meancache.Cache, cfg Config, m, n int) (*SimilarityMatrix, error) {
	streams, err := newChunkStreams(ctx, store, cfg, m, n)
	if err != nil {
		return nil, err
	}
	return &SimilarityMatrix{chunkStreams: streams, store: store, cache: cache}, nil
}

// ApproximateChunkSize forwards to the store's hint, using the matrix's
// current vertical chunk size.
func (m *SimilarityMatrix) ApproximateChunkSize(ctx context.Context) (int, error) {
	return m.approximateChunkSize(ctx)
}

// OptimizeChunksSize halves the chunk sizes, restarting both iterators each
// time, until the approximate tile size drops under the configured
// threshold fraction of the original. A no-op when the store doesn't
// implement ApproximateChunkSize, or the optimisation is disabled.
func (m *SimilarityMatrix) OptimizeChunksSize(ctx context.Context) error {
	return m.optimize(ctx)
}

// CalculateChunk rebuilds the tile at (i, j), replacing whatever tile was
// previously resident.
func (m *SimilarityMatrix) CalculateChunk(ctx context.Context, i, j int) error {
	verItems, horItems, err := m.fetch(i, j)
	if err != nil {
		return err
	}

	verRatings, err := fetchNonEmpty(ctx, m.store, verItems)
	if err != nil {
		return err
	}
	horRatings, err := fetchNonEmpty(ctx, m.store, horItems)
	if err != nil {
		return err
	}

	allUsers := unionRaters(verRatings, horRatings)
	if err := populateMeans(ctx, m.store, m.cache, allUsers, m.cfg.PartialUsersChunkSize); err != nil {
		return err
	}

	tile := make(map[entity.ItemID]entity.Ratings)
	for itemA, ratersA := range verRatings {
		row := tile[itemA]
		if row == nil {
			row = make(entity.Ratings)
		}

		for itemB, ratersB := range horRatings {
			if _, already := row[itemB]; already {
				continue
			}
			if sim, ok := m.cache.Calculate(ratersA, ratersB); ok {
				row[itemB] = sim
			}
		}

		row[itemA] = 1.0
		tile[itemA] = row
	}

	m.tile = tile
	return nil
}

// GetValue returns the similarity between items a and b, checking both
// orientations of the sparse tile since a tile row only exists for items on
// the vertical side.
func (m *SimilarityMatrix) GetValue(a, b entity.ItemID) (float64, bool) {
	if row, ok := m.tile[a]; ok {
		if v, ok := row[b]; ok {
			return v, true
		}
	}
	if row, ok := m.tile[b]; ok {
		if v, ok := row[a]; ok {
			return v, true
		}
	}
	return 0, false
}
