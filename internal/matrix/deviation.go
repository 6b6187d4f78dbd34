package matrix

import (
	"context"

	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/reco"
)

// DeviationMatrix materialises slope-one deviation tiles. It needs no mean
// cache: the deviation between two items is a direct function of their
// common raters' scores.
type DeviationMatrix struct {
	chunkStreams
	store reco.RatingStore

	tile map[entity.ItemID]entity.Ratings
}

// NewDeviationMatrix builds a DeviationMatrix over store with vertical chunk
// size m and horizontal chunk size n.
func NewDeviationMatrix(ctx context.Context, store reco.RatingStore, cfg Config, m, n int) (*DeviationMatrix, error) {
	streams, err := newChunkStreams(ctx, store, cfg, m, n)
	if err != nil {
		return nil, err
	}
	return &DeviationMatrix{chunkStreams: streams, store: store}, nil
}

// ApproximateChunkSize forwards to the store's hint.
func (m *DeviationMatrix) ApproximateChunkSize(ctx context.Context) (int, error) {
	return m.approximateChunkSize(ctx)
}

// OptimizeChunksSize mirrors SimilarityMatrix.OptimizeChunksSize.
func (m *DeviationMatrix) OptimizeChunksSize(ctx context.Context) error {
	return m.optimize(ctx)
}

// CalculateChunk rebuilds the tile at (i, j). Entries are signed: tile[a][b]
// is dev(a, b); GetValue synthesizes the reverse direction.
func (m *DeviationMatrix) CalculateChunk(ctx context.Context, i, j int) error {
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
			if dev, ok := slopeOne(ratersA, ratersB); ok {
				row[itemB] = dev
			}
		}

		row[itemA] = 0.0
		tile[itemA] = row
	}

	m.tile = tile
	return nil
}

// GetValue returns dev(a, b): tile[a][b] directly if present, else the
// negation of tile[b][a], else undefined.
func (m *DeviationMatrix) GetValue(a, b entity.ItemID) (float64, bool) {
	if row, ok := m.tile[a]; ok {
		if v, ok := row[b]; ok {
			return v, true
		}
	}
	if row, ok := m.tile[b]; ok {
		if v, ok := row[a]; ok {
			return -v, true
		}
	}
	return 0, false
}
