package matrix

import (
	"context"

	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/reco"
)

// chunkStreams holds the two independent, resizable chunk iterators both
// tile engines fetch their vertical and horizontal batches from, plus the
// chunk-size optimiser that resizes them in lockstep. Both SimilarityMatrix
// and DeviationMatrix embed one instead of duplicating this bookkeeping.
type chunkStreams struct {
	cfg   Config
	store reco.RatingStore

	verSize, horSize int
	verIter, horIter reco.ItemChunker
}

func newChunkStreams(ctx context.Context, store reco.RatingStore, cfg Config, m, n int) (chunkStreams, error) {
	verIter, err := store.ItemsByChunks(ctx, m)
	if err != nil {
		return chunkStreams{}, reco.NewError(reco.ErrStoreBackend, "items_by_chunks(ver)", err)
	}
	horIter, err := store.ItemsByChunks(ctx, n)
	if err != nil {
		return chunkStreams{}, reco.NewError(reco.ErrStoreBackend, "items_by_chunks(hor)", err)
	}
	return chunkStreams{cfg: cfg, store: store, verSize: m, horSize: n, verIter: verIter, horIter: horIter}, nil
}

func (s *chunkStreams) approximateChunkSize(ctx context.Context) (int, error) {
	return s.store.ApproximateChunkSize(ctx, s.verSize)
}

func (s *chunkStreams) optimize(ctx context.Context) error {
	if !s.cfg.AllowChunkOptimization {
		return nil
	}

	original, err := s.approximateChunkSize(ctx)
	if err != nil {
		if isNotImplemented(err) {
			return nil
		}
		return err
	}
	target := int(float64(original) * s.cfg.ChunkSizeThreshold)

	for {
		current, err := s.approximateChunkSize(ctx)
		if err != nil {
			return err
		}
		if current <= target || s.verSize <= 1 || s.horSize <= 1 {
			return nil
		}

		s.verSize /= 2
		s.horSize /= 2

		s.verIter, err = s.store.ItemsByChunks(ctx, s.verSize)
		if err != nil {
			return reco.NewError(reco.ErrStoreBackend, "items_by_chunks(ver)", err)
		}
		s.horIter, err = s.store.ItemsByChunks(ctx, s.horSize)
		if err != nil {
			return reco.NewError(reco.ErrStoreBackend, "items_by_chunks(hor)", err)
		}
	}
}

func (s *chunkStreams) fetch(i, j int) (ver, hor []entity.ItemID, err error) {
	ver, ok := s.verIter.Chunk(i)
	if !ok {
		return nil, nil, reco.NewError(reco.ErrIndexOutOfBound, "vertical chunk", nil)
	}
	hor, ok = s.horIter.Chunk(j)
	if !ok {
		return nil, nil, reco.NewError(reco.ErrIndexOutOfBound, "horizontal chunk", nil)
	}
	return ver, hor, nil
}

func isNotImplemented(err error) bool {
	e, ok := err.(*reco.Error)
	return ok && e.Kind == reco.ErrNotImplemented
}
