// Package engine is the façade (C5) the shell talks to: it runs a metric
// directly against ratings fetched once from the store, or builds a tile
// through package matrix when the request needs the implicit item×item
// matrix. It owns the single MeanCache shared between itself and any tile
// it constructs.
package engine

import (
	"context"
	"errors"

	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/matrix"
	"github.com/whiteleaf/reco/internal/meancache"
	"github.com/whiteleaf/reco/internal/metric"
	"github.com/whiteleaf/reco/internal/reco"
)

// Engine is the core's public façade, holding one RatingStore and one
// MeanCache for the lifetime of the session.
type Engine struct {
	store     reco.RatingStore
	cache     *meancache.Cache
	matrixCfg matrix.Config

	mode tileMode
}

type tileMode struct {
	active bool
	i, j   int
	sim    *matrix.SimilarityMatrix
	dev    *matrix.DeviationMatrix
}

// New builds an Engine over store, with a mean cache sized per maxEntries/
// shrinkKeepRatio and a chunked-matrix config.
func New(store reco.RatingStore, maxEntries int, shrinkKeepRatio float64, matrixCfg matrix.Config) *Engine {
	return &Engine{
		store:     store,
		cache:     meancache.New(maxEntries, shrinkKeepRatio),
		matrixCfg: matrixCfg,
	}
}

// UserDistance computes the distance between two users under method. For
// similarity-style methods (Jaccard, Cosine, Pearson) the returned value is
// 1 - similarity, so "distance" always means "lower is closer" regardless
// of which method produced it.
func (e *Engine) UserDistance(ctx context.Context, a, b entity.UserID, method UserMethod) (float64, error) {
	ra, err := e.store.UserRatings(ctx, a)
	if err != nil {
		return 0, reco.NewError(reco.ErrStoreBackend, "user_ratings", err)
	}
	rb, err := e.store.UserRatings(ctx, b)
	if err != nil {
		return 0, reco.NewError(reco.ErrStoreBackend, "user_ratings", err)
	}

	dist, ok := userDistance(ra, rb, method)
	if !ok {
		return 0, reco.Kind(reco.ErrUndefinedMetric)
	}
	return dist, nil
}

// userDistance applies method to two rating vectors, normalising
// similarity-style results to 1 - similarity.
func userDistance(a, b entity.Ratings, method UserMethod) (float64, bool) {
	switch method.kind {
	case Euclidean:
		return metric.Euclidean(a, b)
	case Manhattan:
		return metric.Manhattan(a, b)
	case Minkowski:
		return metric.Minkowski(a, b, method.minkowski)
	case Jaccard:
		sim, ok := metric.JaccardIndex(a, b)
		if !ok {
			return 0, false
		}
		return 1 - sim, true
	case Cosine:
		sim, ok := metric.Cosine(a, b)
		if !ok {
			return 0, false
		}
		return 1 - sim, true
	case Pearson:
		sim, ok := metric.Pearson(a, b)
		if !ok {
			return 0, false
		}
		return 1 - sim, true
	default:
		return 0, false
	}
}

// ItemDistance computes the item-space distance between a and b. For
// AdjCosine this goes straight through the mean cache and UsersWhoRated,
// not a tile — building a whole tile for one pair would be wasteful.
func (e *Engine) ItemDistance(ctx context.Context, a, b entity.ItemID, method ItemMethod) (float64, error) {
	switch method {
	case AdjCosine:
		raters, err := e.store.UsersWhoRated(ctx, []entity.ItemID{a, b})
		if err != nil {
			return 0, reco.NewError(reco.ErrStoreBackend, "users_who_rated", err)
		}
		ratersA, ratersB := raters[a], raters[b]

		users := make([]entity.UserID, 0, len(ratersA)+len(ratersB))
		seen := make(map[entity.UserID]struct{})
		for u := range ratersA {
			if _, ok := seen[u]; !ok {
				seen[u] = struct{}{}
				users = append(users, u)
			}
		}
		for u := range ratersB {
			if _, ok := seen[u]; !ok {
				seen[u] = struct{}{}
				users = append(users, u)
			}
		}

		if err := e.populateMeansFor(ctx, users); err != nil {
			return 0, err
		}

		sim, ok := e.cache.Calculate(ratersA, ratersB)
		if !ok {
			return 0, reco.Kind(reco.ErrUndefinedMetric)
		}
		return sim, nil

	case SlopeOne:
		raters, err := e.store.UsersWhoRated(ctx, []entity.ItemID{a, b})
		if err != nil {
			return 0, reco.NewError(reco.ErrStoreBackend, "users_who_rated", err)
		}
		dev, _, ok := metric.SlopeOne(raters[a], raters[b])
		if !ok {
			return 0, reco.Kind(reco.ErrUndefinedMetric)
		}
		return dev, nil

	default:
		return 0, reco.Kind(reco.ErrNotImplemented)
	}
}

func (e *Engine) populateMeansFor(ctx context.Context, users []entity.UserID) error {
	e.cache.ShrinkMeans()

	missing := make([]entity.UserID, 0, len(users))
	for _, u := range users {
		if !e.cache.HasMeanFor(u) {
			missing = append(missing, u)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	partials, err := e.store.CreatePartialUsers(ctx, missing)
	if err != nil {
		return reco.NewError(reco.ErrStoreBackend, "create_partial_users", err)
	}
	means, err := e.store.GetMeans(ctx, partials)
	if err != nil {
		return reco.NewError(reco.ErrStoreBackend, "get_means", err)
	}
	e.cache.AddNewMeans(means)
	return nil
}

// Neighbor is one result row of UserKNN: a user id and its distance from
// the query user (lower is closer, see UserDistance's doc comment on the
// 1 - similarity normalisation).
type Neighbor struct {
	User     entity.UserID
	Distance float64
}

// UserKNN returns the k users closest to u under method, using a bounded
// heap so the working set never exceeds k candidates. If chunkOpt is
// non-nil, the population is walked in batches of that size instead of
// loaded all at once.
func (e *Engine) UserKNN(ctx context.Context, k int, u entity.UserID, method UserMethod, chunkOpt *int) ([]Neighbor, error) {
	target, err := e.store.UserRatings(ctx, u)
	if err != nil {
		return nil, reco.NewError(reco.ErrStoreBackend, "user_ratings", err)
	}

	allIDs, err := e.store.AllUserIDs(ctx)
	if err != nil {
		return nil, reco.NewError(reco.ErrStoreBackend, "all_user_ids", err)
	}

	others := make([]entity.UserID, 0, len(allIDs))
	for _, id := range allIDs {
		if id != u {
			others = append(others, id)
		}
	}

	chunkSize := len(others)
	if chunkOpt != nil && *chunkOpt > 0 {
		chunkSize = *chunkOpt
	}
	if chunkSize == 0 {
		return nil, nil
	}

	h := newNeighborHeap(k, method.isSimilarity())

	for lo := 0; lo < len(others); lo += chunkSize {
		hi := lo + chunkSize
		if hi > len(others) {
			hi = len(others)
		}
		batch, err := e.store.RatingsFor(ctx, others[lo:hi])
		if err != nil {
			return nil, reco.NewError(reco.ErrStoreBackend, "ratings_for", err)
		}
		for _, id := range others[lo:hi] {
			ratings, ok := batch[id]
			if !ok {
				continue
			}
			dist, ok := userDistance(target, ratings, method)
			if !ok {
				continue
			}
			h.offer(Neighbor{User: id, Distance: dist})
		}
	}

	result := h.sorted()
	return result, nil
}

// UserBasedPredict predicts u's score for item from u's k nearest
// neighbors, weighting each neighbor's rating by 1/(1+distance) for
// distance methods or by raw similarity for similarity methods.
func (e *Engine) UserBasedPredict(ctx context.Context, k int, u entity.UserID, item entity.ItemID, method UserMethod, chunkOpt *int) (float64, error) {
	neighbors, err := e.UserKNN(ctx, k, u, method, chunkOpt)
	if err != nil {
		return 0, err
	}

	var num, den float64
	var found bool
	for _, n := range neighbors {
		ratings, err := e.store.UserRatings(ctx, n.User)
		if err != nil {
			return 0, reco.NewError(reco.ErrStoreBackend, "user_ratings", err)
		}
		score, ok := ratings[item]
		if !ok {
			continue
		}

		weight := neighborWeight(n.Distance, method)
		num += weight * score
		den += absFloat(weight)
		found = true
	}

	if !found || den == 0 {
		return 0, reco.Kind(reco.ErrNoNeighbors)
	}
	return num / den, nil
}

func neighborWeight(distance float64, method UserMethod) float64 {
	if method.isSimilarity() {
		return 1 - distance // undo the 1-similarity normalisation
	}
	return 1 / (1 + distance)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ItemBasedPredict predicts user's score for item using either slope-one or
// adjusted-cosine aggregation over the user's other rated items.
func (e *Engine) ItemBasedPredict(ctx context.Context, user entity.UserID, item entity.ItemID, method ItemMethod, chunkSize int) (float64, error) {
	ratings, err := e.store.UserRatings(ctx, user)
	if err != nil {
		return 0, reco.NewError(reco.ErrStoreBackend, "user_ratings", err)
	}

	switch method {
	case SlopeOne:
		return e.itemBasedPredictSlopeOne(ctx, ratings, item)
	case AdjCosine:
		return e.itemBasedPredictAdjCosine(ctx, ratings, item)
	default:
		return 0, reco.Kind(reco.ErrNotImplemented)
	}
}

func (e *Engine) itemBasedPredictSlopeOne(ctx context.Context, ratings entity.Ratings, item entity.ItemID) (float64, error) {
	var num, den float64
	var found bool
	for j, rj := range ratings {
		if j == item {
			continue
		}
		raters, err := e.store.UsersWhoRated(ctx, []entity.ItemID{item, j})
		if err != nil {
			return 0, reco.NewError(reco.ErrStoreBackend, "users_who_rated", err)
		}
		dev, count, ok := metric.SlopeOne(raters[item], raters[j])
		if !ok {
			continue
		}
		num += (rj + dev) * float64(count)
		den += float64(count)
		found = true
	}
	if !found || den == 0 {
		return 0, reco.Kind(reco.ErrNoNeighbors)
	}
	return num / den, nil
}

func (e *Engine) itemBasedPredictAdjCosine(ctx context.Context, ratings entity.Ratings, item entity.ItemID) (float64, error) {
	var num, den float64
	var found bool
	for j, rj := range ratings {
		if j == item {
			continue
		}
		sim, err := e.ItemDistance(ctx, item, j, AdjCosine)
		if err != nil {
			continue
		}
		if sim <= 0 {
			continue
		}
		num += sim * rj
		den += absFloat(sim)
		found = true
	}
	if !found || den == 0 {
		return 0, reco.Kind(reco.ErrNoNeighbors)
	}
	return num / den, nil
}

// EnterMatrix switches the Engine into tile mode, materialising the (0,0)
// tile of an m×n chunked matrix under method. A second EnterMatrix call
// replaces whatever tile was active; if it fails, no tile stays active.
func (e *Engine) EnterMatrix(ctx context.Context, m, n int, method ItemMethod) error {
	e.mode = tileMode{}
	switch method {
	case AdjCosine:
		sim, err := matrix.NewSimilarityMatrix(ctx, e.store, e.cache, e.matrixCfg, m, n)
		if err != nil {
			return err
		}
		if err := sim.OptimizeChunksSize(ctx); err != nil && !isNotImplementedErr(err) {
			return err
		}
		if err := sim.CalculateChunk(ctx, 0, 0); err != nil {
			return err
		}
		e.mode = tileMode{active: true, sim: sim}
		return nil

	case SlopeOne:
		dev, err := matrix.NewDeviationMatrix(ctx, e.store, e.matrixCfg, m, n)
		if err != nil {
			return err
		}
		if err := dev.OptimizeChunksSize(ctx); err != nil && !isNotImplementedErr(err) {
			return err
		}
		if err := dev.CalculateChunk(ctx, 0, 0); err != nil {
			return err
		}
		e.mode = tileMode{active: true, dev: dev}
		return nil

	default:
		return reco.Kind(reco.ErrNotImplemented)
	}
}

// CloneRcAdjCosine builds a new m×n SimilarityMatrix over the Engine's store
// that shares the Engine's live mean cache by reference instead of copying it.
func (e *Engine) CloneRcAdjCosine(ctx context.Context, m, n int) (*matrix.SimilarityMatrix, error) {
	return matrix.NewSimilarityMatrix(ctx, e.store, e.cache, e.matrixCfg, m, n)
}

func isNotImplementedErr(err error) bool {
	return errors.Is(err, reco.Kind(reco.ErrNotImplemented))
}

// MatrixMoveTo recomputes the tile at chunk coordinates (i, j). It is an
// error to call this outside an active EnterMatrix session. If the
// recomputation fails, the session ends and no tile stays active.
func (e *Engine) MatrixMoveTo(ctx context.Context, i, j int) error {
	if !e.mode.active {
		return reco.NewError(reco.ErrNotImplemented, "no matrix session active", nil)
	}
	var err error
	if e.mode.sim != nil {
		err = e.mode.sim.CalculateChunk(ctx, i, j)
	} else {
		err = e.mode.dev.CalculateChunk(ctx, i, j)
	}
	if err != nil {
		e.mode = tileMode{}
		return err
	}
	e.mode.i, e.mode.j = i, j
	return nil
}

// MatrixGet reads one value out of the currently resident tile.
func (e *Engine) MatrixGet(a, b entity.ItemID) (float64, bool) {
	if !e.mode.active {
		return 0, false
	}
	if e.mode.sim != nil {
		return e.mode.sim.GetValue(a, b)
	}
	return e.mode.dev.GetValue(a, b)
}

// MaybeUpdateMeanFor forwards to the mean cache: it overwrites u's cached
// mean only if u is already resident.
func (e *Engine) MaybeUpdateMeanFor(u entity.UserID, newMean float64) {
	e.cache.MaybeUpdateMeanFor(u, newMean)
}

// MaybeDeleteMeanFor forwards to the mean cache: evicting u's cached mean is
// a no-op if u wasn't resident.
func (e *Engine) MaybeDeleteMeanFor(u entity.UserID) {
	e.cache.MaybeDeleteMeanFor(u)
}
