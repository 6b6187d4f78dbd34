// Package csvstore is the one generic RatingStore (C6) every dataset
// adapter is a thin constructor over: load a (user,item,score) triplet CSV
// into memory once, then answer the core's queries against the in-memory
// indexes. This mirrors original_source's per-dataset controllers (books,
// simple-movie, shelves, movie-lens) minus their Postgres/Mongo/Diesel
// bindings, which are out of scope — the triplet CSV already matches the
// teacher's own artifacts/ratings_ui.csv format.
package csvstore

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/reco"
)

// Store is a CSV-triplet-backed RatingStore. One concrete type serves every
// dataset; what differs between books/simple-movie/shelves/movie-lens is
// only the CSV path and score range, supplied by the named constructors
// below (tagged dispatch at construction time, not a type per dataset).
type Store struct {
	log *logrus.Entry

	lo, hi float64

	byUser map[entity.UserID]entity.Ratings
	byItem entity.MappedRatings
	users  []entity.UserID // insertion order, stable across calls
}

// New returns an empty Store bounded to [lo, hi], ready to be filled via
// InsertRating — what cmd/reco load does in parallel batches instead of
// Open's sequential CSV scan.
func New(lo, hi float64, log *logrus.Entry) *Store {
	return &Store{
		log:    log,
		lo:     lo,
		hi:     hi,
		byUser: make(map[entity.UserID]entity.Ratings),
		byItem: make(entity.MappedRatings),
	}
}

// Open loads a triplet CSV (header: user,item,score) into memory and
// returns a Store bounded to [lo, hi].
func Open(path string, lo, hi float64, log *logrus.Entry) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvstore: open %s: %w", path, err)
	}
	defer f.Close()

	s := &Store{
		log:    log,
		lo:     lo,
		hi:     hi,
		byUser: make(map[entity.UserID]entity.Ratings),
		byItem: make(entity.MappedRatings),
	}

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = 3
	if _, err := r.Read(); err != nil { // header
		return nil, fmt.Errorf("csvstore: read header of %s: %w", path, err)
	}

	seen := make(map[entity.UserID]struct{})
	var n int
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvstore: parse %s: %w", path, err)
		}

		score, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			continue
		}
		if score < lo || score > hi {
			if s.log != nil {
				s.log.WithFields(logrus.Fields{"path": path, "user": rec[0], "item": rec[1], "score": score}).Warn("skipping out-of-range rating")
			}
			continue
		}
		u := entity.UserID(rec[0])
		i := entity.ItemID(rec[1])

		if s.byUser[u] == nil {
			s.byUser[u] = make(entity.Ratings)
		}
		s.byUser[u][i] = score

		if s.byItem[i] == nil {
			s.byItem[i] = make(entity.ItemRaters)
		}
		s.byItem[i][u] = score

		if _, ok := seen[u]; !ok {
			seen[u] = struct{}{}
			s.users = append(s.users, u)
		}
		n++
	}

	if s.log != nil {
		s.log.WithFields(logrus.Fields{"path": path, "triplets": n, "users": len(s.users), "items": len(s.byItem)}).Info("loaded rating store")
	}
	return s, nil
}

// chunker is the index-addressable, restartable view over item ids that
// the chunked matrix needs.
type chunker struct {
	items []entity.ItemID
	n     int
}

func (c *chunker) Chunk(i int) ([]entity.ItemID, bool) {
	lo := i * c.n
	if lo >= len(c.items) {
		return nil, false
	}
	hi := lo + c.n
	if hi > len(c.items) {
		hi = len(c.items)
	}
	return c.items[lo:hi], true
}

func (s *Store) ItemsByChunks(ctx context.Context, n int) (reco.ItemChunker, error) {
	if n <= 0 {
		return nil, reco.NewError(reco.ErrIndexOutOfBound, "chunk size must be positive", nil)
	}
	items := make([]entity.ItemID, 0, len(s.byItem))
	for i := range s.byItem {
		items = append(items, i)
	}
	sort.Slice(items, func(a, b int) bool { return items[a] < items[b] })
	return &chunker{items: items, n: n}, nil
}

func (s *Store) UsersWhoRated(ctx context.Context, items []entity.ItemID) (entity.MappedRatings, error) {
	out := make(entity.MappedRatings, len(items))
	for _, i := range items {
		raters, ok := s.byItem[i]
		if !ok {
			out[i] = make(entity.ItemRaters)
			continue
		}
		out[i] = raters
	}
	return out, nil
}

func (s *Store) CreatePartialUsers(ctx context.Context, ids []entity.UserID) ([]entity.PartialUser, error) {
	out := make([]entity.PartialUser, len(ids))
	for idx, id := range ids {
		out[idx] = entity.PartialUser{ID: id}
	}
	return out, nil
}

func (s *Store) GetMeans(ctx context.Context, users []entity.PartialUser) (map[entity.UserID]float64, error) {
	out := make(map[entity.UserID]float64, len(users))
	for _, u := range users {
		ratings, ok := s.byUser[u.ID]
		if !ok || len(ratings) == 0 {
			continue
		}
		var sum float64
		for _, score := range ratings {
			sum += score
		}
		out[u.ID] = sum / float64(len(ratings))
	}
	return out, nil
}

func (s *Store) UserRatings(ctx context.Context, user entity.UserID) (entity.Ratings, error) {
	ratings, ok := s.byUser[user]
	if !ok {
		return nil, reco.NewError(reco.ErrNotFoundByID, string(user), nil)
	}
	return ratings, nil
}

func (s *Store) UsersMeans(ctx context.Context, users []entity.UserID) (map[entity.UserID]float64, error) {
	partials, err := s.CreatePartialUsers(ctx, users)
	if err != nil {
		return nil, err
	}
	return s.GetMeans(ctx, partials)
}

func (s *Store) ScoreRange() (lo, hi float64) { return s.lo, s.hi }

// ApproximateChunkSize estimates the rating count a tile of chunkSize items
// on a side would hold, by sampling up to chunkSize items for their average
// rater count and scaling that average by chunkSize — matching the teacher's
// style of estimating cost from a small sample rather than scanning
// everything up front. This is the quantity OptimizeChunksSize halves
// verSize/horSize against until it drops under its threshold fraction of the
// original, so it must grow with chunkSize, not just track a static
// per-item average.
func (s *Store) ApproximateChunkSize(ctx context.Context, chunkSize int) (int, error) {
	if len(s.byItem) == 0 || chunkSize <= 0 {
		return 0, nil
	}
	sampled := 0
	var total int
	for _, raters := range s.byItem {
		total += len(raters)
		sampled++
		if sampled >= chunkSize {
			break
		}
	}
	if sampled == 0 {
		return 0, nil
	}
	avgRatersPerItem := float64(total) / float64(sampled)
	return int(avgRatersPerItem * float64(chunkSize)), nil
}

func (s *Store) AllUserIDs(ctx context.Context) ([]entity.UserID, error) {
	out := make([]entity.UserID, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *Store) RatingsFor(ctx context.Context, users []entity.UserID) (map[entity.UserID]entity.Ratings, error) {
	out := make(map[entity.UserID]entity.Ratings, len(users))
	for _, u := range users {
		if ratings, ok := s.byUser[u]; ok {
			out[u] = ratings
		}
	}
	return out, nil
}

func (s *Store) InsertRating(ctx context.Context, user entity.UserID, item entity.ItemID, score float64) error {
	if score < s.lo || score > s.hi {
		return reco.NewError(reco.ErrScoreOutOfRange, fmt.Sprintf("%v not in [%v,%v]", score, s.lo, s.hi), nil)
	}

	if s.byUser[user] == nil {
		s.byUser[user] = make(entity.Ratings)
		s.users = append(s.users, user)
	}
	s.byUser[user][item] = score

	if s.byItem[item] == nil {
		s.byItem[item] = make(entity.ItemRaters)
	}
	s.byItem[item][user] = score
	return nil
}

func (s *Store) UpdateRating(ctx context.Context, user entity.UserID, item entity.ItemID, score float64) error {
	ratings, ok := s.byUser[user]
	if !ok {
		return reco.NewError(reco.ErrNotFoundByID, string(user), nil)
	}
	if _, ok := ratings[item]; !ok {
		return reco.NewError(reco.ErrNotFoundByID, string(item), nil)
	}
	return s.InsertRating(ctx, user, item, score)
}

func (s *Store) RemoveRating(ctx context.Context, user entity.UserID, item entity.ItemID) error {
	if ratings, ok := s.byUser[user]; ok {
		delete(ratings, item)
	}
	if raters, ok := s.byItem[item]; ok {
		delete(raters, user)
	}
	return nil
}
