package csvstore

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Score ranges per original_source/controllers/*: books and MovieLens use a
// 1-10 / 0.5-5 scale respectively, simple-movie and shelves use plain 1-5
// stars. These are the only per-dataset facts the core needs; everything
// else is identical triplet-CSV plumbing.

// OpenBooks loads the books dataset (numeric user id, ISBN item id, 1-10
// score), grounded in original_source/controllers/books/src/models/users.rs.
func OpenBooks(path string, log *logrus.Entry) (*Store, error) {
	return Open(path, 1, 10, log)
}

// OpenSimpleMovie loads the simple-movie dataset (numeric ids, 1-5 score),
// grounded in original_source/controllers/simple-movie/src/models/movies.rs.
func OpenSimpleMovie(path string, log *logrus.Entry) (*Store, error) {
	return Open(path, 1, 5, log)
}

// OpenShelves loads the shelves dataset (numeric ids, 1-5 score). The
// original tracks a score_number per mean record alongside the average;
// GetMeans here recomputes the count implicitly from len(ratings) each
// call instead of persisting it, since the core only ever asks for the
// current mean.
func OpenShelves(path string, log *logrus.Entry) (*Store, error) {
	return Open(path, 1, 5, log)
}

// OpenMovieLens loads the full MovieLens ratings triplet CSV (0.5-5 score
// in half-star increments), grounded in
// original_source/controllers/movie-lens/src/bin/load_means.rs.
func OpenMovieLens(path string, log *logrus.Entry) (*Store, error) {
	return Open(path, 0.5, 5, log)
}

// OpenMovieLensSmall loads the reduced MovieLens CSV used for local
// testing; same format and score range as the full dataset.
func OpenMovieLensSmall(path string, log *logrus.Entry) (*Store, error) {
	return Open(path, 0.5, 5, log)
}

// NewEmpty returns an empty Store for name's score range, for callers (the
// bulk loader) that fill it via InsertRating rather than Open's CSV scan.
func NewEmpty(name string, log *logrus.Entry) (*Store, error) {
	switch name {
	case "books":
		return New(1, 10, log), nil
	case "simple-movie":
		return New(1, 5, log), nil
	case "shelves":
		return New(1, 5, log), nil
	case "movie-lens", "movie-lens-small":
		return New(0.5, 5, log), nil
	default:
		return nil, fmt.Errorf("csvstore: unknown dataset %q", name)
	}
}
