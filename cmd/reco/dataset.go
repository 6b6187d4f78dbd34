package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/whiteleaf/reco/internal/controller/csvstore"
	"github.com/whiteleaf/reco/internal/reco"
)

// openDataset dispatches on --dataset to the matching csvstore constructor
// (tagged dispatch at construction time, per §4.6 — one Store type, five
// named openers).
func openDataset(name, path string, log *logrus.Entry) (reco.RatingStore, error) {
	if path == "" {
		return nil, fmt.Errorf("reco: --path is required")
	}
	switch name {
	case "books":
		return csvstore.OpenBooks(path, log)
	case "simple-movie":
		return csvstore.OpenSimpleMovie(path, log)
	case "shelves":
		return csvstore.OpenShelves(path, log)
	case "movie-lens":
		return csvstore.OpenMovieLens(path, log)
	case "movie-lens-small":
		return csvstore.OpenMovieLensSmall(path, log)
	default:
		return nil, fmt.Errorf("reco: unknown dataset %q", name)
	}
}
