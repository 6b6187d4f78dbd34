package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gammazero/workerpool"
	"github.com/spf13/cobra"

	"github.com/whiteleaf/reco/internal/controller/csvstore"
	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/shelllog"
)

var (
	loadBatchSize int
	loadWorkers   int
)

var loadCmd = &cobra.Command{
	Use:   "load <ratings.csv>",
	Short: "Bulk-insert a ratings triplet CSV into a dataset store in parallel batches",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 500, "rows per worker batch")
	loadCmd.Flags().IntVar(&loadWorkers, "workers", 8, "bounded worker pool size")
}

// runLoad reads a triplet CSV and fans rows out to a bounded worker pool
// that inserts each batch into the store — the library-backed successor to
// the teacher's hand-rolled jobs/results channel pool in cmd/concurrent.
func runLoad(cmd *cobra.Command, args []string) error {
	log := shelllog.New(true)
	t := shelllog.NewTimer()

	store, err := csvstore.NewEmpty(dataset, log.Entry())
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("reco load: open %s: %w", args[0], err)
	}
	defer f.Close()

	type row struct {
		user  entity.UserID
		item  entity.ItemID
		score float64
	}

	r := csv.NewReader(bufio.NewReader(f))
	if _, err := r.Read(); err != nil { // header
		return fmt.Errorf("reco load: read header: %w", err)
	}

	pool := workerpool.New(loadWorkers)
	var mu sync.Mutex // guards the store; csvstore.Store is not concurrency-safe on its own
	var inserted, rejected int64

	batch := make([]row, 0, loadBatchSize)
	flush := func(rows []row) {
		pool.Submit(func() {
			mu.Lock()
			defer mu.Unlock()
			for _, rr := range rows {
				if err := store.InsertRating(cmd.Context(), rr.user, rr.item, rr.score); err != nil {
					atomic.AddInt64(&rejected, 1)
					continue
				}
				atomic.AddInt64(&inserted, 1)
			}
		})
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reco load: parse: %w", err)
		}
		score, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			atomic.AddInt64(&rejected, 1)
			continue
		}
		batch = append(batch, row{user: entity.UserID(rec[0]), item: entity.ItemID(rec[1]), score: score})
		if len(batch) == loadBatchSize {
			flush(batch)
			batch = make([]row, 0, loadBatchSize)
		}
	}
	if len(batch) > 0 {
		flush(batch)
	}

	pool.StopWait()

	log.Info("loaded %d rows (%d rejected) in %s", inserted, rejected, t.Elapsed())
	return nil
}
