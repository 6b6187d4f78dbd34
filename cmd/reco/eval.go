package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/whiteleaf/reco/internal/config"
	"github.com/whiteleaf/reco/internal/controller/csvstore"
	"github.com/whiteleaf/reco/internal/engine"
	"github.com/whiteleaf/reco/internal/entity"
)

var (
	evalModel     string
	evalTestRatio float64
	evalK         int
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Hold out a fraction of ratings per user and report MAE/RMSE",
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalModel, "model", "user", "user|item")
	evalCmd.Flags().Float64Var(&evalTestRatio, "test_ratio", 0.1, "fraction of each user's ratings held out")
	evalCmd.Flags().IntVar(&evalK, "k", 10, "neighbor count (user model) or chunk size (item model)")
}

// runEval reproduces the teacher's per-user hold-out evaluation
// (cmd/recommend/recommend.go) against the Engine instead of hand-rolled
// in-memory maps, reporting MAE and RMSE. Held-out ratings are excluded from
// a separate training store before the Engine ever sees it, the same way
// recommend.go builds its own train map rather than predicting against the
// full dataset it sampled test cases from.
func runEval(cmd *cobra.Command, args []string) error {
	cfg := config.Load(vip)
	full, err := openDataset(dataset, sourcePath, nil)
	if err != nil {
		return err
	}

	ctx := context.Background()
	userIDs, err := full.AllUserIDs(ctx)
	if err != nil {
		return err
	}

	type testCase struct {
		user  entity.UserID
		item  entity.ItemID
		score float64
	}
	var testCases []testCase
	held := make(map[entity.UserID]map[entity.ItemID]bool)

	for _, u := range userIDs {
		ratings, err := full.UserRatings(ctx, u)
		if err != nil {
			continue
		}
		items := make([]entity.ItemID, 0, len(ratings))
		for i := range ratings {
			items = append(items, i)
		}
		if len(items) < 2 {
			continue
		}

		nTest := int(math.Max(1, math.Round(evalTestRatio*float64(len(items)))))
		if nTest > len(items)-1 {
			nTest = len(items) - 1
		}
		rand.Shuffle(len(items), func(a, b int) { items[a], items[b] = items[b], items[a] })
		heldForUser := make(map[entity.ItemID]bool, nTest)
		for _, i := range items[:nTest] {
			testCases = append(testCases, testCase{user: u, item: i, score: ratings[i]})
			heldForUser[i] = true
		}
		held[u] = heldForUser
	}

	lo, hi := full.ScoreRange()
	train := csvstore.New(lo, hi, nil)
	for _, u := range userIDs {
		ratings, err := full.UserRatings(ctx, u)
		if err != nil {
			continue
		}
		for i, score := range ratings {
			if held[u][i] {
				continue
			}
			if err := train.InsertRating(ctx, u, i, score); err != nil {
				return err
			}
		}
	}

	eng := engine.New(train, cfg.Engine.MeanCache.MaxEntries, cfg.Engine.MeanCache.ShrinkKeepRatio, cfg.SimMatrix)

	var absSum, sqSum float64
	var n int

	for _, tc := range testCases {
		var pred float64
		var err error
		switch evalModel {
		case "user":
			pred, err = eng.UserBasedPredict(ctx, evalK, tc.user, tc.item, engine.NewUserMethod(engine.Pearson), nil)
		case "item":
			pred, err = eng.ItemBasedPredict(ctx, tc.user, tc.item, engine.SlopeOne, evalK)
		default:
			return fmt.Errorf("reco eval: unknown model %q", evalModel)
		}
		if err != nil {
			continue
		}
		pred = clamp(pred, lo, hi)

		diff := tc.score - pred
		absSum += math.Abs(diff)
		sqSum += diff * diff
		n++
	}

	if n == 0 {
		return fmt.Errorf("reco eval: no predictions could be made")
	}

	mae := absSum / float64(n)
	rmse := math.Sqrt(sqSum / float64(n))
	fmt.Printf("[MODEL=%s] eval=%d  MAE=%.4f  RMSE=%.4f\n", evalModel, n, mae, rmse)
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
