package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/whiteleaf/reco/internal/config"
	"github.com/whiteleaf/reco/internal/engine"
	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/parser"
	"github.com/whiteleaf/reco/internal/shelllog"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive REPL over a loaded dataset",
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	log := shelllog.New(true)
	cfg := config.Load(vip)

	store, err := openDataset(dataset, sourcePath, log.Entry())
	if err != nil {
		return err
	}

	eng := engine.New(store, cfg.Engine.MeanCache.MaxEntries, cfg.Engine.MeanCache.ShrinkKeepRatio, cfg.SimMatrix)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("reco> ready. type 'q' to quit.")
	for {
		fmt.Print("reco> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		st, err := parser.Parse(line)
		if err != nil {
			log.Error("%v", err)
			continue
		}
		if st.Kind == parser.KindQuit {
			break
		}

		if err := dispatch(ctx, eng, store, st); err != nil {
			log.Error("%v", err)
		}
	}
	return nil
}

func dispatch(ctx context.Context, eng *engine.Engine, store interface {
	InsertRating(ctx context.Context, user entity.UserID, item entity.ItemID, score float64) error
	UpdateRating(ctx context.Context, user entity.UserID, item entity.ItemID, score float64) error
	RemoveRating(ctx context.Context, user entity.UserID, item entity.ItemID) error
	UsersMeans(ctx context.Context, users []entity.UserID) (map[entity.UserID]float64, error)
}, st parser.Statement) error {
	switch st.Kind {
	case parser.KindUserDistance:
		method, err := userMethod(st)
		if err != nil {
			return err
		}
		d, err := eng.UserDistance(ctx, entity.UserID(st.UserA), entity.UserID(st.UserB), method)
		if err != nil {
			return err
		}
		fmt.Printf("distance = %.6f\n", d)
		return nil

	case parser.KindItemDistance:
		method, err := itemMethod(st.Method)
		if err != nil {
			return err
		}
		d, err := eng.ItemDistance(ctx, entity.ItemID(st.ItemA), entity.ItemID(st.ItemB), method)
		if err != nil {
			return err
		}
		fmt.Printf("distance = %.6f\n", d)
		return nil

	case parser.KindUserKNN:
		method, err := userMethod(st)
		if err != nil {
			return err
		}
		neighbors, err := eng.UserKNN(ctx, st.K, entity.UserID(st.UserA), method, st.ChunkOpt)
		if err != nil {
			return err
		}
		for _, n := range neighbors {
			fmt.Printf("%s\t%.6f\n", n.User, n.Distance)
		}
		return nil

	case parser.KindUserBasedPredict:
		method, err := userMethod(st)
		if err != nil {
			return err
		}
		pred, err := eng.UserBasedPredict(ctx, st.K, entity.UserID(st.UserA), entity.ItemID(st.ItemA), method, st.ChunkOpt)
		if err != nil {
			return err
		}
		fmt.Printf("predicted = %.6f\n", pred)
		return nil

	case parser.KindItemBasedPredict:
		method, err := itemMethod(st.Method)
		if err != nil {
			return err
		}
		pred, err := eng.ItemBasedPredict(ctx, entity.UserID(st.UserA), entity.ItemID(st.ItemA), method, st.K)
		if err != nil {
			return err
		}
		fmt.Printf("predicted = %.6f\n", pred)
		return nil

	case parser.KindEnterMatrix:
		method, err := itemMethod(st.Method)
		if err != nil {
			return err
		}
		if err := eng.EnterMatrix(ctx, st.M, st.N, method); err != nil {
			return err
		}
		fmt.Println("matrix entered at (0,0)")
		return nil

	case parser.KindMatrixMoveTo:
		if err := eng.MatrixMoveTo(ctx, st.M, st.N); err != nil {
			return err
		}
		fmt.Printf("moved to (%d,%d)\n", st.M, st.N)
		return nil

	case parser.KindMatrixGet:
		v, ok := eng.MatrixGet(entity.ItemID(st.ItemA), entity.ItemID(st.ItemB))
		if !ok {
			fmt.Println("undefined")
			return nil
		}
		fmt.Printf("%.6f\n", v)
		return nil

	case parser.KindInsertRating:
		u, i := entity.UserID(st.UserA), entity.ItemID(st.ItemA)
		if err := store.InsertRating(ctx, u, i, st.Score); err != nil {
			return err
		}
		notifyMeanUpdated(ctx, eng, store, u)
		fmt.Println("ok")
		return nil

	case parser.KindUpdateRating:
		u, i := entity.UserID(st.UserA), entity.ItemID(st.ItemA)
		if err := store.UpdateRating(ctx, u, i, st.Score); err != nil {
			return err
		}
		notifyMeanUpdated(ctx, eng, store, u)
		fmt.Println("ok")
		return nil

	case parser.KindRemoveRating:
		u, i := entity.UserID(st.UserA), entity.ItemID(st.ItemA)
		if err := store.RemoveRating(ctx, u, i); err != nil {
			return err
		}
		notifyMeanUpdated(ctx, eng, store, u)
		fmt.Println("ok")
		return nil

	default:
		return fmt.Errorf("reco: unhandled statement kind %d", st.Kind)
	}
}

// notifyMeanUpdated recomputes u's mean from the store's current state and
// pushes it into the engine's cache, satisfying §6's Insert/Update/RemoveRating
// notify contract. A user left with no ratings has nothing to recompute and
// is dropped from the cache instead.
func notifyMeanUpdated(ctx context.Context, eng *engine.Engine, store interface {
	UsersMeans(ctx context.Context, users []entity.UserID) (map[entity.UserID]float64, error)
}, u entity.UserID) {
	means, err := store.UsersMeans(ctx, []entity.UserID{u})
	if err != nil {
		return
	}
	mean, ok := means[u]
	if !ok {
		eng.MaybeDeleteMeanFor(u)
		return
	}
	eng.MaybeUpdateMeanFor(u, mean)
}
