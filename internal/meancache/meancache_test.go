package meancache_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whiteleaf/reco/internal/entity"
	"github.com/whiteleaf/reco/internal/meancache"
)

func TestAddNewMeans_KeepsExistingAccessCount(t *testing.T) {
	t.Parallel()
	c := meancache.New(10, 0.5)
	c.AddNewMeans(map[entity.UserID]float64{"u1": 3.0})
	_, _ = c.GetMean("u1") // bump accesses

	c.AddNewMeans(map[entity.UserID]float64{"u1": 99.0}) // should not overwrite
	mean, ok := c.GetMean("u1")
	require.True(t, ok)
	require.InDelta(t, 3.0, mean, 1e-9)
}

func TestMaybeUpdateMeanFor_NoOpWhenAbsent(t *testing.T) {
	t.Parallel()
	c := meancache.New(10, 0.5)
	c.MaybeUpdateMeanFor("ghost", 5.0)
	require.False(t, c.HasMeanFor("ghost"))
}

func TestMaybeDeleteMeanFor_NoOpWhenAbsent(t *testing.T) {
	t.Parallel()
	c := meancache.New(10, 0.5)
	require.NotPanics(t, func() { c.MaybeDeleteMeanFor("ghost") })
}

// TestS4_ShrinkRetainsHighestAccessEntries mirrors scenario S4: fill the
// cache to M=100 with tau=0.5, access u1..u20 twice, and verify the
// shrink keeps every one of them plus exactly 30 of the other 80.
func TestS4_ShrinkRetainsHighestAccessEntries(t *testing.T) {
	t.Parallel()
	c := meancache.New(100, 0.5)

	hot := make(map[entity.UserID]float64, 20)
	for i := 0; i < 20; i++ {
		hot[entity.UserID(fmt.Sprintf("hot-%d", i))] = 4.0
	}
	c.AddNewMeans(hot)
	for u := range hot {
		_, _ = c.GetMean(u)
		_, _ = c.GetMean(u) // accessed twice
	}

	cold := make(map[entity.UserID]float64, 80)
	for i := 0; i < 80; i++ {
		cold[entity.UserID(fmt.Sprintf("cold-%d", i))] = 3.0
	}
	c.AddNewMeans(cold)

	require.Equal(t, 100, c.Len())
	c.ShrinkMeans()
	require.Equal(t, 50, c.Len())

	for u := range hot {
		require.True(t, c.HasMeanFor(u), "hot user %s should survive the shrink", u)
	}
}

func TestShrinkMeans_NoOpUnderCapacity(t *testing.T) {
	t.Parallel()
	c := meancache.New(100, 0.5)
	c.AddNewMeans(map[entity.UserID]float64{"u1": 1, "u2": 2})
	c.ShrinkMeans()
	require.Equal(t, 2, c.Len())
}

func TestCalculate_SkipsUsersMissingFromCache(t *testing.T) {
	t.Parallel()
	c := meancache.New(10, 0.5)
	c.AddNewMeans(map[entity.UserID]float64{"u1": 4.0})

	a := entity.ItemRaters{"u1": 5, "u2": 3} // u2 never cached, so it's skipped
	b := entity.ItemRaters{"u1": 3, "u2": 4}

	sim, ok := c.Calculate(a, b)
	require.True(t, ok)
	require.InDelta(t, -1.0, sim, 1e-9) // only u1 contributes: cov=-1, devA=devB=1
}
