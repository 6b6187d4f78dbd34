// Package meancache implements the per-user mean cache (spec name:
// "AdjCosine", because it also hosts the adjusted-cosine kernel that needs
// those means) that amortises expensive mean recomputation across tile
// builds. It is grounded directly on the Rust source's AdjCosine type: a
// map from user id to (mean, accesses), a soft maximum, a shrink-keep ratio,
// and shrink-by-access-frequency eviction with oldest-first tie-breaking.
package meancache

import (
	"math"
	"sort"

	"github.com/whiteleaf/reco/internal/entity"
)

type entry struct {
	mean     float64
	accesses uint32
	seq      uint64
}

// Cache is the mean cache described in §4.3. Its zero value is not usable;
// construct one with New.
type Cache struct {
	maxEntries      int
	shrinkKeepRatio float64

	means map[entity.UserID]*entry
	seq   uint64
}

// New builds a mean cache with the given soft maximum and shrink-keep ratio
// (0, 1].
func New(maxEntries int, shrinkKeepRatio float64) *Cache {
	return &Cache{
		maxEntries:      maxEntries,
		shrinkKeepRatio: shrinkKeepRatio,
		means:           make(map[entity.UserID]*entry),
	}
}

// HasMeanFor reports whether u is resident, without counting as an access.
func (c *Cache) HasMeanFor(u entity.UserID) bool {
	_, ok := c.means[u]
	return ok
}

// GetMean returns u's cached mean, incrementing its access counter on hit.
func (c *Cache) GetMean(u entity.UserID) (float64, bool) {
	e, ok := c.means[u]
	if !ok {
		return 0, false
	}
	e.accesses++
	return e.mean, true
}

// AddNewMeans inserts a batch of freshly computed means. Users already
// resident keep their existing accesses count untouched.
func (c *Cache) AddNewMeans(means map[entity.UserID]float64) {
	for u, mean := range means {
		if _, ok := c.means[u]; ok {
			continue
		}
		c.means[u] = &entry{mean: mean, seq: c.seq}
		c.seq++
	}
}

// ShrinkMeans evicts the lowest-access fraction of the cache once it has
// filled to maxEntries, keeping ceil(shrinkKeepRatio * maxEntries) entries.
// Ties in access count are broken by insertion order, oldest evicted first.
func (c *Cache) ShrinkMeans() {
	if len(c.means) < c.maxEntries {
		return
	}

	keep := int(float64(c.maxEntries)*c.shrinkKeepRatio + 0.999999999)
	if keep < 0 {
		keep = 0
	}
	if keep >= len(c.means) {
		return
	}

	type row struct {
		id entity.UserID
		e  *entry
	}
	rows := make([]row, 0, len(c.means))
	for id, e := range c.means {
		rows = append(rows, row{id: id, e: e})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].e.accesses != rows[j].e.accesses {
			return rows[i].e.accesses > rows[j].e.accesses
		}
		return rows[i].e.seq > rows[j].e.seq
	})

	kept := make(map[entity.UserID]*entry, keep)
	for i := 0; i < keep; i++ {
		kept[rows[i].id] = rows[i].e
	}
	c.means = kept
}

// MaybeUpdateMeanFor overwrites u's cached mean in place if, and only if, u
// is already resident. It never inserts a mean that was not previously
// cached.
func (c *Cache) MaybeUpdateMeanFor(u entity.UserID, newMean float64) {
	if e, ok := c.means[u]; ok {
		e.mean = newMean
	}
}

// MaybeDeleteMeanFor evicts u's cached mean if present; a miss is a no-op.
func (c *Cache) MaybeDeleteMeanFor(u entity.UserID) {
	delete(c.means, u)
}

// Len reports how many users currently have a cached mean.
func (c *Cache) Len() int {
	return len(c.means)
}

// Calculate is the AdjCosine kernel: adjusted-cosine similarity between two
// items' rater vectors, using only means already resident in the cache.
// A user missing from the cache is skipped rather than treated as an error;
// callers are expected to have populated the cache for every rater first.
func (c *Cache) Calculate(ratersA, ratersB entity.ItemRaters) (float64, bool) {
	var cov, devA, devB float64
	var n int
	for u, va := range ratersA {
		vb, ok := ratersB[u]
		if !ok {
			continue
		}
		mean, ok := c.GetMean(u)
		if !ok {
			continue
		}
		cov += (va - mean) * (vb - mean)
		devA += (va - mean) * (va - mean)
		devB += (vb - mean) * (vb - mean)
		n++
	}
	if n == 0 {
		return 0, false
	}
	den := math.Sqrt(devA) * math.Sqrt(devB)
	if den == 0 {
		return 0, false
	}
	v := cov / den
	return v, !math.IsNaN(v) && !math.IsInf(v, 0)
}
