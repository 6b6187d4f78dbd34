// Package metric implements the pairwise kernels the engine runs over rating
// vectors: general-purpose distances (Euclidean, Manhattan, Minkowski,
// Jaccard, cosine, Pearson) plus the two item-space kernels the chunked
// matrix is built around (adjusted cosine, slope-one).
//
// Every kernel returns (value, true) on success and ok == false when the
// result is undefined: empty key intersection, zero denominator, or a
// NaN/Inf result. JaccardIndex is the one exception on intersections: two
// non-empty vectors with disjoint keys give (0, true). Callers treat "undefined" as "no result", never as an
// error, matching the teacher's own guard-and-skip style in its
// cosine/pearson accumulator loops (see cmd/concurrent/*.go: entries with
// n2a == 0 or n2b == 0 are silently skipped before division).
package metric

import (
	"math"

	"github.com/whiteleaf/reco/internal/entity"
)

func undefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Euclidean returns the Euclidean distance between two rating vectors over
// their shared keys.
func Euclidean(a, b entity.Ratings) (float64, bool) {
	var sum float64
	var n int
	for k, va := range a {
		if vb, ok := b[k]; ok {
			d := va - vb
			sum += d * d
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	v := math.Sqrt(sum)
	return v, !undefined(v)
}

// Manhattan returns the Manhattan (L1) distance between two rating vectors
// over their shared keys.
func Manhattan(a, b entity.Ratings) (float64, bool) {
	var sum float64
	var n int
	for k, va := range a {
		if vb, ok := b[k]; ok {
			sum += math.Abs(va - vb)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum, !undefined(sum)
}

// Minkowski returns the order-p Minkowski distance between two rating
// vectors over their shared keys. p must be positive.
func Minkowski(a, b entity.Ratings, p float64) (float64, bool) {
	var sum float64
	var n int
	for k, va := range a {
		if vb, ok := b[k]; ok {
			sum += math.Pow(math.Abs(va-vb), p)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	v := math.Pow(sum, 1/p)
	return v, !undefined(v)
}

// JaccardIndex returns |A ∩ B| / |A ∪ B| over the two vectors' key sets,
// ignoring score values entirely (set membership only).
func JaccardIndex(a, b entity.Ratings) (float64, bool) {
	if len(a) == 0 && len(b) == 0 {
		return 0, false
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0, false
	}
	return float64(inter) / float64(union), true
}

// Cosine returns the cosine similarity between two rating vectors over
// their shared keys.
func Cosine(a, b entity.Ratings) (float64, bool) {
	var dot, na, nb float64
	var n int
	for k, va := range a {
		if vb, ok := b[k]; ok {
			dot += va * vb
			na += va * va
			nb += vb * vb
			n++
		}
	}
	if n == 0 || na == 0 || nb == 0 {
		return 0, false
	}
	v := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return v, !undefined(v)
}

// Pearson returns the Pearson correlation coefficient between two rating
// vectors over their shared keys, accumulated the way the teacher's
// item-based Pearson worker does (sumX, sumY, sumX2, sumY2, sumXY, n).
func Pearson(a, b entity.Ratings) (float64, bool) {
	var sumX, sumY, sumX2, sumY2, sumXY float64
	var n int
	for k, va := range a {
		if vb, ok := b[k]; ok {
			sumX += va
			sumY += vb
			sumX2 += va * va
			sumY2 += vb * vb
			sumXY += va * vb
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	fn := float64(n)
	num := sumXY - (sumX*sumY)/fn
	denX := sumX2 - (sumX*sumX)/fn
	denY := sumY2 - (sumY*sumY)/fn
	if denX <= 0 || denY <= 0 {
		return 0, false
	}
	v := num / (math.Sqrt(denX) * math.Sqrt(denY))
	return v, !undefined(v)
}

// AdjustedCosine computes the adjusted-cosine similarity between items a and
// b given a per-user mean map and each item's raters. It is the slow-path
// (mean-map-every-time) form; the chunked matrix and the mean cache use the
// cached-mean fast path in package meancache instead.
func AdjustedCosine(means map[entity.UserID]float64, ratersA, ratersB entity.ItemRaters) (float64, bool) {
	var cov, devA, devB float64
	var n int
	for u, va := range ratersA {
		vb, ok := ratersB[u]
		if !ok {
			continue
		}
		mean, ok := means[u]
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
	return v, !undefined(v)
}

// SlopeOne returns the average per-user deviation R[u][a] - R[u][b] over
// users who rated both a and b, along with the number of users it was
// computed over. The count is meaningful even when ok is false only in the
// degenerate zero-common-users case, where it is always 0.
func SlopeOne(ratersA, ratersB entity.ItemRaters) (dev float64, count int, ok bool) {
	var sum float64
	var n int
	for u, va := range ratersA {
		vb, present := ratersB[u]
		if !present {
			continue
		}
		sum += va - vb
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	dev = sum / float64(n)
	return dev, n, !undefined(dev)
}
