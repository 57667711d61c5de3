// Package beam implements the pure top-k selection and beam-width policy
// shared by the triad executor and the query driver, per spec §4.6.
// Grounded on the teacher's internal/query/reducer.go small pure-function
// shape, restated as free functions since there is no result-type hierarchy
// to dispatch over here.
package beam

import (
	"sort"

	"github.com/arkivegraph/pathql/internal/pathmodel"
)

// DefaultK is the default final-hop beam width.
const DefaultK = 5

// DefaultExploreFactor multiplies DefaultK to get the default intermediate
// beam width.
const DefaultExploreFactor = 3

// MaxDepth is the configured maximum traversal depth every unbounded or
// over-large depth range is clamped to.
const MaxDepth = 4

// TopK returns the top-limit candidates ranked by descending score,
// breaking ties by shorter path length and then lexically by terminal
// identifier. The input slice is not mutated; the returned slice may share
// no backing array with it.
func TopK(candidates []pathmodel.CandidatePath, limit int) []pathmodel.CandidatePath {
	sorted := make([]pathmodel.CandidatePath, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if la, lb := a.EdgeCount(), b.EdgeCount(); la != lb {
			return la < lb
		}
		return a.Current < b.Current
	})

	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// WidthForHop selects the applicable beam width for hopIndex (0-based) out
// of totalHops hops: k on the final hop, kExplore on every intermediate
// hop.
func WidthForHop(hopIndex, totalHops, k, kExplore int) int {
	if hopIndex == totalHops-1 {
		return k
	}
	return kExplore
}

// ExploreWidth returns the default k_explore for a given k.
func ExploreWidth(k int) int {
	return DefaultExploreFactor * k
}

// ClampDepth clamps an unbounded or over-large upper depth bound to
// MaxDepth. A depth range whose lower bound then exceeds MaxDepth (e.g.
// {5,}) yields no results; callers detect that by comparing min to the
// clamped max themselves.
func ClampDepth(max int) int {
	if max > MaxDepth {
		return MaxDepth
	}
	return max
}
