package anomaly

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const (
	defaultTreeCount     = 100
	defaultSubsampleCap  = 256
	eulerMascheroni      = 0.5772156649
	// DefaultContamination is the prior fraction of training points assumed
	// anomalous when deriving the decision threshold.
	DefaultContamination = 0.1
	// DefaultSeed keeps tree construction reproducible across refits.
	DefaultSeed = 42
)

// isolationForest is a bagged ensemble of randomized isolation trees fitted
// from scratch on each training window. Scores follow the path-length
// convention s in (0,1], higher meaning more isolated (more anomalous).
type isolationForest struct {
	treeCount     int
	subsampleCap  int
	contamination float64
	rng           *rand.Rand

	roots     []*forestNode
	depthCap  int
	pathNorm  float64 // c(subsample size), normalizes observed path lengths
	threshold float64 // contamination-derived decision boundary
}

type forestNode struct {
	feature int     // split feature index
	split   float64 // split value
	left    *forestNode
	right   *forestNode
	size    int // samples that reached this leaf
}

func newIsolationForest(contamination float64, seed int64) *isolationForest {
	if contamination <= 0 || contamination >= 1 {
		contamination = DefaultContamination
	}
	return &isolationForest{
		treeCount:     defaultTreeCount,
		subsampleCap:  defaultSubsampleCap,
		contamination: contamination,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// fit builds the ensemble over the training matrix and derives the decision
// threshold so that roughly the contamination fraction of training points
// scores above it.
func (f *isolationForest) fit(matrix [][]float64) error {
	n := len(matrix)
	if n == 0 {
		return fmt.Errorf("empty training matrix")
	}
	features := len(matrix[0])
	if features == 0 {
		return fmt.Errorf("training matrix has no features")
	}

	subsample := f.subsampleCap
	if subsample > n {
		subsample = n
	}
	f.depthCap = int(math.Ceil(math.Log2(float64(subsample))))
	f.pathNorm = expectedPathLength(float64(subsample))

	f.roots = make([]*forestNode, f.treeCount)
	for i := range f.roots {
		indices := f.rng.Perm(n)[:subsample]
		sample := make([][]float64, subsample)
		for j, idx := range indices {
			sample[j] = matrix[idx]
		}
		f.roots[i] = f.grow(sample, features, 0)
	}

	scores := make([]float64, n)
	for i, row := range matrix {
		scores[i] = f.score(row)
	}
	f.threshold = quantile(scores, 1-f.contamination)
	return nil
}

func (f *isolationForest) grow(sample [][]float64, features, depth int) *forestNode {
	n := len(sample)
	if depth >= f.depthCap || n <= 1 {
		return &forestNode{size: n}
	}

	idx := f.rng.Intn(features)
	lo, hi := sample[0][idx], sample[0][idx]
	for _, row := range sample[1:] {
		if row[idx] < lo {
			lo = row[idx]
		}
		if row[idx] > hi {
			hi = row[idx]
		}
	}
	if lo == hi {
		return &forestNode{size: n}
	}

	split := lo + f.rng.Float64()*(hi-lo)
	var left, right [][]float64
	for _, row := range sample {
		if row[idx] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &forestNode{
		feature: idx,
		split:   split,
		left:    f.grow(left, features, depth+1),
		right:   f.grow(right, features, depth+1),
	}
}

// score returns the ensemble anomaly score 2^(-E[h(x)]/c(n)) for one point.
func (f *isolationForest) score(point []float64) float64 {
	total := 0.0
	for _, root := range f.roots {
		total += walk(root, point, 0)
	}
	mean := total / float64(len(f.roots))
	return math.Pow(2, -mean/f.pathNorm)
}

// anomalous reports whether the point scores strictly above the fitted
// threshold. Strict comparison keeps fully degenerate windows, where every
// training point lands on the threshold, classified as normal.
func (f *isolationForest) anomalous(point []float64) bool {
	return f.score(point) > f.threshold
}

func walk(n *forestNode, point []float64, depth int) float64 {
	if n.left == nil && n.right == nil {
		return float64(depth) + expectedPathLength(float64(n.size))
	}
	if point[n.feature] < n.split {
		return walk(n.left, point, depth+1)
	}
	return walk(n.right, point, depth+1)
}

// expectedPathLength is c(n), the average path length of an unsuccessful BST
// search over n points: 2*H(n-1) - 2*(n-1)/n.
func expectedPathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(n-1)+eulerMascheroni) - 2*(n-1)/n
}

func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)-1) * q)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
