package anomaly

import (
	"math"
	"math/rand"
	"testing"
)

// clusterWithOutlier builds a tight cluster around the origin plus one point
// far outside it.
func clusterWithOutlier(n int) [][]float64 {
	rng := rand.New(rand.NewSource(7))
	matrix := make([][]float64, 0, n+1)
	for i := 0; i < n; i++ {
		matrix = append(matrix, []float64{
			rng.NormFloat64() * 0.1,
			rng.NormFloat64() * 0.1,
			rng.NormFloat64() * 0.1,
		})
	}
	matrix = append(matrix, []float64{8, 8, 8})
	return matrix
}

func TestForestScoresOutlierHigher(t *testing.T) {
	matrix := clusterWithOutlier(50)
	forest := newIsolationForest(DefaultContamination, DefaultSeed)
	if err := forest.fit(matrix); err != nil {
		t.Fatalf("fit: %v", err)
	}

	inlier := forest.score(matrix[0])
	outlier := forest.score(matrix[len(matrix)-1])
	if outlier <= inlier {
		t.Fatalf("expected outlier score above inlier: outlier=%f inlier=%f", outlier, inlier)
	}
	if !forest.anomalous(matrix[len(matrix)-1]) {
		t.Fatalf("expected outlier to be classified anomalous (score=%f threshold=%f)", outlier, forest.threshold)
	}
}

func TestForestScoresWithinUnitInterval(t *testing.T) {
	matrix := clusterWithOutlier(30)
	forest := newIsolationForest(DefaultContamination, DefaultSeed)
	if err := forest.fit(matrix); err != nil {
		t.Fatalf("fit: %v", err)
	}

	for i, row := range matrix {
		score := forest.score(row)
		if score <= 0 || score > 1 || math.IsNaN(score) {
			t.Fatalf("row %d: score %f outside (0,1]", i, score)
		}
	}
}

func TestForestIsDeterministicForSeed(t *testing.T) {
	matrix := clusterWithOutlier(40)

	a := newIsolationForest(DefaultContamination, DefaultSeed)
	b := newIsolationForest(DefaultContamination, DefaultSeed)
	if err := a.fit(matrix); err != nil {
		t.Fatalf("fit a: %v", err)
	}
	if err := b.fit(matrix); err != nil {
		t.Fatalf("fit b: %v", err)
	}

	for i, row := range matrix {
		if sa, sb := a.score(row), b.score(row); sa != sb {
			t.Fatalf("row %d: scores diverged for identical seed: %f vs %f", i, sa, sb)
		}
	}
}

func TestForestDegenerateWindowIsNotAnomalous(t *testing.T) {
	matrix := make([][]float64, 20)
	for i := range matrix {
		matrix[i] = []float64{1, 1, 1}
	}

	forest := newIsolationForest(DefaultContamination, DefaultSeed)
	if err := forest.fit(matrix); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if forest.anomalous(matrix[0]) {
		t.Fatal("identical points must not be classified anomalous")
	}
}

func TestForestRejectsEmptyMatrix(t *testing.T) {
	forest := newIsolationForest(DefaultContamination, DefaultSeed)
	if err := forest.fit(nil); err == nil {
		t.Fatal("expected error for empty training matrix")
	}
}

func TestExpectedPathLength(t *testing.T) {
	if got := expectedPathLength(1); got != 0 {
		t.Fatalf("c(1) should be 0, got %f", got)
	}
	// c(256) is roughly 10.2 for the standard formulation.
	if got := expectedPathLength(256); got < 9 || got > 11 {
		t.Fatalf("c(256) outside expected range: %f", got)
	}
}
