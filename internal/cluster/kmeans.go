package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// Error reports input a clustering run cannot work with.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return "clustering: " + e.Reason }

// KMeans partitions points into K clusters with Lloyd's algorithm. Seed
// drives every random choice, so equal inputs and equal seeds give equal
// results.
type KMeans struct {
	K       int
	MaxIter int
	Seed    int64
}

// Result is the outcome of one clustering run over standardized features.
// The JSON shape carries only the centers and inertia; labels travel on the
// table instead.
type Result struct {
	Centers      [][]float64 `json:"cluster_centers"`
	Inertia      float64     `json:"inertia"`
	FeatureNames []string    `json:"-"`
	Labels       []int       `json:"-"`
	Iterations   int         `json:"-"`
}

// Fit clusters the rows of X. It always returns exactly K centers; a center
// that loses all its points keeps its previous position.
func (m *KMeans) Fit(X [][]float64) (*Result, error) {
	k := m.K
	if k <= 0 {
		return nil, &Error{Reason: fmt.Sprintf("cluster count must be positive, got %d", k)}
	}
	n := len(X)
	if n == 0 {
		return nil, &Error{Reason: "no rows to cluster"}
	}
	if n < k {
		return nil, &Error{Reason: fmt.Sprintf("%d rows cannot fill %d clusters", n, k)}
	}
	p := len(X[0])
	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}

	rng := rand.New(rand.NewSource(m.Seed))
	centers := initCenters(rng, X, k)

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	iters := 0
	for it := 0; it < maxIter; it++ {
		iters = it + 1
		changed := false
		for i, x := range X {
			best := nearest(x, centers)
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, p)
		}
		for i, x := range X {
			c := assign[i]
			counts[c]++
			for j, v := range x {
				sums[c][j] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for j := 0; j < p; j++ {
				centers[c][j] = sums[c][j] / float64(counts[c])
			}
		}
		if !changed {
			break
		}
	}

	// One more assignment against the final centers keeps labels and inertia
	// consistent with the centers the caller sees.
	labels := make([]int, n)
	inertia := 0.0
	for i, x := range X {
		c := nearest(x, centers)
		labels[i] = c
		inertia += sqDist(x, centers[c])
	}
	return &Result{Centers: centers, Inertia: inertia, Labels: labels, Iterations: iters}, nil
}

// nearest picks the centroid with the smallest squared distance. Ties keep
// the lower index.
func nearest(x []float64, centers [][]float64) int {
	best, bestD := 0, sqDist(x, centers[0])
	for c := 1; c < len(centers); c++ {
		if d := sqDist(x, centers[c]); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var d float64
	for j := range a {
		dx := a[j] - b[j]
		d += dx * dx
	}
	return d
}

// initCenters seeds k centers with distance-weighted sampling: the first
// center is a random point, each further one is drawn proportionally to its
// squared distance from the centers chosen so far.
func initCenters(rng *rand.Rand, X [][]float64, k int) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), X[rng.Intn(len(X))]...))
	for len(centers) < k {
		distSq := make([]float64, len(X))
		total := 0.0
		for i, x := range X {
			minD := math.MaxFloat64
			for _, c := range centers {
				if d := sqDist(x, c); d < minD {
					minD = d
				}
			}
			distSq[i] = minD
			total += minD
		}
		next := 0
		if total > 0 {
			r := rng.Float64() * total
			cum := 0.0
			for i, d := range distSq {
				cum += d
				if cum >= r {
					next = i
					break
				}
			}
		} else {
			// every point coincides with a chosen center
			next = rng.Intn(len(X))
		}
		centers = append(centers, append([]float64(nil), X[next]...))
	}
	return centers
}

// Features pulls the numeric feature matrix out of a table.
func Features(t *dataset.Table) ([]string, [][]float64, error) {
	names, rows := t.NumericMatrix()
	if len(names) == 0 {
		return nil, nil, &Error{Reason: "no numeric feature columns"}
	}
	return names, rows, nil
}

// Run standardizes the numeric features of a table, clusters them, and
// attaches the resulting labels to the table.
func Run(t *dataset.Table, k, maxIter int, seed int64) (*Result, error) {
	names, rows, err := Features(t)
	if err != nil {
		return nil, err
	}
	scaled := (&Scaler{}).FitTransform(rows)
	km := KMeans{K: k, MaxIter: maxIter, Seed: seed}
	res, err := km.Fit(scaled)
	if err != nil {
		return nil, err
	}
	res.FeatureNames = names
	t.Labels = res.Labels
	return res, nil
}
