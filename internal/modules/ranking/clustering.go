package ranking

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	maxClusters     = 3
	minClusterInput = 3
	maxKMeansRounds = 100
)

// Cluster groups companies by their standardized value profile (EVA%,
// EFV%, upside%) using k-means with k = min(3, n). Companies missing any
// of the three metrics are left out of the grouping. Fewer than three
// usable companies yield an insufficient-data result instead of a
// meaningless fit.
func (s *Service) Cluster(companies []CompanyMetrics) ClusterResult {
	tickers := make([]string, 0, len(companies))
	features := make([][]float64, 0, len(companies))

	for _, m := range companies {
		eva, ok1 := m.EVAPct.Float()
		efv, ok2 := m.EFVPct.Float()
		up, ok3 := m.UpsidePct.Float()
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		tickers = append(tickers, m.Ticker)
		features = append(features, []float64{eva, efv, up})
	}

	if len(features) < minClusterInput {
		s.log.Debug().Int("usable", len(features)).Msg("Not enough companies to cluster")
		return ClusterResult{InsufficientData: true}
	}

	standardize(features)

	k := maxClusters
	if len(features) < k {
		k = len(features)
	}

	assignments, centroids := kMeans(features, k)

	result := ClusterResult{
		K:           k,
		Assignments: make(map[string]int, len(tickers)),
		Centroids:   centroids,
	}
	for i, ticker := range tickers {
		result.Assignments[ticker] = assignments[i]
	}
	return result
}

// standardize converts each feature column to zero mean and unit variance
// in place. A zero-variance column is left centered only.
func standardize(features [][]float64) {
	if len(features) == 0 {
		return
	}
	dims := len(features[0])
	column := make([]float64, len(features))

	for d := 0; d < dims; d++ {
		for i := range features {
			column[i] = features[i][d]
		}
		mean, std := stat.MeanStdDev(column, nil)
		for i := range features {
			features[i][d] -= mean
			if std > 0 {
				features[i][d] /= std
			}
		}
	}
}

// kMeans runs Lloyd's algorithm. Centroids are seeded with deterministic
// farthest-point initialization so assignments are reproducible across
// runs and spread-out groups each get a seed.
func kMeans(features [][]float64, k int) ([]int, [][]float64) {
	centroids := initialCentroids(features, k)

	assignments := make([]int, len(features))
	for round := 0; round < maxKMeansRounds; round++ {
		changed := false

		// Assignment step
		for i, point := range features {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := floats.Distance(point, centroid, 2); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed && round > 0 {
			break
		}

		// Update step
		counts := make([]int, k)
		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, len(features[0]))
		}
		for i, point := range features {
			c := assignments[i]
			counts[c]++
			floats.Add(next[c], point)
		}
		for c := range next {
			if counts[c] == 0 {
				// Empty cluster keeps its previous centroid
				copy(next[c], centroids[c])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
		}
		centroids = next
	}

	return assignments, centroids
}

// initialCentroids seeds k centroids: the first data point, then
// repeatedly the point farthest from all centroids chosen so far.
func initialCentroids(features [][]float64, k int) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), features[0]...))

	for len(centroids) < k {
		farthest, farthestDist := 0, -1.0
		for i, point := range features {
			nearest := math.Inf(1)
			for _, centroid := range centroids {
				if d := floats.Distance(point, centroid, 2); d < nearest {
					nearest = d
				}
			}
			if nearest > farthestDist {
				farthest, farthestDist = i, nearest
			}
		}
		centroids = append(centroids, append([]float64(nil), features[farthest]...))
	}
	return centroids
}
