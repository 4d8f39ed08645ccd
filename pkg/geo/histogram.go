package geo

import (
	"fmt"
	"math"

	"github.com/1F47E/roof-area/pkg/models"
)

// DefaultBucketEdges are the lower bounds of the dashboard histogram:
// [0,5) [5,10) [10,15) [15,20) [20,∞)
var DefaultBucketEdges = []float64{0, 5, 10, 15, 20}

// BackendBucketEdges are the lower bounds of the finer histogram the
// analysis backend reports, ten buckets with the last open above 45 m².
var BackendBucketEdges = []float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45}

// ClassifyAreaDistribution counts rooftop areas (m²) into the dashboard buckets
func ClassifyAreaDistribution(areas []float64) ([]models.AreaBucket, error) {
	return ClassifyWithEdges(DefaultBucketEdges, areas)
}

// ClassifyWithEdges counts areas into half-open buckets whose lower bounds
// are edges; the last bucket has no upper bound. Every bucket is returned,
// in edge order, even when empty.
func ClassifyWithEdges(edges []float64, areas []float64) ([]models.AreaBucket, error) {
	buckets, err := NewBuckets(edges)
	if err != nil {
		return nil, err
	}

	for i, area := range areas {
		if math.IsNaN(area) || area < edges[0] {
			return nil, invalid(ErrInvalidArea, fmt.Sprintf("areas[%d]", i), area,
				fmt.Sprintf("area must be a number >= %g", edges[0]))
		}
		for j := range buckets {
			if buckets[j].Contains(area) {
				buckets[j].Count++
				break
			}
		}
	}

	return buckets, nil
}

// NewBuckets builds empty labeled buckets from strictly increasing lower bounds
func NewBuckets(edges []float64) ([]models.AreaBucket, error) {
	if len(edges) == 0 {
		return nil, ErrInvalidBucketEdges
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return nil, fmt.Errorf("%w: edges must be strictly increasing at %d", ErrInvalidBucketEdges, i)
		}
	}

	buckets := make([]models.AreaBucket, len(edges))
	last := len(edges) - 1
	for i, lo := range edges {
		b := models.AreaBucket{Min: lo, Max: math.Inf(1)}
		if i < last {
			b.Max = edges[i+1]
			b.Label = fmt.Sprintf("%g-%g m²", lo, b.Max)
		} else {
			b.Label = fmt.Sprintf(">%g m²", lo)
		}
		buckets[i] = b
	}
	return buckets, nil
}
