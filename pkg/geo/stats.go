package geo

import (
	"fmt"
	"math"

	"github.com/1F47E/roof-area/pkg/models"
)

// DefaultCapacityPerSqM is the rough PV yield of a rooftop: 150 W per m²
const DefaultCapacityPerSqM = 0.15

// RooftopArea returns the reported area of r, or its footprint area when
// the backend left it empty.
func RooftopArea(r *models.Rooftop) (float64, error) {
	if r.Area != 0 {
		if math.IsNaN(r.Area) || r.Area < 0 {
			return 0, invalid(ErrInvalidArea, "area", r.Area, "rooftop area must be non-negative")
		}
		return r.Area, nil
	}
	if len(r.Coordinates) == 0 {
		return 0, nil
	}
	return PolygonAreaSqM(r.Polygon())
}

// Summarize builds min/max/avg area, potential capacity (kW) and the
// dashboard histogram for a set of rooftops.
func Summarize(rooftops []*models.Rooftop, capacityPerSqM float64) (models.Statistics, error) {
	areas := make([]float64, 0, len(rooftops))
	for i, r := range rooftops {
		if r == nil {
			continue
		}
		a, err := RooftopArea(r)
		if err != nil {
			return models.Statistics{}, fmt.Errorf("rooftop %d (%s): %w", i, r.ID, err)
		}
		areas = append(areas, a)
	}

	dist, err := ClassifyAreaDistribution(areas)
	if err != nil {
		return models.Statistics{}, err
	}
	if len(areas) == 0 {
		return models.Statistics{AreaDistribution: dist}, nil
	}

	stats := models.Statistics{
		MinArea:          areas[0],
		MaxArea:          areas[0],
		AreaDistribution: dist,
	}
	var total float64
	for _, a := range areas {
		total += a
		stats.MinArea = math.Min(stats.MinArea, a)
		stats.MaxArea = math.Max(stats.MaxArea, a)
	}
	stats.AvgArea = total / float64(len(areas))
	stats.PotentialCapacity = total * capacityPerSqM
	return stats, nil
}

// TotalArea sums the rooftop areas in m²
func TotalArea(rooftops []*models.Rooftop) (float64, error) {
	var total float64
	for _, r := range rooftops {
		if r == nil {
			continue
		}
		a, err := RooftopArea(r)
		if err != nil {
			return 0, err
		}
		total += a
	}
	return total, nil
}
