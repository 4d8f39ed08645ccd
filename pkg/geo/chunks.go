package geo

import (
	"fmt"
	"math"

	"github.com/1F47E/roof-area/pkg/models"
)

// DefaultChunkSqKm is the largest tile the detector is fed at once
const DefaultChunkSqKm = 1.0

// MaxChunks caps the number of tiles a single selection may be split into
const MaxChunks = 10000

// SplitIntoChunks tiles box into an n×n grid of equal sub-boxes so that
// each is roughly no larger than maxChunkSqKm. Chunks are ordered row by
// row starting in the south-west corner.
func (c Calculator) SplitIntoChunks(box models.BoundingBox, maxChunkSqKm float64) ([]models.BoundingBox, error) {
	if math.IsNaN(maxChunkSqKm) || maxChunkSqKm <= 0 {
		return nil, invalid(ErrInvalidArea, "chunk_size", maxChunkSqKm, "chunk size must be positive")
	}
	area, err := c.BoundingBoxAreaSqKm(box)
	if err != nil {
		return nil, err
	}
	if area <= maxChunkSqKm {
		return []models.BoundingBox{box}, nil
	}

	side := math.Ceil(math.Sqrt(area / maxChunkSqKm))
	if side*side > MaxChunks {
		return nil, invalid(ErrInvalidArea, "chunk_size", maxChunkSqKm,
			fmt.Sprintf("chunk size splits the selection into more than %d chunks", MaxChunks))
	}
	n := int(side)

	latStep := (box.North - box.South) / float64(n)
	lonStep := lonSpan(box) / float64(n)

	chunks := make([]models.BoundingBox, 0, n*n)
	for i := 0; i < n; i++ {
		south := box.South + float64(i)*latStep
		north := box.South + float64(i+1)*latStep
		if i == n-1 {
			north = box.North
		}
		for j := 0; j < n; j++ {
			west := wrapLon(box.West + float64(j)*lonStep)
			east := wrapLon(box.West + float64(j+1)*lonStep)
			if j == n-1 {
				east = box.East
			}
			chunks = append(chunks, models.BoundingBox{North: north, South: south, East: east, West: west})
		}
	}
	return chunks, nil
}

// wrapLon folds a longitude back into [-180, 180]
func wrapLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}

// SplitIntoChunks tiles box with the default options
func SplitIntoChunks(box models.BoundingBox, maxChunkSqKm float64) ([]models.BoundingBox, error) {
	return defaultCalculator.SplitIntoChunks(box, maxChunkSqKm)
}
