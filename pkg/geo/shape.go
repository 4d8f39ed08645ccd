package geo

import (
	"fmt"
	"math"

	"github.com/1F47E/roof-area/pkg/models"
)

// Shape is anything a user can draw on a map that reduces to a bounding box
type Shape interface {
	Bounds() (models.BoundingBox, error)
}

// Rectangle is a drawn rectangle; its bounds are the box itself
type Rectangle struct {
	Box models.BoundingBox
}

func (r Rectangle) Bounds() (models.BoundingBox, error) {
	return r.Box, nil
}

// PolygonShape is a free-hand polygon; its bounds are its extent
type PolygonShape struct {
	Polygon models.Polygon
}

func (p PolygonShape) Bounds() (models.BoundingBox, error) {
	return PolygonBounds(p.Polygon)
}

// PolygonBounds returns the degree-space extent of a valid polygon
func PolygonBounds(poly models.Polygon) (models.BoundingBox, error) {
	if err := ValidatePolygon(poly); err != nil {
		return models.BoundingBox{}, err
	}
	box := models.BoundingBox{
		North: math.Inf(-1), South: math.Inf(1),
		East: math.Inf(-1), West: math.Inf(1),
	}
	for _, p := range poly.Points {
		box.North = math.Max(box.North, p.Lat)
		box.South = math.Min(box.South, p.Lat)
		box.East = math.Max(box.East, p.Lon)
		box.West = math.Min(box.West, p.Lon)
	}
	return box, nil
}

// Admission is the outcome of the size gate for one selection
type Admission struct {
	Bounds      models.BoundingBox
	AreaSqKm    float64
	MaxAreaSqKm float64
	Exceeded    bool
}

// Message is the text shown to the user when the selection is rejected
func (a Admission) Message() string {
	if !a.Exceeded {
		return ""
	}
	return fmt.Sprintf("Selected area (%.2f km²) exceeds the maximum allowed (%g km²).", a.AreaSqKm, a.MaxAreaSqKm)
}

// ShapeAreaSqKm approximates the area of any shape from its bounds
func (c Calculator) ShapeAreaSqKm(s Shape) (float64, error) {
	box, err := s.Bounds()
	if err != nil {
		return 0, err
	}
	return c.BoundingBoxAreaSqKm(box)
}

// Admit computes the shape's area and checks it against the ceiling
func (c Calculator) Admit(s Shape, maxAreaSqKm float64) (Admission, error) {
	if math.IsNaN(maxAreaSqKm) || maxAreaSqKm < 0 {
		return Admission{}, invalid(ErrInvalidArea, "max_area", maxAreaSqKm, "limit must be a non-negative number")
	}
	box, err := s.Bounds()
	if err != nil {
		return Admission{}, err
	}
	area, err := c.BoundingBoxAreaSqKm(box)
	if err != nil {
		return Admission{}, err
	}
	return Admission{
		Bounds:      box,
		AreaSqKm:    area,
		MaxAreaSqKm: maxAreaSqKm,
		Exceeded:    AreaExceedsLimit(area, maxAreaSqKm),
	}, nil
}

// Contains reports whether inner lies entirely within outer. Neither box may cross the antimeridian.
func Contains(outer, inner models.BoundingBox) bool {
	return ContainsPoint(outer, inner.SouthWest()) && ContainsPoint(outer, inner.NorthEast())
}

// ContainsPoint reports whether p lies in box, edges included
func ContainsPoint(box models.BoundingBox, p models.GeoPoint) bool {
	return p.Lat >= box.South && p.Lat <= box.North &&
		p.Lon >= box.West && p.Lon <= box.East
}

// Admit runs the size gate with the default options
func Admit(s Shape, maxAreaSqKm float64) (Admission, error) {
	return defaultCalculator.Admit(s, maxAreaSqKm)
}
