package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// GeoPoint represents a geographic location with latitude and longitude in degrees
type GeoPoint struct {
	Lat float64
	Lon float64
}

// MarshalJSON encodes the point as a [lat, lng] pair, the form the analysis backend uses
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lon})
}

// UnmarshalJSON accepts either a [lat, lng] pair or an object with lat and lng/lon keys
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("point must have 2 coordinates, got %d", len(pair))
		}
		p.Lat, p.Lon = pair[0], pair[1]
		return nil
	}

	var obj struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
		Lon *float64 `json:"lon"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Lat == nil {
		return fmt.Errorf("point is missing lat")
	}
	p.Lat = *obj.Lat
	switch {
	case obj.Lng != nil:
		p.Lon = *obj.Lng
	case obj.Lon != nil:
		p.Lon = *obj.Lon
	default:
		return fmt.Errorf("point is missing lng")
	}
	return nil
}

// BoundingBox represents an axis-aligned selection by its four edges
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func (b BoundingBox) SouthWest() GeoPoint { return GeoPoint{Lat: b.South, Lon: b.West} }
func (b BoundingBox) NorthEast() GeoPoint { return GeoPoint{Lat: b.North, Lon: b.East} }

// Center returns the midpoint of the box in degree space
func (b BoundingBox) Center() GeoPoint {
	return GeoPoint{Lat: (b.North + b.South) / 2, Lon: (b.East + b.West) / 2}
}

// Polygon is an open ring: the first point is not repeated at the end
type Polygon struct {
	Points []GeoPoint `json:"points"`
}

// ClosedRing returns the ring with its first point appended, as GeoJSON expects
func (p Polygon) ClosedRing() []GeoPoint {
	if len(p.Points) == 0 {
		return nil
	}
	ring := make([]GeoPoint, 0, len(p.Points)+1)
	ring = append(ring, p.Points...)
	return append(ring, p.Points[0])
}

// AreaBucket is one bar of the rooftop size histogram
type AreaBucket struct {
	Label string  `json:"range"`
	Min   float64 `json:"-"`
	Max   float64 `json:"-"` // +Inf for the open last bucket
	Count int     `json:"count"`
}

// Contains reports whether area falls in [Min, Max)
func (b AreaBucket) Contains(area float64) bool {
	return area >= b.Min && (area < b.Max || math.IsInf(b.Max, 1))
}

// Rooftop is one detected rooftop as returned by the analysis backend
type Rooftop struct {
	ID          string     `json:"id"`
	Coordinates []GeoPoint `json:"coordinates"`
	Area        float64    `json:"area"`       // m²
	Confidence  float64    `json:"confidence"` // 0..1
	Centroid    GeoPoint   `json:"centroid"`
}

// Polygon converts the backend ring into an open Polygon, dropping a closing duplicate
func (r *Rooftop) Polygon() Polygon {
	pts := r.Coordinates
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	out := make([]GeoPoint, len(pts))
	copy(out, pts)
	return Polygon{Points: out}
}

// Statistics summarizes the rooftops of one analysis
type Statistics struct {
	MinArea           float64      `json:"min_area"`
	MaxArea           float64      `json:"max_area"`
	AvgArea           float64      `json:"avg_area"`
	PotentialCapacity float64      `json:"potential_capacity"` // kW
	AreaDistribution  []AreaBucket `json:"area_distribution"`
}

// AnalysisResult is the response body of the area analysis endpoint
type AnalysisResult struct {
	Rooftops          []*Rooftop  `json:"rooftops"`
	TotalArea         float64     `json:"total_area"`
	Count             int         `json:"count"`
	Bounds            BoundingBox `json:"bounds"`
	MaxAreaConstraint float64     `json:"max_area_constraint"`
	Statistics        Statistics  `json:"statistics"`
}
