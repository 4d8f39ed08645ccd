// Package export writes analysis results in formats GIS tools can open.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
)

var csvHeader = []string{"id", "area_m2", "confidence", "centroid_lat", "centroid_lng", "potential_capacity_kw"}

// FeatureCollection converts result into GeoJSON features. Rooftops with
// a footprint become Polygons, centroid-only rooftops become Points.
func FeatureCollection(result *models.AnalysisResult, capacityPerSqM float64) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	if result == nil {
		return fc, nil
	}

	for _, r := range result.Rooftops {
		if r == nil {
			continue
		}

		area, err := geo.RooftopArea(r)
		if err != nil {
			return nil, fmt.Errorf("rooftop %s: %w", r.ID, err)
		}

		var g orb.Geometry
		if len(r.Coordinates) > 0 {
			poly := r.Polygon()
			if err := geo.ValidatePolygon(poly); err != nil {
				return nil, fmt.Errorf("rooftop %s: %w", r.ID, err)
			}
			g = geo.ToOrbPolygon(poly)
		} else {
			g = orb.Point{r.Centroid.Lon, r.Centroid.Lat}
		}

		f := geojson.NewFeature(g)
		f.ID = r.ID
		f.Properties["id"] = r.ID
		f.Properties["area"] = area
		f.Properties["confidence"] = r.Confidence
		f.Properties["potential_capacity_kw"] = area * capacityPerSqM
		fc.Append(f)
	}

	return fc, nil
}

// GeoJSON writes result as a FeatureCollection
func GeoJSON(w io.Writer, result *models.AnalysisResult, capacityPerSqM float64) error {
	fc, err := FeatureCollection(result, capacityPerSqM)
	if err != nil {
		return err
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode feature collection: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write geojson: %w", err)
	}
	return nil
}

// CSV writes one row per rooftop
func CSV(w io.Writer, result *models.AnalysisResult, capacityPerSqM float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	if result != nil {
		for _, r := range result.Rooftops {
			if r == nil {
				continue
			}

			area, err := geo.RooftopArea(r)
			if err != nil {
				return fmt.Errorf("rooftop %s: %w", r.ID, err)
			}

			centroid := r.Centroid
			if centroid == (models.GeoPoint{}) && len(r.Coordinates) > 0 {
				if centroid, err = geo.PolygonCentroid(r.Polygon()); err != nil {
					return fmt.Errorf("rooftop %s: %w", r.ID, err)
				}
			}

			row := []string{
				r.ID,
				formatFloat(area),
				formatFloat(r.Confidence),
				formatFloat(centroid.Lat),
				formatFloat(centroid.Lon),
				formatFloat(area * capacityPerSqM),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write row for %s: %w", r.ID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
