package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/1F47E/roof-area/pkg/export"
	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
	"github.com/1F47E/roof-area/pkg/rtree"
)

// readResult decodes an analysis result from path, "-" meaning stdin
func readResult(cmd *cobra.Command, path string) (*models.AnalysisResult, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open result: %w", err)
		}
		defer f.Close()
		r = f
	}

	var result models.AnalysisResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}

func (a *app) classifyCmd() *cobra.Command {
	var (
		file           string
		backendBuckets bool
	)

	cmd := &cobra.Command{
		Use:   "classify [AREA...]",
		Short: "Histogram of rooftop areas in m²",
		RunE: func(cmd *cobra.Command, args []string) error {
			areas, err := parseFloats(args)
			if err != nil {
				return err
			}
			if file != "" {
				result, err := readResult(cmd, file)
				if err != nil {
					return err
				}
				for _, r := range result.Rooftops {
					if r == nil {
						continue
					}
					area, err := geo.RooftopArea(r)
					if err != nil {
						return fmt.Errorf("rooftop %s: %w", r.ID, err)
					}
					areas = append(areas, area)
				}
			}

			edges := geo.DefaultBucketEdges
			if backendBuckets {
				edges = geo.BackendBucketEdges
			}
			buckets, err := geo.ClassifyWithEdges(edges, areas)
			if err != nil {
				return err
			}

			a.out.Title(fmt.Sprintf("Area distribution (%d rooftops)", len(areas)))
			a.out.Block(a.out.Histogram(buckets))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Analysis result JSON (- for stdin)")
	cmd.Flags().BoolVar(&backendBuckets, "backend-buckets", false, "Use the ten 5 m² buckets of the analysis backend")
	return cmd
}

func (a *app) summarizeCmd() *cobra.Command {
	var (
		file        string
		within      string
		near        string
		k           int
		radius      float64
		geojsonPath string
		csvPath     string
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Statistics for an analysis result, optionally for a sub-selection",
		Long: `Reads an analysis result and prints area statistics, potential capacity and
the area histogram. --within keeps rooftops whose centroid lies in
NORTH,SOUTH,EAST,WEST; --near keeps the k rooftops closest to LAT,LON
(or all within --radius meters).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := readResult(cmd, file)
			if err != nil {
				return err
			}

			rooftops, err := a.selectRooftops(result.Rooftops, within, near, k, radius)
			if err != nil {
				return err
			}
			result.Rooftops = rooftops
			result.Count = len(rooftops)
			if result.TotalArea, err = geo.TotalArea(rooftops); err != nil {
				return err
			}

			stats, err := geo.Summarize(rooftops, a.cfg.Summary.CapacityKWPerM2)
			if err != nil {
				return err
			}
			result.Statistics = stats

			a.out.Title(fmt.Sprintf("%d rooftops", result.Count))
			if result.Count == 0 {
				a.out.Info("no rooftops matched the selection")
			}
			a.out.Stat("Total area", fmt.Sprintf("%.1f m²", result.TotalArea))
			a.out.Stat("Min / avg / max", fmt.Sprintf("%.1f / %.1f / %.1f m²", stats.MinArea, stats.AvgArea, stats.MaxArea))
			a.out.Stat("Potential capacity", fmt.Sprintf("%.1f kW", stats.PotentialCapacity))
			a.out.Block("")
			a.out.Block(a.out.Histogram(stats.AreaDistribution))

			if geojsonPath != "" {
				if err := writeFile(geojsonPath, func(w io.Writer) error {
					return export.GeoJSON(w, result, a.cfg.Summary.CapacityKWPerM2)
				}); err != nil {
					return err
				}
				a.out.Success("GeoJSON written to " + geojsonPath)
			}
			if csvPath != "" {
				if err := writeFile(csvPath, func(w io.Writer) error {
					return export.CSV(w, result, a.cfg.Summary.CapacityKWPerM2)
				}); err != nil {
					return err
				}
				a.out.Success("CSV written to " + csvPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Analysis result JSON (- for stdin)")
	cmd.Flags().StringVar(&within, "within", "", "Keep rooftops inside NORTH,SOUTH,EAST,WEST")
	cmd.Flags().StringVar(&near, "near", "", "Keep rooftops near LAT,LON")
	cmd.Flags().IntVarP(&k, "k", "k", 10, "Number of nearest rooftops for --near")
	cmd.Flags().Float64Var(&radius, "radius", 0, "Radius in meters for --near (overrides -k)")
	cmd.Flags().StringVar(&geojsonPath, "geojson", "", "Write the selection as GeoJSON")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the selection as CSV")
	return cmd
}

// selectRooftops narrows rooftops with the rooftop index
func (a *app) selectRooftops(rooftops []*models.Rooftop, within, near string, k int, radius float64) ([]*models.Rooftop, error) {
	if within == "" && near == "" {
		return rooftops, nil
	}

	index := rtree.NewRooftopIndex()
	if err := index.IndexRooftops(rooftops); err != nil {
		return nil, err
	}
	slog.Debug("rooftops indexed", "count", index.Count())

	if within != "" {
		box, err := parseBox(within)
		if err != nil {
			return nil, err
		}
		a.warnOutsideRegion(box)
		if rooftops, err = index.QueryBox(box); err != nil {
			return nil, err
		}
		if near == "" {
			return rooftops, nil
		}
		// narrow the --near search to the box selection
		index.Clear()
		if err := index.IndexRooftops(rooftops); err != nil {
			return nil, err
		}
	}

	center, err := parsePoint(near)
	if err != nil {
		return nil, err
	}
	if radius > 0 {
		return index.QueryRadius(center, radius)
	}
	return index.NearestNeighbors(center, k), nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
