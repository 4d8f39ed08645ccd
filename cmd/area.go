package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
	"github.com/1F47E/roof-area/pkg/postgis"
)

func (a *app) areaCmd() *cobra.Command {
	var (
		box           models.BoundingBox
		polygon       string
		maxArea       float64
		verifyPostGIS bool
	)

	cmd := &cobra.Command{
		Use:   "area",
		Short: "Area of a selection and the maximum-area check",
		Long: `Approximates the area of a rectangle (--north/--south/--east/--west) or of a
polygon's bounds (--polygon "LAT,LON;LAT,LON;...") and checks it against the
configured maximum. Exits non-zero when the limit is exceeded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var shape geo.Shape
			var poly models.Polygon
			if polygon != "" {
				var err error
				if poly, err = parsePolygon(polygon); err != nil {
					return err
				}
				shape = geo.PolygonShape{Polygon: poly}
			} else {
				if err := requireBox(cmd); err != nil {
					return err
				}
				shape = geo.Rectangle{Box: box}
			}

			if !cmd.Flags().Changed("max-area") {
				maxArea = a.cfg.Limits.MaxAreaKm2
			}

			adm, err := a.calc.Admit(shape, maxArea)
			if err != nil {
				return err
			}
			a.warnOutsideRegion(adm.Bounds)

			a.out.Title("Selection")
			a.out.Stat("Bounds", fmt.Sprintf("N %.5f  S %.5f  E %.5f  W %.5f",
				adm.Bounds.North, adm.Bounds.South, adm.Bounds.East, adm.Bounds.West))
			if len(poly.Points) > 0 {
				precise, err := geo.PolygonAreaSqM(poly)
				if err != nil {
					return err
				}
				a.out.Stat("Polygon area", fmt.Sprintf("%.4f km²", precise/1e6))
			}
			a.out.Block(a.out.Admission(adm))

			if verifyPostGIS {
				if err := a.verify(cmd.Context(), adm.Bounds); err != nil {
					return err
				}
			}

			if adm.Exceeded {
				slog.Warn("area limit exceeded", "area_km2", adm.AreaSqKm, "max_km2", adm.MaxAreaSqKm)
				return errRejected
			}
			slog.Debug("selection admitted", "area_km2", adm.AreaSqKm, "max_km2", adm.MaxAreaSqKm)
			return nil
		},
	}

	boxFlags(cmd, &box)
	cmd.Flags().StringVar(&polygon, "polygon", "", "Polygon vertices as LAT,LON;LAT,LON;...")
	cmd.Flags().Float64Var(&maxArea, "max-area", 20, "Maximum area in km² (default from config)")
	cmd.Flags().BoolVar(&verifyPostGIS, "verify-postgis", false, "Compare against PostGIS geography area")
	return cmd
}

// verify compares the approximation with the PostGIS area of box
func (a *app) verify(ctx context.Context, box models.BoundingBox) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	oracle, err := postgis.NewAreaOracle(ctx, a.cfg.PostGISConfig())
	if err != nil {
		return fmt.Errorf("postgis: %w", err)
	}
	defer oracle.Close()

	cmp, err := oracle.Compare(ctx, a.calc, box)
	if err != nil {
		return fmt.Errorf("postgis: %w", err)
	}

	a.out.Subtitle("PostGIS check")
	a.out.Stat("Approximation", fmt.Sprintf("%.4f km²", cmp.ApproxSqKm))
	a.out.Stat("PostGIS", fmt.Sprintf("%.4f km²", cmp.ReferenceSqKm))
	a.out.Stat("Relative error", fmt.Sprintf("%.3f%%", cmp.RelativeError*100))
	a.out.Stat("Query time", cmp.Elapsed)

	slog.Info("postgis comparison",
		"approx_km2", cmp.ApproxSqKm,
		"reference_km2", cmp.ReferenceSqKm,
		"relative_error", cmp.RelativeError,
	)
	return nil
}

func (a *app) chunksCmd() *cobra.Command {
	var (
		box       models.BoundingBox
		chunkSize float64
	)

	cmd := &cobra.Command{
		Use:   "chunks",
		Short: "Split a selection into detector-sized tiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBox(cmd); err != nil {
				return err
			}
			if !cmd.Flags().Changed("chunk-size") {
				chunkSize = a.cfg.Limits.ChunkSizeKm2
			}

			chunks, err := a.calc.SplitIntoChunks(box, chunkSize)
			if err != nil {
				return err
			}
			slog.Debug("selection split", "chunks", len(chunks), "chunk_size_km2", chunkSize)

			a.out.Title(fmt.Sprintf("%d chunks", len(chunks)))
			for i, c := range chunks {
				area, err := a.calc.BoundingBoxAreaSqKm(c)
				if err != nil {
					return err
				}
				a.out.Stat(fmt.Sprintf("#%d", i+1), fmt.Sprintf("N %.5f  S %.5f  E %.5f  W %.5f  (%.3f km²)",
					c.North, c.South, c.East, c.West, area))
			}
			return nil
		},
	}

	boxFlags(cmd, &box)
	cmd.Flags().Float64Var(&chunkSize, "chunk-size", geo.DefaultChunkSqKm, "Maximum chunk area in km² (default from config)")
	return cmd
}
