package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1F47E/roof-area/pkg/config"
	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/logging"
	"github.com/1F47E/roof-area/pkg/models"
	"github.com/1F47E/roof-area/pkg/render"
)

// errRejected is returned when a selection fails the area gate, so the exit code reflects it
var errRejected = errors.New("selection rejected")

type app struct {
	configPath string
	verbose    bool

	cfg  *config.Config
	calc geo.Calculator
	out  *render.Printer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "roofarea",
		Short: "Selection area and rooftop statistics for solar analysis",
		Long: `Computes great-circle distances and bounding-box areas for map selections,
enforces the maximum analysis area and summarizes detected rooftops.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		a.distanceCmd(),
		a.areaCmd(),
		a.classifyCmd(),
		a.summarizeCmd(),
		a.chunksCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	if err := logging.Setup(level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
		return err
	}
	if cfg.Source != "" {
		slog.Debug("config loaded", "path", cfg.Source)
	}

	a.cfg = cfg
	a.calc = geo.NewCalculator(cfg.GeometryOptions())
	a.out = render.NewPrinter(cmd.OutOrStdout())
	return nil
}

func (a *app) distanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance LAT1 LON1 LAT2 LON2",
		Short: "Great-circle distance between two points",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := parseFloats(args)
			if err != nil {
				return err
			}
			p1 := models.GeoPoint{Lat: vals[0], Lon: vals[1]}
			p2 := models.GeoPoint{Lat: vals[2], Lon: vals[3]}

			d, err := geo.HaversineDistance(p1, p2)
			if err != nil {
				return err
			}

			a.out.Stat("Distance", fmt.Sprintf("%.1f m (%.3f km)", d, d/1000))
			return nil
		},
	}
}

// boxFlags binds --north/--south/--east/--west onto box
func boxFlags(cmd *cobra.Command, box *models.BoundingBox) {
	cmd.Flags().Float64Var(&box.North, "north", 0, "North edge latitude")
	cmd.Flags().Float64Var(&box.South, "south", 0, "South edge latitude")
	cmd.Flags().Float64Var(&box.East, "east", 0, "East edge longitude")
	cmd.Flags().Float64Var(&box.West, "west", 0, "West edge longitude")
}

// requireBox fails unless all four edges were given
func requireBox(cmd *cobra.Command) error {
	var missing []string
	for _, name := range []string{"north", "south", "east", "west"} {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing box edges: %s", strings.Join(missing, ", "))
	}
	return nil
}

// warnOutsideRegion logs selections that leave the configured service area
func (a *app) warnOutsideRegion(box models.BoundingBox) {
	if box.West > box.East {
		slog.Warn("selection crosses the antimeridian, region check skipped")
		return
	}
	if !geo.Contains(a.cfg.Region, box) {
		slog.Warn("selection extends outside the service region",
			"region", fmt.Sprintf("%+v", a.cfg.Region))
	}
}

func parseFloats(args []string) ([]float64, error) {
	vals := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", s, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// parseBox reads "NORTH,SOUTH,EAST,WEST"
func parseBox(s string) (models.BoundingBox, error) {
	vals, err := parseFloats(strings.Split(s, ","))
	if err != nil {
		return models.BoundingBox{}, err
	}
	if len(vals) != 4 {
		return models.BoundingBox{}, fmt.Errorf("box needs 4 values NORTH,SOUTH,EAST,WEST, got %d", len(vals))
	}
	return models.BoundingBox{North: vals[0], South: vals[1], East: vals[2], West: vals[3]}, nil
}

// parsePoint reads "LAT,LON"
func parsePoint(s string) (models.GeoPoint, error) {
	vals, err := parseFloats(strings.Split(s, ","))
	if err != nil {
		return models.GeoPoint{}, err
	}
	if len(vals) != 2 {
		return models.GeoPoint{}, fmt.Errorf("point needs 2 values LAT,LON, got %d", len(vals))
	}
	return models.GeoPoint{Lat: vals[0], Lon: vals[1]}, nil
}

// parsePolygon reads "LAT,LON;LAT,LON;..." as an open ring
func parsePolygon(s string) (models.Polygon, error) {
	var poly models.Polygon
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := parsePoint(part)
		if err != nil {
			return models.Polygon{}, err
		}
		poly.Points = append(poly.Points, p)
	}
	if n := len(poly.Points); n > 1 && poly.Points[0] == poly.Points[n-1] {
		poly.Points = poly.Points[:n-1]
	}
	return poly, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errRejected) {
			render.NewPrinter(os.Stderr).Error(err.Error())
		}
		os.Exit(1)
	}
}
