package main

import (
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1F47E/roof-area/pkg/config"
	"github.com/1F47E/roof-area/pkg/render"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "Config file path")
		lat        = flag.Float64("lat", 0, "Initial center latitude (default: center of the configured region)")
		lon        = flag.Float64("lon", 0, "Initial center longitude (default: center of the configured region)")
		span       = flag.Float64("span", 0.02, "Initial box size in degrees")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	center := cfg.Region.Center()
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			center.Lat = *lat
		case "lon":
			center.Lon = *lon
		}
	})

	m := newModel(
		center,
		clampSpan(*span),
		cfg.Limits.MaxAreaKm2,
		cfg.GeometryOptions().Antimeridian,
		render.ColorEnabled(os.Stdout),
	)

	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
