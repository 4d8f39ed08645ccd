// Package config loads roofarea settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/logging"
	"github.com/1F47E/roof-area/pkg/models"
	"github.com/1F47E/roof-area/pkg/postgis"
)

// DefaultPath is read when no --config flag is given
const DefaultPath = "config.yaml"

// Config structure for YAML configuration
type Config struct {
	Limits struct {
		MaxAreaKm2   float64 `yaml:"max_area_km2"`
		ChunkSizeKm2 float64 `yaml:"chunk_size_km2"`
	} `yaml:"limits"`
	Geometry struct {
		Antimeridian string `yaml:"antimeridian"`
	} `yaml:"geometry"`
	Summary struct {
		CapacityKWPerM2 float64 `yaml:"capacity_kw_per_m2"`
	} `yaml:"summary"`
	Region models.BoundingBox `yaml:"region"`
	Log    struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	PostGIS struct {
		Host              string `yaml:"host"`
		Port              int    `yaml:"port"`
		User              string `yaml:"user"`
		Password          string `yaml:"password"`
		Database          string `yaml:"database"`
		MaxConnections    int    `yaml:"max_connections"`
		ConnectionTimeout int    `yaml:"connection_timeout"` // seconds
	} `yaml:"postgis"`

	// Source is the file the settings came from, empty for built-in defaults
	Source string `yaml:"-"`
}

// DefaultRegion is the service area of the rooftop detector (mainland Portugal)
var DefaultRegion = models.BoundingBox{North: 42.15, South: 36.95, East: -6.18, West: -9.5}

// Default returns the built-in settings
func Default() *Config {
	cfg := &Config{}
	cfg.Limits.MaxAreaKm2 = 20
	cfg.Limits.ChunkSizeKm2 = geo.DefaultChunkSqKm
	cfg.Geometry.Antimeridian = geo.AntimeridianReject.String()
	cfg.Summary.CapacityKWPerM2 = geo.DefaultCapacityPerSqM
	cfg.Region = DefaultRegion
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.PostGIS.Host = "localhost"
	cfg.PostGIS.Port = 5432
	cfg.PostGIS.User = "postgres"
	cfg.PostGIS.Password = "postgres"
	cfg.PostGIS.Database = "geodb"
	cfg.PostGIS.MaxConnections = 25
	cfg.PostGIS.ConnectionTimeout = 5
	return cfg
}

// Load reads path, falling back to path+".example" and then to the
// defaults when neither file exists. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	source := path
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		source = path + ".example"
		data, err = os.ReadFile(source)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", source, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.Limits.MaxAreaKm2 <= 0 {
		errs = append(errs, fmt.Errorf("limits.max_area_km2 must be positive, got %g", c.Limits.MaxAreaKm2))
	}
	if c.Limits.ChunkSizeKm2 <= 0 {
		errs = append(errs, fmt.Errorf("limits.chunk_size_km2 must be positive, got %g", c.Limits.ChunkSizeKm2))
	}
	if _, err := geo.ParseAntimeridianPolicy(c.Geometry.Antimeridian); err != nil {
		errs = append(errs, fmt.Errorf("geometry.antimeridian: %w", err))
	}
	if c.Summary.CapacityKWPerM2 < 0 {
		errs = append(errs, fmt.Errorf("summary.capacity_kw_per_m2 must not be negative, got %g", c.Summary.CapacityKWPerM2))
	}
	if err := geo.ValidateBox(c.Region, geo.AntimeridianReject); err != nil {
		errs = append(errs, fmt.Errorf("region: %w", err))
	}
	if _, err := logging.New(c.Log.Level, c.Log.Format, io.Discard); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	if c.PostGIS.Port <= 0 || c.PostGIS.Port > 65535 {
		errs = append(errs, fmt.Errorf("postgis.port out of range: %d", c.PostGIS.Port))
	}

	return errors.Join(errs...)
}

// GeometryOptions returns the calculator options
func (c *Config) GeometryOptions() geo.Options {
	policy, _ := geo.ParseAntimeridianPolicy(c.Geometry.Antimeridian)
	return geo.Options{Antimeridian: policy}
}

// PostGISConfig returns the area oracle connection settings
func (c *Config) PostGISConfig() postgis.Config {
	return postgis.Config{
		Host:              c.PostGIS.Host,
		Port:              c.PostGIS.Port,
		User:              c.PostGIS.User,
		Password:          c.PostGIS.Password,
		Database:          c.PostGIS.Database,
		MaxConnections:    c.PostGIS.MaxConnections,
		ConnectionTimeout: time.Duration(c.PostGIS.ConnectionTimeout) * time.Second,
	}
}
