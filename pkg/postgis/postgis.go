// Package postgis checks the calculator's bounding-box approximation
// against PostGIS geography areas.
package postgis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lib/pq"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
)

// ErrPostGISUnavailable is returned when the server lacks the postgis extension
var ErrPostGISUnavailable = errors.New("postgis extension is not installed")

// Config holds the connection settings
type Config struct {
	Host              string
	Port              int
	User              string
	Password          string
	Database          string
	MaxConnections    int
	ConnectionTimeout time.Duration
}

// DSN renders cfg as a lib/pq key/value connection string
func (c Config) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Database)
	if c.ConnectionTimeout > 0 {
		dsn += fmt.Sprintf(" connect_timeout=%d", int(math.Ceil(c.ConnectionTimeout.Seconds())))
	}
	return dsn
}

// AreaOracle computes reference areas on a PostGIS server
type AreaOracle struct {
	db *sql.DB
}

// NewAreaOracle opens a connection pool for cfg and pings it
func NewAreaOracle(ctx context.Context, cfg Config) (*AreaOracle, error) {
	o, err := NewAreaOracleFromDSN(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.MaxConnections > 0 {
		o.db.SetMaxOpenConns(cfg.MaxConnections)
		o.db.SetMaxIdleConns(cfg.MaxConnections)
	}
	return o, nil
}

// NewAreaOracleFromDSN is NewAreaOracle for a ready-made connection string
func NewAreaOracleFromDSN(ctx context.Context, dsn string) (*AreaOracle, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &AreaOracle{db: db}, nil
}

// BoundingBoxAreaSqKm returns the geodesic area of box in km²
func (o *AreaOracle) BoundingBoxAreaSqKm(ctx context.Context, box models.BoundingBox) (float64, error) {
	if err := geo.ValidateBox(box, geo.AntimeridianReject); err != nil {
		return 0, err
	}

	var area float64
	err := o.db.QueryRowContext(ctx,
		`SELECT ST_Area(ST_MakeEnvelope($1, $2, $3, $4, 4326)::geography) / 1e6`,
		box.West, box.South, box.East, box.North,
	).Scan(&area)
	if err != nil {
		return 0, fmt.Errorf("failed to query envelope area: %w", classify(err))
	}
	return area, nil
}

// PolygonAreaSqM returns the geodesic area of poly in m²
func (o *AreaOracle) PolygonAreaSqM(ctx context.Context, poly models.Polygon) (float64, error) {
	if err := geo.ValidatePolygon(poly); err != nil {
		return 0, err
	}

	var area float64
	err := o.db.QueryRowContext(ctx,
		`SELECT ST_Area(ST_GeomFromText($1, 4326)::geography)`,
		wkt.MarshalString(geo.ToOrbPolygon(poly)),
	).Scan(&area)
	if err != nil {
		return 0, fmt.Errorf("failed to query polygon area: %w", classify(err))
	}
	return area, nil
}

// Comparison pairs the calculator's approximation with the PostGIS area
type Comparison struct {
	Box           models.BoundingBox
	ApproxSqKm    float64
	ReferenceSqKm float64
	RelativeError float64 // |approx - reference| / reference
	Elapsed       time.Duration
}

// Compare computes box's area both ways
func (o *AreaOracle) Compare(ctx context.Context, calc geo.Calculator, box models.BoundingBox) (Comparison, error) {
	approx, err := calc.BoundingBoxAreaSqKm(box)
	if err != nil {
		return Comparison{}, err
	}

	start := time.Now()
	ref, err := o.BoundingBoxAreaSqKm(ctx, box)
	if err != nil {
		return Comparison{}, err
	}

	cmp := Comparison{
		Box:           box,
		ApproxSqKm:    approx,
		ReferenceSqKm: ref,
		Elapsed:       time.Since(start),
	}
	if ref > 0 {
		cmp.RelativeError = math.Abs(approx-ref) / ref
	}
	return cmp, nil
}

// Close closes the database connection
func (o *AreaOracle) Close() error {
	return o.db.Close()
}

// classify maps a missing-function error to ErrPostGISUnavailable
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "undefined_function" {
		return fmt.Errorf("%w: %s", ErrPostGISUnavailable, pqErr.Message)
	}
	return err
}
