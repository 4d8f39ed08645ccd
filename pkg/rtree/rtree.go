// Package rtree indexes detected rooftops in a partitioned R-Tree so a
// front-end can answer sub-selection, radius and nearest-rooftop queries
// over an analysis result.
package rtree

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
)

const (
	tolerance   = 1e-7 // degrees, minimum rect side for point-like footprints
	minChildren = 25
	maxChildren = 50
	dimensions  = 2

	metersPerDegree = geo.EarthRadius * math.Pi / 180
)

// spatialRooftop wraps a rooftop to implement rtreego.Spatial
type spatialRooftop struct {
	*models.Rooftop
	centroid models.GeoPoint
	rect     *rtreego.Rect
}

func (sr *spatialRooftop) Bounds() *rtreego.Rect {
	return sr.rect
}

// RooftopIndex is a thread-safe R-Tree over rooftop footprints
type RooftopIndex struct {
	// one tree per longitude band, searched in parallel
	partitions []*rtreego.Rtree
	numParts   int
	mu         sync.RWMutex
	itemCount  atomic.Int64

	partitionBounds []models.BoundingBox
}

// NewRooftopIndex creates an index with one partition per CPU
func NewRooftopIndex() *RooftopIndex {
	return NewRooftopIndexWithPartitions(runtime.NumCPU())
}

// NewRooftopIndexWithPartitions creates an index with the given number of longitude bands
func NewRooftopIndexWithPartitions(numPartitions int) *RooftopIndex {
	if numPartitions <= 0 {
		numPartitions = runtime.NumCPU()
	}

	partitions := make([]*rtreego.Rtree, numPartitions)
	partitionBounds := make([]models.BoundingBox, numPartitions)

	lonRange := 360.0 / float64(numPartitions)
	for i := 0; i < numPartitions; i++ {
		partitions[i] = rtreego.NewTree(dimensions, minChildren, maxChildren)

		west := -180.0 + float64(i)*lonRange
		east := west + lonRange
		if i == numPartitions-1 {
			east = 180.0
		}
		partitionBounds[i] = models.BoundingBox{North: 90, South: -90, West: west, East: east}
	}

	return &RooftopIndex{
		partitions:      partitions,
		numParts:        numPartitions,
		partitionBounds: partitionBounds,
	}
}

// IndexRooftops adds rooftops to the index. Rooftops with neither a ring
// nor a centroid are skipped; a malformed ring is an error.
func (g *RooftopIndex) IndexRooftops(rooftops []*models.Rooftop) error {
	if len(rooftops) == 0 {
		return nil
	}

	partitioned := make([][]*spatialRooftop, g.numParts)
	lonRange := 360.0 / float64(g.numParts)

	for _, r := range rooftops {
		if r == nil {
			continue
		}
		item, ok, err := newSpatialRooftop(r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		idx := int((item.centroid.Lon + 180.0) / lonRange)
		if idx >= g.numParts {
			idx = g.numParts - 1
		}
		if idx < 0 {
			idx = 0
		}
		partitioned[idx] = append(partitioned[idx], item)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var wg sync.WaitGroup
	var inserted atomic.Int64

	for i := 0; i < g.numParts; i++ {
		if len(partitioned[i]) == 0 {
			continue
		}

		wg.Add(1)
		go func(idx int, items []*spatialRooftop) {
			defer wg.Done()
			for _, item := range items {
				g.partitions[idx].Insert(item)
			}
			inserted.Add(int64(len(items)))
		}(i, partitioned[i])
	}

	wg.Wait()
	g.itemCount.Add(inserted.Load())
	return nil
}

func newSpatialRooftop(r *models.Rooftop) (*spatialRooftop, bool, error) {
	if len(r.Coordinates) == 0 {
		if r.Centroid == (models.GeoPoint{}) {
			return nil, false, nil
		}
		if err := geo.ValidatePoint(r.Centroid); err != nil {
			return nil, false, err
		}
		p := rtreego.Point{r.Centroid.Lat, r.Centroid.Lon}
		return &spatialRooftop{Rooftop: r, centroid: r.Centroid, rect: p.ToRect(tolerance)}, true, nil
	}

	poly := r.Polygon()
	box, err := geo.PolygonBounds(poly)
	if err != nil {
		return nil, false, err
	}

	centroid := r.Centroid
	if centroid == (models.GeoPoint{}) {
		if centroid, err = geo.PolygonCentroid(poly); err != nil {
			return nil, false, err
		}
	} else if err := geo.ValidatePoint(centroid); err != nil {
		return nil, false, err
	}
	// queries filter on the centroid, so the rect must cover it
	box.South = math.Min(box.South, centroid.Lat)
	box.North = math.Max(box.North, centroid.Lat)
	box.West = math.Min(box.West, centroid.Lon)
	box.East = math.Max(box.East, centroid.Lon)

	rect, err := rtreego.NewRect(
		rtreego.Point{box.South, box.West},
		[]float64{
			math.Max(box.North-box.South, tolerance),
			math.Max(box.East-box.West, tolerance),
		},
	)
	if err != nil {
		return nil, false, err
	}
	return &spatialRooftop{Rooftop: r, centroid: centroid, rect: rect}, true, nil
}

// QueryBox returns the rooftops whose centroid lies inside box, edges
// included, ordered by ID
func (g *RooftopIndex) QueryBox(box models.BoundingBox) ([]*models.Rooftop, error) {
	if err := geo.ValidateBox(box, geo.AntimeridianReject); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	bounds, err := searchRect(box)
	if err != nil {
		return nil, err
	}

	return g.searchPartitions(g.relevantPartitions(box), bounds, func(item *spatialRooftop) bool {
		return geo.ContainsPoint(box, item.centroid)
	}), nil
}

// QueryRadius returns the rooftops whose centroid is within radiusMeters of
// center, ordered by ID. The search wraps across the antimeridian.
func (g *RooftopIndex) QueryRadius(center models.GeoPoint, radiusMeters float64) ([]*models.Rooftop, error) {
	if err := geo.ValidatePoint(center); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	latDelta := radiusMeters / metersPerDegree
	lonDelta := 360.0
	if cosLat := math.Cos(center.Lat * math.Pi / 180); cosLat > 1e-9 {
		lonDelta = math.Min(latDelta/cosLat, 360.0)
	}

	queryBox := models.BoundingBox{
		North: math.Min(center.Lat+latDelta, 90),
		South: math.Max(center.Lat-latDelta, -90),
		West:  center.Lon - lonDelta,
		East:  center.Lon + lonDelta,
	}

	keep := func(item *spatialRooftop) bool {
		d, err := geo.HaversineDistance(center, item.centroid)
		return err == nil && d <= radiusMeters
	}

	var all []*models.Rooftop
	for _, box := range splitAtAntimeridian(queryBox) {
		bounds, err := searchRect(box)
		if err != nil {
			return nil, err
		}
		all = append(all, g.searchPartitions(g.relevantPartitions(box), bounds, keep)...)
	}
	sortByID(all)
	return all, nil
}

// splitAtAntimeridian folds a box whose edges run past ±180 into at most
// two boxes within [-180, 180]
func splitAtAntimeridian(box models.BoundingBox) []models.BoundingBox {
	switch {
	case box.East-box.West >= 360:
		box.West, box.East = -180, 180
		return []models.BoundingBox{box}
	case box.West < -180:
		east := box
		east.West, east.East = box.West+360, 180
		box.West = -180
		return []models.BoundingBox{box, east}
	case box.East > 180:
		west := box
		west.West, west.East = -180, box.East-360
		box.East = 180
		return []models.BoundingBox{box, west}
	}
	return []models.BoundingBox{box}
}

// NearestNeighbors returns the n rooftops whose centroids are closest to center
func (g *RooftopIndex) NearestNeighbors(center models.GeoPoint, n int) []*models.Rooftop {
	if n <= 0 || geo.ValidatePoint(center) != nil {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	type nearestResult struct {
		rooftop  *models.Rooftop
		distance float64
	}

	resultsChan := make(chan []nearestResult, g.numParts)

	for i := 0; i < g.numParts; i++ {
		go func(idx int) {
			queryPoint := rtreego.Point{center.Lat, center.Lon}
			// over-fetch: rtreego ranks by degree-space distance to the footprint rect
			results := g.partitions[idx].NearestNeighbors(n*2, queryPoint)

			nearest := make([]nearestResult, 0, len(results))
			for _, result := range results {
				item, ok := result.(*spatialRooftop)
				if !ok || item == nil {
					continue
				}
				d, err := geo.HaversineDistance(center, item.centroid)
				if err != nil {
					continue
				}
				nearest = append(nearest, nearestResult{rooftop: item.Rooftop, distance: d})
			}
			resultsChan <- nearest
		}(i)
	}

	var all []nearestResult
	for i := 0; i < g.numParts; i++ {
		all = append(all, <-resultsChan...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].distance < all[j].distance })

	if len(all) > n {
		all = all[:n]
	}
	rooftops := make([]*models.Rooftop, len(all))
	for i, r := range all {
		rooftops[i] = r.rooftop
	}
	return rooftops
}

// Count returns the number of indexed rooftops
func (g *RooftopIndex) Count() int64 {
	return g.itemCount.Load()
}

// Clear removes all rooftops from the index
func (g *RooftopIndex) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < g.numParts; i++ {
		g.partitions[i] = rtreego.NewTree(dimensions, minChildren, maxChildren)
	}
	g.itemCount.Store(0)
}

// searchPartitions runs an intersect search on each partition in its own
// goroutine and keeps the items accepted by keep.
func (g *RooftopIndex) searchPartitions(parts []int, bounds *rtreego.Rect, keep func(*spatialRooftop) bool) []*models.Rooftop {
	resultsChan := make(chan []*models.Rooftop, len(parts))

	for _, partitionIdx := range parts {
		go func(idx int) {
			results := g.partitions[idx].SearchIntersect(bounds)

			rooftops := make([]*models.Rooftop, 0, len(results))
			for _, result := range results {
				item, ok := result.(*spatialRooftop)
				if !ok || item == nil || item.Rooftop == nil {
					continue
				}
				if keep(item) {
					rooftops = append(rooftops, item.Rooftop)
				}
			}
			resultsChan <- rooftops
		}(partitionIdx)
	}

	var all []*models.Rooftop
	for i := 0; i < len(parts); i++ {
		all = append(all, <-resultsChan...)
	}
	sortByID(all)
	return all
}

// sortByID orders results independently of partition completion order
func sortByID(rooftops []*models.Rooftop) {
	sort.SliceStable(rooftops, func(i, j int) bool { return rooftops[i].ID < rooftops[j].ID })
}

// relevantPartitions returns the partitions whose longitude band overlaps box
func (g *RooftopIndex) relevantPartitions(box models.BoundingBox) []int {
	var relevant []int
	for i, bounds := range g.partitionBounds {
		if box.West <= bounds.East && box.East >= bounds.West {
			relevant = append(relevant, i)
		}
	}
	return relevant
}

func searchRect(box models.BoundingBox) (*rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{box.South, box.West},
		[]float64{
			math.Max(box.North-box.South, tolerance),
			math.Max(box.East-box.West, tolerance),
		},
	)
}
