package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
	"github.com/1F47E/roof-area/pkg/render"
	"github.com/1F47E/roof-area/pkg/rtree"
)

type BenchmarkResult struct {
	QueryType     string
	TotalQueries  int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	QueriesPerSec float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	TotalResults  int64
	AvgResults    float64
	Errors        int64
}

// bounds is the area random rooftops and queries are drawn from
type bounds struct {
	minLat, maxLat, minLon, maxLon float64
}

func (b bounds) point(r *rand.Rand) models.GeoPoint {
	return models.GeoPoint{
		Lat: b.minLat + r.Float64()*(b.maxLat-b.minLat),
		Lon: b.minLon + r.Float64()*(b.maxLon-b.minLon),
	}
}

func main() {
	var (
		queryType  = flag.String("t", "mixed", "Query type: area, distance, box, radius, nearest, mixed")
		numRoofs   = flag.Int("rooftops", 100000, "Number of synthetic rooftops to index")
		numQueries = flag.Int("n", 1000, "Number of queries to run")
		workers    = flag.Int("w", runtime.NumCPU(), "Number of concurrent workers")
		// Geographic bounds for rooftops and queries (default: mainland Portugal)
		minLat = flag.Float64("min-lat", 36.95, "Minimum latitude")
		maxLat = flag.Float64("max-lat", 42.15, "Maximum latitude")
		minLon = flag.Float64("min-lon", -9.5, "Minimum longitude")
		maxLon = flag.Float64("max-lon", -6.18, "Maximum longitude")
		// Query-specific parameters
		boxSize = flag.Float64("box-size", 0.02, "Box size in degrees (for area and box queries)")
		maxArea = flag.Float64("max-area", 20, "Area limit in km² (for area queries)")
		radius  = flag.Float64("radius", 500, "Radius in meters (for radius queries)")
		k       = flag.Int("k", 10, "Number of nearest neighbors")
	)
	flag.Parse()

	if *workers < 1 {
		*workers = 1
	}
	b := bounds{*minLat, *maxLat, *minLon, *maxLon}
	out := render.NewPrinter(os.Stdout)

	var index *rtree.RooftopIndex
	if *queryType != "area" && *queryType != "distance" {
		log.Printf("Indexing %d rooftops...\n", *numRoofs)
		start := time.Now()
		index = rtree.NewRooftopIndex()
		if err := index.IndexRooftops(generateRooftops(*numRoofs, b)); err != nil {
			log.Fatalf("Failed to index rooftops: %v", err)
		}
		log.Printf("Indexed %d rooftops in %v\n", index.Count(), time.Since(start))
	}

	queries := map[string]query{
		"area":     areaQuery(b, *boxSize, *maxArea),
		"distance": distanceQuery(b),
		"box":      boxQuery(index, b, *boxSize),
		"radius":   radiusQuery(index, b, *radius),
		"nearest":  nearestQuery(index, b, *k),
	}

	log.Printf("Running %d %s queries with %d workers...\n", *numQueries, *queryType, *workers)

	var results []BenchmarkResult
	switch *queryType {
	case "mixed":
		for _, name := range []string{"area", "distance", "box", "radius", "nearest"} {
			results = append(results, runBenchmark(name, queries[name], *numQueries/5, *workers))
		}
		results = append(results, combine("mixed", results))
	default:
		q, ok := queries[*queryType]
		if !ok {
			log.Fatalf("Unknown query type: %s", *queryType)
		}
		results = append(results, runBenchmark(*queryType, q, *numQueries, *workers))
	}

	out.Title("Benchmark Results")
	for _, result := range results {
		out.Subtitle(result.QueryType)
		out.Stat("Total Queries", result.TotalQueries)
		out.Stat("Total Duration", result.TotalDuration)
		out.Stat("Average Duration", result.AvgDuration)
		out.Stat("Queries/Second", fmt.Sprintf("%.2f", result.QueriesPerSec))
		out.Stat("Min Duration", result.MinDuration)
		out.Stat("Max Duration", result.MaxDuration)
		out.Stat("Total Results", result.TotalResults)
		out.Stat("Avg Results/Query", fmt.Sprintf("%.2f", result.AvgResults))
		if result.Errors > 0 {
			out.Error(fmt.Sprintf("%d queries failed", result.Errors))
		}
	}
	out.Stat("Workers Used", *workers)
	out.Stat("CPU Cores", runtime.NumCPU())
}

// query runs one random query and returns its result count
type query func(r *rand.Rand) (int, error)

func areaQuery(b bounds, boxSize, maxArea float64) query {
	return func(r *rand.Rand) (int, error) {
		sw := b.point(r)
		box := models.BoundingBox{North: sw.Lat + boxSize, South: sw.Lat, East: sw.Lon + boxSize, West: sw.Lon}
		adm, err := geo.Admit(geo.Rectangle{Box: box}, maxArea)
		if err != nil {
			return 0, err
		}
		if adm.Exceeded {
			return 0, nil
		}
		return 1, nil
	}
}

func distanceQuery(b bounds) query {
	return func(r *rand.Rand) (int, error) {
		_, err := geo.HaversineDistance(b.point(r), b.point(r))
		return 1, err
	}
}

func boxQuery(index *rtree.RooftopIndex, b bounds, boxSize float64) query {
	return func(r *rand.Rand) (int, error) {
		sw := b.point(r)
		results, err := index.QueryBox(models.BoundingBox{
			North: sw.Lat + boxSize, South: sw.Lat, East: sw.Lon + boxSize, West: sw.Lon,
		})
		return len(results), err
	}
}

func radiusQuery(index *rtree.RooftopIndex, b bounds, radius float64) query {
	return func(r *rand.Rand) (int, error) {
		results, err := index.QueryRadius(b.point(r), radius)
		return len(results), err
	}
}

func nearestQuery(index *rtree.RooftopIndex, b bounds, k int) query {
	return func(r *rand.Rand) (int, error) {
		return len(index.NearestNeighbors(b.point(r), k)), nil
	}
}

func runBenchmark(name string, q query, numQueries, workers int) BenchmarkResult {
	var (
		totalResults int64
		errCount     int64
		minDuration  = time.Hour
		maxDuration  time.Duration
		durations    []time.Duration
		mu           sync.Mutex
	)

	startTime := time.Now()

	// Worker pool
	queryCh := make(chan int, numQueries)
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(rand.Int63()))

			for range queryCh {
				queryStart := time.Now()
				n, err := q(r)
				queryDuration := time.Since(queryStart)

				if err != nil {
					atomic.AddInt64(&errCount, 1)
					continue
				}
				atomic.AddInt64(&totalResults, int64(n))

				mu.Lock()
				durations = append(durations, queryDuration)
				if queryDuration < minDuration {
					minDuration = queryDuration
				}
				if queryDuration > maxDuration {
					maxDuration = queryDuration
				}
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < numQueries; i++ {
		queryCh <- i
	}
	close(queryCh)

	wg.Wait()
	totalDuration := time.Since(startTime)

	result := BenchmarkResult{
		QueryType:     name,
		TotalQueries:  numQueries,
		TotalDuration: totalDuration,
		MaxDuration:   maxDuration,
		TotalResults:  totalResults,
		Errors:        errCount,
	}
	if len(durations) > 0 {
		var totalDur time.Duration
		for _, d := range durations {
			totalDur += d
		}
		result.AvgDuration = totalDur / time.Duration(len(durations))
		result.MinDuration = minDuration
	}
	if numQueries > 0 {
		result.QueriesPerSec = float64(numQueries) / totalDuration.Seconds()
		result.AvgResults = float64(totalResults) / float64(numQueries)
	}
	return result
}

func combine(name string, parts []BenchmarkResult) BenchmarkResult {
	out := BenchmarkResult{QueryType: name, MinDuration: time.Hour}
	for _, p := range parts {
		out.TotalQueries += p.TotalQueries
		out.TotalDuration += p.TotalDuration
		out.TotalResults += p.TotalResults
		out.Errors += p.Errors
		out.MinDuration = min(out.MinDuration, p.MinDuration)
		out.MaxDuration = max(out.MaxDuration, p.MaxDuration)
	}
	if out.TotalQueries > 0 {
		out.AvgDuration = out.TotalDuration / time.Duration(out.TotalQueries)
		out.QueriesPerSec = float64(out.TotalQueries) / out.TotalDuration.Seconds()
		out.AvgResults = float64(out.TotalResults) / float64(out.TotalQueries)
	}
	return out
}

// generateRooftops scatters square footprints of roughly 4 to 35 m² over b
func generateRooftops(n int, b bounds) []*models.Rooftop {
	rooftops := make([]*models.Rooftop, n)

	numWorkers := runtime.NumCPU()
	batchSize := n / numWorkers
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		startIdx := w * batchSize
		endIdx := startIdx + batchSize
		if w == numWorkers-1 {
			endIdx = n
		}

		go func(start, end int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(start)))

			for i := start; i < end; i++ {
				sw := b.point(r)
				side := 0.00002 + r.Float64()*0.00004 // ~2 to 6 m
				rooftops[i] = &models.Rooftop{
					ID: fmt.Sprintf("roof_%d", i),
					Coordinates: []models.GeoPoint{
						sw,
						{Lat: sw.Lat, Lon: sw.Lon + side},
						{Lat: sw.Lat + side, Lon: sw.Lon + side},
						{Lat: sw.Lat + side, Lon: sw.Lon},
						sw,
					},
					Confidence: 0.5 + r.Float64()/2,
					Centroid:   models.GeoPoint{Lat: sw.Lat + side/2, Lon: sw.Lon + side/2},
				}
			}
		}(startIdx, endIdx)
	}

	wg.Wait()
	return rooftops
}
