package geo_test

import (
	"fmt"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
)

func ExampleAdmit() {
	// A rectangle drawn over central Lisbon
	selection := geo.Rectangle{Box: models.BoundingBox{
		North: 38.7250, South: 38.7050, East: -9.1300, West: -9.1600,
	}}

	adm, err := geo.Admit(selection, 5)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.2f km², exceeded=%v\n", adm.AreaSqKm, adm.Exceeded)

	adm, _ = geo.Admit(selection, 2)
	fmt.Println(adm.Message())
	// Output:
	// 5.79 km², exceeded=true
	// Selected area (5.79 km²) exceeds the maximum allowed (2 km²).
}

func ExampleClassifyAreaDistribution() {
	buckets, _ := geo.ClassifyAreaDistribution([]float64{3, 7, 12, 18, 25, 5})
	for _, b := range buckets {
		fmt.Printf("%s: %d\n", b.Label, b.Count)
	}
	// Output:
	// 0-5 m²: 1
	// 5-10 m²: 2
	// 10-15 m²: 1
	// 15-20 m²: 1
	// >20 m²: 1
}
