package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/roof-area/pkg/models"
)

func TestSummarize(t *testing.T) {
	rooftops := []*models.Rooftop{
		{ID: "a", Area: 3},
		{ID: "b", Area: 7},
		{ID: "c", Area: 12},
		nil,
		{ID: "d", Area: 18},
		{ID: "e", Area: 25},
	}

	stats, err := Summarize(rooftops, DefaultCapacityPerSqM)
	require.NoError(t, err)

	assert.Equal(t, 3.0, stats.MinArea)
	assert.Equal(t, 25.0, stats.MaxArea)
	assert.InDelta(t, 13.0, stats.AvgArea, 1e-9)
	assert.InDelta(t, 65*0.15, stats.PotentialCapacity, 1e-9)
	require.Len(t, stats.AreaDistribution, 5)
	for _, b := range stats.AreaDistribution {
		assert.Equal(t, 1, b.Count, b.Label)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	stats, err := Summarize(nil, DefaultCapacityPerSqM)
	require.NoError(t, err)

	assert.Zero(t, stats.MinArea)
	assert.Zero(t, stats.MaxArea)
	assert.Zero(t, stats.AvgArea)
	assert.Zero(t, stats.PotentialCapacity)
	require.Len(t, stats.AreaDistribution, 5)
	for _, b := range stats.AreaDistribution {
		assert.Zero(t, b.Count)
	}
}

func TestSummarizeFillsMissingArea(t *testing.T) {
	sq := square(38.7, -9.14, 0.0001) // roughly 87 m² at Lisbon
	r := &models.Rooftop{ID: "x", Coordinates: sq.ClosedRing()}

	area, err := RooftopArea(r)
	require.NoError(t, err)
	assert.Greater(t, area, 50.0)
	assert.Less(t, area, 150.0)

	stats, err := Summarize([]*models.Rooftop{r}, DefaultCapacityPerSqM)
	require.NoError(t, err)
	assert.InDelta(t, area, stats.AvgArea, 1e-9)
	assert.Equal(t, 1, stats.AreaDistribution[4].Count)
}

func TestSummarizeRejectsNegativeArea(t *testing.T) {
	_, err := Summarize([]*models.Rooftop{{ID: "neg", Area: -2}}, DefaultCapacityPerSqM)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArea)
	assert.Contains(t, err.Error(), "neg")
}

func TestTotalArea(t *testing.T) {
	total, err := TotalArea([]*models.Rooftop{{Area: 1.5}, {Area: 2.5}, nil})
	require.NoError(t, err)
	assert.Equal(t, 4.0, total)
}
