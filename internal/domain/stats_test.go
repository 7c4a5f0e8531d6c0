package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func enriched(id, warehouse, city, date string, km int) EnrichedRecord {
	return EnrichedRecord{
		NormalizedRecord: NormalizedRecord{
			ID:            id,
			WarehouseName: warehouse,
			DestCity:      city,
			ShipmentDate:  date,
		},
		DistanceKm: km,
	}
}

func TestBuildStatistics(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.March, 21, 18, 0, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	records := []EnrichedRecord{
		enriched("1", "NJ9", "New York", "2024-03-15", 16),
		enriched("2", "NJ9", "Boston", "2024-03-17", 306),
		enriched("3", "TX8828", "New York", "2024-03-16", 2213),
	}

	stats := BuildStatistics(records, 10, 4, 3)

	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 10, stats.OriginalCount)
	assert.Equal(t, 4, stats.DroppedRecords)
	assert.Equal(t, 3, stats.UnresolvedRecords)
	assert.Equal(t, 2, stats.UniqueWarehouses, "cardinality over the final set only")
	assert.Equal(t, 2, stats.UniqueDestinations)
	assert.Equal(t, 16+306+2213, stats.TotalDistanceKm)
	assert.Equal(t, "2024-03-15", stats.DateRange.Start)
	assert.Equal(t, "2024-03-17", stats.DateRange.End)
	assert.Equal(t, fakeClock.Now(), stats.GeneratedAt)
}

func TestBuildStatistics_Empty(t *testing.T) {
	stats := BuildStatistics(nil, 5, 5, 0)
	assert.Equal(t, 0, stats.TotalRecords)
	assert.Equal(t, 5, stats.OriginalCount)
	assert.Empty(t, stats.DateRange.Start)
	assert.Empty(t, stats.DateRange.End)
}
