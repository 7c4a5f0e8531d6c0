package domain

// BuildStatistics aggregates the final enriched set. originalCount is the
// pre-truncation input row count; dropped and unresolved are the rows lost to
// normalization and coordinate resolution respectively.
func BuildStatistics(records []EnrichedRecord, originalCount, dropped, unresolved int) RunStatistics {
	stats := RunStatistics{
		TotalRecords:      len(records),
		OriginalCount:     originalCount,
		DroppedRecords:    dropped,
		UnresolvedRecords: unresolved,
		GeneratedAt:       clock.Now(),
	}

	warehouseSet := make(map[string]struct{})
	destSet := make(map[string]struct{})

	for _, rec := range records {
		warehouseSet[rec.WarehouseName] = struct{}{}
		destSet[rec.DestCity] = struct{}{}
		stats.TotalDistanceKm += rec.DistanceKm

		// ISO dates compare correctly as strings.
		if stats.DateRange.Start == "" || rec.ShipmentDate < stats.DateRange.Start {
			stats.DateRange.Start = rec.ShipmentDate
		}
		if rec.ShipmentDate > stats.DateRange.End {
			stats.DateRange.End = rec.ShipmentDate
		}
	}

	stats.UniqueWarehouses = len(warehouseSet)
	stats.UniqueDestinations = len(destSet)
	return stats
}
