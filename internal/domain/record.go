package domain

import "time"

// RawRecord is one untyped row from an uploaded shipment CSV, prior to any
// validation. Field values are the raw cell contents.
type RawRecord struct {
	ID            string
	CreatedTime   string
	WarehouseName string
	ShipToPostal  string
	ShipToCity    string
	ShipToState   string
	ShipToCountry string
	Carrier       string
	BizType       string
	GrossWeight   string
	Volume        string
	PackageCount  string
}

// NormalizedRecord is a shipment row that passed validation: the shipment
// date is a real calendar date and both postal codes are exactly five digits.
type NormalizedRecord struct {
	ID               string  `json:"id"`
	ShipmentDate     string  `json:"shipment_date"` // ISO YYYY-MM-DD
	WarehouseName    string  `json:"warehouse_name"`
	WarehouseZip     string  `json:"warehouse_zipcode"`
	WarehouseDisplay string  `json:"warehouse_display"`
	WarehouseColor   string  `json:"warehouse_color"`
	DestZip          string  `json:"dest_zipcode"`
	DestCity         string  `json:"dest_city"`
	DestState        string  `json:"dest_state"`
	Carrier          string  `json:"carrier"`
	BusinessType     string  `json:"business_type"`
	WeightKg         float64 `json:"weight_kg"`
	VolumeM3         float64 `json:"volume_m3"`
	Packages         int     `json:"packages"`
}

// Geo is a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodeResult is the coordinate data returned by the postal code lookup.
type GeocodeResult struct {
	Geo
	City  string
	State string
}

// EnrichedRecord is a normalized record with both endpoints geocoded and the
// haversine distance between them attached.
type EnrichedRecord struct {
	NormalizedRecord
	OriginLat  float64 `json:"origin_lat"`
	OriginLng  float64 `json:"origin_lng"`
	DestLat    float64 `json:"dest_lat"`
	DestLng    float64 `json:"dest_lng"`
	DistanceKm int     `json:"distance_km"`
}

// DateRange is the inclusive min/max shipment date across an enriched set.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RunStatistics aggregates one pipeline run for the map view. All
// cardinalities are computed over the final enriched set, not the raw input.
type RunStatistics struct {
	TotalRecords       int       `json:"total_records"`
	OriginalCount      int       `json:"original_count"`
	DroppedRecords     int       `json:"dropped_records"`
	UnresolvedRecords  int       `json:"unresolved_records"`
	UniqueWarehouses   int       `json:"unique_warehouses"`
	UniqueDestinations int       `json:"unique_destinations"`
	TotalDistanceKm    int       `json:"total_distance_km"`
	DateRange          DateRange `json:"date_range"`
	GeneratedAt        time.Time `json:"generated_at"`
}
