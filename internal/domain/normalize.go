package domain

import (
	"strconv"
	"strings"
	"time"
)

// Per-field defaults applied when a cargo figure is missing or unparsable.
const (
	defaultWeightKg = 1.0
	defaultVolumeM3 = 0.1
	defaultPackages = 1

	defaultCity    = "Unknown"
	defaultCarrier = "Unknown"
	defaultBizType = "Standard"
)

// DropReason explains why a raw row was excluded during normalization.
type DropReason string

const (
	DropInvalidDate   DropReason = "invalid_date"
	DropInvalidPostal DropReason = "invalid_postal"
)

// RowResult is the outcome of normalizing one raw row: either a record or a
// drop reason, never both.
type RowResult struct {
	Record  NormalizedRecord
	Dropped DropReason
}

// IsDropped reports whether the row was excluded.
func (r RowResult) IsDropped() bool { return r.Dropped != "" }

// NormalizeRecord validates and converts one raw row. position is the 1-based
// index among accepted records, used as the ID when the id cell is empty.
//
// Rows with an unparsable creation timestamp are dropped rather than given a
// default date, so a bad export shows up in the drop count instead of
// clustering silently on a fake day.
func NormalizeRecord(raw RawRecord, position int) RowResult {
	date, ok := ParseShipmentDate(raw.CreatedTime)
	if !ok {
		return RowResult{Dropped: DropInvalidDate}
	}

	destZip := ExtractPostalCode(raw.ShipToPostal)
	if destZip == "" {
		return RowResult{Dropped: DropInvalidPostal}
	}

	profile := ResolveWarehouse(raw.WarehouseName)

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = strconv.Itoa(position)
	}

	name := strings.TrimSpace(raw.WarehouseName)
	if name == "" {
		name = UnknownWarehouse
	}

	return RowResult{Record: NormalizedRecord{
		ID:               id,
		ShipmentDate:     date,
		WarehouseName:    name,
		WarehouseZip:     profile.Zip,
		WarehouseDisplay: profile.DisplayName,
		WarehouseColor:   profile.Color,
		DestZip:          destZip,
		DestCity:         stringOrDefault(raw.ShipToCity, defaultCity),
		DestState:        strings.TrimSpace(raw.ShipToState),
		Carrier:          stringOrDefault(raw.Carrier, defaultCarrier),
		BusinessType:     stringOrDefault(raw.BizType, defaultBizType),
		WeightKg:         parseFloatOrDefault(raw.GrossWeight, defaultWeightKg),
		VolumeM3:         parseFloatOrDefault(raw.Volume, defaultVolumeM3),
		Packages:         parseIntOrDefault(raw.PackageCount, defaultPackages),
	}}
}

// ParseShipmentDate converts an export timestamp ("M/D/YY HH:MM") to an ISO
// calendar date ("YYYY-MM-DD"). Month and day are zero-padded; two-digit
// years are expanded by prefixing "20". Returns false when the value has no
// slash-delimited date or does not name a real calendar day.
func ParseShipmentDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !strings.Contains(value, "/") {
		return "", false
	}

	datePart := strings.SplitN(value, " ", 2)[0]
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return "", false
	}

	month := zeroPad(parts[0])
	day := zeroPad(parts[1])
	year := parts[2]
	if len(year) == 2 {
		year = "20" + year
	}
	if len(year) != 4 {
		return "", false
	}

	iso := year + "-" + month + "-" + day
	if _, err := time.Parse("2006-01-02", iso); err != nil {
		return "", false
	}
	return iso, true
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// ExtractPostalCode keeps decimal digits only and truncates to the first
// five. Returns "" unless that yields exactly five digits, so "07114-1234"
// becomes "07114" and "123" is rejected.
func ExtractPostalCode(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == 5 {
			break
		}
	}
	if b.Len() != 5 {
		return ""
	}
	return b.String()
}

func stringOrDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

// parseFloatOrDefault falls back when the cell is missing, unparsable, or
// negative. A bad figure costs the field its value, not the row its place.
func parseFloatOrDefault(value string, fallback float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func parseIntOrDefault(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	v, err := strconv.Atoi(value)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
