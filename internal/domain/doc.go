// Package domain models express-parcel shipment records and the
// normalization rules applied to them.
//
// # Data Source
//
// Shipments arrive as CSV exports from the order management system. Each row
// carries an identifier, a creation timestamp, the origin warehouse label, the
// destination address fields, and basic cargo figures (gross weight, volume,
// package count).
//
// # Export Conventions
//
// Warehouse labels:
//
//	Short alphanumeric facility codes, e.g. "NJ9", "TX8828", "WNT485".
//	Operators frequently mistype or abbreviate them ("NJ-Newark", "TXDFW2"),
//	so resolution falls back to ordered prefix/substring rules after the
//	exact-match lookup. See [ResolveWarehouse].
//
// Creation timestamps:
//
//	"M/D/YY HH:MM" with optional leading zeros, e.g. "3/15/24 10:30".
//	Two-digit years are expanded by prefixing "20". Only the calendar date is
//	kept; rows whose timestamp cannot be parsed are dropped. See
//	[ParseShipmentDate].
//
// Postal codes:
//
//	US 5-digit ZIP codes, sometimes with a ZIP+4 suffix ("07114-1234") or
//	stray punctuation. Extraction keeps decimal digits only and truncates to
//	the first five; anything that does not yield exactly five digits is
//	invalid. See [ExtractPostalCode].
//
// Cargo figures:
//
//	Missing or unparsable weight/volume/package values fall back to per-field
//	defaults (1 kg, 0.1 m³, 1 package) without dropping the row.
//
// # Distance
//
// Record distance is the great-circle (haversine) distance between the origin
// warehouse and destination ZIP centroids, Earth radius 6371 km, rounded to
// the nearest whole kilometer. See [HaversineKm].
package domain
