package domain

import "context"

// PostalGeocoder resolves a 5-digit US postal code to coordinates via an
// external lookup. Implementations must treat any non-success response as an
// error; the caller decides how failures are memoized.
type PostalGeocoder interface {
	Lookup(ctx context.Context, postalCode string) (GeocodeResult, error)
}
