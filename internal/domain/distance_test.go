package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	newarkNJ = Geo{Lat: 40.6895, Lng: -74.1745}  // 07114
	midtown  = Geo{Lat: 40.7484, Lng: -73.9967}  // 10001
	dallasTX = Geo{Lat: 32.8970, Lng: -97.0400}  // 75261
	losAngCA = Geo{Lat: 34.0030, Lng: -118.2110} // 90058
)

func TestHaversineKm_ZeroForIdenticalPoints(t *testing.T) {
	assert.Equal(t, 0, HaversineKm(newarkNJ, newarkNJ))
}

func TestHaversineKm_Symmetric(t *testing.T) {
	assert.Equal(t, HaversineKm(newarkNJ, dallasTX), HaversineKm(dallasTX, newarkNJ))
	assert.Equal(t, HaversineKm(midtown, losAngCA), HaversineKm(losAngCA, midtown))
}

func TestHaversineKm_KnownDistances(t *testing.T) {
	// Newark airport area to midtown Manhattan: ~16 km.
	assert.InDelta(t, 16, HaversineKm(newarkNJ, midtown), 3)

	// DFW to Los Angeles: ~1980 km.
	assert.InDelta(t, 1980, HaversineKm(dallasTX, losAngCA), 50)
}

func TestHaversineKm_NonNegative(t *testing.T) {
	pairs := [][2]Geo{
		{newarkNJ, midtown},
		{losAngCA, dallasTX},
		{{Lat: -33.87, Lng: 151.21}, {Lat: 40.71, Lng: -74.0}}, // antipodal-ish
	}
	for _, p := range pairs {
		assert.GreaterOrEqual(t, HaversineKm(p[0], p[1]), 0)
	}
}
