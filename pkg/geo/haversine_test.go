package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	t.Run("distance to self is zero", func(t *testing.T) {
		p := Point{Lat: 48.8566, Lng: 2.3522}
		assert.Zero(t, DistanceMeters(p, p))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Point{Lat: 51.5074, Lng: -0.1278}
		b := Point{Lat: 40.7128, Lng: -74.0060}
		assert.InDelta(t, DistanceMeters(a, b), DistanceMeters(b, a), 1e-6)
	})

	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		a := Point{Lat: 0, Lng: 0}
		b := Point{Lat: 0, Lng: 1}
		assert.InDelta(t, 111195, DistanceMeters(a, b), 50)
	})

	t.Run("short urban distance", func(t *testing.T) {
		// Two points roughly 430 m apart in central London.
		a := Point{Lat: 51.5007, Lng: -0.1246}
		b := Point{Lat: 51.5033, Lng: -0.1196}
		d := DistanceMeters(a, b)
		assert.Greater(t, d, 300.0)
		assert.Less(t, d, 600.0)
	})

	t.Run("antimeridian crossing stays finite", func(t *testing.T) {
		a := Point{Lat: 0, Lng: 179.9}
		b := Point{Lat: 0, Lng: -179.9}
		d := DistanceMeters(a, b)
		assert.Greater(t, d, 0.0)
		assert.Less(t, d, 30000.0)
	})
}
