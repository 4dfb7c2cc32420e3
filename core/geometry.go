package core

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusNM is the mean Earth radius used for all great-circle
// calculations (nautical miles).
const EarthRadiusNM = 3440.1

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// LatLon is a geographic position in degrees. Longitude is kept normalized to
// [-180, 180); latitude is constrained to [-90, 90].
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewLatLon validates and normalizes a coordinate pair. Non-finite values and
// latitudes outside [-90, 90] are rejected; any longitude is wrapped into
// [-180, 180).
func NewLatLon(lat, lon float64) (LatLon, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return LatLon{}, fmt.Errorf("%w: non-finite lat/lon (%v, %v)", ErrInvalidCoordinate, lat, lon)
	}
	if lat < -90 || lat > 90 {
		return LatLon{}, fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, lat)
	}
	return LatLon{Lat: lat, Lon: normalizeLon(lon)}, nil
}

// Haversine returns the great-circle distance between two points in nautical
// miles. The result is non-negative and stays below 1 NM for coincident
// points despite floating-point trig error.
func Haversine(a, b LatLon) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if s < 0 {
		s = 0
	} else if s > 1 {
		s = 1
	}
	return EarthRadiusNM * 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
}

// InitialBearing returns the initial great-circle course from a to b in
// degrees, normalized to [0, 360). The value is arbitrary when the points
// coincide; callers must gate on distance before relying on it.
func InitialBearing(a, b LatLon) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLon := radians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return wrap360(degrees(math.Atan2(y, x)))
}

// wrap360 normalizes an angle in degrees to [0, 360).
func wrap360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// normalizeLon wraps a longitude into [-180, 180).
func normalizeLon(lon float64) float64 {
	l := math.Mod(lon+180, 360)
	if l < 0 {
		l += 360
	}
	return l - 180
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
