// Package geo holds the small amount of spherical geometry needed for station lookups
// and walking links.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius.
const EarthRadiusMeters = 6371010.0

const degToRad = math.Pi / 180

// Bounds is a latitude/longitude box.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the point lies inside b, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Overlaps reports whether b and other share at least one point.
func (b Bounds) Overlaps(other Bounds) bool {
	return !(b.MaxLat < other.MinLat || b.MinLat > other.MaxLat ||
		b.MaxLon < other.MinLon || b.MinLon > other.MaxLon)
}

// Distance returns the great-circle distance in meters. Points less than about 20km
// apart use the equirectangular approximation.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if math.Abs(lat2-lat1) < 0.2 && math.Abs(lon2-lon1) < 0.2 {
		x := (lon2 - lon1) * degToRad * math.Cos((lat1+lat2)/2*degToRad)
		y := (lat2 - lat1) * degToRad
		return EarthRadiusMeters * math.Sqrt(x*x+y*y)
	}

	phi1, phi2 := lat1*degToRad, lat2*degToRad
	dLon := (lon2 - lon1) * degToRad

	y := math.Hypot(math.Cos(phi2)*math.Sin(dLon),
		math.Cos(phi1)*math.Sin(phi2)-math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon))
	x := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLon)
	return EarthRadiusMeters * math.Atan2(y, x)
}

// BoundsAround returns the box enclosing the circle of the given radius around a point.
func BoundsAround(lat, lon, radiusMeters float64) Bounds {
	latOffset := radiusMeters / EarthRadiusMeters / degToRad
	lonOffset := radiusMeters / (EarthRadiusMeters * math.Cos(lat*degToRad)) / degToRad
	return Bounds{
		MinLat: lat - latOffset,
		MaxLat: lat + latOffset,
		MinLon: lon - lonOffset,
		MaxLon: lon + lonOffset,
	}
}

// WalkingMinutes converts a straight-line distance into a walking time, rounded up,
// at the given speed in meters per minute. The result is at least one minute.
func WalkingMinutes(distanceMeters, metersPerMinute float64) int {
	m := int(math.Ceil(distanceMeters / metersPerMinute))
	if m < 1 {
		return 1
	}
	return m
}
