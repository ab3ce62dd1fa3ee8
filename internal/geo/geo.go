// Package geo contains pure geographic computation helpers shared by the
// drawing, editing, and monitoring modules. All functions use a spherical
// earth model so distances, destination points, and containment thresholds
// agree with each other to meter-level precision.
package geo

import (
	"math"

	"fencer/internal/types"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance in meters between two
// points specified in decimal degrees (haversine formula).
func DistanceMeters(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// DestinationPoint returns the point reached by travelling distanceMeters
// from origin along the given initial bearing (degrees clockwise from north).
// It is the inverse of DistanceMeters along that bearing on the same sphere:
// DistanceMeters(origin, DestinationPoint(origin, b, d)) ≈ d.
func DestinationPoint(origin types.Point, bearingDegrees, distanceMeters float64) types.Point {
	rLat := degreesToRadians(origin.Lat)
	rLng := degreesToRadians(origin.Lng)
	bearing := degreesToRadians(bearingDegrees)
	angular := distanceMeters / earthRadiusMeters

	sinLat := math.Sin(rLat)*math.Cos(angular) +
		math.Cos(rLat)*math.Sin(angular)*math.Cos(bearing)
	destLat := math.Asin(sinLat)

	y := math.Sin(bearing) * math.Sin(angular) * math.Cos(rLat)
	x := math.Cos(angular) - math.Sin(rLat)*sinLat
	destLng := rLng + math.Atan2(y, x)

	// Normalize longitude to [-180, 180).
	lng := radiansToDegrees(destLng)
	lng = math.Mod(lng+540, 360) - 180

	return types.Point{Lat: radiansToDegrees(destLat), Lng: lng}
}

// PointInCircle reports whether p lies within radiusMeters of center.
func PointInCircle(p, center types.Point, radiusMeters float64) bool {
	return DistanceMeters(p, center) <= radiusMeters
}

// PointInPolygon reports whether p lies inside the polygon using the even-odd
// ray-casting rule over raw lat/lng treated as planar coordinates. This is the
// accepted approximation for geofence-scale polygons; it distorts near the
// poles and across the antimeridian. Fewer than 3 points is never inside.
func PointInPolygon(p types.Point, points []types.Point) bool {
	n := len(points)
	if n < 3 {
		return false
	}
	inside := false
	x, y := p.Lng, p.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := points[i].Lng, points[i].Lat
		xj, yj := points[j].Lng, points[j].Lat
		intersect := ((yi > y) != (yj > y)) &&
			(x < (xj-xi)*(y-yi)/(yj-yi)+xi)
		if intersect {
			inside = !inside
		}
	}
	return inside
}

// IsValid reports whether p is a representable WGS84 coordinate.
func IsValid(p types.Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
