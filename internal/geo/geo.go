// Package geo implements the proximity search primitives: bounding box
// construction, haversine distances, and exact-radius filtering.
//
// Proximity queries run in two phases. The store answers a coarse rectangular
// pre-filter built by BoxAround; Nearest then applies the exact great-circle
// check locally, since the box is a superset of the circle. Keeping the exact
// phase here, free of I/O, makes the distance policy testable without a store.
package geo

import (
	"cmp"
	"math"
	"slices"
)

const (
	// earthRadiusKm is the sphere radius used by the haversine formula.
	earthRadiusKm = 6371.0
	// kmPerDegreeLat approximates one degree of latitude anywhere on the globe.
	kmPerDegreeLat = 111.0
	// maxBoxLatitude caps the latitude used for the longitude-delta cosine.
	// Beyond it the cosine collapses toward zero and the box degenerates, so
	// the box widens to the full longitude range instead of dividing by a
	// vanishing term.
	maxBoxLatitude = 89.9
)

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// BoundingBox is a closed latitude/longitude rectangle. It is inclusive on
// all four edges.
type BoundingBox struct {
	LatMin float64
	LatMax float64
	LngMin float64
	LngMax float64
}

// Contains reports whether p falls inside the box.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.LatMin && p.Lat <= b.LatMax && p.Lng >= b.LngMin && p.Lng <= b.LngMax
}

// BoxAround returns the smallest latitude/longitude rectangle guaranteed to
// contain every point within radiusKm of center. Latitude spans clamp to the
// poles. Near the poles the longitude span widens to the full range rather
// than dividing by a cosine that approaches zero.
func BoxAround(center Point, radiusKm float64) BoundingBox {
	latDelta := radiusKm / kmPerDegreeLat

	cosLat := math.Abs(center.Lat)
	if cosLat > maxBoxLatitude {
		cosLat = maxBoxLatitude
	}
	lngDelta := radiusKm / (kmPerDegreeLat * math.Cos(cosLat*math.Pi/180))

	box := BoundingBox{
		LatMin: center.Lat - latDelta,
		LatMax: center.Lat + latDelta,
		LngMin: center.Lng - lngDelta,
		LngMax: center.Lng + lngDelta,
	}
	if box.LatMin < -90 {
		box.LatMin = -90
	}
	if box.LatMax > 90 {
		box.LatMax = 90
	}
	if box.LngMin < -180 || box.LngMax > 180 {
		box.LngMin = -180
		box.LngMax = 180
	}
	return box
}

// Distance returns the great-circle distance between a and b in kilometres,
// computed with the haversine formula.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Locatable is implemented by records that may carry a coordinate pair.
type Locatable interface {
	Location() (Point, bool)
}

// Match pairs a record with its computed distance from the search center.
type Match[T Locatable] struct {
	Value      T
	DistanceKm float64
}

// Nearest applies the exact-circle phase of a proximity search: records
// without coordinates are dropped, records farther than radiusKm are dropped
// even when the coarse box admitted them, and the survivors are sorted by
// ascending distance. The sort is stable, so equidistant records keep their
// input order.
func Nearest[T Locatable](center Point, radiusKm float64, items []T) []Match[T] {
	matches := make([]Match[T], 0, len(items))
	for _, item := range items {
		point, ok := item.Location()
		if !ok {
			continue
		}
		d := Distance(center, point)
		if d > radiusKm {
			continue
		}
		matches = append(matches, Match[T]{Value: item, DistanceKm: d})
	}
	slices.SortStableFunc(matches, func(a, b Match[T]) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	return matches
}
