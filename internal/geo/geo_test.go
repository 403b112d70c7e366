package geo_test

import (
	"math"
	"testing"

	"greensprint/internal/geo"
)

type mark struct {
	name   string
	point  geo.Point
	hasLoc bool
}

func (m mark) Location() (geo.Point, bool) {
	return m.point, m.hasLoc
}

func located(name string, lat, lng float64) mark {
	return mark{name: name, point: geo.Point{Lat: lat, Lng: lng}, hasLoc: true}
}

func TestDistanceIdentityAndSymmetry(t *testing.T) {
	points := []geo.Point{
		{Lat: 0, Lng: 0},
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 89.5, Lng: -170},
	}
	for _, p := range points {
		if d := geo.Distance(p, p); d != 0 {
			t.Fatalf("distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
	for i, a := range points {
		for _, b := range points[i+1:] {
			ab := geo.Distance(a, b)
			ba := geo.Distance(b, a)
			if math.Abs(ab-ba) > 1e-9 {
				t.Fatalf("asymmetric distance: %v vs %v", ab, ba)
			}
		}
	}
}

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b geo.Point
		want float64
		tol  float64
	}{
		{"one equator degree", geo.Point{}, geo.Point{Lng: 1}, 111.19, 0.1},
		{"paris to london", geo.Point{Lat: 48.8566, Lng: 2.3522}, geo.Point{Lat: 51.5074, Lng: -0.1278}, 343.5, 1.0},
	}
	for _, tc := range tests {
		got := geo.Distance(tc.a, tc.b)
		if math.Abs(got-tc.want) > tc.tol {
			t.Fatalf("%s: distance = %v, want %v±%v", tc.name, got, tc.want, tc.tol)
		}
	}
}

func TestBoxAroundContainsCircle(t *testing.T) {
	center := geo.Point{Lat: 40.0, Lng: -105.0}
	box := geo.BoxAround(center, 25)

	// Points on the circle in the four cardinal directions stay inside.
	for _, p := range []geo.Point{
		{Lat: center.Lat + 25/111.0, Lng: center.Lng},
		{Lat: center.Lat - 25/111.0, Lng: center.Lng},
	} {
		if !box.Contains(p) {
			t.Fatalf("box %+v should contain %+v", box, p)
		}
	}
	if !box.Contains(center) {
		t.Fatalf("box %+v should contain its center", box)
	}
	if box.LatMin >= box.LatMax || box.LngMin >= box.LngMax {
		t.Fatalf("degenerate box %+v", box)
	}
}

func TestBoxAroundSafeNearPoles(t *testing.T) {
	for _, lat := range []float64{89.95, 90, -89.97, -90} {
		box := geo.BoxAround(geo.Point{Lat: lat, Lng: 10}, 50)
		if math.IsNaN(box.LngMin) || math.IsInf(box.LngMin, 0) || math.IsNaN(box.LngMax) || math.IsInf(box.LngMax, 0) {
			t.Fatalf("lat %v: non-finite longitude span %+v", lat, box)
		}
		if box.LatMax > 90 || box.LatMin < -90 {
			t.Fatalf("lat %v: latitude span escapes the poles %+v", lat, box)
		}
		if box.LngMin != -180 || box.LngMax != 180 {
			t.Fatalf("lat %v: expected full longitude range near pole, got %+v", lat, box)
		}
	}
}

func TestBoxAroundWidensLongitudeWithLatitude(t *testing.T) {
	equator := geo.BoxAround(geo.Point{Lat: 0, Lng: 0}, 100)
	north := geo.BoxAround(geo.Point{Lat: 60, Lng: 0}, 100)
	if north.LngMax-north.LngMin <= equator.LngMax-equator.LngMin {
		t.Fatalf("expected wider longitude span at 60N: %+v vs %+v", north, equator)
	}
	if north.LatMax-north.LatMin != equator.LatMax-equator.LatMin {
		t.Fatalf("latitude span should not vary with latitude: %+v vs %+v", north, equator)
	}
}

func TestNearestExcludesBoxCornerOutsideCircle(t *testing.T) {
	center := geo.Point{Lat: 0, Lng: 0}
	radius := 100.0
	box := geo.BoxAround(center, radius)
	corner := located("corner", box.LatMax, box.LngMax)

	if !box.Contains(corner.point) {
		t.Fatalf("corner %+v should pass the coarse filter", corner.point)
	}
	if d := geo.Distance(center, corner.point); d <= radius {
		t.Fatalf("test setup: corner distance %v should exceed radius", d)
	}

	matches := geo.Nearest(center, radius, []mark{
		corner,
		located("inside", 0.1, 0.1),
	})
	if len(matches) != 1 || matches[0].Value.name != "inside" {
		t.Fatalf("expected only the inside record, got %+v", matches)
	}
}

func TestNearestDropsRecordsWithoutCoordinates(t *testing.T) {
	matches := geo.Nearest(geo.Point{}, 50, []mark{
		{name: "unmapped"},
		located("mapped", 0.05, 0.05),
	})
	if len(matches) != 1 || matches[0].Value.name != "mapped" {
		t.Fatalf("expected unmapped record dropped, got %+v", matches)
	}
}

func TestNearestSortsAscendingStable(t *testing.T) {
	center := geo.Point{Lat: 0, Lng: 0}
	matches := geo.Nearest(center, 500, []mark{
		located("far", 2, 0),
		located("tie-a", 0, 1),
		located("near", 0.1, 0),
		located("tie-b", 0, -1),
	})
	got := make([]string, 0, len(matches))
	for _, m := range matches {
		got = append(got, m.Value.name)
	}
	want := []string{"near", "tie-a", "tie-b", "far"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: expected %v, got %v", i, want, got)
		}
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].DistanceKm < matches[i-1].DistanceKm {
			t.Fatalf("distances not ascending: %+v", matches)
		}
	}
}

func TestNearestZeroRadiusKeepsCoincidentPoint(t *testing.T) {
	center := geo.Point{Lat: 12.5, Lng: -8.25}
	matches := geo.Nearest(center, 0, []mark{
		located("here", 12.5, -8.25),
		located("away", 12.6, -8.25),
	})
	if len(matches) != 1 || matches[0].Value.name != "here" || matches[0].DistanceKm != 0 {
		t.Fatalf("expected exact center match only, got %+v", matches)
	}
}
