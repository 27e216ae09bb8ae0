// Package geo computes great-circle distances and timezone differentials
// between game locations. Its results are the authoritative values that clue
// text must carry — the generative service is never trusted to do this
// arithmetic itself.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned when a latitude or longitude is not a
// finite number in range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

const (
	earthRadiusKm = 6371
	kmPerMile     = 0.621371
)

// Point is a position in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, p.Lat)
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, p.Lon)
	}
	return nil
}

// Distance returns the Haversine great-circle distance between a and b in
// whole kilometers.
func Distance(a, b Point) (int, error) {
	if err := a.validate(); err != nil {
		return 0, err
	}
	if err := b.validate(); err != nil {
		return 0, err
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return int(math.Round(earthRadiusKm * c)), nil
}

// KmToMi converts whole kilometers to whole miles.
func KmToMi(km int) int {
	return int(math.Round(float64(km) * kmPerMile))
}

// TimeDifference returns the absolute difference between two UTC offsets in
// hours. Sub-hour offsets stay fractional.
func TimeDifference(offsetA, offsetB float64) float64 {
	return math.Abs(offsetA - offsetB)
}

// Pair relates two location positions to a computed value.
type Pair struct {
	A     int
	B     int
	Value float64
}

// pairs of three positions, in fixed order {1,2}, {1,3}, {2,3}.
var pairIndexes = [3][2]int{{0, 1}, {0, 2}, {1, 2}}

// PairwiseDistances computes the three unordered pair distances between
// exactly three points, in positions order {1,2}, {1,3}, {2,3}.
func PairwiseDistances(points [3]Point) ([3]Pair, error) {
	var out [3]Pair
	for i, idx := range pairIndexes {
		d, err := Distance(points[idx[0]], points[idx[1]])
		if err != nil {
			return out, err
		}
		out[i] = Pair{A: idx[0] + 1, B: idx[1] + 1, Value: float64(d)}
	}
	return out, nil
}

// PairwiseTimeDiffs computes the three unordered pair timezone differentials
// for exactly three UTC offsets, in positions order {1,2}, {1,3}, {2,3}.
func PairwiseTimeDiffs(offsets [3]float64) [3]Pair {
	var out [3]Pair
	for i, idx := range pairIndexes {
		out[i] = Pair{
			A:     idx[0] + 1,
			B:     idx[1] + 1,
			Value: TimeDifference(offsets[idx[0]], offsets[idx[1]]),
		}
	}
	return out
}
