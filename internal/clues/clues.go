// Package clues enforces the clue-distribution invariants the generative
// service cannot be trusted to satisfy: designated turns map clues one-to-one
// onto the three locations, and distance/time clues carry the locally
// computed geographic values.
package clues

import (
	"errors"
	"fmt"

	"github.com/dev-zuma/places-sub000/internal/geo"
	"github.com/dev-zuma/places-sub000/internal/places"
)

// ErrDistributionInvalid means a turn's clue set does not cover the three
// location positions exactly once each (or, for turn 4, does not have one
// distance and one time clue per pair).
var ErrDistributionInvalid = errors.New("clue distribution invalid")

// coveredTurns are the turns whose location-scoped clues must cover
// positions {1,2,3} exactly once each. Turn 5 covers the three countries,
// which share the same position numbering.
var coveredTurns = map[int]bool{2: true, 3: true, 5: true}

// NeedsCoverage reports whether a turn is subject to the one-clue-per-
// location invariant.
func NeedsCoverage(turn int) bool {
	return coveredTurns[turn]
}

// ValidateTurn checks the one-clue-per-position invariant for a covered
// turn. Image clues and clues without position scope are ignored; every
// remaining clue must name exactly one position, and positions 1..3 must
// each be named exactly once. Non-covered turns always pass.
func ValidateTurn(turn int, set []places.Clue) error {
	if !NeedsCoverage(turn) {
		return nil
	}

	counts := make(map[int]int, 3)
	for i, c := range set {
		if c.Type == places.ClueImage || len(c.LocationPositions) == 0 {
			continue
		}
		if len(c.LocationPositions) != 1 {
			return fmt.Errorf("%w: turn %d clue %d names %d positions, want 1",
				ErrDistributionInvalid, turn, i, len(c.LocationPositions))
		}
		counts[c.LocationPositions[0]]++
	}

	for pos := 1; pos <= 3; pos++ {
		if counts[pos] != 1 {
			return fmt.Errorf("%w: turn %d position %d has %d clues, want 1",
				ErrDistributionInvalid, turn, pos, counts[pos])
		}
	}
	return nil
}

// kmMiContent phrases the authoritative distance pair; hoursContent does the
// same for time differentials. Clue content for these types is exactly the
// number, never the service's wording.
func kmMiContent(km int) string {
	return fmt.Sprintf("%d km (%d mi)", km, geo.KmToMi(km))
}

func hoursContent(h float64) string {
	return fmt.Sprintf("%g hours", h)
}

// RepairGeoClues validates and repairs the turn-4 clue set in place. The set
// must contain exactly 3 distance clues and 3 time-difference clues, one per
// location pair; a structural mismatch is rejected. Numeric content is not
// rejected — it is overwritten with the precomputed values, since the service
// only phrases text around numbers we already know.
func RepairGeoClues(set []places.Clue, distances [3]geo.Pair, timeDiffs [3]geo.Pair) error {
	distByPair := make(map[places.PositionPair]geo.Pair, 3)
	for _, p := range distances {
		distByPair[places.PositionPair{A: p.A, B: p.B}] = p
	}
	timeByPair := make(map[places.PositionPair]geo.Pair, 3)
	for _, p := range timeDiffs {
		timeByPair[places.PositionPair{A: p.A, B: p.B}] = p
	}

	seenDist := make(map[places.PositionPair]bool, 3)
	seenTime := make(map[places.PositionPair]bool, 3)

	for i := range set {
		c := &set[i]
		switch c.Type {
		case places.ClueDistance, places.ClueTimeDiff:
		default:
			continue
		}
		if c.Between == nil {
			return fmt.Errorf("%w: turn 4 clue %d has no location pair", ErrDistributionInvalid, i)
		}
		pair := *c.Between

		switch c.Type {
		case places.ClueDistance:
			p, ok := distByPair[pair]
			if !ok || seenDist[pair] {
				return fmt.Errorf("%w: turn 4 distance pair {%d,%d} unknown or duplicated",
					ErrDistributionInvalid, pair.A, pair.B)
			}
			seenDist[pair] = true
			km := int(p.Value)
			c.Content = kmMiContent(km)
			c.Data = &places.ClueData{DistanceKm: km, DistanceMi: geo.KmToMi(km)}
		case places.ClueTimeDiff:
			p, ok := timeByPair[pair]
			if !ok || seenTime[pair] {
				return fmt.Errorf("%w: turn 4 time pair {%d,%d} unknown or duplicated",
					ErrDistributionInvalid, pair.A, pair.B)
			}
			seenTime[pair] = true
			c.Content = hoursContent(p.Value)
			c.Data = &places.ClueData{TimeDiffHours: p.Value}
		}
	}

	if len(seenDist) != 3 {
		return fmt.Errorf("%w: turn 4 has %d distance clues, want 3", ErrDistributionInvalid, len(seenDist))
	}
	if len(seenTime) != 3 {
		return fmt.Errorf("%w: turn 4 has %d time clues, want 3", ErrDistributionInvalid, len(seenTime))
	}
	return nil
}
