package clues

import (
	"errors"
	"testing"

	"github.com/dev-zuma/places-sub000/internal/geo"
	"github.com/dev-zuma/places-sub000/internal/places"
)

func positioned(pos int) places.Clue {
	return places.Clue{Type: places.ClueClimate, Content: "c", LocationPositions: []int{pos}}
}

func TestValidateTurnCoversAllPositions(t *testing.T) {
	set := []places.Clue{positioned(1), positioned(2), positioned(3)}
	if err := ValidateTurn(2, set); err != nil {
		t.Errorf("valid set rejected: %v", err)
	}
}

func TestValidateTurnIgnoresImageClues(t *testing.T) {
	set := []places.Clue{
		positioned(1), positioned(2), positioned(3),
		{Type: places.ClueImage, LocationPositions: []int{2}},
	}
	if err := ValidateTurn(3, set); err != nil {
		t.Errorf("image clue counted toward coverage: %v", err)
	}
}

func TestValidateTurnDuplicatePosition(t *testing.T) {
	// Two clues on position 1, none on 3.
	set := []places.Clue{positioned(1), positioned(1), positioned(2)}
	err := ValidateTurn(2, set)
	if !errors.Is(err, ErrDistributionInvalid) {
		t.Fatalf("err = %v, want ErrDistributionInvalid", err)
	}
}

func TestValidateTurnMissingPosition(t *testing.T) {
	set := []places.Clue{positioned(1), positioned(2)}
	if err := ValidateTurn(5, set); !errors.Is(err, ErrDistributionInvalid) {
		t.Fatalf("err = %v, want ErrDistributionInvalid", err)
	}
}

func TestValidateTurnSkipsUncoveredTurns(t *testing.T) {
	set := []places.Clue{positioned(1), positioned(1)}
	if err := ValidateTurn(1, set); err != nil {
		t.Errorf("turn 1 should not be validated: %v", err)
	}
	if err := ValidateTurn(4, set); err != nil {
		t.Errorf("turn 4 should not be position-validated: %v", err)
	}
}

func geoPairs() ([3]geo.Pair, [3]geo.Pair) {
	distances := [3]geo.Pair{
		{A: 1, B: 2, Value: 9560},
		{A: 1, B: 3, Value: 10160},
		{A: 2, B: 3, Value: 15480},
	}
	timeDiffs := [3]geo.Pair{
		{A: 1, B: 2, Value: 9},
		{A: 1, B: 3, Value: 5},
		{A: 2, B: 3, Value: 14},
	}
	return distances, timeDiffs
}

func geoClue(ct places.ClueType, a, b int) places.Clue {
	return places.Clue{
		Type:    ct,
		Content: "the villain travelled rather far",
		Between: &places.PositionPair{A: a, B: b},
	}
}

func TestRepairGeoCluesOverwritesContent(t *testing.T) {
	distances, timeDiffs := geoPairs()
	set := []places.Clue{
		geoClue(places.ClueDistance, 1, 2),
		geoClue(places.ClueDistance, 1, 3),
		geoClue(places.ClueDistance, 2, 3),
		geoClue(places.ClueTimeDiff, 1, 2),
		geoClue(places.ClueTimeDiff, 1, 3),
		geoClue(places.ClueTimeDiff, 2, 3),
	}

	if err := RepairGeoClues(set, distances, timeDiffs); err != nil {
		t.Fatalf("repair: %v", err)
	}

	// Round-trip equality with the precomputed values, not approximation.
	if set[0].Content != "9560 km (5940 mi)" {
		t.Errorf("distance content = %q", set[0].Content)
	}
	if set[0].Data == nil || set[0].Data.DistanceKm != 9560 || set[0].Data.DistanceMi != 5940 {
		t.Errorf("distance data = %+v", set[0].Data)
	}
	if set[3].Content != "9 hours" {
		t.Errorf("time content = %q", set[3].Content)
	}
	if set[4].Data == nil || set[4].Data.TimeDiffHours != 5 {
		t.Errorf("time data = %+v", set[4].Data)
	}
}

func TestRepairGeoCluesMissingPair(t *testing.T) {
	distances, timeDiffs := geoPairs()
	set := []places.Clue{
		geoClue(places.ClueDistance, 1, 2),
		geoClue(places.ClueDistance, 1, 3),
		geoClue(places.ClueTimeDiff, 1, 2),
		geoClue(places.ClueTimeDiff, 1, 3),
		geoClue(places.ClueTimeDiff, 2, 3),
	}

	if err := RepairGeoClues(set, distances, timeDiffs); !errors.Is(err, ErrDistributionInvalid) {
		t.Fatalf("err = %v, want ErrDistributionInvalid", err)
	}
}

func TestRepairGeoCluesDuplicatePair(t *testing.T) {
	distances, timeDiffs := geoPairs()
	set := []places.Clue{
		geoClue(places.ClueDistance, 1, 2),
		geoClue(places.ClueDistance, 1, 2),
		geoClue(places.ClueDistance, 2, 3),
		geoClue(places.ClueTimeDiff, 1, 2),
		geoClue(places.ClueTimeDiff, 1, 3),
		geoClue(places.ClueTimeDiff, 2, 3),
	}

	if err := RepairGeoClues(set, distances, timeDiffs); !errors.Is(err, ErrDistributionInvalid) {
		t.Fatalf("err = %v, want ErrDistributionInvalid", err)
	}
}

func TestRepairGeoCluesNoPair(t *testing.T) {
	distances, timeDiffs := geoPairs()
	set := []places.Clue{{Type: places.ClueDistance, Content: "c"}}

	if err := RepairGeoClues(set, distances, timeDiffs); !errors.Is(err, ErrDistributionInvalid) {
		t.Fatalf("err = %v, want ErrDistributionInvalid", err)
	}
}
