package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/dev-zuma/places-sub000/internal/content"
	"github.com/dev-zuma/places-sub000/internal/geo"
	"github.com/dev-zuma/places-sub000/internal/images"
	"github.com/dev-zuma/places-sub000/internal/places"
)

// memStore records every persisted phase in memory.
type memStore struct {
	mu        sync.Mutex
	rec       places.GenerationRecord
	game      *places.Game
	locations *[3]places.Location
	final     *places.FinalLocation
	turns     []places.Turn
	locImages map[int]places.LocationImage
}

func newMemStore() *memStore {
	return &memStore{locImages: make(map[int]places.LocationImage)}
}

func (m *memStore) UpsertGenerationRecord(_ context.Context, rec places.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	return nil
}

func (m *memStore) SaveContentPhase(_ context.Context, game places.Game, rec places.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.game = &game
	m.rec = rec
	return nil
}

func (m *memStore) SaveLocationsPhase(_ context.Context, _ string, locs [3]places.Location, final places.FinalLocation, rec places.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = &locs
	m.final = &final
	m.rec = rec
	return nil
}

func (m *memStore) SaveTurnsPhase(_ context.Context, _ string, turns []places.Turn, rec places.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = turns
	m.rec = rec
	return nil
}

func (m *memStore) SaveVillainImage(_ context.Context, _ string, url string, rec places.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.game.Villain.ImageURL = url
	m.rec = rec
	return nil
}

func (m *memStore) SaveLocationImage(_ context.Context, _ string, position int, img places.LocationImage, rec places.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locImages[position] = img
	m.rec = rec
	return nil
}

func testCore() *content.Core {
	core := &content.Core{
		Villain: places.Villain{
			Name: "Dr. Meridian", Clothing: "red jacket and blue jeans",
		},
		CaseTitle:    "The Vanishing Lanterns",
		CrimeSummary: "Lanterns stolen worldwide.",
		Final:        places.FinalLocation{Name: "Hoi An", Country: "Vietnam", Lat: 15.88, Lon: 108.33},
		ImagePlan: [2]places.ImagePlacement{
			{Turn: 2, Obscurity: places.ObscurityMedium, Evidence: places.EvidenceBelongings},
			{Turn: 3, Obscurity: places.ObscurityObscured, Evidence: places.EvidenceShadow},
		},
	}
	core.Locations = [3]places.Location{
		{Position: 1, Name: "London", Country: "United Kingdom", Lat: 51.5074, Lon: -0.1278, TimezoneOffset: 0},
		{Position: 2, Name: "Tokyo", Country: "Japan", Lat: 35.6762, Lon: 139.6503, TimezoneOffset: 9},
		{Position: 3, Name: "Lima", Country: "Peru", Lat: -12.0464, Lon: -77.0428, TimezoneOffset: -5},
	}
	return core
}

func testTurns(distances, timeDiffs [3]geo.Pair) []places.Turn {
	positioned := func(ct places.ClueType, pos int) places.Clue {
		return places.Clue{Type: ct, Content: "c", LocationPositions: []int{pos}}
	}
	geoClue := func(ct places.ClueType, a, b int) places.Clue {
		return places.Clue{Type: ct, Content: "service words", Between: &places.PositionPair{A: a, B: b}}
	}
	return []places.Turn{
		{Number: 1, Narrative: "n", Clues: []places.Clue{{Type: places.ClueTheme, Content: "c"}}},
		{Number: 2, Clues: []places.Clue{
			positioned(places.ClueClimate, 1), positioned(places.ClueClimate, 2), positioned(places.ClueTerrain, 3),
			{Type: places.ClueImage, Content: "look closely"},
		}},
		{Number: 3, Narrative: "n", Clues: []places.Clue{
			positioned(places.ClueLandmark, 1), positioned(places.ClueLandmark, 2), positioned(places.ClueCulture, 3),
		}},
		{Number: 4, Narrative: "n", Clues: []places.Clue{
			geoClue(places.ClueDistance, 1, 2), geoClue(places.ClueDistance, 1, 3), geoClue(places.ClueDistance, 2, 3),
			geoClue(places.ClueTimeDiff, 1, 2), geoClue(places.ClueTimeDiff, 1, 3), geoClue(places.ClueTimeDiff, 2, 3),
		}},
		{Number: 5, Narrative: "n", Clues: []places.Clue{
			positioned(places.ClueCountry, 1), positioned(places.ClueCountry, 2), positioned(places.ClueCountry, 3),
		}},
	}
}

// fakeContent returns fixed core content and well-formed turns, unless a
// specific call is told to fail.
type fakeContent struct {
	coreErr   error
	cluesErr  error
	puzzleErr error
	badTurns  bool
}

func (f *fakeContent) GenerateCore(_ context.Context, gc content.Context) (*content.Core, error) {
	if f.coreErr != nil {
		return nil, f.coreErr
	}
	if gc.Trait == "" {
		return nil, errors.New("trait not pre-selected")
	}
	return testCore(), nil
}

func (f *fakeContent) GenerateTurnClues(_ context.Context, _ *content.Core, distances, timeDiffs [3]geo.Pair) ([]places.Turn, error) {
	if f.cluesErr != nil {
		return nil, f.cluesErr
	}
	turns := testTurns(distances, timeDiffs)
	if f.badTurns {
		// Two clues on position 1, none on 3.
		turns[1].Clues[2].LocationPositions = []int{1}
	}
	return turns, nil
}

func (f *fakeContent) GenerateFinalPuzzle(_ context.Context, final places.FinalLocation, _ string, _ [3]places.Location) (places.Puzzle, error) {
	if f.puzzleErr != nil {
		return places.Puzzle{}, f.puzzleErr
	}
	return places.Puzzle{Phrase: "City of lanterns", Category: "Culture", Fact: "f", FlagColors: content.FlagColors(final.Country)}, nil
}

type fakeImages struct {
	portraitErr error
	locationErr error
}

func (f *fakeImages) VillainPortrait(_ context.Context, gameID string, _ places.Villain) (string, error) {
	if f.portraitErr != nil {
		return "", f.portraitErr
	}
	return "/images/" + gameID + "/villain-portrait.png", nil
}

func (f *fakeImages) LocationImage(_ context.Context, gameID string, loc places.Location, _ places.ImagePlacement) (string, error) {
	if f.locationErr != nil {
		return "", f.locationErr
	}
	return fmt.Sprintf("/images/%s/location-%d.png", gameID, loc.Position), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func run(t *testing.T, fc *fakeContent, fi *fakeImages) (*memStore, error) {
	t.Helper()
	store := newMemStore()
	o := New(store, fc, fi, discardLogger())
	err := o.Generate(context.Background(), Request{
		GameID:    "g1",
		Theme:     "missing festival lanterns",
		Objective: places.ObjectiveHideout,
	})
	return store, err
}

func TestGenerateHappyPath(t *testing.T) {
	store, err := run(t, &fakeContent{}, &fakeImages{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if store.rec.Status != places.StatusCompleted {
		t.Errorf("status = %s, want completed", store.rec.Status)
	}
	if store.rec.CompletedSteps != store.rec.TotalSteps {
		t.Errorf("completed %d of %d steps", store.rec.CompletedSteps, store.rec.TotalSteps)
	}
	if store.game == nil || store.game.Villain.Name != "Dr. Meridian" {
		t.Fatalf("game not persisted: %+v", store.game)
	}
	if store.game.Villain.ImageURL == "" {
		t.Error("villain portrait not persisted")
	}
	if store.locations == nil || store.final == nil {
		t.Fatal("locations phase not persisted")
	}
	if store.final.Puzzle.Phrase == "" || len(store.final.Puzzle.FlagColors) != 3 {
		t.Errorf("final puzzle = %+v", store.final.Puzzle)
	}
	if len(store.turns) != 5 {
		t.Fatalf("persisted %d turns", len(store.turns))
	}
	// Image plan turns 2 and 3 image locations 2 and 3.
	if _, ok := store.locImages[2]; !ok {
		t.Error("location 2 image missing")
	}
	if _, ok := store.locImages[3]; !ok {
		t.Error("location 3 image missing")
	}

	// Four phases, each with start and end timestamps.
	if len(store.rec.Phases) != 4 {
		t.Fatalf("recorded %d phases", len(store.rec.Phases))
	}
	for _, p := range store.rec.Phases {
		if p.EndedAt == nil {
			t.Errorf("phase %d has no end timestamp", p.Phase)
		}
	}
}

func TestGenerateTurn4CarriesAuthoritativeValues(t *testing.T) {
	store, err := run(t, &fakeContent{}, &fakeImages{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var points [3]geo.Point
	var offsets [3]float64
	for i, loc := range store.locations {
		points[i] = geo.Point{Lat: loc.Lat, Lon: loc.Lon}
		offsets[i] = loc.TimezoneOffset
	}
	distances, _ := geo.PairwiseDistances(points)
	timeDiffs := geo.PairwiseTimeDiffs(offsets)

	turn4 := store.turns[3]
	var distClues, timeClues int
	for _, c := range turn4.Clues {
		switch c.Type {
		case places.ClueDistance:
			distClues++
			for _, p := range distances {
				if p.A == c.Between.A && p.B == c.Between.B {
					if c.Data == nil || c.Data.DistanceKm != int(p.Value) {
						t.Errorf("pair {%d,%d} km = %+v, want %d", p.A, p.B, c.Data, int(p.Value))
					}
				}
			}
		case places.ClueTimeDiff:
			timeClues++
			for _, p := range timeDiffs {
				if p.A == c.Between.A && p.B == c.Between.B {
					if c.Data == nil || c.Data.TimeDiffHours != p.Value {
						t.Errorf("pair {%d,%d} hours = %+v, want %v", p.A, p.B, c.Data, p.Value)
					}
				}
			}
		}
	}
	if distClues != 3 || timeClues != 3 {
		t.Errorf("turn 4 has %d distance and %d time clues", distClues, timeClues)
	}
}

func TestGenerateContentFailure(t *testing.T) {
	store, err := run(t, &fakeContent{coreErr: content.ErrContractViolation}, &fakeImages{})

	var perr *PhaseError
	if !errors.As(err, &perr) || perr.Phase != 1 {
		t.Fatalf("err = %v, want phase-1 PhaseError", err)
	}
	if store.rec.Status != places.StatusFailed {
		t.Errorf("status = %s, want failed", store.rec.Status)
	}
	if store.rec.Error == "" {
		t.Error("record has no error message")
	}
	// No entity writes happened.
	if store.game != nil || store.locations != nil || store.turns != nil {
		t.Error("failed phase must not persist entities")
	}
}

func TestGenerateInvalidDistributionFailsPhase3(t *testing.T) {
	store, err := run(t, &fakeContent{badTurns: true}, &fakeImages{})

	var perr *PhaseError
	if !errors.As(err, &perr) || perr.Phase != 3 {
		t.Fatalf("err = %v, want phase-3 PhaseError", err)
	}
	if store.turns != nil {
		t.Error("invalid turn set must not be persisted")
	}
	// Phases 1 and 2 stay committed.
	if store.game == nil || store.locations == nil {
		t.Error("earlier phases should remain persisted")
	}
}

func TestGenerateImageFailureStillCompletes(t *testing.T) {
	store, err := run(t, &fakeContent{}, &fakeImages{locationErr: images.ErrImagePipeline})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if store.rec.Status != places.StatusCompleted {
		t.Errorf("status = %s, want completed despite image failure", store.rec.Status)
	}
	if len(store.locImages) != 0 {
		t.Errorf("failed images persisted: %v", store.locImages)
	}
	if store.game.Villain.ImageURL == "" {
		t.Error("portrait should still have been stored")
	}
	if len(store.rec.ImageTimings) != 3 {
		t.Errorf("recorded %d image timings, want 3", len(store.rec.ImageTimings))
	}
}

func TestGenerateFallbackNarrative(t *testing.T) {
	store, err := run(t, &fakeContent{}, &fakeImages{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// testTurns leaves turn 2's narrative empty.
	if store.turns[1].Narrative == "" {
		t.Error("empty narrative not replaced")
	}
	if !strings.Contains(store.turns[1].Narrative, "villain") {
		t.Errorf("unexpected fallback narrative %q", store.turns[1].Narrative)
	}
}

func TestGenerateAttachesImagePlanToImageClues(t *testing.T) {
	store, err := run(t, &fakeContent{}, &fakeImages{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var imageClue *places.Clue
	for i, c := range store.turns[1].Clues {
		if c.Type == places.ClueImage {
			imageClue = &store.turns[1].Clues[i]
		}
	}
	if imageClue == nil {
		t.Fatal("turn 2 image clue missing")
	}
	if imageClue.Data == nil || imageClue.Data.Obscurity != string(places.ObscurityMedium) {
		t.Errorf("image clue data = %+v", imageClue.Data)
	}
}

func TestGenerateSynthesizesMissingImageClue(t *testing.T) {
	store, err := run(t, &fakeContent{}, &fakeImages{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// The plan images turn 3 but the service returned no image clue there.
	var imageClue *places.Clue
	for i, c := range store.turns[2].Clues {
		if c.Type == places.ClueImage {
			imageClue = &store.turns[2].Clues[i]
		}
	}
	if imageClue == nil {
		t.Fatal("turn 3 image clue not synthesized")
	}
	if imageClue.Data == nil || imageClue.Data.Evidence != string(places.EvidenceShadow) {
		t.Errorf("image clue data = %+v", imageClue.Data)
	}
	// The clothing resolves to "jacket"; the synthesized content must name it.
	if !strings.Contains(imageClue.Content, "jacket") {
		t.Errorf("content %q does not name the evidence item", imageClue.Content)
	}
	if imageClue.OrderIndex != len(store.turns[2].Clues)-1 {
		t.Errorf("order index = %d, want last", imageClue.OrderIndex)
	}
}
