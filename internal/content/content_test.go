package content

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dev-zuma/places-sub000/internal/genai"
	"github.com/dev-zuma/places-sub000/internal/geo"
	"github.com/dev-zuma/places-sub000/internal/places"
)

// fakeCompleter returns a canned response or error for every call.
type fakeCompleter struct {
	text string
	err  error
}

func (f *fakeCompleter) Complete(_ context.Context, _ []genai.Message, _ float64, _ bool) (string, error) {
	return f.text, f.err
}

func validCoreJSON(t *testing.T, mutate func(m map[string]any)) string {
	t.Helper()
	m := map[string]any{
		"villain": map[string]any{
			"name": "Dr. Meridian", "title": "The Map Thief", "gender": "female",
			"age": "40s", "race": "", "ethnicity": "", "distinctiveFeature": "monocle",
			"clothing": "red jacket and blue jeans",
		},
		"case": map[string]any{
			"title": "The Vanishing Lanterns", "crimeSummary": "Festival lanterns stolen.",
			"completionMessage": "Case closed!",
		},
		"locations": []any{
			map[string]any{"name": "London", "country": "United Kingdom", "lat": 51.5074, "lon": -0.1278, "timezoneOffset": 0.0, "landmarks": []any{"Big Ben"}},
			map[string]any{"name": "Tokyo", "country": "Japan", "lat": 35.6762, "lon": 139.6503, "timezoneOffset": 9.0, "landmarks": []any{"Tokyo Tower"}},
			map[string]any{"name": "Lima", "country": "Peru", "lat": -12.0464, "lon": -77.0428, "timezoneOffset": -5.0, "landmarks": []any{"Plaza Mayor"}},
		},
		"finalLocation": map[string]any{
			"name": "Hoi An", "country": "Vietnam", "lat": 15.8801, "lon": 108.338,
			"reasoning": "Lantern capital.", "connections": []any{"a", "b", "c"},
		},
		"imagePlan": []any{
			map[string]any{"turn": 2, "obscurity": "medium", "evidence": "belongings"},
			map[string]any{"turn": 3, "obscurity": "obscured", "evidence": "shadow"},
		},
	}
	if mutate != nil {
		mutate(m)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(raw)
}

func TestGenerateCore(t *testing.T) {
	a := NewAdapter(&fakeCompleter{text: validCoreJSON(t, nil)})

	core, err := a.GenerateCore(context.Background(), Context{Theme: "lanterns", Trait: "female, 40s"})
	if err != nil {
		t.Fatalf("generate core: %v", err)
	}
	if core.Villain.Name != "Dr. Meridian" {
		t.Errorf("villain name = %q", core.Villain.Name)
	}
	for i, loc := range core.Locations {
		if loc.Position != i+1 {
			t.Errorf("location %d position = %d", i, loc.Position)
		}
	}
	if core.ImagePlan[0].Turn != 2 || core.ImagePlan[1].Turn != 3 {
		t.Errorf("image plan turns = %d, %d, want 2, 3", core.ImagePlan[0].Turn, core.ImagePlan[1].Turn)
	}
}

func TestGenerateCoreMissingLocations(t *testing.T) {
	a := NewAdapter(&fakeCompleter{text: validCoreJSON(t, func(m map[string]any) {
		delete(m, "locations")
	})})

	_, err := a.GenerateCore(context.Background(), Context{Theme: "lanterns"})
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("err = %v, want ErrContractViolation", err)
	}
}

func TestGenerateCoreWrongLocationCount(t *testing.T) {
	a := NewAdapter(&fakeCompleter{text: validCoreJSON(t, func(m map[string]any) {
		locs := m["locations"].([]any)
		m["locations"] = locs[:2]
	})})

	_, err := a.GenerateCore(context.Background(), Context{})
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("err = %v, want ErrContractViolation", err)
	}
}

func TestGenerateCoreServiceDown(t *testing.T) {
	a := NewAdapter(&fakeCompleter{err: errors.New("connection refused")})

	_, err := a.GenerateCore(context.Background(), Context{})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestGenerateCoreFencedResponse(t *testing.T) {
	a := NewAdapter(&fakeCompleter{text: "```json\n" + validCoreJSON(t, nil) + "\n```"})

	if _, err := a.GenerateCore(context.Background(), Context{}); err != nil {
		t.Fatalf("generate core with fenced response: %v", err)
	}
}

func TestDiversifyThemesFallbackOnFailure(t *testing.T) {
	a := NewAdapter(&fakeCompleter{err: errors.New("service down")})

	themes := a.DiversifyThemes(context.Background(), 3, nil, "")
	if len(themes) != 3 {
		t.Fatalf("got %d fallback themes, want 3", len(themes))
	}
}

func TestDiversifyThemesDedupes(t *testing.T) {
	a := NewAdapter(&fakeCompleter{text: `{"themes":["stolen gems","Stolen Gems","missing maps"]}`})

	themes := a.DiversifyThemes(context.Background(), 1, []string{"missing maps"}, "")
	if len(themes) != 1 || themes[0] != "stolen gems" {
		t.Errorf("themes = %v, want [stolen gems]", themes)
	}
}

func TestDiversifyThemesTopsUpShortfall(t *testing.T) {
	a := NewAdapter(&fakeCompleter{text: `{"themes":["stolen gems"]}`})

	themes := a.DiversifyThemes(context.Background(), 3, nil, "")
	if len(themes) != 3 {
		t.Fatalf("themes = %v, want 3", themes)
	}
	if themes[0] != "stolen gems" {
		t.Errorf("themes[0] = %q, want the service's theme kept first", themes[0])
	}
	seen := make(map[string]bool)
	for _, th := range themes {
		if seen[th] {
			t.Errorf("duplicate theme %q", th)
		}
		seen[th] = true
	}
}

func TestGenerateTurnClues(t *testing.T) {
	resp := `{"turns":[
		{"turn":1,"narrative":"n1","clues":[{"type":"theme","content":"c"}]},
		{"turn":2,"narrative":"n2","clues":[{"type":"climate","content":"c","locationPositions":[1]},{"type":"climate","content":"c","locationPositions":[2]},{"type":"terrain","content":"c","locationPositions":[3]}]},
		{"turn":3,"narrative":"n3","clues":[{"type":"landmark","content":"c","locationPositions":[1]},{"type":"landmark","content":"c","locationPositions":[2]},{"type":"culture","content":"c","locationPositions":[3]}]},
		{"turn":4,"narrative":"n4","clues":[{"type":"distance","content":"c","between":[2,1]}]},
		{"turn":5,"narrative":"n5","clues":[{"type":"country","content":"c","locationPositions":[1]},{"type":"country","content":"c","locationPositions":[2]},{"type":"country","content":"c","locationPositions":[3]}]}
	]}`
	a := NewAdapter(&fakeCompleter{text: resp})

	turns, err := a.GenerateTurnClues(context.Background(), &Core{}, [3]geo.Pair{}, [3]geo.Pair{})
	if err != nil {
		t.Fatalf("generate turn clues: %v", err)
	}
	if len(turns) != 5 {
		t.Fatalf("got %d turns", len(turns))
	}
	// Between pairs are normalized A < B and drop locationPositions.
	between := turns[3].Clues[0].Between
	if between == nil || between.A != 1 || between.B != 2 {
		t.Errorf("between = %+v, want {1 2}", between)
	}
	if turns[3].Clues[0].LocationPositions != nil {
		t.Error("between clue kept locationPositions")
	}
}

func TestGenerateTurnCluesMissingTurn(t *testing.T) {
	a := NewAdapter(&fakeCompleter{text: `{"turns":[{"turn":1,"clues":[{"type":"theme","content":"c"}]}]}`})

	_, err := a.GenerateTurnClues(context.Background(), &Core{}, [3]geo.Pair{}, [3]geo.Pair{})
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("err = %v, want ErrContractViolation", err)
	}
}

func TestGenerateFinalPuzzle(t *testing.T) {
	a := NewAdapter(&fakeCompleter{text: `{"phrase":"City of lanterns","category":"Culture","fact":"Hoi An's old town is a UNESCO site."}`})

	puzzle, err := a.GenerateFinalPuzzle(context.Background(), places.FinalLocation{Name: "Hoi An", Country: "Vietnam"}, "lanterns", [3]places.Location{})
	if err != nil {
		t.Fatalf("generate puzzle: %v", err)
	}
	if puzzle.Phrase != "City of lanterns" {
		t.Errorf("phrase = %q", puzzle.Phrase)
	}
	if len(puzzle.FlagColors) != 3 {
		t.Errorf("flag colors = %v", puzzle.FlagColors)
	}
}

func TestGenerateFinalPuzzleTrimsLongPhrase(t *testing.T) {
	a := NewAdapter(&fakeCompleter{text: `{"phrase":"An exceedingly long educational phrase","category":"c","fact":"f"}`})

	puzzle, err := a.GenerateFinalPuzzle(context.Background(), places.FinalLocation{Country: "Atlantis"}, "", [3]places.Location{})
	if err != nil {
		t.Fatalf("generate puzzle: %v", err)
	}
	if len(puzzle.Phrase) > 25 {
		t.Errorf("phrase %q longer than 25 chars", puzzle.Phrase)
	}
}

func TestGenerateFinalPuzzleTruncatesOnRuneBoundary(t *testing.T) {
	// 30 runes, 60 bytes: truncation must not cut a rune in half.
	a := NewAdapter(&fakeCompleter{text: `{"phrase":"` + strings.Repeat("é", 30) + `","category":"c","fact":"f"}`})

	puzzle, err := a.GenerateFinalPuzzle(context.Background(), places.FinalLocation{Country: "Atlantis"}, "", [3]places.Location{})
	if err != nil {
		t.Fatalf("generate puzzle: %v", err)
	}
	if !utf8.ValidString(puzzle.Phrase) {
		t.Errorf("phrase %q is not valid UTF-8", puzzle.Phrase)
	}
	if n := utf8.RuneCountInString(puzzle.Phrase); n != 25 {
		t.Errorf("phrase has %d runes, want 25", n)
	}

	// 13 runes is within the limit even though it is 26 bytes.
	short := strings.Repeat("é", 13)
	a = NewAdapter(&fakeCompleter{text: `{"phrase":"` + short + `","category":"c","fact":"f"}`})
	puzzle, err = a.GenerateFinalPuzzle(context.Background(), places.FinalLocation{Country: "Atlantis"}, "", [3]places.Location{})
	if err != nil {
		t.Fatalf("generate puzzle: %v", err)
	}
	if puzzle.Phrase != short {
		t.Errorf("phrase = %q, want %q untouched", puzzle.Phrase, short)
	}
}

func TestCluePromptCarriesImagePlan(t *testing.T) {
	item := "green t-shirt with tree logo"
	core := &Core{CaseTitle: "The Vanishing Canopy"}
	core.ImagePlan = [2]places.ImagePlacement{
		{Turn: 2, Obscurity: places.ObscurityMedium, Evidence: places.EvidenceBelongings, Item: item},
		{Turn: 3, Obscurity: places.ObscurityObscured, Evidence: places.EvidenceShadow, Item: item},
	}

	prompt := buildCluePrompt(core, [3]geo.Pair{}, [3]geo.Pair{})
	if !strings.Contains(prompt, item) {
		t.Error("clue prompt does not name the resolved evidence item")
	}
	if !strings.Contains(prompt, "turn 2") || !strings.Contains(prompt, "turn 3") {
		t.Error("clue prompt does not list the planned image turns")
	}
	if !strings.Contains(clueSystemPrompt, `"image" clue`) {
		t.Error("system prompt does not ask for image clues on planned turns")
	}
}
