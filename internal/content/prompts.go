package content

import (
	"fmt"
	"strings"

	"github.com/dev-zuma/places-sub000/internal/geo"
	"github.com/dev-zuma/places-sub000/internal/places"
)

const themeSystemPrompt = `You invent case themes for a children's geography-detective game. Themes are short noun phrases naming something a villain could steal or sabotage around the world (e.g. "stolen coral reef samples", "vanishing glacier ice cores"). Educational, concrete, age 8-12 appropriate.`

func buildThemePrompt(n int, avoid []string, hint string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d new case themes.\n", n)
	if hint != "" {
		fmt.Fprintf(&b, "Player interest hint: %s\n", hint)
	}
	if len(avoid) > 0 {
		fmt.Fprintf(&b, "Do NOT reuse or closely paraphrase these recent themes:\n- %s\n", strings.Join(avoid, "\n- "))
	}
	b.WriteString(`Respond with ONLY valid JSON: {"themes": ["theme one", "theme two"]}`)
	return b.String()
}

const coreSystemPrompt = `You write case content for a children's geography-detective game. Players chase a villain across three real-world crime-scene locations, then deduce a fourth final location.

## Rules
1. Locations are real cities in three different countries on at least two continents, geographically spread out.
2. Coordinates must be the real decimal-degree coordinates of each city, and timezoneOffset the city's standard UTC offset in hours (may be fractional).
3. The final location is a fourth real city, different country from the three crime scenes, connected to the theme.
4. The villain's demographic descriptor is given to you. Use it exactly as given. Do not substitute your own choice.
5. Clothing must be a concrete, visual outfit description (colors, garments) — it drives image generation.
6. Tone: playful mystery for ages 8-12. No violence, no real people.
7. The image plan has exactly 2 entries, for turns 2 and 3, each choosing an obscurity level (obscured, medium, clear) and a villain-evidence type (security_footage, belongings, reflection, shadow).`

func buildCorePrompt(gc Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a new case.\nTheme: %s\nDifficulty: %s\nCategory: %s\nFinal-location objective: %s\n", gc.Theme, gc.Difficulty, gc.Category, gc.Objective)
	fmt.Fprintf(&b, "Villain demographic descriptor (use verbatim): %s\n", gc.Trait)
	if len(gc.AvoidCities) > 0 {
		fmt.Fprintf(&b, "Avoid these overused cities: %s\n", strings.Join(gc.AvoidCities, ", "))
	}
	b.WriteString(`
Respond with ONLY valid JSON in this exact shape:
{
  "villain": {"name": "", "title": "", "gender": "", "age": "", "race": "", "ethnicity": "", "distinctiveFeature": "", "clothing": ""},
  "case": {"title": "", "crimeSummary": "", "completionMessage": ""},
  "locations": [
    {"name": "", "country": "", "lat": 0.0, "lon": 0.0, "timezoneOffset": 0.0, "landmarks": ["", "", ""]}
  ],
  "finalLocation": {"name": "", "country": "", "lat": 0.0, "lon": 0.0, "reasoning": "", "connections": ["", "", ""]},
  "imagePlan": [
    {"turn": 2, "obscurity": "medium", "evidence": "belongings"},
    {"turn": 3, "obscurity": "obscured", "evidence": "shadow"}
  ]
}
"locations" has exactly 3 entries. "connections" explains how each crime scene points to the final location.`)
	return b.String()
}

// Turn-5 policy: country clues teach specific, verifiable facts about each
// country but never name the country or its capital outright — the player
// deduces it. (The alternate maximize-specificity policy would name capitals
// and currencies directly; we deliberately keep the deduction.)
const clueSystemPrompt = `You write per-turn clues for a children's geography-detective game with three crime-scene locations (positions 1, 2, 3).

## Turn structure
- Turn 1: theme and pattern_recognition clues about the case as a whole. No locationPositions.
- Turn 2: exactly 3 location-scoped clues (climate, terrain, or landmark), one per position. Each clue has "locationPositions": [p] with one position. Cover positions 1, 2, 3 exactly once. Also exactly one "image" clue (no locationPositions) describing the crime-scene photo for this turn.
- Turn 3: exactly 3 location-scoped clues (landmark or culture), one per position, same coverage rule as turn 2. Also exactly one "image" clue, as in turn 2.
- Turn 4: exactly 3 distance clues and exactly 3 time_difference clues, one per location pair, using "between": [a, b]. Use EXACTLY the precomputed values given to you. Do not compute your own.
- Turn 5: exactly 3 country clues, one per position. Describe a specific, factual trait of the country (cuisine, language family, famous export, geography) WITHOUT naming the country or its capital city.

## Rules
1. Clue "content" is child-facing text; "description" is an optional teacher note.
2. Never reveal a city name before its turn-5 country clue era.
3. An "image" clue describes the photo for its turn in the image plan. Its content MUST name the villain-evidence item word for word as given — the generated photo shows exactly that object.
4. Tone: playful, educational, ages 8-12.`

func buildCluePrompt(core *Core, distances [3]geo.Pair, timeDiffs [3]geo.Pair) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Case: %s\nVillain: %s, wearing %s\n", core.CaseTitle, core.Villain.Name, core.Villain.Clothing)
	b.WriteString("Crime-scene locations:\n")
	for _, loc := range core.Locations {
		fmt.Fprintf(&b, "  %d. %s, %s (landmarks: %s)\n", loc.Position, loc.Name, loc.Country, strings.Join(loc.Landmarks, ", "))
	}

	b.WriteString("Image plan (each listed turn gets exactly one \"image\" clue):\n")
	for _, plan := range core.ImagePlan {
		fmt.Fprintf(&b, "  turn %d: %s evidence, item: %q (mention this item verbatim in the image clue)\n",
			plan.Turn, plan.Evidence, plan.Item)
	}

	b.WriteString("Precomputed distances (use these exact numbers in turn 4 distance clues):\n")
	for _, p := range distances {
		km := int(p.Value)
		fmt.Fprintf(&b, "  between %d and %d: %d km (%d mi)\n", p.A, p.B, km, geo.KmToMi(km))
	}
	b.WriteString("Precomputed time differences (use these exact numbers in turn 4 time_difference clues):\n")
	for _, p := range timeDiffs {
		fmt.Fprintf(&b, "  between %d and %d: %g hours\n", p.A, p.B, p.Value)
	}

	b.WriteString(`
Respond with ONLY valid JSON:
{
  "turns": [
    {"turn": 1, "narrative": "", "clues": [{"type": "theme", "content": ""}]},
    {"turn": 2, "narrative": "", "clues": [{"type": "climate", "content": "", "locationPositions": [1]}, {"type": "image", "content": ""}]},
    {"turn": 3, "narrative": "", "clues": [{"type": "landmark", "content": "", "locationPositions": [1]}, {"type": "image", "content": ""}]},
    {"turn": 4, "narrative": "", "clues": [{"type": "distance", "content": "", "between": [1, 2], "distanceKm": 0}, {"type": "time_difference", "content": "", "between": [1, 2], "timeDiffHours": 0}]},
    {"turn": 5, "narrative": "", "clues": [{"type": "country", "content": "", "locationPositions": [1]}]}
  ]
}
All 5 turns are required, each with a short narrative.`)
	return b.String()
}

const puzzleSystemPrompt = `You write the final deduction puzzle for a children's geography-detective game. The puzzle teaches one short educational phrase about the final location, a category hint, and one interesting fact. The phrase is at most 25 characters.`

func buildPuzzlePrompt(final places.FinalLocation, theme string, locations [3]places.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Final location: %s, %s\nCase theme: %s\n", final.Name, final.Country, theme)
	b.WriteString("Crime scenes already visited: ")
	names := make([]string, 0, 3)
	for _, loc := range locations {
		names = append(names, loc.Name)
	}
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(`
Respond with ONLY valid JSON: {"phrase": "", "category": "", "fact": ""}
"phrase" is at most 25 characters.`)
	return b.String()
}
