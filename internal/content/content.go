// Package content adapts the generative text service to the four generation
// tasks of the pipeline: theme diversification, core game content, turn
// clues, and the final-location puzzle. Every response is parsed against a
// fixed shape and rejected on mismatch — the service's output is untrusted
// input, not a result.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dev-zuma/places-sub000/internal/genai"
	"github.com/dev-zuma/places-sub000/internal/geo"
	"github.com/dev-zuma/places-sub000/internal/places"
)

var (
	// ErrContractViolation means the service's JSON response is structurally
	// wrong: missing keys, wrong array lengths, wrong types.
	ErrContractViolation = errors.New("generation contract violation")

	// ErrGenerationFailed wraps network or service-level failures on a
	// required generation call.
	ErrGenerationFailed = errors.New("generation failed")
)

// Completer is the text-generation dependency, satisfied by *genai.Client.
type Completer interface {
	Complete(ctx context.Context, messages []genai.Message, temperature float64, jsonMode bool) (string, error)
}

// Adapter builds prompts, invokes the service, and validates responses.
type Adapter struct {
	client Completer
}

// NewAdapter creates an Adapter over the given completer.
func NewAdapter(client Completer) *Adapter {
	return &Adapter{client: client}
}

// Context carries the caller-supplied inputs to core content generation.
type Context struct {
	Theme      string
	Difficulty string
	Category   string
	Objective  places.Objective
	// Trait is the pre-selected villain demographic descriptor. The caller
	// chooses it; the service must honor it verbatim.
	Trait string
	// AvoidCities lists location names already used by recent games, so new
	// games spread across the map.
	AvoidCities []string
}

// Core is the phase-1 output: everything except turn clues and images.
type Core struct {
	Villain           places.Villain
	CaseTitle         string
	CrimeSummary      string
	CompletionMessage string
	Locations         [3]places.Location
	Final             places.FinalLocation
	ImagePlan         [2]places.ImagePlacement
}

// DiversifyThemes asks the service for n fresh theme ideas, avoiding the
// given recently-used themes. This call is quality-of-life only: on any
// failure it falls back to the static pool instead of returning an error.
func (a *Adapter) DiversifyThemes(ctx context.Context, n int, avoid []string, hint string) []string {
	text, err := a.client.Complete(ctx, []genai.Message{
		{Role: "system", Content: themeSystemPrompt},
		{Role: "user", Content: buildThemePrompt(n, avoid, hint)},
	}, 1.0, true)
	if err != nil {
		return FallbackThemes(n, avoid)
	}

	var resp struct {
		Themes []string `json:"themes"`
	}
	if err := genai.ParseJSON(text, &resp); err != nil {
		return FallbackThemes(n, avoid)
	}

	themes := dedupe(resp.Themes, avoid)
	if len(themes) > n {
		themes = themes[:n]
	}
	// The service may return fewer usable themes than asked for; top up the
	// shortfall from the static pool so callers still get n where the pool
	// allows.
	if len(themes) < n {
		exclude := append(append([]string{}, avoid...), themes...)
		themes = append(themes, FallbackThemes(n-len(themes), exclude)...)
	}
	return themes
}

func dedupe(themes, avoid []string) []string {
	seen := make(map[string]bool, len(avoid))
	for _, t := range avoid {
		seen[strings.ToLower(strings.TrimSpace(t))] = true
	}
	var out []string
	for _, t := range themes {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// GenerateCore runs the core content call and validates its shape.
func (a *Adapter) GenerateCore(ctx context.Context, gc Context) (*Core, error) {
	text, err := a.client.Complete(ctx, []genai.Message{
		{Role: "system", Content: coreSystemPrompt},
		{Role: "user", Content: buildCorePrompt(gc)},
	}, 0.9, true)
	if err != nil {
		return nil, fmt.Errorf("%w: core content: %v", ErrGenerationFailed, err)
	}

	var resp coreResponse
	if err := genai.ParseJSON(text, &resp); err != nil {
		return nil, fmt.Errorf("%w: core content: %v", ErrContractViolation, err)
	}
	return resp.validate()
}

// GenerateTurnClues runs the turn-clue call. The precomputed distances and
// time differentials are injected into the prompt so the service echoes them
// back instead of inventing its own arithmetic; the clue validator then
// overwrites any value it got wrong anyway.
func (a *Adapter) GenerateTurnClues(ctx context.Context, core *Core, distances [3]geo.Pair, timeDiffs [3]geo.Pair) ([]places.Turn, error) {
	text, err := a.client.Complete(ctx, []genai.Message{
		{Role: "system", Content: clueSystemPrompt},
		{Role: "user", Content: buildCluePrompt(core, distances, timeDiffs)},
	}, 0.8, true)
	if err != nil {
		return nil, fmt.Errorf("%w: turn clues: %v", ErrGenerationFailed, err)
	}

	var resp clueResponse
	if err := genai.ParseJSON(text, &resp); err != nil {
		return nil, fmt.Errorf("%w: turn clues: %v", ErrContractViolation, err)
	}
	return resp.validate()
}

// maxPuzzlePhraseLen bounds the puzzle phrase, in characters.
const maxPuzzlePhraseLen = 25

// GenerateFinalPuzzle runs the final-puzzle call and combines it with the
// local flag-color lookup.
func (a *Adapter) GenerateFinalPuzzle(ctx context.Context, final places.FinalLocation, theme string, locations [3]places.Location) (places.Puzzle, error) {
	text, err := a.client.Complete(ctx, []genai.Message{
		{Role: "system", Content: puzzleSystemPrompt},
		{Role: "user", Content: buildPuzzlePrompt(final, theme, locations)},
	}, 0.7, true)
	if err != nil {
		return places.Puzzle{}, fmt.Errorf("%w: final puzzle: %v", ErrGenerationFailed, err)
	}

	var resp struct {
		Phrase   string `json:"phrase"`
		Category string `json:"category"`
		Fact     string `json:"fact"`
	}
	if err := genai.ParseJSON(text, &resp); err != nil {
		return places.Puzzle{}, fmt.Errorf("%w: final puzzle: %v", ErrContractViolation, err)
	}
	if resp.Phrase == "" || resp.Category == "" || resp.Fact == "" {
		return places.Puzzle{}, fmt.Errorf("%w: final puzzle: missing phrase, category, or fact", ErrContractViolation)
	}
	// Truncate by rune, not byte, or a multibyte phrase gets cut mid-rune.
	if r := []rune(resp.Phrase); len(r) > maxPuzzlePhraseLen {
		resp.Phrase = strings.TrimSpace(string(r[:maxPuzzlePhraseLen]))
	}

	return places.Puzzle{
		Phrase:     resp.Phrase,
		Category:   resp.Category,
		Fact:       resp.Fact,
		FlagColors: FlagColors(final.Country),
	}, nil
}
