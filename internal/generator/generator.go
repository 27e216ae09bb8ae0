// Package generator sequences the four-phase game-generation pipeline:
// content, locations, turn clues, images. Each phase persists its output and
// progress atomically before the next begins, so a crash leaves the game in
// its last completed phase. A failed phase is terminal; retry means creating
// a new generation request.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dev-zuma/places-sub000/internal/clues"
	"github.com/dev-zuma/places-sub000/internal/content"
	"github.com/dev-zuma/places-sub000/internal/geo"
	"github.com/dev-zuma/places-sub000/internal/images"
	"github.com/dev-zuma/places-sub000/internal/places"
	"github.com/dev-zuma/places-sub000/internal/villain"
	"golang.org/x/sync/errgroup"
)

// PhaseError reports which phase failed and why. Its message is what the
// GenerationRecord exposes to polling clients.
type PhaseError struct {
	Phase int
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %d: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// Store is the persistence collaborator. Each Save method commits the
// phase's entity writes together with the record update in one transaction.
type Store interface {
	UpsertGenerationRecord(ctx context.Context, rec places.GenerationRecord) error
	SaveContentPhase(ctx context.Context, game places.Game, rec places.GenerationRecord) error
	SaveLocationsPhase(ctx context.Context, gameID string, locs [3]places.Location, final places.FinalLocation, rec places.GenerationRecord) error
	SaveTurnsPhase(ctx context.Context, gameID string, turns []places.Turn, rec places.GenerationRecord) error
	SaveVillainImage(ctx context.Context, gameID, url string, rec places.GenerationRecord) error
	SaveLocationImage(ctx context.Context, gameID string, position int, img places.LocationImage, rec places.GenerationRecord) error
}

// ContentAdapter is the generative-content collaborator.
type ContentAdapter interface {
	GenerateCore(ctx context.Context, gc content.Context) (*content.Core, error)
	GenerateTurnClues(ctx context.Context, core *content.Core, distances [3]geo.Pair, timeDiffs [3]geo.Pair) ([]places.Turn, error)
	GenerateFinalPuzzle(ctx context.Context, final places.FinalLocation, theme string, locations [3]places.Location) (places.Puzzle, error)
}

// ImagePipeline is the image-generation collaborator.
type ImagePipeline interface {
	VillainPortrait(ctx context.Context, gameID string, v places.Villain) (string, error)
	LocationImage(ctx context.Context, gameID string, loc places.Location, plan places.ImagePlacement) (string, error)
}

// Request is one game-generation request. The game row already exists in
// placeholder form when Generate runs.
type Request struct {
	GameID      string
	Theme       string
	Difficulty  string
	Category    string
	Objective   places.Objective
	AvoidCities []string
}

// Orchestrator runs generation requests. It is safe to run many concurrent
// Generate calls; each owns exactly one game aggregate.
type Orchestrator struct {
	store   Store
	content ContentAdapter
	images  ImagePipeline
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an Orchestrator.
func New(store Store, adapter ContentAdapter, pipeline ImagePipeline, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		content: adapter,
		images:  pipeline,
		logger:  logger,
		now:     time.Now,
	}
}

// Fixed step total so a polling client can render completedSteps/totalSteps.
const totalSteps = 20

const (
	stepsAfterContent   = 3
	stepsAfterLocations = 5
	stepsAfterTurns     = 10
)

var phaseLabels = map[int]string{
	1: "content",
	2: "locations",
	3: "turns",
	4: "images",
}

// fallbackNarratives fill in a turn whose narrative the service omitted,
// keyed by turn number. Never regenerated.
var fallbackNarratives = map[int]string{
	1: "The trail begins. Witnesses saw someone suspicious slipping away...",
	2: "The villain moved fast, but left traces at every stop.",
	3: "Getting closer! Each clue narrows down where the villain has been.",
	4: "Check the distances and clocks — the villain's route is taking shape.",
	5: "One country at a time, the net is closing in.",
}

// Generate runs all four phases for one request. It returns the terminal
// error, which is already recorded on the GenerationRecord by the time it
// returns; callers running it as a background task only need to log it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) error {
	rec := places.GenerationRecord{
		GameID:     req.GameID,
		Status:     places.StatusGenerating,
		TotalSteps: totalSteps,
	}

	core, err := o.phaseContent(ctx, req, &rec)
	if err != nil {
		return o.fail(ctx, &rec, 1, err)
	}
	if err := o.phaseLocations(ctx, req, core, &rec); err != nil {
		return o.fail(ctx, &rec, 2, err)
	}
	if err := o.phaseTurns(ctx, req, core, &rec); err != nil {
		return o.fail(ctx, &rec, 3, err)
	}
	// Image failures are logged inside and never abort the run.
	o.phaseImages(ctx, req, core, &rec)

	rec.Status = places.StatusCompleted
	rec.CurrentStep = "done"
	rec.CompletedSteps = totalSteps
	if err := o.store.UpsertGenerationRecord(ctx, rec); err != nil {
		o.logger.Error("recording completion", "game_id", req.GameID, "error", err)
		return err
	}
	o.logger.Info("generation completed", "game_id", req.GameID)
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, rec *places.GenerationRecord, phase int, err error) error {
	perr := &PhaseError{Phase: phase, Err: err}
	o.logger.Error("generation failed", "game_id", rec.GameID, "phase", phase, "error", err)

	o.endPhase(rec, phase)
	rec.Status = places.StatusFailed
	rec.Error = perr.Error()
	if uerr := o.store.UpsertGenerationRecord(ctx, *rec); uerr != nil {
		o.logger.Error("recording failure", "game_id", rec.GameID, "error", uerr)
	}
	return perr
}

func (o *Orchestrator) startPhase(ctx context.Context, rec *places.GenerationRecord, phase int) {
	rec.Phases = append(rec.Phases, places.PhaseTiming{
		Phase:     phase,
		Label:     phaseLabels[phase],
		StartedAt: o.now(),
	})
	rec.CurrentStep = phaseLabels[phase]
	if err := o.store.UpsertGenerationRecord(ctx, *rec); err != nil {
		o.logger.Warn("recording phase start", "game_id", rec.GameID, "phase", phase, "error", err)
	}
}

func (o *Orchestrator) endPhase(rec *places.GenerationRecord, phase int) {
	for i := range rec.Phases {
		if rec.Phases[i].Phase == phase && rec.Phases[i].EndedAt == nil {
			t := o.now()
			rec.Phases[i].EndedAt = &t
		}
	}
}

// phaseContent selects the villain trait, generates core content, resolves
// the villain-evidence items, and persists the filled-in game row.
func (o *Orchestrator) phaseContent(ctx context.Context, req Request, rec *places.GenerationRecord) (*content.Core, error) {
	o.startPhase(ctx, rec, 1)

	trait := villain.SelectTrait(o.now())
	core, err := o.content.GenerateCore(ctx, content.Context{
		Theme:       req.Theme,
		Difficulty:  req.Difficulty,
		Category:    req.Category,
		Objective:   req.Objective,
		Trait:       trait,
		AvoidCities: req.AvoidCities,
	})
	if err != nil {
		return nil, err
	}

	// Resolve the concrete evidence item now, before any image or clue
	// prompt exists, so both reuse the same value verbatim.
	for i := range core.ImagePlan {
		core.ImagePlan[i].Item = villain.ResolveItem(core.Villain.Clothing, req.Theme)
	}

	game := places.Game{
		ID:                req.GameID,
		Theme:             req.Theme,
		Difficulty:        req.Difficulty,
		Category:          req.Category,
		Villain:           core.Villain,
		CaseTitle:         core.CaseTitle,
		CrimeSummary:      core.CrimeSummary,
		CompletionMessage: core.CompletionMessage,
		FinalObjective:    req.Objective,
	}

	o.endPhase(rec, 1)
	rec.CompletedSteps = stepsAfterContent
	if err := o.store.SaveContentPhase(ctx, game, *rec); err != nil {
		return nil, fmt.Errorf("persisting content phase: %w", err)
	}
	return core, nil
}

// phaseLocations generates the final puzzle and persists the three locations
// plus the final location in one transaction.
func (o *Orchestrator) phaseLocations(ctx context.Context, req Request, core *content.Core, rec *places.GenerationRecord) error {
	o.startPhase(ctx, rec, 2)

	puzzle, err := o.content.GenerateFinalPuzzle(ctx, core.Final, req.Theme, core.Locations)
	if err != nil {
		return err
	}
	core.Final.Puzzle = puzzle
	core.Final.GameID = req.GameID
	for i := range core.Locations {
		core.Locations[i].GameID = req.GameID
	}

	o.endPhase(rec, 2)
	rec.CompletedSteps = stepsAfterLocations
	if err := o.store.SaveLocationsPhase(ctx, req.GameID, core.Locations, core.Final, *rec); err != nil {
		return fmt.Errorf("persisting locations phase: %w", err)
	}
	return nil
}

// phaseTurns computes the authoritative geographic values, generates turn
// clues, validates the distribution invariants, repairs turn-4 numbers in
// place, and persists turns and clues.
func (o *Orchestrator) phaseTurns(ctx context.Context, req Request, core *content.Core, rec *places.GenerationRecord) error {
	o.startPhase(ctx, rec, 3)

	var points [3]geo.Point
	var offsets [3]float64
	for i, loc := range core.Locations {
		points[i] = geo.Point{Lat: loc.Lat, Lon: loc.Lon}
		offsets[i] = loc.TimezoneOffset
	}
	distances, err := geo.PairwiseDistances(points)
	if err != nil {
		return err
	}
	timeDiffs := geo.PairwiseTimeDiffs(offsets)

	turns, err := o.content.GenerateTurnClues(ctx, core, distances, timeDiffs)
	if err != nil {
		return err
	}

	for i := range turns {
		t := &turns[i]
		if err := clues.ValidateTurn(t.Number, t.Clues); err != nil {
			return err
		}
		if t.Number == 4 {
			if err := clues.RepairGeoClues(t.Clues, distances, timeDiffs); err != nil {
				return err
			}
		}
		if t.Narrative == "" {
			t.Narrative = fallbackNarratives[t.Number]
		}
		t.GameID = req.GameID

		// Attach the image-plan metadata to the image clue of its turn, so
		// clue data and the phase-4 image agree. The prompt asks for one
		// image clue per planned turn, but the service is untrusted: if it
		// omitted the clue, synthesize one around the resolved evidence item
		// rather than shipping a photo with nothing pointing at it.
		for _, plan := range core.ImagePlan {
			if plan.Turn != t.Number {
				continue
			}
			data := &places.ClueData{
				Obscurity: string(plan.Obscurity),
				Evidence:  string(plan.Evidence),
			}
			attached := false
			for j := range t.Clues {
				if t.Clues[j].Type != places.ClueImage {
					continue
				}
				t.Clues[j].Data = data
				attached = true
			}
			if !attached {
				t.Clues = append(t.Clues, places.Clue{
					OrderIndex: len(t.Clues),
					Type:       places.ClueImage,
					Content:    fmt.Sprintf("A photo from the scene shows the villain's %s. Look closely at where it was left.", plan.Item),
					Data:       data,
				})
			}
		}
	}

	o.endPhase(rec, 3)
	rec.CompletedSteps = stepsAfterTurns
	if err := o.store.SaveTurnsPhase(ctx, req.GameID, turns, *rec); err != nil {
		return fmt.Errorf("persisting turns phase: %w", err)
	}
	return nil
}

// phaseImages generates the villain portrait and the planned location
// images. The per-image work runs concurrently; failures are logged and the
// game still completes.
func (o *Orchestrator) phaseImages(ctx context.Context, req Request, core *content.Core, rec *places.GenerationRecord) {
	o.startPhase(ctx, rec, 4)

	type imageResult struct {
		slot     string
		position int
		url      string
		plan     places.ImagePlacement
		timing   places.ImageTiming
		err      error
	}

	jobs := make([]imageResult, 0, 1+len(core.ImagePlan))
	jobs = append(jobs, imageResult{slot: images.PortraitSlot})
	for _, plan := range core.ImagePlan {
		// Each plan entry images the location at the position matching its
		// turn number (turn 2 shows location 2, turn 3 location 3).
		jobs = append(jobs, imageResult{
			slot:     images.SceneSlot(plan.Turn),
			position: plan.Turn,
			plan:     plan,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range jobs {
		job := &jobs[i]
		g.Go(func() error {
			job.timing.Slot = job.slot
			job.timing.StartedAt = o.now()
			if job.position == 0 {
				job.url, job.err = o.images.VillainPortrait(gctx, req.GameID, core.Villain)
			} else {
				loc := core.Locations[job.position-1]
				job.url, job.err = o.images.LocationImage(gctx, req.GameID, loc, job.plan)
			}
			t := o.now()
			job.timing.EndedAt = &t
			return nil
		})
	}
	_ = g.Wait() // jobs record their own errors


	step := stepsAfterTurns
	for _, job := range jobs {
		step += (totalSteps - stepsAfterTurns) / len(jobs)
		rec.ImageTimings = append(rec.ImageTimings, job.timing)
		rec.CompletedSteps = step
		rec.CurrentStep = "images: " + job.slot

		if job.err != nil {
			o.logger.Error("image generation failed", "game_id", req.GameID, "slot", job.slot, "error", job.err)
			if uerr := o.store.UpsertGenerationRecord(ctx, *rec); uerr != nil {
				o.logger.Warn("recording image progress", "game_id", req.GameID, "error", uerr)
			}
			continue
		}

		var err error
		if job.position == 0 {
			err = o.store.SaveVillainImage(ctx, req.GameID, job.url, *rec)
		} else {
			err = o.store.SaveLocationImage(ctx, req.GameID, job.position, places.LocationImage{
				URL:       job.url,
				Turn:      job.plan.Turn,
				Obscurity: job.plan.Obscurity,
				Evidence:  job.plan.Evidence,
			}, *rec)
		}
		if err != nil {
			o.logger.Error("persisting image", "game_id", req.GameID, "slot", job.slot, "error", err)
		}
	}

	o.endPhase(rec, 4)
}
