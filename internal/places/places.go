// Package places defines the core domain types for the geography-detective
// game. It has zero external dependencies — everything here is pure Go.
package places

import "time"

// Game is the root aggregate. A game is created in placeholder form when a
// generation request arrives and filled in phase by phase by the generator.
type Game struct {
	ID                string
	Theme             string
	Difficulty        string
	Category          string
	Published         bool
	PublishedAt       *time.Time
	Villain           Villain
	CaseTitle         string
	CrimeSummary      string
	CompletionMessage string
	FinalObjective    Objective
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Villain describes the character the players chase. The trait fields are
// chosen before content generation and passed to the generative service as
// constraints, never left to it.
type Villain struct {
	Name               string
	Title              string
	Gender             string
	Age                string
	Race               string
	Ethnicity          string
	DistinctiveFeature string
	Clothing           string
	ImageURL           string
}

// PlaceholderName marks a game whose content phase has not completed yet.
const PlaceholderName = "???"

// Objective is the narrative framing for why the final location matters.
type Objective string

const (
	ObjectiveHideout       Objective = "hideout"
	ObjectiveNextTarget    Objective = "next_target"
	ObjectiveStash         Objective = "stash_location"
	ObjectiveEscapeRoute   Objective = "escape_route"
	ObjectiveMeetingPoint  Objective = "meeting_point"
	ObjectiveAuctionSite   Objective = "auction_site"
	ObjectiveBuyer         Objective = "buyer_location"
	ObjectiveSmuggleRoute  Objective = "smuggling_route"
	ObjectiveSafeHouse     Objective = "safe_house"
	ObjectiveTreasureVault Objective = "treasure_vault"
	ObjectiveBroadcast     Objective = "broadcast_site"
	ObjectiveRansomDrop    Objective = "ransom_drop"
	ObjectiveFinalHeist    Objective = "final_heist"
)

// Objectives lists every valid final objective.
var Objectives = []Objective{
	ObjectiveHideout, ObjectiveNextTarget, ObjectiveStash, ObjectiveEscapeRoute,
	ObjectiveMeetingPoint, ObjectiveAuctionSite, ObjectiveBuyer, ObjectiveSmuggleRoute,
	ObjectiveSafeHouse, ObjectiveTreasureVault, ObjectiveBroadcast, ObjectiveRansomDrop,
	ObjectiveFinalHeist,
}

// Location is one of exactly three crime-scene locations per game.
// Position is 1..3 and unique within the game.
type Location struct {
	GameID         string
	Position       int
	Name           string
	Country        string
	Lat            float64
	Lon            float64
	TimezoneOffset float64
	Landmarks      []string
	Image          *LocationImage
}

// LocationImage records the generated scene image and the plan entry it was
// generated for, so clue text and imagery stay in agreement.
type LocationImage struct {
	URL       string
	Turn      int
	Obscurity Obscurity
	Evidence  Evidence
}

// FinalLocation is the single fourth location the players deduce.
type FinalLocation struct {
	GameID      string
	Name        string
	Country     string
	Lat         float64
	Lon         float64
	Puzzle      Puzzle
	Reasoning   string
	Connections []string
}

// Puzzle holds the final-location deduction material.
type Puzzle struct {
	Phrase     string
	Category   string
	Fact       string
	FlagColors []string
}

// Turn is one of up to five generated gameplay turns. Turns six and seven are
// client-side puzzle turns and carry no stored clues.
type Turn struct {
	GameID    string
	Number    int
	Narrative string
	Clues     []Clue
}

// ClueType identifies the kind of hint a clue gives.
type ClueType string

const (
	ClueTheme    ClueType = "theme"
	CluePattern  ClueType = "pattern_recognition"
	ClueDistance ClueType = "distance"
	ClueTimeDiff ClueType = "time_difference"
	ClueImage    ClueType = "image"
	ClueClimate  ClueType = "climate"
	ClueTerrain  ClueType = "terrain"
	ClueCountry  ClueType = "country"
	ClueLandmark ClueType = "landmark"
	ClueCulture  ClueType = "culture"
)

// Clue belongs to exactly one turn. Location-scoped clues carry
// LocationPositions; distance and time clues carry Between instead.
type Clue struct {
	OrderIndex        int
	Type              ClueType
	Content           string
	Description       string
	Data              *ClueData
	LocationPositions []int
	Between           *PositionPair
}

// PositionPair is an unordered pair of location positions, stored A < B.
type PositionPair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// ClueData is the structured payload attached to some clue types. It is
// serialized to JSON only at the storage boundary.
type ClueData struct {
	DistanceKm    int     `json:"distanceKm,omitempty"`
	DistanceMi    int     `json:"distanceMi,omitempty"`
	TimeDiffHours float64 `json:"timeDiffHours,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	Obscurity     string  `json:"obscurity,omitempty"`
	Evidence      string  `json:"evidence,omitempty"`
}

// Obscurity controls how recognizable a location is in a generated image.
type Obscurity string

const (
	ObscurityObscured Obscurity = "obscured"
	ObscurityMedium   Obscurity = "medium"
	ObscurityClear    Obscurity = "clear"
)

// Evidence is the villain-evidence archetype that must stay legible in an
// otherwise obscured image.
type Evidence string

const (
	EvidenceSecurityFootage Evidence = "security_footage"
	EvidenceBelongings      Evidence = "belongings"
	EvidenceReflection      Evidence = "reflection"
	EvidenceShadow          Evidence = "shadow"
)

// ImagePlacement is one entry of the image plan returned by content
// generation: which turn gets a location image, and how.
type ImagePlacement struct {
	Turn      int
	Obscurity Obscurity
	Evidence  Evidence
	// Item is the concrete villain-evidence object, resolved locally before
	// any prompt is built so that image and clue text agree on it.
	Item string
}

// GenerationStatus is the lifecycle state of a generation run.
type GenerationStatus string

const (
	StatusPending    GenerationStatus = "pending"
	StatusGenerating GenerationStatus = "generating"
	StatusCompleted  GenerationStatus = "completed"
	StatusFailed     GenerationStatus = "failed"
)

// PhaseTiming is one entry of the ordered phase timeline on a
// GenerationRecord.
type PhaseTiming struct {
	Phase     int        `json:"phase"`
	Label     string     `json:"label"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// ImageTiming records start/end for a single image slot within phase 4.
type ImageTiming struct {
	Slot      string     `json:"slot"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// GenerationRecord tracks one generation run, one-to-one with a game. It is
// mutated only by the generator and read by the progress-polling endpoint.
type GenerationRecord struct {
	GameID         string
	Status         GenerationStatus
	CurrentStep    string
	CompletedSteps int
	TotalSteps     int
	Phases         []PhaseTiming
	ImageTimings   []ImageTiming
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Player is a registered player. Simple CRUD, not part of generation.
type Player struct {
	ID        string
	Name      string
	Avatar    string
	CreatedAt time.Time
}

// PlayerCase is one scored attempt, unique per (player, game).
type PlayerCase struct {
	PlayerID    string
	GameID      string
	Solved      bool
	Score       int
	CluePoints  int
	CompletedAt *time.Time
}
