package content

import (
	"fmt"

	"github.com/dev-zuma/places-sub000/internal/places"
)

// Wire shapes mirror the JSON the service is asked to produce. They are
// converted into domain types only after shape validation passes.

type coreResponse struct {
	Villain *struct {
		Name               string `json:"name"`
		Title              string `json:"title"`
		Gender             string `json:"gender"`
		Age                string `json:"age"`
		Race               string `json:"race"`
		Ethnicity          string `json:"ethnicity"`
		DistinctiveFeature string `json:"distinctiveFeature"`
		Clothing           string `json:"clothing"`
	} `json:"villain"`
	Case *struct {
		Title             string `json:"title"`
		CrimeSummary      string `json:"crimeSummary"`
		CompletionMessage string `json:"completionMessage"`
	} `json:"case"`
	Locations []struct {
		Name           string   `json:"name"`
		Country        string   `json:"country"`
		Lat            float64  `json:"lat"`
		Lon            float64  `json:"lon"`
		TimezoneOffset float64  `json:"timezoneOffset"`
		Landmarks      []string `json:"landmarks"`
	} `json:"locations"`
	FinalLocation *struct {
		Name        string   `json:"name"`
		Country     string   `json:"country"`
		Lat         float64  `json:"lat"`
		Lon         float64  `json:"lon"`
		Reasoning   string   `json:"reasoning"`
		Connections []string `json:"connections"`
	} `json:"finalLocation"`
	ImagePlan []struct {
		Turn      int    `json:"turn"`
		Obscurity string `json:"obscurity"`
		Evidence  string `json:"evidence"`
	} `json:"imagePlan"`
}

var validObscurity = map[places.Obscurity]bool{
	places.ObscurityObscured: true,
	places.ObscurityMedium:   true,
	places.ObscurityClear:    true,
}

var validEvidence = map[places.Evidence]bool{
	places.EvidenceSecurityFootage: true,
	places.EvidenceBelongings:      true,
	places.EvidenceReflection:      true,
	places.EvidenceShadow:          true,
}

func (r *coreResponse) validate() (*Core, error) {
	if r.Villain == nil {
		return nil, fmt.Errorf("%w: missing villain", ErrContractViolation)
	}
	if r.Villain.Name == "" || r.Villain.Clothing == "" {
		return nil, fmt.Errorf("%w: villain missing name or clothing", ErrContractViolation)
	}
	if r.Case == nil || r.Case.Title == "" || r.Case.CrimeSummary == "" {
		return nil, fmt.Errorf("%w: missing case narrative", ErrContractViolation)
	}
	if len(r.Locations) != 3 {
		return nil, fmt.Errorf("%w: got %d locations, want 3", ErrContractViolation, len(r.Locations))
	}
	if r.FinalLocation == nil || r.FinalLocation.Name == "" || r.FinalLocation.Country == "" {
		return nil, fmt.Errorf("%w: missing final location", ErrContractViolation)
	}
	if len(r.ImagePlan) != 2 {
		return nil, fmt.Errorf("%w: got %d image plan entries, want 2", ErrContractViolation, len(r.ImagePlan))
	}

	core := &Core{
		Villain: places.Villain{
			Name:               r.Villain.Name,
			Title:              r.Villain.Title,
			Gender:             r.Villain.Gender,
			Age:                r.Villain.Age,
			Race:               r.Villain.Race,
			Ethnicity:          r.Villain.Ethnicity,
			DistinctiveFeature: r.Villain.DistinctiveFeature,
			Clothing:           r.Villain.Clothing,
		},
		CaseTitle:         r.Case.Title,
		CrimeSummary:      r.Case.CrimeSummary,
		CompletionMessage: r.Case.CompletionMessage,
	}

	for i, loc := range r.Locations {
		if loc.Name == "" || loc.Country == "" {
			return nil, fmt.Errorf("%w: location %d missing name or country", ErrContractViolation, i+1)
		}
		if loc.Lat < -90 || loc.Lat > 90 || loc.Lon < -180 || loc.Lon > 180 {
			return nil, fmt.Errorf("%w: location %d has out-of-range coordinates", ErrContractViolation, i+1)
		}
		core.Locations[i] = places.Location{
			Position:       i + 1,
			Name:           loc.Name,
			Country:        loc.Country,
			Lat:            loc.Lat,
			Lon:            loc.Lon,
			TimezoneOffset: loc.TimezoneOffset,
			Landmarks:      loc.Landmarks,
		}
	}

	core.Final = places.FinalLocation{
		Name:        r.FinalLocation.Name,
		Country:     r.FinalLocation.Country,
		Lat:         r.FinalLocation.Lat,
		Lon:         r.FinalLocation.Lon,
		Reasoning:   r.FinalLocation.Reasoning,
		Connections: r.FinalLocation.Connections,
	}

	// Placements are fixed at turns 2 and 3 regardless of what the service
	// claims; obscurity and evidence must be valid enum values.
	wantTurns := [2]int{2, 3}
	for i, p := range r.ImagePlan {
		obs, ev := places.Obscurity(p.Obscurity), places.Evidence(p.Evidence)
		if !validObscurity[obs] {
			return nil, fmt.Errorf("%w: image plan %d: unknown obscurity %q", ErrContractViolation, i+1, p.Obscurity)
		}
		if !validEvidence[ev] {
			return nil, fmt.Errorf("%w: image plan %d: unknown evidence %q", ErrContractViolation, i+1, p.Evidence)
		}
		core.ImagePlan[i] = places.ImagePlacement{
			Turn:      wantTurns[i],
			Obscurity: obs,
			Evidence:  ev,
		}
	}

	return core, nil
}

type clueResponse struct {
	Turns []struct {
		Turn      int    `json:"turn"`
		Narrative string `json:"narrative"`
		Clues     []struct {
			Type              string  `json:"type"`
			Content           string  `json:"content"`
			Description       string  `json:"description"`
			LocationPositions []int   `json:"locationPositions"`
			Between           []int   `json:"between"`
			DistanceKm        float64 `json:"distanceKm"`
			TimeDiffHours     float64 `json:"timeDiffHours"`
		} `json:"clues"`
	} `json:"turns"`
}

var validClueTypes = map[places.ClueType]bool{
	places.ClueTheme:    true,
	places.CluePattern:  true,
	places.ClueDistance: true,
	places.ClueTimeDiff: true,
	places.ClueImage:    true,
	places.ClueClimate:  true,
	places.ClueTerrain:  true,
	places.ClueCountry:  true,
	places.ClueLandmark: true,
	places.ClueCulture:  true,
}

func (r *clueResponse) validate() ([]places.Turn, error) {
	if len(r.Turns) != 5 {
		return nil, fmt.Errorf("%w: got %d turns, want 5", ErrContractViolation, len(r.Turns))
	}

	seen := make(map[int]bool, 5)
	turns := make([]places.Turn, 0, 5)
	for _, t := range r.Turns {
		if t.Turn < 1 || t.Turn > 5 || seen[t.Turn] {
			return nil, fmt.Errorf("%w: bad or duplicate turn number %d", ErrContractViolation, t.Turn)
		}
		seen[t.Turn] = true
		if len(t.Clues) == 0 {
			return nil, fmt.Errorf("%w: turn %d has no clues", ErrContractViolation, t.Turn)
		}

		turn := places.Turn{Number: t.Turn, Narrative: t.Narrative}
		for i, c := range t.Clues {
			ct := places.ClueType(c.Type)
			if !validClueTypes[ct] {
				return nil, fmt.Errorf("%w: turn %d clue %d: unknown type %q", ErrContractViolation, t.Turn, i, c.Type)
			}
			clue := places.Clue{
				OrderIndex:        i,
				Type:              ct,
				Content:           c.Content,
				Description:       c.Description,
				LocationPositions: c.LocationPositions,
			}
			if len(c.Between) == 2 {
				clue.Between = &places.PositionPair{A: c.Between[0], B: c.Between[1]}
				clue.LocationPositions = nil
				if clue.Between.A > clue.Between.B {
					clue.Between.A, clue.Between.B = clue.Between.B, clue.Between.A
				}
			}
			turn.Clues = append(turn.Clues, clue)
		}
		turns = append(turns, turn)
	}

	// Present in turn order regardless of response order.
	for i := range turns {
		for j := i + 1; j < len(turns); j++ {
			if turns[j].Number < turns[i].Number {
				turns[i], turns[j] = turns[j], turns[i]
			}
		}
	}
	return turns, nil
}
