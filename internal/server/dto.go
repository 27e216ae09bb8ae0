package server

import (
	"time"

	"github.com/dev-zuma/places-sub000/internal/places"
)

// The response shapes below are the JSON projection of the domain types.
// They exist so that storage-only fields (GameID on children, internal ids)
// never leak into the API.

type VillainResponse struct {
	Name               string `json:"name"`
	Title              string `json:"title"`
	Gender             string `json:"gender"`
	Age                string `json:"age"`
	Race               string `json:"race"`
	Ethnicity          string `json:"ethnicity"`
	DistinctiveFeature string `json:"distinctiveFeature"`
	Clothing           string `json:"clothing"`
	ImageURL           string `json:"imageUrl,omitempty"`
}

type LocationResponse struct {
	Position       int                    `json:"position"`
	Name           string                 `json:"name"`
	Country        string                 `json:"country"`
	Lat            float64                `json:"lat"`
	Lon            float64                `json:"lon"`
	TimezoneOffset float64                `json:"timezoneOffset"`
	Landmarks      []string               `json:"landmarks"`
	Image          *LocationImageResponse `json:"image,omitempty"`
}

type LocationImageResponse struct {
	URL       string `json:"url"`
	Turn      int    `json:"turn"`
	Obscurity string `json:"obscurity"`
	Evidence  string `json:"evidence"`
}

type PuzzleResponse struct {
	Phrase     string   `json:"phrase"`
	Category   string   `json:"category"`
	Fact       string   `json:"fact"`
	FlagColors []string `json:"flagColors"`
}

type FinalLocationResponse struct {
	Name        string         `json:"name"`
	Country     string         `json:"country"`
	Lat         float64        `json:"lat"`
	Lon         float64        `json:"lon"`
	Puzzle      PuzzleResponse `json:"puzzle"`
	Reasoning   string         `json:"reasoning"`
	Connections []string       `json:"connections"`
}

type ClueResponse struct {
	OrderIndex        int                  `json:"orderIndex"`
	Type              string               `json:"type"`
	Content           string               `json:"content"`
	Description       string               `json:"description,omitempty"`
	Data              *places.ClueData     `json:"data,omitempty"`
	LocationPositions []int                `json:"locationPositions,omitempty"`
	Between           *places.PositionPair `json:"between,omitempty"`
}

type TurnResponse struct {
	Number    int            `json:"number"`
	Narrative string         `json:"narrative"`
	Clues     []ClueResponse `json:"clues"`
}

type GameDetailResponse struct {
	ID                string                 `json:"id"`
	Theme             string                 `json:"theme"`
	Difficulty        string                 `json:"difficulty"`
	Category          string                 `json:"category"`
	Published         bool                   `json:"published"`
	PublishedAt       *time.Time             `json:"publishedAt,omitempty"`
	Villain           VillainResponse        `json:"villain"`
	CaseTitle         string                 `json:"caseTitle"`
	CrimeSummary      string                 `json:"crimeSummary"`
	CompletionMessage string                 `json:"completionMessage"`
	FinalObjective    string                 `json:"finalObjective"`
	Locations         []LocationResponse     `json:"locations"`
	FinalLocation     *FinalLocationResponse `json:"finalLocation,omitempty"`
	Turns             []TurnResponse         `json:"turns"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

func gameDetailResponse(d GameDetail) GameDetailResponse {
	g := d.Game
	resp := GameDetailResponse{
		ID:                g.ID,
		Theme:             g.Theme,
		Difficulty:        g.Difficulty,
		Category:          g.Category,
		Published:         g.Published,
		PublishedAt:       g.PublishedAt,
		CaseTitle:         g.CaseTitle,
		CrimeSummary:      g.CrimeSummary,
		CompletionMessage: g.CompletionMessage,
		FinalObjective:    string(g.FinalObjective),
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
		Villain: VillainResponse{
			Name:               g.Villain.Name,
			Title:              g.Villain.Title,
			Gender:             g.Villain.Gender,
			Age:                g.Villain.Age,
			Race:               g.Villain.Race,
			Ethnicity:          g.Villain.Ethnicity,
			DistinctiveFeature: g.Villain.DistinctiveFeature,
			Clothing:           g.Villain.Clothing,
			ImageURL:           g.Villain.ImageURL,
		},
		Locations: []LocationResponse{},
		Turns:     []TurnResponse{},
	}

	for _, loc := range d.Locations {
		if loc.Position == 0 {
			continue // not yet generated
		}
		lr := LocationResponse{
			Position:       loc.Position,
			Name:           loc.Name,
			Country:        loc.Country,
			Lat:            loc.Lat,
			Lon:            loc.Lon,
			TimezoneOffset: loc.TimezoneOffset,
			Landmarks:      loc.Landmarks,
		}
		if lr.Landmarks == nil {
			lr.Landmarks = []string{}
		}
		if loc.Image != nil {
			lr.Image = &LocationImageResponse{
				URL:       loc.Image.URL,
				Turn:      loc.Image.Turn,
				Obscurity: string(loc.Image.Obscurity),
				Evidence:  string(loc.Image.Evidence),
			}
		}
		resp.Locations = append(resp.Locations, lr)
	}

	if f := d.Final; f != nil {
		colors := f.Puzzle.FlagColors
		if colors == nil {
			colors = []string{}
		}
		conns := f.Connections
		if conns == nil {
			conns = []string{}
		}
		resp.FinalLocation = &FinalLocationResponse{
			Name:    f.Name,
			Country: f.Country,
			Lat:     f.Lat,
			Lon:     f.Lon,
			Puzzle: PuzzleResponse{
				Phrase:     f.Puzzle.Phrase,
				Category:   f.Puzzle.Category,
				Fact:       f.Puzzle.Fact,
				FlagColors: colors,
			},
			Reasoning:   f.Reasoning,
			Connections: conns,
		}
	}

	for _, t := range d.Turns {
		tr := TurnResponse{Number: t.Number, Narrative: t.Narrative, Clues: []ClueResponse{}}
		for _, c := range t.Clues {
			tr.Clues = append(tr.Clues, ClueResponse{
				OrderIndex:        c.OrderIndex,
				Type:              string(c.Type),
				Content:           c.Content,
				Description:       c.Description,
				Data:              c.Data,
				LocationPositions: c.LocationPositions,
				Between:           c.Between,
			})
		}
		resp.Turns = append(resp.Turns, tr)
	}

	return resp
}
