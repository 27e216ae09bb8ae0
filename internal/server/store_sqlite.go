package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dev-zuma/places-sub000/internal/places"
)

// SQLiteStore implements Store over a single SQLite database. Structured
// payloads (landmarks, clue data, phase timelines) are Go values everywhere
// except here, where they serialize to JSON text columns.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const sqliteTimeLayout = time.RFC3339Nano

func marshalJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(sqliteTimeLayout, s)
	return t
}

// --- Games ---

func (s *SQLiteStore) CreatePlaceholderGame(ctx context.Context, game places.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, theme, difficulty, category, final_objective)
		VALUES (?, ?, ?, ?, ?)
	`, game.ID, game.Theme, game.Difficulty, game.Category, string(game.FinalObjective))
	if err != nil {
		return fmt.Errorf("inserting placeholder game: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO generation_records (game_id, status) VALUES (?, 'pending')
	`, game.ID)
	if err != nil {
		return fmt.Errorf("inserting generation record: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetGame(ctx context.Context, id string) (*GameDetail, error) {
	var d GameDetail
	g := &d.Game
	var published int
	var publishedAt sql.NullString
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, theme, difficulty, category, published, published_at,
		       villain_name, villain_title, villain_gender, villain_age,
		       villain_race, villain_ethnicity, villain_feature, villain_clothing,
		       villain_image_url, case_title, crime_summary, completion_message,
		       final_objective, created_at, updated_at
		FROM games WHERE id = ?
	`, id).Scan(&g.ID, &g.Theme, &g.Difficulty, &g.Category, &published, &publishedAt,
		&g.Villain.Name, &g.Villain.Title, &g.Villain.Gender, &g.Villain.Age,
		&g.Villain.Race, &g.Villain.Ethnicity, &g.Villain.DistinctiveFeature, &g.Villain.Clothing,
		&g.Villain.ImageURL, &g.CaseTitle, &g.CrimeSummary, &g.CompletionMessage,
		(*string)(&g.FinalObjective), &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	g.Published = published != 0
	if publishedAt.Valid {
		t := parseTime(publishedAt.String)
		g.PublishedAt = &t
	}
	g.CreatedAt = parseTime(createdAt)
	g.UpdatedAt = parseTime(updatedAt)

	if err := s.loadLocations(ctx, id, &d); err != nil {
		return nil, err
	}
	if err := s.loadFinalLocation(ctx, id, &d); err != nil {
		return nil, err
	}
	if err := s.loadTurns(ctx, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *SQLiteStore) loadLocations(ctx context.Context, gameID string, d *GameDetail) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, name, country, lat, lon, timezone_offset, landmarks,
		       image_url, image_turn, image_obscurity, image_evidence
		FROM locations WHERE game_id = ? ORDER BY position
	`, gameID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var loc places.Location
		var landmarks string
		var imageURL, imageObscurity, imageEvidence sql.NullString
		var imageTurn sql.NullInt64
		if err := rows.Scan(&loc.Position, &loc.Name, &loc.Country, &loc.Lat, &loc.Lon,
			&loc.TimezoneOffset, &landmarks, &imageURL, &imageTurn, &imageObscurity, &imageEvidence); err != nil {
			return err
		}
		loc.GameID = gameID
		json.Unmarshal([]byte(landmarks), &loc.Landmarks)
		if imageURL.Valid {
			loc.Image = &places.LocationImage{
				URL:       imageURL.String,
				Turn:      int(imageTurn.Int64),
				Obscurity: places.Obscurity(imageObscurity.String),
				Evidence:  places.Evidence(imageEvidence.String),
			}
		}
		if loc.Position >= 1 && loc.Position <= 3 {
			d.Locations[loc.Position-1] = loc
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) loadFinalLocation(ctx context.Context, gameID string, d *GameDetail) error {
	var f places.FinalLocation
	var flagColors, connections string
	err := s.db.QueryRowContext(ctx, `
		SELECT name, country, lat, lon, phrase, category, fact, flag_colors, reasoning, connections
		FROM final_locations WHERE game_id = ?
	`, gameID).Scan(&f.Name, &f.Country, &f.Lat, &f.Lon, &f.Puzzle.Phrase, &f.Puzzle.Category,
		&f.Puzzle.Fact, &flagColors, &f.Reasoning, &connections)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	f.GameID = gameID
	json.Unmarshal([]byte(flagColors), &f.Puzzle.FlagColors)
	json.Unmarshal([]byte(connections), &f.Connections)
	d.Final = &f
	return nil
}

func (s *SQLiteStore) loadTurns(ctx context.Context, gameID string, d *GameDetail) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.turn_number, t.narrative,
		       c.order_index, c.type, c.content, c.description, c.data,
		       c.location_positions, c.between_positions
		FROM gameplay_turns t
		LEFT JOIN clues c ON c.turn_id = t.id
		WHERE t.game_id = ?
		ORDER BY t.turn_number, c.order_index
	`, gameID)
	if err != nil {
		return err
	}
	defer rows.Close()

	byNumber := make(map[int]*places.Turn)
	for rows.Next() {
		var number int
		var narrative string
		var orderIndex sql.NullInt64
		var clueType, content, description, data, positions, between sql.NullString
		if err := rows.Scan(&number, &narrative, &orderIndex, &clueType, &content,
			&description, &data, &positions, &between); err != nil {
			return err
		}

		turn, ok := byNumber[number]
		if !ok {
			turn = &places.Turn{GameID: gameID, Number: number, Narrative: narrative}
			byNumber[number] = turn
		}

		if clueType.Valid {
			clue := places.Clue{
				OrderIndex:  int(orderIndex.Int64),
				Type:        places.ClueType(clueType.String),
				Content:     content.String,
				Description: description.String,
			}
			if data.Valid && data.String != "" {
				clue.Data = &places.ClueData{}
				json.Unmarshal([]byte(data.String), clue.Data)
			}
			if positions.Valid && positions.String != "" {
				json.Unmarshal([]byte(positions.String), &clue.LocationPositions)
			}
			if between.Valid && between.String != "" {
				clue.Between = &places.PositionPair{}
				json.Unmarshal([]byte(between.String), clue.Between)
			}
			turn.Clues = append(turn.Clues, clue)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for n := 1; n <= 5; n++ {
		if t, ok := byNumber[n]; ok {
			d.Turns = append(d.Turns, *t)
		}
	}
	return nil
}

func (s *SQLiteStore) ListGames(ctx context.Context, publishedOnly bool) ([]GameSummary, error) {
	query := `
		SELECT g.id, g.theme, g.difficulty, g.case_title, g.villain_name,
		       g.published, COALESCE(r.status, 'pending'), g.created_at
		FROM games g
		LEFT JOIN generation_records r ON r.game_id = g.id
	`
	if publishedOnly {
		query += ` WHERE g.published = 1`
	}
	query += ` ORDER BY g.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []GameSummary
	for rows.Next() {
		var g GameSummary
		var published int
		if err := rows.Scan(&g.ID, &g.Theme, &g.Difficulty, &g.CaseTitle, &g.VillainName,
			&published, &g.Status, &g.CreatedAt); err != nil {
			return nil, err
		}
		g.Published = published != 0
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *SQLiteStore) DeleteGame(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetPublished(ctx context.Context, id string, published bool) error {
	publishedInt := 0
	var publishedAt any
	if published {
		publishedInt = 1
		publishedAt = time.Now().UTC().Format(sqliteTimeLayout)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE games
		SET published = ?, published_at = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ?
	`, publishedInt, publishedAt, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Diversity hints ---

func (s *SQLiteStore) RecentThemes(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT theme FROM games ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var themes []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

func (s *SQLiteStore) MostUsedCities(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM locations GROUP BY name ORDER BY COUNT(*) DESC, name LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// --- Generation phases ---

func recordArgs(rec places.GenerationRecord) []any {
	return []any{
		string(rec.Status), rec.CurrentStep, rec.CompletedSteps, rec.TotalSteps,
		marshalJSON(rec.Phases), marshalJSON(rec.ImageTimings), rec.Error, rec.GameID,
	}
}

const updateRecordSQL = `
	UPDATE generation_records
	SET status = ?, current_step = ?, completed_steps = ?, total_steps = ?,
	    phases = ?, image_timings = ?, error = ?,
	    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	WHERE game_id = ?
`

func (s *SQLiteStore) UpsertGenerationRecord(ctx context.Context, rec places.GenerationRecord) error {
	res, err := s.db.ExecContext(ctx, updateRecordSQL, recordArgs(rec)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO generation_records
				(game_id, status, current_step, completed_steps, total_steps, phases, image_timings, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.GameID, string(rec.Status), rec.CurrentStep, rec.CompletedSteps, rec.TotalSteps,
			marshalJSON(rec.Phases), marshalJSON(rec.ImageTimings), rec.Error)
	}
	return err
}

func (s *SQLiteStore) SaveContentPhase(ctx context.Context, game places.Game, rec places.GenerationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE games
		SET theme = ?, villain_name = ?, villain_title = ?, villain_gender = ?,
		    villain_age = ?, villain_race = ?, villain_ethnicity = ?,
		    villain_feature = ?, villain_clothing = ?, case_title = ?,
		    crime_summary = ?, completion_message = ?, final_objective = ?,
		    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ?
	`, game.Theme, game.Villain.Name, game.Villain.Title, game.Villain.Gender,
		game.Villain.Age, game.Villain.Race, game.Villain.Ethnicity,
		game.Villain.DistinctiveFeature, game.Villain.Clothing, game.CaseTitle,
		game.CrimeSummary, game.CompletionMessage, string(game.FinalObjective), game.ID)
	if err != nil {
		return fmt.Errorf("updating game content: %w", err)
	}

	if _, err := tx.ExecContext(ctx, updateRecordSQL, recordArgs(rec)...); err != nil {
		return fmt.Errorf("updating generation record: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveLocationsPhase(ctx context.Context, gameID string, locs [3]places.Location, final places.FinalLocation, rec places.GenerationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, loc := range locs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO locations (game_id, position, name, country, lat, lon, timezone_offset, landmarks)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, gameID, loc.Position, loc.Name, loc.Country, loc.Lat, loc.Lon,
			loc.TimezoneOffset, marshalJSON(loc.Landmarks))
		if err != nil {
			return fmt.Errorf("inserting location %d: %w", loc.Position, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO final_locations (game_id, name, country, lat, lon, phrase, category, fact, flag_colors, reasoning, connections)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, gameID, final.Name, final.Country, final.Lat, final.Lon,
		final.Puzzle.Phrase, final.Puzzle.Category, final.Puzzle.Fact,
		marshalJSON(final.Puzzle.FlagColors), final.Reasoning, marshalJSON(final.Connections))
	if err != nil {
		return fmt.Errorf("inserting final location: %w", err)
	}

	if _, err := tx.ExecContext(ctx, updateRecordSQL, recordArgs(rec)...); err != nil {
		return fmt.Errorf("updating generation record: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveTurnsPhase(ctx context.Context, gameID string, turns []places.Turn, rec places.GenerationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, turn := range turns {
		var turnID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO gameplay_turns (game_id, turn_number, narrative)
			VALUES (?, ?, ?)
			RETURNING id
		`, gameID, turn.Number, turn.Narrative).Scan(&turnID)
		if err != nil {
			return fmt.Errorf("inserting turn %d: %w", turn.Number, err)
		}

		for _, clue := range turn.Clues {
			var data, positions, between any
			if clue.Data != nil {
				data = marshalJSON(clue.Data)
			}
			if clue.LocationPositions != nil {
				positions = marshalJSON(clue.LocationPositions)
			}
			if clue.Between != nil {
				between = marshalJSON(clue.Between)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO clues (turn_id, order_index, type, content, description, data, location_positions, between_positions)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, turnID, clue.OrderIndex, string(clue.Type), clue.Content, clue.Description, data, positions, between)
			if err != nil {
				return fmt.Errorf("inserting clue for turn %d: %w", turn.Number, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, updateRecordSQL, recordArgs(rec)...); err != nil {
		return fmt.Errorf("updating generation record: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveVillainImage(ctx context.Context, gameID, url string, rec places.GenerationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE games SET villain_image_url = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ?
	`, url, gameID)
	if err != nil {
		return fmt.Errorf("updating villain image: %w", err)
	}

	if _, err := tx.ExecContext(ctx, updateRecordSQL, recordArgs(rec)...); err != nil {
		return fmt.Errorf("updating generation record: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveLocationImage(ctx context.Context, gameID string, position int, img places.LocationImage, rec places.GenerationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE locations
		SET image_url = ?, image_turn = ?, image_obscurity = ?, image_evidence = ?
		WHERE game_id = ? AND position = ?
	`, img.URL, img.Turn, string(img.Obscurity), string(img.Evidence), gameID, position)
	if err != nil {
		return fmt.Errorf("updating location image: %w", err)
	}

	if _, err := tx.ExecContext(ctx, updateRecordSQL, recordArgs(rec)...); err != nil {
		return fmt.Errorf("updating generation record: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Progress(ctx context.Context, gameID string) (places.GenerationRecord, error) {
	var rec places.GenerationRecord
	var phases, timings string
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT game_id, status, current_step, completed_steps, total_steps,
		       phases, image_timings, error, created_at, updated_at
		FROM generation_records WHERE game_id = ?
	`, gameID).Scan(&rec.GameID, (*string)(&rec.Status), &rec.CurrentStep,
		&rec.CompletedSteps, &rec.TotalSteps, &phases, &timings, &rec.Error,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	json.Unmarshal([]byte(phases), &rec.Phases)
	json.Unmarshal([]byte(timings), &rec.ImageTimings)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return rec, nil
}

// --- Players ---

func (s *SQLiteStore) CreatePlayer(ctx context.Context, p places.Player) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, name, avatar) VALUES (?, ?, ?)
	`, p.ID, p.Name, p.Avatar)
	return err
}

func (s *SQLiteStore) GetPlayer(ctx context.Context, id string) (places.Player, error) {
	var p places.Player
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, avatar, created_at FROM players WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Avatar, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	p.CreatedAt = parseTime(createdAt)
	return p, err
}

func (s *SQLiteStore) UpsertPlayerCase(ctx context.Context, pc places.PlayerCase) error {
	solved := 0
	if pc.Solved {
		solved = 1
	}
	var completedAt any
	if pc.CompletedAt != nil {
		completedAt = pc.CompletedAt.UTC().Format(sqliteTimeLayout)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_cases (player_id, game_id, solved, score, clue_points, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_id, game_id) DO UPDATE SET
			solved = excluded.solved, score = excluded.score,
			clue_points = excluded.clue_points, completed_at = excluded.completed_at
	`, pc.PlayerID, pc.GameID, solved, pc.Score, pc.CluePoints, completedAt)
	return err
}

func (s *SQLiteStore) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, COALESCE(SUM(c.score), 0), COALESCE(SUM(c.solved), 0)
		FROM players p
		JOIN player_cases c ON c.player_id = p.id
		GROUP BY p.id, p.name
		ORDER BY SUM(c.score) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.TotalScore, &e.CasesSolved); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
