package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/tennis-roundrobin/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentConflict = errors.New("tournament already exists")
	ErrResultConflict     = errors.New("result for this pairing already stored")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	// GetByID loads the tournament together with its schedule and results.
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	UpdateRoster(ctx context.Context, id string, roster []string) error
	// SaveSchedule replaces the stored rounds and days wholesale.
	SaveSchedule(ctx context.Context, id string, schedule *models.Schedule) error
	AddResult(ctx context.Context, id string, result *models.MatchResult) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (id, name, roster, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Name, pq.Array(t.Roster), t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrTournamentConflict, t.ID)
		}
		return fmt.Errorf("failed to insert tournament %s: %w", t.ID, err)
	}
	return nil
}

// GetByID reads the tournament, its schedule and its results from one snapshot.
func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	var t *models.Tournament
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := withTx(ctx, r.db, opts, func(tx *sql.Tx) error {
		var err error
		t, err = r.loadTournament(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) loadTournament(ctx context.Context, db SQLExecutor, id string) (*models.Tournament, error) {
	query := `
		SELECT id, name, roster, created_at, schedule_capacity
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	var capacity sql.NullInt64
	err := db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, pq.Array(&t.Roster), &t.CreatedAt, &capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %s: %w", id, err)
	}

	if capacity.Valid {
		schedule, err := r.loadSchedule(ctx, db, id, int(capacity.Int64))
		if err != nil {
			return nil, err
		}
		t.Schedule = schedule
	}

	results, err := r.loadResults(ctx, db, id)
	if err != nil {
		return nil, err
	}
	t.Results = results
	return t, nil
}

func (r *postgresTournamentRepository) loadSchedule(ctx context.Context, db SQLExecutor, id string, capacity int) (*models.Schedule, error) {
	schedule := &models.Schedule{Rounds: []models.Round{}, Days: []*models.Day{}, Capacity: capacity}

	rows, err := db.QueryContext(ctx, `
		SELECT round_number, player1, player2
		FROM tournament_rounds
		WHERE tournament_id = $1
		ORDER BY round_number ASC, slot ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds for tournament %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var number int
		var p models.Pairing
		if err := rows.Scan(&number, &p.Player1, &p.Player2); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		if n := len(schedule.Rounds); n == 0 || schedule.Rounds[n-1].Number != number {
			schedule.Rounds = append(schedule.Rounds, models.Round{Number: number})
		}
		last := &schedule.Rounds[len(schedule.Rounds)-1]
		last.Matches = append(last.Matches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dayRows, err := db.QueryContext(ctx, `
		SELECT d.day_number, d.completed, m.player1, m.player2
		FROM tournament_days d
		JOIN day_matches m ON m.tournament_id = d.tournament_id AND m.day_number = d.day_number
		WHERE d.tournament_id = $1
		ORDER BY d.day_number ASC, m.slot ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query days for tournament %s: %w", id, err)
	}
	defer dayRows.Close()
	for dayRows.Next() {
		var number int
		var completed bool
		var p models.Pairing
		if err := dayRows.Scan(&number, &completed, &p.Player1, &p.Player2); err != nil {
			return nil, fmt.Errorf("failed to scan day row: %w", err)
		}
		if n := len(schedule.Days); n == 0 || schedule.Days[n-1].Number != number {
			schedule.Days = append(schedule.Days, &models.Day{Number: number, Completed: completed})
		}
		last := schedule.Days[len(schedule.Days)-1]
		last.Matches = append(last.Matches, p)
	}
	if err := dayRows.Err(); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (r *postgresTournamentRepository) loadResults(ctx context.Context, db SQLExecutor, id string) ([]models.MatchResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT player1, player2, score, sets, recorded_at
		FROM match_results
		WHERE tournament_id = $1
		ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for tournament %s: %w", id, err)
	}
	defer rows.Close()

	results := make([]models.MatchResult, 0)
	for rows.Next() {
		var res models.MatchResult
		var sets []byte
		if err := rows.Scan(&res.Player1, &res.Player2, &res.Score, &sets, &res.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		if err := json.Unmarshal(sets, &res.Sets); err != nil {
			return nil, fmt.Errorf("failed to decode sets of %s vs %s: %w", res.Player1, res.Player2, err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postgresTournamentRepository) UpdateRoster(ctx context.Context, id string, roster []string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET roster = $1 WHERE id = $2`, pq.Array(roster), id)
	if err != nil {
		return fmt.Errorf("failed to update roster of tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SaveSchedule(ctx context.Context, id string, schedule *models.Schedule) error {
	return withTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE tournaments SET schedule_capacity = $1 WHERE id = $2`, schedule.Capacity, id)
		if err != nil {
			return fmt.Errorf("failed to update schedule capacity: %w", err)
		}
		if err := checkAffectedRows(result, ErrTournamentNotFound); err != nil {
			return err
		}

		// day_matches удаляются каскадно вместе с tournament_days
		for _, q := range []string{
			`DELETE FROM tournament_rounds WHERE tournament_id = $1`,
			`DELETE FROM tournament_days WHERE tournament_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("failed to clear schedule: %w", err)
			}
		}

		roundStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tournament_rounds (tournament_id, round_number, slot, player1, player2)
			VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return fmt.Errorf("failed to prepare round insert: %w", err)
		}
		defer roundStmt.Close()
		for _, round := range schedule.Rounds {
			for slot, m := range round.Matches {
				if _, err := roundStmt.ExecContext(ctx, id, round.Number, slot, m.Player1, m.Player2); err != nil {
					return fmt.Errorf("failed to insert round %d: %w", round.Number, err)
				}
			}
		}

		dayStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tournament_days (tournament_id, day_number, completed)
			VALUES ($1, $2, $3)`)
		if err != nil {
			return fmt.Errorf("failed to prepare day insert: %w", err)
		}
		defer dayStmt.Close()
		matchStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO day_matches (tournament_id, day_number, slot, player1, player2)
			VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return fmt.Errorf("failed to prepare day match insert: %w", err)
		}
		defer matchStmt.Close()

		for _, day := range schedule.Days {
			if _, err := dayStmt.ExecContext(ctx, id, day.Number, day.Completed); err != nil {
				return fmt.Errorf("failed to insert day %d: %w", day.Number, err)
			}
			for slot, m := range day.Matches {
				if _, err := matchStmt.ExecContext(ctx, id, day.Number, slot, m.Player1, m.Player2); err != nil {
					return fmt.Errorf("failed to insert match on day %d: %w", day.Number, err)
				}
			}
		}
		return nil
	})
}

func (r *postgresTournamentRepository) AddResult(ctx context.Context, id string, res *models.MatchResult) error {
	sets, err := json.Marshal(res.Sets)
	if err != nil {
		return fmt.Errorf("failed to encode sets: %w", err)
	}
	key := res.Pairing().Key()
	query := `
		INSERT INTO match_results (tournament_id, player1, player2, pair_low, pair_high, score, sets, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.db.ExecContext(ctx, query, id, res.Player1, res.Player2, key.Low, key.High, res.Score, sets, res.RecordedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s vs %s", ErrResultConflict, res.Player1, res.Player2)
		}
		return fmt.Errorf("failed to insert result for tournament %s: %w", id, err)
	}
	return nil
}
