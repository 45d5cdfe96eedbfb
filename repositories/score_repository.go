package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/podiumpicks/podium-api/models"
)

var ErrScoreNotFound = errors.New("score not found")

type ScoreRepository interface {
	// BatchCreate inserts the freshly computed scores for a race. It is always
	// called inside the confirm/recalculate transaction, after DeleteByRace.
	BatchCreate(ctx context.Context, exec SQLExecutor, scores []*models.Score) error
	DeleteByRace(ctx context.Context, exec SQLExecutor, raceID int) error
	UpsertForUserAndRace(ctx context.Context, score *models.Score) error
	DeleteByUserAndRace(ctx context.Context, userID, raceID int) error
	ListByRace(ctx context.Context, raceID int) ([]*models.Score, error)
	Standings(ctx context.Context, season int) ([]models.StandingEntry, error)
	SeasonPoints(ctx context.Context, season int) ([]models.RoundPoints, error)
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoreRepository) BatchCreate(ctx context.Context, exec SQLExecutor, scores []*models.Score) error {
	if len(scores) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO scores
			(user_id, race_id, position_1_points, position_2_points, position_3_points, points, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for _, score := range scores {
		if score.CalculatedAt.IsZero() {
			score.CalculatedAt = time.Now()
		}
		err := executor.QueryRowContext(ctx, query,
			score.UserID,
			score.RaceID,
			score.Position1Points,
			score.Position2Points,
			score.Position3Points,
			score.Points,
			score.CalculatedAt,
		).Scan(&score.ID)
		if err != nil {
			return fmt.Errorf("failed to insert score for user %d race %d: %w", score.UserID, score.RaceID, err)
		}
	}
	return nil
}

func (r *postgresScoreRepository) DeleteByRace(ctx context.Context, exec SQLExecutor, raceID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM scores WHERE race_id = $1`
	_, err := executor.ExecContext(ctx, query, raceID)
	return err
}

// UpsertForUserAndRace rewrites a single user's score row, used when an admin
// edits one prediction after results are in.
func (r *postgresScoreRepository) UpsertForUserAndRace(ctx context.Context, score *models.Score) error {
	query := `
		INSERT INTO scores
			(user_id, race_id, position_1_points, position_2_points, position_3_points, points, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, race_id) DO UPDATE SET
			position_1_points = EXCLUDED.position_1_points,
			position_2_points = EXCLUDED.position_2_points,
			position_3_points = EXCLUDED.position_3_points,
			points = EXCLUDED.points,
			calculated_at = EXCLUDED.calculated_at
		RETURNING id, calculated_at`

	return r.db.QueryRowContext(ctx, query,
		score.UserID,
		score.RaceID,
		score.Position1Points,
		score.Position2Points,
		score.Position3Points,
		score.Points,
	).Scan(&score.ID, &score.CalculatedAt)
}

func (r *postgresScoreRepository) DeleteByUserAndRace(ctx context.Context, userID, raceID int) error {
	query := `DELETE FROM scores WHERE user_id = $1 AND race_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, raceID)
	return err
}

func (r *postgresScoreRepository) ListByRace(ctx context.Context, raceID int) ([]*models.Score, error) {
	query := `
		SELECT s.id, s.user_id, s.race_id,
		       s.position_1_points, s.position_2_points, s.position_3_points,
		       s.points, s.calculated_at,
		       u.nickname
		FROM scores s
		JOIN users u ON s.user_id = u.id
		WHERE s.race_id = $1
		ORDER BY s.points DESC, u.nickname ASC`

	rows, err := r.db.QueryContext(ctx, query, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]*models.Score, 0)
	for rows.Next() {
		var s models.Score
		var nickname string
		if scanErr := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.RaceID,
			&s.Position1Points,
			&s.Position2Points,
			&s.Position3Points,
			&s.Points,
			&s.CalculatedAt,
			&nickname,
		); scanErr != nil {
			return nil, scanErr
		}
		s.User = &models.User{ID: s.UserID, Nickname: nickname}
		scores = append(scores, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *postgresScoreRepository) Standings(ctx context.Context, season int) ([]models.StandingEntry, error) {
	query := `
		SELECT s.user_id, u.nickname, SUM(s.points) AS total_points, COUNT(s.race_id) AS races_played
		FROM scores s
		JOIN users u ON s.user_id = u.id
		JOIN races ra ON s.race_id = ra.id
		WHERE ra.season = $1
		GROUP BY s.user_id, u.nickname
		ORDER BY total_points DESC, u.nickname ASC`

	rows, err := r.db.QueryContext(ctx, query, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.StandingEntry, 0)
	for rows.Next() {
		var entry models.StandingEntry
		if scanErr := rows.Scan(&entry.UserID, &entry.Nickname, &entry.TotalPoints, &entry.RacesPlayed); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

// SeasonPoints returns per-round scores for confirmed races of a season,
// ordered by round, for the cumulative progression chart.
func (r *postgresScoreRepository) SeasonPoints(ctx context.Context, season int) ([]models.RoundPoints, error) {
	query := `
		SELECT ra.round, s.user_id, u.nickname, s.points
		FROM scores s
		JOIN races ra ON s.race_id = ra.id
		JOIN users u ON s.user_id = u.id
		WHERE ra.season = $1 AND ra.is_result_confirmed = TRUE
		ORDER BY ra.round ASC, u.nickname ASC`

	rows, err := r.db.QueryContext(ctx, query, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]models.RoundPoints, 0)
	for rows.Next() {
		var rp models.RoundPoints
		if scanErr := rows.Scan(&rp.Round, &rp.UserID, &rp.Nickname, &rp.Points); scanErr != nil {
			return nil, scanErr
		}
		points = append(points, rp)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
