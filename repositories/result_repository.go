package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/podiumpicks/podium-api/models"
)

var (
	ErrRaceResultNotFound  = errors.New("race result not found")
	ErrRaceResultFKInvalid = errors.New("race result references a missing race or rider")
)

type RaceResultRepository interface {
	// Upsert inserts the result for a race or, if one exists, overwrites its
	// podium and confirmation metadata. One result per race.
	Upsert(ctx context.Context, exec SQLExecutor, result *models.RaceResult) error
	GetByRaceID(ctx context.Context, exec SQLExecutor, raceID int) (*models.RaceResult, error)
	DeleteByRaceID(ctx context.Context, exec SQLExecutor, raceID int) error
}

type postgresRaceResultRepository struct {
	db *sql.DB
}

func NewPostgresRaceResultRepository(db *sql.DB) RaceResultRepository {
	return &postgresRaceResultRepository{db: db}
}

func (r *postgresRaceResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRaceResultRepository) Upsert(ctx context.Context, exec SQLExecutor, result *models.RaceResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO race_results
			(race_id, position_1_rider_id, position_2_rider_id, position_3_rider_id, confirmed_at, confirmed_by)
		VALUES ($1, $2, $3, $4, NOW(), $5)
		ON CONFLICT (race_id) DO UPDATE SET
			position_1_rider_id = EXCLUDED.position_1_rider_id,
			position_2_rider_id = EXCLUDED.position_2_rider_id,
			position_3_rider_id = EXCLUDED.position_3_rider_id,
			confirmed_at = EXCLUDED.confirmed_at,
			confirmed_by = EXCLUDED.confirmed_by
		RETURNING id, confirmed_at`

	err := executor.QueryRowContext(ctx, query,
		result.RaceID,
		result.Position1RiderID,
		result.Position2RiderID,
		result.Position3RiderID,
		result.ConfirmedBy,
	).Scan(&result.ID, &result.ConfirmedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrRaceResultFKInvalid
		}
		return err
	}
	return nil
}

func (r *postgresRaceResultRepository) GetByRaceID(ctx context.Context, exec SQLExecutor, raceID int) (*models.RaceResult, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, race_id, position_1_rider_id, position_2_rider_id, position_3_rider_id, confirmed_at, confirmed_by
		FROM race_results
		WHERE race_id = $1`

	result := &models.RaceResult{}
	err := executor.QueryRowContext(ctx, query, raceID).Scan(
		&result.ID,
		&result.RaceID,
		&result.Position1RiderID,
		&result.Position2RiderID,
		&result.Position3RiderID,
		&result.ConfirmedAt,
		&result.ConfirmedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRaceResultNotFound
		}
		return nil, err
	}
	return result, nil
}

func (r *postgresRaceResultRepository) DeleteByRaceID(ctx context.Context, exec SQLExecutor, raceID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM race_results WHERE race_id = $1`
	result, err := executor.ExecContext(ctx, query, raceID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRaceResultNotFound)
}
