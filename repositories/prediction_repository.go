package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/podiumpicks/podium-api/models"
)

var (
	ErrPredictionNotFound  = errors.New("prediction not found")
	ErrPredictionConflict  = errors.New("prediction already exists for this user and race")
	ErrPredictionFKInvalid = errors.New("prediction references a missing user, race, or rider")
)

type PredictionRepository interface {
	Create(ctx context.Context, prediction *models.Prediction) error
	Update(ctx context.Context, prediction *models.Prediction) error
	GetByID(ctx context.Context, id int) (*models.Prediction, error)
	GetByUserAndRace(ctx context.Context, userID, raceID int) (*models.Prediction, error)
	// ListByRace takes an executor so the bulk rescore can read the set of
	// predictions inside the same transaction that rewrites the scores.
	ListByRace(ctx context.Context, exec SQLExecutor, raceID int) ([]*models.Prediction, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error)
	Delete(ctx context.Context, id int) error
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

const predictionColumns = `id, user_id, race_id, position_1_rider_id, position_2_rider_id, position_3_rider_id, created_at, updated_at`

func (r *postgresPredictionRepository) Create(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO predictions
			(user_id, race_id, position_1_rider_id, position_2_rider_id, position_3_rider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		prediction.UserID,
		prediction.RaceID,
		prediction.Position1RiderID,
		prediction.Position2RiderID,
		prediction.Position3RiderID,
	).Scan(&prediction.ID, &prediction.CreatedAt, &prediction.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				// predictions_user_id_race_id_key
				return ErrPredictionConflict
			case "23503":
				return ErrPredictionFKInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresPredictionRepository) Update(ctx context.Context, prediction *models.Prediction) error {
	query := `
		UPDATE predictions SET
			position_1_rider_id = $1,
			position_2_rider_id = $2,
			position_3_rider_id = $3,
			updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		prediction.Position1RiderID,
		prediction.Position2RiderID,
		prediction.Position3RiderID,
		prediction.ID,
	).Scan(&prediction.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPredictionNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrPredictionFKInvalid
		}
		return err
	}
	return nil
}

func (r *postgresPredictionRepository) GetByID(ctx context.Context, id int) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`
	return r.scanPrediction(ctx, query, id)
}

func (r *postgresPredictionRepository) GetByUserAndRace(ctx context.Context, userID, raceID int) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE user_id = $1 AND race_id = $2`
	return r.scanPrediction(ctx, query, userID, raceID)
}

func (r *postgresPredictionRepository) ListByRace(ctx context.Context, exec SQLExecutor, raceID int) ([]*models.Prediction, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT p.id, p.user_id, p.race_id,
		       p.position_1_rider_id, p.position_2_rider_id, p.position_3_rider_id,
		       p.created_at, p.updated_at,
		       u.nickname
		FROM predictions p
		JOIN users u ON p.user_id = u.id
		WHERE p.race_id = $1
		ORDER BY u.nickname ASC`

	rows, err := exec.QueryContext(ctx, query, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := make([]*models.Prediction, 0)
	for rows.Next() {
		var p models.Prediction
		var nickname string
		if scanErr := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.RaceID,
			&p.Position1RiderID,
			&p.Position2RiderID,
			&p.Position3RiderID,
			&p.CreatedAt,
			&p.UpdatedAt,
			&nickname,
		); scanErr != nil {
			return nil, scanErr
		}
		p.User = &models.User{ID: p.UserID, Nickname: nickname}
		predictions = append(predictions, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *postgresPredictionRepository) ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE user_id = $1 ORDER BY race_id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := make([]*models.Prediction, 0)
	for rows.Next() {
		var p models.Prediction
		if scanErr := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.RaceID,
			&p.Position1RiderID,
			&p.Position2RiderID,
			&p.Position3RiderID,
			&p.CreatedAt,
			&p.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		predictions = append(predictions, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *postgresPredictionRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM predictions WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

func (r *postgresPredictionRepository) scanPrediction(ctx context.Context, query string, args ...interface{}) (*models.Prediction, error) {
	p := &models.Prediction{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.UserID,
		&p.RaceID,
		&p.Position1RiderID,
		&p.Position2RiderID,
		&p.Position3RiderID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}
	return p, nil
}
