package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/podiumpicks/podium-api/live"
	"github.com/podiumpicks/podium-api/models"
	"github.com/podiumpicks/podium-api/repositories"
)

type ConfirmResultInput struct {
	Position1RiderID int `json:"position_1_rider_id"`
	Position2RiderID int `json:"position_2_rider_id"`
	Position3RiderID int `json:"position_3_rider_id"`
}

func (in ConfirmResultInput) podium() models.Podium {
	return models.Podium{
		Position1RiderID: in.Position1RiderID,
		Position2RiderID: in.Position2RiderID,
		Position3RiderID: in.Position3RiderID,
	}
}

type ResultService interface {
	// Confirm upserts the official podium for a race, marks it confirmed and
	// regenerates every score row for that race in one transaction.
	Confirm(ctx context.Context, raceID int, input ConfirmResultInput, adminID int) (*models.RaceResult, error)
	// Recalculate rebuilds all scores for a race from its stored result.
	// Idempotent: rerunning it produces the same rows.
	Recalculate(ctx context.Context, raceID int) error
	// Delete removes the result and every score for the race and clears the
	// confirmation flag, reopening the race for editing.
	Delete(ctx context.Context, raceID int) error
	// Unlock clears the confirmation flag only; the result and scores stay.
	Unlock(ctx context.Context, raceID int) error
	GetByRace(ctx context.Context, raceID int) (*models.RaceResult, error)
	ListScoresByRace(ctx context.Context, raceID int) ([]*models.Score, error)
}

// txRunner runs a function inside one database transaction. Extracted so the
// confirm/delete cascades can be exercised without a live database.
type txRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type sqlTxRunner struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *sqlTxRunner) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("rollback failed", slog.Any("error", rbErr), slog.Any("cause", err))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type resultService struct {
	tx             txRunner
	resultRepo     repositories.RaceResultRepository
	raceRepo       repositories.RaceRepository
	riderRepo      repositories.RiderRepository
	predictionRepo repositories.PredictionRepository
	scoreRepo      repositories.ScoreRepository
	hub            *live.Hub
	logger         *slog.Logger
}

func NewResultService(
	db *sql.DB,
	resultRepo repositories.RaceResultRepository,
	raceRepo repositories.RaceRepository,
	riderRepo repositories.RiderRepository,
	predictionRepo repositories.PredictionRepository,
	scoreRepo repositories.ScoreRepository,
	hub *live.Hub,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		tx:             &sqlTxRunner{db: db, logger: logger},
		resultRepo:     resultRepo,
		raceRepo:       raceRepo,
		riderRepo:      riderRepo,
		predictionRepo: predictionRepo,
		scoreRepo:      scoreRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *resultService) Confirm(ctx context.Context, raceID int, input ConfirmResultInput, adminID int) (*models.RaceResult, error) {
	podium := input.podium()

	riders, err := s.riderRepo.ListByIDs(ctx, uniqueIDs(podium))
	if err != nil {
		return nil, fmt.Errorf("failed to load riders for result: %w", err)
	}
	if err := validatePodiumRiders(podium, riders, false); err != nil {
		return nil, err
	}

	if _, err := s.raceRepo.GetByID(ctx, raceID); err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return nil, ErrRaceNotFound
		}
		return nil, fmt.Errorf("failed to load race %d: %w", raceID, err)
	}

	result := &models.RaceResult{
		RaceID:      raceID,
		Podium:      podium,
		ConfirmedBy: &adminID,
	}

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.resultRepo.Upsert(ctx, tx, result); err != nil {
			return fmt.Errorf("failed to upsert result for race %d: %w", raceID, err)
		}
		if err := s.raceRepo.SetResultConfirmed(ctx, tx, raceID, true); err != nil {
			return fmt.Errorf("failed to mark race %d confirmed: %w", raceID, err)
		}
		return s.regenerateScores(ctx, tx, raceID, podium)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(raceID, live.EventResultConfirmed, result)
	return result, nil
}

func (s *resultService) Recalculate(ctx context.Context, raceID int) error {
	result, err := s.resultRepo.GetByRaceID(ctx, nil, raceID)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceResultNotFound) {
			return ErrRaceResultNotFound
		}
		return fmt.Errorf("failed to load result for race %d: %w", raceID, err)
	}

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		return s.regenerateScores(ctx, tx, raceID, result.Podium)
	})
	if err != nil {
		return err
	}

	s.broadcast(raceID, live.EventScoresRecalculated, nil)
	return nil
}

func (s *resultService) Delete(ctx context.Context, raceID int) error {
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.scoreRepo.DeleteByRace(ctx, tx, raceID); err != nil {
			return fmt.Errorf("failed to delete scores for race %d: %w", raceID, err)
		}
		if err := s.resultRepo.DeleteByRaceID(ctx, tx, raceID); err != nil {
			if errors.Is(err, repositories.ErrRaceResultNotFound) {
				return ErrRaceResultNotFound
			}
			return fmt.Errorf("failed to delete result for race %d: %w", raceID, err)
		}
		if err := s.raceRepo.SetResultConfirmed(ctx, tx, raceID, false); err != nil {
			return fmt.Errorf("failed to clear confirmation for race %d: %w", raceID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcast(raceID, live.EventResultDeleted, nil)
	return nil
}

func (s *resultService) Unlock(ctx context.Context, raceID int) error {
	if err := s.raceRepo.SetResultConfirmed(ctx, nil, raceID, false); err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return ErrRaceNotFound
		}
		return err
	}
	s.broadcast(raceID, live.EventRaceUnlocked, nil)
	return nil
}

func (s *resultService) GetByRace(ctx context.Context, raceID int) (*models.RaceResult, error) {
	result, err := s.resultRepo.GetByRaceID(ctx, nil, raceID)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceResultNotFound) {
			return nil, ErrRaceResultNotFound
		}
		return nil, err
	}
	return result, nil
}

func (s *resultService) ListScoresByRace(ctx context.Context, raceID int) ([]*models.Score, error) {
	if _, err := s.raceRepo.GetByID(ctx, raceID); err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return nil, ErrRaceNotFound
		}
		return nil, err
	}
	return s.scoreRepo.ListByRace(ctx, raceID)
}

// regenerateScores discards and rebuilds every score row for a race inside
// the caller's transaction, so no reader observes a partially rescored race.
func (s *resultService) regenerateScores(ctx context.Context, tx *sql.Tx, raceID int, podium models.Podium) error {
	if err := s.scoreRepo.DeleteByRace(ctx, tx, raceID); err != nil {
		return fmt.Errorf("failed to discard scores for race %d: %w", raceID, err)
	}
	predictions, err := s.predictionRepo.ListByRace(ctx, tx, raceID)
	if err != nil {
		return fmt.Errorf("failed to list predictions for race %d: %w", raceID, err)
	}
	if err := s.scoreRepo.BatchCreate(ctx, tx, buildScores(predictions, podium)); err != nil {
		return fmt.Errorf("failed to insert scores for race %d: %w", raceID, err)
	}
	return nil
}

func (s *resultService) broadcast(raceID int, event string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRace(raceID, event, payload)
	s.hub.BroadcastGlobal(event, map[string]int{"race_id": raceID})
}
