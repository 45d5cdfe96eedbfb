package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/podiumpicks/podium-api/models"
	"github.com/podiumpicks/podium-api/repositories"
)

type SavePredictionInput struct {
	RaceID           int `json:"race_id"`
	Position1RiderID int `json:"position_1_rider_id"`
	Position2RiderID int `json:"position_2_rider_id"`
	Position3RiderID int `json:"position_3_rider_id"`
}

func (in SavePredictionInput) podium() models.Podium {
	return models.Podium{
		Position1RiderID: in.Position1RiderID,
		Position2RiderID: in.Position2RiderID,
		Position3RiderID: in.Position3RiderID,
	}
}

type PredictionService interface {
	// Save upserts the caller's prediction for a race. The bool reports
	// whether an existing prediction was overwritten.
	Save(ctx context.Context, userID int, input SavePredictionInput) (*models.Prediction, bool, error)
	GetForUserAndRace(ctx context.Context, userID, raceID int) (*models.Prediction, error)
	ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error)
	// ListByRace returns every pick for a race. Admins see them at any time;
	// regular users only once the result is confirmed.
	ListByRace(ctx context.Context, raceID int, viewerRole models.UserRole) ([]*models.Prediction, error)
	// AdminUpdate rewrites any user's prediction, bypassing the lock. If the
	// race already has a confirmed result, that user's score row is
	// recomputed immediately.
	AdminUpdate(ctx context.Context, predictionID int, podium models.Podium) (*models.Prediction, error)
	// AdminDelete removes a prediction along with its score row, if any.
	AdminDelete(ctx context.Context, predictionID int) error
}

type predictionService struct {
	predictionRepo repositories.PredictionRepository
	raceRepo       repositories.RaceRepository
	riderRepo      repositories.RiderRepository
	resultRepo     repositories.RaceResultRepository
	scoreRepo      repositories.ScoreRepository
}

func NewPredictionService(
	predictionRepo repositories.PredictionRepository,
	raceRepo repositories.RaceRepository,
	riderRepo repositories.RiderRepository,
	resultRepo repositories.RaceResultRepository,
	scoreRepo repositories.ScoreRepository,
) PredictionService {
	return &predictionService{
		predictionRepo: predictionRepo,
		raceRepo:       raceRepo,
		riderRepo:      riderRepo,
		resultRepo:     resultRepo,
		scoreRepo:      scoreRepo,
	}
}

func (s *predictionService) Save(ctx context.Context, userID int, input SavePredictionInput) (*models.Prediction, bool, error) {
	podium := input.podium()

	// Validation happens before any write: a rejected submission leaves no row.
	riders, err := s.riderRepo.ListByIDs(ctx, uniqueIDs(podium))
	if err != nil {
		return nil, false, fmt.Errorf("failed to load riders for prediction: %w", err)
	}
	if err := validatePodiumRiders(podium, riders, true); err != nil {
		return nil, false, err
	}

	race, err := s.raceRepo.GetByID(ctx, input.RaceID)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return nil, false, ErrRaceNotFound
		}
		return nil, false, fmt.Errorf("failed to load race %d: %w", input.RaceID, err)
	}

	// Once results are confirmed the race is locked for everyone until an
	// admin unlocks it. New submissions are rejected too: the official podium
	// is public at that point.
	if race.IsResultConfirmed {
		return nil, false, ErrPredictionLocked
	}

	existing, err := s.predictionRepo.GetByUserAndRace(ctx, userID, input.RaceID)
	if err != nil && !errors.Is(err, repositories.ErrPredictionNotFound) {
		return nil, false, fmt.Errorf("failed to look up existing prediction: %w", err)
	}

	if existing != nil {
		existing.Podium = podium
		if err := s.predictionRepo.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("failed to update prediction %d: %w", existing.ID, err)
		}
		return existing, true, nil
	}

	prediction := &models.Prediction{
		UserID: userID,
		RaceID: input.RaceID,
		Podium: podium,
	}
	if err := s.predictionRepo.Create(ctx, prediction); err != nil {
		if errors.Is(err, repositories.ErrPredictionConflict) {
			// Lost a race against a concurrent submission by the same user;
			// retry as an update.
			return s.Save(ctx, userID, input)
		}
		return nil, false, fmt.Errorf("failed to create prediction: %w", err)
	}
	return prediction, false, nil
}

func (s *predictionService) GetForUserAndRace(ctx context.Context, userID, raceID int) (*models.Prediction, error) {
	prediction, err := s.predictionRepo.GetByUserAndRace(ctx, userID, raceID)
	if err != nil {
		if errors.Is(err, repositories.ErrPredictionNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}
	return prediction, nil
}

func (s *predictionService) ListByUser(ctx context.Context, userID int) ([]*models.Prediction, error) {
	return s.predictionRepo.ListByUser(ctx, userID)
}

func (s *predictionService) ListByRace(ctx context.Context, raceID int, viewerRole models.UserRole) ([]*models.Prediction, error) {
	race, err := s.raceRepo.GetByID(ctx, raceID)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return nil, ErrRaceNotFound
		}
		return nil, err
	}
	// Regular users only see everyone's picks once the race is locked,
	// otherwise a latecomer could copy the current best guess. Admins manage
	// predictions before confirmation, so they see the full list any time.
	if viewerRole != models.RoleAdmin && !race.IsResultConfirmed {
		return nil, ErrForbiddenOperation
	}
	return s.predictionRepo.ListByRace(ctx, nil, raceID)
}

func (s *predictionService) AdminUpdate(ctx context.Context, predictionID int, podium models.Podium) (*models.Prediction, error) {
	riders, err := s.riderRepo.ListByIDs(ctx, uniqueIDs(podium))
	if err != nil {
		return nil, fmt.Errorf("failed to load riders for prediction: %w", err)
	}
	// Admins may reference inactive riders (e.g. fixing history after a
	// wildcard was deactivated).
	if err := validatePodiumRiders(podium, riders, false); err != nil {
		return nil, err
	}

	prediction, err := s.predictionRepo.GetByID(ctx, predictionID)
	if err != nil {
		if errors.Is(err, repositories.ErrPredictionNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, err
	}

	prediction.Podium = podium
	if err := s.predictionRepo.Update(ctx, prediction); err != nil {
		return nil, fmt.Errorf("failed to update prediction %d: %w", predictionID, err)
	}

	// A confirmed result means this user's score row must follow the edit.
	result, err := s.resultRepo.GetByRaceID(ctx, nil, prediction.RaceID)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceResultNotFound) {
			return prediction, nil
		}
		return nil, fmt.Errorf("failed to check result for race %d: %w", prediction.RaceID, err)
	}

	score := scoreFor(prediction, result.Podium)
	if err := s.scoreRepo.UpsertForUserAndRace(ctx, score); err != nil {
		return nil, fmt.Errorf("failed to rescore user %d for race %d: %w", prediction.UserID, prediction.RaceID, err)
	}
	return prediction, nil
}

func (s *predictionService) AdminDelete(ctx context.Context, predictionID int) error {
	prediction, err := s.predictionRepo.GetByID(ctx, predictionID)
	if err != nil {
		if errors.Is(err, repositories.ErrPredictionNotFound) {
			return ErrPredictionNotFound
		}
		return err
	}

	if err := s.predictionRepo.Delete(ctx, predictionID); err != nil {
		return err
	}
	// Keep the invariant: a score row exists only alongside its prediction.
	if err := s.scoreRepo.DeleteByUserAndRace(ctx, prediction.UserID, prediction.RaceID); err != nil {
		return fmt.Errorf("failed to delete score for removed prediction %d: %w", predictionID, err)
	}
	return nil
}

// uniqueIDs collapses the triple for the riders lookup; duplicates are caught
// later by the distinctness check, which produces the better error.
func uniqueIDs(podium models.Podium) []int {
	seen := make(map[int]struct{}, 3)
	ids := make([]int, 0, 3)
	for _, id := range podium.Riders() {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
