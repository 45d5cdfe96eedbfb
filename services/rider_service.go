package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/podiumpicks/podium-api/models"
	"github.com/podiumpicks/podium-api/repositories"
)

type CreateRiderInput struct {
	Number      int    `json:"number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TeamID      *int   `json:"team_id"`
	Nationality string `json:"nationality"`
	IsWildcard  bool   `json:"is_wildcard"`
	ImageURL    string `json:"image_url"`
	Season      int    `json:"season"`
}

type UpdateRiderInput struct {
	Number      *int    `json:"number"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	TeamID      *int    `json:"team_id"`
	Nationality *string `json:"nationality"`
	IsWildcard  *bool   `json:"is_wildcard"`
	ImageURL    *string `json:"image_url"`
	IsActive    *bool   `json:"is_active"`
}

type RiderService interface {
	ListBySeason(ctx context.Context, season int, activeOnly bool) ([]*models.Rider, error)
	GetByID(ctx context.Context, id int) (*models.Rider, error)
	Create(ctx context.Context, input CreateRiderInput) (*models.Rider, error)
	Update(ctx context.Context, id int, input UpdateRiderInput) (*models.Rider, error)
	Delete(ctx context.Context, id int) error
	ListTeams(ctx context.Context, season int) ([]*models.Team, error)
}

type riderService struct {
	riderRepo repositories.RiderRepository
	teamRepo  repositories.TeamRepository
}

func NewRiderService(riderRepo repositories.RiderRepository, teamRepo repositories.TeamRepository) RiderService {
	return &riderService{riderRepo: riderRepo, teamRepo: teamRepo}
}

func (s *riderService) ListBySeason(ctx context.Context, season int, activeOnly bool) ([]*models.Rider, error) {
	riders, err := s.riderRepo.ListBySeason(ctx, season, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list riders for season %d: %w", season, err)
	}
	return riders, nil
}

func (s *riderService) GetByID(ctx context.Context, id int) (*models.Rider, error) {
	rider, err := s.riderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRiderNotFound) {
			return nil, ErrRiderNotFound
		}
		return nil, fmt.Errorf("failed to get rider %d: %w", id, err)
	}
	return rider, nil
}

func (s *riderService) Create(ctx context.Context, input CreateRiderInput) (*models.Rider, error) {
	if input.Number <= 0 || input.Season <= 0 {
		return nil, ErrValidationFailed
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrValidationFailed
	}
	if input.TeamID != nil {
		if _, err := s.teamRepo.GetByID(ctx, *input.TeamID); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, fmt.Errorf("failed to check team %d: %w", *input.TeamID, err)
		}
	}

	rider := &models.Rider{
		Number:      input.Number,
		FirstName:   firstName,
		LastName:    lastName,
		TeamID:      input.TeamID,
		Nationality: strings.ToUpper(strings.TrimSpace(input.Nationality)),
		IsWildcard:  input.IsWildcard,
		IsActive:    true,
		Season:      input.Season,
	}
	if url := strings.TrimSpace(input.ImageURL); url != "" {
		rider.ImageURL = &url
	}
	if err := s.riderRepo.Create(ctx, rider); err != nil {
		if errors.Is(err, repositories.ErrRiderTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create rider: %w", err)
	}
	return rider, nil
}

func (s *riderService) Update(ctx context.Context, id int, input UpdateRiderInput) (*models.Rider, error) {
	rider, err := s.riderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRiderNotFound) {
			return nil, ErrRiderNotFound
		}
		return nil, fmt.Errorf("failed to get rider %d: %w", id, err)
	}

	if input.Number != nil {
		if *input.Number <= 0 {
			return nil, ErrValidationFailed
		}
		rider.Number = *input.Number
	}
	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return nil, ErrValidationFailed
		}
		rider.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		if strings.TrimSpace(*input.LastName) == "" {
			return nil, ErrValidationFailed
		}
		rider.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.TeamID != nil {
		if _, err := s.teamRepo.GetByID(ctx, *input.TeamID); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, fmt.Errorf("failed to check team %d: %w", *input.TeamID, err)
		}
		rider.TeamID = input.TeamID
	}
	if input.Nationality != nil {
		rider.Nationality = strings.ToUpper(strings.TrimSpace(*input.Nationality))
	}
	if input.IsWildcard != nil {
		rider.IsWildcard = *input.IsWildcard
	}
	if input.ImageURL != nil {
		if url := strings.TrimSpace(*input.ImageURL); url != "" {
			rider.ImageURL = &url
		} else {
			rider.ImageURL = nil
		}
	}
	if input.IsActive != nil {
		rider.IsActive = *input.IsActive
	}

	if err := s.riderRepo.Update(ctx, rider); err != nil {
		if errors.Is(err, repositories.ErrRiderTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update rider %d: %w", id, err)
	}
	return rider, nil
}

func (s *riderService) Delete(ctx context.Context, id int) error {
	if err := s.riderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrRiderNotFound) {
			return ErrRiderNotFound
		}
		return fmt.Errorf("failed to delete rider %d: %w", id, err)
	}
	return nil
}

func (s *riderService) ListTeams(ctx context.Context, season int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for season %d: %w", season, err)
	}
	return teams, nil
}
