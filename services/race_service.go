package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/podiumpicks/podium-api/models"
	"github.com/podiumpicks/podium-api/repositories"
	"github.com/podiumpicks/podium-api/storage"
)

const maxTrackImageSizeBytes = 5 << 20

type CreateRaceInput struct {
	Round       int    `json:"round"`
	Name        string `json:"name"`
	Circuit     string `json:"circuit"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Date        string `json:"date"`
	Season      int    `json:"season"`
}

type UpdateRaceInput struct {
	Name               *string            `json:"name"`
	Circuit            *string            `json:"circuit"`
	Country            *string            `json:"country"`
	CountryCode        *string            `json:"country_code"`
	Date               *string            `json:"date"`
	NewDate            *string            `json:"new_date"`
	Status             *models.RaceStatus `json:"status"`
	OfficialResultsURL *string            `json:"official_results_url"`
}

type RaceService interface {
	ListBySeason(ctx context.Context, season int) ([]*models.Race, error)
	GetByID(ctx context.Context, id int) (*models.Race, error)
	Create(ctx context.Context, input CreateRaceInput) (*models.Race, error)
	UpdateInfo(ctx context.Context, id int, input UpdateRaceInput) (*models.Race, error)
	UploadTrackImage(ctx context.Context, id int, data []byte, contentType string) (*models.Race, error)
}

type raceService struct {
	raceRepo   repositories.RaceRepository
	resultRepo repositories.RaceResultRepository
	uploader   storage.FileUploader
}

func NewRaceService(raceRepo repositories.RaceRepository, resultRepo repositories.RaceResultRepository, uploader storage.FileUploader) RaceService {
	return &raceService{raceRepo: raceRepo, resultRepo: resultRepo, uploader: uploader}
}

func (s *raceService) ListBySeason(ctx context.Context, season int) ([]*models.Race, error) {
	races, err := s.raceRepo.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list races for season %d: %w", season, err)
	}
	for _, race := range races {
		populateRaceTrackImageURL(race, s.uploader)
		if race.IsResultConfirmed {
			result, err := s.resultRepo.GetByRaceID(ctx, nil, race.ID)
			if err != nil {
				if errors.Is(err, repositories.ErrRaceResultNotFound) {
					continue
				}
				return nil, fmt.Errorf("failed to load result for race %d: %w", race.ID, err)
			}
			race.Result = result
		}
	}
	return races, nil
}

func (s *raceService) GetByID(ctx context.Context, id int) (*models.Race, error) {
	race, err := s.raceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return nil, ErrRaceNotFound
		}
		return nil, fmt.Errorf("failed to get race %d: %w", id, err)
	}
	populateRaceTrackImageURL(race, s.uploader)
	if race.IsResultConfirmed {
		result, err := s.resultRepo.GetByRaceID(ctx, nil, race.ID)
		if err == nil {
			race.Result = result
		} else if !errors.Is(err, repositories.ErrRaceResultNotFound) {
			return nil, fmt.Errorf("failed to load result for race %d: %w", id, err)
		}
	}
	return race, nil
}

func (s *raceService) Create(ctx context.Context, input CreateRaceInput) (*models.Race, error) {
	if input.Round <= 0 || input.Season <= 0 {
		return nil, ErrValidationFailed
	}
	name := strings.TrimSpace(input.Name)
	circuit := strings.TrimSpace(input.Circuit)
	if name == "" || circuit == "" {
		return nil, ErrValidationFailed
	}
	date, err := parseRaceDate(input.Date)
	if err != nil {
		return nil, ErrValidationFailed
	}

	race := &models.Race{
		Round:       input.Round,
		Name:        name,
		Circuit:     circuit,
		Country:     strings.TrimSpace(input.Country),
		CountryCode: strings.ToUpper(strings.TrimSpace(input.CountryCode)),
		Date:        date,
		Season:      input.Season,
		Status:      models.RaceStatusScheduled,
	}
	if err := s.raceRepo.Create(ctx, race); err != nil {
		return nil, fmt.Errorf("failed to create race: %w", err)
	}
	return race, nil
}

func (s *raceService) UpdateInfo(ctx context.Context, id int, input UpdateRaceInput) (*models.Race, error) {
	race, err := s.raceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return nil, ErrRaceNotFound
		}
		return nil, fmt.Errorf("failed to get race %d: %w", id, err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrValidationFailed
		}
		race.Name = strings.TrimSpace(*input.Name)
	}
	if input.Circuit != nil {
		race.Circuit = strings.TrimSpace(*input.Circuit)
	}
	if input.Country != nil {
		race.Country = strings.TrimSpace(*input.Country)
	}
	if input.CountryCode != nil {
		race.CountryCode = strings.ToUpper(strings.TrimSpace(*input.CountryCode))
	}
	if input.Date != nil {
		date, err := parseRaceDate(*input.Date)
		if err != nil {
			return nil, ErrValidationFailed
		}
		race.Date = date
	}
	if input.NewDate != nil {
		if *input.NewDate == "" {
			race.NewDate = nil
		} else {
			newDate, err := parseRaceDate(*input.NewDate)
			if err != nil {
				return nil, ErrValidationFailed
			}
			race.NewDate = &newDate
		}
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrRaceStatusInvalid
		}
		race.Status = *input.Status
	}
	if input.OfficialResultsURL != nil {
		if url := strings.TrimSpace(*input.OfficialResultsURL); url != "" {
			race.OfficialResultsURL = &url
		} else {
			race.OfficialResultsURL = nil
		}
	}

	// A rescheduled race must carry the date it moved to.
	if race.Status == models.RaceStatusRescheduled && race.NewDate == nil {
		return nil, ErrRaceNewDateRequired
	}

	if err := s.raceRepo.Update(ctx, race); err != nil {
		return nil, fmt.Errorf("failed to update race %d: %w", id, err)
	}
	populateRaceTrackImageURL(race, s.uploader)
	return race, nil
}

func (s *raceService) UploadTrackImage(ctx context.Context, id int, data []byte, contentType string) (*models.Race, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	if len(data) == 0 || len(data) > maxTrackImageSizeBytes {
		return nil, ErrValidationFailed
	}
	ext, err := extensionForImageContentType(contentType)
	if err != nil {
		return nil, err
	}

	race, err := s.raceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return nil, ErrRaceNotFound
		}
		return nil, fmt.Errorf("failed to get race %d: %w", id, err)
	}

	key := fmt.Sprintf("tracks/%d-%d%s", id, time.Now().Unix(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to upload track image: %w", err)
	}
	if err := s.raceRepo.UpdateTrackImage(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("failed to save track image key: %w", err)
	}

	race.TrackImageKey = &key
	populateRaceTrackImageURL(race, s.uploader)
	return race, nil
}

func parseRaceDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
