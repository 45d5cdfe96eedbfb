package services

import (
	"context"
	"fmt"

	"github.com/podiumpicks/podium-api/models"
	"github.com/podiumpicks/podium-api/repositories"
	"golang.org/x/sync/errgroup"
)

// Leaderboard is the season standings plus the per-round cumulative series
// the progression chart is drawn from.
type Leaderboard struct {
	Season      int                       `json:"season"`
	Standings   []models.StandingEntry    `json:"standings"`
	Progression []models.ProgressionPoint `json:"progression"`
}

type LeaderboardService interface {
	GetBySeason(ctx context.Context, season int) (*Leaderboard, error)
}

type leaderboardService struct {
	scoreRepo repositories.ScoreRepository
}

func NewLeaderboardService(scoreRepo repositories.ScoreRepository) LeaderboardService {
	return &leaderboardService{scoreRepo: scoreRepo}
}

func (s *leaderboardService) GetBySeason(ctx context.Context, season int) (*Leaderboard, error) {
	var (
		standings   []models.StandingEntry
		roundPoints []models.RoundPoints
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		standings, err = s.scoreRepo.Standings(gctx, season)
		if err != nil {
			return fmt.Errorf("failed to load standings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		roundPoints, err = s.scoreRepo.SeasonPoints(gctx, season)
		if err != nil {
			return fmt.Errorf("failed to load season points: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Leaderboard{
		Season:      season,
		Standings:   standings,
		Progression: buildProgression(roundPoints),
	}, nil
}

// buildProgression turns per-round points into cumulative totals per user.
// Input rows arrive ordered by round; output preserves that order.
func buildProgression(roundPoints []models.RoundPoints) []models.ProgressionPoint {
	totals := make(map[int]int)
	progression := make([]models.ProgressionPoint, 0, len(roundPoints))
	for _, rp := range roundPoints {
		totals[rp.UserID] += rp.Points
		progression = append(progression, models.ProgressionPoint{
			Round:    rp.Round,
			Nickname: rp.Nickname,
			Total:    totals[rp.UserID],
		})
	}
	return progression
}
