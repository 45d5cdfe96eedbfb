package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/podiumpicks/podium-api/models"
	"github.com/podiumpicks/podium-api/repositories"
)

// In-memory repository fakes. Each one keeps just enough state for the
// service tests; write counters let tests assert that rejected inputs never
// reach the store.

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if u.Nickname == user.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByNickname(_ context.Context, nickname string) (*models.User, error) {
	for _, u := range r.users {
		if u.Nickname == nickname {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.ID != user.ID && u.Nickname == user.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	clone := *user
	clone.PasswordHash = stored.PasswordHash
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) SetEmailVerified(_ context.Context, id int, verifiedAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.EmailVerifiedAt = &verifiedAt
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	ids := make([]int, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.users[id])
	}
	return out, nil
}

type fakeInvitationRepo struct {
	codes map[string]*models.InvitationCode
}

func newFakeInvitationRepo(codes ...*models.InvitationCode) *fakeInvitationRepo {
	r := &fakeInvitationRepo{codes: make(map[string]*models.InvitationCode)}
	for _, c := range codes {
		r.codes[c.Code] = c
	}
	return r
}

func (r *fakeInvitationRepo) GetByCode(_ context.Context, code string) (*models.InvitationCode, error) {
	c, ok := r.codes[code]
	if !ok {
		return nil, repositories.ErrInvitationCodeNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeInvitationRepo) IncrementUses(_ context.Context, id int) error {
	for _, c := range r.codes {
		if c.ID == id {
			if !c.IsActive || c.CurrentUses >= c.MaxUses {
				return repositories.ErrInvitationCodeExhausted
			}
			c.CurrentUses++
			return nil
		}
	}
	return repositories.ErrInvitationCodeNotFound
}

type fakeVerificationRepo struct {
	tokens []*models.VerificationToken
}

func (r *fakeVerificationRepo) Create(_ context.Context, token *models.VerificationToken) error {
	clone := *token
	r.tokens = append(r.tokens, &clone)
	return nil
}

func (r *fakeVerificationRepo) Get(_ context.Context, email, token string) (*models.VerificationToken, error) {
	for _, t := range r.tokens {
		if t.Email == email && t.Token == token {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repositories.ErrVerificationNotFound
}

func (r *fakeVerificationRepo) DeleteByEmail(_ context.Context, email string) error {
	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if t.Email != email {
			kept = append(kept, t)
		}
	}
	r.tokens = kept
	return nil
}

type fakeRaceRepo struct {
	races map[int]*models.Race
}

func newFakeRaceRepo(races ...*models.Race) *fakeRaceRepo {
	r := &fakeRaceRepo{races: make(map[int]*models.Race)}
	for _, race := range races {
		r.races[race.ID] = race
	}
	return r
}

func (r *fakeRaceRepo) Create(_ context.Context, race *models.Race) error {
	race.ID = len(r.races) + 1
	clone := *race
	r.races[race.ID] = &clone
	return nil
}

func (r *fakeRaceRepo) GetByID(_ context.Context, id int) (*models.Race, error) {
	race, ok := r.races[id]
	if !ok {
		return nil, repositories.ErrRaceNotFound
	}
	clone := *race
	return &clone, nil
}

func (r *fakeRaceRepo) ListBySeason(_ context.Context, season int) ([]*models.Race, error) {
	out := make([]*models.Race, 0)
	for _, race := range r.races {
		if race.Season == season {
			clone := *race
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out, nil
}

func (r *fakeRaceRepo) Update(_ context.Context, race *models.Race) error {
	if _, ok := r.races[race.ID]; !ok {
		return repositories.ErrRaceNotFound
	}
	clone := *race
	r.races[race.ID] = &clone
	return nil
}

func (r *fakeRaceRepo) UpdateTrackImage(_ context.Context, id int, trackImageKey *string) error {
	race, ok := r.races[id]
	if !ok {
		return repositories.ErrRaceNotFound
	}
	race.TrackImageKey = trackImageKey
	return nil
}

func (r *fakeRaceRepo) SetResultConfirmed(_ context.Context, _ repositories.SQLExecutor, id int, confirmed bool) error {
	race, ok := r.races[id]
	if !ok {
		return repositories.ErrRaceNotFound
	}
	race.IsResultConfirmed = confirmed
	return nil
}

type fakeRiderRepo struct {
	riders map[int]*models.Rider
}

func newFakeRiderRepo(riders ...*models.Rider) *fakeRiderRepo {
	r := &fakeRiderRepo{riders: make(map[int]*models.Rider)}
	for _, rider := range riders {
		r.riders[rider.ID] = rider
	}
	return r
}

// activeRider builds a minimal active rider for tests.
func activeRider(id int) *models.Rider {
	return &models.Rider{
		ID:        id,
		Number:    id,
		FirstName: "Rider",
		LastName:  fmt.Sprintf("Number%d", id),
		IsActive:  true,
		Season:    2026,
	}
}

func (r *fakeRiderRepo) Create(_ context.Context, rider *models.Rider) error {
	rider.ID = len(r.riders) + 1
	clone := *rider
	r.riders[rider.ID] = &clone
	return nil
}

func (r *fakeRiderRepo) GetByID(_ context.Context, id int) (*models.Rider, error) {
	rider, ok := r.riders[id]
	if !ok {
		return nil, repositories.ErrRiderNotFound
	}
	clone := *rider
	return &clone, nil
}

func (r *fakeRiderRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Rider, error) {
	out := make([]*models.Rider, 0, len(ids))
	for _, id := range ids {
		if rider, ok := r.riders[id]; ok {
			clone := *rider
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRiderRepo) ListBySeason(_ context.Context, season int, activeOnly bool) ([]*models.Rider, error) {
	out := make([]*models.Rider, 0)
	for _, rider := range r.riders {
		if rider.Season != season {
			continue
		}
		if activeOnly && !rider.IsActive {
			continue
		}
		clone := *rider
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRiderRepo) Update(_ context.Context, rider *models.Rider) error {
	if _, ok := r.riders[rider.ID]; !ok {
		return repositories.ErrRiderNotFound
	}
	clone := *rider
	r.riders[rider.ID] = &clone
	return nil
}

func (r *fakeRiderRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.riders[id]; !ok {
		return repositories.ErrRiderNotFound
	}
	delete(r.riders, id)
	return nil
}

type fakeTeamRepo struct {
	teams map[int]*models.Team
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[int]*models.Team)}
	for _, t := range teams {
		r.teams[t.ID] = t
	}
	return r
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTeamRepo) ListBySeason(_ context.Context, season int) ([]*models.Team, error) {
	out := make([]*models.Team, 0)
	for _, t := range r.teams {
		if t.Season == season {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePredictionRepo struct {
	predictions map[int]*models.Prediction
	nextID      int
	writes      int
}

func newFakePredictionRepo(predictions ...*models.Prediction) *fakePredictionRepo {
	r := &fakePredictionRepo{predictions: make(map[int]*models.Prediction), nextID: 1}
	for _, p := range predictions {
		r.predictions[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

func (r *fakePredictionRepo) Create(_ context.Context, prediction *models.Prediction) error {
	for _, p := range r.predictions {
		if p.UserID == prediction.UserID && p.RaceID == prediction.RaceID {
			return repositories.ErrPredictionConflict
		}
	}
	prediction.ID = r.nextID
	prediction.CreatedAt = time.Now()
	prediction.UpdatedAt = prediction.CreatedAt
	r.nextID++
	r.writes++
	clone := *prediction
	r.predictions[prediction.ID] = &clone
	return nil
}

func (r *fakePredictionRepo) Update(_ context.Context, prediction *models.Prediction) error {
	if _, ok := r.predictions[prediction.ID]; !ok {
		return repositories.ErrPredictionNotFound
	}
	prediction.UpdatedAt = time.Now()
	r.writes++
	clone := *prediction
	r.predictions[prediction.ID] = &clone
	return nil
}

func (r *fakePredictionRepo) GetByID(_ context.Context, id int) (*models.Prediction, error) {
	p, ok := r.predictions[id]
	if !ok {
		return nil, repositories.ErrPredictionNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakePredictionRepo) GetByUserAndRace(_ context.Context, userID, raceID int) (*models.Prediction, error) {
	for _, p := range r.predictions {
		if p.UserID == userID && p.RaceID == raceID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repositories.ErrPredictionNotFound
}

func (r *fakePredictionRepo) ListByRace(_ context.Context, _ repositories.SQLExecutor, raceID int) ([]*models.Prediction, error) {
	out := make([]*models.Prediction, 0)
	for _, p := range r.predictions {
		if p.RaceID == raceID {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePredictionRepo) ListByUser(_ context.Context, userID int) ([]*models.Prediction, error) {
	out := make([]*models.Prediction, 0)
	for _, p := range r.predictions {
		if p.UserID == userID {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePredictionRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.predictions[id]; !ok {
		return repositories.ErrPredictionNotFound
	}
	delete(r.predictions, id)
	return nil
}

type fakeResultRepo struct {
	results map[int]*models.RaceResult
}

func newFakeResultRepo(results ...*models.RaceResult) *fakeResultRepo {
	r := &fakeResultRepo{results: make(map[int]*models.RaceResult)}
	for _, res := range results {
		r.results[res.RaceID] = res
	}
	return r
}

func (r *fakeResultRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, result *models.RaceResult) error {
	if existing, ok := r.results[result.RaceID]; ok {
		result.ID = existing.ID
	} else {
		result.ID = len(r.results) + 1
	}
	result.ConfirmedAt = time.Now()
	clone := *result
	r.results[result.RaceID] = &clone
	return nil
}

func (r *fakeResultRepo) GetByRaceID(_ context.Context, _ repositories.SQLExecutor, raceID int) (*models.RaceResult, error) {
	res, ok := r.results[raceID]
	if !ok {
		return nil, repositories.ErrRaceResultNotFound
	}
	clone := *res
	return &clone, nil
}

func (r *fakeResultRepo) DeleteByRaceID(_ context.Context, _ repositories.SQLExecutor, raceID int) error {
	if _, ok := r.results[raceID]; !ok {
		return repositories.ErrRaceResultNotFound
	}
	delete(r.results, raceID)
	return nil
}

type fakeScoreRepo struct {
	scores    []*models.Score
	standings []models.StandingEntry
	rounds    []models.RoundPoints
}

func (r *fakeScoreRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, scores []*models.Score) error {
	for _, s := range scores {
		clone := *s
		r.scores = append(r.scores, &clone)
	}
	return nil
}

func (r *fakeScoreRepo) DeleteByRace(_ context.Context, _ repositories.SQLExecutor, raceID int) error {
	kept := r.scores[:0]
	for _, s := range r.scores {
		if s.RaceID != raceID {
			kept = append(kept, s)
		}
	}
	r.scores = kept
	return nil
}

func (r *fakeScoreRepo) UpsertForUserAndRace(_ context.Context, score *models.Score) error {
	for i, s := range r.scores {
		if s.UserID == score.UserID && s.RaceID == score.RaceID {
			clone := *score
			r.scores[i] = &clone
			return nil
		}
	}
	clone := *score
	r.scores = append(r.scores, &clone)
	return nil
}

func (r *fakeScoreRepo) DeleteByUserAndRace(_ context.Context, userID, raceID int) error {
	kept := r.scores[:0]
	for _, s := range r.scores {
		if !(s.UserID == userID && s.RaceID == raceID) {
			kept = append(kept, s)
		}
	}
	r.scores = kept
	return nil
}

func (r *fakeScoreRepo) ListByRace(_ context.Context, raceID int) ([]*models.Score, error) {
	out := make([]*models.Score, 0)
	for _, s := range r.scores {
		if s.RaceID == raceID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeScoreRepo) Standings(_ context.Context, _ int) ([]models.StandingEntry, error) {
	return r.standings, nil
}

func (r *fakeScoreRepo) SeasonPoints(_ context.Context, _ int) ([]models.RoundPoints, error) {
	return r.rounds, nil
}

func (r *fakeScoreRepo) scoreFor(userID, raceID int) *models.Score {
	for _, s := range r.scores {
		if s.UserID == userID && s.RaceID == raceID {
			return s
		}
	}
	return nil
}
