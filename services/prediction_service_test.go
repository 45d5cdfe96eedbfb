package services

import (
	"context"
	"testing"

	"github.com/podiumpicks/podium-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPredictionFixture(t *testing.T) (*fakePredictionRepo, *fakeRaceRepo, *fakeRiderRepo, *fakeResultRepo, *fakeScoreRepo, PredictionService) {
	t.Helper()
	predictionRepo := newFakePredictionRepo()
	raceRepo := newFakeRaceRepo(&models.Race{ID: 1, Round: 1, Name: "Qatar GP", Season: 2026})
	riderRepo := newFakeRiderRepo(activeRider(93), activeRider(1), activeRider(72), activeRider(20))
	resultRepo := newFakeResultRepo()
	scoreRepo := &fakeScoreRepo{}
	svc := NewPredictionService(predictionRepo, raceRepo, riderRepo, resultRepo, scoreRepo)
	return predictionRepo, raceRepo, riderRepo, resultRepo, scoreRepo, svc
}

func TestSavePredictionCreatesThenUpdates(t *testing.T) {
	predictionRepo, _, _, _, _, svc := newPredictionFixture(t)
	ctx := context.Background()

	created, overwritten, err := svc.Save(ctx, 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 93, Position2RiderID: 1, Position3RiderID: 72,
	})
	require.NoError(t, err)
	assert.False(t, overwritten)
	assert.NotZero(t, created.ID)

	updated, overwritten, err := svc.Save(ctx, 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 1, Position2RiderID: 93, Position3RiderID: 20,
	})
	require.NoError(t, err)
	assert.True(t, overwritten)
	assert.Equal(t, created.ID, updated.ID, "resubmitting must overwrite, not add a row")
	assert.Equal(t, 1, updated.Position1RiderID)

	stored, err := predictionRepo.GetByUserAndRace(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.Position3RiderID)
	assert.Len(t, predictionRepo.predictions, 1)
}

func TestSavePredictionRejectsDuplicateRiders(t *testing.T) {
	predictionRepo, _, _, _, _, svc := newPredictionFixture(t)

	_, _, err := svc.Save(context.Background(), 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 93, Position2RiderID: 93, Position3RiderID: 72,
	})

	assert.ErrorIs(t, err, ErrPredictionSameRider)
	assert.Zero(t, predictionRepo.writes, "a rejected submission must leave no row")
}

func TestSavePredictionRejectsUnknownRider(t *testing.T) {
	predictionRepo, _, _, _, _, svc := newPredictionFixture(t)

	_, _, err := svc.Save(context.Background(), 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 93, Position2RiderID: 1, Position3RiderID: 999,
	})

	assert.ErrorIs(t, err, ErrRiderNotFound)
	assert.Zero(t, predictionRepo.writes)
}

func TestSavePredictionRejectsInactiveRider(t *testing.T) {
	predictionRepo, _, riderRepo, _, _, svc := newPredictionFixture(t)
	retired := activeRider(46)
	retired.IsActive = false
	riderRepo.riders[46] = retired

	_, _, err := svc.Save(context.Background(), 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 46, Position2RiderID: 1, Position3RiderID: 72,
	})

	assert.ErrorIs(t, err, ErrRiderInactive)
	assert.Zero(t, predictionRepo.writes)
}

func TestSavePredictionLockedAfterConfirmation(t *testing.T) {
	predictionRepo, raceRepo, _, _, _, svc := newPredictionFixture(t)
	raceRepo.races[1].IsResultConfirmed = true

	// New submission: the official podium is public, copying it must fail.
	_, _, err := svc.Save(context.Background(), 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 93, Position2RiderID: 1, Position3RiderID: 72,
	})
	assert.ErrorIs(t, err, ErrPredictionLocked)
	assert.Zero(t, predictionRepo.writes)
}

func TestSavePredictionEditLockedAfterConfirmation(t *testing.T) {
	predictionRepo, raceRepo, _, _, _, svc := newPredictionFixture(t)
	ctx := context.Background()

	_, _, err := svc.Save(ctx, 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 93, Position2RiderID: 1, Position3RiderID: 72,
	})
	require.NoError(t, err)

	raceRepo.races[1].IsResultConfirmed = true

	_, _, err = svc.Save(ctx, 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 1, Position2RiderID: 93, Position3RiderID: 72,
	})
	assert.ErrorIs(t, err, ErrPredictionLocked)

	stored, err := predictionRepo.GetByUserAndRace(ctx, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 93, stored.Position1RiderID, "locked prediction must keep its original podium")
}

func TestSavePredictionUnknownRace(t *testing.T) {
	_, _, _, _, _, svc := newPredictionFixture(t)

	_, _, err := svc.Save(context.Background(), 10, SavePredictionInput{
		RaceID: 77, Position1RiderID: 93, Position2RiderID: 1, Position3RiderID: 72,
	})

	assert.ErrorIs(t, err, ErrRaceNotFound)
}

func TestListByRaceHiddenFromUsersUntilConfirmed(t *testing.T) {
	_, raceRepo, _, _, _, svc := newPredictionFixture(t)
	ctx := context.Background()

	_, _, err := svc.Save(ctx, 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 93, Position2RiderID: 1, Position3RiderID: 72,
	})
	require.NoError(t, err)

	_, err = svc.ListByRace(ctx, 1, models.RoleUser)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	raceRepo.races[1].IsResultConfirmed = true
	predictions, err := svc.ListByRace(ctx, 1, models.RoleUser)
	require.NoError(t, err)
	assert.Len(t, predictions, 1)
}

func TestListByRaceAdminSeesPicksBeforeConfirmation(t *testing.T) {
	_, raceRepo, _, _, _, svc := newPredictionFixture(t)
	ctx := context.Background()

	_, _, err := svc.Save(ctx, 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 93, Position2RiderID: 1, Position3RiderID: 72,
	})
	require.NoError(t, err)
	require.False(t, raceRepo.races[1].IsResultConfirmed)

	// Admins manage picks before results exist, e.g. to fix a user's entry.
	predictions, err := svc.ListByRace(ctx, 1, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, predictions, 1)
	assert.Equal(t, 10, predictions[0].UserID)
}

func TestAdminUpdateReScoresWhenResultExists(t *testing.T) {
	predictionRepo, _, _, resultRepo, scoreRepo, svc := newPredictionFixture(t)
	ctx := context.Background()

	saved, _, err := svc.Save(ctx, 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 20, Position2RiderID: 1, Position3RiderID: 72,
	})
	require.NoError(t, err)

	require.NoError(t, resultRepo.Upsert(ctx, nil, &models.RaceResult{
		RaceID: 1, Podium: podium(93, 1, 72),
	}))

	_, err = svc.AdminUpdate(ctx, saved.ID, podium(93, 1, 72))
	require.NoError(t, err)

	score := scoreRepo.scoreFor(10, 1)
	require.NotNil(t, score, "editing a scored prediction must rewrite the score row")
	assert.Equal(t, 6, score.Points)

	stored, err := predictionRepo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 93, stored.Position1RiderID)
}

func TestAdminUpdateNoResultNoScore(t *testing.T) {
	_, _, _, _, scoreRepo, svc := newPredictionFixture(t)
	ctx := context.Background()

	saved, _, err := svc.Save(ctx, 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 20, Position2RiderID: 1, Position3RiderID: 72,
	})
	require.NoError(t, err)

	_, err = svc.AdminUpdate(ctx, saved.ID, podium(93, 1, 72))
	require.NoError(t, err)
	assert.Empty(t, scoreRepo.scores)
}

func TestAdminDeleteRemovesScoreRow(t *testing.T) {
	predictionRepo, _, _, _, scoreRepo, svc := newPredictionFixture(t)
	ctx := context.Background()

	saved, _, err := svc.Save(ctx, 10, SavePredictionInput{
		RaceID: 1, Position1RiderID: 93, Position2RiderID: 1, Position3RiderID: 72,
	})
	require.NoError(t, err)
	require.NoError(t, scoreRepo.UpsertForUserAndRace(ctx, &models.Score{UserID: 10, RaceID: 1, Points: 6}))

	require.NoError(t, svc.AdminDelete(ctx, saved.ID))

	assert.Empty(t, predictionRepo.predictions)
	assert.Nil(t, scoreRepo.scoreFor(10, 1))
}

func TestAdminDeleteMissingPrediction(t *testing.T) {
	_, _, _, _, _, svc := newPredictionFixture(t)
	assert.ErrorIs(t, svc.AdminDelete(context.Background(), 404), ErrPredictionNotFound)
}
