package services

import (
	"context"
	"testing"

	"github.com/podiumpicks/podium-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func newRiderFixture(t *testing.T) (*fakeRiderRepo, *fakeTeamRepo, RiderService) {
	t.Helper()
	riderRepo := newFakeRiderRepo()
	teamRepo := newFakeTeamRepo(&models.Team{ID: 1, Name: "Ducati Lenovo", Season: 2026, IsFactory: true})
	svc := NewRiderService(riderRepo, teamRepo)
	return riderRepo, teamRepo, svc
}

func TestCreateRider(t *testing.T) {
	_, _, svc := newRiderFixture(t)

	rider, err := svc.Create(context.Background(), CreateRiderInput{
		Number: 93, FirstName: " Marc ", LastName: "Marquez", TeamID: intPtr(1),
		Nationality: "es", Season: 2026,
	})
	require.NoError(t, err)

	assert.Equal(t, "Marc", rider.FirstName)
	assert.Equal(t, "ES", rider.Nationality)
	assert.True(t, rider.IsActive, "new riders start active")
	assert.False(t, rider.IsWildcard)
}

func TestCreateWildcardWithoutTeam(t *testing.T) {
	_, _, svc := newRiderFixture(t)

	rider, err := svc.Create(context.Background(), CreateRiderInput{
		Number: 27, FirstName: "Test", LastName: "Rider",
		IsWildcard: true, Season: 2026,
	})
	require.NoError(t, err)
	assert.Nil(t, rider.TeamID)
	assert.True(t, rider.IsWildcard)
}

func TestCreateRiderUnknownTeam(t *testing.T) {
	riderRepo, _, svc := newRiderFixture(t)

	_, err := svc.Create(context.Background(), CreateRiderInput{
		Number: 93, FirstName: "Marc", LastName: "Marquez", TeamID: intPtr(42), Season: 2026,
	})
	assert.ErrorIs(t, err, ErrTeamNotFound)
	assert.Empty(t, riderRepo.riders)
}

func TestUpdateRiderDeactivate(t *testing.T) {
	riderRepo, _, svc := newRiderFixture(t)
	riderRepo.riders[93] = activeRider(93)

	rider, err := svc.Update(context.Background(), 93, UpdateRiderInput{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, rider.IsActive)
	assert.False(t, riderRepo.riders[93].IsActive)
}

func TestUpdateRiderValidation(t *testing.T) {
	riderRepo, _, svc := newRiderFixture(t)
	riderRepo.riders[93] = activeRider(93)
	ctx := context.Background()

	_, err := svc.Update(ctx, 93, UpdateRiderInput{Number: intPtr(0)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	empty := "   "
	_, err = svc.Update(ctx, 93, UpdateRiderInput{FirstName: &empty})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Update(ctx, 404, UpdateRiderInput{Number: intPtr(5)})
	assert.ErrorIs(t, err, ErrRiderNotFound)
}

func TestListBySeasonActiveFilter(t *testing.T) {
	riderRepo, _, svc := newRiderFixture(t)
	riderRepo.riders[93] = activeRider(93)
	retired := activeRider(46)
	retired.IsActive = false
	riderRepo.riders[46] = retired
	ctx := context.Background()

	active, err := svc.ListBySeason(ctx, 2026, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.ListBySeason(ctx, 2026, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
