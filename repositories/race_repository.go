package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/podiumpicks/podium-api/models"
)

var ErrRaceNotFound = errors.New("race not found")

type RaceRepository interface {
	Create(ctx context.Context, race *models.Race) error
	GetByID(ctx context.Context, id int) (*models.Race, error)
	ListBySeason(ctx context.Context, season int) ([]*models.Race, error)
	Update(ctx context.Context, race *models.Race) error
	UpdateTrackImage(ctx context.Context, id int, trackImageKey *string) error
	// SetResultConfirmed flips the confirmation flag; exec lets the result
	// service run it inside the confirm/delete transaction.
	SetResultConfirmed(ctx context.Context, exec SQLExecutor, id int, confirmed bool) error
}

type postgresRaceRepository struct {
	db *sql.DB
}

func NewPostgresRaceRepository(db *sql.DB) RaceRepository {
	return &postgresRaceRepository{db: db}
}

const raceColumns = `id, round, name, circuit, country, country_code, date, new_date,
	season, status, official_results_url, track_image_key, is_result_confirmed`

func (r *postgresRaceRepository) Create(ctx context.Context, race *models.Race) error {
	query := `
		INSERT INTO races
			(round, name, circuit, country, country_code, date, new_date, season, status, official_results_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		race.Round,
		race.Name,
		race.Circuit,
		race.Country,
		race.CountryCode,
		race.Date,
		race.NewDate,
		race.Season,
		race.Status,
		race.OfficialResultsURL,
	).Scan(&race.ID)
}

func (r *postgresRaceRepository) GetByID(ctx context.Context, id int) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	race, err := scanRace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRaceNotFound
		}
		return nil, fmt.Errorf("failed to scan race: %w", err)
	}
	return race, nil
}

func (r *postgresRaceRepository) ListBySeason(ctx context.Context, season int) ([]*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE season = $1 ORDER BY round ASC`

	rows, err := r.db.QueryContext(ctx, query, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	races := make([]*models.Race, 0)
	for rows.Next() {
		race, scanErr := scanRace(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		races = append(races, race)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return races, nil
}

func (r *postgresRaceRepository) Update(ctx context.Context, race *models.Race) error {
	query := `
		UPDATE races SET
			round = $1,
			name = $2,
			circuit = $3,
			country = $4,
			country_code = $5,
			date = $6,
			new_date = $7,
			status = $8,
			official_results_url = $9
		WHERE id = $10`

	result, err := r.db.ExecContext(ctx, query,
		race.Round,
		race.Name,
		race.Circuit,
		race.Country,
		race.CountryCode,
		race.Date,
		race.NewDate,
		race.Status,
		race.OfficialResultsURL,
		race.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRaceNotFound)
}

func (r *postgresRaceRepository) UpdateTrackImage(ctx context.Context, id int, trackImageKey *string) error {
	query := `UPDATE races SET track_image_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, trackImageKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRaceNotFound)
}

func (r *postgresRaceRepository) SetResultConfirmed(ctx context.Context, exec SQLExecutor, id int, confirmed bool) error {
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE races SET is_result_confirmed = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, confirmed, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRaceNotFound)
}

func scanRace(rowScanner interface{ Scan(...interface{}) error }) (*models.Race, error) {
	var race models.Race
	err := rowScanner.Scan(
		&race.ID,
		&race.Round,
		&race.Name,
		&race.Circuit,
		&race.Country,
		&race.CountryCode,
		&race.Date,
		&race.NewDate,
		&race.Season,
		&race.Status,
		&race.OfficialResultsURL,
		&race.TrackImageKey,
		&race.IsResultConfirmed,
	)
	if err != nil {
		return nil, err
	}
	return &race, nil
}
