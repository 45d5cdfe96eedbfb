package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/podiumpicks/podium-api/models"
)

var (
	ErrRiderNotFound    = errors.New("rider not found")
	ErrRiderTeamInvalid = errors.New("rider team conflict or invalid")
	ErrTeamNotFound     = errors.New("team not found")
)

type RiderRepository interface {
	Create(ctx context.Context, rider *models.Rider) error
	GetByID(ctx context.Context, id int) (*models.Rider, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Rider, error)
	ListBySeason(ctx context.Context, season int, activeOnly bool) ([]*models.Rider, error)
	Update(ctx context.Context, rider *models.Rider) error
	Delete(ctx context.Context, id int) error
}

type postgresRiderRepository struct {
	db *sql.DB
}

func NewPostgresRiderRepository(db *sql.DB) RiderRepository {
	return &postgresRiderRepository{db: db}
}

const riderColumns = `id, number, first_name, last_name, team_id, nationality, is_wildcard, image_url, is_active, season`

func (r *postgresRiderRepository) Create(ctx context.Context, rider *models.Rider) error {
	query := `
		INSERT INTO riders
			(number, first_name, last_name, team_id, nationality, is_wildcard, image_url, is_active, season)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		rider.Number,
		rider.FirstName,
		rider.LastName,
		rider.TeamID,
		rider.Nationality,
		rider.IsWildcard,
		rider.ImageURL,
		rider.IsActive,
		rider.Season,
	).Scan(&rider.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" && pqErr.Constraint == "riders_team_id_fkey" {
			return ErrRiderTeamInvalid
		}
		return err
	}
	return nil
}

func (r *postgresRiderRepository) GetByID(ctx context.Context, id int) (*models.Rider, error) {
	query := `SELECT ` + riderColumns + ` FROM riders WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	rider, err := scanRider(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRiderNotFound
		}
		return nil, err
	}
	return rider, nil
}

func (r *postgresRiderRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Rider, error) {
	if len(ids) == 0 {
		return []*models.Rider{}, nil
	}
	query := `SELECT ` + riderColumns + ` FROM riders WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRiders(rows)
}

func (r *postgresRiderRepository) ListBySeason(ctx context.Context, season int, activeOnly bool) ([]*models.Rider, error) {
	query := `SELECT ` + riderColumns + ` FROM riders WHERE season = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY team_id ASC, number ASC`

	rows, err := r.db.QueryContext(ctx, query, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRiders(rows)
}

func (r *postgresRiderRepository) Update(ctx context.Context, rider *models.Rider) error {
	query := `
		UPDATE riders SET
			number = $1,
			first_name = $2,
			last_name = $3,
			team_id = $4,
			nationality = $5,
			is_wildcard = $6,
			image_url = $7,
			is_active = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		rider.Number,
		rider.FirstName,
		rider.LastName,
		rider.TeamID,
		rider.Nationality,
		rider.IsWildcard,
		rider.ImageURL,
		rider.IsActive,
		rider.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" && pqErr.Constraint == "riders_team_id_fkey" {
			return ErrRiderTeamInvalid
		}
		return err
	}
	return checkAffectedRows(result, ErrRiderNotFound)
}

func (r *postgresRiderRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM riders WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		// FK violations surface when the rider is referenced by predictions or
		// results; the service deactivates instead in that case.
		return err
	}
	return checkAffectedRows(result, ErrRiderNotFound)
}

func scanRider(rowScanner interface{ Scan(...interface{}) error }) (*models.Rider, error) {
	var rider models.Rider
	err := rowScanner.Scan(
		&rider.ID,
		&rider.Number,
		&rider.FirstName,
		&rider.LastName,
		&rider.TeamID,
		&rider.Nationality,
		&rider.IsWildcard,
		&rider.ImageURL,
		&rider.IsActive,
		&rider.Season,
	)
	if err != nil {
		return nil, err
	}
	return &rider, nil
}

func collectRiders(rows *sql.Rows) ([]*models.Rider, error) {
	riders := make([]*models.Rider, 0)
	for rows.Next() {
		rider, err := scanRider(rows)
		if err != nil {
			return nil, err
		}
		riders = append(riders, rider)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return riders, nil
}

type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListBySeason(ctx context.Context, season int) ([]*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, full_name, manufacturer, color, season, is_factory
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.FullName,
		&team.Manufacturer,
		&team.Color,
		&team.Season,
		&team.IsFactory,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) ListBySeason(ctx context.Context, season int) ([]*models.Team, error) {
	query := `
		SELECT id, name, full_name, manufacturer, color, season, is_factory
		FROM teams
		WHERE season = $1
		ORDER BY is_factory DESC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.Name,
			&team.FullName,
			&team.Manufacturer,
			&team.Color,
			&team.Season,
			&team.IsFactory,
		); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, &team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}
