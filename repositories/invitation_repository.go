package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/podiumpicks/podium-api/models"
)

var (
	ErrInvitationCodeNotFound  = errors.New("invitation code not found")
	ErrInvitationCodeExhausted = errors.New("invitation code has no uses left")
	ErrVerificationNotFound    = errors.New("verification token not found")
)

type InvitationCodeRepository interface {
	GetByCode(ctx context.Context, code string) (*models.InvitationCode, error)
	// IncrementUses consumes one use. Fails with ErrInvitationCodeExhausted if
	// the code was deactivated or ran out between check and consume.
	IncrementUses(ctx context.Context, id int) error
}

type postgresInvitationCodeRepository struct {
	db *sql.DB
}

func NewPostgresInvitationCodeRepository(db *sql.DB) InvitationCodeRepository {
	return &postgresInvitationCodeRepository{db: db}
}

func (r *postgresInvitationCodeRepository) GetByCode(ctx context.Context, code string) (*models.InvitationCode, error) {
	query := `
		SELECT id, code, is_active, max_uses, current_uses
		FROM invitation_codes
		WHERE code = $1`

	ic := &models.InvitationCode{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&ic.ID,
		&ic.Code,
		&ic.IsActive,
		&ic.MaxUses,
		&ic.CurrentUses,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationCodeNotFound
		}
		return nil, err
	}
	return ic, nil
}

func (r *postgresInvitationCodeRepository) IncrementUses(ctx context.Context, id int) error {
	query := `
		UPDATE invitation_codes
		SET current_uses = current_uses + 1
		WHERE id = $1 AND is_active = TRUE AND current_uses < max_uses`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInvitationCodeExhausted)
}

type VerificationTokenRepository interface {
	Create(ctx context.Context, token *models.VerificationToken) error
	Get(ctx context.Context, email, token string) (*models.VerificationToken, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type postgresVerificationTokenRepository struct {
	db *sql.DB
}

func NewPostgresVerificationTokenRepository(db *sql.DB) VerificationTokenRepository {
	return &postgresVerificationTokenRepository{db: db}
}

func (r *postgresVerificationTokenRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (email, token, expires_at)
		VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, token.Email, token.Token, token.ExpiresAt)
	return err
}

func (r *postgresVerificationTokenRepository) Get(ctx context.Context, email, token string) (*models.VerificationToken, error) {
	query := `
		SELECT email, token, expires_at
		FROM verification_tokens
		WHERE email = $1 AND token = $2`

	vt := &models.VerificationToken{}
	err := r.db.QueryRowContext(ctx, query, email, token).Scan(&vt.Email, &vt.Token, &vt.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	return vt, nil
}

func (r *postgresVerificationTokenRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM verification_tokens WHERE email = $1`
	_, err := r.db.ExecContext(ctx, query, email)
	return err
}
