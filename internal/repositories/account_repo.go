package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/calebmorse/taskdeck/internal/database"
	"github.com/calebmorse/taskdeck/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, email, password_hash, first_name, last_name, role, status,
	login_attempts, lock_until, is_email_verified,
	email_verification_token, email_verification_expires,
	password_reset_token, password_reset_expires,
	last_login, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{pool: db.Pool}
}

// rowScanner lets scanAccountRow work with both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var account models.Account
	var lockUntil, verificationExpires, resetExpires, lastLogin *time.Time
	var verificationToken, resetToken *string

	err := scanner.Scan(
		&account.ID, &account.Email, &account.PasswordHash,
		&account.FirstName, &account.LastName, &account.Role, &account.Status,
		&account.LoginAttempts, &lockUntil, &account.IsEmailVerified,
		&verificationToken, &verificationExpires,
		&resetToken, &resetExpires,
		&lastLogin, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	account.LockUntil = lockUntil
	account.EmailVerificationExpires = verificationExpires
	account.PasswordResetExpires = resetExpires
	account.LastLogin = lastLogin
	if verificationToken != nil {
		account.EmailVerificationToken = *verificationToken
	}
	if resetToken != nil {
		account.PasswordResetToken = *resetToken
	}

	return &account, nil
}

func scanAccountRows(rows pgx.Rows) ([]*models.Account, error) {
	defer rows.Close()

	accounts := make([]*models.Account, 0)

	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccountRow(r.pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccountRow(r.pool.QueryRow(ctx, query, email))
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	return scanAccountRows(rows)
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	account.ID = uuid.New().String()

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	if account.Role == "" {
		account.Role = models.RoleUser
	}
	if account.Status == "" {
		account.Status = models.StatusActive
	}

	query := `
		INSERT INTO accounts (id, email, password_hash, first_name, last_name, role, status,
			is_email_verified, email_verification_token, email_verification_expires, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + accountColumns

	var verificationToken *string
	if account.EmailVerificationToken != "" {
		verificationToken = &account.EmailVerificationToken
	}

	return scanAccountRow(r.pool.QueryRow(ctx, query,
		account.ID, account.Email, account.PasswordHash,
		account.FirstName, account.LastName, account.Role, account.Status,
		account.IsEmailVerified, verificationToken, account.EmailVerificationExpires,
		account.CreatedAt, account.UpdatedAt,
	))
}

// Update writes the mutable profile and administrative fields. Credential and
// lockout state have their own narrower update paths.
func (r *AccountRepository) Update(ctx context.Context, id string, account *models.Account) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET first_name = $1, last_name = $2, role = $3, status = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query,
		account.FirstName, account.LastName, account.Role, account.Status, id,
	))
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdatePasswordHash replaces the stored secret. Callers hash before calling;
// no path through the repository ever re-hashes a stored value.
func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RecordLoginFailure persists the lockout counter state after a failed
// attempt. lockUntil is nil while the account stays below the threshold.
func (r *AccountRepository) RecordLoginFailure(ctx context.Context, id string, attempts int, lockUntil *time.Time) error {
	query := `UPDATE accounts SET login_attempts = $1, lock_until = $2, updated_at = NOW() WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, attempts, lockUntil, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RecordLoginSuccess resets the lockout state and stamps last_login.
func (r *AccountRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE accounts
		SET login_attempts = 0, lock_until = NULL, last_login = $1, updated_at = NOW()
		WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetVerificationToken stores a fresh email verification token, replacing any
// prior pending one.
func (r *AccountRepository) SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	query := `
		UPDATE accounts
		SET email_verification_token = $1, email_verification_expires = $2, updated_at = NOW()
		WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, token, expires, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken marks the matching account verified and clears the
// token in a single conditional update, so two concurrent requests cannot
// both spend the same token. Returns ErrNotFound when no account holds an
// unexpired matching token.
func (r *AccountRepository) ConsumeVerificationToken(ctx context.Context, token string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET is_email_verified = TRUE,
			email_verification_token = NULL,
			email_verification_expires = NULL,
			updated_at = NOW()
		WHERE email_verification_token = $1 AND email_verification_expires > NOW()
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query, token))
}

// SetResetToken stores a fresh password reset token, replacing any prior
// pending one.
func (r *AccountRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	query := `
		UPDATE accounts
		SET password_reset_token = $1, password_reset_expires = $2, updated_at = NOW()
		WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, token, expires, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ConsumeResetToken replaces the password hash and clears the reset token in
// one conditional update. The lockout state is reset as well: a recovered
// account starts clean. Returns ErrNotFound when no account holds an
// unexpired matching token.
func (r *AccountRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET password_hash = $1,
			password_reset_token = NULL,
			password_reset_expires = NULL,
			login_attempts = 0,
			lock_until = NULL,
			updated_at = NOW()
		WHERE password_reset_token = $2 AND password_reset_expires > NOW()
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query, passwordHash, token))
}

// ClearExpiredTokens drops out-of-band tokens and locks whose expiries have
// passed. An elapsed lock takes its failure counter with it, so the next
// wrong password after a sweep counts as the first of a fresh window, the
// same as when Login observes the expiry itself.
func (r *AccountRepository) ClearExpiredTokens(ctx context.Context) (int64, error) {
	query := `
		UPDATE accounts
		SET email_verification_token = CASE WHEN email_verification_expires <= NOW() THEN NULL ELSE email_verification_token END,
			email_verification_expires = CASE WHEN email_verification_expires <= NOW() THEN NULL ELSE email_verification_expires END,
			password_reset_token = CASE WHEN password_reset_expires <= NOW() THEN NULL ELSE password_reset_token END,
			password_reset_expires = CASE WHEN password_reset_expires <= NOW() THEN NULL ELSE password_reset_expires END,
			login_attempts = CASE WHEN lock_until <= NOW() THEN 0 ELSE login_attempts END,
			lock_until = CASE WHEN lock_until <= NOW() THEN NULL ELSE lock_until END
		WHERE email_verification_expires <= NOW()
			OR password_reset_expires <= NOW()
			OR lock_until <= NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired tokens: %w", err)
	}

	return result.RowsAffected(), nil
}
