package legacy

import (
	"context"
	"errors"
	"fmt"
	"misikaMarket/domain"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository reads and writes the userquery table with plain SQL. OTP
// codes for this store live next to it so a code is consumed in the same
// transaction that uses it.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool: pool,
	}
}

const userColumns = "id, name, mobile_number, email, city, password, created_at, updated_at"

func scanUser(row pgx.Row) (domain.LegacyUser, error) {
	var u domain.LegacyUser
	err := row.Scan(&u.ID, &u.Name, &u.MobileNumber, &u.Email, &u.City, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.LegacyUser, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM userquery WHERE LOWER(email) = LOWER($1)", email)

	user, err := scanUser(row)
	if err != nil {
		return domain.LegacyUser{}, translateError(err, "user")
	}

	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (domain.LegacyUser, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM userquery WHERE id = $1", id)

	user, err := scanUser(row)
	if err != nil {
		return domain.LegacyUser{}, translateError(err, "user")
	}

	return user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM userquery WHERE LOWER(email) = LOWER($1))", email).Scan(&exists)
	if err != nil {
		return false, translateError(err, "user")
	}

	return exists, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM userquery").Scan(&count); err != nil {
		return 0, translateError(err, "user")
	}

	return count, nil
}

func (r *UserRepository) Recent(ctx context.Context, limit int) ([]domain.LegacyUser, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM userquery ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, translateError(err, "user")
	}
	defer rows.Close()

	users := []domain.LegacyUser{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, translateError(err, "user")
		}
		user.Password = ""
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError(err, "user")
	}

	return users, nil
}

// UpsertOTP replaces any pending code for (email, purpose).
func (r *UserRepository) UpsertOTP(ctx context.Context, otp domain.OTPVerification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO legacy_otp (email, purpose, code, expires_at, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (email, purpose)
		DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, payload = EXCLUDED.payload, created_at = NOW()`,
		strings.ToLower(otp.Email), otp.Purpose, otp.Code, otp.ExpiresAt, nullableJSON(otp.Payload),
	)
	if err != nil {
		return translateError(err, "otp")
	}

	return nil
}

func (r *UserRepository) FindOTP(ctx context.Context, email, purpose string) (domain.OTPVerification, error) {
	otp := domain.OTPVerification{Email: strings.ToLower(email), Purpose: purpose}

	var payload []byte
	err := r.pool.QueryRow(ctx,
		"SELECT code, expires_at, payload, created_at FROM legacy_otp WHERE email = $1 AND purpose = $2",
		otp.Email, purpose,
	).Scan(&otp.Code, &otp.ExpiresAt, &payload, &otp.CreatedAt)
	if err != nil {
		return domain.OTPVerification{}, translateError(err, "otp")
	}
	otp.Payload = payload

	return otp, nil
}

// CreateWithOTP consumes the code and inserts the user in one transaction.
// A code consumed concurrently makes the call fail with ErrInvalidOTP.
func (r *UserRepository) CreateWithOTP(ctx context.Context, user *domain.LegacyUser, purpose, code string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := consumeOTP(ctx, tx, user.Email, purpose, code); err != nil {
			return err
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO userquery (name, mobile_number, email, city, password)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`,
			user.Name, user.MobileNumber, strings.ToLower(user.Email), user.City, user.Password,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return translateError(err, "user")
		}

		return nil
	})
}

// ResetPasswordWithOTP consumes the code and stores the new hash in one
// transaction.
func (r *UserRepository) ResetPasswordWithOTP(ctx context.Context, email, purpose, code, passwordHash string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := consumeOTP(ctx, tx, email, purpose, code); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			"UPDATE userquery SET password = $1, updated_at = NOW() WHERE LOWER(email) = LOWER($2)",
			passwordHash, email,
		)
		if err != nil {
			return translateError(err, "user")
		}
		if tag.RowsAffected() == 0 {
			return domain.NewNotFoundError("user")
		}

		return nil
	})
}

func consumeOTP(ctx context.Context, tx pgx.Tx, email, purpose, code string) error {
	tag, err := tx.Exec(ctx,
		"DELETE FROM legacy_otp WHERE email = $1 AND purpose = $2 AND code = $3 AND expires_at > $4",
		strings.ToLower(email), purpose, code, time.Now(),
	)
	if err != nil {
		return translateError(err, "otp")
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidOTP
	}

	return nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func translateError(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewNotFoundError(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.NewDuplicateError(resource + " already exists")
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	return domain.NewInternalError(fmt.Sprintf("legacy %s query failed", resource), err)
}
