package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct {
	db DBTX
}

func newQueries(db DBTX) *queries {
	return &queries{db: db}
}

type userRow struct {
	ID           string
	FirstName    string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type refreshTokenRow struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

const userColumns = `id, first_name, email, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (userRow, error) {
	var u userRow
	err := row.Scan(&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *queries) GetUserByID(ctx context.Context, id string) (userRow, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

func (q *queries) GetUserByEmail(ctx context.Context, email string) (userRow, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const createUser = `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

func (q *queries) CreateUser(ctx context.Context, u userRow) error {
	_, err := q.db.Exec(ctx, createUser,
		u.ID, u.FirstName, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return err
}

const refreshTokenColumns = `id, user_id, token_hash, expires_at, created_at`

func scanRefreshToken(row pgx.Row) (refreshTokenRow, error) {
	var t refreshTokenRow
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	return t, err
}

const createRefreshToken = `INSERT INTO refresh_tokens (` + refreshTokenColumns + `) VALUES ($1, $2, $3, $4, $5)`

func (q *queries) CreateRefreshToken(ctx context.Context, t refreshTokenRow) error {
	_, err := q.db.Exec(ctx, createRefreshToken,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
	return err
}

const getLiveRefreshTokenByHash = `SELECT ` + refreshTokenColumns + `
FROM refresh_tokens
WHERE token_hash = $1 AND expires_at > $2`

func (q *queries) GetLiveRefreshTokenByHash(ctx context.Context, hash string, now time.Time) (refreshTokenRow, error) {
	return scanRefreshToken(q.db.QueryRow(ctx, getLiveRefreshTokenByHash, hash, now))
}

const deleteRefreshTokenByHash = `DELETE FROM refresh_tokens
WHERE token_hash = $1
RETURNING ` + refreshTokenColumns

func (q *queries) DeleteRefreshTokenByHash(ctx context.Context, hash string) (refreshTokenRow, error) {
	return scanRefreshToken(q.db.QueryRow(ctx, deleteRefreshTokenByHash, hash))
}

const deleteExpiredRefreshTokens = `DELETE FROM refresh_tokens WHERE expires_at <= $1`

func (q *queries) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteExpiredRefreshTokens, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countLiveUserRefreshTokens = `SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1 AND expires_at > $2`

func (q *queries) CountLiveUserRefreshTokens(ctx context.Context, userID string, now time.Time) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countLiveUserRefreshTokens, userID, now).Scan(&n)
	return n, err
}
