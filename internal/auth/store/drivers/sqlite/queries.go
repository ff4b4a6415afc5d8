package sqlite

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// queries holds the SQL the repositories run. Times are unix milliseconds.
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
	CreatedAt    int64
	UpdatedAt    int64
}

type refreshTokenRow struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt int64
	CreatedAt int64
}

const userColumns = `id, first_name, email, password_hash, created_at, updated_at`

func scanUser(row *sql.Row) (userRow, error) {
	var u userRow
	err := row.Scan(&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *queries) GetUserByID(ctx context.Context, id string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *queries) GetUserByEmail(ctx context.Context, email string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const createUser = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

func (q *queries) CreateUser(ctx context.Context, u userRow) error {
	_, err := q.db.ExecContext(ctx, createUser,
		u.ID, u.FirstName, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return err
}

const refreshTokenColumns = `id, user_id, token_hash, expires_at, created_at`

func scanRefreshToken(row *sql.Row) (refreshTokenRow, error) {
	var t refreshTokenRow
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	return t, err
}

const createRefreshToken = `INSERT INTO refresh_tokens (` + refreshTokenColumns + `) VALUES (?, ?, ?, ?, ?)`

func (q *queries) CreateRefreshToken(ctx context.Context, t refreshTokenRow) error {
	_, err := q.db.ExecContext(ctx, createRefreshToken,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
	return err
}

const getLiveRefreshTokenByHash = `SELECT ` + refreshTokenColumns + `
FROM refresh_tokens
WHERE token_hash = ? AND expires_at > ?`

func (q *queries) GetLiveRefreshTokenByHash(ctx context.Context, hash string, nowMs int64) (refreshTokenRow, error) {
	return scanRefreshToken(q.db.QueryRowContext(ctx, getLiveRefreshTokenByHash, hash, nowMs))
}

const deleteRefreshTokenByHash = `DELETE FROM refresh_tokens
WHERE token_hash = ?
RETURNING ` + refreshTokenColumns

func (q *queries) DeleteRefreshTokenByHash(ctx context.Context, hash string) (refreshTokenRow, error) {
	return scanRefreshToken(q.db.QueryRowContext(ctx, deleteRefreshTokenByHash, hash))
}

const deleteExpiredRefreshTokens = `DELETE FROM refresh_tokens WHERE expires_at <= ?`

func (q *queries) DeleteExpiredRefreshTokens(ctx context.Context, nowMs int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredRefreshTokens, nowMs)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countLiveUserRefreshTokens = `SELECT COUNT(*) FROM refresh_tokens WHERE user_id = ? AND expires_at > ?`

func (q *queries) CountLiveUserRefreshTokens(ctx context.Context, userID string, nowMs int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countLiveUserRefreshTokens, userID, nowMs).Scan(&n)
	return n, err
}
