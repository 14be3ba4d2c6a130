package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	pgx "github.com/jackc/pgx/v4"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/db"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/pool"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/user/domain"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrUserNotFound  = errors.New("user not found")
)

// Repository works on a connection the caller has leased, so that an insert
// and the lookup that follows it run on the same session.
type Repository interface {
	Insert(ctx context.Context, conn pool.SQLConn, credential domain.Credential) (int64, error)
	FindIDByUsername(ctx context.Context, conn pool.SQLConn, username string) (int64, error)
}

type PgRepository struct{}

func NewPgRepository() *PgRepository {
	return &PgRepository{}
}

// Insert returns the number of rows written. Zero means the username is taken.
func (r *PgRepository) Insert(ctx context.Context, conn pool.SQLConn, credential domain.Credential) (int64, error) {
	start := time.Now()
	tag, err := conn.Exec(
		ctx,
		`INSERT INTO credentials (username, password_hash) VALUES ($1, $2)
		 ON CONFLICT (username) DO NOTHING`,
		credential.Username,
		credential.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			db.ObserveQuery(db.StoreRelational, "insert_credential", start, nil)
			return 0, ErrUsernameTaken
		}
		return 0, db.WrapQueryError(db.StoreRelational, "insert_credential", start, err)
	}
	db.ObserveQuery(db.StoreRelational, "insert_credential", start, nil)
	return tag.RowsAffected(), nil
}

func (r *PgRepository) FindIDByUsername(ctx context.Context, conn pool.SQLConn, username string) (int64, error) {
	start := time.Now()
	var id int64
	err := conn.QueryRow(ctx, `SELECT id FROM credentials WHERE username = $1`, username).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		db.ObserveQuery(db.StoreRelational, "find_credential_id", start, nil)
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, db.WrapQueryError(db.StoreRelational, "find_credential_id", start, err)
	}
	db.ObserveQuery(db.StoreRelational, "find_credential_id", start, nil)
	return id, nil
}
