package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/dbx"
	"github.com/dmitrijs2005/rfile/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements user storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user row. A unique-constraint violation on user_name
// is reported as common.ErrorUserAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (user_name, password_digest, salt)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.PasswordDigest, user.Salt).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorUserAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`SELECT id, user_name, password_digest, salt FROM users
		 WHERE user_name = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userName).Scan(&user.ID, &user.UserName, &user.PasswordDigest, &user.Salt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
