package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/dbx"
	"github.com/dmitrijs2005/rfile/internal/server/models"
)

// PostgresRepository implements file-record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pending file record and returns its id.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (int64, error) {
	query :=
		`INSERT INTO files (file_name, file_size, file_checksum, file_status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		file.FileName, file.FileSize, int64(file.FileChecksum), models.FileStatusPending).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query :=
		`SELECT id, file_name, file_size, file_checksum, file_status, created_at FROM files
		 WHERE id = $1
		 `

	file := &models.File{}
	var checksum int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.FileName, &file.FileSize, &checksum, &file.FileStatus, &file.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	file.FileChecksum = uint32(checksum)
	return file, nil
}

// ListFinished returns finished files whose name contains nameFilter.
func (r *PostgresRepository) ListFinished(ctx context.Context, nameFilter string) ([]*models.File, error) {
	query :=
		`SELECT id, file_name, file_size, file_checksum, file_status, created_at FROM files
		 WHERE file_status = $1 AND file_name LIKE '%' || $2 || '%'
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, models.FileStatusFinished, nameFilter)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var item models.File
		var checksum int64
		if err := rows.Scan(&item.ID, &item.FileName, &item.FileSize, &checksum, &item.FileStatus, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.FileChecksum = uint32(checksum)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Finish transitions a pending file to finished. The status guard in the
// WHERE clause makes finishing a missing, already-finished, or deleted file
// affect zero rows, reported as common.ErrorFileNotPending.
func (r *PostgresRepository) Finish(ctx context.Context, id int64) error {
	query := `UPDATE files SET file_status = $1 WHERE id = $2 AND file_status = $3`

	result, err := r.db.ExecContext(ctx, query, models.FileStatusFinished, id, models.FileStatusPending)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if ra != 1 {
		return common.ErrorFileNotPending
	}
	return nil
}

// SoftDelete marks a file deleted. Rows and block objects are never removed
// here; deleted is terminal.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE files SET file_status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, models.FileStatusDeleted, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}
