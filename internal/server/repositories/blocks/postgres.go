package blocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/dbx"
	"github.com/dmitrijs2005/rfile/internal/server/models"
)

// PostgresRepository implements block-record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create records a block after its bytes have been written to storage.
func (r *PostgresRepository) Create(ctx context.Context, block *models.Block) (int64, error) {
	query :=
		`INSERT INTO blocks (file_id, block_id, block_name, block_size, block_checksum)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		block.FileID, block.BlockID, block.BlockName, block.BlockSize, int64(block.BlockChecksum)).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Block, error) {
	query :=
		`SELECT id, file_id, block_id, block_name, block_size, block_checksum, created_at FROM blocks
		 WHERE id = $1
		 `

	block := &models.Block{}
	var checksum int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&block.ID, &block.FileID, &block.BlockID, &block.BlockName, &block.BlockSize, &checksum, &block.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	block.BlockChecksum = uint32(checksum)
	return block, nil
}

// GetIDsByFileID returns the row ids of all blocks recorded for a file.
func (r *PostgresRepository) GetIDsByFileID(ctx context.Context, fileID int64) ([]int64, error) {
	query :=
		`SELECT id FROM blocks
		 WHERE file_id = $1
		 ORDER BY block_id
		 `

	rows, err := r.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
