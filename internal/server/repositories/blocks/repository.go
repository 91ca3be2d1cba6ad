package blocks

import (
	"context"

	"github.com/dmitrijs2005/rfile/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, block *models.Block) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Block, error)
	GetIDsByFileID(ctx context.Context, fileID int64) ([]int64, error)
}
