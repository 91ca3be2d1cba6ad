package files

import (
	"context"

	"github.com/dmitrijs2005/rfile/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.File, error)
	ListFinished(ctx context.Context, nameFilter string) ([]*models.File, error)
	Finish(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64) error
}
