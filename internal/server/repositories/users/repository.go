package users

import (
	"context"

	"github.com/dmitrijs2005/rfile/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
}
