package products

import (
	"context"

	"github.com/dmitrijs2005/productkeeper/internal/server/models"
)

type Repository interface {
	GetByArticleNumber(ctx context.Context, articleNumber string) (*models.Product, error)
	Insert(ctx context.Context, product *models.Product) error
	UpdateDescription(ctx context.Context, articleNumber, description string) error
}
