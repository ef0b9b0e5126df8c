// Package services holds the server-side use cases that sit on top of the
// repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/dbx"
	"github.com/dmitrijs2005/productkeeper/internal/server/models"
	"github.com/dmitrijs2005/productkeeper/internal/server/repositories/repomanager"
)

// ProductService is the record store used by the upload workflow. Every
// method takes the namespaced article number ("TVH/4521").
type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProductService(db *sql.DB, repomanager repomanager.RepositoryManager) *ProductService {
	return &ProductService{
		db:          db,
		repomanager: repomanager,
	}
}

// Lookup returns the stored product or common.ErrorNotFound.
func (s *ProductService) Lookup(ctx context.Context, articleNumber string) (*models.Product, error) {
	p, err := s.repomanager.Products(s.db).GetByArticleNumber(ctx, articleNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting product: %w", err)
	}
	return p, nil
}

// Create inserts a product whose name defaults to the article number.
func (s *ProductService) Create(ctx context.Context, articleNumber, description string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Products(tx).Insert(ctx, &models.Product{
			ArticleNumber: articleNumber,
			ProductName:   articleNumber,
			Description:   &description,
		})
	})
	if err != nil {
		return fmt.Errorf("error creating product: %w", err)
	}
	return nil
}

// Update replaces the description of an existing product.
func (s *ProductService) Update(ctx context.Context, articleNumber, description string) error {
	err := s.repomanager.Products(s.db).UpdateDescription(ctx, articleNumber, description)
	if err != nil {
		return fmt.Errorf("error updating product: %w", err)
	}
	return nil
}

// DisabledProductService stands in for ProductService when no DSN is
// configured. Every call fails with common.ErrNotConfigured.
type DisabledProductService struct{}

func (DisabledProductService) Lookup(context.Context, string) (*models.Product, error) {
	return nil, fmt.Errorf("record store: %w", common.ErrNotConfigured)
}

func (DisabledProductService) Create(context.Context, string, string) error {
	return fmt.Errorf("record store: %w", common.ErrNotConfigured)
}

func (DisabledProductService) Update(context.Context, string, string) error {
	return fmt.Errorf("record store: %w", common.ErrNotConfigured)
}
