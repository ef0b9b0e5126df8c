// Package products provides the PostgreSQL-backed repository for product
// description records.
package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/dbx"
	"github.com/dmitrijs2005/productkeeper/internal/server/models"
)

// PostgresRepository implements product storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByArticleNumber returns the product row or common.ErrorNotFound.
func (r *PostgresRepository) GetByArticleNumber(ctx context.Context, articleNumber string) (*models.Product, error) {
	query := `SELECT article_number, product_name, description, updated_at FROM products
		WHERE article_number=$1`

	var (
		p    models.Product
		desc sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, articleNumber).Scan(&p.ArticleNumber, &p.ProductName, &desc, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select product: %w", err)
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	return &p, nil
}

// Insert creates a new product row. Exactly one row must be affected.
func (r *PostgresRepository) Insert(ctx context.Context, product *models.Product) error {
	query := `INSERT INTO products (article_number, product_name, description, updated_at)
		VALUES ($1, $2, $3, now())`

	res, err := r.db.ExecContext(ctx, query, product.ArticleNumber, product.ProductName, product.Description)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// UpdateDescription overwrites the description and bumps updated_at.
// Returns common.ErrorNotFound when no row has the article number.
func (r *PostgresRepository) UpdateDescription(ctx context.Context, articleNumber, description string) error {
	query := `UPDATE products SET description=$2, updated_at=now() WHERE article_number=$1`

	res, err := r.db.ExecContext(ctx, query, articleNumber, description)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
