package objectstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/server/models"
)

// Disabled stands in for S3Store when storage credentials are absent.
// Every call fails with common.ErrNotConfigured.
type Disabled struct{}

func (Disabled) Put(context.Context, string, []byte, string, bool) (string, error) {
	return "", fmt.Errorf("object store: %w", common.ErrNotConfigured)
}

func (Disabled) List(context.Context, string) ([]models.StoredObject, error) {
	return nil, fmt.Errorf("object store: %w", common.ErrNotConfigured)
}

func (Disabled) Delete(context.Context, string) error {
	return fmt.Errorf("object store: %w", common.ErrNotConfigured)
}

func (Disabled) PublicURL(string) string { return "" }
