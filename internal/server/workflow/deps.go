// Package workflow implements the photo and description upload session:
// hydration from the stores, local edits, the save state machine and
// description conflict resolution.
package workflow

import (
	"context"

	"github.com/dmitrijs2005/productkeeper/internal/logging"
	"github.com/dmitrijs2005/productkeeper/internal/server/models"
)

type ObjectStore interface {
	Put(ctx context.Context, path string, body []byte, contentType string, overwrite bool) (string, error)
	List(ctx context.Context, prefix string) ([]models.StoredObject, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

type RecordStore interface {
	Lookup(ctx context.Context, articleNumber string) (*models.Product, error)
	Create(ctx context.Context, articleNumber, description string) error
	Update(ctx context.Context, articleNumber, description string) error
}

type Enhancer interface {
	Enhance(ctx context.Context, description string) (string, error)
}

type PreviewStore interface {
	Create(data []byte, contentType string) string
	Release(handle string) error
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Store    ObjectStore
	Records  RecordStore
	Enhancer Enhancer
	Previews PreviewStore
	Logger   logging.Logger

	Namespace Namespace
	// PhotosRequired blocks saves without any photo. When false a save
	// needs photos or a non-empty description.
	PhotosRequired bool
}
