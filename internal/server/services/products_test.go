package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/dbx"
	"github.com/dmitrijs2005/productkeeper/internal/server/models"
	"github.com/dmitrijs2005/productkeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/productkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeProductsRepo struct {
	products.Repository

	got    *models.Product
	getErr error

	inserted  []*models.Product
	insertErr error

	updated   map[string]string
	updateErr error
}

func (f *fakeProductsRepo) GetByArticleNumber(ctx context.Context, articleNumber string) (*models.Product, error) {
	return f.got, f.getErr
}

func (f *fakeProductsRepo) Insert(ctx context.Context, p *models.Product) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, p)
	return nil
}

func (f *fakeProductsRepo) UpdateDescription(ctx context.Context, articleNumber, description string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updated == nil {
		f.updated = map[string]string{}
	}
	f.updated[articleNumber] = description
	return nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	p *fakeProductsRepo
}

func (m *fakeRepoManager) Products(db dbx.DBTX) products.Repository { return m.p }

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// -------- tests --------

func TestLookup(t *testing.T) {
	db, _ := newSQLMockDB(t)
	text := "Old text"
	repo := &fakeProductsRepo{got: &models.Product{ArticleNumber: "TVH/7788", Description: &text}}
	s := NewProductService(db, &fakeRepoManager{p: repo})

	p, err := s.Lookup(context.Background(), "TVH/7788")
	require.NoError(t, err)
	assert.Equal(t, "Old text", p.DescriptionText())
}

func TestLookup_NotFoundPassesThrough(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := NewProductService(db, &fakeRepoManager{p: &fakeProductsRepo{getErr: common.ErrorNotFound}})

	_, err := s.Lookup(context.Background(), "TVH/1")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
	assert.Equal(t, "not found", err.Error())
}

func TestLookup_WrapsOtherErrors(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := NewProductService(db, &fakeRepoManager{p: &fakeProductsRepo{getErr: errors.New("network down")}})

	_, err := s.Lookup(context.Background(), "TVH/1")
	assert.EqualError(t, err, "error getting product: network down")
}

func TestCreate_RunsInTransaction(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeProductsRepo{}
	s := NewProductService(db, &fakeRepoManager{p: repo})

	require.NoError(t, s.Create(context.Background(), "TVH/4521", "Hydraulic valve for forklift mast."))
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "TVH/4521", repo.inserted[0].ArticleNumber)
	assert.Equal(t, "TVH/4521", repo.inserted[0].ProductName)
	assert.Equal(t, "Hydraulic valve for forklift mast.", repo.inserted[0].DescriptionText())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RollsBackOnError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewProductService(db, &fakeRepoManager{p: &fakeProductsRepo{insertErr: errors.New("duplicate key")}})

	err := s.Create(context.Background(), "TVH/4521", "x")
	assert.EqualError(t, err, "error creating product: duplicate key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeProductsRepo{}
	s := NewProductService(db, &fakeRepoManager{p: repo})

	require.NoError(t, s.Update(context.Background(), "TVH/7788", "New text"))
	assert.Equal(t, "New text", repo.updated["TVH/7788"])

	repo.updateErr = common.ErrorNotFound
	err := s.Update(context.Background(), "TVH/7788", "New text")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestDisabledProductService(t *testing.T) {
	var s DisabledProductService
	ctx := context.Background()

	_, err := s.Lookup(ctx, "TVH/1")
	assert.True(t, errors.Is(err, common.ErrNotConfigured))
	assert.True(t, errors.Is(s.Create(ctx, "TVH/1", "x"), common.ErrNotConfigured))
	assert.True(t, errors.Is(s.Update(ctx, "TVH/1", "x"), common.ErrNotConfigured))
}
