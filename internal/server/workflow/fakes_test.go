package workflow

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/logging"
	"github.com/dmitrijs2005/productkeeper/internal/server/models"
	"github.com/dmitrijs2005/productkeeper/internal/server/previews"
)

const testBaseURL = "https://cdn.test/"

// -------- object store --------

type memStore struct {
	mu sync.Mutex

	objects map[string][]byte
	putErrs map[string]error
	puts    []string
	deletes []string
	calls   int

	listErr   error
	deleteErr error
}

func newMemStore(paths ...string) *memStore {
	s := &memStore{objects: map[string][]byte{}, putErrs: map[string]error{}}
	for _, p := range paths {
		s.objects[p] = []byte("stored")
	}
	return s
}

func (m *memStore) Put(_ context.Context, path string, body []byte, _ string, overwrite bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if err := m.putErrs[path]; err != nil {
		return "", err
	}
	if _, ok := m.objects[path]; ok && !overwrite {
		return "", common.ErrorInternal
	}
	m.objects[path] = body
	m.puts = append(m.puts, path)
	return testBaseURL + path, nil
}

// List answers in reverse order so that callers must sort.
func (m *memStore) List(_ context.Context, prefix string) ([]models.StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.StoredObject
	for p, b := range m.objects {
		if strings.HasPrefix(p, prefix) {
			out = append(out, models.StoredObject{Path: p, Size: int64(len(b))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path > out[j].Path })
	return out, nil
}

func (m *memStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, path)
	m.deletes = append(m.deletes, path)
	return nil
}

func (m *memStore) PublicURL(path string) string {
	return testBaseURL + path
}

func (m *memStore) keys(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for p := range m.objects {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (m *memStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// -------- record store --------

type memRecords struct {
	mu sync.Mutex

	rows    map[string]*string
	created []string
	updated []string
	calls   int

	lookupErr error
	createErr error
	updateErr error
}

func newMemRecords() *memRecords {
	return &memRecords{rows: map[string]*string{}}
}

func (m *memRecords) with(articleNumber, description string) *memRecords {
	m.rows[articleNumber] = &description
	return m
}

func (m *memRecords) Lookup(_ context.Context, articleNumber string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	d, ok := m.rows[articleNumber]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Product{ArticleNumber: articleNumber, ProductName: articleNumber, Description: d}, nil
}

func (m *memRecords) Create(_ context.Context, articleNumber, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.createErr != nil {
		return m.createErr
	}
	m.rows[articleNumber] = &description
	m.created = append(m.created, articleNumber)
	return nil
}

func (m *memRecords) Update(_ context.Context, articleNumber, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.rows[articleNumber]; !ok {
		return common.ErrorNotFound
	}
	m.rows[articleNumber] = &description
	m.updated = append(m.updated, articleNumber)
	return nil
}

func (m *memRecords) description(articleNumber string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.rows[articleNumber]
	if !ok || d == nil {
		return "", ok
	}
	return *d, true
}

func (m *memRecords) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// -------- text generator --------

type fakeEnhancer struct {
	mu    sync.Mutex
	out   string
	err   error
	calls int
	input string

	started chan struct{}
	release chan struct{}
}

func (f *fakeEnhancer) Enhance(_ context.Context, description string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.input = description
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return f.out, f.err
}

// -------- helpers --------

type fixture struct {
	store    *memStore
	records  *memRecords
	enhancer *fakeEnhancer
	previews *previews.Registry
	deps     Deps
}

func newFixture(store *memStore, records *memRecords) *fixture {
	f := &fixture{
		store:    store,
		records:  records,
		enhancer: &fakeEnhancer{},
		previews: previews.NewRegistry(),
	}
	f.deps = Deps{
		Store:          f.store,
		Records:        f.records,
		Enhancer:       f.enhancer,
		Previews:       f.previews,
		Logger:         logging.NewDiscardLogger(),
		Namespace:      NewNamespace("tvh"),
		PhotosRequired: true,
	}
	return f
}

func (f *fixture) open(t *testing.T, id string) *Session {
	t.Helper()

	pid, err := ParseProductID(id)
	if err != nil {
		t.Fatalf("ParseProductID(%q): %v", id, err)
	}
	s := NewSession("user-1", pid, f.deps)
	s.Hydrate(context.Background())
	return s
}

func jpeg(name string) Upload {
	return Upload{FileName: name, ContentType: "image/jpeg", Data: []byte("\xff\xd8\xff" + name)}
}
