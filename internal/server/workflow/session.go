package workflow

import (
	"context"
	"errors"
	"net/http"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/logging"
	"github.com/dmitrijs2005/productkeeper/internal/server/failure"
	"github.com/dmitrijs2005/productkeeper/internal/server/models"
)

// Session is the mutable state of one upload form. All methods are safe for
// concurrent use; network calls run without the lock held, guarded by the
// busy and generating flags.
type Session struct {
	id      string
	owner   string
	product ProductID
	deps    Deps
	log     logging.Logger

	mu          sync.Mutex
	photos      []*Photo
	description string
	notice      bool
	state       SaveState
	conflict    *ConflictProposal
	failure     *failure.Failure
	uploaded    []string
	busy        bool
	generating  bool
	closed      bool
}

func NewSession(owner string, product ProductID, deps Deps) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		owner:   owner,
		product: product,
		deps:    deps,
		log:     deps.Logger.With("session_id", id, "product_id", string(product)),
		state:   Idle,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Owner() string { return s.owner }

func (s *Session) Product() ProductID { return s.product }

func (s *Session) articleNumber() string {
	return s.deps.Namespace.ArticleNumber(s.product)
}

// Hydrate loads the stored description and the existing photos in
// parallel. Failures are recorded on the session and never abort hydration;
// a missing record means there is no description yet.
func (s *Session) Hydrate(ctx context.Context) {
	var (
		product *models.Product
		objects []models.StoredObject
		lookErr error
		listErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		product, lookErr = s.deps.Records.Lookup(ctx, s.articleNumber())
		return nil
	})
	g.Go(func() error {
		objects, listErr = s.deps.Store.List(ctx, s.deps.Namespace.Prefix(s.product))
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if lookErr != nil && !errors.Is(lookErr, common.ErrorNotFound) {
		s.setFailure(ctx, failure.StepLookup, lookErr)
	} else {
		s.description = product.DescriptionText()
	}

	if listErr != nil {
		f := failure.New(failure.StepList, listErr)
		failure.Log(ctx, s.log, f)
		if s.failure == nil {
			s.failure = f
		}
	} else {
		s.photos = append(s.photos, s.remotePhotos(objects)...)
	}

	s.notice = strings.TrimSpace(s.description) != "" && len(s.photos) > 0
	s.log.Info(ctx, "session hydrated",
		"photos", len(s.photos),
		"has_description", s.description != "",
	)
}

// remotePhotos keeps images only, sorted by name, numbered from 1.
func (s *Session) remotePhotos(objects []models.StoredObject) []*Photo {
	paths := make([]string, 0, len(objects))
	for _, o := range objects {
		if IsImage(o.Path) {
			paths = append(paths, o.Path)
		}
	}
	slices.Sort(paths)

	photos := make([]*Photo, 0, len(paths))
	for i, p := range paths {
		photos = append(photos, &Photo{
			ID:       uuid.NewString(),
			Kind:     Remote,
			Position: i + 1,
			FileName: path.Base(p),
			Path:     p,
			URL:      s.deps.Store.PublicURL(p),
		})
	}
	return photos
}

// DismissNotice answers the pre-save notice. "back" closes the session.
func (s *Session) DismissNotice(choice NoticeChoice) error {
	switch choice {
	case NoticeProceed:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return common.ErrSessionClosed
		}
		s.notice = false
		return nil
	case NoticeBack:
		s.Close()
		return nil
	}
	return common.ErrInvalidDecision
}

// AddPhotos appends each upload as a local photo with its own preview. The
// batch is rejected as a whole if any file is not an image.
func (s *Session) AddPhotos(files []Upload) ([]Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return nil, err
	}

	types := make([]string, len(files))
	for i, f := range files {
		ct := f.ContentType
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(f.Data)
		}
		if !acceptable(f.FileName, ct) {
			return nil, s.setFailure(context.Background(), failure.StepValidate, common.ErrNotAnImage)
		}
		types[i] = ct
	}

	added := make([]Photo, 0, len(files))
	for i, f := range files {
		ct := types[i]
		p := &Photo{
			ID:          uuid.NewString(),
			Kind:        Local,
			FileName:    f.FileName,
			ContentType: ct,
			Data:        f.Data,
			Preview:     s.deps.Previews.Create(f.Data, ct),
		}
		s.photos = append(s.photos, p)
		added = append(added, *p)
	}
	s.numberLocals()

	for i := range added {
		added[i].Position = s.find(added[i].ID).Position
	}
	return added, nil
}

// RemovePhoto deletes a photo from the session. Remote photos are deleted
// from the object store right away and stay listed if that fails.
func (s *Session) RemovePhoto(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return common.ErrConfirmationRequired
	}

	s.mu.Lock()
	if err := s.editable(); err != nil {
		s.mu.Unlock()
		return err
	}
	p := s.find(id)
	if p == nil {
		s.mu.Unlock()
		return common.ErrPhotoNotFound
	}

	if p.Kind == Local {
		s.releasePreview(ctx, p)
		s.drop(id)
		s.numberLocals()
		s.mu.Unlock()
		return nil
	}

	target := p.Path
	s.busy = true
	s.mu.Unlock()

	err := s.deps.Store.Delete(ctx, target)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		return s.setFailure(ctx, failure.StepDelete, err)
	}
	s.drop(id)
	s.numberLocals()
	s.log.Info(ctx, "remote photo deleted", "path", target)
	return nil
}

// SetDescription replaces the description text.
func (s *Session) SetDescription(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}
	s.description = text
	return nil
}

// Enhance rewrites the current description with the text generator. On
// success the result replaces the text; on failure the text is untouched.
// A call while another one runs returns common.ErrBusy.
func (s *Session) Enhance(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", common.ErrSessionClosed
	}
	if s.generating || s.busy {
		s.mu.Unlock()
		return "", common.ErrBusy
	}
	if s.state == ConflictPending {
		s.mu.Unlock()
		return "", common.ErrConflictPending
	}
	input := s.description
	if strings.TrimSpace(input) == "" {
		err := s.setFailure(ctx, failure.StepEnhance, common.ErrEmptyDescription)
		s.mu.Unlock()
		return "", err
	}
	s.generating = true
	s.failure = nil
	s.mu.Unlock()

	out, err := s.deps.Enhancer.Enhance(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	if err != nil {
		return "", s.setFailure(ctx, failure.StepEnhance, err)
	}
	s.description = out
	return out, nil
}

// Close releases every outstanding preview. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked(context.Background())
}

func (s *Session) closeLocked(ctx context.Context) {
	if s.closed {
		return
	}
	s.closed = true
	for _, p := range s.photos {
		if p.Kind == Local {
			s.releasePreview(ctx, p)
		}
	}
	s.log.Debug(ctx, "session closed")
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) inFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy || s.generating
}

// editable is called with the lock held.
func (s *Session) editable() error {
	switch {
	case s.closed:
		return common.ErrSessionClosed
	case s.busy:
		return common.ErrBusy
	case s.state == ConflictPending:
		return common.ErrConflictPending
	}
	return nil
}

// acceptable reports whether a file would be stored under an image
// extension, so that Hydrate lists it again later. Names without a usable
// extension are stored as jpg and need an image content type.
func acceptable(name, contentType string) bool {
	if IsImage(name) {
		return true
	}
	return Ext(name) == defaultExt && strings.HasPrefix(contentType, "image/")
}

func (s *Session) find(id string) *Photo {
	for _, p := range s.photos {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) drop(id string) {
	s.photos = slices.DeleteFunc(s.photos, func(p *Photo) bool { return p.ID == id })
}

func (s *Session) releasePreview(ctx context.Context, p *Photo) {
	if p.Preview == "" {
		return
	}
	if err := s.deps.Previews.Release(p.Preview); err != nil {
		s.log.Warn(ctx, "preview release failed", "photo_id", p.ID, "error", err.Error())
	}
	p.Preview = ""
}

// nextIndex is the first free N for new uploads. It equals the remote
// count plus one when the stored names are contiguous, and never reuses a
// higher stored index.
func (s *Session) nextIndex() int {
	count, highest := 0, 0
	for _, p := range s.photos {
		if p.Kind != Remote {
			continue
		}
		count++
		if i, ok := s.deps.Namespace.ParseIndex(s.product, p.Path); ok && i > highest {
			highest = i
		}
	}
	return max(count, highest) + 1
}

// numberLocals renumbers queued local photos after the remote ones.
func (s *Session) numberLocals() {
	n := s.nextIndex()
	for _, p := range s.photos {
		if p.Kind == Local {
			p.Position = n
			n++
		}
	}
}

// setFailure records and logs a classified failure; the lock must be held.
func (s *Session) setFailure(ctx context.Context, step failure.Step, err error) *failure.Failure {
	f := failure.New(step, err)
	s.failure = f
	failure.Log(ctx, s.log, f)
	return f
}
