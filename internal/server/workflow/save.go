package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/server/failure"
)

// Outcome is what Save and ResolveConflict leave behind.
type Outcome struct {
	State    SaveState         `json:"state"`
	Uploaded []string          `json:"uploaded"`
	Conflict *ConflictProposal `json:"conflict,omitempty"`
}

// pending is a local photo captured for upload together with its
// destination.
type pending struct {
	photo       *Photo
	path        string
	data        []byte
	contentType string
}

// Save uploads the queued local photos one after another, then writes the
// description. A stored description that differs from the new one is not
// overwritten: the save stops in ConflictPending until ResolveConflict.
//
// Photos uploaded before a failure stay uploaded and become remote photos of
// the session, so a repeated Save reuses the same destination names.
func (s *Session) Save(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if err := s.saveable(ctx); err != nil {
		s.mu.Unlock()
		return s.outcome(), err
	}

	s.busy = true
	s.failure = nil
	s.conflict = nil
	s.uploaded = nil
	s.state = Uploading

	s.numberLocals()
	queue := s.queue()
	text := s.description
	s.mu.Unlock()

	s.log.Info(ctx, "save started", "uploads", len(queue), "has_description", strings.TrimSpace(text) != "")

	if err := s.upload(ctx, queue); err != nil {
		return s.fail(ctx, failure.StepUpload, err)
	}

	if strings.TrimSpace(text) == "" {
		return s.finish(ctx)
	}

	s.mu.Lock()
	s.state = Describing
	s.mu.Unlock()

	existing, err := s.deps.Records.Lookup(ctx, s.articleNumber())
	switch {
	case errors.Is(err, common.ErrorNotFound):
		if err := s.deps.Records.Create(ctx, s.articleNumber(), text); err != nil {
			return s.fail(ctx, failure.StepDescribe, err)
		}
		return s.finish(ctx)
	case err != nil:
		return s.fail(ctx, failure.StepLookup, err)
	}

	stored := existing.DescriptionText()
	if strings.TrimSpace(stored) != "" && stored != text {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.busy = false
		s.state = ConflictPending
		s.conflict = &ConflictProposal{Existing: stored, Proposed: text}
		s.log.Info(ctx, "description conflict detected")
		return s.outcome(), nil
	}

	if err := s.deps.Records.Update(ctx, s.articleNumber(), text); err != nil {
		return s.fail(ctx, failure.StepDescribe, err)
	}
	return s.finish(ctx)
}

// ResolveConflict applies the user's decision on a pending conflict. The
// proposal is discarded whatever the decision or its result. Cancel leaves
// the stored description and the photos uploaded so far untouched. Overwrite
// uploads any photo still queued before it writes the description.
func (s *Session) ResolveConflict(ctx context.Context, d Decision) (Outcome, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return s.outcome(), common.ErrSessionClosed
	case s.busy:
		s.mu.Unlock()
		return s.outcome(), common.ErrBusy
	case s.state != ConflictPending || s.conflict == nil:
		s.mu.Unlock()
		return s.outcome(), common.ErrNoConflict
	}

	proposal := s.conflict
	switch d {
	case Cancel:
		defer s.mu.Unlock()
		s.conflict = nil
		s.state = Idle
		s.log.Info(ctx, "description conflict cancelled", "uploaded", len(s.uploaded))
		return s.outcome(), nil
	case Overwrite:
	default:
		s.mu.Unlock()
		return s.outcome(), common.ErrInvalidDecision
	}

	s.conflict = nil
	s.busy = true
	s.numberLocals()
	queue := s.queue()
	s.state = Describing
	if len(queue) > 0 {
		s.state = Uploading
	}
	s.mu.Unlock()

	if err := s.upload(ctx, queue); err != nil {
		return s.fail(ctx, failure.StepUpload, err)
	}

	s.mu.Lock()
	s.state = Describing
	s.mu.Unlock()

	if err := s.deps.Records.Update(ctx, s.articleNumber(), proposal.Proposed); err != nil {
		return s.fail(ctx, failure.StepDescribe, err)
	}
	s.log.Info(ctx, "description overwritten")
	return s.finish(ctx)
}

// saveable checks the save preconditions with the lock held. Validation
// failures are recorded on the session; no network call has been made.
func (s *Session) saveable(ctx context.Context) error {
	switch {
	case s.closed:
		return common.ErrSessionClosed
	case s.busy, s.generating:
		return common.ErrBusy
	case s.state == ConflictPending:
		return common.ErrConflictPending
	}

	if len(s.photos) > 0 {
		return nil
	}
	if s.deps.PhotosRequired {
		return s.setFailure(ctx, failure.StepValidate, common.ErrNoPhotos)
	}
	if strings.TrimSpace(s.description) == "" {
		return s.setFailure(ctx, failure.StepValidate, common.ErrNothingToSave)
	}
	return nil
}

// queue captures the local photos in list order with their destinations.
func (s *Session) queue() []pending {
	var q []pending
	for _, p := range s.photos {
		if p.Kind != Local {
			continue
		}
		q = append(q, pending{
			photo:       p,
			path:        s.deps.Namespace.ObjectPath(s.product, p.Position, Ext(p.FileName)),
			data:        p.Data,
			contentType: p.ContentType,
		})
	}
	return q
}

// upload puts the queued photos one after another and stops at the first
// failure.
func (s *Session) upload(ctx context.Context, queue []pending) error {
	for _, p := range queue {
		url, err := s.deps.Store.Put(ctx, p.path, p.data, p.contentType, true)
		if err != nil {
			return err
		}
		s.markUploaded(ctx, p, url)
	}
	return nil
}

// markUploaded turns a local photo into the remote one it now is.
func (s *Session) markUploaded(ctx context.Context, p pending, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releasePreview(ctx, p.photo)
	p.photo.Kind = Remote
	p.photo.Path = p.path
	p.photo.URL = url
	p.photo.Data = nil
	s.uploaded = append(s.uploaded, url)
	s.log.Debug(ctx, "photo uploaded", "path", p.path)
}

func (s *Session) fail(ctx context.Context, step failure.Step, err error) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	s.state = Failed
	f := s.setFailure(ctx, step, err)
	return s.outcome(), f
}

// finish marks the save done and tears the session down.
func (s *Session) finish(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	s.state = Done
	s.closeLocked(ctx)
	s.log.Info(ctx, "save finished", "uploaded", len(s.uploaded))
	return s.outcome(), nil
}

// outcome is called with the lock held.
func (s *Session) outcome() Outcome {
	o := Outcome{
		State:    s.state,
		Uploaded: append([]string(nil), s.uploaded...),
	}
	if s.conflict != nil {
		c := *s.conflict
		o.Conflict = &c
	}
	return o
}
