package workflow

import "github.com/dmitrijs2005/productkeeper/internal/server/failure"

type PhotoView struct {
	ID       string    `json:"id"`
	Kind     PhotoKind `json:"kind"`
	Position int       `json:"position"`
	FileName string    `json:"file_name"`
	URL      string    `json:"url,omitempty"`
	Preview  string    `json:"preview,omitempty"`
}

// View is a point-in-time copy of a session, safe to serialise.
type View struct {
	ID            string            `json:"id"`
	ProductID     ProductID         `json:"product_id"`
	ArticleNumber string            `json:"article_number"`
	Photos        []PhotoView       `json:"photos"`
	Description   string            `json:"description"`
	Notice        bool              `json:"notice"`
	State         SaveState         `json:"state"`
	Conflict      *ConflictProposal `json:"conflict,omitempty"`
	Error         *failure.Failure  `json:"error,omitempty"`
	Uploaded      []string          `json:"uploaded"`
	Busy          bool              `json:"busy"`
	Generating    bool              `json:"generating"`
	Closed        bool              `json:"closed"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:            s.id,
		ProductID:     s.product,
		ArticleNumber: s.articleNumber(),
		Photos:        make([]PhotoView, 0, len(s.photos)),
		Description:   s.description,
		Notice:        s.notice,
		State:         s.state,
		Error:         s.failure,
		Uploaded:      append([]string{}, s.uploaded...),
		Busy:          s.busy,
		Generating:    s.generating,
		Closed:        s.closed,
	}
	for _, p := range s.photos {
		v.Photos = append(v.Photos, PhotoView{
			ID:       p.ID,
			Kind:     p.Kind,
			Position: p.Position,
			FileName: p.FileName,
			URL:      p.URL,
			Preview:  p.Preview,
		})
	}
	if s.conflict != nil {
		c := *s.conflict
		v.Conflict = &c
	}
	return v
}

// HasPreview reports whether handle belongs to a local photo of s.
func (s *Session) HasPreview(handle string) bool {
	if handle == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.photos {
		if p.Kind == Local && p.Preview == handle {
			return true
		}
	}
	return false
}
