package core

import "context"

type (
	// Role is the per-connection authorization level within a presentation.
	Role string

	// Slide is one entry in a presentation's display order. The ID is
	// assigned at creation and never changes; Content is last-write-wins.
	Slide struct {
		ID      string `json:"id"`
		Content string `json:"content"`
	}

	// UserInfo describes one live connection inside a presentation.
	// ID equals the owning connection id; Nickname is a display label and
	// carries no identity.
	UserInfo struct {
		ID       string `json:"id"`
		Nickname string `json:"nickname"`
		Role     Role   `json:"role"`
	}

	// Presentation is the authoritative document for one room: the ordered
	// slides, the roster of connected users, and the slide currently being
	// presented. CurrentSlide is nil while Slides is empty and otherwise
	// always indexes a valid slide.
	Presentation struct {
		ID           string              `json:"id"`
		Slides       []Slide             `json:"slides"`
		Users        map[string]UserInfo `json:"users"`
		CurrentSlide *int                `json:"currentSlide"`
	}

	// PresentationStore is the persistence contract: read before every
	// mutation, write after. Get returns ErrNotFound for unknown ids.
	// There is no optimistic concurrency token; callers serialize access
	// per presentation themselves.
	PresentationStore interface {
		Get(ctx context.Context, id string) (*Presentation, error)
		Put(ctx context.Context, p *Presentation) error
	}
)

const (
	RoleCreator Role = "creator"
	RoleEditor  Role = "editor"
	RoleViewer  Role = "viewer"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleCreator || r == RoleEditor || r == RoleViewer
}

// CanEdit reports whether r may mutate slide content or the current slide.
func (r Role) CanEdit() bool {
	return r == RoleCreator || r == RoleEditor
}

// NewPresentation returns an empty document for the given id: no slides,
// no users, current slide unset.
func NewPresentation(id string) *Presentation {
	return &Presentation{
		ID:     id,
		Slides: []Slide{},
		Users:  make(map[string]UserInfo),
	}
}

// Clone returns a deep copy. Stores and the coordinator exchange copies so
// that no caller ever aliases store-owned state.
func (p *Presentation) Clone() *Presentation {
	if p == nil {
		return nil
	}
	out := &Presentation{
		ID:     p.ID,
		Slides: make([]Slide, len(p.Slides)),
		Users:  make(map[string]UserInfo, len(p.Users)),
	}
	copy(out.Slides, p.Slides)
	for id, u := range p.Users {
		out.Users[id] = u
	}
	if p.CurrentSlide != nil {
		idx := *p.CurrentSlide
		out.CurrentSlide = &idx
	}
	return out
}

// FindSlide returns the index of the slide with the given id, or -1.
func (p *Presentation) FindSlide(slideID string) int {
	for i := range p.Slides {
		if p.Slides[i].ID == slideID {
			return i
		}
	}
	return -1
}

// Creator returns the creator's user info, if a creator is present.
// A room whose creator has disconnected has none.
func (p *Presentation) Creator() (UserInfo, bool) {
	for _, u := range p.Users {
		if u.Role == RoleCreator {
			return u, true
		}
	}
	return UserInfo{}, false
}
