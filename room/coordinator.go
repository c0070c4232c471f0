package room

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"slidesync/core"
	"slidesync/session"
)

// Outbound event names shared with the transport layer.
const (
	// EventUpdate carries a full presentation snapshot.
	EventUpdate = "update"
	// EventSlideUpdate carries a SlideDelta for a single edited slide.
	EventSlideUpdate = "slide:update"
)

// SlideDelta is the minimal broadcast for a content edit. Clients apply it
// to their cached copy instead of replacing the whole document.
type SlideDelta struct {
	SlideID string `json:"slideId"`
	Content string `json:"content"`
}

// Broadcaster is the transport-side fanout the coordinator emits through.
// Delivery is fire-and-forget; the coordinator never waits on it.
type Broadcaster interface {
	ToRoom(roomID string, event string, payload any)
	ToConn(connID string, event string, payload any)
}

// Coordinator applies the event protocol to presentation documents. Every
// mutation follows the same path: lock the room, read the document from the
// store, validate and authorize, mutate, write it back, broadcast. A write
// failure suppresses the broadcast so clients never see state the store
// does not have.
//
// The per-room mutex is what makes read-modify-write safe: two events for
// the same presentation can never interleave between the store read and the
// store write, while events for different rooms proceed concurrently.
type Coordinator struct {
	store       core.PresentationStore
	sessions    *session.Registry
	broadcast   Broadcaster
	defaultRole core.Role

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator wires the coordinator to its store, registry, and fanout.
// defaultRole is the role handed to every joiner after the first; anything
// but viewer falls back to editor.
func NewCoordinator(store core.PresentationStore, sessions *session.Registry, broadcast Broadcaster, defaultRole core.Role) *Coordinator {
	if defaultRole != core.RoleViewer {
		defaultRole = core.RoleEditor
	}
	return &Coordinator{
		store:       store,
		sessions:    sessions,
		broadcast:   broadcast,
		defaultRole: defaultRole,
		locks:       make(map[string]*sync.Mutex),
	}
}

// lockRoom serializes mutations per presentation id. Lock entries live as
// long as the process, matching the lifetime of the documents themselves.
func (c *Coordinator) lockRoom(id string) func() {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Join adds a connection to a presentation, creating the document lazily
// when the id is unknown and generating a fresh id when none is supplied.
// The first user into an empty roster becomes the creator; everyone else
// gets the configured default role. The full snapshot is broadcast to the
// room, joiner included.
func (c *Coordinator) Join(ctx context.Context, connID, nickname, presentationID string) (*core.Presentation, error) {
	if presentationID == "" {
		presentationID = ulid.Make().String()
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = "Anonymous"
	}

	unlock := c.lockRoom(presentationID)
	defer unlock()

	p, err := c.store.Get(ctx, presentationID)
	if err != nil {
		if err != core.ErrNotFound {
			return nil, fmt.Errorf("load presentation %s: %w", presentationID, err)
		}
		p = core.NewPresentation(presentationID)
	}

	role := c.defaultRole
	if len(p.Users) == 0 {
		role = core.RoleCreator
	}
	p.Users[connID] = core.UserInfo{ID: connID, Nickname: nickname, Role: role}

	if err := c.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("persist presentation %s: %w", presentationID, err)
	}
	c.sessions.Bind(connID, presentationID, role)

	logrus.WithFields(logrus.Fields{
		"presentation_id": presentationID,
		"conn_id":         connID,
		"nickname":        nickname,
		"role":            role,
	}).Info("User joined presentation")

	c.broadcast.ToRoom(presentationID, EventUpdate, p)
	return p, nil
}

// AddSlide appends a slide with a fresh id to the caller's presentation.
// Viewers are rejected. Appending the first slide also points CurrentSlide
// at it.
func (c *Coordinator) AddSlide(ctx context.Context, connID, content string) (*core.Presentation, error) {
	p, unlock, err := c.loadFor(ctx, connID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	caller, ok := p.Users[connID]
	if !ok {
		return nil, core.ErrNotJoined
	}
	if !caller.Role.CanEdit() {
		return nil, fmt.Errorf("role %s cannot add slides: %w", caller.Role, core.ErrUnauthorized)
	}

	slide := core.Slide{ID: ulid.Make().String(), Content: content}
	p.Slides = append(p.Slides, slide)
	if p.CurrentSlide == nil {
		first := 0
		p.CurrentSlide = &first
	}

	if err := c.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("persist presentation %s: %w", p.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"presentation_id": p.ID,
		"slide_id":        slide.ID,
		"slide_count":     len(p.Slides),
	}).Info("Slide added")

	c.broadcast.ToRoom(p.ID, EventUpdate, p)
	return p, nil
}

// EditSlide overwrites a slide's content, last write wins. An unknown slide
// id drops the event: the caller gets ErrNotFound, the room hears nothing.
// The broadcast is the minimal delta rather than the whole document.
func (c *Coordinator) EditSlide(ctx context.Context, connID, slideID, content string) (*SlideDelta, error) {
	p, unlock, err := c.loadFor(ctx, connID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	caller, ok := p.Users[connID]
	if !ok {
		return nil, core.ErrNotJoined
	}
	if !caller.Role.CanEdit() {
		return nil, fmt.Errorf("role %s cannot edit slides: %w", caller.Role, core.ErrUnauthorized)
	}

	idx := p.FindSlide(slideID)
	if idx < 0 {
		return nil, fmt.Errorf("slide %s: %w", slideID, core.ErrNotFound)
	}
	p.Slides[idx].Content = content

	if err := c.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("persist presentation %s: %w", p.ID, err)
	}

	delta := &SlideDelta{SlideID: slideID, Content: content}
	c.broadcast.ToRoom(p.ID, EventSlideUpdate, delta)
	return delta, nil
}

// AssignRole lets the creator demote or re-promote another user between
// editor and viewer. The creator role itself is fixed at creation: it can
// neither be granted nor taken away here.
func (c *Coordinator) AssignRole(ctx context.Context, connID, targetID string, role core.Role) (*core.Presentation, error) {
	if role != core.RoleEditor && role != core.RoleViewer {
		return nil, fmt.Errorf("role %s cannot be assigned: %w", role, core.ErrMalformed)
	}

	p, unlock, err := c.loadFor(ctx, connID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	caller, ok := p.Users[connID]
	if !ok {
		return nil, core.ErrNotJoined
	}
	if caller.Role != core.RoleCreator {
		return nil, fmt.Errorf("role %s cannot assign roles: %w", caller.Role, core.ErrUnauthorized)
	}

	target, ok := p.Users[targetID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", targetID, core.ErrNotFound)
	}
	if target.Role == core.RoleCreator {
		return nil, fmt.Errorf("creator role is fixed: %w", core.ErrUnauthorized)
	}
	target.Role = role
	p.Users[targetID] = target

	if err := c.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("persist presentation %s: %w", p.ID, err)
	}
	c.sessions.SetRole(targetID, role)

	logrus.WithFields(logrus.Fields{
		"presentation_id": p.ID,
		"target_id":       targetID,
		"role":            role,
	}).Info("Role assigned")

	c.broadcast.ToRoom(p.ID, EventUpdate, p)
	return p, nil
}

// ChangeCurrentSlide moves the presented-slide pointer. Out-of-range
// indexes drop the event so the pointer always references a valid slide.
func (c *Coordinator) ChangeCurrentSlide(ctx context.Context, connID string, index int) (*core.Presentation, error) {
	p, unlock, err := c.loadFor(ctx, connID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	caller, ok := p.Users[connID]
	if !ok {
		return nil, core.ErrNotJoined
	}
	if !caller.Role.CanEdit() {
		return nil, fmt.Errorf("role %s cannot change the current slide: %w", caller.Role, core.ErrUnauthorized)
	}

	if index < 0 || index >= len(p.Slides) {
		return nil, fmt.Errorf("slide index %d out of range: %w", index, core.ErrNotFound)
	}
	p.CurrentSlide = &index

	if err := c.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("persist presentation %s: %w", p.ID, err)
	}

	c.broadcast.ToRoom(p.ID, EventUpdate, p)
	return p, nil
}

// Leave removes a disconnecting connection from its presentation and the
// registry, then broadcasts the shrunken roster. The document survives an
// empty room, and a departing creator leaves the room creator-less.
func (c *Coordinator) Leave(ctx context.Context, connID string) error {
	sess, ok := c.sessions.Lookup(connID)
	if !ok {
		return nil
	}
	c.sessions.Unbind(connID)

	unlock := c.lockRoom(sess.PresentationID)
	defer unlock()

	p, err := c.store.Get(ctx, sess.PresentationID)
	if err != nil {
		if err == core.ErrNotFound {
			return nil
		}
		return fmt.Errorf("load presentation %s: %w", sess.PresentationID, err)
	}
	if _, ok := p.Users[connID]; !ok {
		return nil
	}
	delete(p.Users, connID)

	if err := c.store.Put(ctx, p); err != nil {
		return fmt.Errorf("persist presentation %s: %w", p.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"presentation_id": p.ID,
		"conn_id":         connID,
		"remaining":       len(p.Users),
	}).Info("User left presentation")

	c.broadcast.ToRoom(p.ID, EventUpdate, p)
	return nil
}

// loadFor resolves the caller's room through the registry, locks it, and
// loads the document. The returned unlock must be called exactly once.
func (c *Coordinator) loadFor(ctx context.Context, connID string) (*core.Presentation, func(), error) {
	sess, ok := c.sessions.Lookup(connID)
	if !ok {
		return nil, nil, core.ErrNotJoined
	}

	unlock := c.lockRoom(sess.PresentationID)
	p, err := c.store.Get(ctx, sess.PresentationID)
	if err != nil {
		unlock()
		if err == core.ErrNotFound {
			return nil, nil, fmt.Errorf("presentation %s: %w", sess.PresentationID, core.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("load presentation %s: %w", sess.PresentationID, err)
	}
	return p, unlock, nil
}
