// Package messages implements message admission, visibility filtering and
// ownership-gated mutation over the shared store.
package messages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vbrandao/batepapo-server/internal/sanitize"
	"github.com/vbrandao/batepapo-server/internal/service/presence"
	"github.com/vbrandao/batepapo-server/internal/store"
)

// Common errors for message operations.
var (
	ErrNotFound = errors.New("message not found")
	ErrNotOwner = errors.New("not the message owner")
)

// Service provides message business logic. Every admission decision is made
// against a live-name snapshot read fresh from the registry at call time.
type Service struct {
	store    store.Store
	registry *presence.Registry
}

// New creates a message service.
func New(st store.Store, registry *presence.Registry) *Service {
	return &Service{
		store:    st,
		registry: registry,
	}
}

// Send validates and persists a message. from is the caller's claimed
// identity; it must name a currently live participant.
func (s *Service) Send(ctx context.Context, from, to, text string, msgType store.MessageType) (*store.Message, error) {
	text = sanitize.Clean(text)

	if err := s.validate(ctx, from, to, text, msgType); err != nil {
		return nil, err
	}

	msg := &store.Message{
		From: from,
		To:   to,
		Text: text,
		Type: msgType,
		Time: time.Now().Format(presence.TimeLayout),
	}

	saved, err := s.store.InsertMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return saved, nil
}

// List returns the messages requester may see, oldest first. When limit is
// positive, only the last limit messages are returned.
func (s *Service) List(ctx context.Context, requester string, limit int) ([]*store.Message, error) {
	all, err := s.store.ListMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	visible := make([]*store.Message, 0, len(all))
	for _, msg := range all {
		if Visible(requester, msg) {
			visible = append(visible, msg)
		}
	}

	if limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}
	return visible, nil
}

// Edit replaces the content of an existing message. The new content is
// re-validated against a fresh live-name snapshot and the timestamp is
// re-stamped. Only the original sender may edit; requester is compared against
// the stored message, not the incoming payload.
func (s *Service) Edit(ctx context.Context, id, requester, to, text string, msgType store.MessageType) error {
	text = sanitize.Clean(text)

	if err := s.validate(ctx, requester, to, text, msgType); err != nil {
		return err
	}

	existing, err := s.store.GetMessageByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get message: %w", err)
	}

	if existing.From != requester {
		return ErrNotOwner
	}

	// Lookup and update are two separate store calls: a concurrent delete in
	// between loses to this write. Last writer wins.
	updated := &store.Message{
		ID:   existing.ID,
		From: existing.From,
		To:   to,
		Text: text,
		Type: msgType,
		Time: time.Now().Format(presence.TimeLayout),
	}
	if err := s.store.UpdateMessage(ctx, updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

// Delete removes an existing message. Only the original sender may delete.
func (s *Service) Delete(ctx context.Context, id, requester string) error {
	existing, err := s.store.GetMessageByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get message: %w", err)
	}

	if existing.From != requester {
		return ErrNotOwner
	}

	if err := s.store.DeleteMessage(ctx, existing.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// validate builds admission rules from a fresh live-name snapshot and checks
// the payload against them.
func (s *Service) validate(ctx context.Context, from, to, text string, msgType store.MessageType) error {
	liveNames, err := s.registry.LiveNames(ctx)
	if err != nil {
		return fmt.Errorf("live names: %w", err)
	}
	return BuildRules(liveNames).Validate(from, to, text, msgType)
}
