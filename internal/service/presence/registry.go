// Package presence tracks participant liveness: registration, heartbeats and
// the eviction of participants that stopped sending them.
package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vbrandao/batepapo-server/internal/sanitize"
	"github.com/vbrandao/batepapo-server/internal/store"
)

// Common errors for presence operations.
var (
	ErrEmptyName     = errors.New("participant name must not be empty")
	ErrNameTaken     = errors.New("participant name already taken")
	ErrNotRegistered = errors.New("participant not registered")
)

// BroadcastTo is the reserved recipient meaning "visible to all".
const BroadcastTo = "Todos"

// Notice texts for system-generated status messages.
const (
	joinNoticeText  = "entra na sala..."
	leaveNoticeText = "sai da sala..."
)

// TimeLayout is the wall clock format stamped onto messages.
const TimeLayout = "15:04:05"

// Registry tracks participant presence. It holds no cache: the store is the
// single source of truth and every call reads it fresh, so concurrent handler
// instances never drift.
type Registry struct {
	store store.Store
}

// NewRegistry creates a presence registry backed by the given store.
func NewRegistry(st store.Store) *Registry {
	return &Registry{store: st}
}

// Register creates a participant with the current time as its first heartbeat
// and appends a join notice to the message log.
// Returns ErrEmptyName for a blank name and ErrNameTaken when a participant
// with the same name already exists.
func (r *Registry) Register(ctx context.Context, name string) (*store.Participant, error) {
	name = sanitize.Clean(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	_, err := r.store.GetParticipantByName(ctx, name)
	if err == nil {
		return nil, ErrNameTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check name: %w", err)
	}

	now := time.Now()
	participant, err := r.store.InsertParticipant(ctx, name, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}

	if _, err := r.store.InsertMessage(ctx, statusNotice(name, joinNoticeText, now)); err != nil {
		return nil, fmt.Errorf("insert join notice: %w", err)
	}

	return participant, nil
}

// Heartbeat refreshes a participant's last heartbeat to the current time.
// Returns ErrNotRegistered when no participant with that name exists.
func (r *Registry) Heartbeat(ctx context.Context, name string) error {
	err := r.store.UpdateHeartbeat(ctx, name, time.Now().UnixMilli())
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotRegistered
	}
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// Participants returns all registered participants.
func (r *Registry) Participants(ctx context.Context) ([]*store.Participant, error) {
	participants, err := r.store.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// LiveNames returns a snapshot of the names of all currently registered
// participants. A stale participant that the sweeper has not yet removed
// still counts as live.
func (r *Registry) LiveNames(ctx context.Context) ([]string, error) {
	participants, err := r.store.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	names := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.Name)
	}
	return names, nil
}

// StaleEntries returns the participants whose last heartbeat is older than
// threshold relative to now, in no guaranteed order.
func (r *Registry) StaleEntries(ctx context.Context, threshold time.Duration, now time.Time) ([]*store.Participant, error) {
	stale, err := r.store.ListStaleParticipants(ctx, now.Add(-threshold).UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list stale participants: %w", err)
	}
	return stale, nil
}

// statusNotice builds a system-generated status message attributed to name.
func statusNotice(name, text string, now time.Time) *store.Message {
	return &store.Message{
		From: name,
		To:   BroadcastTo,
		Text: text,
		Type: store.MessageTypeStatus,
		Time: now.Format(TimeLayout),
	}
}
