package messages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vbrandao/batepapo-server/internal/service/presence"
	"github.com/vbrandao/batepapo-server/internal/store"
	"github.com/vbrandao/batepapo-server/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return New(st, presence.NewRegistry(st)), st
}

func seedParticipant(t *testing.T, st store.Store, name string) {
	t.Helper()

	if _, err := st.InsertParticipant(context.Background(), name, time.Now().UnixMilli()); err != nil {
		t.Fatalf("failed to seed participant %s: %v", name, err)
	}
}

func TestSend(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedParticipant(t, st, "alice")

	msg, err := svc.Send(ctx, "alice", "Todos", "oi", store.MessageTypePublic)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.ID == "" || msg.From != "alice" || msg.Time == "" {
		t.Errorf("unexpected message: %+v", msg)
	}

	stored, err := st.GetMessageByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("message not persisted: %v", err)
	}
	if stored.Text != "oi" {
		t.Errorf("unexpected stored text: %q", stored.Text)
	}
}

func TestSend_SenderNotLive(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedParticipant(t, st, "alice")

	_, err := svc.Send(ctx, "carol", "Todos", "oi", store.MessageTypePublic)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "from" {
		t.Fatalf("expected from validation failure, got %v", err)
	}

	// The rejected message must not be persisted.
	all, listErr := st.ListMessages(ctx)
	if listErr != nil {
		t.Fatalf("ListMessages failed: %v", listErr)
	}
	if len(all) != 0 {
		t.Errorf("expected no persisted messages, got %d", len(all))
	}
}

func TestSend_SanitizesText(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedParticipant(t, st, "alice")

	msg, err := svc.Send(ctx, "alice", "Todos", "  <script>alert(1)</script>oi  ", store.MessageTypePublic)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.Text != "oi" {
		t.Errorf("expected sanitized text, got %q", msg.Text)
	}
}

func TestList_FiltersAndLimits(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedParticipant(t, st, "alice")
	seedParticipant(t, st, "bob")
	seedParticipant(t, st, "carol")

	send := func(from, to string, msgType store.MessageType, text string) {
		t.Helper()
		if _, err := svc.Send(ctx, from, to, text, msgType); err != nil {
			t.Fatalf("Send(%s -> %s) failed: %v", from, to, err)
		}
	}

	send("alice", "Todos", store.MessageTypePublic, "publica 1")
	send("bob", "carol", store.MessageTypePrivate, "segredo")
	send("alice", "bob", store.MessageTypePrivate, "para bob")
	send("carol", "Todos", store.MessageTypePublic, "publica 2")

	visible, err := svc.List(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	// alice sees both public messages and her own private one, not bob's secret.
	if len(visible) != 3 {
		t.Fatalf("expected 3 visible messages, got %d", len(visible))
	}
	for _, msg := range visible {
		if msg.Text == "segredo" {
			t.Error("alice must not see bob's private message")
		}
	}

	last, err := svc.List(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("List with limit failed: %v", err)
	}
	if len(last) != 2 {
		t.Fatalf("expected 2 messages with limit, got %d", len(last))
	}
	if last[0].Text != "para bob" || last[1].Text != "publica 2" {
		t.Errorf("expected the last two visible messages, got %q and %q", last[0].Text, last[1].Text)
	}
}

func TestEdit(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedParticipant(t, st, "alice")

	msg, err := svc.Send(ctx, "alice", "Todos", "original", store.MessageTypePublic)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if err := svc.Edit(ctx, msg.ID, "alice", "Todos", "editada", store.MessageTypePublic); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	updated, err := st.GetMessageByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetMessageByID failed: %v", err)
	}
	if updated.Text != "editada" {
		t.Errorf("expected edited text, got %q", updated.Text)
	}
}

func TestEdit_NonOwnerLeavesMessageUnchanged(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedParticipant(t, st, "alice")
	seedParticipant(t, st, "bob")

	msg, err := svc.Send(ctx, "alice", "Todos", "original", store.MessageTypePublic)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	err = svc.Edit(ctx, msg.ID, "bob", "Todos", "invadida", store.MessageTypePublic)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	stored, err := st.GetMessageByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetMessageByID failed: %v", err)
	}
	if stored.Text != "original" {
		t.Errorf("expected message unchanged, got %q", stored.Text)
	}
}

func TestEdit_ValidatesBeforeLookup(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedParticipant(t, st, "alice")

	// Invalid payload on a missing id reports the validation failure,
	// not the missing message.
	err := svc.Edit(ctx, "missing", "alice", "", "texto", store.MessageTypePublic)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEdit_NotFound(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedParticipant(t, st, "alice")

	err := svc.Edit(ctx, "missing", "alice", "Todos", "texto", store.MessageTypePublic)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedParticipant(t, st, "alice")
	seedParticipant(t, st, "bob")

	msg, err := svc.Send(ctx, "alice", "Todos", "apagar", store.MessageTypePublic)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if err := svc.Delete(ctx, msg.ID, "bob"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for non-owner delete, got %v", err)
	}

	if err := svc.Delete(ctx, msg.ID, "alice"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := st.GetMessageByID(ctx, msg.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected message removed, got %v", err)
	}

	if err := svc.Delete(ctx, "missing", "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}
