package presence

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/vbrandao/batepapo-server/internal/store"
	"github.com/vbrandao/batepapo-server/internal/store/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestRegister_AppearsInLiveNames(t *testing.T) {
	st := newTestStore(t)
	registry := NewRegistry(st)
	ctx := context.Background()

	p, err := registry.Register(ctx, "alice")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if p.Name != "alice" || p.LastHeartbeat == 0 {
		t.Errorf("unexpected participant: %+v", p)
	}

	names, err := registry.LiveNames(ctx)
	if err != nil {
		t.Fatalf("LiveNames failed: %v", err)
	}
	if !slices.Contains(names, "alice") {
		t.Errorf("expected alice in live names, got %v", names)
	}
}

func TestRegister_PostsJoinNotice(t *testing.T) {
	st := newTestStore(t)
	registry := NewRegistry(st)
	ctx := context.Background()

	if _, err := registry.Register(ctx, "alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	msgs, err := st.ListMessages(ctx)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one join notice, got %d messages", len(msgs))
	}
	notice := msgs[0]
	if notice.From != "alice" || notice.To != BroadcastTo || notice.Type != store.MessageTypeStatus {
		t.Errorf("unexpected join notice: %+v", notice)
	}
	if notice.Text != "entra na sala..." {
		t.Errorf("unexpected join notice text: %q", notice.Text)
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	st := newTestStore(t)
	registry := NewRegistry(st)
	ctx := context.Background()

	if _, err := registry.Register(ctx, "alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := registry.Register(ctx, "alice"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestRegister_RejectsEmptyName(t *testing.T) {
	st := newTestStore(t)
	registry := NewRegistry(st)
	ctx := context.Background()

	for _, name := range []string{"", "   ", "<b></b>"} {
		if _, err := registry.Register(ctx, name); !errors.Is(err, ErrEmptyName) {
			t.Errorf("Register(%q): expected ErrEmptyName, got %v", name, err)
		}
	}
}

func TestRegister_SanitizesName(t *testing.T) {
	st := newTestStore(t)
	registry := NewRegistry(st)
	ctx := context.Background()

	p, err := registry.Register(ctx, "  <script>x</script>alice ")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if p.Name != "alice" {
		t.Errorf("expected sanitized name alice, got %q", p.Name)
	}
}

func TestHeartbeat(t *testing.T) {
	st := newTestStore(t)
	registry := NewRegistry(st)
	ctx := context.Background()

	if err := registry.Heartbeat(ctx, "ghost"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}

	// Seed with an old heartbeat so the refresh is observable.
	if _, err := st.InsertParticipant(ctx, "alice", 1000); err != nil {
		t.Fatalf("failed to seed participant: %v", err)
	}

	if err := registry.Heartbeat(ctx, "alice"); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}

	p, err := st.GetParticipantByName(ctx, "alice")
	if err != nil {
		t.Fatalf("GetParticipantByName failed: %v", err)
	}
	if p.LastHeartbeat == 1000 {
		t.Error("expected heartbeat to be refreshed")
	}
}

func TestStaleEntries_ThresholdBoundary(t *testing.T) {
	st := newTestStore(t)
	registry := NewRegistry(st)
	ctx := context.Background()

	now := time.Now()
	threshold := 10 * time.Second

	seed := map[string]int64{
		"stale":    now.Add(-11 * time.Second).UnixMilli(),
		"boundary": now.Add(-threshold).UnixMilli(),
		"fresh":    now.UnixMilli(),
	}
	for name, hb := range seed {
		if _, err := st.InsertParticipant(ctx, name, hb); err != nil {
			t.Fatalf("failed to seed %s: %v", name, err)
		}
	}

	stale, err := registry.StaleEntries(ctx, threshold, now)
	if err != nil {
		t.Fatalf("StaleEntries failed: %v", err)
	}

	if len(stale) != 1 || stale[0].Name != "stale" {
		names := make([]string, 0, len(stale))
		for _, p := range stale {
			names = append(names, p.Name)
		}
		t.Errorf("expected only stale past the threshold, got %v", names)
	}
}
