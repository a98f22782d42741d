package messages

import (
	"fmt"

	"github.com/vbrandao/batepapo-server/internal/store"
)

// ValidationError describes a message payload that failed admission.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RuleSet is the admission rule set for messages, parameterized by the live
// participant names at the moment it was built. It is a pure value derived
// from a single snapshot and must never be cached across validation calls:
// the same payload may pass now and fail later once its sender is evicted.
type RuleSet struct {
	live map[string]struct{}
}

// BuildRules derives a rule set from a snapshot of live participant names.
func BuildRules(liveNames []string) RuleSet {
	live := make(map[string]struct{}, len(liveNames))
	for _, name := range liveNames {
		live[name] = struct{}{}
	}
	return RuleSet{live: live}
}

// Validate checks a message payload against the rule set. All rules must
// hold: non-empty recipient and text, an allowed type, and a sender that is
// live in the snapshot the rules were built from.
func (r RuleSet) Validate(from, to, text string, msgType store.MessageType) error {
	if to == "" {
		return &ValidationError{Field: "to", Reason: "must not be empty"}
	}
	if text == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if msgType != store.MessageTypePublic && msgType != store.MessageTypePrivate {
		return &ValidationError{Field: "type", Reason: `must be "message" or "private_message"`}
	}
	if _, ok := r.live[from]; !ok {
		return &ValidationError{Field: "from", Reason: "sender is not a live participant"}
	}
	return nil
}
