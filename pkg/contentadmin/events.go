package contentadmin

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is an audit record of a successful mutation.
type Event struct {
	ID     uuid.UUID  `json:"id"`
	Kind   EntityType `json:"kind"`
	Slug   string     `json:"slug"`
	Action string     `json:"action"`
	Actor  string     `json:"actor,omitempty"` // verified admin email, when known
	Time   time.Time  `json:"time"`
}

type actorContextKey struct{}

// WithActor returns a context carrying the verified admin identity. The auth
// middleware calls this after token validation so audit events can record who
// performed a write.
func WithActor(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, email)
}

// ActorFromContext returns the verified admin identity, or "" when the
// context does not carry one.
func ActorFromContext(ctx context.Context) string {
	email, _ := ctx.Value(actorContextKey{}).(string)
	return email
}

// NoopEventSink discards all events.
type NoopEventSink struct{}

// NewNoopEventSink creates an event sink that does nothing.
func NewNoopEventSink() *NoopEventSink { return &NoopEventSink{} }

func (*NoopEventSink) Publish(ctx context.Context, event Event) error { return nil }
