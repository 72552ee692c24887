package events

import (
	"context"

	"go.uber.org/zap"
)

// Event types
const (
	EventMatchJoined    = "match.joined"
	EventMatchCancelled = "match.cancelled"
	EventMatchCompleted = "match.completed"
	EventGroundSecured  = "ground.secured"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Emit publishes best-effort: failures are logged and swallowed so a committed
// state change is never reported as failed.
func Emit(ctx context.Context, pub Publisher, log *zap.Logger, event Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Warn("failed to publish event", zap.String("type", event.Type), zap.Error(err))
	}
}
