package app

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"chatlog/internal/model"
)

// EventPublisher enqueues audit events. Publishing is best-effort: failures
// are logged and never fail the originating request.
type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}

func publishEvent(pub EventPublisher, log *zap.Logger, kind string, userID, entityID uint, payload interface{}) {
	if pub == nil {
		return
	}

	event := model.Event{
		Kind:     kind,
		UserID:   userID,
		EntityID: entityID,
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			event.Payload = string(raw)
		}
	}

	if err := pub.Publish(context.Background(), event); err != nil && log != nil {
		log.Warn("publish event failed",
			zap.String("kind", kind),
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
}
