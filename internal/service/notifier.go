package service

import (
	"context"

	"github.com/dtapi/booking-coordinator/internal/notification"
	"go.uber.org/zap"
)

// Notifier hands events to the asynchronous delivery pipeline.
type Notifier interface {
	Publish(ctx context.Context, ev notification.Event) error
}

// publish is fire and forget: the state change already committed, so a failure is only logged.
func publish(ctx context.Context, n Notifier, ev notification.Event) {
	if n == nil {
		return
	}
	if err := n.Publish(ctx, ev); err != nil {
		zap.S().Named("notifier").Errorw("failed to publish notification", "event_id", ev.ID, "job_id", ev.JobID, "type", ev.Type, "error", err)
	}
}
