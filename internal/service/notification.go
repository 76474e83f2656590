package service

import (
	"context"
	"errors"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/notification"
	"github.com/dtapi/booking-coordinator/internal/store"
)

type Dispatcher interface {
	Notify(ctx context.Context, ev notification.Event) (notification.DispatchResult, error)
}

// NotificationService runs the admin resend operations synchronously so delivery failures reach the caller.
type NotificationService struct {
	store      store.Store
	dispatcher Dispatcher
}

func NewNotificationService(store store.Store, dispatcher Dispatcher) *NotificationService {
	return &NotificationService{store: store, dispatcher: dispatcher}
}

func (n *NotificationService) ResendNotifications(ctx context.Context, user auth.User, jobID int64) (notification.DispatchResult, error) {
	return n.resend(ctx, user, jobID, notification.ResendPush)
}

func (n *NotificationService) ResendSMSNotifications(ctx context.Context, user auth.User, jobID int64) (notification.DispatchResult, error) {
	return n.resend(ctx, user, jobID, notification.ResendSMS)
}

func (n *NotificationService) resend(ctx context.Context, user auth.User, jobID int64, eventType notification.EventType) (notification.DispatchResult, error) {
	if err := requireAdmin(user, string(eventType)); err != nil {
		return notification.DispatchResult{}, err
	}

	if _, err := n.store.Job().Get(ctx, jobID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return notification.DispatchResult{}, NewErrJobNotFound(jobID)
		}
		return notification.DispatchResult{}, err
	}

	return n.dispatcher.Notify(ctx, notification.NewEvent(jobID, eventType, notification.Broadcast()))
}
