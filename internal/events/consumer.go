package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/dtapi/booking-coordinator/internal/notification"
	"go.uber.org/zap"
)

const consumerHandlerName = "notification_dispatcher"

type Dispatcher interface {
	Notify(ctx context.Context, ev notification.Event) (notification.DispatchResult, error)
}

// Consumer reads notification events from the transport and hands them to the dispatcher.
// Messages still failing after the retries are moved to the "<topic>.poison" topic.
type Consumer struct {
	router        *wmmessage.Router
	dispatcher    Dispatcher
	maxRetries    int
	retryInterval time.Duration
}

func NewConsumer(t *Transport, topic string, dispatcher Dispatcher, logger watermill.LoggerAdapter, opts ...ConsumerOptions) (*Consumer, error) {
	c := &Consumer{
		dispatcher:    dispatcher,
		maxRetries:    3,
		retryInterval: time.Second,
	}
	for _, o := range opts {
		o(c)
	}

	router, err := wmmessage.NewRouter(wmmessage.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}

	poisonQueue, err := middleware.PoisonQueue(t.Publisher, topic+".poison")
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(
		poisonQueue,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      c.maxRetries,
			InitialInterval: c.retryInterval,
			Logger:          logger,
		}.Middleware,
		middleware.Recoverer,
	)

	router.AddNoPublisherHandler(consumerHandlerName, topic, t.Subscriber, c.handle)
	c.router = router

	return c, nil
}

// Run blocks until ctx is cancelled or the router is closed.
func (c *Consumer) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running is closed once the consumer is subscribed.
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

func (c *Consumer) Close() error {
	return c.router.Close()
}

func (c *Consumer) handle(msg *wmmessage.Message) error {
	var e cloudevents.Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		zap.S().Named("event_consumer").Errorw("dropping undecodable message", "message_id", msg.UUID, "error", err)
		return nil
	}

	ev, err := decodeEvent(e)
	if err != nil {
		zap.S().Named("event_consumer").Errorw("dropping invalid notification", "message_id", msg.UUID, "error", err)
		return nil
	}

	result, err := c.dispatcher.Notify(msg.Context(), ev)
	if err != nil {
		return err
	}

	zap.S().Named("event_consumer").Debugw("notification handled", "event_id", ev.ID, "job_id", ev.JobID, "type", ev.Type,
		"targets", result.Targets, "failed", len(result.Failed), "correlation_id", middleware.MessageCorrelationID(msg))
	return nil
}
