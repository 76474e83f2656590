package events

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/dtapi/booking-coordinator/internal/notification"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	NotificationMessageKind string = "booking.notifications"
	eventSource             string = "booking-coordinator"
	defaultTopic            string = "booking.notifications"
)

var ErrProducerClosed = errors.New("event producer is closed")

// Writer is the interface to be implemented by the underlying writer.
type Writer interface {
	Write(ctx context.Context, topic string, e cloudevents.Event) error
	Close(ctx context.Context) error
}

// EventProducer is a wrapper around a Writer with the buffer.
// Publish never waits for the writer: events are queued and sent by a single goroutine in order.
type EventProducer struct {
	buffer    *buffer
	wakeCh    chan struct{}
	doneCh    chan struct{}
	stoppedCh chan struct{}
	closeOnce sync.Once
	closed    bool
	mu        sync.RWMutex
	writer    Writer
	topic     string
}

func NewEventProducer(w Writer, opts ...ProducerOptions) *EventProducer {
	ep := &EventProducer{
		buffer:    newBuffer(),
		wakeCh:    make(chan struct{}, 1),
		doneCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		writer:    w,
		topic:     defaultTopic,
	}

	for _, o := range opts {
		o(ep)
	}

	go ep.run()
	return ep
}

// Publish queues ev for delivery.
func (ep *EventProducer) Publish(ctx context.Context, ev notification.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	d, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ep.mu.RLock()
	defer ep.mu.RUnlock()
	if ep.closed {
		return ErrProducerClosed
	}

	if err := ep.buffer.PushBack(&message{
		Kind: NotificationMessageKind + "." + string(ev.Type),
		Data: d,
	}); err != nil {
		return err
	}

	select {
	case ep.wakeCh <- struct{}{}:
	default:
	}

	return nil
}

// Close stops accepting events, flushes the queue and closes the writer.
func (ep *EventProducer) Close() error {
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ep.closeOnce.Do(func() {
		ep.mu.Lock()
		ep.closed = true
		ep.mu.Unlock()
		close(ep.doneCh)
	})

	g, ctx := errgroup.WithContext(closeCtx)
	g.Go(func() error {
		select {
		case <-ep.stoppedCh:
		case <-ctx.Done():
			zap.S().Named("event_producer").Warnw("closing with pending events", "pending", ep.buffer.Size())
		}
		return ep.writer.Close(ctx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Named("event_producer").Errorf("event producer closed with error: %s", err)
		return err
	}

	zap.S().Named("event_producer").Info("event producer closed")

	return nil
}

func (ep *EventProducer) run() {
	defer close(ep.stoppedCh)

	for {
		msg := ep.buffer.Pop()
		if msg == nil {
			select {
			case <-ep.wakeCh:
				continue
			case <-ep.doneCh:
				if ep.buffer.Size() > 0 {
					continue
				}
				return
			}
		}

		e, err := newCloudEvent(msg)
		if err != nil {
			zap.S().Named("event_producer").Errorw("failed to build event", "error", err, "kind", msg.Kind)
			continue
		}

		if err := ep.writer.Write(context.TODO(), ep.topic, e); err != nil {
			zap.S().Named("event_producer").Errorw("failed to send message", "error", err, "event_id", e.ID(), "type", e.Type())
		}
	}
}

func newCloudEvent(msg *message) (cloudevents.Event, error) {
	var ev notification.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return cloudevents.Event{}, err
	}

	e := cloudevents.NewEvent()
	e.SetID(ev.ID)
	e.SetSource(eventSource)
	e.SetType(msg.Kind)
	e.SetSubject(strconv.FormatInt(ev.JobID, 10))
	if err := e.SetData(cloudevents.ApplicationJSON, msg.Data); err != nil {
		return cloudevents.Event{}, err
	}

	return e, e.Validate()
}

// decodeEvent reads the notification carried by a cloud event.
func decodeEvent(e cloudevents.Event) (notification.Event, error) {
	var ev notification.Event
	if err := e.DataAs(&ev); err != nil {
		return notification.Event{}, err
	}
	return ev, ev.Validate()
}
