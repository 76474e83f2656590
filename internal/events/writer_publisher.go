package events

import (
	"context"
	"encoding/json"

	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// PublisherWriter writes JSON encoded cloud events to a watermill publisher.
type PublisherWriter struct {
	publisher wmmessage.Publisher
}

func NewPublisherWriter(publisher wmmessage.Publisher) *PublisherWriter {
	return &PublisherWriter{publisher: publisher}
}

func (p *PublisherWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	msg := wmmessage.NewMessage(e.ID(), payload)
	msg.SetContext(ctx)
	middleware.SetCorrelationID(e.ID(), msg)

	return p.publisher.Publish(topic, msg)
}

func (p *PublisherWriter) Close(_ context.Context) error {
	return p.publisher.Close()
}
