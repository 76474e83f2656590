package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dtapi/booking-coordinator/internal/config"
)

const (
	TransportMemory = "memory"
	TransportAMQP   = "amqp"
	// TransportLog only logs the events, nothing is dispatched.
	TransportLog = "log"
)

// Transport is the pub/sub pair carrying notification events between the producer and the consumer.
type Transport struct {
	Publisher  wmmessage.Publisher
	Subscriber wmmessage.Subscriber
}

func NewTransport(cfg *config.Config, logger watermill.LoggerAdapter) (*Transport, error) {
	switch cfg.Notification.Transport {
	case TransportMemory, "":
		pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
		return &Transport{Publisher: pubsub, Subscriber: pubsub}, nil
	case TransportAMQP:
		publisher, err := amqp.NewPublisher(amqp.NewDurableQueueConfig(cfg.Notification.AmqpURL), logger)
		if err != nil {
			return nil, fmt.Errorf("creating amqp publisher: %w", err)
		}

		subscriberConfig := amqp.NewDurableQueueConfig(cfg.Notification.AmqpURL)
		subscriberConfig.Consume.NoRequeueOnNack = true
		subscriber, err := amqp.NewSubscriber(subscriberConfig, logger)
		if err != nil {
			_ = publisher.Close()
			return nil, fmt.Errorf("creating amqp subscriber: %w", err)
		}
		return &Transport{Publisher: publisher, Subscriber: subscriber}, nil
	default:
		return nil, fmt.Errorf("unknown notification transport %q", cfg.Notification.Transport)
	}
}

func (t *Transport) Close() error {
	pubErr := t.Publisher.Close()
	if any(t.Subscriber) == any(t.Publisher) {
		return pubErr
	}
	if err := t.Subscriber.Close(); err != nil {
		return err
	}
	return pubErr
}
