package events

import "time"

type ProducerOptions func(e *EventProducer)

func WithOutputTopic(topic string) ProducerOptions {
	return func(e *EventProducer) {
		e.topic = topic
	}
}

type ConsumerOptions func(c *Consumer)

// WithRetry sets how many times a failed delivery is retried before the message goes to the poison topic.
func WithRetry(maxRetries int, initialInterval time.Duration) ConsumerOptions {
	return func(c *Consumer) {
		c.maxRetries = maxRetries
		c.retryInterval = initialInterval
	}
}
