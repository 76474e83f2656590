package notification

import (
	"context"

	"go.uber.org/zap"
)

// Sink delivers payloads through the external push and SMS providers.
type Sink interface {
	SendPush(ctx context.Context, translatorID string, payload Payload) error
	SendSMS(ctx context.Context, translatorID string, payload Payload) error
}

// LogSink writes every delivery to the log. It never fails.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (l *LogSink) SendPush(ctx context.Context, translatorID string, payload Payload) error {
	zap.S().Named("log_sink").Infow("push", "translator_id", translatorID, "job_id", payload.JobID, "type", payload.Type, "message", payload.Message)
	return nil
}

func (l *LogSink) SendSMS(ctx context.Context, translatorID string, payload Payload) error {
	zap.S().Named("log_sink").Infow("sms", "translator_id", translatorID, "job_id", payload.JobID, "type", payload.Type, "message", payload.Message)
	return nil
}
