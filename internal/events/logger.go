package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// ZapLogger adapts a zap logger to watermill.
type ZapLogger struct {
	logger *zap.SugaredLogger
}

var _ watermill.LoggerAdapter = (*ZapLogger)(nil)

func NewZapLogger(logger *zap.SugaredLogger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

func (z *ZapLogger) Error(msg string, err error, fields watermill.LogFields) {
	z.logger.Errorw(msg, append(keysAndValues(fields), "error", err)...)
}

func (z *ZapLogger) Info(msg string, fields watermill.LogFields) {
	z.logger.Infow(msg, keysAndValues(fields)...)
}

func (z *ZapLogger) Debug(msg string, fields watermill.LogFields) {
	z.logger.Debugw(msg, keysAndValues(fields)...)
}

// Trace is logged at debug level, zap has nothing finer.
func (z *ZapLogger) Trace(msg string, fields watermill.LogFields) {
	z.logger.Debugw(msg, keysAndValues(fields)...)
}

func (z *ZapLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &ZapLogger{logger: z.logger.With(keysAndValues(fields)...)}
}

func keysAndValues(fields watermill.LogFields) []any {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}
