package notify

import (
	"context"

	"go.uber.org/zap"

	"poagov/internal/model"
)

// LogSink writes the rendered email body to the logger (--log-emails).
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a LogSink writing to logger, or discarding when logger is nil.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Dispatch logs the notification body at info level. It never fails.
func (s *LogSink) Dispatch(ctx context.Context, n model.Notification) error {
	s.logger.Info("email body",
		zap.String("notification", n.Key()),
		zap.String("subject", emailSubject),
		zap.String("body", FormatBody(n)),
	)
	return nil
}
