package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier records notifications in the application log. Used when no broker is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(zap.String("notifier", "log"))}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.log.Info("Notification",
		zap.String("id", n.ID.String()),
		zap.String("type", n.Type),
		zap.String("audience", n.Audience),
		zap.String("recipient_id", n.RecipientID.String()),
		zap.String("booking_id", n.BookingID.String()),
		zap.String("status", n.Status),
		zap.Any("payload", n.Payload),
	)
	return nil
}

func (l *LogNotifier) Close() error { return nil }
