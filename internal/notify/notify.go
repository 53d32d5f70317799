// Package notify abstracts outbound user notifications so the scheduler
// does not care whether they travel over a message broker or just the log.
package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers one text message to one recipient, identified by the
// external chat id. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// LogNotifier writes notifications to the log. It is the fallback when no
// broker is configured and the delivery sink in tests.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	slog.InfoContext(ctx, "Notification", "chat_id", chatID, "text", text)
	return nil
}
