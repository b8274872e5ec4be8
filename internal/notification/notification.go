package notification

import (
	"context"
	"errors"
	"log/slog"
)

const (
	// KindTransferReceived is sent to the receiver of a transfer.
	KindTransferReceived = "transfer_received"
	// KindLoanGranted is sent when a deferred loan has been posted.
	KindLoanGranted = "loan_granted"
	// KindLoanAbandoned is sent when a loan could not be posted because the
	// borrower's account no longer exists.
	KindLoanAbandoned = "loan_abandoned"
	// KindAccountClosed is sent after an account is removed.
	KindAccountClosed = "account_closed"
	// KindSessionExpired is sent when the inactivity countdown runs out.
	KindSessionExpired = "session_expired"
)

// Message describes a notification payload. Destination is an account handle.
type Message struct {
	Kind        string
	Destination string
	Body        string
	// Ref identifies the originating object, e.g. a loan ID.
	Ref string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("destination", message.Destination),
		slog.String("ref", message.Ref),
		slog.String("body", message.Body),
	)
	return nil
}

// Fanout delivers every message to each notifier in order.
type Fanout []Notifier

// Send delivers to all notifiers, joining any errors.
func (f Fanout) Send(ctx context.Context, message Message) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, message Message) error

func (f NotifierFunc) Send(ctx context.Context, message Message) error {
	return f(ctx, message)
}
