package teller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/congo-pay/bankist/internal/journal"
	"github.com/congo-pay/bankist/internal/ledger"
	"github.com/congo-pay/bankist/internal/notification"
)

// CloseAccount removes the acting account from the registry when the
// confirmation handle and PIN both match it.
func (s *Service) CloseAccount(ctx context.Context, handle, confirmHandle string, confirmPIN int) error {
	acct, err := s.accounts.Find(handle)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, handle)
	}
	if confirmHandle != acct.Handle() || !acct.PINMatches(confirmPIN) {
		return ErrConfirmationMismatch
	}
	if err := s.accounts.Remove(handle); err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownAccount, err)
	}

	at := s.now()
	final := ledger.Balance(acct.Movements())
	s.logger.Info("account closed", slog.String("handle", handle), slog.String("final_balance", final.String()))
	s.record(ctx, journal.Entry{
		ID:            uuid.NewString(),
		TransactionID: uuid.NewString(),
		Handle:        handle,
		Kind:          journal.KindClosure,
		Amount:        final,
		RecordedAt:    at,
	})
	s.notify(ctx, notification.Message{
		Kind:        notification.KindAccountClosed,
		Destination: handle,
		Body:        fmt.Sprintf("Account %s closed", handle),
	})
	return nil
}
