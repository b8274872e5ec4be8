package teller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankist/internal/account"
	"github.com/congo-pay/bankist/internal/journal"
	"github.com/congo-pay/bankist/internal/ledger"
	"github.com/congo-pay/bankist/internal/notification"
)

// TransferInput captures the data needed to move funds between accounts.
type TransferInput struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// TransferResult describes the ledger outcome of a transfer.
type TransferResult struct {
	TransactionID string
	FromBalance   decimal.Decimal
	ToBalance     decimal.Decimal
	CompletedAt   time.Time
}

// Transfer debits the sender and credits the receiver with one shared
// timestamp. Any failed precondition leaves both accounts untouched.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	if !input.Amount.IsPositive() {
		return TransferResult{}, ErrInvalidAmount
	}

	from, err := s.accounts.Find(input.From)
	if err != nil {
		return TransferResult{}, fmt.Errorf("%w: %s", ErrUnknownAccount, input.From)
	}
	to, err := s.accounts.Find(input.To)
	if err != nil {
		return TransferResult{}, fmt.Errorf("%w: %s", ErrUnknownReceiver, input.To)
	}
	if to.Handle() == from.Handle() {
		return TransferResult{}, ErrSelfTransfer
	}

	at := s.now()
	res := TransferResult{TransactionID: uuid.NewString(), CompletedAt: at}
	err = account.Transact(func(books []*account.Book) error {
		sender, receiver := books[0], books[1]
		if sender.Balance().LessThan(input.Amount) {
			return ErrInsufficientFunds
		}
		sender.Post(ledger.Movement{Amount: input.Amount.Neg(), Date: at})
		receiver.Post(ledger.Movement{Amount: input.Amount, Date: at})
		res.FromBalance = sender.Balance()
		res.ToBalance = receiver.Balance()
		return nil
	}, from, to)
	if err != nil {
		if errors.Is(err, account.ErrClosed) {
			if from.Closed() {
				return TransferResult{}, fmt.Errorf("%w: %s", ErrUnknownAccount, input.From)
			}
			return TransferResult{}, fmt.Errorf("%w: %s", ErrUnknownReceiver, input.To)
		}
		return TransferResult{}, err
	}

	s.logger.Info("transfer completed",
		slog.String("transaction_id", res.TransactionID),
		slog.String("from", from.Handle()),
		slog.String("to", to.Handle()),
		slog.String("amount", input.Amount.String()),
	)

	s.record(ctx,
		journal.Entry{ID: uuid.NewString(), TransactionID: res.TransactionID, Handle: from.Handle(), Kind: journal.KindTransferOut, Amount: input.Amount.Neg(), RecordedAt: at},
		journal.Entry{ID: uuid.NewString(), TransactionID: res.TransactionID, Handle: to.Handle(), Kind: journal.KindTransferIn, Amount: input.Amount, RecordedAt: at},
	)
	s.notify(ctx, notification.Message{
		Kind:        notification.KindTransferReceived,
		Destination: to.Handle(),
		Ref:         res.TransactionID,
		Body:        fmt.Sprintf("You received %s from %s", input.Amount, from.Handle()),
	})

	return res, nil
}
