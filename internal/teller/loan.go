package teller

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankist/internal/account"
	"github.com/congo-pay/bankist/internal/journal"
	"github.com/congo-pay/bankist/internal/ledger"
	"github.com/congo-pay/bankist/internal/notification"
)

// LoanStatus is the lifecycle state of a loan request.
type LoanStatus string

const (
	// LoanPending indicates the grant is scheduled but has not run yet.
	LoanPending LoanStatus = "pending"
	// LoanGranted indicates the loan amount has been posted.
	LoanGranted LoanStatus = "granted"
	// LoanAbandoned indicates the borrower's account was closed before the grant.
	LoanAbandoned LoanStatus = "abandoned"
	// LoanCancelled indicates the grant was cancelled during shutdown.
	LoanCancelled LoanStatus = "cancelled"
)

var underwritingRatio = decimal.RequireFromString("0.1")

// Loan describes a loan request and its outcome.
type Loan struct {
	ID          string
	Handle      string
	Amount      decimal.Decimal
	Status      LoanStatus
	RequestedAt time.Time
	SettledAt   time.Time
}

type loanTask struct {
	loan   Loan
	cancel func() bool
}

// RequestLoan underwrites a loan for the account and schedules the grant.
// The amount is floored to a whole number first. The loan is approved when
// any existing movement is at least 10% of that amount. The returned loan is
// pending; the grant posts it later with the grant-time timestamp.
func (s *Service) RequestLoan(ctx context.Context, handle string, amount decimal.Decimal) (Loan, error) {
	amount = amount.Floor()
	if !amount.IsPositive() {
		return Loan{}, ErrInvalidAmount
	}

	acct, err := s.accounts.Find(handle)
	if err != nil {
		return Loan{}, fmt.Errorf("%w: %s", ErrUnknownAccount, handle)
	}
	if !ledger.HasMovementAtLeast(acct.Movements(), amount.Mul(underwritingRatio)) {
		return Loan{}, ErrUnderwriting
	}

	loan := Loan{
		ID:          uuid.NewString(),
		Handle:      acct.Handle(),
		Amount:      amount,
		Status:      LoanPending,
		RequestedAt: s.now(),
	}

	task := &loanTask{loan: loan}
	s.mu.Lock()
	s.loans[loan.ID] = task
	s.mu.Unlock()

	cancel := s.schedule(s.loanDelay, func() { s.grant(loan.ID) })
	s.mu.Lock()
	task.cancel = cancel
	s.mu.Unlock()

	s.logger.Info("loan requested",
		slog.String("loan_id", loan.ID),
		slog.String("handle", loan.Handle),
		slog.String("amount", amount.String()),
		slog.Duration("delay", s.loanDelay),
	)
	return loan, nil
}

// grant posts a pending loan. A loan whose account has been closed in the
// meantime is abandoned instead. Logout or session expiry does not stop it.
func (s *Service) grant(id string) {
	s.mu.Lock()
	task, ok := s.loans[id]
	if !ok || task.loan.Status != LoanPending {
		s.mu.Unlock()
		return
	}
	loan := task.loan
	s.mu.Unlock()

	ctx := context.Background()
	at := s.now()

	acct, err := s.accounts.Find(loan.Handle)
	if err == nil {
		err = account.Transact(func(books []*account.Book) error {
			books[0].Post(ledger.Movement{Amount: loan.Amount, Date: at})
			return nil
		}, acct)
	}

	status := LoanGranted
	if err != nil {
		status = LoanAbandoned
	}

	s.mu.Lock()
	task.loan.Status = status
	task.loan.SettledAt = at
	loan = task.loan
	s.mu.Unlock()

	if status == LoanAbandoned {
		s.logger.Warn("loan abandoned", slog.String("loan_id", loan.ID), slog.String("handle", loan.Handle), slog.Any("error", err))
		s.notify(ctx, notification.Message{
			Kind:        notification.KindLoanAbandoned,
			Destination: loan.Handle,
			Ref:         loan.ID,
			Body:        fmt.Sprintf("Loan of %s could not be posted", loan.Amount),
		})
		return
	}

	s.logger.Info("loan granted", slog.String("loan_id", loan.ID), slog.String("handle", loan.Handle), slog.String("amount", loan.Amount.String()))
	s.record(ctx, journal.Entry{
		ID:            uuid.NewString(),
		TransactionID: loan.ID,
		Handle:        loan.Handle,
		Kind:          journal.KindLoan,
		Amount:        loan.Amount,
		RecordedAt:    at,
	})
	s.notify(ctx, notification.Message{
		Kind:        notification.KindLoanGranted,
		Destination: loan.Handle,
		Ref:         loan.ID,
		Body:        fmt.Sprintf("Loan of %s granted", loan.Amount),
	})
}

// Loan returns the current state of a loan request.
func (s *Service) Loan(id string) (Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.loans[id]
	if !ok {
		return Loan{}, ErrLoanNotFound
	}
	return task.loan, nil
}

// PendingLoans returns the loans of an account still awaiting their grant,
// oldest request first.
func (s *Service) PendingLoans(handle string) []Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Loan, 0)
	for _, task := range s.loans {
		if task.loan.Handle == handle && task.loan.Status == LoanPending {
			out = append(out, task.loan)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})
	return out
}

// Shutdown cancels every grant that has not started yet.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.loans {
		if task.loan.Status != LoanPending || task.cancel == nil {
			continue
		}
		if task.cancel() {
			task.loan.Status = LoanCancelled
			task.loan.SettledAt = s.now()
		}
	}
}
