package teller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/congo-pay/bankist/internal/account"
	"github.com/congo-pay/bankist/internal/journal"
	"github.com/congo-pay/bankist/internal/logging"
	"github.com/congo-pay/bankist/internal/notification"
)

var (
	// ErrInvalidAmount is returned for amounts that are not strictly positive.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds occurs when the sender's balance does not cover a transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnknownReceiver indicates the transfer destination does not exist.
	ErrUnknownReceiver = errors.New("unknown receiver")
	// ErrSelfTransfer indicates sender and receiver are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to own account")
	// ErrUnderwriting indicates no prior movement reaches 10% of a requested loan.
	ErrUnderwriting = errors.New("no movement of at least 10% of the loan amount")
	// ErrConfirmationMismatch indicates the closure confirmation did not match.
	ErrConfirmationMismatch = errors.New("confirmation does not match account")
	// ErrUnknownAccount indicates the acting account no longer exists.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrLoanNotFound is returned when looking up an unknown loan ID.
	ErrLoanNotFound = errors.New("loan not found")
)

var rejections = []error{
	ErrInvalidAmount,
	ErrInsufficientFunds,
	ErrUnknownReceiver,
	ErrSelfTransfer,
	ErrUnderwriting,
	ErrConfirmationMismatch,
	ErrUnknownAccount,
}

// IsRejection reports whether err is a failed precondition. Rejected
// operations leave every account unchanged.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}

// Scheduler runs fn once after delay and returns a function that cancels the
// run if it has not started yet.
type Scheduler func(delay time.Duration, fn func()) (cancel func() bool)

// AfterFunc is the wall-clock Scheduler.
func AfterFunc(delay time.Duration, fn func()) func() bool {
	return time.AfterFunc(delay, fn).Stop
}

// DefaultLoanDelay is how long a loan request waits before it is granted.
const DefaultLoanDelay = 2500 * time.Millisecond

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Journal   journal.Journal
	Notifier  notification.Notifier
	Logger    *slog.Logger
	Clock     func() time.Time
	Schedule  Scheduler
	LoanDelay time.Duration
}

// Service validates and applies transfers, loans and closures against the
// account registry.
type Service struct {
	accounts  *account.Registry
	journal   journal.Journal
	notifier  notification.Notifier
	logger    *slog.Logger
	now       func() time.Time
	schedule  Scheduler
	loanDelay time.Duration

	mu    sync.Mutex
	loans map[string]*loanTask
}

// NewService constructs a teller over the registry.
func NewService(accounts *account.Registry, opts Options) *Service {
	s := &Service{
		accounts:  accounts,
		journal:   opts.Journal,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		now:       opts.Clock,
		schedule:  opts.Schedule,
		loanDelay: opts.LoanDelay,
		loans:     make(map[string]*loanTask),
	}
	if s.journal == nil {
		s.journal = journal.NewInMemory()
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.schedule == nil {
		s.schedule = AfterFunc
	}
	if s.loanDelay <= 0 {
		s.loanDelay = DefaultLoanDelay
	}
	return s
}

func (s *Service) record(ctx context.Context, entries ...journal.Entry) {
	if err := s.journal.Record(ctx, entries...); err != nil {
		s.logger.Warn("journal record failed", slog.Int("entries", len(entries)), slog.Any("error", err))
	}
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification failed", slog.String("kind", msg.Kind), slog.Any("error", err))
	}
}
