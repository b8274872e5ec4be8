package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankist/internal/account"
	"github.com/congo-pay/bankist/internal/auth"
	"github.com/congo-pay/bankist/internal/ledger"
	"github.com/congo-pay/bankist/internal/logging"
	"github.com/congo-pay/bankist/internal/notification"
	"github.com/congo-pay/bankist/internal/teller"
	"github.com/congo-pay/bankist/internal/view"
)

// ErrNoSession is returned by operations that need an authenticated account.
var ErrNoSession = errors.New("no active session")

// LogoutReason says why a session ended.
type LogoutReason string

const (
	ReasonLogout  LogoutReason = "logout"
	ReasonExpired LogoutReason = "expired"
	ReasonClosed  LogoutReason = "closed"
)

// View is the state published to observers after every change.
type View = view.State

// Observer receives the session's outbound notifications. Countdown may be
// called while the session is locked, so observers must not call back into
// the Session from it.
type Observer interface {
	Render(View)
	Countdown(display string)
	LoggedOut(reason LogoutReason)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) Render(View) {}

func (NopObserver) Countdown(string) {}

func (NopObserver) LoggedOut(LogoutReason) {}

// Options configures a Session.
type Options struct {
	// Length is the countdown in seconds, 300 when zero.
	Length int
	// Tick is the countdown interval. Zero makes the timer manual.
	Tick     time.Duration
	Observer Observer
	// Notifier receives session_expired messages.
	Notifier notification.Notifier
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Session is the single authenticated session over the shared registry. It
// holds the active account's handle only and re-resolves it on every use.
type Session struct {
	accounts *account.Registry
	authn    *auth.Authenticator
	teller   *teller.Service
	observer Observer
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
	timer    *Timer

	mu         sync.Mutex
	handle     string
	id         string
	loggedInAt time.Time
	sorted     bool
	timerGen   uint64
}

// New builds an idle session.
func New(accounts *account.Registry, authn *auth.Authenticator, tellerSvc *teller.Service, opts Options) *Session {
	s := &Session{
		accounts: accounts,
		authn:    authn,
		teller:   tellerSvc,
		observer: opts.Observer,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Clock,
	}
	if s.observer == nil {
		s.observer = NopObserver{}
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	s.timer = NewTimer(opts.Length, opts.Tick, s.observer.Countdown, s.expire)
	return s
}

// Timer exposes the countdown, mainly to drive a manual timer.
func (s *Session) Timer() *Timer { return s.timer }

// Active returns the handle of the authenticated account, or "".
func (s *Session) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Login authenticates and (re)starts the countdown. A successful login
// replaces any session already active.
func (s *Session) Login(handle string, pin int) (View, error) {
	acct, err := s.authn.Login(handle, pin)
	if err != nil {
		s.logger.Info("login rejected", slog.String("handle", handle))
		return View{}, err
	}

	s.mu.Lock()
	s.handle = acct.Handle()
	s.id = uuid.NewString()
	s.loggedInAt = s.now()
	s.sorted = false
	s.timerGen = s.timer.Start()
	v, err := s.viewLocked()
	s.mu.Unlock()
	if err != nil {
		return View{}, err
	}

	s.logger.Info("session started", slog.String("handle", v.Handle), slog.String("session_id", v.SessionID))
	s.observer.Render(v)
	return v, nil
}

// Logout ends the session without an expiry signal.
func (s *Session) Logout() error {
	s.mu.Lock()
	if s.handle == "" {
		s.mu.Unlock()
		return ErrNoSession
	}
	handle := s.handle
	s.clearLocked()
	s.mu.Unlock()

	s.logger.Info("session ended", slog.String("handle", handle))
	s.observer.LoggedOut(ReasonLogout)
	return nil
}

// View returns the current state of the active account.
func (s *Session) View() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// ToggleSort flips between chronological and ascending-amount order.
func (s *Session) ToggleSort() (View, error) {
	s.mu.Lock()
	if s.handle == "" {
		s.mu.Unlock()
		return View{}, ErrNoSession
	}
	s.sorted = !s.sorted
	v, err := s.viewLocked()
	s.mu.Unlock()
	if err != nil {
		return View{}, err
	}
	s.observer.Render(v)
	return v, nil
}

// Transfer moves amount from the active account to the receiver and resets
// the countdown on success.
func (s *Session) Transfer(ctx context.Context, to string, amount decimal.Decimal) (View, error) {
	handle, err := s.active()
	if err != nil {
		return View{}, err
	}
	if _, err := s.teller.Transfer(ctx, teller.TransferInput{From: handle, To: to, Amount: amount}); err != nil {
		return View{}, err
	}
	return s.refresh(handle, true)
}

// RequestLoan submits a loan for the active account. The grant arrives later
// through Send.
func (s *Session) RequestLoan(ctx context.Context, amount decimal.Decimal) (teller.Loan, error) {
	handle, err := s.active()
	if err != nil {
		return teller.Loan{}, err
	}
	return s.teller.RequestLoan(ctx, handle, amount)
}

// PendingLoans lists the active account's loans still awaiting their grant.
func (s *Session) PendingLoans() ([]teller.Loan, error) {
	handle, err := s.active()
	if err != nil {
		return nil, err
	}
	return s.teller.PendingLoans(handle), nil
}

// Loan returns a loan belonging to the active account.
func (s *Session) Loan(id string) (teller.Loan, error) {
	handle, err := s.active()
	if err != nil {
		return teller.Loan{}, err
	}
	loan, err := s.teller.Loan(id)
	if err != nil {
		return teller.Loan{}, err
	}
	if loan.Handle != handle {
		return teller.Loan{}, teller.ErrLoanNotFound
	}
	return loan, nil
}

// CloseAccount removes the active account after confirmation and ends the
// session. The countdown is stopped without an expiry signal.
func (s *Session) CloseAccount(ctx context.Context, handleConfirm string, pinConfirm int) error {
	handle, err := s.active()
	if err != nil {
		return err
	}
	if err := s.teller.CloseAccount(ctx, handle, handleConfirm, pinConfirm); err != nil {
		return err
	}

	s.mu.Lock()
	ended := s.handle == handle
	if ended {
		s.clearLocked()
	}
	s.mu.Unlock()

	if ended {
		s.observer.LoggedOut(ReasonClosed)
	}
	return nil
}

// DirectoryEntry lists an account that can receive transfers.
type DirectoryEntry struct {
	Handle string `json:"handle"`
	Owner  string `json:"owner"`
}

// Directory lists every open account in registry order.
func (s *Session) Directory() []DirectoryEntry {
	handles := s.accounts.Handles()
	out := make([]DirectoryEntry, 0, len(handles))
	for _, h := range handles {
		acct, err := s.accounts.Find(h)
		if err != nil {
			continue
		}
		out = append(out, DirectoryEntry{Handle: h, Owner: acct.Owner()})
	}
	return out
}

// Send reacts to teller notifications. A granted loan for the active account
// resets the countdown; an incoming transfer re-renders it.
func (s *Session) Send(_ context.Context, msg notification.Message) error {
	switch msg.Kind {
	case notification.KindLoanGranted:
		_, err := s.refresh(msg.Destination, true)
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	case notification.KindTransferReceived:
		_, err := s.refresh(msg.Destination, false)
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	}
	return nil
}

// refresh re-renders the session if handle is still the active account.
func (s *Session) refresh(handle string, resetTimer bool) (View, error) {
	s.mu.Lock()
	if s.handle == "" || s.handle != handle {
		s.mu.Unlock()
		return View{}, ErrNoSession
	}
	if resetTimer {
		s.timerGen = s.timer.Reset()
	}
	v, err := s.viewLocked()
	s.mu.Unlock()
	if err != nil {
		return View{}, err
	}
	s.observer.Render(v)
	return v, nil
}

// expire is the countdown's callback. Only the generation started by the
// current login may end the session.
func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.handle == "" {
		s.mu.Unlock()
		return
	}
	handle := s.handle
	s.clearLocked()
	s.mu.Unlock()

	s.logger.Info("session expired", slog.String("handle", handle))
	s.observer.LoggedOut(ReasonExpired)
	if s.notifier != nil {
		msg := notification.Message{Kind: notification.KindSessionExpired, Destination: handle, Body: "Session expired after inactivity"}
		if err := s.notifier.Send(context.Background(), msg); err != nil {
			s.logger.Warn("notification failed", slog.String("kind", msg.Kind), slog.Any("error", err))
		}
	}
}

func (s *Session) active() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == "" {
		return "", ErrNoSession
	}
	return s.handle, nil
}

// clearLocked drops the active account and idles the countdown. Callers
// hold s.mu.
func (s *Session) clearLocked() {
	s.handle = ""
	s.id = ""
	s.sorted = false
	s.timer.Stop()
}

// viewLocked builds the view of the active account. Callers hold s.mu.
func (s *Session) viewLocked() (View, error) {
	if s.handle == "" {
		return View{}, ErrNoSession
	}
	acct, err := s.accounts.Find(s.handle)
	if err != nil {
		return View{}, ErrNoSession
	}
	snap := acct.Snapshot()
	movements := snap.Movements
	if s.sorted {
		movements = ledger.SortedView(movements, true)
	}
	return View{
		SessionID:    s.id,
		Handle:       snap.Handle,
		Owner:        snap.Owner,
		Currency:     snap.Currency,
		Locale:       snap.Locale,
		InterestRate: snap.InterestRate,
		Movements:    movements,
		Sorted:       s.sorted,
		Balance:      ledger.Balance(snap.Movements),
		Summary:      ledger.Summarize(snap.Movements, snap.InterestRate),
		Countdown:    s.timer.Display(),
		LoggedInAt:   s.loggedInAt,
	}, nil
}
