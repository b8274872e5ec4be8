package teller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankist/internal/account"
	"github.com/congo-pay/bankist/internal/journal"
	"github.com/congo-pay/bankist/internal/notification"
)

type testNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *testNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, m := range n.sent {
		out[i] = m.Kind
	}
	return out
}

type scheduledRun struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// manualScheduler captures scheduled grants so tests decide when they run.
type manualScheduler struct {
	mu   sync.Mutex
	runs []*scheduledRun
}

func (m *manualScheduler) schedule(delay time.Duration, fn func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	run := &scheduledRun{delay: delay, fn: fn}
	m.runs = append(m.runs, run)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if run.fired || run.cancelled {
			return false
		}
		run.cancelled = true
		return true
	}
}

func (m *manualScheduler) fireAll() {
	m.mu.Lock()
	var due []*scheduledRun
	for _, r := range m.runs {
		if !r.fired && !r.cancelled {
			r.fired = true
			due = append(due, r)
		}
	}
	m.mu.Unlock()
	for _, r := range due {
		r.fn()
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc      *Service
	accounts *account.Registry
	journal  *journal.InMemory
	sched    *manualScheduler
	clock    *fakeClock
	notes    *testNotifier
}

func seed(owner string, pin int, amounts ...string) account.Seed {
	s := account.Seed{Owner: owner, PIN: pin, InterestRate: decimal.NewFromInt(1), Currency: "EUR", Locale: "de-DE"}
	base := time.Date(2023, 7, 17, 10, 0, 0, 0, time.UTC)
	for i, a := range amounts {
		s.Movements = append(s.Movements, account.SeedMovement{
			Amount: decimal.RequireFromString(a),
			Date:   base.Add(time.Duration(i) * time.Hour),
		})
	}
	return s
}

func newFixture(t *testing.T, seeds ...account.Seed) *fixture {
	t.Helper()
	reg, err := account.NewRegistry(seeds)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	f := &fixture{
		accounts: reg,
		journal:  journal.NewInMemory(),
		sched:    &manualScheduler{},
		clock:    &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		notes:    &testNotifier{},
	}
	f.svc = NewService(reg, Options{
		Journal:   f.journal,
		Notifier:  f.notes,
		Clock:     f.clock.Now,
		Schedule:  f.sched.schedule,
		LoanDelay: 2500 * time.Millisecond,
	})
	return f
}

func (f *fixture) account(t *testing.T, handle string) *account.Account {
	t.Helper()
	acct, err := f.accounts.Find(handle)
	if err != nil {
		t.Fatalf("find %s: %v", handle, err)
	}
	return acct
}
