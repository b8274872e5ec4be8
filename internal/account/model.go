package account

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankist/internal/ledger"
)

// Account is a customer account owned by the Registry. Its movement history
// is append-only and guarded by the account's own mutex.
type Account struct {
	handle       string
	owner        string
	pin          int
	interestRate decimal.Decimal
	currency     string
	locale       string

	mu        sync.Mutex
	movements []ledger.Movement
	closed    bool
}

// Snapshot is an immutable copy of an account taken under its lock.
type Snapshot struct {
	Handle       string
	Owner        string
	InterestRate decimal.Decimal
	Currency     string
	Locale       string
	Movements    []ledger.Movement
}

func (a *Account) Handle() string { return a.handle }

func (a *Account) Owner() string { return a.owner }

func (a *Account) Currency() string { return a.currency }

func (a *Account) Locale() string { return a.locale }

func (a *Account) InterestRate() decimal.Decimal { return a.interestRate }

// PINMatches compares the supplied PIN with the account's PIN.
func (a *Account) PINMatches(pin int) bool { return a.pin == pin }

// Movements returns a copy of the movement history in chronological order.
func (a *Account) Movements() []ledger.Movement {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ledger.Movement, len(a.movements))
	copy(out, a.movements)
	return out
}

// Snapshot copies the account's display parameters and history.
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		Handle:       a.handle,
		Owner:        a.owner,
		InterestRate: a.interestRate,
		Currency:     a.currency,
		Locale:       a.locale,
		Movements:    a.Movements(),
	}
}

// Closed reports whether the account has been removed from its registry.
func (a *Account) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
