package account

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankist/internal/ledger"
)

var (
	// ErrNotFound is returned when no account carries the requested handle.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicateHandle indicates two seed accounts derive the same handle.
	ErrDuplicateHandle = errors.New("duplicate account handle")

	// ErrEmptyHandle indicates an owner name from which no handle can be derived.
	ErrEmptyHandle = errors.New("owner name yields empty handle")

	// ErrNegativeInterest indicates a seed account with a negative interest rate.
	ErrNegativeInterest = errors.New("interest rate must not be negative")

	// ErrClosed is returned when posting to an account that has been removed.
	ErrClosed = errors.New("account closed")
)

// Registry owns every account for the lifetime of the process.
type Registry struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	order    []string
}

// NewRegistry builds the account directory from seed data, deriving each
// handle from the owner's name. Duplicate or empty handles and negative
// interest rates are configuration errors.
func NewRegistry(seeds []Seed) (*Registry, error) {
	r := &Registry{accounts: make(map[string]*Account, len(seeds))}
	for _, s := range seeds {
		handle := DeriveHandle(s.Owner)
		if handle == "" {
			return nil, fmt.Errorf("%w: %q", ErrEmptyHandle, s.Owner)
		}
		if existing, ok := r.accounts[handle]; ok {
			return nil, fmt.Errorf("%w: %q for %q and %q", ErrDuplicateHandle, handle, existing.owner, s.Owner)
		}
		if s.InterestRate.IsNegative() {
			return nil, fmt.Errorf("%w: %s for %q", ErrNegativeInterest, s.InterestRate, s.Owner)
		}
		movs := make([]ledger.Movement, len(s.Movements))
		for i, m := range s.Movements {
			movs[i] = ledger.Movement{Amount: m.Amount, Date: m.Date.UTC()}
		}
		r.accounts[handle] = &Account{
			handle:       handle,
			owner:        s.Owner,
			pin:          s.PIN,
			interestRate: s.InterestRate,
			currency:     s.Currency,
			locale:       s.Locale,
			movements:    movs,
		}
		r.order = append(r.order, handle)
	}
	return r, nil
}

// DeriveHandle returns the lowercase initials of each whitespace separated
// token of owner, e.g. "Jonas Schmedtmann" becomes "js".
func DeriveHandle(owner string) string {
	var b strings.Builder
	for _, token := range strings.Fields(owner) {
		r, _ := utf8.DecodeRuneInString(token)
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Find returns the account with exactly the given handle.
func (r *Registry) Find(handle string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.accounts[handle]
	if !ok {
		return nil, ErrNotFound
	}
	return acct, nil
}

// Remove deletes the account and marks it closed so holders of the pointer
// can no longer post to it.
func (r *Registry) Remove(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[handle]
	if !ok {
		return ErrNotFound
	}
	delete(r.accounts, handle)
	for i, h := range r.order {
		if h == handle {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	acct.mu.Lock()
	acct.closed = true
	acct.mu.Unlock()
	return nil
}

// Handles lists the handles of all open accounts in seed order.
func (r *Registry) Handles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of open accounts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

// Book is the mutable view of one account handed to a Transact callback
// while the account's lock is held.
type Book struct {
	acct *Account
}

func (b *Book) Handle() string { return b.acct.handle }

// Movements returns a copy of the current history.
func (b *Book) Movements() []ledger.Movement {
	out := make([]ledger.Movement, len(b.acct.movements))
	copy(out, b.acct.movements)
	return out
}

// Balance sums the current history.
func (b *Book) Balance() decimal.Decimal {
	return ledger.Balance(b.acct.movements)
}

// Post appends a movement to the account.
func (b *Book) Post(m ledger.Movement) {
	b.acct.movements = append(b.acct.movements, m)
}

// Transact locks the given accounts in handle order and runs fn with one
// Book per account, in argument order. If any account is closed fn is not
// called and ErrClosed is returned.
func Transact(fn func(books []*Book) error, accts ...*Account) error {
	locked := make([]*Account, len(accts))
	copy(locked, accts)
	sort.Slice(locked, func(i, j int) bool { return locked[i].handle < locked[j].handle })

	for i, a := range locked {
		if i > 0 && locked[i-1] == a {
			continue
		}
		a.mu.Lock()
		defer a.mu.Unlock()
	}

	books := make([]*Book, len(accts))
	for i, a := range accts {
		if a.closed {
			return fmt.Errorf("%w: %s", ErrClosed, a.handle)
		}
		books[i] = &Book{acct: a}
	}
	return fn(books)
}
