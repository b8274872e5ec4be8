package auth

import (
	"errors"

	"github.com/congo-pay/bankist/internal/account"
)

// ErrInvalidCredentials is returned for an unknown handle and for a wrong PIN
// alike, so callers cannot tell which part failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Directory resolves accounts by handle.
type Directory interface {
	Find(handle string) (*account.Account, error)
}

// Authenticator validates handle and PIN pairs against the account directory.
type Authenticator struct {
	accounts Directory
}

// NewAuthenticator builds an authenticator over the given directory.
func NewAuthenticator(accounts Directory) *Authenticator {
	return &Authenticator{accounts: accounts}
}

// Login returns the account only when the handle exists and the PIN matches.
func (a *Authenticator) Login(handle string, pin int) (*account.Account, error) {
	acct, err := a.accounts.Find(handle)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acct.PINMatches(pin) {
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}
