package account

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankist/internal/ledger"
)

func TestDeriveHandle(t *testing.T) {
	cases := map[string]string{
		"Jonas Schmedtmann":      "js",
		"Jessica Davis":          "jd",
		"Steven Thomas Williams": "stw",
		"  Sarah   Smith ":       "ss",
		"Émile Zola":             "éz",
		"":                       "",
	}
	for owner, want := range cases {
		if got := DeriveHandle(owner); got != want {
			t.Fatalf("DeriveHandle(%q): expected %q, got %q", owner, want, got)
		}
	}
}

func TestNewRegistryDefaultSeed(t *testing.T) {
	r, err := NewRegistry(DefaultSeed())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if got := r.Handles(); len(got) != 3 || got[0] != "js" || got[1] != "jd" || got[2] != "jw" {
		t.Fatalf("unexpected handles: %v", got)
	}

	acct, err := r.Find("js")
	if err != nil {
		t.Fatalf("find js: %v", err)
	}
	if acct.Owner() != "Jonas Schmedtmann" || acct.Currency() != "EUR" || acct.Locale() != "pt-PT" {
		t.Fatalf("unexpected account: %+v", acct.Snapshot())
	}
	if n := len(acct.Movements()); n != 8 {
		t.Fatalf("expected 8 movements, got %d", n)
	}
}

func TestNewRegistryRejectsDuplicateHandles(t *testing.T) {
	_, err := NewRegistry([]Seed{{Owner: "John Smith", PIN: 1}, {Owner: "Jane Summers", PIN: 2}})
	if !errors.Is(err, ErrDuplicateHandle) {
		t.Fatalf("expected duplicate handle error, got %v", err)
	}
}

func TestNewRegistryRejectsEmptyOwner(t *testing.T) {
	if _, err := NewRegistry([]Seed{{Owner: "   ", PIN: 1}}); !errors.Is(err, ErrEmptyHandle) {
		t.Fatalf("expected empty handle error, got %v", err)
	}
}

func TestNewRegistryRejectsNegativeInterest(t *testing.T) {
	seeds := []Seed{{Owner: "Steven Thomas Williams", PIN: 3333, InterestRate: decimal.RequireFromString("-0.7")}}
	if _, err := NewRegistry(seeds); !errors.Is(err, ErrNegativeInterest) {
		t.Fatalf("expected negative interest error, got %v", err)
	}
}

func TestFindIsCaseSensitive(t *testing.T) {
	r, err := NewRegistry(DefaultSeed())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if _, err := r.Find("JS"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for upper-case handle, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	r, err := NewRegistry(DefaultSeed())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	acct, _ := r.Find("jd")
	if err := r.Remove("jd"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := r.Find("jd"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
	if !acct.Closed() {
		t.Fatal("expected removed account to be marked closed")
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 accounts, got %d", r.Len())
	}
	if err := r.Remove("jd"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second remove, got %v", err)
	}
}

func TestTransactRejectsClosedAccount(t *testing.T) {
	r, _ := NewRegistry(DefaultSeed())
	acct, _ := r.Find("jw")
	_ = r.Remove("jw")

	called := false
	err := Transact(func([]*Book) error {
		called = true
		return nil
	}, acct)
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected closed error, got %v", err)
	}
	if called {
		t.Fatal("callback must not run for closed account")
	}
}

func TestTransactConcurrentPostsStayAligned(t *testing.T) {
	r, _ := NewRegistry(DefaultSeed())
	a, _ := r.Find("js")
	b, _ := r.Find("jd")
	startA, startB := len(a.Movements()), len(b.Movements())

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := a, b
			if i%2 == 1 {
				from, to = b, a
			}
			err := Transact(func(books []*Book) error {
				now := time.Now()
				books[0].Post(ledger.Movement{Amount: decimal.NewFromInt(-1), Date: now})
				books[1].Post(ledger.Movement{Amount: decimal.NewFromInt(1), Date: now})
				return nil
			}, from, to)
			if err != nil {
				t.Errorf("transact %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(a.Movements()) - startA; got != workers {
		t.Fatalf("expected %d new movements on a, got %d", workers, got)
	}
	if got := len(b.Movements()) - startB; got != workers {
		t.Fatalf("expected %d new movements on b, got %d", workers, got)
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	doc := `accounts:
  - owner: Sarah Smith
    pin: 4444
    interest_rate: 1
    currency: GBP
    locale: en-GB
    movements:
      - amount: 430
        date: 2023-07-17T13:15:33.035Z
      - amount: -99.99
        date: 2023-07-18T09:48:16.867Z
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	seeds, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if len(seeds) != 1 {
		t.Fatalf("expected 1 seed, got %d", len(seeds))
	}
	s := seeds[0]
	if s.Owner != "Sarah Smith" || s.PIN != 4444 || s.Currency != "GBP" {
		t.Fatalf("unexpected seed: %+v", s)
	}
	if !s.InterestRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected interest rate 1, got %s", s.InterestRate)
	}
	if len(s.Movements) != 2 || !s.Movements[1].Amount.Equal(decimal.RequireFromString("-99.99")) {
		t.Fatalf("unexpected movements: %+v", s.Movements)
	}
	if s.Movements[0].Date.Day() != 17 {
		t.Fatalf("unexpected date: %s", s.Movements[0].Date)
	}

	r, err := NewRegistry(seeds)
	if err != nil {
		t.Fatalf("registry from file: %v", err)
	}
	if _, err := r.Find("ss"); err != nil {
		t.Fatalf("find ss: %v", err)
	}
}

func TestLoadSeedFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("accounts: []\n"), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := LoadSeedFile(path); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestLoadSeedFileNegativeInterestRejectedByRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	doc := `accounts:
  - owner: Sarah Smith
    pin: 4444
    interest_rate: -1.2
    currency: GBP
    locale: en-GB
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	seeds, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if _, err := NewRegistry(seeds); !errors.Is(err, ErrNegativeInterest) {
		t.Fatalf("expected negative interest error, got %v", err)
	}
}
