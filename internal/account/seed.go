package account

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Seed describes an account created at startup.
type Seed struct {
	Owner        string          `yaml:"owner"`
	PIN          int             `yaml:"pin"`
	InterestRate decimal.Decimal `yaml:"interest_rate"`
	Currency     string          `yaml:"currency"`
	Locale       string          `yaml:"locale"`
	Movements    []SeedMovement  `yaml:"movements"`
}

// SeedMovement is one historical movement of a seed account.
type SeedMovement struct {
	Amount decimal.Decimal `yaml:"amount"`
	Date   time.Time       `yaml:"date"`
}

type seedFile struct {
	Accounts []Seed `yaml:"accounts"`
}

// LoadSeedFile reads a YAML account directory of the form
//
//	accounts:
//	  - owner: Jonas Schmedtmann
//	    pin: 1111
//	    interest_rate: 1.2
//	    currency: EUR
//	    locale: pt-PT
//	    movements:
//	      - {amount: 200, date: 2023-07-17T13:15:33.035Z}
func LoadSeedFile(path string) ([]Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	if len(f.Accounts) == 0 {
		return nil, fmt.Errorf("seed file %s defines no accounts", path)
	}
	return f.Accounts, nil
}

// DefaultSeed returns the built-in demo directory.
func DefaultSeed() []Seed {
	dates := func(stamps ...string) []time.Time {
		out := make([]time.Time, len(stamps))
		for i, s := range stamps {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				panic(err)
			}
			out[i] = t
		}
		return out
	}
	history := func(amounts []string, at []time.Time) []SeedMovement {
		out := make([]SeedMovement, len(amounts))
		for i, a := range amounts {
			out[i] = SeedMovement{Amount: decimal.RequireFromString(a), Date: at[i]}
		}
		return out
	}

	week := dates(
		"2023-07-17T13:15:33.035Z",
		"2023-07-18T09:48:16.867Z",
		"2023-07-19T06:04:23.907Z",
		"2023-07-20T14:18:46.235Z",
		"2023-07-21T16:33:06.386Z",
		"2023-07-22T14:43:26.374Z",
		"2023-07-23T18:49:59.371Z",
		"2023-07-24T12:01:20.894Z",
	)
	jonasWeek := append(append([]time.Time{}, week[:7]...), dates("2023-07-25T12:01:20.894Z")...)

	return []Seed{
		{
			Owner:        "Jonas Schmedtmann",
			PIN:          1111,
			InterestRate: decimal.RequireFromString("1.2"),
			Currency:     "EUR",
			Locale:       "pt-PT",
			Movements:    history([]string{"200", "455.23", "-306.5", "25000", "-642.21", "-133.9", "79.97", "1300"}, jonasWeek),
		},
		{
			Owner:        "Jessica Davis",
			PIN:          2222,
			InterestRate: decimal.RequireFromString("1.5"),
			Currency:     "USD",
			Locale:       "en-US",
			Movements:    history([]string{"5000", "3400", "-150", "-790", "-3210", "-1000", "8500", "-30"}, week),
		},
		{
			Owner:        "James Wang",
			PIN:          3333,
			InterestRate: decimal.RequireFromString("1.1"),
			Currency:     "CNY",
			Locale:       "zh-CN",
			Movements:    history([]string{"1000", "2000", "-3000", "4000", "-2000", "1340", "4592", "-2320"}, week),
		},
	}
}
