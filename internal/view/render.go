package view

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankist/internal/ledger"
)

// State is everything the presentation layer needs to draw an authenticated
// session.
type State struct {
	SessionID    string
	Handle       string
	Owner        string
	Currency     string
	Locale       string
	InterestRate decimal.Decimal
	Movements    []ledger.Movement
	Sorted       bool
	Balance      decimal.Decimal
	Summary      ledger.Summary
	Countdown    string
	LoggedInAt   time.Time
}

// FirstName returns the first whitespace separated token of the owner name.
func (s State) FirstName() string {
	if fields := strings.Fields(s.Owner); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Row is one rendered movement.
type Row struct {
	Number int    `json:"number"`
	Type   string `json:"type"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
	// Raw is the unformatted signed amount.
	Raw string `json:"raw"`
}

// Screen is the formatted, JSON ready presentation of a State.
type Screen struct {
	SessionID  string `json:"session_id"`
	Handle     string `json:"handle"`
	Welcome    string `json:"welcome"`
	LoginStamp string `json:"login_stamp"`
	Balance    string `json:"balance"`
	In         string `json:"in"`
	Out        string `json:"out"`
	Interest   string `json:"interest"`
	Countdown  string `json:"countdown"`
	Sorted     bool   `json:"sorted"`
	Movements  []Row  `json:"movements"`
}

// Render formats a State for display. Rows are numbered in sequence order
// and listed newest first.
func Render(s State, now time.Time) Screen {
	money := func(d decimal.Decimal) string { return Currency(d, s.Currency, s.Locale) }

	rows := make([]Row, len(s.Movements))
	for i, m := range s.Movements {
		kind := "withdrawal"
		if m.IsDeposit() {
			kind = "deposit"
		}
		rows[len(rows)-1-i] = Row{
			Number: i + 1,
			Type:   kind,
			Date:   MovementDate(m.Date, now, s.Locale),
			Amount: money(m.Amount),
			Raw:    m.Amount.String(),
		}
	}

	return Screen{
		SessionID:  s.SessionID,
		Handle:     s.Handle,
		Welcome:    "Welcome back, " + s.FirstName(),
		LoginStamp: LoginStamp(s.LoggedInAt, s.Locale),
		Balance:    money(s.Balance),
		In:         money(s.Summary.In),
		Out:        money(s.Summary.Out),
		Interest:   money(s.Summary.Interest),
		Countdown:  s.Countdown,
		Sorted:     s.Sorted,
		Movements:  rows,
	}
}

// LoggedOutWelcome is the greeting shown when no session is active.
const LoggedOutWelcome = "Log in to get started"
