package view

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankist/internal/ledger"
)

func TestCurrencyGrouping(t *testing.T) {
	cases := []struct {
		locale string
		want   string
	}{
		{"en-US", "1,300.00"},
		{"de-DE", "1.300,00"},
	}
	for _, tc := range cases {
		got := Currency(decimal.RequireFromString("1300"), "EUR", tc.locale)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("Currency(%s) = %q, want it to contain %q", tc.locale, got, tc.want)
		}
	}
}

func TestCurrencyNegative(t *testing.T) {
	got := Currency(decimal.RequireFromString("-306.5"), "USD", "en-US")
	if !strings.HasPrefix(got, "-") || !strings.Contains(got, "306.50") {
		t.Fatalf("unexpected negative format %q", got)
	}
}

func TestCurrencyUnknownCode(t *testing.T) {
	got := Currency(decimal.NewFromInt(5), "XYZ1", "en-US")
	if !strings.Contains(got, "XYZ1") {
		t.Fatalf("expected raw code in %q", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, a.Add(36*time.Hour)); got != 2 {
		t.Fatalf("expected 36h to round to 2 days, got %d", got)
	}
	if got := DaysBetween(a.Add(11*time.Hour), a); got != 0 {
		t.Fatalf("expected 0 days, got %d", got)
	}
}

func TestMovementDate(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		date time.Time
		want string
	}{
		{now.Add(-2 * time.Hour), "Today"},
		{now.Add(-24 * time.Hour), "Yesterday"},
		{now.Add(-5 * 24 * time.Hour), "5 days ago"},
		{now.Add(-7 * 24 * time.Hour), "7 days ago"},
		{time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC), "3/4/2024"},
	}
	for _, tc := range cases {
		if got := MovementDate(tc.date, now, "en-US"); got != tc.want {
			t.Fatalf("MovementDate(%s) = %q, want %q", tc.date, got, tc.want)
		}
	}

	old := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	if got := MovementDate(old, now, "pt-PT"); got != "04/03/2024" {
		t.Fatalf("pt-PT date = %q", got)
	}
	if got := MovementDate(old, now, "zh-CN"); got != "2024/3/4" {
		t.Fatalf("zh-CN date = %q", got)
	}
}

func TestRender(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	movs := []ledger.Movement{
		{Amount: decimal.NewFromInt(1000), Date: now.Add(-48 * time.Hour)},
		{Amount: decimal.NewFromInt(-200), Date: now.Add(-time.Hour)},
	}
	screen := Render(State{
		Handle:     "jd",
		Owner:      "Jessica Davis",
		Currency:   "USD",
		Locale:     "en-US",
		Movements:  movs,
		Balance:    ledger.Balance(movs),
		Summary:    ledger.Summarize(movs, decimal.RequireFromString("1.5")),
		Countdown:  "04:12",
		LoggedInAt: now,
	}, now)

	if screen.Welcome != "Welcome back, Jessica" {
		t.Fatalf("unexpected welcome %q", screen.Welcome)
	}
	if len(screen.Movements) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(screen.Movements))
	}
	newest := screen.Movements[0]
	if newest.Number != 2 || newest.Type != "withdrawal" || newest.Date != "Today" || newest.Raw != "-200" {
		t.Fatalf("unexpected newest row %+v", newest)
	}
	oldest := screen.Movements[1]
	if oldest.Number != 1 || oldest.Type != "deposit" || oldest.Date != "2 days ago" {
		t.Fatalf("unexpected oldest row %+v", oldest)
	}
	if !strings.Contains(screen.Balance, "800.00") || !strings.Contains(screen.Interest, "15.00") {
		t.Fatalf("unexpected totals %+v", screen)
	}
	if screen.Countdown != "04:12" {
		t.Fatalf("unexpected countdown %q", screen.Countdown)
	}
}
