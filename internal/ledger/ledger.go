package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Movement is a single signed ledger entry. Positive amounts are deposits,
// negative amounts are withdrawals.
type Movement struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// IsDeposit reports whether the movement credits the account.
func (m Movement) IsDeposit() bool {
	return m.Amount.IsPositive()
}

// Summary captures the totals shown next to an account balance.
type Summary struct {
	// In is the sum of all deposits.
	In decimal.Decimal `json:"in"`
	// Out is the sum of all withdrawals and is never positive.
	Out decimal.Decimal `json:"out"`
	// Interest is the sum of per-deposit interest terms that exceed one unit.
	Interest decimal.Decimal `json:"interest"`
}

// Balance returns the sum of all movements. An empty history sums to zero.
func Balance(movements []Movement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.Amount)
	}
	return total
}

// Summarize derives deposit, withdrawal and interest totals for an account
// paying ratePercent on each deposit. Interest terms of one unit or less are
// dropped individually, so small deposits earn nothing.
func Summarize(movements []Movement, ratePercent decimal.Decimal) Summary {
	s := Summary{In: decimal.Zero, Out: decimal.Zero, Interest: decimal.Zero}
	for _, m := range movements {
		switch m.Amount.Sign() {
		case 1:
			s.In = s.In.Add(m.Amount)
			if term := DepositInterest(m.Amount, ratePercent); term.GreaterThan(one) {
				s.Interest = s.Interest.Add(term)
			}
		case -1:
			s.Out = s.Out.Add(m.Amount)
		}
	}
	return s
}

// DepositInterest returns the interest earned by a single deposit.
func DepositInterest(deposit, ratePercent decimal.Decimal) decimal.Decimal {
	return deposit.Mul(ratePercent).Div(hundred)
}

// SortedView returns a copy of movements, ordered by ascending amount when
// ascending is set. Each amount keeps its own date. The input is never
// reordered.
func SortedView(movements []Movement, ascending bool) []Movement {
	out := make([]Movement, len(movements))
	copy(out, movements)
	if ascending {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Amount.LessThan(out[j].Amount)
		})
	}
	return out
}

// HasMovementAtLeast reports whether any movement is greater than or equal
// to min.
func HasMovementAtLeast(movements []Movement, min decimal.Decimal) bool {
	for _, m := range movements {
		if m.Amount.GreaterThanOrEqual(min) {
			return true
		}
	}
	return false
}
