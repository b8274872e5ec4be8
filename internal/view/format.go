package view

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const day = 24 * time.Hour

// Tag parses a BCP 47 locale, falling back to en-US.
func Tag(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

// Currency formats amount in the account's currency for the locale, e.g.
// "$1,300.00" for en-US or "1.300,00 €" for de-DE. Unknown currency codes are
// printed verbatim in place of a symbol.
func Currency(amount decimal.Decimal, code, locale string) string {
	tag := Tag(locale)
	p := message.NewPrinter(tag)

	symbol := code
	if unit, err := currency.ParseISO(code); err == nil {
		symbol = p.Sprint(currency.Symbol(unit))
	}

	value := p.Sprint(number.Decimal(amount.Abs().InexactFloat64(), number.Scale(2)))
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	if symbolFirst(tag) {
		return sign + symbol + value
	}
	return sign + value + " " + symbol
}

func symbolFirst(tag language.Tag) bool {
	base, _ := tag.Base()
	switch base.String() {
	case "en", "zh", "ja", "ko":
		return true
	}
	return false
}

// DaysBetween returns the whole number of days between a and b, rounded to
// the nearest day.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(math.Round(float64(d) / float64(day)))
}

// MovementDate labels a movement relative to now: "Today", "Yesterday",
// "N days ago" up to a week, and a locale ordered date beyond that.
func MovementDate(date, now time.Time, locale string) string {
	switch days := DaysBetween(date, now); {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days <= 7:
		return fmt.Sprintf("%d days ago", days)
	}
	return date.Format(dateLayout(Tag(locale)))
}

// LoginStamp is the date and time shown after a successful login.
func LoginStamp(t time.Time, locale string) string {
	tag := Tag(locale)
	return t.Format(dateLayout(tag) + timeSeparator(tag) + "15:04")
}

func dateLayout(tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		if region, _ := tag.Region(); region.String() == "US" {
			return "1/2/2006"
		}
		return "02/01/2006"
	case "zh", "ja":
		return "2006/1/2"
	case "de":
		return "2.1.2006"
	}
	return "02/01/2006"
}

func timeSeparator(tag language.Tag) string {
	base, _ := tag.Base()
	if base.String() == "en" {
		return ", "
	}
	return " "
}
