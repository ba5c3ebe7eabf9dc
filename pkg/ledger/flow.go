// Package ledger converts MyExpenses transaction rows into ledger-cli
// text. The pipeline is rows → Extractor → Merger → Renderer; every
// stage pulls from its upstream and signals exhaustion with io.EOF.
package ledger

import (
	"fmt"
	"strings"
)

// Flow is one account's signed monetary movement within an entry.
// Amount is an exact integer in minor currency units; floating point
// is never involved. Payee and Comment are per-posting annotations,
// "" meaning absent.
type Flow struct {
	Amount   int64
	Currency string
	Payee    string
	Comment  string
}

// String formats the amount the way the ledger output expects it.
// The fractional ".DD" suffix appears only when cents are non-zero or
// the whole part reaches 1000. The whole part is grouped in base-1000
// chunks separated by commas. USD gets a "$" prefix, every other
// currency a " CUR" suffix.
func (f Flow) String() string {
	coins := f.Amount
	neg := coins < 0
	if neg {
		coins = -coins
	}
	cents := coins % 100
	whole := coins / 100

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	if f.Currency == "USD" {
		sb.WriteByte('$')
	}

	// Base-1000 chunks, most significant first. Only the leading chunk
	// is unpadded.
	var chunks []string
	for {
		part := whole % 1000
		whole /= 1000
		if whole == 0 {
			chunks = append([]string{fmt.Sprintf("%d", part)}, chunks...)
			break
		}
		chunks = append([]string{fmt.Sprintf("%03d", part)}, chunks...)
	}
	sb.WriteString(strings.Join(chunks, ","))

	if cents != 0 || coins/100 >= 1000 {
		fmt.Fprintf(&sb, ".%02d", cents)
	}
	if f.Currency != "USD" {
		sb.WriteByte(' ')
		sb.WriteString(f.Currency)
	}
	return sb.String()
}

// Add sums two flows. Both sides must agree on currency, payee and
// comment; the result carries no annotations. A disagreement is an
// internal invariant breach, reported as ErrCurrencyMismatch.
func (f Flow) Add(other Flow) (Flow, error) {
	if f.Currency != other.Currency {
		return Flow{}, fmt.Errorf("%w: %q + %q", ErrCurrencyMismatch, f.Currency, other.Currency)
	}
	if f.Payee != other.Payee {
		return Flow{}, fmt.Errorf("%w: payees %q and %q", ErrCurrencyMismatch, f.Payee, other.Payee)
	}
	if f.Comment != other.Comment {
		return Flow{}, fmt.Errorf("%w: comments %q and %q", ErrCurrencyMismatch, f.Comment, other.Comment)
	}
	return Flow{Amount: f.Amount + other.Amount, Currency: f.Currency}, nil
}
