package ledger

import (
	"crypto/sha1"
	"fmt"
	"time"
)

// RefHash returns the stable reference hash of a transaction id: the
// lowercase hex SHA-1 of the ASCII string "txn:<decimal id>". It
// identifies a transaction across runs independently of row order.
func RefHash(id int64) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("txn:%d", id)))
	return fmt.Sprintf("%x", sum)
}

// Entry is one dated group of postings. It is created by the
// Extractor, possibly coalesced in place by the Merger, and consumed
// by the Renderer; nothing outlives a single pipeline pass.
type Entry struct {
	When    time.Time
	Payee   string
	Comment string

	// Refs holds the reference hashes of the source transactions
	// (and, for split postings, of their parent).
	Refs map[string]struct{}

	// Flows maps account label to that account's postings, in the
	// order they were produced.
	Flows map[string][]Flow
}

// AddRef records a reference hash on the entry.
func (e *Entry) AddRef(hash string) {
	if e.Refs == nil {
		e.Refs = make(map[string]struct{})
	}
	e.Refs[hash] = struct{}{}
}

// SumByCurrency totals all flows across all accounts per currency.
// A fully merged entry sums to zero for every currency present.
func (e *Entry) SumByCurrency() map[string]int64 {
	sums := make(map[string]int64)
	for _, flows := range e.Flows {
		for _, f := range flows {
			sums[f.Currency] += f.Amount
		}
	}
	return sums
}
