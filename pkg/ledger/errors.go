package ledger

import "errors"

// Error taxonomy of the conversion pipeline. All three sentinels are
// fatal: the run aborts on the first occurrence. Unresolved categories
// are deliberately not errors; they are logged and the entry proceeds
// with the Category:Unknown label.
var (
	// ErrIntegrity marks violations of the split-transaction contract:
	// broken parent linkage, timestamp mismatch between parent and
	// posting, both sides carrying a comment, a posting with its own
	// payee, or out-of-order input rows.
	ErrIntegrity = errors.New("integrity violation")

	// ErrLookup marks unresolvable account, category or payee ids.
	ErrLookup = errors.New("lookup failed")

	// ErrCurrencyMismatch marks an attempt to add flows that differ in
	// currency, payee or comment. Unreachable on well-formed input.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)
