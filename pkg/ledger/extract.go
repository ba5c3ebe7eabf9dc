package ledger

import (
	"fmt"
	"log/slog"
	"time"
)

// Row is one raw transaction row from the source, already reduced to
// one side per transfer pair. Nullable columns are pointers; Comment
// uses "" for absent.
type Row struct {
	ID              int64
	Date            int64 // unix seconds
	Amount          int64 // minor currency units, signed
	AccountID       int64
	CatID           *int64 // nil = uncategorized, 0 = split parent
	TransferPeer    *int64
	TransferAccount *int64
	PayeeID         *int64
	ParentID        *int64 // non-nil marks a split posting
	Comment         string
}

// RowSource is the ordered row stream the Extractor consumes. Rows
// must arrive ascending by (date, parent_id IS NOT NULL) so that a
// split parent precedes its postings. Next returns io.EOF when the
// stream is exhausted.
type RowSource interface {
	Next() (*Row, error)
}

// Extractor turns raw rows into entries: it resolves labels, links
// split postings to their parent, skips excluded transactions and
// emits one Entry per effective row. The stream is forward-only and
// not restartable.
type Extractor struct {
	src      RowSource
	accounts AccountResolver
	payees   PayeeTable
	exclude  Exclusions
	log      *slog.Logger

	parent   *Row // last split parent, always precedes its postings
	lastDate int64
}

// NewExtractor wires an extractor to its read-only capabilities.
// Warnings go to log; pass nil for the default logger.
func NewExtractor(src RowSource, accounts AccountResolver, payees PayeeTable, exclude Exclusions, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		src:      src,
		accounts: accounts,
		payees:   payees,
		exclude:  exclude,
		log:      log,
		lastDate: -1 << 63,
	}
}

// Next returns the next entry, or io.EOF when the source is drained.
// Any other error is fatal and aborts the conversion.
func (x *Extractor) Next() (*Entry, error) {
	for {
		row, err := x.src.Next()
		if err != nil {
			return nil, err
		}

		if row.Date < x.lastDate {
			return nil, fmt.Errorf("%w: txn %d out of order (date %d after %d)", ErrIntegrity, row.ID, row.Date, x.lastDate)
		}
		x.lastDate = row.Date

		hash := RefHash(row.ID)
		if x.exclude.Contains(hash) {
			continue
		}

		src, err := x.accounts.AssetLabel(row.AccountID)
		if err != nil {
			return nil, fmt.Errorf("txn %d: %w", row.ID, err)
		}
		cur, err := x.accounts.AssetCurrency(row.AccountID)
		if err != nil {
			return nil, fmt.Errorf("txn %d: %w", row.ID, err)
		}

		var dst string
		if row.TransferAccount == nil {
			if row.TransferPeer != nil {
				return nil, fmt.Errorf("%w: txn %d has transfer peer but no transfer account", ErrIntegrity, row.ID)
			}
			switch {
			case row.CatID == nil:
				x.log.Warn("no expenses category for transaction", "txn", row.ID)
				dst, err = x.accounts.CategoryLabel(nil)
				if err != nil {
					return nil, fmt.Errorf("txn %d: %w", row.ID, err)
				}
			case *row.CatID == 0:
				// Split parent: remember it for the upcoming postings,
				// emit nothing.
				x.parent = row
				continue
			default:
				dst, err = x.accounts.CategoryLabel(row.CatID)
				if err != nil {
					return nil, fmt.Errorf("txn %d: %w", row.ID, err)
				}
			}
		} else {
			if row.CatID != nil && *row.CatID != 0 {
				return nil, fmt.Errorf("%w: txn %d is a transfer with category %d", ErrIntegrity, row.ID, *row.CatID)
			}
			dst, err = x.accounts.AssetLabel(*row.TransferAccount)
			if err != nil {
				return nil, fmt.Errorf("txn %d: %w", row.ID, err)
			}
		}

		comment := row.Comment
		payeeID := row.PayeeID

		if row.ParentID != nil {
			if payeeID != nil {
				return nil, fmt.Errorf("%w: split posting %d has its own payee", ErrIntegrity, row.ID)
			}
			if x.parent == nil || x.parent.ID != *row.ParentID {
				return nil, fmt.Errorf("%w: split posting %d without parent %d", ErrIntegrity, row.ID, *row.ParentID)
			}
			if x.parent.Date != row.Date {
				return nil, fmt.Errorf("%w: split posting %d date differs from parent", ErrIntegrity, row.ID)
			}
			if comment != "" && x.parent.Comment != "" {
				return nil, fmt.Errorf("%w: split posting %d and parent both carry comments", ErrIntegrity, row.ID)
			}
			if comment == "" {
				comment = x.parent.Comment
			}
			payeeID = x.parent.PayeeID
		} else {
			// First non-split row forgets the pending parent.
			x.parent = nil
		}

		var payee string
		if payeeID != nil {
			payee, err = x.payees.PayeeName(*payeeID)
			if err != nil {
				return nil, fmt.Errorf("txn %d: %w", row.ID, err)
			}
		}

		entry := &Entry{
			When:    time.Unix(row.Date, 0),
			Payee:   payee,
			Comment: comment,
			Flows:   make(map[string][]Flow),
		}
		entry.AddRef(hash)
		if row.ParentID != nil {
			entry.AddRef(RefHash(*row.ParentID))
		}
		entry.Flows[src] = []Flow{{Amount: row.Amount, Currency: cur}}
		entry.Flows[dst] = []Flow{{Amount: -row.Amount, Currency: cur, Payee: payee, Comment: comment}}
		return entry, nil
	}
}
