package db

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/username/mexp2ledger/pkg/ledger"
)

// LoadCatalog loads the accounts and categories tables into an
// in-memory catalog. A category whose parent_id points at itself is a
// root and is normalized at load time.
func LoadCatalog(conn *Connection) (*ledger.Catalog, error) {
	assets := make(map[int64]ledger.Asset)
	rows, err := conn.Query(`SELECT _id, label, currency, type FROM accounts`)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var a ledger.Asset
		if err := rows.Scan(&id, &a.Label, &a.Currency, &a.Type); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		assets[id] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	categories := make(map[int64]ledger.Category)
	crows, err := conn.Query(`SELECT _id, parent_id, label FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var id int64
		var parent sql.NullInt64
		var label string
		if err := crows.Scan(&id, &parent, &label); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat := ledger.Category{Label: label}
		if parent.Valid && parent.Int64 != id {
			p := parent.Int64
			cat.Parent = &p
		}
		categories[id] = cat
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return ledger.NewCatalog(assets, categories), nil
}

// LoadPayees loads the payee table.
func LoadPayees(conn *Connection) (ledger.Payees, error) {
	payees := make(ledger.Payees)
	rows, err := conn.Query(`SELECT _id, name FROM payee`)
	if err != nil {
		return nil, fmt.Errorf("failed to load payees: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan payee: %w", err)
		}
		payees[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load payees: %w", err)
	}
	return payees, nil
}

// RowSource streams transaction rows in the order the extractor
// requires: ascending by date, split parents before their postings at
// equal timestamps. Transfer pairs are reduced to the smaller-id side.
type RowSource struct {
	rows *sql.Rows
}

// OpenRows starts the ordered transaction iteration. Close the source
// when done.
func OpenRows(conn *Connection) (*RowSource, error) {
	rows, err := conn.Query(`
		SELECT _id, date, amount, account_id, cat_id,
		       transfer_peer, transfer_account, payee_id, parent_id, comment
		FROM transactions
		WHERE (transfer_peer IS NULL OR _id < transfer_peer)
		ORDER BY date, parent_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return &RowSource{rows: rows}, nil
}

// Next returns the next row, or io.EOF at the end of the stream.
func (s *RowSource) Next() (*ledger.Row, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate transactions: %w", err)
		}
		return nil, io.EOF
	}
	var (
		row      ledger.Row
		catID    sql.NullInt64
		peer     sql.NullInt64
		transfer sql.NullInt64
		payeeID  sql.NullInt64
		parentID sql.NullInt64
		comment  sql.NullString
	)
	if err := s.rows.Scan(&row.ID, &row.Date, &row.Amount, &row.AccountID,
		&catID, &peer, &transfer, &payeeID, &parentID, &comment); err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	row.CatID = nullable(catID)
	row.TransferPeer = nullable(peer)
	row.TransferAccount = nullable(transfer)
	row.PayeeID = nullable(payeeID)
	row.ParentID = nullable(parentID)
	row.Comment = comment.String
	return &row, nil
}

// Close releases the underlying cursor.
func (s *RowSource) Close() error {
	return s.rows.Close()
}

func nullable(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

// Stats summarizes the source database for the stats command.
type Stats struct {
	Transactions  int64
	SplitParents  int64
	SplitPostings int64
	TransferPairs int64
	Accounts      int64
	Categories    int64
	Payees        int64
	First         time.Time
	Last          time.Time
}

// GetStats collects source statistics in a single aggregate query.
func GetStats(conn *Connection) (*Stats, error) {
	var stats Stats
	var first, last sql.NullInt64
	err := conn.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM transactions),
			(SELECT COUNT(*) FROM transactions WHERE cat_id = 0 AND transfer_account IS NULL),
			(SELECT COUNT(*) FROM transactions WHERE parent_id IS NOT NULL),
			(SELECT COUNT(*) FROM transactions WHERE transfer_peer IS NOT NULL AND _id < transfer_peer),
			(SELECT COUNT(*) FROM accounts),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM payee),
			(SELECT MIN(date) FROM transactions),
			(SELECT MAX(date) FROM transactions)
	`).Scan(&stats.Transactions, &stats.SplitParents, &stats.SplitPostings,
		&stats.TransferPairs, &stats.Accounts, &stats.Categories, &stats.Payees,
		&first, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	if first.Valid {
		stats.First = time.Unix(first.Int64, 0)
	}
	if last.Valid {
		stats.Last = time.Unix(last.Int64, 0)
	}
	return &stats, nil
}

// ActiveAccountIDs returns the distinct asset accounts referenced by
// transactions.
func ActiveAccountIDs(conn *Connection) ([]int64, error) {
	return idList(conn, `SELECT DISTINCT account_id FROM transactions`)
}

// ActiveCategoryIDs returns the distinct real categories referenced by
// transactions, excluding the split-parent marker.
func ActiveCategoryIDs(conn *Connection) ([]int64, error) {
	return idList(conn, `SELECT DISTINCT cat_id FROM transactions
		WHERE cat_id IS NOT NULL AND cat_id != 0`)
}

func idList(conn *Connection, query string) ([]int64, error) {
	rows, err := conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	return ids, nil
}
