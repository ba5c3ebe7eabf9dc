package ledger

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

// sliceRows is a RowSource backed by a slice.
type sliceRows struct {
	rows []*Row
	i    int
}

func (s *sliceRows) Next() (*Row, error) {
	if s.i >= len(s.rows) {
		return nil, io.EOF
	}
	r := s.rows[s.i]
	s.i++
	return r, nil
}

func ptr(v int64) *int64 { return &v }

func testPayees() Payees {
	return Payees{1: "Corner Shop", 2: "Landlord"}
}

func newTestExtractor(rows []*Row, exclude Exclusions) *Extractor {
	return NewExtractor(&sliceRows{rows: rows}, testCatalog(), testPayees(), exclude, slog.Default())
}

func drain(t *testing.T, x *Extractor) []*Entry {
	t.Helper()
	var entries []*Entry
	for {
		e, err := x.Next()
		if err == io.EOF {
			return entries
		}
		if err != nil {
			t.Fatalf("Next() returned error: %v", err)
		}
		entries = append(entries, e)
	}
}

func TestExtractCategorized(t *testing.T) {
	when := time.Date(2020, 3, 14, 9, 26, 0, 0, time.Local)
	rows := []*Row{{
		ID: 1, Date: when.Unix(), Amount: -1250, AccountID: 2,
		CatID: ptr(11), PayeeID: ptr(1), Comment: "weekly shop",
	}}

	entries := drain(t, newTestExtractor(rows, nil))
	if len(entries) != 1 {
		t.Fatalf("extracted %d entries, expected 1", len(entries))
	}
	e := entries[0]

	if !e.When.Equal(when) {
		t.Errorf("When = %v, expected %v", e.When, when)
	}
	if e.Payee != "Corner Shop" {
		t.Errorf("Payee = %q, expected Corner Shop", e.Payee)
	}
	if e.Comment != "weekly shop" {
		t.Errorf("Comment = %q, expected weekly shop", e.Comment)
	}
	if _, ok := e.Refs[RefHash(1)]; !ok || len(e.Refs) != 1 {
		t.Errorf("Refs = %v, expected just hash of txn 1", e.Refs)
	}

	src := e.Flows["Assets:Bank:Checking"]
	if len(src) != 1 || src[0].Amount != -1250 || src[0].Currency != "USD" || src[0].Payee != "" {
		t.Errorf("source flows = %v", src)
	}
	dst := e.Flows["Food:Groceries"]
	if len(dst) != 1 || dst[0].Amount != 1250 || dst[0].Payee != "Corner Shop" || dst[0].Comment != "weekly shop" {
		t.Errorf("destination flows = %v", dst)
	}

	if sums := e.SumByCurrency(); sums["USD"] != 0 {
		t.Errorf("entry does not balance: %v", sums)
	}
}

func TestExtractTransfer(t *testing.T) {
	rows := []*Row{{
		ID: 2, Date: 1000, Amount: -50000, AccountID: 2,
		TransferAccount: ptr(1), TransferPeer: ptr(3),
	}}

	entries := drain(t, newTestExtractor(rows, nil))
	if len(entries) != 1 {
		t.Fatalf("extracted %d entries, expected 1", len(entries))
	}
	e := entries[0]

	if got := e.Flows["Assets:Bank:Checking"][0].Amount; got != -50000 {
		t.Errorf("source amount = %d, expected -50000", got)
	}
	if got := e.Flows["Assets:Cash:Wallet"][0].Amount; got != 50000 {
		t.Errorf("destination amount = %d, expected 50000", got)
	}
}

func TestExtractUncategorized(t *testing.T) {
	rows := []*Row{{ID: 3, Date: 1000, Amount: -100, AccountID: 1}}

	entries := drain(t, newTestExtractor(rows, nil))
	if len(entries) != 1 {
		t.Fatalf("extracted %d entries, expected 1", len(entries))
	}
	if _, ok := entries[0].Flows["Category:Unknown"]; !ok {
		t.Errorf("expected Category:Unknown destination, got %v", entries[0].Flows)
	}
}

func TestExtractSplit(t *testing.T) {
	date := int64(5000)
	rows := []*Row{
		{ID: 10, Date: date, Amount: -3000, AccountID: 2, CatID: ptr(0), PayeeID: ptr(1), Comment: "split note"},
		{ID: 11, Date: date, Amount: -1000, AccountID: 2, CatID: ptr(10), ParentID: ptr(10)},
		{ID: 12, Date: date, Amount: -2000, AccountID: 2, CatID: ptr(11), ParentID: ptr(10)},
	}

	entries := drain(t, newTestExtractor(rows, nil))
	if len(entries) != 2 {
		t.Fatalf("extracted %d entries, expected 2 (parent emits nothing)", len(entries))
	}

	for i, e := range entries {
		if e.Payee != "Corner Shop" {
			t.Errorf("entry %d payee = %q, expected parent payee", i, e.Payee)
		}
		if e.Comment != "split note" {
			t.Errorf("entry %d comment = %q, expected parent comment", i, e.Comment)
		}
		if _, ok := e.Refs[RefHash(10)]; !ok {
			t.Errorf("entry %d refs missing parent hash", i)
		}
		if len(e.Refs) != 2 {
			t.Errorf("entry %d has %d refs, expected 2", i, len(e.Refs))
		}
	}

	if _, ok := entries[0].Flows["Food"]; !ok {
		t.Errorf("first posting flows = %v, expected Food", entries[0].Flows)
	}
	if _, ok := entries[1].Flows["Food:Groceries"]; !ok {
		t.Errorf("second posting flows = %v, expected Food:Groceries", entries[1].Flows)
	}
}

func TestExtractSplitPostingOwnComment(t *testing.T) {
	date := int64(5000)
	rows := []*Row{
		{ID: 10, Date: date, Amount: -3000, AccountID: 2, CatID: ptr(0), PayeeID: ptr(1)},
		{ID: 11, Date: date, Amount: -3000, AccountID: 2, CatID: ptr(10), ParentID: ptr(10), Comment: "own note"},
	}

	entries := drain(t, newTestExtractor(rows, nil))
	if len(entries) != 1 {
		t.Fatalf("extracted %d entries, expected 1", len(entries))
	}
	if entries[0].Comment != "own note" {
		t.Errorf("Comment = %q, expected posting's own note", entries[0].Comment)
	}
}

func TestExtractExclusion(t *testing.T) {
	exclude := make(Exclusions)
	exclude.Add(RefHash(1))
	rows := []*Row{
		{ID: 1, Date: 1000, Amount: -100, AccountID: 1, CatID: ptr(10)},
		{ID: 2, Date: 2000, Amount: -200, AccountID: 1, CatID: ptr(10)},
	}

	entries := drain(t, newTestExtractor(rows, exclude))
	if len(entries) != 1 {
		t.Fatalf("extracted %d entries, expected 1", len(entries))
	}
	if _, ok := entries[0].Refs[RefHash(1)]; ok {
		t.Error("excluded hash leaked into refs")
	}
	if _, ok := entries[0].Refs[RefHash(2)]; !ok {
		t.Error("surviving entry lost its ref")
	}
}

func TestExtractIntegrityErrors(t *testing.T) {
	date := int64(5000)
	tests := []struct {
		name string
		rows []*Row
	}{
		{"posting without parent", []*Row{
			{ID: 11, Date: date, Amount: -100, AccountID: 1, CatID: ptr(10), ParentID: ptr(10)},
		}},
		{"posting after unrelated row", []*Row{
			{ID: 10, Date: date, Amount: -300, AccountID: 1, CatID: ptr(0), PayeeID: ptr(1)},
			{ID: 20, Date: date, Amount: -50, AccountID: 1, CatID: ptr(10)},
			{ID: 11, Date: date, Amount: -100, AccountID: 1, CatID: ptr(10), ParentID: ptr(10)},
		}},
		{"posting date differs", []*Row{
			{ID: 10, Date: date, Amount: -300, AccountID: 1, CatID: ptr(0), PayeeID: ptr(1)},
			{ID: 11, Date: date + 1, Amount: -100, AccountID: 1, CatID: ptr(10), ParentID: ptr(10)},
		}},
		{"both comments", []*Row{
			{ID: 10, Date: date, Amount: -300, AccountID: 1, CatID: ptr(0), PayeeID: ptr(1), Comment: "a"},
			{ID: 11, Date: date, Amount: -100, AccountID: 1, CatID: ptr(10), ParentID: ptr(10), Comment: "b"},
		}},
		{"posting with payee", []*Row{
			{ID: 10, Date: date, Amount: -300, AccountID: 1, CatID: ptr(0), PayeeID: ptr(1)},
			{ID: 11, Date: date, Amount: -100, AccountID: 1, CatID: ptr(10), ParentID: ptr(10), PayeeID: ptr(2)},
		}},
		{"transfer peer without account", []*Row{
			{ID: 1, Date: date, Amount: -100, AccountID: 1, TransferPeer: ptr(2)},
		}},
		{"transfer with category", []*Row{
			{ID: 1, Date: date, Amount: -100, AccountID: 1, TransferAccount: ptr(2), TransferPeer: ptr(2), CatID: ptr(10)},
		}},
		{"rows out of order", []*Row{
			{ID: 1, Date: date, Amount: -100, AccountID: 1, CatID: ptr(10)},
			{ID: 2, Date: date - 1, Amount: -100, AccountID: 1, CatID: ptr(10)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newTestExtractor(tt.rows, nil)
			var err error
			for err == nil {
				_, err = x.Next()
			}
			if !errors.Is(err, ErrIntegrity) {
				t.Errorf("error = %v, expected ErrIntegrity", err)
			}
		})
	}
}

// failingResolver rejects every category lookup, including the
// uncategorized sentinel.
type failingResolver struct {
	*Catalog
}

func (r failingResolver) CategoryLabel(id *int64) (string, error) {
	return "", ErrLookup
}

func TestExtractUncategorizedResolverError(t *testing.T) {
	rows := []*Row{{ID: 3, Date: 1000, Amount: -100, AccountID: 1}}
	x := NewExtractor(&sliceRows{rows: rows}, failingResolver{testCatalog()}, testPayees(), nil, slog.Default())

	if _, err := x.Next(); !errors.Is(err, ErrLookup) {
		t.Errorf("Next() error = %v, expected ErrLookup", err)
	}
}

func TestExtractLookupErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []*Row
	}{
		{"unknown account", []*Row{
			{ID: 1, Date: 1000, Amount: -100, AccountID: 99, CatID: ptr(10)},
		}},
		{"unknown category", []*Row{
			{ID: 1, Date: 1000, Amount: -100, AccountID: 1, CatID: ptr(99)},
		}},
		{"unknown payee", []*Row{
			{ID: 1, Date: 1000, Amount: -100, AccountID: 1, CatID: ptr(10), PayeeID: ptr(99)},
		}},
		{"unknown transfer account", []*Row{
			{ID: 1, Date: 1000, Amount: -100, AccountID: 1, TransferAccount: ptr(99), TransferPeer: ptr(2)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newTestExtractor(tt.rows, nil)
			var err error
			for err == nil {
				_, err = x.Next()
			}
			if !errors.Is(err, ErrLookup) {
				t.Errorf("error = %v, expected ErrLookup", err)
			}
		})
	}
}
