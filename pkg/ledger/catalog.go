package ledger

import (
	"fmt"
	"strings"
)

// Account type codes as stored in the MyExpenses accounts table.
const (
	AccountCash      = "CASH"
	AccountBank      = "BANK"
	AccountAsset     = "ASSET"
	AccountCCard     = "CCARD"
	AccountLiability = "LIABILITY"
)

// AccountResolver resolves numeric account and category ids to
// hierarchical colon-joined labels. CategoryLabel accepts a nil id and
// resolves it to the Category:Unknown sentinel.
type AccountResolver interface {
	AssetLabel(id int64) (string, error)
	AssetCurrency(id int64) (string, error)
	CategoryLabel(id *int64) (string, error)
}

// PayeeTable resolves payee ids to display names. A missing id is
// fatal.
type PayeeTable interface {
	PayeeName(id int64) (string, error)
}

// Asset is one row of the accounts table.
type Asset struct {
	Label    string
	Currency string
	Type     string
}

// Category is one row of the categories table. A root category has
// Parent == nil; a self-referencing parent_id is normalized to nil at
// load time.
type Category struct {
	Parent *int64
	Label  string
}

// Catalog is the read-only account/category lookup loaded once before
// the pipeline runs. It implements AccountResolver.
type Catalog struct {
	assets     map[int64]Asset
	categories map[int64]Category
}

// NewCatalog builds a catalog from preloaded tables.
func NewCatalog(assets map[int64]Asset, categories map[int64]Category) *Catalog {
	if assets == nil {
		assets = make(map[int64]Asset)
	}
	if categories == nil {
		categories = make(map[int64]Category)
	}
	return &Catalog{assets: assets, categories: categories}
}

// AssetLabel returns the colon-joined label of an asset account. The
// prefix is derived from the account type, the suffix is the account's
// own label.
func (c *Catalog) AssetLabel(id int64) (string, error) {
	asset, ok := c.assets[id]
	if !ok {
		return "", fmt.Errorf("%w: account %d", ErrLookup, id)
	}
	var labels []string
	switch asset.Type {
	case AccountCash:
		labels = []string{"Assets", "Cash"}
	case AccountBank:
		labels = []string{"Assets", "Bank"}
	case AccountAsset:
		labels = []string{"Assets"}
	case AccountCCard:
		labels = []string{"Liabilities", "CreditCard"}
	case AccountLiability:
		labels = []string{"Liabilities"}
	}
	labels = append(labels, asset.Label)
	return strings.Join(labels, ":"), nil
}

// AssetCurrency returns the currency code of an asset account.
func (c *Catalog) AssetCurrency(id int64) (string, error) {
	asset, ok := c.assets[id]
	if !ok {
		return "", fmt.Errorf("%w: account %d", ErrLookup, id)
	}
	return asset.Currency, nil
}

// CategoryLabel returns the colon-joined ancestor chain of a category.
// A nil id resolves to the Category:Unknown sentinel.
func (c *Catalog) CategoryLabel(id *int64) (string, error) {
	if id == nil {
		return "Category:Unknown", nil
	}
	return c.categoryChain(*id)
}

func (c *Catalog) categoryChain(id int64) (string, error) {
	cat, ok := c.categories[id]
	if !ok {
		return "", fmt.Errorf("%w: category %d", ErrLookup, id)
	}
	// A self-referencing parent is a root (cycle guard).
	if cat.Parent == nil || *cat.Parent == id {
		return cat.Label, nil
	}
	parent, err := c.categoryChain(*cat.Parent)
	if err != nil {
		return "", err
	}
	return parent + ":" + cat.Label, nil
}

// Labels yields every asset and category label known to the catalog,
// for the listing actions. Category id 0 is the split-parent marker,
// not a real category.
func (c *Catalog) Labels() ([]string, error) {
	var labels []string
	for id := range c.assets {
		label, err := c.AssetLabel(id)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	for id := range c.categories {
		if id == 0 {
			continue
		}
		label, err := c.categoryChain(id)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// Payees maps payee ids to display names. It implements PayeeTable.
type Payees map[int64]string

// PayeeName returns the display name for a payee id.
func (p Payees) PayeeName(id int64) (string, error) {
	name, ok := p[id]
	if !ok {
		return "", fmt.Errorf("%w: payee %d", ErrLookup, id)
	}
	return name, nil
}
