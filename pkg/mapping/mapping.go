// Package mapping applies an optional YAML overlay that renames
// resolved account and category labels before rendering.
package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/username/mexp2ledger/pkg/ledger"
)

// Rule renames one resolved label.
type Rule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Config is the mapping file layout: separate rule lists for asset
// accounts and categories.
type Config struct {
	Accounts   []Rule `yaml:"accounts"`
	Categories []Rule `yaml:"categories"`
}

// Mapping holds the compiled rename tables.
type Mapping struct {
	accounts   map[string]string
	categories map[string]string
}

// Load reads and parses a mapping file.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}
	return New(cfg), nil
}

// New compiles a mapping from its configuration.
func New(cfg Config) *Mapping {
	m := &Mapping{
		accounts:   make(map[string]string, len(cfg.Accounts)),
		categories: make(map[string]string, len(cfg.Categories)),
	}
	for _, r := range cfg.Accounts {
		m.accounts[r.From] = r.To
	}
	for _, r := range cfg.Categories {
		m.categories[r.From] = r.To
	}
	return m
}

// Account maps a resolved asset label, identity when unmapped.
func (m *Mapping) Account(label string) string {
	if to, ok := m.accounts[label]; ok {
		return to
	}
	return label
}

// Category maps a resolved category label, identity when unmapped.
func (m *Mapping) Category(label string) string {
	if to, ok := m.categories[label]; ok {
		return to
	}
	return label
}

// Resolver wraps an account resolver, rewriting the labels it
// produces. A nil mapping is the identity.
type Resolver struct {
	inner ledger.AccountResolver
	m     *Mapping
}

// Wrap decorates a resolver with a mapping. With a nil mapping the
// resolver is returned unchanged.
func Wrap(inner ledger.AccountResolver, m *Mapping) ledger.AccountResolver {
	if m == nil {
		return inner
	}
	return &Resolver{inner: inner, m: m}
}

// AssetLabel resolves and remaps an asset label.
func (r *Resolver) AssetLabel(id int64) (string, error) {
	label, err := r.inner.AssetLabel(id)
	if err != nil {
		return "", err
	}
	return r.m.Account(label), nil
}

// AssetCurrency passes through to the wrapped resolver.
func (r *Resolver) AssetCurrency(id int64) (string, error) {
	return r.inner.AssetCurrency(id)
}

// CategoryLabel resolves and remaps a category label.
func (r *Resolver) CategoryLabel(id *int64) (string, error) {
	label, err := r.inner.CategoryLabel(id)
	if err != nil {
		return "", err
	}
	return r.m.Category(label), nil
}
