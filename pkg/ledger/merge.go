package ledger

import (
	"io"
	"sort"
)

// EntrySource is a pull stream of entries, exhausted with io.EOF.
type EntrySource interface {
	Next() (*Entry, error)
}

// Merger coalesces consecutive entries that share an identical
// timestamp into one entry: split postings land here, but so do
// coincidental collisions of unrelated transactions at the same
// second. It buffers at most one accumulation group.
type Merger struct {
	src EntrySource

	cur    *Entry
	merged bool // cur was built from more than one source entry
	done   bool
}

// NewMerger wraps an entry stream, which must be ascending by
// timestamp.
func NewMerger(src EntrySource) *Merger {
	return &Merger{src: src}
}

// Next returns the next finalized entry, one per distinct timestamp,
// or io.EOF when the upstream is drained.
func (m *Merger) Next() (*Entry, error) {
	if m.done {
		return nil, io.EOF
	}
	for {
		entry, err := m.src.Next()
		if err == io.EOF {
			m.done = true
			if m.cur == nil {
				return nil, io.EOF
			}
			return m.finalize()
		}
		if err != nil {
			return nil, err
		}
		if m.cur == nil {
			m.cur = entry
			m.merged = false
			continue
		}
		if !entry.When.Equal(m.cur.When) {
			out, err := m.finalize()
			m.cur = entry
			m.merged = false
			return out, err
		}
		m.accumulate(entry)
	}
}

// accumulate folds an entry with the same timestamp into the working
// group: refs are unioned, flow lists concatenated per account.
func (m *Merger) accumulate(entry *Entry) {
	m.merged = true
	for hash := range entry.Refs {
		m.cur.AddRef(hash)
	}
	for acc, flows := range entry.Flows {
		m.cur.Flows[acc] = append(m.cur.Flows[acc], flows...)
	}
}

// finalize reconciles payee and comment consensus and, for groups
// built from several entries, collapses each account's postings to
// the minimal set.
func (m *Merger) finalize() (*Entry, error) {
	cur := m.cur
	m.cur = nil

	reconcile(cur.Flows, &cur.Payee,
		func(f *Flow) *string { return &f.Payee })
	reconcile(cur.Flows, &cur.Comment,
		func(f *Flow) *string { return &f.Comment })

	if m.merged {
		for acc, flows := range cur.Flows {
			collapsed, err := collapse(flows)
			if err != nil {
				return nil, err
			}
			cur.Flows[acc] = collapsed
		}
	}
	return cur, nil
}

// reconcile applies the consensus rule to one annotation field: with
// exactly one distinct non-empty value across the group's flows and
// the group itself, that value becomes the group's and the redundant
// per-flow copies are stripped; with more than one, the group value is
// cleared and the per-flow values stay.
func reconcile(flows map[string][]Flow, group *string, field func(*Flow) *string) {
	distinct := make(map[string]struct{})
	if *group != "" {
		distinct[*group] = struct{}{}
	}
	for _, fs := range flows {
		for i := range fs {
			if v := *field(&fs[i]); v != "" {
				distinct[v] = struct{}{}
			}
		}
	}
	switch len(distinct) {
	case 0:
		*group = ""
	case 1:
		for v := range distinct {
			*group = v
		}
		for _, fs := range flows {
			for i := range fs {
				*field(&fs[i]) = ""
			}
		}
	default:
		*group = ""
	}
}

type flowKey struct {
	positive bool
	currency string
	payee    string
	comment  string
}

func (k flowKey) less(o flowKey) bool {
	if k.positive != o.positive {
		return !k.positive
	}
	if k.currency != o.currency {
		return k.currency < o.currency
	}
	if k.payee != o.payee {
		return k.payee < o.payee
	}
	return k.comment < o.comment
}

// collapse sums an account's flows within groups of equal sign,
// currency, payee and comment, producing the minimal posting set. The
// order is by group key, negative flows first.
func collapse(flows []Flow) ([]Flow, error) {
	groups := make(map[flowKey][]Flow)
	keys := make([]flowKey, 0, len(flows))
	for _, f := range flows {
		k := flowKey{f.Amount > 0, f.Currency, f.Payee, f.Comment}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], f)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	out := make([]Flow, 0, len(keys))
	for _, k := range keys {
		sum := groups[k][0]
		for _, f := range groups[k][1:] {
			var err error
			sum, err = sum.Add(f)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, sum)
	}
	return out, nil
}
