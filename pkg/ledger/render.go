package ledger

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Renderer serializes merged entries into the textual ledger format.
// It tracks the running year across the whole pass: a year section
// marker precedes the first block of each new year, and dates inside a
// section omit the year.
type Renderer struct {
	w    io.Writer
	year int
}

// NewRenderer writes ledger text to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Begin emits the leading file marker.
func (r *Renderer) Begin() error {
	_, err := io.WriteString(r.w, "; generated file\n")
	return err
}

// Finish emits the trailing editor hint.
func (r *Renderer) Finish() error {
	_, err := io.WriteString(r.w, "; ex:ft=ledger\n")
	return err
}

// Render writes one entry block, preceded by a year marker when the
// entry opens a new year, and followed by a blank line.
func (r *Renderer) Render(e *Entry) error {
	if y := e.When.Year(); y != r.year {
		if _, err := fmt.Fprintf(r.w, "\nY%d\n\n", y); err != nil {
			return err
		}
		r.year = y
	}
	if _, err := io.WriteString(r.w, r.block(e)+"\n"); err != nil {
		return err
	}
	return nil
}

// block renders an entry without the surrounding blank lines.
func (r *Renderer) block(e *Entry) string {
	var lines []string

	date := e.When.Format("2006/01/02")
	if e.When.Year() == r.year {
		date = e.When.Format("01/02")
	}
	clock := e.When.Format("15:04")

	header := date + " *"
	if e.Payee != "" {
		// With a payee the time annotation shares the header line;
		// without one it gets a line of its own.
		header += " " + e.Payee + "  ; time: " + clock
		lines = append(lines, header)
	} else {
		lines = append(lines, header, "    ; time: "+clock)
	}

	if e.Comment != "" {
		lines = append(lines, "    ; note: "+e.Comment)
	}

	refs := make([]string, 0, len(e.Refs))
	for hash := range e.Refs {
		refs = append(refs, hash)
	}
	sort.Strings(refs)
	for _, hash := range refs {
		lines = append(lines, "    ; ref:"+hash)
	}

	accounts := make([]string, 0, len(e.Flows))
	for acc := range e.Flows {
		accounts = append(accounts, acc)
	}
	sort.Strings(accounts)
	for _, acc := range accounts {
		for _, flow := range e.Flows[acc] {
			lines = append(lines, fmt.Sprintf("    %-26s  %16s", acc, flow))
			if flow.Payee != "" {
				lines = append(lines, "    ; payee: "+flow.Payee)
			}
			if flow.Comment != "" {
				lines = append(lines, "    ; note: "+flow.Comment)
			}
		}
	}

	return strings.Join(lines, "\n") + "\n"
}

// Run drains a merged entry stream through the renderer, framing the
// output with the begin and finish markers.
func (r *Renderer) Run(entries EntrySource) error {
	if err := r.Begin(); err != nil {
		return err
	}
	for {
		entry, err := entries.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := r.Render(entry); err != nil {
			return err
		}
	}
	return r.Finish()
}
