package ledger

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Exclusions is the set of reference hashes to drop from the output.
// Rows whose hash appears here are skipped by the Extractor, which
// makes re-imports idempotent across runs.
type Exclusions map[string]struct{}

// Contains reports whether a reference hash is excluded.
func (x Exclusions) Contains(hash string) bool {
	_, ok := x[hash]
	return ok
}

// Add inserts a hash, lowercased.
func (x Exclusions) Add(hash string) {
	x[strings.ToLower(hash)] = struct{}{}
}

var refPattern = regexp.MustCompile(`ref:([0-9a-fA-F]+)`)

// ParseExclusions collects every "ref:" followed by exactly 40
// hexadecimal characters from free-form text. Longer or shorter hex
// runs do not count; Go's regexp has no lookahead, so the maximal run
// is matched and its length checked.
func ParseExclusions(text string) Exclusions {
	set := make(Exclusions)
	for _, m := range refPattern.FindAllStringSubmatch(text, -1) {
		if len(m[1]) == sha1HexLen {
			set.Add(m[1])
		}
	}
	return set
}

const sha1HexLen = 40

// LoadExclusions reads and unions exclusion files.
func LoadExclusions(paths []string) (Exclusions, error) {
	set := make(Exclusions)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read exclusion file: %w", err)
		}
		for hash := range ParseExclusions(string(data)) {
			set.Add(hash)
		}
	}
	return set, nil
}
