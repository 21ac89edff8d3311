package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeCodeBase trims and lower-cases a user supplied code base
func NormalizeCodeBase(base string) string {
	return strings.ToLower(strings.TrimSpace(base))
}

// GenerateCode appends a sequence number, at least two digits wide, to base.
// An empty base yields an empty code.
func GenerateCode(base string, seq int) string {
	base = NormalizeCodeBase(base)
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s%02d", base, seq)
}

// CodeSequence extracts the sequence number from a code generated for base.
// Comparison ignores case. Codes that only share the prefix, such as
// "widget" for "wid", report false.
func CodeSequence(base, code string) (int, bool) {
	base = NormalizeCodeBase(base)
	tail, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(code)), base)
	if !ok || base == "" || len(tail) < 2 {
		return 0, false
	}
	for _, r := range tail {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	seq, err := strconv.Atoi(tail)
	if err != nil {
		return 0, false
	}
	return seq, true
}
