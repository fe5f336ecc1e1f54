package repl

import (
	"strings"

	"memprobe/process"
	"memprobe/scan"
)

// Tokenize splits a command line on runs of whitespace. Empty tokens never
// appear; leading and trailing whitespace is ignored.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

// StringNeedle rebuilds the search text for a string where command:
// everything after the apostrophe through the end of the last token.
// Rejoining the tokens collapses internal whitespace runs to single
// spaces, which is the tool's documented behavior.
func StringNeedle(args []string) string {
	return strings.Join(args, " ")[1:]
}

// ParseOffset parses a pointer-width module offset, decimal or 0x hex.
func ParseOffset(text string) (process.ModuleOffset, error) {
	v, err := scan.Parse(scan.Uint64, text)
	if err != nil {
		return 0, err
	}
	return process.ModuleOffset(v.Uint()), nil
}

// ParseCount parses a signed element count for scan and pointers.
func ParseCount(text string) (int, error) {
	v, err := scan.Parse(scan.Int64, text)
	if err != nil {
		return 0, err
	}
	return int(v.Int()), nil
}
