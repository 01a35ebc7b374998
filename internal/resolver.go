package internal

import (
	"bytes"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// LineResult is one reported line. Text is empty unless line text was requested.
type LineResult struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// resolvePositions turns match offsets into ascending, unique line results.
// Positions are sorted in place and walked once, counting newlines between
// consecutive offsets instead of rescanning from the start of the file.
func resolvePositions(data []byte, positions []int, includeText bool) []LineResult {
	slices.Sort(positions)
	positions = slices.Compact(positions)

	results := make([]LineResult, 0, len(positions))
	line, cursor, last := 1, 0, 0
	for _, pos := range positions {
		line += bytes.Count(data[cursor:pos], []byte{'\n'})
		cursor = pos

		// sorted input: a repeated line can only be the previous one
		if line == last {
			continue
		}
		last = line

		r := LineResult{Line: line}
		if includeText {
			r.Text = lineText(data, pos)
		}
		results = append(results, r)
	}
	return results
}

// lineText returns the line holding pos, without its newline and one trailing CR.
// Invalid UTF-8 is replaced with U+FFFD. The result never aliases data.
func lineText(data []byte, pos int) string {
	start := bytes.LastIndexByte(data[:pos], '\n') + 1
	end := len(data)
	if i := bytes.IndexByte(data[pos:], '\n'); i >= 0 {
		end = pos + i
	}
	raw := bytes.TrimSuffix(data[start:end], []byte{'\r'})

	if utf8.Valid(raw) {
		return string(raw)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}
	return string(out)
}
