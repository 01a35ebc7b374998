package internal

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Lexing helpers for rewriting pattern text before it reaches regexp.
// They follow the regexp/syntax grammar closely enough to find where an
// escape or a bracket expression ends; validity is left to the parser.

// escapeLen is the length of the escape sequence at the start of s (s[0] == '\\').
func escapeLen(s string) int {
	if len(s) < 2 {
		return len(s)
	}
	switch c := s[1]; {
	case c == 'Q':
		if i := strings.Index(s[2:], `\E`); i >= 0 {
			return 2 + i + 2
		}
		return len(s)
	case c == 'x' || c == 'p' || c == 'P':
		if len(s) > 2 && s[2] == '{' {
			if i := strings.IndexByte(s, '}'); i >= 0 {
				return i + 1
			}
			return len(s)
		}
		if c == 'x' {
			return min(4, len(s))
		}
		return min(3, len(s))
	case '0' <= c && c <= '7':
		n := 2
		for n < len(s) && n < 4 && '0' <= s[n] && s[n] <= '7' {
			n++
		}
		return n
	}
	_, size := utf8.DecodeRuneInString(s[1:])
	return 1 + size
}

// classLen is the length of the bracket expression at the start of s (s[0] == '[').
// An unterminated class runs to the end of s.
func classLen(s string) int {
	i := 1
	if i < len(s) && s[i] == '^' {
		i++
	}
	// ']' right after the opening bracket is a literal
	if i < len(s) && s[i] == ']' {
		i++
	}
	for i < len(s) {
		switch {
		case s[i] == '\\':
			i += escapeLen(s[i:])
		case strings.HasPrefix(s[i:], "[:"):
			if j := strings.Index(s[i+2:], ":]"); j >= 0 {
				i += j + 4
			} else {
				i++
			}
		case s[i] == ']':
			return i + 1
		default:
			i++
		}
	}
	return len(s)
}

// rangesText renders rune range pairs as the body of a bracket expression.
func rangesText(ranges []rune) string {
	var b strings.Builder
	for i := 0; i+1 < len(ranges); i += 2 {
		if ranges[i] == ranges[i+1] {
			fmt.Fprintf(&b, `\x{%x}`, ranges[i])
		} else {
			fmt.Fprintf(&b, `\x{%x}-\x{%x}`, ranges[i], ranges[i+1])
		}
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return r < utf8.RuneSelf && ('a' <= r|0x20 && r|0x20 <= 'z')
}
