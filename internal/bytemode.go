package internal

import (
	"regexp"
	"regexp/syntax"
	"slices"
	"strings"
	"unicode"
)

// byteFlags parse a pattern in byte mode: Perl syntax without \p{..} groups.
// Folding is never left to the parser, whose case folding is Unicode-wide.
const byteFlags = syntax.Perl &^ (syntax.OneLine | syntax.UnicodeGroups)

// asciiFoldPattern rewrites a valid byte-mode pattern so that every ASCII
// letter also matches its other case and nothing else: letters become [Xx],
// bracket expressions get the counterpart of each letter range before any
// negation. Non-ASCII runes are left exact. Inline (?i) and (?-i) toggle the
// folding for the rest of their group and are removed from the text.
func asciiFoldPattern(p string) string {
	var (
		b     strings.Builder
		fold  = true
		saved []bool
	)
	for i := 0; i < len(p); {
		switch c := p[i]; {
		case c == '\\':
			n := escapeLen(p[i:])
			switch esc := p[i : i+n]; {
			case !fold:
				b.WriteString(esc)
			case strings.HasPrefix(esc, `\Q`):
				writeFoldedQuote(&b, strings.TrimSuffix(esc[2:], `\E`))
			default:
				b.WriteString(foldEscape(esc))
			}
			i += n
		case c == '[':
			n := classLen(p[i:])
			if fold {
				b.WriteString(foldClass(p[i : i+n]))
			} else {
				b.WriteString(p[i : i+n])
			}
			i += n
		case c == '(':
			saved = append(saved, fold)
			n, text, groupFold, scoped := groupHead(p[i:], fold)
			if !scoped {
				// (?flags) changes the enclosing group and opens nothing
				saved = saved[:len(saved)-1]
			}
			fold = groupFold
			b.WriteString(text)
			i += n
		case c == ')':
			if len(saved) > 0 {
				fold, saved = saved[len(saved)-1], saved[:len(saved)-1]
			}
			b.WriteByte(c)
			i++
		case fold && isASCIILetter(rune(c)):
			writeLetterClass(&b, rune(c))
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// groupHead reads the group opener at the start of s (s[0] == '(').
// It returns the bytes consumed, the text to emit, the folding state inside
// and whether a new group was opened.
func groupHead(s string, fold bool) (n int, text string, inner bool, scoped bool) {
	if !strings.HasPrefix(s, "(?") {
		return 1, "(", fold, true
	}
	if strings.HasPrefix(s, "(?P<") || strings.HasPrefix(s, "(?<") {
		end := strings.IndexByte(s, '>')
		if end < 0 {
			end = len(s) - 1
		}
		return end + 1, s[:end+1], fold, true
	}

	j := 2
	for j < len(s) && strings.IndexByte("imsU-", s[j]) >= 0 {
		j++
	}
	if j == len(s) || (s[j] != ')' && s[j] != ':') {
		return 2, "(?", fold, true
	}

	var on, off []byte
	negated := false
	for _, f := range []byte(s[2:j]) {
		switch {
		case f == '-':
			negated = true
		case f == 'i':
			fold = !negated
		case negated:
			off = append(off, f)
		default:
			on = append(on, f)
		}
	}
	flags := string(on)
	if len(off) > 0 {
		flags += "-" + string(off)
	}

	if s[j] == ':' {
		return j + 1, "(?" + flags + ":", fold, true
	}
	if flags == "" {
		return j + 1, "", fold, false
	}
	return j + 1, "(?" + flags + ")", fold, false
}

func writeLetterClass(b *strings.Builder, r rune) {
	b.WriteByte('[')
	b.WriteRune(r &^ 0x20)
	b.WriteRune(r | 0x20)
	b.WriteByte(']')
}

func writeFoldedQuote(b *strings.Builder, quoted string) {
	for _, r := range quoted {
		if isASCIILetter(r) {
			writeLetterClass(b, r)
		} else {
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
}

// foldEscape widens hex and octal escapes that spell an ASCII letter.
func foldEscape(esc string) string {
	if len(esc) < 2 || (esc[1] != 'x' && (esc[1] < '0' || esc[1] > '7')) {
		return esc
	}
	re, err := syntax.Parse(esc, byteFlags)
	if err != nil || re.Op != syntax.OpLiteral || len(re.Rune) != 1 || !isASCIILetter(re.Rune[0]) {
		return esc
	}
	var b strings.Builder
	writeLetterClass(&b, re.Rune[0])
	return b.String()
}

// foldClass adds ASCII case counterparts to a bracket expression. The class
// is folded before it is negated, so [^a] excludes both 'a' and 'A' but still
// matches U+017F and U+212A.
func foldClass(expr string) string {
	body, neg := expr[1:], ""
	if strings.HasPrefix(body, "^") {
		body, neg = body[1:], "^"
	}
	re, err := syntax.Parse("["+body, byteFlags)
	if err != nil {
		return expr
	}

	var ranges []rune
	switch re.Op {
	case syntax.OpCharClass:
		ranges = slices.Clone(re.Rune)
	case syntax.OpLiteral:
		// the parser turns [Aa] and other fold pairs into a folded literal
		for _, r := range re.Rune {
			ranges = append(ranges, r, r)
			if re.Flags&syntax.FoldCase != 0 {
				for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
					ranges = append(ranges, f, f)
				}
			}
		}
	default:
		return expr
	}
	return "[" + neg + rangesText(withASCIICounterparts(ranges)) + "]"
}

// withASCIICounterparts appends the other-case range of every ASCII letter range.
func withASCIICounterparts(ranges []rune) []rune {
	out := slices.Clone(ranges)
	for i := 0; i+1 < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		if l, h := max(lo, 'a'), min(hi, 'z'); l <= h {
			out = append(out, l-0x20, h-0x20)
		}
		if l, h := max(lo, 'A'), min(hi, 'Z'); l <= h {
			out = append(out, l+0x20, h+0x20)
		}
	}
	return out
}
