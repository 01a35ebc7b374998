package internal

import (
	"fmt"
	"regexp/syntax"
	"strings"
	"sync"
)

// Unicode definitions of the Perl classes. regexp keeps \d, \w and \s ASCII,
// so in unicode mode they are spelled out before compiling. Each ends with a
// \p group so a following '-' inside a class stays a literal.
const (
	uniDigit = `\p{Nd}`
	uniWord  = `\x{200c}\x{200d}\p{L}\p{M}\p{Nd}\p{Nl}\p{Pc}`
	uniSpace = `\s\v\x{85}\p{Z}`
)

var (
	notUniWord  = sync.OnceValue(func() string { return complementText(uniWord) })
	notUniSpace = sync.OnceValue(func() string { return complementText(uniSpace) })
)

// complementText spells [^class] as explicit ranges, usable inside another class.
func complementText(class string) string {
	re, err := syntax.Parse("[^"+class+"]", syntax.Perl)
	if err != nil || re.Op != syntax.OpCharClass {
		panic(fmt.Sprintf("unicode class %s: op %v, err %v", class, re, err))
	}
	return rangesText(re.Rune)
}

// unicodeClasses replaces \d \D \w \W \s \S with their Unicode definitions,
// both on their own and inside bracket expressions.
func unicodeClasses(p string) string {
	var b strings.Builder
	for i := 0; i < len(p); {
		switch p[i] {
		case '\\':
			n := escapeLen(p[i:])
			b.WriteString(unicodePerl(p[i:i+n], false))
			i += n
		case '[':
			n := classLen(p[i:])
			expr := p[i : i+n]
			for j := 0; j < len(expr); {
				if expr[j] != '\\' {
					b.WriteByte(expr[j])
					j++
					continue
				}
				m := escapeLen(expr[j:])
				b.WriteString(unicodePerl(expr[j:j+m], true))
				j += m
			}
			i += n
		default:
			b.WriteByte(p[i])
			i++
		}
	}
	return b.String()
}

func unicodePerl(esc string, inClass bool) string {
	if len(esc) != 2 {
		return esc
	}
	wrap := func(class string) string {
		if inClass {
			return class
		}
		return "[" + class + "]"
	}
	switch esc[1] {
	case 'd':
		return uniDigit
	case 'D':
		return `\P{Nd}`
	case 'w':
		return wrap(uniWord)
	case 's':
		return wrap(uniSpace)
	case 'W':
		if inClass {
			return notUniWord()
		}
		return "[^" + uniWord + "]"
	case 'S':
		if inClass {
			return notUniSpace()
		}
		return "[^" + uniSpace + "]"
	}
	return esc
}
