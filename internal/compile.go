package internal

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
)

// keySep separates patterns inside a cache key. The key is for display and
// routing only; cache hits compare the pattern lists themselves.
const keySep = "\x00"

// matcherSet is every pattern of one request compiled under one configuration.
type matcherSet struct {
	key      string
	patterns []string
	unicode  bool
	res      []*regexp.Regexp
}

// compiledFor reports whether the set was built from exactly these patterns.
func (m *matcherSet) compiledFor(patterns []string, unicode bool) bool {
	return m.unicode == unicode && slices.Equal(m.patterns, patterns)
}

// CacheKey identifies a compiled matcher set: the patterns joined with NUL,
// then NUL and '1' or '0' for the unicode flag.
func CacheKey(patterns []string, unicode bool) string {
	var b strings.Builder
	for i, p := range patterns {
		if i > 0 {
			b.WriteString(keySep)
		}
		b.WriteString(p)
	}
	b.WriteString(keySep)
	b.WriteByte(unicodeFlag(unicode))
	return b.String()
}

func unicodeFlag(unicode bool) byte {
	if unicode {
		return '1'
	}
	return '0'
}

// keyDigest is xxhash of CacheKey(patterns, unicode), computed without building
// the key. Batch workers use it to route a pattern set to the same Searcher.
func keyDigest(patterns []string, unicode bool) uint64 {
	d := xxhash.New()
	for i, p := range patterns {
		if i > 0 {
			_, _ = d.WriteString(keySep)
		}
		_, _ = d.WriteString(p)
	}
	_, _ = d.Write([]byte{keySep[0], unicodeFlag(unicode)})
	return d.Sum64()
}

// getOrCompile returns the cached set when it was built from the same patterns
// and flag, otherwise compiles every pattern and replaces the slot. A failed
// compile leaves the slot alone.
func (s *Searcher) getOrCompile(patterns []string, unicode bool) (*matcherSet, error) {
	if len(patterns) == 0 {
		return &matcherSet{}, nil
	}

	if c := s.cached; c != nil && c.compiledFor(patterns, unicode) {
		s.hits++
		return c, nil
	}

	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := compilePattern(p, unicode)
		if err != nil {
			logrus.WithFields(logrus.Fields{"pattern": p, "unicode": unicode}).Debugf("compile failed: %v", err)
			return nil, fmt.Errorf("%w: %q: %v", ErrCompile, p, err)
		}
		res = append(res, re)
	}

	s.cached = &matcherSet{
		key:      CacheKey(patterns, unicode),
		patterns: slices.Clone(patterns),
		unicode:  unicode,
		res:      res,
	}
	s.compiles++
	logrus.Debugf("Compiled %d patterns (unicode=%t)", len(res), unicode)
	return s.cached, nil
}

// compilePattern compiles p case-insensitive with multi-line anchors.
// Unicode mode gets Unicode Perl classes and Unicode case folding. Byte mode
// rejects \p{..} and folds ASCII letters only.
func compilePattern(p string, unicode bool) (*regexp.Regexp, error) {
	if unicode {
		if _, err := syntax.Parse(p, syntax.Perl); err != nil {
			return nil, err
		}
		return regexp.Compile("(?im)" + unicodeClasses(p))
	}

	if _, err := syntax.Parse(p, byteFlags); err != nil {
		return nil, err
	}
	return regexp.Compile("(?m)" + asciiFoldPattern(p))
}
