package internal

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoPatterns = errors.New("no patterns given")
	ErrCompile    = errors.New("pattern does not compile")
	ErrOpen       = errors.New("cannot map file")
	ErrNoMatch    = errors.New("not every pattern matched")
)

// Request is one single-file search.
type Request struct {
	Path        string
	Patterns    []string
	Unicode     bool
	IncludeText bool
}

// Searcher runs searches and keeps the last compiled pattern set.
// A Searcher is not safe for concurrent use: give every goroutine its own.
type Searcher struct {
	cached *matcherSet

	hits     int
	compiles int
}

// NewSearcher returns a Searcher with an empty cache slot.
func NewSearcher() *Searcher { return &Searcher{} }

// Search returns the lines of req.Path matched by any pattern, provided every
// pattern matches somewhere in the file. Failures wrap ErrNoPatterns,
// ErrCompile, ErrOpen or ErrNoMatch.
func (s *Searcher) Search(req Request) ([]LineResult, error) {
	if len(req.Patterns) == 0 {
		return nil, ErrNoPatterns
	}
	set, err := s.getOrCompile(req.Patterns, req.Unicode)
	if err != nil {
		return nil, err
	}

	view, err := OpenView(req.Path)
	if err != nil {
		return nil, err
	}
	defer view.Close()

	positions := matchAll(view.Bytes(), set.res)
	if len(positions) == 0 {
		return nil, ErrNoMatch
	}
	return resolvePositions(view.Bytes(), positions, req.IncludeText), nil
}

// SearchFile is Search with every failure reported as an empty result.
func (s *Searcher) SearchFile(path string, patterns []string, unicode, includeText bool) []LineResult {
	res, err := s.Search(Request{Path: path, Patterns: patterns, Unicode: unicode, IncludeText: includeText})
	if err != nil {
		logrus.WithFields(logrus.Fields{"file": path, "err": err}).Debug("Search returned nothing")
		return []LineResult{}
	}
	return res
}

// CachedKey is the cache key of the compiled set currently held, or "".
func (s *Searcher) CachedKey() string {
	if s.cached == nil {
		return ""
	}
	return s.cached.key
}

// CacheStats returns how many searches reused the cached set and how many compiled a new one.
func (s *Searcher) CacheStats() (hits, compiles int) { return s.hits, s.compiles }

var searchers = sync.Pool{New: func() any { return NewSearcher() }}

// SearchFile runs one search on a pooled Searcher. Concurrent callers never
// share a Searcher while a search is in flight.
func SearchFile(path string, patterns []string, unicode, includeText bool) []LineResult {
	s := searchers.Get().(*Searcher)
	defer searchers.Put(s)
	return s.SearchFile(path, patterns, unicode, includeText)
}
