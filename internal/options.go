package internal

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// SearchOptions - options of a single-file search from CLI.
type SearchOptions struct {
	Path        string
	Patterns    []string
	PatternFile string
	Unicode     bool
	IncludeText bool
	JSON        bool
}

// Validate checks invariants.
func (o *SearchOptions) Validate() error {
	if o.Path == "" {
		return errors.New("a file to search is required")
	}
	if len(o.Patterns) == 0 && o.PatternFile == "" {
		return errors.New("at least one --pattern or a --pattern-file is required")
	}
	return nil
}

// Prepare appends the pattern file contents to the inline patterns.
func (o *SearchOptions) Prepare() error {
	if o.PatternFile == "" {
		return nil
	}
	ps, err := LoadPatterns(o.PatternFile)
	if err != nil {
		return fmt.Errorf("pattern-file: %w", err)
	}
	o.Patterns = append(o.Patterns, ps...)
	if len(o.Patterns) == 0 {
		return errors.New("pattern-file holds no patterns")
	}
	return nil
}

// Request builds the core request.
func (o *SearchOptions) Request() Request {
	return Request{Path: o.Path, Patterns: o.Patterns, Unicode: o.Unicode, IncludeText: o.IncludeText}
}

// BatchOptions - options of the JSON-lines batch mode.
type BatchOptions struct {
	Threads    int
	FailFast   bool
	Progress   bool
	StatsEvery time.Duration
}

// Validate checks invariants.
func (o *BatchOptions) Validate() error {
	if o.Threads < 0 {
		return errors.New("threads must not be negative")
	}
	if o.StatsEvery < 0 {
		return errors.New("stats interval must not be negative")
	}
	return nil
}

// Prepare sets sensible defaults.
func (o *BatchOptions) Prepare() {
	if o.Threads <= 0 {
		o.Threads = max(4, runtime.GOMAXPROCS(0))
	}
	if o.StatsEvery == 0 {
		o.StatsEvery = 2 * time.Second
	}
}
