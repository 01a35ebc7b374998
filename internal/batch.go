package internal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

var ErrBadRequest = errors.New("malformed request")

const maxRequestLine = 16 << 20

// BatchRequest is one JSON line of batch input.
type BatchRequest struct {
	ID           string   `json:"id,omitempty"`
	Path         string   `json:"path"`
	Patterns     []string `json:"patterns"`
	Unicode      bool     `json:"unicode"`
	IncludeLines bool     `json:"include_lines"`
}

// BatchResponse is reported to a callback, one per request.
// Results is never nil; Error is informational only.
type BatchResponse struct {
	ID      string       `json:"id,omitempty"`
	Path    string       `json:"path"`
	Results []LineResult `json:"results"`
	Error   string       `json:"error,omitempty"`

	Err error `json:"-"`
}

type task struct {
	lineNo int
	req    BatchRequest
	err    error
}

// BatchRunner answers JSON-lines search requests on a worker pool.
type BatchRunner struct {
	opts      BatchOptions
	searchers *searcherSet
}

// searcherSet hands Searchers to batch workers. A request prefers the slot
// its pattern set hashes to, so interleaved pattern sets keep hitting their
// own compiled set instead of evicting each other. When that slot is busy any
// free one is taken.
type searcherSet struct {
	slots []*searcherSlot
}

type searcherSlot struct {
	mu sync.Mutex
	s  *Searcher
}

func newSearcherSet(n int) *searcherSet {
	set := &searcherSet{slots: make([]*searcherSlot, n)}
	for i := range set.slots {
		set.slots[i] = &searcherSlot{s: NewSearcher()}
	}
	return set
}

// acquire locks a slot for one request. With as many slots as workers a free
// slot always exists, so the blocking fallback is rarely reached.
func (ss *searcherSet) acquire(patterns []string, unicode bool) *searcherSlot {
	n := len(ss.slots)
	start := int(keyDigest(patterns, unicode) % uint64(n))
	for i := 0; i < n; i++ {
		if slot := ss.slots[(start+i)%n]; slot.mu.TryLock() {
			return slot
		}
	}
	slot := ss.slots[start]
	slot.mu.Lock()
	return slot
}

func (sl *searcherSlot) release() { sl.mu.Unlock() }

// cacheStats sums the cache counters of every slot. Call it with no request in flight.
func (ss *searcherSet) cacheStats() (hits, compiles int) {
	for _, slot := range ss.slots {
		h, c := slot.s.CacheStats()
		hits += h
		compiles += c
	}
	return hits, compiles
}

func NewBatchRunner(opts BatchOptions) *BatchRunner {
	opts.Prepare()
	return &BatchRunner{opts: opts}
}

// NewResponseSink returns a closure writing one JSON line per response and updating counters.
func NewResponseSink(w io.Writer, stats *BatchStats) func(BatchResponse) {
	stats.Start()
	var mu sync.Mutex
	enc := json.NewEncoder(w)

	return func(res BatchResponse) {
		stats.Requests.Add(1)
		switch {
		case res.Err != nil && !errors.Is(res.Err, ErrNoMatch):
			stats.Errors.Add(1)
			logrus.WithFields(logrus.Fields{"id": res.ID, "file": res.Path, "err": res.Err}).Warn("request failed")
		case len(res.Results) == 0:
			stats.Empty.Add(1)
		default:
			stats.Matched.Add(1)
			logrus.WithFields(logrus.Fields{"id": res.ID, "file": res.Path, "lines": len(res.Results)}).Debug("Match found")
		}

		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(res); err != nil {
			logrus.WithError(err).Error("write response")
		}
	}
}

// Run reads requests from in until EOF and reports every response to onResult.
// Each worker borrows one Searcher for the duration of a request. When reading
// stops on an error, requests already read are still answered before the
// error is returned. Cancellation returns once in-flight requests finish.
func (r *BatchRunner) Run(ctx context.Context, in io.Reader, onResult func(BatchResponse)) error {
	threads := r.opts.Threads
	r.searchers = newSearcherSet(threads)

	var bar *progressbar.ProgressBar
	if r.opts.Progress {
		bar = newProgressBar()
		defer bar.Finish()
	}

	var (
		read      atomic.Int64
		processed atomic.Int64
		failed    atomic.Int64
		wg        sync.WaitGroup
	)

	pool, err := ants.NewPoolWithFunc(threads, func(i interface{}) {
		defer wg.Done()
		t := i.(task)

		slot := r.searchers.acquire(t.req.Patterns, t.req.Unicode)
		resp := runTask(slot.s, t)
		slot.release()

		processed.Add(1)
		if resp.Error != "" {
			failed.Add(1)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		onResult(resp)
	})
	if err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	defer pool.Release()

	// reader
	reqCh := make(chan task, 2*threads)
	readErr := make(chan error, 1)
	go func() {
		defer close(readErr)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), maxRequestLine)
		lineNo := 0
		for sc.Scan() {
			lineNo++
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			t := task{lineNo: lineNo}
			if err := json.Unmarshal(line, &t.req); err != nil {
				t.err = fmt.Errorf("%w: line %d: %v", ErrBadRequest, lineNo, err)
				if r.opts.FailFast {
					readErr <- t.err
					return
				}
			}
			read.Add(1)
			select {
			case reqCh <- t:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
		if err := sc.Err(); err != nil {
			readErr <- fmt.Errorf("read requests: %w", err)
		}
	}()

	// periodic stats
	ticker := time.NewTicker(r.opts.StatsEvery)
	defer ticker.Stop()

	var stopErr error
	for {
		select {
		case t, ok := <-reqCh:
			if !ok {
				wg.Wait()
				return stopErr
			}
			wg.Add(1)
			if err := pool.Invoke(t); err != nil {
				wg.Done()
				logrus.WithError(err).Error("submit request")
				if r.opts.FailFast {
					wg.Wait()
					return err
				}
			}
		case <-ticker.C:
			logrus.Infof("Stats: read=%d processed=%d errors=%d",
				read.Load(), processed.Load(), failed.Load())
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case err := <-readErr:
			// reader done - no more sends; answer what is queued, then stop
			stopErr = err
			readErr = nil
			close(reqCh)
		}
	}
}

// CacheStats sums compiled-set cache hits and compiles over the last Run.
func (r *BatchRunner) CacheStats() (hits, compiles int) {
	if r.searchers == nil {
		return 0, 0
	}
	return r.searchers.cacheStats()
}

func runTask(s *Searcher, t task) BatchResponse {
	resp := BatchResponse{ID: t.req.ID, Path: t.req.Path, Results: []LineResult{}}
	if t.err != nil {
		resp.Err, resp.Error = t.err, t.err.Error()
		return resp
	}

	res, err := s.Search(Request{
		Path:        t.req.Path,
		Patterns:    t.req.Patterns,
		Unicode:     t.req.Unicode,
		IncludeText: t.req.IncludeLines,
	})
	switch {
	case errors.Is(err, ErrNoMatch):
		resp.Err = err
	case err != nil:
		resp.Err, resp.Error = err, err.Error()
	default:
		resp.Results = res
	}
	return resp
}

func newProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("searching"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}
