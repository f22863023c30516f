package mrcurve

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/codeGROOVE-dev/mrcurve/pkg/curve"
	"github.com/codeGROOVE-dev/mrcurve/pkg/histogram"
)

// RunResult is one engine's output from a Runner pass: its histogram,
// the miss ratio curve derived from it, and any error encountered. When
// Err is non-nil, Curve is nil; Histogram is also nil unless the error
// came from deriving the curve.
type RunResult struct {
	Name      string
	Histogram *histogram.Histogram
	Curve     *curve.Curve
	Err       error
}

// Runner drives several engines over the same trace concurrently, one
// goroutine per engine, matching the single-threaded-per-engine /
// parallel-across-engines concurrency model: engines share only the
// read-only trace slice and otherwise own their state exclusively.
type Runner struct {
	engines *xsync.Map[string, Engine]
}

// NewRunner constructs an empty Runner.
func NewRunner() *Runner {
	return &Runner{engines: xsync.NewMap[string, Engine]()}
}

// Add registers an engine under name. Names must be unique; a second
// Add with the same name replaces the first.
func (r *Runner) Add(name string, e Engine) {
	r.engines.Store(name, e)
}

// Run feeds every key in trace to every registered engine, post-
// processes each, and derives its miss ratio curve. Engines run
// concurrently; a failure in one does not affect the others. Results
// are returned in no particular order.
func (r *Runner) Run(trace []uint64) []RunResult {
	results := xsync.NewMap[string, *RunResult]()
	var wg sync.WaitGroup

	r.engines.Range(func(name string, eng Engine) bool {
		wg.Add(1)
		go func(name string, eng Engine) {
			defer wg.Done()
			results.Store(name, runOne(name, eng, trace))
		}(name, eng)
		return true
	})
	wg.Wait()

	out := make([]RunResult, 0, results.Size())
	results.Range(func(_ string, res *RunResult) bool {
		out = append(out, *res)
		return true
	})
	return out
}

func runOne(name string, eng Engine, trace []uint64) *RunResult {
	for _, key := range trace {
		if err := eng.Access(key); err != nil {
			return &RunResult{Name: name, Err: err}
		}
	}
	if err := eng.PostProcess(); err != nil {
		return &RunResult{Name: name, Err: err}
	}
	hist := eng.Histogram()
	c, err := curve.FromHistogram(hist)
	if err != nil {
		return &RunResult{Name: name, Histogram: hist, Err: err}
	}
	return &RunResult{Name: name, Histogram: hist, Curve: c}
}
