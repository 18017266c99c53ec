package httpcore

import (
	"context"
	"runtime/pprof"
	"strconv"
	"time"
)

// Metrics is the out-of-scope profiler/dashboard collaborator named in
// spec §6: startRequest()/endRequest(path, status). The no-op variant is
// the default (spec §9, "removes process-wide mutable state").
type Metrics interface {
	StartRequest() RequestTimer
}

// RequestTimer is returned by StartRequest and closed out by EndRequest.
type RequestTimer interface {
	EndRequest(path string, status int)
}

type noopMetrics struct{}

func (noopMetrics) StartRequest() RequestTimer { return noopTimer{} }

type noopTimer struct{}

func (noopTimer) EndRequest(string, int) {}

// NewNoopMetrics returns a Metrics that does no work, the default unless a
// Server is built WithMetrics(...) (spec §6 "enableProfiler").
func NewNoopMetrics() Metrics { return noopMetrics{} }

// pprofMetrics is an opt-in Metrics that measures wall-clock latency per
// request and passes it to runtime/pprof as a label, grounded on the teacher's
// core/utils/profiler package (which wraps runtime/pprof for whole-process
// CPU profiling); here the same stdlib facility is repurposed for
// per-request labeling instead of a whole-run CPU profile.
type pprofMetrics struct{}

// NewPprofMetrics returns a Metrics whose EndRequest builds path, status and
// latency pprof labels and applies them only for the duration of an empty
// pprof.Do call. The handler itself runs without these labels, so profile
// samples taken while a request is being handled do not carry them, and the
// values are not stored anywhere else.
func NewPprofMetrics() Metrics { return pprofMetrics{} }

func (pprofMetrics) StartRequest() RequestTimer {
	return &pprofTimer{start: time.Now()}
}

type pprofTimer struct{ start time.Time }

func (t *pprofTimer) EndRequest(path string, status int) {
	labels := pprof.Labels("path", path, "status", strconv.Itoa(status), "latency_ns", strconv.FormatInt(time.Since(t.start).Nanoseconds(), 10))
	pprof.Do(context.Background(), labels, func(context.Context) {})
}
