// Package trace records engine spans for the in-app trace panel and, when
// configured, exports them over OTLP.
package trace

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Span is a finished operation as shown in the trace panel.
type Span struct {
	TraceID    string
	SpanID     string
	ParentID   string
	Name       string
	StartTime  time.Time
	Duration   time.Duration
	Attributes map[string]string
	Err        string
	Children   []*Span
}

// Failed reports whether the operation ended with an error status.
func (s *Span) Failed() bool { return s.Err != "" }

// Recorder is a span processor keeping the most recent finished spans in a
// ring buffer.
type Recorder struct {
	mu       sync.RWMutex
	spans    []*Span
	next     int
	full     bool
	onChange func()
}

var _ sdktrace.SpanProcessor = (*Recorder)(nil)

// NewRecorder keeps up to size spans (default 200).
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = 200
	}
	return &Recorder{spans: make([]*Span, size)}
}

// OnStart implements sdktrace.SpanProcessor.
func (r *Recorder) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd implements sdktrace.SpanProcessor.
func (r *Recorder) OnEnd(s sdktrace.ReadOnlySpan) {
	span := &Span{
		TraceID:    s.SpanContext().TraceID().String(),
		SpanID:     s.SpanContext().SpanID().String(),
		Name:       s.Name(),
		StartTime:  s.StartTime(),
		Duration:   s.EndTime().Sub(s.StartTime()),
		Attributes: make(map[string]string, len(s.Attributes())),
	}
	if s.Parent().IsValid() {
		span.ParentID = s.Parent().SpanID().String()
	}
	for _, kv := range s.Attributes() {
		span.Attributes[strings.TrimPrefix(string(kv.Key), "workbench.")] = kv.Value.Emit()
	}
	if st := s.Status(); st.Code == codes.Error {
		span.Err = st.Description
		if span.Err == "" {
			span.Err = "error"
		}
	}

	r.mu.Lock()
	r.spans[r.next] = span
	r.next = (r.next + 1) % len(r.spans)
	if r.next == 0 {
		r.full = true
	}
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Shutdown implements sdktrace.SpanProcessor.
func (r *Recorder) Shutdown(context.Context) error { return nil }

// ForceFlush implements sdktrace.SpanProcessor.
func (r *Recorder) ForceFlush(context.Context) error { return nil }

// SetOnChange sets a callback run after each recorded span. It is called
// from whichever goroutine ended the span.
func (r *Recorder) SetOnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Recent returns finished spans newest first.
func (r *Recorder) Recent() []*Span {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.next
	if r.full {
		n = len(r.spans)
	}
	out := make([]*Span, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, r.spans[(r.next-i+len(r.spans))%len(r.spans)])
	}
	return out
}

// Trees groups the recent spans by parent. Roots are returned newest first;
// a span whose parent has been evicted is treated as a root.
func (r *Recorder) Trees() []*Span {
	recent := r.Recent()
	byID := make(map[string]*Span, len(recent))
	for _, s := range recent {
		c := *s
		c.Children = nil
		byID[s.SpanID] = &c
	}
	var roots []*Span
	// Oldest first so children end up in start order.
	for i := len(recent) - 1; i >= 0; i-- {
		s := byID[recent[i].SpanID]
		if p, ok := byID[s.ParentID]; ok && s.ParentID != "" {
			p.Children = append(p.Children, s)
			continue
		}
		roots = append(roots, s)
	}
	for i, j := 0, len(roots)-1; i < j; i, j = i+1, j-1 {
		roots[i], roots[j] = roots[j], roots[i]
	}
	return roots
}

// Reset drops all recorded spans.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.spans)
	r.next, r.full = 0, false
}
