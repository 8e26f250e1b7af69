package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// SpanStatus represents the status of a span.
type SpanStatus int

const (
	StatusUnset SpanStatus = iota
	StatusOK
	StatusError
)

// String returns the string representation of the status.
func (s SpanStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	default:
		return "UNSET"
	}
}

// SpanKind describes the relationship between the span and its peers.
type SpanKind int

const (
	SpanKindInternal SpanKind = iota
	SpanKindServer
	SpanKindClient
)

// String returns the lowercase kind name.
func (k SpanKind) String() string {
	switch k {
	case SpanKindServer:
		return "server"
	case SpanKindClient:
		return "client"
	default:
		return "internal"
	}
}

// Span represents a single operation within a trace.
type Span struct {
	TraceID       string
	SpanID        string
	ParentID      string
	Name          string
	Kind          SpanKind
	StartTime     time.Time
	EndTime       time.Time
	Status        SpanStatus
	StatusMessage string
	Attributes    map[string]string

	mu        sync.Mutex
	tracer    *Tracer
	recording bool
}

// End marks the span as ended and hands it to the exporter.
func (s *Span) End() {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return
	}
	s.recording = false
	s.EndTime = time.Now()
	s.mu.Unlock()

	s.tracer.export(s)
}

// SetAttribute sets a key-value attribute on the span.
func (s *Span) SetAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	if s.Attributes == nil {
		s.Attributes = make(map[string]string)
	}
	s.Attributes[key] = value
}

// SetStatus sets the status of the span.
func (s *Span) SetStatus(status SpanStatus, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	s.Status = status
	s.StatusMessage = message
}

// RecordError marks the span as failed with err's message. A nil err is a no-op.
func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}
	s.SetStatus(StatusError, err.Error())
}

// IsRecording reports whether the span still accepts updates.
func (s *Span) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Duration returns the span duration, or zero while it is still open.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// SpanContext holds the identifiers needed for propagation.
type SpanContext struct {
	TraceID string
	SpanID  string
	Sampled bool
}

// IsValid returns true if the span context has valid trace and span IDs.
func (sc SpanContext) IsValid() bool {
	return sc.TraceID != "" && sc.SpanID != ""
}

// Sampler decides whether a trace should be recorded.
type Sampler interface {
	ShouldSample(traceID string) bool
}

// AlwaysSample samples every trace.
type AlwaysSample struct{}

// ShouldSample always returns true.
func (AlwaysSample) ShouldSample(string) bool { return true }

// NeverSample drops every trace.
type NeverSample struct{}

// ShouldSample always returns false.
func (NeverSample) ShouldSample(string) bool { return false }

// RatioSampler samples a deterministic fraction of traces keyed on the trace ID.
type RatioSampler struct {
	threshold uint64
}

// NewSampler returns the sampler for ratio, clamped to [0, 1].
func NewSampler(ratio float64) Sampler {
	switch {
	case ratio >= 1:
		return AlwaysSample{}
	case ratio <= 0:
		return NeverSample{}
	default:
		return &RatioSampler{threshold: uint64(ratio * float64(^uint64(0)))}
	}
}

// ShouldSample compares the first 8 bytes of the trace ID against the threshold.
func (s *RatioSampler) ShouldSample(traceID string) bool {
	if len(traceID) < 16 {
		return true
	}
	b, err := hex.DecodeString(traceID[:16])
	if err != nil {
		return true
	}
	var val uint64
	for _, c := range b {
		val = val<<8 | uint64(c)
	}
	return val < s.threshold
}

// Tracer creates spans and forwards finished ones to an exporter.
type Tracer struct {
	serviceName string
	exporter    Exporter
	sampler     Sampler
}

// TracerOption configures a Tracer.
type TracerOption func(*Tracer)

// WithExporter sets the exporter for the tracer.
func WithExporter(e Exporter) TracerOption {
	return func(t *Tracer) {
		t.exporter = e
	}
}

// WithSampler sets the sampler for the tracer.
func WithSampler(s Sampler) TracerOption {
	return func(t *Tracer) {
		t.sampler = s
	}
}

// NewTracer creates a new Tracer with the given service name.
func NewTracer(serviceName string, opts ...TracerOption) *Tracer {
	t := &Tracer{
		serviceName: serviceName,
		sampler:     AlwaysSample{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SpanOption configures a span at start.
type SpanOption func(*Span)

// WithSpanKind sets the span kind.
func WithSpanKind(kind SpanKind) SpanOption {
	return func(s *Span) {
		s.Kind = kind
	}
}

// Start creates a new span. If ctx carries a span, or a span context
// extracted from an inbound request, the new span is its child.
func (t *Tracer) Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, *Span) {
	span := &Span{
		SpanID:    generateSpanID(),
		Name:      name,
		StartTime: time.Now(),
		tracer:    t,
	}
	for _, opt := range opts {
		opt(span)
	}

	if parent := SpanFromContext(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	} else if sc := SpanContextFromContext(ctx); sc.IsValid() {
		span.TraceID = sc.TraceID
		span.ParentID = sc.SpanID
	} else {
		span.TraceID = generateTraceID()
	}

	if t != nil && t.sampler.ShouldSample(span.TraceID) {
		span.recording = true
		span.Attributes = map[string]string{"service.name": t.serviceName}
	}

	return context.WithValue(ctx, spanKey{}, span), span
}

// ServiceName returns the tracer's service name.
func (t *Tracer) ServiceName() string {
	if t == nil {
		return ""
	}
	return t.serviceName
}

// Shutdown flushes and closes the exporter.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.exporter == nil {
		return nil
	}
	return t.exporter.Shutdown(ctx)
}

func (t *Tracer) export(span *Span) {
	if t == nil || t.exporter == nil {
		return
	}
	_ = t.exporter.Export(span)
}

func generateTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func generateSpanID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

type spanKey struct{}
type spanContextKey struct{}

// SpanFromContext returns the current span from the context, or nil if none.
func SpanFromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(spanKey{}).(*Span)
	return span
}

// SpanContextFromContext returns the span context extracted from an inbound request.
func SpanContextFromContext(ctx context.Context) SpanContext {
	sc, _ := ctx.Value(spanContextKey{}).(SpanContext)
	return sc
}

// TraceIDFromContext returns the trace ID from the current context, if any.
func TraceIDFromContext(ctx context.Context) string {
	if span := SpanFromContext(ctx); span != nil {
		return span.TraceID
	}
	return SpanContextFromContext(ctx).TraceID
}
