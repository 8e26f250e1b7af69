package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Exporter receives finished spans.
type Exporter interface {
	Export(span *Span) error
	Shutdown(ctx context.Context) error
}

// StdoutExporter writes one JSON object per finished span.
type StdoutExporter struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewStdoutExporter creates an exporter writing to w, or os.Stdout when w is nil.
func NewStdoutExporter(w ...io.Writer) *StdoutExporter {
	e := &StdoutExporter{writer: os.Stdout}
	if len(w) > 0 && w[0] != nil {
		e.writer = w[0]
	}
	return e
}

type spanRecord struct {
	TraceID       string            `json:"traceId"`
	SpanID        string            `json:"spanId"`
	ParentID      string            `json:"parentId,omitempty"`
	Name          string            `json:"name"`
	Kind          string            `json:"kind"`
	StartTime     string            `json:"startTime"`
	Duration      string            `json:"duration"`
	Status        string            `json:"status"`
	StatusMessage string            `json:"statusMessage,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// Export writes span as a single JSON line.
func (e *StdoutExporter) Export(span *Span) error {
	span.mu.Lock()
	rec := spanRecord{
		TraceID:       span.TraceID,
		SpanID:        span.SpanID,
		ParentID:      span.ParentID,
		Name:          span.Name,
		Kind:          span.Kind.String(),
		StartTime:     span.StartTime.Format(time.RFC3339Nano),
		Duration:      span.EndTime.Sub(span.StartTime).String(),
		Status:        span.Status.String(),
		StatusMessage: span.StatusMessage,
		Attributes:    span.Attributes,
	}
	span.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal span: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = fmt.Fprintln(e.writer, string(data))
	return err
}

// Shutdown is a no-op for the stdout exporter.
func (e *StdoutExporter) Shutdown(context.Context) error {
	return nil
}

// MemoryExporter keeps finished spans in memory.
type MemoryExporter struct {
	mu    sync.Mutex
	spans []*Span
}

// NewMemoryExporter creates an empty MemoryExporter.
func NewMemoryExporter() *MemoryExporter {
	return &MemoryExporter{}
}

// Export appends span.
func (e *MemoryExporter) Export(span *Span) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = append(e.spans, span)
	return nil
}

// Shutdown is a no-op.
func (e *MemoryExporter) Shutdown(context.Context) error {
	return nil
}

// Spans returns a copy of the exported spans in export order.
func (e *MemoryExporter) Spans() []*Span {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Span, len(e.spans))
	copy(out, e.spans)
	return out
}
