package tracing

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"
)

// TraceparentHeader is the W3C Trace Context header name.
const TraceparentHeader = "traceparent"

const flagSampled = 0x01

// Extract reads a traceparent header into ctx. Invalid or missing headers
// leave ctx unchanged.
func Extract(ctx context.Context, headers http.Header) context.Context {
	sc, ok := parseTraceparent(headers.Get(TraceparentHeader))
	if !ok {
		return ctx
	}
	return context.WithValue(ctx, spanContextKey{}, sc)
}

// Inject writes the traceparent of the current span (or the extracted span
// context) into headers. It is a no-op when ctx carries neither.
func Inject(ctx context.Context, headers http.Header) {
	if span := SpanFromContext(ctx); span != nil {
		headers.Set(TraceparentHeader, formatTraceparent(span.TraceID, span.SpanID, span.IsRecording()))
		return
	}
	if sc := SpanContextFromContext(ctx); sc.IsValid() {
		headers.Set(TraceparentHeader, formatTraceparent(sc.TraceID, sc.SpanID, sc.Sampled))
	}
}

func parseTraceparent(value string) (SpanContext, bool) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 4 {
		return SpanContext{}, false
	}
	version, traceID, spanID, flags := parts[0], parts[1], parts[2], parts[3]

	if len(version) != 2 || version == "ff" || !isHex(version) {
		return SpanContext{}, false
	}
	if len(traceID) != 32 || !isHex(traceID) || strings.Trim(traceID, "0") == "" {
		return SpanContext{}, false
	}
	if len(spanID) != 16 || !isHex(spanID) || strings.Trim(spanID, "0") == "" {
		return SpanContext{}, false
	}
	if len(flags) != 2 {
		return SpanContext{}, false
	}
	fb, err := hex.DecodeString(flags)
	if err != nil {
		return SpanContext{}, false
	}

	return SpanContext{
		TraceID: strings.ToLower(traceID),
		SpanID:  strings.ToLower(spanID),
		Sampled: fb[0]&flagSampled != 0,
	}, true
}

func formatTraceparent(traceID, spanID string, sampled bool) string {
	flags := "00"
	if sampled {
		flags = "01"
	}
	return "00-" + traceID + "-" + spanID + "-" + flags
}

func isHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
