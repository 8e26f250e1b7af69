// Package tracing provides W3C Trace Context spans for dogql.
//
// The server opens a server span per inbound request (continuing any
// traceparent the caller sent) and the upstream client opens a client span
// per REST call, injecting traceparent into the outgoing request so the
// whole GraphQL-to-REST hop shares one trace ID.
//
//	tracer := tracing.NewTracer("dogql",
//	    tracing.WithExporter(tracing.NewStdoutExporter()),
//	)
//	ctx, span := tracer.Start(ctx, "GET breeds/list/all", tracing.WithSpanKind(tracing.SpanKindClient))
//	defer span.End()
//
// Trace IDs are 32 hex characters, span IDs 16. The traceparent format is
// {version}-{trace-id}-{parent-id}-{flags}, e.g.
// 00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01.
//
// A nil *Tracer is valid and produces non-recording spans, so callers never
// need to branch on whether tracing is enabled.
package tracing
