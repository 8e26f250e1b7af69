package graphql

import "time"

// TracingExtension is the Apollo tracing extension, format version 1.
// Offsets and durations are in nanoseconds.
type TracingExtension struct {
	Version    int             `json:"version"`
	StartTime  time.Time       `json:"startTime"`
	EndTime    time.Time       `json:"endTime"`
	Duration   int64           `json:"duration"`
	Parsing    PhaseTiming     `json:"parsing"`
	Validation PhaseTiming     `json:"validation"`
	Execution  ExecutionTiming `json:"execution"`
}

// PhaseTiming times one request phase relative to the request start.
type PhaseTiming struct {
	StartOffset int64 `json:"startOffset"`
	Duration    int64 `json:"duration"`
}

// ExecutionTiming lists the resolved fields in resolution order.
type ExecutionTiming struct {
	Resolvers []ResolverTiming `json:"resolvers"`
}

// ResolverTiming times one field resolution.
type ResolverTiming struct {
	Path        []any  `json:"path"`
	ParentType  string `json:"parentType"`
	FieldName   string `json:"fieldName"`
	ReturnType  string `json:"returnType"`
	StartOffset int64  `json:"startOffset"`
	Duration    int64  `json:"duration"`
}

// apolloTrace collects timings for one request. A nil *apolloTrace
// records nothing.
type apolloTrace struct {
	start time.Time
	ext   TracingExtension
}

func newApolloTrace(start time.Time) *apolloTrace {
	return &apolloTrace{
		start: start,
		ext: TracingExtension{
			Version:   1,
			StartTime: start.UTC(),
			Execution: ExecutionTiming{Resolvers: []ResolverTiming{}},
		},
	}
}

func (t *apolloTrace) phase(start, end time.Time) PhaseTiming {
	return PhaseTiming{
		StartOffset: start.Sub(t.start).Nanoseconds(),
		Duration:    end.Sub(start).Nanoseconds(),
	}
}

func (t *apolloTrace) parsed(start, end time.Time) {
	if t != nil {
		t.ext.Parsing = t.phase(start, end)
	}
}

func (t *apolloTrace) validated(start, end time.Time) {
	if t != nil {
		t.ext.Validation = t.phase(start, end)
	}
}

func (t *apolloTrace) resolver(path []any, parentType, fieldName, returnType string, start, end time.Time) {
	if t == nil {
		return
	}
	p := t.phase(start, end)
	t.ext.Execution.Resolvers = append(t.ext.Execution.Resolvers, ResolverTiming{
		Path:        path,
		ParentType:  parentType,
		FieldName:   fieldName,
		ReturnType:  returnType,
		StartOffset: p.StartOffset,
		Duration:    p.Duration,
	})
}

func (t *apolloTrace) finish(end time.Time) *TracingExtension {
	t.ext.EndTime = end.UTC()
	t.ext.Duration = end.Sub(t.start).Nanoseconds()
	return &t.ext
}
