package log

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Record is one captured log call.
type Record struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// String formats the record as `LEVEL message key=value ...` with keys sorted.
func (r Record) String() string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, r.Fields[k])
	}
	return b.String()
}

type recordSink struct {
	mu      sync.Mutex
	records []Record
}

// TestLogger is a Logger that keeps every record in memory so tests can
// assert on what an analyzer logged. Loggers derived with With share the
// same records. It is safe for concurrent use.
type TestLogger struct {
	sink   *recordSink
	level  Level
	fields map[string]any
}

// NewTestLogger returns a TestLogger that drops records below level.
//
//	logger := log.NewTestLogger(log.LevelDebug)
//	summary, err := crossval.Summarize("LogLoss", values, crossval.WithLogger(logger))
//	assert.True(t, logger.ContainsField(log.MetricKey, "LogLoss"))
func NewTestLogger(level Level) *TestLogger {
	return &TestLogger{sink: &recordSink{}, level: level, fields: map[string]any{}}
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.record(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.record(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.record(LevelWarn, msg, fields) }

// Error records a leading error argument under the "error" key.
func (t *TestLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{"error", err}, fields[1:]...)
		}
	}
	t.record(LevelError, msg, fields)
}

// With returns a logger sharing t's records with fields added to each one.
func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]any, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	setFields(merged, fields)
	return &TestLogger{sink: t.sink, level: t.level, fields: merged}
}

func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return level >= t.level
}

// setFields stores alternating key/value pairs. Errors are stored as their
// message and integers as float64 so comparisons don't depend on the
// caller's numeric type.
func setFields(dst map[string]any, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		dst[fmt.Sprint(kv[i])] = normalize(kv[i+1])
	}
}

func normalize(v any) any {
	switch x := v.(type) {
	case error:
		return x.Error()
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case float32:
		return float64(x)
	}
	return v
}

func (t *TestLogger) record(level Level, msg string, kv []any) {
	if level < t.level {
		return
	}
	fields := make(map[string]any, len(t.fields)+len(kv)/2)
	for k, v := range t.fields {
		fields[k] = v
	}
	setFields(fields, kv)

	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.records = append(t.sink.records, Record{Level: level, Message: msg, Fields: fields})
}

// Records returns a copy of everything captured so far.
func (t *TestLogger) Records() []Record {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	return append([]Record(nil), t.sink.records...)
}

// String returns one formatted line per record.
func (t *TestLogger) String() string {
	var b strings.Builder
	for _, r := range t.Records() {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// ContainsMessage reports whether any record's message contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	for _, r := range t.Records() {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ContainsField reports whether any record has key set to value.
func (t *TestLogger) ContainsField(key string, value any) bool {
	want := normalize(value)
	for _, r := range t.Records() {
		if v, ok := r.Fields[key]; ok && reflect.DeepEqual(v, want) {
			return true
		}
	}
	return false
}

// Clear drops all captured records.
func (t *TestLogger) Clear() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.records = nil
}
