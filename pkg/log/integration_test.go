package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scierrors "github.com/YuminosukeSato/modeldiag/pkg/errors"
)

func TestTestLoggerLevels(t *testing.T) {
	testLogger := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", AnalyzerKey, AnalyzerImportance)
	testLogger.Warn("warning message", ErrorCodeKey, ErrorDegenerateVariance)
	testLogger.Error("error message", fmt.Errorf("boom"), ErrorCodeKey, ErrorMalformedInput)

	records := testLogger.Records()
	require.Len(t, records, 4)
	assert.Equal(t, LevelDebug, records[0].Level)
	assert.Equal(t, LevelError, records[3].Level)
	assert.Contains(t, testLogger.String(), "key1=value1")
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		assert.True(t, testLogger.ContainsMessage(msg), "missing %q", msg)
	}
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0))
	assert.True(t, testLogger.ContainsField("error", "boom"))
}

func TestTestLoggerWith(t *testing.T) {
	testLogger := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		AnalyzerKey, AnalyzerCorrelation,
		ComponentKey, "correlation",
	)
	contextLogger.Info("pairs flagged", FlaggedKey, 2)

	assert.True(t, testLogger.ContainsField(AnalyzerKey, AnalyzerCorrelation))
	assert.True(t, testLogger.ContainsField(ComponentKey, "correlation"))
	assert.True(t, testLogger.ContainsField(FlaggedKey, 2.0))
}

func TestTestLoggerEnabled(t *testing.T) {
	testLogger := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, testLogger.Enabled(ctx, LevelInfo))
	assert.True(t, testLogger.Enabled(ctx, LevelError))
	assert.False(t, testLogger.Enabled(ctx, LevelDebug))

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	assert.False(t, testLogger.ContainsMessage("this should not appear"))
	assert.True(t, testLogger.ContainsMessage("this should appear"))
}

func TestTestLoggerConcurrent(t *testing.T) {
	testLogger := NewTestLogger(LevelInfo)

	const goroutines, perGoroutine = 4, 25
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			child := testLogger.With("goroutine_id", id)
			for j := 0; j < perGoroutine; j++ {
				child.Info("analyzer finished", "message_id", j)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, testLogger.Records(), goroutines*perGoroutine)

	testLogger.Clear()
	assert.Empty(t, testLogger.Records())
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.With(AnalyzerKey, AnalyzerCrossValidation).Info("summary computed", FoldsKey, 5, MetricKey, "MicroAccuracy")
	logger.Error("summary failed", scierrors.NewInsufficientDataError("crossval.Summarize", 1, 0), MetricKey, "LogLoss")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &info))
	assert.Equal(t, "info", info["level"])
	assert.Equal(t, "summary computed", info["message"])
	assert.Equal(t, AnalyzerCrossValidation, info[AnalyzerKey])
	assert.Equal(t, 5.0, info[FoldsKey])

	var errEntry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &errEntry))
	assert.Equal(t, "error", errEntry["level"])
	assert.Equal(t, "InsufficientDataError", errEntry["type"])
	assert.Equal(t, "LogLoss", errEntry[MetricKey])
	assert.Contains(t, errEntry["error"], "insufficient data")

	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), LevelWarn))
}

func TestDefaultProviderRoutesWarnings(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nopWriter{})

	scierrors.Warn(scierrors.NewDegenerateVarianceWarning("correlation.Compute", "Parch", 0))

	out := buf.String()
	assert.Contains(t, out, `"feature":"Parch"`)
	assert.Contains(t, out, `"type":"DegenerateVarianceWarning"`)
}

func TestGetLoggerWithName(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)
	defer func() {
		SetLevel(LevelWarn)
		SetOutput(nopWriter{})
	}()

	GetLoggerWithName("importance").Debug("aggregated", EntriesKey, 3)

	assert.Contains(t, buf.String(), `"diag.component":"importance"`)
	assert.Contains(t, buf.String(), `"data.entries":3`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerAddsStacktrace(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, "debug"))

	slog.Error("analysis failed", ErrAttr(scierrors.NewMalformedInputError("op", "bad header", nil)))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["severity"])
	assert.Equal(t, "analysis failed", entry["message"])
	assert.NotEmpty(t, entry[StacktraceAttrKey])
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestWarningRecordsType(t *testing.T) {
	testLogger := NewTestLogger(LevelWarn)

	Warning(testLogger, &scierrors.SingleFoldWarning{Metric: "LogLoss"}, MetricKey, "LogLoss")

	records := testLogger.Records()
	require.Len(t, records, 1)
	assert.Equal(t, LevelWarn, records[0].Level)
	assert.Contains(t, records[0].Message, "single fold")
	assert.True(t, testLogger.ContainsField(ErrorTypeKey, "SingleFoldWarning"))
	assert.True(t, testLogger.ContainsField(MetricKey, "LogLoss"))
}
