package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rahul/compileagent/internal/plan"
)

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(Config{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, l.Zap().Core().Enabled(zapcore.DebugLevel))

	l, err = NewLogger(Config{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.False(t, l.Zap().Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestLogger_Events(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core))

	l.LogPlan("run-1", 2, "abc")
	l.LogToolCall("run-1", "fetch_weather", "WeatherAPI", map[string]any{"city": "Beijing"})
	l.LogRun("run-1", "demo", "failed", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "plan", entries[0].ContextMap()["type"])
	assert.Equal(t, "fetch_weather", entries[1].ContextMap()["node"])
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)

	data := entries[2].ContextMap()["data"].(map[string]any)
	assert.Equal(t, "boom", data["error"])
	assert.Equal(t, "run-1", entries[2].ContextMap()["run_id"])
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Zap().Info("ignored") })
}

func TestPrinter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Section("COMPILE AGENT: COMPILE INTENT", true)
	require.NoError(t, p.Value(&plan.Plan{Nodes: []plan.Node{}}, plan.FormatJSON))
	p.Section("VALIDATING PLAN", false)
	p.OK("OK")
	p.Error(errors.New("nope"))

	want := strings.Join([]string{
		"=== COMPILE AGENT: COMPILE INTENT ===",
		"{",
		`  "nodes": []`,
		"}",
		"",
		"=== VALIDATING PLAN ===",
		"OK",
		"ERROR: nope",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	tr.Begin()
	tr.Begin()
	assert.Equal(t, 2, tr.Snapshot().Active)

	tr.End("a", "succeeded")
	tr.End("b", "rejected")
	tr.End("c", "failed") // more ends than begins must not go negative

	s := tr.Snapshot()
	assert.Zero(t, s.Active)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, "c", s.LastRunID)
	assert.WithinDuration(t, time.Now(), s.LastFinished, time.Minute)

	line := FormatStatus(s)
	assert.Contains(t, line, "[IDLE]")
	assert.Contains(t, line, "total=3")
	assert.Contains(t, line, "c failed")
}
