package observability

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan        EventType = "plan"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeToolCall    EventType = "tool_call"
	EventTypeToolResult  EventType = "tool_result"
	EventTypeStep        EventType = "step"
	EventTypeRun         EventType = "run"
)

// Event represents a structured log entry.
type Event struct {
	Type   EventType
	RunID  string
	NodeID string
	Data   any
}

// Config selects the log level and encoding.
type Config struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"` // "json" or "console"
}

// Logger handles structured logging of pipeline events on top of zap.
type Logger struct {
	z *zap.Logger
}

// NewLogger builds a zap logger writing to stderr. Unknown levels are an error.
func NewLogger(cfg Config) (*Logger, error) {
	zcfg := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	z, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &Logger{z: z}, nil
}

// Wrap adapts an existing zap logger.
func Wrap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return Wrap(zap.NewNop())
}

// Zap exposes the underlying logger for packages that log through zap directly.
func (l *Logger) Zap() *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.z
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.Zap().Sync()
}

// Log emits a structured event at debug level; run events go out at info.
func (l *Logger) Log(evt Event) {
	z := l.Zap()
	fields := []zap.Field{zap.String("type", string(evt.Type))}
	if evt.RunID != "" {
		fields = append(fields, zap.String("run_id", evt.RunID))
	}
	if evt.NodeID != "" {
		fields = append(fields, zap.String("node", evt.NodeID))
	}
	if evt.Data != nil {
		fields = append(fields, zap.Any("data", evt.Data))
	}

	if evt.Type == EventTypeRun {
		z.Info("pipeline event", fields...)
		return
	}
	z.Debug("pipeline event", fields...)
}

// Helper methods for common events

func (l *Logger) LogPlan(runID string, nodes int, digest string) {
	l.Log(Event{
		Type:  EventTypePlan,
		RunID: runID,
		Data: map[string]any{
			"nodes":  nodes,
			"digest": digest,
		},
	})
}

func (l *Logger) LogToolCall(runID, nodeID, tool string, input map[string]any) {
	l.Log(Event{
		Type:   EventTypeToolCall,
		RunID:  runID,
		NodeID: nodeID,
		Data: map[string]any{
			"tool":  tool,
			"input": input,
		},
	})
}

func (l *Logger) LogToolResult(runID, nodeID, tool string, output map[string]any) {
	l.Log(Event{
		Type:   EventTypeToolResult,
		RunID:  runID,
		NodeID: nodeID,
		Data: map[string]any{
			"tool":   tool,
			"output": output,
		},
	})
}

func (l *Logger) LogRun(runID, source, status string, err error) {
	data := map[string]any{
		"source": source,
		"status": status,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	l.Log(Event{Type: EventTypeRun, RunID: runID, Data: data})
}
