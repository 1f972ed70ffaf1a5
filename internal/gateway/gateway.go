package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahul/compileagent/internal/agent"
	"github.com/rahul/compileagent/internal/observability"
	"github.com/rahul/compileagent/internal/plan"
)

// Messenger defines the interface for communication gateways (Telegram, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Runner executes one intent document.
type Runner interface {
	Execute(ctx context.Context, src agent.Source) (*agent.Report, error)
}

const helpText = `Send intent lines, one per line, for example:

get weather from Beijing
convert temperature

Commands: /status, /help`

// Handler turns an incoming chat message into a reply. Every message that is not a
// command is treated as an intent document.
type Handler struct {
	Runner  Runner
	Tracker *observability.Tracker
}

// Reply runs text and renders the outcome. source names the run in history.
func (h *Handler) Reply(ctx context.Context, source, text string) string {
	switch strings.TrimSpace(text) {
	case "/start", "/help":
		return helpText
	case "/status":
		if h.Tracker == nil {
			return "status tracking is disabled"
		}
		return observability.FormatStatus(h.Tracker.Snapshot())
	}

	rep, err := h.Runner.Execute(ctx, agent.Source{Name: source, Text: text})
	if err != nil {
		return formatError(err)
	}
	if rep.Plan.Len() == 0 {
		return "No intents recognised.\n\n" + helpText
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s\n", rep.RunID)
	b.WriteString("```\n")
	if err := plan.Encode(&b, rep.Result.Context, plan.FormatJSON); err != nil {
		return formatError(err)
	}
	b.WriteString("```")
	return b.String()
}

func formatError(err error) string {
	var execErr *agent.ExecutionError
	if errors.As(err, &execErr) {
		return fmt.Sprintf("Run failed at node %s after %d completed steps: %v", execErr.NodeID, len(execErr.Completed), execErr.Err)
	}
	return "Run failed: " + err.Error()
}
