package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/rahul/compileagent/internal/plan"
)

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

// ------------------------------------------------------------
// Utility
// ------------------------------------------------------------

func termWidth(fd int) int {
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 80
	}
	return w
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ------------------------------------------------------------
// Printer
// ------------------------------------------------------------

// Printer writes the human-facing output of the CLI. Colours and rules are only used
// when the destination is a terminal, so piped output stays plain and diffable.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
	width  int
}

// NewPrinter styles its output only if w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{w: w, width: 80}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.styled = true
		p.width = termWidth(int(f.Fd()))
	}
	return p
}

// Section prints "=== TITLE ===", preceded by a blank line unless first is set.
func (p *Printer) Section(title string, first bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !first {
		fmt.Fprintln(p.w)
	}
	line := fmt.Sprintf("=== %s ===", title)
	if !p.styled {
		fmt.Fprintln(p.w, line)
		return
	}
	fmt.Fprintln(p.w, sectionStyle.Render(line))
	fmt.Fprintln(p.w, ruleStyle.Render(strings.Repeat("─", clamp(len(line), 3, p.width))))
}

func (p *Printer) OK(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.styled {
		msg = okStyle.Render(msg)
	}
	fmt.Fprintln(p.w, msg)
}

func (p *Printer) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := "ERROR: " + err.Error()
	if p.styled {
		msg = errStyle.Render(msg)
	}
	fmt.Fprintln(p.w, msg)
}

func (p *Printer) Println(a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, a...)
}

// Value prints v as indented JSON or YAML.
func (p *Printer) Value(v any, format plan.Format) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return plan.Encode(p.w, v, format)
}

// FormatStatus renders a snapshot as a single line.
func FormatStatus(s Snapshot) string {
	pulse := "IDLE"
	if s.Active > 0 {
		pulse = "BUSY"
	}

	last := "none"
	if s.LastRunID != "" {
		last = fmt.Sprintf("%s %s at %s", s.LastRunID, s.LastStatus, s.LastFinished.Format("15:04:05"))
	}

	return fmt.Sprintf("[%s] active=%d total=%d failed=%d last=%s uptime=%v",
		pulse, s.Active, s.Total, s.Failed, last, s.Uptime.Round(time.Second))
}
