package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleCounter = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleBarDone = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleBarTodo = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
)

const progressBarWidth = 30

// progressLine draws a single, self-overwriting progress line for the fetch loop.
// It is not safe for concurrent use.
type progressLine struct {
	out     io.Writer
	keyword string
	total   int
	done    int
	start   time.Time
	width   int
}

func newProgressLine(out io.Writer) *progressLine {
	return &progressLine{out: out}
}

func (p *progressLine) Start(keyword string, total int) {
	p.keyword, p.total, p.done, p.start = keyword, total, 0, time.Now()
	p.render()
}

func (p *progressLine) Advance() {
	p.done++
	p.render()
}

func (p *progressLine) Finish(err error) {
	p.clear()
	elapsed := time.Since(p.start).Round(time.Second)
	if err != nil {
		fmt.Fprintf(p.out, "%s %s\n", styleError.Render("✗"), fmt.Sprintf("Stopped after %d/%d results for %q (%s)", p.done, p.total, p.keyword, elapsed))
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", styleSuccess.Render("✓"), fmt.Sprintf("Processed %d/%d results for %q (%s)", p.done, p.total, p.keyword, elapsed))
}

func (p *progressLine) render() {
	filled := progressBarWidth
	if p.total > 0 {
		filled = p.done * progressBarWidth / p.total
	}
	line := fmt.Sprintf("%s %s%s %s",
		styleCounter.Render(fmt.Sprintf("[%d/%d]", p.done, p.total)),
		styleBarDone.Render(strings.Repeat("█", filled)),
		styleBarTodo.Render(strings.Repeat("░", progressBarWidth-filled)),
		styleDim.Render(p.keyword),
	)
	p.width = max(p.width, lipgloss.Width(line))
	fmt.Fprintf(p.out, "\r%s", line)
}

func (p *progressLine) clear() {
	if p.width > 0 {
		fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", p.width))
	}
}
