// Package tui renders run progress on the terminal while the field stream
// goes to stdout.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/maxwell/internal/engine"
)

const (
	barWidth        = 40
	historyCapacity = 120
)

// ProgressMsg reports a completed step.
type ProgressMsg struct {
	Step   int
	Time   float32
	Energy float64
}

// DoneMsg ends the view.
type DoneMsg struct {
	Result *engine.Result
	Err    error
}

// Model is the progress view of one run.
type Model struct {
	name    string
	total   int
	step    int
	t       float32
	energy  []float64
	start   time.Time
	result  *engine.Result
	err     error
	done    bool
	onAbort func()
}

// NewModel builds a view for a run of total steps. onAbort, if set, is
// called when the user presses q or ctrl+c.
func NewModel(name string, total int, onAbort func()) Model {
	return Model{
		name:    name,
		total:   total,
		energy:  make([]float64, 0, historyCapacity),
		start:   time.Now(),
		onAbort: onAbort,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.onAbort != nil {
				m.onAbort()
			}
			return m, tea.Quit
		}
	case ProgressMsg:
		m.step = msg.Step
		m.t = msg.Time
		m.energy = append(m.energy, msg.Energy)
		if len(m.energy) > historyCapacity {
			m.energy = m.energy[len(m.energy)-historyCapacity:]
		}
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("maxwell · " + m.name))
	b.WriteString("\n")
	b.WriteString(m.bar())
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("step", fmt.Sprintf("%d / %d", m.step+1, m.total))
	row("time", fmt.Sprintf("%.4g s", m.t))
	row("elapsed", time.Since(m.start).Round(time.Millisecond).String())
	if n := len(m.energy); n > 0 {
		row("energy", fmt.Sprintf("%.6g", m.energy[n-1]))
	}

	if len(m.energy) > 1 {
		graph := asciigraph.Plot(m.energy,
			asciigraph.Height(6),
			asciigraph.Width(50),
			asciigraph.Caption("field energy"))
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(statusError.Render("aborted: " + m.err.Error()))
	case m.done:
		msg := "done"
		if m.result != nil {
			msg = fmt.Sprintf("done: %d frames in %s", m.result.Frames, m.result.Elapsed.Round(time.Millisecond))
		}
		b.WriteString(statusDone.Render(msg))
	default:
		b.WriteString(helpStyle.Render("q: abort"))
	}
	return panelStyle.Render(b.String()) + "\n"
}

func (m Model) bar() string {
	frac := 0.0
	if m.total > 1 {
		frac = float64(m.step) / float64(m.total-1)
	}
	if m.done && m.err == nil {
		frac = 1
	}
	filled := int(frac * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	return barFull.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %3.0f%%", frac*100)
}

// Step is the last reported step.
func (m Model) Step() int { return m.step }

// Done reports whether the run has finished.
func (m Model) Done() bool { return m.done }
