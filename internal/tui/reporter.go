package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/maxwell/internal/field"
	"github.com/san-kum/maxwell/internal/metrics"
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Reporter is an engine observer that forwards progress to a running
// program, at most once per interval plus the final step.
type Reporter struct {
	out      Sender
	last     int
	interval time.Duration
	sent     time.Time
}

func NewReporter(out Sender, totalSteps int, interval time.Duration) *Reporter {
	return &Reporter{out: out, last: totalSteps - 1, interval: interval}
}

func (r *Reporter) OnStep(step int, t float32, lat *field.Lattice) {
	now := time.Now()
	if step != r.last && step != 0 && now.Sub(r.sent) < r.interval {
		return
	}
	r.sent = now
	r.out.Send(ProgressMsg{Step: step, Time: t, Energy: metrics.FieldEnergy(lat)})
}
