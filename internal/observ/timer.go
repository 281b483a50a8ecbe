// Package observ measures compiler phases for --timings.
package observ

import (
	"fmt"
	"io"
	"time"
)

// Phase is one measured step. Dur stays zero until End is called.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	done  bool
}

// Timer collects phases in the order they began. It is not safe for
// concurrent use; the build pipeline keeps one timer per file.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 8), now: time.Now}
}

// Begin opens a phase and returns the index End expects.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End closes a phase. Unknown indices and repeated calls are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) || t.phases[idx].done {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
	p.done = true
}

// PhaseReport is the serialisable form of a finished phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report агрегирует закрытые фазы таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report returns closed phases only; a phase left open by an early
// return does not distort the total.
func (t *Timer) Report() Report {
	var report Report
	var total time.Duration
	for _, p := range t.phases {
		if !p.done {
			continue
		}
		total += p.Dur
		report.Phases = append(report.Phases, PhaseReport{
			Name:       p.Name,
			DurationMS: millis(p.Dur),
			Note:       p.Note,
		})
	}
	report.TotalMS = millis(total)
	return report
}

// Render renders the report as an aligned table under title.
func (r Report) Render(w io.Writer, title string) error {
	if _, err := fmt.Fprintf(w, "timings (%s):\n", title); err != nil {
		return err
	}
	for _, p := range r.Phases {
		line := fmt.Sprintf("  %-12s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			line += "  // " + p.Note
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-12s %7.2f ms\n", "total", r.TotalMS)
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
