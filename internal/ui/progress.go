// Package ui renders `dlc build` progress as a Bubble Tea program.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"dlc/internal/buildpipeline"
)

// Доля готовности файла, пока он находится на данной стадии.
var stageWeight = map[buildpipeline.Stage]float64{
	buildpipeline.StageParse:    0.1,
	buildpipeline.StageOptimize: 0.4,
	buildpipeline.StageLower:    0.8,
	buildpipeline.StageWrite:    0.95,
}

var stageVerb = map[buildpipeline.Stage]string{
	buildpipeline.StageParse:    "parsing",
	buildpipeline.StageOptimize: "optimizing",
	buildpipeline.StageLower:    "lowering",
	buildpipeline.StageWrite:    "writing",
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Faint(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

type fileItem struct {
	path    string
	status  buildpipeline.Status
	stage   buildpipeline.Stage
	elapsed time.Duration
	err     string
}

func (it fileItem) finished() bool {
	return it.status == buildpipeline.StatusDone || it.status == buildpipeline.StatusError
}

func (it fileItem) label() string {
	if it.status == buildpipeline.StatusWorking {
		if verb, ok := stageVerb[it.stage]; ok {
			return verb
		}
	}
	return string(it.status)
}

func (it fileItem) style() lipgloss.Style {
	switch it.status {
	case buildpipeline.StatusDone:
		return doneStyle
	case buildpipeline.StatusError:
		return failStyle
	case buildpipeline.StatusWorking:
		return workingStyle
	}
	return idleStyle
}

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel shows one line per file and an overall bar. The model
// quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	return newProgressModel(title, files, events)
}

func newProgressModel(title string, files []string, events <-chan buildpipeline.Event) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   make([]fileItem, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.items[i] = fileItem{path: file, status: buildpipeline.StatusQueued}
		m.index[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(buildpipeline.Event(msg)), m.listen())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// apply folds one pipeline event into the file list. Events for unknown
// files and pipeline-wide events only move the bar.
func (m *progressModel) apply(ev buildpipeline.Event) tea.Cmd {
	if idx, ok := m.index[ev.File]; ok && ev.Status != "" {
		it := &m.items[idx]
		it.status = ev.Status
		if ev.Stage != "" {
			it.stage = ev.Stage
		}
		if ev.Elapsed > 0 {
			it.elapsed = ev.Elapsed
		}
		if ev.Err != nil {
			it.err = ev.Err.Error()
		}
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, it := range m.items {
		if it.finished() {
			total++
			continue
		}
		if it.status == buildpipeline.StatusWorking {
			total += stageWeight[it.stage]
		}
	}
	return total / float64(len(m.items))
}

func (m *progressModel) counts() (finished, failed int) {
	for _, it := range m.items {
		if it.finished() {
			finished++
		}
		if it.status == buildpipeline.StatusError {
			failed++
		}
	}
	return finished, failed
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	finished, failed := m.counts()
	header := fmt.Sprintf("%s [%d/%d", m.title, finished, len(m.items))
	if failed > 0 {
		header += fmt.Sprintf(", %d failed", failed)
	}
	header += "]"
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-24, 20)
	for _, it := range m.items {
		fmt.Fprintf(&b, "  %s %s", it.style().Render(fmt.Sprintf("%12s", it.label())), truncate(it.path, nameWidth))
		if it.finished() && it.elapsed > 0 {
			fmt.Fprintf(&b, "  %s", it.elapsed.Round(time.Millisecond))
		}
		b.WriteString("\n")
		if it.err != "" {
			b.WriteString(errStyle.Render("      " + truncate(it.err, nameWidth)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

// truncate cuts value to width display cells, counting wide runes twice.
func truncate(value string, width int) string {
	switch {
	case width <= 0, runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
