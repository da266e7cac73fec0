package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"vigil/internal/doctor"
)

type doctorModel struct {
	title   string
	events  <-chan doctor.Event
	spinner spinner.Model
	prog    progress.Model
	items   []checkItem
	index   map[doctor.Check]int
	width   int
	done    bool
	passed  bool
}

type checkItem struct {
	check  doctor.Check
	status string
}

type eventMsg doctor.Event
type doneMsg struct{}

// NewDoctorModel returns a Bubble Tea model that renders doctor progress.
func NewDoctorModel(title string, events <-chan doctor.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]checkItem, 0, len(doctor.Checks))
	index := make(map[doctor.Check]int, len(doctor.Checks))
	for i, check := range doctor.Checks {
		items = append(items, checkItem{check: check, status: "queued"})
		index[check] = i
	}
	return &doctorModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *doctorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *doctorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(doctor.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
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
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *doctorModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		if m.passed {
			header = fmt.Sprintf("done: %s", header)
		} else {
			header = fmt.Sprintf("failed: %s", header)
		}
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 10
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.check.String(), nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%10s", item.status))
		b.WriteString(fmt.Sprintf("  %s %s", statusStyled, name))
		b.WriteString("\n")
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

func (m *doctorModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *doctorModel) applyEvent(ev doctor.Event) tea.Cmd {
	if ev.Status == doctor.StatusSuccess {
		m.passed = true
		return m.prog.SetPercent(1.0)
	}
	idx, ok := m.index[ev.Check]
	if !ok {
		return nil
	}
	m.items[idx].status = statusLabel(ev.Status)

	settled := 0.0
	for _, item := range m.items {
		switch item.status {
		case "ok", "failed":
			settled += 1.0
		case "checking":
			settled += 0.5
		}
	}
	return m.prog.SetPercent(settled / float64(len(m.items)))
}

func statusLabel(status doctor.Status) string {
	switch status {
	case doctor.StatusRunning:
		return "checking"
	case doctor.StatusCompleted:
		return "ok"
	case doctor.StatusFailed:
		return "failed"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "ok":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "failed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "checking":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
