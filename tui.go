package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dicto/pipeline"
)

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

type StateMsg struct {
	State pipeline.State
	Err   error
}

type ModeLineMsg struct{ Text string }

type DeviceLineMsg struct{ Text string }

type UpdateAvailableMsg struct{ Version string }

type tickMsg time.Time

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	recStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	busyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160"))
	updateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

type tuiModel struct {
	state      pipeline.State
	lastErr    error
	modeLine   string
	deviceLine string
	update     string

	recordStart time.Time
	elapsed     time.Duration
}

func NewTUIProgram() *tea.Program {
	return tea.NewProgram(tuiModel{})
}

func (m tuiModel) Init() tea.Cmd {
	tuiReadyOnce.Do(func() { close(tuiReady) })
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case StateMsg:
		m.state = msg.State
		m.lastErr = msg.Err
		if msg.State == pipeline.StateRecording {
			m.recordStart = time.Now()
			m.elapsed = 0
			return m, tick()
		}

	case tickMsg:
		if m.state == pipeline.StateRecording {
			m.elapsed = time.Since(m.recordStart)
			return m, tick()
		}

	case ModeLineMsg:
		m.modeLine = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case UpdateAvailableMsg:
		m.update = msg.Version
	}
	return m, nil
}

func (m tuiModel) statusLine() string {
	switch m.state {
	case pipeline.StateRecording:
		return recStyle.Render(fmt.Sprintf("● recording %.1fs", m.elapsed.Seconds()))
	case pipeline.StateTranscribing:
		return busyStyle.Render("… transcribing")
	case pipeline.StateError:
		text := "error"
		if m.lastErr != nil {
			text = m.lastErr.Error()
		}
		return errStyle.Render("✗ " + text)
	default:
		return idleStyle.Render("○ idle (ctrl+shift+space to record)")
	}
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("dicto") + " " + dimStyle.Render(version) + "\n")
	if m.modeLine != "" {
		b.WriteString(dimStyle.Render(m.modeLine) + "\n")
	}
	if m.deviceLine != "" {
		b.WriteString(dimStyle.Render(m.deviceLine) + "\n")
	}
	b.WriteString("\n" + m.statusLine() + "\n")
	if m.update != "" {
		b.WriteString("\n" + updateStyle.Render("update available: "+m.update+" (run: dicto update)") + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("q to quit") + "\n")
	return b.String()
}
