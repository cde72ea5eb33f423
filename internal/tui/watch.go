package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/trilhalab/portalctl/internal/auth"
	"github.com/trilhalab/portalctl/internal/token"
)

// watchStyles holds the lipgloss styles for the watch view.
type watchStyles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Good   lipgloss.Style
	Bad    lipgloss.Style
	Muted  lipgloss.Style
	Border lipgloss.Style
}

func newWatchStyles() watchStyles {
	return watchStyles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(10),
		Value:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Good:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2),
	}
}

type snapshotMsg auth.Snapshot

type tickMsg time.Time

// WatchModel renders the live session state driven by the session monitor.
type WatchModel struct {
	events  <-chan auth.Snapshot
	snap    auth.Snapshot
	spinner spinner.Model
	styles  watchStyles
}

// NewWatch creates the watch view over a started monitor.
func NewWatch(monitor *auth.Monitor) WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return WatchModel{
		events:  monitor.Subscribe(),
		snap:    monitor.Current(),
		spinner: sp,
		styles:  newWatchStyles(),
	}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForSnapshot(), tickEverySecond())
}

func (m WatchModel) waitForSnapshot() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		snap, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return snapshotMsg(snap)
	}
}

func tickEverySecond() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case snapshotMsg:
		m.snap = auth.Snapshot(msg)
		return m, m.waitForSnapshot()
	case tickMsg:
		// Redraw so the expiry countdown stays current.
		return m, tickEverySecond()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("portalctl session"))
	b.WriteString("\n\n")

	switch m.snap.State {
	case auth.StateLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Muted.Render(" checking session..."))
	case auth.StateAnonymous:
		b.WriteString(m.styles.Bad.Render("Not logged in"))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("Run 'portalctl login' to authenticate."))
	case auth.StateAuthenticated:
		sess := m.snap.Session
		rows := []string{
			m.styles.Good.Render("Logged in"),
			"",
			m.styles.Label.Render("Name") + m.styles.Value.Render(sess.Name),
			m.styles.Label.Render("Email") + m.styles.Value.Render(sess.Email),
			m.styles.Label.Render("Role") + m.styles.Value.Render(string(sess.Role)),
			m.styles.Label.Render("Expires") + m.styles.Value.Render(formatRemaining(sess.Token)),
		}
		b.WriteString(m.styles.Border.Render(strings.Join(rows, "\n")))
	}

	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

func formatRemaining(raw string) string {
	remaining := token.TimeRemaining(raw)
	if remaining <= 0 {
		return "expired"
	}
	return fmt.Sprintf("in %s", remaining.Round(time.Second))
}
