package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/hanoiarm/pkg/choreo"
	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

const (
	headerHeight = 2 // title + blank line
	pegsHeight   = hanoi.NumDisks + 3
	legendHeight = 2
	footerHeight = 7 // log box height
	maxLogs      = 5
	borderSize   = 2
)

// chart series, in meters
const (
	seriesZ       = "z"
	seriesGripper = "gripper"
)

var seriesColors = map[string]string{
	seriesZ:       "51",
	seriesGripper: "201",
}

var diskColors = [hanoi.NumDisks]string{"196", "208", "226"}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	onStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	offStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

type dashboard struct {
	ctrl    *choreo.Controller
	logCh   <-chan string
	done    <-chan error
	toggle  switcher
	backend string

	chart    *streamlinechart.Model
	status   choreo.Status
	enabled  bool
	err      error
	width    int
	height   int
	logs     []string
	quitting bool
}

type statusMsg choreo.Status
type logMsg string
type doneMsg struct{ err error }
type toggledMsg struct {
	on  bool
	err error
}

func waitForStatus(ctrl *choreo.Controller) tea.Cmd {
	return func() tea.Msg {
		return statusMsg(<-ctrl.Statuses())
	}
}

func waitForLog(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ch)
	}
}

func waitForDone(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{<-ch}
	}
}

// newDashboard builds the TUI model. The header starts from the current value
// of the enable signal, which may already be cleared in Redis.
func newDashboard(ctx context.Context, ctrl *choreo.Controller, enabled choreo.EnableSignal, logCh <-chan string, done <-chan error, toggle switcher, backend string) (dashboard, error) {
	on, err := enabled.Enabled(ctx)
	if err != nil {
		return dashboard{}, fmt.Errorf("read enable signal: %w", err)
	}

	cfg := ctrl.Config()
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(0, max(cfg.ApproachHeight, cfg.OpenWidth)*1.1),
	)
	for name, color := range seriesColors {
		chart.SetDataSetStyles(name, runes.ThinLineStyle, lipgloss.NewStyle().Foreground(lipgloss.Color(color)))
	}

	return dashboard{
		ctrl:    ctrl,
		logCh:   logCh,
		done:    done,
		toggle:  toggle,
		backend: backend,
		chart:   &chart,
		status:  ctrl.Status(),
		enabled: on,
	}, nil
}

func (m *dashboard) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *dashboard) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 12
	}
	width = max(40, m.width-borderSize-2)
	height = max(6, m.height-headerHeight-pegsHeight-legendHeight-footerHeight-borderSize)
	return width, height
}

func (m dashboard) Init() tea.Cmd {
	return tea.Batch(
		waitForStatus(m.ctrl),
		waitForLog(m.logCh),
		waitForDone(m.done),
	)
}

func (m dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.Resize(m.chartSize())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case " ", "e":
			toggle := m.toggle
			return m, func() tea.Msg {
				on, err := toggle(context.Background())
				return toggledMsg{on: on, err: err}
			}
		}

	case toggledMsg:
		if msg.err != nil {
			m.addLog(fmt.Sprintf("toggle enable: %v", msg.err))
			return m, nil
		}
		m.enabled = msg.on
		if msg.on {
			m.addLog("enabled")
		} else {
			m.addLog("disabled, stopping after this cycle")
		}
		return m, nil

	case statusMsg:
		m.status = choreo.Status(msg)
		if !m.status.Timestamp.IsZero() && m.status.Waypoint != (choreo.Waypoint{}) {
			m.chart.PushDataSet(seriesZ, m.status.Waypoint.Position.Z)
			m.chart.PushDataSet(seriesGripper, m.status.Waypoint.Gripper)
			m.chart.DrawAll()
		}
		return m, waitForStatus(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.logCh)

	case doneMsg:
		m.err = msg.err
		m.status = m.ctrl.Status()
		if msg.err != nil {
			m.addLog(fmt.Sprintf("stopped: %v", msg.err))
		} else {
			m.addLog("stopped")
		}
		return m, nil
	}

	return m, nil
}

func (m dashboard) View() string {
	if m.quitting {
		return "Demonstration stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Hanoi"))
	sb.WriteString(fmt.Sprintf(" - %s backend", m.backend))
	if m.enabled {
		sb.WriteString("  " + onStyle.Render("ENABLED"))
	} else {
		sb.WriteString("  " + offStyle.Render("DISABLED"))
	}
	sb.WriteString(statusStyle.Render("  " + statusLine(m.status)))
	sb.WriteString("\n\n")

	sb.WriteString(renderPegs(m.status.State, m.status.Waypoint.Peg))
	sb.WriteString("\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(20, m.width-4))

	logLines := statusStyle.Render("space: toggle enable   q: quit")
	if len(m.logs) > 0 {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func statusLine(s choreo.Status) string {
	line := fmt.Sprintf("%s  cycle %d", s.Mode, s.Cycle)
	if !s.Timestamp.IsZero() && s.Mode != choreo.ModeIdle {
		line += fmt.Sprintf("  %s  %s (%s)", s.Move, s.Waypoint.Phase, s.Delay)
	}
	return line
}

// renderPegs draws the three pegs side by side, widest disk at the bottom.
func renderPegs(s hanoi.State, at hanoi.Peg) string {
	const colWidth = 2*hanoi.NumDisks*2 + 3

	cols := make([]string, 0, hanoi.NumPegs)
	for _, p := range hanoi.AllPegs() {
		disks := s.Disks(p)
		lines := make([]string, 0, hanoi.NumDisks+2)
		for level := hanoi.NumDisks - 1; level >= 0; level-- {
			if level >= len(disks) {
				lines = append(lines, "|")
				continue
			}
			d := disks[level]
			size := hanoi.NumDisks - int(d)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(diskColors[int(d)%len(diskColors)]))
			lines = append(lines, style.Render(strings.Repeat("█", 2*size*2-1)))
		}
		lines = append(lines, strings.Repeat("─", colWidth-2))

		label := p.String()
		if p == at {
			label = titleStyle.Render("▼ " + label)
		}
		lines = append(lines, label)

		col := lipgloss.NewStyle().Width(colWidth).Align(lipgloss.Center)
		cols = append(cols, col.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, cols...)
}

func renderLegend() string {
	items := make([]string, 0, len(seriesColors))
	for _, name := range []string{seriesZ, seriesGripper} {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, style.Render("━━")+" "+name)
	}
	return strings.Join(items, "  ")
}
