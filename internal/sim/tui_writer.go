package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"responseops-sim/internal/config"
	"responseops-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries an audit log line for the viewport.
type logMsg struct{ line string }

// alertMsg carries an alert log line.
type alertMsg struct{ line string }

// telemetryMsg carries one telemetry row.
type telemetryMsg struct{ telemetry.TelemetryRow }

// dashboardMsg carries the per-tick aggregate state.
type dashboardMsg struct{ DashboardRow }

const maxSectionHeightPct = 0.2

// TUIWriter renders the command console as a bubbletea TUI.
type TUIWriter struct {
	program     teaProgram
	droneColors map[string]string
	colorIdx    int
	done        chan struct{}
	sendSignal  atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.ConsoleConfig) *TUIWriter {
	dc := make(map[string]string)
	w := &TUIWriter{droneColors: dc, done: make(chan struct{})}
	w.sendSignal.Store(true)
	m := newTUIModel(cfg, dc)
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p
	for _, d := range cfg.Drones {
		w.getDroneColor(d.ID)
	}
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

func (w *TUIWriter) getDroneColor(id string) string {
	if c, ok := w.droneColors[id]; ok {
		return c
	}
	c := dronePalette[w.colorIdx%len(dronePalette)]
	w.droneColors[id] = c
	w.colorIdx++
	return c
}

// Write implements TelemetryWriter.
func (w *TUIWriter) Write(row telemetry.TelemetryRow) error {
	w.program.Send(telemetryMsg{row})
	return nil
}

// WriteBatch outputs multiple telemetry rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(row telemetry.EventRow) error {
	line := fmt.Sprintf("%s[%s]%s %s[%s]%s %s: %s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, row.Category, colorReset,
		row.Actor, row.Message)
	w.program.Send(logMsg{line: line})
	return nil
}

// WriteAlert implements AlertWriter.
func (w *TUIWriter) WriteAlert(row telemetry.AlertRow) error {
	sevColor := colorYellow
	if row.Severity == "High" || row.Severity == "Critical" {
		sevColor = colorRed
	}
	line := fmt.Sprintf("%s[%s]%s %s%s%s %s: %s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		sevColor, row.Severity, colorReset,
		row.Type, row.Description)
	w.program.Send(alertMsg{line: line})
	return nil
}

// WriteDashboard implements dashboardWriter.
func (w *TUIWriter) WriteDashboard(row DashboardRow) error {
	w.program.Send(dashboardMsg{row})
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

var (
	stripStyle    = lipgloss.NewStyle().Bold(true)
	stripOKStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	stripBadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type tuiModel struct {
	cfg          *config.ConsoleConfig
	incTable     table.Model
	logVP        viewport.Model
	alertVP      viewport.Model
	logs         []string
	alertLogs    []string
	drones       map[string]telemetry.TelemetryRow
	droneOrder   []string
	droneColors  map[string]string
	dash         DashboardRow
	haveDash     bool
	wrap         bool
	autoscroll   bool
	help         bool
	showDrones   bool
	header       string
	headerHeight int
	height       int
}

func newTUIModel(cfg *config.ConsoleConfig, droneColors map[string]string) tuiModel {
	cols := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Type", Width: 28},
		{Title: "Severity", Width: 9},
		{Title: "Status", Width: 11},
		{Title: "Drone", Width: 7},
		{Title: "Location", Width: 22},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(6))
	m := tuiModel{
		cfg:         cfg,
		incTable:    t,
		logVP:       viewport.New(0, 0),
		alertVP:     viewport.New(0, 0),
		drones:      make(map[string]telemetry.TelemetryRow),
		droneColors: droneColors,
		autoscroll:  true,
		showDrones:  true,
	}
	return m
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.logVP.Width = msg.Width
		m.alertVP.Width = msg.Width
		m.height = msg.Height
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshLogs()
		m.refreshAlerts()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
				m.updateViewportHeight()
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshLogs()
			m.refreshAlerts()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.logVP.GotoBottom()
				m.alertVP.GotoBottom()
			}
			return m, nil
		case "d":
			m.showDrones = !m.showDrones
			m.header = m.renderHeader()
			m.headerHeight = lipgloss.Height(m.header)
			m.updateViewportHeight()
			return m, nil
		case "h", "?":
			m.help = !m.help
			m.updateViewportHeight()
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.logVP.LineDown(1)
				m.alertVP.LineDown(1)
			case "k", "up":
				m.logVP.LineUp(1)
				m.alertVP.LineUp(1)
			case "pgdown":
				m.logVP.LineDown(10)
				m.alertVP.LineDown(10)
			case "pgup":
				m.logVP.LineUp(10)
				m.alertVP.LineUp(10)
			}
		}
	case telemetryMsg:
		if _, ok := m.drones[msg.DroneID]; !ok {
			m.droneOrder = append(m.droneOrder, msg.DroneID)
		}
		m.drones[msg.DroneID] = msg.TelemetryRow
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
	case dashboardMsg:
		m.dash = msg.DashboardRow
		m.haveDash = true
		m.refreshIncidents()
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
	case logMsg:
		m.logs = append(m.logs, msg.line)
		m.refreshLogs()
	case alertMsg:
		m.alertLogs = append(m.alertLogs, msg.line)
		m.refreshAlerts()
	}
	return m, nil
}

func (m *tuiModel) updateViewportHeight() {
	used := m.headerHeight + m.incTable.Height() + 6
	rest := m.height - used
	if rest < 2 {
		rest = 2
	}
	alertH := int(float64(m.height) * maxSectionHeightPct)
	if alertH < 1 {
		alertH = 1
	}
	if alertH > rest-1 {
		alertH = rest - 1
	}
	m.alertVP.Height = alertH
	m.logVP.Height = rest - alertH
}

func (m *tuiModel) refreshLogs() {
	content := "none"
	if len(m.logs) > 0 {
		lines := m.logs
		if m.wrap && m.logVP.Width > 0 {
			wrapped := make([]string, len(lines))
			for i, l := range lines {
				wrapped[i] = wordwrap.String(l, m.logVP.Width)
			}
			lines = wrapped
		}
		content = strings.Join(lines, "\n")
	}
	m.logVP.SetContent(content)
	if m.autoscroll {
		m.logVP.GotoBottom()
	}
}

func (m *tuiModel) refreshAlerts() {
	content := "none"
	if len(m.alertLogs) > 0 {
		content = strings.Join(m.alertLogs, "\n")
	}
	m.alertVP.SetContent(content)
	if m.autoscroll {
		m.alertVP.GotoBottom()
	}
}

func (m *tuiModel) refreshIncidents() {
	rows := make([]table.Row, 0, len(m.dash.Incidents))
	for _, i := range m.dash.Incidents {
		rows = append(rows, table.Row{
			i.ID, i.Type, string(i.Severity), string(i.Status), i.AssignedDroneID, i.LocationName,
		})
	}
	m.incTable.SetRows(rows)
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := dimStyle.Render(strings.Repeat("─", max(m.logVP.Width, 1)))
	sections := []string{
		m.header,
		divider,
		"Incidents:",
		m.incTable.View(),
		divider,
		"Alerts:",
		m.alertVP.View(),
		divider,
		"Event Log:",
		m.logVP.View(),
	}
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	strip := m.renderStrip()
	if !m.showDrones {
		return strip
	}
	return strip + "\n" + m.renderFleet()
}

func (m tuiModel) renderStrip() string {
	if !m.haveDash {
		return stripStyle.Render(fmt.Sprintf("Console %s | waiting for first tick", m.cfg.ConsoleID))
	}
	s := m.dash.Strip
	net := stripOKStyle.Render(s.Network)
	if s.Network != "Stable" {
		net = stripBadStyle.Render(s.Network)
	}
	health := stripOKStyle.Render(s.SystemHealth)
	if s.OpenAlerts > 0 {
		health = stripBadStyle.Render(s.SystemHealth)
	}
	parts := []string{
		stripStyle.Render("Console " + m.cfg.ConsoleID),
		"health=" + health,
		fmt.Sprintf("alerts=%d", s.OpenAlerts),
		"net=" + net,
		fmt.Sprintf("drones=%d/%d", s.ConnectedDrones, s.TotalDrones),
		fmt.Sprintf("backup=%s", s.BackupCountdown.Round(time.Minute)),
		fmt.Sprintf("uptime=%.1f%%", m.dash.KPIs.UptimePercent),
		fmt.Sprintf("avg-response=%.1fm", m.dash.KPIs.AvgResponseMinutes),
	}
	if s.AutoRun {
		parts = append(parts, stripBadStyle.Render("auto-run"))
	}
	return strings.Join(parts, dimStyle.Render(" │ "))
}

func (m tuiModel) renderFleet() string {
	var b strings.Builder
	b.WriteString("Fleet\n")
	for idx, id := range m.droneOrder {
		row := m.drones[id]
		prefix := "├─"
		if idx == len(m.droneOrder)-1 {
			prefix = "└─"
		}
		c := m.droneColors[id]
		statusColor := colorGreen
		if row.Status == telemetry.StatusDisconnected {
			statusColor = colorRed
		}
		fmt.Fprintf(&b, "%s %s%s%s batt=%.1f%% temp=%.1f pos=(%.5f,%.5f) %s%s%s\n",
			prefix, c, id, colorReset, row.Battery, row.Temp, row.Lat, row.Lng,
			statusColor, row.Status, colorReset)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Keys:",
		"  q, ctrl+c  quit",
		"  w          toggle line wrapping",
		"  s          toggle autoscroll",
		"  d          toggle fleet panel",
		"  j/k        scroll logs (autoscroll off)",
		"  ?, h, esc  close help",
	}
	return strings.Join(lines, "\n")
}
