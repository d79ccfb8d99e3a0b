package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/grillmonster/pkg/audio"
	"github.com/gwillem/grillmonster/pkg/prop"
	"github.com/gwillem/grillmonster/pkg/show"
)

type RunCommand struct {
	SkipSelfTest bool   `long:"skip-selftest" description:"Arm immediately without cycling the actuators"`
	Dashboard    bool   `long:"dashboard" description:"Show a live dashboard instead of log output"`
	Category     string `long:"category" description:"Audio category, a sub-directory of the audio root"`
}

const (
	headerHeight = 4 // title + status + inputs + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Servo colors - distinct colors for each servo
var servoColors = map[prop.ServoName]string{
	prop.RightLid: "196", // red
	prop.LeftLid:  "46",  // green
	prop.Pupil:    "51",  // cyan
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	onStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1)
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Background(lipgloss.Color("236")).Padding(0, 1)
	phaseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
)

func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.Category != "" {
		cfg.Category = c.Category
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logs *logWriter
	logger := newLogger(os.Stderr)
	if c.Dashboard {
		logs = newLogWriter(32)
		logger = newLogger(logs)
	}

	p, err := prop.OpenHardware(cfg)
	if err != nil {
		return err
	}

	ctrl, err := show.NewController(show.Config{
		Prop:           p,
		Library:        audio.NewLibrary(cfg.AudioRoot),
		Player:         newPlayer(logger),
		Logger:         logger,
		Category:       cfg.Category,
		PWMFrequency:   cfg.PWMFrequency,
		Volume:         cfg.Volume,
		PollInterval:   cfg.PollInterval,
		Cooldown:       cfg.Cooldown,
		SelfTestWarmup: cfg.SelfTestWarmup,
		SkipSelfTest:   c.SkipSelfTest,
	})
	if err != nil {
		p.Close()
		return err
	}
	defer ctrl.Close()

	if c.Dashboard {
		err = runDashboard(ctx, ctrl, logs, cfg.Calibration)
		// Nothing reads the log box once the TUI is gone.
		logs.detach(os.Stderr)
	} else {
		logger.Info("press Ctrl-C to quit")
		err = ctrl.Start(ctx)
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted, cleaning up")
		return nil
	}
	return err
}

// runDashboard runs the controller in the background and the TUI in front.
func runDashboard(ctx context.Context, ctrl *show.Controller, logs *logWriter, cal prop.Calibration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newDashboardModel(ctrl, logs, cal), tea.WithAltScreen(), tea.WithContext(ctx))

	done := make(chan error, 1)
	go func() {
		err := ctrl.Start(ctx)
		done <- err
		p.Send(stoppedMsg{err: err})
	}()

	_, runErr := p.Run()
	cancel()
	err := <-done
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard: %w", runErr)
	}
	return err
}

// logWriter hands each log entry to the dashboard until it is detached.
type logWriter struct {
	ch chan string

	mu  sync.Mutex
	out io.Writer
}

func newLogWriter(size int) *logWriter {
	return &logWriter{ch: make(chan string, size)}
}

// detach sends all further entries to out instead of the dashboard.
func (w *logWriter) detach(out io.Writer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out = out
}

func (w *logWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.out != nil {
		return w.out.Write(b)
	}
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		select {
		case w.ch <- line:
		default:
			// Drop if channel full
		}
	}
	return len(b), nil
}

type dashboardModel struct {
	ctrl     *show.Controller
	logs     *logWriter
	chart    *streamlinechart.Model
	status   show.Status
	width    int      // terminal width
	height   int      // terminal height
	lines    []string // last N log messages
	stopped  error
	quitting bool
}

// Messages from the controller
type statusMsg show.Status
type logMsg string
type stoppedMsg struct{ err error }

func waitForStatus(ctrl *show.Controller) tea.Cmd {
	return func() tea.Msg {
		return statusMsg(<-ctrl.States())
	}
}

func waitForLog(logs *logWriter) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-logs.ch)
	}
}

// pulseRange returns a y-axis range covering every calibrated pulse.
func pulseRange(cal prop.Calibration) (float64, float64) {
	lo, hi := prop.MaxPulse, 0
	for _, sc := range cal {
		lo = min(lo, sc.Open, sc.Closed)
		hi = max(hi, sc.Open, sc.Closed)
	}
	if lo > hi {
		return 0, prop.MaxPulse
	}
	pad := max((hi-lo)/10, 10)
	return float64(max(lo-pad, 0)), float64(min(hi+pad, prop.MaxPulse))
}

func newDashboardModel(ctrl *show.Controller, logs *logWriter, cal prop.Calibration) dashboardModel {
	lo, hi := pulseRange(cal)
	chart := streamlinechart.New(80, 15,
		streamlinechart.WithYRange(lo, hi),
	)

	// Set up data set styles for each servo
	for _, name := range prop.AllServos() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(servoColors[name]))
		chart.SetDataSetStyles(string(name), runes.ThinLineStyle, style)
	}

	return dashboardModel{
		ctrl:   ctrl,
		logs:   logs,
		chart:  &chart,
		status: show.Status{Phase: show.PhaseIdle},
	}
}

func (m *dashboardModel) addLog(msg string) {
	m.lines = append(m.lines, msg)
	if len(m.lines) > maxLogs {
		m.lines = m.lines[len(m.lines)-maxLogs:]
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *dashboardModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 15 // default size before we know terminal size
	}
	width = max(m.width-borderSize-2, 40)
	height = max(m.height-headerHeight-legendHeight-footerHeight-borderSize, 8)
	return width, height
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		waitForStatus(m.ctrl),
		waitForLog(m.logs),
	)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		}

	case statusMsg:
		m.status = show.Status(msg)
		for _, name := range prop.AllServos() {
			if pulse, ok := m.status.Pulses[name]; ok {
				m.chart.PushDataSet(string(name), float64(pulse))
			}
		}
		m.chart.DrawAll()
		return m, waitForStatus(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.logs)

	case stoppedMsg:
		m.stopped = msg.err
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.addLog("stopped: " + msg.err.Error())
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return "Shutting down.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Grill Monster"))
	sb.WriteString(fmt.Sprintf(" - %d activations", m.status.Activations))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n")
	sb.WriteString(phaseStyle.Render(string(m.status.Phase)))
	if m.status.Step != "" {
		sb.WriteString(statusStyle.Render("  " + m.status.Step))
	}
	sb.WriteString("\n")
	sb.WriteString(renderLevels(m.status))
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20))

	var logLines string
	if len(m.lines) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.lines, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

// renderLevels shows every sensor and output as a badge.
func renderLevels(s show.Status) string {
	badge := func(name string, on bool) string {
		if on {
			return onStyle.Render(name)
		}
		return offStyle.Render(name)
	}

	var items []string
	items = append(items,
		badge(string(prop.Plate), s.Inputs.Plate),
		badge(string(prop.Button), s.Inputs.Button),
		badge(string(prop.Motion), s.Inputs.Motion),
	)
	for _, o := range prop.AllOutputs() {
		items = append(items, badge(string(o), s.Outputs[o]))
	}
	return strings.Join(items, " ")
}

func renderLegend() string {
	var items []string
	for _, name := range prop.AllServos() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(servoColors[name])).Bold(true)
		item := colorStyle.Render("━━") + " " + string(name)
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}
