package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/ptt-tracker/internal/storage"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
	"go.uber.org/zap"
)

// Dashboard panel indices.
const (
	panelOverview = iota
	panelTopics
	panelAlerts
	panelCount
)

// dashboardTopTopics is how many active topics the topics panel lists.
const dashboardTopTopics = 8

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	metrics *models.DashboardMetrics
	topics  []models.Topic
	alerts  []alertSnapshot
	insight string

	// changes signals store writes; nil disables live reload.
	changes <-chan struct{}
	reloads int

	// State.
	loading bool
	err     error
}

type alertSnapshot struct {
	severity string
	message  string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	metrics *models.DashboardMetrics
	topics  []models.Topic
	alerts  []alertSnapshot
	insight string
	err     error
}

// storeChangedMsg reports that the topic store was written by someone.
type storeChangedMsg struct{}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	priorityCritical = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	priorityHigh     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	priorityMedium   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	priorityLow      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	deltaUp   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	deltaDown = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(changes <-chan struct{}) dashboardModel {
	return dashboardModel{
		activePanel: panelOverview,
		loading:     true,
		changes:     changes,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(loadData, waitForChange(m.changes))
}

// waitForChange blocks until the store changes. A closed or nil channel
// stops the reload loop.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeChangedMsg:
		m.reloads++
		return m, tea.Batch(loadData, waitForChange(m.changes))

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.metrics = msg.metrics
		m.topics = msg.topics
		m.alerts = msg.alerts
		m.insight = msg.insight
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" PTT Risk Dashboard ")
	help := "tab: switch panel | r: refresh | q: quit"
	if m.changes != nil {
		help += " | live"
	}
	helpLine := helpStyle.Render(help)

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, helpLine)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, helpLine)
	}

	overview := m.renderOverviewPanel()
	topics := m.renderTopicsPanel()
	alerts := m.renderAlertsPanel()

	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 3
		overview = m.applyPanelStyle(panelOverview, overview, colWidth-4)
		topics = m.applyPanelStyle(panelTopics, topics, colWidth-4)
		alerts = m.applyPanelStyle(panelAlerts, alerts, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, overview, topics, alerts)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		overview = m.applyPanelStyle(panelOverview, overview, panelWidth)
		topics = m.applyPanelStyle(panelTopics, topics, panelWidth)
		alerts = m.applyPanelStyle(panelAlerts, alerts, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, overview, topics, alerts)
	}

	if m.insight != "" {
		body += "\n\n  " + m.insight
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, helpLine)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderOverviewPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Exposure"))
	b.WriteString("\n")

	if m.metrics == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metrics
	lines := []struct {
		label string
		value int
	}{
		{"Topics", md.TotalTopics},
		{"Critical", md.CriticalCount},
		{"Escalating", md.EscalatingCount},
		{"Resolved", md.ResolvedCount},
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "  %-14s %d\n", l.label, l.value)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %-14s %d\n", "30d ago", md.Waterfall(models.WaterfallStart))
	fmt.Fprintf(&b, "  %-14s %s\n", "New risks", renderDelta(md.Waterfall(models.WaterfallNewRisks)))
	fmt.Fprintf(&b, "  %-14s %s\n", "Resolved", renderDelta(md.Waterfall(models.WaterfallResolved)))
	fmt.Fprintf(&b, "  %-14s %d", "Current", md.Waterfall(models.WaterfallCurrent))

	if n := len(md.ControlData); n > 0 {
		fmt.Fprintf(&b, "\n  %-14s %+d", "Stability", md.ControlData[n-1].Stability)
	}
	return b.String()
}

func (m dashboardModel) renderTopicsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Top Risks"))
	b.WriteString("\n")

	if len(m.topics) == 0 {
		b.WriteString("  No active topics.")
		return b.String()
	}

	for _, t := range m.topics {
		label := fmt.Sprintf("  %-6s %2d %-8s %s", t.ID, t.RiskScore(), t.Priority, t.Title)
		b.WriteString(styleForPriority(t.Priority).Render(label))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		fmt.Fprintf(&b, "  %s %s\n", sev, a.message)
	}

	fmt.Fprintf(&b, "\n  Total: %d alert(s)", len(m.alerts))
	return b.String()
}

func renderDelta(v int) string {
	s := fmt.Sprintf("%+d", v)
	switch {
	case v > 0:
		return deltaUp.Render(s)
	case v < 0:
		return deltaDown.Render(s)
	}
	return s
}

func styleForPriority(p models.Priority) lipgloss.Style {
	switch p {
	case models.PriorityCritical:
		return priorityCritical
	case models.PriorityHigh:
		return priorityHigh
	case models.PriorityMedium:
		return priorityMedium
	case models.PriorityLow:
		return priorityLow
	default:
		return lipgloss.NewStyle()
	}
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

// topRisks returns up to n active topics ordered by risk score, highest first,
// ties broken by ID.
func topRisks(topics []models.Topic, n int) []models.Topic {
	active := make([]models.Topic, 0, len(topics))
	for _, t := range topics {
		if t.IsActive() {
			active = append(active, t)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].RiskScore() != active[j].RiskScore() {
			return active[i].RiskScore() > active[j].RiskScore()
		}
		return active[i].ID < active[j].ID
	})
	if len(active) > n {
		active = active[:n]
	}
	return active
}

func loadData() tea.Msg {
	var result dataLoadedMsg

	if Insights != nil {
		metrics, err := Insights.Metrics(models.TopicFilter{})
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.metrics = &metrics

		summary, err := Insights.Insights(models.TopicFilter{})
		if err != nil {
			result.err = fmt.Errorf("loading insights: %w", err)
			return result
		}
		result.insight = summary.WaterfallInsight
	}

	if TopicMgr != nil {
		topics, err := TopicMgr.ListTopics(models.TopicFilter{})
		if err != nil {
			result.err = fmt.Errorf("loading topics: %w", err)
			return result
		}
		result.topics = topRisks(topics, dashboardTopTopics)
	}

	if AlertEngine != nil {
		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			result.err = fmt.Errorf("loading alerts: %w", err)
			return result
		}
		sortAlerts(alerts)
		result.alerts = make([]alertSnapshot, 0, len(alerts))
		for _, a := range alerts {
			result.alerts = append(result.alerts, alertSnapshot{
				severity: string(a.Severity),
				message:  a.Message,
			})
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for risk exposure and alerts",
	Long: `Launch an interactive terminal dashboard showing exposure, the highest
active risks and alerts. The view reloads whenever the topic store changes.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Insights == nil {
			return fmt.Errorf("insight engine not initialized")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var changes <-chan struct{}
		if StorePath != "" {
			ch, err := storage.Watch(ctx, StorePath, Logger)
			if err != nil {
				Logger.Warn("live reload disabled", zap.String("path", StorePath), zap.Error(err))
			} else {
				changes = ch
			}
		}

		p := tea.NewProgram(newDashboardModel(changes), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
