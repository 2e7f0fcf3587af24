// Package mcp exposes the topic tracker as MCP (Model Context Protocol) tools
// so AI assistants can read topics and analytics and move topics through
// their lifecycle.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/ptt-tracker/internal/core"
	"github.com/valter-silva-au/ptt-tracker/internal/observability"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// Server wraps the tracker services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	topicMgr    core.TopicManager
	insights    core.InsightEngine
	alertEngine observability.AlertEngine
}

// NewServer creates an MCP server. alertEngine may be nil.
func NewServer(topicMgr core.TopicManager, insights core.InsightEngine, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		topicMgr:    topicMgr,
		insights:    insights,
		alertEngine: alertEngine,
	}
	s.server = gomcp.NewServer(&gomcp.Implementation{Name: "ptt", Version: version}, nil)
	s.registerTools()
	return s
}

// Run serves on stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type filterInput struct {
	Search     string `json:"search,omitempty" jsonschema:"case-insensitive match on title, owner or id"`
	Department string `json:"department,omitempty" jsonschema:"department name, e.g. Nuclear Island"`
	Priority   string `json:"priority,omitempty" jsonschema:"Critical, High, Medium or Low"`
	Status     string `json:"status,omitempty" jsonschema:"New, In Progress, Under Review, Resolved or On Hold"`
}

type getTopicInput struct {
	TopicID string `json:"topic_id" jsonschema:"the topic identifier, e.g. 00042"`
}

type historyOutput struct {
	Date        string               `json:"date"`
	Description string               `json:"description"`
	User        string               `json:"user"`
	Evidence    string               `json:"evidence,omitempty"`
	Changes     []models.FieldChange `json:"changes,omitempty"`
}

type topicOutput struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	Department           string          `json:"department"`
	Priority             string          `json:"priority"`
	Status               string          `json:"status"`
	Owner                string          `json:"owner"`
	RiskScore            int             `json:"risk_score"`
	Consequence          int             `json:"consequence"`
	Likelihood           int             `json:"likelihood"`
	RiskTrend            string          `json:"risk_trend"`
	Created              string          `json:"created"`
	Updated              string          `json:"updated"`
	TargetResolutionDate string          `json:"target_resolution_date"`
	History              []historyOutput `json:"history,omitempty"`
}

type listTopicsOutput struct {
	Topics []topicOutput `json:"topics"`
	Count  int           `json:"count"`
}

type updateTopicStatusInput struct {
	TopicID string `json:"topic_id" jsonschema:"the topic identifier"`
	Status  string `json:"status" jsonschema:"the new status: New, In Progress, Under Review, Resolved or On Hold"`
	Note    string `json:"note,omitempty" jsonschema:"history note; defaults to 'Status changed to <status>'"`
	User    string `json:"user,omitempty" jsonschema:"who made the change"`
}

type updateTopicStatusOutput struct {
	Message string      `json:"message"`
	Topic   topicOutput `json:"topic"`
}

type summaryOutput struct {
	Summary string `json:"summary"`
}

type getTopicHistoryInput struct {
	TopicID string `json:"topic_id" jsonschema:"the topic identifier"`
	Months  int    `json:"months,omitempty" jsonschema:"how many months back to sample weekly; defaults to 6"`
}

type topicHistoryOutput struct {
	Points []models.RiskHistoryPoint `json:"points"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	TopicID     string `json:"topic_id,omitempty"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_topic",
		Description: "Get a Priority Technical Topic by ID, including its risk score and change history.",
	}, s.handleGetTopic)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_topics",
		Description: "List topics with optional search, department, priority and status filters.",
	}, s.handleListTopics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_topic_status",
		Description: "Move a topic to a new status and record the change in its history.",
	}, s.handleUpdateTopicStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get the dashboard metrics: counts, exposure trend, waterfall, entropy, Pareto frontier, delivery confidence and stability.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_summary",
		Description: "Get the rule-based executive summary of the filtered topics as markdown.",
	}, s.handleGetSummary)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_insights",
		Description: "Get one interpretive sentence per dashboard chart.",
	}, s.handleGetInsights)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_topic_history",
		Description: "Sample one topic's risk score weekly over the last months.",
	}, s.handleGetTopicHistory)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate alert rules: overdue topics, escalating critical topics, stagnant work, exposure and backlog ceilings, unstable weeks.",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleGetTopic(_ context.Context, _ *gomcp.CallToolRequest, input getTopicInput) (*gomcp.CallToolResult, topicOutput, error) {
	if input.TopicID == "" {
		return errorResult("topic_id is required"), topicOutput{}, nil
	}
	topic, err := s.topicMgr.GetTopic(input.TopicID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting topic %s: %s", input.TopicID, err)), topicOutput{}, nil
	}
	return nil, topicToOutput(*topic, true), nil
}

func (s *Server) handleListTopics(_ context.Context, _ *gomcp.CallToolRequest, input filterInput) (*gomcp.CallToolResult, listTopicsOutput, error) {
	filter, err := input.toFilter()
	if err != nil {
		return errorResult(err.Error()), listTopicsOutput{Topics: []topicOutput{}}, nil
	}
	topics, err := s.topicMgr.ListTopics(filter)
	if err != nil {
		return errorResult(fmt.Sprintf("listing topics: %s", err)), listTopicsOutput{Topics: []topicOutput{}}, nil
	}

	out := listTopicsOutput{
		Topics: make([]topicOutput, len(topics)),
		Count:  len(topics),
	}
	for i, t := range topics {
		out.Topics[i] = topicToOutput(t, false)
	}
	return nil, out, nil
}

func (s *Server) handleUpdateTopicStatus(_ context.Context, _ *gomcp.CallToolRequest, input updateTopicStatusInput) (*gomcp.CallToolResult, updateTopicStatusOutput, error) {
	if input.TopicID == "" {
		return errorResult("topic_id is required"), updateTopicStatusOutput{}, nil
	}
	status, ok := models.ParseStatus(input.Status)
	if !ok {
		return errorResult(fmt.Sprintf("invalid status %q: must be one of New, In Progress, Under Review, Resolved, On Hold", input.Status)), updateTopicStatusOutput{}, nil
	}

	topic, err := s.topicMgr.UpdateStatus(input.TopicID, status, core.ChangeNote{Description: input.Note, User: input.User})
	if err != nil {
		return errorResult(fmt.Sprintf("updating topic %s status: %s", input.TopicID, err)), updateTopicStatusOutput{}, nil
	}
	return nil, updateTopicStatusOutput{
		Message: fmt.Sprintf("topic %s status updated to %s", topic.ID, topic.Status),
		Topic:   topicToOutput(*topic, false),
	}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input filterInput) (*gomcp.CallToolResult, models.DashboardMetrics, error) {
	filter, err := input.toFilter()
	if err != nil {
		return errorResult(err.Error()), models.DashboardMetrics{}, nil
	}
	m, err := s.insights.Metrics(filter)
	if err != nil {
		return errorResult(fmt.Sprintf("building metrics: %s", err)), models.DashboardMetrics{}, nil
	}
	return nil, m, nil
}

func (s *Server) handleGetSummary(_ context.Context, _ *gomcp.CallToolRequest, input filterInput) (*gomcp.CallToolResult, summaryOutput, error) {
	filter, err := input.toFilter()
	if err != nil {
		return errorResult(err.Error()), summaryOutput{}, nil
	}
	summary, err := s.insights.Summary(filter)
	if err != nil {
		return errorResult(fmt.Sprintf("building summary: %s", err)), summaryOutput{}, nil
	}
	return nil, summaryOutput{Summary: summary}, nil
}

func (s *Server) handleGetInsights(_ context.Context, _ *gomcp.CallToolRequest, input filterInput) (*gomcp.CallToolResult, models.ChartInsights, error) {
	filter, err := input.toFilter()
	if err != nil {
		return errorResult(err.Error()), models.ChartInsights{}, nil
	}
	insights, err := s.insights.Insights(filter)
	if err != nil {
		return errorResult(fmt.Sprintf("building insights: %s", err)), models.ChartInsights{}, nil
	}
	return nil, insights, nil
}

func (s *Server) handleGetTopicHistory(_ context.Context, _ *gomcp.CallToolRequest, input getTopicHistoryInput) (*gomcp.CallToolResult, topicHistoryOutput, error) {
	empty := topicHistoryOutput{Points: []models.RiskHistoryPoint{}}
	if input.TopicID == "" {
		return errorResult("topic_id is required"), empty, nil
	}
	if input.Months < 0 {
		return errorResult("months must not be negative"), empty, nil
	}

	var start time.Time
	if input.Months > 0 {
		start = time.Now().UTC().AddDate(0, -input.Months, 0)
	}
	points, err := s.insights.TopicHistory(input.TopicID, start, time.Time{})
	if err != nil {
		return errorResult(fmt.Sprintf("building history for %s: %s", input.TopicID, err)), empty, nil
	}
	return nil, topicHistoryOutput{Points: points}, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			TopicID:     a.TopicID,
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}
	return nil, out, nil
}

// --- Helpers ---

func (in filterInput) toFilter() (models.TopicFilter, error) {
	filter := models.TopicFilter{Search: in.Search}
	if in.Department != "" {
		d, ok := models.ParseDepartment(in.Department)
		if !ok {
			return filter, fmt.Errorf("invalid department %q", in.Department)
		}
		filter.Department = d
	}
	if in.Priority != "" {
		p, ok := models.ParsePriority(in.Priority)
		if !ok {
			return filter, fmt.Errorf("invalid priority %q", in.Priority)
		}
		filter.Priority = p
	}
	if in.Status != "" {
		st, ok := models.ParseStatus(in.Status)
		if !ok {
			return filter, fmt.Errorf("invalid status %q", in.Status)
		}
		filter.Statuses = []models.Status{st}
	}
	return filter, nil
}

func topicToOutput(t models.Topic, withHistory bool) topicOutput {
	out := topicOutput{
		ID:                   t.ID,
		Title:                t.Title,
		Description:          t.Description,
		Department:           string(t.Department),
		Priority:             string(t.Priority),
		Status:               string(t.Status),
		Owner:                t.Owner,
		RiskScore:            t.RiskScore(),
		Consequence:          t.Consequence,
		Likelihood:           t.Likelihood,
		RiskTrend:            string(t.RiskTrend),
		Created:              t.CreatedAt.Format(time.RFC3339),
		Updated:              t.UpdatedAt.Format(time.RFC3339),
		TargetResolutionDate: t.TargetResolutionDate.Format(time.DateOnly),
	}
	if withHistory {
		for _, h := range t.History {
			out.History = append(out.History, historyOutput{
				Date:        h.Date.Format(time.RFC3339),
				Description: h.Description,
				User:        h.User,
				Evidence:    h.Evidence,
				Changes:     h.Changes,
			})
		}
	}
	return out
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
