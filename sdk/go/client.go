package safeshiftsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal SafeShift HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	DevUserID   string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Report represents the API report model.
type Report struct {
	ID           string   `json:"id"`
	EmployeeID   *string  `json:"employee_id,omitempty"`
	DepartmentID string   `json:"department_id"`
	ReportType   string   `json:"report_type"`
	Severity     string   `json:"severity"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Status       string   `json:"status"`
	IsAnonymous  bool     `json:"is_anonymous"`
	IsFlagged    bool     `json:"is_flagged"`
	FlagReason   *string  `json:"flag_reason,omitempty"`
	Attachments  []string `json:"attachments,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// SubmitReportInput holds the fields accepted on submission.
type SubmitReportInput struct {
	DepartmentID string   `json:"department_id"`
	ReportType   string   `json:"report_type"`
	Severity     string   `json:"severity,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	IsAnonymous  bool     `json:"is_anonymous,omitempty"`
	Attachments  []string `json:"attachments,omitempty"`
}

// FlaggingRule represents a keyword rule.
type FlaggingRule struct {
	ID            string `json:"id"`
	Keyword       string `json:"keyword"`
	SeverityLevel string `json:"severity_level"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

// WellnessScore represents a computed employee score.
type WellnessScore struct {
	ID           string         `json:"id"`
	EmployeeID   string         `json:"employee_id"`
	Score        int            `json:"score"`
	Factors      map[string]int `json:"factors"`
	Notes        string         `json:"notes,omitempty"`
	CalculatedAt string         `json:"calculated_at"`
}

// DepartmentWellness represents a department summary.
type DepartmentWellness struct {
	DepartmentID   string `json:"department_id"`
	WellnessScore  int    `json:"wellness_score"`
	TotalEmployees int    `json:"total_employees"`
	Trend          string `json:"trend"`
}

// ActivityLog represents one recorded activity entry.
type ActivityLog struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	ActivityType string `json:"activity_type"`
	TS           string `json:"ts"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// SubmitReport submits a report and returns it with any flags applied.
func (c *Client) SubmitReport(ctx context.Context, input SubmitReportInput) (Report, error) {
	var resp Report
	err := c.do(ctx, http.MethodPost, "v0/reports", input, &resp)
	return resp, err
}

// GetReport fetches a report by id.
func (c *Client) GetReport(ctx context.Context, id string) (Report, error) {
	var resp Report
	err := c.do(ctx, http.MethodGet, "v0/reports/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// ListReports lists reports, optionally filtered to flagged ones. Admin only.
func (c *Client) ListReports(ctx context.Context, flaggedOnly bool) ([]Report, error) {
	endpoint := "v0/reports"
	if flaggedOnly {
		endpoint += "?flagged=true"
	}
	var resp []Report
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// CreateRule registers a keyword flagging rule. Admin only.
func (c *Client) CreateRule(ctx context.Context, keyword, severityLevel string) (FlaggingRule, error) {
	body := map[string]any{
		"keyword":        keyword,
		"severity_level": severityLevel,
	}
	var resp FlaggingRule
	err := c.do(ctx, http.MethodPost, "v0/rules", body, &resp)
	return resp, err
}

// Heartbeat records an activity log entry for the authenticated employee.
func (c *Client) Heartbeat(ctx context.Context, activityType string) (ActivityLog, error) {
	body := map[string]any{}
	if activityType != "" {
		body["activity_type"] = activityType
	}
	var resp ActivityLog
	err := c.do(ctx, http.MethodPost, "v0/activity", body, &resp)
	return resp, err
}

// EmployeeWellness computes and returns the current score for an employee.
func (c *Client) EmployeeWellness(ctx context.Context, employeeID string) (WellnessScore, error) {
	var resp WellnessScore
	endpoint := "v0/wellness/employees/" + url.PathEscape(employeeID)
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// WellnessHistory returns past scores for an employee, newest first.
func (c *Client) WellnessHistory(ctx context.Context, employeeID string) ([]WellnessScore, error) {
	var resp []WellnessScore
	endpoint := "v0/wellness/employees/" + url.PathEscape(employeeID) + "/history"
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// DepartmentWellness computes the aggregate score for a department. Admin only.
func (c *Client) DepartmentWellness(ctx context.Context, departmentID string) (DepartmentWellness, error) {
	var resp DepartmentWellness
	endpoint := "v0/wellness/departments/" + url.PathEscape(departmentID)
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.DevUserID != "":
		req.Header.Set("X-User-Id", c.DevUserID)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
