package server

import (
	"safeshift/internal/domain"
	"safeshift/internal/engine"
)

// Request payloads

type SubmitReportRequest struct {
	DepartmentID       string   `json:"department_id"`
	ReportType         string   `json:"report_type"`
	Severity           string   `json:"severity,omitempty" enum:"low,medium,high,critical"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	IsAnonymous        bool     `json:"is_anonymous,omitempty"`
	IncidentDate       *string  `json:"incident_date,omitempty" format:"date-time"`
	WitnessInformation *string  `json:"witness_information,omitempty"`
	Attachments        []string `json:"attachments,omitempty"`
}

type UpdateReportStatusRequest struct {
	Status string `json:"status" enum:"pending,in_progress,resolved,dismissed"`
}

type AssignReportRequest struct {
	AssigneeID string `json:"assignee_id"`
}

type CreateRuleRequest struct {
	Keyword       string `json:"keyword"`
	SeverityLevel string `json:"severity_level" enum:"low,medium,high,critical"`
}

type RecordActivityRequest struct {
	ActivityType string `json:"activity_type,omitempty" enum:"active,login,logout"`
}

type CreateTaskRequest struct {
	EmployeeID  string  `json:"employee_id"`
	ReportID    *string `json:"report_id,omitempty"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty" format:"date-time"`
	Priority    string  `json:"priority,omitempty" enum:"low,medium,high"`
}

type CreateEmployeeRequest struct {
	FullName     string  `json:"full_name"`
	Email        string  `json:"email" format:"email"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	Role         string  `json:"role,omitempty" enum:"employee,admin"`
}

type CreateDepartmentRequest struct {
	Name string  `json:"name"`
	Icon *string `json:"icon,omitempty"`
}

// Response payloads

type ReportResponse struct {
	ID                 string   `json:"id"`
	EmployeeID         *string  `json:"employee_id,omitempty"`
	DepartmentID       string   `json:"department_id"`
	ReportType         string   `json:"report_type"`
	Severity           string   `json:"severity"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Status             string   `json:"status"`
	AssignedTo         *string  `json:"assigned_to,omitempty"`
	IsAnonymous        bool     `json:"is_anonymous"`
	IsFlagged          bool     `json:"is_flagged"`
	FlagReason         *string  `json:"flag_reason,omitempty"`
	IncidentDate       *string  `json:"incident_date,omitempty" format:"date-time"`
	WitnessInformation *string  `json:"witness_information,omitempty"`
	Attachments        []string `json:"attachments,omitempty"`
	CreatedAt          string   `json:"created_at" format:"date-time"`
	UpdatedAt          string   `json:"updated_at" format:"date-time"`
}

type RuleResponse struct {
	ID            string `json:"id"`
	Keyword       string `json:"keyword"`
	SeverityLevel string `json:"severity_level"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at" format:"date-time"`
}

type ActivityLogResponse struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	ActivityType string `json:"activity_type"`
	TS           string `json:"ts" format:"date-time"`
}

type TaskResponse struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	ReportID    *string `json:"report_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty" format:"date-time"`
	Priority    string  `json:"priority"`
	IsCompleted bool    `json:"is_completed"`
	CreatedAt   string  `json:"created_at" format:"date-time"`
	UpdatedAt   string  `json:"updated_at" format:"date-time"`
}

type WellnessScoreResponse struct {
	ID           string         `json:"id"`
	EmployeeID   string         `json:"employee_id"`
	Score        int            `json:"score"`
	Factors      map[string]int `json:"factors"`
	Notes        string         `json:"notes,omitempty"`
	CalculatedAt string         `json:"calculated_at" format:"date-time"`
}

type DepartmentWellnessResponse struct {
	DepartmentID   string `json:"department_id"`
	WellnessScore  int    `json:"wellness_score"`
	TotalEmployees int    `json:"total_employees"`
	Trend          string `json:"trend"`
}

type EmployeeResponse struct {
	ID                      string  `json:"id"`
	FullName                string  `json:"full_name"`
	Email                   string  `json:"email"`
	EmployeeCode            string  `json:"employee_code,omitempty"`
	DepartmentID            *string `json:"department_id,omitempty"`
	Role                    string  `json:"role"`
	IsActive                bool    `json:"is_active"`
	ActivityTrackingEnabled bool    `json:"activity_tracking_enabled"`
	CreatedAt               string  `json:"created_at" format:"date-time"`
}

type DepartmentResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Icon           string `json:"icon,omitempty"`
	WellnessScore  *int   `json:"wellness_score,omitempty"`
	TotalEmployees *int   `json:"total_employees,omitempty"`
	WellnessTrend  string `json:"wellness_trend,omitempty"`
	CreatedAt      string `json:"created_at" format:"date-time"`
}

type SystemLogResponse struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Action     string `json:"action"`
	UserID     string `json:"user_id,omitempty"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id,omitempty"`
	Details    string `json:"details_json"`
}

type MetricsResponse struct {
	ReportsByStatus map[string]int `json:"reports_by_status"`
	FlaggedReports  int            `json:"flagged_reports"`
	Departments     int            `json:"departments"`
	Employees       int            `json:"employees"`
}

func reportResponse(r domain.Report) ReportResponse {
	return ReportResponse{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		DepartmentID:       r.DepartmentID,
		ReportType:         r.ReportType,
		Severity:           r.Severity,
		Title:              r.Title,
		Description:        r.Description,
		Status:             r.Status,
		AssignedTo:         r.AssignedTo,
		IsAnonymous:        r.IsAnonymous,
		IsFlagged:          r.IsFlagged,
		FlagReason:         r.FlagReason,
		IncidentDate:       r.IncidentDate,
		WitnessInformation: r.WitnessInformation,
		Attachments:        r.Attachments,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func mapReports(items []domain.Report) []ReportResponse {
	res := make([]ReportResponse, 0, len(items))
	for _, r := range items {
		res = append(res, reportResponse(r))
	}
	return res
}

func ruleResponse(r domain.FlaggingRule) RuleResponse {
	return RuleResponse{
		ID:            r.ID,
		Keyword:       r.Keyword,
		SeverityLevel: r.SeverityLevel,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
	}
}

func mapRules(items []domain.FlaggingRule) []RuleResponse {
	res := make([]RuleResponse, 0, len(items))
	for _, r := range items {
		res = append(res, ruleResponse(r))
	}
	return res
}

func activityLogResponse(a domain.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{ID: a.ID, EmployeeID: a.EmployeeID, ActivityType: a.ActivityType, TS: a.TS}
}

func taskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		EmployeeID:  t.EmployeeID,
		ReportID:    t.ReportID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func mapTasks(items []domain.Task) []TaskResponse {
	res := make([]TaskResponse, 0, len(items))
	for _, t := range items {
		res = append(res, taskResponse(t))
	}
	return res
}

func wellnessScoreResponse(w domain.WellnessScore) WellnessScoreResponse {
	return WellnessScoreResponse{
		ID:           w.ID,
		EmployeeID:   w.EmployeeID,
		Score:        w.Score,
		Factors:      w.Factors,
		Notes:        w.Notes,
		CalculatedAt: w.CalculatedAt,
	}
}

func mapWellnessScores(items []domain.WellnessScore) []WellnessScoreResponse {
	res := make([]WellnessScoreResponse, 0, len(items))
	for _, w := range items {
		res = append(res, wellnessScoreResponse(w))
	}
	return res
}

func departmentWellnessResponse(d domain.DepartmentWellness) DepartmentWellnessResponse {
	return DepartmentWellnessResponse{
		DepartmentID:   d.DepartmentID,
		WellnessScore:  d.WellnessScore,
		TotalEmployees: d.TotalEmployees,
		Trend:          d.Trend,
	}
}

func employeeResponse(e domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                      e.ID,
		FullName:                e.FullName,
		Email:                   e.Email,
		EmployeeCode:            e.EmployeeCode,
		DepartmentID:            e.DepartmentID,
		Role:                    e.Role,
		IsActive:                e.IsActive,
		ActivityTrackingEnabled: e.ActivityTrackingEnabled,
		CreatedAt:               e.CreatedAt,
	}
}

func mapEmployees(items []domain.Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, 0, len(items))
	for _, e := range items {
		res = append(res, employeeResponse(e))
	}
	return res
}

func departmentResponse(d domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:             d.ID,
		Name:           d.Name,
		Icon:           d.Icon,
		WellnessScore:  d.WellnessScore,
		TotalEmployees: d.TotalEmployees,
		WellnessTrend:  d.WellnessTrend,
		CreatedAt:      d.CreatedAt,
	}
}

func mapDepartments(items []domain.Department) []DepartmentResponse {
	res := make([]DepartmentResponse, 0, len(items))
	for _, d := range items {
		res = append(res, departmentResponse(d))
	}
	return res
}

func mapSystemLogs(items []domain.SystemLog) []SystemLogResponse {
	res := make([]SystemLogResponse, 0, len(items))
	for _, l := range items {
		res = append(res, SystemLogResponse{
			ID:         l.ID,
			TS:         l.TS,
			Action:     l.Action,
			UserID:     l.UserID,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Details:    l.Details,
		})
	}
	return res
}

func metricsResponse(m engine.DashboardMetrics) MetricsResponse {
	return MetricsResponse{
		ReportsByStatus: m.ReportsByStatus,
		FlaggedReports:  m.FlaggedReports,
		Departments:     m.Departments,
		Employees:       m.Employees,
	}
}
