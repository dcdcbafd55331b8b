package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"safeshift/internal/audit"
	"safeshift/internal/config"
	"safeshift/internal/domain"
	"safeshift/internal/repo"
)

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Audit  audit.Writer
	Config *config.Config
	Now    func() time.Time
	Logger *log.Logger
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Audit:  audit.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
		Logger: log.Default(),
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}

// ReportSubmitOptions are parameters for submitting a report.
type ReportSubmitOptions struct {
	EmployeeID         string
	DepartmentID       string
	ReportType         string
	Severity           string
	Title              string
	Description        string
	IsAnonymous        bool
	IncidentDate       string
	WitnessInformation string
	Attachments        []string
	ActorID            string
}

// SubmitReport stores a new report and runs the flagging pipeline on it.
// Flagging never fails a submission: a report is stored regardless of what
// the evaluation decides or whether it errors.
func (e Engine) SubmitReport(ctx context.Context, opts ReportSubmitOptions) (domain.Report, error) {
	if opts.DepartmentID == "" {
		return domain.Report{}, errors.New("department is required")
	}
	if opts.ReportType == "" {
		return domain.Report{}, errors.New("report type is required")
	}
	if opts.Title == "" {
		return domain.Report{}, errors.New("title is required")
	}
	if opts.Severity == "" {
		opts.Severity = "low"
	}
	if _, err := e.Repo.GetDepartment(ctx, opts.DepartmentID); err != nil {
		return domain.Report{}, err
	}
	if opts.EmployeeID != "" && !opts.IsAnonymous {
		if _, err := e.Repo.GetEmployee(ctx, opts.EmployeeID); err != nil {
			return domain.Report{}, err
		}
	}

	now := e.now().UTC().Format(time.RFC3339)
	rep := domain.Report{
		ID:           uuid.NewString(),
		DepartmentID: opts.DepartmentID,
		ReportType:   opts.ReportType,
		Severity:     opts.Severity,
		Title:        opts.Title,
		Description:  opts.Description,
		Status:       "pending",
		IsAnonymous:  opts.IsAnonymous,
		Attachments:  opts.Attachments,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// Anonymous reports never carry an employee reference.
	if opts.EmployeeID != "" && !opts.IsAnonymous {
		rep.EmployeeID = &opts.EmployeeID
	}
	if opts.IncidentDate != "" {
		rep.IncidentDate = &opts.IncidentDate
	}
	if opts.WitnessInformation != "" {
		rep.WitnessInformation = &opts.WitnessInformation
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Report{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertReport(ctx, tx, rep); err != nil {
		return domain.Report{}, fmt.Errorf("insert report: %w", err)
	}
	if err := e.Audit.Append(ctx, tx, "report.submit", opts.ActorID, "report", rep.ID, audit.Details{"severity": rep.Severity, "type": rep.ReportType}); err != nil {
		return domain.Report{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Report{}, err
	}

	result := e.EvaluateFlagging(ctx, rep, opts.ActorID)
	if result.Flagged {
		rep.IsFlagged = true
		rep.FlagReason = &result.Reason
		rep.Severity = result.Severity
	}
	return rep, nil
}

func (e Engine) UpdateReportStatus(ctx context.Context, id, status, actorID string) (domain.Report, error) {
	switch status {
	case "pending", "in_progress", "resolved", "dismissed":
	default:
		return domain.Report{}, fmt.Errorf("invalid status %q", status)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Report{}, err
	}
	defer tx.Rollback()
	now := e.now().UTC().Format(time.RFC3339)
	if err := e.Repo.UpdateReportStatus(ctx, tx, id, status, now); err != nil {
		return domain.Report{}, err
	}
	if err := e.Audit.Append(ctx, tx, "report.status", actorID, "report", id, audit.Details{"status": status}); err != nil {
		return domain.Report{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Report{}, err
	}
	return e.Repo.GetReport(ctx, id)
}

func (e Engine) AssignReport(ctx context.Context, id, assigneeID, actorID string) (domain.Report, error) {
	if assigneeID != "" {
		if _, err := e.Repo.GetEmployee(ctx, assigneeID); err != nil {
			return domain.Report{}, err
		}
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Report{}, err
	}
	defer tx.Rollback()
	now := e.now().UTC().Format(time.RFC3339)
	if err := e.Repo.AssignReport(ctx, tx, id, assigneeID, now); err != nil {
		return domain.Report{}, err
	}
	if err := e.Audit.Append(ctx, tx, "report.assign", actorID, "report", id, audit.Details{"assignee": assigneeID}); err != nil {
		return domain.Report{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Report{}, err
	}
	return e.Repo.GetReport(ctx, id)
}

func (e Engine) CreateRule(ctx context.Context, keyword, severityLevel, actorID string) (domain.FlaggingRule, error) {
	if keyword == "" {
		return domain.FlaggingRule{}, errors.New("keyword is required")
	}
	switch severityLevel {
	case "low", "medium", "high", "critical":
	default:
		return domain.FlaggingRule{}, fmt.Errorf("invalid severity %q", severityLevel)
	}
	rule := domain.FlaggingRule{
		ID:            uuid.NewString(),
		Keyword:       keyword,
		SeverityLevel: severityLevel,
		IsActive:      true,
		CreatedAt:     e.now().UTC().Format(time.RFC3339),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.FlaggingRule{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertRule(ctx, tx, rule); err != nil {
		return domain.FlaggingRule{}, err
	}
	if err := e.Audit.Append(ctx, tx, "rule.create", actorID, "flagging_rule", rule.ID, audit.Details{"keyword": keyword, "severity": severityLevel}); err != nil {
		return domain.FlaggingRule{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.FlaggingRule{}, err
	}
	return rule, nil
}

func (e Engine) SetRuleActive(ctx context.Context, id string, active bool, actorID string) (domain.FlaggingRule, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.FlaggingRule{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.SetRuleActive(ctx, tx, id, active); err != nil {
		return domain.FlaggingRule{}, err
	}
	if err := e.Audit.Append(ctx, tx, "rule.toggle", actorID, "flagging_rule", id, audit.Details{"active": active}); err != nil {
		return domain.FlaggingRule{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.FlaggingRule{}, err
	}
	return e.Repo.GetRule(ctx, id)
}

func (e Engine) DeleteRule(ctx context.Context, id, actorID string) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.DeleteRule(ctx, tx, id); err != nil {
		return err
	}
	if err := e.Audit.Append(ctx, tx, "rule.delete", actorID, "flagging_rule", id, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordActivity appends one activity log entry. Heartbeats are dropped for
// employees who opted out of tracking.
func (e Engine) RecordActivity(ctx context.Context, employeeID, activityType string) (domain.ActivityLog, error) {
	switch activityType {
	case "active", "login", "logout":
	default:
		return domain.ActivityLog{}, fmt.Errorf("invalid activity type %q", activityType)
	}
	emp, err := e.Repo.GetEmployee(ctx, employeeID)
	if err != nil {
		return domain.ActivityLog{}, err
	}
	if activityType == "active" && !emp.ActivityTrackingEnabled {
		return domain.ActivityLog{}, errors.New("activity tracking disabled for employee")
	}
	a := domain.ActivityLog{
		ID:           uuid.NewString(),
		EmployeeID:   employeeID,
		ActivityType: activityType,
		TS:           e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.InsertActivityLog(ctx, a); err != nil {
		return domain.ActivityLog{}, err
	}
	return a, nil
}

// TaskCreateOptions are parameters for creating a task.
type TaskCreateOptions struct {
	EmployeeID  string
	ReportID    string
	Title       string
	Description string
	DueDate     string
	Priority    string
}

func (e Engine) CreateTask(ctx context.Context, opts TaskCreateOptions) (domain.Task, error) {
	if opts.Title == "" {
		return domain.Task{}, errors.New("title is required")
	}
	if opts.EmployeeID == "" {
		return domain.Task{}, errors.New("employee is required")
	}
	if opts.Priority == "" {
		opts.Priority = "medium"
	}
	if _, err := e.Repo.GetEmployee(ctx, opts.EmployeeID); err != nil {
		return domain.Task{}, err
	}
	now := e.now().UTC().Format(time.RFC3339)
	t := domain.Task{
		ID:          uuid.NewString(),
		EmployeeID:  opts.EmployeeID,
		Title:       opts.Title,
		Description: opts.Description,
		Priority:    opts.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if opts.ReportID != "" {
		t.ReportID = &opts.ReportID
	}
	if opts.DueDate != "" {
		t.DueDate = &opts.DueDate
	}
	if err := e.Repo.InsertTask(ctx, t); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (e Engine) CompleteTask(ctx context.Context, id string) (domain.Task, error) {
	now := e.now().UTC().Format(time.RFC3339)
	if err := e.Repo.SetTaskCompleted(ctx, id, true, now); err != nil {
		return domain.Task{}, err
	}
	return e.Repo.GetTask(ctx, id)
}

// EmployeeCreateOptions are parameters for registering an employee.
type EmployeeCreateOptions struct {
	FullName     string
	Email        string
	EmployeeCode string
	DepartmentID string
	Role         string
}

func (e Engine) CreateEmployee(ctx context.Context, opts EmployeeCreateOptions) (domain.Employee, error) {
	if opts.FullName == "" {
		return domain.Employee{}, errors.New("full name is required")
	}
	if opts.Email == "" {
		return domain.Employee{}, errors.New("email is required")
	}
	if opts.Role == "" {
		opts.Role = "employee"
	}
	emp := domain.Employee{
		ID:                      uuid.NewString(),
		FullName:                opts.FullName,
		Email:                   opts.Email,
		EmployeeCode:            opts.EmployeeCode,
		Role:                    opts.Role,
		IsActive:                true,
		ActivityTrackingEnabled: true,
		CreatedAt:               e.now().UTC().Format(time.RFC3339),
	}
	if opts.DepartmentID != "" {
		if _, err := e.Repo.GetDepartment(ctx, opts.DepartmentID); err != nil {
			return domain.Employee{}, err
		}
		emp.DepartmentID = &opts.DepartmentID
	}
	if err := e.Repo.InsertEmployee(ctx, emp); err != nil {
		return domain.Employee{}, err
	}
	return emp, nil
}

func (e Engine) CreateDepartment(ctx context.Context, name, icon string) (domain.Department, error) {
	if name == "" {
		return domain.Department{}, errors.New("name is required")
	}
	d := domain.Department{
		ID:        uuid.NewString(),
		Name:      name,
		Icon:      icon,
		CreatedAt: e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.InsertDepartment(ctx, d); err != nil {
		return domain.Department{}, err
	}
	return d, nil
}

// DashboardMetrics is a small operational summary for the admin dashboard.
type DashboardMetrics struct {
	ReportsByStatus map[string]int `json:"reports_by_status"`
	FlaggedReports  int            `json:"flagged_reports"`
	Departments     int            `json:"departments"`
	Employees       int            `json:"employees"`
}

func (e Engine) Metrics(ctx context.Context) (DashboardMetrics, error) {
	byStatus, err := e.Repo.CountReportsByStatus(ctx)
	if err != nil {
		return DashboardMetrics{}, err
	}
	flagged, err := e.Repo.CountFlaggedReports(ctx)
	if err != nil {
		return DashboardMetrics{}, err
	}
	departments, err := e.Repo.ListDepartments(ctx)
	if err != nil {
		return DashboardMetrics{}, err
	}
	employees, err := e.Repo.ListEmployees(ctx, "")
	if err != nil {
		return DashboardMetrics{}, err
	}
	return DashboardMetrics{
		ReportsByStatus: byStatus,
		FlaggedReports:  flagged,
		Departments:     len(departments),
		Employees:       len(employees),
	}, nil
}
