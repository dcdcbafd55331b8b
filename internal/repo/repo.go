package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"safeshift/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func (r Repo) InsertReport(ctx context.Context, tx *sql.Tx, rep domain.Report) error {
	attachments, err := marshalAttachments(rep.Attachments)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO reports(id,employee_id,department_id,report_type,severity,title,description,status,assigned_to,is_anonymous,is_flagged,flag_reason,incident_date,witness_information,attachments_json,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rep.ID, nullableStringPtr(rep.EmployeeID), rep.DepartmentID, rep.ReportType, rep.Severity, rep.Title, rep.Description,
		rep.Status, nullableStringPtr(rep.AssignedTo), rep.IsAnonymous, rep.IsFlagged, nullableStringPtr(rep.FlagReason),
		nullableStringPtr(rep.IncidentDate), nullableStringPtr(rep.WitnessInformation), attachments, rep.CreatedAt, rep.UpdatedAt)
	return err
}

const reportColumns = `id,employee_id,department_id,report_type,severity,title,description,status,assigned_to,is_anonymous,is_flagged,flag_reason,incident_date,witness_information,attachments_json,created_at,updated_at`

func scanReport(scan func(dest ...any) error) (domain.Report, error) {
	var rep domain.Report
	var employeeID, assignedTo, flagReason, incidentDate, witness, attachments sql.NullString
	err := scan(&rep.ID, &employeeID, &rep.DepartmentID, &rep.ReportType, &rep.Severity, &rep.Title, &rep.Description,
		&rep.Status, &assignedTo, &rep.IsAnonymous, &rep.IsFlagged, &flagReason, &incidentDate, &witness, &attachments,
		&rep.CreatedAt, &rep.UpdatedAt)
	if err == sql.ErrNoRows {
		return rep, ErrNotFound
	}
	if err != nil {
		return rep, err
	}
	if employeeID.Valid {
		rep.EmployeeID = &employeeID.String
	}
	if assignedTo.Valid {
		rep.AssignedTo = &assignedTo.String
	}
	if flagReason.Valid {
		rep.FlagReason = &flagReason.String
	}
	if incidentDate.Valid {
		rep.IncidentDate = &incidentDate.String
	}
	if witness.Valid {
		rep.WitnessInformation = &witness.String
	}
	if attachments.Valid && attachments.String != "" {
		if err := json.Unmarshal([]byte(attachments.String), &rep.Attachments); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func (r Repo) GetReport(ctx context.Context, id string) (domain.Report, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id=?`, id)
	return scanReport(row.Scan)
}

type ReportFilters struct {
	EmployeeID      string
	DepartmentID    string
	ReportType      string
	Status          string
	Flagged         *bool
	Limit           int
	CursorCreatedAt string
	CursorID        string
}

func (r Repo) ListReports(ctx context.Context, f ReportFilters) ([]domain.Report, error) {
	var clauses []string
	var args []any
	if f.EmployeeID != "" {
		clauses = append(clauses, "employee_id=?")
		args = append(args, f.EmployeeID)
	}
	if f.DepartmentID != "" {
		clauses = append(clauses, "department_id=?")
		args = append(args, f.DepartmentID)
	}
	if f.ReportType != "" {
		clauses = append(clauses, "report_type=?")
		args = append(args, f.ReportType)
	}
	if f.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, f.Status)
	}
	if f.Flagged != nil {
		clauses = append(clauses, "is_flagged=?")
		args = append(args, *f.Flagged)
	}
	if f.CursorCreatedAt != "" && f.CursorID != "" {
		clauses = append(clauses, "(created_at < ? OR (created_at = ? AND id < ?))")
		args = append(args, f.CursorCreatedAt, f.CursorCreatedAt, f.CursorID)
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	query := `SELECT ` + reportColumns + ` FROM reports ` + where + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, rep)
	}
	return res, nil
}

// ApplyReportFlag records the flagging verdict on an already-inserted report.
func (r Repo) ApplyReportFlag(ctx context.Context, tx *sql.Tx, id, reason, severity, updatedAt string) error {
	res, err := tx.ExecContext(ctx, `UPDATE reports SET is_flagged=1, flag_reason=?, severity=?, updated_at=? WHERE id=?`,
		reason, severity, updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) UpdateReportStatus(ctx context.Context, tx *sql.Tx, id, status, updatedAt string) error {
	res, err := tx.ExecContext(ctx, `UPDATE reports SET status=?, updated_at=? WHERE id=?`, status, updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) AssignReport(ctx context.Context, tx *sql.Tx, id, assignee, updatedAt string) error {
	res, err := tx.ExecContext(ctx, `UPDATE reports SET assigned_to=?, updated_at=? WHERE id=?`, nullable(assignee), updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSimilarReports counts reports of the same type in a department created
// at or after the cutoff. RFC3339 strings compare lexicographically so a plain
// string comparison is a correct time filter.
func (r Repo) CountSimilarReports(ctx context.Context, departmentID, reportType, cutoff string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM reports WHERE department_id=? AND report_type=? AND created_at >= ?`,
		departmentID, reportType, cutoff).Scan(&n)
	return n, err
}

func (r Repo) CountEmployeeReportsSince(ctx context.Context, employeeID, cutoff string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM reports WHERE employee_id=? AND created_at >= ?`,
		employeeID, cutoff).Scan(&n)
	return n, err
}

func (r Repo) CountReportsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, count(*) FROM reports GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		res[status] = count
	}
	return res, nil
}

func (r Repo) CountFlaggedReports(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM reports WHERE is_flagged=1`).Scan(&n)
	return n, err
}

func (r Repo) InsertRule(ctx context.Context, tx *sql.Tx, rule domain.FlaggingRule) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO flagging_rules(id,keyword,severity_level,is_active,created_at) VALUES (?,?,?,?,?)`,
		rule.ID, rule.Keyword, rule.SeverityLevel, rule.IsActive, rule.CreatedAt)
	return err
}

func (r Repo) GetRule(ctx context.Context, id string) (domain.FlaggingRule, error) {
	var rule domain.FlaggingRule
	err := r.DB.QueryRowContext(ctx, `SELECT id,keyword,severity_level,is_active,created_at FROM flagging_rules WHERE id=?`, id).
		Scan(&rule.ID, &rule.Keyword, &rule.SeverityLevel, &rule.IsActive, &rule.CreatedAt)
	if err == sql.ErrNoRows {
		return rule, ErrNotFound
	}
	return rule, err
}

// ListRules returns rules in creation order. The keyword matcher depends on
// this ordering being stable across calls.
func (r Repo) ListRules(ctx context.Context, activeOnly bool) ([]domain.FlaggingRule, error) {
	query := `SELECT id,keyword,severity_level,is_active,created_at FROM flagging_rules`
	if activeOnly {
		query += ` WHERE is_active=1`
	}
	query += ` ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.FlaggingRule
	for rows.Next() {
		var rule domain.FlaggingRule
		if err := rows.Scan(&rule.ID, &rule.Keyword, &rule.SeverityLevel, &rule.IsActive, &rule.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rule)
	}
	return res, nil
}

func (r Repo) SetRuleActive(ctx context.Context, tx *sql.Tx, id string, active bool) error {
	res, err := tx.ExecContext(ctx, `UPDATE flagging_rules SET is_active=? WHERE id=?`, active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteRule(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM flagging_rules WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalAttachments(attachments []string) (any, error) {
	if len(attachments) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(attachments)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil {
		return nil
	}
	if *v == "" {
		return nil
	}
	return *v
}
