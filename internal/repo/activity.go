package repo

import (
	"context"
	"database/sql"
	"strings"

	"safeshift/internal/domain"
)

func (r Repo) InsertActivityLog(ctx context.Context, a domain.ActivityLog) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO activity_logs(id,employee_id,activity_type,ts) VALUES (?,?,?,?)`,
		a.ID, a.EmployeeID, a.ActivityType, a.TS)
	return err
}

// CountActivitySince counts an employee's heartbeat logs at or after the cutoff.
func (r Repo) CountActivitySince(ctx context.Context, employeeID, activityType, cutoff string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM activity_logs WHERE employee_id=? AND activity_type=? AND ts >= ?`,
		employeeID, activityType, cutoff).Scan(&n)
	return n, err
}

type ActivityFilters struct {
	EmployeeID   string
	ActivityType string
	Since        string
	Limit        int
	CursorTS     string
	CursorID     string
}

func (r Repo) ListActivityLogs(ctx context.Context, f ActivityFilters) ([]domain.ActivityLog, error) {
	var clauses []string
	var args []any
	if f.EmployeeID != "" {
		clauses = append(clauses, "employee_id=?")
		args = append(args, f.EmployeeID)
	}
	if f.ActivityType != "" {
		clauses = append(clauses, "activity_type=?")
		args = append(args, f.ActivityType)
	}
	if f.Since != "" {
		clauses = append(clauses, "ts >= ?")
		args = append(args, f.Since)
	}
	if f.CursorTS != "" && f.CursorID != "" {
		clauses = append(clauses, "(ts < ? OR (ts = ? AND id < ?))")
		args = append(args, f.CursorTS, f.CursorTS, f.CursorID)
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}
	query := `SELECT id,employee_id,activity_type,ts FROM activity_logs ` + where + ` ORDER BY ts DESC, id DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ActivityLog
	for rows.Next() {
		var a domain.ActivityLog
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ActivityType, &a.TS); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, nil
}

func (r Repo) InsertTask(ctx context.Context, t domain.Task) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO tasks(id,employee_id,report_id,title,description,due_date,priority,is_completed,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.EmployeeID, nullableStringPtr(t.ReportID), t.Title, nullable(t.Description), nullableStringPtr(t.DueDate),
		t.Priority, t.IsCompleted, t.CreatedAt, t.UpdatedAt)
	return err
}

func scanTask(scan func(dest ...any) error) (domain.Task, error) {
	var t domain.Task
	var reportID, description, dueDate sql.NullString
	err := scan(&t.ID, &t.EmployeeID, &reportID, &t.Title, &description, &dueDate, &t.Priority, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	if reportID.Valid {
		t.ReportID = &reportID.String
	}
	if description.Valid {
		t.Description = description.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	return t, nil
}

func (r Repo) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT id,employee_id,report_id,title,description,due_date,priority,is_completed,created_at,updated_at FROM tasks WHERE id=?`, id)
	return scanTask(row.Scan)
}

func (r Repo) ListTasks(ctx context.Context, employeeID string, limit int) ([]domain.Task, error) {
	query := `SELECT id,employee_id,report_id,title,description,due_date,priority,is_completed,created_at,updated_at FROM tasks`
	var args []any
	if employeeID != "" {
		query += ` WHERE employee_id=?`
		args = append(args, employeeID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, nil
}

func (r Repo) SetTaskCompleted(ctx context.Context, id string, completed bool, updatedAt string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE tasks SET is_completed=?, updated_at=? WHERE id=?`, completed, updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TaskCompletionCounts returns an employee's all-time assigned and completed
// task counts in one query.
func (r Repo) TaskCompletionCounts(ctx context.Context, employeeID string) (total, completed int, err error) {
	err = r.DB.QueryRowContext(ctx, `SELECT count(*), COALESCE(SUM(is_completed),0) FROM tasks WHERE employee_id=?`, employeeID).
		Scan(&total, &completed)
	return total, completed, err
}
