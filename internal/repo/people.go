package repo

import (
	"context"
	"database/sql"

	"safeshift/internal/domain"
)

func (r Repo) InsertEmployee(ctx context.Context, e domain.Employee) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO employees(id,full_name,email,employee_code,department_id,role,is_active,activity_tracking_enabled,created_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		e.ID, e.FullName, e.Email, nullable(e.EmployeeCode), nullableStringPtr(e.DepartmentID), e.Role, e.IsActive, e.ActivityTrackingEnabled, e.CreatedAt)
	return err
}

func scanEmployee(scan func(dest ...any) error) (domain.Employee, error) {
	var e domain.Employee
	var code, departmentID sql.NullString
	err := scan(&e.ID, &e.FullName, &e.Email, &code, &departmentID, &e.Role, &e.IsActive, &e.ActivityTrackingEnabled, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	if err != nil {
		return e, err
	}
	if code.Valid {
		e.EmployeeCode = code.String
	}
	if departmentID.Valid {
		e.DepartmentID = &departmentID.String
	}
	return e, nil
}

const employeeColumns = `id,full_name,email,employee_code,department_id,role,is_active,activity_tracking_enabled,created_at`

func (r Repo) GetEmployee(ctx context.Context, id string) (domain.Employee, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id=?`, id)
	return scanEmployee(row.Scan)
}

func (r Repo) ListEmployees(ctx context.Context, departmentID string) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	var args []any
	if departmentID != "" {
		query += ` WHERE department_id=?`
		args = append(args, departmentID)
	}
	query += ` ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

func (r Repo) ListActiveEmployees(ctx context.Context, departmentID string) ([]domain.Employee, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE department_id=? AND is_active=1 ORDER BY created_at ASC, id ASC`, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

func (r Repo) SetEmployeeActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE employees SET is_active=? WHERE id=?`, active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) SetEmployeeTracking(ctx context.Context, id string, enabled bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE employees SET activity_tracking_enabled=? WHERE id=?`, enabled, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) InsertDepartment(ctx context.Context, d domain.Department) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO departments(id,name,icon,wellness_score,total_employees,wellness_trend,created_at) VALUES (?,?,?,?,?,?,?)`,
		d.ID, d.Name, nullable(d.Icon), nullableIntPtr(d.WellnessScore), nullableIntPtr(d.TotalEmployees), nullable(d.WellnessTrend), d.CreatedAt)
	return err
}

func scanDepartment(scan func(dest ...any) error) (domain.Department, error) {
	var d domain.Department
	var icon, trend sql.NullString
	var score, total sql.NullInt64
	err := scan(&d.ID, &d.Name, &icon, &score, &total, &trend, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	if err != nil {
		return d, err
	}
	if icon.Valid {
		d.Icon = icon.String
	}
	if trend.Valid {
		d.WellnessTrend = trend.String
	}
	if score.Valid {
		v := int(score.Int64)
		d.WellnessScore = &v
	}
	if total.Valid {
		v := int(total.Int64)
		d.TotalEmployees = &v
	}
	return d, nil
}

func (r Repo) GetDepartment(ctx context.Context, id string) (domain.Department, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT id,name,icon,wellness_score,total_employees,wellness_trend,created_at FROM departments WHERE id=?`, id)
	return scanDepartment(row.Scan)
}

func (r Repo) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,icon,wellness_score,total_employees,wellness_trend,created_at FROM departments ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Department
	for rows.Next() {
		d, err := scanDepartment(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, nil
}

// UpdateDepartmentWellness overwrites the stored department summary with a
// freshly computed aggregate.
func (r Repo) UpdateDepartmentWellness(ctx context.Context, id string, score, totalEmployees int, trend string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE departments SET wellness_score=?, total_employees=?, wellness_trend=? WHERE id=?`,
		score, totalEmployees, trend, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
