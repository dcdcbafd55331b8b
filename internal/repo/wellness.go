package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"safeshift/internal/domain"
)

func (r Repo) InsertWellnessScore(ctx context.Context, w domain.WellnessScore) error {
	factors, err := json.Marshal(w.Factors)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO wellness_scores(id,employee_id,score,factors_json,notes,calculated_at) VALUES (?,?,?,?,?,?)`,
		w.ID, w.EmployeeID, w.Score, string(factors), nullable(w.Notes), w.CalculatedAt)
	return err
}

func scanWellnessScore(scan func(dest ...any) error) (domain.WellnessScore, error) {
	var w domain.WellnessScore
	var factors string
	var notes sql.NullString
	err := scan(&w.ID, &w.EmployeeID, &w.Score, &factors, &notes, &w.CalculatedAt)
	if err == sql.ErrNoRows {
		return w, ErrNotFound
	}
	if err != nil {
		return w, err
	}
	if notes.Valid {
		w.Notes = notes.String
	}
	if factors != "" {
		if err := json.Unmarshal([]byte(factors), &w.Factors); err != nil {
			return w, err
		}
	}
	return w, nil
}

// LatestWellnessScore returns the most recent score for an employee.
func (r Repo) LatestWellnessScore(ctx context.Context, employeeID string) (domain.WellnessScore, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT id,employee_id,score,factors_json,notes,calculated_at FROM wellness_scores WHERE employee_id=? ORDER BY calculated_at DESC, id DESC LIMIT 1`, employeeID)
	return scanWellnessScore(row.Scan)
}

func (r Repo) ListWellnessScores(ctx context.Context, employeeID string, limit int) ([]domain.WellnessScore, error) {
	query := `SELECT id,employee_id,score,factors_json,notes,calculated_at FROM wellness_scores WHERE employee_id=? ORDER BY calculated_at DESC, id DESC`
	args := []any{employeeID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.WellnessScore
	for rows.Next() {
		w, err := scanWellnessScore(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, w)
	}
	return res, nil
}

type SystemLogFilters struct {
	Action     string
	EntityType string
	EntityID   string
	Limit      int
	Cursor     int64
}

func (r Repo) ListSystemLogs(ctx context.Context, f SystemLogFilters) ([]domain.SystemLog, error) {
	clauses := []string{"1=1"}
	var args []any
	if f.Action != "" {
		clauses = append(clauses, "action=?")
		args = append(args, f.Action)
	}
	if f.EntityType != "" {
		clauses = append(clauses, "entity_type=?")
		args = append(args, f.EntityType)
	}
	if f.EntityID != "" {
		clauses = append(clauses, "entity_id=?")
		args = append(args, f.EntityID)
	}
	if f.Cursor > 0 {
		clauses = append(clauses, "id<?")
		args = append(args, f.Cursor)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	where := "WHERE " + strings.Join(clauses, " AND ")
	query := `SELECT id,ts,action,user_id,entity_type,entity_id,details_json FROM system_logs ` + where + ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.SystemLog
	for rows.Next() {
		var l domain.SystemLog
		var userID, entityID sql.NullString
		if err := rows.Scan(&l.ID, &l.TS, &l.Action, &userID, &l.EntityType, &entityID, &l.Details); err != nil {
			return nil, err
		}
		if userID.Valid {
			l.UserID = userID.String
		}
		if entityID.Valid {
			l.EntityID = entityID.String
		}
		res = append(res, l)
	}
	return res, nil
}
