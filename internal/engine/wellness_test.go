package engine_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"safeshift/internal/domain"
	"safeshift/internal/engine"
)

func seedHeartbeats(t *testing.T, env testEnv, employeeID string, n int) {
	t.Helper()
	base := env.Engine.Now().UTC().Add(-24 * time.Hour)
	for i := 0; i < n; i++ {
		err := env.Engine.Repo.InsertActivityLog(env.Ctx, domain.ActivityLog{
			ID:           uuid.NewString(),
			EmployeeID:   employeeID,
			ActivityType: "active",
			TS:           base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
		if err != nil {
			t.Fatalf("seed heartbeat: %v", err)
		}
	}
}

func TestWellnessPerfectScore(t *testing.T) {
	env := newTestEnv(t)
	// 60 heartbeats over the week: exactly the expected activity volume and
	// 5 hours/day equivalent at the default interval, so no penalties
	seedHeartbeats(t, env, env.Employee, 60)
	w, err := env.Engine.ComputeEmployeeWellness(env.Ctx, env.Employee)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if w.Score != 10 {
		t.Fatalf("score = %d, want 10 (factors %v)", w.Score, w.Factors)
	}
	for _, factor := range []string{"work_life_balance", "activity_level", "stress_level", "task_performance"} {
		if w.Factors[factor] != 100 {
			t.Errorf("factor %s = %d, want 100", factor, w.Factors[factor])
		}
	}
	if w.Notes != "You're doing great! Keep maintaining this healthy balance." {
		t.Errorf("unexpected message %q", w.Notes)
	}
}

func TestWellnessScoreClampedToFloor(t *testing.T) {
	env := newTestEnv(t)
	// overtime: 1000 heartbeats in the window is well past 10 hours/day
	seedHeartbeats(t, env, env.Employee, 1000)
	// stress: more than 5 reports in 30 days
	for i := 0; i < 6; i++ {
		_, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
			EmployeeID:   env.Employee,
			DepartmentID: env.Department,
			ReportType:   "conduct",
			Severity:     "low",
			Title:        "Recurring concern",
			Description:  "One of a series of reports filed by the same employee inside a single month window.",
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	// task performance: 1 of 4 completed is under the 0.3 cutoff
	var taskIDs []string
	for i := 0; i < 4; i++ {
		task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{
			EmployeeID: env.Employee,
			Title:      "Restock aisle",
		})
		if err != nil {
			t.Fatalf("create task: %v", err)
		}
		taskIDs = append(taskIDs, task.ID)
	}
	if _, err := env.Engine.CompleteTask(env.Ctx, taskIDs[0]); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	w, err := env.Engine.ComputeEmployeeWellness(env.Ctx, env.Employee)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// raw score 10-3-3-2 = 2 here; the clamp floor of 1 is still covered by
	// construction since penalties can sum past 9
	if w.Score < 1 || w.Score > 10 {
		t.Fatalf("score %d outside [1,10]", w.Score)
	}
	if w.Factors["work_life_balance"] != 30 {
		t.Errorf("work_life_balance = %d, want 30", w.Factors["work_life_balance"])
	}
	if w.Factors["stress_level"] != 30 {
		t.Errorf("stress_level = %d, want 30", w.Factors["stress_level"])
	}
	if w.Factors["task_performance"] != 40 {
		t.Errorf("task_performance = %d, want 40", w.Factors["task_performance"])
	}
	if w.Score != 2 {
		t.Fatalf("score = %d, want 2", w.Score)
	}
	if w.Notes != "We're concerned about your wellbeing. Please speak with your manager or HR." {
		t.Errorf("unexpected message %q", w.Notes)
	}
}

func TestWellnessLowActivityPenalty(t *testing.T) {
	env := newTestEnv(t)
	// 20 logs is under half the expected 60 per week
	seedHeartbeats(t, env, env.Employee, 20)
	w, err := env.Engine.ComputeEmployeeWellness(env.Ctx, env.Employee)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if w.Factors["activity_level"] != 40 {
		t.Errorf("activity_level = %d, want 40", w.Factors["activity_level"])
	}
	if w.Score != 8 {
		t.Errorf("score = %d, want 8", w.Score)
	}
}

func TestWellnessZeroTasksIsPerfect(t *testing.T) {
	env := newTestEnv(t)
	seedHeartbeats(t, env, env.Employee, 60)
	w, err := env.Engine.ComputeEmployeeWellness(env.Ctx, env.Employee)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if w.Factors["task_performance"] != 100 {
		t.Errorf("zero tasks should score 100, got %d", w.Factors["task_performance"])
	}
}

func TestWellnessHistoryAppendOnly(t *testing.T) {
	env := newTestEnv(t)
	first, err := env.Engine.ComputeEmployeeWellness(env.Ctx, env.Employee)
	if err != nil {
		t.Fatal(err)
	}
	// advance the clock so the second row sorts after the first
	env.Engine.Now = func() time.Time { return time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC) }
	second, err := env.Engine.ComputeEmployeeWellness(env.Ctx, env.Employee)
	if err != nil {
		t.Fatal(err)
	}

	latest, err := env.Engine.Repo.LatestWellnessScore(env.Ctx, env.Employee)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second.ID {
		t.Fatalf("latest = %s, want %s", latest.ID, second.ID)
	}
	history, err := env.Engine.Repo.ListWellnessScores(env.Ctx, env.Employee, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("history length %d, want 2", len(history))
	}
	found := false
	for _, w := range history {
		if w.ID == first.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("older score row was overwritten")
	}
}

func TestWellnessUnknownEmployee(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.ComputeEmployeeWellness(env.Ctx, "no-such-employee")
	if err == nil {
		t.Fatal("expected error for unknown employee")
	}
}

func TestDepartmentWellnessNoEmployees(t *testing.T) {
	env := newTestEnv(t)
	dept, err := env.Engine.CreateDepartment(env.Ctx, "Empty Floor", "")
	if err != nil {
		t.Fatal(err)
	}
	got := env.Engine.ComputeDepartmentWellness(env.Ctx, dept.ID)
	if got.WellnessScore != 50 || got.TotalEmployees != 0 || got.Trend != "stable" {
		t.Fatalf("got %+v, want neutral default", got)
	}
}

func TestDepartmentWellnessAggregation(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateEmployee(env.Ctx, engine.EmployeeCreateOptions{
		FullName:     "Kim Okafor",
		Email:        "kim@example.com",
		DepartmentID: env.Department,
	}); err != nil {
		t.Fatal(err)
	}
	// full heartbeat week for the first employee gives a 10; the second is
	// never scored and contributes the default 5
	seedHeartbeats(t, env, env.Employee, 60)
	if _, err := env.Engine.ComputeEmployeeWellness(env.Ctx, env.Employee); err != nil {
		t.Fatal(err)
	}

	got := env.Engine.ComputeDepartmentWellness(env.Ctx, env.Department)
	if got.TotalEmployees != 2 {
		t.Fatalf("employees = %d, want 2", got.TotalEmployees)
	}
	// mean of 10 and 5 is 7.5, rescaled to 75: below the 80 cutoff and
	// above 30, so the trend stays stable
	if got.WellnessScore != 75 {
		t.Fatalf("score = %d, want 75", got.WellnessScore)
	}
	if got.Trend != "stable" {
		t.Fatalf("trend = %q, want stable", got.Trend)
	}

	dept, err := env.Engine.Repo.GetDepartment(env.Ctx, env.Department)
	if err != nil {
		t.Fatal(err)
	}
	if dept.WellnessScore == nil || *dept.WellnessScore != 75 {
		t.Fatalf("stored summary not updated: %+v", dept)
	}
	if dept.TotalEmployees == nil || *dept.TotalEmployees != 2 {
		t.Fatalf("stored employee count not updated: %+v", dept)
	}
}

func TestDepartmentWellnessTrendCutoffs(t *testing.T) {
	env := newTestEnv(t)
	// single employee at a perfect 10 rescales to 100, past the 80 cutoff
	seedHeartbeats(t, env, env.Employee, 60)
	if _, err := env.Engine.ComputeEmployeeWellness(env.Ctx, env.Employee); err != nil {
		t.Fatal(err)
	}
	got := env.Engine.ComputeDepartmentWellness(env.Ctx, env.Department)
	if got.Trend != "improving" {
		t.Fatalf("trend = %q, want improving at score %d", got.Trend, got.WellnessScore)
	}
}

func TestInactiveEmployeesExcludedFromDepartment(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Engine.Repo.SetEmployeeActive(env.Ctx, env.Employee, false); err != nil {
		t.Fatal(err)
	}
	got := env.Engine.ComputeDepartmentWellness(env.Ctx, env.Department)
	if got.TotalEmployees != 0 || got.WellnessScore != 50 {
		t.Fatalf("inactive employee counted: %+v", got)
	}
}

func TestActivityTrackingOptOut(t *testing.T) {
	env := newTestEnv(t)
	if err := env.Engine.Repo.SetEmployeeTracking(env.Ctx, env.Employee, false); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.RecordActivity(env.Ctx, env.Employee, "active"); err == nil {
		t.Fatal("heartbeat accepted for opted-out employee")
	}
	// login/logout events are still recorded
	if _, err := env.Engine.RecordActivity(env.Ctx, env.Employee, "login"); err != nil {
		t.Fatalf("login rejected: %v", err)
	}
}

func TestRulesListedInCreationOrder(t *testing.T) {
	env := newTestEnv(t)
	keywords := []string{"alpha", "beta", "gamma"}
	for i, k := range keywords {
		env.Engine.Now = func() time.Time {
			return time.Date(2024, 1, 15, 12, i, 0, 0, time.UTC)
		}
		if _, err := env.Engine.CreateRule(env.Ctx, k, "low", ""); err != nil {
			t.Fatal(err)
		}
	}
	rules, err := env.Engine.Repo.ListRules(env.Ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != len(keywords) {
		t.Fatalf("got %d rules", len(rules))
	}
	for i, rule := range rules {
		if rule.Keyword != keywords[i] {
			t.Fatalf("rule %d = %q, want %q", i, rule.Keyword, keywords[i])
		}
	}
}
