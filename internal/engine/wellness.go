package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"safeshift/internal/domain"
	"safeshift/internal/repo"
)

type scorerResult struct {
	Score   int
	Penalty int
}

// neutralScore is what a sub-scorer yields when its query fails. Scoring must
// always complete, so collaborator failures never propagate past a scorer.
var neutralScore = scorerResult{Score: 50, Penalty: 0}

// ComputeEmployeeWellness runs the four wellness sub-scorers and appends a new
// score row for the employee. History is never overwritten. A failed insert is
// logged and the computed score still returned.
func (e Engine) ComputeEmployeeWellness(ctx context.Context, employeeID string) (domain.WellnessScore, error) {
	if _, err := e.Repo.GetEmployee(ctx, employeeID); err != nil {
		return domain.WellnessScore{}, err
	}

	workBalance := e.checkWorkBalance(ctx, employeeID)
	activityLevel := e.checkActivityLevel(ctx, employeeID)
	stressLevel := e.checkStressIndicators(ctx, employeeID)
	taskPerformance := e.checkTaskPerformance(ctx, employeeID)

	score := 10 - workBalance.Penalty - activityLevel.Penalty - stressLevel.Penalty - taskPerformance.Penalty
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}

	w := domain.WellnessScore{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Score:      score,
		Factors: map[string]int{
			"work_life_balance": workBalance.Score,
			"activity_level":    activityLevel.Score,
			"stress_level":      stressLevel.Score,
			"task_performance":  taskPerformance.Score,
		},
		Notes:        wellnessMessage(score),
		CalculatedAt: e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.InsertWellnessScore(ctx, w); err != nil {
		e.logf("wellness: insert score for employee %s: %v", employeeID, err)
	}
	return w, nil
}

// checkWorkBalance converts last week's heartbeat count into an hours-per-day
// equivalent and penalizes sustained overtime.
func (e Engine) checkWorkBalance(ctx context.Context, employeeID string) scorerResult {
	cutoff := e.now().UTC().AddDate(0, 0, -7).Format(time.RFC3339)
	count, err := e.Repo.CountActivitySince(ctx, employeeID, "active", cutoff)
	if err != nil {
		e.logf("wellness: work balance check for %s: %v", employeeID, err)
		return neutralScore
	}
	hoursPerDay := float64(count) * (float64(e.Config.Activity.HeartbeatIntervalMinutes) / 60)
	switch {
	case hoursPerDay > 10:
		return scorerResult{Score: 30, Penalty: 3}
	case hoursPerDay > 8:
		return scorerResult{Score: 60, Penalty: 1}
	default:
		return scorerResult{Score: 100, Penalty: 0}
	}
}

// checkActivityLevel compares last week's log volume against the expected
// twelve logs per working day.
func (e Engine) checkActivityLevel(ctx context.Context, employeeID string) scorerResult {
	cutoff := e.now().UTC().AddDate(0, 0, -7).Format(time.RFC3339)
	logs, err := e.Repo.ListActivityLogs(ctx, repo.ActivityFilters{EmployeeID: employeeID, Since: cutoff})
	if err != nil {
		e.logf("wellness: activity level check for %s: %v", employeeID, err)
		return neutralScore
	}
	total := len(logs)
	expectedPerWeek := 12 * 5
	switch {
	case float64(total) < float64(expectedPerWeek)*0.5:
		return scorerResult{Score: 40, Penalty: 2}
	case float64(total) < float64(expectedPerWeek)*0.8:
		return scorerResult{Score: 70, Penalty: 1}
	default:
		return scorerResult{Score: 100, Penalty: 0}
	}
}

func (e Engine) checkStressIndicators(ctx context.Context, employeeID string) scorerResult {
	cutoff := e.now().UTC().AddDate(0, 0, -30).Format(time.RFC3339)
	count, err := e.Repo.CountEmployeeReportsSince(ctx, employeeID, cutoff)
	if err != nil {
		e.logf("wellness: stress check for %s: %v", employeeID, err)
		return neutralScore
	}
	switch {
	case count > 5:
		return scorerResult{Score: 30, Penalty: 3}
	case count > 2:
		return scorerResult{Score: 60, Penalty: 1}
	default:
		return scorerResult{Score: 100, Penalty: 0}
	}
}

// checkTaskPerformance scores the all-time completion ratio. Zero assigned
// tasks counts as a perfect score, not as insufficient data.
func (e Engine) checkTaskPerformance(ctx context.Context, employeeID string) scorerResult {
	total, completed, err := e.Repo.TaskCompletionCounts(ctx, employeeID)
	if err != nil {
		e.logf("wellness: task performance check for %s: %v", employeeID, err)
		return neutralScore
	}
	if total == 0 {
		return scorerResult{Score: 100, Penalty: 0}
	}
	rate := float64(completed) / float64(total)
	switch {
	case rate < 0.3:
		return scorerResult{Score: 40, Penalty: 2}
	case rate < 0.6:
		return scorerResult{Score: 70, Penalty: 1}
	default:
		return scorerResult{Score: 100, Penalty: 0}
	}
}

func wellnessMessage(score int) string {
	switch {
	case score >= 8:
		return "You're doing great! Keep maintaining this healthy balance."
	case score >= 6:
		return "You're doing well! Consider taking more breaks."
	case score >= 4:
		return "Let's check in - everything okay? Consider reaching out if you need support."
	default:
		return "We're concerned about your wellbeing. Please speak with your manager or HR."
	}
}

// ComputeDepartmentWellness averages each active employee's latest score and
// rescales it to 0-100. Any failure along the way falls back to the neutral
// department summary; the caller never sees an error.
func (e Engine) ComputeDepartmentWellness(ctx context.Context, departmentID string) domain.DepartmentWellness {
	neutral := domain.DepartmentWellness{
		DepartmentID:   departmentID,
		WellnessScore:  50,
		TotalEmployees: 0,
		Trend:          "stable",
	}
	employees, err := e.Repo.ListActiveEmployees(ctx, departmentID)
	if err != nil {
		e.logf("wellness: list employees for department %s: %v", departmentID, err)
		return neutral
	}
	if len(employees) == 0 {
		return neutral
	}

	totalScore := 0
	for _, emp := range employees {
		latest, err := e.Repo.LatestWellnessScore(ctx, emp.ID)
		switch {
		case err == nil:
			totalScore += latest.Score
		case errors.Is(err, repo.ErrNotFound):
			// Employees never scored count as a middling 5.
			totalScore += 5
		default:
			e.logf("wellness: latest score for employee %s: %v", emp.ID, err)
			return neutral
		}
	}

	avgScore := int(float64(totalScore) / float64(len(employees)) * 10)
	trend := "stable"
	if avgScore >= e.Config.Wellness.ExcellentMin {
		trend = "improving"
	} else if avgScore < e.Config.Wellness.FairMin {
		trend = "declining"
	}

	if err := e.Repo.UpdateDepartmentWellness(ctx, departmentID, avgScore, len(employees), trend); err != nil {
		e.logf("wellness: update department %s summary: %v", departmentID, err)
	}
	return domain.DepartmentWellness{
		DepartmentID:   departmentID,
		WellnessScore:  avgScore,
		TotalEmployees: len(employees),
		Trend:          trend,
	}
}
