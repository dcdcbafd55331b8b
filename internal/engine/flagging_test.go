package engine_test

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"safeshift/internal/config"
	"safeshift/internal/db"
	"safeshift/internal/engine"
	"safeshift/internal/migrate"
)

type testEnv struct {
	Engine     engine.Engine
	Ctx        context.Context
	Department string
	Employee   string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, config.Default())
	eng.Now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	eng.Logger = log.New(io.Discard, "", 0)
	ctx := context.Background()
	dept, err := eng.CreateDepartment(ctx, "Warehouse", "")
	if err != nil {
		t.Fatalf("create department: %v", err)
	}
	emp, err := eng.CreateEmployee(ctx, engine.EmployeeCreateOptions{
		FullName:     "Dana Reyes",
		Email:        "dana@example.com",
		DepartmentID: dept.ID,
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return testEnv{Engine: eng, Ctx: ctx, Department: dept.ID, Employee: emp.ID}
}

func TestSeverityOrdering(t *testing.T) {
	order := []string{"low", "medium", "high", "critical"}
	for i, a := range order {
		for j, b := range order {
			got := engine.IsHigherSeverity(a, b)
			want := i > j
			if got != want {
				t.Errorf("IsHigherSeverity(%q,%q)=%v, want %v", a, b, got, want)
			}
		}
	}
	// unknown values rank as low
	if engine.SeverityRank("bogus") != 0 {
		t.Errorf("unknown severity should rank 0")
	}
	if engine.IsHigherSeverity("bogus", "low") {
		t.Errorf("unknown severity should not outrank low")
	}
}

func TestSubmitReportNoRulesNotFlagged(t *testing.T) {
	env := newTestEnv(t)
	rep, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
		EmployeeID:   env.Employee,
		DepartmentID: env.Department,
		ReportType:   "equipment",
		Severity:     "low",
		Title:        "Broken pallet jack",
		Description:  "The pallet jack in bay 3 has a cracked wheel and should be serviced before next shift.",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rep.IsFlagged {
		t.Fatalf("expected not flagged, got reason %v", rep.FlagReason)
	}
	stored, err := env.Engine.Repo.GetReport(env.Ctx, rep.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if stored.IsFlagged || stored.FlagReason != nil || stored.Severity != "low" {
		t.Fatalf("report was modified: %+v", stored)
	}
}

func TestKeywordFirstMatchWins(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateRule(env.Ctx, "fraud", "critical", ""); err != nil {
		t.Fatal(err)
	}
	// later rule with the same keyword and lower severity must never win
	if _, err := env.Engine.CreateRule(env.Ctx, "fraud", "low", ""); err != nil {
		t.Fatal(err)
	}
	rep, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
		EmployeeID:   env.Employee,
		DepartmentID: env.Department,
		ReportType:   "conduct",
		Severity:     "low",
		Title:        "Possible Fraud in expense claims",
		Description:  "Observed repeated duplicate expense submissions over the past quarter that appear deliberate.",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !rep.IsFlagged {
		t.Fatal("expected flagged")
	}
	if rep.FlagReason == nil || !strings.Contains(*rep.FlagReason, "Keyword detected: fraud") {
		t.Fatalf("unexpected reason %v", rep.FlagReason)
	}
	if rep.Severity != "critical" {
		t.Fatalf("severity = %q, want critical from first rule", rep.Severity)
	}
}

func TestKeywordMatchIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateRule(env.Ctx, "Harassment", "high", ""); err != nil {
		t.Fatal(err)
	}
	rep, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
		EmployeeID:   env.Employee,
		DepartmentID: env.Department,
		ReportType:   "conduct",
		Severity:     "low",
		Title:        "Shift dispute",
		Description:  "Multiple coworkers described ongoing HARASSMENT during the night shift handover last week.",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !rep.IsFlagged || rep.Severity != "high" {
		t.Fatalf("expected high flag, got %+v", rep)
	}
	// reason carries the keyword as stored, not as matched
	if !strings.Contains(*rep.FlagReason, "Keyword detected: Harassment") {
		t.Fatalf("unexpected reason %q", *rep.FlagReason)
	}
}

func TestInactiveRulesIgnored(t *testing.T) {
	env := newTestEnv(t)
	rule, err := env.Engine.CreateRule(env.Ctx, "injury", "high", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.SetRuleActive(env.Ctx, rule.ID, false, ""); err != nil {
		t.Fatal(err)
	}
	rep, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
		EmployeeID:   env.Employee,
		DepartmentID: env.Department,
		ReportType:   "safety",
		Severity:     "low",
		Title:        "Minor injury at loading dock",
		Description:  "An employee scraped their arm on an exposed bracket; first aid was applied and the bracket taped off.",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rep.IsFlagged {
		t.Fatalf("disabled rule fired: %v", *rep.FlagReason)
	}
}

func TestPatternDetectionForcesHigh(t *testing.T) {
	env := newTestEnv(t)
	submit := func() {
		t.Helper()
		_, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
			EmployeeID:   env.Employee,
			DepartmentID: env.Department,
			ReportType:   "safety",
			Severity:     "low",
			Title:        "Wet floor near entrance",
			Description:  "Water pooling near the staff entrance after rain; mats were placed but the leak has not been fixed.",
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	submit()
	submit()
	// third same-department same-type report within the window trips the burst
	rep, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
		EmployeeID:   env.Employee,
		DepartmentID: env.Department,
		ReportType:   "safety",
		Severity:     "low",
		Title:        "Wet floor again",
		Description:  "Same leak near the staff entrance, third report this week; someone nearly slipped this morning.",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !rep.IsFlagged {
		t.Fatal("expected pattern flag")
	}
	if !strings.Contains(*rep.FlagReason, "3 in 7 days") {
		t.Fatalf("reason %q does not mention the burst count", *rep.FlagReason)
	}
	var patternFlag *engine.Flag
	result := env.Engine.EvaluateFlagging(env.Ctx, rep, "")
	for i := range result.Flags {
		if result.Flags[i].Type == "pattern" {
			patternFlag = &result.Flags[i]
		}
	}
	if patternFlag == nil || patternFlag.Severity != "high" {
		t.Fatalf("pattern flag severity should be fixed high, got %+v", result.Flags)
	}
}

func TestDocumentationShortDescription(t *testing.T) {
	env := newTestEnv(t)
	rep, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
		EmployeeID:   env.Employee,
		DepartmentID: env.Department,
		ReportType:   "safety",
		Severity:     "high",
		Title:        "Machine guard missing",
		Description:  "Guard missing on press 2.",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !rep.IsFlagged {
		t.Fatal("expected documentation flag")
	}
	if !strings.Contains(*rep.FlagReason, "High severity report with insufficient description") {
		t.Fatalf("unexpected reason %q", *rep.FlagReason)
	}
}

func TestCriticalMissingAttachments(t *testing.T) {
	env := newTestEnv(t)
	description := strings.Repeat("Detailed account of the chemical spill in storage room B. ", 3)
	if len(description) < 100 {
		t.Fatal("test description must pass the length rule")
	}
	rep, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
		EmployeeID:   env.Employee,
		DepartmentID: env.Department,
		ReportType:   "safety",
		Severity:     "critical",
		Title:        "Chemical spill",
		Description:  description,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !rep.IsFlagged {
		t.Fatal("expected documentation flag")
	}
	if !strings.Contains(*rep.FlagReason, "Critical report missing supporting documentation") {
		t.Fatalf("unexpected reason %q", *rep.FlagReason)
	}
	if rep.Severity != "critical" {
		t.Fatalf("severity = %q", rep.Severity)
	}
}

func TestCriticalWithAttachmentsNotDocFlagged(t *testing.T) {
	env := newTestEnv(t)
	description := strings.Repeat("Detailed account of the electrical fault in panel room C with photos attached. ", 2)
	rep, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
		EmployeeID:   env.Employee,
		DepartmentID: env.Department,
		ReportType:   "electrical",
		Severity:     "critical",
		Title:        "Electrical fault",
		Description:  description,
		Attachments:  []string{"panel-c.jpg"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rep.IsFlagged {
		t.Fatalf("should not be flagged: %v", *rep.FlagReason)
	}
}

func TestFlagReasonsJoinedInDetectionOrder(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateRule(env.Ctx, "spill", "high", ""); err != nil {
		t.Fatal(err)
	}
	rep, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
		EmployeeID:   env.Employee,
		DepartmentID: env.Department,
		ReportType:   "safety",
		Severity:     "high",
		Title:        "Oil spill near press",
		Description:  "Small oil spill.",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !rep.IsFlagged {
		t.Fatal("expected flags")
	}
	want := "Keyword detected: spill | High severity report with insufficient description"
	if *rep.FlagReason != want {
		t.Fatalf("reason = %q, want %q", *rep.FlagReason, want)
	}
}

func TestAnonymousReportHasNoEmployee(t *testing.T) {
	env := newTestEnv(t)
	rep, err := env.Engine.SubmitReport(env.Ctx, engine.ReportSubmitOptions{
		EmployeeID:   env.Employee,
		DepartmentID: env.Department,
		ReportType:   "conduct",
		Severity:     "low",
		Title:        "Anonymous concern",
		Description:  "Submitted anonymously; reporter identity must not be stored anywhere on the record.",
		IsAnonymous:  true,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rep.EmployeeID != nil {
		t.Fatalf("anonymous report kept employee id %q", *rep.EmployeeID)
	}
	stored, err := env.Engine.Repo.GetReport(env.Ctx, rep.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.EmployeeID != nil {
		t.Fatal("anonymous report persisted with employee id")
	}
}
