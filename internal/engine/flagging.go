package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safeshift/internal/audit"
	"safeshift/internal/domain"
)

// Flag is one triggered signal from a flagging sub-check.
type Flag struct {
	Type     string `json:"type"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
}

// FlagResult is the outcome of a full flagging pass over one report.
type FlagResult struct {
	Flagged  bool   `json:"flagged"`
	Reason   string `json:"reason,omitempty"`
	Severity string `json:"severity,omitempty"`
	Flags    []Flag `json:"flags,omitempty"`
}

// EvaluateFlagging runs the three flagging checks over an already-persisted
// report and records the verdict on it. It never returns an error: a failing
// sub-check counts as no match, and a failed persist logs and yields a
// not-flagged result. Worst case a report that deserved a flag stays clean.
func (e Engine) EvaluateFlagging(ctx context.Context, rep domain.Report, actorID string) FlagResult {
	var flags []Flag
	highest := rep.Severity

	// Only the keyword check may raise the report's severity. The pattern
	// flag carries a fixed "high" of its own but does not compete here.
	if f := e.checkKeywords(ctx, rep); f != nil {
		flags = append(flags, *f)
		if IsHigherSeverity(f.Severity, highest) {
			highest = f.Severity
		}
	}
	if f := e.checkPatterns(ctx, rep); f != nil {
		flags = append(flags, *f)
	}
	if f := checkDocumentation(rep); f != nil {
		flags = append(flags, *f)
	}

	if len(flags) == 0 {
		return FlagResult{}
	}

	reasons := make([]string, 0, len(flags))
	for _, f := range flags {
		reasons = append(reasons, f.Reason)
	}
	reason := strings.Join(reasons, " | ")

	if err := e.persistFlag(ctx, rep.ID, reason, highest, actorID); err != nil {
		e.logf("flagging: persist verdict for report %s: %v", rep.ID, err)
		return FlagResult{}
	}
	return FlagResult{Flagged: true, Reason: reason, Severity: highest, Flags: flags}
}

func (e Engine) persistFlag(ctx context.Context, reportID, reason, severity, actorID string) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := e.now().UTC().Format(time.RFC3339)
	if err := e.Repo.ApplyReportFlag(ctx, tx, reportID, reason, severity, now); err != nil {
		return err
	}
	if err := e.Audit.Append(ctx, tx, "report.flag", actorID, "report", reportID, audit.Details{"reason": reason, "severity": severity}); err != nil {
		return err
	}
	return tx.Commit()
}

// checkKeywords matches active rules against the report's title and
// description, case-insensitively. Rules are evaluated in creation order and
// the first match wins, regardless of the severity of later matches.
func (e Engine) checkKeywords(ctx context.Context, rep domain.Report) *Flag {
	rules, err := e.Repo.ListRules(ctx, true)
	if err != nil {
		e.logf("flagging: keyword check for report %s: %v", rep.ID, err)
		return nil
	}
	title := strings.ToLower(rep.Title)
	description := strings.ToLower(rep.Description)
	for _, rule := range rules {
		keyword := strings.ToLower(rule.Keyword)
		if strings.Contains(description, keyword) || strings.Contains(title, keyword) {
			return &Flag{
				Type:     "keyword",
				Reason:   "Keyword detected: " + rule.Keyword,
				Severity: rule.SeverityLevel,
			}
		}
	}
	return nil
}

// checkPatterns detects bursts of same-department, same-type reports inside
// the detection window. The count includes the report under evaluation, which
// is already persisted when this runs.
func (e Engine) checkPatterns(ctx context.Context, rep domain.Report) *Flag {
	days := e.Config.Flagging.PatternDetectionDays
	cutoff := e.now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	count, err := e.Repo.CountSimilarReports(ctx, rep.DepartmentID, rep.ReportType, cutoff)
	if err != nil {
		e.logf("flagging: pattern check for report %s: %v", rep.ID, err)
		return nil
	}
	if count >= e.Config.Flagging.SimilarReportsThreshold {
		return &Flag{
			Type:     "pattern",
			Reason:   fmt.Sprintf("Multiple similar reports detected (%d in %d days)", count, days),
			Severity: "high",
		}
	}
	return nil
}

// checkDocumentation is a pure function of the report. At most one
// documentation flag fires; the description-length rule shadows the
// attachment rule.
func checkDocumentation(rep domain.Report) *Flag {
	if rep.Severity != "high" && rep.Severity != "critical" {
		return nil
	}
	if len(rep.Description) < 100 {
		return &Flag{
			Type:     "documentation",
			Reason:   "High severity report with insufficient description",
			Severity: rep.Severity,
		}
	}
	if rep.Severity == "critical" && len(rep.Attachments) == 0 {
		return &Flag{
			Type:     "documentation",
			Reason:   "Critical report missing supporting documentation",
			Severity: "critical",
		}
	}
	return nil
}
