package engine

var severityRanks = map[string]int{
	"low":      0,
	"medium":   1,
	"high":     2,
	"critical": 3,
}

// SeverityRank maps a severity label to its rank. Unknown labels rank as low.
func SeverityRank(s string) int {
	return severityRanks[s]
}

// IsHigherSeverity reports whether a is strictly more severe than b.
func IsHigherSeverity(a, b string) bool {
	return SeverityRank(a) > SeverityRank(b)
}
