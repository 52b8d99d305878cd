package models

// Severity represents the urgency of a security finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight returns a numeric weight for sorting, higher is more severe.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// FindingCategory classifies what kind of weakness a pattern detects.
type FindingCategory string

const (
	CategorySecret           FindingCategory = "secret"
	CategorySQLInjection     FindingCategory = "injection-sql"
	CategoryCommandInjection FindingCategory = "injection-command"
	CategoryPathTraversal    FindingCategory = "path-traversal"
	CategoryWeakCrypto       FindingCategory = "weak-crypto"
	CategoryOther            FindingCategory = "other"
)

// SecurityFinding is a single pattern match in a source file. Findings are
// immutable once produced; multiple findings per file and per line are
// allowed.
type SecurityFinding struct {
	File        string          `json:"file"`
	Line        int             `json:"line"`
	PatternID   string          `json:"pattern_id"`
	Severity    Severity        `json:"severity"`
	Category    FindingCategory `json:"category"`
	Description string          `json:"description"`
	Remediation string          `json:"remediation,omitempty"`
}

// SecuritySummary accumulates finding counts by severity.
type SecuritySummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Add updates the summary with one finding.
func (s *SecuritySummary) Add(f SecurityFinding) {
	s.Total++
	switch f.Severity {
	case SeverityCritical:
		s.Critical++
	case SeverityHigh:
		s.High++
	case SeverityMedium:
		s.Medium++
	case SeverityLow:
		s.Low++
	}
}
