package models

import "time"

// ComplexityStats summarizes cyclomatic complexity across measurable files.
type ComplexityStats struct {
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
	P95 float64 `json:"p95"`
}

// Issue records a file that was discovered but could not be fully processed
// (permission denied, binary content, read failure). Issues never fail a
// job; they are accounted for in the aggregate counters.
type Issue struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// AggregateStats holds repository-level statistics merged from per-file
// results.
type AggregateStats struct {
	TotalFiles           int             `json:"total_files"`
	TotalLines           int             `json:"total_lines"`
	Languages            map[string]int  `json:"languages"`
	Complexity           ComplexityStats `json:"complexity_stats"`
	MaintainabilityScore float64         `json:"maintainability_score"`
	Security             SecuritySummary `json:"security"`
	IssuesCount          int             `json:"issues_count"`
}

// DuplicateGroup lists files sharing identical content, detected via
// content fingerprints.
type DuplicateGroup struct {
	Hash  uint64   `json:"hash"`
	Files []string `json:"files"`
}

// AnalysisReport is the final, immutable result of one repository analysis.
// It is returned to callers by value and never mutated after creation. All
// collections are sorted deterministically (files and edges by path,
// findings by file, line, then catalog order) so repeated serialization of
// the same input is byte-stable.
type AnalysisReport struct {
	Repository      RepositoryDescriptor       `json:"repository"`
	Files           []FileMetrics              `json:"files"`
	Findings        []SecurityFinding          `json:"findings"`
	Architecture    ArchitectureClassification `json:"architecture"`
	Dependencies    []DependencyEdge           `json:"dependencies"`
	Stats           AggregateStats             `json:"stats"`
	Duplicates      []DuplicateGroup           `json:"duplicates,omitempty"`
	Issues          []Issue                    `json:"issues,omitempty"`
	Recommendations []string                   `json:"recommendations"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	CatalogVersion  string                     `json:"catalog_version"`
	Success         bool                       `json:"success"`
	FailureReason   string                     `json:"failure_reason,omitempty"`
}
