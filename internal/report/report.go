// Package report assembles per-file analysis results into the final
// AnalysisReport: deterministic ordering, aggregate statistics, duplicate
// detection, and actionable recommendations.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/omniforge/omniforge/pkg/config"
	"github.com/omniforge/omniforge/pkg/models"
)

// Input carries everything the builder needs from one analysis run. Slices
// may arrive in any order; the builder sorts them.
type Input struct {
	Repository     models.RepositoryDescriptor
	Files          []models.FileMetrics
	Findings       []models.SecurityFinding
	Dependencies   []models.DependencyEdge
	Issues         []models.Issue
	Architecture   models.ArchitectureClassification
	CatalogVersion string
	GeneratedAt    time.Time
}

// Builder turns raw analysis results into reports. Thresholds feed the
// recommendation generator.
type Builder struct {
	complexityWarn      float64
	maintainabilityWarn float64
}

// NewBuilder creates a builder with the configured thresholds.
func NewBuilder(limits config.ThresholdConfig) *Builder {
	return &Builder{
		complexityWarn:      limits.ComplexityWarn,
		maintainabilityWarn: limits.MaintainabilityWarn,
	}
}

// Build assembles the report. Every collection is sorted so repeated runs
// over the same input serialize byte-identically.
func (b *Builder) Build(in Input) *models.AnalysisReport {
	files := append([]models.FileMetrics(nil), in.Files...)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	findings := append([]models.SecurityFinding(nil), in.Findings...)
	// Stable: findings for the same file and line stay in catalog order.
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})

	edges := append([]models.DependencyEdge(nil), in.Dependencies...)
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})

	issues := append([]models.Issue(nil), in.Issues...)
	sort.Slice(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })

	stats := b.aggregate(in.Repository, files, findings, issues)
	duplicates := duplicateGroups(files)

	report := &models.AnalysisReport{
		Repository:     in.Repository,
		Files:          files,
		Findings:       findings,
		Architecture:   in.Architecture,
		Dependencies:   edges,
		Stats:          stats,
		Duplicates:     duplicates,
		Issues:         issues,
		GeneratedAt:    in.GeneratedAt,
		CatalogVersion: in.CatalogVersion,
		Success:        true,
	}
	report.Recommendations = b.recommendations(report)
	return report
}

func (b *Builder) aggregate(repo models.RepositoryDescriptor, files []models.FileMetrics, findings []models.SecurityFinding, issues []models.Issue) models.AggregateStats {
	stats := models.AggregateStats{
		TotalFiles:  repo.TotalFiles,
		Languages:   map[string]int{},
		IssuesCount: len(issues),
	}

	var complexities []float64
	var maintainability []float64
	for _, f := range files {
		stats.Languages[string(f.Language)]++
		if f.Unavailable {
			continue
		}
		stats.TotalLines += f.LinesOfCode
		complexities = append(complexities, float64(f.Cyclomatic))
		maintainability = append(maintainability, f.Maintainability)
	}

	if len(complexities) > 0 {
		sort.Float64s(complexities)
		stats.Complexity = models.ComplexityStats{
			Min: complexities[0],
			Avg: round1(stat.Mean(complexities, nil)),
			Max: complexities[len(complexities)-1],
			P95: stat.Quantile(0.95, stat.Empirical, complexities, nil),
		}
		stats.MaintainabilityScore = round1(stat.Mean(maintainability, nil))
	}

	for _, f := range findings {
		stats.Security.Add(f)
	}

	return stats
}

// duplicateGroups clusters files sharing a content fingerprint. Only groups
// of two or more files are reported.
func duplicateGroups(files []models.FileMetrics) []models.DuplicateGroup {
	byHash := map[uint64][]string{}
	for _, f := range files {
		if f.Unavailable || f.ContentHash == 0 {
			continue
		}
		byHash[f.ContentHash] = append(byHash[f.ContentHash], f.Path)
	}

	var groups []models.DuplicateGroup
	for hash, paths := range byHash {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		groups = append(groups, models.DuplicateGroup{Hash: hash, Files: paths})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Files[0] < groups[j].Files[0] })
	return groups
}

// recommendations derives actionable guidance from the assembled report.
func (b *Builder) recommendations(r *models.AnalysisReport) []string {
	var recs []string

	if r.Architecture.Label == models.ArchUnknown {
		recs = append(recs,
			"Consider organizing code into a clear architecture pattern (MVC, layered, microservices)")
	}

	if r.Stats.Complexity.Avg > b.complexityWarn {
		recs = append(recs, fmt.Sprintf(
			"Average complexity is %.1f. Refactor complex functions into smaller, more maintainable units.",
			r.Stats.Complexity.Avg))
	}

	if len(r.Files) > 0 && r.Stats.MaintainabilityScore < b.maintainabilityWarn {
		recs = append(recs, fmt.Sprintf(
			"Maintainability score is %.1f. Add documentation, improve naming, and reduce code duplication.",
			r.Stats.MaintainabilityScore))
	}

	if n := r.Stats.Security.Critical; n > 0 {
		recs = append(recs, fmt.Sprintf(
			"CRITICAL: %d critical security issues found. Address these immediately before deployment.", n))
	}
	if n := r.Stats.Security.High; n > 0 {
		recs = append(recs, fmt.Sprintf(
			"HIGH: %d high-severity security issues found. Review and fix these issues as soon as possible.", n))
	}

	hasTests := false
	hasReadme := false
	for _, f := range r.Files {
		lower := strings.ToLower(f.Path)
		if strings.Contains(lower, "test") {
			hasTests = true
		}
		if strings.Contains(f.Path, "README") {
			hasReadme = true
		}
	}
	if len(r.Files) > 0 && !hasTests {
		recs = append(recs, "No test files detected. Add comprehensive unit and integration tests.")
	}
	if len(r.Files) > 0 && !hasReadme {
		recs = append(recs, "Add a comprehensive README with setup instructions and documentation.")
	}

	return recs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
