// Package analyzer implements the per-file and repository-wide analysis
// passes: quality metrics, security pattern scanning, dependency
// extraction, and architecture classification.
package analyzer

import (
	"bufio"
	"bytes"
	"errors"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/omniforge/omniforge/pkg/lang"
	"github.com/omniforge/omniforge/pkg/models"
	"github.com/omniforge/omniforge/pkg/parser"
)

// ErrMetricsUnavailable marks files whose metrics could not be computed
// (binary content or read failures). It is per-file and non-fatal: the file
// still counts toward totals but is excluded from complexity aggregates.
var ErrMetricsUnavailable = errors.New("metrics unavailable")

// Maintainability index weights. The index is the SEI composite
//
//	MI = 171 - 5.2*ln(V) - 0.23*CC - 16.2*ln(LOC)
//
// normalized to [0, 100] by *100/171. The constants are fixed here rather
// than derived per repository so the same file always yields the same
// score.
const (
	miBase         = 171.0
	miVolumeWeight = 5.2
	miCCWeight     = 0.23
	miLOCWeight    = 16.2
)

// maxScanTokenSize bounds single-line length in the streaming path.
// Minified bundles routinely exceed bufio's default.
const maxScanTokenSize = 1 << 20

// MetricsAnalyzer computes size, cyclomatic complexity, and maintainability
// per file. Files at or under maxFullLoad with a tree-sitter grammar get an
// AST pass including Halstead volume; everything else is streamed line by
// line and measured lexically.
type MetricsAnalyzer struct {
	maxFullLoad int64
}

// NewMetrics creates a metrics analyzer. maxFullLoad <= 0 disables the AST
// path entirely.
func NewMetrics(maxFullLoad int64) *MetricsAnalyzer {
	return &MetricsAnalyzer{maxFullLoad: maxFullLoad}
}

// AnalyzeFile computes metrics for one file. content may be nil for files
// that exceeded the full-load threshold; in that case the file is streamed
// from disk. The parser is only used on the AST path and may be shared
// across calls from the same worker.
func (m *MetricsAnalyzer) AnalyzeFile(psr *parser.Parser, file models.SourceFile, content []byte) (models.FileMetrics, error) {
	fm := models.FileMetrics{
		Path:     file.Path,
		Language: file.Language,
	}

	if content != nil {
		if isBinary(content) {
			fm.Unavailable = true
			return fm, ErrMetricsUnavailable
		}
		fm.ContentHash = xxhash.Sum64(content)
		fm.LinesOfCode = countCodeLines(content)

		if parser.Supported(file.Language) && psr != nil {
			if err := m.analyzeAST(psr, file, content, &fm); err == nil {
				return fm, nil
			}
			// Parse failures fall through to the lexical pass; the file is
			// still measurable.
		}

		lex := scanLexical(bytes.NewReader(content), file.Language)
		fm.Cyclomatic = lex.cyclomatic
		fm.Maintainability = maintainabilityIndex(lex.volume(), fm.Cyclomatic, fm.LinesOfCode)
		return fm, nil
	}

	return m.analyzeStreaming(file, &fm)
}

// analyzeAST fills metrics from a full parse.
func (m *MetricsAnalyzer) analyzeAST(psr *parser.Parser, file models.SourceFile, content []byte, fm *models.FileMetrics) error {
	result, err := psr.Parse(content, file.Language, file.Path)
	if err != nil {
		return err
	}
	defer result.Close()

	tally := tallyTree(result)
	fm.Cyclomatic = 1 + tally.decisions
	fm.Halstead = models.NewHalsteadMetrics(
		tally.operatorsUnique(), tally.operandsUnique(),
		tally.operatorsTotal, tally.operandsTotal,
	)
	fm.Maintainability = maintainabilityIndex(fm.Halstead.Volume, fm.Cyclomatic, fm.LinesOfCode)
	return nil
}

// analyzeStreaming handles files above the full-load threshold without ever
// holding the whole content in memory.
func (m *MetricsAnalyzer) analyzeStreaming(file models.SourceFile, fm *models.FileMetrics) (models.FileMetrics, error) {
	f, err := os.Open(file.AbsPath)
	if err != nil {
		fm.Unavailable = true
		return *fm, ErrMetricsUnavailable
	}
	defer f.Close()

	sniff := make([]byte, lang.SniffLimit)
	n, _ := f.Read(sniff)
	sniff = sniff[:n]
	if isBinary(sniff) {
		fm.Unavailable = true
		return *fm, ErrMetricsUnavailable
	}
	if _, err := f.Seek(0, 0); err != nil {
		fm.Unavailable = true
		return *fm, ErrMetricsUnavailable
	}

	digest := xxhash.New()
	lex := newLexicalCounts(file.Language)
	loc := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanTokenSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		_, _ = digest.Write(line)
		_, _ = digest.Write([]byte{'\n'})
		if len(bytes.TrimSpace(line)) > 0 {
			loc++
		}
		lex.addLine(line)
	}
	if err := scanner.Err(); err != nil {
		fm.Unavailable = true
		return *fm, ErrMetricsUnavailable
	}

	fm.ContentHash = digest.Sum64()
	fm.LinesOfCode = loc
	fm.Cyclomatic = lex.cyclomatic
	fm.Maintainability = maintainabilityIndex(lex.volume(), fm.Cyclomatic, fm.LinesOfCode)
	return *fm, nil
}

// maintainabilityIndex computes the normalized, clamped, 1-decimal-rounded
// maintainability score. Deterministic for identical inputs.
func maintainabilityIndex(volume float64, cyclomatic, loc int) float64 {
	if loc <= 0 {
		return 100.0
	}
	if volume < 1 {
		volume = 1
	}

	mi := miBase -
		miVolumeWeight*math.Log(volume) -
		miCCWeight*float64(cyclomatic) -
		miLOCWeight*math.Log(float64(loc))

	normalized := mi * 100.0 / miBase
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 100 {
		normalized = 100
	}
	return math.Round(normalized*10) / 10
}

// isBinary reports whether the sniff window contains a NUL byte.
func isBinary(sniff []byte) bool {
	if len(sniff) > lang.SniffLimit {
		sniff = sniff[:lang.SniffLimit]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}

// countCodeLines counts non-blank lines.
func countCodeLines(content []byte) int {
	loc := 0
	for _, line := range bytes.Split(content, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) > 0 {
			loc++
		}
	}
	return loc
}

// ReadForAnalysis loads a file's content when it fits the full-load
// threshold; larger files return nil content so analyzers stream instead.
// The sniff slice is always populated (bounded) for classification and
// binary detection.
func ReadForAnalysis(file models.SourceFile, maxFullLoad int64) (content, sniff []byte, err error) {
	if maxFullLoad > 0 && file.Size > maxFullLoad {
		f, err := os.Open(file.AbsPath)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		buf := make([]byte, lang.SniffLimit)
		n, _ := f.Read(buf)
		return nil, buf[:n], nil
	}

	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, nil, err
	}
	sniff = data
	if len(sniff) > lang.SniffLimit {
		sniff = sniff[:lang.SniffLimit]
	}
	return data, sniff, nil
}
