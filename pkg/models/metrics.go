package models

import (
	"math"

	"github.com/omniforge/omniforge/pkg/lang"
)

// HalsteadMetrics represents Halstead software science measurements derived
// from operator/operand counts.
type HalsteadMetrics struct {
	OperatorsUnique uint32  `json:"operators_unique"` // n1: distinct operators
	OperandsUnique  uint32  `json:"operands_unique"`  // n2: distinct operands
	OperatorsTotal  uint32  `json:"operators_total"`  // N1: total operators
	OperandsTotal   uint32  `json:"operands_total"`   // N2: total operands
	Vocabulary      uint32  `json:"vocabulary"`       // n = n1 + n2
	Length          uint32  `json:"length"`           // N = N1 + N2
	Volume          float64 `json:"volume"`           // V = N * log2(n)
}

// NewHalsteadMetrics creates Halstead metrics from base counts and computes
// the derived values.
func NewHalsteadMetrics(operatorsUnique, operandsUnique, operatorsTotal, operandsTotal uint32) *HalsteadMetrics {
	h := &HalsteadMetrics{
		OperatorsUnique: operatorsUnique,
		OperandsUnique:  operandsUnique,
		OperatorsTotal:  operatorsTotal,
		OperandsTotal:   operandsTotal,
	}
	if h.OperatorsUnique == 0 && h.OperandsUnique == 0 {
		return h
	}
	h.Vocabulary = h.OperatorsUnique + h.OperandsUnique
	h.Length = h.OperatorsTotal + h.OperandsTotal
	if h.Vocabulary > 0 {
		h.Volume = float64(h.Length) * math.Log2(float64(h.Vocabulary))
	}
	return h
}

// FileMetrics holds per-file quality measurements.
//
// Maintainability is a pure function of Cyclomatic, LinesOfCode, and the
// volume (Halstead when available, the lexical proxy otherwise) together
// with fixed weighting constants, so identical input always yields the same
// value. It is stored already rounded to one decimal in [0, 100].
type FileMetrics struct {
	Path            string        `json:"path"`
	Language        lang.Language `json:"language"`
	LinesOfCode     int           `json:"lines_of_code"`
	Cyclomatic      int           `json:"cyclomatic"`
	Maintainability float64       `json:"maintainability"`
	// Halstead is absent for languages analyzed lexically.
	Halstead *HalsteadMetrics `json:"halstead,omitempty"`
	// ContentHash is the xxhash64 fingerprint of the raw content, used for
	// duplicate-content grouping in the aggregate report.
	ContentHash uint64 `json:"content_hash"`
	// Unavailable marks files that were discovered but could not be measured
	// (binary or unreadable). They count toward totals but are excluded from
	// complexity aggregates.
	Unavailable bool `json:"unavailable,omitempty"`
}
