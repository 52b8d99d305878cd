package models

// ArchitectureLabel is one of the closed set of structural pattern labels.
type ArchitectureLabel string

const (
	ArchMicroservices  ArchitectureLabel = "microservices"
	ArchMVC            ArchitectureLabel = "mvc"
	ArchLayered        ArchitectureLabel = "layered"
	ArchComponentBased ArchitectureLabel = "component-based"
	ArchMonolithic     ArchitectureLabel = "monolithic"
	ArchUnknown        ArchitectureLabel = "unknown"
)

// ArchPrecedence is the fixed tie-break order: when two labels score
// equally, the one earlier in this list wins. This keeps classification
// deterministic across runs.
var ArchPrecedence = []ArchitectureLabel{
	ArchMicroservices,
	ArchMVC,
	ArchLayered,
	ArchComponentBased,
	ArchMonolithic,
	ArchUnknown,
}

// ArchitectureClassification is the inferred structural pattern plus a
// confidence in [0, 1] derived from the share of signal the winning label
// collected.
type ArchitectureClassification struct {
	Label      ArchitectureLabel `json:"label"`
	Confidence float64           `json:"confidence"`
	// Signals lists the structural evidence that contributed, for report
	// readers; ordering is deterministic.
	Signals []string `json:"signals,omitempty"`
}
