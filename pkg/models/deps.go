package models

// DependencyKind distinguishes in-repository imports from external ones.
type DependencyKind string

const (
	DependencyInternal DependencyKind = "internal"
	DependencyExternal DependencyKind = "external"
)

// DependencyEdge records one import/require-style statement in a source
// file. Target holds the dependency name as written; for internal edges
// ResolvedPath is the repository-relative path it resolved to.
type DependencyEdge struct {
	Source       string         `json:"source"`
	Target       string         `json:"target"`
	Kind         DependencyKind `json:"kind"`
	ResolvedPath string         `json:"resolved_path,omitempty"`
}
