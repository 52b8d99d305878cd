package models

import (
	"time"

	"github.com/omniforge/omniforge/pkg/lang"
)

// RepositoryDescriptor identifies the repository a report was generated for.
// Immutable once created.
type RepositoryDescriptor struct {
	Root         string    `json:"root"`
	DiscoveredAt time.Time `json:"discovered_at"`
	TotalFiles   int       `json:"total_files"`
}

// SourceFile is a single discovered file, a unit of work for the pipeline.
// The walker creates it; a worker consumes it and discards it. Content is
// loaded on demand by the analyzers and never retained after per-file
// results are produced.
type SourceFile struct {
	// Path is relative to the repository root.
	Path string `json:"path"`
	// AbsPath is the absolute on-disk location, used for reading only.
	AbsPath  string        `json:"-"`
	Language lang.Language `json:"language"`
	Size     int64         `json:"size"`
}
