package analyzer

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/omniforge/omniforge/pkg/lang"
	"github.com/omniforge/omniforge/pkg/models"
)

// PatternKind selects how a catalog entry matches a line.
type PatternKind string

const (
	MatchSubstring PatternKind = "substring"
	MatchRegex     PatternKind = "regex"
)

// CatalogEntry is one vulnerability check: a matcher plus metadata. Checks
// are data records evaluated by one generic engine, so the catalog can be
// replaced without code changes.
type CatalogEntry struct {
	ID          string                 `yaml:"id" json:"id"`
	Kind        PatternKind            `yaml:"kind" json:"kind"`
	Pattern     string                 `yaml:"pattern" json:"pattern"`
	Languages   []lang.Language        `yaml:"languages,omitempty" json:"languages,omitempty"`
	Severity    models.Severity        `yaml:"severity" json:"severity"`
	Category    models.FindingCategory `yaml:"category" json:"category"`
	Description string                 `yaml:"description" json:"description"`
	Remediation string                 `yaml:"remediation,omitempty" json:"remediation,omitempty"`

	re        *regexp.Regexp
	substring string
}

// Catalog is an ordered set of pattern entries. Ordering matters: findings
// on the same line are reported in catalog order, which makes scan output
// deterministic for a given catalog version.
type Catalog struct {
	entries []CatalogEntry
	version string
}

// Entries returns the compiled entries in catalog order.
func (c *Catalog) Entries() []CatalogEntry { return c.entries }

// Version is a fingerprint of the pattern set: the hex BLAKE3 hash of every
// entry's identity fields in order. Two catalogs with the same version
// produce byte-identical finding lists for the same input.
func (c *Catalog) Version() string { return c.version }

// NewCatalog compiles entries into a usable catalog.
func NewCatalog(entries []CatalogEntry) (*Catalog, error) {
	hasher := blake3.New()
	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		switch e.Kind {
		case MatchRegex:
			re, err := regexp.Compile(e.Pattern)
			if err != nil {
				return nil, fmt.Errorf("catalog entry %q: %w", e.ID, err)
			}
			e.re = re
		case MatchSubstring:
			e.substring = strings.ToLower(e.Pattern)
		default:
			return nil, fmt.Errorf("catalog entry %q: unknown kind %q", e.ID, e.Kind)
		}
		fmt.Fprintf(hasher, "%s\x00%s\x00%s\x00%s\x00%s\x00%v\n",
			e.ID, e.Kind, e.Pattern, e.Severity, e.Category, e.Languages)
	}

	sum := hasher.Sum(nil)
	return &Catalog{
		entries: entries,
		version: hex.EncodeToString(sum[:16]),
	}, nil
}

//go:embed catalog_schema.json
var catalogSchemaJSON []byte

// catalogFile is the external catalog document shape (YAML or JSON).
type catalogFile struct {
	Patterns []CatalogEntry `yaml:"patterns" json:"patterns"`
}

// LoadCatalog reads an external pattern catalog. JSON documents are
// validated against the embedded schema first; YAML documents rely on the
// compile step for validation.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc catalogFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := validateCatalogJSON(data); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
	}

	if len(doc.Patterns) == 0 {
		return nil, fmt.Errorf("catalog %s: no patterns", path)
	}
	return NewCatalog(doc.Patterns)
}

func validateCatalogJSON(data []byte) error {
	compiler := jsonschema.NewCompiler()
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(catalogSchemaJSON))
	if err != nil {
		return err
	}
	if err := compiler.AddResource("catalog.schema.json", schemaDoc); err != nil {
		return err
	}
	schema, err := compiler.Compile("catalog.schema.json")
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return schema.Validate(inst)
}

// SecurityScanner matches source lines against the catalog. Scanning is
// line-oriented and reports every match, not just the first; findings come
// back ordered by line number, then catalog order.
type SecurityScanner struct {
	catalog *Catalog
}

// NewSecurity creates a scanner over the given catalog.
func NewSecurity(catalog *Catalog) *SecurityScanner {
	return &SecurityScanner{catalog: catalog}
}

// Catalog returns the active catalog.
func (s *SecurityScanner) Catalog() *Catalog { return s.catalog }

// ScanFile scans one file. content may be nil, in which case the file is
// streamed from disk. Scan failures yield no findings and no error: the
// scanner never blocks analysis completion.
func (s *SecurityScanner) ScanFile(file models.SourceFile, content []byte) []models.SecurityFinding {
	if content != nil {
		return s.scanReader(file, bytes.NewReader(content))
	}

	f, err := os.Open(file.AbsPath)
	if err != nil {
		return nil
	}
	defer f.Close()
	return s.scanReader(file, f)
}

func (s *SecurityScanner) scanReader(file models.SourceFile, r io.Reader) []models.SecurityFinding {
	active := s.activeEntries(file.Language)
	if len(active) == 0 {
		return nil
	}

	var findings []models.SecurityFinding
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanTokenSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		lower := ""
		lowered := false
		for _, e := range active {
			matched := false
			switch e.Kind {
			case MatchRegex:
				matched = e.re.MatchString(line)
			case MatchSubstring:
				if !lowered {
					lower = strings.ToLower(line)
					lowered = true
				}
				matched = strings.Contains(lower, e.substring)
			}
			if matched {
				findings = append(findings, models.SecurityFinding{
					File:        file.Path,
					Line:        lineNo,
					PatternID:   e.ID,
					Severity:    e.Severity,
					Category:    e.Category,
					Description: e.Description,
					Remediation: e.Remediation,
				})
			}
		}
	}

	return findings
}

// activeEntries filters the catalog for a language, preserving order.
func (s *SecurityScanner) activeEntries(language lang.Language) []CatalogEntry {
	entries := s.catalog.entries
	active := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if len(e.Languages) == 0 {
			active = append(active, e)
			continue
		}
		for _, l := range e.Languages {
			if l == language {
				active = append(active, e)
				break
			}
		}
	}
	return active
}
