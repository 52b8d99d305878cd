package analyzer

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/omniforge/omniforge/pkg/lang"
	"github.com/omniforge/omniforge/pkg/models"
)

// importPattern recognizes one import-statement form and captures the
// dependency name in its first group.
type importPattern struct {
	re *regexp.Regexp
}

// importRecognizers maps each language to its import-statement forms.
// Matching is line-oriented; multi-line forms (Go import blocks) are
// handled by the block state in extract.
var importRecognizers = map[lang.Language][]importPattern{
	lang.LangGo: {
		{regexp.MustCompile(`^\s*import\s+(?:[\w.]+\s+)?"([^"]+)"`)},
	},
	lang.LangPython: {
		{regexp.MustCompile(`^\s*import\s+([\w.]+)`)},
		{regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\b`)},
	},
	lang.LangJavaScript: {
		{regexp.MustCompile(`\bimport\s+.*?\bfrom\s+['"]([^'"]+)['"]`)},
		{regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"]+)['"]`)},
		{regexp.MustCompile(`\bexport\s+.*?\bfrom\s+['"]([^'"]+)['"]`)},
	},
	lang.LangTypeScript: {
		{regexp.MustCompile(`\bimport\s+.*?\bfrom\s+['"]([^'"]+)['"]`)},
		{regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"]+)['"]`)},
		{regexp.MustCompile(`\bexport\s+.*?\bfrom\s+['"]([^'"]+)['"]`)},
	},
	lang.LangJava: {
		{regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.]+)\s*;`)},
	},
	lang.LangC: {
		{regexp.MustCompile(`^\s*#\s*include\s*[<"]([^>"]+)[>"]`)},
	},
	lang.LangCPP: {
		{regexp.MustCompile(`^\s*#\s*include\s*[<"]([^>"]+)[>"]`)},
	},
	lang.LangRust: {
		{regexp.MustCompile(`^\s*use\s+([\w:]+)`)},
		{regexp.MustCompile(`^\s*extern\s+crate\s+(\w+)`)},
	},
	lang.LangRuby: {
		{regexp.MustCompile(`^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`)},
	},
	lang.LangPHP: {
		{regexp.MustCompile(`^\s*use\s+([\w\\]+)`)},
		{regexp.MustCompile(`\b(?:require|include)(?:_once)?\s*\(?\s*['"]([^'"]+)['"]`)},
	},
	lang.LangCSharp: {
		{regexp.MustCompile(`^\s*using\s+([\w.]+)\s*;`)},
	},
}

var goImportBlockLine = regexp.MustCompile(`^\s*(?:[\w.]+\s+)?"([^"]+)"`)

// DepsExtractor parses import/require-style statements into dependency
// edges. A dependency is internal when it resolves to a path inside the
// repository root; unresolvable statements are skipped, not errors.
type DepsExtractor struct {
	root string
}

// NewDeps creates an extractor for the given repository root.
func NewDeps(root string) *DepsExtractor {
	return &DepsExtractor{root: root}
}

// ExtractFile extracts dependency edges from one file. content may be nil,
// in which case the file is streamed from disk. Each distinct target is
// reported once per file, in first-occurrence order.
func (d *DepsExtractor) ExtractFile(file models.SourceFile, content []byte) []models.DependencyEdge {
	recognizers, ok := importRecognizers[file.Language]
	if !ok {
		return nil
	}

	var r io.Reader
	if content != nil {
		r = bytes.NewReader(content)
	} else {
		f, err := os.Open(file.AbsPath)
		if err != nil {
			return nil
		}
		defer f.Close()
		r = f
	}

	return d.extract(file, r, recognizers)
}

func (d *DepsExtractor) extract(file models.SourceFile, r io.Reader, recognizers []importPattern) []models.DependencyEdge {
	var edges []models.DependencyEdge
	seen := make(map[string]bool)

	add := func(target string) {
		if target == "" || seen[target] {
			return
		}
		seen[target] = true
		edge := models.DependencyEdge{
			Source: file.Path,
			Target: target,
			Kind:   models.DependencyExternal,
		}
		if resolved, ok := d.resolveInternal(file, target); ok {
			edge.Kind = models.DependencyInternal
			edge.ResolvedPath = resolved
		}
		edges = append(edges, edge)
	}

	inGoImportBlock := false
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanTokenSize)
	for scanner.Scan() {
		line := scanner.Text()

		if file.Language == lang.LangGo {
			trimmed := strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(trimmed, "import ("):
				inGoImportBlock = true
				continue
			case inGoImportBlock && trimmed == ")":
				inGoImportBlock = false
				continue
			case inGoImportBlock:
				if m := goImportBlockLine.FindStringSubmatch(line); m != nil {
					add(m[1])
				}
				continue
			}
		}

		for _, p := range recognizers {
			if m := p.re.FindStringSubmatch(line); m != nil {
				add(m[1])
			}
		}
	}

	return edges
}

// resolveInternal probes the filesystem to decide whether a dependency
// names something inside the repository.
func (d *DepsExtractor) resolveInternal(file models.SourceFile, target string) (string, bool) {
	fileDir := filepath.Dir(file.Path)

	var candidates []string
	switch file.Language {
	case lang.LangPython:
		modPath := strings.ReplaceAll(target, ".", string(filepath.Separator))
		candidates = []string{
			modPath + ".py",
			filepath.Join(modPath, "__init__.py"),
			filepath.Join(fileDir, modPath+".py"),
		}
	case lang.LangJavaScript, lang.LangTypeScript:
		if !strings.HasPrefix(target, ".") {
			return "", false
		}
		base := filepath.Join(fileDir, target)
		for _, ext := range []string{"", ".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"} {
			candidates = append(candidates, base+ext)
		}
		for _, idx := range []string{"index.js", "index.ts"} {
			candidates = append(candidates, filepath.Join(base, idx))
		}
	case lang.LangC, lang.LangCPP:
		candidates = []string{
			filepath.Join(fileDir, target),
			target,
		}
	case lang.LangRuby:
		candidates = []string{
			target + ".rb",
			filepath.Join(fileDir, target+".rb"),
		}
	default:
		return "", false
	}

	for _, rel := range candidates {
		rel = filepath.Clean(rel)
		if strings.HasPrefix(rel, "..") {
			continue
		}
		if info, err := os.Stat(filepath.Join(d.root, rel)); err == nil && !info.IsDir() {
			return rel, true
		}
	}
	return "", false
}
