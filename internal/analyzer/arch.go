package analyzer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/omniforge/omniforge/pkg/models"
)

// Directory names that act as structural evidence. Matching is on the base
// name of any directory segment, case-insensitive.
var (
	mvcDirs = []string{"models", "views", "controllers"}

	layerGroups = map[string][]string{
		"presentation": {"api", "handlers", "routes", "web", "ui"},
		"business":     {"services", "service", "usecase", "usecases", "business", "core", "logic"},
		"data":         {"repository", "repositories", "dao", "persistence", "store", "storage"},
	}

	serviceMarkers = []string{"dockerfile", "go.mod", "package.json", "requirements.txt", "pom.xml", "cargo.toml"}
)

// archEvidence is the structural summary the classifier scores. It is built
// once from the file list and dependency edges.
type archEvidence struct {
	totalFiles int
	// dirNames holds every directory segment name, lowercased.
	dirNames map[string]bool
	// rootFiles holds base names of files directly under the root, lowercased.
	rootFiles map[string]bool
	// topDirs maps each top-level directory to the files under it.
	topDirs map[string]*roaring.Bitmap
	// serviceDirs counts top-level directories carrying their own build or
	// container marker, the shape self-contained services take.
	serviceDirs int
	// internalEdges / crossDirEdges summarize internal dependency flow
	// between top-level directories.
	internalEdges int
	crossDirEdges int
	// sharedTargets counts internal files depended on from three or more
	// distinct top-level directories, evidence of a shared lower layer.
	sharedTargets int
	maxDepth      int
}

// ClassifyArchitecture infers the repository's structural pattern from file
// layout and internal dependency flow. It runs once per analysis, after all
// per-file work has finished. Ties between equally scored labels go to the
// earlier entry in models.ArchPrecedence.
func ClassifyArchitecture(files []models.SourceFile, edges []models.DependencyEdge) models.ArchitectureClassification {
	ev := gatherEvidence(files, edges)
	if ev.totalFiles == 0 {
		return models.ArchitectureClassification{Label: models.ArchUnknown}
	}

	scores := map[models.ArchitectureLabel]float64{}
	var signals []string

	note := func(label models.ArchitectureLabel, points float64, signal string) {
		scores[label] += points
		signals = append(signals, signal)
	}

	// Microservices: container orchestration plus self-contained services.
	if ev.rootFiles["docker-compose.yml"] || ev.rootFiles["docker-compose.yaml"] {
		note(models.ArchMicroservices, 3, "docker-compose at repository root")
	}
	if ev.serviceDirs >= 2 {
		n := ev.serviceDirs
		if n > 4 {
			n = 4
		}
		note(models.ArchMicroservices, float64(n),
			fmt.Sprintf("%d self-contained service directories", ev.serviceDirs))
	}

	// MVC: the canonical trio of directories.
	mvcHits := 0
	for _, d := range mvcDirs {
		if ev.dirNames[d] {
			mvcHits++
			note(models.ArchMVC, 2, d+"/ directory")
		}
	}
	if mvcHits == len(mvcDirs) {
		note(models.ArchMVC, 2, "complete models/views/controllers layout")
	}
	if ev.dirNames["templates"] && mvcHits > 0 {
		note(models.ArchMVC, 1, "templates/ directory")
	}

	// Layered: named layers and shared lower-layer dependencies.
	for _, group := range []string{"presentation", "business", "data"} {
		for _, d := range layerGroups[group] {
			if ev.dirNames[d] {
				note(models.ArchLayered, 1.5, group+" layer ("+d+"/)")
				break
			}
		}
	}
	if ev.sharedTargets >= 2 {
		note(models.ArchLayered, 1,
			fmt.Sprintf("%d modules shared across directories", ev.sharedTargets))
	}

	// Component-based: components directory, or mostly self-contained
	// top-level directories.
	if ev.dirNames["components"] {
		note(models.ArchComponentBased, 2, "components/ directory")
	}
	if ev.internalEdges >= 4 && len(ev.topDirs) >= 3 {
		crossRatio := float64(ev.crossDirEdges) / float64(ev.internalEdges)
		if crossRatio <= 0.2 {
			note(models.ArchComponentBased, 2, "top-level directories are self-contained")
		} else if crossRatio >= 0.5 {
			note(models.ArchMonolithic, 1, "heavy cross-directory coupling")
		}
	}

	// Monolithic: one build unit, few top-level source clusters.
	if len(ev.topDirs) <= 2 && ev.totalFiles >= 5 {
		note(models.ArchMonolithic, 1, "single source tree")
	}
	if ev.serviceDirs == 0 {
		for _, marker := range []string{"go.mod", "requirements.txt", "package.json", "pom.xml", "cargo.toml"} {
			if ev.rootFiles[marker] {
				note(models.ArchMonolithic, 1, "single build manifest at root ("+marker+")")
				break
			}
		}
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total == 0 {
		return models.ArchitectureClassification{Label: models.ArchUnknown}
	}

	winner := models.ArchUnknown
	best := 0.0
	for _, label := range models.ArchPrecedence {
		if s := scores[label]; s > best {
			winner = label
			best = s
		}
	}

	return models.ArchitectureClassification{
		Label:      winner,
		Confidence: best / total,
		Signals:    signals,
	}
}

func gatherEvidence(files []models.SourceFile, edges []models.DependencyEdge) archEvidence {
	ev := archEvidence{
		totalFiles: len(files),
		dirNames:   map[string]bool{},
		rootFiles:  map[string]bool{},
		topDirs:    map[string]*roaring.Bitmap{},
	}

	fileIndex := make(map[string]uint32, len(files))
	fileTopDir := make(map[string]string, len(files))
	for i, f := range files {
		idx := uint32(i)
		fileIndex[f.Path] = idx

		dir := filepath.ToSlash(filepath.Dir(f.Path))
		if dir == "." {
			ev.rootFiles[strings.ToLower(filepath.Base(f.Path))] = true
			fileTopDir[f.Path] = ""
			continue
		}

		segments := strings.Split(dir, "/")
		if len(segments) > ev.maxDepth {
			ev.maxDepth = len(segments)
		}
		for _, seg := range segments {
			ev.dirNames[strings.ToLower(seg)] = true
		}

		top := segments[0]
		fileTopDir[f.Path] = top
		bm := ev.topDirs[top]
		if bm == nil {
			bm = roaring.New()
			ev.topDirs[top] = bm
		}
		bm.Add(idx)
	}

	ev.serviceDirs = countServiceDirs(files)

	// Index top-level directories so per-target referrer sets can be held as
	// bitmaps; the distinct-directory count is then just cardinality.
	topIndex := map[string]uint32{}
	for _, top := range sortedKeys(ev.topDirs) {
		topIndex[top] = uint32(len(topIndex))
	}

	targetRefs := map[string]*roaring.Bitmap{}
	for _, e := range edges {
		if e.Kind != models.DependencyInternal {
			continue
		}
		ev.internalEdges++

		srcTop := fileTopDir[e.Source]
		dstTop := ""
		if e.ResolvedPath != "" {
			dstTop = topDirOf(e.ResolvedPath)
		}
		if srcTop != dstTop {
			ev.crossDirEdges++
		}

		if idx, ok := topIndex[srcTop]; ok {
			bm := targetRefs[e.ResolvedPath]
			if bm == nil {
				bm = roaring.New()
				targetRefs[e.ResolvedPath] = bm
			}
			bm.Add(idx)
		}
	}
	for _, bm := range targetRefs {
		if bm.GetCardinality() >= 3 {
			ev.sharedTargets++
		}
	}

	return ev
}

// countServiceDirs counts top-level directories that carry their own build
// manifest or container file.
func countServiceDirs(files []models.SourceFile) int {
	marked := map[string]bool{}
	for _, f := range files {
		rel := filepath.ToSlash(f.Path)
		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			continue
		}
		top := rel[:slash]
		base := strings.ToLower(filepath.Base(rel))
		for _, m := range serviceMarkers {
			if base == m {
				marked[top] = true
				break
			}
		}
	}
	return len(marked)
}

func topDirOf(rel string) string {
	rel = filepath.ToSlash(rel)
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		return rel[:i]
	}
	return ""
}

func sortedKeys(m map[string]*roaring.Bitmap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
