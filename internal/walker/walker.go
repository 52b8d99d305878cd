// Package walker discovers source files under a repository root. Discovery
// is streaming: files are emitted on a channel while workers consume them,
// so peak memory stays bounded on very large trees. Ignored directories are
// pruned before descent, never merely filtered afterwards.
package walker

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/omniforge/omniforge/pkg/config"
	"github.com/omniforge/omniforge/pkg/lang"
	"github.com/omniforge/omniforge/pkg/models"
)

// Root validation errors. Per-entry failures are never returned; they are
// recorded as issues on the stream instead.
var (
	ErrPathNotFound     = errors.New("path not found")
	ErrPathNotDirectory = errors.New("path is not a directory")
)

// Walker discovers candidate files under a root, applying the configured
// ignore policy.
type Walker struct {
	cfg      *config.Config
	matchers []gitignore.Matcher
	pruned   map[string]bool
}

// New creates a walker with the given configuration.
func New(cfg *config.Config) *Walker {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	pruned := make(map[string]bool, len(cfg.Exclude.Dirs))
	for _, d := range cfg.Exclude.Dirs {
		pruned[d] = true
	}
	return &Walker{cfg: cfg, pruned: pruned}
}

// Stream is one in-progress traversal. Files is closed when the walk ends;
// Issues and Err are valid only after that.
type Stream struct {
	Files <-chan models.SourceFile

	mu     sync.Mutex
	issues []models.Issue
	err    error
}

// Issues returns per-entry problems (permission denied, unreadable entries)
// encountered during the walk.
func (s *Stream) Issues() []models.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issues
}

// Err returns the terminal walk error, if any.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) addIssue(path, reason string) {
	s.mu.Lock()
	s.issues = append(s.issues, models.Issue{Path: path, Reason: reason})
	s.mu.Unlock()
}

// Validate checks that root exists and is a directory, without walking it.
func Validate(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotFound
		}
		return err
	}
	if !info.IsDir() {
		return ErrPathNotDirectory
	}
	return nil
}

// Walk validates root and starts a background traversal. Every non-ignored
// regular file is emitted exactly once, including files with an unknown
// language tag; callers relying on total counts depend on that. Cancelling
// ctx stops the walk early.
func (w *Walker) Walk(ctx context.Context, root string) (*Stream, error) {
	if err := Validate(root); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	matchers := w.loadIgnoreMatchers(absRoot)

	out := make(chan models.SourceFile, 64)
	stream := &Stream{Files: out}

	go func() {
		defer close(out)

		walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				// Per-entry failures (typically permission) are recorded
				// and skipped, not fatal to the walk.
				rel := relOrSelf(absRoot, path)
				stream.addIssue(rel, err.Error())
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			rel := relOrSelf(absRoot, path)
			if d.IsDir() {
				if path != absRoot && w.isIgnoredDir(rel, d.Name(), matchers) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if isIgnored(rel, false, matchers) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				stream.addIssue(rel, err.Error())
				return nil
			}

			sf := models.SourceFile{
				Path:     rel,
				AbsPath:  path,
				Language: lang.Detect(path),
				Size:     info.Size(),
			}

			select {
			case out <- sf:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		stream.mu.Lock()
		if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
			stream.err = walkErr
		}
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			stream.err = walkErr
		}
		stream.mu.Unlock()
	}()

	return stream, nil
}

// isIgnoredDir checks both the hard-coded prune set and pattern matchers.
func (w *Walker) isIgnoredDir(rel, name string, matchers []gitignore.Matcher) bool {
	if w.pruned[name] {
		return true
	}
	return isIgnored(rel, true, matchers)
}

func isIgnored(rel string, isDir bool, matchers []gitignore.Matcher) bool {
	if len(matchers) == 0 {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	for _, m := range matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// loadIgnoreMatchers combines config exclude patterns with the repository's
// .gitignore files when enabled.
func (w *Walker) loadIgnoreMatchers(root string) []gitignore.Matcher {
	var patterns []gitignore.Pattern
	for _, p := range w.cfg.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	if w.cfg.Exclude.Gitignore {
		fsys := osfs.New(root)
		if gitPatterns, err := gitignore.ReadPatterns(fsys, nil); err == nil {
			patterns = append(patterns, gitPatterns...)
		}
	}

	if len(patterns) == 0 {
		return nil
	}
	return []gitignore.Matcher{gitignore.NewMatcher(patterns)}
}

func relOrSelf(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
