package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniforge/omniforge/internal/testutil"
	"github.com/omniforge/omniforge/pkg/config"
	"github.com/omniforge/omniforge/pkg/lang"
	"github.com/omniforge/omniforge/pkg/models"
)

func collect(t *testing.T, s *Stream) []models.SourceFile {
	t.Helper()
	var files []models.SourceFile
	for f := range s.Files {
		files = append(files, f)
	}
	require.NoError(t, s.Err())
	return files
}

func paths(files []models.SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.ToSlash(f.Path)
	}
	sort.Strings(out)
	return out
}

func TestValidate(t *testing.T) {
	dir := testutil.TempDir(t)

	require.NoError(t, Validate(dir))

	err := Validate(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrPathNotFound)

	file := filepath.Join(dir, "plain.txt")
	testutil.WriteFile(t, file, "x")
	err = Validate(file)
	assert.ErrorIs(t, err, ErrPathNotDirectory)
}

func TestWalkEmitsAllRegularFiles(t *testing.T) {
	root := testutil.TempDir(t)
	testutil.CreateFileTree(t, root, map[string]string{
		"main.go":        "package main\n",
		"lib/util.py":    "x = 1\n",
		"README.md":      "# readme\n",
		"docs/notes.txt": "notes\n",
	})

	w := New(config.DefaultConfig())
	stream, err := w.Walk(context.Background(), root)
	require.NoError(t, err)

	files := collect(t, stream)
	assert.Equal(t, []string{"README.md", "docs/notes.txt", "lib/util.py", "main.go"}, paths(files))

	byPath := map[string]models.SourceFile{}
	for _, f := range files {
		byPath[filepath.ToSlash(f.Path)] = f
	}
	assert.Equal(t, lang.LangGo, byPath["main.go"].Language)
	assert.Equal(t, lang.LangPython, byPath["lib/util.py"].Language)
	assert.Equal(t, lang.LangUnknown, byPath["README.md"].Language)
	assert.Equal(t, int64(13), byPath["main.go"].Size)
	assert.True(t, filepath.IsAbs(byPath["main.go"].AbsPath))
}

func TestWalkPrunesExcludedDirs(t *testing.T) {
	root := testutil.TempDir(t)
	testutil.CreateFileTree(t, root, map[string]string{
		"main.go":                  "package main\n",
		"node_modules/pkg/x.js":    "module.exports = {}\n",
		"vendor/dep/dep.go":        "package dep\n",
		".git/config":              "[core]\n",
		"nested/node_modules/y.js": "x\n",
	})

	w := New(config.DefaultConfig())
	stream, err := w.Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, paths(collect(t, stream)))
}

func TestWalkAppliesGitignore(t *testing.T) {
	root := testutil.TempDir(t)
	testutil.CreateFileTree(t, root, map[string]string{
		".gitignore": "*.log\nout/\n",
		"main.go":    "package main\n",
		"debug.log":  "log line\n",
		"out/a.go":   "package a\n",
	})

	w := New(config.DefaultConfig())
	stream, err := w.Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{".gitignore", "main.go"}, paths(collect(t, stream)))
}

func TestWalkConfigPatterns(t *testing.T) {
	root := testutil.TempDir(t)
	testutil.CreateFileTree(t, root, map[string]string{
		"app.min.js": "var a=1;\n",
		"app.js":     "var a = 1;\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false

	w := New(cfg)
	stream, err := w.Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"app.js"}, paths(collect(t, stream)))
}

func TestWalkInvalidRoot(t *testing.T) {
	w := New(config.DefaultConfig())
	_, err := w.Walk(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestWalkCancelled(t *testing.T) {
	root := testutil.TempDir(t)
	for i := 0; i < 200; i++ {
		testutil.WriteFile(t, filepath.Join(root, "src", "file"+string(rune('a'+i%26))+".go"), "package src\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(config.DefaultConfig())
	stream, err := w.Walk(ctx, root)
	require.NoError(t, err)

	for range stream.Files {
	}
	assert.True(t, errors.Is(stream.Err(), context.Canceled))
}

func TestWalkUnreadableDirRecordedAsIssue(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	root := testutil.TempDir(t)
	testutil.CreateFileTree(t, root, map[string]string{
		"main.go":       "package main\n",
		"locked/sub.go": "package sub\n",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	w := New(config.DefaultConfig())
	stream, err := w.Walk(context.Background(), root)
	require.NoError(t, err)

	// The unreadable directory is skipped, not fatal: the walk completes,
	// the rest of the tree is emitted, and the failure is surfaced as an
	// issue.
	files := collect(t, stream)
	assert.Equal(t, []string{"main.go"}, paths(files))

	issues := stream.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, "locked", filepath.ToSlash(issues[0].Path))
	assert.NotEmpty(t, issues[0].Reason)
}

func TestWalkDeterministicCount(t *testing.T) {
	root := testutil.TempDir(t)
	testutil.CreateFileTree(t, root, map[string]string{
		"a.go":     "package a\n",
		"b/c.py":   "x = 1\n",
		"b/d.rb":   "y = 2\n",
		"e/f/g.ts": "const z = 3\n",
	})

	w := New(config.DefaultConfig())
	var counts []int
	for i := 0; i < 3; i++ {
		stream, err := w.Walk(context.Background(), root)
		require.NoError(t, err)
		counts = append(counts, len(collect(t, stream)))
	}
	assert.Equal(t, []int{4, 4, 4}, counts)
}
