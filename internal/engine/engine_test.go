package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniforge/omniforge/internal/testutil"
	"github.com/omniforge/omniforge/pkg/config"
	"github.com/omniforge/omniforge/pkg/models"
)

const branchySource = `def handle(items):
    for item in items:
        if item:
            print(item)
        else:
            print("none")
`

const leakySource = `import os

def connect():
    host = "db.internal"
    password = "hunter22"
    return host
`

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	eng, err := New(cfg)
	require.NoError(t, err)
	return eng
}

func smallRepo(t *testing.T) string {
	t.Helper()
	root := testutil.TempDir(t)
	testutil.CreateFileTree(t, root, map[string]string{
		"branchy.py": branchySource,
		"config.py":  leakySource,
		"main.go":    "package main\n\nfunc main() {}\n",
	})
	return root
}

func waitTerminal(t *testing.T, eng *Engine, id string) models.Job {
	t.Helper()
	require.Eventually(t, func() bool {
		job, err := eng.Poll(id)
		return err == nil && job.State.Terminal()
	}, 15*time.Second, 10*time.Millisecond)

	job, err := eng.Poll(id)
	require.NoError(t, err)
	return job
}

func TestRunSynchronous(t *testing.T) {
	root := smallRepo(t)
	eng := newTestEngine(t, nil)

	rep, err := eng.RunSynchronous(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Equal(t, 3, rep.Stats.TotalFiles)
	assert.True(t, rep.Success)
	assert.NotEmpty(t, rep.CatalogVersion)

	require.Len(t, rep.Findings, 1)
	assert.Equal(t, "config.py", rep.Findings[0].File)
	assert.Equal(t, 5, rep.Findings[0].Line)
	assert.Equal(t, models.SeverityCritical, rep.Findings[0].Severity)

	var branchy *models.FileMetrics
	for i := range rep.Files {
		if rep.Files[i].Path == "branchy.py" {
			branchy = &rep.Files[i]
		}
	}
	require.NotNil(t, branchy)
	assert.Equal(t, 3, branchy.Cyclomatic)
}

func TestRunSynchronousInvalidRoot(t *testing.T) {
	eng := newTestEngine(t, nil)
	_, err := eng.RunSynchronous(context.Background(), "/nonexistent/repo")
	assert.ErrorIs(t, err, ErrRepositoryInvalid)
}

func TestRunSynchronousCancelled(t *testing.T) {
	root := smallRepo(t)
	eng := newTestEngine(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.RunSynchronous(ctx, root)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestRunSynchronousTimeout(t *testing.T) {
	root := smallRepo(t)
	eng := newTestEngine(t, nil)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := eng.RunSynchronous(ctx, root)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRunSynchronousBinaryFileBecomesIssue(t *testing.T) {
	root := smallRepo(t)
	testutil.WriteFile(t, root+"/blob.bin", "\x00\x01\x02binary")

	eng := newTestEngine(t, nil)
	rep, err := eng.RunSynchronous(context.Background(), root)
	require.NoError(t, err)

	// The unreadable file still counts toward the total but contributes no
	// metrics.
	assert.Equal(t, 4, rep.Stats.TotalFiles)
	assert.Equal(t, 1, rep.Stats.IssuesCount)
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, "blob.bin", rep.Issues[0].Path)
	assert.True(t, rep.Success)

	unavailable := 0
	for _, f := range rep.Files {
		if f.Unavailable {
			unavailable++
		}
	}
	assert.Equal(t, 1, unavailable)
}

func TestRunSynchronousUnreadableFileBecomesIssue(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	root := testutil.TempDir(t)
	tree := map[string]string{"locked.py": branchySource}
	for i := 0; i < 9; i++ {
		tree[fmt.Sprintf("mod%d.py", i)] = branchySource
	}
	testutil.CreateFileTree(t, root, tree)
	require.NoError(t, os.Chmod(filepath.Join(root, "locked.py"), 0o000))
	t.Cleanup(func() { os.Chmod(filepath.Join(root, "locked.py"), 0o644) })

	eng := newTestEngine(t, nil)
	rep, err := eng.RunSynchronous(context.Background(), root)
	require.NoError(t, err)

	// The file the worker could not read still counts toward the total; the
	// other nine contribute metrics.
	assert.Equal(t, 10, rep.Stats.TotalFiles)
	assert.Equal(t, 1, rep.Stats.IssuesCount)
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, "locked.py", rep.Issues[0].Path)
	assert.True(t, rep.Success)

	require.Len(t, rep.Files, 9)
	for _, f := range rep.Files {
		assert.False(t, f.Unavailable)
		assert.NotEqual(t, "locked.py", f.Path)
	}
}

func TestSubmitPollLifecycle(t *testing.T) {
	root := smallRepo(t)
	eng := newTestEngine(t, nil)

	id, err := eng.Submit(root)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	job := waitTerminal(t, eng, id)
	assert.Equal(t, models.JobCompleted, job.State)
	assert.Equal(t, 100, job.Progress)
	assert.Empty(t, job.Error)
	require.NotNil(t, job.Result)
	assert.Equal(t, 3, job.Result.Stats.TotalFiles)
	require.NotNil(t, job.FinishedAt)
	assert.False(t, job.FinishedAt.Before(job.SubmittedAt))
}

func TestSubmitInvalidRootCreatesNoJob(t *testing.T) {
	eng := newTestEngine(t, nil)
	id, err := eng.Submit("/nonexistent/repo")
	assert.ErrorIs(t, err, ErrRepositoryInvalid)
	assert.Empty(t, id)
}

func TestPollUnknownJob(t *testing.T) {
	eng := newTestEngine(t, nil)
	_, err := eng.Poll("no-such-job")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestCancelUnknownJob(t *testing.T) {
	eng := newTestEngine(t, nil)
	assert.ErrorIs(t, eng.Cancel("no-such-job"), ErrJobNotFound)
}

func TestCancelRunningJob(t *testing.T) {
	root := testutil.TempDir(t)
	tree := map[string]string{}
	for i := 0; i < 400; i++ {
		tree[fmt.Sprintf("mod%03d.py", i)] = branchySource
	}
	testutil.CreateFileTree(t, root, tree)

	cfg := config.DefaultConfig()
	cfg.Analysis.Workers = 1
	eng := newTestEngine(t, cfg)

	id, err := eng.Submit(root)
	require.NoError(t, err)
	require.NoError(t, eng.Cancel(id))

	job := waitTerminal(t, eng, id)
	assert.Equal(t, models.JobFailed, job.State)
	assert.Contains(t, job.Error, "cancelled")
	assert.Nil(t, job.Result)
}

func TestJobEviction(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Jobs.Retention = 1
	eng := newTestEngine(t, cfg)

	root := smallRepo(t)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := eng.Submit(root)
		require.NoError(t, err)
		waitTerminal(t, eng, id)
		ids = append(ids, id)
	}

	// Only the newest terminal job survives.
	_, err := eng.Poll(ids[0])
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = eng.Poll(ids[1])
	assert.ErrorIs(t, err, ErrJobNotFound)

	job, err := eng.Poll(ids[2])
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, job.State)
}

func TestPollSnapshotIsolation(t *testing.T) {
	root := smallRepo(t)
	eng := newTestEngine(t, nil)

	id, err := eng.Submit(root)
	require.NoError(t, err)
	job := waitTerminal(t, eng, id)

	// Mutating a snapshot must not leak back into the engine.
	*job.FinishedAt = time.Time{}
	again, err := eng.Poll(id)
	require.NoError(t, err)
	assert.False(t, again.FinishedAt.IsZero())
}
