// Package fileproc provides the bounded worker pool that drives per-file
// analysis. Workers consume the walker's channel directly, so discovery and
// processing overlap instead of running as two passes.
package fileproc

import (
	"context"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/omniforge/omniforge/pkg/models"
	"github.com/omniforge/omniforge/pkg/parser"
)

// DefaultWorkerMultiplier is applied to NumCPU when no worker count is
// configured. 2x works well for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called once per file after it has been handled, whether
// it succeeded or not.
type ProgressFunc func(file models.SourceFile)

// ErrorFunc is called when a file fails processing. If nil, failures are
// still counted by the progress callback but otherwise dropped.
type ErrorFunc func(file models.SourceFile, err error)

// Workers normalizes a configured worker count.
func Workers(configured int) int {
	if configured >= 1 {
		return configured
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// ForEachSource runs fn for every file on the channel using maxWorkers
// goroutines, each with a dedicated parser. Per-file work is independent:
// no state is shared between invocations of fn, and results are appended
// under a mutex whose hold time is O(1) regardless of file size.
//
// Cancelling ctx stops workers from pulling new files; in-flight files are
// allowed to finish. Results arrive in arbitrary order.
func ForEachSource[T any](
	ctx context.Context,
	files <-chan models.SourceFile,
	maxWorkers int,
	fn func(psr *parser.Parser, file models.SourceFile) (T, error),
	onProgress ProgressFunc,
	onError ErrorFunc,
) []T {
	maxWorkers = Workers(maxWorkers)

	var mu sync.Mutex
	var results []T

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		p.Go(func() {
			psr := parser.New()
			defer psr.Close()

			for {
				select {
				case <-ctx.Done():
					return
				case file, ok := <-files:
					if !ok {
						return
					}
					result, err := fn(psr, file)
					if err != nil {
						if onError != nil {
							onError(file, err)
						}
						if onProgress != nil {
							onProgress(file)
						}
						continue
					}
					if onProgress != nil {
						onProgress(file)
					}
					mu.Lock()
					results = append(results, result)
					mu.Unlock()
				}
			}
		})
	}
	p.Wait()

	return results
}
