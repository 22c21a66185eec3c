package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/spendwise/internal/model"
	"github.com/theirongolddev/spendwise/internal/source"
	"github.com/theirongolddev/spendwise/internal/store"
)

// ImportStore is the persistence the import pipeline writes through.
type ImportStore interface {
	TrackedFiles(ctx context.Context, userID string) (map[string]store.FileInfo, error)
	ReplaceImported(ctx context.Context, userID, path string, fi store.FileInfo, expenses []model.Expense) error
}

// ImportResult holds the output of a statement import run.
type ImportResult struct {
	TotalFiles  int
	Unchanged   int // skipped: mtime and size match the tracker
	ParsedFiles int
	FileErrors  int
	ParseErrors int
	Imported    int
}

// ProgressFunc is called during import to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Import discovers statement CSVs under path, parses the ones that changed
// since the last import with a bounded worker pool, and stores their rows
// for userID. A changed file replaces the rows from its previous import.
func Import(ctx context.Context, path, userID string, st ImportStore, progressFn ProgressFunc) (*ImportResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	files, err := source.ScanDir(abs)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := st.TrackedFiles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading import tracker: %w", err)
	}

	// Diff: partition into changed and unchanged
	var toParse []source.DiscoveredFile
	for _, f := range files {
		prev, ok := tracked[f.Path]
		if ok && prev.MtimeNs == f.MtimeNs && prev.SizeBytes == f.Size {
			result.Unchanged++
			continue
		}
		toParse = append(toParse, f)
	}

	if progressFn != nil && result.Unchanged > 0 {
		progressFn(result.Unchanged, result.TotalFiles)
	}
	if len(toParse) == 0 {
		return result, nil
	}

	results := parseAll(ctx, toParse, func(n int) {
		if progressFn != nil {
			progressFn(n+result.Unchanged, result.TotalFiles)
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Store sequentially; SQLite serialises writers anyway.
	for i, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors

		f := toParse[i]
		fi := store.FileInfo{MtimeNs: f.MtimeNs, SizeBytes: f.Size}
		if err := st.ReplaceImported(ctx, userID, f.Path, fi, pr.Expenses); err != nil {
			return result, fmt.Errorf("importing %s: %w", f.Name, err)
		}
		result.Imported += len(pr.Expenses)
	}

	return result, nil
}

// parseAll parses files in parallel, preserving input order in the result.
func parseAll(ctx context.Context, files []source.DiscoveredFile, progress func(n int)) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	// Feed work
	for i := range files {
		work <- i
	}
	close(work)

	// Spawn workers
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					results[idx] = source.ParseResult{Err: ctx.Err()}
					continue
				}
				results[idx] = source.ParseFile(files[idx])
				progress(int(processed.Add(1)))
			}
		}()
	}

	wg.Wait()
	return results
}
