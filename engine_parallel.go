package nameplate

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jward/nameplate/internal/extract"
	"github.com/jward/nameplate/internal/store"
)

// workItem holds everything an extraction worker needs.
type workItem struct {
	path    string
	fileID  int64
	content []byte
	batch   *store.BatchedStore
}

// indexFilesParallel indexes files using a three-phase pipeline:
//
//	Phase A (serial):   Hash check, delete old data, prepare file records.
//	Phase B (parallel): Parse and extract into a BatchedStore per file.
//	Phase C (serial):   Commit batches to SQLite.
func (e *Engine) indexFilesParallel(ctx context.Context, assembly string, paths []string) (IndexStats, error) {
	var (
		stats IndexStats
		errs  []error
	)

	// ---- Phase A: Serial file preparation ----
	var items []workItem
	for _, path := range paths {
		item, skip, err := e.prepareFile(assembly, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("prepare %s: %w", path, err))
			continue
		}
		if skip {
			if extract.IsSourceFile(path) {
				stats.Unchanged++
			}
			continue
		}
		item.batch = store.NewBatchedStore(e.store)
		items = append(items, item)
	}

	if len(items) > 0 {
		errs = append(errs, e.extractAll(ctx, items, &stats)...)
	}

	if len(errs) > 0 {
		return stats, fmt.Errorf("parallel indexing had %d error(s): %w", len(errs), errs[0])
	}
	return stats, nil
}

func (e *Engine) extractAll(ctx context.Context, items []workItem, stats *IndexStats) []error {
	// ---- Phase B: Parallel extraction ----
	numWorkers := max(min(runtime.NumCPU(), len(items)), 1)

	workCh := make(chan workItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	type result struct {
		item  workItem
		stats extract.Stats
		err   error
	}
	resultCh := make(chan result, len(items))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each item writes only to its own BatchedStore; the parser is
			// created per file inside ExtractFile.
			for item := range workCh {
				x, err := extract.New(item.batch, e.log).ExtractFile(ctx, item.fileID, item.path, item.content)
				resultCh <- result{item: item, stats: x, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase C: Serial commit ----
	var errs []error
	for res := range resultCh {
		if res.err != nil {
			e.discard(res.item)
			errs = append(errs, fmt.Errorf("extract %s: %w", res.item.path, res.err))
			continue
		}
		if err := e.store.CommitBatch(res.item.batch); err != nil {
			e.discard(res.item)
			errs = append(errs, fmt.Errorf("commit %s: %w", res.item.path, err))
			continue
		}
		stats.add(res.stats)
	}
	return errs
}
