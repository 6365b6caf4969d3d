package service

import (
	"context"
	"log"
	"sync"
	"time"

	"collisionos/internal/estimate"
)

const defaultBatchConcurrency = 4

// BatchItem is the outcome of one file in a batch.
type BatchItem struct {
	FileName string                 `json:"file_name"`
	Result   *estimate.ImportResult `json:"result,omitempty"`
	Err      error                  `json:"-"`
	Error    string                 `json:"error,omitempty"`
}

// BatchStats summarises a batch run.
type BatchStats struct {
	Total              int   `json:"total"`
	Succeeded          int   `json:"succeeded"`
	Failed             int   `json:"failed"`
	AutoCreated        int   `json:"auto_created"`
	ManualIntervention int   `json:"manual_intervention"`
	DurationMs         int64 `json:"duration_ms"`
}

// BatchResult holds per-file items in input order plus stats.
type BatchResult struct {
	Items []BatchItem `json:"items"`
	Stats BatchStats  `json:"stats"`
}

func (s *importService) ProcessBatch(ctx context.Context, inputs []ProcessFileInput, concurrency int) *BatchResult {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	start := time.Now()
	items := make([]BatchItem, len(inputs))

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	log.Printf("importService.ProcessBatch: processing %d files (concurrency=%d)", len(inputs), concurrency)

	for i := range inputs {
		input := inputs[i] // copy for goroutine
		items[i].FileName = input.FileName
		if items[i].FileName == "" {
			items[i].FileName = input.StorageKey
		}

		select {
		case <-ctx.Done():
			items[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}: // acquire
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // release

			res, err := s.ProcessFile(ctx, &input)
			items[i].Result = res
			items[i].Err = err
		}(i)
	}
	wg.Wait()

	out := &BatchResult{Items: items}
	out.Stats.Total = len(items)
	for i := range items {
		if items[i].Err != nil {
			items[i].Error = items[i].Err.Error()
			out.Stats.Failed++
			continue
		}
		out.Stats.Succeeded++
		if items[i].Result.AutoCreationSuccess {
			out.Stats.AutoCreated++
		}
		if items[i].Result.RequiresManualIntervention {
			out.Stats.ManualIntervention++
		}
	}
	out.Stats.DurationMs = time.Since(start).Milliseconds()

	log.Printf("importService.ProcessBatch: done (ok=%d, failed=%d, manual=%d)",
		out.Stats.Succeeded, out.Stats.Failed, out.Stats.ManualIntervention)
	return out
}
