package pool

import (
	"context"
	"sync"
)

// Result holds the outcome of one item. Err is set when the worker failed;
// failures never abort the batch.
type Result[I, O any] struct {
	Item  I
	Value O
	Err   error
}

// RunAllSettled runs fn over items with at most workers goroutines and
// returns one Result per item, in input order. A canceled context stops
// dispatching new items; in-flight workers observe ctx themselves.
func RunAllSettled[I, O any](ctx context.Context, items []I, workers int, fn func(context.Context, I) (O, error)) []Result[I, O] {
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]Result[I, O], len(items))
	idxCh := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				v, err := fn(ctx, items[i])
				results[i] = Result[I, O]{Item: items[i], Value: v, Err: err}
			}
		}()
	}

	for i := range items {
		select {
		case <-ctx.Done():
			for j := i; j < len(items); j++ {
				results[j] = Result[I, O]{Item: items[j], Err: ctx.Err()}
			}
			close(idxCh)
			wg.Wait()
			return results
		case idxCh <- i:
		}
	}
	close(idxCh)
	wg.Wait()
	return results
}

// Batches splits items into chunks of at most size.
func Batches[I any](items []I, size int) [][]I {
	if size < 1 {
		size = 1
	}
	var out [][]I
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
