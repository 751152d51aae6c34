// Package batch splits ordered text items into calls bounded by an item count and a
// character budget, dispatches them one at a time and reassembles the results in
// input order.
package batch

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"
)

// Limits bounds a single remote call.
type Limits struct {
	MaxChars     int
	MaxBatchSize int
}

// Validate rejects limits below 1.
func (l Limits) Validate() error {
	if l.MaxChars < 1 {
		return &ConfigurationError{Field: "max_chars", Value: l.MaxChars}
	}
	if l.MaxBatchSize < 1 {
		return &ConfigurationError{Field: "max_batch_size", Value: l.MaxBatchSize}
	}
	return nil
}

// Batch is one planned call. Offset is the input position of Items[0].
type Batch struct {
	Index  int
	Offset int
	Items  []string
	Chars  int
}

// CallFunc performs one remote call. It must return exactly len(items) results in the same order.
type CallFunc func(ctx context.Context, index int, items []string) ([]string, error)

// Report describes a batch whose results were merged.
type Report struct {
	Index   int
	Offset  int
	Size    int
	Chars   int
	Elapsed time.Duration
}

// CharCount is the length used against MaxChars: Unicode code points, not bytes.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// Plan partitions items without calling anything. An item longer than MaxChars is
// placed alone in its own batch.
func Plan(items []string, limits Limits) ([]Batch, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	var batches []Batch
	start := 0
	chars := 0
	seal := func(end int) {
		batches = append(batches, Batch{
			Index:  len(batches),
			Offset: start,
			Items:  items[start:end:end],
			Chars:  chars,
		})
	}

	for i, item := range items {
		n := CharCount(item)
		pending := i - start
		if pending > 0 && (chars+n > limits.MaxChars || pending >= limits.MaxBatchSize) {
			seal(i)
			start = i
			chars = 0
		}
		chars += n
	}
	seal(len(items))

	return batches, nil
}

// Submit dispatches the planned batches sequentially and returns one result per item.
// The first failing batch stops the run with a *RemoteCallError; nothing from that
// batch onwards is merged and no partial output is returned.
func Submit(ctx context.Context, items []string, limits Limits, call CallFunc) ([]string, error) {
	return SubmitWithObserver(ctx, items, limits, call, nil)
}

// SubmitWithObserver is Submit with a hook invoked after each batch is merged.
func SubmitWithObserver(
	ctx context.Context,
	items []string,
	limits Limits,
	call CallFunc,
	observe func(Report),
) ([]string, error) {
	if call == nil {
		return nil, fmt.Errorf("batch call func is nil")
	}
	batches, err := Plan(items, limits)
	if err != nil {
		return nil, err
	}

	results := make([]string, 0, len(items))
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return nil, &RemoteCallError{BatchIndex: b.Index, Translated: len(results), Err: err}
		}

		started := time.Now()
		out, err := call(ctx, b.Index, b.Items)
		if err != nil {
			return nil, &RemoteCallError{BatchIndex: b.Index, Translated: len(results), Err: err}
		}
		if len(out) != len(b.Items) {
			return nil, &RemoteCallError{
				BatchIndex: b.Index,
				Translated: len(results),
				Err:        fmt.Errorf("%w: sent %d, got %d", ErrResultCountMismatch, len(b.Items), len(out)),
			}
		}
		results = append(results, out...)

		if observe != nil {
			observe(Report{
				Index:   b.Index,
				Offset:  b.Offset,
				Size:    len(b.Items),
				Chars:   b.Chars,
				Elapsed: time.Since(started),
			})
		}
	}

	return results, nil
}
