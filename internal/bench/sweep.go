package bench

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// SweepResult holds the aggregate of all documents at one segment size.
type SweepResult struct {
	Size int
	// Consistency compares the split run with the whole-document run.
	Consistency Metrics
	// Accuracy compares the split run with the document markers.
	Accuracy  Metrics
	Sentences int
	Anomalies int
	Bytes     int
	Elapsed   time.Duration
}

// Throughput returns processed megabytes per second.
func (r SweepResult) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Bytes) / (1 << 20) / r.Elapsed.Seconds()
}

// SweepSizes returns segment sizes from lo to hi, doubling each step.
func SweepSizes(lo, hi int) []int {
	var sizes []int
	for s := max(lo, 1); s <= hi; s *= 2 {
		sizes = append(sizes, s)
	}
	return sizes
}

// Sweep runs every document whole and at each segment size. Documents are
// spread over the pool's runners. Results come back in ascending size order;
// size 0 is the whole-document baseline.
func Sweep(ctx context.Context, pool *Pool, docs []*Document, sizes []int, cfg Config) ([]SweepResult, error) {
	sizes = slices.Clone(sizes)
	slices.Sort(sizes)
	sizes = slices.Compact(slices.DeleteFunc(sizes, func(s int) bool { return s <= 0 }))
	sizes = append([]int{0}, sizes...)

	// one row per document, one column per size
	runs := make([][]Result, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(pool.Size())
	for i, doc := range docs {
		g.Go(func() error {
			r, err := pool.Acquire(ctx)
			if err != nil {
				return err
			}
			defer pool.Release(r)

			row := make([]Result, len(sizes))
			for j, size := range sizes {
				if row[j], err = r.Run(ctx, doc, size); err != nil {
					return err
				}
			}
			runs[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	exact := Config{PrecisionWeight: cfg.PrecisionWeight, RecallWeight: cfg.RecallWeight}
	results := make([]SweepResult, len(sizes))
	for j, size := range sizes {
		consistency := make([]Metrics, len(docs))
		accuracy := make([]Metrics, len(docs))
		res := SweepResult{Size: size}
		for i, doc := range docs {
			run := runs[i][j]
			consistency[i] = Evaluate(run.Boundaries, runs[i][0].Boundaries, exact)
			accuracy[i] = Evaluate(run.Boundaries, doc.Truth(), cfg)
			res.Sentences += run.Sentences
			res.Anomalies += run.Anomalies
			res.Bytes += run.Bytes
			res.Elapsed += run.Elapsed
		}
		res.Consistency = Aggregate(consistency, exact)
		res.Accuracy = Aggregate(accuracy, cfg)
		results[j] = res
	}
	return results, nil
}
