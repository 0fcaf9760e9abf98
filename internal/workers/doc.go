/*
Package workers sizes and runs bounded worker pools.

Worker counts are derived from GOMAXPROCS rather than runtime.NumCPU, so a
container limited to two CPUs on a large host gets two workers, not one per
host core:

	n := workers.ForCPU(8)  // 1 per CPU, at most 8
	n := workers.ForIO(16)  // 2 per CPU, at most 16
	n := workers.Count(3, 0) // 3 per CPU, unbounded

The PORTAL_THUMBNAIL_WORKERS environment variable overrides the computed
count (still capped by the limit).

Run feeds a slice of jobs to n goroutines and reports how many succeeded:

	stats := workers.Run(ctx, workers.ForCPU(4), refs, func(ctx context.Context, ref string) error {
		_, err := thumbs.Generate(ctx, ref, 480)
		return err
	})

Cancelling ctx stops handing out new jobs; jobs already running finish.
*/
package workers
