package sim

import (
	"context"
	"fmt"
	"sync"
)

// Job is one independent scene run. Build is called on the job's own
// goroutine, so each runner owns its scene and engine outright.
type Job struct {
	Name  string
	Build func() (*Runner, error)
}

// RunBatch runs jobs concurrently with the same config. Results keep the
// order of jobs.
func RunBatch(ctx context.Context, jobs []Job, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			r, err := jobs[idx].Build()
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = r.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", jobs[i].Name, err)
		}
	}

	return results, nil
}
