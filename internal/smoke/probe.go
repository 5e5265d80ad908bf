package smoke

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/gochamp/pkg/logger"
)

// workerChannelMultiplier sizes the job channel relative to the pool.
const workerChannelMultiplier = 2

// runProbes issues config.Probes listing calls through a worker pool. The
// calls overlap on purpose: the client must send every one of them.
func runProbes(ctx context.Context, log logger.Logger, client Client, config Config, stats *Stats) error {
	log.Info(ctx, "running listing probes",
		logger.Int("probes", config.Probes),
		logger.Int("workers", config.Workers))

	var succeeded, failed int64
	jobs := make(chan int, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for probe := range jobs {
				if _, err := client.ListAthletes(ctx); err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "probe failed",
							logger.Int("worker", workerID),
							logger.Int("probe", probe),
							logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&succeeded, 1)
			}
		}(i)
	}

	sent := 0
	func() {
		defer close(jobs)
		for i := 0; i < config.Probes; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
				sent++
			}
		}
	}()
	wg.Wait()

	stats.ProbesSent = sent
	stats.ProbesSucceeded = int(atomic.LoadInt64(&succeeded))
	stats.ProbesFailed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "listing probes completed",
		logger.Int("sent", stats.ProbesSent),
		logger.Int("succeeded", stats.ProbesSucceeded),
		logger.Int("failed", stats.ProbesFailed))

	if stats.ProbesFailed > 0 || sent < config.Probes {
		return fmt.Errorf("%w: %d of %d failed, %d not sent", ErrProbes, stats.ProbesFailed, config.Probes, config.Probes-sent)
	}
	return nil
}
