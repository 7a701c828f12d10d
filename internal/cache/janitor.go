package cache

import (
	"fmt"

	"rank-tracker/internal/constants"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Janitor periodically evicts expired entries from the in-memory cache.
type Janitor struct {
	scheduler gocron.Scheduler
	cache     *MemoryCache
	logger    zerolog.Logger
}

func NewJanitor(memory *MemoryCache, logger zerolog.Logger) (*Janitor, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	j := &Janitor{scheduler: sched, cache: memory, logger: logger}

	_, err = sched.NewJob(
		gocron.DurationJob(constants.CacheJanitorPeriod),
		gocron.NewTask(j.sweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule cache janitor: %w", err)
	}
	return j, nil
}

func (j *Janitor) sweep() {
	if n := j.cache.Purge(); n > 0 {
		j.logger.Debug().Int("removed", n).Int("remaining", j.cache.Len()).Msg("stats cache purged")
	}
}

func (j *Janitor) Start() {
	j.scheduler.Start()
}

func (j *Janitor) Stop() error {
	return j.scheduler.Shutdown()
}
