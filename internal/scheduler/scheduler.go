// Package scheduler runs periodic jobs, such as embedding retraining, on
// cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// TaskFunc is the signature of a scheduled job.
type TaskFunc func(ctx context.Context) error

// TaskInfo describes one registered job.
type TaskInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"next_run"`
	PrevRun  time.Time `json:"prev_run,omitempty"`
}

// Scheduler wraps robfig/cron. Schedules use the standard five-field
// format or descriptors such as "@every 6h" and "@daily". A job that is
// still running when its next tick fires is skipped.
type Scheduler struct {
	cron        *cron.Cron
	logger      zerolog.Logger
	taskTimeout time.Duration

	mu        sync.RWMutex
	tasks     map[string]cron.EntryID
	schedules map[string]string
	running   bool
}

func New(logger zerolog.Logger, taskTimeout time.Duration) *Scheduler {
	cronLogger := cron.PrintfLogger(&logger)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if taskTimeout <= 0 {
		taskTimeout = 30 * time.Minute
	}
	return &Scheduler{
		cron:        c,
		logger:      logger,
		taskTimeout: taskTimeout,
		tasks:       make(map[string]cron.EntryID),
		schedules:   make(map[string]string),
	}
}

// Add registers task under name, replacing any previous task of that name.
func (s *Scheduler) Add(name, schedule string, task TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.tasks[name]; ok {
		s.cron.Remove(id)
		delete(s.tasks, name)
		delete(s.schedules, name)
	}

	id, err := s.cron.AddFunc(schedule, func() { s.run(name, task) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for task %s: %w", schedule, name, err)
	}
	s.tasks[name] = id
	s.schedules[name] = schedule

	s.logger.Info().Str("task", name).Str("schedule", schedule).Msg("scheduled task")
	return nil
}

func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.tasks[name]; ok {
		s.cron.Remove(id)
		delete(s.tasks, name)
		delete(s.schedules, name)
		s.logger.Info().Str("task", name).Msg("removed task")
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Int("tasks", len(s.tasks)).Msg("scheduler started")
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info().Msg("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn().Msg("scheduler stop timed out with jobs still running")
	}
	s.running = false
}

func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Tasks lists registered jobs sorted by name.
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[cron.EntryID]cron.Entry)
	for _, e := range s.cron.Entries() {
		byID[e.ID] = e
	}

	out := make([]TaskInfo, 0, len(s.tasks))
	for name, id := range s.tasks {
		e := byID[id]
		out = append(out, TaskInfo{Name: name, Schedule: s.schedules[name], NextRun: e.Next, PrevRun: e.Prev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) run(name string, task TaskFunc) {
	start := time.Now()
	s.logger.Debug().Str("task", name).Msg("running scheduled task")

	ctx, cancel := context.WithTimeout(context.Background(), s.taskTimeout)
	defer cancel()

	if err := task(ctx); err != nil {
		s.logger.Error().Err(err).Str("task", name).Dur("duration", time.Since(start)).Msg("scheduled task failed")
		return
	}
	s.logger.Info().Str("task", name).Dur("duration", time.Since(start)).Msg("scheduled task completed")
}
