package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/worker/queue"
)

const (
	ScopeActivity = "activity"
	ScopeImages   = "images"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) (string, error)
}

// Scheduler pushes periodic maintenance tasks onto the worker stream.
type Scheduler struct {
	cron  *cron.Cron
	queue Enqueuer
	log   zerolog.Logger
}

func NewScheduler(q Enqueuer, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		queue: q,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 3 * * *", func() { s.enqueueCleanup(ScopeActivity) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 30 * * * *", func() { s.enqueueCleanup(ScopeImages) }); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueCleanup(scope string) {
	task, err := queue.NewTask(queue.TaskCleanup, queue.CleanupPayload{Scope: scope})
	if err != nil {
		s.log.Error().Err(err).Msg("build cleanup task failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := s.queue.Enqueue(ctx, task)
	if err != nil {
		s.log.Error().Err(err).Str("scope", scope).Msg("enqueue cleanup failed")
		return
	}
	s.log.Debug().Str("scope", scope).Str("message_id", id).Msg("cleanup enqueued")
}
