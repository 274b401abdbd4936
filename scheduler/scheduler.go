package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyJobName  = errors.New("job name is required")
	ErrEmptyCronExpr = errors.New("cron expression is required")
)

// statusJobTimeout bounds one run of the tournament status job.
const statusJobTimeout = time.Minute

// Service wraps a gocron scheduler.
type Service struct {
	scheduler gocron.Scheduler
	stopOnce  sync.Once
	stopErr   error
}

// New creates a scheduler. Extra options (gocron.WithClock in tests) are
// appended to the defaults.
func New(opts ...gocron.SchedulerOption) (*Service, error) {
	opts = append([]gocron.SchedulerOption{
		gocron.WithLocation(time.UTC),
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error().
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Interface("panic", recoverData).
						Msg("Scheduler job panicked")
				}),
			),
		),
	}, opts...)

	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}
	return &Service{scheduler: sched}, nil
}

// Start begins running scheduled jobs.
func (s *Service) Start() {
	log.Info().Int("jobs", len(s.scheduler.Jobs())).Msg("Scheduler starting")
	s.scheduler.Start()
}

// Stop shuts down the scheduler and waits for running jobs. Safe to call twice.
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		log.Info().Msg("Scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob registers a cron-based job with the scheduler.
func (s *Service) AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}
	jobLogger := log.With().Str("job_name", name).Str("cron", cronExpr).Logger()

	wrappedTask := func() {
		jobLogger.Debug().Msg("Scheduler job started")
		task()
		jobLogger.Debug().Msg("Scheduler job completed")
	}

	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(wrappedTask),
		gocron.WithName(name),
	)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Failed to register scheduler job")
		return nil, err
	}
	jobLogger.Info().Msg("Scheduler job registered")
	return job, nil
}

// StatusUpdater moves tournaments to the status their dates call for.
type StatusUpdater interface {
	UpdateStatuses(ctx context.Context) (int, error)
}

// AddTournamentStatusJob schedules u.UpdateStatuses on cronExpr. ctx is the
// parent of every run, so cancelling it aborts an in-flight update.
func (s *Service) AddTournamentStatusJob(ctx context.Context, cronExpr string, u StatusUpdater) (gocron.Job, error) {
	const name = "tournament-status"
	return s.AddJob(name, cronExpr, func() {
		runCtx, cancel := context.WithTimeout(ctx, statusJobTimeout)
		defer cancel()

		l := log.With().Str("job_name", name).Logger()
		runCtx = l.WithContext(runCtx)

		n, err := u.UpdateStatuses(runCtx)
		if err != nil {
			l.Error().Err(err).Msg("tournament status update failed")
			return
		}
		if n > 0 {
			l.Info().Int("updated", n).Msg("tournament statuses updated")
		}
	})
}
