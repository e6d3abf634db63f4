package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/conexahub/conexa/internal/services"
	"github.com/conexahub/conexa/pkg/logger"
)

const defaultSweepSpec = "@hourly"

// Sweeper expires stale published content on a schedule. Announcements and
// opportunities carry an optional expires_at; once it passes they are
// deactivated rather than deleted so the admin history stays intact.
type Sweeper struct {
	announcements *services.AnnouncementService
	opportunities *services.OpportunityService
	cron          *cron.Cron
	log           *zap.Logger
	spec          string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(sweeper *Sweeper) {
		if c != nil {
			sweeper.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(sweeper *Sweeper) {
		if spec != "" {
			sweeper.spec = spec
		}
	}
}

// NewSweeper constructs a Sweeper. A nil service results in the corresponding
// sweep being skipped.
func NewSweeper(announcements *services.AnnouncementService, opportunities *services.OpportunityService, opts ...Option) *Sweeper {
	sweeper := &Sweeper{
		announcements: announcements,
		opportunities: opportunities,
		spec:          defaultSweepSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper
}

// Start registers the sweep with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if s.announcements == nil && s.opportunities == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("expiry sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes the sweep immediately. Primarily used in tests and during
// graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if s.announcements != nil {
		count, err := s.announcements.DeactivateExpired(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if count > 0 {
			s.log.Info("expired announcements deactivated", zap.Int64("count", count))
		}
	}

	if s.opportunities != nil {
		count, err := s.opportunities.DeactivateExpired(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if count > 0 {
			s.log.Info("expired opportunities deactivated", zap.Int64("count", count))
		}
	}

	return errs
}
