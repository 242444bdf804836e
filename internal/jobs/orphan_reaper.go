package jobs

import (
	"context"
	"time"

	"companyhub/internal/identity"
	"companyhub/internal/models"
	"companyhub/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// OrphanReaper periodically retries the compensations that failed during a
// provisioning rollback: identities with no AppUser row and tenant rows
// whose owner never materialized. Requests never wait on this; it is the
// out-of-band recovery channel.
type OrphanReaper struct {
	scheduler gocron.Scheduler
	orphans   repositories.OrphanRepository
	tenants   repositories.TenantRepository
	provider  identity.Provider
	log       *zap.Logger
	batchSize int
}

func NewOrphanReaper(
	orphans repositories.OrphanRepository,
	tenants repositories.TenantRepository,
	provider identity.Provider,
	log *zap.Logger,
	interval time.Duration,
	batchSize int,
) (*OrphanReaper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	r := &OrphanReaper{
		scheduler: scheduler,
		orphans:   orphans,
		tenants:   tenants,
		provider:  provider,
		log:       log,
		batchSize: batchSize,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(r.Sweep, context.Background()),
		gocron.WithName("provisioning-orphan-reaper"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Start starts the background scheduler
func (r *OrphanReaper) Start() {
	r.log.Info("starting orphan reaper")
	r.scheduler.Start()
}

// Stop stops the background scheduler
func (r *OrphanReaper) Stop() error {
	r.log.Info("stopping orphan reaper")
	return r.scheduler.Shutdown()
}

// Sweep retries one batch of pending orphans. A successful delete clears
// the record; a failed one bumps the attempt counter and stays queued.
func (r *OrphanReaper) Sweep(ctx context.Context) {
	orphans, err := r.orphans.List(ctx, r.batchSize)
	if err != nil {
		r.log.Error("failed to list orphans", zap.Error(err))
		return
	}

	for _, orphan := range orphans {
		if err := r.reap(ctx, orphan); err != nil {
			r.log.Warn("orphan still unrecoverable",
				zap.String("kind", orphan.Kind),
				zap.String("ref", orphan.Ref.String()),
				zap.Int("attempts", orphan.Attempts+1),
				zap.Error(err))
			if markErr := r.orphans.MarkAttempt(ctx, orphan.ID); markErr != nil {
				r.log.Error("failed to record reap attempt", zap.Error(markErr))
			}
			continue
		}

		if err := r.orphans.Delete(ctx, orphan.ID); err != nil {
			r.log.Error("failed to clear reaped orphan record", zap.Error(err))
			continue
		}
		r.log.Info("orphan reaped",
			zap.String("kind", orphan.Kind),
			zap.String("ref", orphan.Ref.String()))
	}
}

func (r *OrphanReaper) reap(ctx context.Context, orphan *models.Orphan) error {
	switch orphan.Kind {
	case models.OrphanIdentity:
		return r.provider.DeleteIdentity(ctx, orphan.Ref)
	case models.OrphanTenant:
		return r.tenants.Delete(ctx, orphan.Ref)
	default:
		r.log.Error("unknown orphan kind, clearing record", zap.String("kind", orphan.Kind))
		return nil
	}
}
