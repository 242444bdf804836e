package services

import (
	"context"

	"companyhub/internal/models"
	"companyhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type compensator struct {
	name string
	kind string
	ref  uuid.UUID
	undo func(ctx context.Context) error
}

// compensationStack collects the undo actions for steps that have already
// committed. On failure the stack unwinds in reverse order. Unwinding is
// best-effort: an undo action's own failure is logged and persisted as an
// orphan record for the reaper, and never reaches the caller.
type compensationStack struct {
	log     *zap.Logger
	orphans repositories.OrphanRepository
	steps   []compensator
}

func newCompensationStack(log *zap.Logger, orphans repositories.OrphanRepository) *compensationStack {
	return &compensationStack{log: log, orphans: orphans}
}

func (s *compensationStack) push(name, kind string, ref uuid.UUID, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, compensator{name: name, kind: kind, ref: ref, undo: undo})
}

func (s *compensationStack) unwind(ctx context.Context, cause error) {
	// The failure that triggered the unwind may be the caller disconnecting,
	// which cancels the request context. Undo actions and orphan records must
	// still go through, so they run detached from that cancellation.
	ctx = context.WithoutCancel(ctx)

	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		err := step.undo(ctx)
		if err == nil {
			s.log.Info("compensated step",
				zap.String("step", step.name),
				zap.String("ref", step.ref.String()))
			continue
		}

		s.log.Error("compensation failed, recording orphan",
			zap.String("step", step.name),
			zap.String("kind", step.kind),
			zap.String("ref", step.ref.String()),
			zap.NamedError("cause", cause),
			zap.Error(err))

		orphan := &models.Orphan{
			ID:       uuid.New(),
			Kind:     step.kind,
			Ref:      step.ref,
			Reason:   err.Error(),
			Attempts: 1,
		}
		if recErr := s.orphans.Create(ctx, orphan); recErr != nil {
			s.log.Error("failed to record orphan, resource only recoverable from provider-side audit",
				zap.String("kind", step.kind),
				zap.String("ref", step.ref.String()),
				zap.Error(recErr))
		}
	}
	s.steps = nil
}
