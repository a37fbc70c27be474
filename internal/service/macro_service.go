package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
	"github.com/yusufkecer/macro-tracker-backend/internal/metrics"
	"github.com/yusufkecer/macro-tracker-backend/internal/repository"
	"go.uber.org/zap"
)

type MacroService struct {
	repo   repository.TallyRepository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

type MacroServiceOption func(*MacroService)

// WithClock replaces time.Now as the source of the current instant.
func WithClock(now func() time.Time) MacroServiceOption {
	return func(s *MacroService) { s.now = now }
}

func NewMacroService(repo repository.TallyRepository, loc *time.Location, logger *zap.Logger, opts ...MacroServiceOption) *MacroService {
	s := &MacroService{
		repo:   repo,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update records u against the user's tally and returns the stored result.
// It performs one read and, when the user exists and the sums fit, one write.
func (s *MacroService) Update(ctx context.Context, u domain.MacroUpdate) (domain.MacroTally, error) {
	current, err := s.repo.GetTally(ctx, u.UserID)
	if err != nil {
		metrics.IncMacroUpdate(metrics.OutcomeError)
		return domain.MacroTally{}, err
	}
	if current == nil {
		metrics.IncMacroUpdate(metrics.OutcomeNotFound)
		return domain.MacroTally{}, fmt.Errorf("user %s: %w", u.UserID, domain.ErrUserNotFound)
	}

	now := s.now().UTC()
	sameDay := !current.Date.IsZero() && domain.SameDay(current.Date, now, s.loc)
	next, err := current.Apply(u, now, s.loc)
	if err != nil {
		metrics.IncMacroUpdate(metrics.OutcomeInvalid)
		return domain.MacroTally{}, err
	}

	if err := s.repo.UpdateTally(ctx, u.UserID, next); err != nil {
		metrics.IncMacroUpdate(metrics.OutcomeError)
		return domain.MacroTally{}, err
	}

	outcome := metrics.OutcomeReset
	if sameDay {
		outcome = metrics.OutcomeAccumulated
	}
	metrics.IncMacroUpdate(outcome)
	s.logger.Debug("macro tally updated",
		zap.String("user_id", u.UserID),
		zap.String("outcome", outcome),
		zap.Int64("calories", next.Calories),
	)
	return next, nil
}
