package repository

import (
	"context"

	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
)

// TallyRepository stores one macro tally per user.
//
// GetTally returns nil, nil when the user does not exist, and a zero tally
// when the user exists but has never recorded one. UpdateTally replaces the
// whole tally of an existing user.
type TallyRepository interface {
	GetTally(ctx context.Context, userID string) (*domain.MacroTally, error)
	UpdateTally(ctx context.Context, userID string, tally domain.MacroTally) error
}
