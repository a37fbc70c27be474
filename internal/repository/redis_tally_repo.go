package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
)

const macrosField = "macros"

// RedisTallyRepository keeps each user in a hash at users:<id>; the tally
// lives in its macros field as JSON.
type RedisTallyRepository struct {
	client redis.UniversalClient
}

func NewRedisTallyRepository(client redis.UniversalClient) *RedisTallyRepository {
	return &RedisTallyRepository{client: client}
}

func userKey(userID string) string {
	return "users:" + userID
}

func (r *RedisTallyRepository) GetTally(ctx context.Context, userID string) (*domain.MacroTally, error) {
	key := userKey(userID)

	raw, err := r.client.HGet(ctx, key, macrosField).Bytes()
	if errors.Is(err, redis.Nil) {
		n, err := r.client.Exists(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check user %s: %w", userID, err)
		}
		if n == 0 {
			return nil, nil
		}
		return &domain.MacroTally{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get macros: %w", err)
	}

	var tally domain.MacroTally
	if err := json.Unmarshal(raw, &tally); err != nil {
		return nil, fmt.Errorf("failed to decode macros for user %s: %w", userID, err)
	}
	return &tally, nil
}

func (r *RedisTallyRepository) UpdateTally(ctx context.Context, userID string, tally domain.MacroTally) error {
	payload, err := json.Marshal(tally)
	if err != nil {
		return fmt.Errorf("failed to encode macros: %w", err)
	}
	if err := r.client.HSet(ctx, userKey(userID), macrosField, payload).Err(); err != nil {
		return fmt.Errorf("failed to update macros: %w", err)
	}
	return nil
}
