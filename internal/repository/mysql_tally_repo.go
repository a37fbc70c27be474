package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
)

type MySQLTallyRepository struct {
	db *sql.DB
}

func NewMySQLTallyRepository(db *sql.DB) *MySQLTallyRepository {
	return &MySQLTallyRepository{db: db}
}

func (r *MySQLTallyRepository) GetTally(ctx context.Context, userID string) (*domain.MacroTally, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT macros FROM users WHERE id = ?`, userID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get macros: %w", err)
	}

	var tally domain.MacroTally
	if raw == nil {
		return &tally, nil
	}
	if err := json.Unmarshal(raw, &tally); err != nil {
		return nil, fmt.Errorf("failed to decode macros for user %s: %w", userID, err)
	}
	return &tally, nil
}

func (r *MySQLTallyRepository) UpdateTally(ctx context.Context, userID string, tally domain.MacroTally) error {
	payload, err := json.Marshal(tally)
	if err != nil {
		return fmt.Errorf("failed to encode macros: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE users SET macros = ? WHERE id = ?`,
		string(payload), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update macros: %w", err)
	}
	return nil
}
