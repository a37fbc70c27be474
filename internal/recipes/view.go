// Package recipes holds the client-side state of the saved recipes page: the
// rows fetched when the page is mounted and the removals applied since.
package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
	"github.com/yusufkecer/macro-tracker-backend/internal/metrics"
	"go.uber.org/zap"
)

var (
	ErrNoUser      = errors.New("no user id")
	ErrRowNotFound = errors.New("recipe is not displayed")
)

type RecipeAPI interface {
	SavedRecipes(ctx context.Context, userID string) ([]domain.Recipe, error)
	RemoveRecipes(ctx context.Context, userID string, recipeIDs ...int64) (json.RawMessage, error)
}

// ConfirmFunc asks the user whether row should really be removed.
type ConfirmFunc func(row domain.RecipeRow) bool

// ConfirmPrompt is the question shown before removing row.
func ConfirmPrompt(row domain.RecipeRow) string {
	return `Are you sure you want to remove "` + row.Title + `" from your saved recipes?`
}

// View is one page session. It starts in the "no data" state and moves to
// the grid state only when Load succeeds; afterwards rows only disappear.
type View struct {
	api    RecipeAPI
	userID string
	logger *zap.Logger

	mu     sync.Mutex
	rows   []domain.RecipeRow
	loaded bool
}

func NewView(api RecipeAPI, userID string, logger *zap.Logger) *View {
	return &View{api: api, userID: userID, logger: logger}
}

func (v *View) UserID() string {
	return v.userID
}

// Load fetches the user's saved recipes. On failure the view stays in the
// "no data" state and the error is returned for logging only.
func (v *View) Load(ctx context.Context) error {
	if v.userID == "" {
		return ErrNoUser
	}

	recipes, err := v.api.SavedRecipes(ctx, v.userID)
	if err != nil {
		v.logger.Warn("failed to fetch saved recipes", zap.String("user_id", v.userID), zap.Error(err))
		return err
	}

	rows := make([]domain.RecipeRow, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, domain.NewRecipeRow(r))
	}

	v.mu.Lock()
	v.rows = rows
	v.loaded = true
	v.mu.Unlock()
	return nil
}

func (v *View) HasData() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

func (v *View) Rows() []domain.RecipeRow {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.RecipeRow, len(v.rows))
	copy(out, v.rows)
	return out
}

func (v *View) Row(recipeID int64) (domain.RecipeRow, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, r := range v.rows {
		if r.ID == recipeID {
			return r, true
		}
	}
	return domain.RecipeRow{}, false
}

// Delete removes a displayed recipe once confirm agrees. The row is dropped
// whether or not the removal call succeeds; a removal error is returned so
// the caller can log it. The bool reports whether a removal was attempted.
func (v *View) Delete(ctx context.Context, recipeID int64, confirm ConfirmFunc) (bool, error) {
	row, ok := v.Row(recipeID)
	if !ok {
		return false, ErrRowNotFound
	}
	if confirm != nil && !confirm(row) {
		return false, nil
	}

	body, err := v.api.RemoveRecipes(ctx, v.userID, recipeID)
	v.drop(recipeID)

	if err != nil {
		metrics.IncRecipeRemoval(metrics.OutcomeError)
		v.logger.Warn("recipe removal failed",
			zap.String("user_id", v.userID),
			zap.Int64("recipe_id", recipeID),
			zap.Error(err),
		)
		return true, err
	}
	metrics.IncRecipeRemoval(metrics.OutcomeOK)
	v.logger.Debug("recipe removal response",
		zap.String("user_id", v.userID),
		zap.Int64("recipe_id", recipeID),
		zap.ByteString("body", body),
	)
	return true, nil
}

func (v *View) drop(recipeID int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	kept := v.rows[:0]
	for _, r := range v.rows {
		if r.ID != recipeID {
			kept = append(kept, r)
		}
	}
	v.rows = kept
}
