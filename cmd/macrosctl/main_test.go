package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/macro-tracker-backend/internal/config"
	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
	"github.com/yusufkecer/macro-tracker-backend/internal/recipes"
	"go.uber.org/zap"
)

type stubAPI struct {
	recipes   []domain.Recipe
	listErr   error
	removeErr error
	removed   []int64
}

func (s *stubAPI) SavedRecipes(context.Context, string) ([]domain.Recipe, error) {
	return s.recipes, s.listErr
}

func (s *stubAPI) RemoveRecipes(_ context.Context, _ string, ids ...int64) (json.RawMessage, error) {
	s.removed = append(s.removed, ids...)
	return json.RawMessage(`{}`), s.removeErr
}

func testApp(api *stubAPI, cfg *config.Config) *app {
	return &app{
		logger:     zap.NewNop(),
		loadConfig: func() (*config.Config, error) { return cfg, nil },
		newAPI:     func(*config.Config) (recipes.RecipeAPI, error) { return api, nil },
	}
}

func run(t *testing.T, a *app, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func savedRecipes() []domain.Recipe {
	return []domain.Recipe{
		{ID: 5, Title: "Shakshuka", Cuisines: []string{"Middle Eastern"}, HealthScore: 48, ReadyInMinutes: 25},
		{ID: 6, Title: "Granola", HealthScore: 30, ReadyInMinutes: 45},
	}
}

func TestRecipesList(t *testing.T) {
	out, _, err := run(t, testApp(&stubAPI{recipes: savedRecipes()}, &config.Config{}), "", "recipes", "list", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Shakshuka")
	assert.Contains(t, out, "Granola")
	assert.Contains(t, out, "N/A")
}

func TestRecipesList_NoData(t *testing.T) {
	out, _, err := run(t, testApp(&stubAPI{listErr: errors.New("down")}, &config.Config{}), "", "recipes", "list", "--user", "u1")
	assert.ErrorIs(t, err, errNoData)
	assert.Contains(t, out, "No data available")
}

func TestRecipesList_RequiresUser(t *testing.T) {
	_, _, err := run(t, testApp(&stubAPI{}, &config.Config{}), "", "recipes", "list")
	assert.Error(t, err)
}

func TestRecipesRemove_Confirmed(t *testing.T) {
	api := &stubAPI{recipes: savedRecipes()}
	out, _, err := run(t, testApp(api, &config.Config{}), "y\n", "recipes", "remove", "--user", "u1", "5")
	require.NoError(t, err)

	assert.Contains(t, out, `Are you sure you want to remove "Shakshuka" from your saved recipes?`)
	assert.Equal(t, []int64{5}, api.removed)
	assert.NotContains(t, out[strings.Index(out, "[y/N]"):], "Shakshuka")
	assert.Contains(t, out, "Granola")
}

func TestRecipesRemove_Declined(t *testing.T) {
	api := &stubAPI{recipes: savedRecipes()}
	out, _, err := run(t, testApp(api, &config.Config{}), "n\n", "recipes", "remove", "--user", "u1", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.Empty(t, api.removed)
}

func TestRecipesRemove_YesFlagAndFailedRemoval(t *testing.T) {
	api := &stubAPI{recipes: savedRecipes(), removeErr: errors.New("502")}
	out, errOut, err := run(t, testApp(api, &config.Config{}), "", "recipes", "remove", "--user", "u1", "--yes", "6")
	require.NoError(t, err)
	assert.Contains(t, errOut, "removal request failed")
	assert.NotContains(t, out, "Granola")
}

func TestRecipesRemove_UnknownRecipe(t *testing.T) {
	api := &stubAPI{recipes: savedRecipes()}
	_, _, err := run(t, testApp(api, &config.Config{}), "", "recipes", "remove", "--user", "u1", "--yes", "99")
	assert.Error(t, err)
	assert.Empty(t, api.removed)
}

func TestToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "cli-secret"}
	out, _, err := run(t, testApp(&stubAPI{}, cfg), "", "token", "--user", "u1", "--ttl", "1h")
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
}

func TestToken_NoSecret(t *testing.T) {
	_, _, err := run(t, testApp(&stubAPI{}, &config.Config{}), "", "token", "--user", "u1")
	assert.Error(t, err)
}
