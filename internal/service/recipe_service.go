package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
)

const maxResponseBytes = 1 << 20

var ErrEndpointNotConfigured = errors.New("recipe endpoint not configured")

// RecipeService talks to the remote saved-recipes API.
type RecipeService struct {
	listURL   string
	removeURL string
	client    *http.Client
}

func NewRecipeService(listURL, removeURL string, client *http.Client) *RecipeService {
	if client == nil {
		client = http.DefaultClient
	}
	return &RecipeService{listURL: listURL, removeURL: removeURL, client: client}
}

func (s *RecipeService) SavedRecipes(ctx context.Context, userID string) ([]domain.Recipe, error) {
	if s.listURL == "" {
		return nil, ErrEndpointNotConfigured
	}

	u, err := url.Parse(s.listURL)
	if err != nil {
		return nil, fmt.Errorf("invalid recipe list url: %w", err)
	}
	q := u.Query()
	q.Set("id", userID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var payload domain.SavedRecipesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode saved recipes: %w", err)
	}
	if payload.SavedRecipes == nil {
		return nil, errors.New("recipe api response has no savedRecipes")
	}
	return payload.SavedRecipes, nil
}

// RemoveRecipes asks the API to drop recipeIDs from the user's saved recipes
// and returns the raw response body.
func (s *RecipeService) RemoveRecipes(ctx context.Context, userID string, recipeIDs ...int64) (json.RawMessage, error) {
	if s.removeURL == "" {
		return nil, ErrEndpointNotConfigured
	}

	payload, err := json.Marshal(domain.RemoveRecipesRequest{ID: userID, RecipeIDs: recipeIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.removeURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (s *RecipeService) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recipe api http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe api response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("recipe api error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
