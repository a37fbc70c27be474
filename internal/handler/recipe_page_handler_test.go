package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
	"github.com/yusufkecer/macro-tracker-backend/internal/recipes"
	"go.uber.org/zap"
)

type stubRecipeAPI struct {
	recipes   []domain.Recipe
	listErr   error
	removeErr error
	listUsers []string
	removed   []int64
}

func (s *stubRecipeAPI) SavedRecipes(_ context.Context, userID string) ([]domain.Recipe, error) {
	s.listUsers = append(s.listUsers, userID)
	return s.recipes, s.listErr
}

func (s *stubRecipeAPI) RemoveRecipes(_ context.Context, _ string, recipeIDs ...int64) (json.RawMessage, error) {
	s.removed = append(s.removed, recipeIDs...)
	return json.RawMessage(`{}`), s.removeErr
}

func newPageRouter(api *stubRecipeAPI) (*mux.Router, *recipes.SessionStore) {
	sessions := recipes.NewSessionStore(time.Hour)
	h := NewRecipePageHandler(api, sessions, zap.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/recipes", h.Page).Methods(http.MethodGet)
	r.HandleFunc("/recipes/{recipeId}/delete", h.Delete).Methods(http.MethodPost)
	return r, sessions
}

func sampleRecipes() []domain.Recipe {
	return []domain.Recipe{
		{ID: 11, Title: "Green Curry", Cuisines: []string{"Thai"}, Diets: []string{}, HealthScore: 55, Image: "curry.jpg", ReadyInMinutes: 40},
		{ID: 12, Title: "Omelette", Cuisines: []string{}, Diets: []string{}, HealthScore: 70, Image: "egg.jpg", ReadyInMinutes: 8},
	}
}

func getPage(r http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	if userID != "" {
		req.AddCookie(&http.Cookie{Name: UserCookie, Value: userID})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sessionFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestRecipePage_Grid(t *testing.T) {
	api := &stubRecipeAPI{recipes: sampleRecipes()}
	r, _ := newPageRouter(api)

	rec := getPage(r, "u1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, []string{"u1"}, api.listUsers)
	assert.Contains(t, body, "Recipes Page")
	assert.Contains(t, body, "Hello u1!")
	assert.Equal(t, 2, strings.Count(body, "data-recipe-id="))
	assert.Contains(t, body, "Green Curry")
	assert.Contains(t, body, "<td>N/A</td>")
	assert.Contains(t, body, "Cooking Time (Minutes)")
	assert.NotContains(t, body, "No data available")
}

func TestRecipePage_NoData(t *testing.T) {
	api := &stubRecipeAPI{listErr: errors.New("timeout")}
	r, _ := newPageRouter(api)

	rec := getPage(r, "u1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data available")
	assert.NotContains(t, rec.Body.String(), "<table")
}

func TestRecipePage_NoCookie(t *testing.T) {
	api := &stubRecipeAPI{recipes: sampleRecipes()}
	r, _ := newPageRouter(api)

	rec := getPage(r, "")

	assert.Contains(t, rec.Body.String(), "No data available")
	assert.Empty(t, api.listUsers)
}

func TestRecipePage_EscapesUserInput(t *testing.T) {
	api := &stubRecipeAPI{recipes: []domain.Recipe{{ID: 1, Title: `<script>alert("x")</script>`}}}
	r, _ := newPageRouter(api)

	rec := getPage(r, "u1")

	assert.NotContains(t, rec.Body.String(), `<script>alert`)
}

func deleteRow(r http.Handler, session *http.Cookie, userID, recipeID string, confirmed bool) *httptest.ResponseRecorder {
	form := url.Values{}
	if confirmed {
		form.Set("confirmed", "true")
	}
	req := httptest.NewRequest(http.MethodPost, "/recipes/"+recipeID+"/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != nil {
		req.AddCookie(session)
	}
	req.AddCookie(&http.Cookie{Name: UserCookie, Value: userID})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRecipePage_DeleteConfirmed(t *testing.T) {
	api := &stubRecipeAPI{recipes: sampleRecipes()}
	r, _ := newPageRouter(api)
	session := sessionFrom(t, getPage(r, "u1"))

	rec := deleteRow(r, session, "u1", "11", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{11}, api.removed)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "data-recipe-id="))
	assert.NotContains(t, rec.Body.String(), "Green Curry")
	assert.Len(t, api.listUsers, 1, "no re-fetch")
}

func TestRecipePage_DeleteRemovalFailsStillDropsRow(t *testing.T) {
	api := &stubRecipeAPI{recipes: sampleRecipes(), removeErr: errors.New("500")}
	r, _ := newPageRouter(api)
	session := sessionFrom(t, getPage(r, "u1"))

	rec := deleteRow(r, session, "u1", "12", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Omelette")
}

func TestRecipePage_DeleteNotConfirmed(t *testing.T) {
	api := &stubRecipeAPI{recipes: sampleRecipes()}
	r, _ := newPageRouter(api)
	session := sessionFrom(t, getPage(r, "u1"))

	rec := deleteRow(r, session, "u1", "11", false)

	assert.Empty(t, api.removed)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "data-recipe-id="))
}

func TestRecipePage_DeleteWithoutSession(t *testing.T) {
	api := &stubRecipeAPI{recipes: sampleRecipes()}
	r, _ := newPageRouter(api)

	rec := deleteRow(r, &http.Cookie{Name: SessionCookie, Value: "expired"}, "u1", "11", true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/recipes", rec.Header().Get("Location"))
	assert.Empty(t, api.removed)
}

func TestRecipePage_DeleteOtherUsersSession(t *testing.T) {
	api := &stubRecipeAPI{recipes: sampleRecipes()}
	r, _ := newPageRouter(api)
	session := sessionFrom(t, getPage(r, "u1"))

	rec := deleteRow(r, session, "u2", "11", true)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, api.removed)
}

func TestRecipePage_DeleteBadID(t *testing.T) {
	r, _ := newPageRouter(&stubRecipeAPI{})

	rec := deleteRow(r, nil, "u1", "abc", true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
