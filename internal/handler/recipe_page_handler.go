package handler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
	"github.com/yusufkecer/macro-tracker-backend/internal/recipes"
	"go.uber.org/zap"
)

const (
	UserCookie    = "id"
	SessionCookie = "recipes_session"
)

//go:embed templates/*.html
var templateFS embed.FS

var recipesPage = template.Must(
	template.New("recipes.html").
		Funcs(template.FuncMap{"prompt": recipes.ConfirmPrompt}).
		ParseFS(templateFS, "templates/recipes.html"),
)

type recipesPageData struct {
	UserID  string
	HasData bool
	Rows    []domain.RecipeRow
}

type RecipePageHandler struct {
	api      recipes.RecipeAPI
	sessions *recipes.SessionStore
	logger   *zap.Logger
}

func NewRecipePageHandler(api recipes.RecipeAPI, sessions *recipes.SessionStore, logger *zap.Logger) *RecipePageHandler {
	return &RecipePageHandler{api: api, sessions: sessions, logger: logger}
}

func userIDFromCookie(r *http.Request) string {
	c, err := r.Cookie(UserCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// Page mounts a fresh view for the user named by the id cookie.
func (h *RecipePageHandler) Page(w http.ResponseWriter, r *http.Request) {
	view := recipes.NewView(h.api, userIDFromCookie(r), h.logger)
	// Load errors leave the view in its "no data" state.
	_ = view.Load(r.Context())

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    h.sessions.Put(view),
		Path:     "/recipes",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.render(w, view)
}

// Delete removes one row from the current page session. The browser asks
// for confirmation before submitting.
func (h *RecipePageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipeID, err := strconv.ParseInt(mux.Vars(r)["recipeId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	c, err := r.Cookie(SessionCookie)
	if err != nil {
		http.Redirect(w, r, "/recipes", http.StatusSeeOther)
		return
	}
	view, ok := h.sessions.Get(c.Value)
	if !ok || view.UserID() != userIDFromCookie(r) {
		http.Redirect(w, r, "/recipes", http.StatusSeeOther)
		return
	}

	confirmed := func(domain.RecipeRow) bool {
		return r.PostFormValue("confirmed") == "true"
	}
	if _, err := view.Delete(r.Context(), recipeID, confirmed); errors.Is(err, recipes.ErrRowNotFound) {
		h.logger.Debug("delete for recipe not on page", zap.Int64("recipe_id", recipeID))
	}

	h.render(w, view)
}

func (h *RecipePageHandler) render(w http.ResponseWriter, view *recipes.View) {
	data := recipesPageData{
		UserID:  view.UserID(),
		HasData: view.HasData(),
		Rows:    view.Rows(),
	}

	var buf bytes.Buffer
	if err := recipesPage.Execute(&buf, data); err != nil {
		h.logger.Error("failed to render recipes page", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
