package domain

import "strings"

const NotAvailable = "N/A"

// Recipe is a saved recipe as returned by the recipe API.
type Recipe struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Cuisines       []string `json:"cuisines"`
	Diets          []string `json:"diets"`
	HealthScore    float64  `json:"healthScore"`
	Image          string   `json:"image"`
	ReadyInMinutes int      `json:"readyInMinutes"`
}

type SavedRecipesResponse struct {
	SavedRecipes []Recipe `json:"savedRecipes"`
}

type RemoveRecipesRequest struct {
	ID        string  `json:"id"`
	RecipeIDs []int64 `json:"recipeIds"`
}

// RecipeRow is one rendered entry of the saved recipes grid.
type RecipeRow struct {
	ID          int64
	Title       string
	Cuisines    string
	Diets       string
	HealthScore float64
	CookingTime int
	Avatar      string
}

func NewRecipeRow(r Recipe) RecipeRow {
	return RecipeRow{
		ID:          r.ID,
		Title:       r.Title,
		Cuisines:    joinOrNA(r.Cuisines),
		Diets:       joinOrNA(r.Diets),
		HealthScore: r.HealthScore,
		CookingTime: r.ReadyInMinutes,
		Avatar:      r.Image,
	}
}

func joinOrNA(values []string) string {
	if len(values) == 0 {
		return NotAvailable
	}
	return strings.Join(values, ",")
}
