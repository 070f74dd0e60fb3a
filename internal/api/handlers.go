package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/flavourai/backend/internal/catalog"
	"github.com/flavourai/backend/internal/nutrient"
	"github.com/flavourai/backend/internal/search"
)

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
}

type RecipeView struct {
	ID           int64             `json:"recipe_id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Category     string            `json:"recipe_category"`
	CookTime     string            `json:"cook_time"`
	Keywords     string            `json:"keywords"`
	Ingredients  string            `json:"ingredients"`
	Instructions string            `json:"instructions"`
	Levels       map[string]string `json:"nutrient_levels"`
}

type SearchResponse struct {
	Status  search.Status      `json:"status"`
	Query   string             `json:"query"`
	Results []SearchResultView `json:"results"`
}

type SearchResultView struct {
	Recipe RecipeView `json:"recipe"`
	Score  float64    `json:"score"`
}

type NutrientResponse struct {
	Status  nutrient.Status      `json:"status"`
	Message string               `json:"message,omitempty"`
	Results []NutrientResultView `json:"results"`
}

type NutrientResultView struct {
	Recipe      RecipeView `json:"recipe"`
	Probability float64    `json:"probability"`
}

type StatusResponse struct {
	Recipes         int       `json:"recipes"`
	Reviews         int       `json:"reviews"`
	CatalogVersion  string    `json:"catalog_version"`
	LoadedAt        time.Time `json:"loaded_at"`
	Uptime          string    `json:"uptime"`
	CacheEnabled    bool      `json:"cache_enabled"`
	CachedModels    int       `json:"cached_models"`
	LoadWarnings    int       `json:"load_warnings"`
	KeywordQueries  int64     `json:"keyword_queries"`
	NutrientQueries int64     `json:"nutrient_queries"`
	LastError       string    `json:"last_error,omitempty"`
}

// nutrientParams are the raw query parameters of a nutrient recommendation.
type nutrientParams struct {
	Nutrient  string `validate:"required"`
	Level     string `validate:"required"`
	Nutrient2 string `validate:"required_with=Level2"`
	Level2    string `validate:"required_with=Nutrient2"`
}

type reviewParams struct {
	Top int `validate:"gte=0,lte=1000"`
}

// NewRecipeView renders a recipe with cleaned text fields and named levels.
func NewRecipeView(r catalog.Recipe) RecipeView {
	levels := make(map[string]string, catalog.NumNutrients)
	for _, n := range catalog.Nutrients() {
		levels[n.String()] = r.Level(n).String()
	}
	return RecipeView{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		CookTime:     r.CookTime.String(),
		Keywords:     r.Keywords,
		Ingredients:  r.Ingredients(),
		Instructions: r.Instructions(),
		Levels:       levels,
	}
}

func NewSearchResponse(query string, res search.KeywordResult) SearchResponse {
	response := SearchResponse{
		Status:  res.Status,
		Query:   query,
		Results: make([]SearchResultView, len(res.Results)),
	}
	for i, hit := range res.Results {
		response.Results[i] = SearchResultView{
			Recipe: NewRecipeView(hit.Recipe),
			Score:  hit.Score,
		}
	}
	return response
}

func NewNutrientResponse(res nutrient.FilterResult) NutrientResponse {
	response := NutrientResponse{
		Status:  res.Status,
		Message: res.Message,
		Results: make([]NutrientResultView, len(res.Results)),
	}
	for i, hit := range res.Results {
		response.Results[i] = NutrientResultView{
			Recipe:      NewRecipeView(hit.Recipe),
			Probability: hit.Probability,
		}
	}
	return response
}

// ParseNutrientQuery builds a filter query from nutrient and level names.
// An empty secondary nutrient means no secondary constraint.
func ParseNutrientQuery(nutrientName, level, nutrientName2, level2 string) (nutrient.Query, error) {
	return parseNutrientQuery(nutrientParams{
		Nutrient:  nutrientName,
		Level:     level,
		Nutrient2: nutrientName2,
		Level2:    level2,
	})
}

// Handlers

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	res := s.Engine.SearchByKeyword(query)
	jsonResponse(w, http.StatusOK, NewSearchResponse(query, res))
}

func (s *Server) handleNutrients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := nutrientParams{
		Nutrient:  q.Get("nutrient"),
		Level:     q.Get("level"),
		Nutrient2: q.Get("nutrient2"),
		Level2:    q.Get("level2"),
	}
	if err := s.validate.Struct(params); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "nutrient and level are required, nutrient2 and level2 go together"})
		return
	}

	query, err := parseNutrientQuery(params)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	res, err := s.Engine.FilterByNutrient(r.Context(), query)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, catalog.ErrUnknownNutrient) || errors.Is(err, catalog.ErrUnknownLevel) {
			code = http.StatusBadRequest
		}
		jsonResponse(w, code, ErrorResponse{Error: err.Error()})
		return
	}

	jsonResponse(w, http.StatusOK, NewNutrientResponse(res))
}

func parseNutrientQuery(p nutrientParams) (nutrient.Query, error) {
	primary, err := parseConstraint(p.Nutrient, p.Level)
	if err != nil {
		return nutrient.Query{}, err
	}
	query := nutrient.Query{Primary: primary}
	if p.Nutrient2 != "" {
		secondary, err := parseConstraint(p.Nutrient2, p.Level2)
		if err != nil {
			return nutrient.Query{}, err
		}
		query.Secondary = &secondary
	}
	return query, nil
}

func parseConstraint(name, level string) (nutrient.Constraint, error) {
	n, err := catalog.ParseNutrient(name)
	if err != nil {
		return nutrient.Constraint{}, err
	}
	l, err := catalog.ParseLevel(level)
	if err != nil {
		return nutrient.Constraint{}, err
	}
	return nutrient.Constraint{Nutrient: n, Level: l}, nil
}

func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "recipe id must be an integer"})
		return
	}

	recipe, err := s.Engine.Recipe(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	jsonResponse(w, http.StatusOK, NewRecipeView(recipe))
}

func (s *Server) handleReviewStats(w http.ResponseWriter, r *http.Request) {
	params := reviewParams{Top: 10}
	if raw := r.URL.Query().Get("top"); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "top must be an integer"})
			return
		}
		params.Top = top
	}
	if err := s.validate.Struct(params); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "top must be between 0 and 1000"})
		return
	}

	jsonResponse(w, http.StatusOK, s.Engine.ReviewStats(params.Top))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.Engine.Status()

	jsonResponse(w, http.StatusOK, StatusResponse{
		Recipes:         status.Recipes,
		Reviews:         status.Reviews,
		CatalogVersion:  status.Version,
		LoadedAt:        status.LoadedAt,
		Uptime:          time.Since(status.LoadedAt).Round(time.Second).String(),
		CacheEnabled:    status.CacheEnabled,
		CachedModels:    status.CachedModels,
		LoadWarnings:    status.Report.Warnings(),
		KeywordQueries:  status.Stats.KeywordQueries,
		NutrientQueries: status.Stats.NutrientQueries,
		LastError:       status.Stats.LastError,
	})
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
