package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavourai/backend/internal/api"
	"github.com/flavourai/backend/internal/catalog"
	"github.com/flavourai/backend/internal/engine"
	"github.com/flavourai/backend/internal/nutrient"
	"github.com/flavourai/backend/internal/reviews"
	"github.com/flavourai/backend/internal/search"
)

func testRecipe(id int64, name, keywords string, calories catalog.Level) catalog.Recipe {
	var levels catalog.NutrientLevels
	levels[catalog.Calories] = calories
	levels[catalog.Protein] = catalog.High
	return catalog.Recipe{
		ID:             id,
		Name:           name,
		Keywords:       keywords,
		IngredientsRaw: `c("rice", "chilli")`,
		Levels:         levels,
	}
}

func setupServer(t *testing.T) *api.Server {
	t.Helper()
	c, err := catalog.New([]catalog.Recipe{
		testRecipe(1, "Chilli Rice", "spicy rice dinner", catalog.Low),
		testRecipe(2, "Fruit Salad", "sweet fruit salad", catalog.Low),
		testRecipe(3, "Hot Wings", "spicy chicken wings", catalog.High),
		testRecipe(4, "Lemon Tart", "sweet dessert pastry", catalog.Medium),
	})
	require.NoError(t, err)

	revs := []reviews.Review{
		{ReviewID: 1, RecipeID: 1, AuthorName: "ann", Rating: 5, Year: 2012},
		{ReviewID: 2, RecipeID: 3, AuthorName: "bob", Rating: 2, Year: 2013},
		{ReviewID: 3, RecipeID: 3, AuthorName: "ann", Rating: 4, Year: 2013},
	}

	model := nutrient.DefaultModelConfig()
	model.Classifier.MaxIter = 50
	logger := logrus.New().WithField("test", "api")
	eng, err := engine.New(engine.Options{TopN: 10, Model: model, CacheEnabled: true, CacheSize: 4}, logger, c, revs)
	require.NoError(t, err)

	return api.NewServer(eng, logger)
}

func get(server *api.Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func TestHandleStatus(t *testing.T) {
	server := setupServer(t)

	rr := get(server, "/api/v1/status")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.StatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Recipes)
	assert.Equal(t, 3, resp.Reviews)
	assert.NotEmpty(t, resp.CatalogVersion)
	assert.True(t, resp.CacheEnabled)
}

func TestHandleSearch(t *testing.T) {
	server := setupServer(t)

	rr := get(server, "/api/v1/search?q=spicy")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp api.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, search.StatusOK, resp.Status)
	assert.Equal(t, "spicy", resp.Query)
	require.Len(t, resp.Results, 2)
	for _, hit := range resp.Results {
		assert.Contains(t, hit.Recipe.Keywords, "spicy")
		assert.Greater(t, hit.Score, 0.0)
	}
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	server := setupServer(t)

	rr := get(server, "/api/v1/search?q=")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, search.StatusEmptyQuery, resp.Status)
	assert.Empty(t, resp.Results)
}

func TestHandleSearch_NoMatch(t *testing.T) {
	server := setupServer(t)

	var resp api.SearchResponse
	rr := get(server, "/api/v1/search?q=sushi")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, search.StatusNoMatch, resp.Status)
}

func TestHandleNutrients(t *testing.T) {
	server := setupServer(t)

	rr := get(server, "/api/v1/recommend/nutrients?nutrient=calories&level=low")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.NutrientResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, nutrient.StatusExactMatch, resp.Status)
	assert.Empty(t, resp.Message)
	require.Len(t, resp.Results, 2)
	for _, hit := range resp.Results {
		assert.Equal(t, "Low", hit.Recipe.Levels["Calories"])
	}
}

func TestHandleNutrients_SecondaryAndFallback(t *testing.T) {
	server := setupServer(t)

	rr := get(server, "/api/v1/recommend/nutrients?nutrient=Calories&level=Low&nutrient2=ProteinContent_Level&level2=Very%20High")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.NutrientResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, nutrient.StatusFallbackUsed, resp.Status)
	assert.Equal(t, nutrient.MessageFallback, resp.Message)
	assert.Len(t, resp.Results, 4)
}

func TestHandleNutrients_BadRequest(t *testing.T) {
	server := setupServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing level", "nutrient=fat"},
		{"missing nutrient", "level=low"},
		{"unknown nutrient", "nutrient=vitamins&level=low"},
		{"unknown level", "nutrient=fat&level=extreme"},
		{"secondary without level", "nutrient=fat&level=low&nutrient2=sugar"},
		{"unknown secondary", "nutrient=fat&level=low&nutrient2=salt&level2=high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(server, "/api/v1/recommend/nutrients?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleRecipe(t *testing.T) {
	server := setupServer(t)

	rr := get(server, "/api/v1/recipes/3")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.RecipeView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Hot Wings", resp.Name)
	assert.Equal(t, "unknown", resp.CookTime)
	assert.Equal(t, "rice, chilli", resp.Ingredients)
	assert.Equal(t, "High", resp.Levels["Protein"])
	assert.Len(t, resp.Levels, catalog.NumNutrients)

	assert.Equal(t, http.StatusNotFound, get(server, "/api/v1/recipes/99").Code)
	assert.Equal(t, http.StatusBadRequest, get(server, "/api/v1/recipes/abc").Code)
}

func TestHandleReviewStats(t *testing.T) {
	server := setupServer(t)

	rr := get(server, "/api/v1/reviews/stats?top=1")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp reviews.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.TopReviewers, 1)
	assert.Equal(t, "ann", resp.TopReviewers[0].AuthorName)
	assert.Len(t, resp.Years, 2)

	assert.Equal(t, http.StatusBadRequest, get(server, "/api/v1/reviews/stats?top=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(server, "/api/v1/reviews/stats?top=-1").Code)
}

func TestRequestID(t *testing.T) {
	server := setupServer(t)

	rr := get(server, "/api/v1/status")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupServer(t)
	get(server, "/api/v1/search?q=spicy")

	rr := get(server, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "flavour_catalog_recipes"))
	assert.True(t, strings.Contains(body, "flavour_api_requests_total"))
}
