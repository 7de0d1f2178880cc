package recipe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"grocery-aggregator/internal/core/grocery"
	"grocery-aggregator/internal/infrastructure/config"
	"grocery-aggregator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pastaJSON = `{
	"id": "r1",
	"title": "Garlic Pasta",
	"ingredient_groups": [
		{"name": "main", "ingredients": [
			{"name": "olive oil", "amount": 2, "unit": "tbsp"},
			{"name": "garlic cloves", "amount": "3", "unit": "cloves"},
			{"name": "salt", "amount": null, "unit": null}
		]}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.RecipeSourceConfig{
		Enabled:        true,
		BaseURL:        srv.URL + "/",
		Timeout:        2 * time.Second,
		Retries:        retries,
		MaxConcurrency: 2,
	})
}

func TestClient_FetchRecipe(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/r1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pastaJSON))
	}, 0)

	recipe, err := c.FetchRecipe(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", recipe.RecipeID)
	assert.Equal(t, "Garlic Pasta", recipe.Title)
	require.Len(t, recipe.IngredientGroups, 1)
	require.Len(t, recipe.IngredientGroups[0].Ingredients, 3)

	oil := recipe.IngredientGroups[0].Ingredients[0]
	require.NotNil(t, grocery.ParseQuantity(oil.Amount))
	assert.InDelta(t, 2.0, *grocery.ParseQuantity(oil.Amount), 1e-9)
	assert.Nil(t, recipe.IngredientGroups[0].Ingredients[2].Amount)
}

func TestClient_NotFound(t *testing.T) {
	t.Parallel()
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}, 2)

	_, err := c.FetchRecipe(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRecipeNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(pastaJSON))
	}, 2)

	recipe, err := c.FetchRecipe(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Garlic Pasta", recipe.Title)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_InvalidBody(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "r1", "title": `))
	}, 0)

	_, err := c.FetchRecipe(context.Background(), "r1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRecipeSourceError))
}

func TestClient_FetchRecipesKeepsOrder(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/recipes/")
		if id == "a" {
			// 讓第一份較慢回應
			time.Sleep(50 * time.Millisecond)
		}
		_, _ = w.Write([]byte(`{"title": "Recipe ` + id + `", "ingredient_groups": []}`))
	}, 0)

	recipes, err := c.FetchRecipes(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, recipes, 3)
	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, id, recipes[i].RecipeID)
		assert.Equal(t, "Recipe "+id, recipes[i].Title)
	}
}

func TestClient_FetchRecipesFailsFast(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/bad") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(pastaJSON))
	}, 0)

	recipes, err := c.FetchRecipes(context.Background(), []string{"r1", "bad"})
	require.Error(t, err)
	assert.Nil(t, recipes)
	assert.True(t, errors.Is(err, common.ErrRecipeNotFound))
}

func TestClient_FetchRecipesEmpty(t *testing.T) {
	t.Parallel()
	c := NewClient(config.RecipeSourceConfig{BaseURL: "http://127.0.0.1:1"})
	recipes, err := c.FetchRecipes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, recipes)
}
