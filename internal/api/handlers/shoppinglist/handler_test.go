package shoppinglist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"grocery-aggregator/internal/core/checked"
	"grocery-aggregator/internal/core/grocery"
	"grocery-aggregator/internal/infrastructure/config"
	"grocery-aggregator/internal/infrastructure/database"
	"grocery-aggregator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSource struct {
	recipes map[string]grocery.RecipeIngredients
}

func (f *fakeSource) FetchRecipes(ctx context.Context, ids []string) ([]grocery.RecipeIngredients, error) {
	out := make([]grocery.RecipeIngredients, 0, len(ids))
	for _, id := range ids {
		r, ok := f.recipes[id]
		if !ok {
			return nil, common.ErrRecipeNotFound.Wrap(errors.New(id))
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeRepo struct {
	saved map[string][]grocery.StoredItem
	err   error
	calls int
}

func (f *fakeRepo) SaveItems(ctx context.Context, listID string, rows []grocery.StoredItem) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.saved[listID] = rows
	return nil
}

// ListItems 與資料庫相同：沒有任何列視為不存在
func (f *fakeRepo) ListItems(ctx context.Context, listID string) ([]grocery.StoredItem, error) {
	rows := f.saved[listID]
	if len(rows) == 0 {
		return nil, database.ErrListNotFound
	}
	return rows, nil
}

type failingStore struct{ checked.Store }

func (failingStore) Get(ctx context.Context, userID string) (map[string]bool, error) {
	return nil, errors.New("connection refused")
}

func newMemoryStore(t *testing.T) checked.Store {
	t.Helper()
	store := checked.NewMemoryStore(config.CheckedConfig{TTL: time.Hour, MaxSize: 100})
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.POST("/build", h.HandleBuildList)
	r.GET("/lists/:id", h.HandleGetList)
	r.GET("/checked", h.HandleGetChecked)
	r.PUT("/checked", h.HandleSetChecked)
	r.POST("/normalize", h.HandleNormalize)
	r.POST("/categorize", h.HandleCategorize)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const buildBody = `{
	"user_id": "u1",
	"recipes": [
		{"recipe_id": "r1", "title": "Garlic Pasta", "ingredient_groups": [
			{"name": "main", "ingredients": [
				{"name": "olive oil", "amount": 2, "unit": "tbsp"},
				{"name": "garlic cloves", "amount": "2", "unit": "cloves"},
				{"name": "", "amount": 1, "unit": "cup"}
			]}
		]}
	],
	"recipe_ids": ["r2"]
}`

func salad() grocery.RecipeIngredients {
	return grocery.RecipeIngredients{
		RecipeID: "r2",
		Title:    "Salad",
		IngredientGroups: []grocery.IngredientGroup{{
			Ingredients: []grocery.RawIngredient{
				{Name: "Olive Oil", Amount: "1/4", Unit: "cup"},
				{Name: "garlic", Amount: 1.0},
			},
		}},
	}
}

func TestHandleBuildList(t *testing.T) {
	store := newMemoryStore(t)
	require.NoError(t, store.Set(context.Background(), "u1", "garlic", true))
	repo := &fakeRepo{saved: map[string][]grocery.StoredItem{}}
	r := newRouter(NewHandler(store, &fakeSource{recipes: map[string]grocery.RecipeIngredients{"r2": salad()}}, repo))

	w := do(t, r, http.MethodPost, "/build", buildBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BuildListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, []string{"Garlic Pasta", "Salad"}, resp.RecipeTitles)
	require.Len(t, resp.Items, 2)

	oil, garlic := resp.Items[0], resp.Items[1]
	assert.Equal(t, "olive oil", oil.ItemName)
	assert.InDelta(t, 0.375, *oil.QuantityAmount, 1e-6)
	assert.False(t, oil.IsChecked)
	assert.Equal(t, "garlic", garlic.ItemName)
	assert.InDelta(t, 3.0, *garlic.QuantityAmount, 1e-9)
	assert.True(t, garlic.IsChecked)

	// 未指定 id 時產生新的清單 id，儲存時不帶勾選狀態
	require.NotEmpty(t, resp.ShoppingListID)
	rows := repo.saved[resp.ShoppingListID]
	require.Len(t, rows, 2)
	assert.False(t, rows[1].IsChecked)

	w = do(t, r, http.MethodGet, "/lists/"+resp.ShoppingListID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/lists/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleBuildList_StoreFailureDegrades(t *testing.T) {
	r := newRouter(NewHandler(failingStore{}, nil, nil))

	w := do(t, r, http.MethodPost, "/build", `{"user_id": "u1", "recipes": [{"title": "Soup", "ingredient_groups": [{"ingredients": [{"name": "carrots", "amount": 2}]}]}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BuildListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "carrot", resp.Items[0].ItemName)
	assert.Empty(t, resp.ShoppingListID)
}

func TestHandleBuildList_EmptyListNotPersisted(t *testing.T) {
	repo := &fakeRepo{saved: map[string][]grocery.StoredItem{
		"list-1": {{ShoppingListID: "list-1", ItemName: "carrot"}},
	}}
	r := newRouter(NewHandler(newMemoryStore(t), nil, repo))

	w := do(t, r, http.MethodPost, "/build", `{"user_id": "u1", "recipes": [{"title": "Empty", "ingredient_groups": [{"ingredients": [{"name": "", "amount": 1}]}]}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BuildListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
	assert.Empty(t, resp.ShoppingListID)
	assert.Equal(t, 0, repo.calls)

	// 指定的清單被清空，讀取時與未建立的清單一致
	w = do(t, r, http.MethodPost, "/build", `{"user_id": "u1", "shopping_list_id": "list-1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.ShoppingListID)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/lists/list-1", "").Code)
}

func TestHandleBuildList_Errors(t *testing.T) {
	store := newMemoryStore(t)

	tests := []struct {
		name   string
		h      *Handler
		body   string
		status int
		code   string
	}{
		{"missing user", NewHandler(store, nil, nil), `{"recipes": []}`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"source disabled", NewHandler(store, nil, nil), `{"user_id": "u1", "recipe_ids": ["r1"]}`, http.StatusServiceUnavailable, common.ErrCodeRecipeSource},
		{"recipe not found", NewHandler(store, &fakeSource{}, nil), `{"user_id": "u1", "recipe_ids": ["r9"]}`, http.StatusNotFound, common.ErrCodeRecipeNotFound},
		{"database failure", NewHandler(store, nil, &fakeRepo{err: errors.New("tx aborted")}), `{"user_id": "u1", "recipes": [{"title": "Soup", "ingredient_groups": [{"ingredients": [{"name": "carrots", "amount": 2}]}]}]}`, http.StatusInternalServerError, common.ErrCodeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newRouter(tt.h), http.MethodPost, "/build", tt.body)
			assert.Equal(t, tt.status, w.Code)
			var resp common.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestHandleChecked(t *testing.T) {
	r := newRouter(NewHandler(newMemoryStore(t), nil, nil))

	w := do(t, r, http.MethodPut, "/checked", `{"user_id": "u1", "item_name": "Garlic Cloves", "is_checked": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"item_name":"garlic"`)

	w = do(t, r, http.MethodGet, "/checked?user_id=u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Checked map[string]bool `json:"checked"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]bool{"garlic": true}, resp.Checked)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		details string
	}{
		{"missing user id", http.MethodGet, "/checked", "", "user_id: is required"},
		{"blank user id", http.MethodGet, "/checked?user_id=%20%20", "", "user_id: is required"},
		{"name normalizes to empty", http.MethodPut, "/checked", `{"user_id": "u1", "item_name": "(!!)"}`, "item_name: is empty after normalization"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			var errResp common.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
			assert.Equal(t, common.ErrCodeInvalidRequest, errResp.Code)
			assert.Equal(t, tt.details, errResp.Details)
		})
	}
}

func TestHandleNormalize(t *testing.T) {
	r := newRouter(NewHandler(newMemoryStore(t), nil, nil))

	w := do(t, r, http.MethodPost, "/normalize", `{"name": "Extra-Virgin Olive Oil", "amount": "1 1/2", "unit": "Tbsp."}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp NormalizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "olive oil", resp.ItemName)
	require.NotNil(t, resp.QuantityAmount)
	assert.InDelta(t, 1.5, *resp.QuantityAmount, 1e-9)
	require.NotNil(t, resp.QuantityUnit)
	assert.Equal(t, grocery.UnitTbsp, *resp.QuantityUnit)
	assert.Equal(t, grocery.CategoryPantry, resp.GroceryCategory)
}

func TestHandleNormalize_RawUnits(t *testing.T) {
	r := newRouter(NewHandler(newMemoryStore(t), nil, nil))

	tests := []struct {
		name string
		body string
		unit *grocery.Unit
	}{
		{"null unit", `{"name": "eggs", "amount": 2, "unit": null}`, nil},
		{"numeric unit", `{"name": "eggs", "amount": 2, "unit": 12}`, nil},
		{"padded capital T", `{"name": "butter", "amount": "1", "unit": "  T "}`, unitOf(grocery.UnitTbsp)},
		{"padded lowercase t", `{"name": "salt", "amount": "1", "unit": " t."}`, unitOf(grocery.UnitTsp)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/normalize", tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp NormalizeResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.unit, resp.QuantityUnit)

			var req NormalizeRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, grocery.NormalizeRawUnit(req.Unit), resp.QuantityUnit)
		})
	}
}

func unitOf(u grocery.Unit) *grocery.Unit { return &u }

func TestHandleCategorize(t *testing.T) {
	r := newRouter(NewHandler(newMemoryStore(t), nil, nil))

	w := do(t, r, http.MethodPost, "/categorize", `{"names": ["Garlic Cloves", "cumin", "mystery"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Categories map[string]string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, grocery.CategoryProduce, resp.Categories["Garlic Cloves"])
	assert.Equal(t, grocery.CategorySpices, resp.Categories["cumin"])
	assert.Equal(t, grocery.CategoryOther, resp.Categories["mystery"])
}
