package shoppinglist

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"grocery-aggregator/internal/core/checked"
	"grocery-aggregator/internal/core/grocery"
	"grocery-aggregator/internal/core/recipe"
	"grocery-aggregator/internal/infrastructure/database"
	"grocery-aggregator/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListRepository 購物清單持久化
type ListRepository interface {
	SaveItems(ctx context.Context, listID string, rows []grocery.StoredItem) error
	ListItems(ctx context.Context, listID string) ([]grocery.StoredItem, error)
}

// Handler 購物清單處理程序
type Handler struct {
	store  checked.Store
	source recipe.Source
	repo   ListRepository
}

// NewHandler 建立處理程序，source 與 repo 可為 nil（功能未啟用）
func NewHandler(store checked.Store, source recipe.Source, repo ListRepository) *Handler {
	return &Handler{
		store:  store,
		source: source,
		repo:   repo,
	}
}

// BuildListRequest 建立購物清單
type BuildListRequest struct {
	UserID         string                      `json:"user_id" binding:"required"`
	ShoppingListID string                      `json:"shopping_list_id,omitempty"`
	Recipes        []grocery.RecipeIngredients `json:"recipes,omitempty"`
	RecipeIDs      []string                    `json:"recipe_ids,omitempty"`
}

// BuildListResponse 建立結果
type BuildListResponse struct {
	ShoppingListID string                    `json:"shopping_list_id,omitempty"`
	Items          []grocery.GroceryListItem `json:"items"`
	RecipeTitles   []string                  `json:"recipe_titles"`
	Skipped        int                       `json:"skipped"`
}

// SetCheckedRequest 更新勾選狀態
type SetCheckedRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ItemName  string `json:"item_name" binding:"required"`
	IsChecked bool   `json:"is_checked"`
}

// NormalizeRequest 單一食材診斷
type NormalizeRequest struct {
	Name   string      `json:"name" binding:"required"`
	Amount interface{} `json:"amount"`
	Unit   interface{} `json:"unit"`
}

// NormalizeResponse 食材標準化結果
type NormalizeResponse struct {
	ItemName        string        `json:"item_name"`
	QuantityAmount  *float64      `json:"quantity_amount"`
	QuantityUnit    *grocery.Unit `json:"quantity_unit"`
	DisplayUnit     *string       `json:"display_unit"`
	GroceryCategory string        `json:"grocery_category"`
}

// CategorizeRequest 批次分類
type CategorizeRequest struct {
	Names []string `json:"names" binding:"required"`
}

// HandleBuildList 由食譜建立購物清單並套用使用者勾選狀態
func (h *Handler) HandleBuildList(c *gin.Context) {
	reqID := requestid.Get(c)

	var req BuildListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	ctx := c.Request.Context()
	recipes := append([]grocery.RecipeIngredients(nil), req.Recipes...)
	if len(req.RecipeIDs) > 0 {
		if h.source == nil {
			common.RespondError(c, common.ErrRecipeSourceDisabled)
			return
		}
		fetched, err := h.source.FetchRecipes(ctx, req.RecipeIDs)
		if err != nil {
			common.RespondError(c, err)
			return
		}
		recipes = append(recipes, fetched...)
	}

	result := grocery.BuildList(recipes)

	// 勾選狀態讀取失敗時仍回傳未勾選的清單
	state, err := h.store.Get(ctx, req.UserID)
	if err != nil {
		common.LogWarn("無法讀取勾選狀態，回傳未勾選清單",
			zap.String("request_id", reqID),
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
	} else {
		result.Items = grocery.ApplyChecked(result.Items, state)
	}

	resp := BuildListResponse{
		Items:        result.Items,
		RecipeTitles: result.RecipeTitles,
		Skipped:      result.Skipped,
	}

	// 空清單不產生 id；指定的 id 仍會被清空，之後 GET 回 404
	if h.repo != nil && (len(result.Items) > 0 || req.ShoppingListID != "") {
		listID := req.ShoppingListID
		if listID == "" {
			listID = common.GenerateUUID()
		}
		if err := h.repo.SaveItems(ctx, listID, grocery.ToStorageRows(listID, result.Items)); err != nil {
			common.RespondError(c, common.ErrDatabaseError.Wrap(err))
			return
		}
		if len(result.Items) > 0 {
			resp.ShoppingListID = listID
		}
	}

	common.LogInfo("購物清單請求完成",
		zap.String("request_id", reqID),
		zap.String("user_id", req.UserID),
		zap.String("shopping_list_id", resp.ShoppingListID),
		zap.Int("items", len(resp.Items)),
	)
	c.JSON(http.StatusOK, resp)
}

// HandleGetList 讀回已儲存的購物清單
func (h *Handler) HandleGetList(c *gin.Context) {
	if h.repo == nil {
		common.RespondError(c, common.ErrServiceUnavailable)
		return
	}

	rows, err := h.repo.ListItems(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, database.ErrListNotFound):
		common.RespondError(c, common.ErrNotFound.Wrap(err))
		return
	case err != nil:
		common.RespondError(c, common.ErrDatabaseError.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shopping_list_id": c.Param("id"),
		"items":            rows,
	})
}

// HandleGetChecked 取得使用者的勾選狀態
func (h *Handler) HandleGetChecked(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		common.RespondError(c, common.NewValidationError("user_id", "is required"))
		return
	}

	state, err := h.store.Get(c.Request.Context(), userID)
	if err != nil {
		common.RespondError(c, common.ErrStoreError.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"checked": state,
	})
}

// HandleSetChecked 更新單一項目的勾選狀態，名稱先標準化
func (h *Handler) HandleSetChecked(c *gin.Context) {
	var req SetCheckedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	name := grocery.NormalizeName(req.ItemName)
	if name == "" {
		common.RespondError(c, common.NewValidationError("item_name", "is empty after normalization"))
		return
	}

	if err := h.store.Set(c.Request.Context(), req.UserID, name, req.IsChecked); err != nil {
		common.RespondError(c, common.ErrStoreError.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    req.UserID,
		"item_name":  name,
		"is_checked": req.IsChecked,
	})
}

// HandleNormalize 顯示單一食材的標準化結果
func (h *Handler) HandleNormalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	name := grocery.NormalizeName(req.Name)
	amount := grocery.ParseQuantity(req.Amount)
	unit := grocery.NormalizeRawUnit(req.Unit)

	c.JSON(http.StatusOK, NormalizeResponse{
		ItemName:        name,
		QuantityAmount:  amount,
		QuantityUnit:    unit,
		DisplayUnit:     grocery.DisplayUnitFor(unit, amount),
		GroceryCategory: grocery.Categorize(name),
	})
}

// HandleCategorize 批次分類，鍵為輸入名稱
func (h *Handler) HandleCategorize(c *gin.Context) {
	var req CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	categories := make(map[string]string, len(req.Names))
	for _, name := range req.Names {
		categories[name] = grocery.Categorize(grocery.NormalizeName(name))
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
