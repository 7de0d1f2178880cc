package recipe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"grocery-aggregator/internal/core/grocery"
	"grocery-aggregator/internal/infrastructure/config"
	"grocery-aggregator/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source 食譜來源
type Source interface {
	FetchRecipes(ctx context.Context, ids []string) ([]grocery.RecipeIngredients, error)
}

// Client 食譜來源服務的 HTTP 客戶端
type Client struct {
	config config.RecipeSourceConfig
	client *resty.Client
}

// recipePayload 食譜來源服務回傳格式
type recipePayload struct {
	ID               string                    `json:"id"`
	Title            string                    `json:"title"`
	IngredientGroups []grocery.IngredientGroup `json:"ingredient_groups"`
}

// NewClient 建立食譜來源客戶端
func NewClient(cfg config.RecipeSourceConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "grocery-aggregator")

	common.LogInfo("食譜來源客戶端已初始化",
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("retries", cfg.Retries),
	)

	return &Client{
		config: cfg,
		client: client,
	}
}

// FetchRecipe 讀取單一食譜
func (c *Client) FetchRecipe(ctx context.Context, id string) (grocery.RecipeIngredients, error) {
	start := time.Now()
	recipe, err := c.fetch(ctx, id)
	common.LogRecipeFetch(id, time.Since(start), err)
	return recipe, err
}

func (c *Client) fetch(ctx context.Context, id string) (grocery.RecipeIngredients, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/recipes/{id}")
	if err != nil {
		return grocery.RecipeIngredients{}, common.ErrRecipeSourceError.Wrap(
			fmt.Errorf("failed to send request to recipe source: %w", err))
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return grocery.RecipeIngredients{}, common.ErrRecipeNotFound.Wrap(
			fmt.Errorf("recipe %s not found", id))
	case resp.StatusCode() != http.StatusOK:
		return grocery.RecipeIngredients{}, common.ErrRecipeSourceError.Wrap(
			fmt.Errorf("recipe source returned status %d for %s", resp.StatusCode(), id))
	}

	// 解析回應
	var payload recipePayload
	if err := common.ParseJSONBytes(resp.Body(), &payload); err != nil {
		return grocery.RecipeIngredients{}, common.ErrRecipeSourceError.Wrap(
			fmt.Errorf("failed to parse recipe %s: %w", id, err))
	}

	recipeID := payload.ID
	if recipeID == "" {
		recipeID = id
	}
	return grocery.RecipeIngredients{
		RecipeID:         recipeID,
		Title:            payload.Title,
		IngredientGroups: payload.IngredientGroups,
	}, nil
}

// FetchRecipes 併發讀取多份食譜，結果順序與輸入相同
//
// 任一份失敗即取消其餘請求並回傳第一個錯誤。
func (c *Client) FetchRecipes(ctx context.Context, ids []string) ([]grocery.RecipeIngredients, error) {
	results := make([]grocery.RecipeIngredients, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if c.config.MaxConcurrency > 0 {
		g.SetLimit(c.config.MaxConcurrency)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			recipe, err := c.FetchRecipe(gctx, id)
			if err != nil {
				return err
			}
			results[i] = recipe
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
