package grocery

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"grocery-aggregator/internal/pkg/common"

	"go.uber.org/zap"
)

// BuildResult 購物清單建立結果
type BuildResult struct {
	Items        []GroceryListItem `json:"items"`
	RecipeTitles []string          `json:"recipe_titles"`
	Skipped      int               `json:"skipped"`
}

// BuildList 由多份食譜建立排序好的購物清單
func BuildList(recipes []RecipeIngredients) *BuildResult {
	result := &BuildResult{
		Items:        []GroceryListItem{},
		RecipeTitles: []string{},
	}

	items := make([]GroceryListItem, 0)
	for _, recipe := range recipes {
		contributed := false
		for _, group := range recipe.IngredientGroups {
			for _, ing := range group.Ingredients {
				item, ok := itemFromIngredient(recipe, ing)
				if !ok {
					result.Skipped++
					continue
				}
				items = append(items, item)
				contributed = true
			}
		}
		if contributed && strings.TrimSpace(recipe.Title) != "" {
			result.RecipeTitles = unionStrings(result.RecipeTitles, []string{recipe.Title})
		}
	}

	aggregated := Aggregate(items)
	for i := range aggregated {
		aggregated[i].GroceryCategory = stringPtr(Categorize(aggregated[i].ItemName))
		aggregated[i].IsChecked = false
	}

	sort.SliceStable(aggregated, func(i, j int) bool {
		ri := CategoryRank(*aggregated[i].GroceryCategory)
		rj := CategoryRank(*aggregated[j].GroceryCategory)
		if ri != rj {
			return ri < rj
		}
		return aggregated[i].ItemName < aggregated[j].ItemName
	})
	for i := range aggregated {
		aggregated[i].OrderIndex = i
	}
	result.Items = aggregated

	common.LogInfo("購物清單已建立",
		zap.Int("recipes", len(recipes)),
		zap.Int("ingredients", len(items)),
		zap.Int("items", len(aggregated)),
		zap.Int("skipped", result.Skipped),
	)
	return result
}

// itemFromIngredient 原始食材轉為清單項目，名稱為空時 ok 為 false
func itemFromIngredient(recipe RecipeIngredients, ing RawIngredient) (GroceryListItem, bool) {
	name := strings.TrimSpace(ing.Name)
	if NormalizeName(name) == "" {
		return GroceryListItem{}, false
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{rawText(ing.Amount), rawText(ing.Unit), name} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	item := GroceryListItem{
		ItemName:          name,
		OriginalText:      strings.Join(parts, " "),
		QuantityAmount:    ParseQuantity(ing.Amount),
		QuantityUnit:      NormalizeRawUnit(ing.Unit),
		RecipeID:          recipe.RecipeID,
		SourceRecipeTitle: recipe.Title,
	}
	if recipe.Title != "" {
		item.SourceRecipeTitles = []string{recipe.Title}
	}
	return item, true
}

// ApplyChecked 套用使用者的勾選狀態（以標準名稱為鍵）
func ApplyChecked(items []GroceryListItem, checked map[string]bool) []GroceryListItem {
	for i := range items {
		items[i].IsChecked = checked[items[i].ItemName]
	}
	return items
}

// FormatAmount 顯示用數量，最多兩位小數
func FormatAmount(amount *float64) string {
	if amount == nil {
		return ""
	}
	rounded := math.Round(*amount*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// ToStorageRows 轉成 shopping_list_items 資料列，勾選狀態一律為 false
func ToStorageRows(listID string, items []GroceryListItem) []StoredItem {
	rows := make([]StoredItem, 0, len(items))
	for _, item := range items {
		row := StoredItem{
			ShoppingListID:    listID,
			RecipeID:          item.RecipeID,
			SourceRecipeTitle: item.SourceRecipeTitle,
			ItemName:          item.ItemName,
			OriginalText:      item.OriginalText,
			DisplayUnit:       item.DisplayUnit,
			GroceryCategory:   item.GroceryCategory,
			IsChecked:         false,
			OrderIndex:        item.OrderIndex,
		}
		if item.QuantityAmount != nil {
			row.QuantityAmount = floatPtr(*item.QuantityAmount)
		}
		if item.QuantityUnit != nil {
			row.QuantityUnit = stringPtr(string(*item.QuantityUnit))
		}
		rows = append(rows, row)
	}
	return rows
}
