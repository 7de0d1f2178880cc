package grocery

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Unit 標準化後的計量單位
type Unit string

// 體積單位
const (
	UnitTsp    Unit = "tsp"
	UnitTbsp   Unit = "tbsp"
	UnitCup    Unit = "cup"
	UnitFlOz   Unit = "fl_oz"
	UnitPint   Unit = "pint"
	UnitQuart  Unit = "quart"
	UnitGallon Unit = "gallon"
	UnitMl     Unit = "ml"
	UnitLiter  Unit = "liter"
)

// 重量單位
const (
	UnitGram     Unit = "g"
	UnitKilogram Unit = "kg"
	UnitOunce    Unit = "oz"
	UnitPound    Unit = "lb"
)

// UnitEach 計數單位，所有「顆、瓣、把、罐」都歸到這裡
const UnitEach Unit = "each"

// IsVolume 是否為體積單位
func (u Unit) IsVolume() bool {
	_, ok := mlPerUnit[u]
	return ok
}

// IsWeight 是否為重量單位
func (u Unit) IsWeight() bool {
	switch u {
	case UnitGram, UnitKilogram, UnitOunce, UnitPound:
		return true
	}
	return false
}

// IsCount 是否為計數單位
func (u Unit) IsCount() bool {
	return u == UnitEach
}

// Measure 無法與主數量合併的附加數量（例如 2 顆紅蔥頭 + 1/2 杯紅蔥頭）
type Measure struct {
	Amount      float64 `json:"amount"`
	Unit        Unit    `json:"unit"`
	DisplayUnit *string `json:"display_unit"`
}

// GroceryListItem 購物清單項目
type GroceryListItem struct {
	ItemName           string    `json:"item_name"`
	OriginalText       string    `json:"original_text"`
	QuantityAmount     *float64  `json:"quantity_amount"`
	QuantityUnit       *Unit     `json:"quantity_unit"`
	DisplayUnit        *string   `json:"display_unit"`
	GroceryCategory    *string   `json:"grocery_category"`
	IsChecked          bool      `json:"is_checked"`
	OrderIndex         int       `json:"order_index"`
	ExtraMeasures      []Measure `json:"extra_measures,omitempty"`
	RecipeID           string    `json:"recipe_id,omitempty"`
	SourceRecipeTitle  string    `json:"source_recipe_title,omitempty"`
	SourceRecipeTitles []string  `json:"source_recipe_titles,omitempty"`
}

// RawIngredient 食譜中的原始食材，數量與單位可能是 null、數字或自由文字
type RawIngredient struct {
	Name   string      `json:"name"`
	Amount interface{} `json:"amount"`
	Unit   interface{} `json:"unit"`
}

// IngredientGroup 食材分組（例如「醬汁」「麵團」）
type IngredientGroup struct {
	Name        string          `json:"name,omitempty"`
	Ingredients []RawIngredient `json:"ingredients"`
}

// RecipeIngredients 單一食譜的食材資料
type RecipeIngredients struct {
	RecipeID         string            `json:"recipe_id"`
	Title            string            `json:"title"`
	IngredientGroups []IngredientGroup `json:"ingredient_groups"`
}

// StoredItem shopping_list_items 資料列
type StoredItem struct {
	ShoppingListID    string   `json:"shopping_list_id"`
	RecipeID          string   `json:"recipe_id"`
	SourceRecipeTitle string   `json:"source_recipe_title"`
	ItemName          string   `json:"item_name"`
	OriginalText      string   `json:"original_text"`
	QuantityAmount    *float64 `json:"quantity_amount"`
	QuantityUnit      *string  `json:"quantity_unit"`
	DisplayUnit       *string  `json:"display_unit"`
	GroceryCategory   *string  `json:"grocery_category"`
	IsChecked         bool     `json:"is_checked"`
	OrderIndex        int      `json:"order_index"`
}

// rawText 將任意原始值轉成文字，nil 回傳空字串
func rawText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case *string:
		if t == nil {
			return ""
		}
		return strings.TrimSpace(*t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	}
	return ""
}

func unitPtr(u Unit) *Unit {
	return &u
}

func floatPtr(f float64) *float64 {
	return &f
}

func stringPtr(s string) *string {
	return &s
}
