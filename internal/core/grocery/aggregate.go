package grocery

import (
	"strconv"
	"strings"

	"grocery-aggregator/internal/pkg/common"

	"go.uber.org/zap"
)

// originalTextSeparator 合併時原始文字的分隔符號
const originalTextSeparator = " | "

// countVolumeNames 同時可能以「顆」與「杯」計量的食材
var countVolumeNames = toSet(
	"shallot", "onion", "garlic", "scallion", "carrot", "celery", "bell pepper",
	"jalapeno", "mushroom", "lemon", "lime",
)

// Aggregate 合併同名且單位相容的項目
//
// 依標準名稱分組，組內反覆兩兩掃描直到沒有任何合併發生。
// 輸出順序為各組首次出現的順序，OrderIndex 由呼叫端指定。
func Aggregate(items []GroceryListItem) []GroceryListItem {
	out := make([]GroceryListItem, 0, len(items))
	if len(items) == 0 {
		return out
	}

	groups := make(map[string][]GroceryListItem)
	order := make([]string, 0)
	for i, item := range items {
		copied := cloneItem(item)
		key := NormalizeName(item.ItemName)
		if key == "" {
			// 無法正規化的名稱自成一組，不參與合併
			key = "\x00" + strconv.Itoa(i)
		} else {
			copied.ItemName = key
		}
		if len(copied.SourceRecipeTitles) == 0 && copied.SourceRecipeTitle != "" {
			copied.SourceRecipeTitles = []string{copied.SourceRecipeTitle}
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], copied)
	}

	for _, key := range order {
		for _, merged := range mergeGroup(groups[key]) {
			out = append(out, withDisplayUnits(merged))
		}
	}

	common.LogDebug("食材合併完成",
		zap.Int("input", len(items)),
		zap.Int("output", len(out)),
	)
	return out
}

// Mergeable 兩個項目是否會被合併
func Mergeable(a, b GroceryListItem) bool {
	name := NormalizeName(a.ItemName)
	if name == "" || name != NormalizeName(b.ItemName) {
		return false
	}
	a.ItemName = name
	b.ItemName = name
	_, ok := mergePair(a, b)
	return ok
}

// mergeGroup 同名項目的不動點合併
func mergeGroup(items []GroceryListItem) []GroceryListItem {
	pending := items
	for {
		merged := false
		processed := make([]bool, len(pending))
		result := make([]GroceryListItem, 0, len(pending))
		for i := range pending {
			if processed[i] {
				continue
			}
			acc := pending[i]
			for j := i + 1; j < len(pending); j++ {
				if processed[j] {
					continue
				}
				if next, ok := mergePair(acc, pending[j]); ok {
					acc = next
					processed[j] = true
					merged = true
				}
			}
			result = append(result, acc)
		}
		pending = result
		if !merged {
			return pending
		}
	}
}

// mergePair 嘗試把 b 併入 a，不修改輸入
func mergePair(a, b GroceryListItem) (GroceryListItem, bool) {
	if !UnitsCompatible(a.QuantityUnit, b.QuantityUnit) {
		return mergeCountVolume(a, b)
	}

	switch {
	case a.QuantityAmount == nil && b.QuantityAmount == nil:
		res := combineProvenance(a, b)
		if res.QuantityUnit == nil && b.QuantityUnit != nil {
			res.QuantityUnit = unitPtr(*b.QuantityUnit)
		}
		res = absorbExtras(res, b.ExtraMeasures)
		return res, true
	case a.QuantityAmount == nil || b.QuantityAmount == nil:
		// 有數量與無數量的項目不合併
		return a, false
	}

	amount, unit, ok := combineAmounts(*a.QuantityAmount, a.QuantityUnit, *b.QuantityAmount, b.QuantityUnit)
	if !ok {
		return a, false
	}
	res := combineProvenance(a, b)
	res.QuantityAmount = floatPtr(amount)
	res.QuantityUnit = unit
	res = absorbExtras(res, b.ExtraMeasures)
	return res, true
}

// combineAmounts 兩個數量相加，無法安全相加時 ok 為 false
func combineAmounts(a float64, ua *Unit, b float64, ub *Unit) (float64, *Unit, bool) {
	switch {
	case ua == nil && ub == nil:
		return a + b, nil, true
	case ua == nil:
		return a + b, unitPtr(*ub), true
	case ub == nil:
		return a + b, unitPtr(*ua), true
	case ua.IsVolume() && ub.IsVolume():
		amount, unit := sumVolumes(a, *ua, b, *ub)
		return amount, unitPtr(unit), true
	case *ua == *ub:
		return a + b, unitPtr(*ua), true
	}
	return 0, nil, false
}

// sumVolumes 換算成毫升後相加，再挑選顯示單位
func sumVolumes(a float64, ua Unit, b float64, ub Unit) (float64, Unit) {
	mlA, _ := ToMilliliters(a, ua)
	mlB, _ := ToMilliliters(b, ub)
	return BestVolumeUnit(mlA+mlB, isMetricVolume(ua) && isMetricVolume(ub))
}

// mergeCountVolume 計數與體積並存的食材：保留主數量，另一個記在附加數量
func mergeCountVolume(a, b GroceryListItem) (GroceryListItem, bool) {
	if _, ok := countVolumeNames[a.ItemName]; !ok {
		return a, false
	}
	if a.QuantityAmount == nil || b.QuantityAmount == nil || a.QuantityUnit == nil || b.QuantityUnit == nil {
		return a, false
	}
	ua, ub := *a.QuantityUnit, *b.QuantityUnit
	if !(ua.IsCount() && ub.IsVolume()) && !(ua.IsVolume() && ub.IsCount()) {
		return a, false
	}

	res := combineProvenance(a, b)
	res = absorbExtras(res, []Measure{{Amount: *b.QuantityAmount, Unit: ub}})
	res = absorbExtras(res, b.ExtraMeasures)
	return res, true
}

// absorbExtras 附加數量能併入主數量就併入，否則與相容的附加數量合併
func absorbExtras(item GroceryListItem, extras []Measure) GroceryListItem {
	for _, m := range extras {
		if item.QuantityAmount != nil && item.QuantityUnit != nil {
			base := *item.QuantityUnit
			if base == m.Unit && !base.IsVolume() {
				item.QuantityAmount = floatPtr(*item.QuantityAmount + m.Amount)
				continue
			}
			if base.IsVolume() && m.Unit.IsVolume() {
				amount, unit := sumVolumes(*item.QuantityAmount, base, m.Amount, m.Unit)
				item.QuantityAmount = floatPtr(amount)
				item.QuantityUnit = unitPtr(unit)
				continue
			}
		}
		item.ExtraMeasures = addMeasure(item.ExtraMeasures, m)
	}
	return item
}

func addMeasure(list []Measure, m Measure) []Measure {
	out := append([]Measure(nil), list...)
	for i, existing := range out {
		if existing.Unit == m.Unit && !m.Unit.IsVolume() {
			out[i].Amount = existing.Amount + m.Amount
			return out
		}
		if existing.Unit.IsVolume() && m.Unit.IsVolume() {
			amount, unit := sumVolumes(existing.Amount, existing.Unit, m.Amount, m.Unit)
			out[i].Amount = amount
			out[i].Unit = unit
			return out
		}
	}
	return append(out, Measure{Amount: m.Amount, Unit: m.Unit})
}

// combineProvenance 合併原始文字與來源食譜
func combineProvenance(a, b GroceryListItem) GroceryListItem {
	res := cloneItem(a)
	switch {
	case res.OriginalText == "":
		res.OriginalText = b.OriginalText
	case b.OriginalText != "":
		res.OriginalText = res.OriginalText + originalTextSeparator + b.OriginalText
	}
	res.SourceRecipeTitles = unionStrings(res.SourceRecipeTitles, b.SourceRecipeTitles)
	if res.SourceRecipeTitle == "" {
		res.SourceRecipeTitle = b.SourceRecipeTitle
	}
	if res.RecipeID == "" {
		res.RecipeID = b.RecipeID
	}
	res.IsChecked = res.IsChecked || b.IsChecked
	return res
}

// withDisplayUnits 重新計算顯示單位
func withDisplayUnits(item GroceryListItem) GroceryListItem {
	item.DisplayUnit = DisplayUnitFor(item.QuantityUnit, item.QuantityAmount)
	for i := range item.ExtraMeasures {
		m := &item.ExtraMeasures[i]
		m.DisplayUnit = DisplayUnitFor(unitPtr(m.Unit), floatPtr(m.Amount))
	}
	return item
}

func cloneItem(item GroceryListItem) GroceryListItem {
	out := item
	if item.QuantityAmount != nil {
		out.QuantityAmount = floatPtr(*item.QuantityAmount)
	}
	if item.QuantityUnit != nil {
		out.QuantityUnit = unitPtr(*item.QuantityUnit)
	}
	if item.DisplayUnit != nil {
		out.DisplayUnit = stringPtr(*item.DisplayUnit)
	}
	if item.GroceryCategory != nil {
		out.GroceryCategory = stringPtr(*item.GroceryCategory)
	}
	if item.ExtraMeasures != nil {
		out.ExtraMeasures = append([]Measure(nil), item.ExtraMeasures...)
	}
	if item.SourceRecipeTitles != nil {
		out.SourceRecipeTitles = append([]string(nil), item.SourceRecipeTitles...)
	}
	return out
}

func unionStrings(a, b []string) []string {
	out := append([]string(nil), a...)
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
