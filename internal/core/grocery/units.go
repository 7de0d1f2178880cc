package grocery

import (
	"math"
	"strings"
)

// unitAliases 單位別名對照表（小寫、去除句點後比對）
var unitAliases = map[string]Unit{
	// 茶匙
	"tsp": UnitTsp, "tsps": UnitTsp, "tspn": UnitTsp, "teaspoon": UnitTsp, "teaspoons": UnitTsp,
	"teaspoonful": UnitTsp, "teaspoonfuls": UnitTsp, "tea spoon": UnitTsp,
	// 湯匙
	"tbsp": UnitTbsp, "tbsps": UnitTbsp, "tbs": UnitTbsp, "tbl": UnitTbsp, "tbls": UnitTbsp,
	"tblsp": UnitTbsp, "tablespoon": UnitTbsp, "tablespoons": UnitTbsp, "tablespoonful": UnitTbsp,
	"tablespoonfuls": UnitTbsp, "table spoon": UnitTbsp,
	// 杯
	"cup": UnitCup, "cups": UnitCup, "c": UnitCup,
	// 液量盎司
	"fl oz": UnitFlOz, "floz": UnitFlOz, "fl_oz": UnitFlOz, "fluid ounce": UnitFlOz,
	"fluid ounces": UnitFlOz, "fl ounce": UnitFlOz, "fl ounces": UnitFlOz,
	"pint": UnitPint, "pints": UnitPint, "pt": UnitPint, "pts": UnitPint,
	"quart": UnitQuart, "quarts": UnitQuart, "qt": UnitQuart, "qts": UnitQuart,
	"gallon": UnitGallon, "gallons": UnitGallon, "gal": UnitGallon, "gals": UnitGallon,
	// 公制體積
	"ml": UnitMl, "mls": UnitMl, "milliliter": UnitMl, "milliliters": UnitMl,
	"millilitre": UnitMl, "millilitres": UnitMl, "cc": UnitMl,
	"l": UnitLiter, "liter": UnitLiter, "liters": UnitLiter, "litre": UnitLiter,
	"litres": UnitLiter, "lt": UnitLiter, "ltr": UnitLiter,
	// 重量
	"g": UnitGram, "gr": UnitGram, "gm": UnitGram, "gram": UnitGram, "grams": UnitGram,
	"gramme": UnitGram, "grammes": UnitGram,
	"kg": UnitKilogram, "kgs": UnitKilogram, "kilogram": UnitKilogram, "kilograms": UnitKilogram,
	"kilo": UnitKilogram, "kilos": UnitKilogram,
	"oz": UnitOunce, "ozs": UnitOunce, "ounce": UnitOunce, "ounces": UnitOunce,
	"lb": UnitPound, "lbs": UnitPound, "pound": UnitPound, "pounds": UnitPound, "#": UnitPound,
	// 計數
	"each": UnitEach, "ea": UnitEach, "whole": UnitEach, "count": UnitEach, "ct": UnitEach,
	"clove": UnitEach, "cloves": UnitEach,
	"head": UnitEach, "heads": UnitEach,
	"bunch": UnitEach, "bunches": UnitEach,
	"piece": UnitEach, "pieces": UnitEach, "pc": UnitEach, "pcs": UnitEach,
	"can": UnitEach, "cans": UnitEach, "tin": UnitEach, "tins": UnitEach,
	"box": UnitEach, "boxes": UnitEach,
	"pinch": UnitEach, "pinches": UnitEach,
	"dash": UnitEach, "dashes": UnitEach,
	"sprig": UnitEach, "sprigs": UnitEach,
	"stalk": UnitEach, "stalks": UnitEach,
	"slice": UnitEach, "slices": UnitEach,
	"stick": UnitEach, "sticks": UnitEach,
	"jar": UnitEach, "jars": UnitEach,
	"bag": UnitEach, "bags": UnitEach,
	"package": UnitEach, "packages": UnitEach, "pkg": UnitEach, "pkgs": UnitEach,
	"pack": UnitEach, "packs": UnitEach,
	"bottle": UnitEach, "bottles": UnitEach,
	"item": UnitEach, "items": UnitEach, "unit": UnitEach, "units": UnitEach,
	"large": UnitEach, "medium": UnitEach, "small": UnitEach,
}

// mlPerUnit 每單位對應的毫升數（美制）
var mlPerUnit = map[Unit]float64{
	UnitTsp:    4.92892159375,
	UnitTbsp:   14.78676478125,
	UnitFlOz:   29.5735295625,
	UnitCup:    236.5882365,
	UnitPint:   473.176473,
	UnitQuart:  946.352946,
	UnitGallon: 3785.411784,
	UnitMl:     1,
	UnitLiter:  1000,
}

// NormalizeUnit 將原始單位文字對應到標準單位，無法辨識時回傳 nil
func NormalizeUnit(raw string) *Unit {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	// 食譜慣例：大寫 T 是湯匙，小寫 t 是茶匙
	switch s {
	case "T", "T.", "Tb", "Tbs", "Tbsp", "TB":
		return unitPtr(UnitTbsp)
	case "t", "t.":
		return unitPtr(UnitTsp)
	}

	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Join(strings.Fields(s), " ")
	if u, ok := unitAliases[s]; ok {
		return unitPtr(u)
	}
	return nil
}

// NormalizeRawUnit 將 JSON 解出的原始單位（null、數字、字串）轉成標準單位
func NormalizeRawUnit(raw interface{}) *Unit {
	return NormalizeUnit(rawText(raw))
}

// UnitsCompatible 判斷兩個單位能否合併
//
// 依序：皆為 nil、each 配 nil、tbsp 配 nil、相同單位、皆為體積、皆為計數。
// 不同重量單位不合併。
func UnitsCompatible(a, b *Unit) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		u := a
		if u == nil {
			u = b
		}
		return *u == UnitEach || *u == UnitTbsp
	case *a == *b:
		return true
	case a.IsVolume() && b.IsVolume():
		return true
	case a.IsWeight() && b.IsWeight():
		return false
	case a.IsCount() && b.IsCount():
		return true
	}
	return false
}

// Convert 體積單位換算，非體積或跨類別時 ok 為 false
func Convert(amount float64, from, to Unit) (float64, bool) {
	if from == to {
		return amount, true
	}
	fromMl, ok := mlPerUnit[from]
	if !ok {
		return 0, false
	}
	toMl, ok := mlPerUnit[to]
	if !ok {
		return 0, false
	}
	return amount * fromMl / toMl, true
}

// ToMilliliters 轉成毫升
func ToMilliliters(amount float64, from Unit) (float64, bool) {
	return Convert(amount, from, UnitMl)
}

type displayRange struct {
	unit Unit
	min  float64
	max  float64
}

// 依序取第一個落在區間 [min, max) 的單位
var imperialPreferences = []displayRange{
	{UnitGallon, 1, math.Inf(1)},
	{UnitQuart, 1, 4},
	{UnitCup, 0.25, 4},
	{UnitTbsp, 1, 16},
	{UnitTsp, 0.125, 3},
}

var metricPreferences = []displayRange{
	{UnitLiter, 1, math.Inf(1)},
}

const rangeEpsilon = 1e-9

// BestVolumeUnit 依總毫升數選出最易讀的單位，回傳換算後的數量
func BestVolumeUnit(ml float64, metric bool) (float64, Unit) {
	prefs := imperialPreferences
	if metric {
		prefs = metricPreferences
	}
	for _, p := range prefs {
		v := ml / mlPerUnit[p.unit]
		if v >= p.min-rangeEpsilon && v < p.max-rangeEpsilon {
			return roundAmount(v), p.unit
		}
	}
	return roundAmount(ml), UnitMl
}

func isMetricVolume(u Unit) bool {
	return u == UnitMl || u == UnitLiter
}

// roundAmount 去除浮點誤差
func roundAmount(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// displayNames 單數與複數顯示名稱
var displayNames = map[Unit][2]string{
	UnitTsp:      {"tsp", "tsp"},
	UnitTbsp:     {"tbsp", "tbsp"},
	UnitCup:      {"cup", "cups"},
	UnitFlOz:     {"fl oz", "fl oz"},
	UnitPint:     {"pint", "pints"},
	UnitQuart:    {"quart", "quarts"},
	UnitGallon:   {"gallon", "gallons"},
	UnitMl:       {"ml", "ml"},
	UnitLiter:    {"liter", "liters"},
	UnitGram:     {"g", "g"},
	UnitKilogram: {"kg", "kg"},
	UnitOunce:    {"oz", "oz"},
	UnitPound:    {"lb", "lbs"},
}

// DisplayUnitFor 取得顯示用單位，each 與 nil 不顯示
func DisplayUnitFor(unit *Unit, amount *float64) *string {
	if unit == nil {
		return nil
	}
	names, ok := displayNames[*unit]
	if !ok {
		return nil
	}
	if amount != nil && *amount > 1 {
		return stringPtr(names[1])
	}
	return stringPtr(names[0])
}
