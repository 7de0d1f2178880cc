package grocery

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// unicodeFractions Unicode 分數字元對照表
var unicodeFractions = map[rune]float64{
	'¼': 1.0 / 4, // ¼
	'½': 1.0 / 2, // ½
	'¾': 3.0 / 4, // ¾
	'⅐': 1.0 / 7, // ⅐
	'⅑': 1.0 / 9, // ⅑
	'⅒': 1.0 / 10,
	'⅓': 1.0 / 3, // ⅓
	'⅔': 2.0 / 3, // ⅔
	'⅕': 1.0 / 5,
	'⅖': 2.0 / 5,
	'⅗': 3.0 / 5,
	'⅘': 4.0 / 5,
	'⅙': 1.0 / 6, // ⅙
	'⅚': 5.0 / 6, // ⅚
	'⅛': 1.0 / 8, // ⅛
	'⅜': 3.0 / 8, // ⅜
	'⅝': 5.0 / 8, // ⅝
	'⅞': 7.0 / 8, // ⅞
}

var (
	// 2-3、1.5 to 2、2–3
	rangePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(?:-|–|—|to)\s*(\d+(?:\.\d+)?)(?:\s|$|[a-z])`)
	// 1 1/2
	mixedPattern = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)`)
	// 1-1/2（以連字號分隔的帶分數，須在範圍之前比對）
	hyphenMixedPattern = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)\s*/\s*(\d+)`)
	// 1/2
	fractionPattern = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)`)
	// 2、1.5、.5
	decimalPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)`)
)

// ParseQuantity 解析數量，無法解析時回傳 nil
//
// 接受數值型別、json.Number 與字串（整數、小數、分數、帶分數、Unicode 分數、範圍）。
// 範圍取平均值；「to taste」「a pinch」等無數字文字回傳 nil。
func ParseQuantity(raw interface{}) *float64 {
	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return floatPtr(float64(v))
	case int32:
		return floatPtr(float64(v))
	case int64:
		return floatPtr(float64(v))
	case *float64:
		if v == nil {
			return nil
		}
		return finite(*v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return finite(f)
		}
		return parseQuantityText(v.String())
	case string:
		return parseQuantityText(v)
	case *string:
		if v == nil {
			return nil
		}
		return parseQuantityText(*v)
	}
	return nil
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// mixedNumber 整數加分數，分母為 0 時 ok 為 false
func mixedNumber(whole, num, denom string) (float64, bool) {
	w, _ := strconv.ParseFloat(whole, 64)
	n, _ := strconv.ParseFloat(num, 64)
	d, _ := strconv.ParseFloat(denom, 64)
	if d == 0 {
		return 0, false
	}
	return w + n/d, true
}

func parseQuantityText(raw string) *float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	// 分數斜線與全形斜線
	s = strings.NewReplacer("⁄", "/", "／", "/").Replace(s)

	if v, ok := parseUnicodeFraction(s); ok {
		return &v
	}

	if m := hyphenMixedPattern.FindStringSubmatch(s); m != nil {
		if v, ok := mixedNumber(m[1], m[2], m[3]); ok {
			return &v
		}
		return nil
	}

	if m := rangePattern.FindStringSubmatch(s); m != nil {
		low, _ := strconv.ParseFloat(m[1], 64)
		high, _ := strconv.ParseFloat(m[2], 64)
		avg := (low + high) / 2
		return &avg
	}

	if m := mixedPattern.FindStringSubmatch(s); m != nil {
		if v, ok := mixedNumber(m[1], m[2], m[3]); ok {
			return &v
		}
		return nil
	}

	if m := fractionPattern.FindStringSubmatch(s); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		denom, _ := strconv.ParseFloat(m[2], 64)
		if denom == 0 {
			return nil
		}
		v := num / denom
		return &v
	}

	if m := decimalPattern.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil
		}
		return &v
	}

	return nil
}

// parseUnicodeFraction 處理「½」「1½」「1 ½」
func parseUnicodeFraction(s string) (float64, bool) {
	runes := []rune(s)
	i := 0
	for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
		i++
	}
	whole := 0.0
	if i > 0 {
		whole, _ = strconv.ParseFloat(string(runes[:i]), 64)
	}
	j := i
	for j < len(runes) && runes[j] == ' ' {
		j++
	}
	if j < len(runes) {
		if frac, ok := unicodeFractions[runes[j]]; ok {
			return whole + frac, true
		}
	}
	return 0, false
}
