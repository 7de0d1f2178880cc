package grocery

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parenPattern   = regexp.MustCompile(`\([^)]*\)?`)
	nonWordPattern = regexp.MustCompile(`[^a-z0-9& ]+`)
	herbPattern    = regexp.MustCompile(`^(?:fresh )?(?:chopped )?herbs (.+)$`)
)

// removableAdjectives 比對時可忽略的形容詞（做法、大小、顏色等）
var removableAdjectives = toSet(
	"fresh", "freshly", "chopped", "diced", "minced", "sliced", "grated", "shredded",
	"crushed", "ground", "large", "small", "medium", "big", "extra", "fine", "finely",
	"coarse", "coarsely", "roughly", "thinly", "thickly", "peeled", "seeded", "deseeded",
	"cubed", "halved", "quartered", "julienned", "trimmed", "rinsed", "drained", "melted",
	"softened", "cold", "warm", "chilled", "organic", "raw", "cooked", "boneless",
	"skinless", "dried", "toasted", "roasted", "packed", "loosely", "lightly", "beaten",
	"optional", "ripe",
	"red", "green", "yellow", "white", "black", "brown", "purple", "golden",
)

// preservedPhrases 整體是一種食材、不可拆掉形容詞的詞組（以單數形式比對）
var preservedPhrases = phraseSet(
	// 絞肉
	"ground beef", "ground turkey", "ground pork", "ground chicken", "ground lamb",
	"ground pepper", "ground black pepper", "ground ginger", "ground mustard",
	// 麵粉
	"all purpose flour",
	// 堅果、乾果
	"toasted pecan", "toasted almond", "toasted sesame oil", "toasted sesame seed",
	"dried cranberry", "dried apricot", "dried cherry", "dried fig", "sun dried tomato",
	"roasted red pepper", "cooked rice",
	// 顏色即品種
	"black pepper", "white pepper", "red pepper", "green pepper", "yellow pepper", "red pepper flake",
	"crushed red pepper", "ground red pepper",
	"red wine", "red wine vinegar", "white wine", "white wine vinegar", "white vinegar",
	"brown sugar", "brown rice", "black bean", "green bean", "green onion", "red onion",
	"green chile", "green chili", "red chili", "red chile",
	"red curry paste", "green curry paste", "white chocolate", "black olive", "green olive",
	// 新鮮香草
	"fresh basil", "fresh parsley", "fresh cilantro", "fresh thyme", "fresh rosemary",
	"fresh dill", "fresh mint", "fresh oregano", "fresh sage", "fresh chive",
	"fresh tarragon", "fresh ginger", "fresh mozzarella",
	// 蛋
	"egg white", "egg yolk",
)

// preSynonyms 去形容詞前先替換的整名同義詞
var preSynonyms = map[string]string{
	"extra virgin olive oil": "olive oil",
	"evoo":                   "olive oil",
	"virgin olive oil":       "olive oil",
}

// nameSynonyms 最後一步的整名同義詞，輸出必須是正規化的不動點
var nameSynonyms = map[string]string{
	"green onion":         "scallion",
	"spring onion":        "scallion",
	"garbanzo beans":      "chickpeas",
	"garbanzo bean":       "chickpeas",
	"chickpea":            "chickpeas",
	"confectioners sugar": "powdered sugar",
	"icing sugar":         "powdered sugar",
	"coriander leaf":      "cilantro",
	"bicarbonate of soda": "baking soda",
	"zucchini squash":     "zucchini",
}

// misspellings 單字拼寫修正
var misspellings = map[string]string{
	"tomatoe":         "tomato",
	"tomatos":         "tomato",
	"potatoe":         "potato",
	"potatos":         "potato",
	"parmesean":       "parmesan",
	"parmasan":        "parmesan",
	"jalepeno":        "jalapeno",
	"jalapeo":         "jalapeno",
	"brocolli":        "broccoli",
	"brocoli":         "broccoli",
	"zuchini":         "zucchini",
	"zuchinni":        "zucchini",
	"mozzarela":       "mozzarella",
	"mozarella":       "mozzarella",
	"cinammon":        "cinnamon",
	"cinnamin":        "cinnamon",
	"chilli":          "chili",
	"chilly":          "chili",
	"chily":           "chili",
	"yoghurt":         "yogurt",
	"cummin":          "cumin",
	"oregeno":         "oregano",
	"vinager":         "vinegar",
	"avacado":         "avocado",
	"worchestershire": "worcestershire",
	"worcester":       "worcestershire",
	"leave":           "leaf",
	"loave":           "loaf",
	"halve":           "half",
}

// pluralExceptions 名稱含有這些字時不做單數化
var pluralExceptions = []string{
	"beans", "peas", "eggs", "berries", "oats", "greens", "grits", "molasses",
	"hummus", "asparagus", "couscous", "citrus", "swiss", "brussels", "sprouts",
	"chickpeas",
}

// ieWords 以 ie 結尾的單數（pies → pie，而非 py）
var ieWords = toSet("pie", "cookie", "brownie", "smoothie", "veggie", "calorie", "hoagie")

// garlicCompanions 與 garlic 同時出現時可忽略的字
var garlicCompanions = toSet("clove", "cloves", "of", "head", "heads", "bulb", "bulbs")

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// maxNormalizePasses 正規化重複套用的上限
const maxNormalizePasses = 8

// NormalizeName 將食材名稱轉成比對用的標準名稱
//
// 規則會重複套用直到結果不再改變（"scallion whites" 第一次得到 "scallion white"，
// 第二次才拿掉顏色形容詞），因此 NormalizeName(NormalizeName(x)) == NormalizeName(x)。
func NormalizeName(raw string) string {
	s := cleanName(raw)
	for i := 0; i < maxNormalizePasses && s != ""; i++ {
		next := normalizePass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

// normalizePass 對已清理的名稱套用一次完整規則
func normalizePass(s string) string {
	if m := herbPattern.FindStringSubmatch(s); m != nil && !strings.HasPrefix(m[1], "de ") {
		s = m[1]
	}
	if v, ok := preSynonyms[s]; ok {
		s = v
	}

	words := stripAdjectives(strings.Fields(s))
	words = canonicalize(words)
	words = correctSpelling(words)
	words = singularizeLast(words)
	words = correctSpelling(words)

	s = strings.Join(words, " ")
	if v, ok := preSynonyms[s]; ok {
		s = v
	}
	if v, ok := nameSynonyms[s]; ok {
		s = v
	}
	return s
}

// cleanName 去除變音符號、括號、逗號後的說明與標點
func cleanName(raw string) string {
	s := norm.NFKC.String(raw)
	if folded, _, err := transform.String(diacriticFolder, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	s = parenPattern.ReplaceAllString(s, " ")
	if i := strings.Index(s, ","); i >= 0 && strings.TrimSpace(s[:i]) != "" {
		s = s[:i]
	}
	s = nonWordPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// stripAdjectives 移除未受保護的形容詞，全部被移除時保留原字
func stripAdjectives(words []string) []string {
	protected := make([]bool, len(words))
	for i := range words {
		for n := 3; n >= 2; n-- {
			if i+n > len(words) {
				continue
			}
			if _, ok := preservedPhrases[phraseKey(words[i:i+n])]; ok {
				for k := i; k < i+n; k++ {
					protected[k] = true
				}
				break
			}
		}
	}

	kept := make([]string, 0, len(words))
	for i, w := range words {
		if protected[i] {
			kept = append(kept, w)
			continue
		}
		if _, ok := removableAdjectives[w]; ok {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return words
	}
	return kept
}

// canonicalize 大蒜、雞蛋、麵粉的常見寫法統一
func canonicalize(words []string) []string {
	if hasWord(words, "garlic") && !hasWord(words, "powder") && !hasWord(words, "salt") {
		onlyGarlic := true
		for _, w := range words {
			if w == "garlic" {
				continue
			}
			if _, ok := garlicCompanions[w]; !ok {
				onlyGarlic = false
				break
			}
		}
		if onlyGarlic {
			return []string{"garlic"}
		}
	}

	last := words[len(words)-1]
	if last == "egg" || last == "eggs" {
		onlyEgg := true
		for _, w := range words[:len(words)-1] {
			if w != "whole" {
				onlyEgg = false
				break
			}
		}
		if onlyEgg {
			return []string{"egg"}
		}
	}
	if len(words) == 2 && words[0] == "egg" && (words[1] == "yolks" || words[1] == "whites") {
		return []string{"egg", strings.TrimSuffix(words[1], "s")}
	}

	switch strings.Join(words, " ") {
	case "flour", "ap flour", "plain flour", "all purpose flour", "allpurpose flour":
		return []string{"all", "purpose", "flour"}
	}
	return words
}

func correctSpelling(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		if fixed, ok := misspellings[w]; ok {
			out[i] = fixed
			continue
		}
		out[i] = w
	}
	return out
}

// singularizeLast 只對最後一個字做單數化
func singularizeLast(words []string) []string {
	name := strings.Join(words, " ")
	for _, ex := range pluralExceptions {
		if strings.Contains(name, ex) {
			return words
		}
	}
	out := append([]string(nil), words...)
	out[len(out)-1] = singularizeWord(out[len(out)-1])
	return out
}

// singularizeWord 英文複數轉單數的簡易規則
func singularizeWord(w string) string {
	if strings.HasSuffix(w, "ss") || strings.HasSuffix(w, "us") || !strings.HasSuffix(w, "s") {
		return w
	}
	var cand string
	switch {
	case strings.HasSuffix(w, "ies"):
		if _, ok := ieWords[w[:len(w)-1]]; ok {
			cand = w[:len(w)-1]
		} else {
			cand = w[:len(w)-3] + "y"
		}
	case strings.HasSuffix(w, "oes"):
		cand = w[:len(w)-2]
	case strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"),
		strings.HasSuffix(w, "xes"), strings.HasSuffix(w, "sses"):
		cand = w[:len(w)-2]
	default:
		cand = w[:len(w)-1]
	}
	if len(cand) < 3 {
		return w
	}
	return cand
}

// phraseKey 詞組比對鍵：每個字都轉單數並修正拼寫
func phraseKey(words []string) string {
	parts := make([]string, len(words))
	for i, w := range words {
		w = singularizeWord(w)
		if fixed, ok := misspellings[w]; ok {
			w = fixed
		}
		parts[i] = w
	}
	return strings.Join(parts, " ")
}

func phraseSet(phrases ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		set[phraseKey(strings.Fields(p))] = struct{}{}
	}
	return set
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func hasWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}
