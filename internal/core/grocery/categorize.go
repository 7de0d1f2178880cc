package grocery

import "strings"

// 購物分類
const (
	CategorySpices     = "Spices & Herbs"
	CategoryMeat       = "Meat & Seafood"
	CategoryCondiments = "Condiments & Sauces"
	CategoryPantry     = "Pantry Staples"
	CategoryDairy      = "Dairy & Eggs"
	CategoryProduce    = "Produce"
	CategoryFrozen     = "Frozen"
	CategoryBakery     = "Bakery"
	CategoryOther      = "Other"
)

// CategoryOrder 分類排序（同時也是規則的評估順序）
var CategoryOrder = []string{
	CategorySpices,
	CategoryMeat,
	CategoryCondiments,
	CategoryPantry,
	CategoryDairy,
	CategoryProduce,
	CategoryFrozen,
	CategoryBakery,
	CategoryOther,
}

// categoryRule 分類規則，第一個符合的規則勝出
type categoryRule struct {
	category string
	words    []string // 任一單字符合
	phrases  []string // 任一連續詞組符合
	names    []string // 整個名稱完全相同
	require  []string // 必須同時含有的字
	exclude  []string // 含有任一字即不符合
}

var herbWords = []string{
	"basil", "oregano", "thyme", "rosemary", "sage", "dill", "parsley", "cilantro",
	"mint", "chive", "tarragon", "marjoram", "herb", "lemongrass",
}

var categoryRules = []categoryRule{
	// 香料：粉類與乾燥香料必須在蔬菜之前
	{
		category: CategorySpices,
		phrases: []string{
			"onion powder", "garlic powder", "chili powder", "curry powder", "mustard powder",
			"ginger powder", "black pepper", "white pepper", "ground pepper", "ground ginger",
			"red pepper flake", "crushed red pepper", "ground red pepper", "chili flake",
			"pepper flake", "cayenne pepper", "bay leaf",
			"mustard seed", "fennel seed", "celery seed", "cumin seed", "sesame seed",
			"garam masala", "italian seasoning", "taco seasoning", "old bay", "garlic salt",
			"onion salt", "celery salt", "sea salt", "kosher salt", "smoked paprika",
			"five spice", "chinese five spice", "herbes de provence",
		},
		words: []string{
			"salt", "peppercorn", "cumin", "paprika", "turmeric", "cinnamon", "nutmeg",
			"cardamom", "coriander", "allspice", "cayenne", "saffron", "seasoning",
			"spice", "sumac", "zaatar", "anise", "fenugreek", "msg",
		},
		names:   []string{"pepper", "ground mustard", "clove", "whole clove", "ground clove"},
		exclude: []string{"salted", "unsalted", "pork"},
	},
	{
		category: CategorySpices,
		words:    []string{"powder"},
		exclude:  []string{"baking", "cocoa", "protein", "milk"},
	},
	{
		category: CategorySpices,
		words:    herbWords,
		exclude:  []string{"fresh", "paste", "sauce"},
	},
	// 肉類與海鮮（高湯類排除）
	{
		category: CategoryMeat,
		phrases:  []string{"short rib", "ground beef", "ground turkey", "ground pork", "ground chicken", "ground lamb", "salt pork"},
		words: []string{
			"chicken", "beef", "pork", "turkey", "bacon", "sausage", "ham", "steak", "lamb",
			"veal", "duck", "salmon", "shrimp", "prawn", "tuna", "cod", "tilapia", "halibut",
			"fish", "crab", "lobster", "scallop", "mussel", "clam", "oyster", "anchovy",
			"prosciutto", "pancetta", "chorizo", "pepperoni", "salami", "brisket", "meatball",
			"sirloin", "tenderloin", "venison", "trout", "sardine", "squid", "octopus",
		},
		exclude: []string{"broth", "stock", "bouillon", "sauce", "seasoning", "paste", "flavored", "mushroom"},
	},
	// 醬料
	{
		category: CategoryCondiments,
		phrases:  []string{"hot sauce", "soy sauce", "fish sauce", "curry paste", "chili paste", "chili garlic sauce"},
		words: []string{
			"sauce", "ketchup", "mustard", "mayonnaise", "mayo", "vinegar", "salsa", "dressing",
			"relish", "sriracha", "worcestershire", "pesto", "hoisin", "aioli", "dijon", "miso",
			"chutney", "gochujang", "harissa", "marinara", "tamari", "teriyaki", "horseradish",
			"adobo",
		},
	},
	// 乾貨
	{
		category: CategoryPantry,
		phrases: []string{
			"tomato paste", "coconut milk", "coconut cream", "evaporated milk", "condensed milk",
			"bread crumb", "peanut butter", "almond butter", "almond milk", "oat milk",
			"cream of tartar", "baking soda", "baking powder", "canned tomato", "diced tomato",
			"crushed tomato", "tomato puree", "sun dried tomato",
		},
		words: []string{
			"flour", "sugar", "rice", "pasta", "spaghetti", "penne", "macaroni", "noodle",
			"linguine", "fettuccine", "lasagna", "orzo", "oil", "broth", "stock", "bouillon",
			"lentil", "chickpeas", "oat", "oats", "quinoa", "couscous", "honey", "syrup",
			"molasses", "yeast", "cornstarch", "cornmeal", "breadcrumb", "panko", "cocoa",
			"chocolate", "vanilla", "extract", "almond", "walnut", "pecan", "peanut", "cashew",
			"pistachio", "hazelnut", "nut", "raisin", "tahini", "cracker", "cereal", "granola",
			"wine", "gelatin", "canned", "polenta", "barley", "bulgur", "farro", "shortening",
		},
		// 香草冰淇淋之類留給冷凍
		exclude: []string{"ice"},
	},
	{
		category: CategoryPantry,
		words:    []string{"bean", "beans"},
		exclude:  []string{"green", "string", "fresh", "frozen", "sprout", "sprouts", "vanilla"},
	},
	// 乳製品與蛋
	{
		category: CategoryDairy,
		phrases:  []string{"half and half", "half & half", "sour cream", "cream cheese", "heavy cream"},
		words: []string{
			"milk", "butter", "cheese", "cream", "yogurt", "egg", "buttermilk", "parmesan",
			"mozzarella", "cheddar", "ricotta", "feta", "gouda", "brie", "mascarpone", "ghee",
			"provolone", "gruyere", "pecorino", "creme", "kefir",
		},
		exclude: []string{"ice", "frozen"},
	},
	// 新鮮香草歸蔬果
	{
		category: CategoryProduce,
		require:  []string{"fresh"},
		words:    append(append([]string{}, herbWords...), "ginger"),
	},
	{
		category: CategoryProduce,
		phrases: []string{
			"bell pepper", "red pepper", "green pepper", "yellow pepper", "orange pepper", "chipotle pepper",
			"sweet potato", "green bean", "string bean", "green onion", "bean sprout",
		},
		words: []string{
			"onion", "garlic", "shallot", "scallion", "leek", "tomato", "potato", "carrot",
			"celery", "lettuce", "spinach", "kale", "arugula", "cabbage", "broccoli",
			"cauliflower", "cucumber", "zucchini", "squash", "eggplant", "mushroom", "avocado",
			"lemon", "lime", "orange", "apple", "banana", "pear", "peach", "grape", "mango",
			"pineapple", "strawberry", "blueberry", "blueberries", "raspberry", "raspberries",
			"blackberries", "berries", "cherry", "jalapeno", "ginger", "corn", "pea", "peas",
			"radish", "beet", "asparagus", "chile", "chili", "sprouts", "greens", "fennel",
			"parsnip", "turnip", "yam", "okra", "artichoke", "melon", "watermelon", "kiwi",
			"plum", "apricot", "fig", "date", "cranberry", "cranberries", "pomegranate",
			"grapefruit", "herb", "bok", "chard", "romaine", "poblano", "serrano", "habanero",
		},
		exclude: []string{"frozen", "canned", "dried", "powder"},
	},
	// 冷凍
	{
		category: CategoryFrozen,
		phrases:  []string{"ice cream", "puff pastry", "phyllo dough"},
		words:    []string{"frozen", "popsicle", "sorbet", "ice"},
	},
	// 烘焙
	{
		category: CategoryBakery,
		phrases:  []string{"pie crust", "pizza dough", "english muffin"},
		words: []string{
			"bread", "bun", "roll", "bagel", "tortilla", "pita", "croissant", "baguette",
			"muffin", "brioche", "naan", "ciabatta", "focaccia", "sourdough", "cake",
		},
	},
}

// Categorize 依規則表決定分類，沒有符合的規則時回傳 Other
func Categorize(itemName string) string {
	name := cleanName(itemName)
	if name == "" {
		return CategoryOther
	}
	tokens := strings.Fields(name)
	singular := make([]string, len(tokens))
	for i, t := range tokens {
		singular[i] = singularizeWord(t)
	}

	singularName := strings.Join(singular, " ")

	for _, rule := range categoryRules {
		if rule.matches(name, singularName, tokens, singular) {
			return rule.category
		}
	}
	return CategoryOther
}

// CategoryRank 分類的排序位置，未知分類排在最後
func CategoryRank(category string) int {
	for i, c := range CategoryOrder {
		if c == category {
			return i
		}
	}
	return len(CategoryOrder)
}

func (r categoryRule) matches(name, singularName string, tokens, singular []string) bool {
	for _, ex := range r.exclude {
		if containsToken(tokens, singular, ex) {
			return false
		}
	}
	for _, req := range r.require {
		if !containsToken(tokens, singular, req) {
			return false
		}
	}
	for _, n := range r.names {
		if name == n || singularName == n {
			return true
		}
	}
	for _, w := range r.words {
		if containsToken(tokens, singular, w) {
			return true
		}
	}
	for _, p := range r.phrases {
		if containsPhrase(tokens, singular, strings.Fields(p)) {
			return true
		}
	}
	return false
}

func containsToken(tokens, singular []string, word string) bool {
	for i := range tokens {
		if tokens[i] == word || singular[i] == word {
			return true
		}
	}
	return false
}

// containsPhrase 連續詞組比對，每個位置接受原字或單數形式
func containsPhrase(tokens, singular, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		ok := true
		for k, p := range phrase {
			if tokens[i+k] != p && singular[i+k] != p && singularizeWord(p) != singular[i+k] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
