package grocery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var nameCases = []struct {
	raw  string
	want string
}{
	{"Tomatoe", "tomato"},
	{"tomatoes", "tomato"},
	{"garlic cloves", "garlic"},
	{"Minced Garlic", "garlic"},
	{"cloves of garlic", "garlic"},
	{"garlic powder", "garlic powder"},
	{"Large Eggs", "egg"},
	{"egg whites", "egg white"},
	{"Extra-Virgin Olive Oil (EVOO)", "olive oil"},
	{"Jalapeño", "jalapeno"},
	{"green onions", "scallion"},
	{"spring onion", "scallion"},
	{"Fresh Basil", "fresh basil"},
	{"chopped fresh parsley", "fresh parsley"},
	{"ground beef", "ground beef"},
	{"ground cumin", "cumin"},
	{"flour", "all purpose flour"},
	{"All-Purpose Flour", "all purpose flour"},
	{"Onions, diced", "onion"},
	{"yellow onion", "onion"},
	{"red onion", "red onion"},
	{"tomatoes (canned)", "tomato"},
	{"fresh chopped herbs scallions", "scallion"},
	{"black beans", "black beans"},
	{"cherries", "cherry"},
	{"frozen blueberries", "frozen blueberries"},
	{"peaches", "peach"},
	{"potatoes", "potato"},
	{"garbanzo beans", "chickpeas"},
	{"confectioners' sugar", "powdered sugar"},
	{"coriander leaves", "cilantro"},
	{"bay leaves", "bay leaf"},
	{"chillies", "chili"},
	{"hummus", "hummus"},
	{"brussels sprouts", "brussels sprouts"},
	{"brown sugar", "brown sugar"},
	{"boneless skinless chicken breasts", "chicken breast"},
	{"fresh", "fresh"},
	{"Brocolli florets", "broccoli floret"},
	{"brocolli", "broccoli"},
	{"scallion whites", "scallion"},
	{"red peppers", "red pepper"},
	{"crushed red pepper", "crushed red pepper"},
	{"roasted red peppers", "roasted red pepper"},
	{"leek whites", "leek"},
	{"green onion whites", "scallion"},
	{"  ", ""},
	{"(optional)", ""},
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	for _, tt := range nameCases {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeName(tt.raw))
		})
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"red pepper flakes", "sun-dried tomatoes", "toasted pecans", "dried cranberries",
		"white wine vinegar", "pies", "cookies", "egg yolks", "kosher salt", "fresh chives",
		"Crème fraîche", "whole cloves", "lemons", "limes", "anchovies", "glasses",
		"scallion whites", "leek whites", "green onion whites", "collard greens",
		"Red Peppers", "large egg whites",
	}
	for _, tt := range nameCases {
		inputs = append(inputs, tt.raw)
	}

	for _, raw := range inputs {
		once := NormalizeName(raw)
		assert.Equal(t, once, NormalizeName(once), "input %q", raw)
	}
}

func TestSingularizeWord(t *testing.T) {
	assert.Equal(t, "berry", singularizeWord("berries"))
	assert.Equal(t, "pie", singularizeWord("pies"))
	assert.Equal(t, "tomato", singularizeWord("tomatoes"))
	assert.Equal(t, "dish", singularizeWord("dishes"))
	assert.Equal(t, "glass", singularizeWord("glasses"))
	assert.Equal(t, "citrus", singularizeWord("citrus"))
	assert.Equal(t, "gas", singularizeWord("gas"))
	assert.Equal(t, "onion", singularizeWord("onions"))
}
