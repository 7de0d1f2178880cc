package grocery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawItem(name string, amount interface{}, unit string) GroceryListItem {
	return GroceryListItem{
		ItemName:       name,
		OriginalText:   name,
		QuantityAmount: ParseQuantity(amount),
		QuantityUnit:   NormalizeUnit(unit),
	}
}

func TestAggregate_Empty(t *testing.T) {
	out := Aggregate(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAggregate_GarlicCountsMerge(t *testing.T) {
	out := Aggregate([]GroceryListItem{
		rawItem("garlic cloves", "2", "cloves"),
		rawItem("garlic", "1", ""),
	})

	require.Len(t, out, 1)
	assert.Equal(t, "garlic", out[0].ItemName)
	require.NotNil(t, out[0].QuantityAmount)
	assert.InDelta(t, 3.0, *out[0].QuantityAmount, 1e-9)
	require.NotNil(t, out[0].QuantityUnit)
	assert.Equal(t, UnitEach, *out[0].QuantityUnit)
	assert.Nil(t, out[0].DisplayUnit)
	assert.Equal(t, "garlic cloves | garlic", out[0].OriginalText)
}

func TestAggregate_VolumeMergeUsesBestUnit(t *testing.T) {
	out := Aggregate([]GroceryListItem{
		rawItem("olive oil", "2", "tbsp"),
		rawItem("olive oil", "1/4", "cup"),
	})

	require.Len(t, out, 1)
	require.NotNil(t, out[0].QuantityAmount)
	assert.InDelta(t, 0.375, *out[0].QuantityAmount, 1e-6)
	assert.Equal(t, UnitCup, *out[0].QuantityUnit)
	assert.Equal(t, "cup", *out[0].DisplayUnit)

	tbsp, ok := Convert(*out[0].QuantityAmount, *out[0].QuantityUnit, UnitTbsp)
	require.True(t, ok)
	assert.InDelta(t, 6.0, tbsp, 1e-4)
}

func TestAggregate_DifferentWeightUnitsStaySeparate(t *testing.T) {
	out := Aggregate([]GroceryListItem{
		rawItem("chicken breast", "1", "lb"),
		rawItem("chicken breast", "8", "oz"),
	})

	require.Len(t, out, 2)
	assert.Equal(t, UnitPound, *out[0].QuantityUnit)
	assert.Equal(t, UnitOunce, *out[1].QuantityUnit)
	assert.InDelta(t, 1.0, *out[0].QuantityAmount, 1e-9)
	assert.InDelta(t, 8.0, *out[1].QuantityAmount, 1e-9)
}

func TestAggregate_CountAndVolumeKeepsExtraMeasure(t *testing.T) {
	out := Aggregate([]GroceryListItem{
		rawItem("shallots", "2", ""),
		rawItem("diced shallots", "1/2", "cup"),
		rawItem("shallot", "1", "each"),
		rawItem("shallots", "2", "tbsp"),
	})

	require.Len(t, out, 1)
	item := out[0]
	assert.Equal(t, "shallot", item.ItemName)
	assert.InDelta(t, 3.0, *item.QuantityAmount, 1e-9)
	require.Len(t, item.ExtraMeasures, 1)
	assert.Equal(t, UnitCup, item.ExtraMeasures[0].Unit)
	assert.InDelta(t, 0.625, item.ExtraMeasures[0].Amount, 1e-6)
	require.NotNil(t, item.ExtraMeasures[0].DisplayUnit)
	assert.Equal(t, "cup", *item.ExtraMeasures[0].DisplayUnit)
}

func TestAggregate_CountAndVolumeOutsideAllowList(t *testing.T) {
	out := Aggregate([]GroceryListItem{
		rawItem("tortilla", "2", "each"),
		rawItem("tortilla", "1", "cup"),
	})
	assert.Len(t, out, 2)
}

func TestAggregate_UnquantifiedItems(t *testing.T) {
	out := Aggregate([]GroceryListItem{
		rawItem("salt", "to taste", ""),
		rawItem("Salt", nil, ""),
		rawItem("salt", "1", "tsp"),
	})

	require.Len(t, out, 2)
	assert.Nil(t, out[0].QuantityAmount)
	assert.Nil(t, out[0].QuantityUnit)
	require.NotNil(t, out[1].QuantityAmount)
	assert.InDelta(t, 1.0, *out[1].QuantityAmount, 1e-9)
}

func TestAggregate_RepeatsSweepUntilStable(t *testing.T) {
	// tsp + tbsp 變成 tbsp 後，先前被跳過的無單位項目才能合併
	out := Aggregate([]GroceryListItem{
		rawItem("sesame seeds", "1", "tsp"),
		rawItem("sesame seeds", "1", ""),
		rawItem("sesame seeds", "1", "tbsp"),
	})

	require.Len(t, out, 1)
	assert.Equal(t, UnitTbsp, *out[0].QuantityUnit)
	assert.InDelta(t, 1.0/3+1+1, *out[0].QuantityAmount, 1e-5)
}

func TestAggregate_ConservesVolume(t *testing.T) {
	inputs := []GroceryListItem{
		rawItem("milk", "1", "cup"),
		rawItem("milk", "2", "tbsp"),
		rawItem("milk", "3", "tsp"),
		rawItem("milk", "100", "ml"),
	}
	var totalMl float64
	for _, in := range inputs {
		ml, ok := ToMilliliters(*in.QuantityAmount, *in.QuantityUnit)
		require.True(t, ok)
		totalMl += ml
	}

	out := Aggregate(inputs)
	require.Len(t, out, 1)
	gotMl, ok := ToMilliliters(*out[0].QuantityAmount, *out[0].QuantityUnit)
	require.True(t, ok)
	assert.InDelta(t, totalMl, gotMl, 1e-3)
}

func TestAggregate_MetricStaysMetric(t *testing.T) {
	out := Aggregate([]GroceryListItem{
		rawItem("stock", "750", "ml"),
		rawItem("stock", "0.5", "l"),
	})

	require.Len(t, out, 1)
	assert.Equal(t, UnitLiter, *out[0].QuantityUnit)
	assert.InDelta(t, 1.25, *out[0].QuantityAmount, 1e-9)
	assert.Equal(t, "liters", *out[0].DisplayUnit)
}

func TestAggregate_IsIdempotentAndComplete(t *testing.T) {
	inputs := []GroceryListItem{
		rawItem("garlic cloves", "2", "cloves"),
		rawItem("olive oil", "2", "tbsp"),
		rawItem("garlic", "1", ""),
		rawItem("olive oil", "1/4", "cup"),
		rawItem("chicken breast", "1", "lb"),
		rawItem("chicken breast", "8", "oz"),
		rawItem("salt", "to taste", ""),
		rawItem("onion", "1", ""),
		rawItem("onions", "1", "cup"),
		rawItem("", "1", "cup"),
	}
	inputs[0].SourceRecipeTitle = "Pasta"
	inputs[2].SourceRecipeTitle = "Salad"

	once := Aggregate(inputs)
	twice := Aggregate(once)
	assert.Equal(t, once, twice)

	for i := range once {
		for j := i + 1; j < len(once); j++ {
			assert.False(t, Mergeable(once[i], once[j]), "%s and %s still mergeable", once[i].ItemName, once[j].ItemName)
		}
	}

	require.Equal(t, "garlic", once[0].ItemName)
	assert.Equal(t, []string{"Pasta", "Salad"}, once[0].SourceRecipeTitles)
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	in := []GroceryListItem{
		rawItem("olive oil", "2", "tbsp"),
		rawItem("olive oil", "1/4", "cup"),
	}
	Aggregate(in)

	assert.Equal(t, "olive oil", in[0].ItemName)
	assert.InDelta(t, 2.0, *in[0].QuantityAmount, 1e-9)
	assert.Equal(t, UnitTbsp, *in[0].QuantityUnit)
}

func TestAggregate_NullsNeverBecomeAmounts(t *testing.T) {
	out := Aggregate([]GroceryListItem{
		{ItemName: "parsley"},
		{ItemName: "parsley", QuantityUnit: unitPtr(UnitEach)},
	})

	require.Len(t, out, 1)
	assert.Nil(t, out[0].QuantityAmount)
	assert.Equal(t, UnitEach, *out[0].QuantityUnit)
}

func TestAggregate_ColorSuffixMergesInOnePass(t *testing.T) {
	once := Aggregate([]GroceryListItem{
		rawItem("scallion whites", "2", ""),
		rawItem("scallion", "3", "each"),
		rawItem("leek whites", "1", ""),
		rawItem("leeks", "2", ""),
	})

	require.Len(t, once, 2)
	assert.Equal(t, "scallion", once[0].ItemName)
	assert.InDelta(t, 5.0, *once[0].QuantityAmount, 1e-9)
	assert.Equal(t, UnitEach, *once[0].QuantityUnit)
	assert.Equal(t, "leek", once[1].ItemName)
	assert.InDelta(t, 3.0, *once[1].QuantityAmount, 1e-9)

	assert.Equal(t, once, Aggregate(once))
	assert.False(t, Mergeable(once[0], once[1]))
}
