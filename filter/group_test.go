package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picklist/model"
)

func vfids(items []model.InventoryItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.VFID
	}
	return out
}

func TestFilterByGroup(t *testing.T) {
	items := []model.InventoryItem{
		{VFID: "1", Location: "A3"},
		{VFID: "2", Location: "A8"},
		{VFID: "3", Location: "B2"},
		{VFID: "4", Location: "AG-001"},
		{VFID: "5", Location: ""},
		{VFID: "6", Location: "A1"},
		{VFID: "7", Location: "C1"},
		{VFID: "8", Location: "A13"},
	}

	assert.Equal(t, []string{"6", "1", "5"}, vfids(FilterByGroup(items, model.FilterA1A6)))
	assert.Equal(t, []string{"2", "5"}, vfids(FilterByGroup(items, model.FilterA7A12)))
	assert.Equal(t, []string{"3", "4", "5"}, vfids(FilterByGroup(items, model.FilterBAG)))

	counts := GroupCounts(items)
	require.Len(t, counts, 3)
	assert.Equal(t, 3, counts[0].Count)
	assert.Equal(t, 2, counts[1].Count)
	assert.Equal(t, 3, counts[2].Count)
	assert.Equal(t, "Locations B/AG", counts[2].Title)
}

func TestSortByLocation(t *testing.T) {
	items := []model.InventoryItem{
		{VFID: "b10", Location: "B10"},
		{VFID: "a2x", Location: "A2"},
		{VFID: "none", Location: ""},
		{VFID: "a12", Location: "A12"},
		{VFID: "b1", Location: "B1"},
		{VFID: "a2y", Location: "a2"},
	}
	SortByLocation(items)
	assert.Equal(t, []string{"a2x", "a2y", "a12", "b1", "b10", "none"}, vfids(items))
}

func TestGroupFor(t *testing.T) {
	g, ok := GroupFor("A6R2")
	assert.True(t, ok)
	assert.Equal(t, model.FilterA1A6, g)

	g, ok = GroupFor("A12")
	assert.True(t, ok)
	assert.Equal(t, model.FilterA7A12, g)

	g, ok = GroupFor("AG")
	assert.True(t, ok)
	assert.Equal(t, model.FilterBAG, g)

	_, ok = GroupFor("Z9")
	assert.False(t, ok)
}

func TestParseFilterType(t *testing.T) {
	ft, err := ParseFilterType(" a7-a12 ")
	require.NoError(t, err)
	assert.Equal(t, model.FilterA7A12, ft)

	_, err = ParseFilterType("A13-A20")
	assert.Error(t, err)
}
