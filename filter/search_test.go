package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"picklist/model"
)

func TestSearch(t *testing.T) {
	items := []model.InventoryItem{
		{ProductName: "Bubble Wrap", VFID: "VF001", SkuNumber: "4987123456789", Location: "A1"},
		{ProductName: "Tape", VFID: "VF002", SkuNumber: "04987000000012", Location: "B5", Checked: true},
	}

	assert.Len(t, Search(items, "  "), 2)
	assert.Equal(t, []string{"VF001"}, vfids(Search(items, "bubble")))
	assert.Len(t, Search(items, "vf00"), 2)
	assert.Equal(t, []string{"VF002"}, vfids(Search(items, "b5")))

	t.Run("GTIN-14 scan finds the EAN-13 SKU", func(t *testing.T) {
		assert.Equal(t, []string{"VF001"}, vfids(Search(items, "04987123456789")))
	})

	assert.Empty(t, Search(items, "nothing"))
}

func TestRemaining(t *testing.T) {
	items := []model.InventoryItem{
		{VFID: "1", Checked: true},
		{VFID: "2"},
	}
	assert.Equal(t, []string{"2"}, vfids(Remaining(items)))
}
