package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picklist/model"
)

func TestSummarize(t *testing.T) {
	items := []model.InventoryItem{
		{VFID: "1", Checked: true, OrdersCount: 1200},
		{VFID: "2", OrdersCount: 34, Notes: "  "},
		{VFID: "3", Notes: "bag", Location: "B2"},
	}
	s := Summarize(items)
	assert.Equal(t, model.Stats{Total: 3, Checked: 1, Remaining: 2, OrdersTotal: 1234}, s)

	d := BuildDashboard(items)
	assert.Equal(t, "1,234", d.OrdersTotalFmt)
	assert.Equal(t, 1, d.NotesCount)
	require.Len(t, d.Groups, 3)
	assert.Equal(t, 3, d.Groups[2].Count, "rows without location count in every group")
}

func TestClassifyBox(t *testing.T) {
	assert.Equal(t, "Bubble", ClassifyBox("BIG bubble wrap"), "bubble wins over big")
	assert.Equal(t, "Big", ClassifyBox("big box"))
	assert.Equal(t, "Small", ClassifyBox(" Small "))
	assert.Equal(t, "Bag", ClassifyBox("poly bag"))
	assert.Equal(t, "Large", ClassifyBox("large"))
	assert.Equal(t, "Medium", ClassifyBox("MEDIUM"))
	assert.Equal(t, "", ClassifyBox("fragile"))
	assert.Equal(t, "", ClassifyBox(""))
}

func TestBoxes(t *testing.T) {
	items := []model.InventoryItem{{VFID: "A"}, {VFID: "B"}, {VFID: "C"}, {VFID: "D"}}
	notes := []model.ItemNote{
		{VFID: "A", NoteContent: "small box", BoxType: "Small"},
		{VFID: "B", NoteContent: "bubble", BoxType: "Bubble"},
		{VFID: "C", NoteContent: "small", BoxType: "Small"},
		{VFID: "Z", NoteContent: "big", BoxType: "Big"},
		{VFID: "D", NoteContent: "n/a", BoxType: " "},
	}

	summary := Boxes(items, notes)
	assert.Equal(t, 4, summary.BasedOn)
	assert.Equal(t, 3, summary.TotalBoxes)
	require.Len(t, summary.Counts, len(BoxTypes))
	assert.Equal(t, model.BoxCount{Type: "Bubble", Count: 1}, summary.Counts[0])
	assert.Equal(t, model.BoxCount{Type: "Big", Count: 0}, summary.Counts[1])
	assert.Equal(t, model.BoxCount{Type: "Small", Count: 2}, summary.Counts[2])

	require.Len(t, summary.Requirements, 2)
	assert.Equal(t, model.BoxRequirement{BoxType: "Small", Count: 2, VFIDs: []string{"A", "C"}}, summary.Requirements[0])
	assert.Equal(t, "Bubble", summary.Requirements[1].BoxType)
}
