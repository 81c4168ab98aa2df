package aggregation

import (
	"sort"
	"strings"

	"picklist/model"
)

// BoxTypes are the box kinds recognised in note text, in match priority order.
var BoxTypes = []string{"Bubble", "Big", "Small", "Bag", "Large", "Medium"}

// ClassifyBox returns the first box type named in the note, or "".
func ClassifyBox(note string) string {
	lower := strings.ToLower(strings.TrimSpace(note))
	if lower == "" {
		return ""
	}
	for _, t := range BoxTypes {
		if strings.Contains(lower, strings.ToLower(t)) {
			return t
		}
	}
	return ""
}

// BoxCounts counts the picklist rows per box type classified from the notes
// table. Every type is listed, including zero counts.
func BoxCounts(items []model.InventoryItem, notes []model.ItemNote) []model.BoxCount {
	byVFID := make(map[string]string)
	for _, n := range notes {
		if n.VFID == "" {
			continue
		}
		if t := ClassifyBox(n.NoteContent); t != "" {
			byVFID[n.VFID] = t
		}
	}

	counts := make(map[string]int, len(BoxTypes))
	for _, it := range items {
		if t, ok := byVFID[it.VFID]; ok {
			counts[t]++
		}
	}

	out := make([]model.BoxCount, len(BoxTypes))
	for i, t := range BoxTypes {
		out[i] = model.BoxCount{Type: t, Count: counts[t]}
	}
	return out
}

// BoxRequirements groups the picklist rows by their recorded box_type,
// largest group first.
func BoxRequirements(items []model.InventoryItem, notes []model.ItemNote) []model.BoxRequirement {
	byVFID := make(map[string]string)
	for _, n := range notes {
		bt := strings.TrimSpace(n.BoxType)
		if n.VFID == "" || bt == "" {
			continue
		}
		byVFID[n.VFID] = bt
	}

	groups := make(map[string]*model.BoxRequirement)
	for _, it := range items {
		bt, ok := byVFID[it.VFID]
		if !ok {
			continue
		}
		g, ok := groups[bt]
		if !ok {
			g = &model.BoxRequirement{BoxType: bt}
			groups[bt] = g
		}
		g.Count++
		g.VFIDs = append(g.VFIDs, it.VFID)
	}

	out := make([]model.BoxRequirement, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].BoxType < out[j].BoxType
	})
	return out
}

// Boxes builds the full box summary for the rows currently shown.
func Boxes(items []model.InventoryItem, notes []model.ItemNote) model.BoxSummary {
	counts := BoxCounts(items, notes)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return model.BoxSummary{
		Counts:       counts,
		TotalBoxes:   total,
		Requirements: BoxRequirements(items, notes),
		BasedOn:      len(items),
	}
}
