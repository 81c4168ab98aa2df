// Package inventory serves the picklist API: item views, edits, uploads,
// dashboard counts and the notes export.
package inventory

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"picklist/filter"
	"picklist/model"
)

// View is the set of rows a page is showing and how it is titled.
type View struct {
	Title     string
	Items     []model.InventoryItem
	Highlight string
	// Narrowed is true when any filter other than the full list was applied.
	Narrowed bool
}

// Select applies the group, locations, remaining and q parameters in that
// order. The CLI builds the same parameters from its flags.
func Select(all []model.InventoryItem, q url.Values) (View, error) {
	v := View{Title: "Inventory", Items: all, Highlight: strings.TrimSpace(q.Get("highlight"))}

	if g := q.Get("group"); g != "" {
		ft, err := filter.ParseFilterType(g)
		if err != nil {
			return View{}, err
		}
		v.Items = filter.FilterByGroup(v.Items, ft)
		v.Title = filter.GroupTitle(ft)
		v.Narrowed = true
	}

	if bases := filter.ParseBases(q.Get("locations")); len(bases) > 0 {
		v.Items = filter.FilterByBases(v.Items, bases)
		v.Narrowed = true
		if q.Get("group") == "" {
			v.Title = "Locations " + strings.Join(bases, ", ")
		}
	}

	if remaining, _ := strconv.ParseBool(q.Get("remaining")); remaining {
		v.Items = filter.Remaining(v.Items)
		v.Title = "Remaining Items"
		v.Narrowed = true
	}

	if term := q.Get("q"); strings.TrimSpace(term) != "" {
		v.Items = filter.Search(v.Items, term)
		v.Narrowed = true
	}

	if v.Items == nil {
		v.Items = []model.InventoryItem{}
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONStatus(w, statusCode, map[string]string{"message": message})
}
