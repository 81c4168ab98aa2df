// model/aggregation_types.go
package model

// Stats are the counters shown above every item table.
type Stats struct {
	Total       int `json:"total"`
	Checked     int `json:"checked"`
	Remaining   int `json:"remaining"`
	OrdersTotal int `json:"ordersTotal"`
}

// GroupCount is the number of rows that fall in one location group.
type GroupCount struct {
	Filter FilterType `json:"filter"`
	Title  string     `json:"title"`
	Count  int        `json:"count"`
}

// Dashboard is the home page summary.
type Dashboard struct {
	Stats          Stats        `json:"stats"`
	Groups         []GroupCount `json:"groups"`
	OrdersTotalFmt string       `json:"ordersTotalFormatted"`
	NotesCount     int          `json:"notesCount"`
}

// BoxCount is the number of picklist rows needing one box type.
type BoxCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// BoxRequirement groups picklist rows by the box_type recorded for them.
type BoxRequirement struct {
	BoxType string   `json:"boxType"`
	Count   int      `json:"count"`
	VFIDs   []string `json:"vfids"`
}

// BoxSummary is returned by the boxes endpoint.
type BoxSummary struct {
	Counts       []BoxCount       `json:"counts"`
	TotalBoxes   int              `json:"totalBoxes"`
	Requirements []BoxRequirement `json:"requirements"`
	BasedOn      int              `json:"basedOn"`
}
