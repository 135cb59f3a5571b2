package model

import "time"

// HierarchyNode is an event reached while walking the parent links, with its
// distance from the root of the walk.
type HierarchyNode struct {
	Event
	Level int `json:"level"`
}

// Timeline is the hierarchy around one root event.
type Timeline struct {
	Root     *Event           `json:"-"`
	Parents  []*HierarchyNode `json:"parents"`
	Children []*HierarchyNode `json:"children"`
}

type SortField string

const (
	SortByStartDate SortField = "start_date"
	SortByEndDate   SortField = "end_date"
	SortByEventName SortField = "event_name"
)

// ParseSortField maps a query value to a sort column, falling back to start_date.
func ParseSortField(s string) SortField {
	switch SortField(s) {
	case SortByEndDate, SortByEventName:
		return SortField(s)
	}
	return SortByStartDate
}

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 100
)

// EventSearch filters and paginates events. Nil time bounds are ignored.
type EventSearch struct {
	NameContains   string
	StartAfter     *time.Time
	EndBefore      *time.Time
	Limit          int
	Offset         int
	SortBy         SortField
	SortDescending bool
}

type EventPage struct {
	Total  int      `json:"total_results"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	Events []*Event `json:"events"`
}

// OverlapPair is two events whose intervals intersect, ordered by event id.
type OverlapPair struct {
	First          *Event
	Second         *Event
	OverlapMinutes int
}

// NewOverlapPair computes the shared interval of a and b in whole minutes.
func NewOverlapPair(a, b *Event) *OverlapPair {
	start := a.StartDate
	if b.StartDate.After(start) {
		start = b.StartDate
	}
	end := a.EndDate
	if b.EndDate.Before(end) {
		end = b.EndDate
	}
	m := DurationMinutes(start, end)
	if m < 0 {
		m = 0
	}
	return &OverlapPair{First: a, Second: b, OverlapMinutes: m}
}
