package core

import "net/url"

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TaskFilters parameterizes a task list fetch. Empty values mean
// "filter not applied" and are never transmitted.
type TaskFilters struct {
	Priority  Priority
	SortOrder SortOrder
	Search    string
}

func DefaultFilters() TaskFilters {
	return TaskFilters{SortOrder: SortDesc}
}

// FilterPatch merges into an existing filter set; nil fields are kept as is.
type FilterPatch struct {
	Priority  *Priority
	SortOrder *SortOrder
	Search    *string
}

func (p FilterPatch) apply(f TaskFilters) TaskFilters {
	if p.Priority != nil {
		f.Priority = *p.Priority
	}
	if p.SortOrder != nil {
		f.SortOrder = *p.SortOrder
	}
	if p.Search != nil {
		f.Search = *p.Search
	}
	return f
}

// Values builds the outgoing query parameters. Keys with an empty value
// are omitted entirely, which keeps "no filter" distinct from a filter
// on the empty string.
func (f TaskFilters) Values() url.Values {
	v := url.Values{}
	if f.Priority != "" {
		v.Set("priority", string(f.Priority))
	}
	if f.SortOrder != "" {
		v.Set("sortOrder", string(f.SortOrder))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	return v
}
