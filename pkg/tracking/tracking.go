package tracking

import (
	"github.com/matst80/slask-facets/pkg/types"
)

type BaseEvent struct {
	Country string `json:"country,omitempty"`
	Context string `json:"context,omitempty"`
	Event   uint16 `json:"event"`
}

// FacetSelection lists the active values of one facet in a tracked search.
type FacetSelection struct {
	Field    string   `json:"field"`
	Selected []string `json:"selected,omitempty"`
	Excluded []string `json:"excluded,omitempty"`
	Expanded bool     `json:"expanded,omitempty"`
}

type SearchEvent struct {
	*BaseEvent
	SearchUid       string           `json:"searchUid"`
	Query           string           `json:"query"`
	FirstResult     int              `json:"firstResult"`
	NumberOfResults int              `json:"numberOfResults"`
	TotalCount      int              `json:"totalCount"`
	Facets          []FacetSelection `json:"facets,omitempty"`
}

const searchEvent = 1

func facetSelections(facets []types.FacetRequest) []FacetSelection {
	ret := make([]FacetSelection, 0, len(facets))
	for _, f := range facets {
		sel := FacetSelection{Field: f.Field, Expanded: f.IsFieldExpanded}
		for _, v := range f.CurrentValues {
			switch v.State {
			case types.FacetValueSelected:
				sel.Selected = append(sel.Selected, v.Value)
			case types.FacetValueExcluded:
				sel.Excluded = append(sel.Excluded, v.Value)
			}
		}
		if len(sel.Selected) > 0 || len(sel.Excluded) > 0 || sel.Expanded {
			ret = append(ret, sel)
		}
	}
	return ret
}

func NewSearchEvent(base BaseEvent, q *types.Query, results *types.QueryResults) *SearchEvent {
	base.Event = searchEvent
	ev := &SearchEvent{
		BaseEvent:       &base,
		SearchUid:       q.SearchUid,
		Query:           q.Q,
		FirstResult:     q.FirstResult,
		NumberOfResults: q.NumberOfResults,
		Facets:          facetSelections(q.Facets),
	}
	if results != nil {
		ev.TotalCount = results.TotalCount
	}
	return ev
}
