package types

// Query is the payload sent to the search endpoint.
type Query struct {
	Q               string         `json:"q,omitempty"`
	Aq              string         `json:"aq,omitempty"`
	Locale          string         `json:"locale,omitempty"`
	SearchUid       string         `json:"searchUid,omitempty"`
	FirstResult     int            `json:"firstResult"`
	NumberOfResults int            `json:"numberOfResults"`
	Facets          []FacetRequest `json:"facets"`
	FacetOptions    FacetOptions   `json:"facetOptions"`
}

func (q *Query) Clone() *Query {
	if q == nil {
		return nil
	}
	c := *q
	c.Facets = make([]FacetRequest, len(q.Facets))
	for i, f := range q.Facets {
		c.Facets[i] = f.Clone()
	}
	c.FacetOptions = q.FacetOptions.Clone()
	return &c
}

// IsIsolatedFacetQuery reports whether the payload only asks for facet values.
func (q *Query) IsIsolatedFacetQuery() bool {
	return q.NumberOfResults == 0
}

type QueryResults struct {
	SearchUid  string          `json:"searchUid"`
	TotalCount int             `json:"totalCount"`
	Duration   int             `json:"duration"`
	Facets     []FacetResponse `json:"facets"`
}

func (r *QueryResults) FacetByField(field string) (*FacetResponse, bool) {
	if r == nil {
		return nil, false
	}
	name := FieldName(field)
	for i := range r.Facets {
		if r.Facets[i].Field == name {
			return &r.Facets[i], true
		}
	}
	return nil, false
}
