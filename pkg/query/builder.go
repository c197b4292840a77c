package query

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/matst80/slask-facets/pkg/types"
)

const DefaultNumberOfResults = 10

// QueryBuilder is the context shared by all contributors while a query is built.
// Facet requests are kept in insertion order with at most one entry per field.
type QueryBuilder struct {
	mu              sync.Mutex
	Expression      string
	AdvancedQuery   string
	Locale          string
	FirstResult     int
	NumberOfResults int
	facets          []types.FacetRequest
	facetOptions    types.FacetOptions
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		NumberOfResults: DefaultNumberOfResults,
		facets:          []types.FacetRequest{},
	}
}

// FromQuery seeds a builder with a previously built payload. A nil query gives an empty builder.
func FromQuery(q *types.Query) *QueryBuilder {
	qb := NewQueryBuilder()
	if q == nil {
		return qb
	}
	c := q.Clone()
	qb.Expression = c.Q
	qb.AdvancedQuery = c.Aq
	qb.Locale = c.Locale
	qb.FirstResult = c.FirstResult
	qb.NumberOfResults = c.NumberOfResults
	qb.facets = c.Facets
	qb.facetOptions = c.FacetOptions
	return qb
}

func (qb *QueryBuilder) indexOf(field string) int {
	return slices.IndexFunc(qb.facets, func(f types.FacetRequest) bool {
		return f.Field == field
	})
}

func (qb *QueryBuilder) FacetIndex(field string) int {
	qb.mu.Lock()
	defer qb.mu.Unlock()
	return qb.indexOf(types.FieldName(field))
}

// PutFacet replaces the request for the same field in place, or appends it.
func (qb *QueryBuilder) PutFacet(req types.FacetRequest) int {
	qb.mu.Lock()
	defer qb.mu.Unlock()
	req = req.Clone()
	if idx := qb.indexOf(req.Field); idx >= 0 {
		qb.facets[idx] = req
		return idx
	}
	qb.facets = append(qb.facets, req)
	return len(qb.facets) - 1
}

func (qb *QueryBuilder) Facets() []types.FacetRequest {
	qb.mu.Lock()
	defer qb.mu.Unlock()
	ret := make([]types.FacetRequest, len(qb.facets))
	for i, f := range qb.facets {
		ret[i] = f.Clone()
	}
	return ret
}

func (qb *QueryBuilder) FacetOptions() types.FacetOptions {
	qb.mu.Lock()
	defer qb.mu.Unlock()
	return qb.facetOptions.Clone()
}

// FreezeFacetOrder only ever sets the flag; merges never clear it.
func (qb *QueryBuilder) FreezeFacetOrder() {
	qb.mu.Lock()
	defer qb.mu.Unlock()
	v := true
	qb.facetOptions.FreezeFacetOrder = &v
}

func (qb *QueryBuilder) Build() *types.Query {
	qb.mu.Lock()
	defer qb.mu.Unlock()
	q := &types.Query{
		Q:               qb.Expression,
		Aq:              qb.AdvancedQuery,
		Locale:          qb.Locale,
		SearchUid:       uuid.NewString(),
		FirstResult:     qb.FirstResult,
		NumberOfResults: qb.NumberOfResults,
		Facets:          qb.facets,
		FacetOptions:    qb.facetOptions,
	}
	return q.Clone()
}
