package facet

import (
	"context"

	"github.com/matst80/slask-facets/pkg/endpoint"
	"github.com/matst80/slask-facets/pkg/query"
	"github.com/matst80/slask-facets/pkg/types"
)

// QueryController is the part of the search page a facet talks to.
type QueryController interface {
	GetEndpoint() endpoint.SearchEndpoint
	GetLastQuery() *types.Query
}

// Facet is what the request builder reads from.
type Facet interface {
	Options() *types.DynamicFacetOptions
	Values() Values
	QueryController() QueryController
}

// DynamicFacetQueryController turns the state of one facet into a facet request
// and merges it into a shared QueryBuilder.
type DynamicFacetQueryController struct {
	facet               Facet
	numberOfValues      ValueCounter
	freezeCurrentValues bool
	freezeFacetOrder    bool
}

func NewDynamicFacetQueryController(facet Facet) *DynamicFacetQueryController {
	opts := facet.Options()
	return &DynamicFacetQueryController{
		facet:               facet,
		numberOfValues:      NewValueCounter(baseline(opts)),
		freezeCurrentValues: opts != nil && opts.EnableFreezeCurrentValues,
		freezeFacetOrder:    opts != nil && opts.EnableFreezeFacetOrder,
	}
}

func baseline(opts *types.DynamicFacetOptions) int {
	if opts == nil || opts.NumberOfValues < 1 {
		return types.DefaultNumberOfValues
	}
	return opts.NumberOfValues
}

func (c *DynamicFacetQueryController) IncreaseNumberOfValuesToRequest(n int) {
	c.numberOfValues.Increase(n)
}

// ResetNumberOfValuesToRequest goes back to the numberOfValues option, not to zero.
func (c *DynamicFacetQueryController) ResetNumberOfValuesToRequest() {
	c.numberOfValues.Reset(baseline(c.facet.Options()))
}

func (c *DynamicFacetQueryController) EnableFreezeCurrentValuesFlag() {
	c.freezeCurrentValues = true
}

func (c *DynamicFacetQueryController) EnableFreezeFacetOrderFlag() {
	c.freezeFacetOrder = true
}

func (c *DynamicFacetQueryController) currentValues() []types.FacetValue {
	values := c.facet.Values()
	if values == nil {
		return []types.FacetValue{}
	}
	return values.All()
}

// FacetRequest is computed from the current state on every call.
func (c *DynamicFacetQueryController) FacetRequest() types.FacetRequest {
	opts := c.facet.Options()
	field := ""
	if opts != nil {
		field = opts.Field
	}
	current := c.currentValues()
	nonIdle := 0
	for _, v := range current {
		if !v.State.IsIdle() {
			nonIdle++
		}
	}

	requested := max(c.numberOfValues.Value(), nonIdle)
	numberOfValues := requested
	if c.freezeCurrentValues {
		numberOfValues = len(current)
	}

	return types.FacetRequest{
		Field:               types.FieldName(field),
		CurrentValues:       current,
		NumberOfValues:      numberOfValues,
		FreezeCurrentValues: c.freezeCurrentValues,
		// compared before the freeze override, against the static option
		IsFieldExpanded: requested > baseline(opts),
	}
}

func (c *DynamicFacetQueryController) PutFacetIntoQueryBuilder(qb *query.QueryBuilder) {
	qb.PutFacet(c.FacetRequest())
	if c.freezeFacetOrder {
		qb.FreezeFacetOrder()
	}
}

// ExecuteIsolatedQuery sends a facet only query, built on top of the last executed
// query, that never asks for any result rows.
func (c *DynamicFacetQueryController) ExecuteIsolatedQuery(ctx context.Context) (*types.QueryResults, error) {
	qc := c.facet.QueryController()
	qb := query.FromQuery(qc.GetLastQuery())
	c.PutFacetIntoQueryBuilder(qb)
	payload := qb.Build()
	payload.NumberOfResults = 0
	return qc.GetEndpoint().Search(ctx, payload)
}
