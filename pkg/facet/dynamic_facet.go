package facet

import (
	"context"

	"github.com/matst80/slask-facets/pkg/query"
	"github.com/matst80/slask-facets/pkg/types"
)

// DynamicFacet is one facet on a search page: its options, the values it shows
// and the request builder deriving its part of the query.
type DynamicFacet struct {
	options         *types.DynamicFacetOptions
	values          *ValueList
	queryController QueryController
	controller      *DynamicFacetQueryController
}

func NewDynamicFacet(options types.DynamicFacetOptions, qc QueryController) *DynamicFacet {
	options.Sanitize()
	f := &DynamicFacet{
		options:         &options,
		values:          NewValueList(),
		queryController: qc,
	}
	f.controller = NewDynamicFacetQueryController(f)
	return f
}

func (f *DynamicFacet) Options() *types.DynamicFacetOptions {
	return f.options
}

func (f *DynamicFacet) Values() Values {
	return f.values
}

func (f *DynamicFacet) ValueList() *ValueList {
	return f.values
}

func (f *DynamicFacet) QueryController() QueryController {
	return f.queryController
}

func (f *DynamicFacet) PutStateIntoQueryBuilder(qb *query.QueryBuilder) {
	f.controller.PutFacetIntoQueryBuilder(qb)
}

func (f *DynamicFacet) HandleQueryResponse(results *types.QueryResults) {
	if response, ok := results.FacetByField(f.options.Field); ok {
		f.values.CreateFromResponse(*response)
	}
}

// ShowMoreValues asks for one more page of values with an isolated query.
func (f *DynamicFacet) ShowMoreValues(ctx context.Context) error {
	f.controller.IncreaseNumberOfValuesToRequest(f.options.NumberOfValues)
	return f.executeIsolatedQuery(ctx)
}

func (f *DynamicFacet) ShowLessValues(ctx context.Context) error {
	f.controller.ResetNumberOfValuesToRequest()
	return f.executeIsolatedQuery(ctx)
}

func (f *DynamicFacet) executeIsolatedQuery(ctx context.Context) error {
	results, err := f.controller.ExecuteIsolatedQuery(ctx)
	if err != nil {
		return err
	}
	f.HandleQueryResponse(results)
	return nil
}
