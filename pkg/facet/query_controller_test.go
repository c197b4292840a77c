package facet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/matst80/slask-facets/pkg/endpoint"
	"github.com/matst80/slask-facets/pkg/query"
	"github.com/matst80/slask-facets/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEndpoint struct {
	calls []*types.Query
	err   error
}

func (m *mockEndpoint) Search(ctx context.Context, q *types.Query) (*types.QueryResults, error) {
	m.calls = append(m.calls, q)
	if m.err != nil {
		return nil, m.err
	}
	return &types.QueryResults{SearchUid: q.SearchUid}, nil
}

type fakeQueryController struct {
	endpoint  *mockEndpoint
	lastQuery func() *types.Query
}

func (f *fakeQueryController) GetEndpoint() endpoint.SearchEndpoint {
	return f.endpoint
}

func (f *fakeQueryController) GetLastQuery() *types.Query {
	if f.lastQuery == nil {
		return nil
	}
	return f.lastQuery()
}

type fakeFacet struct {
	options *types.DynamicFacetOptions
	values  *ValueList
	qc      *fakeQueryController
}

func (f *fakeFacet) Options() *types.DynamicFacetOptions { return f.options }
func (f *fakeFacet) Values() Values                      { return f.values }
func (f *fakeFacet) QueryController() QueryController    { return f.qc }

func createFakeFacetValues(n int, state types.FacetValueState) []types.FacetValue {
	values := make([]types.FacetValue, n)
	for i := range values {
		values[i] = types.FacetValue{Value: fmt.Sprintf("fake value %d", i), State: state}
	}
	return values
}

type fixture struct {
	facet        *fakeFacet
	controller   *DynamicFacetQueryController
	queryBuilder *query.QueryBuilder
}

func newFixture(options types.DynamicFacetOptions, values []types.FacetValue) *fixture {
	options.Sanitize()
	f := &fixture{
		facet: &fakeFacet{
			options: &options,
			values:  NewValueList(values...),
			qc:      &fakeQueryController{endpoint: &mockEndpoint{}},
		},
		queryBuilder: query.NewQueryBuilder(),
	}
	f.controller = NewDynamicFacetQueryController(f.facet)
	f.facet.qc.lastQuery = f.queryBuilder.Build
	return f
}

func defaultFixture() *fixture {
	return newFixture(types.DynamicFacetOptions{Field: "@field"}, createFakeFacetValues(1, types.FacetValueIdle))
}

func TestPutsOneFacetRequestInQueryBuilder(t *testing.T) {
	f := defaultFixture()
	f.controller.PutFacetIntoQueryBuilder(f.queryBuilder)
	facets := f.queryBuilder.Build().Facets
	require.Len(t, facets, 1)
	assert.Equal(t, "field", facets[0].Field)
}

func TestSendsFieldWithoutSigil(t *testing.T) {
	f := defaultFixture()
	assert.Equal(t, "field", f.controller.FacetRequest().Field)
}

func TestSendsCurrentValues(t *testing.T) {
	values := createFakeFacetValues(3, types.FacetValueIdle)
	values[1].State = types.FacetValueExcluded
	f := newFixture(types.DynamicFacetOptions{Field: "@field"}, values)

	assert.Equal(t, values, f.controller.FacetRequest().CurrentValues)
}

func TestNumberOfValuesIsInitiallyTheOption(t *testing.T) {
	f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: 100}, createFakeFacetValues(1, types.FacetValueIdle))
	assert.Equal(t, 100, f.controller.FacetRequest().NumberOfValues)
}

func TestNumberOfValuesFallsBackToDefault(t *testing.T) {
	f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: -3}, nil)
	assert.Equal(t, types.DefaultNumberOfValues, f.controller.FacetRequest().NumberOfValues)
}

func TestNonIdleBelowRequestedSendsRequested(t *testing.T) {
	f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: 8}, createFakeFacetValues(5, types.FacetValueSelected))
	assert.Equal(t, 8, f.controller.FacetRequest().NumberOfValues)
}

func TestNonIdleAboveRequestedSendsNonIdleCount(t *testing.T) {
	f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: 3}, createFakeFacetValues(5, types.FacetValueSelected))
	req := f.controller.FacetRequest()
	assert.Equal(t, 5, req.NumberOfValues)
	assert.True(t, req.IsFieldExpanded)
}

func TestExcludedValuesCountAsNonIdle(t *testing.T) {
	values := append(createFakeFacetValues(2, types.FacetValueExcluded), types.FacetValue{Value: "sel", State: types.FacetValueSelected})
	f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: 2}, values)
	assert.Equal(t, 3, f.controller.FacetRequest().NumberOfValues)
}

func TestIncreaseNumberOfValuesToRequest(t *testing.T) {
	f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: 100}, createFakeFacetValues(1, types.FacetValueIdle))
	f.controller.IncreaseNumberOfValuesToRequest(100)
	assert.Equal(t, 200, f.controller.FacetRequest().NumberOfValues)
}

func TestIncreaseIsExactForAnyAmount(t *testing.T) {
	for _, k := range []int{0, 1, 7, 250} {
		f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: 10}, createFakeFacetValues(2, types.FacetValueSelected))
		before := f.controller.FacetRequest().NumberOfValues
		f.controller.IncreaseNumberOfValuesToRequest(k)
		assert.Equal(t, before+k, f.controller.FacetRequest().NumberOfValues, "k=%d", k)
	}
}

func TestIncreaseSaturatesInsteadOfWrapping(t *testing.T) {
	f := defaultFixture()
	f.controller.IncreaseNumberOfValuesToRequest(math.MaxInt)
	f.controller.IncreaseNumberOfValuesToRequest(math.MaxInt)

	req := f.controller.FacetRequest()
	assert.Equal(t, math.MaxInt, req.NumberOfValues)
	assert.True(t, req.IsFieldExpanded)

	f.controller.ResetNumberOfValuesToRequest()
	assert.Equal(t, types.DefaultNumberOfValues, f.controller.FacetRequest().NumberOfValues)
}

func TestResetNumberOfValuesToRequest(t *testing.T) {
	f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: 100}, createFakeFacetValues(1, types.FacetValueIdle))
	f.controller.IncreaseNumberOfValuesToRequest(100)
	f.controller.IncreaseNumberOfValuesToRequest(100)
	f.controller.ResetNumberOfValuesToRequest()

	req := f.controller.FacetRequest()
	assert.Equal(t, 100, req.NumberOfValues)
	assert.False(t, req.IsFieldExpanded)
}

func TestFreezeCurrentValuesFalseByDefault(t *testing.T) {
	f := defaultFixture()
	assert.False(t, f.controller.FacetRequest().FreezeCurrentValues)
}

func TestEnableFreezeCurrentValuesFlag(t *testing.T) {
	f := defaultFixture()
	f.controller.EnableFreezeCurrentValuesFlag()
	assert.True(t, f.controller.FacetRequest().FreezeCurrentValues)
	f.controller.ResetNumberOfValuesToRequest()
	assert.True(t, f.controller.FacetRequest().FreezeCurrentValues)
}

func TestFreezeCurrentValuesSendsCurrentValuesLength(t *testing.T) {
	f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: 25}, createFakeFacetValues(1, types.FacetValueIdle))
	f.controller.EnableFreezeCurrentValuesFlag()
	req := f.controller.FacetRequest()
	assert.Equal(t, len(req.CurrentValues), req.NumberOfValues)
}

func TestFreezeCurrentValuesFromOptions(t *testing.T) {
	f := newFixture(types.DynamicFacetOptions{Field: "@field", EnableFreezeCurrentValues: true}, createFakeFacetValues(4, types.FacetValueIdle))
	req := f.controller.FacetRequest()
	assert.True(t, req.FreezeCurrentValues)
	assert.Equal(t, 4, req.NumberOfValues)
}

func TestFrozenExpandedFlagUsesUnfrozenCount(t *testing.T) {
	f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: 5}, createFakeFacetValues(2, types.FacetValueIdle))
	f.controller.IncreaseNumberOfValuesToRequest(5)
	f.controller.EnableFreezeCurrentValuesFlag()
	req := f.controller.FacetRequest()
	assert.Equal(t, 2, req.NumberOfValues)
	assert.True(t, req.IsFieldExpanded)
}

func TestFreezeFacetOrderUndefinedByDefault(t *testing.T) {
	f := defaultFixture()
	f.controller.PutFacetIntoQueryBuilder(f.queryBuilder)
	assert.Nil(t, f.queryBuilder.Build().FacetOptions.FreezeFacetOrder)
}

func TestEnableFreezeFacetOrderFlag(t *testing.T) {
	f := defaultFixture()
	f.controller.EnableFreezeFacetOrderFlag()
	f.controller.PutFacetIntoQueryBuilder(f.queryBuilder)
	assert.True(t, f.queryBuilder.Build().FacetOptions.IsFacetOrderFrozen())
}

func TestMergeWithoutFreezeOrderKeepsExistingValue(t *testing.T) {
	f := defaultFixture()
	f.queryBuilder.FreezeFacetOrder()
	f.controller.PutFacetIntoQueryBuilder(f.queryBuilder)
	assert.True(t, f.queryBuilder.Build().FacetOptions.IsFacetOrderFrozen())
}

func TestIsFieldExpandedFalseByDefault(t *testing.T) {
	f := defaultFixture()
	assert.False(t, f.controller.FacetRequest().IsFieldExpanded)
}

func TestIsFieldExpandedWhenMoreValuesRequested(t *testing.T) {
	f := newFixture(types.DynamicFacetOptions{Field: "@field", NumberOfValues: 10}, createFakeFacetValues(1, types.FacetValueIdle))
	f.controller.IncreaseNumberOfValuesToRequest(10)
	assert.True(t, f.controller.FacetRequest().IsFieldExpanded)
}

func TestRequestIsComputedOnRead(t *testing.T) {
	f := defaultFixture()
	f.facet.values.Select("fake value 0")
	f.facet.options.NumberOfValues = 1
	req := f.controller.FacetRequest()
	assert.Equal(t, types.FacetValueSelected, req.CurrentValues[0].State)
	assert.True(t, req.IsFieldExpanded, "baseline option changed to 1, counter is still 8")
}

func TestRemergingOverwritesInPlace(t *testing.T) {
	other := newFixture(types.DynamicFacetOptions{Field: "@field2"}, nil)
	f := defaultFixture()
	other.controller.PutFacetIntoQueryBuilder(f.queryBuilder)
	f.controller.PutFacetIntoQueryBuilder(f.queryBuilder)
	before := f.queryBuilder.Facets()

	f.controller.IncreaseNumberOfValuesToRequest(8)
	f.controller.PutFacetIntoQueryBuilder(f.queryBuilder)
	after := f.queryBuilder.Facets()

	require.Len(t, after, 2)
	assert.Equal(t, "field2", after[0].Field)
	assert.Equal(t, "field", after[1].Field)
	assert.NotEqual(t, before[1].NumberOfValues, after[1].NumberOfValues)
}

func TestIsolatedQuerySendsZeroResults(t *testing.T) {
	f := defaultFixture()
	_, err := f.controller.ExecuteIsolatedQuery(context.Background())
	require.NoError(t, err)
	require.Len(t, f.facet.qc.endpoint.calls, 1)
	assert.Equal(t, 0, f.facet.qc.endpoint.calls[0].NumberOfResults)
}

func TestIsolatedQueryCreatesFacetRequests(t *testing.T) {
	f := defaultFixture()
	_, err := f.controller.ExecuteIsolatedQuery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.FacetRequest{f.controller.FacetRequest()}, f.facet.qc.endpoint.calls[0].Facets)
}

func TestIsolatedQueryAppendsToOtherFacets(t *testing.T) {
	f := defaultFixture()
	other := newFixture(types.DynamicFacetOptions{Field: "@field2"}, nil)
	other.controller.PutFacetIntoQueryBuilder(f.queryBuilder)

	_, err := f.controller.ExecuteIsolatedQuery(context.Background())
	require.NoError(t, err)

	want := []types.FacetRequest{f.queryBuilder.Facets()[0], f.controller.FacetRequest()}
	assert.Equal(t, want, f.facet.qc.endpoint.calls[0].Facets)
}

func TestIsolatedQueryOverwritesSameFacet(t *testing.T) {
	f := defaultFixture()
	f.controller.PutFacetIntoQueryBuilder(f.queryBuilder)
	original := f.controller.FacetRequest()

	f.controller.IncreaseNumberOfValuesToRequest(f.facet.options.NumberOfValues)
	_, err := f.controller.ExecuteIsolatedQuery(context.Background())
	require.NoError(t, err)

	updated := f.controller.FacetRequest()
	assert.NotEqual(t, original, updated)
	assert.Equal(t, []types.FacetRequest{updated}, f.facet.qc.endpoint.calls[0].Facets)
	assert.Len(t, f.queryBuilder.Facets(), 1, "the last query must not be modified")
	assert.Equal(t, original, f.queryBuilder.Facets()[0])
}

func TestIsolatedQueryWithoutLastQuery(t *testing.T) {
	f := defaultFixture()
	f.facet.qc.lastQuery = nil
	_, err := f.controller.ExecuteIsolatedQuery(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.facet.qc.endpoint.calls[0].Facets, 1)
}

func TestIsolatedQueryKeepsLastQueryParameters(t *testing.T) {
	f := defaultFixture()
	f.queryBuilder.Expression = "tv"
	f.queryBuilder.NumberOfResults = 40
	_, err := f.controller.ExecuteIsolatedQuery(context.Background())
	require.NoError(t, err)
	sent := f.facet.qc.endpoint.calls[0]
	assert.Equal(t, "tv", sent.Q)
	assert.Equal(t, 0, sent.NumberOfResults)
}

func TestIsolatedQueryPropagatesEndpointErrors(t *testing.T) {
	f := defaultFixture()
	boom := errors.New("unavailable")
	f.facet.qc.endpoint.err = boom
	_, err := f.controller.ExecuteIsolatedQuery(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, f.facet.qc.endpoint.calls, 1, "no retries")
}
