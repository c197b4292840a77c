package controller

import (
	"context"
	"sync"

	"github.com/matst80/slask-facets/pkg/endpoint"
	"github.com/matst80/slask-facets/pkg/query"
	"github.com/matst80/slask-facets/pkg/types"
	"go.uber.org/zap"
)

// Contributor puts its state into a query while it is being built.
type Contributor interface {
	PutStateIntoQueryBuilder(qb *query.QueryBuilder)
}

// ResponseHandler is notified with the results of every full query.
type ResponseHandler interface {
	HandleQueryResponse(results *types.QueryResults)
}

type QueryController struct {
	endpoint endpoint.SearchEndpoint
	logger   *zap.Logger
	mu       sync.RWMutex
	last     *types.Query

	// Prepare customises the builder before contributors run, e.g to set the expression.
	Prepare func(qb *query.QueryBuilder)
}

func NewQueryController(e endpoint.SearchEndpoint, logger *zap.Logger) *QueryController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryController{endpoint: e, logger: logger}
}

func (c *QueryController) GetEndpoint() endpoint.SearchEndpoint {
	return c.endpoint
}

// GetLastQuery returns a copy of the last executed query, or nil.
func (c *QueryController) GetLastQuery() *types.Query {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last.Clone()
}

func (c *QueryController) SetLastQuery(q *types.Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = q.Clone()
}

// CreateQueryBuilder runs every contributor against a fresh builder in a single pass.
func (c *QueryController) CreateQueryBuilder(contributors ...Contributor) *query.QueryBuilder {
	qb := query.NewQueryBuilder()
	if c.Prepare != nil {
		c.Prepare(qb)
	}
	for _, contributor := range contributors {
		contributor.PutStateIntoQueryBuilder(qb)
	}
	return qb
}

// ExecuteQuery builds, records and sends a full query. Contributors that are also
// ResponseHandlers receive the results.
func (c *QueryController) ExecuteQuery(ctx context.Context, contributors ...Contributor) (*types.QueryResults, error) {
	q := c.CreateQueryBuilder(contributors...).Build()
	c.SetLastQuery(q)
	c.logger.Debug("executing query",
		zap.String("searchUid", q.SearchUid),
		zap.Int("facets", len(q.Facets)),
		zap.Int("numberOfResults", q.NumberOfResults))

	res, err := c.endpoint.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, contributor := range contributors {
		if h, ok := contributor.(ResponseHandler); ok {
			h.HandleQueryResponse(res)
		}
	}
	return res, nil
}
