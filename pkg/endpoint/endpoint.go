package endpoint

import (
	"context"
	"fmt"

	"github.com/matst80/slask-facets/pkg/types"
)

type SearchEndpoint interface {
	Search(ctx context.Context, q *types.Query) (*types.QueryResults, error)
}

// SearchFunc adapts a function to a SearchEndpoint.
type SearchFunc func(ctx context.Context, q *types.Query) (*types.QueryResults, error)

func (f SearchFunc) Search(ctx context.Context, q *types.Query) (*types.QueryResults, error) {
	return f(ctx, q)
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search endpoint responded with status %d: %s", e.StatusCode, e.Body)
}

func queryKind(q *types.Query) string {
	if q.IsIsolatedFacetQuery() {
		return "isolated"
	}
	return "full"
}
