package endpoint

import (
	"context"

	"github.com/matst80/slask-facets/pkg/types"
	"go.uber.org/zap"
)

type Tracker interface {
	TrackSearch(ctx context.Context, q *types.Query, results *types.QueryResults) error
}

// TrackingEndpoint reports full queries to analytics. Isolated facet queries are
// never reported so they are not counted as searches.
type TrackingEndpoint struct {
	next    SearchEndpoint
	tracker Tracker
	logger  *zap.Logger
}

func NewTrackingEndpoint(next SearchEndpoint, tracker Tracker, logger *zap.Logger) *TrackingEndpoint {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingEndpoint{next: next, tracker: tracker, logger: logger}
}

func (e *TrackingEndpoint) Search(ctx context.Context, q *types.Query) (*types.QueryResults, error) {
	res, err := e.next.Search(ctx, q)
	if err != nil || q.IsIsolatedFacetQuery() {
		return res, err
	}
	if terr := e.tracker.TrackSearch(ctx, q, res); terr != nil {
		e.logger.Warn("error sending search event", zap.String("searchUid", q.SearchUid), zap.Error(terr))
	}
	return res, nil
}
