package tracking

import (
	"context"
	"time"

	"github.com/matst80/slask-facets/pkg/common"
	"github.com/matst80/slask-facets/pkg/types"
	"go.uber.org/zap"
)

type searchSender interface {
	TrackSearch(ctx context.Context, q *types.Query, results *types.QueryResults) error
}

type trackedSearch struct {
	query   *types.Query
	results *types.QueryResults
}

// QueuedTracking moves event publishing off the request path.
type QueuedTracking struct {
	queue   *common.QueueHandler[trackedSearch]
	timeout time.Duration
}

func NewQueuedTracking(sender searchSender, logger *zap.Logger) *QueuedTracking {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &QueuedTracking{timeout: 5 * time.Second}
	t.queue = common.NewQueueHandler(func(items []trackedSearch) {
		for _, item := range items {
			ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
			if err := sender.TrackSearch(ctx, item.query, item.results); err != nil {
				logger.Warn("error sending search event", zap.String("searchUid", item.query.SearchUid), zap.Error(err))
			}
			cancel()
		}
	}, 50, time.Second)
	return t
}

func (t *QueuedTracking) TrackSearch(_ context.Context, q *types.Query, results *types.QueryResults) error {
	return t.queue.Add(trackedSearch{query: q.Clone(), results: results})
}

func (t *QueuedTracking) Close() {
	t.queue.Close()
}
