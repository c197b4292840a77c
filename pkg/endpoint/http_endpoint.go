package endpoint

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
	"github.com/matst80/slask-facets/pkg/types"
	"go.uber.org/zap"
)

const searchPath = "/rest/search/v2"

type HttpEndpoint struct {
	BaseUrl     string
	AccessToken string
	Client      *http.Client
	Logger      *zap.Logger
}

func NewHttpEndpoint(baseUrl, accessToken string, logger *zap.Logger) *HttpEndpoint {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HttpEndpoint{
		BaseUrl:     strings.TrimRight(baseUrl, "/"),
		AccessToken: accessToken,
		Client:      &http.Client{Timeout: 10 * time.Second},
		Logger:      logger,
	}
}

func (e *HttpEndpoint) Search(ctx context.Context, q *types.Query) (*types.QueryResults, error) {
	kind := queryKind(q)
	searchRequests.WithLabelValues(kind).Inc()
	start := time.Now()
	defer func() {
		searchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	res, err := e.search(ctx, q)
	if err != nil {
		searchErrors.WithLabelValues(kind).Inc()
		e.Logger.Warn("search failed", zap.String("kind", kind), zap.String("searchUid", q.SearchUid), zap.Error(err))
		return nil, err
	}
	e.Logger.Debug("search done",
		zap.String("kind", kind),
		zap.String("searchUid", q.SearchUid),
		zap.Int("facets", len(res.Facets)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (e *HttpEndpoint) search(ctx context.Context, q *types.Query) (*types.QueryResults, error) {
	body, err := jsoncompat.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseUrl+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.AccessToken)
	}
	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	var results types.QueryResults
	if err := jsoncompat.Decode(resp.Body, &results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return &results, nil
}
