package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/matst80/slask-facets/pkg/common"
	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
	"github.com/matst80/slask-facets/pkg/controller"
	"github.com/matst80/slask-facets/pkg/endpoint"
	"github.com/matst80/slask-facets/pkg/facet"
	"github.com/matst80/slask-facets/pkg/query"
	"github.com/matst80/slask-facets/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	noProbes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskfacets_probes_total",
		Help: "The total number of isolated facet queries handled",
	})
	noSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskfacets_searches_total",
		Help: "The total number of full searches handled",
	})
	noRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskfacets_facet_requests_total",
		Help: "The total number of computed facet requests",
	})
)

// MaxIncrease bounds how many extra values one request may ask a facet for.
const MaxIncrease = 10000

// FacetState is the client side state of one facet.
type FacetState struct {
	Options             types.DynamicFacetOptions `json:"options"`
	Values              []types.FacetValue        `json:"values"`
	Increase            int                       `json:"increase,omitempty"`
	FreezeCurrentValues bool                      `json:"freezeCurrentValues,omitempty"`
	FreezeFacetOrder    bool                      `json:"freezeFacetOrder,omitempty"`
}

// ProbeRequest is the state of one facet together with the query it should be
// merged into.
type ProbeRequest struct {
	FacetState
	LastQuery *types.Query `json:"lastQuery,omitempty"`
}

type SearchRequest struct {
	Q               string       `json:"q"`
	FirstResult     int          `json:"firstResult"`
	NumberOfResults int          `json:"numberOfResults"`
	Facets          []FacetState `json:"facets"`
}

type ProbeResponse struct {
	Request types.FacetRequest  `json:"request"`
	Results *types.QueryResults `json:"results"`
}

// staticFacet serves a facet state received over http.
type staticFacet struct {
	options *types.DynamicFacetOptions
	values  facet.Values
	qc      facet.QueryController
}

func (f *staticFacet) Options() *types.DynamicFacetOptions { return f.options }

func (f *staticFacet) Values() facet.Values { return f.values }

func (f *staticFacet) QueryController() facet.QueryController { return f.qc }

type contributor struct {
	*facet.DynamicFacetQueryController
}

func (c contributor) PutStateIntoQueryBuilder(qb *query.QueryBuilder) {
	c.PutFacetIntoQueryBuilder(qb)
}

type Server struct {
	Endpoint endpoint.SearchEndpoint
	Logger   *zap.Logger
}

func New(e endpoint.SearchEndpoint, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Endpoint: e, Logger: logger}
}

func (s *Server) newController(qc facet.QueryController, opts types.DynamicFacetOptions, values []types.FacetValue) *facet.DynamicFacetQueryController {
	opts.Sanitize()
	return facet.NewDynamicFacetQueryController(&staticFacet{
		options: &opts,
		values:  facet.NewValueList(values...),
		qc:      qc,
	})
}

func checkIncrease(n int) error {
	if n < 0 || n > MaxIncrease {
		return common.BadRequest(fmt.Errorf("increase must be between 0 and %d, got %d", MaxIncrease, n))
	}
	return nil
}

func (s *Server) controllerFor(qc facet.QueryController, state FacetState) (*facet.DynamicFacetQueryController, error) {
	if err := checkIncrease(state.Increase); err != nil {
		return nil, err
	}
	c := s.newController(qc, state.Options, state.Values)
	c.IncreaseNumberOfValuesToRequest(state.Increase)
	if state.FreezeCurrentValues {
		c.EnableFreezeCurrentValuesFlag()
	}
	if state.FreezeFacetOrder {
		c.EnableFreezeFacetOrderFlag()
	}
	return c, nil
}

func (s *Server) HandleProbe(w http.ResponseWriter, r *http.Request) (any, error) {
	if r.Method != http.MethodPost {
		return nil, &common.HttpError{Status: http.StatusMethodNotAllowed, Err: errors.New("use POST")}
	}
	var req ProbeRequest
	if err := jsoncompat.Decode(r.Body, &req); err != nil {
		return nil, common.BadRequest(fmt.Errorf("decode probe: %w", err))
	}
	if req.Options.Field == "" {
		return nil, common.BadRequest(errors.New("options.field is required"))
	}
	qc := controller.NewQueryController(s.Endpoint, s.Logger)
	qc.SetLastQuery(req.LastQuery)
	c, err := s.controllerFor(qc, req.FacetState)
	if err != nil {
		return nil, err
	}
	noProbes.Inc()

	results, err := c.ExecuteIsolatedQuery(r.Context())
	if err != nil {
		return nil, err
	}
	return &ProbeResponse{Request: c.FacetRequest(), Results: results}, nil
}

func (s *Server) HandleFacetRequest(w http.ResponseWriter, r *http.Request) (any, error) {
	params := r.URL.Query()
	opts, err := types.DynamicFacetOptionsFromQuery(params)
	if err != nil {
		return nil, common.BadRequest(err)
	}
	if opts.Field == "" {
		return nil, common.BadRequest(errors.New("field is required"))
	}
	increase := 0
	if v := params.Get("increase"); v != "" {
		if increase, err = strconv.Atoi(v); err != nil {
			return nil, common.BadRequest(fmt.Errorf("increase: %w", err))
		}
		if err = checkIncrease(increase); err != nil {
			return nil, err
		}
	}
	noRequests.Inc()

	c := s.newController(controller.NewQueryController(s.Endpoint, s.Logger), *opts, types.FacetValuesFromQuery(params))
	c.IncreaseNumberOfValuesToRequest(increase)
	return c.FacetRequest(), nil
}

// HandleSearch runs a full query with every facet merged into one builder.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) (any, error) {
	if r.Method != http.MethodPost {
		return nil, &common.HttpError{Status: http.StatusMethodNotAllowed, Err: errors.New("use POST")}
	}
	var req SearchRequest
	if err := jsoncompat.Decode(r.Body, &req); err != nil {
		return nil, common.BadRequest(fmt.Errorf("decode search: %w", err))
	}
	qc := controller.NewQueryController(s.Endpoint, s.Logger)
	qc.Prepare = func(qb *query.QueryBuilder) {
		qb.Expression = req.Q
		qb.FirstResult = max(req.FirstResult, 0)
		if req.NumberOfResults > 0 {
			qb.NumberOfResults = req.NumberOfResults
		}
	}
	contributors := make([]controller.Contributor, 0, len(req.Facets))
	for _, state := range req.Facets {
		if state.Options.Field == "" {
			return nil, common.BadRequest(errors.New("facet options.field is required"))
		}
		c, err := s.controllerFor(qc, state)
		if err != nil {
			return nil, err
		}
		contributors = append(contributors, contributor{c})
	}
	noSearches.Inc()
	return qc.ExecuteQuery(r.Context(), contributors...)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/facets/probe", common.JsonHandler(s.Logger, s.HandleProbe))
	mux.HandleFunc("/facets/request", common.JsonHandler(s.Logger, s.HandleFacetRequest))
	mux.HandleFunc("/search", common.JsonHandler(s.Logger, s.HandleSearch))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
