package types

import (
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

const (
	FieldSigil            = "@"
	DefaultNumberOfValues = 8
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// DynamicFacetOptions is the static configuration of one facet for a session.
type DynamicFacetOptions struct {
	Id                        string `json:"id,omitempty" schema:"id"`
	Title                     string `json:"title,omitempty" schema:"title"`
	Field                     string `json:"field" schema:"field"`
	NumberOfValues            int    `json:"numberOfValues" schema:"numberOfValues,default:8"`
	EnableFreezeCurrentValues bool   `json:"enableFreezeCurrentValues,omitempty" schema:"freezeCurrentValues"`
	EnableFreezeFacetOrder    bool   `json:"enableFreezeFacetOrder,omitempty" schema:"freezeFacetOrder"`
}

func (o *DynamicFacetOptions) Sanitize() {
	o.Field = strings.TrimSpace(o.Field)
	if o.NumberOfValues < 1 {
		o.NumberOfValues = DefaultNumberOfValues
	}
	if o.Id == "" {
		o.Id = FieldName(o.Field)
	}
}

// FieldName strips the leading sigil, if any.
func FieldName(field string) string {
	return strings.TrimPrefix(field, FieldSigil)
}

func DynamicFacetOptionsFromQuery(query url.Values) (*DynamicFacetOptions, error) {
	opts := &DynamicFacetOptions{NumberOfValues: DefaultNumberOfValues}
	err := decoder.Decode(opts, query)
	opts.Sanitize()
	return opts, err
}

// FacetRequest is what a single facet contributes to a query.
type FacetRequest struct {
	Field               string       `json:"field"`
	CurrentValues       []FacetValue `json:"currentValues"`
	NumberOfValues      int          `json:"numberOfValues"`
	FreezeCurrentValues bool         `json:"freezeCurrentValues"`
	IsFieldExpanded     bool         `json:"isFieldExpanded"`
}

func (r FacetRequest) Clone() FacetRequest {
	c := r
	c.CurrentValues = make([]FacetValue, len(r.CurrentValues))
	copy(c.CurrentValues, r.CurrentValues)
	return c
}

// FacetOptions is the query wide facet option bag.
type FacetOptions struct {
	FreezeFacetOrder *bool `json:"freezeFacetOrder,omitempty"`
}

func (o FacetOptions) Clone() FacetOptions {
	if o.FreezeFacetOrder == nil {
		return FacetOptions{}
	}
	v := *o.FreezeFacetOrder
	return FacetOptions{FreezeFacetOrder: &v}
}

func (o FacetOptions) IsFacetOrderFrozen() bool {
	return o.FreezeFacetOrder != nil && *o.FreezeFacetOrder
}

// FacetValuesFromQuery reads repeated value=<value>:<state> parameters.
// A missing state means idle.
func FacetValuesFromQuery(query url.Values) []FacetValue {
	values := make([]FacetValue, 0, len(query["value"]))
	for _, v := range query["value"] {
		value, state, _ := strings.Cut(v, ":")
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		values = append(values, FacetValue{Value: value, State: ParseFacetValueState(state)})
	}
	return values
}
