package facet

import (
	"slices"

	"github.com/matst80/slask-facets/pkg/types"
)

// Values is the ordered, read only list of values a facet currently shows.
type Values interface {
	All() []types.FacetValue
}

type ValueList struct {
	values []types.FacetValueResponse
}

func NewValueList(values ...types.FacetValue) *ValueList {
	l := &ValueList{values: make([]types.FacetValueResponse, 0, len(values))}
	for _, v := range values {
		l.values = append(l.values, types.FacetValueResponse{Value: v.Value, State: v.State})
	}
	return l
}

// CreateFromResponse replaces the list with the values of a facet response.
// Values that are selected or excluded locally but missing in the response are kept.
func (l *ValueList) CreateFromResponse(response types.FacetResponse) {
	kept := slices.DeleteFunc(slices.Clone(l.values), func(v types.FacetValueResponse) bool {
		if v.State.IsIdle() {
			return true
		}
		return slices.ContainsFunc(response.Values, func(r types.FacetValueResponse) bool {
			return r.Value == v.Value
		})
	})
	l.values = append(slices.Clone(response.Values), kept...)
}

func (l *ValueList) Len() int {
	return len(l.values)
}

func (l *ValueList) All() []types.FacetValue {
	ret := make([]types.FacetValue, len(l.values))
	for i, v := range l.values {
		state := v.State
		if state == "" {
			state = types.FacetValueIdle
		}
		ret[i] = types.FacetValue{Value: v.Value, State: state}
	}
	return ret
}

func (l *ValueList) Get(value string) (*types.FacetValueResponse, bool) {
	idx := slices.IndexFunc(l.values, func(v types.FacetValueResponse) bool {
		return v.Value == value
	})
	if idx < 0 {
		return nil, false
	}
	return &l.values[idx], true
}

func (l *ValueList) setState(value string, state types.FacetValueState) {
	if v, ok := l.Get(value); ok {
		v.State = state
		return
	}
	l.values = append(l.values, types.FacetValueResponse{Value: value, State: state})
}

func (l *ValueList) Select(value string) {
	l.setState(value, types.FacetValueSelected)
}

func (l *ValueList) Exclude(value string) {
	l.setState(value, types.FacetValueExcluded)
}
