package types

import (
	"strings"

	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
)

type FacetValueState string

const (
	FacetValueIdle     FacetValueState = "idle"
	FacetValueSelected FacetValueState = "selected"
	FacetValueExcluded FacetValueState = "excluded"
)

// ParseFacetValueState maps anything unknown to idle.
func ParseFacetValueState(s string) FacetValueState {
	switch FacetValueState(strings.ToLower(strings.TrimSpace(s))) {
	case FacetValueSelected:
		return FacetValueSelected
	case FacetValueExcluded:
		return FacetValueExcluded
	default:
		return FacetValueIdle
	}
}

func (s FacetValueState) IsIdle() bool {
	return s == FacetValueIdle || s == ""
}

func (s FacetValueState) MarshalJSON() ([]byte, error) {
	if s == "" {
		s = FacetValueIdle
	}
	return jsoncompat.Marshal(string(s))
}

func (s *FacetValueState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := jsoncompat.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseFacetValueState(raw)
	return nil
}

// UnmarshalText lets gorilla/schema decode states from query strings.
func (s *FacetValueState) UnmarshalText(text []byte) error {
	*s = ParseFacetValueState(string(text))
	return nil
}

// FacetValue is the transmitted part of a facet value.
type FacetValue struct {
	Value string          `json:"value" schema:"value"`
	State FacetValueState `json:"state" schema:"state"`
}

// FacetValueResponse is a value as returned by the search endpoint.
type FacetValueResponse struct {
	Value           string          `json:"value"`
	State           FacetValueState `json:"state"`
	NumberOfResults int             `json:"numberOfResults"`
}

type FacetResponse struct {
	Field      string               `json:"field"`
	FacetId    string               `json:"facetId,omitempty"`
	MoreValues bool                 `json:"moreValuesAvailable"`
	IndexScore float64              `json:"indexScore,omitempty"`
	Values     []FacetValueResponse `json:"values"`
}
