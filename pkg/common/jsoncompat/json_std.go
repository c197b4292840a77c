//go:build stdjson

package jsoncompat

import (
	"encoding/json"
	"io"
)

// Marshal proxies to the standard library json.Marshal when the stdjson build tag is present.
func Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal proxies to the standard library json.Unmarshal when the stdjson build tag is present.
func Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func Encode(w io.Writer, v any) error { return json.NewEncoder(w).Encode(v) }

func Decode(r io.Reader, v any) error { return json.NewDecoder(r).Decode(v) }
