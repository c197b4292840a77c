//go:build !stdjson

package jsoncompat

import (
	"io"

	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal proxies to sonic with encoding/json compatible settings.
func Marshal(v any) ([]byte, error) { return api.Marshal(v) }

// Unmarshal proxies to sonic with encoding/json compatible settings.
func Unmarshal(data []byte, v any) error { return api.Unmarshal(data, v) }

func Encode(w io.Writer, v any) error { return api.NewEncoder(w).Encode(v) }

func Decode(r io.Reader, v any) error { return api.NewDecoder(r).Decode(v) }
