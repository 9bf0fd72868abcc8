// Package mcputils converts loosely typed MCP tool arguments into Go structs.
package mcputils

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is an interface for getting arguments from a request
type ArgumentGetter interface {
	GetArguments() map[string]any
}

// CoerceBindArguments binds MCP request arguments to a target struct using its
// json tags. Clients often send every value as a string ("4", "true") or send
// integers as JSON floats; both are accepted. A fractional value for an
// integer field is an error rather than being truncated.
func CoerceBindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			wholeNumberHook,
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create argument decoder")
	}

	if err := decoder.Decode(request.GetArguments()); err != nil {
		return errors.Wrap(err, "invalid tool arguments")
	}
	return nil
}

// jsonStringHook decodes JSON-looking strings aimed at composite, bool or
// numeric fields.
func jsonStringHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Map, reflect.Struct:
		if (strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]")) ||
			(strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}")) {
			var result any
			if err := json.Unmarshal([]byte(raw), &result); err == nil {
				return result, nil
			}
		}
	case reflect.Bool:
		if raw == "true" || raw == "false" {
			return raw == "true", nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		var n json.Number
		if err := json.Unmarshal([]byte(raw), &n); err == nil {
			if num, err := n.Float64(); err == nil {
				return num, nil
			}
		}
	}
	return data, nil
}

// wholeNumberHook rejects fractional floats headed for integer fields.
func wholeNumberHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.Float64 && f.Kind() != reflect.Float32 {
		return data, nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := reflect.ValueOf(data).Float()
		if v != float64(int64(v)) {
			return nil, errors.Newf("expected a whole number, got %v", v)
		}
		return int64(v), nil
	}
	return data, nil
}
