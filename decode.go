// FILE: itcw/config/decode.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// ScanTag is the struct tag naming the key a field is scanned from.
const ScanTag = "cfg"

// Scan fills the fields of the struct pointed to by target from the keys named
// in their `cfg` tags. Each key is resolved with Attr, so catalogue keys run
// their derivation. Undefined keys leave the field untouched; any other
// failure aborts the scan.
func (r *Resolver) Scan(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("scan target must be a non-nil pointer to struct, got %T", target)
	}

	values := make(map[string]any)
	for _, key := range scanKeys(rv.Elem().Type()) {
		v, err := r.Attr(key)
		if err != nil {
			if errors.Is(err, ErrUndefinedValue) {
				continue
			}
			return fmt.Errorf("scan %s: %w", key, err)
		}
		values[key] = v
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          ScanTag,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

// scanKeys lists the key names in the `cfg` tags of t's exported fields.
func scanKeys(t reflect.Type) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get(ScanTag)
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}

// decodeHook returns the composite hook for string to typed conversions.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}
