// FILE: itcw/config/cast.go
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// CastFunc converts a raw string into a typed value.
type CastFunc func(raw string) (any, error)

// Casts for use with Cast.
var (
	// AsString returns the raw string unchanged.
	AsString CastFunc = func(raw string) (any, error) { return raw, nil }

	// AsInt parses a base-10 integer.
	AsInt CastFunc = func(raw string) (any, error) {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		return n, nil
	}

	// AsFloat parses a 64-bit float.
	AsFloat CastFunc = func(raw string) (any, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", raw)
		}
		return f, nil
	}

	// AsBool accepts 1/true/yes/on/y/t and 0/false/no/off/n/f/"" in any case.
	AsBool CastFunc = func(raw string) (any, error) {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true", "yes", "on", "y", "t":
			return true, nil
		case "0", "false", "no", "off", "n", "f", "":
			return false, nil
		default:
			return nil, fmt.Errorf("invalid truth value %q", raw)
		}
	}

	// AsCSV splits on commas and trims each element. An empty string yields an empty list.
	AsCSV CastFunc = func(raw string) (any, error) {
		if strings.TrimSpace(raw) == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
)

// autoInt returns raw as an int when it is a base-10 integer, otherwise raw.
func autoInt(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}
