// File: itcw/config/type.go
package config

import (
	"fmt"
	"reflect"
	"strconv"
)

// String resolves key with Get and converts the result to a string.
func (r *Resolver) String(key string, opts ...LookupOption) (string, error) {
	v, err := r.Get(key, opts...)
	if err != nil {
		return "", err
	}
	s, err := ToString(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

// Int resolves key with Get and converts the result to an int.
func (r *Resolver) Int(key string, opts ...LookupOption) (int, error) {
	v, err := r.Get(key, opts...)
	if err != nil {
		return 0, err
	}
	n, err := ToInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// Bool resolves key with Get and converts the result to a bool.
func (r *Resolver) Bool(key string, opts ...LookupOption) (bool, error) {
	v, err := r.Get(key, opts...)
	if err != nil {
		return false, err
	}
	b, err := ToBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// Float64 resolves key with Get and converts the result to a float64.
func (r *Resolver) Float64(key string, opts ...LookupOption) (float64, error) {
	v, err := r.Get(key, opts...)
	if err != nil {
		return 0, err
	}
	f, err := ToFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// ToString converts a resolved value to a string.
func ToString(val any) (string, error) {
	if val == nil {
		return "", nil
	}

	switch v := val.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), nil
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("cannot convert type %T to string", val)
	}
}

// ToInt converts a resolved value to an int. Floats are truncated, strings parsed.
func ToInt(val any) (int, error) {
	if val == nil {
		return 0, fmt.Errorf("cannot convert nil to int")
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > uint64(^uint(0)>>1) {
			return 0, fmt.Errorf("cannot convert %d (type %T) to int: overflow", u, val)
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		return int(v.Float()), nil
	case reflect.String:
		n, err := AsInt(v.String())
		if err != nil {
			return 0, err
		}
		return n.(int), nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to int", val)
}

// ToBool converts a resolved value to a bool. Numbers are true when non-zero;
// strings follow AsBool.
func ToBool(val any) (bool, error) {
	if val == nil {
		return false, nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0, nil
	case reflect.String:
		b, err := AsBool(v.String())
		if err != nil {
			return false, err
		}
		return b.(bool), nil
	}

	return false, fmt.Errorf("cannot convert type %T to bool", val)
}

// ToFloat64 converts a resolved value to a float64.
func ToFloat64(val any) (float64, error) {
	if val == nil {
		return 0, fmt.Errorf("cannot convert nil to float64")
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.String:
		f, err := AsFloat(v.String())
		if err != nil {
			return 0, err
		}
		return f.(float64), nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to float64", val)
}
