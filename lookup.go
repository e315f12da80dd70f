// FILE: itcw/config/lookup.go
package config

import (
	"errors"
	"fmt"
)

// LookupOption adjusts a single Get call.
type LookupOption func(*lookupOptions)

type lookupOptions struct {
	def        any
	hasDefault bool
	cast       CastFunc
}

// Default supplies the value returned when no source defines the key. A string
// default goes through the cast, if any.
func Default(v any) LookupOption {
	return func(o *lookupOptions) {
		o.def = v
		o.hasDefault = true
	}
}

// Cast converts found strings (and string defaults) instead of the integer
// auto-detection applied otherwise.
func Cast(fn CastFunc) LookupOption {
	return func(o *lookupOptions) {
		o.cast = fn
	}
}

func newLookupOptions(opts []LookupOption) lookupOptions {
	var o lookupOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// convert applies the cast to a raw string found in a source.
func (o lookupOptions) convert(key, raw string) (any, error) {
	if o.cast == nil {
		return autoInt(raw), nil
	}
	v, err := o.cast(raw)
	if err != nil {
		return nil, fmt.Errorf("cast %s: %w", key, err)
	}
	return v, nil
}

// convertValue applies the cast to defaults and derived values; only strings are cast.
func (o lookupOptions) convertValue(key string, v any) (any, error) {
	s, ok := v.(string)
	if !ok || o.cast == nil {
		return v, nil
	}
	return o.convert(key, s)
}

// Get resolves key in strict order: CLI overrides, discovered files, the
// environment, the derived catalogue, the call default, registered defaults.
// It fails with *UndefinedValueError when none of them define key.
func (r *Resolver) Get(key string, opts ...LookupOption) (any, error) {
	return r.resolve(key, true, newLookupOptions(opts))
}

// lookup is Get without the derived catalogue. Derivations use it for their
// fallbacks so a catalogue key never resolves through itself.
func (r *Resolver) lookup(key string, opts ...LookupOption) (any, error) {
	return r.resolve(key, false, newLookupOptions(opts))
}

func (r *Resolver) resolve(key string, computed bool, o lookupOptions) (any, error) {
	sources, err := r.Sources()
	if err != nil {
		return nil, err
	}

	for _, src := range sources {
		raw, ok, err := src.Lookup(key)
		if err != nil {
			return nil, fmt.Errorf("lookup %s in %s: %w", key, src, err)
		}
		if ok {
			r.logger.Debug("configuration value resolved", "key", key, "source", src.String())
			return o.convert(key, raw)
		}
	}

	if computed {
		if k, ok := ParseKey(key); ok {
			v, err := r.Value(k)
			switch {
			case err == nil:
				r.logger.Debug("configuration value resolved", "key", key, "source", string(SourceComputed))
				return o.convertValue(key, v)
			case !errors.Is(err, ErrUndefinedValue):
				return nil, err
			}
		}
	}

	if o.hasDefault {
		r.logger.Debug("configuration value defaulted", "key", key)
		return o.convertValue(key, o.def)
	}

	if def, ok := r.registeredDefault(key); ok {
		r.logger.Debug("configuration value defaulted", "key", key, "registered", true)
		return o.convertValue(key, def)
	}

	return nil, &UndefinedValueError{Key: key}
}

// Attr is attribute-style access: catalogue keys run their derivation, any
// other name is resolved with Get.
func (r *Resolver) Attr(name string) (any, error) {
	if k, ok := ParseKey(name); ok {
		return r.Value(k)
	}
	return r.Get(name)
}
