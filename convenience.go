// FILE: itcw/config/convenience.go
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/itcw/config/git"
)

// Validate checks that every required key resolves. Missing keys are reported together.
func (r *Resolver) Validate(required ...string) error {
	var errs []error
	for _, key := range required {
		if _, err := r.Attr(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Explain describes where key resolves from and which lower-priority values it shadows.
func (r *Resolver) Explain(key string) string {
	var b strings.Builder

	type hit struct {
		from  string
		value string
	}
	var hits []hit

	sources, err := r.Sources()
	if err != nil {
		return fmt.Sprintf("%s: discovery failed: %v\n", key, err)
	}
	for _, src := range sources {
		raw, ok, err := src.Lookup(key)
		switch {
		case err != nil:
			hits = append(hits, hit{from: src.String(), value: "error: " + err.Error()})
		case ok:
			hits = append(hits, hit{from: src.String(), value: raw})
		}
	}

	if k, ok := ParseKey(key); ok {
		v, err := r.Value(k)
		if err != nil {
			if !errors.Is(err, ErrUndefinedValue) {
				hits = append(hits, hit{from: string(SourceComputed), value: "error: " + err.Error()})
			}
		} else {
			hits = append(hits, hit{from: string(SourceComputed), value: fmt.Sprint(v)})
		}
	}

	if def, ok := r.registeredDefault(key); ok {
		hits = append(hits, hit{from: "registered " + string(SourceDefault), value: fmt.Sprint(def)})
	}

	if len(hits) == 0 {
		fmt.Fprintf(&b, "%s is undefined\n", key)
		return b.String()
	}

	fmt.Fprintf(&b, "%s = %s (%s)\n", key, hits[0].value, hits[0].from)
	for _, h := range hits[1:] {
		fmt.Fprintf(&b, "  shadows %s = %s\n", h.from, h.value)
	}
	return b.String()
}

// Snapshot derives every catalogue key. Keys whose derivation fails are left
// out and their errors joined in the returned error.
func (r *Resolver) Snapshot() (map[string]any, error) {
	values := make(map[string]any)
	var errs []error

	for _, k := range Keys() {
		v, err := r.Value(k)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			continue
		}
		values[k.String()] = dumpValue(v)
	}
	return values, errors.Join(errs...)
}

// Dump writes Snapshot to w as "toml" or "yaml". The snapshot error, if any,
// is returned after the resolvable keys have been written.
func (r *Resolver) Dump(w io.Writer, format string) error {
	values, snapErr := r.Snapshot()

	switch format {
	case FormatTOML, "":
		if err := toml.NewEncoder(w).Encode(values); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(values); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported dump format %q", format)
	}

	return snapErr
}

// dumpValue converts derived values into shapes both encoders accept.
func dumpValue(v any) any {
	status, ok := v.(map[string]git.Submodule)
	if !ok {
		return v
	}
	out := make(map[string][]string, len(status))
	for path, sm := range status {
		out[path] = []string{sm.Revision, sm.State.String()}
	}
	return out
}
