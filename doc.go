// File: itcw/config/doc.go

// Package config resolves deployment settings for a containerized application
// from command-line overrides, discovered configuration files, the process
// environment and a catalogue of values derived from the git checkout.
//
// Features:
//   - Lazy discovery of *.env and *.ini files (plus *.toml and *.yaml on request)
//   - Strict, first-match-wins lookup order
//   - Per-call defaults and casts, with integer auto-detection
//   - A closed catalogue of derived keys (version, branch, tag name, project path, ...)
//   - Fallback from git-derived values to plain lookups outside a checkout
//   - Struct scanning, TOML/YAML dumps and provenance explanations
//   - Directory watching that rediscovers sources when files come and go
//
// Quick Start:
//
//	r := config.New(config.WithSearchPath("."))
//
//	port, err := r.Int("APP_PORT", config.Default(5000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tag, err := r.Value(config.AppTagName)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Lookup Order (highest to lowest):
//  1. Command-line overrides (KEY=value, --KEY=value)
//  2. Discovered files, in discovery order
//  3. Environment variables
//  4. Derived catalogue values
//  5. The per-call default
//  6. Registered defaults
//
// A key found nowhere fails with *UndefinedValueError.
//
// Derived Values:
// Catalogue keys accessed through Value or Attr bypass the lookup order and run
// their derivation directly. Derivations backed by git spawn a process on every
// access unless WithGitCache is set; when the search path is not inside a
// checkout they fall back to a lookup of the same key.
//
// Thread Safety:
// Source discovery runs once under a mutex and is repeated only after Reset.
// Lookups do not mutate shared state and may run concurrently.
package config
