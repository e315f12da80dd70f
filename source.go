// FILE: itcw/config/source.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SourceKind names where a value came from.
type SourceKind string

const (
	// SourceCLI represents KEY=value and --KEY=value command-line overrides
	SourceCLI SourceKind = "cli"
	// SourceFile represents a discovered configuration file
	SourceFile SourceKind = "file"
	// SourceEnv represents the process environment
	SourceEnv SourceKind = "env"
	// SourceComputed represents the derived-key catalogue
	SourceComputed SourceKind = "computed"
	// SourceDefault represents a per-call or registered default
	SourceDefault SourceKind = "default"
)

// Source supplies raw string values by key.
type Source interface {
	// Lookup returns the raw value of key and whether the source defines it.
	Lookup(key string) (string, bool, error)
	// Kind reports which kind of source this is.
	Kind() SourceKind
	// String names the source for logs and explanations.
	String() string
}

// cliSource holds overrides parsed from command-line arguments.
type cliSource struct {
	values map[string]string
}

func newCLISource(args []string) (*cliSource, error) {
	values, err := parseArgs(args)
	if err != nil {
		return nil, err
	}
	return &cliSource{values: values}, nil
}

func (s *cliSource) Lookup(key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *cliSource) Kind() SourceKind { return SourceCLI }

func (s *cliSource) String() string { return "cli" }

// parseArgs collects KEY=value, --KEY=value, --KEY value and bare --flag
// arguments. Other positional arguments (task names) are skipped.
func parseArgs(args []string) (map[string]string, error) {
	result := make(map[string]string)
	i := 0
	for i < len(args) {
		arg := args[i]

		var key, value string
		switch {
		case strings.HasPrefix(arg, "--"):
			content := strings.TrimPrefix(arg, "--")
			if content == "" {
				// "--" separator
				i++
				continue
			}
			if k, v, found := strings.Cut(content, "="); found {
				key, value = k, v
				i++
			} else if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") || strings.Contains(args[i+1], "=") {
				key, value = content, "true"
				i++
			} else {
				key, value = content, args[i+1]
				i += 2
			}

		case strings.Contains(arg, "=") && !strings.HasPrefix(arg, "-"):
			key, value, _ = strings.Cut(arg, "=")
			i++

		default:
			i++
			continue
		}

		if err := validateKey(key); err != nil {
			return nil, fmt.Errorf("invalid command-line argument %q: %w", arg, err)
		}
		result[key] = value
	}

	return result, nil
}

// envSource reads the process environment on every lookup.
type envSource struct {
	transform func(string) string
}

func newEnvSource() *envSource {
	return &envSource{transform: defaultEnvTransform}
}

func (s *envSource) Lookup(key string) (string, bool, error) {
	v, ok := os.LookupEnv(s.transform(key))
	return v, ok, nil
}

func (s *envSource) Kind() SourceKind { return SourceEnv }

func (s *envSource) String() string { return "env" }

// defaultEnvTransform maps a dotted key to an environment variable name:
// "server.port" becomes "SERVER_PORT". Keys without dots pass through unchanged.
func defaultEnvTransform(key string) string {
	if !strings.Contains(key, ".") {
		return key
	}
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// fileSource re-reads its file on every lookup so edits are observed without
// rediscovery.
type fileSource struct {
	path    string
	format  string
	maxSize int64
}

func newFileSource(path string, maxSize int64) (*fileSource, error) {
	format := detectFileFormat(path)
	if format == "" {
		return nil, fmt.Errorf("unsupported configuration file %s", path)
	}
	return &fileSource{path: path, format: format, maxSize: maxSize}, nil
}

func (s *fileSource) Lookup(key string) (string, bool, error) {
	values, err := s.load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Removed since discovery; Reset drops it.
			return "", false, nil
		}
		return "", false, err
	}

	if s.format == FormatINI {
		key = strings.ToLower(key)
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *fileSource) load() (map[string]string, error) {
	data, err := readFile(s.path, s.maxSize)
	if err != nil {
		return nil, err
	}
	values, err := parseFile(s.format, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return values, nil
}

func (s *fileSource) Kind() SourceKind { return SourceFile }

func (s *fileSource) String() string { return "file " + filepath.Base(s.path) }

// Path returns the absolute path of the backing file.
func (s *fileSource) Path() string { return s.path }
