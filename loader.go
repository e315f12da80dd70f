// FILE: itcw/config/loader.go
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// File formats understood by file sources.
const (
	FormatEnv  = "env"
	FormatINI  = "ini"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// iniSection is the only section of an ini file that is read.
const iniSection = "settings"

// detectFileFormat maps a file extension to a format name, "" when unknown.
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".env":
		return FormatEnv
	case ".ini":
		return FormatINI
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// readFile reads path, refusing anything larger than limit bytes.
func readFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, limit)
	}
	return data, nil
}

// parseFile decodes data in the given format into a flat key to raw string map.
func parseFile(format string, data []byte) (map[string]string, error) {
	switch format {
	case FormatEnv:
		return godotenv.Unmarshal(string(data))

	case FormatINI:
		file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, data)
		if err != nil {
			return nil, err
		}
		values := make(map[string]string)
		if !file.HasSection(iniSection) {
			return values, nil
		}
		for _, key := range file.Section(iniSection).Keys() {
			values[key.Name()] = key.String()
		}
		return values, nil

	case FormatTOML:
		var nested map[string]any
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&nested); err != nil {
			return nil, err
		}
		return stringifyMap(flattenMap(nested, "")), nil

	case FormatYAML:
		var nested map[string]any
		if err := yaml.Unmarshal(data, &nested); err != nil {
			return nil, err
		}
		return stringifyMap(flattenMap(nested, "")), nil

	default:
		return nil, fmt.Errorf("unsupported file format %q", format)
	}
}
