package tasks

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServices(t *testing.T) {
	dir := t.TempDir()

	t.Run("Sorted", func(t *testing.T) {
		path := filepath.Join(dir, "a.yml")
		require.NoError(t, os.WriteFile(path, []byte(`version: "3"
services:
  web:
    build: web
  bot:
    build: bot
    ports: ["5000:5000"]
`), 0o644))

		services, err := LoadServices(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"bot", "web"}, services)
	})

	t.Run("NoServices", func(t *testing.T) {
		path := filepath.Join(dir, "b.yml")
		require.NoError(t, os.WriteFile(path, []byte("version: \"3\"\n"), 0o644))

		services, err := LoadServices(path)
		require.NoError(t, err)
		assert.Empty(t, services)
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "c.yml")
		require.NoError(t, os.WriteFile(path, []byte("services: [unclosed\n"), 0o644))

		_, err := LoadServices(path)
		assert.ErrorIs(t, err, ErrComposeFile)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadServices(filepath.Join(dir, "absent.yml"))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestComposeVersion(t *testing.T) {
	tests := []struct {
		output  string
		version string
		ok      bool
	}{
		{"docker-compose version 1.29.2, build 5becea4c", "1.29.2", true},
		{"docker-compose version 1.13.0, build 1719ceb", "1.13.0", true},
		{"docker-compose version 1.12.0, build b31ff33", "1.12.0", false},
		{"docker-compose version 1.13.0-rc1, build 38af513", "1.13.0-rc1", false},
		{"docker-compose version 1.25.0-rc4, build 8f3c9c58", "1.25.0-rc4", true},
		{"docker-compose version 1.13-rc1", "1.13-rc1", false},
		{"docker-compose version 1.14-rc2", "1.14-rc2", true},
		{"docker-compose version 1.13", "1.13", true},
		{"Docker Compose version v2.20.2", "2.20.2", true},
		{"Docker Compose version v2.24.6-desktop.1", "2.24.6", true},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			got, err := ParseComposeVersion(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.version, got)

			err = CheckComposeVersion(tt.output)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrComposeVersion)
			}
		})
	}

	_, err := ParseComposeVersion("command not found")
	assert.Error(t, err)
	assert.Error(t, CheckComposeVersion(""))
}
