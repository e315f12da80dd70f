// FILE: itcw/config/convenience_test.go
package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestExplain verifies provenance reporting
func TestExplain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.env", "CFGTEST_X=from-file\n")
	t.Setenv("CFGTEST_X", "from-env")
	t.Setenv("APP_PORT", "9000")

	r := newTestResolver(dir, WithDefaults(map[string]any{"CFGTEST_X": "registered"}))

	out := r.Explain("CFGTEST_X")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "CFGTEST_X = from-file (file app.env)", lines[0])
	assert.Equal(t, "  shadows env = from-env", lines[1])
	assert.Equal(t, "  shadows registered default = registered", lines[2])

	out = r.Explain("APP_PORT")
	assert.True(t, strings.HasPrefix(out, "APP_PORT = 9000 (env)\n"))
	assert.Contains(t, out, "shadows computed = 9000")

	assert.Equal(t, "CFGTEST_NONE is undefined\n", r.Explain("CFGTEST_NONE"))
}

// TestValidate verifies required keys are reported together
func TestValidate(t *testing.T) {
	r := newTestResolver(t.TempDir())

	assert.NoError(t, r.Validate())
	assert.NoError(t, r.Validate("APP_PORT", "APP_MODULE"))

	err := r.Validate("APP_VERSION", "CFGTEST_A")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndefinedValue)
	assert.Contains(t, err.Error(), "APP_VERSION")
	assert.Contains(t, err.Error(), "CFGTEST_A")
}

// TestDump verifies the catalogue renders in both formats
func TestDump(t *testing.T) {
	t.Setenv("APP_USER", "tester")

	t.Run("TOML", func(t *testing.T) {
		r := newRepoResolver(t, repoRunner("master"))

		var buf bytes.Buffer
		require.NoError(t, r.Dump(&buf, FormatTOML))

		var decoded map[string]any
		_, err := toml.Decode(buf.String(), &decoded)
		require.NoError(t, err)

		assert.Equal(t, "1.2.3", decoded["APP_TAGNAME"])
		assert.Equal(t, int64(5000), decoded["APP_PORT"])
		assert.Equal(t, "props", decoded["APP_PROJNAME"])

		gsm, ok := decoded["APP_GSM_STATUS"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, []any{"deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", "true"}, gsm["path/to/sub"])
	})

	t.Run("YAML", func(t *testing.T) {
		r := newRepoResolver(t, repoRunner("stage/a"))

		var buf bytes.Buffer
		require.NoError(t, r.Dump(&buf, FormatYAML))

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "1.2.3-stage", decoded["APP_TAGNAME"])
		assert.Equal(t, "stage", decoded["APP_DEPENV"])
		assert.Equal(t, 2, decoded["APP_WORKERS"])
	})

	t.Run("PartialOutsideCheckout", func(t *testing.T) {
		r := newTestResolver(t.TempDir())

		var buf bytes.Buffer
		err := r.Dump(&buf, FormatYAML)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUndefinedValue)

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, 5000, decoded["APP_PORT"])
		assert.NotContains(t, decoded, "APP_VERSION")
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		r := newTestResolver(t.TempDir())
		err := r.Dump(&bytes.Buffer{}, "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "xml")
	})
}
