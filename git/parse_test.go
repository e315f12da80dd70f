package git

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReponame(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"SCPStyle", "git@github.com:org/repo.git", "org/repo"},
		{"HTTPSNoSuffix", "https://github.com/org/repo", "org/repo"},
		{"SSHScheme", "ssh://git@github.com/org/repo.git", "org/repo"},
		{"HTTPSWithSuffix", "https://github.com/mozilla-it/props-bot.git", "mozilla-it/props-bot"},
		{"Underscores", "git@github.com:my_org/my_repo", "my_org/my_repo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReponame(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("NonGitHub", func(t *testing.T) {
		_, err := ParseReponame("https://gitlab.com/org/repo.git")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRemoteURL))
		assert.Contains(t, err.Error(), "gitlab.com")
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := ParseReponame("")
		assert.ErrorIs(t, err, ErrInvalidRemoteURL)
	})
}

func TestParseSubmoduleStatus(t *testing.T) {
	const rev = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

	t.Run("CheckedOutAtRecordedRevision", func(t *testing.T) {
		got := ParseSubmoduleStatus(" " + rev + " path/to/sub (tag)")
		require.Len(t, got, 1)
		assert.Equal(t, Submodule{Path: "path/to/sub", Revision: rev, State: True}, got["path/to/sub"])
	})

	t.Run("DifferentRevision", func(t *testing.T) {
		got := ParseSubmoduleStatus("+" + rev + " lib/x (heads/main)")
		assert.Equal(t, False, got["lib/x"].State)
	})

	t.Run("NotCheckedOut", func(t *testing.T) {
		got := ParseSubmoduleStatus("-" + rev + " vendor/y")
		assert.Equal(t, Unknown, got["vendor/y"].State)
		assert.Nil(t, got["vendor/y"].State.Ptr())
	})

	t.Run("MultipleLines", func(t *testing.T) {
		out := " " + rev + " a (v1)\n" +
			"+0123456789abcdef0123456789abcdef01234567 b.c (heads/x)\n" +
			"-ffffffffffffffffffffffffffffffffffffffff d/e\n"
		got := ParseSubmoduleStatus(out)
		require.Len(t, got, 3)
		assert.Equal(t, True, got["a"].State)
		assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", got["b.c"].Revision)
		assert.Equal(t, Unknown, got["d/e"].State)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, ParseSubmoduleStatus(""))
	})
}

func TestTristatePtr(t *testing.T) {
	require.NotNil(t, True.Ptr())
	assert.True(t, *True.Ptr())
	require.NotNil(t, False.Ptr())
	assert.False(t, *False.Ptr())
	assert.Nil(t, Unknown.Ptr())
	assert.Equal(t, "unknown", Unknown.String())
}

func TestParseLsRemote(t *testing.T) {
	out := "abc123\tHEAD\n" +
		"abc123\trefs/heads/master\n" +
		"def456\trefs/tags/v1.0.0\n"

	refs, err := ParseLsRemote(out)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"HEAD":              "abc123",
		"refs/heads/master": "abc123",
		"refs/tags/v1.0.0":  "def456",
	}, refs)

	_, err = ParseLsRemote("only-one-field")
	assert.Error(t, err)

	refs, err = ParseLsRemote("")
	require.NoError(t, err)
	assert.Empty(t, refs)
}
