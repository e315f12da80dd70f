package git

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reponamePattern  = regexp.MustCompile(`((ssh|https)://)?(git@)?github\.com[:/](?P<reponame>[A-Za-z0-9/_-]+)(\.git)?`)
	submodulePattern = regexp.MustCompile(`([ +-])([a-f0-9]{40}) ([A-Za-z0-9/_.-]+)( .*)?`)
)

// Tristate is a boolean with an explicit unknown state.
type Tristate int8

const (
	// Unknown means the state could not be determined.
	Unknown Tristate = iota
	// False is the negative state.
	False
	// True is the positive state.
	True
)

// Ptr returns the state as *bool, nil for Unknown.
func (t Tristate) Ptr() *bool {
	var b bool
	switch t {
	case True:
		b = true
	case False:
		b = false
	default:
		return nil
	}
	return &b
}

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Submodule is one entry of `git submodule status`.
type Submodule struct {
	Path     string
	Revision string
	// State is True when the submodule is checked out at the recorded
	// revision, False when it is checked out at a different one and
	// Unknown when it is not checked out at all.
	State Tristate
}

// ParseReponame extracts the "owner/repo" path from a GitHub remote URL. The
// ssh:// and https:// schemes, the git@ user and the .git suffix are optional.
func ParseReponame(url string) (string, error) {
	m := reponamePattern.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRemoteURL, url)
	}
	return m[reponamePattern.SubexpIndex("reponame")], nil
}

// ParseSubmoduleStatus parses untrimmed `git submodule status` output into a
// map keyed by submodule path. Lines that do not match are ignored.
func ParseSubmoduleStatus(out string) map[string]Submodule {
	states := map[string]Tristate{
		" ": True,
		"+": False,
		"-": Unknown,
	}

	result := make(map[string]Submodule)
	for _, m := range submodulePattern.FindAllStringSubmatch(out, -1) {
		result[m[3]] = Submodule{
			Path:     m[3],
			Revision: m[2],
			State:    states[m[1]],
		}
	}
	return result
}

// ParseLsRemote parses `git ls-remote` output into a refname to revision map.
func ParseLsRemote(out string) (map[string]string, error) {
	refs := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed ls-remote line %q", line)
		}
		refs[fields[1]] = fields[0]
	}
	return refs, nil
}
