package tasks

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// ComposeFile is the compose file name looked up under APP_PROJPATH.
const ComposeFile = "docker-compose.yml"

// MinimumComposeVersion is the oldest docker-compose accepted; it reads
// compose file format 3.0.
const MinimumComposeVersion = "1.13"

var composeVersionPattern = regexp.MustCompile(`(?i)version v?([0-9]+\.[0-9]+(?:\.[0-9]+)?(?:-rc[0-9]+)?)`)

type composeFile struct {
	Services map[string]any `yaml:"services"`
}

// LoadServices returns the sorted service names declared in a compose file.
func LoadServices(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cf composeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrComposeFile, path, err)
	}

	services := make([]string, 0, len(cf.Services))
	for name := range cf.Services {
		services = append(services, name)
	}
	sort.Strings(services)
	return services, nil
}

// ParseComposeVersion extracts the version from `docker-compose --version`
// output. Both "docker-compose version 1.29.2, build 5becea4c" and
// "Docker Compose version v2.20.2" are understood.
func ParseComposeVersion(output string) (string, error) {
	m := composeVersionPattern.FindStringSubmatch(output)
	if m == nil {
		return "", fmt.Errorf("no version in docker-compose output %q", output)
	}
	return m[1], nil
}

// CheckComposeVersion fails unless output reports MinimumComposeVersion or newer.
func CheckComposeVersion(output string) error {
	version, err := ParseComposeVersion(output)
	if err != nil {
		return err
	}
	v := semverOf(version)
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid docker-compose version %q", version)
	}
	if semver.Compare(v, semverOf(MinimumComposeVersion)) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrComposeVersion, version, MinimumComposeVersion)
	}
	return nil
}

// semverOf pads a two-part version to three parts, since semver rejects a
// prerelease on a shorthand version such as "1.13-rc1".
func semverOf(version string) string {
	base, pre, hasPre := strings.Cut(version, "-")
	if strings.Count(base, ".") == 1 {
		base += ".0"
	}
	if hasPre {
		return "v" + base + "-" + pre
	}
	return "v" + base
}
