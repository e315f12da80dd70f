// FILE: itcw/config/derive.go
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/itcw/config/git"
)

// Deploy environments.
const (
	DepEnvProd  = "prod"
	DepEnvStage = "stage"
	DepEnvDev   = "dev"
)

var tagSuffixes = map[string]string{
	DepEnvProd:  "",
	DepEnvStage: "-stage",
	DepEnvDev:   "-dev",
}

// Value runs the derivation of a catalogue key. Derivations backed by git fall
// back to a lookup of the same key when the search path is not a checkout.
func (r *Resolver) Value(k Key) (any, error) {
	switch k {
	case AppUID:
		return os.Getuid(), nil

	case AppGID:
		u, err := user.LookupId(strconv.Itoa(os.Getuid()))
		if err != nil {
			return os.Getgid(), nil
		}
		gid, err := strconv.Atoi(u.Gid)
		if err != nil {
			return os.Getgid(), nil
		}
		return gid, nil

	case AppUser:
		u, err := user.LookupId(strconv.Itoa(os.Getuid()))
		if err != nil {
			r.logger.Debug("user lookup failed, falling back", "key", k.String(), "error", err)
			return r.lookup(k.String())
		}
		return u.Username, nil

	case AppPort:
		return r.lookup(k.String(), Default(5000), Cast(AsInt))

	case AppJobs:
		return runtime.NumCPU(), nil

	case AppTimeout:
		return r.lookup(k.String(), Default(120), Cast(AsInt))

	case AppWorkers:
		return r.lookup(k.String(), Default(2), Cast(AsInt))

	case AppModule:
		return r.lookup(k.String(), Default("main:app"))

	case AppSrcTar:
		return r.lookup(k.String(), Default(".src.tar.gz"))

	case AppRepoRoot:
		return r.fromGit(k, r.client.Toplevel)

	case AppVersion:
		return r.fromGit(k, r.client.Describe)

	case AppBranch:
		return r.fromGit(k, r.client.AbbrevRef)

	case AppRevision:
		return r.fromGit(k, r.client.Revision)

	case AppRemoteOriginURL:
		return r.fromGit(k, r.client.RemoteOriginURL)

	case AppDepEnv:
		branch, err := r.ValueString(AppBranch)
		if err != nil {
			return nil, err
		}
		return DeployEnv(branch), nil

	case AppTagName:
		version, err := r.ValueString(AppVersion)
		if err != nil {
			return nil, err
		}
		depenv, err := r.ValueString(AppDepEnv)
		if err != nil {
			return nil, err
		}
		return TagName(version, depenv)

	case AppRepoName:
		url, err := r.ValueString(AppRemoteOriginURL)
		if err != nil {
			return nil, err
		}
		return git.ParseReponame(url)

	case AppProjName:
		reponame, err := r.ValueString(AppRepoName)
		if err != nil {
			return nil, err
		}
		return ProjectName(reponame)

	case AppProjPath:
		return r.joinPath(AppRepoRoot, AppProjName)

	case AppBotPath:
		return r.underPath(AppProjPath, "bot")

	case AppDBPath:
		return r.underPath(AppProjPath, "db")

	case AppTestPath:
		return r.underPath(AppRepoRoot, "tests")

	case AppLsRemote:
		return r.lsRemote()

	case AppGsmStatus:
		out, err := r.client.SubmoduleStatus()
		if err != nil {
			return r.parsedFallback(k, err, parseSubmoduleStatus)
		}
		return git.ParseSubmoduleStatus(out), nil

	default:
		return nil, fmt.Errorf("%w: unknown derived key %d", ErrInvalidKey, int(k))
	}
}

// fromGit runs a git query for k, falling back to a lookup outside a checkout.
func (r *Resolver) fromGit(k Key, query func() (string, error)) (any, error) {
	out, err := query()
	if err != nil {
		return r.gitFallback(k, err)
	}
	return out, nil
}

// gitFallback turns ErrNotGitRepo into a lookup of k and wraps anything else.
func (r *Resolver) gitFallback(k Key, err error) (any, error) {
	if errors.Is(err, git.ErrNotGitRepo) {
		r.logger.Debug("not a git repository, falling back to lookup", "key", k.String(), "dir", r.dir)
		return r.lookup(k.String())
	}
	return nil, fmt.Errorf("derive %s: %w", k, err)
}

// parsedFallback is gitFallback for keys whose git output is parsed.
func (r *Resolver) parsedFallback(k Key, err error, parse func(string) (any, error)) (any, error) {
	if !errors.Is(err, git.ErrNotGitRepo) {
		return nil, fmt.Errorf("derive %s: %w", k, err)
	}
	r.logger.Debug("not a git repository, falling back to lookup", "key", k.String(), "dir", r.dir)
	return r.lookupParsed(k, parse)
}

// lookupParsed looks k up and runs the result through the parser used for
// git output, so overrides have the same shape as derived values.
func (r *Resolver) lookupParsed(k Key, parse func(string) (any, error)) (any, error) {
	v, err := r.lookup(k.String())
	if err != nil {
		return nil, err
	}
	raw, err := ToString(v)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", k, err)
	}
	parsed, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", k, err)
	}
	return parsed, nil
}

func parseSubmoduleStatus(out string) (any, error) {
	return git.ParseSubmoduleStatus(out), nil
}

func parseLsRemote(out string) (any, error) {
	return git.ParseLsRemote(out)
}

func (r *Resolver) lsRemote() (any, error) {
	reponame, err := r.ValueString(AppRepoName)
	if err != nil {
		if errors.Is(err, ErrUndefinedValue) {
			return r.lookupParsed(AppLsRemote, parseLsRemote)
		}
		return nil, err
	}

	out, err := r.client.LsRemote("https://github.com/" + reponame)
	if err != nil {
		return r.parsedFallback(AppLsRemote, err, parseLsRemote)
	}
	refs, err := git.ParseLsRemote(out)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", AppLsRemote, err)
	}
	return refs, nil
}

// ValueString runs the derivation of k and converts the result to a string.
func (r *Resolver) ValueString(k Key) (string, error) {
	v, err := r.Value(k)
	if err != nil {
		return "", err
	}
	return ToString(v)
}

func (r *Resolver) joinPath(base, name Key) (string, error) {
	dir, err := r.ValueString(base)
	if err != nil {
		return "", err
	}
	elem, err := r.ValueString(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, elem), nil
}

func (r *Resolver) underPath(base Key, elem string) (string, error) {
	dir, err := r.ValueString(base)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, elem), nil
}

// DeployEnv maps a branch name to its deploy environment: master is prod,
// stage/* is stage, anything else is dev.
func DeployEnv(branch string) string {
	switch {
	case branch == "master":
		return DepEnvProd
	case strings.HasPrefix(branch, "stage/"):
		return DepEnvStage
	default:
		return DepEnvDev
	}
}

// TagName builds an image tag from the version up to its first "-" and the
// suffix of depenv: "1.2.3-4-gabc" in stage becomes "1.2.3-stage".
func TagName(version, depenv string) (string, error) {
	suffix, ok := tagSuffixes[depenv]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDeployEnv, depenv)
	}
	base, _, _ := strings.Cut(version, "-")
	return base + suffix, nil
}

// ProjectName returns the first half of the reponame basename, which must
// split on "-" into exactly two parts.
func ProjectName(reponame string) (string, error) {
	basename := path.Base(reponame)
	parts := strings.Split(basename, "-")
	if len(parts) != 2 {
		return "", &ProjNameSplitError{Basename: basename}
	}
	return parts[0], nil
}
