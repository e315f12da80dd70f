package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/itcw/config"
	"github.com/itcw/config/git"
	"github.com/itcw/config/task"
)

// DefaultTasks run when no task is named.
var DefaultTasks = []string{"pull", "deploy", "rmimages", "rmvolumes", "count"}

// Settings are the resolved values the catalogue is declared from.
type Settings struct {
	RepoRoot string `cfg:"APP_REPOROOT"`
	RepoName string `cfg:"APP_REPONAME"`
	ProjName string `cfg:"APP_PROJNAME"`
	ProjPath string `cfg:"APP_PROJPATH"`
	BotPath  string `cfg:"APP_BOTPATH"`
	TestPath string `cfg:"APP_TESTPATH"`
	TagName  string `cfg:"APP_TAGNAME"`
	Jobs     int    `cfg:"APP_JOBS"`
}

var requiredKeys = []string{
	"APP_REPOROOT",
	"APP_REPONAME",
	"APP_PROJNAME",
	"APP_PROJPATH",
	"APP_BOTPATH",
	"APP_TESTPATH",
	"APP_TAGNAME",
}

// Catalogue declares the deployment tasks.
type Catalogue struct {
	resolver    *config.Resolver
	lookPath    func(string) (string, error)
	uid         func() (int, error)
	logger      *slog.Logger
	imagePrefix string
	dataRoot    string
}

// Option configures a Catalogue.
type Option func(*Catalogue)

// WithLookPath replaces exec.LookPath for package manager and cloc detection.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Catalogue) { c.lookPath = fn }
}

// WithUID replaces the user id check made by noroot.
func WithUID(fn func() (int, error)) Option {
	return func(c *Catalogue) { c.uid = fn }
}

// WithLogger sets the logger. Defaults to the resolver's.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalogue) { c.logger = logger }
}

// WithImagePrefix sets the docker image namespace. Defaults to "itcw".
func WithImagePrefix(prefix string) Option {
	return func(c *Catalogue) { c.imagePrefix = prefix }
}

// WithDataRoot sets the directory holding per-project data such as TLS
// material. Defaults to "/data".
func WithDataRoot(dir string) Option {
	return func(c *Catalogue) { c.dataRoot = dir }
}

// New returns a catalogue backed by r.
func New(r *config.Resolver, opts ...Option) *Catalogue {
	c := &Catalogue{
		resolver:    r,
		lookPath:    exec.LookPath,
		logger:      r.Logger(),
		imagePrefix: "itcw",
		dataRoot:    "/data",
	}
	c.uid = func() (int, error) {
		v, err := r.Value(config.AppUID)
		if err != nil {
			return 0, err
		}
		return config.ToInt(v)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings resolves the values every task declaration needs.
func (c *Catalogue) Settings() (Settings, error) {
	if err := c.resolver.Validate(requiredKeys...); err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := c.resolver.Scan(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Services returns the compose services of the project. A project without a
// compose file has no services.
func (c *Catalogue) Services(s Settings) ([]string, error) {
	path := filepath.Join(s.ProjPath, ComposeFile)
	services, err := LoadServices(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("compose file not found, declaring no services", "path", path)
		return nil, nil
	}
	return services, err
}

// Graph declares every task and validates the result.
func (c *Catalogue) Graph() (*task.Graph, error) {
	s, err := c.Settings()
	if err != nil {
		return nil, err
	}
	services, err := c.Services(s)
	if err != nil {
		return nil, err
	}

	d := &declarer{c: c, s: s, services: services, g: task.NewGraph()}
	for _, declare := range []func() error{
		d.count, d.checkreqs, d.dockercompose, d.noroot, d.pull, d.venv,
		d.pyfiles, d.pylint, d.test, d.tls, d.tar, d.build, d.publish,
		d.gitenv, d.deploy, d.rmimages, d.rmvolumes, d.logs, d.rmcache,
		d.tidy, d.nuke, d.prune, d.stop,
	} {
		if err := declare(); err != nil {
			return nil, err
		}
	}
	d.g.SetDefault(DefaultTasks...)

	if err := d.g.Validate(); err != nil {
		return nil, err
	}
	c.logger.Debug("task catalogue declared", "tasks", len(d.g.Tasks()), "services", len(services))
	return d.g, nil
}

// declarer holds the state shared by the task declarations of one Graph call.
type declarer struct {
	c        *Catalogue
	s        Settings
	services []string
	g        *task.Graph
}

func (d *declarer) image(svc string) string {
	return fmt.Sprintf("%s/%s_%s", d.c.imagePrefix, d.s.ProjName, svc)
}

func (d *declarer) svcPath(svc string) string {
	return filepath.Join(d.s.ProjPath, svc)
}

func (d *declarer) count() error {
	excludes := "--exclude-dir=" + strings.Join([]string{"dist", "venv", "__pycache__", "auto_cert_cli.egg-info"}, ",")
	return d.g.Add(task.Task{
		Name:    "count",
		Doc:     "use the cloc utility to count lines of code",
		Actions: []task.Action{task.Cmdf("cloc %s %s", excludes, d.s.RepoRoot)},
		Uptodate: []task.Check{task.FuncCheck(func() bool {
			_, err := d.c.lookPath("cloc")
			return err != nil
		})},
	})
}

func (d *declarer) checkreqs() error {
	t := task.Task{Name: "checkreqs", Doc: "check for required software"}

	pkgmgr, err := DetectPackageManager(d.c.lookPath)
	switch {
	case err != nil:
		t.Actions = []task.Action{task.Func("detect_pkgmgr", func(context.Context, *task.Env) error {
			return err
		})}
	case pkgmgr == "deb":
		t.Actions = []task.Action{task.Cmd("dpkg -s docker-ce 2>&1 >/dev/null")}
	case pkgmgr == "rpm":
		t.Actions = []task.Action{task.Cmd("rpm -q docker-ce >/dev/null")}
	default:
		t.Actions = []task.Action{task.Cmd("true")}
	}
	return d.g.Add(t)
}

func (d *declarer) dockercompose() error {
	return d.g.Add(task.Task{
		Name: "dockercompose",
		Doc:  fmt.Sprintf("assert docker-compose version (%s) or higher", MinimumComposeVersion),
		Actions: []task.Action{task.Func("check_docker_compose", func(ctx context.Context, env *task.Env) error {
			out, err := task.Output(ctx, env.Shell, env.Dir, "docker-compose --version")
			if err != nil {
				return err
			}
			return CheckComposeVersion(strings.TrimSpace(out))
		})},
	})
}

func (d *declarer) noroot() error {
	return d.g.Add(task.Task{
		Name: "noroot",
		Doc:  "make sure script isn't run as root",
		Actions: []task.Action{task.Func("check_uid", func(_ context.Context, env *task.Env) error {
			uid, err := d.c.uid()
			if err != nil {
				return err
			}
			if uid == 0 {
				fmt.Fprintln(env.Stdout, "   DO NOT RUN AS ROOT!")
				return ErrRunAsRoot
			}
			return nil
		})},
	})
}

func (d *declarer) submodules() ([]string, error) {
	v, err := d.c.resolver.Value(config.AppGsmStatus)
	if err != nil {
		if errors.Is(err, config.ErrUndefinedValue) {
			return nil, nil
		}
		return nil, err
	}
	status, ok := v.(map[string]git.Submodule)
	if !ok {
		return nil, nil
	}
	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func safeUpdate(update string) string {
	return fmt.Sprintf(`if git diff-index --quiet HEAD --; then %s; else echo "refusing to '%s' because the tree is dirty"; exit 1; fi`, update, update)
}

func (d *declarer) pull() error {
	subs, err := d.submodules()
	if err != nil {
		return err
	}

	pulls := []task.Task{{
		Name:    d.s.RepoName,
		Actions: []task.Action{task.Cmd(safeUpdate("git pull --rebase"))},
	}}
	for _, sub := range subs {
		pulls = append(pulls, task.Task{
			Name:    sub,
			Actions: []task.Action{task.Cmdf("cd %s && %s", sub, safeUpdate("git submodule update --remote"))},
		})
	}
	return d.g.AddGroup("pull", "do a safe git pull", pulls...)
}

func (d *declarer) venv() error {
	subs := []task.Task{{
		Name: "main",
		Deps: []string{"noroot"},
		Actions: []task.Action{
			task.Cmd("virtualenv --python=$(which python3) venv"),
			task.Cmd("venv/bin/pip3 install --upgrade pip"),
			task.Cmdf("venv/bin/pip3 install -r %s", filepath.Join(d.s.TestPath, "requirements.txt")),
		},
	}}
	for _, svc := range d.services {
		reqfile := filepath.Join(d.svcPath(svc), "requirements.txt")
		subs = append(subs, task.Task{
			Name:    svc,
			Deps:    []string{"noroot", "venv:main"},
			Actions: []task.Action{task.Cmdf("if [ -f %s ]; then venv/bin/pip3 install -r %s; fi", reqfile, reqfile)},
		})
	}
	return d.g.AddGroup("venv", "setup venv", subs...)
}

func (d *declarer) pyfiles() error {
	return d.g.Add(task.Task{
		Name: "pyfiles",
		Doc:  "list all of the pyfiles",
		Actions: []task.Action{task.Func("list_pyfiles", func(_ context.Context, env *task.Env) error {
			files, err := PyFiles(d.s.ProjPath, filepath.Join(d.s.BotPath, "utils"))
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(env.Stdout, f)
			}
			return nil
		})},
	})
}

func (d *declarer) pylint() error {
	rcfile := filepath.Join(d.s.TestPath, "pylint.rc")
	var subs []task.Task
	for _, svc := range d.services {
		dir := d.svcPath(svc)
		files, err := PyFiles(dir, filepath.Join(dir, "utils"))
		if err != nil {
			return fmt.Errorf("pylint %s: %w", svc, err)
		}
		for _, file := range files {
			rel, err := filepath.Rel(dir, file)
			if err != nil {
				return err
			}
			subs = append(subs, task.Task{
				Name: svc + "/" + filepath.ToSlash(rel),
				Deps: []string{"noroot"},
				Actions: []task.Action{
					task.Cmdf("cd %s && pylint -j%d --rcfile %s %s", dir, d.s.Jobs, rcfile, file).IgnoreFailure(),
				},
			})
		}
	}
	return d.g.AddGroup("pylint", "run pylint before the build", subs...)
}

// noTestsCollected reports up to date when pytest exits 4 (usage error, such
// as a missing directory) or 5 (no tests collected) for svc.
func (d *declarer) noTestsCollected(svc string) task.Check {
	collect := fmt.Sprintf("PYTHONPATH=%s pytest --collect-only %s", d.svcPath(svc), filepath.Join(d.s.TestPath, svc))
	return func(ctx context.Context, env *task.Env) (bool, error) {
		err := env.Shell.Run(ctx, env.Dir, collect, io.Discard, io.Discard)
		if err == nil {
			return false, nil
		}
		var exitErr *task.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code == 4 || exitErr.Code == 5, nil
		}
		return false, err
	}
}

func (d *declarer) test() error {
	var subs []task.Task
	for _, svc := range d.services {
		pythonpath := fmt.Sprintf("PYTHONPATH=.:%s:%s:$PYTHONPATH", d.s.ProjPath, d.svcPath(svc))
		subs = append(subs, task.Task{
			Name: svc,
			Deps: []string{"noroot", "pylint", "venv"},
			Actions: []task.Action{
				task.Cmdf("%s venv/bin/python3 -m pytest -s -vv %s", pythonpath, filepath.Join(d.s.TestPath, svc)),
			},
			Uptodate: []task.Check{d.noTestsCollected(svc)},
		})
	}
	return d.g.AddGroup("test", "run pytest", subs...)
}

func (d *declarer) tls() error {
	const (
		name = "server"
		env  = "PASS=TEST"
		envp = "env:PASS"
		subj = "/C=US/ST=Oregon/L=Portland/O=Connected-Workplace Server/OU=Server/CN=0.0.0.0"
	)
	dir := filepath.Join(d.c.dataRoot, d.s.ProjName, "tls")
	key := filepath.Join(dir, name+".key")
	csr := filepath.Join(dir, name+".csr")
	crt := filepath.Join(dir, name+".crt")
	targets := []string{key, crt}

	return d.g.Add(task.Task{
		Name: "tls",
		Doc:  "create server key, csr and crt files",
		Actions: []task.Action{
			task.Cmdf("mkdir -p %s", dir),
			task.Cmdf("%s openssl genrsa -aes256 -passout %s -out %s 2048", env, envp, key),
			task.Cmdf(`%s openssl req -new -passin %s -subj "%s" -key %s -out %s`, env, envp, subj, key, csr),
			task.Cmdf("%s openssl x509 -req -days 365 -in %s -signkey %s -passin %s -out %s", env, csr, key, envp, crt),
			task.Cmdf("%s openssl rsa -passin %s -in %s -out %s", env, envp, key, key),
		},
		Targets: targets,
		Uptodate: []task.Check{task.FuncCheck(func() bool {
			return allFilesExist(targets...)
		})},
	})
}

const tarball = "app.tar.gz"

func (d *declarer) tar() error {
	excludes := strings.Join([]string{
		"--exclude=" + tarball,
		"--exclude=__pycache__",
		"--exclude=*.pyc",
		"--exclude-vcs",
	}, " ")

	var subs []task.Task
	for _, svc := range d.services {
		subs = append(subs, task.Task{
			Name: svc,
			Deps: []string{"noroot", "gitenv", "test"},
			Actions: []task.Action{
				task.Cmdf("cd %s && touch %s && tar cvfhz %s %s .", d.svcPath(svc), tarball, tarball, excludes),
			},
		})
	}
	return d.g.AddGroup("tar", "tar up source files, dereferencing symlinks", subs...)
}

func (d *declarer) build() error {
	actions := []task.Action{task.Cmdf("cd %s && docker-compose build", d.s.ProjPath)}
	for _, svc := range d.services {
		img := d.image(svc)
		actions = append(actions,
			task.Cmdf("rm -f %s", filepath.Join(d.svcPath(svc), tarball)),
			task.Cmdf("docker tag %s %s:%s", img, img, d.s.TagName),
		)
	}
	return d.g.Add(task.Task{
		Name:    "build",
		Doc:     "build flask|quart app via docker-compose",
		Deps:    []string{"noroot", "tar", "dockercompose"},
		Actions: actions,
	})
}

func (d *declarer) publish() error {
	var subs []task.Task
	for _, svc := range d.services {
		subs = append(subs, task.Task{
			Name:    svc,
			Deps:    []string{"noroot", "build"},
			Actions: []task.Action{task.Cmdf("docker push %s:%s", d.image(svc), d.s.TagName)},
		})
	}
	return d.g.AddGroup("publish", "publish docker image(s) to docker hub", subs...)
}

func (d *declarer) gitenv() error {
	path := filepath.Join(d.s.BotPath, "git.env")
	return d.g.Add(task.Task{
		Name: "gitenv",
		Doc:  "create git.env for config to use for git env vars",
		Deps: []string{"noroot"},
		Actions: []task.Action{task.Func("write_gitenv", func(context.Context, *task.Env) error {
			return d.c.resolver.WriteGitEnv(path)
		})},
		Targets:  []string{path},
		Uptodate: []task.Check{task.Never()},
	})
}

func (d *declarer) deploy() error {
	return d.g.Add(task.Task{
		Name:    "deploy",
		Doc:     "deploy flask|quart app via docker-compose",
		Deps:    []string{"noroot", "checkreqs", "test", "build", "dockercompose"},
		Actions: []task.Action{task.Cmdf("cd %s && docker-compose up --remove-orphans -d", d.s.ProjPath)},
	})
}

func (d *declarer) rmimages() error {
	query := "$(docker images -q -f dangling=true)"
	return d.g.Add(task.Task{
		Name:     "rmimages",
		Doc:      "remove dangling docker images",
		Actions:  []task.Action{task.Cmd("docker rmi " + query)},
		Uptodate: []task.Check{task.ShellCheck(fmt.Sprintf(`[ -z "%s" ]`, query))},
	})
}

func (d *declarer) rmvolumes() error {
	query := "$(docker volume ls -q -f dangling=true)"
	return d.g.Add(task.Task{
		Name:     "rmvolumes",
		Doc:      "remove dangling docker volumes",
		Actions:  []task.Action{task.Cmd("docker volume rm " + query)},
		Uptodate: []task.Check{task.ShellCheck(fmt.Sprintf(`[ -z "%s" ]`, query))},
	})
}

func (d *declarer) logs() error {
	return d.g.Add(task.Task{
		Name:    "logs",
		Doc:     "simple wrapper that calls 'docker-compose logs'",
		Actions: []task.Action{task.Cmdf("cd %s && docker-compose logs", d.s.ProjPath)},
	})
}

func (d *declarer) rmcache() error {
	return d.g.Add(task.Task{
		Name: "rmcache",
		Doc:  "recursively delete python cache files",
		Actions: []task.Action{
			task.Cmdf(`sudo find %s -depth -name __pycache__ -type d -exec rm -rf "{}" \;`, d.s.RepoRoot),
			task.Cmdf(`sudo find %s -depth -name '*.pyc' -type f -exec rm -rf "{}" \;`, d.s.RepoRoot),
		},
	})
}

func (d *declarer) tidy() error {
	return d.g.Add(task.Task{
		Name: "tidy",
		Doc:  "delete cached files",
		Actions: []task.Action{
			task.Cmd("rm -rf .doit.db venv/ .pytest_cache/"),
			task.Cmd(`find . | grep -E "(__pycache__|\.pyc$)" | xargs rm -rf`),
		},
	})
}

func (d *declarer) nuke() error {
	return d.g.Add(task.Task{
		Name: "nuke",
		Doc:  "git clean and reset",
		Deps: []string{"tidy"},
		Actions: []task.Action{
			task.Cmd("docker-compose kill"),
			task.Cmd("docker-compose rm -f"),
			task.Cmd("git clean -fd"),
			task.Cmd("git reset --hard HEAD"),
		},
	})
}

func (d *declarer) prune() error {
	return d.g.Add(task.Task{
		Name:     "prune",
		Doc:      "prune stopped containers",
		Actions:  []task.Action{task.Cmd(`docker rm $(docker ps -q -f "status=exited")`)},
		Uptodate: []task.Check{task.ShellCheck(`[ -z "$(docker ps -q -f status=exited)" ]`)},
	})
}

// containers lists the running container names containing the project name.
func (d *declarer) containers(ctx context.Context, env *task.Env) ([]string, error) {
	list := fmt.Sprintf(`docker ps --format "{{.Names}}" | grep %s | { grep -v grep || true; }`, d.s.ProjName)
	out, err := task.Output(ctx, env.Shell, env.Dir, list)
	if err != nil {
		return nil, err
	}
	return strings.Fields(out), nil
}

func (d *declarer) stop() error {
	return d.g.Add(task.Task{
		Name: "stop",
		Doc:  "stop running containers",
		Actions: []task.Action{task.Func("remove_containers", func(ctx context.Context, env *task.Env) error {
			names, err := d.containers(ctx, env)
			if err != nil || len(names) == 0 {
				return err
			}
			return env.Shell.Run(ctx, env.Dir, "docker rm -f "+strings.Join(names, " "), env.Stdout, env.Stderr)
		})},
		Uptodate: []task.Check{func(ctx context.Context, env *task.Env) (bool, error) {
			names, err := d.containers(ctx, env)
			return len(names) == 0, err
		}},
	})
}
