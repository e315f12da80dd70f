package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/itcw/config"
	"github.com/itcw/config/internal/logging"
	"github.com/itcw/config/task"
	"github.com/itcw/config/tasks"
)

const usage = `Usage: dodo [flags] [KEY=value ...] [task ...]
       dodo [flags] list
       dodo [flags] info KEY...
       dodo [flags] config [toml|yaml]

Runs the named tasks, or the default tasks (%s) when none are given.

Flags:
`

type options struct {
	dir       string
	jobs      int
	keepGoing bool
	logLevel  string
	logFormat string
	gitCache  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "dodo:", strings.ReplaceAll(err.Error(), "\n", "; "))
		os.Exit(1)
	}
}

// run parses args and dispatches to a subcommand or the task runner.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	var opts options
	fs := pflag.NewFlagSet("dodo", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.dir, "dir", "", "project directory (default: current directory)")
	fs.IntVarP(&opts.jobs, "jobs", "j", 1, "number of tasks to run in parallel")
	fs.BoolVarP(&opts.keepGoing, "keep-going", "k", false, "continue with unaffected tasks after a failure")
	fs.StringVar(&opts.logLevel, "log-level", os.Getenv("LOG_LEVEL"), "DEBUG, INFO, WARNING, ERROR, CRITICAL or 10-50 (env LOG_LEVEL)")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	fs.BoolVar(&opts.gitCache, "git-cache", false, "run each git query once per invocation")
	fs.Usage = func() {
		fmt.Fprintf(stderr, usage, strings.Join(tasks.DefaultTasks, ", "))
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	logger, err := logging.New(opts.logLevel, opts.logFormat, stderr)
	if err != nil {
		return err
	}

	// KEY=value words are overrides; everything else names a subcommand or tasks.
	var overrides, words []string
	for _, arg := range fs.Args() {
		if strings.Contains(arg, "=") {
			overrides = append(overrides, arg)
		} else {
			words = append(words, arg)
		}
	}

	resolverOpts := []config.Option{
		config.WithArgs(overrides),
		config.WithLogger(logger),
	}
	if opts.dir != "" {
		resolverOpts = append(resolverOpts, config.WithSearchPath(opts.dir))
	}
	if opts.gitCache {
		resolverOpts = append(resolverOpts, config.WithGitCache())
	}
	r := config.New(resolverOpts...)
	if _, err := r.Sources(); err != nil {
		return err
	}

	if len(words) > 0 {
		switch words[0] {
		case "list":
			return list(stdout, r, logger)
		case "info":
			return info(stdout, r, words[1:])
		case "config":
			format := config.FormatTOML
			if len(words) > 1 {
				format = words[1]
			}
			return r.Dump(stdout, format)
		}
	}

	g, err := tasks.New(r, tasks.WithLogger(logger)).Graph()
	if err != nil {
		return err
	}
	runner := task.NewRunner(g,
		task.WithDir(r.SearchPath()),
		task.WithJobs(opts.jobs),
		task.WithKeepGoing(opts.keepGoing),
		task.WithLogger(logger),
		task.WithOutput(stdout, stderr),
	)
	_, err = runner.Run(ctx, words...)
	return err
}

// list prints the top-level tasks and their docs. Subtasks are omitted.
func list(w io.Writer, r *config.Resolver, logger *slog.Logger) error {
	g, err := tasks.New(r, tasks.WithLogger(logger)).Graph()
	if err != nil {
		return err
	}

	width := 0
	var top []task.Task
	for _, t := range g.Tasks() {
		if strings.Contains(t.Name, ":") {
			continue
		}
		top = append(top, t)
		width = max(width, len(t.Name))
	}
	for _, t := range top {
		fmt.Fprintf(w, "%-*s  %s\n", width, t.Name, t.Doc)
	}
	return nil
}

// info prints where each key resolves from. Undefined keys fail.
func info(w io.Writer, r *config.Resolver, keys []string) error {
	if len(keys) == 0 {
		return errors.New("info needs at least one key")
	}
	for _, key := range keys {
		if _, err := r.Attr(key); err != nil {
			return err
		}
		fmt.Fprint(w, r.Explain(key))
	}
	return nil
}
