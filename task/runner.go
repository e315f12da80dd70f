package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the outcome of one task in a run.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusUpToDate  Status = "up-to-date"
	StatusFailed    Status = "failed"
	StatusDepFailed Status = "dep-failed"
	// StatusNotRun marks tasks left out after an earlier failure stopped the run.
	StatusNotRun Status = "not-run"
)

// ActionResult records one executed action.
type ActionResult struct {
	Action  string
	Err     error
	Ignored bool
}

// Result records one planned task.
type Result struct {
	Task     string
	Status   Status
	Actions  []ActionResult
	Err      error
	Duration time.Duration
}

// Report lists results in plan order.
type Report struct {
	Results []Result
}

// Result returns the result for name.
func (r *Report) Result(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Task == name {
			return res, true
		}
	}
	return Result{}, false
}

// Failed returns the names of tasks whose own actions or checks failed.
func (r *Report) Failed() []string {
	var out []string
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res.Task)
		}
	}
	return out
}

// OK reports whether every planned task succeeded or was up to date.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.Status != StatusSuccess && res.Status != StatusUpToDate {
			return false
		}
	}
	return true
}

// Runner executes tasks from a Graph.
type Runner struct {
	graph     *Graph
	shell     Shell
	dir       string
	stdout    io.Writer
	stderr    io.Writer
	logger    *slog.Logger
	jobs      int
	keepGoing bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithShell sets the shell used for command actions and checks.
func WithShell(sh Shell) RunnerOption {
	return func(r *Runner) { r.shell = sh }
}

// WithDir sets the working directory for command actions.
func WithDir(dir string) RunnerOption {
	return func(r *Runner) { r.dir = dir }
}

// WithOutput sets where command output goes.
func WithOutput(stdout, stderr io.Writer) RunnerOption {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithLogger sets the logger. Task start and finish are logged at Info.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithJobs bounds how many independent tasks run at once. Values below 1 mean 1.
func WithJobs(n int) RunnerOption {
	return func(r *Runner) { r.jobs = n }
}

// WithKeepGoing continues with unaffected tasks after a failure.
func WithKeepGoing(keepGoing bool) RunnerOption {
	return func(r *Runner) { r.keepGoing = keepGoing }
}

// NewRunner returns a sequential runner using ExecShell and the process's
// standard streams.
func NewRunner(g *Graph, opts ...RunnerOption) *Runner {
	r := &Runner{
		graph:  g,
		shell:  NewExecShell(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		jobs:   1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.jobs < 1 {
		r.jobs = 1
	}
	if r.jobs > 1 {
		r.stdout = &syncWriter{w: r.stdout}
		r.stderr = &syncWriter{w: r.stderr}
	}
	return r
}

// syncWriter serializes writes from tasks running in parallel.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Run plans names (the defaults when empty) and executes the plan. Planning
// errors are returned without a report. When any task fails the report is
// returned together with a *FailedError.
func (r *Runner) Run(ctx context.Context, names ...string) (*Report, error) {
	plan, err := r.graph.Plan(names...)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(plan))
	index := make(map[string]int, len(plan))
	done := make([]chan struct{}, len(plan))
	for i, name := range plan {
		index[name] = i
		done[i] = make(chan struct{})
	}

	var (
		mu      sync.Mutex
		stopped atomic.Bool
	)
	statusOf := func(i int) Status {
		mu.Lock()
		defer mu.Unlock()
		return results[i].Status
	}

	// Plan order is topological, so every goroutine waits only on tasks
	// launched before it and the earliest unfinished task can always proceed.
	var eg errgroup.Group
	eg.SetLimit(r.jobs)
	for i, name := range plan {
		i, name := i, name
		eg.Go(func() error {
			defer close(done[i])

			t, _ := r.graph.Task(name)
			depFailed, depNotRun := false, false
			for _, dep := range t.Deps {
				j := index[dep]
				<-done[j]
				switch statusOf(j) {
				case StatusFailed, StatusDepFailed:
					depFailed = true
				case StatusNotRun:
					depNotRun = true
				}
			}

			var res Result
			switch {
			case depFailed:
				res = Result{Task: name, Status: StatusDepFailed}
				r.logger.Info("task skipped", "task", name, "reason", "dependency failed")
			case depNotRun || stopped.Load() || ctx.Err() != nil:
				res = Result{Task: name, Status: StatusNotRun}
			default:
				res = r.execute(ctx, t)
				if res.Status == StatusFailed && !r.keepGoing {
					stopped.Store(true)
				}
			}

			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	report := &Report{Results: results}
	if failed := report.Failed(); len(failed) > 0 {
		return report, &FailedError{Tasks: failed}
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) execute(ctx context.Context, t Task) Result {
	start := time.Now()
	res := Result{Task: t.Name}
	env := &Env{
		Shell:  r.shell,
		Dir:    r.dir,
		Stdout: r.stdout,
		Stderr: r.stderr,
		Logger: r.logger.With("task", t.Name),
	}

	fresh, err := upToDate(ctx, t, env)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		res.Duration = time.Since(start)
		r.logger.Info("task finished", "task", t.Name, "status", res.Status, "error", err)
		return res
	}
	if fresh {
		res.Status = StatusUpToDate
		fmt.Fprintf(r.stdout, "-- %s\n", t.Name)
		r.logger.Info("task up to date", "task", t.Name)
		return res
	}

	fmt.Fprintf(r.stdout, ".  %s\n", t.Name)
	r.logger.Info("task started", "task", t.Name, "actions", len(t.Actions))

	res.Status = StatusSuccess
	for _, action := range t.Actions {
		err := action.Run(ctx, env)
		ar := ActionResult{Action: action.String(), Err: err, Ignored: err != nil && action.Ignored()}
		res.Actions = append(res.Actions, ar)
		if err == nil {
			continue
		}
		if ar.Ignored {
			r.logger.Info("action failure ignored", "task", t.Name, "action", ar.Action, "error", err)
			continue
		}
		res.Status = StatusFailed
		res.Err = fmt.Errorf("%s: %w", t.Name, err)
		break
	}

	res.Duration = time.Since(start)
	if res.Err != nil {
		r.logger.Info("task finished", "task", t.Name, "status", res.Status, "duration", res.Duration, "error", res.Err)
	} else {
		r.logger.Info("task finished", "task", t.Name, "status", res.Status, "duration", res.Duration)
	}
	return res
}
