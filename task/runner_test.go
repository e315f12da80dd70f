package task

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(g *Graph, sh Shell, opts ...RunnerOption) (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	base := []RunnerOption{WithShell(sh), WithOutput(&out, &out)}
	return NewRunner(g, append(base, opts...)...), &out
}

func statuses(report *Report) map[string]Status {
	out := make(map[string]Status, len(report.Results))
	for _, res := range report.Results {
		out[res.Task] = res.Status
	}
	return out
}

func TestRunnerSequential(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(Task{Name: "noroot", Actions: []Action{Cmd("check-uid")}}))
	require.NoError(t, g.Add(Task{Name: "build", Deps: []string{"noroot"}, Actions: []Action{Cmd("compose build"), Cmd("docker tag")}}))
	require.NoError(t, g.Add(Task{Name: "deploy", Deps: []string{"noroot", "build"}, Actions: []Action{Cmd("compose up")}}))

	sh := newFakeShell()
	r, out := newTestRunner(g, sh)

	report, err := r.Run(context.Background(), "deploy")
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, []string{"check-uid", "compose build", "docker tag", "compose up"}, sh.Calls())
	assert.Equal(t, ".  noroot\n.  build\n.  deploy\n", out.String())

	res, ok := report.Result("build")
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Actions, 2)
	assert.Equal(t, "compose build", res.Actions[0].Action)
	assert.NoError(t, res.Actions[0].Err)
}

func TestRunnerDefaults(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(Task{Name: "pull", Actions: []Action{Cmd("git pull")}}))
	require.NoError(t, g.Add(Task{Name: "logs", Actions: []Action{Cmd("compose logs")}}))
	g.SetDefault("pull")

	sh := newFakeShell()
	r, _ := newTestRunner(g, sh)
	_, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"git pull"}, sh.Calls())
}

func TestRunnerFailureStops(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(Task{Name: "a", Actions: []Action{Cmd("fail-a"), Cmd("after-a")}}))
	require.NoError(t, g.Add(Task{Name: "b", Deps: []string{"a"}, Actions: []Action{Cmd("run-b")}}))
	require.NoError(t, g.Add(Task{Name: "c", Actions: []Action{Cmd("run-c")}}))

	sh := newFakeShell()
	sh.exits["fail-a"] = 2
	r, _ := newTestRunner(g, sh)

	report, err := r.Run(context.Background(), "b", "c")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskFailed)

	var failed *FailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, []string{"a"}, failed.Tasks)

	assert.Equal(t, map[string]Status{
		"a": StatusFailed,
		"b": StatusDepFailed,
		"c": StatusNotRun,
	}, statuses(report))
	assert.Equal(t, []string{"fail-a"}, sh.Calls())

	res, _ := report.Result("a")
	var exitErr *ExitError
	require.ErrorAs(t, res.Err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.False(t, report.OK())
}

func TestRunnerKeepGoing(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(Task{Name: "a", Actions: []Action{Cmd("fail-a")}}))
	require.NoError(t, g.Add(Task{Name: "b", Deps: []string{"a"}, Actions: []Action{Cmd("run-b")}}))
	require.NoError(t, g.Add(Task{Name: "c", Deps: []string{"b"}, Actions: []Action{Cmd("run-c")}}))
	require.NoError(t, g.Add(Task{Name: "d", Actions: []Action{Cmd("run-d")}}))

	sh := newFakeShell()
	sh.exits["fail-a"] = 1
	r, _ := newTestRunner(g, sh, WithKeepGoing(true))

	report, err := r.Run(context.Background(), "c", "d")
	require.ErrorIs(t, err, ErrTaskFailed)
	assert.Equal(t, map[string]Status{
		"a": StatusFailed,
		"b": StatusDepFailed,
		"c": StatusDepFailed,
		"d": StatusSuccess,
	}, statuses(report))
	assert.Equal(t, []string{"fail-a", "run-d"}, sh.Calls())
}

func TestRunnerIgnoreFailure(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(Task{Name: "pylint", Actions: []Action{
		Cmd("pylint a.py").IgnoreFailure(),
		Cmd("pylint b.py"),
	}}))

	sh := newFakeShell()
	sh.exits["pylint a.py"] = 4
	r, _ := newTestRunner(g, sh)

	report, err := r.Run(context.Background(), "pylint")
	require.NoError(t, err)

	res, _ := report.Result("pylint")
	assert.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Actions, 2)
	assert.True(t, res.Actions[0].Ignored)
	assert.Error(t, res.Actions[0].Err)
	assert.False(t, res.Actions[1].Ignored)
}

func TestRunnerUpToDate(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(Task{
		Name:     "rmimages",
		Actions:  []Action{Cmd("docker rmi")},
		Uptodate: []Check{ShellCheck("no-dangling")},
	}))
	require.NoError(t, g.Add(Task{
		Name:     "gitenv",
		Actions:  []Action{Cmd("write")},
		Uptodate: []Check{Never()},
	}))

	sh := newFakeShell()
	r, out := newTestRunner(g, sh)

	report, err := r.Run(context.Background(), "rmimages", "gitenv")
	require.NoError(t, err)
	assert.Equal(t, map[string]Status{
		"rmimages": StatusUpToDate,
		"gitenv":   StatusSuccess,
	}, statuses(report))
	assert.Equal(t, []string{"no-dangling", "write"}, sh.Calls())
	assert.Equal(t, "-- rmimages\n.  gitenv\n", out.String())
}

func TestRunnerFuncAction(t *testing.T) {
	var seen *Env
	g := NewGraph()
	require.NoError(t, g.Add(Task{Name: "gitenv", Actions: []Action{
		Func("write", func(_ context.Context, env *Env) error {
			seen = env
			return nil
		}),
	}}))
	require.NoError(t, g.Add(Task{Name: "broken", Actions: []Action{
		Func("explode", func(context.Context, *Env) error { return errors.New("boom") }),
	}}))

	r, _ := newTestRunner(g, newFakeShell(), WithDir("/srv/app"))
	_, err := r.Run(context.Background(), "gitenv")
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "/srv/app", seen.Dir)

	report, err := r.Run(context.Background(), "broken")
	require.ErrorIs(t, err, ErrTaskFailed)
	res, _ := report.Result("broken")
	assert.ErrorContains(t, res.Err, "broken: boom")
	assert.Equal(t, "explode()", res.Actions[0].Action)
}

func TestRunnerLogs(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(Task{Name: "logs", Actions: []Action{Cmd("compose logs")}}))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	r, _ := newTestRunner(g, newFakeShell(), WithLogger(logger))

	_, err := r.Run(context.Background(), "logs")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `msg="task started" task=logs`)
	assert.Contains(t, logs.String(), `msg="task finished" task=logs status=success`)
}

func TestRunnerPlanError(t *testing.T) {
	r, _ := newTestRunner(NewGraph(), newFakeShell())
	report, err := r.Run(context.Background(), "ghost")
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestRunnerCancelled(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(Task{Name: "a", Actions: []Action{Cmd("a")}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sh := newFakeShell()
	r, _ := newTestRunner(g, sh)
	report, err := r.Run(ctx, "a")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusNotRun, statuses(report)["a"])
	assert.Empty(t, sh.Calls())
}

// blockingShell counts concurrent commands and holds each one briefly.
type blockingShell struct {
	running atomic.Int32
	peak    atomic.Int32
	calls   atomic.Int32
}

func (b *blockingShell) Run(ctx context.Context, _, _ string, _, _ io.Writer) error {
	n := b.running.Add(1)
	defer b.running.Add(-1)
	b.calls.Add(1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(30 * time.Millisecond):
	case <-ctx.Done():
	}
	return nil
}

func TestRunnerParallel(t *testing.T) {
	g := NewGraph()
	var subs []Task
	for _, svc := range []string{"bot", "db", "web", "worker"} {
		subs = append(subs, Task{Name: svc, Deps: []string{"noroot"}, Actions: []Action{Cmd("tar " + svc)}})
	}
	require.NoError(t, g.Add(Task{Name: "noroot", Actions: []Action{Cmd("check")}}))
	require.NoError(t, g.AddGroup("tar", "tar up sources", subs...))
	require.NoError(t, g.Add(Task{Name: "build", Deps: []string{"tar"}, Actions: []Action{Cmd("build")}}))

	sh := &blockingShell{}
	r, _ := newTestRunner(g, sh, WithJobs(2))

	report, err := r.Run(context.Background(), "build")
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, int32(6), sh.calls.Load())
	assert.Equal(t, int32(2), sh.peak.Load())

	// Results stay in plan order.
	assert.Equal(t, "noroot", report.Results[0].Task)
	assert.Equal(t, "build", report.Results[len(report.Results)-1].Task)
}
