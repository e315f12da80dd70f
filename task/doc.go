// Package task declares named tasks with dependencies and runs them in
// dependency order.
//
// Core types:
//   - Task: a named unit of work made of Actions, optional Targets and Uptodate checks
//   - Action: a shell command or a Go function, optionally allowed to fail
//   - Graph: the set of declared tasks, default tasks and dependency planning
//   - Runner: executes a plan once per task, sequentially or with bounded parallelism
//   - Shell: runs command lines; ExecShell uses "sh -c"
//
// A task is skipped as up to date only when it declares at least one Uptodate
// check, every check reports true and every target exists.
//
// Example:
//
//	g := task.NewGraph()
//	_ = g.Add(task.Task{Name: "noroot", Actions: []task.Action{task.Cmd(`test "$(id -u)" -ne 0`)}})
//	_ = g.Add(task.Task{Name: "deploy", Deps: []string{"noroot"}, Actions: []task.Action{task.Cmd("docker-compose up -d")}})
//	report, err := task.NewRunner(g).Run(ctx, "deploy")
package task
