// Package tasks declares the deployment task catalogue of a docker-compose
// project on top of a configuration Resolver.
//
// The catalogue reads the service names from docker-compose.yml under
// APP_PROJPATH and declares checkreqs, dockercompose, noroot, pull, venv,
// pyfiles, pylint, test, tls, tar, build, publish, gitenv, deploy, rmimages,
// rmvolumes, logs, rmcache, tidy, nuke, prune, stop and count. Per-service and
// per-submodule work is declared as task groups named "group:sub".
//
// Example:
//
//	r := config.New()
//	g, err := tasks.New(r).Graph()
//	if err != nil {
//		return err
//	}
//	_, err = task.NewRunner(g, task.WithDir(r.SearchPath())).Run(ctx)
package tasks
