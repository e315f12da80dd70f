package task

import (
	"sort"
	"sync"
)

// Graph holds declared tasks. It is safe for concurrent use.
type Graph struct {
	mu       sync.RWMutex
	tasks    map[string]Task
	defaults []string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{tasks: make(map[string]Task)}
}

// Add declares t. Dependencies are resolved at planning time, so tasks may be
// added in any order.
func (g *Graph) Add(t Task) error {
	if err := validateName(t.Name); err != nil {
		return err
	}
	for _, dep := range t.Deps {
		if err := validateName(dep); err != nil {
			return err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.tasks[t.Name]; exists {
		return graphErrorf(ErrDuplicateTask, "%q", t.Name)
	}
	g.tasks[t.Name] = t
	return nil
}

// AddGroup declares subtasks under name, each renamed to "name:sub", plus a
// task called name that depends on all of them. A group without subtasks is
// a valid no-op.
func (g *Graph) AddGroup(name, doc string, subtasks ...Task) error {
	if err := validateName(name); err != nil {
		return err
	}

	group := Task{Name: name, Doc: doc}
	for _, sub := range subtasks {
		if sub.Name == "" {
			return graphErrorf(ErrInvalidTask, "subtask of %q has no name", name)
		}
		sub.Name = name + ":" + sub.Name
		if sub.Doc == "" {
			sub.Doc = doc
		}
		if err := g.Add(sub); err != nil {
			return err
		}
		group.Deps = append(group.Deps, sub.Name)
	}
	return g.Add(group)
}

// SetDefault names the tasks run when none are requested.
func (g *Graph) SetDefault(names ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.defaults = append([]string(nil), names...)
}

// Defaults returns the default task names.
func (g *Graph) Defaults() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.defaults...)
}

// Task returns the task declared as name.
func (g *Graph) Task(name string) (Task, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.tasks[name]
	return t, ok
}

// Tasks returns all tasks sorted by name.
func (g *Graph) Tasks() []Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Task, 0, len(g.tasks))
	for _, t := range g.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Plan returns the names to execute for the requested tasks: every
// dependency before its dependents, each task once, in request and
// declaration order otherwise. With no names the defaults are planned.
func (g *Graph) Plan(names ...string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(names) == 0 {
		names = g.defaults
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.tasks))
	order := make([]string, 0, len(g.tasks))
	var path []string

	var visit func(name, requiredBy string) error
	visit = func(name, requiredBy string) error {
		t, ok := g.tasks[name]
		if !ok {
			if requiredBy == "" {
				return graphErrorf(ErrUnknownTask, "%q", name)
			}
			return graphErrorf(ErrUnknownTask, "%q (required by %q)", name, requiredBy)
		}

		switch state[name] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, p := range path {
				if p == name {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), path[start:]...), name)
			return cycleError(cycle)
		}

		state[name] = visiting
		path = append(path, name)
		for _, dep := range t.Deps {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range names {
		if err := visit(name, ""); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Validate plans every declared task and the defaults, reporting unknown
// dependencies and cycles.
func (g *Graph) Validate() error {
	all := g.Tasks()
	names := make([]string, 0, len(all))
	for _, t := range all {
		names = append(names, t.Name)
	}
	names = append(names, g.Defaults()...)
	if len(names) == 0 {
		return nil
	}
	_, err := g.Plan(names...)
	return err
}
