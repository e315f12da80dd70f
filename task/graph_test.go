package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}

func TestGraphAdd(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(Task{Name: "noroot", Doc: "make sure script isn't run as root"}))

	err := g.Add(Task{Name: "noroot"})
	assert.ErrorIs(t, err, ErrDuplicateTask)

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, gerr.Error(), `"noroot"`)

	assert.ErrorIs(t, g.Add(Task{}), ErrInvalidTask)
	assert.ErrorIs(t, g.Add(Task{Name: "has space"}), ErrInvalidTask)
	assert.ErrorIs(t, g.Add(Task{Name: "KEY=value"}), ErrInvalidTask)
	assert.ErrorIs(t, g.Add(Task{Name: "ok", Deps: []string{""}}), ErrInvalidTask)

	task, ok := g.Task("noroot")
	require.True(t, ok)
	assert.Equal(t, "make sure script isn't run as root", task.Doc)

	_, ok = g.Task("missing")
	assert.False(t, ok)
}

func TestGraphAddGroup(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddGroup("publish", "publish docker image(s)",
		Task{Name: "bot"},
		Task{Name: "db", Doc: "push db"},
	))
	require.NoError(t, g.AddGroup("test", "run pytest"))

	assert.Equal(t, []string{"publish", "publish:bot", "publish:db", "test"}, names(g.Tasks()))

	group, ok := g.Task("publish")
	require.True(t, ok)
	assert.Equal(t, []string{"publish:bot", "publish:db"}, group.Deps)

	bot, _ := g.Task("publish:bot")
	assert.Equal(t, "publish docker image(s)", bot.Doc)
	db, _ := g.Task("publish:db")
	assert.Equal(t, "push db", db.Doc)

	empty, ok := g.Task("test")
	require.True(t, ok)
	assert.Empty(t, empty.Deps)

	assert.ErrorIs(t, g.AddGroup("x", "", Task{}), ErrInvalidTask)
	assert.ErrorIs(t, g.AddGroup("publish", ""), ErrDuplicateTask)
}

func TestGraphPlan(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(Task{Name: "deploy", Deps: []string{"noroot", "test", "build"}}))
	require.NoError(t, g.Add(Task{Name: "build", Deps: []string{"noroot", "tar"}}))
	require.NoError(t, g.Add(Task{Name: "tar", Deps: []string{"noroot", "test"}}))
	require.NoError(t, g.Add(Task{Name: "test", Deps: []string{"noroot"}}))
	require.NoError(t, g.Add(Task{Name: "noroot"}))
	require.NoError(t, g.Add(Task{Name: "logs"}))
	g.SetDefault("logs", "deploy")

	t.Run("DependenciesFirstOnce", func(t *testing.T) {
		plan, err := g.Plan("deploy")
		require.NoError(t, err)
		assert.Equal(t, []string{"noroot", "test", "tar", "build", "deploy"}, plan)
	})

	t.Run("Defaults", func(t *testing.T) {
		assert.Equal(t, []string{"logs", "deploy"}, g.Defaults())
		plan, err := g.Plan()
		require.NoError(t, err)
		assert.Equal(t, []string{"logs", "noroot", "test", "tar", "build", "deploy"}, plan)
	})

	t.Run("RepeatedRequest", func(t *testing.T) {
		plan, err := g.Plan("test", "test", "noroot")
		require.NoError(t, err)
		assert.Equal(t, []string{"noroot", "test"}, plan)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := g.Plan("nope")
		assert.ErrorIs(t, err, ErrUnknownTask)
	})

	assert.NoError(t, g.Validate())
}

func TestGraphPlanErrors(t *testing.T) {
	t.Run("UnknownDependency", func(t *testing.T) {
		g := NewGraph()
		require.NoError(t, g.Add(Task{Name: "build", Deps: []string{"tar"}}))

		_, err := g.Plan("build")
		require.ErrorIs(t, err, ErrUnknownTask)
		assert.Contains(t, err.Error(), `"tar" (required by "build")`)
		assert.ErrorIs(t, g.Validate(), ErrUnknownTask)
	})

	t.Run("Cycle", func(t *testing.T) {
		g := NewGraph()
		require.NoError(t, g.Add(Task{Name: "a", Deps: []string{"b"}}))
		require.NoError(t, g.Add(Task{Name: "b", Deps: []string{"c"}}))
		require.NoError(t, g.Add(Task{Name: "c", Deps: []string{"a"}}))

		_, err := g.Plan("a")
		require.ErrorIs(t, err, ErrCycle)
		assert.Contains(t, err.Error(), "a -> b -> c -> a")
	})

	t.Run("SelfLoop", func(t *testing.T) {
		g := NewGraph()
		require.NoError(t, g.Add(Task{Name: "a", Deps: []string{"a"}}))
		_, err := g.Plan("a")
		assert.ErrorIs(t, err, ErrCycle)
	})

	t.Run("UnknownDefault", func(t *testing.T) {
		g := NewGraph()
		g.SetDefault("ghost")
		assert.ErrorIs(t, g.Validate(), ErrUnknownTask)
	})
}
