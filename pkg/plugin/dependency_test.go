package plugin

import (
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meta(name, version string, deps ...PluginDependency) *PluginMetadata {
	return &PluginMetadata{Name: name, PackageName: name, Version: version, Dependencies: deps}
}

func dep(name, minVersion string) PluginDependency {
	return PluginDependency{PackageName: name, MinVersion: minVersion}
}

func TestDependencyResolver_BuildDependencyGraph(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	resolver := NewDependencyResolver(logger)

	t.Run("builds graph with no dependencies", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("a.one", "1.0.0"),
			meta("a.two", "1.0.0"),
			nil,
		})

		assert.Len(t, graph.Nodes, 2)
		assert.Empty(t, graph.Edges["a.one"])
	})

	t.Run("builds graph with dependencies", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("a.one", "1.0.0"),
			meta("a.two", "1.0.0", dep("a.one", "1.0.0")),
		})

		require.Len(t, graph.Edges["a.two"], 1)
		assert.Equal(t, "a.one", graph.Edges["a.two"][0].PackageName)
	})
}

func TestDependencyResolver_DetectCycles(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	resolver := NewDependencyResolver(logger)

	t.Run("no cycles", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("a", "1.0.0"),
			meta("b", "1.0.0", dep("a", "")),
		})

		assert.Empty(t, resolver.DetectCycles(graph))
	})

	t.Run("two node cycle", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("a", "1.0.0", dep("b", "")),
			meta("b", "1.0.0", dep("a", "")),
		})

		cycles := resolver.DetectCycles(graph)

		require.Len(t, cycles, 1)
		assert.ElementsMatch(t, []string{"a", "b"}, cycles[0])
	})

	t.Run("edge to unknown node is not a cycle", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("a", "1.0.0", dep("missing", "")),
		})

		assert.Empty(t, resolver.DetectCycles(graph))
	})
}

func TestDependencyResolver_ValidateDependencies(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	resolver := NewDependencyResolver(logger)

	t.Run("all satisfied", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("core", "1.5.0"),
			meta("notes", "1.0.0", dep("core", "1.2.0")),
		})

		assert.Empty(t, resolver.ValidateDependencies(graph))
	})

	t.Run("missing required dependency", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("notes", "1.0.0", dep("core", "1.0.0")),
		})

		errs := resolver.ValidateDependencies(graph)

		require.Contains(t, errs, "notes")
		assert.True(t, errors.Is(errs["notes"], ErrDependencyNotFound))
	})

	t.Run("missing optional dependency is ignored", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("notes", "1.0.0", PluginDependency{PackageName: "sync", MinVersion: "1.0.0", IsOptional: true}),
		})

		assert.Empty(t, resolver.ValidateDependencies(graph))
	})

	t.Run("dependency too old", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("core", "1.1.0"),
			meta("notes", "1.0.0", dep("core", "2.0.0")),
		})

		errs := resolver.ValidateDependencies(graph)

		require.Contains(t, errs, "notes")
		assert.True(t, errors.Is(errs["notes"], ErrIncompatibleVersion))
	})
}

func TestCheckMinVersion(t *testing.T) {
	assert.NoError(t, CheckMinVersion("1.0.0", ""))
	assert.NoError(t, CheckMinVersion("2.0.0", "1.9.9"))
	assert.NoError(t, CheckMinVersion("1.2.0", "1.2.0"))
	assert.ErrorIs(t, CheckMinVersion("0.9.0", ""), ErrIncompatibleVersion)
	assert.Error(t, CheckMinVersion("bad", "1.0.0"))
	assert.Error(t, CheckMinVersion("1.0.0", "bad"))
}

func TestDependencyResolver_TopologicalSort(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	resolver := NewDependencyResolver(logger)

	t.Run("dependencies load first", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("c", "1.0.0", dep("b", "")),
			meta("b", "1.0.0", dep("a", "")),
			meta("a", "1.0.0"),
		})

		order, err := resolver.TopologicalSort(graph)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("independent plugins sort by name", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("z", "1.0.0"),
			meta("m", "1.0.0"),
			meta("a", "1.0.0"),
		})

		order, err := resolver.TopologicalSort(graph)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "m", "z"}, order)
	})

	t.Run("cycle is an error", func(t *testing.T) {
		graph := resolver.BuildDependencyGraph([]*PluginMetadata{
			meta("a", "1.0.0", dep("b", "")),
			meta("b", "1.0.0", dep("a", "")),
		})

		_, err := resolver.TopologicalSort(graph)

		assert.ErrorIs(t, err, ErrCyclicDependency)
	})
}

func TestDependencyResolver_GetDependents(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	resolver := NewDependencyResolver(logger)

	graph := resolver.BuildDependencyGraph([]*PluginMetadata{
		meta("core", "1.0.0"),
		meta("notes", "1.0.0", dep("core", "")),
		meta("todo", "1.0.0", dep("core", "")),
		meta("other", "1.0.0"),
	})

	assert.Equal(t, []string{"notes", "todo"}, resolver.GetDependents(graph, "core"))
	assert.Empty(t, resolver.GetDependents(graph, "other"))
}
