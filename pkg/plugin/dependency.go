package plugin

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
)

// DependencyResolver resolves plugin dependencies and determines load order
type DependencyResolver struct {
	logger zerolog.Logger
}

// NewDependencyResolver creates a new dependency resolver
func NewDependencyResolver(logger zerolog.Logger) *DependencyResolver {
	return &DependencyResolver{
		logger: logger.With().Str("component", "dependency-resolver").Logger(),
	}
}

// BuildDependencyGraph builds a dependency graph from plugin metadata
func (r *DependencyResolver) BuildDependencyGraph(plugins []*PluginMetadata) *DependencyGraph {
	graph := &DependencyGraph{
		Nodes: make(map[string]*PluginMetadata),
		Edges: make(map[string][]PluginDependency),
	}

	for _, meta := range plugins {
		if meta == nil {
			continue
		}
		graph.Nodes[meta.PackageName] = meta
		graph.Edges[meta.PackageName] = append([]PluginDependency(nil), meta.Dependencies...)
	}

	return graph
}

// DetectCycles detects cycles in the dependency graph using DFS.
// Each cycle is returned as the list of package names on it.
func (r *DependencyResolver) DetectCycles(graph *DependencyGraph) [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := []string{}

	var dfs func(string) bool
	dfs = func(name string) bool {
		visited[name] = true
		recStack[name] = true
		path = append(path, name)

		for _, dep := range graph.Edges[name] {
			if _, ok := graph.Nodes[dep.PackageName]; !ok {
				continue
			}
			if !visited[dep.PackageName] {
				if dfs(dep.PackageName) {
					return true
				}
			} else if recStack[dep.PackageName] {
				for i, id := range path {
					if id == dep.PackageName {
						cycle := make([]string, len(path)-i)
						copy(cycle, path[i:])
						cycles = append(cycles, cycle)
						break
					}
				}
				return true
			}
		}

		path = path[:len(path)-1]
		recStack[name] = false
		return false
	}

	for _, name := range nodeNames(graph) {
		if !visited[name] {
			path = path[:0]
			dfs(name)
		}
	}

	if len(cycles) > 0 {
		r.logger.Warn().Int("count", len(cycles)).Msg("Detected dependency cycles")
	}

	return cycles
}

// ValidateDependencies checks every node's dependencies against the graph.
// Missing optional dependencies are ignored.
func (r *DependencyResolver) ValidateDependencies(graph *DependencyGraph) map[string]error {
	errs := make(map[string]error)

	for _, name := range nodeNames(graph) {
		var problems []error
		for _, dep := range graph.Edges[name] {
			depMeta, ok := graph.Nodes[dep.PackageName]
			if !ok {
				if dep.IsOptional {
					continue
				}
				problems = append(problems, fmt.Errorf("%w: %s", ErrDependencyNotFound, dep.PackageName))
				r.logger.Error().
					Str("plugin", name).
					Str("dependency", dep.PackageName).
					Msg("Missing dependency")
				continue
			}

			if err := CheckMinVersion(depMeta.Version, dep.MinVersion); err != nil {
				problems = append(problems, fmt.Errorf("dependency %s: %w", dep.PackageName, err))
				r.logger.Error().
					Str("plugin", name).
					Str("dependency", dep.PackageName).
					Str("required", dep.MinVersion).
					Str("actual", depMeta.Version).
					Msg("Incompatible dependency version")
			}
		}
		if len(problems) > 0 {
			errs[name] = errors.Join(problems...)
		}
	}

	return errs
}

// CheckMinVersion returns ErrIncompatibleVersion when version is older than
// minVersion. An empty minVersion means DefaultVersion.
func CheckMinVersion(version, minVersion string) error {
	if minVersion == "" {
		minVersion = DefaultVersion
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid version %s: %w", version, err)
	}
	min, err := semver.NewVersion(minVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum version %s: %w", minVersion, err)
	}

	if v.LessThan(min) {
		return fmt.Errorf("%w: %s is older than %s", ErrIncompatibleVersion, version, minVersion)
	}
	return nil
}

// TopologicalSort returns package names in load order, dependencies before
// dependents. Ties are broken by package name.
func (r *DependencyResolver) TopologicalSort(graph *DependencyGraph) ([]string, error) {
	if cycles := r.DetectCycles(graph); len(cycles) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrCyclicDependency, cycles)
	}

	var sorted []string
	visited := make(map[string]bool)

	var visit func(string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true

		for _, dep := range graph.Edges[name] {
			if _, ok := graph.Nodes[dep.PackageName]; ok {
				visit(dep.PackageName)
			}
		}
		sorted = append(sorted, name)
	}

	for _, name := range nodeNames(graph) {
		visit(name)
	}

	r.logger.Debug().
		Int("count", len(sorted)).
		Strs("order", sorted).
		Msg("Computed load order")

	return sorted, nil
}

// GetDependents returns the plugins that depend on packageName
func (r *DependencyResolver) GetDependents(graph *DependencyGraph, packageName string) []string {
	var dependents []string

	for _, name := range nodeNames(graph) {
		for _, dep := range graph.Edges[name] {
			if dep.PackageName == packageName {
				dependents = append(dependents, name)
				break
			}
		}
	}

	return dependents
}

func nodeNames(graph *DependencyGraph) []string {
	names := make([]string, 0, len(graph.Nodes))
	for name := range graph.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
