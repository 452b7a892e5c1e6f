package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"
)

// JobGraph builds the dependency graph of doc's jobs. An edge runs from each
// job named in a step's "passed" list to the job containing that step.
// Problems found while building (duplicate names, unknown passed jobs,
// cycles) are returned as a *GraphError alongside the partial graph.
func JobGraph(doc Document) (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	var problems []string

	names := doc.JobNames()
	for i, name := range names {
		if name == "" {
			problems = append(problems, fmt.Sprintf("job %d has no name", i))
			continue
		}
		if err := g.AddVertex(name); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				problems = append(problems, fmt.Sprintf("duplicate job name %q", name))
				continue
			}
			return g, fmt.Errorf("add job %s: %w", name, err)
		}
	}

	for i, name := range names {
		if name == "" {
			continue
		}
		plan, _ := doc.Job(i)[fieldPlan].([]any)

		for _, upstream := range passedJobs(plan) {
			err := g.AddEdge(upstream, name)
			switch {
			case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
			case errors.Is(err, graph.ErrVertexNotFound):
				problems = append(problems, fmt.Sprintf("job %q: passed references unknown job %q", name, upstream))
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				problems = append(problems, fmt.Sprintf("job %q: passed %q creates a cycle", name, upstream))
			default:
				return g, fmt.Errorf("link %s -> %s: %w", upstream, name, err)
			}
		}
	}

	if len(problems) > 0 {
		return g, &GraphError{Problems: problems}
	}
	return g, nil
}

// ValidateJobGraph reports whether doc's jobs form a valid DAG.
func ValidateJobGraph(doc Document) error {
	_, err := JobGraph(doc)
	return err
}

// JobOrder returns the job names of doc in a dependency-respecting order,
// breaking ties alphabetically.
func JobOrder(doc Document) ([]string, error) {
	g, err := JobGraph(doc)
	if err != nil {
		return nil, err
	}

	order, err := graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("sort jobs: %w", err)
	}
	return order, nil
}

// passedJobs collects every job named in a "passed" list anywhere inside
// plan, including nested aggregate/in_parallel/do steps. Names are sorted
// and unique.
func passedJobs(plan []any) []string {
	seen := make(map[string]bool)
	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case map[string]any:
			for key, child := range val {
				if key == fieldPassed {
					names, _ := toStringSlice(child)
					for _, n := range names {
						seen[n] = true
					}
					continue
				}
				walk(child)
			}
		case []any:
			for _, child := range val {
				walk(child)
			}
		}
	}
	walk(plan)

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
