// Package graph assembles one scan's entities and edges into a queryable
// in-memory dependency graph. Persistence and cross-scan deduplication stay
// with the downstream storage collaborator; this view lives only as long as
// the scan result it was built from.
package graph

import (
	"errors"
	"fmt"
	"sort"

	dgraph "github.com/dominikbraun/graph"

	"github.com/parseltongue-dev/parseltongue/internal/entity"
	"github.com/parseltongue-dev/parseltongue/internal/stream"
)

// Graph is a directed dependency graph over ISGL1 keys. Edge targets that
// were never resolved to an extracted entity (references into files outside
// the scan) appear as bare identifier vertices.
type Graph struct {
	g        dgraph.Graph[string, string]
	entities map[string]entity.Entity
}

// Build constructs the graph for one scan result.
func Build(result *stream.Result) (*Graph, error) {
	g := dgraph.New(dgraph.StringHash, dgraph.Directed())
	entities := make(map[string]entity.Entity, len(result.Entities))

	for _, ke := range result.Entities {
		key := string(ke.Key)
		entities[key] = ke.Entity
		if err := g.AddVertex(key); err != nil && !errors.Is(err, dgraph.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("adding vertex %s: %w", key, err)
		}
	}

	for _, e := range result.Edges {
		if err := g.AddVertex(e.ToKey); err != nil && !errors.Is(err, dgraph.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("adding vertex %s: %w", e.ToKey, err)
		}
		err := g.AddEdge(e.FromKey, e.ToKey, dgraph.EdgeAttribute("kind", string(e.Kind)))
		if err != nil && !errors.Is(err, dgraph.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("adding edge %s -> %s: %w", e.FromKey, e.ToKey, err)
		}
	}

	return &Graph{g: g, entities: entities}, nil
}

// Entity returns the extracted entity behind a key, if the key belongs to
// this scan.
func (gr *Graph) Entity(key string) (entity.Entity, bool) {
	e, ok := gr.entities[key]
	return e, ok
}

// DependenciesOf returns the keys (or unresolved identifiers) the given
// entity points at, sorted.
func (gr *Graph) DependenciesOf(key string) ([]string, error) {
	adjacency, err := gr.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	return sortedNeighbors(adjacency, key)
}

// DependentsOf returns the keys of entities pointing at the given key,
// sorted.
func (gr *Graph) DependentsOf(key string) ([]string, error) {
	predecessors, err := gr.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	return sortedNeighbors(predecessors, key)
}

// Order returns the number of vertices, unresolved targets included.
func (gr *Graph) Order() (int, error) {
	return gr.g.Order()
}

// Size returns the number of edges.
func (gr *Graph) Size() (int, error) {
	return gr.g.Size()
}

func sortedNeighbors(m map[string]map[string]dgraph.Edge[string], key string) ([]string, error) {
	neighbors, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("unknown key %q", key)
	}
	out := make([]string, 0, len(neighbors))
	for n := range neighbors {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
