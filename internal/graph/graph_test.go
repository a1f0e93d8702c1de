package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parseltongue-dev/parseltongue/internal/entity"
	"github.com/parseltongue-dev/parseltongue/internal/extract"
	"github.com/parseltongue-dev/parseltongue/internal/isgl"
	"github.com/parseltongue-dev/parseltongue/internal/stream"
)

func keyed(name string, kind entity.Kind, start, end int) extract.KeyedEntity {
	e := entity.Entity{
		Name:      name,
		Kind:      kind,
		FilePath:  "app.py",
		LineRange: entity.LineRange{Start: start, End: end},
		Language:  entity.LangPython,
	}
	return extract.KeyedEntity{Key: isgl.Generate(e), Entity: e}
}

func TestBuild_Queries(t *testing.T) {
	t.Parallel()

	service := keyed("Service", entity.KindClass, 1, 10)
	handle := keyed("handle", entity.KindMethod, 2, 5)

	result := &stream.Result{
		Entities: []extract.KeyedEntity{service, handle},
		Edges: []entity.DependencyEdge{
			{FromKey: string(service.Key), ToKey: string(handle.Key), Kind: entity.EdgeUses},
			{FromKey: string(handle.Key), ToKey: "validate", Kind: entity.EdgeCalls},
		},
	}

	g, err := Build(result)
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, 3, order) // two entities plus the unresolved "validate" target

	size, err := g.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	deps, err := g.DependenciesOf(string(handle.Key))
	require.NoError(t, err)
	assert.Equal(t, []string{"validate"}, deps)

	dependents, err := g.DependentsOf(string(handle.Key))
	require.NoError(t, err)
	assert.Equal(t, []string{string(service.Key)}, dependents)

	got, ok := g.Entity(string(service.Key))
	require.True(t, ok)
	assert.Equal(t, "Service", got.Name)

	_, ok = g.Entity("validate")
	assert.False(t, ok)
}

func TestBuild_DuplicateEdgesCollapse(t *testing.T) {
	t.Parallel()

	a := keyed("a", entity.KindFunction, 1, 2)
	b := keyed("b", entity.KindFunction, 4, 5)

	edge := entity.DependencyEdge{FromKey: string(a.Key), ToKey: string(b.Key), Kind: entity.EdgeCalls}
	result := &stream.Result{
		Entities: []extract.KeyedEntity{a, b},
		Edges:    []entity.DependencyEdge{edge, edge, edge},
	}

	g, err := Build(result)
	require.NoError(t, err)

	size, err := g.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestBuild_EmptyResult(t *testing.T) {
	t.Parallel()

	g, err := Build(&stream.Result{})
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Zero(t, order)

	_, err = g.DependenciesOf("missing")
	assert.Error(t, err)
}
