package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parseltongue-dev/parseltongue/internal/entity"
	"github.com/parseltongue-dev/parseltongue/internal/lang"
	"github.com/parseltongue-dev/parseltongue/internal/parser"
)

func extractSource(t *testing.T, ext, path, source string) *FileResult {
	t.Helper()

	registry := lang.NewRegistry(nil)
	h, ok := registry.Resolve(ext)
	require.True(t, ok, "extension %s must be supported", ext)

	tree, err := parser.Parse([]byte(source), h)
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	return Extract(tree, path, h)
}

func entityNames(result *FileResult) []string {
	names := make([]string, 0, len(result.Entities))
	for _, ke := range result.Entities {
		names = append(names, ke.Entity.Name)
	}
	return names
}

func findEntity(t *testing.T, result *FileResult, name string) KeyedEntity {
	t.Helper()
	for _, ke := range result.Entities {
		if ke.Entity.Name == name {
			return ke
		}
	}
	t.Fatalf("entity %q not found in %v", name, entityNames(result))
	return KeyedEntity{}
}

func TestExtract_RustSingleFunction(t *testing.T) {
	t.Parallel()

	result := extractSource(t, ".rs", "src/sum.rs",
		"fn calculate_sum(a: i32, b: i32) -> i32 { a + b }\n")

	require.Len(t, result.Entities, 1)

	ke := result.Entities[0]
	assert.Equal(t, "calculate_sum", ke.Entity.Name)
	assert.Equal(t, entity.KindFunction, ke.Entity.Kind)
	assert.Equal(t, entity.LangRust, ke.Entity.Language)
	assert.Equal(t, entity.LineRange{Start: 1, End: 1}, ke.Entity.LineRange)
	assert.Equal(t, "rust:function:calculate_sum:src/sum.rs:1-1", string(ke.Key))
	assert.Zero(t, result.SyntaxErrors)
}

func TestExtract_PythonClassAndFunctions(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		"class Calculator:",
		"    def add(self, a, b):",
		"        return a + b",
		"",
		"def hello_world():",
		"    print(\"hello\")",
		"",
	}, "\n")

	result := extractSource(t, ".py", "calc.py", source)

	require.Len(t, result.Entities, 3)

	calc := findEntity(t, result, "Calculator")
	assert.Equal(t, entity.KindClass, calc.Entity.Kind)

	add := findEntity(t, result, "add")
	assert.Equal(t, entity.KindMethod, add.Entity.Kind)
	assert.Equal(t, "Calculator", add.Entity.Scope)
	assert.Equal(t, "Calculator.add", add.Entity.QualifiedName())

	hello := findEntity(t, result, "hello_world")
	assert.Equal(t, entity.KindFunction, hello.Entity.Kind)
	assert.Empty(t, hello.Entity.Scope)

	// Containment is reported as a Uses edge from class to method.
	assert.Contains(t, result.Edges, entity.DependencyEdge{
		FromKey: string(calc.Key),
		ToKey:   string(add.Key),
		Kind:    entity.EdgeUses,
	})

	// hello_world calls print.
	assert.Contains(t, result.Edges, entity.DependencyEdge{
		FromKey: string(hello.Key),
		ToKey:   "print",
		Kind:    entity.EdgeCalls,
	})
}

func TestExtract_PythonInheritance(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		"class Base:",
		"    pass",
		"",
		"class Child(Base):",
		"    pass",
		"",
	}, "\n")

	result := extractSource(t, ".py", "models.py", source)

	child := findEntity(t, result, "Child")
	assert.Contains(t, result.Edges, entity.DependencyEdge{
		FromKey: string(child.Key),
		ToKey:   "Base",
		Kind:    entity.EdgeExtends,
	})
}

func TestExtract_GoTypesAndCalls(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		"package math",
		"",
		"// Adder sums things.",
		"type Adder interface {",
		"\tAdd(a, b int) int",
		"}",
		"",
		"type Calc struct {",
		"\ttotal int",
		"}",
		"",
		"func (c *Calc) Add(a, b int) int {",
		"\treturn helper(a) + b",
		"}",
		"",
		"func helper(x int) int {",
		"\treturn x",
		"}",
		"",
	}, "\n")

	result := extractSource(t, ".go", "math/calc.go", source)

	adder := findEntity(t, result, "Adder")
	assert.Equal(t, entity.KindInterface, adder.Entity.Kind)
	assert.Equal(t, "// Adder sums things.", adder.Entity.Doc)

	calc := findEntity(t, result, "Calc")
	assert.Equal(t, entity.KindStruct, calc.Entity.Kind)

	add := findEntity(t, result, "Add")
	assert.Equal(t, entity.KindMethod, add.Entity.Kind)
	assert.Contains(t, add.Entity.Signature, "func (c *Calc) Add(a, b int) int")

	assert.Contains(t, result.Edges, entity.DependencyEdge{
		FromKey: string(add.Key),
		ToKey:   "helper",
		Kind:    entity.EdgeCalls,
	})
}

func TestExtract_RecursionIsNotASelfLoop(t *testing.T) {
	t.Parallel()

	result := extractSource(t, ".go", "rec.go",
		"package main\n\nfunc rec(n int) int {\n\treturn rec(n - 1)\n}\n")

	require.Len(t, result.Entities, 1)
	assert.Empty(t, result.Edges)
}

func TestExtract_MalformedSourceIsPartial(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		"def good():",
		"    return 1",
		"",
		"def broken(:",
		"",
	}, "\n")

	result := extractSource(t, ".py", "bad.py", source)

	assert.Contains(t, entityNames(result), "good")
	assert.NotContains(t, entityNames(result), "broken")
	assert.Positive(t, result.SyntaxErrors)
}

func TestExtract_BinaryGarbageYieldsNothing(t *testing.T) {
	t.Parallel()

	result := extractSource(t, ".py", "junk.py", "\x00\x01\x02\xff\xfe garbage \x00")

	assert.Empty(t, result.Entities)
	assert.Empty(t, result.Edges)
}

func TestExtract_SameNameDistinctSpans(t *testing.T) {
	t.Parallel()

	// Two same-named functions at different lines; keys differ only in span.
	source := strings.Join([]string{
		"def run():",
		"    return 1",
		"",
		"def run():",
		"    return 2",
		"",
	}, "\n")

	result := extractSource(t, ".py", "dup.py", source)

	require.Len(t, result.Entities, 2)
	assert.NotEqual(t, result.Entities[0].Key, result.Entities[1].Key)
	assert.Zero(t, result.KeyCollisions)
}

func TestExtract_DocCommentOnFunction(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		"package main",
		"",
		"// helper does a thing.",
		"// It is small.",
		"func helper() {}",
		"",
	}, "\n")

	result := extractSource(t, ".go", "doc.go", source)

	helper := findEntity(t, result, "helper")
	assert.Equal(t, "// helper does a thing.\n// It is small.", helper.Entity.Doc)
}

func TestExtract_TypeScriptInterfaceAndEnum(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		"interface Shape {",
		"  area(): number;",
		"}",
		"",
		"enum Color { Red, Green }",
		"",
		"class Circle implements Shape {",
		"  area(): number { return 1; }",
		"}",
		"",
	}, "\n")

	result := extractSource(t, ".ts", "shapes.ts", source)

	shape := findEntity(t, result, "Shape")
	assert.Equal(t, entity.KindInterface, shape.Entity.Kind)

	color := findEntity(t, result, "Color")
	assert.Equal(t, entity.KindEnum, color.Entity.Kind)

	circle := findEntity(t, result, "Circle")
	assert.Equal(t, entity.KindClass, circle.Entity.Kind)

	assert.Contains(t, result.Edges, entity.DependencyEdge{
		FromKey: string(circle.Key),
		ToKey:   "Shape",
		Kind:    entity.EdgeImplements,
	})
}
