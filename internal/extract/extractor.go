// Package extract runs a language's declarative query over a parse tree and
// turns the matches into entities and dependency edges. Extraction is
// best-effort: candidates overlapping unparseable spans are skipped, never
// fabricated, and a malformed file yields a partial result instead of an
// error.
package extract

import (
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/parseltongue-dev/parseltongue/internal/entity"
	"github.com/parseltongue-dev/parseltongue/internal/isgl"
	"github.com/parseltongue-dev/parseltongue/internal/lang"
	"github.com/parseltongue-dev/parseltongue/internal/parser"
)

// KeyedEntity pairs an entity with its generated ISGL1 key.
type KeyedEntity struct {
	Key    isgl.Key      `json:"key"`
	Entity entity.Entity `json:"entity"`
}

// FileResult is the outcome of extracting one file.
type FileResult struct {
	Entities []KeyedEntity
	Edges    []entity.DependencyEdge

	// SyntaxErrors counts unparseable regions the extractor had to skip over.
	SyntaxErrors int
	// KeyCollisions counts entities dropped because their key duplicated a
	// sibling's within this file.
	KeyCollisions int
}

// byteSpan is a half-open [start, end) byte range in the source.
type byteSpan struct {
	start uint
	end   uint
}

func (s byteSpan) overlaps(o byteSpan) bool {
	return s.start < o.end && o.start < s.end
}

func (s byteSpan) contains(o byteSpan) bool {
	return s.start <= o.start && o.end <= s.end && s != o
}

// candidate is a definition match before identity resolution.
type candidate struct {
	name string
	kind entity.Kind
	span byteSpan
	line entity.LineRange
	doc  string
	sig  string

	scope int // index of the innermost enclosing candidate, or -1
}

// reference is a dependency match awaiting attachment to its enclosing entity.
type reference struct {
	target string
	kind   entity.EdgeKind
	span   byteSpan
}

const (
	defPrefix = "definition."
	refPrefix = "reference."
)

var kindsByCapture = map[string]entity.Kind{
	"function":   entity.KindFunction,
	"method":     entity.KindMethod,
	"struct":     entity.KindStruct,
	"class":      entity.KindClass,
	"interface":  entity.KindInterface,
	"enum":       entity.KindEnum,
	"type_alias": entity.KindTypeAlias,
}

var edgesByCapture = map[string]entity.EdgeKind{
	"call":       entity.EdgeCalls,
	"use":        entity.EdgeUses,
	"extends":    entity.EdgeExtends,
	"implements": entity.EdgeImplements,
}

// Extract walks the tree with the handle's query and assembles the file's
// entities and raw dependency edges. filePath must already be in the
// normalized repository-relative form used in keys.
func Extract(tree *parser.Tree, filePath string, h *lang.Handle) *FileResult {
	source := tree.Source()
	root := tree.Root()

	errorSpans := collectErrorSpans(root)

	candidates, refs := runQuery(h, root, source)

	// Filter stage: anything overlapping a known-error region is dropped.
	candidates = filterCandidates(candidates, errorSpans)
	refs = filterReferences(refs, errorSpans)

	resolveScopes(candidates)

	result := &FileResult{SyntaxErrors: len(errorSpans)}
	batch := isgl.NewBatch()

	// keys[i] holds the resolved key for candidates[i]; collided entries stay
	// empty so their edges are dropped with them.
	keys := make([]isgl.Key, len(candidates))

	for i := range candidates {
		c := &candidates[i]

		e := entity.Entity{
			Name:      c.name,
			Kind:      c.kind,
			FilePath:  filePath,
			LineRange: c.line,
			Language:  h.Language,
			Doc:       c.doc,
			Signature: c.sig,
		}
		if c.scope >= 0 {
			e.Scope = candidates[c.scope].name
			// A function declared inside a type-like entity is a method.
			if e.Kind == entity.KindFunction && isTypeLike(candidates[c.scope].kind) {
				e.Kind = entity.KindMethod
			}
		}

		key, err := batch.Add(e)
		if err != nil {
			result.KeyCollisions++
			continue
		}
		keys[i] = key
		result.Entities = append(result.Entities, KeyedEntity{Key: key, Entity: e})
	}

	result.Edges = buildEdges(candidates, keys, refs)
	return result
}

// runQuery executes the declarative query and splits matches into definition
// candidates and dependency references based on capture names.
func runQuery(h *lang.Handle, root *sitter.Node, source []byte) ([]candidate, []reference) {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	names := h.Query.CaptureNames()
	matches := cursor.Matches(h.Query, root, source)

	var candidates []candidate
	var refs []reference

	for {
		m := matches.Next()
		if m == nil {
			break
		}

		var defNode *sitter.Node
		var defKind entity.Kind
		var name string

		for i := range m.Captures {
			cap := &m.Captures[i]
			capName := ""
			if int(cap.Index) < len(names) {
				capName = names[cap.Index]
			}

			switch {
			case capName == "name":
				name = nodeText(&cap.Node, source)
			case strings.HasPrefix(capName, defPrefix):
				if kind, ok := kindsByCapture[strings.TrimPrefix(capName, defPrefix)]; ok {
					defNode = &cap.Node
					defKind = kind
				}
			case strings.HasPrefix(capName, refPrefix):
				if kind, ok := edgesByCapture[strings.TrimPrefix(capName, refPrefix)]; ok {
					target := nodeText(&cap.Node, source)
					if target != "" {
						refs = append(refs, reference{
							target: target,
							kind:   kind,
							span:   byteSpan{cap.Node.StartByte(), cap.Node.EndByte()},
						})
					}
				}
			}
		}

		// Anonymous and inline constructs have no name capture; excluded.
		if defNode == nil || name == "" {
			continue
		}

		candidates = append(candidates, candidate{
			name: name,
			kind: defKind,
			span: byteSpan{defNode.StartByte(), defNode.EndByte()},
			line: entity.LineRange{
				Start: int(defNode.StartPosition().Row) + 1,
				End:   int(defNode.EndPosition().Row) + 1,
			},
			doc:   docComment(defNode, source),
			sig:   signature(defNode, source),
			scope: -1,
		})
	}

	return candidates, refs
}

// collectErrorSpans gathers the byte ranges of error and missing nodes. The
// walk is skipped entirely for clean trees.
func collectErrorSpans(root *sitter.Node) []byteSpan {
	if !root.HasError() {
		return nil
	}

	var spans []byteSpan
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.IsError() || n.IsMissing() {
			spans = append(spans, byteSpan{n.StartByte(), n.EndByte()})
			return
		}
		if !n.HasError() {
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)
	return spans
}

func filterCandidates(candidates []candidate, errorSpans []byteSpan) []candidate {
	if len(errorSpans) == 0 {
		return candidates
	}
	kept := candidates[:0]
	for _, c := range candidates {
		if !overlapsAny(c.span, errorSpans) {
			kept = append(kept, c)
		}
	}
	return kept
}

func filterReferences(refs []reference, errorSpans []byteSpan) []reference {
	if len(errorSpans) == 0 {
		return refs
	}
	kept := refs[:0]
	for _, r := range refs {
		if !overlapsAny(r.span, errorSpans) {
			kept = append(kept, r)
		}
	}
	return kept
}

func overlapsAny(span byteSpan, spans []byteSpan) bool {
	for _, s := range spans {
		if span.overlaps(s) {
			return true
		}
	}
	return false
}

// resolveScopes assigns each candidate the index of its innermost enclosing
// candidate by span nesting.
func resolveScopes(candidates []candidate) {
	for i := range candidates {
		candidates[i].scope = enclosing(candidates, candidates[i].span)
	}
}

// enclosing returns the index of the smallest candidate span strictly
// containing span, or -1.
func enclosing(candidates []candidate, span byteSpan) int {
	best := -1
	for i := range candidates {
		if !candidates[i].span.contains(span) {
			continue
		}
		if best < 0 || candidates[best].span.contains(candidates[i].span) {
			best = i
		}
	}
	return best
}

func isTypeLike(k entity.Kind) bool {
	switch k {
	case entity.KindClass, entity.KindStruct, entity.KindInterface, entity.KindEnum:
		return true
	}
	return false
}

// buildEdges attaches references to their enclosing entities and adds the
// containment edge from each container to its directly nested entities.
// Edges are deduplicated within the file; duplicates across files are left to
// the consuming storage layer.
func buildEdges(candidates []candidate, keys []isgl.Key, refs []reference) []entity.DependencyEdge {
	var edges []entity.DependencyEdge
	seen := make(map[entity.DependencyEdge]struct{})

	add := func(e entity.DependencyEdge) {
		if e.FromKey == e.ToKey {
			return
		}
		if _, dup := seen[e]; dup {
			return
		}
		seen[e] = struct{}{}
		edges = append(edges, e)
	}

	for _, r := range refs {
		from := enclosing(candidates, r.span)
		if from < 0 || keys[from] == "" {
			continue
		}
		// A reference to the enclosing entity's own name is a self-loop.
		if r.target == candidates[from].name {
			continue
		}
		add(entity.DependencyEdge{
			FromKey: string(keys[from]),
			ToKey:   r.target,
			Kind:    r.kind,
		})
	}

	for i := range candidates {
		if keys[i] == "" || candidates[i].scope < 0 {
			continue
		}
		container := candidates[i].scope
		if keys[container] == "" {
			continue
		}
		add(entity.DependencyEdge{
			FromKey: string(keys[container]),
			ToKey:   string(keys[i]),
			Kind:    entity.EdgeUses,
		})
	}

	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].FromKey != edges[j].FromKey {
			return edges[i].FromKey < edges[j].FromKey
		}
		if edges[i].ToKey != edges[j].ToKey {
			return edges[i].ToKey < edges[j].ToKey
		}
		return edges[i].Kind < edges[j].Kind
	})
	return edges
}

func nodeText(n *sitter.Node, source []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if end > uint(len(source)) {
		end = uint(len(source))
	}
	if start >= end {
		return ""
	}
	return string(source[start:end])
}

// docComment collects the contiguous comment block immediately above a
// definition node. When the definition has no preceding sibling (e.g. a Go
// type_spec inside its type_declaration), the enclosing declaration's
// siblings are inspected instead.
func docComment(n *sitter.Node, source []byte) string {
	if n.PrevNamedSibling() == nil && n.Parent() != nil {
		n = n.Parent()
	}

	var parts []string
	row := int(n.StartPosition().Row)

	for sib := n.PrevNamedSibling(); sib != nil; sib = sib.PrevNamedSibling() {
		if !strings.Contains(sib.Kind(), "comment") {
			break
		}
		endRow := int(sib.EndPosition().Row)
		if endRow < row-1 {
			break
		}
		parts = append(parts, strings.TrimSpace(nodeText(sib, source)))
		row = int(sib.StartPosition().Row)
	}

	if len(parts) == 0 {
		return ""
	}
	// Collected bottom-up; restore source order.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "\n")
}

// signature renders the declaration without its body: everything from the
// definition's start up to the body field, or the first line when the node
// has no body.
func signature(n *sitter.Node, source []byte) string {
	text := nodeText(n, source)

	if body := n.ChildByFieldName("body"); body != nil {
		rel := int(body.StartByte()) - int(n.StartByte())
		if rel > 0 && rel <= len(text) {
			text = text[:rel]
		}
	} else if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}

	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "{")
	return strings.TrimSpace(text)
}
