// Package parser turns raw source text into a concrete syntax tree under a
// registry-provided grammar. Malformed input never fails a parse: tree-sitter
// degrades to a tree containing error nodes, which the extractor skips.
package parser

import (
	"errors"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/parseltongue-dev/parseltongue/internal/lang"
)

// ErrGrammarInit means a grammar could not be attached to a parser. It is the
// only hard failure this package produces; syntactic invalidity in the source
// is represented as error nodes in the returned tree instead.
var ErrGrammarInit = errors.New("grammar initialization failed")

// Tree is one file's concrete syntax tree together with the source it was
// parsed from. Close must be called to release the underlying tree.
type Tree struct {
	inner  *sitter.Tree
	source []byte
}

// Parse produces a syntax tree for source under the handle's grammar. The
// returned tree may contain error nodes covering unparseable spans; it is
// never nil unless err is non-nil.
func Parse(source []byte, h *lang.Handle) (*Tree, error) {
	p := sitter.NewParser()
	defer p.Close()

	if err := p.SetLanguage(h.Grammar); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGrammarInit, h.Language, err)
	}

	t := p.Parse(source, nil)
	if t == nil {
		return nil, fmt.Errorf("%w: %s: parser returned no tree", ErrGrammarInit, h.Language)
	}

	return &Tree{inner: t, source: source}, nil
}

// Root returns the tree's root node.
func (t *Tree) Root() *sitter.Node {
	return t.inner.RootNode()
}

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// HasError reports whether any part of the source failed to parse.
func (t *Tree) HasError() bool {
	return t.inner.RootNode().HasError()
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	t.inner.Close()
}
