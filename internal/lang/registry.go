// Package lang maps file extensions to compiled tree-sitter grammars and the
// per-language declarative query that drives entity extraction. Grammar and
// query compilation happens once per language and is shared read-only across
// all workers for the rest of the process.
package lang

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unsafe"

	"github.com/sirupsen/logrus"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/parseltongue-dev/parseltongue/internal/entity"
)

// Handle bundles everything needed to process one language: the compiled
// grammar and the compiled entity/dependency query.
type Handle struct {
	Language entity.Language
	Grammar  *sitter.Language
	Query    *sitter.Query
}

// languageSpec declares how a language is wired in: its extensions and the
// grammar binding. The query lives in queries/<lang>.scm; adding a language
// means adding one spec entry and one query file.
type languageSpec struct {
	extensions []string
	grammar    func() unsafe.Pointer
}

var specs = map[entity.Language]languageSpec{
	entity.LangGo:         {[]string{".go"}, tree_sitter_go.Language},
	entity.LangPython:     {[]string{".py", ".pyi"}, tree_sitter_python.Language},
	entity.LangRust:       {[]string{".rs"}, tree_sitter_rust.Language},
	entity.LangJavaScript: {[]string{".js", ".mjs", ".cjs", ".jsx"}, tree_sitter_javascript.Language},
	entity.LangTypeScript: {[]string{".ts", ".mts", ".cts"}, tree_sitter_typescript.LanguageTypescript},
	entity.LangJava:       {[]string{".java"}, tree_sitter_java.Language},
	entity.LangC:          {[]string{".c", ".h"}, tree_sitter_c.Language},
	entity.LangRuby:       {[]string{".rb", ".rake"}, tree_sitter_ruby.Language},
	entity.LangPHP:        {[]string{".php"}, tree_sitter_php.LanguagePHP},
}

// Registry resolves file extensions to language handles. Compilation of a
// grammar or query happens on first use; a language whose grammar fails to
// initialize is remembered as failed and treated as unsupported for the rest
// of the run, so one broken grammar never aborts a scan.
type Registry struct {
	mu        sync.Mutex
	handles   map[entity.Language]*Handle
	failed    map[entity.Language]error
	extToLang map[string]entity.Language
	log       *logrus.Logger
}

// NewRegistry creates a registry covering all built-in languages.
func NewRegistry(log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.New()
	}

	extToLang := make(map[string]entity.Language)
	for lang, spec := range specs {
		for _, ext := range spec.extensions {
			extToLang[ext] = lang
		}
	}

	return &Registry{
		handles:   make(map[entity.Language]*Handle),
		failed:    make(map[entity.Language]error),
		extToLang: extToLang,
		log:       log,
	}
}

// Resolve returns the handle for a file extension (with leading dot), or
// (nil, false) when the extension is unknown or the language's grammar failed
// to initialize. Callers skip such files rather than erroring.
func (r *Registry) Resolve(ext string) (*Handle, bool) {
	lang, ok := r.extToLang[strings.ToLower(ext)]
	if !ok {
		return nil, false
	}
	return r.ResolveLanguage(lang)
}

// ResolveLanguage returns the handle for an explicit language tag.
func (r *Registry) ResolveLanguage(lang entity.Language) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[lang]; ok {
		return h, true
	}
	if _, ok := r.failed[lang]; ok {
		return nil, false
	}

	h, err := compile(lang)
	if err != nil {
		r.failed[lang] = err
		r.log.WithField("language", lang).WithError(err).Warn("grammar initialization failed; language disabled for this run")
		return nil, false
	}
	r.handles[lang] = h
	return h, true
}

// compile builds the grammar and its declarative query for one language.
func compile(lang entity.Language) (*Handle, error) {
	spec, ok := specs[lang]
	if !ok {
		return nil, fmt.Errorf("unknown language %q", lang)
	}

	grammar := sitter.NewLanguage(spec.grammar())
	if grammar == nil {
		return nil, fmt.Errorf("grammar for %s did not load", lang)
	}

	source, err := querySource(lang)
	if err != nil {
		return nil, err
	}

	// NewQuery returns a concrete *QueryError; checking it through the err
	// variable above would box a nil pointer into a non-nil error interface.
	query, qerr := sitter.NewQuery(grammar, string(source))
	if qerr != nil {
		return nil, fmt.Errorf("compiling query for %s: %w", lang, qerr)
	}

	return &Handle{Language: lang, Grammar: grammar, Query: query}, nil
}

// Info describes one registered language for diagnostics listings.
type Info struct {
	Language   entity.Language
	Extensions []string
	Compiled   bool
	Err        error
}

// Languages lists every built-in language, sorted by name, with its current
// compilation state.
func (r *Registry) Languages() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(specs))
	for lang, spec := range specs {
		_, compiled := r.handles[lang]
		infos = append(infos, Info{
			Language:   lang,
			Extensions: spec.extensions,
			Compiled:   compiled,
			Err:        r.failed[lang],
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Language < infos[j].Language })
	return infos
}

// SupportedExtensions returns every extension the registry knows about.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
