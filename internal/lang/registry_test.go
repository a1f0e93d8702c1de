package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parseltongue-dev/parseltongue/internal/entity"
)

func TestRegistry_ResolveKnownExtensions(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)

	tests := []struct {
		ext  string
		lang entity.Language
	}{
		{".go", entity.LangGo},
		{".py", entity.LangPython},
		{".rs", entity.LangRust},
		{".js", entity.LangJavaScript},
		{".ts", entity.LangTypeScript},
		{".java", entity.LangJava},
		{".c", entity.LangC},
		{".rb", entity.LangRuby},
		{".php", entity.LangPHP},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			h, ok := r.Resolve(tt.ext)
			require.True(t, ok, "extension %s should resolve", tt.ext)
			assert.Equal(t, tt.lang, h.Language)
			assert.NotNil(t, h.Grammar)
			assert.NotNil(t, h.Query)
		})
	}
}

func TestRegistry_AllGrammarsAndQueriesCompile(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)

	// Force-compile every built-in language and make sure none ends up
	// tombstoned. A single compile failure here disables that language
	// for the whole run, so this guards both the grammar bindings and
	// the embedded query sources.
	for lang := range specs {
		h, ok := r.ResolveLanguage(lang)
		require.True(t, ok, "language %s should compile", lang)
		require.NotNil(t, h.Query, "language %s should have a compiled query", lang)
	}

	for _, info := range r.Languages() {
		assert.True(t, info.Compiled, "language %s should be compiled", info.Language)
		assert.NoError(t, info.Err, "language %s should not be tombstoned", info.Language)
	}
}

func TestRegistry_UnknownExtension(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)

	h, ok := r.Resolve(".md")
	assert.False(t, ok)
	assert.Nil(t, h)

	h, ok = r.Resolve("")
	assert.False(t, ok)
	assert.Nil(t, h)
}

func TestRegistry_CaseInsensitiveExtension(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)

	h, ok := r.Resolve(".GO")
	require.True(t, ok)
	assert.Equal(t, entity.LangGo, h.Language)
}

func TestRegistry_HandleIsMemoized(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)

	first, ok := r.Resolve(".py")
	require.True(t, ok)
	second, ok := r.Resolve(".pyi")
	require.True(t, ok)

	// Same compiled grammar and query shared across extensions of one language.
	assert.Same(t, first, second)
}

func TestRegistry_Languages(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	_, _ = r.Resolve(".go")

	infos := r.Languages()
	require.Len(t, infos, 9)

	byLang := make(map[entity.Language]Info)
	for _, info := range infos {
		byLang[info.Language] = info
	}

	assert.True(t, byLang[entity.LangGo].Compiled)
	assert.False(t, byLang[entity.LangJava].Compiled) // not resolved yet
	assert.Contains(t, byLang[entity.LangRuby].Extensions, ".rb")
}

func TestRegistry_SupportedExtensions(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)

	exts := r.SupportedExtensions()
	assert.Contains(t, exts, ".go")
	assert.Contains(t, exts, ".rake")
	assert.NotContains(t, exts, ".md")
}
