package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFilter_NoPatternsAcceptsEverything(t *testing.T) {
	t.Parallel()

	f, err := newFileFilter(nil, nil)
	require.NoError(t, err)

	assert.True(t, f.Accept("main.go"))
	assert.True(t, f.Accept("deep/nested/file.py"))
}

func TestFileFilter_IncludeRequiresMatch(t *testing.T) {
	t.Parallel()

	f, err := newFileFilter([]string{"src/**", "**/*.rs"}, nil)
	require.NoError(t, err)

	assert.True(t, f.Accept("src/app.py"))
	assert.True(t, f.Accept("lib/core.rs"))
	assert.False(t, f.Accept("docs/readme.md"))
}

func TestFileFilter_ExcludeWinsOverInclude(t *testing.T) {
	t.Parallel()

	f, err := newFileFilter([]string{"src/**"}, []string{"src/generated/**"})
	require.NoError(t, err)

	assert.True(t, f.Accept("src/app.py"))
	assert.False(t, f.Accept("src/generated/api.py"))
}

func TestFileFilter_SkipDir(t *testing.T) {
	t.Parallel()

	f, err := newFileFilter(nil, []string{"node_modules/**", ".git/**"})
	require.NoError(t, err)

	assert.True(t, f.SkipDir("node_modules"))
	assert.True(t, f.SkipDir(".git"))
	assert.False(t, f.SkipDir("src"))
}
