package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parseltongue-dev/parseltongue/internal/lang"
)

func goHandle(t *testing.T) *lang.Handle {
	t.Helper()
	h, ok := lang.NewRegistry(nil).Resolve(".go")
	require.True(t, ok)
	return h
}

func TestParse_ValidSource(t *testing.T) {
	t.Parallel()

	tree, err := Parse([]byte("package main\n\nfunc main() {}\n"), goHandle(t))
	require.NoError(t, err)
	defer tree.Close()

	assert.False(t, tree.HasError())
	assert.Equal(t, "source_file", tree.Root().Kind())
}

func TestParse_MalformedSourceStillYieldsTree(t *testing.T) {
	t.Parallel()

	h := goHandle(t)

	tests := []struct {
		name   string
		source string
	}{
		{"truncated brackets", "package main\nfunc broken( {"},
		{"invalid tokens", "package main\n@@@ ??? !!!"},
		{"binary garbage", "\x00\x01\x02\xff\xfeplain"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree, err := Parse([]byte(tt.source), h)
			require.NoError(t, err)
			defer tree.Close()

			assert.NotNil(t, tree.Root())
		})
	}
}

func TestParse_ErrorNodesMarkInvalidSpans(t *testing.T) {
	t.Parallel()

	tree, err := Parse([]byte("package main\n\nfunc ok() {}\n\nfunc broken( {\n"), goHandle(t))
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.HasError())
}
