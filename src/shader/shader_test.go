package shader

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestLoaderEmbedded(t *testing.T) {
	l := NewLoader()
	for _, name := range []string{"hex.vert", "hex.frag"} {
		src, err := l.Source(name)
		require.NoError(t, err, name)
		require.Contains(t, src, "_main(")
	}

	_, err := l.Source("missing.vert")
	require.Error(t, err)
	_, err = l.Source("")
	require.Error(t, err)
	_, err = l.Source("../hex.vert")
	require.Error(t, err)
}

func TestCompileEmbedded(t *testing.T) {
	c := NewCompiler(NewLoader())
	for _, name := range []string{"hex.vert", "hex.frag"} {
		words, err := c.Compile(name)
		require.NoError(t, err, name)
		require.Equal(t, uint32(Magic), words[0])

		again, err := c.Compile(name)
		require.NoError(t, err)
		require.Equal(t, &words[0], &again[0], "compiled words are cached")
	}
}

func TestCompileMalformed(t *testing.T) {
	c := NewCompiler(NewFSLoader(fstest.MapFS{
		"bad.vert.wgsl": {Data: []byte("@vertex fn main( -> {")},
	}))
	_, err := c.Compile("bad.vert")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.vert")

	_, err = c.Compile("absent.frag")
	require.Error(t, err)
}

func TestWords(t *testing.T) {
	words, err := Words([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	require.NoError(t, err)
	require.Equal(t, []uint32{Magic, 0x00010000}, words)

	_, err = Words([]byte{1, 2, 3})
	require.Error(t, err)
	_, err = Words([]byte{0, 0, 0, 0})
	require.Error(t, err)
	_, err = Words(nil)
	require.Error(t, err)
}
