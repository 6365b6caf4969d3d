package parser_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collisionos/internal/parser"
)

func TestCharsetReader(t *testing.T) {
	r, err := parser.CharsetReader("windows-1252", strings.NewReader("Mu\xf1oz"))
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Muñoz", string(out))
}

func TestCharsetReader_UTF8Passthrough(t *testing.T) {
	src := strings.NewReader("Muñoz")
	r, err := parser.CharsetReader("UTF-8", src)
	require.NoError(t, err)
	assert.Same(t, src, r)
}

func TestCharsetReader_Unknown(t *testing.T) {
	_, err := parser.CharsetReader("klingon-8", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestToUTF8(t *testing.T) {
	assert.Equal(t, "Peña", string(parser.ToUTF8([]byte("Peña"))))
	assert.Equal(t, "Peña", string(parser.ToUTF8([]byte("Pe\xf1a"))))
}
