package regr_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avsandbox/spotkit/cmd/regr"
)

func TestReplaceAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world\nworld hello"), 0o644))

	var out, errOut bytes.Buffer

	code := regr.Run(&out, &errOut, []string{"world", `\0\0`, path})
	require.Equal(t, 0, code)
	require.Empty(t, errOut.String())
	require.Equal(t, "hello worldworld\nworldworld hello", out.String())
}

func TestMissingArgsIsError(t *testing.T) {
	var out, errOut bytes.Buffer

	code := regr.Run(&out, &errOut, []string{"only-one-arg"})
	require.NotEqual(t, 0, code)
}
