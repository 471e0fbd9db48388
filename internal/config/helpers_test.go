package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func filepathToSlash(p string) string {
	return filepath.ToSlash(p)
}

// writeDoc writes a YAML document under root and returns its path.
func writeDoc(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, Dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
