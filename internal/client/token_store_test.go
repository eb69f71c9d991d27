package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStore(t *testing.T) {
	s := &FileTokenStore{Path: filepath.Join(t.TempDir(), "nested", "token")}

	token, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Save("abc.def.ghi"))
	info, err := os.Stat(s.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	token, _ = s.Load()
	assert.Empty(t, token)
}

func TestMemoryTokenStore(t *testing.T) {
	s := &MemoryTokenStore{}
	require.NoError(t, s.Save("x"))
	token, _ := s.Load()
	assert.Equal(t, "x", token)
	require.NoError(t, s.Clear())
	token, _ = s.Load()
	assert.Empty(t, token)
}
