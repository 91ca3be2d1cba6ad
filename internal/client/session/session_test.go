package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rfile/internal/server/protocol"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	cb := &protocol.ControlBlock{Jwt: "token-text", Exp: 1234567890}
	require.NoError(t, Save(path, cb))

	got, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cb.Jwt, got.Jwt)
	assert.Equal(t, cb.Exp, got.Exp)
}

func TestLoad_MissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, Save(path, &protocol.ControlBlock{Jwt: "t", Exp: 1}))

	require.NoError(t, Clear(path))
	assert.NoFileExists(t, path)

	// clearing again is not an error
	require.NoError(t, Clear(path))
}
