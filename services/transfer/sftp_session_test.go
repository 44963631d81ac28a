package transfer

import (
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSFTPSession_ReadDirAndReadFile(t *testing.T) {
	handlers := sftp.InMemHandler()
	seedFiles(t, handlers, map[string][]byte{
		"/outgoing/Positions_Jan.xlsx": []byte("positions-content"),
		"/outgoing/Other.xlsx":         []byte("other"),
		"/outgoing/archive/old.xlsx":   []byte("old"),
	})

	session := newSFTPSession(nil, newPipeClient(t, handlers))
	defer session.Close()

	entries, err := session.ReadDir("/outgoing")
	require.NoError(t, err)

	byName := map[string]bool{}
	for _, e := range entries {
		byName[e.Name] = e.IsDir
		if e.Name == "Positions_Jan.xlsx" {
			assert.Equal(t, int64(len("positions-content")), e.Size)
		}
	}
	assert.Len(t, entries, 3)
	assert.Equal(t, map[string]bool{"Positions_Jan.xlsx": false, "Other.xlsx": false, "archive": true}, byName)

	data, err := session.ReadFile("/outgoing/Positions_Jan.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "positions-content", string(data))
}

func TestSFTPSession_Errors(t *testing.T) {
	handlers := sftp.InMemHandler()
	session := newSFTPSession(nil, newPipeClient(t, handlers))
	defer session.Close()

	_, err := session.ReadDir("/does-not-exist")
	assert.Error(t, err)

	_, err = session.ReadFile("/does-not-exist.txt")
	assert.Error(t, err)
}

func TestSFTPSession_CloseIsIdempotent(t *testing.T) {
	session := newSFTPSession(nil, newPipeClient(t, sftp.InMemHandler()))

	first := session.Close()
	second := session.Close()
	assert.Equal(t, first, second)
}
