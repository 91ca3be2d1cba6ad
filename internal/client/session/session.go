// Package session caches the session token between client invocations.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/rfile/internal/server/protocol"
)

// Load reads a cached control block from path. A missing file is not an
// error; it returns (nil, nil) so the caller can proceed unauthenticated.
func Load(path string) (*protocol.ControlBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	cb := &protocol.ControlBlock{}
	if err := json.Unmarshal(data, cb); err != nil {
		return nil, err
	}
	return cb, nil
}

// Save writes the control block to path. The file holds a bearer token, so
// it is written owner-only.
func Save(path string, cb *protocol.ControlBlock) error {
	data, err := json.Marshal(cb)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Clear removes the cached token. Missing files are ignored.
func Clear(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
