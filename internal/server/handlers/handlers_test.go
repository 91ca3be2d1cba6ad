package handlers

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/dbx"
	"github.com/dmitrijs2005/rfile/internal/logging"
	"github.com/dmitrijs2005/rfile/internal/server/models"
	"github.com/dmitrijs2005/rfile/internal/server/protocol"
	"github.com/dmitrijs2005/rfile/internal/server/repositories/blocks"
	"github.com/dmitrijs2005/rfile/internal/server/repositories/files"
	"github.com/dmitrijs2005/rfile/internal/server/repositories/users"
)

const testSecret = "test-secret"

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger { return l }

type memUsers struct {
	byName map[string]*models.User
	nextID int64
}

func (m *memUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	if _, ok := m.byName[user.UserName]; ok {
		return nil, common.ErrorUserAlreadyExists
	}
	m.nextID++
	user.ID = m.nextID
	m.byName[user.UserName] = user
	return user, nil
}

func (m *memUsers) GetByUserName(_ context.Context, userName string) (*models.User, error) {
	u, ok := m.byName[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type memFiles struct {
	byID   map[int64]*models.File
	nextID int64
}

func (m *memFiles) Create(_ context.Context, file *models.File) (int64, error) {
	m.nextID++
	file.ID = m.nextID
	file.FileStatus = models.FileStatusPending
	m.byID[file.ID] = file
	return file.ID, nil
}

func (m *memFiles) GetByID(_ context.Context, id int64) (*models.File, error) {
	f, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

func (m *memFiles) ListFinished(_ context.Context, nameFilter string) ([]*models.File, error) {
	var result []*models.File
	for id := int64(1); id <= m.nextID; id++ {
		f, ok := m.byID[id]
		if !ok || f.FileStatus != models.FileStatusFinished {
			continue
		}
		if !strings.Contains(f.FileName, nameFilter) {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

func (m *memFiles) Finish(_ context.Context, id int64) error {
	f, ok := m.byID[id]
	if !ok || f.FileStatus != models.FileStatusPending {
		return common.ErrorFileNotPending
	}
	f.FileStatus = models.FileStatusFinished
	return nil
}

func (m *memFiles) SoftDelete(_ context.Context, id int64) error {
	f, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	f.FileStatus = models.FileStatusDeleted
	return nil
}

type memBlocks struct {
	byID   map[int64]*models.Block
	nextID int64
}

func (m *memBlocks) Create(_ context.Context, block *models.Block) (int64, error) {
	m.nextID++
	block.ID = m.nextID
	m.byID[block.ID] = block
	return block.ID, nil
}

func (m *memBlocks) GetByID(_ context.Context, id int64) (*models.Block, error) {
	b, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (m *memBlocks) GetIDsByFileID(_ context.Context, fileID int64) ([]int64, error) {
	ids := []int64{}
	for id := int64(1); id <= m.nextID; id++ {
		b, ok := m.byID[id]
		if ok && b.FileID == fileID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type memRepos struct {
	u *memUsers
	f *memFiles
	b *memBlocks
}

func newMemRepos() *memRepos {
	return &memRepos{
		u: &memUsers{byName: map[string]*models.User{}},
		f: &memFiles{byID: map[int64]*models.File{}},
		b: &memBlocks{byID: map[int64]*models.Block{}},
	}
}

func (m *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepos) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *memRepos) Files(dbx.DBTX) files.Repository              { return m.f }
func (m *memRepos) Blocks(dbx.DBTX) blocks.Repository            { return m.b }

type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Write(_ context.Context, name string, data []byte) error {
	s.objects[name] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) Read(_ context.Context, name string) ([]byte, error) {
	data, ok := s.objects[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return data, nil
}

func newTestHandlers(t *testing.T) (*Handlers, *memRepos, *memStore) {
	t.Helper()
	repos := newMemRepos()
	store := newMemStore()
	h := New(nil, repos, store, nopLogger{}, testSecret, time.Hour)
	return h, repos, store
}

// makeReq builds a raw request line the way the client does.
func makeReq(t *testing.T, method string, cb *protocol.ControlBlock, content any) string {
	t.Helper()
	raw, err := protocol.EncodeRequest(method, cb, content)
	require.NoError(t, err)
	return string(raw)
}

// validCB mints a live session token for test requests.
func validCB(t *testing.T) *protocol.ControlBlock {
	t.Helper()
	cb, err := protocol.NewControlBlock("alice", []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return &cb
}

// expiredCB mints a token whose window is already over.
func expiredCB(t *testing.T) *protocol.ControlBlock {
	t.Helper()
	cb, err := protocol.NewControlBlock("alice", []byte(testSecret), -time.Hour)
	require.NoError(t, err)
	return &cb
}
