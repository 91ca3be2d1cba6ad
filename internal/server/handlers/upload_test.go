package handlers

import (
	"context"
	"encoding/json"
	"hash/crc32"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/server/models"
)

func presendFile(t *testing.T, h *Handlers, name string, data []byte) int64 {
	t.Helper()
	req := makeReq(t, "presend", validCB(t), map[string]any{
		"file_name":     name,
		"file_size":     len(data),
		"file_checksum": crc32.ChecksumIEEE(data),
	})
	ret := h.Presend(context.Background(), req)
	require.True(t, ret.Success, ret.Payload)

	id, err := strconv.ParseInt(ret.Payload, 10, 64)
	require.NoError(t, err)
	return id
}

func sendBlock(t *testing.T, h *Handlers, fileID, blockID int64, payload []byte) {
	t.Helper()
	req := makeReq(t, "send", validCB(t), map[string]any{
		"file_id":        fileID,
		"block_id":       blockID,
		"block_checksum": crc32.ChecksumIEEE(payload),
		"block_payload":  payload,
	})
	ret := h.Send(context.Background(), req)
	require.True(t, ret.Success, ret.Payload)
}

func TestUploadLifecycle(t *testing.T) {
	h, repos, store := newTestHandlers(t)

	first := []byte("first-")
	second := []byte("second")
	whole := append(append([]byte(nil), first...), second...)

	fileID := presendFile(t, h, "notes.txt", whole)

	file := repos.f.byID[fileID]
	require.NotNil(t, file)
	assert.Equal(t, models.FileStatusPending, file.FileStatus)
	assert.Equal(t, crc32.ChecksumIEEE(whole), file.FileChecksum)

	// pending files are invisible to listing
	listReq := makeReq(t, "list_file", validCB(t), map[string]string{"filter": ""})
	ret := h.ListFile(context.Background(), listReq)
	require.True(t, ret.Success, ret.Payload)
	assert.Equal(t, "[]", ret.Payload)

	sendBlock(t, h, fileID, 0, first)
	sendBlock(t, h, fileID, 1, second)

	assert.Len(t, store.objects, 2)
	assert.Len(t, repos.b.byID, 2)

	finReq := makeReq(t, "finish", validCB(t), map[string]any{
		"file_id":       fileID,
		"file_checksum": crc32.ChecksumIEEE(whole),
	})
	ret = h.Finish(context.Background(), finReq)
	require.True(t, ret.Success, ret.Payload)
	assert.Equal(t, models.FileStatusFinished, file.FileStatus)

	ret = h.ListFile(context.Background(), listReq)
	require.True(t, ret.Success, ret.Payload)

	var listed []*models.File
	require.NoError(t, json.Unmarshal([]byte(ret.Payload), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "notes.txt", listed[0].FileName)
}

func TestSend_WrongChecksumLeavesNoTrace(t *testing.T) {
	h, repos, store := newTestHandlers(t)

	payload := []byte("data")
	fileID := presendFile(t, h, "notes.txt", payload)

	req := makeReq(t, "send", validCB(t), map[string]any{
		"file_id":        fileID,
		"block_id":       0,
		"block_checksum": crc32.ChecksumIEEE(payload) + 1,
		"block_payload":  payload,
	})
	ret := h.Send(context.Background(), req)

	assert.False(t, ret.Success)
	// exact wire text, matched by clients
	assert.Equal(t, "wrong checksum", ret.Payload)
	assert.Equal(t, common.ErrChecksumMismatch.Error(), ret.Payload)
	assert.Empty(t, store.objects)
	assert.Empty(t, repos.b.byID)
}

func TestSend_UnknownFileFails(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	payload := []byte("data")
	req := makeReq(t, "send", validCB(t), map[string]any{
		"file_id":        99,
		"block_id":       0,
		"block_checksum": crc32.ChecksumIEEE(payload),
		"block_payload":  payload,
	})
	ret := h.Send(context.Background(), req)

	assert.False(t, ret.Success)
	assert.Equal(t, common.ErrorNotFound.Error(), ret.Payload)
}

func TestSend_FinishedFileRejectsBlocks(t *testing.T) {
	h, repos, _ := newTestHandlers(t)

	payload := []byte("data")
	fileID := presendFile(t, h, "notes.txt", payload)
	repos.f.byID[fileID].FileStatus = models.FileStatusFinished

	req := makeReq(t, "send", validCB(t), map[string]any{
		"file_id":        fileID,
		"block_id":       0,
		"block_checksum": crc32.ChecksumIEEE(payload),
		"block_payload":  payload,
	})
	ret := h.Send(context.Background(), req)

	assert.False(t, ret.Success)
	assert.Equal(t, common.ErrorFileNotPending.Error(), ret.Payload)
}

func TestSend_RequiresAuth(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	payload := []byte("data")
	req := makeReq(t, "send", expiredCB(t), map[string]any{
		"file_id":        1,
		"block_id":       0,
		"block_checksum": crc32.ChecksumIEEE(payload),
		"block_payload":  payload,
	})
	ret := h.Send(context.Background(), req)

	assert.False(t, ret.Success)
	assert.Equal(t, "jwt expired", ret.Payload)
}

func TestFinish_WrongWholeFileChecksum(t *testing.T) {
	h, repos, _ := newTestHandlers(t)

	payload := []byte("data")
	fileID := presendFile(t, h, "notes.txt", payload)
	sendBlock(t, h, fileID, 0, payload)

	req := makeReq(t, "finish", validCB(t), map[string]any{
		"file_id":       fileID,
		"file_checksum": crc32.ChecksumIEEE(payload) + 1,
	})
	ret := h.Finish(context.Background(), req)

	assert.False(t, ret.Success)
	assert.Equal(t, "wrong checksum", ret.Payload)
	assert.Equal(t, models.FileStatusPending, repos.f.byID[fileID].FileStatus)
}

func TestFinish_AlreadyFinishedFails(t *testing.T) {
	h, _, _ := newTestHandlers(t)

	payload := []byte("data")
	fileID := presendFile(t, h, "notes.txt", payload)
	sendBlock(t, h, fileID, 0, payload)

	req := makeReq(t, "finish", validCB(t), map[string]any{
		"file_id":       fileID,
		"file_checksum": crc32.ChecksumIEEE(payload),
	})
	require.True(t, h.Finish(context.Background(), req).Success)

	ret := h.Finish(context.Background(), req)
	assert.False(t, ret.Success)
	assert.Equal(t, common.ErrorFileNotPending.Error(), ret.Payload)
}
