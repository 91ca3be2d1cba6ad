package handlers

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"strconv"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/server/models"
	"github.com/dmitrijs2005/rfile/internal/server/protocol"
	"github.com/google/uuid"
)

type presendReq struct {
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	FileChecksum uint32 `json:"file_checksum"`
}

// Presend registers a file's intended metadata before any bytes arrive. The
// declared whole-file checksum is recorded only; it is verified at Finish.
// Returns the new file id.
func (h *Handlers) Presend(ctx context.Context, req string) protocol.Return {
	cb, content, err := protocol.ParseInput[presendReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	if ret := h.authorize(&cb); ret != nil {
		return *ret
	}

	if content.FileName == "" {
		return protocol.Failed("file_name is required")
	}

	repo := h.repos.Files(h.db)
	fileID, err := repo.Create(ctx, &models.File{
		FileName:     content.FileName,
		FileSize:     content.FileSize,
		FileChecksum: content.FileChecksum,
	})
	if err != nil {
		h.logger.Error(ctx, "file create failed", "error", err)
		return protocol.Failed(err.Error())
	}

	h.logger.Info(ctx, "Presend", "file_id", fileID, "file_name", content.FileName)
	return protocol.OkPayloadBlock(strconv.FormatInt(fileID, 10), cb)
}

type sendReq struct {
	FileID        int64  `json:"file_id"`
	BlockID       int64  `json:"block_id"`
	BlockChecksum uint32 `json:"block_checksum"`
	BlockPayload  []byte `json:"block_payload"`
}

// makeBlockName derives a unique storage name. The random disambiguator
// keeps retries of the same block id from colliding on one object.
func makeBlockName(fileID, blockID int64) string {
	return fmt.Sprintf("%d-%d_%s", fileID, blockID, uuid.New())
}

// Send stores one block of a pending file. The declared checksum is checked
// against CRC32 of the payload bytes before anything is written; the storage
// write strictly precedes the metadata write, so a metadata failure can at
// worst leak an orphaned object, never dangle a metadata row.
func (h *Handlers) Send(ctx context.Context, req string) protocol.Return {
	cb, content, err := protocol.ParseInput[sendReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	if ret := h.authorize(&cb); ret != nil {
		return *ret
	}

	fileRepo := h.repos.Files(h.db)
	file, err := fileRepo.GetByID(ctx, content.FileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return protocol.Failed(common.ErrorNotFound.Error())
		}
		h.logger.Error(ctx, "file lookup failed", "error", err)
		return protocol.Failed(err.Error())
	}
	if file.FileStatus != models.FileStatusPending {
		return protocol.Failed(common.ErrorFileNotPending.Error())
	}

	if content.BlockChecksum != crc32.ChecksumIEEE(content.BlockPayload) {
		return protocol.Failed(common.ErrChecksumMismatch.Error())
	}

	blockName := makeBlockName(content.FileID, content.BlockID)

	if err := h.store.Write(ctx, blockName, content.BlockPayload); err != nil {
		h.logger.Error(ctx, "block write failed", "block_name", blockName, "error", err)
		return protocol.Failed(err.Error())
	}

	blockRepo := h.repos.Blocks(h.db)
	if _, err := blockRepo.Create(ctx, &models.Block{
		FileID:        content.FileID,
		BlockID:       content.BlockID,
		BlockName:     blockName,
		BlockSize:     int64(len(content.BlockPayload)),
		BlockChecksum: content.BlockChecksum,
	}); err != nil {
		// the stored object is orphaned here; reconciliation is external
		h.logger.Error(ctx, "block record failed", "block_name", blockName, "error", err)
		return protocol.Failed(err.Error())
	}

	return protocol.OkBlock(cb)
}

type finishReq struct {
	FileID       int64  `json:"file_id"`
	FileChecksum uint32 `json:"file_checksum"`
}

// Finish closes out a transfer: the supplied whole-file checksum must match
// the one declared at Presend, and the file must still be pending. Per-block
// integrity was already enforced at Send; blocks are not re-hashed here.
func (h *Handlers) Finish(ctx context.Context, req string) protocol.Return {
	cb, content, err := protocol.ParseInput[finishReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	if ret := h.authorize(&cb); ret != nil {
		return *ret
	}

	repo := h.repos.Files(h.db)
	file, err := repo.GetByID(ctx, content.FileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return protocol.Failed(common.ErrorNotFound.Error())
		}
		h.logger.Error(ctx, "file lookup failed", "error", err)
		return protocol.Failed(err.Error())
	}

	if file.FileChecksum != content.FileChecksum {
		return protocol.Failed(common.ErrChecksumMismatch.Error())
	}

	if err := repo.Finish(ctx, content.FileID); err != nil {
		if errors.Is(err, common.ErrorFileNotPending) {
			return protocol.Failed(common.ErrorFileNotPending.Error())
		}
		h.logger.Error(ctx, "file finish failed", "error", err)
		return protocol.Failed(err.Error())
	}

	h.logger.Info(ctx, "Finished", "file_id", content.FileID)
	return protocol.OkBlock(cb)
}
