package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/server/models"
	"github.com/dmitrijs2005/rfile/internal/server/protocol"
)

type listFileReq struct {
	Filter string `json:"filter"`
}

// ListFile returns finished files whose name contains the filter substring,
// as a JSON array of file records. Pending and deleted files never appear.
func (h *Handlers) ListFile(ctx context.Context, req string) protocol.Return {
	cb, content, err := protocol.ParseInput[listFileReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	if ret := h.authorize(&cb); ret != nil {
		return *ret
	}

	repo := h.repos.Files(h.db)
	files, err := repo.ListFinished(ctx, content.Filter)
	if err != nil {
		h.logger.Error(ctx, "file list failed", "error", err)
		return protocol.Failed(err.Error())
	}
	if files == nil {
		// keep the payload a JSON array, not null
		files = []*models.File{}
	}

	payload, err := json.Marshal(files)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	return protocol.OkPayload(string(payload))
}

type deleteFileReq struct {
	FileID int64 `json:"file_id"`
}

// DeleteFile soft-deletes a file. Rows and stored blocks remain.
func (h *Handlers) DeleteFile(ctx context.Context, req string) protocol.Return {
	cb, content, err := protocol.ParseInput[deleteFileReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	if ret := h.authorize(&cb); ret != nil {
		return *ret
	}

	repo := h.repos.Files(h.db)
	if err := repo.SoftDelete(ctx, content.FileID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return protocol.Failed(common.ErrorNotFound.Error())
		}
		h.logger.Error(ctx, "file delete failed", "error", err)
		return protocol.Failed(err.Error())
	}

	h.logger.Info(ctx, "Deleted", "file_id", content.FileID)
	return protocol.Ok()
}

type getFileInfoReq struct {
	FileID int64 `json:"file_id"`
}

// GetFileInfo returns one file record as JSON.
func (h *Handlers) GetFileInfo(ctx context.Context, req string) protocol.Return {
	cb, content, err := protocol.ParseInput[getFileInfoReq](req)
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

	payload, err := json.Marshal(file)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	return protocol.OkPayload(string(payload))
}
