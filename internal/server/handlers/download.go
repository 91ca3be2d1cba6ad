package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/server/models"
	"github.com/dmitrijs2005/rfile/internal/server/protocol"
)

type getBlockIDsReq struct {
	FileID int64 `json:"file_id"`
}

type getBlockIDsResp struct {
	BlockIDs []int64 `json:"block_ids"`
}

// GetBlockIDs returns the block row ids recorded for a file, in block order.
func (h *Handlers) GetBlockIDs(ctx context.Context, req string) protocol.Return {
	cb, content, err := protocol.ParseInput[getBlockIDsReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	if ret := h.authorize(&cb); ret != nil {
		return *ret
	}

	repo := h.repos.Blocks(h.db)
	ids, err := repo.GetIDsByFileID(ctx, content.FileID)
	if err != nil {
		h.logger.Error(ctx, "block ids lookup failed", "error", err)
		return protocol.Failed(err.Error())
	}

	payload, err := json.Marshal(getBlockIDsResp{BlockIDs: ids})
	if err != nil {
		return protocol.Failed(err.Error())
	}

	return protocol.OkPayload(string(payload))
}

type getBlockInfoReq struct {
	BlockID int64 `json:"block_id"`
}

// GetBlockInfo returns one block record as JSON, without its bytes.
func (h *Handlers) GetBlockInfo(ctx context.Context, req string) protocol.Return {
	cb, content, err := protocol.ParseInput[getBlockInfoReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	if ret := h.authorize(&cb); ret != nil {
		return *ret
	}

	repo := h.repos.Blocks(h.db)
	block, err := repo.GetByID(ctx, content.BlockID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return protocol.Failed(common.ErrorNotFound.Error())
		}
		h.logger.Error(ctx, "block lookup failed", "error", err)
		return protocol.Failed(err.Error())
	}

	payload, err := json.Marshal(block)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	return protocol.OkPayload(string(payload))
}

type getBlockReq struct {
	BlockID int64 `json:"block_id"`
}

type getBlockResp struct {
	Block        *models.Block `json:"block"`
	BlockPayload []byte        `json:"block_payload"`
}

// GetBlock returns a block's metadata together with its stored bytes.
func (h *Handlers) GetBlock(ctx context.Context, req string) protocol.Return {
	cb, content, err := protocol.ParseInput[getBlockReq](req)
	if err != nil {
		return protocol.Failed(err.Error())
	}

	if ret := h.authorize(&cb); ret != nil {
		return *ret
	}

	repo := h.repos.Blocks(h.db)
	block, err := repo.GetByID(ctx, content.BlockID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return protocol.Failed(common.ErrorNotFound.Error())
		}
		h.logger.Error(ctx, "block lookup failed", "error", err)
		return protocol.Failed(err.Error())
	}

	data, err := h.store.Read(ctx, block.BlockName)
	if err != nil {
		h.logger.Error(ctx, "block read failed", "block_name", block.BlockName, "error", err)
		return protocol.Failed(err.Error())
	}

	payload, err := json.Marshal(getBlockResp{Block: block, BlockPayload: data})
	if err != nil {
		return protocol.Failed(err.Error())
	}

	return protocol.OkPayload(string(payload))
}
