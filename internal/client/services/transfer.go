// Package services implements the client-side workflows built on the wire
// client: whole-file upload and download with checksum verification.
package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/rfile/internal/server/models"
	"github.com/dmitrijs2005/rfile/internal/server/protocol"
)

// transferAPI is the slice of the wire client the transfer workflows need.
type transferAPI interface {
	Presend(ctx context.Context, cb *protocol.ControlBlock, fileName string, fileSize int64, fileChecksum uint32) (int64, error)
	Send(ctx context.Context, cb *protocol.ControlBlock, fileID, blockID int64, checksum uint32, payload []byte) error
	Finish(ctx context.Context, cb *protocol.ControlBlock, fileID int64, checksum uint32) error
	GetFileInfo(ctx context.Context, cb *protocol.ControlBlock, fileID int64) (*models.File, error)
	GetBlockIDs(ctx context.Context, cb *protocol.ControlBlock, fileID int64) ([]int64, error)
	GetBlock(ctx context.Context, cb *protocol.ControlBlock, blockID int64) (*models.Block, []byte, error)
}

type TransferService struct {
	api       transferAPI
	chunkSize int64
}

func NewTransferService(api transferAPI, chunkSize int64) *TransferService {
	return &TransferService{api: api, chunkSize: chunkSize}
}

// Upload pushes a local file through the presend/send/finish sequence and
// returns the server-assigned file id. Block ids are sequential from zero.
func (s *TransferService) Upload(ctx context.Context, cb *protocol.ControlBlock, path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	checksum := crc32.ChecksumIEEE(data)

	fileID, err := s.api.Presend(ctx, cb, filepath.Base(path), int64(len(data)), checksum)
	if err != nil {
		return 0, err
	}

	for blockID := int64(0); blockID*s.chunkSize < int64(len(data)); blockID++ {
		start := blockID * s.chunkSize
		end := start + s.chunkSize
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		chunk := data[start:end]
		if err := s.api.Send(ctx, cb, fileID, blockID, crc32.ChecksumIEEE(chunk), chunk); err != nil {
			return 0, fmt.Errorf("block %d: %w", blockID, err)
		}
	}

	if err := s.api.Finish(ctx, cb, fileID, checksum); err != nil {
		return 0, err
	}

	return fileID, nil
}

// Download pulls every block of a finished file, re-verifies each block and
// the whole-file checksum, and writes the assembled bytes to dest.
func (s *TransferService) Download(ctx context.Context, cb *protocol.ControlBlock, fileID int64, dest string) error {
	info, err := s.api.GetFileInfo(ctx, cb, fileID)
	if err != nil {
		return err
	}

	ids, err := s.api.GetBlockIDs(ctx, cb, fileID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, id := range ids {
		block, payload, err := s.api.GetBlock(ctx, cb, id)
		if err != nil {
			return err
		}
		if crc32.ChecksumIEEE(payload) != block.BlockChecksum {
			return fmt.Errorf("wrong checksum for block %d", block.BlockID)
		}
		buf.Write(payload)
	}

	if int64(buf.Len()) != info.FileSize {
		return fmt.Errorf("size mismatch: got %d bytes, expected %d", buf.Len(), info.FileSize)
	}
	if crc32.ChecksumIEEE(buf.Bytes()) != info.FileChecksum {
		return fmt.Errorf("wrong checksum for file %d", fileID)
	}

	return os.WriteFile(dest, buf.Bytes(), 0o660)
}
