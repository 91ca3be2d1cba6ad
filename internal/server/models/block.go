package models

import "time"

// Block is one stored chunk of a file. BlockID is the caller-assigned
// ordinal within the file; BlockName is the opaque storage location.
type Block struct {
	ID            int64     `json:"id"`
	FileID        int64     `json:"file_id"`
	BlockID       int64     `json:"block_id"`
	BlockName     string    `json:"block_name"`
	BlockSize     int64     `json:"block_size"`
	BlockChecksum uint32    `json:"block_checksum"`
	CreatedAt     time.Time `json:"created_at"`
}
