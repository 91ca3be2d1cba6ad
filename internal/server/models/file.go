package models

import "time"

// FileStatus is the lifecycle state of a file record.
type FileStatus int32

const (
	// FileStatusPending: metadata registered, blocks may still arrive.
	FileStatusPending FileStatus = 0
	// FileStatusFinished: transfer closed out, file is retrievable.
	FileStatusFinished FileStatus = 1
	// FileStatusDeleted: soft-deleted, terminal. Rows and block objects stay.
	FileStatusDeleted FileStatus = 2
)

// File is one file record. FileChecksum is the whole-file CRC32 declared at
// presend and verified at finish.
type File struct {
	ID           int64      `json:"id"`
	FileName     string     `json:"file_name"`
	FileSize     int64      `json:"file_size"`
	FileChecksum uint32     `json:"file_checksum"`
	FileStatus   FileStatus `json:"file_status"`
	CreatedAt    time.Time  `json:"created_at"`
}
