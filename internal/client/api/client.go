// Package api is the wire client. Each call opens one TLS connection,
// writes one framed request line, reads one framed response line, and
// closes. Failure responses surface as errors carrying the server's
// message text.
package api

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/rfile/internal/server/models"
	"github.com/dmitrijs2005/rfile/internal/server/protocol"
)

const exchangeTimeout = 30 * time.Second

type Client struct {
	addr   string
	dialer *tls.Dialer
}

func New(addr string, skipVerify bool) *Client {
	return &Client{
		addr: addr,
		dialer: &tls.Dialer{
			Config: &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: skipVerify,
			},
		},
	}
}

// call performs one request/response exchange. A failure Return is
// converted into an error with the server's payload text; the refreshed
// control block, when the server sends one, is returned alongside.
func (c *Client) call(ctx context.Context, method string, cb *protocol.ControlBlock, content any) (protocol.Return, error) {
	req, err := protocol.EncodeRequest(method, cb, content)
	if err != nil {
		return protocol.Return{}, err
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return protocol.Return{}, fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(exchangeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return protocol.Return{}, err
	}

	if _, err := conn.Write(req); err != nil {
		return protocol.Return{}, fmt.Errorf("write request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return protocol.Return{}, fmt.Errorf("read response: %w", err)
	}

	ret, err := protocol.DecodeResponse(line)
	if err != nil {
		return protocol.Return{}, err
	}
	if !ret.Success {
		return ret, fmt.Errorf("server: %s", ret.Payload)
	}
	return ret, nil
}

type emptyReq struct{}

// Ping checks server liveness. No session token required.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, "ping", nil, emptyReq{})
	return err
}

type credentialsReq struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// Register creates an account and returns its fresh session token.
func (c *Client) Register(ctx context.Context, userName, password string) (*protocol.ControlBlock, error) {
	ret, err := c.call(ctx, "register", nil, credentialsReq{UserName: userName, Password: password})
	if err != nil {
		return nil, err
	}
	return ret.Control, nil
}

// Login authenticates and returns a fresh session token.
func (c *Client) Login(ctx context.Context, userName, password string) (*protocol.ControlBlock, error) {
	ret, err := c.call(ctx, "login", nil, credentialsReq{UserName: userName, Password: password})
	if err != nil {
		return nil, err
	}
	return ret.Control, nil
}

// Refresh trades a live session token for one with a fresh window.
func (c *Client) Refresh(ctx context.Context, cb *protocol.ControlBlock) (*protocol.ControlBlock, error) {
	ret, err := c.call(ctx, "refresh", cb, emptyReq{})
	if err != nil {
		return nil, err
	}
	return ret.Control, nil
}

type presendReq struct {
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	FileChecksum uint32 `json:"file_checksum"`
}

// Presend declares an upload and returns the new file id.
func (c *Client) Presend(ctx context.Context, cb *protocol.ControlBlock, fileName string, fileSize int64, fileChecksum uint32) (int64, error) {
	ret, err := c.call(ctx, "presend", cb, presendReq{FileName: fileName, FileSize: fileSize, FileChecksum: fileChecksum})
	if err != nil {
		return 0, err
	}
	fileID, err := strconv.ParseInt(ret.Payload, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad file id %q: %w", ret.Payload, err)
	}
	return fileID, nil
}

type sendReq struct {
	FileID        int64  `json:"file_id"`
	BlockID       int64  `json:"block_id"`
	BlockChecksum uint32 `json:"block_checksum"`
	BlockPayload  []byte `json:"block_payload"`
}

// Send uploads one block of a pending file.
func (c *Client) Send(ctx context.Context, cb *protocol.ControlBlock, fileID, blockID int64, checksum uint32, payload []byte) error {
	_, err := c.call(ctx, "send", cb, sendReq{FileID: fileID, BlockID: blockID, BlockChecksum: checksum, BlockPayload: payload})
	return err
}

type finishReq struct {
	FileID       int64  `json:"file_id"`
	FileChecksum uint32 `json:"file_checksum"`
}

// Finish closes an upload, re-stating the whole-file checksum.
func (c *Client) Finish(ctx context.Context, cb *protocol.ControlBlock, fileID int64, checksum uint32) error {
	_, err := c.call(ctx, "finish", cb, finishReq{FileID: fileID, FileChecksum: checksum})
	return err
}

type listFileReq struct {
	Filter string `json:"filter"`
}

// ListFiles returns finished files whose name contains filter.
func (c *Client) ListFiles(ctx context.Context, cb *protocol.ControlBlock, filter string) ([]*models.File, error) {
	ret, err := c.call(ctx, "list_file", cb, listFileReq{Filter: filter})
	if err != nil {
		return nil, err
	}
	var files []*models.File
	if err := json.Unmarshal([]byte(ret.Payload), &files); err != nil {
		return nil, err
	}
	return files, nil
}

type fileIDReq struct {
	FileID int64 `json:"file_id"`
}

// DeleteFile soft-deletes a file.
func (c *Client) DeleteFile(ctx context.Context, cb *protocol.ControlBlock, fileID int64) error {
	_, err := c.call(ctx, "delete_file", cb, fileIDReq{FileID: fileID})
	return err
}

// GetFileInfo returns one file record.
func (c *Client) GetFileInfo(ctx context.Context, cb *protocol.ControlBlock, fileID int64) (*models.File, error) {
	ret, err := c.call(ctx, "get_file_info", cb, fileIDReq{FileID: fileID})
	if err != nil {
		return nil, err
	}
	file := &models.File{}
	if err := json.Unmarshal([]byte(ret.Payload), file); err != nil {
		return nil, err
	}
	return file, nil
}

type blockIDsResp struct {
	BlockIDs []int64 `json:"block_ids"`
}

// GetBlockIDs returns the block row ids of a file, in block order.
func (c *Client) GetBlockIDs(ctx context.Context, cb *protocol.ControlBlock, fileID int64) ([]int64, error) {
	ret, err := c.call(ctx, "get_block_ids", cb, fileIDReq{FileID: fileID})
	if err != nil {
		return nil, err
	}
	var resp blockIDsResp
	if err := json.Unmarshal([]byte(ret.Payload), &resp); err != nil {
		return nil, err
	}
	return resp.BlockIDs, nil
}

type blockIDReq struct {
	BlockID int64 `json:"block_id"`
}

// GetBlockInfo returns one block record, without its bytes.
func (c *Client) GetBlockInfo(ctx context.Context, cb *protocol.ControlBlock, blockID int64) (*models.Block, error) {
	ret, err := c.call(ctx, "get_block_info", cb, blockIDReq{BlockID: blockID})
	if err != nil {
		return nil, err
	}
	block := &models.Block{}
	if err := json.Unmarshal([]byte(ret.Payload), block); err != nil {
		return nil, err
	}
	return block, nil
}

type blockResp struct {
	Block        *models.Block `json:"block"`
	BlockPayload []byte        `json:"block_payload"`
}

// GetBlock returns a block record together with its stored bytes.
func (c *Client) GetBlock(ctx context.Context, cb *protocol.ControlBlock, blockID int64) (*models.Block, []byte, error) {
	ret, err := c.call(ctx, "get_block", cb, blockIDReq{BlockID: blockID})
	if err != nil {
		return nil, nil, err
	}
	var resp blockResp
	if err := json.Unmarshal([]byte(ret.Payload), &resp); err != nil {
		return nil, nil, err
	}
	return resp.Block, resp.BlockPayload, nil
}
