// Package handlers implements the protocol methods. Every handler takes the
// raw decoded request line, re-parses it with its method-specific request
// type, performs its own authorization, and produces a protocol.Return.
// All failures are converted into failure Returns here; nothing propagates
// to the engine as an error.
package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rfile/internal/common"
	"github.com/dmitrijs2005/rfile/internal/logging"
	"github.com/dmitrijs2005/rfile/internal/server/protocol"
	"github.com/dmitrijs2005/rfile/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rfile/internal/server/storage"
)

type Handlers struct {
	db            *sql.DB
	repos         repomanager.RepositoryManager
	store         storage.Backend
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
}

// New wires the handler set to its collaborators. secretKey signs and
// verifies every session token; tokenValidity is the window for freshly
// minted tokens.
func New(db *sql.DB, repos repomanager.RepositoryManager, store storage.Backend,
	logger logging.Logger, secretKey string, tokenValidity time.Duration) *Handlers {
	return &Handlers{
		db:            db,
		repos:         repos,
		store:         store,
		logger:        logger.With("module", "handlers"),
		jwtSecret:     []byte(secretKey),
		tokenValidity: tokenValidity,
	}
}

// authorize is the admission gate for authenticated methods: the token must
// verify AND be unexpired. On failure it returns the failure Return to send;
// on success it returns nil and the request proceeds.
func (h *Handlers) authorize(cb *protocol.ControlBlock) *protocol.Return {
	_, err := cb.Validate(h.jwtSecret)
	if err == nil {
		return nil
	}
	var ret protocol.Return
	if errors.Is(err, common.ErrTokenExpired) {
		ret = protocol.Failed("jwt expired")
	} else {
		ret = protocol.Failed(fmt.Sprintf("invalid jwt: %v", err))
	}
	return &ret
}
