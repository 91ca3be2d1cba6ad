// Package cli is the interactive client shell. It wires the wire client
// and transfer workflows to a small REPL.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/rfile/internal/client/api"
	"github.com/dmitrijs2005/rfile/internal/client/config"
	"github.com/dmitrijs2005/rfile/internal/client/services"
	"github.com/dmitrijs2005/rfile/internal/client/session"
	"github.com/dmitrijs2005/rfile/internal/server/protocol"
)

type App struct {
	config   *config.Config
	api      *api.Client
	transfer *services.TransferService
	token    *protocol.ControlBlock
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	apiClient := api.New(c.ServerEndpointAddr, c.TLSSkipVerify)
	transfer := services.NewTransferService(apiClient, c.ChunkSize)

	token, err := session.Load(c.SessionFile)
	if err != nil {
		log.Printf("error reading session file: %s", err.Error())
		token = nil
	}

	return &App{
		config:   c,
		api:      apiClient,
		transfer: transfer,
		token:    token,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.token != nil
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return "session"
	}
	return "no session"
}

// setToken stores the fresh token in memory and on disk. A failed cache
// write is reported but does not interrupt the session.
func (a *App) setToken(cb *protocol.ControlBlock) {
	a.token = cb
	if cb == nil {
		return
	}
	if err := session.Save(a.config.SessionFile, cb); err != nil {
		log.Printf("error saving session file: %s", err.Error())
	}
}
