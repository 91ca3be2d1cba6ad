// Package engine owns the TLS listener and the method registry. Each
// accepted connection carries exactly one request/response exchange: read a
// framed request line, dispatch it to the registered handler, write the
// framed response, close.
package engine

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/rfile/internal/logging"
	"github.com/dmitrijs2005/rfile/internal/server/protocol"
)

// Handler consumes one decoded request line and produces a Return. The
// handler re-parses the control block and content itself via
// protocol.ParseInput with its method-specific request type.
type Handler func(ctx context.Context, req string) protocol.Return

const (
	// Per-connection progress bounds. A connection that cannot complete its
	// single exchange within these windows is aborted without affecting
	// other connections.
	readTimeout  = 30 * time.Second
	writeTimeout = 30 * time.Second

	// Upper bound for a single request line. Blocks travel base64-encoded
	// inline, so this also caps the usable block size.
	maxRequestBytes = 8 << 20
)

// Engine accepts secure streams and dispatches framed requests. Handlers
// are registered once at startup; lookups run concurrently per connection.
type Engine struct {
	register sync.Map // method name -> Handler
	address  string
	certFile string
	keyFile  string
	logger   logging.Logger

	mu    sync.Mutex
	bound net.Addr
}

// New constructs an Engine listening on address with the given PEM
// certificate and key files.
func New(address, certFile, keyFile string, logger logging.Logger) *Engine {
	return &Engine{
		address:  address,
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger.With("module", "engine"),
	}
}

// Register binds a method name to its handler. Returns the engine for
// chaining. Registration is not safe to interleave with Run.
func (e *Engine) Register(method string, h Handler) *Engine {
	e.register.Store(method, h)
	return e
}

// Dispatch resolves a method name and invokes its handler. Unknown methods
// produce a failure Return and never terminate the connection's task.
func (e *Engine) Dispatch(ctx context.Context, method, req string) protocol.Return {
	v, ok := e.register.Load(method)
	if !ok {
		return protocol.Failed("method not found")
	}
	return v.(Handler)(ctx, req)
}

// Addr returns the bound listener address once Run has started, nil before.
func (e *Engine) Addr() net.Addr {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bound
}

// Run loads the TLS material and serves until ctx is cancelled. The accept
// loop is sequential; each accepted stream is handed to its own goroutine.
func (e *Engine) Run(ctx context.Context) error {

	cert, err := tls.LoadX509KeyPair(e.certFile, e.keyFile)
	if err != nil {
		return err
	}

	listener, err := tls.Listen("tcp", e.address, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.bound = listener.Addr()
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.logger.Info(ctx, "Stopping engine...")
		listener.Close()
	}()

	e.register.Range(func(method, _ any) bool {
		e.logger.Info(ctx, "Register handler", "method", method)
		return true
	})
	e.logger.Info(ctx, "Listening", "address", e.address)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			e.logger.Error(ctx, "failed to establish TCP connection", "error", err)
			continue
		}
		go e.serveConn(ctx, conn)
	}
}

// serveConn performs one request/response exchange and closes the stream.
func (e *Engine) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	deadline := time.Now().Add(readTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		e.logger.Warn(ctx, "failed to set read deadline", "error", err)
		return
	}

	// the handshake runs lazily on first read; doing it explicitly keeps
	// handshake failures distinguishable from request-read failures
	if tlsConn, ok := conn.(*tls.Conn); ok {
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			e.logger.Warn(ctx, "TLS handshake failed", "error", err)
			return
		}
	}

	line, err := readRequestLine(conn)
	if err != nil {
		e.logger.Warn(ctx, "failed to read request", "error", err)
		return
	}

	method := protocol.MethodName(line)
	result := e.Dispatch(ctx, method, line)

	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		e.logger.Warn(ctx, "failed to set write deadline", "error", err)
		return
	}
	if _, err := conn.Write(protocol.EncodeResponse(result)); err != nil {
		e.logger.Warn(ctx, "failed to send response", "error", err)
	}
}

var errRequestTooLarge = errors.New("request exceeds size limit")

// readRequestLine reads one newline-terminated request. A request closed
// without a trailing newline is still accepted if non-empty; one that fills
// the size cap without a newline was truncated and is rejected.
func readRequestLine(r io.Reader) (string, error) {
	reader := bufio.NewReaderSize(io.LimitReader(r, maxRequestBytes), 64<<10)
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			if len(line) == maxRequestBytes {
				return "", errRequestTooLarge
			}
			return line, nil
		}
		return "", err
	}
	return line, nil
}
