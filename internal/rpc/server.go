// Package rpc exposes the marketplace over JSON-RPC 2.0 and streams
// committed events over websockets.
package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/core/market"
	"github.com/LeJamon/marketd/internal/core/registry"
	"github.com/LeJamon/marketd/internal/storage/journal"
)

// methodFunc handles one JSON-RPC method.
type methodFunc func(params json.RawMessage) (interface{}, *RpcError)

// Server dispatches JSON-RPC requests to the marketplace engine.
type Server struct {
	engine  *market.Engine
	store   ledger.View
	reg     registry.Ledger
	journal *journal.Journal
	log     *zap.Logger

	adminEnabled bool
	adminMu      sync.Mutex

	methods map[string]methodFunc
	started time.Time

	httpServer *http.Server
}

// Option configures the server.
type Option func(*Server)

// WithJournal enables the journal query methods.
func WithJournal(j *journal.Journal) Option {
	return func(s *Server) { s.journal = j }
}

// WithAdmin enables the mint/approve/deposit admin methods.
func WithAdmin(enabled bool) Option {
	return func(s *Server) { s.adminEnabled = enabled }
}

// WithLogger sets the server logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// NewServer creates a JSON-RPC server over the engine. The store is needed
// for the admin registry methods, which bypass the engine.
func NewServer(engine *market.Engine, store ledger.View, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		store:   store,
		log:     zap.NewNop(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerMethods()
	return s
}

// ServeHTTP handles a JSON-RPC POST request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req JsonRpcRequest
	resp := JsonRpcResponse{JsonRpc: "2.0"}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error = errParse()
		writeResponse(w, &resp)
		return
	}
	resp.ID = req.ID

	if req.JsonRpc != "2.0" || req.Method == "" {
		resp.Error = errInvalidRequest("jsonrpc 2.0 request required")
		writeResponse(w, &resp)
		return
	}

	handler, ok := s.methods[req.Method]
	if !ok {
		resp.Error = errMethodNotFound(req.Method)
		writeResponse(w, &resp)
		return
	}

	result, rpcErr := handler(req.Params)
	if rpcErr != nil {
		s.log.Debug("rpc method failed",
			zap.String("method", req.Method),
			zap.Int("code", rpcErr.Code),
			zap.String("message", rpcErr.Message))
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	writeResponse(w, &resp)
}

func writeResponse(w http.ResponseWriter, resp *JsonRpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// ListenAndServe runs the HTTP server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.ListenAndServe() }()

	s.log.Info("rpc server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
