package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/suitesmith/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

const instructions = `suitesmith keeps QA test suites designed from explored web pages.
Use list_suites and get_suite to read suites. chat_suite revises a suite and
saves any rewrite immediately; read the suite again afterwards because test
case ids are renumbered 1..N on every save.`

const shutdownTimeout = 5 * time.Second

var serverLog = logger.For("mcp")

// Server exposes the suite repository to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server

	// chatMu serialises chat turns; the review service holds one suite at a time.
	chatMu sync.Mutex
}

// NewServer registers the tools and resources the ports allow.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "suitesmith", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	serverLog.Debug("serving on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves Handler on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			serverLog.Warn("http shutdown: %v", err)
		}
	}()

	serverLog.Debug("serving on http %s", addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
