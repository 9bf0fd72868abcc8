package mcp

// Implementation Plan:
// 1. Server struct holding the refactor engine and the mcp-go server
// 2. NewServer - registers cfn_extract_to_parameter against a project root
// 3. Serve - runs on stdio until the client disconnects, the context ends or SIGTERM/SIGINT

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cfn-refactor/internal/logger"
	"github.com/mvp-joe/cfn-refactor/internal/refactor"
)

// Name is the MCP server name reported to clients.
const Name = "cfn-refactor-mcp"

// Server manages the MCP server lifecycle.
type Server struct {
	mcp    *server.MCPServer
	logger *log.Logger
}

// NewServer creates an MCP server whose tools resolve relative paths against root.
func NewServer(engine *refactor.Engine, root, version string, l *log.Logger) *Server {
	if l == nil {
		l = logger.Discard()
	}

	mcpServer := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(true),
	)
	AddExtractToParameterTool(mcpServer, engine, root)

	return &Server{mcp: mcpServer, logger: l}
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio")
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "MCP server error")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
