// Package lsp exposes the extract-to-parameter refactoring as a language server.
package lsp

import (
	"github.com/charmbracelet/log"
	lsp "github.com/tliron/glsp/protocol_3_16"
	glspServer "github.com/tliron/glsp/server"

	"github.com/mvp-joe/cfn-refactor/internal/documents"
	"github.com/mvp-joe/cfn-refactor/internal/refactor"
)

// Name is reported to clients in the initialize result.
const Name = "cfn-refactor"

// Server is the cfn-refactor language server.
type Server struct {
	server  *glspServer.Server
	handler *Handler
}

// NewServer creates a language server backed by engine.
func NewServer(engine *refactor.Engine, logger *log.Logger, version string) *Server {
	handler := NewHandler(engine, documents.NewStore(engine), logger, version)

	glspHandler := lsp.Handler{
		Initialize:             handler.Initialize,
		Initialized:            handler.Initialized,
		Shutdown:               handler.Shutdown,
		SetTrace:               handler.SetTrace,
		TextDocumentDidOpen:    handler.TextDocumentDidOpen,
		TextDocumentDidChange:  handler.TextDocumentDidChange,
		TextDocumentDidClose:   handler.TextDocumentDidClose,
		TextDocumentCodeAction: handler.TextDocumentCodeAction,
	}

	return &Server{
		server:  glspServer.NewServer(&glspHandler, Name, false),
		handler: handler,
	}
}

// RunStdio runs the server over stdin/stdout.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

// RunTCP runs the server on a TCP address.
func (s *Server) RunTCP(address string) error {
	return s.server.RunTCP(address)
}

// GetHandler returns the server's handler.
func (s *Server) GetHandler() *Handler {
	return s.handler
}
