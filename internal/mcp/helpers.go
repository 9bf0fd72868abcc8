package mcp

import (
	"encoding/json"
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/refactor"
	"github.com/mvp-joe/cfn-refactor/internal/syntax"
)

// marshalToolResponse encodes response as the tool's JSON text result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal response")
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// isUserError determines if an error should be shown to the LLM (user error)
// vs treated as an internal system error.
//
// User errors:
// - Missing files
// - Documents that are not templates or fail to parse
// - Positions outside the document or without an extractable literal
func isUserError(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, refactor.ErrNothingToExtract) ||
		errors.Is(err, refactor.ErrNotATemplate) ||
		errors.Is(err, syntax.ErrParseFailed) ||
		errors.Is(err, protocol.ErrPositionOutOfRange)
}
