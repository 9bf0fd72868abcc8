package mcp

// Implementation Plan:
// 1. AddExtractToParameterTool - composable tool registration function
// 2. createExtractHandler - handler factory that captures the engine and project root
// 3. Bind ExtractRequest with mcputils.CoerceBindArguments
// 4. Resolve the path inside the project root
// 5. Run Engine.ExtractFile and return ExtractResponse as JSON text (mcp-go convention)

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cfn-refactor/internal/extract"
	mcputils "github.com/mvp-joe/cfn-refactor/internal/mcp-utils"
	"github.com/mvp-joe/cfn-refactor/internal/protocol"
	"github.com/mvp-joe/cfn-refactor/internal/refactor"
)

// ToolName is the registered name of the extraction tool.
const ToolName = "cfn_extract_to_parameter"

// errOutsideRoot rejects paths that escape the project root.
var errOutsideRoot = errors.New("path is outside project root")

// ExtractRequest holds the tool arguments. Positions are zero-based; the
// character counts UTF-16 code units as in LSP.
type ExtractRequest struct {
	Path           string `json:"path"`
	Line           int    `json:"line"`
	Character      int    `json:"character"`
	AllOccurrences bool   `json:"all_occurrences,omitempty"`
	Write          bool   `json:"write,omitempty"`
}

// ExtractResponse is returned as the tool's JSON text.
type ExtractResponse struct {
	ParameterName  string                      `json:"parameter_name"`
	Parameter      extract.ParameterDefinition `json:"parameter"`
	Edit           *protocol.WorkspaceEdit     `json:"edit"`
	Applied        bool                        `json:"applied"`
	Path           string                      `json:"path"`
	AllOccurrences bool                        `json:"all_occurrences"`
}

// AddExtractToParameterTool registers cfn_extract_to_parameter with an MCP server.
// This function is composable - it can be combined with other tool registrations.
func AddExtractToParameterTool(s *server.MCPServer, engine *refactor.Engine, root string) {
	tool := mcp.NewTool(
		ToolName,
		mcp.WithDescription("Replace a hard-coded literal in a CloudFormation template (JSON or YAML) with a reference to a new template parameter. Returns the parameter definition and the text edits; set write=true to apply them to the file."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Template path, absolute or relative to the project root")),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("Zero-based line of the literal")),
		mcp.WithNumber("character",
			mcp.Required(),
			mcp.Description("Zero-based character (UTF-16 code units) inside the literal")),
		mcp.WithBoolean("all_occurrences",
			mcp.Description("Replace every equal literal under Resources and Outputs (default: false)")),
		mcp.WithBoolean("write",
			mcp.Description("Apply the edits to the file instead of only returning them (default: false)")),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createExtractHandler(engine, root))
}

func createExtractHandler(engine *refactor.Engine, root string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]any); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req ExtractRequest
		if err := mcputils.CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}
		if req.Line < 0 || req.Character < 0 {
			return mcp.NewToolResultError("line and character must be zero or positive"), nil
		}

		path, err := resolvePath(root, req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		pos := protocol.Position{Line: req.Line, Character: req.Character}
		result, err := engine.ExtractFile(ctx, path, pos, req.AllOccurrences, req.Write)
		if err != nil {
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}

		return marshalToolResponse(ExtractResponse{
			ParameterName:  result.ParameterName,
			Parameter:      result.Parameter,
			Edit:           result.Edit,
			Applied:        result.Applied,
			Path:           result.Path,
			AllOccurrences: result.AllOccurrences,
		})
	}
}

// resolvePath joins relative paths to root and rejects anything that escapes it.
func resolvePath(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, "invalid project root %s", root)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(absRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(errOutsideRoot, "%s", path)
	}
	return path, nil
}
