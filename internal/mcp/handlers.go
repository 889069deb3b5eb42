package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/shotcap/internal/config"
	"github.com/hpungsan/shotcap/internal/errors"
	"github.com/hpungsan/shotcap/internal/ops"
	"github.com/hpungsan/shotcap/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	st     store.Store
	ex     ops.TextExtractor
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance. ex may be nil to skip OCR.
func NewHandlers(st store.Store, ex ops.TextExtractor, cfg *config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{st: st, ex: ex, cfg: cfg, logger: logger}
}

// IngestRequest represents the arguments for capture_ingest.
type IngestRequest struct {
	Screenshot string `json:"screenshot"`
	Text       string `json:"text,omitempty"`
}

// ListRequest represents the arguments for capture_list.
type ListRequest struct {
	Kind string `json:"kind,omitempty"`
}

// ExportRequest represents the arguments for capture_export.
type ExportRequest struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
}

// ClearRequest represents the arguments for capture_clear.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// HandleIngest handles the capture_ingest tool call.
func (h *Handlers) HandleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IngestRequest](req)
	if err != nil {
		return h.errorResult("capture_ingest", err), nil
	}

	result, err := ops.Ingest(ctx, h.st, h.ex, h.cfg, ops.IngestInput{
		Screenshot:   input.Screenshot,
		FallbackText: input.Text,
	})
	if err != nil {
		return h.errorResult("capture_ingest", err), nil
	}

	h.logger.Debug("capture ingested",
		zap.String("source", result.Item.Source),
		zap.String("kind", string(result.Item.Kind)),
		zap.String("text_source", result.TextSource),
	)
	return successResult(result)
}

// HandleList handles the capture_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return h.errorResult("capture_list", err), nil
	}

	result, err := ops.List(ctx, h.st, ops.ListInput{Kind: input.Kind})
	if err != nil {
		return h.errorResult("capture_list", err), nil
	}

	return successResult(result)
}

// HandleExport handles the capture_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return h.errorResult("capture_export", err), nil
	}

	result, err := ops.Export(ctx, h.st, ops.ExportInput{
		Path:   input.Path,
		Format: input.Format,
	})
	if err != nil {
		return h.errorResult("capture_export", err), nil
	}

	return successResult(result)
}

// HandleClear handles the capture_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClearRequest](req)
	if err != nil {
		return h.errorResult("capture_clear", err), nil
	}
	if !input.Confirm {
		return h.errorResult("capture_clear", errors.NewInvalidRequest("confirm must be true to clear all captures")), nil
	}

	result, err := ops.Clear(ctx, h.st)
	if err != nil {
		return h.errorResult("capture_clear", err), nil
	}

	h.logger.Info("captures cleared", zap.Int("removed", result.Removed))
	return successResult(result)
}

// decode unmarshals MCP request arguments into a typed struct.
// Malformed arguments are INVALID_REQUEST.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("marshal args: %v", err))
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("invalid arguments: %v", err))
	}
	return result, nil
}

// errorResult creates an MCP error result and logs the failure.
// INTERNAL details are logged but never sent to the client.
func (h *Handlers) errorResult(tool string, err error) *mcp.CallToolResult {
	cErr := errors.As(err)
	if cErr.Code == errors.ErrInternal {
		h.logger.Error("tool failed", zap.String("tool", tool), zap.Any("details", cErr.Details))
	} else {
		h.logger.Debug("tool rejected", zap.String("tool", tool), zap.String("code", string(cErr.Code)))
	}
	return errorResult(cErr)
}

func errorResult(cErr *errors.CaptureError) *mcp.CallToolResult {
	errorObj := map[string]any{
		"code":    cErr.Code,
		"message": cErr.Message,
		"status":  cErr.Status,
	}
	// Only include details for non-internal errors to avoid leaking
	// sensitive info like file paths or SQL errors
	if cErr.Code != errors.ErrInternal && cErr.Details != nil {
		errorObj["details"] = cErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
