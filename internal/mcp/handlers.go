package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/markletdev/marklet/internal/bookmarklet"
	"github.com/markletdev/marklet/internal/config"
	"github.com/markletdev/marklet/internal/errors"
	"github.com/markletdev/marklet/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *store.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: st, cfg: cfg}
}

// Request types for each tool

// CreateRequest represents the arguments for create.
type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Code        string `json:"code"`
}

// GetRequest represents the arguments for get.
type GetRequest struct {
	ID string `json:"id"`
}

// UpdateRequest represents the arguments for update.
type UpdateRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Code        string `json:"code"`
}

// DeleteRequest represents the arguments for delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// SearchRequest represents the arguments for search.
type SearchRequest struct {
	Query string `json:"query,omitempty"`
}

// ShareRequest represents the arguments for share.
type ShareRequest struct {
	ID string `json:"id"`
}

// ReceiveRequest represents the arguments for receive.
type ReceiveRequest struct {
	Token string `json:"token"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
}

// ImportRequest represents the arguments for import.
type ImportRequest struct {
	Path string `json:"path"`
}

// Result envelopes for tools whose output is not a plain record.

type listResult struct {
	Records []bookmarklet.Record `json:"records"`
	Count   int                  `json:"count"`
}

type searchResult struct {
	Records []bookmarklet.Record `json:"records"`
	Count   int                  `json:"count"`
	Query   string               `json:"query"`
}

type deleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type shareResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
	Link  string `json:"link"`
}

// Handler implementations

// HandleCreate handles the create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	rec, err := h.store.Create(input.Name, input.Description, input.Code)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(rec)
}

// HandleGet handles the get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	rec, err := h.store.Get(input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(rec)
}

// HandleUpdate handles the update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	rec, err := h.store.Update(input.ID, input.Name, input.Description, input.Code)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(rec)
}

// HandleDelete handles the delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	deleted, err := h.store.Delete(input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(deleteResult{ID: input.ID, Deleted: deleted})
}

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records := h.store.List()
	return successResult(listResult{Records: records, Count: len(records)})
}

// HandleSearch handles the search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	records := h.store.Search(input.Query)
	return successResult(searchResult{Records: records, Count: len(records), Query: input.Query})
}

// HandleShare handles the share tool call.
func (h *Handlers) HandleShare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ShareRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	rec, err := h.store.Get(input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	token := bookmarklet.Encode(rec.Payload())
	return successResult(shareResult{
		ID:    rec.ID,
		Name:  rec.Name,
		Token: token,
		Link:  bookmarklet.ShareLink(h.cfg.ShareBase(), token),
	})
}

// HandleReceive handles the receive tool call.
func (h *Handlers) HandleReceive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReceiveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	payload, err := bookmarklet.Decode(bookmarklet.ExtractToken(input.Token))
	if err != nil {
		return errorResult(err), nil
	}

	rec, err := h.store.ImportShare(*payload)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(rec)
}

// HandleExport handles the export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.store.ExportFile(h.cfg, store.ExportInput{
		Path:   input.Path,
		Format: store.ExportFormat(input.Format),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.store.ImportFile(h.cfg, store.ImportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if mErr, ok := err.(*errors.MarkletError); ok {
		errorObj := map[string]any{
			"code":    mErr.Code,
			"message": mErr.Message,
			"status":  mErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or storage errors
		if mErr.Code != errors.ErrInternal && mErr.Details != nil {
			errorObj["details"] = mErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
