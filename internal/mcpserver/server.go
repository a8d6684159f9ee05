// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Arkiv repository tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/arkiv/internal/apperr"
	"github.com/starford/arkiv/internal/docservice"
)

// Server wraps the MCP server with Arkiv tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Arkiv tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Arkiv",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_folders",
		mcp.WithDescription("List every folder with the summaries of its files."),
	), s.listFolders)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List documents. Pass folder_id to scope to one folder, omit it for all documents."),
		mcp.WithString("folder_id", mcp.Description("Optional folder identifier")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("create_folder",
		mcp.WithDescription("Create a new folder. The name must be non-empty after trimming."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Folder display name")),
	), s.createFolder)

	s.mcp.AddTool(mcp.NewTool("upload_document",
		mcp.WithDescription("Ingest a document from an http(s) URL or a base64 data URI. "+
			"Returns the stored summary including the opaque identifier and retrieval path."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data URI of the content")),
		mcp.WithString("filename", mcp.Description("Original filename (derived from the URL when omitted)")),
		mcp.WithString("folder_id", mcp.Description("Target folder identifier (unfiled when omitted)")),
		mcp.WithString("category", mcp.Description("Category label (defaults to General)")),
		mcp.WithString("description", mcp.Description("Free-text description")),
	), s.uploadDocument)

	s.mcp.AddTool(mcp.NewTool("rename_document",
		mcp.WithDescription("Rename a document. The original file extension is preserved "+
			"even when the new name omits it."),
		mcp.WithString("file_id", mcp.Required(), mcp.Description("File identifier")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New display name")),
	), s.renameDocument)

	s.mcp.AddTool(mcp.NewTool("delete_document",
		mcp.WithDescription("Delete a document: removes both the metadata record and the stored bytes."),
		mcp.WithString("file_id", mcp.Required(), mcp.Description("File identifier")),
	), s.deleteDocument)

	s.mcp.AddTool(mcp.NewTool("get_storage_stats",
		mcp.WithDescription("Aggregate storage totals by type bucket plus per-category document counts."),
	), s.storageStats)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listFolders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folders, err := s.svc.ListFolders(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(folders, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folderID := ""
	if v, err := req.RequireString("folder_id"); err == nil {
		folderID = v
	}

	var (
		docs any
		err  error
	)
	if folderID == "" {
		docs, err = s.svc.ListAllFiles(ctx)
	} else {
		docs, err = s.svc.ListFiles(ctx, folderID)
	}
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("folder not found: %s", folderID)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(docs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder, err := s.svc.CreateFolder(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidName) {
			return mcp.NewToolResultError("folder name must not be empty"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(folder)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) renameDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID, err := req.RequireString("file_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum, err := s.svc.RenameFile(ctx, fileID, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("document not found: %s", fileID)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(sum)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID, err := req.RequireString("file_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteFile(ctx, fileID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("document not found: %s", fileID)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s", fileID)), nil
}

func (s *Server) storageStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, cats, err := s.svc.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"storage":    stats,
		"categories": cats,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
