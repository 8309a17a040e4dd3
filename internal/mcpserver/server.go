// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only course site tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/coursekit/coursekit/internal/apperr"
	"github.com/coursekit/coursekit/internal/siteservice"
)

// ContractURI is the resource URI of the content format contract.
const ContractURI = "coursekit://content-format"

// Server wraps the MCP server with course site tools.
type Server struct {
	mcp *server.MCPServer
	svc *siteservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *siteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"CourseKit",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_visible_posts",
		mcp.WithDescription("List the course materials visible at build time, newest first, "+
			"with their deadline status (future, due-today, expired or none)."),
		mcp.WithString("tag", mcp.Description("Optional tag to filter by (case-insensitive)")),
	), s.listVisiblePosts)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List the distinct tags of the visible course materials."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_deadline_status",
		mcp.WithDescription("Return the deadline status and effective deadline of one material."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Material slug (file name without .md)")),
	), s.getDeadlineStatus)

	s.mcp.AddTool(mcp.NewTool("query_holidays",
		mcp.WithDescription("List holidays between two dates (YYYY-MM-DD, inclusive). "+
			"Both bounds default to the term window."),
		mcp.WithString("start", mcp.Description("First date, e.g. 2025-08-01")),
		mcp.WithString("end", mcp.Description("Last date, e.g. 2025-12-20")),
	), s.queryHolidays)

	s.mcp.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Full-text search through visible materials and projects."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchContent)

	s.mcp.AddTool(mcp.NewTool("get_content_contract",
		mcp.WithDescription("Returns the content format contract for materials, projects, "+
			"bookings and calendar entries. Read this before authoring content."),
	), s.getContentContract)

	// Resource: content format contract.
	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Content Format Contract",
			mcp.WithResourceDescription("Frontmatter schema of every content kind."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

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

func (s *Server) listVisiblePosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	posts, err := s.svc.Posts(ctx, req.GetString("tag", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(posts)
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.Tags(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(tags)
}

func (s *Server) getDeadlineStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.PostStatus(ctx, slug)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(map[string]any{
		"slug":               view.Slug,
		"title":              view.Title,
		"status":             view.Status,
		"effective_deadline": view.EffectiveDeadline,
		"no_deadline":        view.NoDeadline,
	})
}

func (s *Server) queryHolidays(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hs, err := s.svc.Holidays(ctx, req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(hs)
}

func (s *Server) searchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(results)
}

func (s *Server) getContentContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContentFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     ContentFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrNotReady):
		return mcp.NewToolResultError("site is still building, retry shortly")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
