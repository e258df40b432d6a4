// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes wiki tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/motioneffector/wiki/internal/wikiservice"
)

// Server wraps the MCP server with wiki tools.
type Server struct {
	mcp *server.MCPServer
	svc *wikiservice.Service
}

// New creates a new MCP server with all wiki tools registered.
func New(svc *wikiservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Wiki",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Search page titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read a page with its backlinks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page identifier (slug)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new page. Use [[wikilinks]] in the content to "+
			"reference other pages by title; the identifier is derived from the title. "+
			"Read the page format via the wiki://page-format resource first."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Page title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Page content with [[wikilinks]]")),
	), s.createPage)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all pages that link to the given page."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page identifier (slug)")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_dead_links",
		mcp.WithDescription("List links whose target pages do not exist."),
	), s.getDeadLinks)

	s.mcp.AddTool(mcp.NewTool("get_connected",
		mcp.WithDescription("List pages within a number of link hops of a page, in either direction."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page identifier (slug)")),
		mcp.WithNumber("depth", mcp.Description("Maximum hops from the start page (default 2)")),
	), s.getConnected)

	// Resource: page format contract.
	s.mcp.AddResource(
		mcp.NewResource("wiki://page-format", "Page Format Contract",
			mcp.WithResourceDescription("How wiki pages and [[wikilinks]] are structured."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPageFormatResource,
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

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.GetPage(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(page, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.CreatePage(ctx, wikiservice.CreatePageInput{Title: title, Content: content})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created page %q", page.ID)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(s.svc.Backlinks(ctx, id), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDeadLinks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.DeadLinks(ctx), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getConnected(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	depth := req.GetInt("depth", 2)
	if depth < 0 {
		return mcp.NewToolResultError("depth must be non-negative"), nil
	}
	out, _ := json.MarshalIndent(s.svc.Connected(ctx, id, depth), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPageFormatResource(_ context.Context, req mcp.ReadResourceRequest) (
	[]mcp.ResourceContents, error,
) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     PageFormatContract,
		},
	}, nil
}
