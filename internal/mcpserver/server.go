// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the module and source stores for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/modulestore"
	"github.com/starford/ansuz/internal/sourcestore"
)

const formatURI = "ansuz://module-format"

// Searcher is the index query used by search_modules.
type Searcher interface {
	Search(query string, limit int) ([]index.SearchResult, error)
}

// Server wraps the MCP server with module tools.
type Server struct {
	mcp     *server.MCPServer
	modules *modulestore.Store
	sources *sourcestore.Store
	index   Searcher
}

// moduleSummary is the list_modules entry.
type moduleSummary struct {
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Kapitel      string `json:"kapitel"`
	Unterkapitel string `json:"unterkapitel"`
	Status       string `json:"status"`
}

// New creates a new MCP server with all tools registered.
func New(modules *modulestore.Store, sources *sourcestore.Store, idx Searcher, version string) *Server {
	s := &Server{modules: modules, sources: sources, index: idx}

	s.mcp = server.NewMCPServer(
		"ansuz",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_modules",
		mcp.WithDescription("List all modules sorted by chapter and subchapter."),
		mcp.WithString("status", mcp.Description("Optional status filter: entwurf, überarbeitung or final")),
	), s.listModules)

	s.mcp.AddTool(mcp.NewTool("read_module",
		mcp.WithDescription("Read one module: metadata and markdown body."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Module slug, e.g. kapitel-1/einleitung")),
	), s.readModule)

	s.mcp.AddTool(mcp.NewTool("save_module",
		mcp.WithDescription("Create or update a module. The body replaces the old body; "+
			"frontmatter keys are merged (null removes a key). Read the module format "+
			"via the "+formatURI+" resource first."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Module slug")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body without frontmatter")),
		mcp.WithObject("frontmatter", mcp.Description("Frontmatter changes")),
	), s.saveModule)

	s.mcp.AddTool(mcp.NewTool("search_modules",
		mcp.WithDescription("Full-text search through module titles, bodies and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchModules)

	s.mcp.AddTool(mcp.NewTool("download_chapter",
		mcp.WithDescription("Concatenate all modules of a chapter into one markdown document."),
		mcp.WithString("chapter", mcp.Required(), mcp.Description("Chapter number, e.g. 3")),
	), s.downloadChapter)

	s.mcp.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List the research sources."),
	), s.listSources)

	s.mcp.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Word count and completion progress of the manuscript."),
	), s.getStats)

	s.mcp.AddTool(mcp.NewTool("get_module_format",
		mcp.WithDescription("Returns the module format contract. "+
			"Call this before saving modules to ensure correct structure."),
	), s.getModuleFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Module Format",
			mcp.WithResourceDescription("Markdown module format with the frontmatter keys the service understands."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listModules(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mods, err := s.modules.List(req.GetString("status", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]moduleSummary, 0, len(mods))
	for _, m := range mods {
		out = append(out, moduleSummary{
			Slug:         m.Slug,
			Title:        m.Title,
			Kapitel:      m.Kapitel,
			Unterkapitel: m.Unterkapitel,
			Status:       m.Status,
		})
	}
	return jsonResult(out)
}

func (s *Server) readModule(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.modules.Get(slug)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m.HTMLContent = ""
	return jsonResult(m)
}

func (s *Server) saveModule(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var patch models.Patch
	if raw, ok := req.GetArguments()["frontmatter"]; ok && raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := json.Unmarshal(data, &patch); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	m, err := s.modules.Save(slug, content, patch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", m.Slug)), nil
}

func (s *Server) searchModules(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.index.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) downloadChapter(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chapter, err := req.RequireString("chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, text, err := s.modules.DownloadChapter(chapter)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("chapter %s has no modules", chapter)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) listSources(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.sources.ListAll()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list)
}

func (s *Server) getStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.modules.Stats()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func (s *Server) getModuleFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ModuleFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     ModuleFormatContract,
		},
	}, nil
}
