// Package mcp implements the Model Context Protocol server, exposing glossary
// search to LLMs. This lets AI assistants look up course glossaries through
// a standardised protocol.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stronk7/moodle-block-search-glossaries/extension"
	"github.com/stronk7/moodle-block-search-glossaries/internal/glossary"
	"github.com/stronk7/moodle-block-search-glossaries/internal/repo"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// ErrNotInitialised is returned by tools when the store has not been initialised.
// The LLM should call glossd_init to create a store before using other tools.
const ErrNotInitialised = "store not initialised - call glossd_init first"

// Options selects what the server serves.
type Options struct {
	DB      string // database name, empty for the default
	Catalog string // catalogue file served from memory instead of a database
}

// Serve starts the MCP server over stdio.
//
// The server starts even if no store exists, so an LLM can call glossd_init
// rather than failing with an opaque error. Tools that require a store
// return ErrNotInitialised until then.
func Serve(opts Options) error {
	// Log to stderr; stdout is reserved for MCP JSON-RPC messages
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	h, err := open(context.Background(), opts)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		return err
	}
	if h.svc != nil {
		defer h.svc.Close()
	} else {
		slog.Info("glossd not initialised, starting in uninitialised mode - call glossd_init to create store")
	}

	s := NewServer(h)
	slog.Info("glossd MCP server ready", "version", Version, "transport", "stdio", "catalog", opts.Catalog)

	err = server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// open returns handlers over the store opts names. A missing repository is
// not an error.
func open(ctx context.Context, opts Options) (*handlers, error) {
	h := &handlers{db: opts.DB}
	if opts.Catalog != "" {
		svc, err := glossary.OpenCatalog(ctx, opts.Catalog)
		if err != nil {
			return nil, err
		}
		h.svc = svc
		h.inMemory = true
		return h, nil
	}

	svc, err := glossary.New(opts.DB)
	if err != nil && !errors.Is(err, repo.ErrNotInitialised) {
		return nil, err
	}
	if err == nil {
		h.svc = svc
	}
	return h, nil
}

// NewServer builds the MCP server with every tool and resource registered.
func NewServer(h *handlers) *server.MCPServer {
	s := server.NewMCPServer(
		"glossd",
		Version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)
	registerResources(s, h)
	registerTools(s, h)
	registerExtensionTools(s, h)
	return s
}

// handlers provides MCP request handlers with access to the glossary service.
// The svc field may be nil if the store has not been initialised.
type handlers struct {
	db       string            // database name for init
	svc      *glossary.Service // nil if not initialised
	inMemory bool              // serving a catalogue file
}

// requireInit returns an error result if the store is not initialised.
// Tools that require a store should call this first.
func (h *handlers) requireInit() *mcp.CallToolResult {
	if h.svc == nil {
		return mcp.NewToolResultError(ErrNotInitialised)
	}
	return nil
}

// registerResources adds URI-based access to course glossaries.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResource(
		mcp.NewResource(
			"glossd://courses",
			"Courses",
			mcp.WithResourceDescription("Every course in the catalogue"),
			mcp.WithMIMEType("application/json"),
		),
		h.readCourses,
	)

	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"glossd://courses/{id}/glossaries",
			"Course Glossaries",
			mcp.WithTemplateDescription("The glossaries of a course"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		h.readGlossaries,
	)
}

// registerTools exposes glossary operations as MCP tools for LLM invocation.
func registerTools(s *server.MCPServer, h *handlers) {
	// Init - works without existing store
	s.AddTool(
		mcp.NewTool("glossd_init",
			mcp.WithDescription("Initialise a new glossd catalogue. Call this first if other tools return 'store not initialised'."),
			mcp.WithBoolean("local", mcp.Description("If true, database is gitignored (not committed to version control)")),
		),
		h.initStore,
	)

	s.AddTool(
		mcp.NewTool("glossd_search",
			mcp.WithDescription("Search the glossaries of a course. Words are ANDed; +word matches whole words only, -word excludes entries containing it."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query, e.g. '+cell -plant'")),
			mcp.WithNumber("course", mcp.Required(), mcp.Description("Course id")),
			mcp.WithNumber("page", mcp.Description("Zero-based result page (100 entries per page)")),
			mcp.WithNumber("user", mcp.Description("Search as this user id (default: configured user)")),
		),
		h.searchGlossaries,
	)

	s.AddTool(
		mcp.NewTool("glossd_highlight",
			mcp.WithDescription("Return the words of a query that search results highlight"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		),
		h.highlightTerms,
	)

	s.AddTool(
		mcp.NewTool("glossd_courses",
			mcp.WithDescription("List every course in the catalogue"),
		),
		h.listCourses,
	)

	s.AddTool(
		mcp.NewTool("glossd_glossaries",
			mcp.WithDescription("List the glossaries of a course, hidden ones included"),
			mcp.WithNumber("course", mcp.Required(), mcp.Description("Course id")),
		),
		h.listGlossaries,
	)

	s.AddTool(
		mcp.NewTool("glossd_stats",
			mcp.WithDescription("Count courses, glossaries, entries, aliases and grants"),
		),
		h.stats,
	)

	s.AddTool(
		mcp.NewTool("glossd_import",
			mcp.WithDescription("Import a YAML or JSON catalogue file. Records are replaced by id, so re-importing is safe."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Filesystem path of the catalogue")),
			mcp.WithBoolean("dry_run", mcp.Description("Validate and count without importing")),
			mcp.WithBoolean("diff", mcp.Description("Also list entries the import adds or changes")),
		),
		h.importCatalog,
	)

	s.AddTool(
		mcp.NewTool("glossd_config_get",
			mcp.WithDescription("Get a configuration value"),
			mcp.WithString("key", mcp.Description("Config key (user.id, search.full_text, access.open, ...) or empty for all")),
		),
		h.configGet,
	)

	s.AddTool(
		mcp.NewTool("glossd_config_set",
			mcp.WithDescription("Set a configuration value"),
			mcp.WithString("key", mcp.Required(), mcp.Description("Config key (user.id, search.full_text, access.open, ...)")),
			mcp.WithString("value", mcp.Required(), mcp.Description("Value to set")),
		),
		h.configSet,
	)

	s.AddTool(
		mcp.NewTool("glossd_guide",
			mcp.WithDescription("Get help/guide content for glossd commands"),
			mcp.WithString("topic", mcp.Description("Guide topic (e.g., 'search', 'import') or empty for index")),
		),
		h.getGuide,
	)
}

// registerExtensionTools adds the tools registered extensions provide. They
// need a store, so nothing is added in uninitialised mode.
func registerExtensionTools(s *server.MCPServer, h *handlers) {
	if h.svc == nil {
		return
	}
	extCtx := extension.NewContext(h.svc, h.svc.DB(), h.svc.Config())
	h.svc.SetExtensionContext(extCtx)
	for _, ext := range extension.All() {
		if init, ok := ext.(extension.Initializable); ok {
			if err := init.Init(extCtx); err != nil {
				slog.Warn("extension init failed", "extension", ext.Name(), "error", err)
				continue
			}
		}
		for _, t := range ext.MCPTools() {
			handler := t.Handler
			s.AddTool(t.Tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handler(ctx, extCtx, req)
			})
		}
	}
}
