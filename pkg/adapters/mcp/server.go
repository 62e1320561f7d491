package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/blueprint"
	"github.com/aretw0/arbor/pkg/builder"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TreeURI is the resource exposing the live tree snapshot.
const TreeURI = "arbor://tree"

// Driver is the part of runner.Driver the MCP server needs.
type Driver interface {
	AgentID() string
	Tick(ctx context.Context) (domain.Status, error)
	Snapshot() *ports.Snapshot
	Registry() *registry.Registry
}

// Server exposes a driver to MCP clients, typically the generator that
// writes tree descriptions: it can discover capabilities, validate a
// description before committing to it, tick and inspect.
type Server struct {
	driver    Driver
	catalog   *builder.Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithCatalog fixes the capability catalog used by list_capabilities and
// validate_blueprint. By default it is derived from the driver's registry.
func WithCatalog(c *builder.Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(driver Driver, version string, opts ...Option) *Server {
	s := &Server{
		driver:    driver,
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("arbor-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) currentCatalog() *builder.Catalog {
	if s.catalog != nil {
		return s.catalog
	}
	if reg := s.driver.Registry(); reg != nil {
		return builder.CatalogFromRegistry(reg)
	}
	return builder.NewCatalog(nil, nil)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_capabilities",
		mcp.WithDescription("List the action and sense names a behavior tree may reference."),
	), s.handleListCapabilities)

	s.mcpServer.AddTool(mcp.NewTool("validate_blueprint",
		mcp.WithDescription("Validate a behavior tree description against the available capabilities without activating it."),
		mcp.WithString("blueprint", mcp.Required(), mcp.Description("The description, as JSON or YAML")),
		mcp.WithString("format", mcp.Description("json or yaml (default json)"), mcp.Enum("json", "yaml")),
		mcp.WithBoolean("strict", mcp.Description("Reject the description on any problem instead of dropping failed subtrees")),
	), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("tick",
		mcp.WithDescription("Evaluate the active behavior tree once and return its status."),
	), s.handleTick)

	s.mcpServer.AddTool(mcp.NewTool("snapshot",
		mcp.WithDescription("Get the status of every node after the last tick."),
		mcp.WithString("format", mcp.Description("json or mermaid (default json)"), mcp.Enum("json", "mermaid")),
	), s.handleSnapshot)
}

// Capabilities is the result of list_capabilities.
type Capabilities struct {
	Actions []string `json:"actions"`
	Senses  []string `json:"senses"`
}

func (s *Server) handleListCapabilities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c := s.currentCatalog()
	caps := Capabilities{Actions: c.Actions(), Senses: c.Senses()}
	if caps.Actions == nil {
		caps.Actions = []string{}
	}
	if caps.Senses == nil {
		caps.Senses = []string{}
	}
	return jsonResult(caps)
}

// Validation is the result of validate_blueprint.
type Validation struct {
	Valid  bool     `json:"valid"`
	Usable bool     `json:"usable"`
	Nodes  int      `json:"nodes"`
	Tree   string   `json:"tree,omitempty"`
	Issues []string `json:"issues"`
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	src, _ := args["blueprint"].(string)
	if src == "" {
		return mcp.NewToolResultError("blueprint is required"), nil
	}
	format := blueprint.FormatJSON
	if f, _ := args["format"].(string); f == string(blueprint.FormatYAML) {
		format = blueprint.FormatYAML
	}
	policy := builder.Lenient
	if strict, _ := args["strict"].(bool); strict {
		policy = builder.Strict
	}

	doc, err := blueprint.Decode([]byte(src), format)
	if errors.Is(err, blueprint.ErrFeedback) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("decode failed: %v", err)), nil
	}

	v := Validation{Issues: []string{}}
	res, err := builder.New(s.currentCatalog(), builder.WithPolicy(policy), builder.WithLogger(s.logger)).Build(doc)
	if err != nil {
		for _, be := range builder.BuildErrors(err) {
			v.Issues = append(v.Issues, be.Error())
		}
		if len(v.Issues) == 0 {
			v.Issues = append(v.Issues, err.Error())
		}
		return jsonResult(v)
	}

	v.Valid = true
	v.Usable = res.Usable()
	v.Nodes = len(res.Tree.Nodes())
	v.Tree = doc.Tree.String()
	for _, issue := range res.Issues {
		v.Issues = append(v.Issues, issue.Error())
	}
	return jsonResult(v)
}

func (s *Server) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.driver.Tick(ctx)
	if errors.Is(err, domain.ErrNotActive) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		s.logger.Warn("MCP tick: publish failed", "error", err)
	}
	return mcp.NewToolResultText(status.String()), nil
}

func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.driver.Snapshot()
	if snap == nil {
		return mcp.NewToolResultError(domain.ErrNotActive.Error()), nil
	}
	if f, _ := request.GetArguments()["format"].(string); f == "mermaid" {
		return mcp.NewToolResultText(graph.GenerateMermaid(snap.Tree, graph.StatusOverlay(snap.Tree))), nil
	}
	return jsonResult(snap)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TreeURI, "Live behavior tree snapshot",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap := s.driver.Snapshot()
		if snap == nil {
			return nil, domain.ErrNotActive
		}
		data, err := json.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TreeURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
