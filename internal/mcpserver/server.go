// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the diagram session as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/cfreality/internal/apperr"
	"github.com/starford/cfreality/internal/dictionary"
	"github.com/starford/cfreality/internal/models"
	"github.com/starford/cfreality/internal/params"
	"github.com/starford/cfreality/internal/session"
)

// Server wraps the MCP server with diagram tools.
type Server struct {
	mcp  *server.MCPServer
	sess *session.Session
}

// New creates a new MCP server with all tools registered.
func New(sess *session.Session) *Server {
	s := &Server{sess: sess}

	s.mcp = server.NewMCPServer(
		"Consciousness-First Reality",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return parameters, coherence, collapsed stages, insights and clock state."),
	), s.getState)

	s.mcp.AddTool(mcp.NewTool("set_parameter",
		mcp.WithDescription("Set one simulator parameter. Values are clamped to 0..100."),
		mcp.WithString("name", mcp.Required(),
			mcp.Enum(models.ParameterNames...),
			mcp.Description("Parameter to change")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("New value, rounded to an integer")),
	), s.setParameter)

	s.mcp.AddTool(mcp.NewTool("collapse_node",
		mcp.WithDescription("Collapse a stage of the diagram. Boosts distinctions and ideation by the stage's "+
			"catalog boost the first time; repeated or unknown ids change nothing. "+
			"Read the model via get_model_contract or the cfr://model resource."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Stage id: ONE, one, Self, one+, ONE+ or ∞")),
	), s.collapseNode)

	s.mcp.AddTool(mcp.NewTool("reset_diagram",
		mcp.WithDescription("Clear all collapses and rewind the animation. Parameters and insights are kept."),
	), s.resetDiagram)

	s.mcp.AddTool(mcp.NewTool("list_insights",
		mcp.WithDescription("List recorded insights, newest first (at most ten)."),
	), s.listInsights)

	s.mcp.AddTool(mcp.NewTool("search_dictionary",
		mcp.WithDescription("Search the glossary by substring of title or definition, optionally by initial letter."),
		mcp.WithString("query", mcp.Description("Case-insensitive substring (empty for all)")),
		mcp.WithString("letter", mcp.Description("Initial letter A-Z (empty for all)")),
	), s.searchDictionary)

	s.mcp.AddTool(mcp.NewTool("get_term",
		mcp.WithDescription("Read one glossary term with its related terms."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Term id (e.g. ONE, self, infinity)")),
	), s.getTerm)

	s.mcp.AddTool(mcp.NewTool("get_model_contract",
		mcp.WithDescription("Returns the description of stages, boosts and the coherence formula. "+
			"Call this before collapsing stages or changing parameters."),
	), s.getModelContract)

	// Resource: model contract.
	s.mcp.AddResource(
		mcp.NewResource(ModelURI, "Diagram Model",
			mcp.WithResourceDescription("Stages, parameters, collapse rules and the coherence formula."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readModelResource,
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

func (s *Server) getState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.sess.Snapshot())
}

func (s *Server) setParameter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := req.RequireFloat("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return mcp.NewToolResultError("value must be a finite number"), nil
	}
	p, err := s.sess.SetParameter(name, params.ClampFloat(value))
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidParameter) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown parameter: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"parameters": p,
		"coherence":  s.sess.Coherence(),
	})
}

func (s *Server) collapseNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	changed := s.sess.Collapse(id)
	return jsonResult(map[string]any{
		"changed": changed,
		"state":   s.sess.Snapshot(),
	})
}

func (s *Server) resetDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sess.Reset()
	return jsonResult(s.sess.Snapshot())
}

func (s *Server) listInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	insights := s.sess.Insights()
	if len(insights) == 0 {
		return mcp.NewToolResultText("no insights recorded"), nil
	}
	return jsonResult(insights)
}

func (s *Server) searchDictionary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	terms := dictionary.Filter(req.GetString("query", ""), req.GetString("letter", ""))
	return jsonResult(terms)
}

func (s *Server) getTerm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	term, ok := dictionary.Lookup(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %s", apperr.ErrNotFound, id)), nil
	}
	return jsonResult(map[string]any{
		"term":    term,
		"related": dictionary.Related(id),
	})
}

func (s *Server) getModelContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ModelContract), nil
}

func (s *Server) readModelResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ModelURI,
			MIMEType: "text/markdown",
			Text:     ModelContract,
		},
	}, nil
}
