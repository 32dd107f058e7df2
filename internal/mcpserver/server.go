// Package mcpserver exposes audits as MCP tools so agents can check markup
// without going through the HTTP API.
package mcpserver

import (
	"context"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raysh454/wcag131/internal/app"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

// Server wraps the MCP SDK server around an orchestrator.
type Server struct {
	MCPServer *sdkmcp.Server

	orch   *app.Orchestrator
	logger logging.Logger
}

// NewServer registers the audit tools. The orchestrator stays owned by the
// caller.
func NewServer(orch *app.Orchestrator, version string, logger logging.Logger) (*Server, error) {
	if orch == nil {
		return nil, errors.New("mcpserver: nil orchestrator")
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	if version == "" {
		version = "dev"
	}
	s := &Server{
		orch:   orch,
		logger: logger.With(logging.Field{Key: "component", Value: "mcp"}),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "wcag131", Version: version},
		nil,
	)
	s.registerTools()
	return s, nil
}

// Run serves the tools over stdin/stdout until ctx is done or the client leaves.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving mcp over stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "audit_html",
		Description: "Audit an HTML document for WCAG 1.3.1 (Info and Relationships) markup problems. Returns one result per category with its issues.",
	}, s.handleAuditHTML)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "audit_url",
		Description: "Fetch a page and audit it for WCAG 1.3.1 markup problems. The audit is stored in the history.",
	}, s.handleAuditURL)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_audit",
		Description: "Get a stored audit by id.",
	}, s.handleGetAudit)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_audits",
		Description: "List stored audits of a URL or file, newest first.",
	}, s.handleListAudits)
}

type auditHTMLInput struct {
	HTML   string `json:"html" jsonschema:"the full HTML document"`
	Source string `json:"source,omitempty" jsonschema:"name recorded with the audit (file name or URL)"`
}

type auditURLInput struct {
	URL string `json:"url" jsonschema:"page to fetch and audit"`
}

type getAuditInput struct {
	ID string `json:"id" jsonschema:"audit id returned by audit_html or audit_url"`
}

type listAuditsInput struct {
	Source string `json:"source" jsonschema:"URL or file name the audits were run on"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of audits (0 = all)"`
}

type categoryOutput struct {
	Category   string        `json:"category"`
	Name       string        `json:"name"`
	Status     string        `json:"status"`
	Confidence float64       `json:"confidence"`
	IssueCount int           `json:"issue_count"`
	Issues     []model.Issue `json:"issues"`
}

type auditOutput struct {
	ID         string           `json:"id"`
	Source     string           `json:"source"`
	StatusCode int              `json:"status_code,omitempty"`
	Failing    int              `json:"failing"`
	Categories []categoryOutput `json:"categories"`
}

type listAuditsOutput struct {
	Audits []*model.ReportSummary `json:"audits"`
}

func toOutput(r *model.Report) auditOutput {
	out := auditOutput{
		ID:         r.ID,
		Source:     r.Source,
		StatusCode: r.StatusCode,
		Failing:    r.Failing(),
		Categories: make([]categoryOutput, 0, len(r.Categories)),
	}
	for _, cr := range r.Categories {
		co := categoryOutput{Category: string(cr.Category), Name: cr.Name}
		if res := cr.Result; res != nil {
			co.Status = string(res.Status)
			co.Confidence = res.Confidence
			co.IssueCount = res.IssueCount
			co.Issues = res.Issues
		}
		if co.Issues == nil {
			co.Issues = []model.Issue{}
		}
		out.Categories = append(out.Categories, co)
	}
	return out
}

func (s *Server) handleAuditHTML(ctx context.Context, _ *sdkmcp.CallToolRequest, input auditHTMLInput) (*sdkmcp.CallToolResult, auditOutput, error) {
	if input.HTML == "" {
		return nil, auditOutput{}, errors.New("html is required")
	}
	source := input.Source
	if source == "" {
		source = "mcp"
	}
	rep, err := s.orch.AuditHTML(ctx, []byte(input.HTML), source)
	if err != nil {
		s.logger.Warn("audit_html failed", logging.Field{Key: "error", Value: err.Error()})
		return nil, auditOutput{}, err
	}
	return nil, toOutput(rep), nil
}

func (s *Server) handleAuditURL(ctx context.Context, _ *sdkmcp.CallToolRequest, input auditURLInput) (*sdkmcp.CallToolResult, auditOutput, error) {
	rep, err := s.orch.AuditURL(ctx, input.URL)
	if err != nil {
		s.logger.Warn("audit_url failed",
			logging.Field{Key: "url", Value: input.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, auditOutput{}, err
	}
	return nil, toOutput(rep), nil
}

func (s *Server) handleGetAudit(ctx context.Context, _ *sdkmcp.CallToolRequest, input getAuditInput) (*sdkmcp.CallToolResult, auditOutput, error) {
	rep, err := s.orch.GetAudit(ctx, input.ID)
	if err != nil {
		return nil, auditOutput{}, err
	}
	return nil, toOutput(rep), nil
}

func (s *Server) handleListAudits(ctx context.Context, _ *sdkmcp.CallToolRequest, input listAuditsInput) (*sdkmcp.CallToolResult, listAuditsOutput, error) {
	if input.Source == "" {
		return nil, listAuditsOutput{}, errors.New("source is required")
	}
	list, err := s.orch.ListAudits(ctx, input.Source, input.Limit)
	if err != nil {
		return nil, listAuditsOutput{}, err
	}
	if list == nil {
		list = []*model.ReportSummary{}
	}
	return nil, listAuditsOutput{Audits: list}, nil
}
