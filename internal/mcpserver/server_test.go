package mcpserver_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raysh454/wcag131/internal/app"
	"github.com/raysh454/wcag131/internal/assessor"
	"github.com/raysh454/wcag131/internal/mcpserver"
	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/testutil"
)

const page = `<!DOCTYPE html><html lang="en"><head><title>t</title></head><body>
<main><h2>Not first</h2><h1>Title</h1></main>
</body></html>`

func newOrchestrator(t *testing.T, wc *testutil.DummyWebClient) *app.Orchestrator {
	t.Helper()
	logger := &testutil.DummyLogger{}
	cfg := app.DefaultConfig()
	cfg.Fetcher.Timeout = 5 * time.Second
	a, err := assessor.NewHeuristicsAssessor(&cfg.Assessor, logger)
	if err != nil {
		t.Fatalf("new assessor: %v", err)
	}
	comps, err := app.AssembleComponents(cfg, a, &testutil.DummyTracker{}, wc, logger)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	orch, err := app.NewOrchestratorWith(cfg, comps, logger)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	t.Cleanup(func() { orch.Close() })
	return orch
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func newSession(t *testing.T, wc *testutil.DummyWebClient) *sdkmcp.ClientSession {
	t.Helper()
	srv, err := mcpserver.NewServer(newOrchestrator(t, wc), "test", &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return connectInMemory(t, context.Background(), srv)
}

// callTool decodes the text content of a successful call into out.
func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), out); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return
		}
	}
	t.Fatalf("no text content in tool result")
}

type auditResult struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	StatusCode int    `json:"status_code"`
	Failing    int    `json:"failing"`
	Categories []struct {
		Category string        `json:"category"`
		Status   string        `json:"status"`
		Issues   []model.Issue `json:"issues"`
	} `json:"categories"`
}

func TestNewServer_RequiresOrchestrator(t *testing.T) {
	t.Parallel()
	if _, err := mcpserver.NewServer(nil, "", nil); err == nil {
		t.Fatal("expected error for nil orchestrator")
	}
}

func TestServer_ToolDiscovery(t *testing.T) {
	t.Parallel()
	session := newSession(t, &testutil.DummyWebClient{})

	tools, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	want := map[string]bool{"audit_html": false, "audit_url": false, "get_audit": false, "list_audits": false}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestAuditHTML_ReportsHeadingIssue(t *testing.T) {
	t.Parallel()
	session := newSession(t, &testutil.DummyWebClient{})

	var got auditResult
	callTool(t, session, "audit_html", map[string]any{"html": page, "source": "page.html"}, &got)

	if got.ID == "" || got.Source != "page.html" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(got.Categories) != len(model.Categories) {
		t.Fatalf("categories = %d, want %d", len(got.Categories), len(model.Categories))
	}
	heading := got.Categories[0]
	if heading.Category != string(model.CategoryHeading) || heading.Status != string(model.StatusMalformed) {
		t.Fatalf("heading = %+v", heading)
	}
	if len(heading.Issues) == 0 || heading.Issues[0].Code != model.CodeHeading {
		t.Errorf("heading issues = %+v", heading.Issues)
	}
}

func TestAuditURL_ThenGetAndList(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Pages: map[string]string{"https://site.test/a": page}}
	session := newSession(t, wc)

	var audited auditResult
	callTool(t, session, "audit_url", map[string]any{"url": "https://site.test/a"}, &audited)
	if audited.StatusCode != 200 {
		t.Errorf("status code = %d", audited.StatusCode)
	}

	var fetched auditResult
	callTool(t, session, "get_audit", map[string]any{"id": audited.ID}, &fetched)
	if fetched.ID != audited.ID || fetched.Failing != audited.Failing {
		t.Errorf("get_audit = %+v, want %+v", fetched, audited)
	}

	var list struct {
		Audits []model.ReportSummary `json:"audits"`
	}
	callTool(t, session, "list_audits", map[string]any{"source": audited.Source}, &list)
	if len(list.Audits) != 1 || list.Audits[0].ID != audited.ID {
		t.Errorf("list_audits = %+v", list.Audits)
	}
}

func TestTools_ReportErrors(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{FailURLs: map[string]bool{"https://site.test/down": true}}
	session := newSession(t, wc)

	calls := []struct {
		name string
		args map[string]any
	}{
		{"audit_html", map[string]any{"html": ""}},
		{"audit_url", map[string]any{"url": "https://site.test/down"}},
		{"get_audit", map[string]any{"id": "missing"}},
		{"list_audits", map[string]any{"source": ""}},
	}
	for _, c := range calls {
		res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: c.name, Arguments: c.args})
		if err != nil {
			continue
		}
		if !res.IsError {
			t.Errorf("%s: expected a tool error", c.name)
		}
	}
}
