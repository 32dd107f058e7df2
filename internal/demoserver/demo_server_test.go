package demoserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/raysh454/wcag131/internal/assessor"
	"github.com/raysh454/wcag131/internal/demoserver"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

func newDemo(t *testing.T) (*demoserver.DemoServer, *httptest.Server) {
	t.Helper()
	ds := demoserver.NewDemoServer(demoserver.DefaultConfig())
	srv := httptest.NewServer(ds.Handler())
	t.Cleanup(srv.Close)
	return ds, srv
}

func get(t *testing.T, u string) (int, http.Header, string) {
	t.Helper()
	resp, err := http.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, resp.Header, string(body)
}

func TestPagesServeInitialVersion(t *testing.T) {
	t.Parallel()
	_, srv := newDemo(t)

	for _, p := range demoserver.GetAllPages() {
		code, h, body := get(t, srv.URL+p.Path)
		if code != http.StatusOK {
			t.Errorf("%s: status %d", p.Path, code)
		}
		if h.Get("X-Demo-Version") != "accessible" {
			t.Errorf("%s: version header %q", p.Path, h.Get("X-Demo-Version"))
		}
		if body != p.Versions[demoserver.VersionAccessible].HTML {
			t.Errorf("%s: served body is not the accessible version", p.Path)
		}
	}

	if code, _, _ := get(t, srv.URL+"/missing"); code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", code)
	}
}

func TestSetVersionHandler(t *testing.T) {
	t.Parallel()
	ds, srv := newDemo(t)

	resp, err := http.PostForm(srv.URL+"/demo/set-version", url.Values{"path": {"/products"}, "version": {"broken"}})
	if err != nil {
		t.Fatalf("set-version: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set-version status = %d", resp.StatusCode)
	}
	if ds.Version("/products") != demoserver.VersionBroken {
		t.Errorf("version = %d, want broken", ds.Version("/products"))
	}
	_, _, body := get(t, srv.URL+"/products")
	if strings.Contains(body, "<th") {
		t.Error("broken products page still has header cells")
	}
	if ds.Version("/") != demoserver.VersionAccessible {
		t.Error("other pages must keep their version")
	}
}

func TestSetVersionHandler_Rejects(t *testing.T) {
	t.Parallel()
	_, srv := newDemo(t)

	tests := []struct {
		name string
		form url.Values
		want int
	}{
		{"bad version", url.Values{"path": {"/"}, "version": {"newest"}}, http.StatusBadRequest},
		{"missing version", url.Values{"path": {"/"}, "version": {"7"}}, http.StatusNotFound},
		{"unknown page", url.Values{"path": {"/nope"}, "version": {"1"}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.PostForm(srv.URL+"/demo/set-version", tt.form)
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	if code, _, _ := get(t, srv.URL+"/demo/set-version"); code != http.StatusMethodNotAllowed {
		t.Errorf("GET set-version = %d, want 405", code)
	}
}

func TestBreakAllAndReset(t *testing.T) {
	t.Parallel()
	ds, srv := newDemo(t)

	for _, path := range []string{"/demo/break-all", "/demo/reset"} {
		resp, err := http.Post(srv.URL+path, "text/plain", nil)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()

		want := demoserver.VersionBroken
		if path == "/demo/reset" {
			want = demoserver.VersionAccessible
		}
		for _, p := range demoserver.GetAllPages() {
			if got := ds.Version(p.Path); got != want {
				t.Errorf("after %s: %s at version %d, want %d", path, p.Path, got, want)
			}
		}
	}
}

func TestGetVersionsSortedByPath(t *testing.T) {
	t.Parallel()
	_, srv := newDemo(t)

	_, _, body := get(t, srv.URL+"/demo/get-versions")
	var pages []demoserver.PageInfo
	if err := json.Unmarshal([]byte(body), &pages); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pages) != len(demoserver.GetAllPages()) {
		t.Fatalf("got %d pages", len(pages))
	}
	for i := 1; i < len(pages); i++ {
		if pages[i-1].Path >= pages[i].Path {
			t.Errorf("pages not sorted: %q before %q", pages[i-1].Path, pages[i].Path)
		}
	}
	if got := pages[0].AvailableVersions; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("available versions = %v", got)
	}
}

func TestControlPanelListsPages(t *testing.T) {
	t.Parallel()
	_, srv := newDemo(t)

	code, _, body := get(t, srv.URL+"/demo/control")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	for _, want := range []string{"/products", "/contact", "accessible", "broken"} {
		if !strings.Contains(body, want) {
			t.Errorf("control panel missing %q", want)
		}
	}
}

func TestVersionsAuditDifferently(t *testing.T) {
	t.Parallel()
	cfg := assessor.DefaultConfig()
	a, err := assessor.NewHeuristicsAssessor(&cfg, logging.Nop{})
	if err != nil {
		t.Fatalf("new assessor: %v", err)
	}

	var home demoserver.PageDefinition
	for _, p := range demoserver.GetAllPages() {
		if p.Path == "/" {
			home = p
		}
	}
	good, err := a.AuditHTML(context.Background(), []byte(home.Versions[demoserver.VersionAccessible].HTML), "/")
	if err != nil {
		t.Fatalf("audit accessible: %v", err)
	}
	bad, err := a.AuditHTML(context.Background(), []byte(home.Versions[demoserver.VersionBroken].HTML), "/")
	if err != nil {
		t.Fatalf("audit broken: %v", err)
	}

	if got := good.Result(model.CategoryHeading).Status; got != model.StatusPassed {
		t.Errorf("accessible headings = %s, want Passed", got)
	}
	if got := bad.Result(model.CategoryHeading).Status; got != model.StatusMalformed {
		t.Errorf("broken headings = %s, want Malformed", got)
	}
}
