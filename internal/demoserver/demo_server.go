package demoserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// DemoServer serves a small shop site whose pages can be flipped between an
// accessible and a broken version, so consecutive audits differ.
type DemoServer struct {
	cfg      Config
	pages    map[string]PageDefinition
	versions map[string]int // path -> current version
	mu       sync.RWMutex
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config) *DemoServer {
	if cfg.InitialVersion != VersionBroken {
		cfg.InitialVersion = VersionAccessible
	}
	pageMap := make(map[string]PageDefinition)
	versions := make(map[string]int)
	for _, p := range GetAllPages() {
		pageMap[p.Path] = p
		versions[p.Path] = cfg.InitialVersion
	}

	return &DemoServer{
		cfg:      cfg,
		pages:    pageMap,
		versions: versions,
	}
}

// Handler returns the demo site and its control endpoints.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()

	for path := range s.pages {
		pattern := path
		if path == "/" {
			pattern = "/{$}"
		}
		mux.HandleFunc(pattern, s.pageHandler(path))
	}

	// Control panel for version switching
	mux.HandleFunc("/demo/control", s.controlPanelHandler)
	mux.HandleFunc("/demo/set-version", s.setVersionHandler)
	mux.HandleFunc("/demo/get-versions", s.getVersionsHandler)
	mux.HandleFunc("/demo/break-all", s.setAllHandler(VersionBroken))
	mux.HandleFunc("/demo/reset", s.setAllHandler(VersionAccessible))
	return mux
}

// Start listens on cfg.Port until the server fails.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo server starting on http://localhost%s\n", addr)
	fmt.Printf("Control panel at http://localhost%s/demo/control\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// SetVersion switches one page. It reports false for unknown paths or versions.
func (s *DemoServer) SetVersion(path string, version int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[path]
	if !ok {
		return false
	}
	if _, ok := p.Versions[version]; !ok {
		return false
	}
	s.versions[path] = version
	return true
}

// Version returns the version currently served at path, 0 if unknown.
func (s *DemoServer) Version(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[path]
}

// VersionName is the label shown for a version.
func VersionName(v int) string {
	switch v {
	case VersionAccessible:
		return "accessible"
	case VersionBroken:
		return "broken"
	}
	return "v" + strconv.Itoa(v)
}

// parseVersion accepts a number or a version name.
func parseVersion(s string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accessible":
		return VersionAccessible, true
	case "broken":
		return VersionBroken, true
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

func (s *DemoServer) pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		pageDef, ok := s.pages[path]
		version := s.versions[path]
		s.mu.RUnlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		pageVersion := pageDef.Versions[version]

		for k, v := range pageVersion.Headers {
			w.Header().Set(k, v)
		}
		contentType := pageVersion.ContentType
		if contentType == "" {
			contentType = "text/html; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Demo-Version", VersionName(version))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(pageVersion.HTML))
	}
}

var controlPanel = template.Must(template.New("control").
	Funcs(template.FuncMap{"versionName": VersionName}).
	Parse(controlPanelHTML))

// controlPanelHandler serves the control panel for version management.
func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := struct {
		Pages    map[string]PageDefinition
		Versions map[string]int
		Port     int
	}{
		Pages:    s.pages,
		Versions: s.versions,
		Port:     s.cfg.Port,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = controlPanel.Execute(w, data)
}

// setVersionHandler sets the version for a specific page.
func (s *DemoServer) setVersionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.FormValue("path")
	version, ok := parseVersion(r.FormValue("version"))
	if !ok {
		http.Error(w, "Invalid version", http.StatusBadRequest)
		return
	}
	if !s.SetVersion(path, version) {
		http.Error(w, "Unknown page or version", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"path":    path,
		"version": version,
		"name":    VersionName(version),
	})
}

// PageInfo describes one page for the get-versions endpoint.
type PageInfo struct {
	Path              string `json:"path"`
	Description       string `json:"description"`
	CurrentVersion    int    `json:"current_version"`
	AvailableVersions []int  `json:"available_versions"`
}

// getVersionsHandler returns the current versions of all pages, sorted by path.
func (s *DemoServer) getVersionsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	pages := make([]PageInfo, 0, len(s.pages))
	for path, pageDef := range s.pages {
		var versions []int
		for v := range pageDef.Versions {
			versions = append(versions, v)
		}
		sort.Ints(versions)
		pages = append(pages, PageInfo{
			Path:              path,
			Description:       pageDef.Description,
			CurrentVersion:    s.versions[path],
			AvailableVersions: versions,
		})
	}
	s.mu.RUnlock()

	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	writeJSON(w, pages)
}

// setAllHandler switches every page to version.
func (s *DemoServer) setAllHandler(version int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.mu.Lock()
		for path := range s.versions {
			s.versions[path] = version
		}
		s.mu.Unlock()

		writeJSON(w, map[string]interface{}{
			"success": true,
			"message": "All pages set to " + VersionName(version),
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

const controlPanelHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Demo Server Control Panel</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; max-width: 1200px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        h1 { color: #333; border-bottom: 2px solid #007bff; padding-bottom: 10px; }
        .page-card { background: white; border-radius: 8px; padding: 20px; margin: 15px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .page-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 10px; }
        .page-path { font-size: 1.2em; font-weight: bold; color: #007bff; text-decoration: none; }
        .page-path:hover { text-decoration: underline; }
        .page-desc { color: #666; margin: 5px 0; }
        .version-controls { display: flex; gap: 10px; align-items: center; margin-top: 10px; }
        .version-btn { padding: 8px 16px; border: none; border-radius: 4px; cursor: pointer; font-size: 14px; }
        .version-btn:hover { opacity: 0.9; }
        .version-btn.active { background: #007bff; color: white; }
        .version-btn.inactive { background: #e9ecef; color: #333; }
        .current-version { font-weight: bold; color: #28a745; }
        .global-controls { background: #fff3cd; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
        .global-controls h2 { margin-top: 0; color: #856404; }
        .global-btn { padding: 10px 20px; margin-right: 10px; border: none; border-radius: 4px; cursor: pointer; font-size: 14px; }
        .bump-btn { background: #28a745; color: white; }
        .reset-btn { background: #dc3545; color: white; }
        .status { margin-top: 10px; padding: 10px; border-radius: 4px; display: none; }
        .status.success { background: #d4edda; color: #155724; display: block; }
        .status.error { background: #f8d7da; color: #721c24; display: block; }
        .info-box { background: #e7f3ff; padding: 15px; border-radius: 8px; margin-bottom: 20px; border-left: 4px solid #007bff; }
    </style>
</head>
<body>
    <h1>Demo Server Control Panel</h1>
    
    <div class="info-box">
        <strong>How to use:</strong> Change page versions to simulate website updates. 
        Audit a page, switch it to the other version, audit again and compare the two runs with <code>wcag131 diff</code>.
    </div>
    
    <div class="global-controls">
        <h2>Global Controls</h2>
        <button class="global-btn bump-btn" onclick="post('/demo/break-all')">Break All Pages</button>
        <button class="global-btn reset-btn" onclick="post('/demo/reset')">Reset All to Accessible</button>
        <div id="global-status" class="status"></div>
    </div>
    
    <h2>Pages</h2>
    {{range $path, $page := .Pages}}
    <div class="page-card">
        <div class="page-header">
            <a href="{{$path}}" target="_blank" class="page-path">{{$path}}</a>
            <span class="current-version">Current: {{versionName (index $.Versions $path)}}</span>
        </div>
        <div class="page-desc">{{$page.Description}}</div>
        <div class="version-controls">
            <span>Set version:</span>
            {{range $v, $_ := $page.Versions}}
            <button class="version-btn {{if eq (index $.Versions $path) $v}}active{{else}}inactive{{end}}" 
                    onclick="setVersion('{{$path}}', {{$v}}, this)">
                {{versionName $v}}
            </button>
            {{end}}
        </div>
    </div>
    {{end}}
    
    <script>
        function setVersion(path, version, btn) {
            fetch('/demo/set-version', {
                method: 'POST',
                headers: {'Content-Type': 'application/x-www-form-urlencoded'},
                body: 'path=' + encodeURIComponent(path) + '&version=' + version
            })
            .then(r => r.json())
            .then(data => {
                if (data.success) {
                    // Update button states
                    const card = btn.closest('.page-card');
                    card.querySelectorAll('.version-btn').forEach(b => {
                        b.classList.remove('active');
                        b.classList.add('inactive');
                    });
                    btn.classList.remove('inactive');
                    btn.classList.add('active');
                    card.querySelector('.current-version').textContent = 'Current: ' + data.name;
                }
            });
        }
        
        function post(url) {
            fetch(url, {method: 'POST'})
            .then(r => r.json())
            .then(data => {
                showGlobalStatus(data.success, data.message);
                if (data.success) location.reload();
            });
        }
        
        function showGlobalStatus(success, message) {
            const el = document.getElementById('global-status');
            el.textContent = message;
            el.className = 'status ' + (success ? 'success' : 'error');
        }
    </script>
</body>
</html>`
