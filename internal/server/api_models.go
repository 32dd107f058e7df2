package server

// AuditRequest audits either an inline document or a live page. Exactly one
// of HTML and URL must be set.
type AuditRequest struct {
	HTML   string `json:"html,omitempty" example:"<html><body><h1>Hi</h1></body></html>"`
	Source string `json:"source,omitempty" example:"index.html"`
	URL    string `json:"url,omitempty" example:"http://localhost:9999/"`
}

// BatchJobRequest starts a background audit of several pages.
type BatchJobRequest struct {
	URLs       []string `json:"urls" example:"[\"http://localhost:9999/\"]"`
	CrawlDepth int      `json:"crawl_depth" example:"1"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
