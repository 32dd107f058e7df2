package assessor

import (
	"context"

	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/webclient"
)

// Assessor is the contract for auditing HTML content. Implementations receive
// HTML bytes (or an already-fetched webclient.Response) and return a Report.
// The Assessor does NOT perform network I/O.
type Assessor interface {
	// AuditHTML runs every configured category against html.
	AuditHTML(ctx context.Context, html []byte, source string) (*model.Report, error)

	// AuditResponse audits resp.Body and records the request URL and status.
	AuditResponse(ctx context.Context, resp *webclient.Response) (*model.Report, error)

	// Close releases any resources held by the assessor.
	Close() error
}
