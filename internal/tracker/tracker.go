package tracker

import (
	"context"
	"errors"

	"github.com/raysh454/wcag131/internal/model"
)

// ErrAuditNotFound is returned when no stored report matches.
var ErrAuditNotFound = errors.New("tracker: audit not found")

// Tracker is the contract for storing audit reports and comparing them over
// time. Implementations should be safe for concurrent use.
type Tracker interface {
	// Commit stores one report. A report without an ID is given one.
	Commit(ctx context.Context, report *model.Report) error

	// CommitBatch stores several reports in one transaction.
	CommitBatch(ctx context.Context, reports []*model.Report) error

	// Get loads a stored report with all category results and issues.
	Get(ctx context.Context, id string) (*model.Report, error)

	// ListBySource returns newest-first summaries for source, or for every
	// source when it is empty. limit <= 0 means no limit.
	ListBySource(ctx context.Context, source string, limit int) ([]*model.ReportSummary, error)

	// Latest returns the newest report for source.
	Latest(ctx context.Context, source string) (*model.Report, error)

	// Diff compares two stored reports category by category.
	// If baseID == "" the head is compared against an empty report.
	Diff(ctx context.Context, baseID, headID string) (*model.AuditDiff, error)

	// Close releases resources used by the tracker.
	Close() error
}
