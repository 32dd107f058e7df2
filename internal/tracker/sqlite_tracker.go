package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

// SQLiteTracker implements Tracker on a single SQLite database.
type SQLiteTracker struct {
	db     *sql.DB
	logger logging.Logger
	config Config
}

var _ Tracker = (*SQLiteTracker)(nil)

// NewSQLiteTracker opens (or creates) the database at config.Path.
// If config is nil, DefaultConfig is used.
func NewSQLiteTracker(logger logging.Logger, config *Config) (*SQLiteTracker, error) {
	if logger == nil {
		return nil, errors.New("tracker: nil logger provided")
	}
	if config == nil {
		def := DefaultConfig()
		config = &def
	}
	path := config.Path
	if path == "" {
		path = MemoryPath
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == MemoryPath {
		// every new connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	l := logger.With(logging.Field{Key: "component", Value: "tracker"})
	l.Info("SQLiteTracker initialized", logging.Field{Key: "path", Value: path})

	return &SQLiteTracker{db: db, logger: l, config: Config{Path: path}}, nil
}

// Commit stores one report.
func (t *SQLiteTracker) Commit(ctx context.Context, report *model.Report) error {
	return t.CommitBatch(ctx, []*model.Report{report})
}

// CommitBatch stores reports atomically: either all are written or none.
func (t *SQLiteTracker) CommitBatch(ctx context.Context, reports []*model.Report) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, r := range reports {
		if r == nil {
			return errors.New("tracker: nil report")
		}
		if err := insertReport(ctx, tx, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	t.logger.Debug("committed audits", logging.Field{Key: "count", Value: len(reports)})
	return nil
}

func insertReport(ctx context.Context, tx *sql.Tx, r *model.Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO audits (id, source, status_code, scoring_version, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.StatusCode, r.ScoringVersion, r.CreatedAt.UnixNano()); err != nil {
		return fmt.Errorf("insert audit %s: %w", r.ID, err)
	}

	for pos, cr := range r.Categories {
		res := cr.Result
		if res == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO category_results (audit_id, position, category, name, status, confidence, issue_count) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, pos, string(cr.Category), cr.Name, string(res.Status), res.Confidence, res.IssueCount); err != nil {
			return fmt.Errorf("insert category %s for %s: %w", cr.Category, r.ID, err)
		}
		for i, is := range res.Issues {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO issues (audit_id, category, position, element_index, tag, html_snippet, line_number, message, code, rule, confidence)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, string(cr.Category), i, is.ElementIndex, is.Tag, is.HTMLSnippet, is.LineNumber,
				is.Message, is.Code, is.Rule, is.Confidence); err != nil {
				return fmt.Errorf("insert issue %d for %s/%s: %w", i, r.ID, cr.Category, err)
			}
		}
	}
	return nil
}

// Get loads the report with the given id.
func (t *SQLiteTracker) Get(ctx context.Context, id string) (*model.Report, error) {
	r := &model.Report{ID: id}
	var created int64
	err := t.db.QueryRowContext(ctx,
		`SELECT source, status_code, scoring_version, created_at FROM audits WHERE id = ?`, id).
		Scan(&r.Source, &r.StatusCode, &r.ScoringVersion, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAuditNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query audit %s: %w", id, err)
	}
	r.CreatedAt = time.Unix(0, created).UTC()

	if err := t.loadCategories(ctx, r); err != nil {
		return nil, err
	}
	if err := t.loadIssues(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (t *SQLiteTracker) loadCategories(ctx context.Context, r *model.Report) error {
	rows, err := t.db.QueryContext(ctx,
		`SELECT category, name, status, confidence, issue_count FROM category_results WHERE audit_id = ? ORDER BY position`, r.ID)
	if err != nil {
		return fmt.Errorf("query categories for %s: %w", r.ID, err)
	}
	defer rows.Close()

	r.Categories = []model.CategoryReport{}
	for rows.Next() {
		var (
			cr  model.CategoryReport
			res = &model.CategoryResult{Issues: []model.Issue{}}
			cat string
			st  string
		)
		if err := rows.Scan(&cat, &cr.Name, &st, &res.Confidence, &res.IssueCount); err != nil {
			return fmt.Errorf("scan category: %w", err)
		}
		cr.Category, res.Status, cr.Result = model.Category(cat), model.Status(st), res
		r.Categories = append(r.Categories, cr)
	}
	return rows.Err()
}

func (t *SQLiteTracker) loadIssues(ctx context.Context, r *model.Report) error {
	rows, err := t.db.QueryContext(ctx,
		`SELECT category, element_index, tag, html_snippet, line_number, message, code, rule, confidence
		 FROM issues WHERE audit_id = ? ORDER BY category, position`, r.ID)
	if err != nil {
		return fmt.Errorf("query issues for %s: %w", r.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			is  model.Issue
			cat string
		)
		if err := rows.Scan(&cat, &is.ElementIndex, &is.Tag, &is.HTMLSnippet, &is.LineNumber,
			&is.Message, &is.Code, &is.Rule, &is.Confidence); err != nil {
			return fmt.Errorf("scan issue: %w", err)
		}
		if res := r.Result(model.Category(cat)); res != nil {
			res.Issues = append(res.Issues, is)
		}
	}
	return rows.Err()
}

// ListBySource returns newest-first summaries.
func (t *SQLiteTracker) ListBySource(ctx context.Context, source string, limit int) ([]*model.ReportSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := t.db.QueryContext(ctx, `
		SELECT a.id, a.source, a.created_at,
		       COALESCE(SUM(CASE WHEN c.status IN (?, ?) THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(c.issue_count), 0)
		FROM audits a
		LEFT JOIN category_results c ON c.audit_id = a.id
		WHERE ? = '' OR a.source = ?
		GROUP BY a.id
		ORDER BY a.created_at DESC, a.id
		LIMIT ?`,
		string(model.StatusMalformed), string(model.StatusError), source, source, limit)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	out := make([]*model.ReportSummary, 0)
	for rows.Next() {
		s := &model.ReportSummary{}
		var created int64
		if err := rows.Scan(&s.ID, &s.Source, &created, &s.Failing, &s.IssueCount); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		s.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// Latest returns the newest report for source.
func (t *SQLiteTracker) Latest(ctx context.Context, source string) (*model.Report, error) {
	list, err := t.ListBySource(ctx, source, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no audits for %q", ErrAuditNotFound, source)
	}
	return t.Get(ctx, list[0].ID)
}

// Diff loads both reports and compares them.
func (t *SQLiteTracker) Diff(ctx context.Context, baseID, headID string) (*model.AuditDiff, error) {
	head, err := t.Get(ctx, headID)
	if err != nil {
		return nil, err
	}
	var base *model.Report
	if baseID != "" {
		if base, err = t.Get(ctx, baseID); err != nil {
			return nil, err
		}
	}
	return diffReports(base, head), nil
}

// Close closes the underlying database.
func (t *SQLiteTracker) Close() error {
	t.logger.Debug("closing tracker")
	return t.db.Close()
}
