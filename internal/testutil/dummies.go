// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/tracker"
	"github.com/raysh454/wcag131/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ErrorCount returns len(Errors) under the lock.
func (l *DummyLogger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Errors)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// Pages[url] is served as text/html with status 200; other URLs get
// body "ok:<url>". Set FailURLs[url] = true to force an error for a
// specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Pages         map[string]string
	FailURLs      map[string]bool
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs[req.URL] {
		return nil, fmt.Errorf("dummy fetch fail for %s", req.URL)
	}

	body, ok := d.Pages[req.URL]
	if !ok {
		body = "ok:" + req.URL
	}
	h := http.Header{}
	h.Set("Content-Type", "text/html; charset=utf-8")
	return &webclient.Response{
		Request:    req,
		Headers:    h,
		Body:       []byte(body),
		StatusCode: 200,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestedURLs returns the URLs fetched so far, sorted.
func (d *DummyWebClient) RequestedURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.Requests))
	for _, r := range d.Requests {
		out = append(out, r.URL)
	}
	sort.Strings(out)
	return out
}

// ─── Tracker ───────────────────────────────────────────────────────────

// DummyTracker implements tracker.Tracker in memory. CommitErr, when set,
// is returned by every commit.
type DummyTracker struct {
	mu        sync.Mutex
	CommitErr error
	Batches   [][]*model.Report
	reports   map[string]*model.Report
	order     []string
}

var _ tracker.Tracker = (*DummyTracker)(nil)

func (t *DummyTracker) Commit(ctx context.Context, r *model.Report) error {
	return t.CommitBatch(ctx, []*model.Report{r})
}

func (t *DummyTracker) CommitBatch(_ context.Context, reports []*model.Report) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.CommitErr != nil {
		return t.CommitErr
	}
	if t.reports == nil {
		t.reports = map[string]*model.Report{}
	}
	cp := append([]*model.Report(nil), reports...)
	t.Batches = append(t.Batches, cp)
	for _, r := range cp {
		t.reports[r.ID] = r
		t.order = append(t.order, r.ID)
	}
	return nil
}

func (t *DummyTracker) Get(_ context.Context, id string) (*model.Report, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.reports[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", tracker.ErrAuditNotFound, id)
}

// ListBySource returns summaries newest-commit first.
func (t *DummyTracker) ListBySource(_ context.Context, source string, limit int) ([]*model.ReportSummary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*model.ReportSummary, 0)
	for i := len(t.order) - 1; i >= 0; i-- {
		r := t.reports[t.order[i]]
		if source != "" && r.Source != source {
			continue
		}
		n := 0
		for _, cr := range r.Categories {
			if cr.Result != nil {
				n += cr.Result.IssueCount
			}
		}
		out = append(out, &model.ReportSummary{ID: r.ID, Source: r.Source, CreatedAt: r.CreatedAt, Failing: r.Failing(), IssueCount: n})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (t *DummyTracker) Latest(ctx context.Context, source string) (*model.Report, error) {
	list, _ := t.ListBySource(ctx, source, 1)
	if len(list) == 0 {
		return nil, tracker.ErrAuditNotFound
	}
	return t.Get(ctx, list[0].ID)
}

func (t *DummyTracker) Diff(ctx context.Context, baseID, headID string) (*model.AuditDiff, error) {
	if _, err := t.Get(ctx, headID); err != nil {
		return nil, err
	}
	if baseID != "" {
		if _, err := t.Get(ctx, baseID); err != nil {
			return nil, err
		}
	}
	return &model.AuditDiff{BaseID: baseID, HeadID: headID, Categories: []model.CategoryDiff{}}, nil
}

func (t *DummyTracker) Close() error { return nil }

// Committed returns the number of stored reports.
func (t *DummyTracker) Committed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.reports)
}

// ErrDummy is a generic failure for tests that only need some error.
var ErrDummy = errors.New("dummy failure")
