package tracker_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/testutil"
	"github.com/raysh454/wcag131/internal/tracker"
)

func newTracker(t *testing.T) *tracker.SQLiteTracker {
	t.Helper()
	tr, err := tracker.NewSQLiteTracker(&testutil.DummyLogger{}, &tracker.Config{Path: tracker.MemoryPath})
	if err != nil {
		t.Fatalf("NewSQLiteTracker: %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func sampleReport(id, source string, at time.Time, listIssues ...string) *model.Report {
	list := model.NotApplicable()
	if len(listIssues) > 0 {
		list = &model.CategoryResult{Status: model.StatusMalformed, Confidence: 70, Issues: []model.Issue{}}
		for i, msg := range listIssues {
			list.Issues = append(list.Issues, model.Issue{
				ElementIndex: i,
				Tag:          "ul",
				HTMLSnippet:  "<ul></ul>",
				LineNumber:   i + 3,
				Message:      msg,
				Code:         model.CodeList,
				Rule:         "list-malformed",
			})
		}
		list.IssueCount = len(list.Issues)
	}
	return &model.Report{
		ID:             id,
		Source:         source,
		StatusCode:     200,
		ScoringVersion: "test",
		CreatedAt:      at,
		Categories: []model.CategoryReport{
			{Category: model.CategoryHeading, Name: model.CategoryHeading.DisplayName(), Result: &model.CategoryResult{
				Status: model.StatusPassed, Issues: []model.Issue{}, Confidence: 95,
			}},
			{Category: model.CategoryList, Name: model.CategoryList.DisplayName(), Result: list},
		},
	}
}

func TestCommitAndGet_RoundTrip(t *testing.T) {
	t.Parallel()
	tr := newTracker(t)
	ctx := context.Background()
	want := sampleReport("a1", "http://example.test/", time.Unix(100, 5).UTC(), "first", "second")

	if err := tr.Commit(ctx, want); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	got, err := tr.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCommit_AssignsIDAndTime(t *testing.T) {
	t.Parallel()
	tr := newTracker(t)
	r := sampleReport("", "src", time.Time{})

	if err := tr.Commit(context.Background(), r); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if r.ID == "" || r.CreatedAt.IsZero() {
		t.Fatalf("expected id and time to be assigned, got %q %v", r.ID, r.CreatedAt)
	}
	if _, err := tr.Get(context.Background(), r.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()
	tr := newTracker(t)
	_, err := tr.Get(context.Background(), "missing")
	if !errors.Is(err, tracker.ErrAuditNotFound) {
		t.Fatalf("expected ErrAuditNotFound, got %v", err)
	}
}

func TestCommitBatch_IsAtomic(t *testing.T) {
	t.Parallel()
	tr := newTracker(t)
	ctx := context.Background()
	if err := tr.Commit(ctx, sampleReport("dup", "s", time.Unix(1, 0))); err != nil {
		t.Fatal(err)
	}

	err := tr.CommitBatch(ctx, []*model.Report{
		sampleReport("fresh", "s", time.Unix(2, 0)),
		sampleReport("dup", "s", time.Unix(3, 0)),
	})
	if err == nil {
		t.Fatal("expected duplicate id to fail the batch")
	}
	if _, err := tr.Get(ctx, "fresh"); !errors.Is(err, tracker.ErrAuditNotFound) {
		t.Fatalf("batch should have rolled back, Get(fresh) = %v", err)
	}
}

func TestListBySourceAndLatest(t *testing.T) {
	t.Parallel()
	tr := newTracker(t)
	ctx := context.Background()
	err := tr.CommitBatch(ctx, []*model.Report{
		sampleReport("old", "http://a.test/", time.Unix(10, 0), "x"),
		sampleReport("new", "http://a.test/", time.Unix(20, 0)),
		sampleReport("other", "http://b.test/", time.Unix(30, 0), "y", "z"),
	})
	if err != nil {
		t.Fatalf("CommitBatch: %v", err)
	}

	list, err := tr.ListBySource(ctx, "http://a.test/", 0)
	if err != nil {
		t.Fatalf("ListBySource: %v", err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "old" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if list[1].Failing != 1 || list[1].IssueCount != 1 {
		t.Errorf("old summary: failing=%d issues=%d", list[1].Failing, list[1].IssueCount)
	}
	if list[0].Failing != 0 || list[0].IssueCount != 0 {
		t.Errorf("new summary: failing=%d issues=%d", list[0].Failing, list[0].IssueCount)
	}

	all, err := tr.ListBySource(ctx, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != "other" {
		t.Fatalf("expected limit 2 newest first, got %+v", all)
	}

	latest, err := tr.Latest(ctx, "http://a.test/")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != "new" {
		t.Errorf("expected latest=new, got %s", latest.ID)
	}
	if _, err := tr.Latest(ctx, "http://none.test/"); !errors.Is(err, tracker.ErrAuditNotFound) {
		t.Errorf("expected ErrAuditNotFound, got %v", err)
	}
}

func TestDiff_ReportsFixedAndNewIssues(t *testing.T) {
	t.Parallel()
	tr := newTracker(t)
	ctx := context.Background()
	base := sampleReport("base", "s", time.Unix(1, 0), "List is malformed.", "Unchanged issue.")
	head := sampleReport("head", "s", time.Unix(2, 0), "Unchanged issue.", "Brand new issue.")
	head.Result(model.CategoryList).Confidence = 80
	if err := tr.CommitBatch(ctx, []*model.Report{base, head}); err != nil {
		t.Fatal(err)
	}

	d, err := tr.Diff(ctx, "base", "head")
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !d.Changed() {
		t.Fatal("expected a change")
	}
	if len(d.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(d.Categories))
	}
	if h := d.Categories[0]; h.ConfidenceDelta != 0 || len(h.Chunks) != 0 {
		t.Errorf("heading should be unchanged: %+v", h)
	}

	l := d.Categories[1]
	if l.ConfidenceDelta != 10 {
		t.Errorf("expected +10 confidence, got %v", l.ConfidenceDelta)
	}
	var added, removed string
	for _, c := range l.Chunks {
		switch c.Type {
		case "added":
			added += c.Content
		case "removed":
			removed += c.Content
		}
	}
	if !strings.Contains(removed, "List is malformed.") || strings.Contains(removed, "Unchanged") {
		t.Errorf("removed = %q", removed)
	}
	if !strings.Contains(added, "Brand new issue.") || strings.Contains(added, "Unchanged") {
		t.Errorf("added = %q", added)
	}
}

func TestDiff_EmptyBase(t *testing.T) {
	t.Parallel()
	tr := newTracker(t)
	ctx := context.Background()
	if err := tr.Commit(ctx, sampleReport("only", "s", time.Unix(1, 0), "An issue.")); err != nil {
		t.Fatal(err)
	}

	d, err := tr.Diff(ctx, "", "only")
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if d.BaseID != "" || d.HeadID != "only" {
		t.Errorf("unexpected ids %q %q", d.BaseID, d.HeadID)
	}
	if got := d.Categories[1].HeadStatus; got != model.StatusMalformed {
		t.Errorf("head status = %s", got)
	}
	if len(d.Categories[1].Chunks) != 1 || d.Categories[1].Chunks[0].Type != "added" {
		t.Errorf("expected one added chunk, got %+v", d.Categories[1].Chunks)
	}

	if _, err := tr.Diff(ctx, "missing", "only"); !errors.Is(err, tracker.ErrAuditNotFound) {
		t.Errorf("expected ErrAuditNotFound for missing base, got %v", err)
	}
}

func TestNewSQLiteTracker_FileDatabasePersists(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "audits.db")
	ctx := context.Background()

	tr, err := tracker.NewSQLiteTracker(&testutil.DummyLogger{}, &tracker.Config{Path: path})
	if err != nil {
		t.Fatalf("NewSQLiteTracker: %v", err)
	}
	if err := tr.Commit(ctx, sampleReport("persisted", "s", time.Unix(1, 0))); err != nil {
		t.Fatal(err)
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := tracker.NewSQLiteTracker(&testutil.DummyLogger{}, &tracker.Config{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(ctx, "persisted"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}

func TestNewSQLiteTracker_NilLogger(t *testing.T) {
	t.Parallel()
	if _, err := tracker.NewSQLiteTracker(nil, nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}
