package fetcher_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/raysh454/wcag131/internal/assessor"
	"github.com/raysh454/wcag131/internal/fetcher"
	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/testutil"
)

const okPage = `<html><body><h1>Title</h1><ul><li>one</li></ul></body></html>`

func newFetcher(t *testing.T, cfg fetcher.Config, tr *testutil.DummyTracker, wc *testutil.DummyWebClient, logger *testutil.DummyLogger) *fetcher.Fetcher {
	t.Helper()
	acfg := assessor.DefaultConfig()
	a, err := assessor.NewHeuristicsAssessor(&acfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	var f *fetcher.Fetcher
	if tr == nil {
		f, err = fetcher.New(cfg, nil, wc, a, logger)
	} else {
		f, err = fetcher.New(cfg, tr, wc, a, logger)
	}
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func urls(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://site.test/p%d", i+1)
	}
	return out
}

func TestFetcher_Batching(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTracker{}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 5, CommitSize: 2}, tr, &testutil.DummyWebClient{}, &testutil.DummyLogger{})

	f.AuditURLs(context.Background(), urls(5), nil)

	expected := []int{2, 2, 1}
	if len(tr.Batches) != len(expected) {
		t.Fatalf("expected %d batches, got %d", len(expected), len(tr.Batches))
	}
	for i, size := range expected {
		if got := len(tr.Batches[i]); got != size {
			t.Fatalf("batch %d expected %d reports, got %d", i, size, got)
		}
	}
}

func TestFetcher_DedupesBeforeFetching(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 3, CommitSize: 10}, &testutil.DummyTracker{}, wc, &testutil.DummyLogger{})

	out := f.AuditURLs(context.Background(), []string{
		"https://site.test/a",
		"HTTPS://Site.test/a/",
		"https://site.test/a#frag",
		"site.test/a?utm_source=mail",
	}, nil)

	if len(out) != 1 || out[0].URL != "https://site.test/a" {
		t.Fatalf("expected one canonical outcome, got %+v", out)
	}
	if got := wc.RequestedURLs(); len(got) != 1 {
		t.Fatalf("expected a single fetch, got %v", got)
	}
}

func TestFetcher_FailuresDoNotAbortBatch(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTracker{}
	logger := &testutil.DummyLogger{}
	wc := &testutil.DummyWebClient{
		FailURLs: map[string]bool{"https://site.test/bad": true},
		Pages:    map[string]string{"https://site.test/good": okPage},
	}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 2, CommitSize: 2}, tr, wc, logger)

	out := f.AuditURLs(context.Background(), []string{"https://site.test/good", "https://site.test/bad", "", "https://site.test/other"}, nil)

	if len(out) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(out))
	}
	if out[0].Err != nil || out[0].Report == nil {
		t.Fatalf("good url failed: %+v", out[0])
	}
	if out[0].Report.Source != "https://site.test/good" || out[0].Report.StatusCode != 200 {
		t.Errorf("unexpected report header %+v", out[0].Report)
	}
	if out[1].Err == nil || out[1].Error == "" || out[1].Report != nil {
		t.Errorf("bad url should carry an error: %+v", out[1])
	}
	if out[2].URL != "https://site.test/other" || out[2].Err != nil {
		t.Errorf("third outcome: %+v", out[2])
	}
	if out[3].URL != "" || out[3].Err == nil {
		t.Errorf("rejected entry should come last with an error: %+v", out[3])
	}
	if logger.ErrorCount() == 0 {
		t.Fatal("expected logged errors but got none")
	}
	if tr.Committed() != 2 {
		t.Errorf("expected 2 committed reports, got %d", tr.Committed())
	}
}

func TestFetcher_PerURLTimeout(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{ResponseDelay: 500 * time.Millisecond}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 2, CommitSize: 1, Timeout: 20 * time.Millisecond}, nil, wc, &testutil.DummyLogger{})

	out := f.AuditURLs(context.Background(), urls(2), nil)
	for _, o := range out {
		if !errors.Is(o.Err, fetcher.ErrTimeout) {
			t.Errorf("%s: expected ErrTimeout, got %v", o.URL, o.Err)
		}
	}
}

func TestFetcher_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &testutil.DummyTracker{}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 1, CommitSize: 3}, tr, &testutil.DummyWebClient{}, &testutil.DummyLogger{})

	out := f.AuditURLs(ctx, urls(4), nil)
	for _, o := range out {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", o.URL, o.Err)
		}
	}
	if tr.Committed() != 0 {
		t.Fatalf("expected nothing committed, got %d", tr.Committed())
	}
}

func TestFetcher_ProgressIsSerialAndComplete(t *testing.T) {
	t.Parallel()
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 8, CommitSize: 4}, nil, &testutil.DummyWebClient{}, &testutil.DummyLogger{})

	var seen []int
	var mu sync.Mutex
	f.AuditURLs(context.Background(), urls(10), func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 10 {
			t.Errorf("total = %d", total)
		}
		seen = append(seen, done)
	})

	if len(seen) != 10 || !sort.IntsAreSorted(seen) || seen[9] != 10 {
		t.Errorf("progress sequence %v", seen)
	}
}

func TestFetcher_AuditURL_Commits(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTracker{}
	wc := &testutil.DummyWebClient{Pages: map[string]string{"https://site.test/": okPage}}
	f := newFetcher(t, fetcher.Config{}, tr, wc, &testutil.DummyLogger{})

	rep, err := f.AuditURL(context.Background(), "site.test")
	if err != nil {
		t.Fatalf("AuditURL: %v", err)
	}
	if rep.Result(model.CategoryHeading).Status != model.StatusPassed {
		t.Errorf("heading status = %s", rep.Result(model.CategoryHeading).Status)
	}
	if _, err := tr.Get(context.Background(), rep.ID); err != nil {
		t.Errorf("report not committed: %v", err)
	}

	tr.CommitErr = testutil.ErrDummy
	if _, err := f.AuditURL(context.Background(), "site.test"); !errors.Is(err, testutil.ErrDummy) {
		t.Errorf("expected commit error, got %v", err)
	}
}

func TestFetcher_CommitErrorsAreLogged(t *testing.T) {
	t.Parallel()
	tr := &testutil.DummyTracker{CommitErr: testutil.ErrDummy}
	logger := &testutil.DummyLogger{}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 2, CommitSize: 2}, tr, &testutil.DummyWebClient{}, logger)

	out := f.AuditURLs(context.Background(), urls(3), nil)
	for _, o := range out {
		if o.Err != nil {
			t.Errorf("audit should still succeed: %v", o.Err)
		}
	}
	if logger.ErrorCount() != 2 {
		t.Errorf("expected 2 commit errors logged, got %d", logger.ErrorCount())
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	t.Parallel()
	acfg := assessor.DefaultConfig()
	a, _ := assessor.NewHeuristicsAssessor(&acfg, &testutil.DummyLogger{})
	if _, err := fetcher.New(fetcher.Config{}, nil, nil, a, nil); err == nil {
		t.Error("expected error for nil webclient")
	}
	if _, err := fetcher.New(fetcher.Config{}, nil, &testutil.DummyWebClient{}, nil, nil); err == nil {
		t.Error("expected error for nil assessor")
	}
}
