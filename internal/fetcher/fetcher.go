// Package fetcher drives batch audits: it fetches each URL once, audits the
// page and commits the reports to the tracker in batches.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/raysh454/wcag131/internal/assessor"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/tracker"
	"github.com/raysh454/wcag131/internal/utils"
	"github.com/raysh454/wcag131/internal/webclient"
)

// ErrTimeout marks a URL that did not finish within Config.Timeout.
var ErrTimeout = errors.New("audit timed out")

// Outcome is the result of auditing one URL. Exactly one of Report and Err
// is set.
type Outcome struct {
	URL    string        `json:"url"`
	Report *model.Report `json:"report,omitempty"`
	Err    error         `json:"-"`
	Error  string        `json:"error,omitempty"`
}

func (o *Outcome) fail(err error) {
	o.Err, o.Error = err, err.Error()
}

type Fetcher struct {
	cfg      Config
	tracker  tracker.Tracker
	wc       webclient.WebClient
	assessor assessor.Assessor
	logger   logging.Logger
}

// New creates a Fetcher. tr may be nil, in which case reports are returned
// but not stored.
func New(cfg Config, tr tracker.Tracker, wc webclient.WebClient, a assessor.Assessor, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, fmt.Errorf("fetcher: webclient is nil")
	}
	if a == nil {
		return nil, fmt.Errorf("fetcher: assessor is nil")
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	def := DefaultConfig()
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = def.MaxConcurrency
	}
	if cfg.CommitSize <= 0 {
		cfg.CommitSize = def.CommitSize
	}
	return &Fetcher{
		cfg:      cfg,
		tracker:  tr,
		wc:       wc,
		assessor: a,
		logger:   logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// AuditURL fetches, audits and commits a single URL.
func (f *Fetcher) AuditURL(ctx context.Context, rawURL string) (*model.Report, error) {
	u, err := utils.Canonicalize(rawURL, utils.AuditOptions)
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	rep, err := f.auditOne(ctx, u)
	if err != nil {
		return nil, err
	}
	if f.tracker != nil {
		if err := f.tracker.Commit(ctx, rep); err != nil {
			return rep, fmt.Errorf("fetcher: commit %s: %w", u, err)
		}
	}
	return rep, nil
}

// AuditURLs audits every distinct URL in rawURLs with at most MaxConcurrency
// fetches in flight. A failing URL never stops the batch; its Outcome
// carries the error. Outcomes follow first-seen order, with unparseable
// entries at the end. onProgress, if set, is called once per URL and never
// concurrently.
func (f *Fetcher) AuditURLs(ctx context.Context, rawURLs []string, onProgress utils.ProgressCallback) []Outcome {
	urls, rejected := utils.Dedupe(rawURLs, utils.AuditOptions)
	outcomes := make([]Outcome, len(urls), len(urls)+len(rejected))

	var (
		progressMu sync.Mutex
		done       int
	)
	progress := func() {
		progressMu.Lock()
		defer progressMu.Unlock()
		done++
		if onProgress != nil {
			onProgress(done, len(urls))
		}
	}

	reportCh := make(chan *model.Report)
	batcherDone := make(chan struct{})
	// reports that finished before a cancellation are still worth keeping
	go f.commitLoop(context.WithoutCancel(ctx), reportCh, batcherDone)

	var wg sync.WaitGroup
	sem := make(chan struct{}, f.cfg.MaxConcurrency)
	for i, u := range urls {
		outcomes[i].URL = u
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer progress()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				outcomes[i].fail(ctx.Err())
				return
			}
			defer func() { <-sem }()

			rep, err := f.auditOne(ctx, u)
			if err != nil {
				f.logger.Error("error while auditing page",
					logging.Field{Key: "url", Value: u},
					logging.Field{Key: "error", Value: err})
				outcomes[i].fail(err)
				return
			}
			outcomes[i].Report = rep
			reportCh <- rep
		}()
	}

	wg.Wait()
	close(reportCh)
	<-batcherDone

	for _, raw := range rawURLs {
		if err, ok := rejected[raw]; ok {
			o := Outcome{URL: raw}
			o.fail(err)
			outcomes = append(outcomes, o)
			delete(rejected, raw)
		}
	}
	return outcomes
}

// commitLoop writes reports to the tracker in batches of CommitSize.
func (f *Fetcher) commitLoop(ctx context.Context, reportCh <-chan *model.Report, done chan<- struct{}) {
	defer close(done)
	batch := make([]*model.Report, 0, f.cfg.CommitSize)
	flush := func() {
		if len(batch) == 0 || f.tracker == nil {
			batch = batch[:0]
			return
		}
		if err := f.tracker.CommitBatch(ctx, batch); err != nil {
			f.logger.Error("error while committing report batch",
				logging.Field{Key: "size", Value: len(batch)},
				logging.Field{Key: "error", Value: err})
		}
		batch = make([]*model.Report, 0, f.cfg.CommitSize)
	}

	for rep := range reportCh {
		batch = append(batch, rep)
		if len(batch) == f.cfg.CommitSize {
			flush()
		}
	}
	flush()
}

func (f *Fetcher) auditOne(ctx context.Context, u string) (*model.Report, error) {
	parent := ctx
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}
	wrap := func(op string, err error) error {
		if parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w after %s", op, u, ErrTimeout, f.cfg.Timeout)
		}
		return fmt.Errorf("%s %s: %w", op, u, err)
	}

	resp, err := f.wc.Get(ctx, u)
	if err != nil {
		return nil, wrap("fetch", err)
	}
	rep, err := f.assessor.AuditResponse(ctx, resp)
	if err != nil {
		return nil, wrap("audit", err)
	}
	rep.Source = u
	return rep, nil
}
