// Package app wires the auditing components together and runs long audits as
// background jobs.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/wcag131/internal/enumerator"
	"github.com/raysh454/wcag131/internal/fetcher"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/report"
	"github.com/raysh454/wcag131/internal/tracker"
)

var (
	ErrNoURLs = errors.New("no urls given")
	ErrClosed = errors.New("orchestrator is closed")
	// ErrNoHistory is returned by history operations when audits are not stored.
	ErrNoHistory = errors.New("audit history is disabled")
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Processed int `json:"processed,omitempty"`
	Total     int `json:"total,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// Job is a batch audit running in the background. Values returned by the
// Orchestrator are snapshots; Events is shared and closed when the job ends.
type Job struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	URLs       []string      `json:"urls"`
	CrawlDepth int           `json:"crawl_depth,omitempty"`
	Status     JobStatus     `json:"status"`
	Error      string        `json:"error,omitempty"`
	Processed  int           `json:"processed"`
	Total      int           `json:"total"`
	StartedAt  time.Time     `json:"started_at"`
	EndedAt    time.Time     `json:"ended_at"`
	Events     chan JobEvent `json:"-"`

	Outcomes []fetcher.Outcome `json:"outcomes,omitempty"`
}

const jobEventBuffer = 16

type Orchestrator struct {
	cfg    *Config
	comps  *Components
	logger logging.Logger

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
	jobsWG     sync.WaitGroup
	closed     bool
	closeOnce  sync.Once
	closeErr   error
}

// NewOrchestrator builds every component from cfg.
func NewOrchestrator(cfg *Config, logger logging.Logger) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		return nil, errors.New("orchestrator: nil logger")
	}
	comps, err := NewComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewOrchestratorWith(cfg, comps, logger)
}

// NewOrchestratorWith drives already-built components. The orchestrator owns
// them from then on and closes them in Close.
func NewOrchestratorWith(cfg *Config, comps *Components, logger logging.Logger) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if comps == nil || comps.Assessor == nil || comps.Fetcher == nil {
		return nil, errors.New("orchestrator: incomplete components")
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Orchestrator{
		cfg:        cfg,
		comps:      comps,
		logger:     logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}, nil
}

func (o *Orchestrator) Config() *Config { return o.cfg }

// AuditHTML audits a document held in memory and stores the report.
func (o *Orchestrator) AuditHTML(ctx context.Context, html []byte, source string) (*model.Report, error) {
	rep, err := o.comps.Assessor.AuditHTML(ctx, html, source)
	if err != nil {
		return nil, err
	}
	if o.comps.Tracker != nil {
		if err := o.comps.Tracker.Commit(ctx, rep); err != nil {
			return rep, fmt.Errorf("storing audit: %w", err)
		}
	}
	o.logger.Info("audited document",
		logging.Field{Key: "source", Value: source},
		logging.Field{Key: "failing", Value: rep.Failing()})
	return rep, nil
}

// AuditURL fetches one page, audits it and stores the report.
func (o *Orchestrator) AuditURL(ctx context.Context, rawURL string) (*model.Report, error) {
	return o.comps.Fetcher.AuditURL(ctx, rawURL)
}

// Crawl lists the same-host pages reachable from target within depth link hops.
func (o *Orchestrator) Crawl(ctx context.Context, target string, depth int) ([]string, error) {
	spider := enumerator.NewSpider(depth, o.comps.WebClient, o.logger)
	spider.MaxPages = o.cfg.Crawl.MaxPages
	return spider.Enumerate(ctx, target, nil)
}

// AuditURLs audits urls, first expanding each by a crawl of crawlDepth hops
// when crawlDepth > 0. Only cancellation is returned as an error; per-URL
// failures are reported in the outcomes.
func (o *Orchestrator) AuditURLs(ctx context.Context, urls []string, crawlDepth int, onProgress func(done, total int)) ([]fetcher.Outcome, error) {
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	targets := urls
	if crawlDepth > 0 {
		targets = nil
		for _, u := range urls {
			found, err := o.Crawl(ctx, u, crawlDepth)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if err != nil || len(found) == 0 {
				// leave it to the fetcher to report why this one is unusable
				targets = append(targets, u)
				continue
			}
			targets = append(targets, found...)
		}
	}
	outcomes := o.comps.Fetcher.AuditURLs(ctx, targets, onProgress)
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (o *Orchestrator) history() (tracker.Tracker, error) {
	if o.comps.Tracker == nil {
		return nil, ErrNoHistory
	}
	return o.comps.Tracker, nil
}

func (o *Orchestrator) GetAudit(ctx context.Context, id string) (*model.Report, error) {
	tr, err := o.history()
	if err != nil {
		return nil, err
	}
	return tr.Get(ctx, id)
}

// ListAudits returns summaries for source, newest first. limit <= 0 lists all.
func (o *Orchestrator) ListAudits(ctx context.Context, source string, limit int) ([]*model.ReportSummary, error) {
	tr, err := o.history()
	if err != nil {
		return nil, err
	}
	return tr.ListBySource(ctx, source, limit)
}

func (o *Orchestrator) LatestAudit(ctx context.Context, source string) (*model.Report, error) {
	tr, err := o.history()
	if err != nil {
		return nil, err
	}
	return tr.Latest(ctx, source)
}

// DiffAudits compares two stored audits. An empty baseID diffs head against
// nothing.
func (o *Orchestrator) DiffAudits(ctx context.Context, baseID, headID string) (*model.AuditDiff, error) {
	tr, err := o.history()
	if err != nil {
		return nil, err
	}
	return tr.Diff(ctx, baseID, headID)
}

// ExportAudit renders a stored audit in format f.
func (o *Orchestrator) ExportAudit(ctx context.Context, w io.Writer, id string, f report.Format) error {
	rep, err := o.GetAudit(ctx, id)
	if err != nil {
		return err
	}
	return report.Write(w, f, rep)
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) updateJob(jobID string, fn func(*Job)) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if j, ok := o.jobs[jobID]; ok {
		fn(j)
	}
}

func (o *Orchestrator) setStatus(jobID string, status JobStatus, errMsg string) {
	o.updateJob(jobID, func(j *Job) {
		j.Status = status
		j.Error = errMsg
	})
	typ := JobEventStatus
	if status == JobDone {
		typ = JobEventResult
	}
	o.emitJobEvent(jobID, JobEvent{
		JobID:  jobID,
		Type:   typ,
		Status: status,
		Error:  errMsg,
	})
}

// StartBatchJob audits urls in the background. The job keeps running after
// ctx's request returns unless ctx itself is canceled or CancelJob is called.
func (o *Orchestrator) StartBatchJob(ctx context.Context, urls []string, crawlDepth int) (*Job, error) {
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	jobID := uuid.New().String()
	job := &Job{
		ID:         jobID,
		Type:       "batch",
		URLs:       append([]string(nil), urls...),
		CrawlDepth: crawlDepth,
		Status:     JobPending,
		StartedAt:  time.Now().UTC(),
		Events:     make(chan JobEvent, jobEventBuffer),
	}

	o.jobsMu.Lock()
	if o.closed {
		o.jobsMu.Unlock()
		return nil, ErrClosed
	}
	jobCtx, cancel := context.WithCancel(ctx)
	o.jobs[jobID] = job
	o.jobCancels[jobID] = cancel
	snapshot := *job
	o.jobsWG.Add(1)
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{
		JobID:  jobID,
		Type:   JobEventStatus,
		Status: JobPending,
	})

	go o.runBatchJob(jobCtx, job)

	return &snapshot, nil
}

func (o *Orchestrator) runBatchJob(ctx context.Context, job *Job) {
	jobID := job.ID
	defer o.jobsWG.Done()
	defer func() {
		o.jobsMu.Lock()
		job.EndedAt = time.Now().UTC()
		if cancel := o.jobCancels[jobID]; cancel != nil {
			cancel()
		}
		delete(o.jobCancels, jobID)
		o.jobsMu.Unlock()

		// Close events channel so websocket loop can terminate cleanly
		close(job.Events)
		o.scheduleForget(jobID)
	}()

	o.setStatus(jobID, JobRunning, "")

	outcomes, err := o.AuditURLs(ctx, job.URLs, job.CrawlDepth, func(done, total int) {
		o.updateJob(jobID, func(j *Job) {
			j.Processed, j.Total = done, total
		})
		o.emitJobEvent(jobID, JobEvent{
			JobID:     jobID,
			Type:      JobEventProgress,
			Processed: done,
			Total:     total,
		})
	})
	o.updateJob(jobID, func(j *Job) { j.Outcomes = outcomes })

	switch {
	case ctx.Err() != nil:
		o.setStatus(jobID, JobCanceled, ctx.Err().Error())
	case err != nil:
		o.setStatus(jobID, JobFailed, err.Error())
	case !anyAudited(outcomes):
		o.setStatus(jobID, JobFailed, "no url could be audited")
	default:
		o.setStatus(jobID, JobDone, "")
	}
	o.logger.Info("batch job finished",
		logging.Field{Key: "job_id", Value: jobID},
		logging.Field{Key: "urls", Value: len(outcomes)})
}

func anyAudited(outcomes []fetcher.Outcome) bool {
	for _, oc := range outcomes {
		if oc.Report != nil {
			return true
		}
	}
	return false
}

func (o *Orchestrator) scheduleForget(jobID string) {
	if o.cfg.JobRetention <= 0 {
		return
	}
	time.AfterFunc(o.cfg.JobRetention, func() {
		o.jobsMu.Lock()
		delete(o.jobs, jobID)
		o.jobsMu.Unlock()
	})
}

// CancelJob stops a running job. It reports whether the job was running.
func (o *Orchestrator) CancelJob(jobID string) bool {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// GetJob returns a snapshot of the job, or nil if it is unknown.
func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return nil
	}
	snapshot := *j
	return &snapshot
}

// ListJobs returns snapshots of every known job, oldest first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		snapshot := *j
		out = append(out, &snapshot)
	}
	o.jobsMu.Unlock()
	sort.Slice(out, func(a, b int) bool {
		if out[a].StartedAt.Equal(out[b].StartedAt) {
			return out[a].ID < out[b].ID
		}
		return out[a].StartedAt.Before(out[b].StartedAt)
	})
	return out
}

// Close cancels running jobs, waits for them and releases the components.
// Later calls return the first call's result.
func (o *Orchestrator) Close() error {
	o.closeOnce.Do(func() {
		o.jobsMu.Lock()
		o.closed = true
		for _, cancel := range o.jobCancels {
			cancel()
		}
		o.jobsMu.Unlock()

		o.jobsWG.Wait()
		o.closeErr = o.comps.Close()
	})
	return o.closeErr
}
