package assessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/wcag131/internal/checks"
	"github.com/raysh454/wcag131/internal/dom"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
	"github.com/raysh454/wcag131/internal/webclient"
)

// HeuristicsAssessor runs the rule-based markup checks and packages their
// results into a Report. It holds no per-document state and is safe for
// concurrent use.
type HeuristicsAssessor struct {
	cfg      Config
	logger   logging.Logger
	checkers []checks.Checker
}

// NewHeuristicsAssessor builds the checkers for cfg.Categories, or for every
// category when none are listed.
func NewHeuristicsAssessor(cfg *Config, logger logging.Logger) (*HeuristicsAssessor, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if logger == nil {
		return nil, errors.New("assessor: nil logger")
	}

	l := logger.With(logging.Field{Key: "component", Value: "heuristics-assessor"})
	opts := checks.Options{Logger: l, Weights: cfg.RuleWeights}

	var checkers []checks.Checker
	if len(cfg.Categories) == 0 {
		checkers = checks.All(opts)
	} else {
		for _, c := range cfg.Categories {
			ch, err := checks.New(c, opts)
			if err != nil {
				return nil, fmt.Errorf("assessor: %w", err)
			}
			checkers = append(checkers, ch)
		}
	}

	h := &HeuristicsAssessor{cfg: *cfg, logger: l, checkers: checkers}
	if h.cfg.ScoringVersion == "" {
		h.cfg.ScoringVersion = DefaultScoringVersion
	}

	l.Info("heuristics assessor constructed",
		logging.Field{Key: "scoring_version", Value: h.cfg.ScoringVersion},
		logging.Field{Key: "categories", Value: len(checkers)},
		logging.Field{Key: "parallel", Value: cfg.Parallel})
	return h, nil
}

// AuditHTML parses html once and evaluates every checker against it. A
// failing category becomes an Error result; only parse failures and context
// cancellation are returned as errors.
func (h *HeuristicsAssessor) AuditHTML(ctx context.Context, html []byte, source string) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	doc, err := dom.ParseBytes(html, dom.Options{SnippetLen: h.cfg.SnippetLen})
	if err != nil {
		return nil, fmt.Errorf("assessor: %w", err)
	}

	results := make([]*model.CategoryResult, len(h.checkers))
	if h.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, ch := range h.checkers {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = checks.Run(ch, doc, h.logger)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, ch := range h.checkers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = checks.Run(ch, doc, h.logger)
		}
	}

	report := &model.Report{
		ID:             uuid.NewString(),
		Source:         source,
		ScoringVersion: h.cfg.ScoringVersion,
		CreatedAt:      time.Now().UTC(),
		Categories:     make([]model.CategoryReport, len(h.checkers)),
	}
	for i, ch := range h.checkers {
		report.Categories[i] = model.CategoryReport{
			Category: ch.Category(),
			Name:     ch.Category().DisplayName(),
			Result:   results[i],
		}
	}

	h.logger.Debug("audit complete",
		logging.Field{Key: "source", Value: source},
		logging.Field{Key: "size_bytes", Value: len(html)},
		logging.Field{Key: "failing", Value: report.Failing()},
		logging.Field{Key: "elapsed", Value: time.Since(start).String()})
	return report, nil
}

// AuditResponse delegates to AuditHTML with the response body.
func (h *HeuristicsAssessor) AuditResponse(ctx context.Context, resp *webclient.Response) (*model.Report, error) {
	if resp == nil {
		return nil, errors.New("assessor: nil response")
	}
	source := ""
	if resp.Request != nil {
		source = resp.Request.URL
	}
	if len(resp.Body) == 0 {
		h.logger.Warn("auditing empty body", logging.Field{Key: "source", Value: source})
	}
	report, err := h.AuditHTML(ctx, resp.Body, source)
	if err != nil {
		return nil, err
	}
	report.StatusCode = resp.StatusCode
	return report, nil
}

// Close is a no-op; checkers hold no resources.
func (h *HeuristicsAssessor) Close() error {
	h.logger.Debug("heuristics assessor closed")
	return nil
}
