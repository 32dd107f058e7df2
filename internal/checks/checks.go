// Package checks holds the WCAG 1.3.1 markup checks. Each Checker inspects a
// parsed document read-only and reduces what it finds to one CategoryResult.
//
// Rules are plain data: an id, a WCAG code, a predicate and a message. Checks
// either evaluate every rule for a candidate or stop at the first hit; each
// file says which.
package checks

import (
	"errors"
	"fmt"

	"github.com/raysh454/wcag131/internal/dom"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

// Checker evaluates one category.
type Checker interface {
	Category() model.Category
	Check(doc *dom.Document) (*model.CategoryResult, error)
}

// Options configure the checks built by New and All.
type Options struct {
	Logger logging.Logger
	// Weights overrides individual penalty weights per category, keyed by rule id.
	Weights map[model.Category]map[string]float64
}

// ErrNilDocument is returned when a check is given no document.
var ErrNilDocument = errors.New("checks: nil document")

// MsgUnexpected is the single issue reported for a category that failed internally.
const MsgUnexpected = "An unexpected error occurred."

// New builds the checker for one category.
func New(c model.Category, opts Options) (Checker, error) {
	b := newBase(c, opts)
	switch c {
	case model.CategoryHeading:
		return &Heading{b}, nil
	case model.CategoryList:
		return &List{b}, nil
	case model.CategoryTable:
		return &Table{b}, nil
	case model.CategoryBlockquote:
		return &Blockquote{b}, nil
	case model.CategoryLandmark:
		return &Landmark{b}, nil
	case model.CategoryStructural:
		return &Structural{b}, nil
	case model.CategoryForm:
		return &Form{b}, nil
	}
	return nil, fmt.Errorf("checks: unknown category %q", c)
}

// All builds every checker in report order.
func All(opts Options) []Checker {
	out := make([]Checker, 0, len(model.Categories))
	for _, c := range model.Categories {
		ch, _ := New(c, opts)
		out = append(out, ch)
	}
	return out
}

// Run evaluates c against doc. It never fails: an error or panic inside the
// check becomes an Error result for that category alone.
func Run(c Checker, doc *dom.Document, log logging.Logger) (res *model.CategoryResult) {
	if log == nil {
		log = logging.Nop{}
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("check panicked", logging.F("category", string(c.Category())), logging.F("panic", fmt.Sprint(r)))
			res = ErrorResult(c.Category())
		}
	}()

	var err error
	res, err = c.Check(doc)
	if err != nil {
		log.Error("check failed", logging.F("category", string(c.Category())), logging.F("err", err))
		return ErrorResult(c.Category())
	}
	if res == nil {
		return ErrorResult(c.Category())
	}
	return res
}

// ErrorResult is the fixed result for a category that could not be evaluated.
func ErrorResult(c model.Category) *model.CategoryResult {
	return &model.CategoryResult{
		Status: model.StatusError,
		Issues: []model.Issue{{
			Message: MsgUnexpected,
			Code:    codeFor(c),
			Rule:    "internal-error",
		}},
		Confidence: 50.0,
		IssueCount: 1,
	}
}

func codeFor(c model.Category) string {
	switch c {
	case model.CategoryHeading:
		return model.CodeHeading
	case model.CategoryList:
		return model.CodeList
	case model.CategoryTable:
		return model.CodeTable
	case model.CategoryBlockquote:
		return model.CodeBlockquote
	case model.CategoryLandmark:
		return model.CodeLandmark
	case model.CategoryStructural:
		return model.CodeStructural
	case model.CategoryForm:
		return model.CodeForm
	}
	return ""
}

// rule is one guarded check over a candidate of type T.
type rule[T any] struct {
	id   string
	code string
	when func(T) bool
	msg  func(T) string
}

func static[T any](s string) func(T) string {
	return func(T) string { return s }
}

// firstMatch returns the first rule whose predicate holds.
func firstMatch[T any](rules []rule[T], c T) (rule[T], bool) {
	for _, r := range rules {
		if r.when(c) {
			return r, true
		}
	}
	return rule[T]{}, false
}

// matches returns every rule whose predicate holds, in declaration order.
func matches[T any](rules []rule[T], c T) []rule[T] {
	var out []rule[T]
	for _, r := range rules {
		if r.when(c) {
			out = append(out, r)
		}
	}
	return out
}

// base carries what every checker shares.
type base struct {
	category model.Category
	log      logging.Logger
	weights  Weights
}

func newBase(c model.Category, opts Options) base {
	log := opts.Logger
	if log == nil {
		log = logging.Nop{}
	}
	return base{
		category: c,
		log:      log.With(logging.F("check", string(c))),
		weights:  defaultWeights[c].merge(opts.Weights[c]),
	}
}

func (b base) Category() model.Category { return b.category }

// each visits candidates in document order with their 1-based index. A panic
// while evaluating one candidate is logged and that candidate is skipped.
func (b base) each(cands []*dom.Element, fn func(idx int, e *dom.Element)) {
	for i, e := range cands {
		b.guard(i+1, e, fn)
	}
}

func (b base) guard(idx int, e *dom.Element, fn func(int, *dom.Element)) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("candidate skipped",
				logging.F("index", idx),
				logging.F("tag", e.Tag()),
				logging.F("panic", fmt.Sprint(r)))
		}
	}()
	fn(idx, e)
}

func issueAt(idx int, e *dom.Element, id, code, msg string) model.Issue {
	return model.Issue{
		ElementIndex: idx,
		Tag:          e.Tag(),
		HTMLSnippet:  e.Snippet(),
		LineNumber:   e.Line(),
		Message:      msg,
		Code:         code,
		Rule:         id,
	}
}

func documentIssue(id, code, msg string) model.Issue {
	return model.Issue{Message: msg, Code: code, Rule: id}
}

// finish packages issues and a confidence into a result. Malformed iff issues
// were found.
func finish(issues []model.Issue, confidence float64) *model.CategoryResult {
	if issues == nil {
		issues = []model.Issue{}
	}
	status := model.StatusPassed
	if len(issues) > 0 {
		status = model.StatusMalformed
	}
	return &model.CategoryResult{
		Status:     status,
		Issues:     issues,
		Confidence: clamp(confidence),
		IssueCount: len(issues),
	}
}
