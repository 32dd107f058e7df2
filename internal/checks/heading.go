package checks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/raysh454/wcag131/internal/dom"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

const (
	ruleRepetitiveHeading = "repetitive-heading"
	ruleMissingARIALevel  = "missing-aria-level"
	ruleInvalidARIALevel  = "invalid-aria-level"
	ruleEmptyARIAHeading  = "empty-aria-heading"
	ruleSkippedLevel      = "skipped-heading-level"
	ruleFirstHeading      = "first-heading-not-h1"

	headingBaseline = 95.0
)

// Heading checks h1-h6 and role="heading" elements for hierarchy and ARIA use.
type Heading struct{ base }

type headingCandidate struct {
	text      string
	aria      bool
	rawLevel  string
	hasLevel  bool
	level     int // 0 when it cannot be determined
	prevLevel int
	seen      map[string]bool
}

// Evaluated top to bottom; only the first matching rule reports.
var headingRules = []rule[*headingCandidate]{
	{
		id:   ruleRepetitiveHeading,
		code: model.CodeHeading,
		when: func(c *headingCandidate) bool { return c.seen[c.text] },
		msg:  static[*headingCandidate]("Repetitive heading detected."),
	},
	{
		id:   ruleMissingARIALevel,
		code: model.CodeARIA12,
		when: func(c *headingCandidate) bool { return c.aria && !c.hasLevel },
		msg:  static[*headingCandidate](`Missing aria-level on role="heading".`),
	},
	{
		id:   ruleInvalidARIALevel,
		code: model.CodeARIA12,
		when: func(c *headingCandidate) bool { return c.aria && c.level == 0 },
		msg: func(c *headingCandidate) string {
			return fmt.Sprintf("Invalid aria-level %q. Must be between 1 and 6.", c.rawLevel)
		},
	},
	{
		id:   ruleEmptyARIAHeading,
		code: model.CodeDescriptive,
		when: func(c *headingCandidate) bool { return c.aria && c.text == "" },
		msg:  static[*headingCandidate](`Heading with role="heading" is empty or not descriptive.`),
	},
	{
		id:   ruleSkippedLevel,
		code: model.CodeHeading,
		when: func(c *headingCandidate) bool {
			return c.prevLevel > 0 && c.level > c.prevLevel+1
		},
		msg: func(c *headingCandidate) string {
			return fmt.Sprintf("Skipped heading levels from h%d to h%d.", c.prevLevel, c.level)
		},
	},
	{
		id:   ruleFirstHeading,
		code: model.CodeHeading,
		when: func(c *headingCandidate) bool { return c.prevLevel == 0 && c.level != 1 },
		msg:  static[*headingCandidate](`The first heading should be h1 or aria-level="1".`),
	},
}

func semanticLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// parseARIALevel accepts only plain ASCII digits in 1-6; signs, spaces and
// anything else leave the level undetermined.
func parseARIALevel(raw string) int {
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

func isHeadingCandidate(e *dom.Element) bool {
	return semanticLevel(e.Tag()) > 0 || e.HasRole("heading")
}

// Check implements Checker.
func (h *Heading) Check(doc *dom.Document) (*model.CategoryResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	cands := doc.FindFunc(isHeadingCandidate)
	h.log.Debug("heading candidates", logging.F("count", len(cands)))
	if len(cands) == 0 {
		return model.NotApplicable(), nil
	}

	var issues []model.Issue
	prev := 0
	seen := make(map[string]bool)
	h.each(cands, func(idx int, e *dom.Element) {
		c := &headingCandidate{
			text:      e.Text(),
			aria:      e.HasRole("heading"),
			prevLevel: prev,
			seen:      seen,
		}
		if c.aria {
			c.rawLevel, _ = e.Attr("aria-level")
			c.hasLevel = c.rawLevel != ""
			c.level = parseARIALevel(c.rawLevel)
		} else {
			c.level = semanticLevel(e.Tag())
		}

		if r, ok := firstMatch(headingRules, c); ok {
			issues = append(issues, issueAt(idx, e, r.id, r.code, r.msg(c)))
		}

		if c.level > 0 {
			prev = c.level
		}
		seen[c.text] = true
	})

	conf := (headingBaseline - h.weights.Penalty(issues)) * (1 - ratio(len(issues), len(cands)))
	return finish(issues, conf), nil
}
