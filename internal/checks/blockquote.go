package checks

import (
	"github.com/raysh454/wcag131/internal/dom"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

const (
	ruleQuoteAttribution = "blockquote-attribution"
	ruleQuoteARIA        = "blockquote-aria"

	blockquoteBaseline = 95.0
)

// Blockquote checks quotations for source attribution and ARIA labelling.
//
// Each blockquote is scored on its own; the category confidence is the mean
// of those scores over the blockquotes that had issues.
type Blockquote struct{ base }

var blockquoteRules = []rule[*dom.Element]{
	{
		id:   ruleQuoteAttribution,
		code: model.CodeBlockquote,
		when: func(e *dom.Element) bool { return !e.AttrSet("cite") && !e.Has("footer") },
		msg:  static[*dom.Element]("Blockquote is missing a cite attribute or <footer> for source attribution."),
	},
	{
		id:   ruleQuoteARIA,
		code: model.CodeBlockquote,
		when: func(e *dom.Element) bool {
			return !e.AttrSet("aria-labelledby") && !e.AttrSet("aria-describedby")
		},
		msg: static[*dom.Element]("Blockquote is missing an aria-labelledby or aria-describedby for better accessibility."),
	},
}

// Check implements Checker.
func (b *Blockquote) Check(doc *dom.Document) (*model.CategoryResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	quotes := doc.Find("blockquote")
	b.log.Debug("blockquote candidates", logging.F("count", len(quotes)))
	if len(quotes) == 0 {
		return model.NotApplicable(), nil
	}

	var (
		issues []model.Issue
		sum    float64
		scored int
	)
	b.each(quotes, func(idx int, e *dom.Element) {
		var own []model.Issue
		for _, r := range matches(blockquoteRules, e) {
			own = append(own, issueAt(idx, e, r.id, r.code, r.msg(e)))
		}
		if len(own) == 0 {
			return
		}
		conf := clamp(blockquoteBaseline - b.weights.Penalty(own))
		for i := range own {
			own[i].Confidence = conf
		}
		issues = append(issues, own...)
		sum += conf
		scored++
	})

	overall := 100.0
	if scored > 0 {
		overall = sum / float64(scored)
	}
	return finish(issues, overall), nil
}
