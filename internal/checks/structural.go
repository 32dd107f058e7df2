package checks

import (
	"github.com/raysh454/wcag131/internal/dom"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

const (
	ruleStructEmpty   = "structural-empty"
	ruleStructContent = "structural-insufficient-content"
	ruleStructRole    = "structural-missing-role"

	structuralBaseline      = 100.0
	structuralDensityWeight = 30.0
)

// minimum word counts before a structural element is considered purposeful.
var structuralMinWords = map[string]int{"section": 10, "article": 50, "div": 5}

var structuralContentMsg = map[string]string{
	"section": "Section should contain a meaningful amount of content.",
	"article": "Article should contain self-contained, detailed content.",
	"div":     "Div should not be used solely for structural purposes without meaningful content.",
}

// Structural checks article, section and div elements for content and roles.
type Structural struct{ base }

var structuralRules = []rule[*dom.Element]{
	{
		id:   ruleStructEmpty,
		code: model.CodeStructural,
		when: isEmpty,
		msg:  static[*dom.Element]("Structural element is empty or lacks meaningful content."),
	},
	{
		id:   ruleStructContent,
		code: model.CodeStructural,
		when: func(e *dom.Element) bool { return e.WordCount() < structuralMinWords[e.Tag()] },
		msg:  func(e *dom.Element) string { return structuralContentMsg[e.Tag()] },
	},
	{
		id:   ruleStructRole,
		code: model.CodeStructural,
		when: func(e *dom.Element) bool {
			t := e.Tag()
			return (t == "div" || t == "section") && !e.AttrSet("role")
		},
		msg: static[*dom.Element]("Structural element is missing an ARIA role for accessibility."),
	},
}

// Check implements Checker.
func (s *Structural) Check(doc *dom.Document) (*model.CategoryResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	elems := doc.FindFunc(func(e *dom.Element) bool {
		_, ok := structuralMinWords[e.Tag()]
		return ok
	})
	s.log.Debug("structural candidates", logging.F("count", len(elems)))
	if len(elems) == 0 {
		return model.NotApplicable(), nil
	}

	var issues []model.Issue
	s.each(elems, func(idx int, e *dom.Element) {
		for _, r := range matches(structuralRules, e) {
			issues = append(issues, issueAt(idx, e, r.id, r.code, r.msg(e)))
		}
	})
	issues = append(issues, pageCompleteness(doc, model.CodeStructural)...)

	conf := structuralBaseline - s.weights.Penalty(issues) - ratio(len(issues), len(elems))*structuralDensityWeight
	return finish(issues, conf), nil
}
