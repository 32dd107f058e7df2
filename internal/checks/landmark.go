package checks

import (
	"github.com/raysh454/wcag131/internal/dom"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

const (
	ruleLandmarkEmpty  = "landmark-empty"
	ruleNavLinks       = "nav-links"
	ruleMainContent    = "main-content"
	ruleHeaderHeading  = "header-heading"
	ruleFooterContent  = "footer-content"
	ruleAsideContent   = "aside-content"
	ruleSectionContent = "section-content"
	ruleArticleContent = "article-content"
	ruleFormInputs     = "form-inputs"
	ruleFormLabels     = "form-labels"

	landmarkBaseline      = 95.0
	landmarkDensityWeight = 10.0
)

var landmarkTags = map[string]bool{
	"header": true, "nav": true, "main": true, "footer": true, "section": true,
	"aside": true, "article": true, "form": true, "hgroup": true,
}

// Landmark checks region elements for content appropriate to their role, and
// the page as a whole for the regions and landmark roles it should have.
type Landmark struct{ base }

type landmarkCandidate struct {
	el    *dom.Element
	tag   string
	words int
}

func (c landmarkCandidate) is(tag string) bool { return c.tag == tag }

var landmarkEmptyRule = rule[landmarkCandidate]{
	id:   ruleLandmarkEmpty,
	code: model.CodeLandmark,
	when: func(c landmarkCandidate) bool { return isEmpty(c.el) },
	msg:  static[landmarkCandidate]("Landmark element is empty or has no meaningful content."),
}

// Content rules: only the first match applies to a landmark.
var landmarkContentRules = []rule[landmarkCandidate]{
	{
		id:   ruleNavLinks,
		code: model.CodeLandmark,
		when: func(c landmarkCandidate) bool { return c.is("nav") && !c.el.Has("a[href]") },
		msg:  static[landmarkCandidate]("Landmark <nav> should contain navigation links."),
	},
	{
		id:   ruleMainContent,
		code: model.CodeLandmark,
		when: func(c landmarkCandidate) bool { return c.is("main") && c.words < 20 },
		msg:  static[landmarkCandidate]("Landmark <main> should contain the primary content of the page."),
	},
	{
		id:   ruleHeaderHeading,
		code: model.CodeLandmark,
		when: func(c landmarkCandidate) bool {
			return c.is("header") && !c.el.Has("h1, h2, h3, h4, h5, h6, [role~=heading]")
		},
		msg: static[landmarkCandidate]("Landmark <header> should contain a heading element."),
	},
	{
		id:   ruleFooterContent,
		code: model.CodeLandmark,
		when: func(c landmarkCandidate) bool { return c.is("footer") && c.words < 5 },
		msg:  static[landmarkCandidate]("Landmark <footer> should contain footer information."),
	},
	{
		id:   ruleAsideContent,
		code: model.CodeLandmark,
		when: func(c landmarkCandidate) bool { return c.is("aside") && c.words < 10 },
		msg:  static[landmarkCandidate]("Landmark <aside> should contain meaningful content."),
	},
	{
		id:   ruleSectionContent,
		code: model.CodeLandmark,
		when: func(c landmarkCandidate) bool { return c.is("section") && c.words < 10 },
		msg:  static[landmarkCandidate]("Landmark <section> should contain a meaningful amount of content."),
	},
	{
		id:   ruleArticleContent,
		code: model.CodeLandmark,
		when: func(c landmarkCandidate) bool { return c.is("article") && c.words < 50 },
		msg:  static[landmarkCandidate]("Landmark <article> should contain self-contained detailed content."),
	},
	{
		id:   ruleFormInputs,
		code: model.CodeLandmark,
		when: func(c landmarkCandidate) bool {
			return c.is("form") && !c.el.Has("input, textarea, select")
		},
		msg: static[landmarkCandidate]("Landmark <form> should contain input elements."),
	},
	{
		id:   ruleFormLabels,
		code: model.CodeLandmark,
		when: func(c landmarkCandidate) bool {
			if !c.is("form") || c.el.Has("label") {
				return false
			}
			for _, in := range c.el.Find("input, textarea, select") {
				if in.AttrSet("aria-label") {
					return false
				}
			}
			return true
		},
		msg: static[landmarkCandidate]("Landmark <form> should contain labeled inputs using <label> elements or aria-label attributes."),
	},
}

// Check implements Checker.
func (l *Landmark) Check(doc *dom.Document) (*model.CategoryResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	marks := doc.FindFunc(func(e *dom.Element) bool { return landmarkTags[e.Tag()] })
	l.log.Debug("landmark candidates", logging.F("count", len(marks)))
	if len(marks) == 0 {
		return model.NotApplicable(), nil
	}

	var issues []model.Issue
	l.each(marks, func(idx int, e *dom.Element) {
		c := landmarkCandidate{el: e, tag: e.Tag(), words: e.WordCount()}
		if landmarkEmptyRule.when(c) {
			issues = append(issues, issueAt(idx, e, landmarkEmptyRule.id, landmarkEmptyRule.code, landmarkEmptyRule.msg(c)))
		}
		if r, ok := firstMatch(landmarkContentRules, c); ok {
			issues = append(issues, issueAt(idx, e, r.id, r.code, r.msg(c)))
		}
	})
	issues = append(issues, pageCompleteness(doc, model.CodeLandmark)...)

	conf := landmarkBaseline - l.weights.Penalty(issues) - ratio(len(issues), len(marks))*landmarkDensityWeight
	return finish(issues, conf), nil
}
