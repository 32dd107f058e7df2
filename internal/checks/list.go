package checks

import (
	"github.com/raysh454/wcag131/internal/dom"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

const (
	ruleListMalformed   = "list-malformed"
	ruleListMissingRole = "list-missing-role"
	ruleListNesting     = "list-improper-nesting"
	ruleListOrphan      = "list-orphan-item"

	listBaseline = 100.0
	// listDensityWeight is the largest penalty the issue density can cost.
	listDensityWeight = 50.0
)

// List checks ul/ol lists and div/section containers that act as lists.
//
// A div or section is only a candidate when it declares role="list" or holds
// li children directly; a generic container without list items is ignored.
type List struct{ base }

type listCandidate struct {
	el *dom.Element
	// enclosing is the nearest list container above el, nil at top level.
	enclosing *dom.Element
}

// All rules are evaluated for each container.
var listRules = []rule[listCandidate]{
	{
		id:   ruleListMalformed,
		code: model.CodeList,
		when: func(c listCandidate) bool { return !c.el.Has("li") },
		msg:  static[listCandidate]("List is malformed. No <li> elements found."),
	},
	{
		id:   ruleListMissingRole,
		code: model.CodeList,
		when: func(c listCandidate) bool {
			return !isNativeList(c.el) && !c.el.HasRole("list")
		},
		msg: static[listCandidate]("List is missing proper ARIA roles for accessibility."),
	},
	{
		id:   ruleListNesting,
		code: model.CodeList,
		when: func(c listCandidate) bool {
			return c.enclosing != nil && !nestedInItemOf(c.el, c.enclosing)
		},
		msg: static[listCandidate]("Nested list is not contained in a list item of its enclosing list."),
	},
}

var orphanRule = rule[*dom.Element]{
	id:   ruleListOrphan,
	code: model.CodeList,
	when: func(e *dom.Element) bool { return e.Tag() == "li" && e.Ancestor(isListContainer) == nil },
	msg:  static[*dom.Element]("List item is not contained in any list."),
}

func isNativeList(e *dom.Element) bool {
	t := e.Tag()
	return t == "ul" || t == "ol"
}

func isListContainer(e *dom.Element) bool {
	if isNativeList(e) {
		return true
	}
	switch e.Tag() {
	case "div", "section":
		if e.HasRole("list") {
			return true
		}
		for _, c := range e.Children() {
			if c.Tag() == "li" {
				return true
			}
		}
	}
	return false
}

// nestedInItemOf reports whether list sits inside an li that belongs to enclosing.
func nestedInItemOf(list, enclosing *dom.Element) bool {
	li := list.Ancestor(func(e *dom.Element) bool { return e.Tag() == "li" })
	if li == nil {
		return false
	}
	return enclosing.Same(li.Ancestor(isListContainer))
}

// Check implements Checker.
func (l *List) Check(doc *dom.Document) (*model.CategoryResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	elems := doc.FindFunc(func(e *dom.Element) bool {
		return isListContainer(e) || orphanRule.when(e)
	})
	l.log.Debug("list candidates", logging.F("count", len(elems)))
	if len(elems) == 0 {
		return model.NotApplicable(), nil
	}

	var issues []model.Issue
	l.each(elems, func(idx int, e *dom.Element) {
		if e.Tag() == "li" {
			issues = append(issues, issueAt(idx, e, orphanRule.id, orphanRule.code, orphanRule.msg(e)))
			return
		}
		c := listCandidate{el: e, enclosing: e.Ancestor(isListContainer)}
		for _, r := range matches(listRules, c) {
			issues = append(issues, issueAt(idx, e, r.id, r.code, r.msg(c)))
		}
	})

	conf := listBaseline - l.weights.Penalty(issues) - ratio(len(issues), len(elems))*listDensityWeight
	return finish(issues, conf), nil
}
