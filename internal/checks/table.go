package checks

import (
	"strings"

	"github.com/raysh454/wcag131/internal/dom"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

const (
	ruleTableHeaders = "table-headers"
	ruleTableRows    = "table-rows"
	ruleTableARIA    = "table-aria"
	ruleTableLayout  = "table-layout"

	tableBaseline   = 95.0
	tableMaxPenalty = 50.0
)

// Table checks each table for header cells, rows, an accessible description
// and signs of layout-only use. All findings for one table are reported as a
// single issue.
type Table struct{ base }

type tableCandidate struct {
	el   *dom.Element
	ths  []*dom.Element
	rows int
}

var tableRules = []rule[*tableCandidate]{
	{
		id:   ruleTableHeaders,
		code: model.CodeTable,
		when: func(c *tableCandidate) bool {
			if len(c.ths) == 0 {
				return true
			}
			for _, th := range c.ths {
				if !th.AttrSet("scope") && !th.AttrSet("id") {
					return true
				}
			}
			return false
		},
		msg: func(c *tableCandidate) string {
			if len(c.ths) == 0 {
				return "Table is missing headers (th elements)."
			}
			return "Table headers are missing scope or id attributes."
		},
	},
	{
		id:   ruleTableRows,
		code: model.CodeTable,
		when: func(c *tableCandidate) bool { return c.rows == 0 },
		msg:  static[*tableCandidate]("Table is missing rows (tr elements)."),
	},
	{
		id:   ruleTableARIA,
		code: model.CodeTable,
		when: func(c *tableCandidate) bool {
			for _, a := range []string{"role", "summary", "aria-label", "aria-labelledby", "aria-describedby"} {
				if c.el.AttrSet(a) {
					return false
				}
			}
			return !c.el.Has("caption")
		},
		msg: static[*tableCandidate]("Table is missing an ARIA role for accessibility."),
	},
	{
		id:   ruleTableLayout,
		code: model.CodeTable,
		when: func(c *tableCandidate) bool { return len(c.ths) == 0 && c.rows <= 2 },
		msg:  static[*tableCandidate]("Table appears to be used for layout only."),
	},
}

func tableConfidence(failed, total int) float64 {
	return tableBaseline - ratio(failed, total)*tableMaxPenalty
}

// Check implements Checker.
func (t *Table) Check(doc *dom.Document) (*model.CategoryResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	tables := doc.Find("table")
	t.log.Debug("table candidates", logging.F("count", len(tables)))
	if len(tables) == 0 {
		return model.NotApplicable(), nil
	}

	var issues []model.Issue
	t.each(tables, func(idx int, e *dom.Element) {
		c := &tableCandidate{el: e, ths: e.Find("th"), rows: len(e.Find("tr"))}
		hits := matches(tableRules, c)
		if len(hits) == 0 {
			return
		}
		ids := make([]string, 0, len(hits))
		msgs := make([]string, 0, len(hits))
		for _, r := range hits {
			ids = append(ids, r.id)
			msgs = append(msgs, r.msg(c))
		}
		is := issueAt(idx, e, strings.Join(ids, "+"), model.CodeTable, strings.Join(msgs, " "))
		is.Confidence = tableConfidence(len(hits), len(tableRules))
		issues = append(issues, is)
	})

	return finish(issues, tableConfidence(len(issues), len(tables))), nil
}
