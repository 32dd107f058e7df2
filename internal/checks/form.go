package checks

import (
	"fmt"
	"strings"

	"github.com/raysh454/wcag131/internal/dom"
	"github.com/raysh454/wcag131/internal/logging"
	"github.com/raysh454/wcag131/internal/model"
)

const (
	ruleFormMissingLabel = "form-missing-label"
	ruleFormMissingName  = "form-missing-name"
	ruleFormMissingARIA  = "form-missing-aria"
	ruleFormNotGrouped   = "form-not-grouped"

	formBaseline = 100.0
)

// input types that need no label of their own.
var exemptInputTypes = map[string]bool{
	"image": true, "submit": true, "reset": true, "button": true, "hidden": true,
}

// Form checks each form's labelling, grouping and controls.
type Form struct{ base }

type formControl struct {
	form *dom.Element
	el   *dom.Element
	kind string
}

// Evaluated top to bottom; a control gets at most one issue, so a missing
// name is only reported for controls that are labelled.
var formControlRules = []rule[formControl]{
	{
		id:   ruleFormMissingLabel,
		code: model.CodeForm,
		when: func(c formControl) bool { return !hasAccessibleName(c.form, c.el) },
		msg: func(c formControl) string {
			return fmt.Sprintf("Input of type %q is missing a label or accessible alternative.", c.kind)
		},
	},
	{
		id:   ruleFormMissingName,
		code: model.CodeForm,
		when: func(c formControl) bool { return !c.el.AttrSet("name") && !c.el.AttrSet("id") },
		msg: func(c formControl) string {
			return fmt.Sprintf("Input of type %q is missing a name or id attribute.", c.kind)
		},
	},
}

var formRules = []rule[*dom.Element]{
	{
		id:   ruleFormMissingARIA,
		code: model.CodeForm,
		when: func(f *dom.Element) bool {
			return !f.AttrSet("aria-labelledby") && !f.AttrSet("aria-describedby")
		},
		msg: static[*dom.Element]("Form is missing an aria-labelledby or aria-describedby attribute for accessibility."),
	},
	{
		id:   ruleFormNotGrouped,
		code: model.CodeForm,
		when: func(f *dom.Element) bool { return !f.Has("fieldset, optgroup") },
		msg:  static[*dom.Element]("Form fields are not grouped (use <fieldset> or <optgroup> where appropriate)."),
	},
}

// controlKind returns the concrete type reported for a control, "" for exempt ones.
func controlKind(e *dom.Element) string {
	switch e.Tag() {
	case "textarea", "select":
		return e.Tag()
	}
	t, _ := e.Attr("type")
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		t = "text"
	}
	if exemptInputTypes[t] {
		return ""
	}
	return t
}

// hasAccessibleName resolves a control's name: a label[for] inside the form,
// then a wrapping label, then aria-label or aria-labelledby.
func hasAccessibleName(form, ctl *dom.Element) bool {
	if id, ok := ctl.Attr("id"); ok && strings.TrimSpace(id) != "" {
		for _, lbl := range form.Find("label[for]") {
			if f, _ := lbl.Attr("for"); f == id {
				return true
			}
		}
	}
	if ctl.Ancestor(func(e *dom.Element) bool { return e.Tag() == "label" }) != nil {
		return true
	}
	return ctl.AttrSet("aria-label") || ctl.AttrSet("aria-labelledby")
}

// Check implements Checker.
func (f *Form) Check(doc *dom.Document) (*model.CategoryResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	forms := doc.Find("form")
	f.log.Debug("form candidates", logging.F("count", len(forms)))
	if len(forms) == 0 {
		return model.NotApplicable(), nil
	}

	var issues []model.Issue
	f.each(forms, func(idx int, form *dom.Element) {
		for _, ctl := range form.Find("input, textarea, select") {
			kind := controlKind(ctl)
			if kind == "" {
				continue
			}
			c := formControl{form: form, el: ctl, kind: kind}
			if r, ok := firstMatch(formControlRules, c); ok {
				issues = append(issues, issueAt(idx, ctl, r.id, r.code, r.msg(c)))
			}
		}
		for _, r := range matches(formRules, form) {
			issues = append(issues, issueAt(idx, form, r.id, r.code, r.msg(form)))
		}
	})

	return finish(issues, formBaseline-f.weights.Penalty(issues)), nil
}
