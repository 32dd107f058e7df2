package checks_test

import (
	"strings"
	"testing"

	"github.com/raysh454/wcag131/internal/model"
)

func TestHeading_SkippedLevel(t *testing.T) {
	t.Parallel()
	res := check(t, model.CategoryHeading, `<h1>x</h1><h3>y</h3>`)

	if res.IssueCount != 1 {
		t.Fatalf("issues = %+v, want exactly one", res.Issues)
	}
	is := res.Issues[0]
	if !strings.EqualFold(strings.TrimSuffix(is.Message, "."), "skipped heading levels from h1 to h3") {
		t.Errorf("message = %q", is.Message)
	}
	if is.Code != model.CodeHeading || is.ElementIndex != 2 || is.Tag != "h3" {
		t.Errorf("issue = %+v", is)
	}
	if hasRule(res, "first-heading-not-h1") {
		t.Error("first heading was h1, no first-heading issue expected")
	}
	// (95 - 5) * (1 - 1/2)
	assertConfidence(t, res, 45)
}

func TestHeading_FirstHeadingNotH1(t *testing.T) {
	t.Parallel()
	res := check(t, model.CategoryHeading, `<h2>only</h2>`)
	if !hasRule(res, "first-heading-not-h1") {
		t.Fatalf("expected first heading issue, got %+v", res.Issues)
	}
	if !strings.Contains(strings.ToLower(res.Issues[0].Message), "first heading should be h1") {
		t.Errorf("message = %q", res.Issues[0].Message)
	}
	assertConfidence(t, res, 0)
}

func TestHeading_FirstMatchWins(t *testing.T) {
	t.Parallel()
	// Missing aria-level outranks the first-heading rule.
	res := check(t, model.CategoryHeading, `<div role="heading">Intro</div>`)
	if res.IssueCount != 1 || res.Issues[0].Rule != "missing-aria-level" || res.Issues[0].Code != model.CodeARIA12 {
		t.Fatalf("issues = %+v", res.Issues)
	}
	// Repetition outranks everything, even an invalid level.
	res = check(t, model.CategoryHeading, `<h1>Same</h1><span role="heading" aria-level="0">Same</span>`)
	if res.IssueCount != 1 || res.Issues[0].Rule != "repetitive-heading" {
		t.Fatalf("issues = %+v", res.Issues)
	}
}

func TestHeading_ARIALevels(t *testing.T) {
	t.Parallel()
	res := check(t, model.CategoryHeading,
		`<h1>Top</h1><div role="heading" aria-level="2">Sub</div><div role="heading" aria-level="seven">Bad</div>`)
	if res.IssueCount != 1 {
		t.Fatalf("issues = %+v", res.Issues)
	}
	is := res.Issues[0]
	if is.Message != `Invalid aria-level "seven". Must be between 1 and 6.` || is.Code != model.CodeARIA12 {
		t.Errorf("issue = %+v", is)
	}
	// (95 - 10) * (1 - 1/3)
	assertConfidence(t, res, 85.0*2/3)

	res = check(t, model.CategoryHeading, `<h1>Top</h1><p role="heading" aria-level="2">  </p>`)
	if res.IssueCount != 1 || res.Issues[0].Code != model.CodeDescriptive {
		t.Fatalf("issues = %+v", res.Issues)
	}
}

func TestHeading_ARIALevelParsing(t *testing.T) {
	t.Parallel()
	tests := []struct {
		level string
		want  string
	}{
		{`aria-level=""`, "missing-aria-level"},
		{`aria-level=" 2"`, "invalid-aria-level"},
		{`aria-level="+2"`, "invalid-aria-level"},
		{`aria-level="2 "`, "invalid-aria-level"},
		{`aria-level="-1"`, "invalid-aria-level"},
		{`aria-level="02"`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()
			res := check(t, model.CategoryHeading, `<h1>Top</h1><div role="heading" `+tt.level+`>Sub</div>`)
			if tt.want == "" {
				if res.IssueCount != 0 {
					t.Fatalf("issues = %+v", res.Issues)
				}
				return
			}
			if res.IssueCount != 1 || res.Issues[0].Rule != tt.want {
				t.Fatalf("issues = %+v, want one %s", res.Issues, tt.want)
			}
		})
	}
}

func TestHeading_IgnoresGenericContainers(t *testing.T) {
	t.Parallel()
	res := check(t, model.CategoryHeading, `<div>Looks like a title</div><span>x</span><h1>Real</h1><h2>Next</h2>`)
	if res.Status != model.StatusPassed {
		t.Fatalf("status = %s, issues %+v", res.Status, res.Issues)
	}
	assertConfidence(t, res, 95)
}

func TestHeading_UndeterminedLevelKeepsPrevious(t *testing.T) {
	t.Parallel()
	// The broken aria heading does not reset the running level, so h2 is fine.
	res := check(t, model.CategoryHeading, `<h1>A</h1><div role="heading">B</div><h2>C</h2>`)
	if res.IssueCount != 1 || res.Issues[0].Rule != "missing-aria-level" {
		t.Fatalf("issues = %+v", res.Issues)
	}
}

func TestHeading_LineNumbers(t *testing.T) {
	t.Parallel()
	res := check(t, model.CategoryHeading, "<html><body>\n<h1>a</h1>\n\n<h4>b</h4>\n</body></html>")
	if res.IssueCount != 1 || res.Issues[0].LineNumber != 4 {
		t.Fatalf("issues = %+v", res.Issues)
	}
}
