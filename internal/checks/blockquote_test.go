package checks_test

import (
	"testing"

	"github.com/raysh454/wcag131/internal/model"
)

func TestBlockquote_Attribution(t *testing.T) {
	t.Parallel()
	res := check(t, model.CategoryBlockquote,
		`<blockquote aria-labelledby="q"><p>Quote</p><footer>Someone</footer></blockquote>`)
	if res.Status != model.StatusPassed {
		t.Fatalf("footer should count as attribution: %+v", res.Issues)
	}
	assertConfidence(t, res, 100)
}

func TestBlockquote_SeparateIssuesSharedScore(t *testing.T) {
	t.Parallel()
	res := check(t, model.CategoryBlockquote, `<blockquote>q</blockquote>`)
	if res.IssueCount != 2 {
		t.Fatalf("issues = %+v", res.Issues)
	}
	for _, is := range res.Issues {
		if is.Code != model.CodeBlockquote || is.Confidence != 60 {
			t.Errorf("issue = %+v", is)
		}
	}
	assertConfidence(t, res, 60)
}

func TestBlockquote_MeanOfScoredQuotes(t *testing.T) {
	t.Parallel()
	res := check(t, model.CategoryBlockquote, `
		<blockquote cite="https://a.example">one</blockquote>
		<blockquote>two</blockquote>
		<blockquote cite="https://b.example" aria-describedby="d">three</blockquote>`)
	if res.IssueCount != 3 {
		t.Fatalf("issues = %+v", res.Issues)
	}
	// Clean quotes are left out of the mean: (80 + 60) / 2
	assertConfidence(t, res, 70)
}

func TestBlockquote_EmptyCiteCountsAsMissing(t *testing.T) {
	t.Parallel()
	res := check(t, model.CategoryBlockquote, `<blockquote cite="" aria-describedby="d">q</blockquote>`)
	if !hasRule(res, "blockquote-attribution") {
		t.Fatalf("issues = %+v", res.Issues)
	}
}
