package model

// Status is the verdict of one category evaluation.
type Status string

const (
	StatusNotApplicable Status = "Not Applicable"
	StatusPassed        Status = "Passed"
	StatusMalformed     Status = "Malformed"
	StatusError         Status = "Error"
)

// Issue is one detected rule violation.
type Issue struct {
	// ElementIndex is the 1-based document-order position of the element among
	// the category's candidates. 0 marks document-wide issues.
	ElementIndex int    `json:"element_index"`
	Tag          string `json:"tag,omitempty"`
	HTMLSnippet  string `json:"html_snippet,omitempty"`
	// LineNumber is the 1-based source line of the element's start tag, 0 when unknown.
	LineNumber int    `json:"line_number,omitempty"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	// Rule is the stable identifier of the rule that fired. Scoring weights are keyed by it.
	Rule string `json:"rule"`
	// Confidence is set by categories that score each element individually.
	Confidence float64 `json:"confidence,omitempty"`
}

// CategoryResult is the outcome of evaluating one category on one document.
type CategoryResult struct {
	Status     Status  `json:"status"`
	Issues     []Issue `json:"issues"`
	Confidence float64 `json:"confidence"`
	IssueCount int     `json:"issue_count"`
}

// NotApplicable is the result for documents with no candidates.
func NotApplicable() *CategoryResult {
	return &CategoryResult{Status: StatusNotApplicable, Issues: []Issue{}, Confidence: 100}
}

// Category identifies one of the audited markup families.
type Category string

const (
	CategoryHeading    Category = "heading_markup"
	CategoryList       Category = "list_markup"
	CategoryTable      Category = "table_markup"
	CategoryBlockquote Category = "blockquote_markup"
	CategoryLandmark   Category = "landmark_markup"
	CategoryStructural Category = "structural_markup"
	CategoryForm       Category = "form_markup"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryHeading,
	CategoryList,
	CategoryTable,
	CategoryBlockquote,
	CategoryLandmark,
	CategoryStructural,
	CategoryForm,
}

var categoryNames = map[Category]string{
	CategoryHeading:    "Heading Markup",
	CategoryList:       "List Markup",
	CategoryTable:      "Table Markup",
	CategoryBlockquote: "Blockquote Markup",
	CategoryLandmark:   "Landmark Markup",
	CategoryStructural: "Structural Markup",
	CategoryForm:       "Form Markup",
}

// DisplayName returns the human label, e.g. "Heading Markup".
func (c Category) DisplayName() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return string(c)
}

// ParseCategory accepts either the key ("heading_markup") or the display name.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s || categoryNames[c] == s {
			return c, true
		}
	}
	return "", false
}

// WCAG clause codes used in issues.
const (
	CodeHeading     = "1.3.1 (a)"
	CodeList        = "1.3.1 (b)"
	CodeTable       = "1.3.1 (c)"
	CodeBlockquote  = "1.3.1 (d)"
	CodeLandmark    = "1.3.1 (e)"
	CodeStructural  = "1.3.1 (f)"
	CodeForm        = "1.3.1 (g)"
	CodeARIA12      = "ARIA12"
	CodeDescriptive = "2.4.6"
)
