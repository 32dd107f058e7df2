package model

// Chunk is a single change in a diff.
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// CategoryDiff describes how one category changed between two audits.
type CategoryDiff struct {
	Category        Category `json:"category"`
	BaseStatus      Status   `json:"base_status"`
	HeadStatus      Status   `json:"head_status"`
	BaseConfidence  float64  `json:"base_confidence"`
	HeadConfidence  float64  `json:"head_confidence"`
	ConfidenceDelta float64  `json:"confidence_delta"`
	Chunks          []Chunk  `json:"chunks"`
}

// AuditDiff compares two stored reports category by category.
type AuditDiff struct {
	BaseID     string         `json:"base_id"`
	HeadID     string         `json:"head_id"`
	Categories []CategoryDiff `json:"categories"`
}

// Changed reports whether any category moved.
func (d *AuditDiff) Changed() bool {
	for _, c := range d.Categories {
		if c.BaseStatus != c.HeadStatus || c.ConfidenceDelta != 0 || len(c.Chunks) > 0 {
			return true
		}
	}
	return false
}
