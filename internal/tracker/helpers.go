package tracker

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/raysh454/wcag131/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// applySchema applies the SQLite schema to the database and sets appropriate pragmas.
func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL", // Balance between safety and performance
		"PRAGMA foreign_keys=ON",    // Enable foreign key constraints
		"PRAGMA busy_timeout=5000",  // Wait up to 5 seconds on locked database
		"PRAGMA cache_size=-16000",  // 16MB cache (negative means KB)
		"PRAGMA temp_store=MEMORY",  // Store temp tables in memory
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}

	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// diffReports compares base and head per category. Categories are listed in
// head order, followed by any that only the base has. A nil base is treated
// as an empty report.
func diffReports(base, head *model.Report) *model.AuditDiff {
	out := &model.AuditDiff{HeadID: head.ID, Categories: []model.CategoryDiff{}}
	if base == nil {
		base = &model.Report{}
	} else {
		out.BaseID = base.ID
	}

	seen := make(map[model.Category]bool)
	order := make([]model.Category, 0, len(head.Categories))
	for _, cr := range head.Categories {
		seen[cr.Category] = true
		order = append(order, cr.Category)
	}
	for _, cr := range base.Categories {
		if !seen[cr.Category] {
			order = append(order, cr.Category)
		}
	}

	dmp := diffmatchpatch.New()
	for _, c := range order {
		b, h := base.Result(c), head.Result(c)
		cd := model.CategoryDiff{Category: c, Chunks: []model.Chunk{}}
		if b != nil {
			cd.BaseStatus, cd.BaseConfidence = b.Status, b.Confidence
		}
		if h != nil {
			cd.HeadStatus, cd.HeadConfidence = h.Status, h.Confidence
		}
		cd.ConfidenceDelta = cd.HeadConfidence - cd.BaseConfidence
		cd.Chunks = issueChunks(dmp, issueText(b), issueText(h))
		out.Categories = append(out.Categories, cd)
	}
	return out
}

// issueChunks diffs two issue listings line by line.
func issueChunks(dmp *diffmatchpatch.DiffMatchPatch, base, head string) []model.Chunk {
	a, b, lines := dmp.DiffLinesToChars(base, head)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	chunks := make([]model.Chunk, 0)
	for _, d := range diffs {
		var chunkType string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunkType = "added"
		case diffmatchpatch.DiffDelete:
			chunkType = "removed"
		case diffmatchpatch.DiffEqual:
			continue
		}
		if strings.TrimSpace(d.Text) != "" {
			chunks = append(chunks, model.Chunk{Type: chunkType, Content: d.Text})
		}
	}
	return chunks
}

// issueText renders one line per issue. Element indexes and snippets are left
// out so that an unrelated edit elsewhere in the page does not show up.
func issueText(r *model.CategoryResult) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, is := range r.Issues {
		if is.Tag != "" {
			fmt.Fprintf(&sb, "[%s] <%s> %s\n", is.Code, is.Tag, is.Message)
		} else {
			fmt.Fprintf(&sb, "[%s] %s\n", is.Code, is.Message)
		}
	}
	return sb.String()
}
