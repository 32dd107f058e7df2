// Package enumerator discovers pages to audit by following links from a
// start URL.
package enumerator

import (
	"context"

	"github.com/raysh454/wcag131/internal/utils"
)

type Enumerator interface {
	// Enumerate returns target followed by the pages reachable from it, in
	// discovery order. cb may be nil.
	Enumerate(ctx context.Context, target string, cb utils.ProgressCallback) ([]string, error)
}
