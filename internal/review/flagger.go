// Package review decides whether an assembled record needs a human look
// before it enters the catalog.
package review

import (
	"github.com/dropflow/product-extractor/internal/models"
)

const (
	ReasonNoTitle  = "title not extracted"
	ReasonNoPrice  = "price not extracted"
	ReasonNoImages = "no images found"
)

// Flag inspects the assembled record and sets the manual-review flag.
// The rules are independent; every one that fires is listed, not just the
// first. Flag never fails and touches nothing beyond the review fields.
func Flag(p *models.CanonicalProduct) {
	var reasons []string

	if p.Name == "" || p.Name == p.Platform.DefaultName() {
		reasons = append(reasons, ReasonNoTitle)
	}
	if p.Price.IsZero() {
		reasons = append(reasons, ReasonNoPrice)
	}
	if len(p.Images) == 0 {
		reasons = append(reasons, ReasonNoImages)
	}

	if len(reasons) > 0 {
		p.NeedsManualReview = true
		p.ReviewReasons = reasons
	}
}
