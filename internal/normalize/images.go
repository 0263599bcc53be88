package normalize

import (
	"regexp"
	"strings"

	"github.com/dropflow/product-extractor/internal/models"
)

var (
	// Thumbnail suffixes not worth importing, e.g. foo.jpg_50x50.jpg.
	thumbnailPattern = regexp.MustCompile(`_(?:32x32|50x50|64x64|80x80|100x100|120x120)(?:xz)?\.(?:jpg|jpeg|png|webp)`)

	// AliExpress-style resolution suffix appended after the real file
	// name: foo.jpg_640x640.jpg -> foo.jpg.
	aliResolutionSuffix = regexp.MustCompile(`\.(jpg|jpeg|png|webp)_[0-9]+x[0-9]+(?:xz)?\.(?:jpg|jpeg|png|webp)$`)

	// Amazon thumbnail size tokens, replaced with a large rendition.
	amazonSizeToken = regexp.MustCompile(`\._AC_[A-Z]{2}[0-9]+_?[^.]*\.`)
)

// Images normalizes a list of raw URL-like strings pulled from src,
// data-src, data-original or embedded-JSON path lists: protocol-relative
// entries are rewritten to https, non-absolute leftovers dropped, known
// thumbnails discarded, known resolution suffixes upsized, duplicates
// removed preserving first-seen order, and the result capped at the
// platform maximum.
func Images(raw []string, platform models.Platform) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(raw))
	max := platform.MaxImages()

	for _, entry := range raw {
		u := strings.TrimSpace(entry)
		if u == "" {
			continue
		}

		if strings.HasPrefix(u, "//") {
			u = "https:" + u
		}
		if !strings.HasPrefix(u, "http") {
			continue
		}
		if thumbnailPattern.MatchString(u) {
			continue
		}

		u = upsize(u, platform)

		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		result = append(result, u)
		if len(result) >= max {
			break
		}
	}

	return result
}

// upsize swaps a known resolution suffix token for a larger rendition
// where the platform's naming convention is understood.
func upsize(u string, platform models.Platform) string {
	switch platform {
	case models.PlatformAliExpress, models.PlatformAlibaba:
		return aliResolutionSuffix.ReplaceAllString(u, ".$1")
	case models.PlatformAmazon:
		return amazonSizeToken.ReplaceAllString(u, "._AC_SL1500_.")
	default:
		return u
	}
}
