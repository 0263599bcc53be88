package extractor

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/dropflow/product-extractor/internal/models"
)

// ErrInvalidURL is the only error ExtractProduct surfaces to callers:
// the input could not be parsed as a URL at all. An unrecognized host is
// not an error; it routes to the generic extractor.
var ErrInvalidURL = errors.New("invalid product URL")

type hostRule struct {
	fragment string
	platform models.Platform
}

// Ordered: first matching fragment wins.
var hostRules = []hostRule{
	{"aliexpress", models.PlatformAliExpress},
	{"amazon", models.PlatformAmazon},
	{"amzn", models.PlatformAmazon},
	{"alibaba", models.PlatformAlibaba},
	{"cjdropshipping", models.PlatformCJ},
}

// Classify parses the URL host case-insensitively and routes it to a
// platform. Pure dispatch, no I/O.
func Classify(rawURL string) (models.Platform, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: missing scheme or host", ErrInvalidURL)
	}

	host := strings.ToLower(parsed.Host)
	for _, rule := range hostRules {
		if strings.Contains(host, rule.fragment) {
			return rule.platform, nil
		}
	}

	return models.PlatformGeneric, nil
}

var (
	aliExpressIDPattern = regexp.MustCompile(`/(?:item/|i/)(\d+)`)
	amazonIDPattern     = regexp.MustCompile(`/(?:dp|gp/product|product)/([A-Z0-9]{10})`)
	alibabaIDPattern    = regexp.MustCompile(`[_/](\d{6,})\.html`)
	cjIDPattern         = regexp.MustCompile(`-p-([A-Za-z0-9-]+)\.html`)
)

// externalID pulls the supplier-side product identifier out of the URL
// path. Platforms without a recognizable pattern yield nil.
func externalID(platform models.Platform, rawURL string) *string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	path := parsed.Path

	var pattern *regexp.Regexp
	switch platform {
	case models.PlatformAliExpress:
		pattern = aliExpressIDPattern
	case models.PlatformAmazon:
		pattern = amazonIDPattern
	case models.PlatformAlibaba:
		pattern = alibabaIDPattern
	case models.PlatformCJ:
		pattern = cjIDPattern
	default:
		return nil
	}

	matches := pattern.FindStringSubmatch(path)
	if len(matches) < 2 {
		return nil
	}
	id := matches[1]
	return &id
}
