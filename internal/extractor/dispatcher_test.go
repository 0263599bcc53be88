package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropflow/product-extractor/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected models.Platform
		wantErr  bool
	}{
		{name: "aliexpress es", url: "https://es.aliexpress.com/item/1005001234567890.html", expected: models.PlatformAliExpress},
		{name: "aliexpress short", url: "https://aliexpress.com/i/123456.html", expected: models.PlatformAliExpress},
		{name: "amazon com", url: "https://www.amazon.com/dp/B08N5WRWNW", expected: models.PlatformAmazon},
		{name: "amazon short link", url: "https://amzn.to/3xYz", expected: models.PlatformAmazon},
		{name: "amazon mx", url: "https://www.amazon.com.mx/gp/product/B08N5WRWNW", expected: models.PlatformAmazon},
		{name: "alibaba", url: "https://www.alibaba.com/product-detail/Wholesale-Case_1600123456789.html", expected: models.PlatformAlibaba},
		{name: "cj", url: "https://cjdropshipping.com/product/some-case-p-ABC123.html", expected: models.PlatformCJ},
		{name: "case-insensitive host", url: "https://ES.ALIEXPRESS.COM/item/1.html", expected: models.PlatformAliExpress},
		{name: "unknown host routes to generic", url: "https://mystore.example.com/products/case", expected: models.PlatformGeneric},
		{name: "missing scheme", url: "aliexpress.com/item/1.html", wantErr: true},
		{name: "empty", url: "", wantErr: true},
		{name: "whitespace only", url: "   ", wantErr: true},
		{name: "not a url", url: "http://%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform, err := Classify(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, platform)
		})
	}
}

func TestExternalID(t *testing.T) {
	tests := []struct {
		name     string
		platform models.Platform
		url      string
		expected string
		none     bool
	}{
		{name: "aliexpress item", platform: models.PlatformAliExpress, url: "https://es.aliexpress.com/item/1005001234567890.html", expected: "1005001234567890"},
		{name: "aliexpress short path", platform: models.PlatformAliExpress, url: "https://aliexpress.com/i/4000123.html", expected: "4000123"},
		{name: "amazon dp", platform: models.PlatformAmazon, url: "https://www.amazon.com/dp/B08N5WRWNW", expected: "B08N5WRWNW"},
		{name: "amazon gp product", platform: models.PlatformAmazon, url: "https://www.amazon.com/gp/product/B000123456?th=1", expected: "B000123456"},
		{name: "alibaba", platform: models.PlatformAlibaba, url: "https://www.alibaba.com/product-detail/Case_1600123456789.html", expected: "1600123456789"},
		{name: "cj", platform: models.PlatformCJ, url: "https://cjdropshipping.com/product/phone-case-p-1A2B3C.html", expected: "1A2B3C"},
		{name: "generic has no pattern", platform: models.PlatformGeneric, url: "https://shop.example.com/p/42", none: true},
		{name: "aliexpress without id", platform: models.PlatformAliExpress, url: "https://es.aliexpress.com/category/phones.html", none: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := externalID(tt.platform, tt.url)
			if tt.none {
				assert.Nil(t, id)
				return
			}
			require.NotNil(t, id)
			assert.Equal(t, tt.expected, *id)
		})
	}
}
