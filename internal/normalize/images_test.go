package normalize

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropflow/product-extractor/internal/models"
)

func TestImages(t *testing.T) {
	tests := []struct {
		name     string
		raw      []string
		platform models.Platform
		expected []string
	}{
		{
			name:     "protocol-relative rewritten to https",
			raw:      []string{"//ae01.alicdn.com/kf/a.jpg", "https://ae01.alicdn.com/kf/b.jpg"},
			platform: models.PlatformAliExpress,
			expected: []string{"https://ae01.alicdn.com/kf/a.jpg", "https://ae01.alicdn.com/kf/b.jpg"},
		},
		{
			name:     "relative and empty entries dropped",
			raw:      []string{"", "  ", "/images/x.jpg", "data:image/png;base64,xyz", "https://cdn.example.com/p.jpg"},
			platform: models.PlatformGeneric,
			expected: []string{"https://cdn.example.com/p.jpg"},
		},
		{
			name: "duplicates removed preserving first-seen order",
			raw: []string{
				"https://cdn.example.com/1.jpg",
				"https://cdn.example.com/2.jpg",
				"https://cdn.example.com/1.jpg",
			},
			platform: models.PlatformGeneric,
			expected: []string{"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg"},
		},
		{
			name: "thumbnails discarded",
			raw: []string{
				"https://ae01.alicdn.com/kf/a.jpg_50x50.jpg",
				"https://ae01.alicdn.com/kf/b.jpg",
			},
			platform: models.PlatformAliExpress,
			expected: []string{"https://ae01.alicdn.com/kf/b.jpg"},
		},
		{
			name:     "aliexpress resolution suffix upsized",
			raw:      []string{"https://ae01.alicdn.com/kf/a.jpg_640x640.jpg"},
			platform: models.PlatformAliExpress,
			expected: []string{"https://ae01.alicdn.com/kf/a.jpg"},
		},
		{
			name:     "amazon size token upsized",
			raw:      []string{"https://m.media-amazon.com/images/I/71abc._AC_SX466_.jpg"},
			platform: models.PlatformAmazon,
			expected: []string{"https://m.media-amazon.com/images/I/71abc._AC_SL1500_.jpg"},
		},
		{
			name: "upsizing collapses duplicate renditions",
			raw: []string{
				"https://ae01.alicdn.com/kf/a.jpg_640x640.jpg",
				"https://ae01.alicdn.com/kf/a.jpg_960x960.jpg",
			},
			platform: models.PlatformAliExpress,
			expected: []string{"https://ae01.alicdn.com/kf/a.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Images(tt.raw, tt.platform))
		})
	}
}

func TestImagesCap(t *testing.T) {
	raw := make([]string, 30)
	for i := range raw {
		raw[i] = fmt.Sprintf("https://cdn.example.com/%d.jpg", i)
	}

	assert.Len(t, Images(raw, models.PlatformAliExpress), 10)
	assert.Len(t, Images(raw, models.PlatformGeneric), 10)
	assert.Len(t, Images(raw, models.PlatformAmazon), 20)
	assert.Len(t, Images(raw, models.PlatformAlibaba), 20)
}

func TestImagesAllAbsoluteHTTPS(t *testing.T) {
	raw := []string{
		"//ae01.alicdn.com/kf/a.jpg",
		"http://ae01.alicdn.com/kf/b.jpg",
		"https://ae01.alicdn.com/kf/c.jpg",
		"kf/d.jpg",
	}

	for _, u := range Images(raw, models.PlatformAliExpress) {
		assert.True(t, strings.HasPrefix(u, "http"), "not absolute: %s", u)
	}
}
