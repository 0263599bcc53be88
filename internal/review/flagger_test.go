package review

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dropflow/product-extractor/internal/models"
)

func TestFlagCompleteRecord(t *testing.T) {
	rec := models.NewCanonicalProduct(models.PlatformAliExpress, "https://es.aliexpress.com/item/1.html")
	rec.Name = "Funda Transparente"
	rec.Price = decimal.RequireFromString("12.99")
	rec.Images = []string{"https://ae01.alicdn.com/kf/a.jpg"}

	Flag(rec)

	assert.False(t, rec.NeedsManualReview)
	assert.Empty(t, rec.ReviewReasons)
}

func TestFlagCollectsEveryFiringRule(t *testing.T) {
	rec := models.NewCanonicalProduct(models.PlatformAliExpress, "https://es.aliexpress.com/item/1.html")

	Flag(rec)

	assert.True(t, rec.NeedsManualReview)
	assert.Equal(t, []string{ReasonNoTitle, ReasonNoPrice, ReasonNoImages}, rec.ReviewReasons)
}

func TestFlagPlaceholderNameCountsAsMissing(t *testing.T) {
	rec := models.NewCanonicalProduct(models.PlatformAliExpress, "https://es.aliexpress.com/item/1.html")
	rec.Name = "Producto Importado de AliExpress"
	rec.Price = decimal.RequireFromString("9.90")
	rec.Images = []string{"https://ae01.alicdn.com/kf/a.jpg"}

	Flag(rec)

	assert.True(t, rec.NeedsManualReview)
	assert.Equal(t, []string{ReasonNoTitle}, rec.ReviewReasons)
}

func TestFlagIndependentRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(rec *models.CanonicalProduct)
		expected []string
	}{
		{
			name: "only price missing",
			mutate: func(rec *models.CanonicalProduct) {
				rec.Name = "Widget"
				rec.Images = []string{"https://cdn.example.com/a.jpg"}
			},
			expected: []string{ReasonNoPrice},
		},
		{
			name: "only images missing",
			mutate: func(rec *models.CanonicalProduct) {
				rec.Name = "Widget"
				rec.Price = decimal.RequireFromString("3.50")
			},
			expected: []string{ReasonNoImages},
		},
		{
			name: "price and images missing",
			mutate: func(rec *models.CanonicalProduct) {
				rec.Name = "Widget"
			},
			expected: []string{ReasonNoPrice, ReasonNoImages},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := models.NewCanonicalProduct(models.PlatformGeneric, "https://shop.example.com/p/1")
			tt.mutate(rec)

			Flag(rec)

			assert.True(t, rec.NeedsManualReview)
			assert.Equal(t, tt.expected, rec.ReviewReasons)
		})
	}
}
