package extractor

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropflow/product-extractor/internal/models"
)

func TestAlibabaLadderFromPayload(t *testing.T) {
	html := `<html><body><script>
window.detailData = {
    globalData: {
        product: {
            subject: "Wholesale Phone Case",
            price: {
                productLadderPrices: [
                    { min: "1", price: "5.00" },
                    { min: "100", price: "4.50" }
                ]
            },
            mediaItems: [
                { type: "image", imageUrl: { big: "https://s.alicdn.com/case-big.jpg" } },
                { type: "video", videoUrl: "https://s.alicdn.com/case.mp4" },
                { type: "image", imageUrl: { big: "https://s.alicdn.com/case2-big.jpg" } }
            ],
            productBasicProperties: [
                { attrName: "Material", attrValue: "TPU" }
            ]
        }
    }
};
</script></body></html>`

	rec := newTestRecord(models.PlatformAlibaba)
	newAlibabaExtractor(slog.Default()).extract(newPage(html), rec)

	assert.Equal(t, "Wholesale Phone Case", rec.Name)

	require.Len(t, rec.PriceTiers, 2)
	assert.Equal(t, 1, rec.PriceTiers[0].MinQuantity)
	assert.Equal(t, "5", rec.PriceTiers[0].Price.String())
	assert.Equal(t, 100, rec.PriceTiers[1].MinQuantity)
	assert.Equal(t, "4.5", rec.PriceTiers[1].Price.String())

	// Representative price is the lowest-quantity tier, not the cheapest.
	assert.Equal(t, "5", rec.Price.String())

	// Video entries are skipped.
	assert.Equal(t, []string{
		"https://s.alicdn.com/case-big.jpg",
		"https://s.alicdn.com/case2-big.jpg",
	}, rec.Images)

	assert.Equal(t, map[string]string{"Material": "TPU"}, rec.Specifications)
}

func TestAlibabaLadderFromDOM(t *testing.T) {
	html := `<html><body>
<h1 class="product-title">Caja al Por Mayor</h1>
<div class="ladder-price">
  <div class="ladder-item"><span class="quantity">1 - 99 pieces</span><span class="price">$5.00</span></div>
  <div class="ladder-item"><span class="quantity">>= 100 pieces</span><span class="price">$4.50</span></div>
</div>
</body></html>`

	rec := newTestRecord(models.PlatformAlibaba)
	newAlibabaExtractor(slog.Default()).extract(newPage(html), rec)

	require.Len(t, rec.PriceTiers, 2)
	assert.Equal(t, 1, rec.PriceTiers[0].MinQuantity)
	assert.Equal(t, 100, rec.PriceTiers[1].MinQuantity)
	assert.Equal(t, "5", rec.Price.String())
}

func TestAlibabaSingleTierOrderPreserved(t *testing.T) {
	// Unsorted source order must survive into the record.
	html := `<html><body><script>
window.detailData = {
    globalData: { product: { productLadderPrices: [
        { min: "500", price: "3.20" },
        { min: "1", price: "5.00" },
        { min: "100", price: "4.50" }
    ]}}
};
</script></body></html>`

	rec := newTestRecord(models.PlatformAlibaba)
	newAlibabaExtractor(slog.Default()).extract(newPage(html), rec)

	require.Len(t, rec.PriceTiers, 3)
	assert.Equal(t, 500, rec.PriceTiers[0].MinQuantity)
	assert.Equal(t, 1, rec.PriceTiers[1].MinQuantity)
	assert.Equal(t, 100, rec.PriceTiers[2].MinQuantity)
	assert.Equal(t, "5", rec.Price.String())
}

func TestAlibabaVariantsAndDOMSpecs(t *testing.T) {
	html := `<html><body>
<h1>Producto</h1>
<div class="price">$2.00</div>
<div class="sku-prop">
  <div class="sku-prop-name">Color</div>
  <div class="sku-item" title="Rojo" data-sku-id="r1"><img src="https://s.alicdn.com/rojo.jpg" alt="Rojo"></div>
  <div class="sku-item" title="Azul" data-sku-id="a1"></div>
</div>
<div class="do-entry-item">
  <span class="do-entry-item-key">Uso</span>
  <span class="do-entry-item-val">Exterior</span>
</div>
</body></html>`

	rec := newTestRecord(models.PlatformAlibaba)
	newAlibabaExtractor(slog.Default()).extract(newPage(html), rec)

	require.Len(t, rec.Variants, 1)
	color := rec.Variants[0]
	assert.Equal(t, "Color", color.Name)
	require.Len(t, color.Values, 2)
	assert.Equal(t, "r1", color.Values[0].ID)
	assert.Equal(t, "Rojo", color.Values[0].DisplayName)
	assert.Equal(t, "https://s.alicdn.com/rojo.jpg", color.Values[0].ImageURL)

	assert.Equal(t, map[string]string{"Uso": "Exterior"}, rec.Specifications)
}

func TestAlibabaNoLadderFallsBackToPlainPrice(t *testing.T) {
	html := `<html><body>
<h1>Producto</h1>
<div class="price-item"><span class="price">US $7.80</span></div>
</body></html>`

	rec := newTestRecord(models.PlatformAlibaba)
	newAlibabaExtractor(slog.Default()).extract(newPage(html), rec)

	assert.Empty(t, rec.PriceTiers)
	assert.Equal(t, "7.8", rec.Price.String())
	assert.Equal(t, "USD", rec.Currency)
}
