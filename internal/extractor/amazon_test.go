package extractor

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropflow/product-extractor/internal/models"
)

const amazonFixture = `<html><body>
<span id="productTitle"> Soporte de Celular para Auto </span>
<div id="corePrice_feature_div"><span class="a-price"><span class="a-offscreen">$15.99</span></span></div>
<script>
var obj = jQuery.parseJSON('{"dataInJson":null}');
P.when('A').register("ImageBlockATF", function(A){
    var data = {
        colorImages: { initial: [
            {"hiRes":"https://m.media-amazon.com/images/I/71one._AC_SL1500_.jpg","large":"https://m.media-amazon.com/images/I/71one._AC_SX466_.jpg"},
            {"hiRes":"https://m.media-amazon.com/images/I/71two._AC_SL1500_.jpg","large":"https://m.media-amazon.com/images/I/71two._AC_SX466_.jpg"}
        ]}
    };
});
</script>
<div id="feature-bullets"><ul>
<li> Rotación de 360 grados </li>
<li> Compatible con todos los teléfonos </li>
</ul></div>
<div id="variation_color_name"><ul>
<li title="Click to select Negro" data-defaultasin="B0C111AAAA"><img src="https://m.media-amazon.com/images/I/negro._AC_SR38,50_.jpg" alt="Negro"></li>
<li title="Click to select Gris" data-defaultasin="B0C222BBBB"><img src="https://m.media-amazon.com/images/I/gris._AC_SR38,50_.jpg" alt="Gris"></li>
</ul></div>
<div id="variation_size_name"><select>
<option value="-1">Select Size</option>
<option value="B0C333CCCC">Grande</option>
</select></div>
<table id="productDetails_techSpec_section_1">
<tr><th>Marca</th><td>GenericBrand</td></tr>
<tr><th>Material</th><td>ABS</td></tr>
</table>
</body></html>`

func TestAmazonExtract(t *testing.T) {
	rec := newTestRecord(models.PlatformAmazon)
	newAmazonExtractor(slog.Default()).extract(newPage(amazonFixture), rec)

	assert.Equal(t, "Soporte de Celular para Auto", rec.Name)
	assert.Equal(t, "15.99", rec.Price.String())
	assert.Equal(t, "USD", rec.Currency)

	// hiRes wins over large; the size token is already the big rendition.
	assert.Equal(t, []string{
		"https://m.media-amazon.com/images/I/71one._AC_SL1500_.jpg",
		"https://m.media-amazon.com/images/I/71two._AC_SL1500_.jpg",
	}, rec.Images)

	assert.Contains(t, rec.Description, "Rotación de 360 grados")
	assert.Contains(t, rec.Description, "Compatible con todos los teléfonos")

	require.Len(t, rec.Variants, 2)

	color := rec.Variants[0]
	assert.Equal(t, "Color", color.Name)
	require.Len(t, color.Values, 2)
	assert.Equal(t, "Negro", color.Values[0].DisplayName)
	assert.Equal(t, "B0C111AAAA", color.Values[0].ID)

	size := rec.Variants[1]
	assert.Equal(t, "Size", size.Name)
	require.Len(t, size.Values, 1)
	assert.Equal(t, "Grande", size.Values[0].DisplayName)
	assert.Equal(t, "B0C333CCCC", size.Values[0].ID)

	assert.Equal(t, map[string]string{"Marca": "GenericBrand", "Material": "ABS"}, rec.Specifications)
}

func TestAmazonLandingImageFallback(t *testing.T) {
	html := `<html><body>
<span id="productTitle">Producto</span>
<img id="landingImage" data-old-hires="https://m.media-amazon.com/images/I/hires.jpg" src="https://m.media-amazon.com/images/I/small.jpg">
</body></html>`

	rec := newTestRecord(models.PlatformAmazon)
	newAmazonExtractor(slog.Default()).extract(newPage(html), rec)

	assert.Equal(t, []string{"https://m.media-amazon.com/images/I/hires.jpg"}, rec.Images)
}

func TestAmazonDetailBullets(t *testing.T) {
	html := `<html><body>
<span id="productTitle">Producto</span>
<div id="detailBullets_feature_div"><ul>
<li><span>Dimensiones del paquete</span> : <span>10 x 5 x 2 cm</span></li>
<li><span>Fabricante</span> : <span>ACME</span></li>
<li><span>sin separador</span></li>
</ul></div>
</body></html>`

	rec := newTestRecord(models.PlatformAmazon)
	newAmazonExtractor(slog.Default()).extract(newPage(html), rec)

	assert.Equal(t, map[string]string{
		"Dimensiones del paquete": "10 x 5 x 2 cm",
		"Fabricante":              "ACME",
	}, rec.Specifications)
}

func TestAmazonEmptyPageKeepsDefaults(t *testing.T) {
	rec := newTestRecord(models.PlatformAmazon)
	newAmazonExtractor(slog.Default()).extract(newPage("<html><body></body></html>"), rec)

	assert.Equal(t, models.PlatformAmazon.DefaultName(), rec.Name)
	assert.True(t, rec.Price.IsZero())
	assert.Empty(t, rec.Images)
	assert.Empty(t, rec.Variants)
}
