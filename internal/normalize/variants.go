package normalize

import (
	"strconv"
	"strings"

	"github.com/dropflow/product-extractor/internal/models"
	"github.com/dropflow/product-extractor/internal/parse"
)

// Variant builds a canonical variant axis, synthesizing positional IDs
// for values whose source carries no stable identifier.
func Variant(name string, values []models.VariantValue) models.Variant {
	for i := range values {
		if values[i].ID == "" {
			values[i].ID = strconv.Itoa(i)
		}
	}
	return models.Variant{Name: name, Values: values}
}

// VariantsFromSKUProperties maps the AliExpress skuPropertyValues shape
// (a list of property objects, each with a value list) into canonical
// variants. Unknown or partially filled entries are kept as long as a
// display name can be resolved.
func VariantsFromSKUProperties(raw []any) []models.Variant {
	variants := make([]models.Variant, 0, len(raw))

	for _, propAny := range raw {
		prop, ok := propAny.(map[string]any)
		if !ok {
			continue
		}

		name, _ := parse.LookupString(prop, "skuPropertyName", "name")
		if name == "" {
			name = "Opción"
		}

		rawValues, ok := parse.LookupSlice(prop, "skuPropertyValues", "values")
		if !ok {
			continue
		}

		values := make([]models.VariantValue, 0, len(rawValues))
		for _, valueAny := range rawValues {
			value, ok := valueAny.(map[string]any)
			if !ok {
				continue
			}

			display, _ := parse.LookupString(value, "propertyValueDisplayName", "propertyValueName", "name")
			if display == "" {
				continue
			}

			id, _ := parse.LookupString(value, "propertyValueId", "propertyValueIdLong", "id")
			image, _ := parse.LookupString(value, "skuPropertyImagePath", "image")
			if strings.HasPrefix(image, "//") {
				image = "https:" + image
			}

			values = append(values, models.VariantValue{
				ID:          id,
				DisplayName: display,
				ImageURL:    image,
			})
		}

		if len(values) > 0 {
			variants = append(variants, Variant(name, values))
		}
	}

	return variants
}

// SpecPair is one attribute row extracted from a spec table.
type SpecPair struct {
	Name  string
	Value string
}

// Specifications folds spec rows into the canonical key->value mapping.
// No platform guarantees key uniqueness in its markup, so later
// duplicates overwrite earlier ones.
func Specifications(pairs []SpecPair) map[string]string {
	specs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(pair.Name), ":"))
		value := strings.TrimSpace(pair.Value)
		if name == "" || value == "" {
			continue
		}
		specs[name] = value
	}
	return specs
}
