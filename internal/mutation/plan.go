package mutation

import "github.com/garrettladley/shopsync/internal/catalog"

const (
	DocTypeProduct = "product"
	DocTypeVariant = "productVariant"
)

// Synced fields are owned by the provider and overwritten on every delivery.
const (
	FieldProductTitle = "productTitle"
	FieldProductID    = "productID"
	FieldVariantTitle = "variantTitle"
	FieldVariantID    = "variantID"
	FieldPrice        = "price"
	FieldSKU          = "sku"
	FieldWasDeleted   = "wasDeleted"
)

// Editor fields are seeded once and then owned by catalog editors.
const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldSlugCurrent = "current"
)

func ProductKey(id string) string { return "product-" + id }

func VariantKey(id string) string { return "variant-" + id }

// Plan derives the mutation set for a product. It performs no I/O and equal
// products always produce equal sets. Product mutations precede variant
// mutations.
func Plan(p catalog.Product) Set {
	primary := p.Primary()
	productKey := ProductKey(p.ID)

	mutations := make([]Mutation, 0, 3*(1+len(p.Variants)))
	mutations = append(mutations,
		CreateIfAbsent(productKey, DocTypeProduct),
		SetFields(productKey, Fields{
			FieldProductTitle: p.Title,
			FieldProductID:    p.ID,
			FieldVariantID:    primary.ID,
			FieldPrice:        primary.Price,
			FieldSKU:          primary.SKU,
			FieldWasDeleted:   false,
		}),
		SetFieldsIfAbsent(productKey, Fields{
			FieldTitle: p.Title,
			FieldSlug:  map[string]any{FieldSlugCurrent: p.Handle},
		}),
	)

	for _, v := range p.Variants {
		variantKey := VariantKey(v.ID)
		mutations = append(mutations,
			CreateIfAbsent(variantKey, DocTypeVariant),
			SetFields(variantKey, Fields{
				FieldProductTitle: p.Title,
				FieldProductID:    p.ID,
				FieldVariantTitle: v.Title,
				FieldVariantID:    v.ID,
				FieldPrice:        v.Price,
				FieldSKU:          v.SKU,
				FieldWasDeleted:   false,
			}),
			SetFieldsIfAbsent(variantKey, Fields{
				FieldTitle: v.Title,
			}),
		)
	}

	return Set{mutations: mutations}
}
