package catalog

// Product is the canonical form of one provider product notification.
type Product struct {
	ID       string
	Title    string
	Handle   string
	Variants []Variant
}

type Variant struct {
	ID        string
	ProductID string
	Title     string
	SKU       string
	// Price is in minor currency units (cents).
	Price int64
}

// Primary returns the first variant. Normalize guarantees one exists.
func (p Product) Primary() Variant {
	return p.Variants[0]
}
