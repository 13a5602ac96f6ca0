package reporting

import "math"

// SupplierProduct is one entry of the supplier catalog snapshot.
type SupplierProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	HasPrice bool    `json:"has_price"`
}

// Product is one entry of the retail product snapshot, with its optional
// supplier linkage.
type Product struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	SupplierProductID string           `json:"supplier_product_id"`
	SupplierProduct   *SupplierProduct `json:"supplier_product,omitempty"`
}

type costEntry struct {
	price float64
	found bool
}

// CostIndex resolves a product identity to its supplier unit cost. It is
// built once per product/supplier-product snapshot and consulted per order
// line by the profit engine. A miss is never an error: the caller assumes
// zero cost and surfaces a diagnostic.
type CostIndex struct {
	byProduct map[string]costEntry
	byName    map[string]float64
}

// BuildCostIndex resolves every product's unit cost using, in priority
// order: the explicit supplier-product link, the embedded supplier-product
// price when numeric, then a case-insensitive name match against the
// supplier catalog.
func BuildCostIndex(products []Product, catalog []SupplierProduct) *CostIndex {
	byID := make(map[string]SupplierProduct, len(catalog))
	byName := make(map[string]float64, len(catalog))
	for _, sp := range catalog {
		if !sp.HasPrice || !isFinite(sp.Price) {
			continue
		}
		if sp.ID != "" {
			byID[sp.ID] = sp
		}
		if name := normToken(sp.Name); name != "" {
			byName[name] = sp.Price
		}
	}

	idx := &CostIndex{
		byProduct: make(map[string]costEntry, len(products)),
		byName:    byName,
	}
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		if sp, ok := byID[p.SupplierProductID]; ok && p.SupplierProductID != "" {
			idx.byProduct[p.ID] = costEntry{price: sp.Price, found: true}
			continue
		}
		if emb := p.SupplierProduct; emb != nil && emb.HasPrice && isFinite(emb.Price) {
			idx.byProduct[p.ID] = costEntry{price: emb.Price, found: true}
			continue
		}
		if price, ok := byName[normToken(p.Name)]; ok {
			idx.byProduct[p.ID] = costEntry{price: price, found: true}
			continue
		}
		idx.byProduct[p.ID] = costEntry{}
	}
	return idx
}

// Lookup returns the unit cost for a product referenced by an order line.
// Lines for products missing from the snapshot still get a name match
// against the supplier catalog before the zero-cost fallback.
func (idx *CostIndex) Lookup(productID, productName string) (float64, bool) {
	if idx == nil {
		return 0, false
	}
	if entry, ok := idx.byProduct[productID]; ok && entry.found {
		return entry.price, true
	}
	if price, ok := idx.byName[normToken(productName)]; ok && productName != "" {
		return price, true
	}
	return 0, false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
