package reporting

import "testing"

func TestBuildCostIndexFallbackTiers(t *testing.T) {
	catalog := []SupplierProduct{
		{ID: "sp1", Name: "Claw Hammer", Price: 90, HasPrice: true},
		{ID: "sp2", Name: "Wood Screws", Price: 4, HasPrice: true},
		{ID: "sp3", Name: "No Price"},
	}
	products := []Product{
		{ID: "p1", Name: "Hammer Deluxe", SupplierProductID: "sp1"},
		{ID: "p2", Name: "Spanner", SupplierProduct: &SupplierProduct{Price: 55, HasPrice: true}},
		{ID: "p3", Name: "wood screws "},
		{ID: "p4", Name: "Mystery Bolt"},
	}
	idx := BuildCostIndex(products, catalog)

	if price, ok := idx.Lookup("p1", ""); !ok || price != 90 {
		t.Fatalf("explicit link lookup = %v,%v", price, ok)
	}
	if price, ok := idx.Lookup("p2", ""); !ok || price != 55 {
		t.Fatalf("embedded price lookup = %v,%v", price, ok)
	}
	if price, ok := idx.Lookup("p3", ""); !ok || price != 4 {
		t.Fatalf("name-match lookup = %v,%v", price, ok)
	}
	if price, ok := idx.Lookup("p4", "Mystery Bolt"); ok || price != 0 {
		t.Fatalf("unresolvable cost should be 0,false, got %v,%v", price, ok)
	}
}

func TestLookupUnknownProductByName(t *testing.T) {
	// Orders can reference products missing from the snapshot entirely;
	// the supplier catalog name match still applies at lookup time.
	idx := BuildCostIndex(nil, []SupplierProduct{
		{ID: "sp1", Name: "PVC Pipe", Price: 12, HasPrice: true},
	})
	if price, ok := idx.Lookup("ghost", "pvc pipe"); !ok || price != 12 {
		t.Fatalf("catalog name match failed: %v,%v", price, ok)
	}
	if _, ok := idx.Lookup("ghost", ""); ok {
		t.Fatalf("empty name must not match")
	}
}

func TestLookupNilIndex(t *testing.T) {
	var idx *CostIndex
	if price, ok := idx.Lookup("p1", "x"); ok || price != 0 {
		t.Fatalf("nil index must miss cleanly")
	}
}
