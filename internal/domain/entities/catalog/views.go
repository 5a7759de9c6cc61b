package catalog

// Categories returns the sentinel followed by each distinct category in
// first-appearance order.
func Categories(products []*Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{AllCategories}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// FilterByCategory returns the non-featured products in category. The
// sentinel selects every non-featured product.
func FilterByCategory(products []*Product, category string) []*Product {
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if p.IsFeatured {
			continue
		}
		if category != AllCategories && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Featured returns the products flagged for the featured section.
func Featured(products []*Product) []*Product {
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out
}
