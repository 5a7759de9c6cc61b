package catalog

// DemoProducts are seeded when the catalog is empty on first load.
func DemoProducts() []ProductDraft {
	return []ProductDraft{
		{
			Title:        "Classic Rainbow Stripe Hoodie",
			Description:  "Ultra-soft fleece hoodie with the signature five-stripe rainbow across the chest.",
			Category:     "Hoodies",
			Images:       []string{"https://images.unsplash.com/photo-1556821840-3a63f95609a7?w=800&h=800&fit=crop"},
			PurchaseLink: StringPtr("https://www.aviatornation.com/collections/hoodies"),
			IsFeatured:   true,
		},
		{
			Title:        "Vintage Sweatpants",
			Description:  "Relaxed fit sweatpants garment dyed for a lived-in vintage feel.",
			Category:     "Sweatpants",
			Images:       []string{"https://images.unsplash.com/photo-1552902865-b72c031ac5ea?w=800&h=800&fit=crop"},
			PurchaseLink: StringPtr("https://www.aviatornation.com/collections/sweatpants"),
			IsFeatured:   true,
		},
		{
			Title:        "Bolt Logo Tee",
			Description:  "Lightweight cotton tee printed with the lightning bolt logo.",
			Category:     "T-Shirts",
			Images:       []string{"https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=800&h=800&fit=crop"},
			PurchaseLink: StringPtr("https://www.aviatornation.com/collections/tees"),
			IsFeatured:   true,
		},
	}
}
