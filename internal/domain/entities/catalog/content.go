package catalog

import (
	"sort"
	"time"
)

// ContentItem is a single editable text or image slot on the landing page.
type ContentItem struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known content keys rendered by the storefront.
const (
	KeyHeroTitle             = "heroTitle"
	KeyHeroSubtitle          = "heroSubtitle"
	KeyHeroButtonText        = "heroButtonText"
	KeyAboutTitle            = "aboutTitle"
	KeyAboutDescription      = "aboutDescription"
	KeyFeaturedProductsTitle = "featuredProductsTitle"
	KeyFooterText            = "footerText"
)

var defaultContent = map[string]string{
	KeyHeroTitle:             "AVIATOR NATION",
	KeyHeroSubtitle:          "Vintage-Inspired California Lifestyle",
	KeyHeroButtonText:        "SHOP NOW",
	KeyAboutTitle:            "About Aviator Nation",
	KeyAboutDescription:      "Vintage-inspired California lifestyle brand creating premium apparel with a retro aesthetic. Our designs capture the spirit of freedom and adventure.",
	KeyFeaturedProductsTitle: "Featured Products",
	KeyFooterText:            "© 2024 Aviator Nation. All rights reserved.",
}

// DefaultContent returns a fresh copy of the built-in content map.
func DefaultContent() map[string]string {
	out := make(map[string]string, len(defaultContent))
	for k, v := range defaultContent {
		out[k] = v
	}
	return out
}

// DefaultContentKeys returns the built-in keys in a stable order.
func DefaultContentKeys() []string {
	keys := make([]string, 0, len(defaultContent))
	for k := range defaultContent {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
