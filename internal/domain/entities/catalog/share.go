package catalog

import (
	"net/url"
	"strings"
)

// Share link kinds.
const (
	ShareProduct = "product"
	ShareShop    = "shop"
)

// ShareLink builds the public share URL. Unknown kinds, and product links
// without an id, fall back to the bare base URL.
func ShareLink(baseURL, kind, productID string) string {
	base := strings.TrimRight(baseURL, "/")
	switch {
	case kind == ShareProduct && productID != "":
		return base + "/share?type=product&id=" + url.QueryEscape(productID)
	case kind == ShareShop:
		return base + "/share?type=shop"
	}
	return base
}

// ShareRedirect resolves a share link back onto the storefront.
func ShareRedirect(baseURL, kind, productID string) string {
	base := strings.TrimRight(baseURL, "/")
	switch {
	case kind == ShareProduct && productID != "":
		return base + "/?product=" + url.QueryEscape(productID)
	case kind == ShareShop:
		return base + "/?section=featured"
	}
	return base
}
