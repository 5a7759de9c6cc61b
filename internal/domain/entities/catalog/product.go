// Package catalog defines the storefront entities: products, editable
// content entries and the website settings singleton.
package catalog

import (
	"strings"
	"time"
)

// AllCategories is the sentinel category that selects every non-featured product.
const AllCategories = "Tất cả"

// Product is a catalog entry. Images[0] is the primary thumbnail.
type Product struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Images       []string  `json:"images"`
	PurchaseLink *string   `json:"purchase_link"`
	ShopLink     *string   `json:"shop_link"`
	IsFeatured   bool      `json:"is_featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PrimaryImage returns the thumbnail URL or "" when the product has no images.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Clone returns a deep copy so cached products never share slices with callers.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	cp.PurchaseLink = cloneString(p.PurchaseLink)
	cp.ShopLink = cloneString(p.ShopLink)
	return &cp
}

// ProductDraft is the insert payload shared by single adds and bulk imports.
type ProductDraft struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	Category     string   `json:"category" binding:"required"`
	Images       []string `json:"images"`
	PurchaseLink *string  `json:"purchase_link,omitempty"`
	ShopLink     *string  `json:"shop_link,omitempty"`
	IsFeatured   bool     `json:"is_featured"`
}

// Normalize trims text fields, drops blank image URLs and turns blank links into nil.
func (d *ProductDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	d.Images = CleanImages(d.Images)
	d.PurchaseLink = blankToNil(d.PurchaseLink)
	d.ShopLink = blankToNil(d.ShopLink)
}

// ToProduct materializes the draft with the given identity and timestamp.
func (d *ProductDraft) ToProduct(id string, now time.Time) *Product {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &Product{
		ID:           id,
		Title:        d.Title,
		Description:  d.Description,
		Category:     d.Category,
		Images:       append([]string(nil), images...),
		PurchaseLink: cloneString(d.PurchaseLink),
		ShopLink:     cloneString(d.ShopLink),
		IsFeatured:   d.IsFeatured,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ProductPatch is a partial update. Nil fields are left untouched; an
// empty link string clears the link.
type ProductPatch struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Images       *[]string `json:"images,omitempty"`
	PurchaseLink *string   `json:"purchase_link,omitempty"`
	ShopLink     *string   `json:"shop_link,omitempty"`
	IsFeatured   *bool     `json:"is_featured,omitempty"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p ProductPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Images == nil &&
		p.PurchaseLink == nil && p.ShopLink == nil && p.IsFeatured == nil
}

// Apply merges the supplied fields into product.
func (p ProductPatch) Apply(product *Product) {
	if p.Title != nil {
		product.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		product.Description = strings.TrimSpace(*p.Description)
	}
	if p.Category != nil {
		product.Category = strings.TrimSpace(*p.Category)
	}
	if p.Images != nil {
		product.Images = CleanImages(*p.Images)
		if product.Images == nil {
			product.Images = []string{}
		}
	}
	if p.PurchaseLink != nil {
		product.PurchaseLink = blankToNil(p.PurchaseLink)
	}
	if p.ShopLink != nil {
		product.ShopLink = blankToNil(p.ShopLink)
	}
	if p.IsFeatured != nil {
		product.IsFeatured = *p.IsFeatured
	}
}

// CleanImages trims every URL and drops blanks.
func CleanImages(images []string) []string {
	var out []string
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}

// SplitImages parses a comma-joined list of image URLs.
func SplitImages(joined string) []string {
	return CleanImages(strings.Split(joined, ","))
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr is a small helper for building drafts and patches.
func StringPtr(s string) *string { return &s }

// BoolPtr is a small helper for building patches.
func BoolPtr(b bool) *bool { return &b }
