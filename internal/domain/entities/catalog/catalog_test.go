package catalog

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []*Product {
	return []*Product{
		{ID: "1", Category: "Hoodies", IsFeatured: true},
		{ID: "2", Category: "Tees"},
		{ID: "3", Category: "Hoodies"},
		{ID: "4", Category: "Hats", IsFeatured: true},
	}
}

func ids(products []*Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{AllCategories, "Hoodies", "Tees", "Hats"}, Categories(sample()))
	assert.Equal(t, []string{AllCategories}, Categories(nil))
}

func TestFilterByCategoryExcludesFeatured(t *testing.T) {
	assert.Equal(t, []string{"2", "3"}, ids(FilterByCategory(sample(), AllCategories)))
	assert.Equal(t, []string{"3"}, ids(FilterByCategory(sample(), "Hoodies")))
	assert.Empty(t, FilterByCategory(sample(), "Hats"))
	assert.Equal(t, []string{"1", "4"}, ids(Featured(sample())))
}

func TestDraftNormalizeAndToProduct(t *testing.T) {
	d := ProductDraft{
		Title:        "  Hoodie ",
		Category:     " Hoodies",
		Images:       []string{" a ", "", "b"},
		PurchaseLink: StringPtr("  "),
		ShopLink:     StringPtr(" https://shop "),
	}
	d.Normalize()
	assert.Equal(t, "Hoodie", d.Title)
	assert.Equal(t, []string{"a", "b"}, d.Images)
	assert.Nil(t, d.PurchaseLink)
	require.NotNil(t, d.ShopLink)
	assert.Equal(t, "https://shop", *d.ShopLink)

	now := time.Now()
	p := d.ToProduct("id", now)
	assert.Equal(t, "a", p.PrimaryImage())
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now, p.UpdatedAt)

	empty := (&ProductDraft{}).ToProduct("x", now)
	assert.NotNil(t, empty.Images)
	assert.Equal(t, "", empty.PrimaryImage())
}

func TestPatchApply(t *testing.T) {
	p := &Product{Title: "Old", Category: "A", PurchaseLink: StringPtr("https://buy"), Images: []string{"x"}}
	patch := ProductPatch{Title: StringPtr("New"), PurchaseLink: StringPtr(""), IsFeatured: BoolPtr(true)}
	assert.False(t, patch.IsEmpty())
	assert.True(t, ProductPatch{}.IsEmpty())

	patch.Apply(p)
	assert.Equal(t, "New", p.Title)
	assert.Equal(t, "A", p.Category)
	assert.Nil(t, p.PurchaseLink)
	assert.True(t, p.IsFeatured)
	assert.Equal(t, []string{"x"}, p.Images)

	ProductPatch{Images: &[]string{}}.Apply(p)
	assert.NotNil(t, p.Images)
	assert.Empty(t, p.Images)
}

func TestCloneIsDeep(t *testing.T) {
	p := &Product{Images: []string{"a"}, ShopLink: StringPtr("s")}
	c := p.Clone()
	c.Images[0] = "b"
	*c.ShopLink = "t"
	assert.Equal(t, "a", p.Images[0])
	assert.Equal(t, "s", *p.ShopLink)
	assert.Nil(t, (*Product)(nil).Clone())
}

func TestValidateDraft(t *testing.T) {
	assert.NoError(t, ValidateDraft(ProductDraft{Title: "T", Category: "C"}))

	err := ValidateDraft(ProductDraft{Title: "  ", Category: "C"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Invalid))
	ae, _ := apperr.As(err)
	assert.Contains(t, ae.Fields, "title")

	assert.Error(t, ValidateProduct(&Product{Title: "T"}))
	assert.NoError(t, ValidateProduct(&Product{Title: "T", Category: "C"}))
}

func TestSettingsPatch(t *testing.T) {
	s := &WebsiteSettings{SiteTitle: "Shop"}
	assert.Equal(t, "", s.ActiveRedirect())

	SettingsPatch{RedirectURL: StringPtr(" https://x.test ")}.Apply(s)
	assert.Equal(t, "https://x.test", s.ActiveRedirect())

	SettingsPatch{RedirectURL: StringPtr("")}.Apply(s)
	assert.Nil(t, s.RedirectURL)
	assert.Equal(t, "Shop", s.SiteTitle)
}

func TestDefaults(t *testing.T) {
	keys := DefaultContentKeys()
	assert.Len(t, keys, len(DefaultContent()))
	assert.Contains(t, keys, KeyHeroTitle)

	demo := DemoProducts()
	require.Len(t, demo, 3)
	for _, d := range demo {
		assert.True(t, d.IsFeatured)
		assert.NoError(t, ValidateDraft(d))
	}
}

func TestShareLinks(t *testing.T) {
	assert.Equal(t, "https://shop.vn/share?type=product&id=a+b", ShareLink("https://shop.vn/", ShareProduct, "a b"))
	assert.Equal(t, "https://shop.vn/share?type=shop", ShareLink("https://shop.vn", ShareShop, ""))
	assert.Equal(t, "https://shop.vn", ShareLink("https://shop.vn", ShareProduct, ""))
	assert.Equal(t, "https://shop.vn", ShareLink("https://shop.vn", "other", "x"))

	assert.Equal(t, "https://shop.vn/?product=p1", ShareRedirect("https://shop.vn", ShareProduct, "p1"))
	assert.Equal(t, "https://shop.vn/?section=featured", ShareRedirect("https://shop.vn", ShareShop, ""))
	assert.Equal(t, "https://shop.vn", ShareRedirect("https://shop.vn", "", ""))
}
