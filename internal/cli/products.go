package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/spf13/cobra"
)

func (r *runner) productsCommand() *cobra.Command {
	return groupCommand("products", "List and edit the catalog",
		r.productsListCommand(),
		r.productsAddCommand(),
		r.productsUpdateCommand(),
		r.productsDeleteCommand(),
	)
}

func (r *runner) productsListCommand() *cobra.Command {
	var category string
	var featured bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print products, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: r.with(func(ctx context.Context, a *app, _ []string) error {
			a.sess.Products.Load(ctx)
			var products []*catalog.Product
			switch {
			case featured:
				products = a.sess.FeaturedProducts()
			case category != "":
				a.sess.SetSelectedCategory(category)
				products = a.sess.FilteredProducts()
			default:
				products = a.sess.Products.Products()
			}

			return a.emit(products, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tFEATURED")
				for _, p := range products {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", p.ID, p.Title, p.Category, p.IsFeatured)
				}
				tw.Flush()
			})
		}),
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category (non-featured)")
	cmd.Flags().BoolVar(&featured, "featured", false, "only featured products")
	return cmd
}

type productFlags struct {
	title, category, description, images string
	purchaseLink, shopLink               string
	featured                             bool
}

func (f *productFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "product title")
	cmd.Flags().StringVar(&f.category, "category", "", "category")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.images, "images", "", "comma-separated image URLs")
	cmd.Flags().StringVar(&f.purchaseLink, "purchase-link", "", "purchase URL")
	cmd.Flags().StringVar(&f.shopLink, "shop-link", "", "shop URL")
	cmd.Flags().BoolVar(&f.featured, "featured", false, "show in the featured section")
}

func (r *runner) productsAddCommand() *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a product and print its id",
		Args:  usageArgs(cobra.NoArgs),
		RunE: r.with(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			draft := catalog.ProductDraft{
				Title:       f.title,
				Category:    f.category,
				Description: f.description,
				Images:      catalog.SplitImages(f.images),
				IsFeatured:  f.featured,
			}
			if f.purchaseLink != "" {
				draft.PurchaseLink = &f.purchaseLink
			}
			if f.shopLink != "" {
				draft.ShopLink = &f.shopLink
			}

			created, err := a.sess.AddProduct(ctx, draft)
			if err != nil {
				return errFailed
			}
			return a.emit(created, func(w io.Writer) { fmt.Fprintln(w, created.ID) })
		}),
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (r *runner) productsUpdateCommand() *cobra.Command {
	var f productFlags
	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "update ID",
		Short: "Change the given fields of a product",
		Long:  "Only flags that are passed are sent. An empty --purchase-link or --shop-link clears it.",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: r.with(func(ctx context.Context, a *app, args []string) error {
			changed := cmd.Flags().Changed
			var patch catalog.ProductPatch
			if changed("title") {
				patch.Title = &f.title
			}
			if changed("category") {
				patch.Category = &f.category
			}
			if changed("description") {
				patch.Description = &f.description
			}
			if changed("images") {
				imgs := catalog.SplitImages(f.images)
				if imgs == nil {
					imgs = []string{}
				}
				patch.Images = &imgs
			}
			if changed("purchase-link") {
				patch.PurchaseLink = &f.purchaseLink
			}
			if changed("shop-link") {
				patch.ShopLink = &f.shopLink
			}
			if changed("featured") {
				patch.IsFeatured = &f.featured
			}
			if patch.IsEmpty() {
				return usageError(cmd, errors.New("products update needs at least one field flag"))
			}

			if err := a.requireAdmin(); err != nil {
				return err
			}
			if err := a.sess.UpdateProduct(ctx, args[0], patch); err != nil {
				return errFailed
			}
			return nil
		}),
	}
	f.bind(cmd)
	return cmd
}

func (r *runner) productsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: r.with(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if err := a.sess.DeleteProduct(ctx, args[0]); err != nil {
				return errFailed
			}
			return nil
		}),
	}
}

func (r *runner) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Bulk-create products from a .csv or .xlsx file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: r.with(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			created, err := a.sess.ImportSpreadsheet(ctx, args[0], f)
			if err != nil {
				return errFailed
			}
			return a.emit(created, func(w io.Writer) {
				for _, p := range created {
					fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Title)
				}
			})
		}),
	}
}

func (r *runner) templateCommand() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Download the import template",
		Args:  usageArgs(cobra.NoArgs),
		RunE: r.with(func(ctx context.Context, a *app, _ []string) error {
			w := a.out
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return a.client.DownloadTemplate(ctx, format, w)
		}),
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (r *runner) imageCommand() *cobra.Command {
	uploadCmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an image and print its public URL",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: r.with(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			dataURL := "data:" + http.DetectContentType(raw) + ";base64," + base64.StdEncoding.EncodeToString(raw)
			url, err := a.client.UploadImage(ctx, dataURL)
			if err != nil {
				return err
			}
			return a.emit(map[string]string{"url": url}, func(w io.Writer) { fmt.Fprintln(w, url) })
		}),
	}
	return groupCommand("image", "Manage product images", uploadCmd)
}
