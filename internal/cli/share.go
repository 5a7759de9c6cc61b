package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/spf13/cobra"
)

func (r *runner) shareCommand() *cobra.Command {
	var copyLink bool
	printLink := func(kind string) func(context.Context, *app, []string) error {
		return func(_ context.Context, a *app, args []string) error {
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			link := a.sess.GenerateShareLink(kind, id)
			if copyLink {
				if _, err := a.sess.CopyShareLink(kind, id); err != nil {
					a.logger.System().Debug("Clipboard write failed", "error", err.Error())
				}
			}
			return a.emit(map[string]string{"url": link}, func(w io.Writer) { fmt.Fprintln(w, link) })
		}
	}

	productCmd := &cobra.Command{
		Use:   "product ID",
		Short: "Print the share link for one product",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE:  r.with(printLink(catalog.ShareProduct)),
	}
	shopCmd := &cobra.Command{
		Use:   "shop",
		Short: "Print the share link for the whole shop",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  r.with(printLink(catalog.ShareShop)),
	}

	cmd := groupCommand("share", "Build share links", productCmd, shopCmd)
	cmd.PersistentFlags().BoolVar(&copyLink, "copy", false, "also copy the link to the clipboard")
	return cmd
}

func (r *runner) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [TABLE...]",
		Short: "Print change events until interrupted",
		Long:  "TABLE is one of content, products or website_settings. No TABLE watches all of them.",
		Args: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if _, err := events.ParseTable(arg); err != nil {
					return usageError(cmd, err)
				}
			}
			return nil
		},
		RunE: r.with(func(ctx context.Context, a *app, args []string) error {
			tables := make([]events.Table, 0, len(args))
			for _, arg := range args {
				t, _ := events.ParseTable(arg)
				tables = append(tables, t)
			}

			feed, err := a.client.Subscribe(ctx, tables...)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.out)
			for evt := range feed {
				if a.opts.JSON {
					if err := enc.Encode(evt); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(a.out, "%s %s %s %s\n", evt.CommitTime.Format("15:04:05"), evt.Table, evt.Kind, rowID(evt))
			}
			return nil
		}),
	}
}

// rowID pulls the id or key out of an event's row for display.
func rowID(evt events.ChangeEvent) string {
	raw := evt.New
	if len(raw) == 0 {
		raw = evt.Old
	}
	var row struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return ""
	}
	if row.ID != "" {
		return row.ID
	}
	return row.Key
}
