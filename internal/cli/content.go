package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/catalog"
	"github.com/spf13/cobra"
)

func (r *runner) contentCommand() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every content key and value",
		Args:  usageArgs(cobra.NoArgs),
		RunE: r.with(func(ctx context.Context, a *app, _ []string) error {
			a.sess.Content.Load(ctx)
			values := a.sess.Content.Snapshot()
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return a.emit(values, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, k := range keys {
					fmt.Fprintf(tw, "%s\t%s\n", k, values[k])
				}
				tw.Flush()
			})
		}),
	}

	setCmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set one content value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: r.with(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if err := a.sess.UpdateContent(ctx, args[0], args[1]); err != nil {
				return errFailed
			}
			return nil
		}),
	}

	return groupCommand("content", "Read and edit page copy", listCmd, setCmd)
}

func (r *runner) settingsCommand() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the website settings",
		Args:  usageArgs(cobra.NoArgs),
		RunE: r.with(func(ctx context.Context, a *app, _ []string) error {
			a.sess.Settings.Load(ctx)
			current := a.sess.Settings.Current()
			return a.emit(current, func(w io.Writer) {
				if current == nil {
					fmt.Fprintln(w, "no settings saved")
					return
				}
				fmt.Fprintf(w, "site_title\t%s\nredirect_url\t%s\n", current.SiteTitle, current.ActiveRedirect())
			})
		}),
	}

	titleCmd := &cobra.Command{
		Use:   "title TITLE",
		Short: "Set the site title",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: r.with(func(ctx context.Context, a *app, args []string) error {
			return a.saveSettings(ctx, catalog.SettingsPatch{SiteTitle: &args[0]})
		}),
	}

	return groupCommand("settings", "Read and edit website settings", showCmd, titleCmd)
}

func (r *runner) redirectCommand() *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set URL",
		Short: "Send every visitor to URL",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: r.with(func(ctx context.Context, a *app, args []string) error {
			return a.saveSettings(ctx, catalog.SettingsPatch{RedirectURL: &args[0]})
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Turn the redirect off",
		Args:  usageArgs(cobra.NoArgs),
		RunE: r.with(func(ctx context.Context, a *app, _ []string) error {
			return a.saveSettings(ctx, catalog.SettingsPatch{RedirectURL: catalog.StringPtr("")})
		}),
	}

	return groupCommand("redirect", "Manage the site-wide redirect", setCmd, clearCmd)
}

func (a *app) saveSettings(ctx context.Context, patch catalog.SettingsPatch) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	if err := a.sess.UpdateWebsiteSettings(ctx, patch); err != nil {
		return errFailed
	}
	return nil
}
