package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (r *runner) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  usageArgs(cobra.NoArgs),
		RunE: r.with(func(ctx context.Context, a *app, _ []string) error {
			if !a.sess.SignIn(ctx, email, passwordOrEnv(password)) {
				return errFailed
			}
			return nil
		}),
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func (r *runner) signupCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an admin account (needs ALLOW_SIGNUP on the server)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: r.with(func(ctx context.Context, a *app, _ []string) error {
			if !a.sess.SignUp(ctx, email, passwordOrEnv(password)) {
				return errFailed
			}
			return nil
		}),
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func credentialFlags(cmd *cobra.Command, email, password *string) {
	cmd.Flags().StringVar(email, "email", "", "admin email")
	cmd.Flags().StringVar(password, "password", "", "password (default $STOREFRONT_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
}

func (r *runner) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  usageArgs(cobra.NoArgs),
		RunE: r.with(func(ctx context.Context, a *app, _ []string) error {
			if !a.sess.IsAuthenticated() {
				return removeSession(a.cfg.TokenFile)
			}
			return a.sess.SignOut(ctx)
		}),
	}
}

func (r *runner) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in admin",
		Args:  usageArgs(cobra.NoArgs),
		RunE: r.with(func(_ context.Context, a *app, _ []string) error {
			email := a.sess.Auth.Email()
			return a.emit(map[string]any{"authenticated": email != "", "email": email}, func(w io.Writer) {
				if email == "" {
					fmt.Fprintln(w, "anonymous")
					return
				}
				fmt.Fprintln(w, email)
			})
		}),
	}
}
