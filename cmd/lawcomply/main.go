package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lawcomply/lawcomply-backend/internal/app"
	"github.com/lawcomply/lawcomply-backend/internal/services"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "lawcomply",
		Short:        "Regulatory compliance evaluation backend",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newCatalogCmd(), newUserCmd())
	return root
}

// withApp opens the application, runs fn and closes it.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	a, err := app.New(ctx)
	if err != nil {
		return codeError(2, "startup: %s", err)
	}
	defer a.Close()
	return fn(ctx, a)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Run(ctx)
			})
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, a *app.App) error {
				if err := a.Migrate(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newCatalogCmd() *cobra.Command {
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and seed regulation control catalogs",
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show <regulation-code>",
		Short: "Print the catalog a regulation code resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				controls, err := a.Services.Catalog.Resolve(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(controls)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), services.RenderCatalog(controls))
				return err
			})
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")

	seed := &cobra.Command{
		Use:   "seed <regulation-code>",
		Short: "Persist the built-in catalog of a regulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Services.Admin.SeedCatalog(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d articles, %d controls added\n",
					res.Regulation.Code, res.ArticlesCreated, res.ControlsCreated)
				return nil
			})
		},
	}

	diff := &cobra.Command{
		Use:   "diff <regulation-code>",
		Short: "Compare the persisted catalog with the built-in one",
		Long:  "Exits with status 3 when the catalogs differ.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				builtin, ok := a.Services.Catalog.BuiltinControls(args[0])
				if !ok {
					return codeError(2, "no built-in catalog for %q", args[0])
				}
				persisted, err := a.Services.Catalog.Persisted(ctx, args[0])
				if err != nil {
					return err
				}
				out, changed := services.DiffCatalogText(
					services.RenderCatalog(persisted),
					services.RenderCatalog(builtin),
				)
				if !changed {
					fmt.Fprintln(cmd.OutOrStdout(), "catalogs match")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return codeError(3, "persisted catalog differs from built-in")
			})
		},
	}

	catalog.AddCommand(show, seed, diff)
	return catalog
}

func newUserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	user.AddCommand(&cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the ADMIN role to a registered user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Services.Auth.PromoteToAdmin(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
				return nil
			})
		},
	})
	return user
}
