// portalgate es la CLI administrativa: opera contra la API admin del
// servicio y corre migraciones directamente contra la base.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagServer string
	flagAPIKey string
)

func main() {
	root := &cobra.Command{
		Use:           "portalgate",
		Short:         "Herramientas administrativas de la autoridad SSO",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", envOr("PORTALGATE_SERVER", "http://localhost:8080"), "URL base del servicio")
	root.PersistentFlags().StringVar(&flagAPIKey, "api-key", os.Getenv("PORTALGATE_ADMIN_API_KEY"), "clave de la API administrativa")

	root.AddCommand(portalCmd())
	root.AddCommand(inviteCmd())
	root.AddCommand(orgCmd())
	root.AddCommand(roleCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
