package main

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"
)

func portalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Administración de portales",
	}
	cmd.AddCommand(portalCreateCmd())
	cmd.AddCommand(portalListCmd())
	cmd.AddCommand(portalRotateCmd())
	return cmd
}

func portalCreateCmd() *cobra.Command {
	var (
		name             string
		redirectURL      string
		visitURL         string
		allowedDomain    string
		allowMigrateUser bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Registra un portal y muestra su par sso_key/sso_secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out json.RawMessage
			err := doJSON(http.MethodPost, "/v1/admin/portals", map[string]any{
				"name":               name,
				"redirect_url":       redirectURL,
				"visit_url":          visitURL,
				"allowed_domain":     allowedDomain,
				"allow_migrate_user": allowMigrateUser,
			}, &out)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "nombre del portal")
	cmd.Flags().StringVar(&redirectURL, "redirect-url", "", "URL de redirección registrada")
	cmd.Flags().StringVar(&visitURL, "visit-url", "", "URL pública del portal")
	cmd.Flags().StringVar(&allowedDomain, "allowed-domain", "", "sufijos de dominio permitidos, separados por espacios")
	cmd.Flags().BoolVar(&allowMigrateUser, "allow-migrate-user", false, "habilita migración de usuarios")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("redirect-url")
	return cmd
}

func portalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lista los portales registrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out json.RawMessage
			if err := doJSON(http.MethodGet, "/v1/admin/portals", nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func portalRotateCmd() *cobra.Command {
	var portalID string
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Rota el par de claves de un portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out json.RawMessage
			err := doJSON(http.MethodPost, "/v1/admin/portals/rotate", map[string]string{
				"portal_id": portalID,
			}, &out)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&portalID, "id", "", "id del portal")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
