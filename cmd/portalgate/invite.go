package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func inviteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Administración de invitaciones",
	}
	cmd.AddCommand(inviteCreateCmd())
	cmd.AddCommand(inviteSendCmd())
	return cmd
}

func inviteCreateCmd() *cobra.Command {
	var (
		name         string
		emailAddr    string
		organisation string
		language     string
		portalIDs    []string
		send         bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea una invitación (con --send manda el mail de activación)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				ID string `json:"id"`
			}
			var raw json.RawMessage
			err := doJSON(http.MethodPost, "/v1/admin/invitations", map[string]any{
				"name":         name,
				"email":        emailAddr,
				"organisation": organisation,
				"language":     language,
				"portal_ids":   portalIDs,
			}, &raw)
			if err != nil {
				return err
			}
			if err := printJSON(raw); err != nil {
				return err
			}
			if !send {
				return nil
			}
			if err := json.Unmarshal(raw, &out); err != nil {
				return err
			}
			if err := doJSON(http.MethodPost, "/v1/admin/invitations/resend", map[string]string{
				"invitation_id": out.ID,
			}, nil); err != nil {
				return err
			}
			fmt.Println("activation mail sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "nombre del invitado")
	cmd.Flags().StringVar(&emailAddr, "email", "", "email del invitado")
	cmd.Flags().StringVar(&organisation, "organisation", "", "organisación a vincular")
	cmd.Flags().StringVar(&language, "language", "", "idioma del mail (default en)")
	cmd.Flags().StringSliceVar(&portalIDs, "portal-id", nil, "ids de portales a vincular (repetible)")
	cmd.Flags().BoolVar(&send, "send", false, "manda el mail de activación al crear")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func inviteSendCmd() *cobra.Command {
	var invitationID string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Manda (o re-manda) el mail de activación",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := doJSON(http.MethodPost, "/v1/admin/invitations/resend", map[string]string{
				"invitation_id": invitationID,
			}, nil); err != nil {
				return err
			}
			fmt.Println("activation mail sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&invitationID, "id", "", "id de la invitación")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
