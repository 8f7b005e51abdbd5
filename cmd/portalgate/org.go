package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/security/keygen"
	"github.com/dropDatabas3/portalgate/internal/store/pg"
)

// La data de referencia (organisaciones, roles, herencia) no pasa por la
// API admin: se siembra directo contra la base, como las migraciones.
func orgCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "org",
		Short: "Administra organisaciones y sus roles contra postgres",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("PORTALGATE_STORAGE_DSN"), "DSN de postgres")

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Registra una organisación",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := pg.New(cmd.Context(), dsn, pg.Config{})
			if err != nil {
				return err
			}
			defer st.Close()
			org := &model.Organisation{
				ID:       uuid.NewString(),
				Name:     name,
				UniqueID: keygen.NewUniqueID(),
			}
			if err := st.CreateOrganisation(cmd.Context(), org); err != nil {
				return err
			}
			return printJSON(org)
		},
	}
	create.Flags().StringVar(&name, "name", "", "nombre de la organisación")
	_ = create.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista las organisaciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := pg.New(cmd.Context(), dsn, pg.Config{})
			if err != nil {
				return err
			}
			defer st.Close()
			orgs, err := st.ListOrganisations(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(orgs)
		},
	}

	var grantOrgID, grantRoleID string
	var forAllUsers bool
	grant := &cobra.Command{
		Use:   "grant",
		Short: "Asocia un rol a una organisación",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := pg.New(cmd.Context(), dsn, pg.Config{})
			if err != nil {
				return err
			}
			defer st.Close()
			or := &model.OrganisationRole{
				ID:             uuid.NewString(),
				OrganisationID: grantOrgID,
				RoleID:         grantRoleID,
				ForAllUsers:    forAllUsers,
			}
			if err := st.CreateOrganisationRole(cmd.Context(), or); err != nil {
				return err
			}
			return printJSON(or)
		},
	}
	grant.Flags().StringVar(&grantOrgID, "org-id", "", "id de la organisación")
	grant.Flags().StringVar(&grantRoleID, "role-id", "", "id del rol")
	grant.Flags().BoolVar(&forAllUsers, "for-all-users", false, "otorgar a todos los miembros de la organisación")
	_ = grant.MarkFlagRequired("org-id")
	_ = grant.MarkFlagRequired("role-id")

	cmd.AddCommand(create, list, grant)
	return cmd
}

func roleCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "role",
		Short: "Administra los roles que definen los portales",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("PORTALGATE_STORAGE_DSN"), "DSN de postgres")

	var portalID, code, name, extDesc, intDesc string
	create := &cobra.Command{
		Use:   "create",
		Short: "Registra un rol para un portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := pg.New(cmd.Context(), dsn, pg.Config{})
			if err != nil {
				return err
			}
			defer st.Close()
			role := &model.Role{
				ID:                  uuid.NewString(),
				PortalID:            portalID,
				UniqueID:            keygen.NewUniqueID(),
				Code:                code,
				Name:                name,
				ExternalDescription: extDesc,
				InternalDescription: intDesc,
			}
			if err := st.CreateRole(cmd.Context(), role); err != nil {
				return err
			}
			return printJSON(role)
		},
	}
	create.Flags().StringVar(&portalID, "portal-id", "", "id del portal dueño del rol")
	create.Flags().StringVar(&code, "code", "", "código del rol")
	create.Flags().StringVar(&name, "name", "", "nombre del rol")
	create.Flags().StringVar(&extDesc, "external-description", "", "descripción visible para el portal")
	create.Flags().StringVar(&intDesc, "internal-description", "", "descripción interna")
	_ = create.MarkFlagRequired("portal-id")
	_ = create.MarkFlagRequired("code")
	_ = create.MarkFlagRequired("name")

	var listPortalID string
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista los roles de un portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := pg.New(cmd.Context(), dsn, pg.Config{})
			if err != nil {
				return err
			}
			defer st.Close()
			roles, err := st.RolesByPortal(cmd.Context(), listPortalID)
			if err != nil {
				return err
			}
			return printJSON(roles)
		},
	}
	list.Flags().StringVar(&listPortalID, "portal-id", "", "id del portal")
	_ = list.MarkFlagRequired("portal-id")

	var roleID, baseRoleID string
	inherit := &cobra.Command{
		Use:   "inherit",
		Short: "Declara que poseer el rol base implica el rol heredero",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := pg.New(cmd.Context(), dsn, pg.Config{})
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.AddRoleInheritance(cmd.Context(), roleID, baseRoleID); err != nil {
				return err
			}
			fmt.Printf("role %s now inherits from %s\n", roleID, baseRoleID)
			return nil
		},
	}
	inherit.Flags().StringVar(&roleID, "role-id", "", "id del rol heredero")
	inherit.Flags().StringVar(&baseRoleID, "base-role-id", "", "id del rol base")
	_ = inherit.MarkFlagRequired("role-id")
	_ = inherit.MarkFlagRequired("base-role-id")

	cmd.AddCommand(create, list, inherit)
	return cmd
}
