package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/portalgate/internal/store/pg"
	migrations "github.com/dropDatabas3/portalgate/migrations/postgres"
)

func migrateCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Corre las migraciones de esquema contra postgres",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("PORTALGATE_STORAGE_DSN"), "DSN de postgres")

	up := &cobra.Command{
		Use:   "up",
		Short: "Aplica todas las migraciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := pg.New(cmd.Context(), dsn, pg.Config{})
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.RunMigrations(cmd.Context(), migrations.FS); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Revierte todas las migraciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := pg.New(cmd.Context(), dsn, pg.Config{})
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.RunMigrationsDown(cmd.Context(), migrations.FS); err != nil {
				return err
			}
			fmt.Println("migrations reverted")
			return nil
		},
	}

	cmd.AddCommand(up, down)
	return cmd
}
