package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/db"
)

// NewMigrateCmd runs the goose migrations of the shared schema, every
// tenant namespace, or both.
func (f *CommandFactory) NewMigrateCmd(ctx context.Context) *cobra.Command {
	var (
		target, migrationType string
		down                  bool
		version               int64
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations. Usage: tm migrate --target all --type schema [--version N] [--down]",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			mig := db.Migration{
				Downgrade: down,
				Type:      db.MigrationType(migrationType),
				Target:    db.MigrationTarget(target),
			}

			switch mig.Target {
			case db.SharedTarget, db.TenantTarget, db.AllTarget:
			default:
				return ErrUnknownTarget
			}

			switch mig.Type {
			case db.SchemaMigration, db.DataMigration:
			default:
				return ErrUnknownType
			}

			var err error
			if cmd.Flags().Changed("version") {
				err = f.migrator.MigrateTo(cmd.Context(), mig, version)
			} else {
				err = f.migrator.MigrateToLatest(cmd.Context(), mig)
			}

			if err != nil {
				cmd.PrintErrf("Migration failed: %v\n", err)
				return err
			}

			cmd.Printf("Migrated %s %s\n", mig.Target, mig.Type)

			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", string(db.AllTarget), "shared, tenant or all")
	cmd.Flags().StringVar(&migrationType, "type", string(db.SchemaMigration), "schema or data")
	cmd.Flags().BoolVar(&down, "down", false, "Downgrade instead of upgrade")
	cmd.Flags().Int64Var(&version, "version", 0, "Target version")
	cmd.SetContext(ctx)

	return cmd
}
