package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/db"
	"github.com/openkcm/tenancy/internal/manager"
	cliUtils "github.com/openkcm/tenancy/utils/cli"
)

const idFlag = "id"

type CommandFactory struct {
	tm       *manager.TenantManager
	migrator db.Migrator
}

func NewCommandFactory(tm *manager.TenantManager, migrator db.Migrator) *CommandFactory {
	return &CommandFactory{
		tm:       tm,
		migrator: migrator,
	}
}

func (f *CommandFactory) NewRootCmd(ctx context.Context) *cobra.Command {
	return cliUtils.NewRootCmdWithInfinitySleep(
		ctx,
		"tm",
		"Tenant Manager CLI Application",
		"Tenant Manager is a CLI tool for operators to inspect tenants, "+
			"change their lifecycle status, purge the namespaces of deleted tenants "+
			"and run database migrations.",
	)
}

// SetupCommands returns the root command with every subcommand attached.
func (f *CommandFactory) SetupCommands(ctx context.Context) *cobra.Command {
	rootCmd := f.NewRootCmd(ctx)
	rootCmd.AddCommand(
		f.NewListTenantsCmd(ctx),
		f.NewGetTenantCmd(ctx),
		f.NewSuspendTenantCmd(ctx),
		f.NewResumeTenantCmd(ctx),
		f.NewDeleteTenantCmd(ctx),
		f.NewPurgeTenantCmd(ctx),
		f.NewPurgeExpiredCmd(ctx),
		f.NewMigrateCmd(ctx),
	)

	return rootCmd
}

func requireID(cmd *cobra.Command) {
	cmd.Flags().StringP(idFlag, "i", "", "Tenant id")

	err := cmd.MarkFlagRequired(idFlag)
	if err != nil {
		cmd.PrintErrf("failed to mark flag '%s' as required: %v\n", idFlag, err)
	}
}
