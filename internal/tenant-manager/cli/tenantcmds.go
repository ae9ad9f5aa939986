package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/manager"
	"github.com/openkcm/tenancy/internal/model"
)

// NewListTenantsCmd creates a Cobra command that lists one page of tenants.
func (f *CommandFactory) NewListTenantsCmd(ctx context.Context) *cobra.Command {
	var q manager.ListQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants. Usage: tm list [--status active] [--plan pro] [--search acme]",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			tenants, page, err := f.tm.ListTenants(cmd.Context(), q)
			if err != nil {
				cmd.PrintErrf("Failed to list tenants: %v\n", err)
				return err
			}

			for _, t := range tenants {
				err = FormatTenant(t, cmd)
				if err != nil {
					return err
				}
			}

			cmd.Printf("Page %d of %d, %d tenants in total\n", page.Page, page.Pages, page.Total)

			return nil
		},
	}

	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&q.Size, "size", 0, "Page size")
	cmd.Flags().StringVar(&q.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&q.PlanType, "plan", "", "Filter by plan type")
	cmd.Flags().StringVar(&q.Search, "search", "", "Search name or domain")
	cmd.SetContext(ctx)

	return cmd
}

// NewGetTenantCmd creates a Cobra command that gets tenant information.
func (f *CommandFactory) NewGetTenantCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get tenant by id. Usage: tm get -i [tenant id]",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := tenantID(cmd)
			if err != nil {
				return err
			}

			t, err := f.tm.GetTenant(cmd.Context(), id)
			if err != nil {
				cmd.PrintErrf("Failed to get tenant %s: %v\n", id, err)
				return err
			}

			return FormatTenant(t, cmd)
		},
	}

	requireID(cmd)
	cmd.SetContext(ctx)

	return cmd
}

func (f *CommandFactory) NewSuspendTenantCmd(ctx context.Context) *cobra.Command {
	return f.transitionCmd(ctx, "suspend", "Suspend an active tenant", f.tm.SuspendTenant)
}

func (f *CommandFactory) NewResumeTenantCmd(ctx context.Context) *cobra.Command {
	return f.transitionCmd(ctx, "resume", "Resume a suspended tenant", f.tm.ResumeTenant)
}

// NewDeleteTenantCmd soft deletes a tenant. The namespace is kept until purged.
func (f *CommandFactory) NewDeleteTenantCmd(ctx context.Context) *cobra.Command {
	return f.transitionCmd(ctx, "delete", "Deactivate a tenant, keeping its namespace", f.tm.DeleteTenant)
}

func (f *CommandFactory) transitionCmd(
	ctx context.Context,
	use, short string,
	apply func(context.Context, string) (*model.Tenant, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short + ". Usage: tm " + use + " -i [tenant id]",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := tenantID(cmd)
			if err != nil {
				return err
			}

			t, err := apply(cmd.Context(), id)
			if err != nil {
				cmd.PrintErrf("Failed to %s tenant %s: %v\n", use, id, err)
				return err
			}

			cmd.Printf("Tenant %s is now %s\n", t.ID, t.Status)

			return nil
		},
	}

	requireID(cmd)
	cmd.SetContext(ctx)

	return cmd
}

// NewPurgeTenantCmd drops the namespace of an inactive tenant.
func (f *CommandFactory) NewPurgeTenantCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Drop the namespace of an inactive tenant. Usage: tm purge -i [tenant id]",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := tenantID(cmd)
			if err != nil {
				return err
			}

			err = f.tm.PurgeTenant(cmd.Context(), id)
			if err != nil {
				cmd.PrintErrf("Failed to purge tenant %s: %v\n", id, err)
				return err
			}

			cmd.Printf("Namespace of tenant %s dropped\n", id)

			return nil
		},
	}

	requireID(cmd)
	cmd.SetContext(ctx)

	return cmd
}

// NewPurgeExpiredCmd drops every namespace whose tenant stayed inactive
// longer than the retention.
func (f *CommandFactory) NewPurgeExpiredCmd(ctx context.Context) *cobra.Command {
	var retention time.Duration

	cmd := &cobra.Command{
		Use:   "purge-expired",
		Short: "Drop namespaces of tenants inactive for longer than --retention",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			if retention <= 0 {
				return ErrRetentionRequired
			}

			purged, err := f.tm.PurgeExpired(cmd.Context(), retention)
			if err != nil {
				cmd.PrintErrf("Failed to purge expired tenants: %v\n", err)
				return err
			}

			cmd.Printf("Purged %d namespaces\n", purged)

			return nil
		},
	}

	cmd.Flags().DurationVar(&retention, "retention", 0, "Minimum time since deactivation, e.g. 720h")
	cmd.SetContext(ctx)

	return cmd
}
