package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/openkcm/tenancy/internal/api/transform/tenant"
	"github.com/openkcm/tenancy/internal/model"
)

func FormatTenant(t *model.Tenant, cmd *cobra.Command) error {
	apiTenant, err := tenant.ToAPI(*t)
	if err != nil {
		return err
	}

	return printJSON(cmd, apiTenant)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	cmd.Println(string(out))

	return nil
}

func tenantID(cmd *cobra.Command) (string, error) {
	id, _ := cmd.Flags().GetString(idFlag)
	if id == "" {
		return "", ErrTenantIDRequired
	}

	return id, nil
}
