package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/gold-token-ledger/internal/config"
	"github.com/sheikh-saqib/gold-token-ledger/internal/storage"
)

// NewMigrateCommand applies the schema of the configured store and exits.
func NewMigrateCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger tables in the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadStore(root.EnvFiles...)
			if err != nil {
				return err
			}
			store, err := storage.Open(cmd.Context(), cfg.StorageOptions())
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s store is up to date\n", cfg.StoreDriver)
			return store.Close()
		},
	}
}
