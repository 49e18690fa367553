package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "lab-booking",
		Short:        "Lab equipment booking API",
		SilenceUsage: true,
		// with no subcommand the API is served
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCreateUserCmd(),
		newImportEquipmentCmd(),
	)
	return root
}
