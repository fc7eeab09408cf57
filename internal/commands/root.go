package commands

import (
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "modeldoc",
		Short:         "Keep Eloquent model @property docs in sync with the database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("path", ".", "Laravel project root (where .env lives)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().Bool("log-json", false, "Log as JSON")

	root.AddCommand(
		GeneratePropertiesCmd(),
	)

	return root
}
