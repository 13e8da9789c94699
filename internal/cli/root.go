package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the root command for the polisync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "polisync",
		Short: "Sync politician issue positions from Snowflake to Firebase",
		Long: `polisync pulls candidate issue ratings from a Snowflake view, resolves
each candidate name to a stable politician identity, and replaces the
politician issues subtree in Firebase Realtime Database.`,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to the dotenv file")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))

	return cmd
}
