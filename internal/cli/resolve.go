package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voterlens/polisync/internal/services"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	DryRun bool
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <name>...",
		Short: "Resolve candidate names to politician identity keys",
		Long: `Resolve one or more raw candidate names through the mapping file, the
remote politician index, and the slug fallback, printing the identity key
for each. New mappings are recorded unless --dry-run is given.

Example:
  polisync resolve "Doe, Jane"
  polisync resolve --dry-run "Robert A. Smith Jr." "JANE DOE"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "do not record new mappings")

	return cmd
}

func runResolve(cmd *cobra.Command, opts *ResolveOptions, names []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, opts.RootOptions, opts.DryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	var failed bool
	for _, name := range names {
		key, err := a.resolver.Resolve(ctx, name)
		switch {
		case err == nil:
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, key)
		case errors.Is(err, services.ErrMappingPersist):
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t(not persisted: %v)\n", name, key, err)
		default:
			failed = true
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\terror: %v\n", name, err)
		}
	}
	if failed {
		return errors.New("resolve: one or more names failed")
	}
	return nil
}
