package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/bundle"
)

func newBumpCmd() *cobra.Command {
	var versionFile string

	cmd := &cobra.Command{
		Use:   "bump [patch|minor|major|X.Y.Z]",
		Short: "Bump the bundle version",
		Long: `Bump the version record. With no argument, bumps the patch
component. An explicit X.Y.Z argument sets the version directly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := bundle.NewStore(bundle.NewFileBackend(versionFile))

			arg := "patch"
			if len(args) == 1 {
				arg = args[0]
			}

			var (
				v   bundle.Version
				err error
			)
			if kind, kindErr := bundle.ParseBumpKind(arg); kindErr == nil {
				v, err = store.Bump(kind)
			} else {
				v, err = store.Set(arg)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", v)
			return nil
		},
	}

	cmd.Flags().StringVar(&versionFile, "version-file", defaultVersionFile, "path to the version record")
	return cmd
}
