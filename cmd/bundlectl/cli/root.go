// Package cli implements the bundlectl command tree.
package cli

import "github.com/spf13/cobra"

// Default locations mirrored from the producer repo layout.
const (
	defaultKeyDir      = "keys"
	defaultVersionFile = "VERSION"
	defaultDistDir     = "dist"
)

// New builds the root bundlectl command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bundlectl",
		Short:         "Build, sign, verify, and distribute engine bundles.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(
		newKeygenCmd(),
		newBuildCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newBumpCmd(),
		newManifestCmd(),
		newPublishCmd(),
		newFetchCmd(),
	)

	return cmd
}
