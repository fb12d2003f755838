package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/bundle"
)

func newKeygenCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an Ed25519 signing keypair",
		Long: `Generate an Ed25519 keypair for bundle signing.

The private key stays in the producer's key store and must never be
committed or shipped inside a bundle. The public key is embedded in
consumers through a separate, trusted channel.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := bundle.GenerateKeypair()
			if err != nil {
				return err
			}
			privPath, pubPath, err := kp.WriteKeypair(outDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "==> Generating Ed25519 signing keys")
			fmt.Fprintf(out, "    Private key: %s\n", privPath)
			fmt.Fprintf(out, "    Public key:  %s\n", pubPath)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Keep the private key secure and never commit it to version control.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", defaultKeyDir, "output directory for key files")
	return cmd
}
