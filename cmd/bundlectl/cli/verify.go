package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meigma/bundle"
)

func newVerifyCmd() *cobra.Command {
	var (
		sigPath string
		pubPath string
	)

	cmd := &cobra.Command{
		Use:   "verify BUNDLE",
		Short: "Verify a bundle archive against its detached signature",
		Long: `Verify a bundle archive before anything extracts or executes its
contents. A bundle that fails verification must be rejected outright.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := bundle.LoadPublicKey(pubPath)
			if err != nil {
				return err
			}

			sig := sigPath
			if sig == "" {
				sig = args[0] + ".sig"
			}
			if err := bundle.VerifyFile(args[0], sig, pub); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&sigPath, "signature", "s", "", "signature file (default: <BUNDLE>.sig)")
	cmd.Flags().StringVarP(&pubPath, "public-key", "p", filepath.Join(defaultKeyDir, bundle.PublicKeyName), "public key file")
	return cmd
}
