package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meigma/bundle"
)

func newSignCmd() *cobra.Command {
	var keyPath string

	cmd := &cobra.Command{
		Use:   "sign BUNDLE",
		Short: "Sign a bundle archive with the Ed25519 private key",
		Long: `Sign a bundle archive, writing the detached signature to
<BUNDLE>.sig. The reported SHA-256 checksum is informational only; the
signature alone carries the trust decision.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := bundle.LoadPrivateKey(keyPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "==> Signing bundle: %s\n", args[0])

			result, err := bundle.SignFile(args[0], priv)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Signature: %s\n", result.Signature.Hex())
			fmt.Fprintf(out, "Signature saved to: %s\n", result.SignaturePath)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "==> Bundle checksum:")
			fmt.Fprintf(out, "%s  %s\n", result.Checksum.Encoded(), filepath.Base(args[0]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyPath, "key", "k", filepath.Join(defaultKeyDir, bundle.PrivateKeyName), "private key file")
	return cmd
}
