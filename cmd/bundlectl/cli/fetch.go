package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/bundle"
	"github.com/meigma/bundle/registry"
)

func newFetchCmd() *cobra.Command {
	var (
		outDir    string
		pubPath   string
		plainHTTP bool
		anonymous bool
	)

	cmd := &cobra.Command{
		Use:   "fetch REF",
		Short: "Fetch a bundle and its signature from an OCI registry",
		Long: `Fetch a bundle artifact. When --public-key is given, the download
is verified immediately and both files are removed on failure, so an
unverified archive never remains on disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := registry.New(registryOptions(plainHTTP, anonymous)...)

			result, err := registry.Fetch(cmd.Context(), client, args[0], outDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fetched: %s\n", result.ArchivePath)
			fmt.Fprintf(out, "Signature: %s\n", result.SignaturePath)

			if pubPath == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: fetched bundle is unverified; run 'bundlectl verify' before use")
				return nil
			}

			pub, err := bundle.LoadPublicKey(pubPath)
			if err != nil {
				return err
			}
			if err := bundle.VerifyFile(result.ArchivePath, result.SignaturePath, pub); err != nil {
				os.Remove(result.ArchivePath)
				os.Remove(result.SignaturePath)
				return err
			}

			fmt.Fprintf(out, "OK: %s\n", result.ArchivePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "destination directory")
	cmd.Flags().StringVarP(&pubPath, "public-key", "p", "", "verify the download against this public key")
	cmd.Flags().BoolVar(&plainHTTP, "plain-http", false, "use plain HTTP (local registries)")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "skip all credential lookups")
	return cmd
}
