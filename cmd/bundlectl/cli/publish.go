package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/bundle/registry"
)

func newPublishCmd() *cobra.Command {
	var (
		plainHTTP bool
		anonymous bool
	)

	cmd := &cobra.Command{
		Use:   "publish REF BUNDLE",
		Short: "Publish a signed bundle and its signature to an OCI registry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := registry.New(registryOptions(plainHTTP, anonymous)...)

			desc, err := registry.Publish(cmd.Context(), client, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Published %s\n", args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Manifest digest: %s\n", desc.Digest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&plainHTTP, "plain-http", false, "use plain HTTP (local registries)")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "skip all credential lookups")
	return cmd
}

// registryOptions builds client options shared by publish and fetch.
func registryOptions(plainHTTP, anonymous bool) []registry.Option {
	opts := []registry.Option{registry.WithDockerConfig()}
	if plainHTTP {
		opts = append(opts, registry.WithPlainHTTP(true))
	}
	if anonymous {
		opts = append(opts, registry.WithAnonymous())
	}
	return opts
}
