package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/bundle"
)

func newBuildCmd() *cobra.Command {
	var (
		identifier      string
		runtimeDir      string
		runtimeFallback string
		outDir          string
		versionFlag     string
		versionFile     string
	)

	cmd := &cobra.Command{
		Use:   "build SRC",
		Short: "Build a versioned bundle archive from a source tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []bundle.BuildOption{
				bundle.WithOutputDir(outDir),
			}
			if identifier != "" {
				opts = append(opts, bundle.WithIdentifier(identifier))
			}
			if runtimeDir != "" {
				opts = append(opts, bundle.WithRuntime(runtimeDir))
			}
			if runtimeFallback != "" {
				opts = append(opts, bundle.WithRuntimeFallback(runtimeFallback))
			}
			if versionFlag != "" {
				v, err := bundle.ParseVersion(versionFlag)
				if err != nil {
					return err
				}
				opts = append(opts, bundle.WithVersion(v))
			} else {
				store := bundle.NewStore(bundle.NewFileBackend(versionFile))
				opts = append(opts, bundle.WithVersionStore(store))
			}

			result, err := bundle.Build(cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "==> Built bundle: %s (%d bytes)\n", result.Path, result.Size)
			fmt.Fprintf(out, "%s  %s\n", result.Digest.Encoded(), result.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&identifier, "identifier", "i", "", "bundle identifier (default: source directory name)")
	cmd.Flags().StringVar(&runtimeDir, "runtime", "", "runtime dependency tree to include")
	cmd.Flags().StringVar(&runtimeFallback, "runtime-fallback", "", "fallback path tried when the runtime tree is absent")
	cmd.Flags().StringVarP(&outDir, "out", "o", defaultDistDir, "output directory for the archive")
	cmd.Flags().StringVar(&versionFlag, "version", "", "explicit version (default: read the version file)")
	cmd.Flags().StringVar(&versionFile, "version-file", defaultVersionFile, "path to the version record")
	return cmd
}
