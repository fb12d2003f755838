package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meigma/bundle"
)

func newManifestCmd() *cobra.Command {
	var (
		distDir     string
		baseURL     string
		platforms   string
		outPath     string
		versionFlag string
		versionFile string
	)

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Generate the engines.json release manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				v   bundle.Version
				err error
			)
			if versionFlag != "" {
				v, err = bundle.ParseVersion(versionFlag)
			} else {
				store := bundle.NewStore(bundle.NewFileBackend(versionFile))
				v, err = store.Current()
			}
			if err != nil {
				return err
			}

			list := strings.Split(platforms, ",")
			for i := range list {
				list[i] = strings.TrimSpace(list[i])
			}

			release, warnings, err := bundle.GenerateManifest(cmd.Context(), bundle.ManifestOptions{
				DistDir:   distDir,
				Version:   v,
				BaseURL:   baseURL,
				Platforms: list,
			})
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			if err != nil {
				return err
			}

			dest := outPath
			if dest == "" {
				dest = filepath.Join(distDir, "engines.json")
			}
			if err := bundle.WriteManifest(dest, release); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Manifest written to: %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&distDir, "dist", defaultDistDir, "distribution directory holding built archives")
	cmd.Flags().StringVar(&baseURL, "base-url", "https://github.com/OWNER/REPO/releases/download/v{version}", "download URL prefix ({version} is substituted)")
	cmd.Flags().StringVar(&platforms, "platforms", "macos-arm64", "comma-separated platform identifiers")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default: <dist>/engines.json)")
	cmd.Flags().StringVar(&versionFlag, "version", "", "explicit version (default: read the version file)")
	cmd.Flags().StringVar(&versionFile, "version-file", defaultVersionFile, "path to the version record")
	return cmd
}
