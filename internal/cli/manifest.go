package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harun/phobos/pkg/plugin"
)

var manifestLang string

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect plugin manifests",
}

var manifestValidateCmd = &cobra.Command{
	Use:   "validate <path>...",
	Short: "Validate plugin.json manifests",
	Long: `Validate plugin.json manifests against the manifest schema and the metadata
rules. A path may name a manifest file or a plugin directory holding one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runManifestValidate,
}

func init() {
	manifestValidateCmd.Flags().StringVar(&manifestLang, "lang", "en-US", "language used for plugin names")
	manifestCmd.AddCommand(manifestValidateCmd)
	rootCmd.AddCommand(manifestCmd)
}

func runManifestValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	loader := plugin.NewManifestLoader(zerolog.Nop())

	invalid := 0
	for _, path := range args {
		manifestPath, err := resolveManifestPath(path)
		if err == nil {
			var meta *plugin.PluginMetadata
			meta, err = loader.LoadManifest(manifestPath)
			if err == nil {
				printManifest(cmd, meta)
				continue
			}
		}
		invalid++
		fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d manifests are invalid", invalid, len(args))
	}
	return nil
}

func resolveManifestPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return filepath.Join(path, plugin.ManifestFileName), nil
	}
	return path, nil
}

func printManifest(cmd *cobra.Command, meta *plugin.PluginMetadata) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OK   %s %s (%s)\n", meta.PackageName, meta.Version, meta.LocalizedName(manifestLang))

	for _, dep := range meta.Dependencies {
		optional := ""
		if dep.IsOptional {
			optional = ", optional"
		}
		fmt.Fprintf(out, "     requires %s >= %s%s\n", dep.PackageName, dep.MinVersion, optional)
	}
	if !meta.Uninstallable() {
		fmt.Fprintln(out, "     cannot be uninstalled")
	}
}
