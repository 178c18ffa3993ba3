package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harun/phobos/pkg/i18n"
)

var i18nLang string

var i18nCmd = &cobra.Command{
	Use:   "i18n",
	Short: "Query the locale catalogs",
}

var i18nGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Resolve a catalog key",
	Long: `Resolve a catalog key from the configured locales directory. Without --lang
the configured host language is used; a missing key prints the key itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runI18nGet,
}

var i18nKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List catalog keys",
	Args:  cobra.NoArgs,
	RunE:  runI18nKeys,
}

func init() {
	i18nGetCmd.Flags().StringVar(&i18nLang, "lang", "", "language to resolve for")
	i18nCmd.AddCommand(i18nGetCmd)
	i18nCmd.AddCommand(i18nKeysCmd)
	rootCmd.AddCommand(i18nCmd)
}

func loadCatalog(cmd *cobra.Command) (*i18n.Catalog, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	catalog := i18n.NewCatalog(cfg.Language)
	if cfg.LocalesDir == "" {
		return catalog, nil
	}
	if _, err := os.Stat(cfg.LocalesDir); os.IsNotExist(err) {
		return catalog, nil
	}
	if _, err := i18n.LoadDir(catalog, cfg.LocalesDir); err != nil {
		return nil, fmt.Errorf("failed to load locales: %w", err)
	}
	return catalog, nil
}

func runI18nGet(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), catalog.Get(args[0], i18nLang))
	return nil
}

func runI18nKeys(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	for _, key := range catalog.Keys() {
		fmt.Fprintln(cmd.OutOrStdout(), key)
	}
	return nil
}
