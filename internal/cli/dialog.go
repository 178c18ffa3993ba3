package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harun/phobos/pkg/dialog"
)

var (
	dialogTitle string
	dialogLang  string
	dialogJSON  bool
)

var dialogCmd = &cobra.Command{
	Use:   "dialog",
	Short: "Work with dialog presets",
}

var dialogPreviewCmd = &cobra.Command{
	Use:   "preview <preset> <message>",
	Short: "Show the texts of a dialog preset",
	Long: `Build a dialog preset and print its title, content and buttons as they
resolve for --lang. Presets: ` + strings.Join(presetNames(), ", ") + `.`,
	Args: cobra.ExactArgs(2),
	RunE: runDialogPreview,
}

func init() {
	dialogPreviewCmd.Flags().StringVar(&dialogTitle, "title", "", "title overriding the preset title")
	dialogPreviewCmd.Flags().StringVar(&dialogLang, "lang", "en-US", "language to resolve for")
	dialogPreviewCmd.Flags().BoolVar(&dialogJSON, "json", false, "print the dialog config as JSON")
	dialogCmd.AddCommand(dialogPreviewCmd)
	rootCmd.AddCommand(dialogCmd)
}

func presetNames() []string {
	names := make([]string, 0, len(dialog.Presets))
	for name := range dialog.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runDialogPreview(cmd *cobra.Command, args []string) error {
	build, ok := dialog.Presets[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("unknown preset %q (available: %s)", args[0], strings.Join(presetNames(), ", "))
	}
	cfg := build(args[1], dialogTitle)
	out := cmd.OutOrStdout()

	if dialogJSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Title:   %s\n", cfg.GetTitle(dialogLang))
	fmt.Fprintf(out, "Content: %s\n", cfg.Content(dialogLang))

	labels := make([]string, 0, len(cfg.Buttons)+1)
	for _, b := range cfg.Buttons {
		labels = append(labels, fmt.Sprintf("[%s]", b.Label(dialogLang)))
	}
	if cfg.ShowCancelButton {
		labels = append(labels, fmt.Sprintf("[%s]", cfg.CancelText(dialogLang)))
	}
	fmt.Fprintf(out, "Buttons: %s\n", strings.Join(labels, " "))

	return nil
}
