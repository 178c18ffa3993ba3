package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harun/phobos/pkg/i18n"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a wizard reading answers from stdin
func NewWizard() *Wizard {
	return NewWizardIO(os.Stdin, os.Stdout)
}

// NewWizardIO creates a wizard over explicit streams
func NewWizardIO(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run asks for each setting, starting from base (or the defaults when
// base is nil). An empty answer keeps the current value.
func (w *Wizard) Run(base *Config) (*Config, error) {
	fmt.Fprintln(w.out, "=== Phobos Configuration Wizard ===")
	fmt.Fprintln(w.out)

	cfg := DefaultConfig()
	if base != nil {
		copied := *base
		cfg = &copied
	}
	validator := NewValidator()

	// Language
	for {
		fmt.Fprintf(w.out, "Language (%s) [%s]: ", strings.Join(i18n.SupportedLanguages, "/"), cfg.Language)
		lang, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if lang == "" {
			break
		}
		if err := validator.ValidateLanguage(lang); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}
		cfg.Language = lang
		break
	}

	// Data directory
	fmt.Fprintf(w.out, "Data directory [%s]: ", cfg.DataDir)
	dataDir, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	fmt.Fprintln(w.out)

	// Plugins
	fmt.Fprintln(w.out, "Plugins:")
	fmt.Fprintf(w.out, "Manifest directories, comma separated [%s]: ", strings.Join(cfg.ManifestDirs, ","))
	dirs, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if dirs != "" {
		cfg.ManifestDirs = splitList(dirs)
	}

	for {
		fmt.Fprintf(w.out, "Trusted packages, comma separated [%s]: ", strings.Join(cfg.TrustedPackages, ","))
		line, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		pkgs := splitList(line)
		var invalid error
		for _, pkg := range pkgs {
			if err := validator.ValidatePackageName(pkg); err != nil {
				invalid = err
				break
			}
		}
		if invalid != nil {
			fmt.Fprintf(w.out, "Error: %v\n", invalid)
			continue
		}
		cfg.TrustedPackages = pkgs
		break
	}

	fmt.Fprintln(w.out)

	// Log Level
	fmt.Fprintln(w.out, "Logging:")
	fmt.Fprintf(w.out, "Log level (debug/info/warn/error) [%s]: ", cfg.Logging.Level)
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Fprintf(w.out, "Warning: %v, keeping %s\n", err, cfg.Logging.Level)
		} else {
			cfg.Logging.Level = level
		}
	}

	// Metrics
	enabled := "n"
	if cfg.Metrics.Enabled {
		enabled = "y"
	}
	fmt.Fprintf(w.out, "Expose Prometheus metrics? (y/n) [%s]: ", enabled)
	answer, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if answer != "" {
		cfg.Metrics.Enabled = strings.EqualFold(answer, "y")
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Configuration complete!")

	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
