package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args, feeding in as stdin
func executeCommand(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()

	cmd := GetRootCmd()
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(output)
	cmd.SetIn(strings.NewReader(in))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return output.String(), err
}

// writeConfig writes a config file rooted in a fresh data directory and
// returns its path
func writeConfig(t *testing.T, overrides map[string]any) string {
	t.Helper()
	dir := t.TempDir()

	values := map[string]any{
		"data_dir": dir,
		"language": "en-US",
		"logging": map[string]any{
			"level":   "info",
			"console": false,
		},
	}
	for k, v := range overrides {
		values[k] = v
	}

	data, err := json.Marshal(values)
	require.NoError(t, err)

	path := filepath.Join(dir, "phobos.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func hasCommand(name string) bool {
	for _, c := range GetRootCmd().Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}
