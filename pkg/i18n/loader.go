package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML catalog file of the form
//
//	dialog.ok:
//	  en-US: OK
//	  zh-CN: 确定
//
// and registers every key in c. Nothing is registered when the file is
// invalid. It returns the number of keys loaded.
func LoadFile(c *Catalog, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var entries map[string]map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("failed to parse catalog %s: %w", filepath.Base(path), err)
	}

	for key := range entries {
		if strings.TrimSpace(key) == "" {
			return 0, fmt.Errorf("catalog %s: empty key", filepath.Base(path))
		}
	}
	for key, translations := range entries {
		c.Register(key, FromMap(translations))
	}
	return len(entries), nil
}

// LoadDir loads every *.yaml and *.yml file in dir in name order. Later files
// override keys from earlier ones.
func LoadDir(c *Catalog, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !isCatalogFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	total := 0
	for _, path := range files {
		n, err := LoadFile(c, path)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// ReloadDir loads dir into a fresh catalog and, only if every file loaded,
// replaces the resources of c with it. Keys from removed files are dropped.
func ReloadDir(c *Catalog, dir string) (int, error) {
	fresh := NewCatalog(c.Language())
	if _, err := LoadDir(fresh, dir); err != nil {
		return 0, err
	}
	c.Replace(fresh)
	return len(fresh.Keys()), nil
}

func isCatalogFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
